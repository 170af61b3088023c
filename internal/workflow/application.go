// application.go
//
// HostelGate: admissions, residency and fee management for a charitable hostel trust
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of hostelgate.
// hostelgate is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// hostelgate is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with hostelgate.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package workflow

import (
	"fmt"

	"github.com/hostelgate/hostelgate/internal/models"
	"github.com/hostelgate/hostelgate/internal/types"
)

var applicationTransitions = map[models.ApplicationStatus][]models.ApplicationStatus{
	models.ApplicationDraft:     {models.ApplicationSubmitted, models.ApplicationArchived},
	models.ApplicationSubmitted: {models.ApplicationReview, models.ApplicationInterview, models.ApplicationArchived},
	models.ApplicationReview:    {models.ApplicationInterview, models.ApplicationApproved, models.ApplicationRejected, models.ApplicationArchived},
	models.ApplicationInterview: {models.ApplicationApproved, models.ApplicationRejected, models.ApplicationArchived},
	models.ApplicationApproved:  {models.ApplicationArchived},
	models.ApplicationRejected:  {models.ApplicationArchived},
	models.ApplicationArchived:  {},
}

// ApplicationNext lists the statuses an application may move to from the given status
func ApplicationNext(from models.ApplicationStatus) []models.ApplicationStatus {
	return applicationTransitions[from]
}

// ApplicationTransition checks a status change and returns the accepted next status
func ApplicationTransition(from, to models.ApplicationStatus) (models.ApplicationStatus, error) {
	if _, known := applicationTransitions[to]; !known {
		return from, types.NewBadRequestError(fmt.Sprintf("unknown application status: %s", to))
	}
	if !allowed(applicationTransitions[from], to) {
		return from, types.NewInvalidTransitionError(models.EntityApplication, string(from), string(to))
	}
	return to, nil
}

// ApplicationSubmit checks the DRAFT to SUBMITTED step. Completeness is checked separately.
func ApplicationSubmit(from models.ApplicationStatus) (models.ApplicationStatus, error) {
	if from != models.ApplicationDraft {
		return from, types.NewInvalidTransitionError(models.EntityApplication, string(from), string(models.ApplicationSubmitted))
	}
	return models.ApplicationSubmitted, nil
}

// ApplicationReviewStep is the status change a staff review may request through the status endpoint.
// Submission and archiving have their own operations.
func ApplicationReviewStep(from, to models.ApplicationStatus) (models.ApplicationStatus, error) {
	switch to {
	case models.ApplicationReview, models.ApplicationInterview, models.ApplicationApproved, models.ApplicationRejected:
		return ApplicationTransition(from, to)
	case models.ApplicationSubmitted, models.ApplicationArchived, models.ApplicationDraft:
		return from, types.NewInvalidTransitionError(models.EntityApplication, string(from), string(to))
	}
	return from, types.NewBadRequestError(fmt.Sprintf("unknown application status: %s", to))
}

// ApplicationArchive soft deletes any application that is not already archived
func ApplicationArchive(from models.ApplicationStatus) (models.ApplicationStatus, error) {
	return ApplicationTransition(from, models.ApplicationArchived)
}

// ApplicationEditable rejects payload edits outside DRAFT
func ApplicationEditable(status models.ApplicationStatus) error {
	if status != models.ApplicationDraft {
		return types.NewPreconditionFailedError(
			fmt.Sprintf("application data can only be changed while DRAFT, current status is %s", status))
	}
	return nil
}

// InterviewSchedulable moves SUBMITTED and REVIEW applications to INTERVIEW; INTERVIEW stays put
func InterviewSchedulable(from models.ApplicationStatus) (models.ApplicationStatus, error) {
	switch from {
	case models.ApplicationSubmitted, models.ApplicationReview:
		return models.ApplicationInterview, nil
	case models.ApplicationInterview:
		return from, nil
	}
	return from, types.NewPreconditionFailedError(
		fmt.Sprintf("interviews cannot be scheduled for an application in %s", from))
}

func allowed[S comparable](next []S, to S) bool {
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}
