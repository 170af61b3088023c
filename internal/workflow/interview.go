// interview.go
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
	"strings"

	"github.com/hostelgate/hostelgate/internal/models"
	"github.com/hostelgate/hostelgate/internal/types"
)

// Score bounds for a completed interview
const (
	MinInterviewScore = 0
	MaxInterviewScore = 100
)

// InterviewComplete checks SCHEDULED to COMPLETED with a score in range and remarks
func InterviewComplete(from models.InterviewStatus, score *int, remarks string) (models.InterviewStatus, error) {
	if from != models.InterviewScheduled {
		return from, types.NewInvalidTransitionError(models.EntityInterview, string(from), string(models.InterviewCompleted))
	}
	fields := map[string]string{}
	if score == nil {
		fields["finalScore"] = "Final score is required"
	} else if *score < MinInterviewScore || *score > MaxInterviewScore {
		fields["finalScore"] = "Final score must be between 0 and 100"
	}
	if strings.TrimSpace(remarks) == "" {
		fields["internalRemarks"] = "Remarks are required"
	}
	if len(fields) > 0 {
		return from, types.NewValidationError(fields)
	}
	return models.InterviewCompleted, nil
}

// InterviewCancel checks SCHEDULED to CANCELLED
func InterviewCancel(from models.InterviewStatus) (models.InterviewStatus, error) {
	if from != models.InterviewScheduled {
		return from, types.NewInvalidTransitionError(models.EntityInterview, string(from), string(models.InterviewCancelled))
	}
	return models.InterviewCancelled, nil
}
