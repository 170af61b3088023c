// interviews.go
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

package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/hostelgate/hostelgate/internal/models"
	"github.com/hostelgate/hostelgate/internal/types"
	"github.com/hostelgate/hostelgate/internal/workflow"
	"gorm.io/gorm"
)

// ScheduleInterviewInput books an interview for an application
type ScheduleInterviewInput struct {
	ApplicationID string               `json:"applicationId"`
	TrusteeID     string               `json:"trusteeId"`
	ScheduleTime  time.Time            `json:"scheduleTime"`
	Mode          models.InterviewMode `json:"mode"`
}

// CompleteInterviewInput records the outcome of an interview
type CompleteInterviewInput struct {
	FinalScore      types.FlexInt `json:"finalScore" swaggertype:"integer"`
	InternalRemarks string        `json:"internalRemarks"`
}

// InterviewFilter narrows an interview listing
type InterviewFilter struct {
	Status        models.InterviewStatus
	ApplicationID string
	TrusteeID     string
}

// ScheduleInterview books an interview and moves the application to INTERVIEW
func ScheduleInterview(db *gorm.DB, in ScheduleInterviewInput, actor *Actor) (*models.Interview, error) {
	fields := map[string]string{}
	if in.ApplicationID == "" {
		fields["applicationId"] = "Application is required"
	}
	if in.TrusteeID == "" {
		fields["trusteeId"] = "Trustee is required"
	}
	if in.ScheduleTime.IsZero() {
		fields["scheduleTime"] = "Schedule time is required"
	} else if !in.ScheduleTime.After(now()) {
		fields["scheduleTime"] = "Schedule time must be in the future"
	}
	if !in.Mode.Valid() {
		fields["mode"] = "Mode must be one of IN_PERSON, VIDEO, PHONE"
	}
	if len(fields) > 0 {
		return nil, types.NewValidationError(fields)
	}

	var interview models.Interview
	err := db.Transaction(func(tx *gorm.DB) error {
		var app models.Application
		if err := findForUpdate(tx, &app, "Application", in.ApplicationID); err != nil {
			return err
		}
		var trustee models.User
		if err := findByID(tx, &trustee, "Trustee", in.TrusteeID); err != nil {
			return err
		}
		if trustee.Role != models.RoleTrustee || !trustee.Active {
			return types.NewPreconditionFailedError(fmt.Sprintf("user %s is not an active trustee", in.TrusteeID))
		}

		var open int64
		if err := tx.Model(&models.Interview{}).
			Where("application_id = ? AND status = ?", app.ID, models.InterviewScheduled).
			Count(&open).Error; err != nil {
			return err
		}
		if open > 0 {
			return types.NewConflictError("application already has a scheduled interview")
		}

		from := app.CurrentStatus
		next, err := workflow.InterviewSchedulable(from)
		if err != nil {
			return err
		}

		interview = models.Interview{
			ApplicationID: app.ID,
			TrusteeID:     trustee.ID,
			ScheduleTime:  in.ScheduleTime.UTC(),
			Mode:          in.Mode,
			Status:        models.InterviewScheduled,
		}
		if err := tx.Create(&interview).Error; err != nil {
			return fmt.Errorf("failed to create interview: %w", err)
		}
		if err := WriteAudit(tx, AuditEntry{
			EntityType:  models.EntityInterview,
			EntityID:    interview.ID,
			Action:      models.ActionSchedule,
			New:         map[string]interface{}{"status": interview.Status, "scheduleTime": interview.ScheduleTime, "mode": interview.Mode},
			PerformedBy: actor.ID(),
			Metadata:    map[string]interface{}{"tracking_number": app.TrackingNumber, "trustee_name": trustee.Name},
		}); err != nil {
			return err
		}

		if next == from {
			return nil
		}
		if err := conditionalStatus(tx, &app, next, nil); err != nil {
			return err
		}
		return WriteAudit(tx, AuditEntry{
			EntityType:  models.EntityApplication,
			EntityID:    app.ID,
			Action:      models.ActionStatusChange,
			Old:         map[string]interface{}{"currentStatus": from},
			New:         map[string]interface{}{"currentStatus": next},
			PerformedBy: actor.ID(),
			Metadata:    map[string]interface{}{"tracking_number": app.TrackingNumber, "interview_id": interview.ID},
		})
	})
	if err != nil {
		return nil, err
	}
	return &interview, nil
}

// loadInterviewForTrustee locks an interview and checks the actor may act on it
func loadInterviewForTrustee(tx *gorm.DB, id string, actor *Actor) (*models.Interview, error) {
	var interview models.Interview
	if err := findForUpdate(tx, &interview, "Interview", id); err != nil {
		return nil, err
	}
	if actor.HasRole(models.RoleTrustee) && interview.TrusteeID != actor.UserID {
		return nil, types.NewForbiddenError("interview is assigned to another trustee")
	}
	return &interview, nil
}

// CompleteInterview records the score and remarks of a SCHEDULED interview
func CompleteInterview(db *gorm.DB, id string, in CompleteInterviewInput, actor *Actor) (*models.Interview, error) {
	var interview *models.Interview
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		if interview, err = loadInterviewForTrustee(tx, id, actor); err != nil {
			return err
		}
		from := interview.Status
		score := in.FinalScore.Ptr()
		next, err := workflow.InterviewComplete(from, score, in.InternalRemarks)
		if err != nil {
			return err
		}

		completedAt := now()
		remarks := strings.TrimSpace(in.InternalRemarks)
		result := tx.Model(&models.Interview{}).
			Where("id = ? AND status = ?", interview.ID, models.InterviewScheduled).
			Updates(map[string]interface{}{
				"status":           next,
				"final_score":      *score,
				"internal_remarks": remarks,
				"completed_at":     completedAt,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to complete interview: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return types.NewInvalidTransitionError(models.EntityInterview, string(models.InterviewCompleted), string(next))
		}
		interview.Status = next
		interview.FinalScore = score
		interview.InternalRemarks = remarks
		interview.CompletedAt = &completedAt

		return WriteAudit(tx, AuditEntry{
			EntityType:  models.EntityInterview,
			EntityID:    interview.ID,
			Action:      models.ActionComplete,
			Old:         map[string]interface{}{"status": from},
			New:         map[string]interface{}{"status": next, "finalScore": *score},
			PerformedBy: actor.ID(),
			Metadata:    map[string]interface{}{"application_id": interview.ApplicationID},
		})
	})
	if err != nil {
		return nil, err
	}
	return interview, nil
}

// CancelInterview cancels a SCHEDULED interview
func CancelInterview(db *gorm.DB, id string, actor *Actor) (*models.Interview, error) {
	var interview *models.Interview
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		if interview, err = loadInterviewForTrustee(tx, id, actor); err != nil {
			return err
		}
		from := interview.Status
		next, err := workflow.InterviewCancel(from)
		if err != nil {
			return err
		}
		result := tx.Model(&models.Interview{}).
			Where("id = ? AND status = ?", interview.ID, models.InterviewScheduled).
			Update("status", next)
		if result.Error != nil {
			return fmt.Errorf("failed to cancel interview: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return types.NewInvalidTransitionError(models.EntityInterview, string(from), string(next))
		}
		interview.Status = next

		return WriteAudit(tx, AuditEntry{
			EntityType:  models.EntityInterview,
			EntityID:    interview.ID,
			Action:      models.ActionCancel,
			Old:         map[string]interface{}{"status": from},
			New:         map[string]interface{}{"status": next},
			PerformedBy: actor.ID(),
			Metadata:    map[string]interface{}{"application_id": interview.ApplicationID},
		})
	})
	if err != nil {
		return nil, err
	}
	return interview, nil
}

// ListInterviews returns interviews ordered by schedule time. Trustees see only their own.
func ListInterviews(db *gorm.DB, filter InterviewFilter, page Page, actor *Actor) ([]models.Interview, int64, error) {
	page = page.Normalize()

	q := db.Model(&models.Interview{})
	if actor.HasRole(models.RoleTrustee) {
		q = q.Where("trustee_id = ?", actor.UserID)
	} else if filter.TrusteeID != "" {
		q = q.Where("trustee_id = ?", filter.TrusteeID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.ApplicationID != "" {
		q = q.Where("application_id = ?", filter.ApplicationID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count interviews: %w", err)
	}
	var interviews []models.Interview
	if err := q.Order("schedule_time ASC").Offset(page.Offset()).Limit(page.Limit).Find(&interviews).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list interviews: %w", err)
	}
	return interviews, total, nil
}
