// applications.go
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

	"github.com/hostelgate/hostelgate/internal/metrics"
	"github.com/hostelgate/hostelgate/internal/models"
	"github.com/hostelgate/hostelgate/internal/types"
	"github.com/hostelgate/hostelgate/internal/validation"
	"github.com/hostelgate/hostelgate/internal/workflow"
	"gorm.io/gorm"
)

// ApplicationInput is the applicant supplied part of an application
type ApplicationInput struct {
	Vertical       models.Vertical        `json:"vertical"`
	ApplicantName  string                 `json:"applicantName"`
	ApplicantEmail string                 `json:"applicantEmail,omitempty"`
	ApplicantPhone string                 `json:"applicantPhone"`
	PersonalData   map[string]interface{} `json:"personalData,omitempty"`
	GuardianData   map[string]interface{} `json:"guardianData,omitempty"`
	EducationData  map[string]interface{} `json:"educationData,omitempty"`
	Documents      map[string]interface{} `json:"documents,omitempty"`
	// VerificationToken is the token returned by /otp/verify for the applicant's phone or email
	VerificationToken string `json:"verificationToken,omitempty"`
}

func (in ApplicationInput) values() map[string]interface{} {
	return map[string]interface{}{
		"vertical":       string(in.Vertical),
		"applicantName":  in.ApplicantName,
		"applicantPhone": in.ApplicantPhone,
		"applicantEmail": in.ApplicantEmail,
	}
}

// ApplicationFilter narrows an application listing
type ApplicationFilter struct {
	Status   models.ApplicationStatus
	Vertical models.Vertical
	Search   string
}

// TrackingView is the public status of an application
type TrackingView struct {
	TrackingNumber string                   `json:"trackingNumber"`
	Vertical       models.Vertical          `json:"vertical"`
	ApplicantName  string                   `json:"applicantName"`
	CurrentStatus  models.ApplicationStatus `json:"currentStatus"`
	SubmittedAt    *time.Time               `json:"submittedAt,omitempty"`
	UpdatedAt      time.Time                `json:"updatedAt"`
}

// CreateApplication creates a DRAFT application with a fresh tracking number
func CreateApplication(db *gorm.DB, in ApplicationInput, contactVerified bool, actor *Actor) (*models.Application, error) {
	if err := validation.Check(validation.NewApplicationSchema, in.values()); err != nil {
		return nil, err
	}

	app := models.Application{
		Vertical:        in.Vertical,
		ApplicantName:   strings.TrimSpace(in.ApplicantName),
		ApplicantEmail:  strings.ToLower(strings.TrimSpace(in.ApplicantEmail)),
		ApplicantPhone:  strings.TrimSpace(in.ApplicantPhone),
		ContactVerified: contactVerified,
		CurrentStatus:   models.ApplicationDraft,
	}
	if err := applyPayload(&app, in); err != nil {
		return nil, err
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		tn, err := NextTrackingNumber(tx, now().Year())
		if err != nil {
			return err
		}
		app.TrackingNumber = tn

		if err := tx.Create(&app).Error; err != nil {
			return fmt.Errorf("failed to create application: %w", err)
		}

		return WriteAudit(tx, AuditEntry{
			EntityType:  models.EntityApplication,
			EntityID:    app.ID,
			Action:      models.ActionCreate,
			New:         map[string]interface{}{"currentStatus": app.CurrentStatus, "vertical": app.Vertical},
			PerformedBy: actor.ID(),
			Metadata:    map[string]interface{}{"tracking_number": app.TrackingNumber},
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.ApplicationsCreated.WithLabelValues(string(app.Vertical)).Inc()
	return &app, nil
}

func applyPayload(app *models.Application, in ApplicationInput) error {
	sections := []struct {
		dest *models.JSON
		src  map[string]interface{}
		name string
	}{
		{&app.PersonalData, in.PersonalData, "personalData"},
		{&app.GuardianData, in.GuardianData, "guardianData"},
		{&app.EducationData, in.EducationData, "educationData"},
		{&app.Documents, in.Documents, "documents"},
	}
	for _, s := range sections {
		if s.src == nil {
			continue
		}
		j, err := models.NewJSON(s.src)
		if err != nil {
			return types.NewValidationError(map[string]string{s.name: "Invalid JSON object"})
		}
		*s.dest = j
	}
	return nil
}

// GetApplication loads an application by id
func GetApplication(db *gorm.DB, id string) (*models.Application, error) {
	var app models.Application
	if err := findByID(db, &app, "Application", id); err != nil {
		return nil, err
	}
	return &app, nil
}

// TrackApplication returns the public view of an application by tracking number
func TrackApplication(db *gorm.DB, trackingNumber string) (*TrackingView, error) {
	trackingNumber = strings.ToUpper(strings.TrimSpace(trackingNumber))
	if !validation.TrackingNumberPattern.MatchString(trackingNumber) {
		return nil, types.NewValidationError(map[string]string{"trackingNumber": "Tracking number must look like HG-2025-00001"})
	}

	var app models.Application
	if err := db.Where("tracking_number = ?", trackingNumber).First(&app).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, types.NewNotFoundError("Application", trackingNumber)
		}
		return nil, err
	}
	return &TrackingView{
		TrackingNumber: app.TrackingNumber,
		Vertical:       app.Vertical,
		ApplicantName:  app.ApplicantName,
		CurrentStatus:  app.CurrentStatus,
		SubmittedAt:    app.SubmittedAt,
		UpdatedAt:      app.UpdatedAt,
	}, nil
}

// ListApplications returns one page of applications, newest first
func ListApplications(db *gorm.DB, filter ApplicationFilter, page Page) ([]models.Application, int64, error) {
	page = page.Normalize()

	q := db.Model(&models.Application{})
	if filter.Status != "" {
		q = q.Where("current_status = ?", filter.Status)
	}
	if filter.Vertical != "" {
		q = q.Where("vertical = ?", filter.Vertical)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + s + "%"
		q = q.Where("tracking_number LIKE ? OR applicant_name LIKE ? OR applicant_phone LIKE ?", like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count applications: %w", err)
	}

	var apps []models.Application
	if err := q.Order("created_at DESC").Offset(page.Offset()).Limit(page.Limit).Find(&apps).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list applications: %w", err)
	}
	return apps, total, nil
}

// UpdateApplication replaces the payload of a DRAFT application
func UpdateApplication(db *gorm.DB, id string, in ApplicationInput, contactVerified bool, actor *Actor) (*models.Application, error) {
	if err := validation.Check(validation.NewApplicationSchema, in.values()); err != nil {
		return nil, err
	}

	var app models.Application
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := findForUpdate(tx, &app, "Application", id); err != nil {
			return err
		}
		if err := workflow.ApplicationEditable(app.CurrentStatus); err != nil {
			return err
		}

		before := map[string]interface{}{
			"vertical":       app.Vertical,
			"applicantName":  app.ApplicantName,
			"applicantPhone": app.ApplicantPhone,
			"applicantEmail": app.ApplicantEmail,
		}

		phone := strings.TrimSpace(in.ApplicantPhone)
		email := strings.ToLower(strings.TrimSpace(in.ApplicantEmail))
		// Verification belongs to the contact it was made for
		verified := contactVerified || (app.ContactVerified && phone == app.ApplicantPhone && email == app.ApplicantEmail)

		app.Vertical = in.Vertical
		app.ApplicantName = strings.TrimSpace(in.ApplicantName)
		app.ApplicantPhone = phone
		app.ApplicantEmail = email
		app.ContactVerified = verified
		if err := applyPayload(&app, in); err != nil {
			return err
		}

		result := tx.Model(&models.Application{}).
			Where("id = ? AND current_status = ?", app.ID, models.ApplicationDraft).
			Updates(map[string]interface{}{
				"vertical":         app.Vertical,
				"applicant_name":   app.ApplicantName,
				"applicant_phone":  app.ApplicantPhone,
				"applicant_email":  app.ApplicantEmail,
				"contact_verified": app.ContactVerified,
				"personal_data":    app.PersonalData,
				"guardian_data":    app.GuardianData,
				"education_data":   app.EducationData,
				"documents":        app.Documents,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update application: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return workflow.ApplicationEditable(models.ApplicationSubmitted)
		}

		return WriteAudit(tx, AuditEntry{
			EntityType: models.EntityApplication,
			EntityID:   app.ID,
			Action:     models.ActionUpdate,
			Old:        before,
			New: map[string]interface{}{
				"vertical":       app.Vertical,
				"applicantName":  app.ApplicantName,
				"applicantPhone": app.ApplicantPhone,
				"applicantEmail": app.ApplicantEmail,
			},
			PerformedBy: actor.ID(),
			Metadata:    map[string]interface{}{"tracking_number": app.TrackingNumber},
		})
	})
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// SubmitApplication moves a complete DRAFT application to SUBMITTED exactly once
func SubmitApplication(db *gorm.DB, id string, actor *Actor) (*models.Application, error) {
	var app models.Application
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := findForUpdate(tx, &app, "Application", id); err != nil {
			return err
		}
		next, err := workflow.ApplicationSubmit(app.CurrentStatus)
		if err != nil {
			return err
		}
		if err := validation.CheckSubmission(&app); err != nil {
			return err
		}

		submittedAt := now()
		if err := conditionalStatus(tx, &app, next, map[string]interface{}{"submitted_at": submittedAt}); err != nil {
			return err
		}
		app.SubmittedAt = &submittedAt

		return WriteAudit(tx, AuditEntry{
			EntityType:  models.EntityApplication,
			EntityID:    app.ID,
			Action:      models.ActionSubmit,
			Old:         map[string]interface{}{"currentStatus": models.ApplicationDraft},
			New:         map[string]interface{}{"currentStatus": next, "submittedAt": submittedAt},
			PerformedBy: actor.ID(),
			Metadata:    map[string]interface{}{"tracking_number": app.TrackingNumber},
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.ApplicationTransitions.WithLabelValues(string(app.CurrentStatus)).Inc()
	return &app, nil
}

// ChangeApplicationStatus applies a staff review decision
func ChangeApplicationStatus(db *gorm.DB, id string, to models.ApplicationStatus, remarks string, actor *Actor) (*models.Application, error) {
	var app models.Application
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := findForUpdate(tx, &app, "Application", id); err != nil {
			return err
		}
		from := app.CurrentStatus
		next, err := workflow.ApplicationReviewStep(from, to)
		if err != nil {
			return err
		}

		extra := map[string]interface{}{"reviewed_by": actor.ID()}
		if remarks = strings.TrimSpace(remarks); remarks != "" {
			extra["decision_remarks"] = remarks
			app.DecisionRemarks = remarks
		}
		if err := conditionalStatus(tx, &app, next, extra); err != nil {
			return err
		}
		app.ReviewedBy = actor.ID()

		action := models.ActionStatusChange
		switch next {
		case models.ApplicationApproved:
			action = models.ActionApprove
		case models.ApplicationRejected:
			action = models.ActionReject
		}
		return WriteAudit(tx, AuditEntry{
			EntityType:  models.EntityApplication,
			EntityID:    app.ID,
			Action:      action,
			Old:         map[string]interface{}{"currentStatus": from},
			New:         map[string]interface{}{"currentStatus": next, "decisionRemarks": remarks},
			PerformedBy: actor.ID(),
			Metadata:    map[string]interface{}{"tracking_number": app.TrackingNumber},
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.ApplicationTransitions.WithLabelValues(string(app.CurrentStatus)).Inc()
	return &app, nil
}

// ArchiveApplication soft deletes an application
func ArchiveApplication(db *gorm.DB, id string, actor *Actor) (*models.Application, error) {
	var app models.Application
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := findForUpdate(tx, &app, "Application", id); err != nil {
			return err
		}
		from := app.CurrentStatus
		next, err := workflow.ApplicationArchive(from)
		if err != nil {
			return err
		}
		if err := conditionalStatus(tx, &app, next, nil); err != nil {
			return err
		}
		return WriteAudit(tx, AuditEntry{
			EntityType:  models.EntityApplication,
			EntityID:    app.ID,
			Action:      models.ActionArchive,
			Old:         map[string]interface{}{"currentStatus": from},
			New:         map[string]interface{}{"currentStatus": next},
			PerformedBy: actor.ID(),
			Metadata:    map[string]interface{}{"tracking_number": app.TrackingNumber},
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.ApplicationTransitions.WithLabelValues(string(app.CurrentStatus)).Inc()
	return &app, nil
}

// conditionalStatus moves app to next only if its status is unchanged since it was read
func conditionalStatus(tx *gorm.DB, app *models.Application, next models.ApplicationStatus, extra map[string]interface{}) error {
	updates := map[string]interface{}{"current_status": next}
	for k, v := range extra {
		updates[k] = v
	}
	result := tx.Model(&models.Application{}).
		Where("id = ? AND current_status = ?", app.ID, app.CurrentStatus).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update application status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return types.NewInvalidTransitionError(models.EntityApplication, string(app.CurrentStatus), string(next))
	}
	app.CurrentStatus = next
	return nil
}
