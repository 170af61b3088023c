// leaves.go
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
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hostelgate/hostelgate/internal/logger"
	"github.com/hostelgate/hostelgate/internal/models"
	"github.com/hostelgate/hostelgate/internal/notify"
	"github.com/hostelgate/hostelgate/internal/types"
	"github.com/hostelgate/hostelgate/internal/workflow"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LeaveInput requests leave. Staff may file on behalf of StudentID; students always file for themselves.
type LeaveInput struct {
	StudentID string           `json:"studentId,omitempty"`
	Type      models.LeaveType `json:"type"`
	StartTime time.Time        `json:"startTime"`
	EndTime   time.Time        `json:"endTime"`
	Reason    string           `json:"reason"`
}

// LeaveFilter narrows a leave listing
type LeaveFilter struct {
	Status    models.LeaveStatus
	StudentID string
}

// CreateLeave files a PENDING leave request
func CreateLeave(db *gorm.DB, in LeaveInput, actor *Actor) (*models.Leave, error) {
	studentID := in.StudentID
	if actor.HasRole(models.RoleStudent) {
		studentID = actor.UserID
	}
	if studentID == "" {
		return nil, types.NewValidationError(map[string]string{"studentId": "Student is required"})
	}
	if !in.Type.Valid() {
		return nil, types.NewValidationError(map[string]string{"type": "Leave type must be one of HOME, MEDICAL, NIGHT_OUT, EMERGENCY, OTHER"})
	}
	if err := workflow.LeaveRequest(in.StartTime, in.EndTime, in.Reason); err != nil {
		return nil, err
	}

	leave := models.Leave{
		StudentID: studentID,
		Type:      in.Type,
		StartTime: in.StartTime.UTC(),
		EndTime:   in.EndTime.UTC(),
		Reason:    strings.TrimSpace(in.Reason),
		Status:    models.LeavePending,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var student models.User
		if err := findByID(tx, &student, "Student", studentID); err != nil {
			return err
		}
		if student.Role != models.RoleStudent {
			return types.NewPreconditionFailedError(fmt.Sprintf("user %s is not a student", studentID))
		}
		if !canRequestLeaveFor(actor, &student) {
			return types.NewForbiddenError("not allowed to request leave for this student")
		}
		if err := tx.Create(&leave).Error; err != nil {
			return fmt.Errorf("failed to create leave: %w", err)
		}
		return WriteAudit(tx, AuditEntry{
			EntityType:  models.EntityLeave,
			EntityID:    leave.ID,
			Action:      models.ActionCreate,
			New:         map[string]interface{}{"status": leave.Status, "type": leave.Type, "startTime": leave.StartTime, "endTime": leave.EndTime},
			PerformedBy: actor.ID(),
			Metadata:    map[string]interface{}{"student_name": student.Name},
		})
	})
	if err != nil {
		return nil, err
	}
	return &leave, nil
}

// canRequestLeaveFor allows students for themselves, parents for their children and wardens for anyone
func canRequestLeaveFor(actor *Actor, student *models.User) bool {
	switch {
	case actor == nil:
		return false
	case actor.HasRole(models.RoleStudent):
		return actor.UserID == student.ID
	case actor.HasRole(models.RoleParent):
		return student.GuardianEmail != "" && student.GuardianEmail == actor.Email
	}
	return actor.HasRole(models.RoleAdmin, models.RoleSuperintendent)
}

// ListLeaves returns leaves visible to actor, newest first. Students see their own, parents their children's.
func ListLeaves(db *gorm.DB, filter LeaveFilter, page Page, actor *Actor) ([]models.Leave, int64, error) {
	page = page.Normalize()

	q := scopeToStudents(db.Model(&models.Leave{}), "leaves.student_id", actor)
	if filter.Status != "" {
		q = q.Where("leaves.status = ?", filter.Status)
	}
	if filter.StudentID != "" {
		q = q.Where("leaves.student_id = ?", filter.StudentID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count leaves: %w", err)
	}
	var leaves []models.Leave
	if err := q.Order("leaves.created_at DESC").Offset(page.Offset()).Limit(page.Limit).Find(&leaves).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list leaves: %w", err)
	}
	return leaves, total, nil
}

// scopeToStudents limits a query to rows a student or parent may see
func scopeToStudents(q *gorm.DB, column string, actor *Actor) *gorm.DB {
	switch {
	case actor.HasRole(models.RoleStudent):
		return q.Where(column+" = ?", actor.UserID)
	case actor.HasRole(models.RoleParent):
		children := q.Session(&gorm.Session{NewDB: true}).
			Model(&models.User{}).
			Select("id").
			Where("role = ? AND guardian_email = ?", models.RoleStudent, actor.Email)
		return q.Where(column+" IN (?)", children)
	}
	return q
}

// DecideLeave approves or rejects a PENDING leave and notifies the student's guardian
func DecideLeave(ctx context.Context, db *gorm.DB, notifier notify.Notifier, id string, to models.LeaveStatus, reason string, actor *Actor) (*models.Leave, error) {
	var leave models.Leave
	var student models.User
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := findForUpdate(tx, &leave, "Leave", id); err != nil {
			return err
		}
		from := leave.Status
		next, err := workflow.LeaveDecision(from, to, reason)
		if err != nil {
			return err
		}

		decidedAt := now()
		updates := map[string]interface{}{
			"status":     next,
			"decided_by": actor.ID(),
			"decided_at": decidedAt,
		}
		if next == models.LeaveRejected {
			r := strings.TrimSpace(reason)
			updates["rejection_reason"] = r
			leave.RejectionReason = &r
		}
		result := tx.Model(&models.Leave{}).
			Where("id = ? AND status = ?", leave.ID, models.LeavePending).
			Updates(updates)
		if result.Error != nil {
			return fmt.Errorf("failed to decide leave: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return types.NewInvalidTransitionError(models.EntityLeave, string(from), string(next))
		}
		leave.Status = next
		leave.DecidedBy = actor.ID()
		leave.DecidedAt = &decidedAt

		if err := findByID(tx, &student, "Student", leave.StudentID); err != nil {
			return err
		}

		action := models.ActionApprove
		if next == models.LeaveRejected {
			action = models.ActionReject
		}
		return WriteAudit(tx, AuditEntry{
			EntityType:  models.EntityLeave,
			EntityID:    leave.ID,
			Action:      action,
			Old:         map[string]interface{}{"status": from},
			New:         map[string]interface{}{"status": next, "rejectionReason": leave.RejectionReason},
			PerformedBy: actor.ID(),
			Metadata:    map[string]interface{}{"student_name": student.Name},
		})
	})
	if err != nil {
		return nil, err
	}

	notifyGuardian(ctx, db, notifier, &leave, &student)
	return &leave, nil
}

// notifyGuardian tells the guardian about a decision. parent_notified_at is only set on delivery.
func notifyGuardian(ctx context.Context, db *gorm.DB, notifier notify.Notifier, leave *models.Leave, student *models.User) {
	if notifier == nil {
		return
	}
	contact := student.GuardianEmail
	if contact == "" {
		contact = student.GuardianPhone
	}
	if contact == "" {
		return
	}

	body := fmt.Sprintf("%s leave for %s from %s to %s has been %s.",
		leave.Type, student.Name,
		leave.StartTime.Format("02 Jan 2006 15:04"), leave.EndTime.Format("02 Jan 2006 15:04"),
		strings.ToLower(string(leave.Status)))
	if leave.RejectionReason != nil {
		body += " Reason: " + *leave.RejectionReason
	}

	err := notifier.Notify(ctx, notify.Message{
		Channel: notify.ChannelFor(contact),
		To:      contact,
		Subject: fmt.Sprintf("Leave request %s", strings.ToLower(string(leave.Status))),
		Body:    body,
	})
	if err != nil {
		logger.GetLogger().Warn("Guardian notification failed", zap.String("leave_id", leave.ID), zap.Error(err))
		return
	}

	notifiedAt := now()
	if err := db.Model(&models.Leave{}).Where("id = ?", leave.ID).Update("parent_notified_at", notifiedAt).Error; err != nil {
		logger.GetLogger().Warn("Failed to record guardian notification", zap.String("leave_id", leave.ID), zap.Error(err))
		return
	}
	leave.ParentNotifiedAt = &notifiedAt
}
