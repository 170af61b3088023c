// clearances.go
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

	"github.com/hostelgate/hostelgate/internal/metrics"
	"github.com/hostelgate/hostelgate/internal/models"
	"github.com/hostelgate/hostelgate/internal/types"
	"github.com/hostelgate/hostelgate/internal/workflow"
	"gorm.io/gorm"
)

// InitiateClearanceInput opens an exit checklist for an ACTIVE allocation
type InitiateClearanceInput struct {
	AllocationID string `json:"allocationId"`
	Remarks      string `json:"remarks,omitempty"`
}

// UpdateClearanceInput ticks checklist items. Nil fields are left unchanged.
type UpdateClearanceInput struct {
	RoomInspected     *bool   `json:"roomInspected,omitempty"`
	KeyReturned       *bool   `json:"keyReturned,omitempty"`
	DocumentsReturned *bool   `json:"documentsReturned,omitempty"`
	Remarks           *string `json:"remarks,omitempty"`
}

func clearanceSnapshot(c *models.ExitClearance) map[string]interface{} {
	return map[string]interface{}{
		"status":            c.Status,
		"roomInspected":     c.RoomInspected,
		"keyReturned":       c.KeyReturned,
		"documentsReturned": c.DocumentsReturned,
	}
}

// InitiateClearance opens a checklist; one open checklist per allocation
func InitiateClearance(db *gorm.DB, in InitiateClearanceInput, actor *Actor) (*models.ExitClearance, error) {
	if in.AllocationID == "" {
		return nil, types.NewValidationError(map[string]string{"allocationId": "Allocation is required"})
	}

	var clearance models.ExitClearance
	err := db.Transaction(func(tx *gorm.DB) error {
		var alloc models.Allocation
		if err := findForUpdate(tx, &alloc, "Allocation", in.AllocationID); err != nil {
			return err
		}
		if alloc.Status != models.AllocationActive {
			return types.NewPreconditionFailedError(fmt.Sprintf("allocation is %s, clearance needs an ACTIVE allocation", alloc.Status))
		}
		open, err := openClearanceID(tx, alloc.ID)
		if err != nil {
			return err
		}
		if open != "" {
			return types.NewConflictError("a clearance is already in progress for this allocation")
		}

		clearance = models.ExitClearance{
			AllocationID: alloc.ID,
			StudentID:    alloc.StudentID,
			Status:       models.ClearanceInitiated,
			Remarks:      strings.TrimSpace(in.Remarks),
			InitiatedBy:  actor.ID(),
		}
		if err := tx.Create(&clearance).Error; err != nil {
			return fmt.Errorf("failed to create clearance: %w", err)
		}
		return WriteAudit(tx, AuditEntry{
			EntityType:  models.EntityClearance,
			EntityID:    clearance.ID,
			Action:      models.ActionCreate,
			New:         clearanceSnapshot(&clearance),
			PerformedBy: actor.ID(),
			Metadata:    map[string]interface{}{"allocation_id": alloc.ID, "student_id": alloc.StudentID},
		})
	})
	if err != nil {
		return nil, err
	}
	return &clearance, nil
}

// openClearanceID returns the id of the INITIATED clearance on an allocation, or ""
func openClearanceID(tx *gorm.DB, allocationID string) (string, error) {
	var ids []string
	if err := tx.Model(&models.ExitClearance{}).
		Where("allocation_id = ? AND status = ?", allocationID, models.ClearanceInitiated).
		Limit(1).
		Pluck("id", &ids).Error; err != nil {
		return "", fmt.Errorf("failed to check open clearances: %w", err)
	}
	if len(ids) == 0 {
		return "", nil
	}
	return ids[0], nil
}

// GetClearance loads a clearance by id
func GetClearance(db *gorm.DB, id string) (*models.ExitClearance, error) {
	var c models.ExitClearance
	if err := findByID(db, &c, "Clearance", id); err != nil {
		return nil, err
	}
	return &c, nil
}

// UpdateClearance ticks checklist items on an INITIATED clearance
func UpdateClearance(db *gorm.DB, id string, in UpdateClearanceInput, actor *Actor) (*models.ExitClearance, error) {
	var c models.ExitClearance
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := findForUpdate(tx, &c, "Clearance", id); err != nil {
			return err
		}
		if err := workflow.ClearanceUpdate(c.Status); err != nil {
			return err
		}
		before := clearanceSnapshot(&c)

		if in.RoomInspected != nil {
			c.RoomInspected = *in.RoomInspected
		}
		if in.KeyReturned != nil {
			c.KeyReturned = *in.KeyReturned
		}
		if in.DocumentsReturned != nil {
			c.DocumentsReturned = *in.DocumentsReturned
		}
		if in.Remarks != nil {
			c.Remarks = strings.TrimSpace(*in.Remarks)
		}

		res := tx.Model(&models.ExitClearance{}).
			Where("id = ? AND status = ?", c.ID, models.ClearanceInitiated).
			Updates(map[string]interface{}{
				"room_inspected":     c.RoomInspected,
				"key_returned":       c.KeyReturned,
				"documents_returned": c.DocumentsReturned,
				"remarks":            c.Remarks,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to update clearance: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return workflow.ClearanceUpdate(models.ClearanceCompleted)
		}

		return WriteAudit(tx, AuditEntry{
			EntityType:  models.EntityClearance,
			EntityID:    c.ID,
			Action:      models.ActionClearanceUpdate,
			Old:         before,
			New:         clearanceSnapshot(&c),
			PerformedBy: actor.ID(),
		})
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CompleteClearance closes the checklist and vacates the allocation in the same transaction
func CompleteClearance(db *gorm.DB, id string, actor *Actor) (*models.ExitClearance, error) {
	var c models.ExitClearance
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := findForUpdate(tx, &c, "Clearance", id); err != nil {
			return err
		}

		var outstanding int64
		if err := tx.Model(&models.Fee{}).
			Where("student_id = ? AND status IN ?", c.StudentID, []models.FeeStatus{models.FeePending, models.FeeOverdue}).
			Count(&outstanding).Error; err != nil {
			return fmt.Errorf("failed to check outstanding fees: %w", err)
		}
		from := c.Status
		next, err := workflow.ClearanceComplete(c, outstanding)
		if err != nil {
			return err
		}

		completedAt := now()
		res := tx.Model(&models.ExitClearance{}).
			Where("id = ? AND status = ?", c.ID, models.ClearanceInitiated).
			Updates(map[string]interface{}{"status": next, "completed_at": completedAt})
		if res.Error != nil {
			return fmt.Errorf("failed to complete clearance: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return types.NewInvalidTransitionError(models.EntityClearance, string(from), string(next))
		}
		c.Status = next
		c.CompletedAt = &completedAt

		if err := WriteAudit(tx, AuditEntry{
			EntityType:  models.EntityClearance,
			EntityID:    c.ID,
			Action:      models.ActionComplete,
			Old:         map[string]interface{}{"status": from},
			New:         clearanceSnapshot(&c),
			PerformedBy: actor.ID(),
			Metadata:    map[string]interface{}{"allocation_id": c.AllocationID},
		}); err != nil {
			return err
		}

		var alloc models.Allocation
		return vacateInTx(tx, c.AllocationID, &alloc, actor, map[string]interface{}{"clearance_id": c.ID})
	})
	if err != nil {
		return nil, err
	}

	metrics.Allocations.WithLabelValues("vacate").Inc()
	return &c, nil
}

// CancelClearance abandons an INITIATED clearance
func CancelClearance(db *gorm.DB, id string, actor *Actor) (*models.ExitClearance, error) {
	var c models.ExitClearance
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := findForUpdate(tx, &c, "Clearance", id); err != nil {
			return err
		}
		from := c.Status
		next, err := workflow.ClearanceCancel(from)
		if err != nil {
			return err
		}
		res := tx.Model(&models.ExitClearance{}).
			Where("id = ? AND status = ?", c.ID, models.ClearanceInitiated).
			Update("status", next)
		if res.Error != nil {
			return fmt.Errorf("failed to cancel clearance: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return types.NewInvalidTransitionError(models.EntityClearance, string(from), string(next))
		}
		c.Status = next
		return WriteAudit(tx, AuditEntry{
			EntityType:  models.EntityClearance,
			EntityID:    c.ID,
			Action:      models.ActionCancel,
			Old:         map[string]interface{}{"status": from},
			New:         map[string]interface{}{"status": next},
			PerformedBy: actor.ID(),
		})
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}
