// allocations.go
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
	"errors"
	"fmt"

	"github.com/hostelgate/hostelgate/internal/metrics"
	"github.com/hostelgate/hostelgate/internal/models"
	"github.com/hostelgate/hostelgate/internal/types"
	"github.com/hostelgate/hostelgate/internal/workflow"
	"gorm.io/gorm"
)

// AllocateInput assigns a student to a room
type AllocateInput struct {
	StudentID string `json:"studentId"`
	RoomID    string `json:"roomId"`
}

// AllocationFilter narrows an allocation listing
type AllocationFilter struct {
	Status    models.AllocationStatus
	StudentID string
	RoomID    string
	Vertical  models.Vertical
}

func allocationSnapshot(a *models.Allocation) map[string]interface{} {
	return map[string]interface{}{
		"status":    a.Status,
		"roomId":    a.RoomID,
		"studentId": a.StudentID,
		"vacatedAt": a.VacatedAt,
	}
}

// lockStudent serializes allocation changes per student by locking the student's user row
func lockStudent(tx *gorm.DB, studentID string) (*models.User, error) {
	var student models.User
	if err := findForUpdate(tx, &student, "Student", studentID); err != nil {
		return nil, err
	}
	if student.Role != models.RoleStudent {
		return nil, types.NewPreconditionFailedError(fmt.Sprintf("user %s is not a student", studentID))
	}
	if !student.Active {
		return nil, types.NewPreconditionFailedError(fmt.Sprintf("student %s is inactive", studentID))
	}
	return &student, nil
}

func hasActiveAllocation(tx *gorm.DB, studentID string) (bool, error) {
	var n int64
	if err := tx.Model(&models.Allocation{}).
		Where("student_id = ? AND status = ?", studentID, models.AllocationActive).
		Count(&n).Error; err != nil {
		return false, fmt.Errorf("failed to check active allocations: %w", err)
	}
	return n > 0, nil
}

// Allocate places a student in a room. The room must have space and the student no active allocation.
func Allocate(db *gorm.DB, in AllocateInput, actor *Actor) (*models.Allocation, error) {
	fields := map[string]string{}
	if in.StudentID == "" {
		fields["studentId"] = "Student is required"
	}
	if in.RoomID == "" {
		fields["roomId"] = "Room is required"
	}
	if len(fields) > 0 {
		return nil, types.NewValidationError(fields)
	}

	var alloc models.Allocation
	err := db.Transaction(func(tx *gorm.DB) error {
		student, err := lockStudent(tx, in.StudentID)
		if err != nil {
			return err
		}
		active, err := hasActiveAllocation(tx, student.ID)
		if err != nil {
			return err
		}

		var room models.Room
		if err := findForUpdate(tx, &room, "Room", in.RoomID); err != nil {
			return err
		}
		if err := workflow.Allocatable(room, active); err != nil {
			return err
		}
		if student.Vertical != nil && *student.Vertical != room.Vertical {
			return types.NewPreconditionFailedError(
				fmt.Sprintf("room %s belongs to %s, student is in %s", room.RoomNumber, room.Vertical, *student.Vertical))
		}

		if err := incrementOccupancy(tx, &room); err != nil {
			return err
		}

		alloc = models.Allocation{
			StudentID:   student.ID,
			RoomID:      room.ID,
			Status:      models.AllocationActive,
			AllocatedAt: now(),
			AllocatedBy: actor.ID(),
		}
		if err := tx.Create(&alloc).Error; err != nil {
			return fmt.Errorf("failed to create allocation: %w", err)
		}
		alloc.Room = &room

		return WriteAudit(tx, AuditEntry{
			EntityType:  models.EntityAllocation,
			EntityID:    alloc.ID,
			Action:      models.ActionCreate,
			New:         allocationSnapshot(&alloc),
			PerformedBy: actor.ID(),
			Metadata: map[string]interface{}{
				"room_number":  room.RoomNumber,
				"student_name": student.Name,
				"occupancy":    room.CurrentOccupancy,
				"capacity":     room.Capacity,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.Allocations.WithLabelValues("allocate").Inc()
	return &alloc, nil
}

// Vacate ends an ACTIVE allocation and frees its place. An open exit clearance must be finished first.
func Vacate(db *gorm.DB, id string, actor *Actor) (*models.Allocation, error) {
	var alloc models.Allocation
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := findForUpdate(tx, &alloc, "Allocation", id); err != nil {
			return err
		}
		open, err := openClearanceID(tx, alloc.ID)
		if err != nil {
			return err
		}
		if open != "" {
			return types.NewPreconditionFailedError(
				fmt.Sprintf("exit clearance %s is in progress, complete or cancel it first", open))
		}
		return vacateInTx(tx, id, &alloc, actor, nil)
	})
	if err != nil {
		return nil, err
	}

	metrics.Allocations.WithLabelValues("vacate").Inc()
	return &alloc, nil
}

func vacateInTx(tx *gorm.DB, id string, alloc *models.Allocation, actor *Actor, metadata map[string]interface{}) error {
	if err := findForUpdate(tx, alloc, "Allocation", id); err != nil {
		return err
	}
	before := allocationSnapshot(alloc)
	next, err := workflow.AllocationVacate(alloc.Status)
	if err != nil {
		return err
	}

	vacatedAt := now()
	result := tx.Model(&models.Allocation{}).
		Where("id = ? AND status = ?", alloc.ID, models.AllocationActive).
		Updates(map[string]interface{}{"status": next, "vacated_at": vacatedAt})
	if result.Error != nil {
		return fmt.Errorf("failed to vacate allocation: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return types.NewInvalidTransitionError(models.EntityAllocation, string(models.AllocationVacated), string(next))
	}
	alloc.Status = next
	alloc.VacatedAt = &vacatedAt

	var room models.Room
	if err := findForUpdate(tx, &room, "Room", alloc.RoomID); err != nil {
		return err
	}
	if err := decrementOccupancy(tx, &room); err != nil {
		return err
	}
	alloc.Room = &room

	meta := map[string]interface{}{
		"room_number": room.RoomNumber,
		"occupancy":   room.CurrentOccupancy,
		"capacity":    room.Capacity,
	}
	for k, v := range metadata {
		meta[k] = v
	}
	return WriteAudit(tx, AuditEntry{
		EntityType:  models.EntityAllocation,
		EntityID:    alloc.ID,
		Action:      models.ActionVacate,
		Old:         before,
		New:         allocationSnapshot(alloc),
		PerformedBy: actor.ID(),
		Metadata:    meta,
	})
}

// Transfer moves an ACTIVE allocation to another room in one step
func Transfer(db *gorm.DB, id, roomID string, actor *Actor) (*models.Allocation, error) {
	if roomID == "" {
		return nil, types.NewValidationError(map[string]string{"roomId": "Room is required"})
	}

	var alloc models.Allocation
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := findForUpdate(tx, &alloc, "Allocation", id); err != nil {
			return err
		}
		student, err := lockStudent(tx, alloc.StudentID)
		if err != nil {
			return err
		}
		before := allocationSnapshot(&alloc)

		var from, to models.Room
		if err := lockRoomPair(tx, &from, alloc.RoomID, &to, roomID); err != nil {
			return err
		}
		if err := workflow.AllocationTransfer(alloc, to); err != nil {
			return err
		}
		if student.Vertical != nil && *student.Vertical != to.Vertical {
			return types.NewPreconditionFailedError(
				fmt.Sprintf("room %s belongs to %s, student is in %s", to.RoomNumber, to.Vertical, *student.Vertical))
		}

		if err := incrementOccupancy(tx, &to); err != nil {
			return err
		}
		if err := decrementOccupancy(tx, &from); err != nil {
			return err
		}

		result := tx.Model(&models.Allocation{}).
			Where("id = ? AND status = ? AND room_id = ?", alloc.ID, models.AllocationActive, from.ID).
			Update("room_id", to.ID)
		if result.Error != nil {
			return fmt.Errorf("failed to transfer allocation: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return types.NewConflictError("allocation changed during transfer, retry")
		}
		alloc.RoomID = to.ID
		alloc.Room = &to

		return WriteAudit(tx, AuditEntry{
			EntityType:  models.EntityAllocation,
			EntityID:    alloc.ID,
			Action:      models.ActionTransfer,
			Old:         before,
			New:         allocationSnapshot(&alloc),
			PerformedBy: actor.ID(),
			Metadata: map[string]interface{}{
				"from_room_number": from.RoomNumber,
				"to_room_number":   to.RoomNumber,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.Allocations.WithLabelValues("transfer").Inc()
	return &alloc, nil
}

// lockRoomPair locks two rooms in id order so opposite transfers cannot deadlock
func lockRoomPair(tx *gorm.DB, from *models.Room, fromID string, to *models.Room, toID string) error {
	if fromID == toID {
		if err := findForUpdate(tx, from, "Room", fromID); err != nil {
			return err
		}
		*to = *from
		return nil
	}
	first, firstID, second, secondID := from, fromID, to, toID
	if toID < fromID {
		first, firstID, second, secondID = to, toID, from, fromID
	}
	if err := findForUpdate(tx, first, "Room", firstID); err != nil {
		return err
	}
	return findForUpdate(tx, second, "Room", secondID)
}

// GetAllocation loads an allocation with its room
func GetAllocation(db *gorm.DB, id string) (*models.Allocation, error) {
	var alloc models.Allocation
	if err := db.Preload("Room").Where("id = ?", id).First(&alloc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewNotFoundError("Allocation", id)
		}
		return nil, err
	}
	return &alloc, nil
}

// ListAllocations returns one page of allocations, newest first
func ListAllocations(db *gorm.DB, filter AllocationFilter, page Page) ([]models.Allocation, int64, error) {
	page = page.Normalize()

	q := db.Model(&models.Allocation{})
	if filter.Status != "" {
		q = q.Where("allocations.status = ?", filter.Status)
	}
	if filter.StudentID != "" {
		q = q.Where("allocations.student_id = ?", filter.StudentID)
	}
	if filter.RoomID != "" {
		q = q.Where("allocations.room_id = ?", filter.RoomID)
	}
	if filter.Vertical != "" {
		q = q.Joins("JOIN rooms ON rooms.id = allocations.room_id").Where("rooms.vertical = ?", filter.Vertical)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count allocations: %w", err)
	}

	var allocs []models.Allocation
	if err := q.Preload("Room").
		Order("allocations.allocated_at DESC").
		Offset(page.Offset()).Limit(page.Limit).
		Find(&allocs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list allocations: %w", err)
	}
	return allocs, total, nil
}
