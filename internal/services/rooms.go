// rooms.go
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
	"strings"

	"github.com/hostelgate/hostelgate/internal/models"
	"github.com/hostelgate/hostelgate/internal/types"
	"github.com/hostelgate/hostelgate/internal/validation"
	"github.com/hostelgate/hostelgate/internal/workflow"
	"gorm.io/gorm"
)

// RoomInput creates or updates a room. Nil pointers leave a field unchanged on update.
type RoomInput struct {
	RoomNumber  string          `json:"roomNumber"`
	Vertical    models.Vertical `json:"vertical"`
	Floor       *int            `json:"floor,omitempty"`
	Capacity    *int            `json:"capacity,omitempty"`
	Maintenance *bool           `json:"maintenance,omitempty"`
}

// RoomFilter narrows a room listing
type RoomFilter struct {
	Vertical      models.Vertical
	Status        models.RoomStatus
	AvailableOnly bool
}

var roomSchema = validation.Schema{
	{Name: "roomNumber", Rules: []validation.Rule{validation.Required("Room number is required")}},
	{Name: "vertical", Rules: []validation.Rule{
		validation.Required("Vertical is required"),
		validation.Custom(validation.ValidVertical, "Vertical must be one of BOYS_HOSTEL, GIRLS_ASHRAM, DHARAMSHALA"),
	}},
	{Name: "capacity", Rules: []validation.Rule{
		validation.Required("Capacity is required"),
		validation.Custom(func(v interface{}) bool {
			n, ok := v.(int)
			return ok && n > 0
		}, "Capacity must be greater than 0"),
	}},
}

// CreateRoom adds a room with no occupants
func CreateRoom(db *gorm.DB, in RoomInput, actor *Actor) (*models.Room, error) {
	values := map[string]interface{}{
		"roomNumber": in.RoomNumber,
		"vertical":   string(in.Vertical),
	}
	if in.Capacity != nil {
		values["capacity"] = *in.Capacity
	}
	if err := validation.Check(roomSchema, values); err != nil {
		return nil, err
	}

	room := models.Room{
		RoomNumber: strings.ToUpper(strings.TrimSpace(in.RoomNumber)),
		Vertical:   in.Vertical,
		Capacity:   *in.Capacity,
		Status:     models.RoomAvailable,
	}
	if in.Floor != nil {
		room.Floor = *in.Floor
	}
	if in.Maintenance != nil && *in.Maintenance {
		room.Status = models.RoomMaintenance
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.Room{}).Where("room_number = ?", room.RoomNumber).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return types.NewConflictError(fmt.Sprintf("room %s already exists", room.RoomNumber))
		}
		if err := tx.Create(&room).Error; err != nil {
			return fmt.Errorf("failed to create room: %w", err)
		}
		return WriteAudit(tx, AuditEntry{
			EntityType:  models.EntityRoom,
			EntityID:    room.ID,
			Action:      models.ActionCreate,
			New:         room,
			PerformedBy: actor.ID(),
			Metadata:    map[string]interface{}{"room_number": room.RoomNumber},
		})
	})
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// UpdateRoom changes floor, capacity or maintenance state. Capacity never drops below occupancy.
func UpdateRoom(db *gorm.DB, id string, in RoomInput, actor *Actor) (*models.Room, error) {
	var room models.Room
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := findForUpdate(tx, &room, "Room", id); err != nil {
			return err
		}
		before := room

		if in.Capacity != nil {
			if err := workflow.RoomCapacity(room, *in.Capacity); err != nil {
				return err
			}
			room.Capacity = *in.Capacity
		}
		if in.Floor != nil {
			room.Floor = *in.Floor
		}
		if in.Maintenance != nil {
			if *in.Maintenance {
				room.Status = models.RoomMaintenance
			} else {
				room.Status = models.RoomAvailable
			}
		}
		room.Status = room.DerivedStatus()

		result := tx.Model(&models.Room{}).
			Where("id = ? AND current_occupancy <= ?", room.ID, room.Capacity).
			Updates(map[string]interface{}{
				"capacity": room.Capacity,
				"floor":    room.Floor,
				"status":   room.Status,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update room: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return types.NewConflictError("room occupancy changed, retry the update")
		}

		return WriteAudit(tx, AuditEntry{
			EntityType:  models.EntityRoom,
			EntityID:    room.ID,
			Action:      models.ActionUpdate,
			Old:         before,
			New:         room,
			PerformedBy: actor.ID(),
			Metadata:    map[string]interface{}{"room_number": room.RoomNumber},
		})
	})
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// GetRoom loads a room by id
func GetRoom(db *gorm.DB, id string) (*models.Room, error) {
	var room models.Room
	if err := findByID(db, &room, "Room", id); err != nil {
		return nil, err
	}
	return &room, nil
}

// ListRooms lists rooms ordered by vertical and room number
func ListRooms(db *gorm.DB, filter RoomFilter) ([]models.Room, error) {
	q := db.Model(&models.Room{})
	if filter.Vertical != "" {
		q = q.Where("vertical = ?", filter.Vertical)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.AvailableOnly {
		q = q.Where("status = ? AND current_occupancy < capacity", models.RoomAvailable)
	}
	var rooms []models.Room
	if err := q.Order("vertical, room_number").Find(&rooms).Error; err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return rooms, nil
}

// incrementOccupancy takes one place in a room, failing when the room is full or under maintenance
func incrementOccupancy(tx *gorm.DB, room *models.Room) error {
	result := tx.Model(&models.Room{}).
		Where("id = ? AND current_occupancy < capacity AND status <> ?", room.ID, models.RoomMaintenance).
		Update("current_occupancy", gorm.Expr("current_occupancy + 1"))
	if result.Error != nil {
		return fmt.Errorf("failed to update room occupancy: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return types.NewPreconditionFailedError(fmt.Sprintf("room %s is full", room.RoomNumber))
	}
	return refreshRoom(tx, room)
}

// decrementOccupancy frees one place, never going below zero
func decrementOccupancy(tx *gorm.DB, room *models.Room) error {
	result := tx.Model(&models.Room{}).
		Where("id = ? AND current_occupancy > 0", room.ID).
		Update("current_occupancy", gorm.Expr("current_occupancy - 1"))
	if result.Error != nil {
		return fmt.Errorf("failed to update room occupancy: %w", result.Error)
	}
	return refreshRoom(tx, room)
}

// refreshRoom recomputes the derived status and reloads the row
func refreshRoom(tx *gorm.DB, room *models.Room) error {
	if err := tx.Model(&models.Room{}).
		Where("id = ? AND status <> ?", room.ID, models.RoomMaintenance).
		Update("status", gorm.Expr("CASE WHEN current_occupancy >= capacity THEN ? ELSE ? END",
			models.RoomFull, models.RoomAvailable)).Error; err != nil {
		return fmt.Errorf("failed to update room status: %w", err)
	}
	if err := tx.Where("id = ?", room.ID).First(room).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.NewNotFoundError("Room", room.ID)
		}
		return err
	}
	return nil
}
