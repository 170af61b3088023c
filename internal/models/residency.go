// residency.go
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

package models

import (
	"time"
)

// Room is a bookable room in one vertical
type Room struct {
	ID               string     `json:"id" gorm:"type:char(36);primaryKey"`
	RoomNumber       string     `json:"roomNumber" gorm:"size:32;uniqueIndex;not null"`
	Vertical         Vertical   `json:"vertical" gorm:"size:32;not null;index"`
	Floor            int        `json:"floor" gorm:"not null;default:0"`
	Capacity         int        `json:"capacity" gorm:"not null"`
	CurrentOccupancy int        `json:"currentOccupancy" gorm:"not null;default:0"`
	Status           RoomStatus `json:"status" gorm:"size:16;not null;index"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// DerivedStatus computes AVAILABLE or FULL from occupancy. MAINTENANCE is sticky.
func (r Room) DerivedStatus() RoomStatus {
	if r.Status == RoomMaintenance {
		return RoomMaintenance
	}
	if r.CurrentOccupancy >= r.Capacity {
		return RoomFull
	}
	return RoomAvailable
}

// Allocation assigns a student to a room until vacated
type Allocation struct {
	ID          string           `json:"id" gorm:"type:char(36);primaryKey"`
	StudentID   string           `json:"studentId" gorm:"type:char(36);not null;index"`
	RoomID      string           `json:"roomId" gorm:"type:char(36);not null;index"`
	Status      AllocationStatus `json:"status" gorm:"size:16;not null;index"`
	AllocatedAt time.Time        `json:"allocatedAt" gorm:"not null"`
	VacatedAt   *time.Time       `json:"vacatedAt,omitempty"`
	AllocatedBy *string          `json:"allocatedBy,omitempty" gorm:"type:char(36)"`
	Room        *Room            `json:"room,omitempty" gorm:"foreignKey:RoomID"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// Leave is a student's request to be away from the premises
type Leave struct {
	ID               string      `json:"id" gorm:"type:char(36);primaryKey"`
	StudentID        string      `json:"studentId" gorm:"type:char(36);not null;index"`
	Type             LeaveType   `json:"type" gorm:"size:16;not null"`
	StartTime        time.Time   `json:"startTime" gorm:"not null"`
	EndTime          time.Time   `json:"endTime" gorm:"not null"`
	Reason           string      `json:"reason" gorm:"type:text;not null"`
	Status           LeaveStatus `json:"status" gorm:"size:16;not null;index"`
	RejectionReason  *string     `json:"rejectionReason,omitempty" gorm:"type:text"`
	DecidedBy        *string     `json:"decidedBy,omitempty" gorm:"type:char(36)"`
	DecidedAt        *time.Time  `json:"decidedAt,omitempty"`
	ParentNotifiedAt *time.Time  `json:"parentNotifiedAt,omitempty"`
	CreatedAt        time.Time   `json:"createdAt"`
	UpdatedAt        time.Time   `json:"updatedAt"`
}

// ExitClearance is the checklist completed before a student's departure is final
type ExitClearance struct {
	ID                string          `json:"id" gorm:"type:char(36);primaryKey"`
	AllocationID      string          `json:"allocationId" gorm:"type:char(36);not null;index"`
	StudentID         string          `json:"studentId" gorm:"type:char(36);not null;index"`
	Status            ClearanceStatus `json:"status" gorm:"size:16;not null;index"`
	RoomInspected     bool            `json:"roomInspected" gorm:"not null;default:false"`
	KeyReturned       bool            `json:"keyReturned" gorm:"not null;default:false"`
	DocumentsReturned bool            `json:"documentsReturned" gorm:"not null;default:false"`
	Remarks           string          `json:"remarks,omitempty" gorm:"type:text"`
	InitiatedBy       *string         `json:"initiatedBy,omitempty" gorm:"type:char(36)"`
	CompletedAt       *time.Time      `json:"completedAt,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// TableName overrides the table name for Room
func (Room) TableName() string {
	return "rooms"
}

// TableName overrides the table name for Allocation
func (Allocation) TableName() string {
	return "allocations"
}

// TableName overrides the table name for Leave
func (Leave) TableName() string {
	return "leaves"
}

// TableName overrides the table name for ExitClearance
func (ExitClearance) TableName() string {
	return "exit_clearances"
}
