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

package workflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/hostelgate/hostelgate/internal/models"
	"github.com/hostelgate/hostelgate/internal/types"
)

// MinReasonLength is the shortest leave or rejection reason accepted
const MinReasonLength = 10

// Allocatable checks that a room can take one more student who has no active allocation
func Allocatable(room models.Room, studentHasActive bool) error {
	if studentHasActive {
		return types.NewPreconditionFailedError("student already has an active allocation")
	}
	if room.Status == models.RoomMaintenance {
		return types.NewPreconditionFailedError(fmt.Sprintf("room %s is under maintenance", room.RoomNumber))
	}
	if room.CurrentOccupancy >= room.Capacity {
		return types.NewPreconditionFailedError(
			fmt.Sprintf("room %s is full (%d/%d)", room.RoomNumber, room.CurrentOccupancy, room.Capacity))
	}
	return nil
}

// AllocationVacate checks ACTIVE to VACATED; VACATED is terminal
func AllocationVacate(from models.AllocationStatus) (models.AllocationStatus, error) {
	if from != models.AllocationActive {
		return from, types.NewInvalidTransitionError(models.EntityAllocation, string(from), string(models.AllocationVacated))
	}
	return models.AllocationVacated, nil
}

// AllocationTransfer checks that an allocation can move to another room
func AllocationTransfer(a models.Allocation, target models.Room) error {
	if a.Status != models.AllocationActive {
		return types.NewPreconditionFailedError(fmt.Sprintf("only ACTIVE allocations can be transferred, current status is %s", a.Status))
	}
	if a.RoomID == target.ID {
		return types.NewPreconditionFailedError("allocation is already in that room")
	}
	return Allocatable(target, false)
}

// RoomCapacity checks a capacity change against the current occupancy
func RoomCapacity(room models.Room, capacity int) error {
	if capacity <= 0 {
		return types.NewValidationError(map[string]string{"capacity": "Capacity must be greater than 0"})
	}
	if capacity < room.CurrentOccupancy {
		return types.NewPreconditionFailedError(
			fmt.Sprintf("capacity %d is below the current occupancy %d", capacity, room.CurrentOccupancy))
	}
	return nil
}

// LeaveRequest checks a new leave request
func LeaveRequest(start, end time.Time, reason string) error {
	fields := map[string]string{}
	if !end.After(start) {
		fields["endTime"] = "End time must be after start time"
	}
	if len(strings.TrimSpace(reason)) < MinReasonLength {
		fields["reason"] = fmt.Sprintf("Reason must be at least %d characters", MinReasonLength)
	}
	if len(fields) > 0 {
		return types.NewValidationError(fields)
	}
	return nil
}

// LeaveDecision checks PENDING to APPROVED or REJECTED. Rejection requires a reason.
func LeaveDecision(from, to models.LeaveStatus, reason string) (models.LeaveStatus, error) {
	if to != models.LeaveApproved && to != models.LeaveRejected {
		return from, types.NewBadRequestError(fmt.Sprintf("unknown leave decision: %s", to))
	}
	if from != models.LeavePending {
		return from, types.NewInvalidTransitionError(models.EntityLeave, string(from), string(to))
	}
	if to == models.LeaveRejected && len(strings.TrimSpace(reason)) < MinReasonLength {
		return from, types.NewPreconditionFailedError(
			fmt.Sprintf("rejection reason must be at least %d characters", MinReasonLength))
	}
	return to, nil
}

// ClearanceUpdate checks that the checklist is still open
func ClearanceUpdate(from models.ClearanceStatus) error {
	if from != models.ClearanceInitiated {
		return types.NewPreconditionFailedError(fmt.Sprintf("clearance is %s and can no longer be changed", from))
	}
	return nil
}

// ClearanceComplete checks INITIATED to COMPLETED with every item done and no dues outstanding
func ClearanceComplete(c models.ExitClearance, outstandingFees int64) (models.ClearanceStatus, error) {
	if c.Status != models.ClearanceInitiated {
		return c.Status, types.NewInvalidTransitionError(models.EntityClearance, string(c.Status), string(models.ClearanceCompleted))
	}
	var missing []string
	if !c.RoomInspected {
		missing = append(missing, "roomInspected")
	}
	if !c.KeyReturned {
		missing = append(missing, "keyReturned")
	}
	if !c.DocumentsReturned {
		missing = append(missing, "documentsReturned")
	}
	if len(missing) > 0 {
		return c.Status, types.NewPreconditionFailedError(
			fmt.Sprintf("clearance items outstanding: %s", strings.Join(missing, ", ")))
	}
	if outstandingFees > 0 {
		return c.Status, types.NewPreconditionFailedError(
			fmt.Sprintf("student has %d unpaid fee(s)", outstandingFees))
	}
	return models.ClearanceCompleted, nil
}

// ClearanceCancel checks INITIATED to CANCELLED
func ClearanceCancel(from models.ClearanceStatus) (models.ClearanceStatus, error) {
	if from != models.ClearanceInitiated {
		return from, types.NewInvalidTransitionError(models.EntityClearance, string(from), string(models.ClearanceCancelled))
	}
	return models.ClearanceCancelled, nil
}
