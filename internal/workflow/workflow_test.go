// workflow_test.go
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
	"testing"
	"time"

	"github.com/hostelgate/hostelgate/internal/models"
	"github.com/hostelgate/hostelgate/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplicationTransitionTable(t *testing.T) {
	tests := []struct {
		from models.ApplicationStatus
		to   models.ApplicationStatus
		ok   bool
	}{
		{models.ApplicationDraft, models.ApplicationSubmitted, true},
		{models.ApplicationDraft, models.ApplicationReview, false},
		{models.ApplicationSubmitted, models.ApplicationReview, true},
		{models.ApplicationSubmitted, models.ApplicationInterview, true},
		{models.ApplicationSubmitted, models.ApplicationApproved, false},
		{models.ApplicationReview, models.ApplicationApproved, true},
		{models.ApplicationReview, models.ApplicationRejected, true},
		{models.ApplicationInterview, models.ApplicationApproved, true},
		{models.ApplicationInterview, models.ApplicationReview, false},
		{models.ApplicationApproved, models.ApplicationRejected, false},
		{models.ApplicationApproved, models.ApplicationArchived, true},
		{models.ApplicationRejected, models.ApplicationArchived, true},
		{models.ApplicationArchived, models.ApplicationArchived, false},
		{models.ApplicationArchived, models.ApplicationDraft, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			next, err := ApplicationTransition(tt.from, tt.to)
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, tt.to, next)
				return
			}
			require.Error(t, err)
			assert.True(t, types.IsType(err, types.TypeInvalidTransition))
			assert.Equal(t, tt.from, next)
		})
	}
}

func TestApplicationSubmitEchoesStatus(t *testing.T) {
	next, err := ApplicationSubmit(models.ApplicationDraft)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationSubmitted, next)

	_, err = ApplicationSubmit(models.ApplicationSubmitted)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SUBMITTED")
	ce, ok := types.AsCustomError(err)
	require.True(t, ok)
	assert.Equal(t, "SUBMITTED", ce.Details.(map[string]string)["currentStatus"])
}

func TestApplicationReviewStepRejectsSubmitAndUnknown(t *testing.T) {
	_, err := ApplicationReviewStep(models.ApplicationDraft, models.ApplicationSubmitted)
	assert.True(t, types.IsType(err, types.TypeInvalidTransition))

	_, err = ApplicationReviewStep(models.ApplicationReview, "PENDING")
	assert.True(t, types.IsType(err, types.TypeValidation))

	next, err := ApplicationReviewStep(models.ApplicationReview, models.ApplicationApproved)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationApproved, next)
}

func TestApplicationEditable(t *testing.T) {
	assert.NoError(t, ApplicationEditable(models.ApplicationDraft))
	err := ApplicationEditable(models.ApplicationSubmitted)
	assert.True(t, types.IsType(err, types.TypePreconditionFailed))
}

func TestInterviewSchedulable(t *testing.T) {
	next, err := InterviewSchedulable(models.ApplicationReview)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationInterview, next)

	_, err = InterviewSchedulable(models.ApplicationDraft)
	assert.True(t, types.IsType(err, types.TypePreconditionFailed))
}

func TestAllocatable(t *testing.T) {
	room := models.Room{RoomNumber: "B-101", Capacity: 3, CurrentOccupancy: 2, Status: models.RoomAvailable}
	assert.NoError(t, Allocatable(room, false))

	err := Allocatable(room, true)
	assert.True(t, types.IsType(err, types.TypePreconditionFailed))

	room.CurrentOccupancy = 3
	err = Allocatable(room, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "full")

	room.CurrentOccupancy = 0
	room.Status = models.RoomMaintenance
	assert.Error(t, Allocatable(room, false))
}

func TestAllocationVacateIsTerminal(t *testing.T) {
	next, err := AllocationVacate(models.AllocationActive)
	require.NoError(t, err)
	assert.Equal(t, models.AllocationVacated, next)

	_, err = AllocationVacate(models.AllocationVacated)
	assert.True(t, types.IsType(err, types.TypeInvalidTransition))
}

func TestRoomDerivedStatus(t *testing.T) {
	room := models.Room{Capacity: 2, CurrentOccupancy: 1, Status: models.RoomAvailable}
	assert.Equal(t, models.RoomAvailable, room.DerivedStatus())
	room.CurrentOccupancy = 2
	assert.Equal(t, models.RoomFull, room.DerivedStatus())
	room.Status = models.RoomMaintenance
	assert.Equal(t, models.RoomMaintenance, room.DerivedStatus())
}

func TestRoomCapacity(t *testing.T) {
	room := models.Room{Capacity: 3, CurrentOccupancy: 2}
	assert.NoError(t, RoomCapacity(room, 2))
	assert.True(t, types.IsType(RoomCapacity(room, 1), types.TypePreconditionFailed))
	assert.True(t, types.IsType(RoomCapacity(room, 0), types.TypeValidation))
}

func TestLeaveRequest(t *testing.T) {
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	assert.NoError(t, LeaveRequest(start, start.Add(48*time.Hour), "Visiting family for a wedding"))

	err := LeaveRequest(start, start, "short")
	ce, ok := types.AsCustomError(err)
	require.True(t, ok)
	fields := ce.Details.(map[string]string)
	assert.Contains(t, fields, "endTime")
	assert.Contains(t, fields, "reason")
}

func TestLeaveDecision(t *testing.T) {
	next, err := LeaveDecision(models.LeavePending, models.LeaveApproved, "")
	require.NoError(t, err)
	assert.Equal(t, models.LeaveApproved, next)

	_, err = LeaveDecision(models.LeavePending, models.LeaveRejected, "too short")
	assert.True(t, types.IsType(err, types.TypePreconditionFailed))

	next, err = LeaveDecision(models.LeavePending, models.LeaveRejected, "Exams are scheduled that week")
	require.NoError(t, err)
	assert.Equal(t, models.LeaveRejected, next)

	_, err = LeaveDecision(models.LeaveApproved, models.LeaveRejected, "Exams are scheduled that week")
	assert.True(t, types.IsType(err, types.TypeInvalidTransition))
	_, err = LeaveDecision(models.LeaveRejected, models.LeaveApproved, "")
	assert.True(t, types.IsType(err, types.TypeInvalidTransition))
}

func TestInterviewComplete(t *testing.T) {
	score := func(v int) *int { return &v }

	next, err := InterviewComplete(models.InterviewScheduled, score(85), "Strong candidate")
	require.NoError(t, err)
	assert.Equal(t, models.InterviewCompleted, next)

	for _, bad := range []int{-1, 101} {
		_, err = InterviewComplete(models.InterviewScheduled, score(bad), "Remarks")
		assert.True(t, types.IsType(err, types.TypeValidation), "score %d", bad)
	}

	_, err = InterviewComplete(models.InterviewScheduled, nil, "Remarks")
	assert.Error(t, err)
	_, err = InterviewComplete(models.InterviewScheduled, score(50), "  ")
	assert.Error(t, err)

	_, err = InterviewComplete(models.InterviewCompleted, score(85), "Again")
	assert.True(t, types.IsType(err, types.TypeInvalidTransition))

	_, err = InterviewCancel(models.InterviewCompleted)
	assert.True(t, types.IsType(err, types.TypeInvalidTransition))
}

func TestFeePayable(t *testing.T) {
	fee := models.Fee{Amount: decimal.RequireFromString("1500.00"), Status: models.FeePending}
	assert.NoError(t, FeePayable(fee, decimal.RequireFromString("1500")))

	err := FeePayable(fee, decimal.RequireFromString("1499.99"))
	assert.True(t, types.IsType(err, types.TypePreconditionFailed))

	fee.Status = models.FeeOverdue
	assert.NoError(t, FeePayable(fee, fee.Amount))

	fee.Status = models.FeePaid
	err = FeePayable(fee, fee.Amount)
	assert.True(t, types.IsType(err, types.TypeInvalidTransition))
}

func TestFeeOverdueAndTransactionSettle(t *testing.T) {
	next, err := FeeOverdue(models.FeePending)
	require.NoError(t, err)
	assert.Equal(t, models.FeeOverdue, next)
	_, err = FeeOverdue(models.FeePaid)
	assert.Error(t, err)

	ts, err := TransactionSettle(models.TransactionPending, models.TransactionFailed)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionFailed, ts)
	_, err = TransactionSettle(models.TransactionSuccess, models.TransactionSuccess)
	assert.True(t, types.IsType(err, types.TypeInvalidTransition))
}

func TestClearanceComplete(t *testing.T) {
	c := models.ExitClearance{Status: models.ClearanceInitiated, RoomInspected: true, KeyReturned: true}
	_, err := ClearanceComplete(c, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "documentsReturned")

	c.DocumentsReturned = true
	_, err = ClearanceComplete(c, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unpaid")

	next, err := ClearanceComplete(c, 0)
	require.NoError(t, err)
	assert.Equal(t, models.ClearanceCompleted, next)

	c.Status = models.ClearanceCompleted
	_, err = ClearanceComplete(c, 0)
	assert.True(t, types.IsType(err, types.TypeInvalidTransition))
	assert.Error(t, ClearanceUpdate(c.Status))
}
