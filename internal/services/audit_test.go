// audit_test.go
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
	"testing"
	"time"

	"github.com/hostelgate/hostelgate/internal/models"
	"github.com/hostelgate/hostelgate/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestWriteAuditRollsBackWithMutation(t *testing.T) {
	db := testutil.NewDB(t)
	boom := errors.New("boom")

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := WriteAudit(tx, AuditEntry{
			EntityType: models.EntityRoom,
			EntityID:   "room-1",
			Action:     models.ActionUpdate,
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Empty(t, testutil.AuditActions(t, db, models.EntityRoom, "room-1"))
}

func TestEntityHistoryAndAuditListing(t *testing.T) {
	db := testutil.NewDB(t)
	admin := actorFor(testutil.CreateUser(t, db, models.RoleAdmin))
	room := testutil.CreateRoom(t, db, "G-7", models.VerticalGirlsAshram, 2, 0)
	student := testutil.CreateUser(t, db, models.RoleStudent, testutil.WithVertical(models.VerticalGirlsAshram))

	freezeClock(t, time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	alloc, err := Allocate(db, AllocateInput{StudentID: student.ID, RoomID: room.ID}, admin)
	require.NoError(t, err)
	freezeClock(t, time.Date(2025, 6, 20, 9, 0, 0, 0, time.UTC))
	_, err = Vacate(db, alloc.ID, admin)
	require.NoError(t, err)

	history, err := GetEntityHistory(db, models.EntityAllocation, alloc.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.ActionCreate, history[0].Action)
	assert.True(t, history[0].OldValue.IsEmpty())
	assert.False(t, history[0].NewValue.IsEmpty())
	assert.Equal(t, models.ActionVacate, history[1].Action)
	require.NotNil(t, history[1].PerformedBy)
	assert.Equal(t, admin.UserID, *history[1].PerformedBy)

	none, err := GetEntityHistory(db, models.EntityAllocation, "missing")
	require.NoError(t, err)
	assert.Empty(t, none)

	logs, total, err := ListAuditLogs(db, AuditFilter{EntityType: models.EntityAllocation}, Page{Page: 1, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, logs, 1)
	assert.Equal(t, models.ActionVacate, logs[0].Action, "newest first")

	logs, total, err = ListAuditLogs(db, AuditFilter{Action: models.ActionVacate, PerformedBy: admin.UserID}, Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, logs, 1)
	assert.Equal(t, alloc.ID, logs[0].EntityID)
}
