// jobs_test.go
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

package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/hostelgate/hostelgate/internal/models"
	"github.com/hostelgate/hostelgate/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewRejectsBadSchedule(t *testing.T) {
	db := testutil.NewDB(t)
	_, err := New(db, &testutil.Recorder{}, zap.NewNop(), Schedules{FeeSweep: "every tuesday"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), FeeSweep)

	s, err := New(db, &testutil.Recorder{}, zap.NewNop(), Schedules{})
	require.NoError(t, err)
	assert.Empty(t, s.cron.Entries(), "empty schedules disable jobs")
}

func TestRunFeeSweep(t *testing.T) {
	db := testutil.NewDB(t)
	student := testutil.CreateUser(t, db, models.RoleStudent)
	late := testutil.CreateFee(t, db, student.ID, "1500.00", time.Now().UTC().AddDate(0, 0, -2), models.FeePending)
	current := testutil.CreateFee(t, db, student.ID, "1500.00", time.Now().UTC().AddDate(0, 0, 10), models.FeePending)
	paid := testutil.CreateFee(t, db, student.ID, "900.00", time.Now().UTC().AddDate(0, 0, -5), models.FeePaid)

	s, err := New(db, &testutil.Recorder{}, zap.NewNop(), Schedules{FeeSweep: "@daily"})
	require.NoError(t, err)

	n, err := s.Run(FeeSweep)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	status := func(id string) models.FeeStatus {
		var f models.Fee
		require.NoError(t, db.First(&f, "id = ?", id).Error)
		return f.Status
	}
	assert.Equal(t, models.FeeOverdue, status(late.ID))
	assert.Equal(t, models.FeePending, status(current.ID))
	assert.Equal(t, models.FeePaid, status(paid.ID))

	n, err = s.Run(FeeSweep)
	require.NoError(t, err)
	assert.Zero(t, n, "a second sweep has nothing left to mark")
}

func TestRunRenewalReminders(t *testing.T) {
	db := testutil.NewDB(t)
	room := testutil.CreateRoom(t, db, "B-12", models.VerticalBoysHostel, 3, 2)
	overdue := testutil.CreateUser(t, db, models.RoleStudent)
	fresh := testutil.CreateUser(t, db, models.RoleStudent)
	testutil.CreateAllocation(t, db, overdue.ID, room.ID, time.Now().UTC().AddDate(0, -8, 0))
	testutil.CreateAllocation(t, db, fresh.ID, room.ID, time.Now().UTC().AddDate(0, -1, 0))

	notifier := &testutil.Recorder{}
	s, err := New(db, notifier, zap.NewNop(), Schedules{})
	require.NoError(t, err)

	n, err := s.Run(RenewalReminders)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	msg, ok := notifier.Last()
	require.True(t, ok)
	assert.Equal(t, overdue.Email, msg.To)
	assert.Contains(t, msg.Body, "overdue")
}

func TestRunUnknownJob(t *testing.T) {
	s, err := New(testutil.NewDB(t), &testutil.Recorder{}, zap.NewNop(), Schedules{})
	require.NoError(t, err)
	_, err = s.Run("compact_everything")
	assert.Error(t, err)
}

func TestStartStop(t *testing.T) {
	s, err := New(testutil.NewDB(t), &testutil.Recorder{}, zap.NewNop(), Schedules{FeeSweep: "@hourly"})
	require.NoError(t, err)
	s.Start()
	assert.Len(t, s.cron.Entries(), 1)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
