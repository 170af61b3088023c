// dashboard_test.go
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
	"bytes"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hostelgate/hostelgate/internal/models"
	"github.com/hostelgate/hostelgate/internal/testutil"
	"github.com/hostelgate/hostelgate/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminDashboard(t *testing.T) {
	db := testutil.NewDB(t)
	admin := actorFor(testutil.CreateUser(t, db, models.RoleAdmin))
	room := testutil.CreateRoom(t, db, "B-1", models.VerticalBoysHostel, 2, 0)
	testutil.CreateRoom(t, db, "G-1", models.VerticalGirlsAshram, 3, 0)
	student := testutil.CreateUser(t, db, models.RoleStudent)

	_, err := Allocate(db, AllocateInput{StudentID: student.ID, RoomID: room.ID}, admin)
	require.NoError(t, err)
	_, err = CreateApplication(db, completeApplication(), true, nil)
	require.NoError(t, err)
	start := time.Now().UTC().Add(time.Hour)
	_, err = CreateLeave(db, LeaveInput{Type: models.LeaveHome, StartTime: start, EndTime: start.Add(time.Hour), Reason: "Visiting grandparents"}, actorFor(student))
	require.NoError(t, err)

	d, err := GetAdminDashboard(db, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), d.Applications[models.ApplicationDraft])
	assert.Equal(t, int64(0), d.Applications[models.ApplicationApproved])
	assert.Equal(t, int64(2), d.Rooms.Total)
	assert.Equal(t, int64(5), d.Rooms.Capacity)
	assert.Equal(t, int64(1), d.Rooms.Occupied)
	assert.Equal(t, int64(1), d.ActiveAllocations)
	assert.Equal(t, int64(1), d.PendingLeaves)
	assert.Equal(t, 1, d.Renewals[models.RenewalNotDue])
	assert.NotEmpty(t, d.RecentActivity)

	girls, err := GetAdminDashboard(db, models.VerticalGirlsAshram)
	require.NoError(t, err)
	assert.Equal(t, int64(1), girls.Rooms.Total)
	assert.Equal(t, int64(0), girls.ActiveAllocations)
	assert.Equal(t, int64(0), girls.PendingLeaves)
	assert.Equal(t, int64(0), girls.Applications[models.ApplicationDraft])
}

func TestAccountsDashboard(t *testing.T) {
	db := testutil.NewDB(t)
	accounts := actorFor(testutil.CreateUser(t, db, models.RoleAccounts))
	student := testutil.CreateUser(t, db, models.RoleStudent)
	paid := testutil.CreateFee(t, db, student.ID, "1000.00", time.Now().Add(time.Hour), models.FeePending)
	testutil.CreateFee(t, db, student.ID, "250.00", time.Now().Add(time.Hour), models.FeePending)

	txn, err := InitiatePayment(db, PaymentInput{FeeID: paid.ID, Amount: decimal.NewFromInt(1000), Method: models.PaymentCash}, accounts)
	require.NoError(t, err)
	_, err = VerifyPayment(db, "", VerifyPaymentInput{TransactionID: txn.ID, Status: models.TransactionSuccess, GatewayReference: "CASH-1"}, accounts)
	require.NoError(t, err)

	d, err := GetAccountsDashboard(db)
	require.NoError(t, err)
	assert.Equal(t, int64(1), d.Fees[models.FeePaid].Count)
	assert.Equal(t, int64(1), d.Fees[models.FeePending].Count)
	assert.True(t, d.Fees[models.FeePending].Amount.Equal(decimal.NewFromInt(250)), d.Fees[models.FeePending].Amount.String())
	assert.Equal(t, int64(0), d.Fees[models.FeeOverdue].Count)
	assert.True(t, d.CollectedThisMonth.Equal(decimal.NewFromInt(1000)), d.CollectedThisMonth.String())
	assert.Equal(t, int64(0), d.PendingPayments)
}

func TestTrusteeAndStudentDashboards(t *testing.T) {
	db := testutil.NewDB(t)
	admin := actorFor(testutil.CreateUser(t, db, models.RoleAdmin))
	trustee := testutil.CreateUser(t, db, models.RoleTrustee)
	app, err := CreateApplication(db, completeApplication(), true, nil)
	require.NoError(t, err)
	_, err = SubmitApplication(db, app.ID, nil)
	require.NoError(t, err)
	_, err = ScheduleInterview(db, ScheduleInterviewInput{
		ApplicationID: app.ID, TrusteeID: trustee.ID, ScheduleTime: time.Now().UTC().Add(24 * time.Hour), Mode: models.InterviewInPerson,
	}, admin)
	require.NoError(t, err)

	td, err := GetTrusteeDashboard(db, actorFor(trustee))
	require.NoError(t, err)
	assert.Len(t, td.UpcomingInterviews, 1)
	assert.Equal(t, int64(1), td.Pipeline[models.ApplicationInterview])
	assert.Equal(t, int64(0), td.Pipeline[models.ApplicationSubmitted])

	_, err = GetTrusteeDashboard(db, nil)
	assert.True(t, types.IsType(err, types.TypeUnauthorized))

	student := testutil.CreateUser(t, db, models.RoleStudent)
	room := testutil.CreateRoom(t, db, "B-5", models.VerticalBoysHostel, 2, 0)
	_, err = Allocate(db, AllocateInput{StudentID: student.ID, RoomID: room.ID}, admin)
	require.NoError(t, err)
	testutil.CreateFee(t, db, student.ID, "300.00", time.Now().Add(time.Hour), models.FeePending)
	testutil.CreateFee(t, db, student.ID, "200.00", time.Now().Add(-time.Hour), models.FeeOverdue)
	testutil.CreateFee(t, db, student.ID, "999.00", time.Now().Add(-time.Hour), models.FeePaid)

	sd, err := GetStudentDashboard(db, student.ID)
	require.NoError(t, err)
	require.NotNil(t, sd.Allocation)
	assert.Equal(t, "B-5", sd.Allocation.Room.RoomNumber)
	require.NotNil(t, sd.Renewal)
	assert.Equal(t, models.RenewalNotDue, sd.Renewal.Bucket)
	assert.Len(t, sd.OpenFees, 2)
	assert.True(t, sd.AmountDue.Equal(decimal.NewFromInt(500)), sd.AmountDue.String())

	_, err = GetStudentDashboard(db, "missing")
	assert.True(t, types.IsType(err, types.TypeNotFound))
}

func multipartFile(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })
	return form.File["file"][0]
}

func TestUploadStore(t *testing.T) {
	dir := t.TempDir()
	store := &UploadStore{Dir: dir, MaxBytes: 1024, BaseURL: "http://localhost:3000"}

	pdf := append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte("x"), 100)...)
	up, err := store.Save(multipartFile(t, "../../marksheet.pdf", pdf))
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", up.ContentType)
	assert.Equal(t, "marksheet.pdf", up.FileName)
	assert.Equal(t, int64(len(pdf)), up.Size)
	assert.True(t, strings.HasPrefix(up.Path, "/uploads/"))
	assert.Equal(t, "http://localhost:3000"+up.Path, up.URL)

	stored, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(up.Path, "/uploads/")))
	require.NoError(t, err)
	assert.Equal(t, pdf, stored)

	_, err = store.Save(multipartFile(t, "script.pdf", []byte("#!/bin/sh\necho hi\n")))
	assert.True(t, types.IsType(err, types.TypeValidation))

	_, err = store.Save(multipartFile(t, "big.pdf", append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte("x"), 2048)...)))
	assert.True(t, types.IsType(err, types.TypeValidation))

	_, err = store.Save(nil)
	assert.True(t, types.IsType(err, types.TypeValidation))
}
