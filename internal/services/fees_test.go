// fees_test.go
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
	"testing"
	"time"

	"github.com/hostelgate/hostelgate/internal/models"
	"github.com/hostelgate/hostelgate/internal/testutil"
	"github.com/hostelgate/hostelgate/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const paymentSecret = "gateway-test-secret"

func TestRaiseFees(t *testing.T) {
	db := testutil.NewDB(t)
	accounts := actorFor(testutil.CreateUser(t, db, models.RoleAccounts))
	a := testutil.CreateUser(t, db, models.RoleStudent)
	b := testutil.CreateUser(t, db, models.RoleStudent)

	fees, err := RaiseFees(db, RaiseFeeInput{
		StudentIDs: types.FlexList[string]{a.ID, b.ID, a.ID},
		Title:      "Mess fee October",
		Amount:     decimal.RequireFromString("2500.50"),
		DueDate:    time.Now().Add(30 * 24 * time.Hour),
	}, accounts)
	require.NoError(t, err)
	require.Len(t, fees, 2)
	for _, f := range fees {
		assert.Equal(t, models.FeePending, f.Status)
		assert.True(t, f.Amount.Equal(decimal.RequireFromString("2500.50")))
	}

	_, err = RaiseFees(db, RaiseFeeInput{Amount: decimal.RequireFromString("1.005")}, accounts)
	require.Error(t, err)
	fields := err.(*types.CustomError).Details.(map[string]string)
	assert.Contains(t, fields, "studentIds")
	assert.Contains(t, fields, "title")
	assert.Contains(t, fields, "amount")
	assert.Contains(t, fields, "dueDate")

	parent := testutil.CreateUser(t, db, models.RoleParent)
	_, err = RaiseFees(db, RaiseFeeInput{StudentIDs: types.FlexList[string]{parent.ID}, Title: "Fee", Amount: decimal.NewFromInt(10), DueDate: time.Now()}, accounts)
	require.Error(t, err)
	assert.True(t, types.IsType(err, types.TypePreconditionFailed))
}

func TestPaymentSettlesFee(t *testing.T) {
	db := testutil.NewDB(t)
	student := testutil.CreateUser(t, db, models.RoleStudent)
	fee := testutil.CreateFee(t, db, student.ID, "1200.00", time.Now().Add(24*time.Hour), models.FeePending)
	payer := actorFor(student)

	_, err := InitiatePayment(db, PaymentInput{FeeID: fee.ID, Amount: decimal.RequireFromString("1000.00"), Method: models.PaymentUPI}, payer)
	require.Error(t, err)
	assert.True(t, types.IsType(err, types.TypePreconditionFailed))

	txn, err := InitiatePayment(db, PaymentInput{FeeID: fee.ID, Amount: decimal.RequireFromString("1200"), Method: models.PaymentUPI}, payer)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionPending, txn.Status)

	_, err = VerifyPayment(db, paymentSecret, VerifyPaymentInput{
		TransactionID: txn.ID, Status: models.TransactionSuccess, GatewayReference: "UPI-1", Signature: "bad",
	}, nil)
	require.Error(t, err)
	assert.True(t, types.IsType(err, types.TypeUnauthorized))

	result, err := VerifyPayment(db, paymentSecret, VerifyPaymentInput{
		TransactionID:    txn.ID,
		Status:           models.TransactionSuccess,
		GatewayReference: "UPI-1",
		Signature:        PaymentSignature(paymentSecret, txn.ID, "UPI-1"),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionSuccess, result.Transaction.Status)
	assert.Equal(t, models.FeePaid, result.Fee.Status)
	assert.NotNil(t, result.Fee.PaidAt)

	_, err = InitiatePayment(db, PaymentInput{FeeID: fee.ID, Amount: decimal.RequireFromString("1200"), Method: models.PaymentUPI}, payer)
	require.Error(t, err)
	assert.True(t, types.IsType(err, types.TypeInvalidTransition))

	accounts := actorFor(testutil.CreateUser(t, db, models.RoleAccounts))
	_, err = VerifyPayment(db, "", VerifyPaymentInput{TransactionID: txn.ID, Status: models.TransactionFailed}, accounts)
	require.Error(t, err)
	assert.True(t, types.IsType(err, types.TypeInvalidTransition))

	assert.Equal(t, []string{models.ActionPaymentSuccess},
		testutil.AuditActions(t, db, models.EntityFee, fee.ID))
}

func TestFailedPaymentLeavesFeeOpen(t *testing.T) {
	db := testutil.NewDB(t)
	accounts := actorFor(testutil.CreateUser(t, db, models.RoleAccounts))
	student := testutil.CreateUser(t, db, models.RoleStudent)
	fee := testutil.CreateFee(t, db, student.ID, "500.00", time.Now().Add(24*time.Hour), models.FeePending)

	txn, err := InitiatePayment(db, PaymentInput{FeeID: fee.ID, Amount: decimal.RequireFromString("500"), Method: models.PaymentCash}, accounts)
	require.NoError(t, err)

	result, err := VerifyPayment(db, "", VerifyPaymentInput{TransactionID: txn.ID, Status: models.TransactionFailed, FailureReason: "declined"}, accounts)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionFailed, result.Transaction.Status)
	assert.Equal(t, "declined", result.Transaction.FailureReason)
	assert.Equal(t, models.FeePending, result.Fee.Status)

	assert.Equal(t, []string{models.ActionPaymentInitiated, models.ActionPaymentFailed},
		testutil.AuditActions(t, db, models.EntityTransaction, txn.ID))
}

func TestPaymentPermissions(t *testing.T) {
	db := testutil.NewDB(t)
	child := testutil.CreateUser(t, db, models.RoleStudent, testutil.WithGuardian("dad@example.org", ""))
	stranger := testutil.CreateUser(t, db, models.RoleStudent)
	parent := testutil.CreateUser(t, db, models.RoleParent, testutil.WithEmail("dad@example.org"))
	trustee := testutil.CreateUser(t, db, models.RoleTrustee)
	fee := testutil.CreateFee(t, db, child.ID, "100.00", time.Now().Add(time.Hour), models.FeePending)
	in := PaymentInput{FeeID: fee.ID, Amount: decimal.NewFromInt(100), Method: models.PaymentCard}

	for _, u := range []*models.User{stranger, trustee} {
		_, err := InitiatePayment(db, in, actorFor(u))
		require.Error(t, err)
		assert.True(t, types.IsType(err, types.TypeForbidden), string(u.Role))
	}
	_, err := InitiatePayment(db, in, nil)
	assert.True(t, types.IsType(err, types.TypeForbidden))

	_, err = InitiatePayment(db, in, actorFor(parent))
	require.NoError(t, err)

	fees, total, err := ListFees(db, FeeFilter{}, Page{}, actorFor(stranger))
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.Empty(t, fees)
}

func TestVerifyWithoutSecretNeedsAccountsStaff(t *testing.T) {
	db := testutil.NewDB(t)
	owner := testutil.CreateUser(t, db, models.RoleStudent)
	other := testutil.CreateUser(t, db, models.RoleStudent)
	accounts := actorFor(testutil.CreateUser(t, db, models.RoleAccounts))
	fee := testutil.CreateFee(t, db, owner.ID, "1200.00", time.Now().Add(24*time.Hour), models.FeePending)

	txn, err := InitiatePayment(db, PaymentInput{FeeID: fee.ID, Amount: decimal.RequireFromString("1200.00"), Method: models.PaymentUPI}, actorFor(owner))
	require.NoError(t, err)

	settle := VerifyPaymentInput{TransactionID: txn.ID, Status: models.TransactionSuccess, GatewayReference: "made-up"}
	for _, actor := range []*Actor{actorFor(other), actorFor(owner), nil} {
		_, err = VerifyPayment(db, "", settle, actor)
		require.Error(t, err)
		assert.True(t, types.IsType(err, types.TypeForbidden))
	}

	var stored models.Fee
	require.NoError(t, db.First(&stored, "id = ?", fee.ID).Error)
	assert.Equal(t, models.FeePending, stored.Status)
	assert.Empty(t, testutil.AuditActions(t, db, models.EntityFee, fee.ID))

	settle.GatewayReference = "CASH-RECEIPT-7"
	result, err := VerifyPayment(db, "", settle, accounts)
	require.NoError(t, err)
	assert.Equal(t, models.FeePaid, result.Fee.Status)
}

func TestSweepOverdueFees(t *testing.T) {
	db := testutil.NewDB(t)
	at := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	freezeClock(t, at)
	student := testutil.CreateUser(t, db, models.RoleStudent)
	late := testutil.CreateFee(t, db, student.ID, "100.00", at.Add(-24*time.Hour), models.FeePending)
	testutil.CreateFee(t, db, student.ID, "100.00", at.Add(24*time.Hour), models.FeePending)
	testutil.CreateFee(t, db, student.ID, "100.00", at.Add(-48*time.Hour), models.FeePaid)

	marked, err := SweepOverdueFees(db)
	require.NoError(t, err)
	assert.Equal(t, 1, marked)

	var reloaded models.Fee
	require.NoError(t, db.First(&reloaded, "id = ?", late.ID).Error)
	assert.Equal(t, models.FeeOverdue, reloaded.Status)
	assert.Equal(t, []string{models.ActionMarkOverdue}, testutil.AuditActions(t, db, models.EntityFee, late.ID))

	marked, err = SweepOverdueFees(db)
	require.NoError(t, err)
	assert.Equal(t, 0, marked)
}
