// fees.go
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
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/hostelgate/hostelgate/internal/logger"
	"github.com/hostelgate/hostelgate/internal/metrics"
	"github.com/hostelgate/hostelgate/internal/models"
	"github.com/hostelgate/hostelgate/internal/types"
	"github.com/hostelgate/hostelgate/internal/workflow"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RaiseFeeInput bills one or more students
type RaiseFeeInput struct {
	StudentIDs types.FlexList[string] `json:"studentIds" swaggertype:"array,string"`
	Title      string                 `json:"title"`
	Amount     decimal.Decimal        `json:"amount" swaggertype:"string"`
	DueDate    time.Time              `json:"dueDate"`
}

// FeeFilter narrows a fee listing
type FeeFilter struct {
	Status    models.FeeStatus
	StudentID string
}

// PaymentInput starts a payment against a fee
type PaymentInput struct {
	FeeID  string               `json:"feeId"`
	Amount decimal.Decimal      `json:"amount" swaggertype:"string"`
	Method models.PaymentMethod `json:"method"`
}

// VerifyPaymentInput settles a PENDING transaction with the gateway result
type VerifyPaymentInput struct {
	TransactionID    string                   `json:"transactionId"`
	Status           models.TransactionStatus `json:"status"`
	GatewayReference string                   `json:"gatewayReference"`
	FailureReason    string                   `json:"failureReason,omitempty"`
	Signature        string                   `json:"signature,omitempty"`
}

// PaymentResult is a settled transaction with the fee it paid
type PaymentResult struct {
	Transaction models.Transaction `json:"transaction"`
	Fee         models.Fee         `json:"fee"`
}

// RaiseFees creates one PENDING fee per student
func RaiseFees(db *gorm.DB, in RaiseFeeInput, actor *Actor) ([]models.Fee, error) {
	studentIDs := types.UniqueStrings(in.StudentIDs.Slice())
	fields := map[string]string{}
	if len(studentIDs) == 0 {
		fields["studentIds"] = "At least one student is required"
	}
	if strings.TrimSpace(in.Title) == "" {
		fields["title"] = "Title is required"
	}
	if !in.Amount.IsPositive() {
		fields["amount"] = "Amount must be greater than 0"
	} else if in.Amount.Exponent() < -2 {
		fields["amount"] = "Amount cannot have more than 2 decimal places"
	}
	if in.DueDate.IsZero() {
		fields["dueDate"] = "Due date is required"
	}
	if len(fields) > 0 {
		return nil, types.NewValidationError(fields)
	}

	fees := make([]models.Fee, 0, len(studentIDs))
	err := db.Transaction(func(tx *gorm.DB) error {
		for _, sid := range studentIDs {
			var student models.User
			if err := findByID(tx, &student, "Student", sid); err != nil {
				return err
			}
			if student.Role != models.RoleStudent {
				return types.NewPreconditionFailedError(fmt.Sprintf("user %s is not a student", sid))
			}

			fee := models.Fee{
				StudentID: sid,
				Title:     strings.TrimSpace(in.Title),
				Amount:    in.Amount,
				DueDate:   in.DueDate.UTC(),
				Status:    models.FeePending,
			}
			if err := tx.Create(&fee).Error; err != nil {
				return fmt.Errorf("failed to create fee: %w", err)
			}
			if err := WriteAudit(tx, AuditEntry{
				EntityType:  models.EntityFee,
				EntityID:    fee.ID,
				Action:      models.ActionCreate,
				New:         map[string]interface{}{"status": fee.Status, "amount": fee.Amount, "dueDate": fee.DueDate},
				PerformedBy: actor.ID(),
				Metadata:    map[string]interface{}{"student_name": student.Name, "title": fee.Title},
			}); err != nil {
				return err
			}
			fees = append(fees, fee)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return fees, nil
}

// ListFees returns fees visible to actor ordered by due date
func ListFees(db *gorm.DB, filter FeeFilter, page Page, actor *Actor) ([]models.Fee, int64, error) {
	page = page.Normalize()

	q := scopeToStudents(db.Model(&models.Fee{}), "fees.student_id", actor)
	if filter.Status != "" {
		q = q.Where("fees.status = ?", filter.Status)
	}
	if filter.StudentID != "" {
		q = q.Where("fees.student_id = ?", filter.StudentID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count fees: %w", err)
	}
	var fees []models.Fee
	if err := q.Order("fees.due_date ASC").Offset(page.Offset()).Limit(page.Limit).Find(&fees).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list fees: %w", err)
	}
	return fees, total, nil
}

// canPayFor reports whether actor may pay a student's fee
func canPayFor(tx *gorm.DB, actor *Actor, studentID string) (bool, error) {
	switch {
	case actor == nil:
		return false, nil
	case actor.HasRole(models.RoleStudent):
		return actor.UserID == studentID, nil
	case actor.HasRole(models.RoleParent):
		var n int64
		err := tx.Model(&models.User{}).
			Where("id = ? AND guardian_email = ?", studentID, actor.Email).
			Count(&n).Error
		return n > 0, err
	}
	return actor.HasRole(models.RoleAdmin, models.RoleAccounts), nil
}

// InitiatePayment records a PENDING transaction. The amount must equal the fee exactly.
func InitiatePayment(db *gorm.DB, in PaymentInput, actor *Actor) (*models.Transaction, error) {
	fields := map[string]string{}
	if in.FeeID == "" {
		fields["feeId"] = "Fee is required"
	}
	if !in.Method.Valid() {
		fields["method"] = "Method must be one of UPI, CARD, NETBANKING, CASH, BANK_TRANSFER"
	}
	if len(fields) > 0 {
		return nil, types.NewValidationError(fields)
	}

	var txn models.Transaction
	err := db.Transaction(func(tx *gorm.DB) error {
		var fee models.Fee
		if err := findForUpdate(tx, &fee, "Fee", in.FeeID); err != nil {
			return err
		}
		ok, err := canPayFor(tx, actor, fee.StudentID)
		if err != nil {
			return err
		}
		if !ok {
			return types.NewForbiddenError("not allowed to pay this fee")
		}
		if err := workflow.FeePayable(fee, in.Amount); err != nil {
			return err
		}

		txn = models.Transaction{
			FeeID:       fee.ID,
			Amount:      in.Amount,
			Method:      in.Method,
			Status:      models.TransactionPending,
			InitiatedBy: actor.ID(),
		}
		if err := tx.Create(&txn).Error; err != nil {
			return fmt.Errorf("failed to create transaction: %w", err)
		}
		return WriteAudit(tx, AuditEntry{
			EntityType:  models.EntityTransaction,
			EntityID:    txn.ID,
			Action:      models.ActionPaymentInitiated,
			New:         map[string]interface{}{"status": txn.Status, "amount": txn.Amount, "method": txn.Method},
			PerformedBy: actor.ID(),
			Metadata:    map[string]interface{}{"fee_id": fee.ID, "fee_title": fee.Title},
		})
	})
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// PaymentSignature signs transaction_id|gateway_reference with the gateway secret
func PaymentSignature(secret, transactionID, gatewayReference string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(transactionID + "|" + gatewayReference))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyPayment settles a PENDING transaction. Success marks the fee PAID in the same transaction.
func VerifyPayment(db *gorm.DB, secret string, in VerifyPaymentInput, actor *Actor) (*PaymentResult, error) {
	fields := map[string]string{}
	if in.TransactionID == "" {
		fields["transactionId"] = "Transaction is required"
	}
	if in.Status == models.TransactionSuccess && strings.TrimSpace(in.GatewayReference) == "" {
		fields["gatewayReference"] = "Gateway reference is required for a successful payment"
	}
	if len(fields) > 0 {
		return nil, types.NewValidationError(fields)
	}
	if secret != "" {
		expected := PaymentSignature(secret, in.TransactionID, in.GatewayReference)
		if !hmac.Equal([]byte(expected), []byte(strings.ToLower(in.Signature))) {
			return nil, types.NewUnauthorizedError("payment signature is invalid")
		}
	} else if !actor.HasRole(models.RoleAdmin, models.RoleAccounts) {
		// Without a gateway secret only the accounts desk can settle
		return nil, types.NewForbiddenError("only accounts staff can verify payments")
	}

	var result PaymentResult
	err := db.Transaction(func(tx *gorm.DB) error {
		txn := &result.Transaction
		fee := &result.Fee
		if err := findForUpdate(tx, txn, "Transaction", in.TransactionID); err != nil {
			return err
		}
		if err := findForUpdate(tx, fee, "Fee", txn.FeeID); err != nil {
			return err
		}
		from := txn.Status
		next, err := workflow.TransactionSettle(from, in.Status)
		if err != nil {
			return err
		}

		settledAt := now()
		if next == models.TransactionSuccess {
			feeNext, err := workflow.FeeSettle(*fee, *txn)
			if err != nil {
				return err
			}
			if err := settleTransaction(tx, txn, next, in, settledAt); err != nil {
				return err
			}

			feeFrom := fee.Status
			res := tx.Model(&models.Fee{}).
				Where("id = ? AND status IN ?", fee.ID, []models.FeeStatus{models.FeePending, models.FeeOverdue}).
				Updates(map[string]interface{}{"status": feeNext, "paid_at": settledAt})
			if res.Error != nil {
				return fmt.Errorf("failed to mark fee paid: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				return types.NewInvalidTransitionError(models.EntityFee, string(models.FeePaid), string(feeNext))
			}
			fee.Status = feeNext
			fee.PaidAt = &settledAt

			return WriteAudit(tx, AuditEntry{
				EntityType:  models.EntityFee,
				EntityID:    fee.ID,
				Action:      models.ActionPaymentSuccess,
				Old:         map[string]interface{}{"status": feeFrom},
				New:         map[string]interface{}{"status": feeNext, "paidAt": settledAt},
				PerformedBy: actor.ID(),
				Metadata: map[string]interface{}{
					"transaction_id":    txn.ID,
					"gateway_reference": txn.GatewayReference,
					"amount":            txn.Amount,
				},
			})
		}

		if err := settleTransaction(tx, txn, next, in, settledAt); err != nil {
			return err
		}
		return WriteAudit(tx, AuditEntry{
			EntityType:  models.EntityTransaction,
			EntityID:    txn.ID,
			Action:      models.ActionPaymentFailed,
			Old:         map[string]interface{}{"status": from},
			New:         map[string]interface{}{"status": next, "failureReason": txn.FailureReason},
			PerformedBy: actor.ID(),
			Metadata:    map[string]interface{}{"fee_id": fee.ID},
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.Payments.WithLabelValues(string(result.Transaction.Status)).Inc()
	return &result, nil
}

func settleTransaction(tx *gorm.DB, txn *models.Transaction, next models.TransactionStatus, in VerifyPaymentInput, settledAt time.Time) error {
	updates := map[string]interface{}{
		"status":            next,
		"gateway_reference": strings.TrimSpace(in.GatewayReference),
		"settled_at":        settledAt,
	}
	if next == models.TransactionFailed {
		updates["failure_reason"] = strings.TrimSpace(in.FailureReason)
	}
	res := tx.Model(&models.Transaction{}).
		Where("id = ? AND status = ?", txn.ID, models.TransactionPending).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to settle transaction: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return types.NewInvalidTransitionError(models.EntityTransaction, string(txn.Status), string(next))
	}
	txn.Status = next
	txn.GatewayReference = strings.TrimSpace(in.GatewayReference)
	txn.SettledAt = &settledAt
	if next == models.TransactionFailed {
		txn.FailureReason = strings.TrimSpace(in.FailureReason)
	}
	return nil
}

// SweepOverdueFees marks PENDING fees past their due date OVERDUE, one audited transaction per fee
func SweepOverdueFees(db *gorm.DB) (int, error) {
	cutoff := now()
	var ids []string
	if err := db.Model(&models.Fee{}).
		Where("status = ? AND due_date < ?", models.FeePending, cutoff).
		Pluck("id", &ids).Error; err != nil {
		return 0, fmt.Errorf("failed to find overdue fees: %w", err)
	}

	marked := 0
	for _, id := range ids {
		changed := false
		err := db.Transaction(func(tx *gorm.DB) error {
			var fee models.Fee
			if err := findForUpdate(tx, &fee, "Fee", id); err != nil {
				return err
			}
			next, err := workflow.FeeOverdue(fee.Status)
			if err != nil {
				// Paid since the scan
				return nil
			}
			res := tx.Model(&models.Fee{}).
				Where("id = ? AND status = ?", fee.ID, models.FeePending).
				Update("status", next)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return nil
			}
			changed = true
			return WriteAudit(tx, AuditEntry{
				EntityType: models.EntityFee,
				EntityID:   fee.ID,
				Action:     models.ActionMarkOverdue,
				Old:        map[string]interface{}{"status": fee.Status},
				New:        map[string]interface{}{"status": next},
				Metadata:   map[string]interface{}{"due_date": fee.DueDate, "title": fee.Title},
			})
		})
		if err != nil {
			logger.GetLogger().Error("Failed to mark fee overdue", zap.String("fee_id", id), zap.Error(err))
			continue
		}
		if changed {
			marked++
		}
	}
	return marked, nil
}
