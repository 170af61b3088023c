// finance.go
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

	"github.com/hostelgate/hostelgate/internal/models"
	"github.com/hostelgate/hostelgate/internal/types"
	"github.com/shopspring/decimal"
)

// FeePayable checks that a payment of amount may be started against the fee
func FeePayable(fee models.Fee, amount decimal.Decimal) error {
	if fee.Status == models.FeePaid {
		return types.NewInvalidTransitionError(models.EntityFee, string(fee.Status), string(models.FeePaid))
	}
	if !amount.Equal(fee.Amount) {
		return types.NewPreconditionFailedError(
			fmt.Sprintf("payment amount %s does not match fee amount %s", amount.StringFixed(2), fee.Amount.StringFixed(2)))
	}
	return nil
}

// FeeSettle returns PAID for a successful transaction of exactly the fee amount
func FeeSettle(fee models.Fee, txn models.Transaction) (models.FeeStatus, error) {
	if err := FeePayable(fee, txn.Amount); err != nil {
		return fee.Status, err
	}
	return models.FeePaid, nil
}

// FeeOverdue checks PENDING to OVERDUE
func FeeOverdue(from models.FeeStatus) (models.FeeStatus, error) {
	if from != models.FeePending {
		return from, types.NewInvalidTransitionError(models.EntityFee, string(from), string(models.FeeOverdue))
	}
	return models.FeeOverdue, nil
}

// TransactionSettle checks PENDING to SUCCESS or FAILED
func TransactionSettle(from, to models.TransactionStatus) (models.TransactionStatus, error) {
	if to != models.TransactionSuccess && to != models.TransactionFailed {
		return from, types.NewBadRequestError(fmt.Sprintf("unknown transaction result: %s", to))
	}
	if from != models.TransactionPending {
		return from, types.NewInvalidTransitionError(models.EntityTransaction, string(from), string(to))
	}
	return to, nil
}
