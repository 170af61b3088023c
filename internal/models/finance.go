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

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Fee is an amount a student owes by a due date
type Fee struct {
	ID        string          `json:"id" gorm:"type:char(36);primaryKey"`
	StudentID string          `json:"studentId" gorm:"type:char(36);not null;index"`
	Title     string          `json:"title" gorm:"size:255;not null"`
	Amount    decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	DueDate   time.Time       `json:"dueDate" gorm:"not null;index"`
	Status    FeeStatus       `json:"status" gorm:"size:16;not null;index"`
	PaidAt    *time.Time      `json:"paidAt,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Transaction is one payment attempt against a fee
type Transaction struct {
	ID               string            `json:"id" gorm:"type:char(36);primaryKey"`
	FeeID            string            `json:"feeId" gorm:"type:char(36);not null;index"`
	Amount           decimal.Decimal   `json:"amount" gorm:"type:decimal(12,2);not null"`
	Method           PaymentMethod     `json:"method" gorm:"size:16;not null"`
	Status           TransactionStatus `json:"status" gorm:"size:16;not null;index"`
	GatewayReference string            `json:"gatewayReference,omitempty" gorm:"size:128"`
	FailureReason    string            `json:"failureReason,omitempty" gorm:"type:text"`
	InitiatedBy      *string           `json:"initiatedBy,omitempty" gorm:"type:char(36)"`
	SettledAt        *time.Time        `json:"settledAt,omitempty"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

// TableName overrides the table name for Fee
func (Fee) TableName() string {
	return "fees"
}

// TableName overrides the table name for Transaction
func (Transaction) TableName() string {
	return "transactions"
}
