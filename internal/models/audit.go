// audit.go
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

// Entity types recorded in the audit trail
const (
	EntityApplication = "APPLICATION"
	EntityRoom        = "ROOM"
	EntityAllocation  = "ALLOCATION"
	EntityLeave       = "LEAVE"
	EntityInterview   = "INTERVIEW"
	EntityFee         = "FEE"
	EntityTransaction = "TRANSACTION"
	EntityClearance   = "CLEARANCE"
	EntityUser        = "USER"
	EntitySession     = "SESSION"
)

// Audit actions
const (
	ActionCreate           = "CREATE"
	ActionUpdate           = "UPDATE"
	ActionSubmit           = "SUBMIT"
	ActionStatusChange     = "STATUS_CHANGE"
	ActionApprove          = "APPROVE"
	ActionReject           = "REJECT"
	ActionSchedule         = "SCHEDULE"
	ActionComplete         = "COMPLETE"
	ActionCancel           = "CANCEL"
	ActionVacate           = "VACATE"
	ActionTransfer         = "TRANSFER"
	ActionPaymentInitiated = "PAYMENT_INITIATED"
	ActionPaymentSuccess   = "PAYMENT_SUCCESS"
	ActionPaymentFailed    = "PAYMENT_FAILED"
	ActionMarkOverdue      = "MARK_OVERDUE"
	ActionArchive          = "ARCHIVE"
	ActionLogin            = "LOGIN"
	ActionLogout           = "LOGOUT"
	ActionPasswordReset    = "PASSWORD_RESET"
	ActionClearanceUpdate  = "CLEARANCE_UPDATE"
)

// AuditLog is an append-only record of one state-changing operation
type AuditLog struct {
	ID          uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	EntityType  string    `json:"entityType" gorm:"size:32;not null;index:idx_audit_entity,priority:1"`
	EntityID    string    `json:"entityId" gorm:"size:64;not null;index:idx_audit_entity,priority:2"`
	Action      string    `json:"action" gorm:"size:32;not null;index"`
	OldValue    JSON      `json:"oldValue"`
	NewValue    JSON      `json:"newValue"`
	PerformedBy *string   `json:"performedBy,omitempty" gorm:"type:char(36);index"`
	PerformedAt time.Time `json:"performedAt" gorm:"not null;index"`
	Metadata    JSON      `json:"metadata"`
}

// TableName overrides the table name for AuditLog
func (AuditLog) TableName() string {
	return "audit_logs"
}
