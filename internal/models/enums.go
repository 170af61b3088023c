// enums.go
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

// Vertical is one of the trust's operating units
type Vertical string

const (
	VerticalBoysHostel  Vertical = "BOYS_HOSTEL"
	VerticalGirlsAshram Vertical = "GIRLS_ASHRAM"
	VerticalDharamshala Vertical = "DHARAMSHALA"
)

// Verticals lists every vertical in display order
var Verticals = []Vertical{VerticalBoysHostel, VerticalGirlsAshram, VerticalDharamshala}

func (v Vertical) Valid() bool {
	switch v {
	case VerticalBoysHostel, VerticalGirlsAshram, VerticalDharamshala:
		return true
	}
	return false
}

// Role is a user's access role
type Role string

const (
	RoleAdmin          Role = "ADMIN"
	RoleSuperintendent Role = "SUPERINTENDENT"
	RoleTrustee        Role = "TRUSTEE"
	RoleAccounts       Role = "ACCOUNTS"
	RoleStudent        Role = "STUDENT"
	RoleParent         Role = "PARENT"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSuperintendent, RoleTrustee, RoleAccounts, RoleStudent, RoleParent:
		return true
	}
	return false
}

// IsStaff reports whether the role belongs to trust staff
func (r Role) IsStaff() bool {
	switch r {
	case RoleAdmin, RoleSuperintendent, RoleTrustee, RoleAccounts:
		return true
	}
	return false
}

// StaffRoles are the roles allowed on back office routes
var StaffRoles = []Role{RoleAdmin, RoleSuperintendent, RoleTrustee, RoleAccounts}

// ApplicationStatus is the admissions state of an application
type ApplicationStatus string

const (
	ApplicationDraft     ApplicationStatus = "DRAFT"
	ApplicationSubmitted ApplicationStatus = "SUBMITTED"
	ApplicationReview    ApplicationStatus = "REVIEW"
	ApplicationInterview ApplicationStatus = "INTERVIEW"
	ApplicationApproved  ApplicationStatus = "APPROVED"
	ApplicationRejected  ApplicationStatus = "REJECTED"
	ApplicationArchived  ApplicationStatus = "ARCHIVED"
)

// ApplicationStatuses lists every application status
var ApplicationStatuses = []ApplicationStatus{
	ApplicationDraft, ApplicationSubmitted, ApplicationReview, ApplicationInterview,
	ApplicationApproved, ApplicationRejected, ApplicationArchived,
}

// RoomStatus is derived from occupancy, except MAINTENANCE which is set by staff
type RoomStatus string

const (
	RoomAvailable   RoomStatus = "AVAILABLE"
	RoomFull        RoomStatus = "FULL"
	RoomMaintenance RoomStatus = "MAINTENANCE"
)

// AllocationStatus is the state of a room allocation
type AllocationStatus string

const (
	AllocationActive  AllocationStatus = "ACTIVE"
	AllocationVacated AllocationStatus = "VACATED"
)

// LeaveStatus is the decision state of a leave request
type LeaveStatus string

const (
	LeavePending  LeaveStatus = "PENDING"
	LeaveApproved LeaveStatus = "APPROVED"
	LeaveRejected LeaveStatus = "REJECTED"
)

// LeaveType classifies a leave request
type LeaveType string

const (
	LeaveHome      LeaveType = "HOME"
	LeaveMedical   LeaveType = "MEDICAL"
	LeaveNightOut  LeaveType = "NIGHT_OUT"
	LeaveEmergency LeaveType = "EMERGENCY"
	LeaveOther     LeaveType = "OTHER"
)

func (t LeaveType) Valid() bool {
	switch t {
	case LeaveHome, LeaveMedical, LeaveNightOut, LeaveEmergency, LeaveOther:
		return true
	}
	return false
}

// InterviewStatus is the state of an admissions interview
type InterviewStatus string

const (
	InterviewScheduled InterviewStatus = "SCHEDULED"
	InterviewCompleted InterviewStatus = "COMPLETED"
	InterviewCancelled InterviewStatus = "CANCELLED"
)

// InterviewMode is how an interview is held
type InterviewMode string

const (
	InterviewInPerson InterviewMode = "IN_PERSON"
	InterviewVideo    InterviewMode = "VIDEO"
	InterviewPhone    InterviewMode = "PHONE"
)

func (m InterviewMode) Valid() bool {
	switch m {
	case InterviewInPerson, InterviewVideo, InterviewPhone:
		return true
	}
	return false
}

// FeeStatus is the settlement state of a fee
type FeeStatus string

const (
	FeePending FeeStatus = "PENDING"
	FeePaid    FeeStatus = "PAID"
	FeeOverdue FeeStatus = "OVERDUE"
)

// TransactionStatus is the state of a payment attempt
type TransactionStatus string

const (
	TransactionPending TransactionStatus = "PENDING"
	TransactionSuccess TransactionStatus = "SUCCESS"
	TransactionFailed  TransactionStatus = "FAILED"
)

// PaymentMethod is the instrument used for a transaction
type PaymentMethod string

const (
	PaymentUPI          PaymentMethod = "UPI"
	PaymentCard         PaymentMethod = "CARD"
	PaymentNetBanking   PaymentMethod = "NETBANKING"
	PaymentCash         PaymentMethod = "CASH"
	PaymentBankTransfer PaymentMethod = "BANK_TRANSFER"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentUPI, PaymentCard, PaymentNetBanking, PaymentCash, PaymentBankTransfer:
		return true
	}
	return false
}

// ClearanceStatus is the state of an exit clearance checklist
type ClearanceStatus string

const (
	ClearanceInitiated ClearanceStatus = "INITIATED"
	ClearanceCompleted ClearanceStatus = "COMPLETED"
	ClearanceCancelled ClearanceStatus = "CANCELLED"
)

// RenewalBucket groups active allocations by how soon their 6-month renewal falls due
type RenewalBucket string

const (
	RenewalNotDue   RenewalBucket = "NOT_DUE"
	RenewalUpcoming RenewalBucket = "UPCOMING"
	RenewalDueSoon  RenewalBucket = "DUE_SOON"
	RenewalOverdue  RenewalBucket = "OVERDUE"
)
