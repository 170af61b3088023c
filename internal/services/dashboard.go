// dashboard.go
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
	"fmt"
	"time"

	"github.com/hostelgate/hostelgate/internal/models"
	"github.com/hostelgate/hostelgate/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/hints"
)

// Dashboards are computed per request against the reporting pool. Nothing is cached.

// RoomSummary aggregates room capacity
type RoomSummary struct {
	Total       int64 `json:"total"`
	Capacity    int64 `json:"capacity"`
	Occupied    int64 `json:"occupied"`
	Available   int64 `json:"available"`
	Full        int64 `json:"full"`
	Maintenance int64 `json:"maintenance"`
}

// AdminDashboard is the overview for administrators and superintendents
type AdminDashboard struct {
	Applications      map[models.ApplicationStatus]int64 `json:"applications"`
	Rooms             RoomSummary                        `json:"rooms"`
	ActiveAllocations int64                              `json:"activeAllocations"`
	PendingLeaves     int64                              `json:"pendingLeaves"`
	Renewals          map[models.RenewalBucket]int       `json:"renewals"`
	RecentActivity    []models.AuditLog                  `json:"recentActivity"`
}

// FeeTotals is the count and sum of fees in one status
type FeeTotals struct {
	Count  int64           `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// AccountsDashboard is the overview for the accounts team
type AccountsDashboard struct {
	Fees               map[models.FeeStatus]FeeTotals `json:"fees"`
	CollectedThisMonth decimal.Decimal                `json:"collectedThisMonth"`
	FailedPayments     int64                          `json:"failedPayments"`
	PendingPayments    int64                          `json:"pendingPayments"`
}

// TrusteeDashboard is the interview panel view of one trustee
type TrusteeDashboard struct {
	UpcomingInterviews []models.Interview                 `json:"upcomingInterviews"`
	CompletedCount     int64                              `json:"completedCount"`
	Pipeline           map[models.ApplicationStatus]int64 `json:"pipeline"`
}

// StudentDashboard is a resident's own summary
type StudentDashboard struct {
	Student      models.User        `json:"student"`
	Allocation   *models.Allocation `json:"allocation,omitempty"`
	Renewal      *Renewal           `json:"renewal,omitempty"`
	OpenFees     []models.Fee       `json:"openFees"`
	AmountDue    decimal.Decimal    `json:"amountDue"`
	RecentLeaves []models.Leave     `json:"recentLeaves"`
}

const recentActivityLimit = 10

func reportQuery(db *gorm.DB, tag string) *gorm.DB {
	return db.Clauses(hints.CommentBefore("select", tag))
}

type statusCount struct {
	Status string
	Count  int64
}

func applicationCounts(db *gorm.DB, tag string, vertical models.Vertical, statuses ...models.ApplicationStatus) (map[models.ApplicationStatus]int64, error) {
	q := reportQuery(db, tag).Model(&models.Application{}).
		Select("current_status AS status, COUNT(*) AS count")
	if vertical != "" {
		q = q.Where("vertical = ?", vertical)
	}
	if len(statuses) > 0 {
		q = q.Where("current_status IN ?", statuses)
	}
	var rows []statusCount
	if err := q.Group("current_status").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count applications: %w", err)
	}

	counts := make(map[models.ApplicationStatus]int64)
	if len(statuses) == 0 {
		statuses = models.ApplicationStatuses
	}
	for _, s := range statuses {
		counts[s] = 0
	}
	for _, r := range rows {
		counts[models.ApplicationStatus(r.Status)] = r.Count
	}
	return counts, nil
}

// GetAdminDashboard aggregates applications, rooms, allocations, leaves and renewals
func GetAdminDashboard(db *gorm.DB, vertical models.Vertical) (*AdminDashboard, error) {
	apps, err := applicationCounts(db, "dashboard:admin", vertical)
	if err != nil {
		return nil, err
	}
	d := &AdminDashboard{Applications: apps}

	var roomRows []struct {
		Status   string
		Count    int64
		Capacity int64
		Occupied int64
	}
	rq := reportQuery(db, "dashboard:admin").Model(&models.Room{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(capacity), 0) AS capacity, COALESCE(SUM(current_occupancy), 0) AS occupied")
	if vertical != "" {
		rq = rq.Where("vertical = ?", vertical)
	}
	if err := rq.Group("status").Scan(&roomRows).Error; err != nil {
		return nil, fmt.Errorf("failed to summarize rooms: %w", err)
	}
	for _, r := range roomRows {
		d.Rooms.Total += r.Count
		d.Rooms.Capacity += r.Capacity
		d.Rooms.Occupied += r.Occupied
		switch models.RoomStatus(r.Status) {
		case models.RoomAvailable:
			d.Rooms.Available = r.Count
		case models.RoomFull:
			d.Rooms.Full = r.Count
		case models.RoomMaintenance:
			d.Rooms.Maintenance = r.Count
		}
	}

	aq := reportQuery(db, "dashboard:admin").Model(&models.Allocation{}).
		Where("allocations.status = ?", models.AllocationActive)
	if vertical != "" {
		aq = aq.Joins("JOIN rooms ON rooms.id = allocations.room_id").Where("rooms.vertical = ?", vertical)
	}
	if err := aq.Count(&d.ActiveAllocations).Error; err != nil {
		return nil, fmt.Errorf("failed to count allocations: %w", err)
	}

	lq := reportQuery(db, "dashboard:admin").Model(&models.Leave{}).
		Where("leaves.status = ?", models.LeavePending)
	if vertical != "" {
		lq = lq.Joins("JOIN users ON users.id = leaves.student_id").Where("users.vertical = ?", vertical)
	}
	if err := lq.Count(&d.PendingLeaves).Error; err != nil {
		return nil, fmt.Errorf("failed to count leaves: %w", err)
	}

	renewals, err := ListRenewals(db, RenewalFilter{Vertical: vertical})
	if err != nil {
		return nil, err
	}
	d.Renewals = map[models.RenewalBucket]int{
		models.RenewalOverdue:  0,
		models.RenewalDueSoon:  0,
		models.RenewalUpcoming: 0,
		models.RenewalNotDue:   0,
	}
	for _, r := range renewals {
		d.Renewals[r.Bucket]++
	}

	if err := auditQuery(db, "dashboard:admin").
		Order("performed_at DESC, id DESC").
		Limit(recentActivityLimit).
		Find(&d.RecentActivity).Error; err != nil {
		return nil, fmt.Errorf("failed to load recent activity: %w", err)
	}
	return d, nil
}

// GetAccountsDashboard aggregates fees and this month's collections
func GetAccountsDashboard(db *gorm.DB) (*AccountsDashboard, error) {
	var feeRows []struct {
		Status string
		Count  int64
		Amount decimal.Decimal
	}
	if err := reportQuery(db, "dashboard:accounts").Model(&models.Fee{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS amount").
		Group("status").
		Scan(&feeRows).Error; err != nil {
		return nil, fmt.Errorf("failed to summarize fees: %w", err)
	}

	d := &AccountsDashboard{
		Fees: map[models.FeeStatus]FeeTotals{
			models.FeePending: {Amount: decimal.Zero},
			models.FeePaid:    {Amount: decimal.Zero},
			models.FeeOverdue: {Amount: decimal.Zero},
		},
	}
	for _, r := range feeRows {
		d.Fees[models.FeeStatus(r.Status)] = FeeTotals{Count: r.Count, Amount: r.Amount}
	}

	at := now()
	monthStart := time.Date(at.Year(), at.Month(), 1, 0, 0, 0, 0, time.UTC)
	var collected struct{ Amount decimal.Decimal }
	if err := reportQuery(db, "dashboard:accounts").Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0) AS amount").
		Where("status = ? AND settled_at >= ?", models.TransactionSuccess, monthStart).
		Scan(&collected).Error; err != nil {
		return nil, fmt.Errorf("failed to sum collections: %w", err)
	}
	d.CollectedThisMonth = collected.Amount

	if err := reportQuery(db, "dashboard:accounts").Model(&models.Transaction{}).
		Where("status = ?", models.TransactionFailed).Count(&d.FailedPayments).Error; err != nil {
		return nil, fmt.Errorf("failed to count failed payments: %w", err)
	}
	if err := reportQuery(db, "dashboard:accounts").Model(&models.Transaction{}).
		Where("status = ?", models.TransactionPending).Count(&d.PendingPayments).Error; err != nil {
		return nil, fmt.Errorf("failed to count pending payments: %w", err)
	}
	return d, nil
}

// GetTrusteeDashboard lists the trustee's upcoming interviews and the admissions pipeline
func GetTrusteeDashboard(db *gorm.DB, actor *Actor) (*TrusteeDashboard, error) {
	if actor == nil {
		return nil, types.NewUnauthorizedError("authentication required")
	}
	d := &TrusteeDashboard{}

	uq := reportQuery(db, "dashboard:trustee").Where("status = ? AND schedule_time >= ?", models.InterviewScheduled, now())
	cq := reportQuery(db, "dashboard:trustee").Model(&models.Interview{}).Where("status = ?", models.InterviewCompleted)
	if actor.Role == models.RoleTrustee {
		uq = uq.Where("trustee_id = ?", actor.UserID)
		cq = cq.Where("trustee_id = ?", actor.UserID)
	}
	if err := uq.Order("schedule_time ASC").Find(&d.UpcomingInterviews).Error; err != nil {
		return nil, fmt.Errorf("failed to load interviews: %w", err)
	}
	if err := cq.Count(&d.CompletedCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count interviews: %w", err)
	}

	pipeline, err := applicationCounts(db, "dashboard:trustee", "",
		models.ApplicationSubmitted, models.ApplicationReview, models.ApplicationInterview)
	if err != nil {
		return nil, err
	}
	d.Pipeline = pipeline
	return d, nil
}

// GetStudentDashboard summarizes one student's residency, dues and leaves
func GetStudentDashboard(db *gorm.DB, studentID string) (*StudentDashboard, error) {
	d := &StudentDashboard{AmountDue: decimal.Zero}
	if err := findByID(reportQuery(db, "dashboard:student"), &d.Student, "User", studentID); err != nil {
		return nil, err
	}

	var alloc models.Allocation
	err := reportQuery(db, "dashboard:student").Preload("Room").
		Where("student_id = ? AND status = ?", studentID, models.AllocationActive).
		Limit(1).Find(&alloc).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load allocation: %w", err)
	}
	if alloc.ID != "" {
		d.Allocation = &alloc
		renewals, err := ListRenewals(db, RenewalFilter{StudentID: studentID})
		if err != nil {
			return nil, err
		}
		if len(renewals) > 0 {
			d.Renewal = &renewals[0]
		}
	}

	if err := reportQuery(db, "dashboard:student").
		Where("student_id = ? AND status IN ?", studentID, []models.FeeStatus{models.FeePending, models.FeeOverdue}).
		Order("due_date ASC").
		Find(&d.OpenFees).Error; err != nil {
		return nil, fmt.Errorf("failed to load fees: %w", err)
	}
	for _, f := range d.OpenFees {
		d.AmountDue = d.AmountDue.Add(f.Amount)
	}

	if err := reportQuery(db, "dashboard:student").
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Limit(5).
		Find(&d.RecentLeaves).Error; err != nil {
		return nil, fmt.Errorf("failed to load leaves: %w", err)
	}
	return d, nil
}
