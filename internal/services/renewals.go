// renewals.go
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
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/hostelgate/hostelgate/internal/logger"
	"github.com/hostelgate/hostelgate/internal/models"
	"github.com/hostelgate/hostelgate/internal/notify"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RenewalCycleMonths is the length of one residency cycle
const RenewalCycleMonths = 6

// Renewal bucket thresholds in days
const (
	DueSoonDays  = 30
	UpcomingDays = 60
)

// Renewal is the derived renewal state of one active allocation
type Renewal struct {
	AllocationID  string               `json:"allocationId"`
	StudentID     string               `json:"studentId"`
	StudentName   string               `json:"studentName"`
	StudentEmail  string               `json:"studentEmail,omitempty"`
	RoomID        string               `json:"roomId"`
	RoomNumber    string               `json:"roomNumber"`
	Vertical      models.Vertical      `json:"vertical"`
	AllocatedAt   time.Time            `json:"allocatedAt"`
	DueDate       time.Time            `json:"dueDate"`
	DaysRemaining int                  `json:"daysRemaining"`
	Bucket        models.RenewalBucket `json:"bucket"`
}

// RenewalFilter narrows a renewal listing
type RenewalFilter struct {
	Vertical  models.Vertical
	Bucket    models.RenewalBucket
	StudentID string
}

// RenewalDueDate is one cycle after the allocation date
func RenewalDueDate(allocatedAt time.Time) time.Time {
	return allocatedAt.AddDate(0, RenewalCycleMonths, 0)
}

// DaysRemaining counts whole days until due, rounding partial days up
func DaysRemaining(due, at time.Time) int {
	return int(math.Ceil(due.Sub(at).Hours() / 24))
}

// RenewalBucketFor classifies days remaining
func RenewalBucketFor(days int) models.RenewalBucket {
	switch {
	case days <= 0:
		return models.RenewalOverdue
	case days <= DueSoonDays:
		return models.RenewalDueSoon
	case days <= UpcomingDays:
		return models.RenewalUpcoming
	}
	return models.RenewalNotDue
}

type renewalRow struct {
	ID           string
	StudentID    string
	RoomID       string
	AllocatedAt  time.Time
	StudentName  string
	StudentEmail string
	RoomNumber   string
	Vertical     models.Vertical
}

// ListRenewals computes renewal state for every ACTIVE allocation, most urgent first
func ListRenewals(db *gorm.DB, filter RenewalFilter) ([]Renewal, error) {
	q := db.Table("allocations").
		Select("allocations.id, allocations.student_id, allocations.room_id, allocations.allocated_at, " +
			"users.name AS student_name, users.email AS student_email, rooms.room_number, rooms.vertical").
		Joins("JOIN rooms ON rooms.id = allocations.room_id").
		Joins("JOIN users ON users.id = allocations.student_id").
		Where("allocations.status = ?", models.AllocationActive)
	if filter.Vertical != "" {
		q = q.Where("rooms.vertical = ?", filter.Vertical)
	}
	if filter.StudentID != "" {
		q = q.Where("allocations.student_id = ?", filter.StudentID)
	}

	var rows []renewalRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load active allocations: %w", err)
	}

	at := now()
	renewals := make([]Renewal, 0, len(rows))
	for _, r := range rows {
		due := RenewalDueDate(r.AllocatedAt)
		days := DaysRemaining(due, at)
		bucket := RenewalBucketFor(days)
		if filter.Bucket != "" && bucket != filter.Bucket {
			continue
		}
		renewals = append(renewals, Renewal{
			AllocationID:  r.ID,
			StudentID:     r.StudentID,
			StudentName:   r.StudentName,
			StudentEmail:  r.StudentEmail,
			RoomID:        r.RoomID,
			RoomNumber:    r.RoomNumber,
			Vertical:      r.Vertical,
			AllocatedAt:   r.AllocatedAt,
			DueDate:       due,
			DaysRemaining: days,
			Bucket:        bucket,
		})
	}

	sort.SliceStable(renewals, func(i, j int) bool {
		if renewals[i].DaysRemaining != renewals[j].DaysRemaining {
			return renewals[i].DaysRemaining < renewals[j].DaysRemaining
		}
		return renewals[i].AllocationID < renewals[j].AllocationID
	})
	return renewals, nil
}

// SendRenewalReminders notifies students whose renewal is due soon or overdue.
// It returns how many reminders were delivered.
func SendRenewalReminders(ctx context.Context, db *gorm.DB, notifier notify.Notifier) (int, error) {
	renewals, err := ListRenewals(db.WithContext(ctx), RenewalFilter{})
	if err != nil {
		return 0, err
	}
	sent := 0
	for _, r := range renewals {
		if r.Bucket != models.RenewalOverdue && r.Bucket != models.RenewalDueSoon {
			break
		}
		if r.StudentEmail == "" {
			continue
		}
		body := fmt.Sprintf("Your stay in room %s is due for renewal on %s.", r.RoomNumber, r.DueDate.Format("02 Jan 2006"))
		if r.Bucket == models.RenewalOverdue {
			body = fmt.Sprintf("Your stay in room %s was due for renewal on %s and is overdue.", r.RoomNumber, r.DueDate.Format("02 Jan 2006"))
		}
		if err := notifier.Notify(ctx, notify.Message{
			Channel: notify.ChannelEmail,
			To:      r.StudentEmail,
			Subject: "Hostel renewal reminder",
			Body:    body,
		}); err != nil {
			logger.GetLogger().Warn("Renewal reminder failed", zap.String("allocation_id", r.AllocationID), zap.Error(err))
			continue
		}
		sent++
	}
	return sent, nil
}
