// testutil.go
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

// Package testutil holds shared fixtures for package tests and the container runner.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/hostelgate/hostelgate/internal/database"
	"github.com/hostelgate/hostelgate/internal/models"
	"github.com/hostelgate/hostelgate/internal/notify"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Password is the plain text password of every user created by CreateUser
const Password = "correct-horse-battery"

var (
	hashOnce sync.Once
	hash     string
)

// passwordHash hashes Password once per test binary, at the minimum cost
func passwordHash() string {
	hashOnce.Do(func() {
		h, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
		if err != nil {
			panic(err)
		}
		hash = string(h)
	})
	return hash
}

// NewDB opens a migrated in-memory SQLite database private to the test
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get test database handle: %v", err)
	}
	// Every connection to :memory: is a new database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

// NewRedis starts an in-process Redis for the test
func NewRedis(t *testing.T) (*miniredis.Miniredis, redis.UniversalClient) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

// Recorder is a notifier that keeps every message. Set Err to make deliveries fail.
type Recorder struct {
	mu       sync.Mutex
	Messages []notify.Message
	Err      error
}

// Notify records msg, or returns Err
func (r *Recorder) Notify(_ context.Context, msg notify.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Messages = append(r.Messages, msg)
	return nil
}

// Last returns the most recent message
func (r *Recorder) Last() (notify.Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Messages) == 0 {
		return notify.Message{}, false
	}
	return r.Messages[len(r.Messages)-1], true
}

// UserOption adjusts a user before it is saved
type UserOption func(*models.User)

// WithVertical sets the user's vertical
func WithVertical(v models.Vertical) UserOption {
	return func(u *models.User) { u.Vertical = &v }
}

// WithGuardian sets the guardian contact details
func WithGuardian(email, phone string) UserOption {
	return func(u *models.User) {
		u.GuardianName = "Guardian of " + u.Name
		u.GuardianEmail = email
		u.GuardianPhone = phone
	}
}

// WithEmail overrides the generated email
func WithEmail(email string) UserOption {
	return func(u *models.User) { u.Email = email }
}

// CreateUser saves an active user whose password is Password
func CreateUser(t *testing.T, db *gorm.DB, role models.Role, opts ...UserOption) *models.User {
	t.Helper()
	id := uuid.NewString()
	u := &models.User{
		ID:           id,
		Email:        strings.ToLower(fmt.Sprintf("%s-%s@example.org", role, id[:8])),
		PasswordHash: passwordHash(),
		Name:         fmt.Sprintf("%s %s", role, id[:4]),
		Role:         role,
		Active:       true,
	}
	if role == models.RoleStudent {
		v := models.VerticalBoysHostel
		u.Vertical = &v
	}
	for _, opt := range opts {
		opt(u)
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return u
}

// CreateRoom saves a room with the given capacity and occupancy
func CreateRoom(t *testing.T, db *gorm.DB, number string, vertical models.Vertical, capacity, occupancy int) *models.Room {
	t.Helper()
	r := &models.Room{
		RoomNumber:       number,
		Vertical:         vertical,
		Capacity:         capacity,
		CurrentOccupancy: occupancy,
	}
	r.Status = r.DerivedStatus()
	if err := db.Create(r).Error; err != nil {
		t.Fatalf("Failed to create room: %v", err)
	}
	return r
}

// CreateAllocation saves an ACTIVE allocation without touching room occupancy
func CreateAllocation(t *testing.T, db *gorm.DB, studentID, roomID string, allocatedAt time.Time) *models.Allocation {
	t.Helper()
	a := &models.Allocation{
		StudentID:   studentID,
		RoomID:      roomID,
		Status:      models.AllocationActive,
		AllocatedAt: allocatedAt,
	}
	if err := db.Create(a).Error; err != nil {
		t.Fatalf("Failed to create allocation: %v", err)
	}
	return a
}

// CreateFee saves a fee for a student
func CreateFee(t *testing.T, db *gorm.DB, studentID, amount string, due time.Time, status models.FeeStatus) *models.Fee {
	t.Helper()
	f := &models.Fee{
		StudentID: studentID,
		Title:     "Hostel fee",
		Amount:    decimal.RequireFromString(amount),
		DueDate:   due,
		Status:    status,
	}
	if err := db.Create(f).Error; err != nil {
		t.Fatalf("Failed to create fee: %v", err)
	}
	return f
}

// JSON encodes v as a JSON column value
func JSON(t testing.TB, v interface{}) models.JSON {
	t.Helper()
	j, err := models.NewJSON(v)
	if err != nil {
		t.Fatalf("Failed to encode JSON column: %v", err)
	}
	return j
}

// AuditActions lists the actions recorded for one entity, oldest first
func AuditActions(t *testing.T, db *gorm.DB, entityType, entityID string) []string {
	t.Helper()
	var actions []string
	if err := db.Model(&models.AuditLog{}).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("id ASC").
		Pluck("action", &actions).Error; err != nil {
		t.Fatalf("Failed to read audit log: %v", err)
	}
	return actions
}
