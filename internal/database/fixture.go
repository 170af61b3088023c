// fixture.go
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

package database

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/hostelgate/hostelgate/data"
	"github.com/hostelgate/hostelgate/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const fixtureBatchSize = 100

// FixtureUser is a user record in a fixture document. Password is plain text and hashed on load.
type FixtureUser struct {
	models.User
	Password string `json:"password,omitempty"`
}

// Fixture is the flat document layout: one top-level array per collection
type Fixture struct {
	Rooms        []models.Room          `json:"rooms"`
	Users        []FixtureUser          `json:"users"`
	Applications []models.Application   `json:"applications"`
	Allocations  []models.Allocation    `json:"allocations"`
	Leaves       []models.Leave         `json:"leaves"`
	Interviews   []models.Interview     `json:"interviews"`
	Fees         []models.Fee           `json:"fees"`
	Transactions []models.Transaction   `json:"transactions"`
	Clearances   []models.ExitClearance `json:"clearances,omitempty"`
	AuditLogs    []models.AuditLog      `json:"auditLogs"`
}

// FixtureStats counts the rows a fixture load offered per collection
type FixtureStats map[string]int

// LoadFixture imports a fixture document inside one transaction.
// Rows whose primary key already exists are skipped, so loading is repeatable.
func LoadFixture(ctx context.Context, db *gorm.DB, r io.Reader) (FixtureStats, error) {
	var fx Fixture
	if err := json.NewDecoder(r).Decode(&fx); err != nil {
		return nil, fmt.Errorf("failed to decode fixture: %w", err)
	}

	users := make([]models.User, 0, len(fx.Users))
	for _, fu := range fx.Users {
		u := fu.User
		if u.PasswordHash == "" {
			if fu.Password == "" {
				// No usable password; the account must go through reset
				u.PasswordHash = "!"
			} else {
				hash, err := bcrypt.GenerateFromPassword([]byte(fu.Password), bcrypt.DefaultCost)
				if err != nil {
					return nil, fmt.Errorf("failed to hash fixture password for %s: %w", u.Email, err)
				}
				u.PasswordHash = string(hash)
			}
		}
		users = append(users, u)
	}

	for i := range fx.Rooms {
		if fx.Rooms[i].Status == "" {
			fx.Rooms[i].Status = fx.Rooms[i].DerivedStatus()
		}
	}

	stats := FixtureStats{}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		insert := func(name string, n int, rows interface{}) error {
			stats[name] = n
			if n == 0 {
				return nil
			}
			if err := tx.Omit(clause.Associations).
				Clauses(clause.OnConflict{DoNothing: true}).
				CreateInBatches(rows, fixtureBatchSize).Error; err != nil {
				return fmt.Errorf("failed to load %s: %w", name, err)
			}
			return nil
		}

		steps := []struct {
			name string
			n    int
			rows interface{}
		}{
			{"rooms", len(fx.Rooms), &fx.Rooms},
			{"users", len(users), &users},
			{"applications", len(fx.Applications), &fx.Applications},
			{"allocations", len(fx.Allocations), &fx.Allocations},
			{"leaves", len(fx.Leaves), &fx.Leaves},
			{"interviews", len(fx.Interviews), &fx.Interviews},
			{"fees", len(fx.Fees), &fx.Fees},
			{"transactions", len(fx.Transactions), &fx.Transactions},
			{"clearances", len(fx.Clearances), &fx.Clearances},
			{"auditLogs", len(fx.AuditLogs), &fx.AuditLogs},
		}
		for _, step := range steps {
			if err := insert(step.name, step.n, step.rows); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// ExportSnapshot writes the current store out in the fixture layout. Password hashes are not exported.
func ExportSnapshot(ctx context.Context, db *gorm.DB, w io.Writer) error {
	var fx Fixture
	var users []models.User

	db = db.WithContext(ctx)
	queries := []struct {
		name  string
		order string
		dest  interface{}
	}{
		{"rooms", "created_at", &fx.Rooms},
		{"users", "created_at", &users},
		{"applications", "created_at", &fx.Applications},
		{"allocations", "created_at", &fx.Allocations},
		{"leaves", "created_at", &fx.Leaves},
		{"interviews", "created_at", &fx.Interviews},
		{"fees", "created_at", &fx.Fees},
		{"transactions", "created_at", &fx.Transactions},
		{"clearances", "created_at", &fx.Clearances},
		{"auditLogs", "id", &fx.AuditLogs},
	}
	for _, q := range queries {
		if err := db.Order(q.order).Find(q.dest).Error; err != nil {
			return fmt.Errorf("failed to export %s: %w", q.name, err)
		}
	}

	fx.Users = make([]FixtureUser, 0, len(users))
	for _, u := range users {
		fx.Users = append(fx.Users, FixtureUser{User: u})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(&fx)
}

// LoadFixtureSource loads the fixture named by FIXTURE_FILE: a file path or the embedded seed.
// An empty name loads nothing.
func LoadFixtureSource(ctx context.Context, db *gorm.DB, name string) (FixtureStats, error) {
	switch name {
	case "":
		return FixtureStats{}, nil
	case data.SeedFixtureName:
		return LoadFixture(ctx, db, bytes.NewReader(data.SeedFixture))
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open fixture %s: %w", name, err)
	}
	defer f.Close()
	return LoadFixture(ctx, db, f)
}
