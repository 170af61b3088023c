// common.go
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
	"errors"
	"time"

	"github.com/hostelgate/hostelgate/internal/models"
	"github.com/hostelgate/hostelgate/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Paging defaults and bounds for list operations
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// now is the service clock, replaced in tests
var now = func() time.Time {
	return time.Now().UTC()
}

// Actor is the authenticated caller of an operation. A nil Actor is an anonymous caller.
type Actor struct {
	UserID    string           `json:"userId"`
	SessionID string           `json:"sessionId,omitempty"`
	Email     string           `json:"email"`
	Name      string           `json:"name"`
	Role      models.Role      `json:"role"`
	Vertical  *models.Vertical `json:"vertical,omitempty"`
}

// ID returns the actor's user id for audit rows, or nil when anonymous
func (a *Actor) ID() *string {
	if a == nil || a.UserID == "" {
		return nil
	}
	id := a.UserID
	return &id
}

// HasRole reports whether the actor holds one of roles
func (a *Actor) HasRole(roles ...models.Role) bool {
	if a == nil {
		return false
	}
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

// IsStaff reports whether the actor is trust staff
func (a *Actor) IsStaff() bool {
	return a != nil && a.Role.IsStaff()
}

// Page selects one page of a list
type Page struct {
	Page  int
	Limit int
}

// Normalize clamps page and limit into range
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

// Offset is the row offset of the page
func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

func forUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// findForUpdate loads one row by id under a row lock, mapping a miss to a not found error
func findForUpdate(tx *gorm.DB, dest interface{}, entity, id string) error {
	if err := forUpdate(tx).Where("id = ?", id).First(dest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.NewNotFoundError(entity, id)
		}
		return err
	}
	return nil
}

// findByID loads one row by id, mapping a miss to a not found error
func findByID(db *gorm.DB, dest interface{}, entity, id string) error {
	if err := db.Where("id = ?", id).First(dest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.NewNotFoundError(entity, id)
		}
		return err
	}
	return nil
}

func timePtr(t time.Time) *time.Time {
	return &t
}
