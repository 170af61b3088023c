// hooks.go
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
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func newID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

// BeforeCreate assigns a UUID when none is set
func (u *User) BeforeCreate(*gorm.DB) error { newID(&u.ID); return nil }

// BeforeCreate assigns a UUID when none is set
func (s *Session) BeforeCreate(*gorm.DB) error { newID(&s.ID); return nil }

// BeforeCreate assigns a UUID when none is set
func (a *Application) BeforeCreate(*gorm.DB) error { newID(&a.ID); return nil }

// BeforeCreate assigns a UUID when none is set
func (i *Interview) BeforeCreate(*gorm.DB) error { newID(&i.ID); return nil }

// BeforeCreate assigns a UUID when none is set
func (r *Room) BeforeCreate(*gorm.DB) error { newID(&r.ID); return nil }

// BeforeCreate assigns a UUID when none is set
func (a *Allocation) BeforeCreate(*gorm.DB) error { newID(&a.ID); return nil }

// BeforeCreate assigns a UUID when none is set
func (l *Leave) BeforeCreate(*gorm.DB) error { newID(&l.ID); return nil }

// BeforeCreate assigns a UUID when none is set
func (e *ExitClearance) BeforeCreate(*gorm.DB) error { newID(&e.ID); return nil }

// BeforeCreate assigns a UUID when none is set
func (f *Fee) BeforeCreate(*gorm.DB) error { newID(&f.ID); return nil }

// BeforeCreate assigns a UUID when none is set
func (t *Transaction) BeforeCreate(*gorm.DB) error { newID(&t.ID); return nil }
