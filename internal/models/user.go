// user.go
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

// User is a staff member, student or parent account
type User struct {
	ID            string    `json:"id" gorm:"type:char(36);primaryKey"`
	Email         string    `json:"email" gorm:"size:255;uniqueIndex;not null"`
	PasswordHash  string    `json:"-" gorm:"size:255;not null"`
	Name          string    `json:"name" gorm:"size:255;not null"`
	Phone         string    `json:"phone,omitempty" gorm:"size:32"`
	Role          Role      `json:"role" gorm:"size:32;not null;index"`
	Vertical      *Vertical `json:"vertical,omitempty" gorm:"size:32;index"`
	GuardianName  string    `json:"guardianName,omitempty" gorm:"size:255"`
	GuardianPhone string    `json:"guardianPhone,omitempty" gorm:"size:32"`
	GuardianEmail string    `json:"guardianEmail,omitempty" gorm:"size:255"`
	ApplicationID *string   `json:"applicationId,omitempty" gorm:"type:char(36);index"`
	Active        bool      `json:"active" gorm:"not null;default:true"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Session backs a signed session token; revoking the row invalidates the token
type Session struct {
	ID        string     `json:"id" gorm:"type:char(36);primaryKey"`
	UserID    string     `json:"userId" gorm:"type:char(36);not null;index"`
	ExpiresAt time.Time  `json:"expiresAt" gorm:"not null"`
	RevokedAt *time.Time `json:"revokedAt,omitempty"`
	IP        string     `json:"ip,omitempty" gorm:"size:64"`
	UserAgent string     `json:"userAgent,omitempty" gorm:"size:255"`
	CreatedAt time.Time  `json:"createdAt"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}

// TableName overrides the table name for Session
func (Session) TableName() string {
	return "sessions"
}
