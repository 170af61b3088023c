// application.go
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

// Application is an admissions application for one vertical
type Application struct {
	ID              string            `json:"id" gorm:"type:char(36);primaryKey"`
	TrackingNumber  string            `json:"trackingNumber" gorm:"size:20;uniqueIndex;not null"`
	Vertical        Vertical          `json:"vertical" gorm:"size:32;not null;index"`
	ApplicantName   string            `json:"applicantName" gorm:"size:255;not null"`
	ApplicantEmail  string            `json:"applicantEmail,omitempty" gorm:"size:255"`
	ApplicantPhone  string            `json:"applicantPhone" gorm:"size:32;not null"`
	PersonalData    JSON              `json:"personalData"`
	GuardianData    JSON              `json:"guardianData"`
	EducationData   JSON              `json:"educationData"`
	Documents       JSON              `json:"documents"`
	ContactVerified bool              `json:"contactVerified" gorm:"not null;default:false"`
	CurrentStatus   ApplicationStatus `json:"currentStatus" gorm:"size:32;not null;index"`
	DecisionRemarks string            `json:"decisionRemarks,omitempty" gorm:"type:text"`
	ReviewedBy      *string           `json:"reviewedBy,omitempty" gorm:"type:char(36)"`
	SubmittedAt     *time.Time        `json:"submittedAt,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// TrackingSequence is the per-year counter behind HG-<year>-<seq> tracking numbers
type TrackingSequence struct {
	Year      int `gorm:"primaryKey;autoIncrement:false"`
	LastValue int `gorm:"not null;default:0"`
	UpdatedAt time.Time
}

// Interview is an admissions interview held by a trustee
type Interview struct {
	ID              string          `json:"id" gorm:"type:char(36);primaryKey"`
	ApplicationID   string          `json:"applicationId" gorm:"type:char(36);not null;index"`
	TrusteeID       string          `json:"trusteeId" gorm:"type:char(36);not null;index"`
	ScheduleTime    time.Time       `json:"scheduleTime" gorm:"not null"`
	Mode            InterviewMode   `json:"mode" gorm:"size:16;not null"`
	Status          InterviewStatus `json:"status" gorm:"size:16;not null;index"`
	FinalScore      *int            `json:"finalScore,omitempty"`
	InternalRemarks string          `json:"internalRemarks,omitempty" gorm:"type:text"`
	CompletedAt     *time.Time      `json:"completedAt,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// TableName overrides the table name for Application
func (Application) TableName() string {
	return "applications"
}

// TableName overrides the table name for TrackingSequence
func (TrackingSequence) TableName() string {
	return "tracking_sequences"
}

// TableName overrides the table name for Interview
func (Interview) TableName() string {
	return "interviews"
}
