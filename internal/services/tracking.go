// tracking.go
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
	"regexp"
	"strconv"

	"github.com/hostelgate/hostelgate/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var trackingPattern = regexp.MustCompile(`^HG-(\d+)-(\d+)$`)

// FormatTrackingNumber renders HG-<year>-<seq> with a 5 digit sequence
func FormatTrackingNumber(year, seq int) string {
	return fmt.Sprintf("HG-%d-%05d", year, seq)
}

// ParseTrackingNumber extracts year and sequence from a tracking number
func ParseTrackingNumber(s string) (year, seq int, ok bool) {
	m := trackingPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, false
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, 0, false
	}
	seq, err = strconv.Atoi(m[2])
	if err != nil {
		return 0, 0, false
	}
	return year, seq, true
}

// NextTrackingNumber advances the year's counter and returns the new tracking number.
// It must run inside the transaction that inserts the application.
func NextTrackingNumber(tx *gorm.DB, year int) (string, error) {
	for attempt := 0; attempt < 2; attempt++ {
		result := tx.Model(&models.TrackingSequence{}).
			Where("year = ?", year).
			Update("last_value", gorm.Expr("last_value + 1"))
		if result.Error != nil {
			return "", fmt.Errorf("failed to advance tracking sequence: %w", result.Error)
		}

		if result.RowsAffected == 1 {
			var seq models.TrackingSequence
			if err := tx.Where("year = ?", year).First(&seq).Error; err != nil {
				return "", fmt.Errorf("failed to read tracking sequence: %w", err)
			}
			return FormatTrackingNumber(year, seq.LastValue), nil
		}

		// First application of the year: seed from any numbers already issued
		highest, err := highestIssuedSequence(tx, year)
		if err != nil {
			return "", err
		}
		created := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.TrackingSequence{Year: year, LastValue: highest + 1})
		if created.Error != nil {
			return "", fmt.Errorf("failed to seed tracking sequence: %w", created.Error)
		}
		if created.RowsAffected == 1 {
			return FormatTrackingNumber(year, highest+1), nil
		}
		// Another writer seeded the row first; advance it instead
	}
	return "", fmt.Errorf("failed to allocate tracking number for %d", year)
}

func highestIssuedSequence(tx *gorm.DB, year int) (int, error) {
	var numbers []string
	if err := tx.Model(&models.Application{}).
		Where("tracking_number LIKE ?", fmt.Sprintf("HG-%d-%%", year)).
		Pluck("tracking_number", &numbers).Error; err != nil {
		return 0, fmt.Errorf("failed to scan issued tracking numbers: %w", err)
	}

	highest := 0
	for _, n := range numbers {
		if y, seq, ok := ParseTrackingNumber(n); ok && y == year && seq > highest {
			highest = seq
		}
	}
	return highest, nil
}
