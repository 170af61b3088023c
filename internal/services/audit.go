// audit.go
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

	"github.com/hostelgate/hostelgate/internal/models"
	"gorm.io/gorm"
	"gorm.io/hints"
)

// AuditEntry describes one state-changing operation
type AuditEntry struct {
	EntityType  string
	EntityID    string
	Action      string
	Old         interface{}
	New         interface{}
	PerformedBy *string
	Metadata    map[string]interface{}
}

// WriteAudit appends an audit row. Call it with the transaction of the mutation it records.
func WriteAudit(tx *gorm.DB, e AuditEntry) error {
	oldValue, err := models.NewJSON(e.Old)
	if err != nil {
		return fmt.Errorf("failed to encode audit old value: %w", err)
	}
	newValue, err := models.NewJSON(e.New)
	if err != nil {
		return fmt.Errorf("failed to encode audit new value: %w", err)
	}
	var metadata models.JSON
	if len(e.Metadata) > 0 {
		if metadata, err = models.NewJSON(e.Metadata); err != nil {
			return fmt.Errorf("failed to encode audit metadata: %w", err)
		}
	}

	row := models.AuditLog{
		EntityType:  e.EntityType,
		EntityID:    e.EntityID,
		Action:      e.Action,
		OldValue:    oldValue,
		NewValue:    newValue,
		PerformedBy: e.PerformedBy,
		PerformedAt: now(),
		Metadata:    metadata,
	}
	if err := tx.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

// AuditFilter narrows an audit log listing
type AuditFilter struct {
	EntityType  string
	EntityID    string
	Action      string
	PerformedBy string
}

func auditQuery(db *gorm.DB, tag string) *gorm.DB {
	q := db.Model(&models.AuditLog{}).Clauses(hints.CommentBefore("select", tag))
	if db.Dialector.Name() == "mysql" {
		q = q.Clauses(hints.UseIndex("idx_audit_entity"))
	}
	return q
}

// GetEntityHistory returns every audit row for one entity, oldest first
func GetEntityHistory(db *gorm.DB, entityType, entityID string) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	err := auditQuery(db, "audit:entity-history").
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("performed_at ASC, id ASC").
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load audit history: %w", err)
	}
	return logs, nil
}

// ListAuditLogs returns one page of the audit log, newest first
func ListAuditLogs(db *gorm.DB, filter AuditFilter, page Page) ([]models.AuditLog, int64, error) {
	page = page.Normalize()

	q := db.Model(&models.AuditLog{}).Clauses(hints.CommentBefore("select", "audit:list"))
	if filter.EntityType != "" {
		q = q.Where("entity_type = ?", filter.EntityType)
	}
	if filter.EntityID != "" {
		q = q.Where("entity_id = ?", filter.EntityID)
	}
	if filter.Action != "" {
		q = q.Where("action = ?", filter.Action)
	}
	if filter.PerformedBy != "" {
		q = q.Where("performed_by = ?", filter.PerformedBy)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	var logs []models.AuditLog
	if err := q.Order("performed_at DESC, id DESC").
		Offset(page.Offset()).Limit(page.Limit).
		Find(&logs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return logs, total, nil
}
