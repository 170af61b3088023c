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

package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/hostelgate/hostelgate/internal/services"
	"github.com/hostelgate/hostelgate/internal/utils"
	"gorm.io/gorm"
)

// AuditHandler serves the audit trail from the reporting pool
type AuditHandler struct {
	DB *gorm.DB
}

// EntityHistory handles GET /api/audit/entity/:type/:id
// @Summary Entity history
// @Description Every audit row for one entity, oldest first
// @Tags Audit
// @Produce json
// @Security BearerAuth
// @Param type path string true "Entity type, e.g. APPLICATION"
// @Param id path string true "Entity ID"
// @Success 200 {object} utils.SuccessResponseStruct{data=[]models.AuditLog}
// @Router /audit/entity/{type}/{id} [get]
func (h *AuditHandler) EntityHistory(c *fiber.Ctx) error {
	logs, err := services.GetEntityHistory(h.DB, strings.ToUpper(c.Params("type")), c.Params("id"))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.SuccessResponse(c, logs, fiber.StatusOK)
}

// ListAuditLogs handles GET /api/auditLogs
// @Summary Audit log
// @Description The audit log newest first
// @Tags Audit
// @Produce json
// @Security BearerAuth
// @Param entityType query string false "Entity type"
// @Param entityId query string false "Entity ID"
// @Param action query string false "Action"
// @Param performedBy query string false "User ID"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} utils.PaginatedResponseStruct{data=[]models.AuditLog}
// @Router /auditLogs [get]
func (h *AuditHandler) ListAuditLogs(c *fiber.Ctx) error {
	page := parsePage(c)
	logs, total, err := services.ListAuditLogs(h.DB, services.AuditFilter{
		EntityType:  upperQuery(c, "entityType"),
		EntityID:    c.Query("entityId"),
		Action:      upperQuery(c, "action"),
		PerformedBy: c.Query("performedBy"),
	}, page)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.PaginatedResponse(c, logs, page.Page, page.Limit, total)
}
