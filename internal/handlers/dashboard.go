// dashboard.go
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
	"github.com/gofiber/fiber/v2"
	"github.com/hostelgate/hostelgate/internal/models"
	"github.com/hostelgate/hostelgate/internal/services"
	"github.com/hostelgate/hostelgate/internal/types"
	"github.com/hostelgate/hostelgate/internal/utils"
	"gorm.io/gorm"
)

// DashboardHandler serves per-role aggregates from the reporting pool
type DashboardHandler struct {
	DB *gorm.DB
}

// Admin handles GET /api/dashboard/admin
// @Summary Admin dashboard
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param vertical query string false "Vertical"
// @Success 200 {object} utils.SuccessResponseStruct{data=services.AdminDashboard}
// @Router /dashboard/admin [get]
func (h *DashboardHandler) Admin(c *fiber.Ctx) error {
	d, err := services.GetAdminDashboard(h.DB, models.Vertical(upperQuery(c, "vertical")))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.SuccessResponse(c, d, fiber.StatusOK)
}

// Accounts handles GET /api/dashboard/accounts
// @Summary Accounts dashboard
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.SuccessResponseStruct{data=services.AccountsDashboard}
// @Router /dashboard/accounts [get]
func (h *DashboardHandler) Accounts(c *fiber.Ctx) error {
	d, err := services.GetAccountsDashboard(h.DB)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.SuccessResponse(c, d, fiber.StatusOK)
}

// Trustee handles GET /api/dashboard/trustee
// @Summary Trustee dashboard
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.SuccessResponseStruct{data=services.TrusteeDashboard}
// @Router /dashboard/trustee [get]
func (h *DashboardHandler) Trustee(c *fiber.Ctx) error {
	d, err := services.GetTrusteeDashboard(h.DB, actor(c))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.SuccessResponse(c, d, fiber.StatusOK)
}

// Student handles GET /api/dashboard/student
// @Summary Student dashboard
// @Description Students get their own summary. Staff pass studentId.
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param studentId query string false "Student ID, staff only"
// @Success 200 {object} utils.SuccessResponseStruct{data=services.StudentDashboard}
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /dashboard/student [get]
func (h *DashboardHandler) Student(c *fiber.Ctx) error {
	a := actor(c)
	studentID := c.Query("studentId")
	switch {
	case a.HasRole(models.RoleStudent):
		studentID = a.UserID
	case !a.IsStaff():
		return utils.HandleError(c, types.NewForbiddenError("your role may not view this dashboard"))
	case studentID == "":
		return utils.HandleError(c, types.NewValidationError(map[string]string{"studentId": "Student ID is required"}))
	}
	d, err := services.GetStudentDashboard(h.DB, studentID)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.SuccessResponse(c, d, fiber.StatusOK)
}
