// users.go
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
	"github.com/hostelgate/hostelgate/internal/services"
	"github.com/hostelgate/hostelgate/internal/utils"
	"gorm.io/gorm"
)

// UserHandler handles account routes
type UserHandler struct {
	DB *gorm.DB
}

// CreateUser handles POST /api/users
// @Summary Create an account
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateUserInput true "Account"
// @Success 201 {object} utils.SuccessResponseStruct{data=models.User}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /users [post]
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var in services.CreateUserInput
	if err := parseBody(c, &in); err != nil {
		return utils.HandleError(c, err)
	}
	user, err := services.CreateUser(h.DB, in, actor(c))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.MessageResponse(c, user, "Account created", fiber.StatusCreated)
}

// GetUser handles GET /api/users/:id
// @Summary Get an account
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} utils.SuccessResponseStruct{data=models.User}
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	user, err := services.GetUser(h.DB, c.Params("id"))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.SuccessResponse(c, user, fiber.StatusOK)
}
