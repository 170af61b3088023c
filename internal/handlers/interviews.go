// interviews.go
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
	"github.com/hostelgate/hostelgate/internal/utils"
	"gorm.io/gorm"
)

// InterviewHandler handles admissions interview routes
type InterviewHandler struct {
	DB *gorm.DB
}

// ListInterviews handles GET /api/interviews
// @Summary List interviews
// @Description Trustees see interviews assigned to them
// @Tags Interviews
// @Produce json
// @Security BearerAuth
// @Param status query string false "SCHEDULED, COMPLETED or CANCELLED"
// @Param applicationId query string false "Application ID"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} utils.PaginatedResponseStruct{data=[]models.Interview}
// @Router /interviews [get]
func (h *InterviewHandler) ListInterviews(c *fiber.Ctx) error {
	page := parsePage(c)
	interviews, total, err := services.ListInterviews(h.DB, services.InterviewFilter{
		Status:        models.InterviewStatus(upperQuery(c, "status")),
		ApplicationID: c.Query("applicationId"),
		TrusteeID:     c.Query("trusteeId"),
	}, page, actor(c))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.PaginatedResponse(c, interviews, page.Page, page.Limit, total)
}

// ScheduleInterview handles POST /api/interviews
// @Summary Schedule an interview
// @Description Schedule an interview and move the application to INTERVIEW
// @Tags Interviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.ScheduleInterviewInput true "Interview"
// @Success 201 {object} utils.SuccessResponseStruct{data=models.Interview}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /interviews [post]
func (h *InterviewHandler) ScheduleInterview(c *fiber.Ctx) error {
	var in services.ScheduleInterviewInput
	if err := parseBody(c, &in); err != nil {
		return utils.HandleError(c, err)
	}
	interview, err := services.ScheduleInterview(h.DB, in, actor(c))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.MessageResponse(c, interview, "Interview scheduled", fiber.StatusCreated)
}

// CompleteInterview handles PUT /api/interviews/:id/complete
// @Summary Complete an interview
// @Description Record a final score between 0 and 100 and internal remarks
// @Tags Interviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Interview ID"
// @Param body body services.CompleteInterviewInput true "Outcome"
// @Success 200 {object} utils.SuccessResponseStruct{data=models.Interview}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /interviews/{id}/complete [put]
func (h *InterviewHandler) CompleteInterview(c *fiber.Ctx) error {
	var in services.CompleteInterviewInput
	if err := parseBody(c, &in); err != nil {
		return utils.HandleError(c, err)
	}
	interview, err := services.CompleteInterview(h.DB, c.Params("id"), in, actor(c))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.MessageResponse(c, interview, "Interview completed", fiber.StatusOK)
}

// CancelInterview handles PUT /api/interviews/:id/cancel
// @Summary Cancel an interview
// @Tags Interviews
// @Produce json
// @Security BearerAuth
// @Param id path string true "Interview ID"
// @Success 200 {object} utils.SuccessResponseStruct{data=models.Interview}
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /interviews/{id}/cancel [put]
func (h *InterviewHandler) CancelInterview(c *fiber.Ctx) error {
	interview, err := services.CancelInterview(h.DB, c.Params("id"), actor(c))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.MessageResponse(c, interview, "Interview cancelled", fiber.StatusOK)
}
