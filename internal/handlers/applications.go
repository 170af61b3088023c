// applications.go
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

// ContactVerifier checks a verification token issued by /otp/verify
type ContactVerifier interface {
	VerifyContactToken(token string, contacts ...string) error
}

// ApplicationHandler handles admissions routes
type ApplicationHandler struct {
	DB       *gorm.DB
	Verifier ContactVerifier
}

// StatusChangeRequest is the body of PUT /applications/:id/status
type StatusChangeRequest struct {
	Status  models.ApplicationStatus `json:"status"`
	Remarks string                   `json:"remarks,omitempty"`
}

// contactVerified reports whether the input carries a valid token for one of its contacts.
// A missing token is not an error; a bad one is.
func (h *ApplicationHandler) contactVerified(in services.ApplicationInput) (bool, error) {
	if in.VerificationToken == "" {
		return false, nil
	}
	if err := h.Verifier.VerifyContactToken(in.VerificationToken, in.ApplicantPhone, in.ApplicantEmail); err != nil {
		return false, err
	}
	return true, nil
}

// ListApplications handles GET /api/applications
// @Summary List applications
// @Description List applications newest first, filtered by status, vertical or a search term
// @Tags Applications
// @Produce json
// @Security BearerAuth
// @Param status query string false "Application status"
// @Param vertical query string false "Vertical"
// @Param search query string false "Tracking number, name or phone fragment"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} utils.PaginatedResponseStruct{data=[]models.Application}
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /applications [get]
func (h *ApplicationHandler) ListApplications(c *fiber.Ctx) error {
	page := parsePage(c)
	apps, total, err := services.ListApplications(h.DB, services.ApplicationFilter{
		Status:   models.ApplicationStatus(upperQuery(c, "status")),
		Vertical: models.Vertical(upperQuery(c, "vertical")),
		Search:   c.Query("search"),
	}, page)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.PaginatedResponse(c, apps, page.Page, page.Limit, total)
}

// CreateApplication handles POST /api/applications
// @Summary Create a draft application
// @Description Create a DRAFT application and assign its tracking number
// @Tags Applications
// @Accept json
// @Produce json
// @Param body body services.ApplicationInput true "Application"
// @Success 201 {object} utils.SuccessResponseStruct{data=models.Application}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /applications [post]
func (h *ApplicationHandler) CreateApplication(c *fiber.Ctx) error {
	var in services.ApplicationInput
	if err := parseBody(c, &in); err != nil {
		return utils.HandleError(c, err)
	}
	verified, err := h.contactVerified(in)
	if err != nil {
		return utils.HandleError(c, err)
	}
	app, err := services.CreateApplication(h.DB, in, verified, actor(c))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.MessageResponse(c, app, "Application created with tracking number "+app.TrackingNumber, fiber.StatusCreated)
}

// GetApplication handles GET /api/applications/:id
// @Summary Get an application
// @Tags Applications
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} utils.SuccessResponseStruct{data=models.Application}
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /applications/{id} [get]
func (h *ApplicationHandler) GetApplication(c *fiber.Ctx) error {
	app, err := services.GetApplication(h.DB, c.Params("id"))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.SuccessResponse(c, app, fiber.StatusOK)
}

// UpdateApplication handles PUT /api/applications/:id
// @Summary Edit a draft application
// @Description Replace the payload of a DRAFT application
// @Tags Applications
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param body body services.ApplicationInput true "Application"
// @Success 200 {object} utils.SuccessResponseStruct{data=models.Application}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /applications/{id} [put]
func (h *ApplicationHandler) UpdateApplication(c *fiber.Ctx) error {
	var in services.ApplicationInput
	if err := parseBody(c, &in); err != nil {
		return utils.HandleError(c, err)
	}
	verified, err := h.contactVerified(in)
	if err != nil {
		return utils.HandleError(c, err)
	}
	app, err := services.UpdateApplication(h.DB, c.Params("id"), in, verified, actor(c))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.MessageResponse(c, app, "Application updated", fiber.StatusOK)
}

// ArchiveApplication handles DELETE /api/applications/:id
// @Summary Archive an application
// @Description Soft delete an application by moving it to ARCHIVED
// @Tags Applications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Success 200 {object} utils.SuccessResponseStruct{data=models.Application}
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /applications/{id} [delete]
func (h *ApplicationHandler) ArchiveApplication(c *fiber.Ctx) error {
	app, err := services.ArchiveApplication(h.DB, c.Params("id"), actor(c))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.MessageResponse(c, app, "Application archived", fiber.StatusOK)
}

// SubmitApplication handles POST /api/applications/:id/submit
// @Summary Submit an application
// @Description Move a complete DRAFT application to SUBMITTED
// @Tags Applications
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} utils.SuccessResponseStruct{data=models.Application}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /applications/{id}/submit [post]
func (h *ApplicationHandler) SubmitApplication(c *fiber.Ctx) error {
	app, err := services.SubmitApplication(h.DB, c.Params("id"), actor(c))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.MessageResponse(c, app, "Application submitted", fiber.StatusOK)
}

// ChangeStatus handles PUT /api/applications/:id/status
// @Summary Review an application
// @Description Move an application to REVIEW, INTERVIEW, APPROVED or REJECTED
// @Tags Applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Param body body StatusChangeRequest true "Target status"
// @Success 200 {object} utils.SuccessResponseStruct{data=models.Application}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /applications/{id}/status [put]
func (h *ApplicationHandler) ChangeStatus(c *fiber.Ctx) error {
	var req StatusChangeRequest
	if err := parseBody(c, &req); err != nil {
		return utils.HandleError(c, err)
	}
	app, err := services.ChangeApplicationStatus(h.DB, c.Params("id"), req.Status, req.Remarks, actor(c))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.MessageResponse(c, app, "Application moved to "+string(app.CurrentStatus), fiber.StatusOK)
}

// TrackApplication handles GET /api/applications/track/:trackingNumber
// @Summary Track an application
// @Description Public status view by tracking number
// @Tags Applications
// @Produce json
// @Param trackingNumber path string true "Tracking number, e.g. HG-2025-00001"
// @Success 200 {object} utils.SuccessResponseStruct{data=services.TrackingView}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /applications/track/{trackingNumber} [get]
func (h *ApplicationHandler) TrackApplication(c *fiber.Ctx) error {
	view, err := services.TrackApplication(h.DB, c.Params("trackingNumber"))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.SuccessResponse(c, view, fiber.StatusOK)
}
