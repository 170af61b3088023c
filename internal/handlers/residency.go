// residency.go
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
	"github.com/hostelgate/hostelgate/internal/notify"
	"github.com/hostelgate/hostelgate/internal/services"
	"github.com/hostelgate/hostelgate/internal/utils"
	"gorm.io/gorm"
)

// ResidencyHandler handles rooms, allocations, renewals, leaves and exit clearances
type ResidencyHandler struct {
	DB       *gorm.DB
	Notifier notify.Notifier
}

// TransferRequest is the body of PUT /allocations/:id
type TransferRequest struct {
	RoomID string `json:"roomId"`
}

// LeaveDecisionRequest is the body of PUT /leaves/:id/approve and /reject
type LeaveDecisionRequest struct {
	Reason string `json:"reason,omitempty"`
}

// ListRooms handles GET /api/rooms
// @Summary List rooms
// @Tags Rooms
// @Produce json
// @Security BearerAuth
// @Param vertical query string false "Vertical"
// @Param status query string false "AVAILABLE, FULL or MAINTENANCE"
// @Param available query bool false "Only rooms with a free bed"
// @Success 200 {object} utils.SuccessResponseStruct{data=[]models.Room}
// @Router /rooms [get]
func (h *ResidencyHandler) ListRooms(c *fiber.Ctx) error {
	rooms, err := services.ListRooms(h.DB, services.RoomFilter{
		Vertical:      models.Vertical(upperQuery(c, "vertical")),
		Status:        models.RoomStatus(upperQuery(c, "status")),
		AvailableOnly: c.QueryBool("available", false),
	})
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.SuccessResponse(c, rooms, fiber.StatusOK)
}

// GetRoom handles GET /api/rooms/:id
// @Summary Get a room
// @Tags Rooms
// @Produce json
// @Security BearerAuth
// @Param id path string true "Room ID"
// @Success 200 {object} utils.SuccessResponseStruct{data=models.Room}
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /rooms/{id} [get]
func (h *ResidencyHandler) GetRoom(c *fiber.Ctx) error {
	room, err := services.GetRoom(h.DB, c.Params("id"))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.SuccessResponse(c, room, fiber.StatusOK)
}

// CreateRoom handles POST /api/rooms
// @Summary Create a room
// @Tags Rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.RoomInput true "Room"
// @Success 201 {object} utils.SuccessResponseStruct{data=models.Room}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /rooms [post]
func (h *ResidencyHandler) CreateRoom(c *fiber.Ctx) error {
	var in services.RoomInput
	if err := parseBody(c, &in); err != nil {
		return utils.HandleError(c, err)
	}
	room, err := services.CreateRoom(h.DB, in, actor(c))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.MessageResponse(c, room, "Room created", fiber.StatusCreated)
}

// UpdateRoom handles PUT /api/rooms/:id
// @Summary Update a room
// @Description Change floor, capacity or maintenance state
// @Tags Rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Room ID"
// @Param body body services.RoomInput true "Changes"
// @Success 200 {object} utils.SuccessResponseStruct{data=models.Room}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /rooms/{id} [put]
func (h *ResidencyHandler) UpdateRoom(c *fiber.Ctx) error {
	var in services.RoomInput
	if err := parseBody(c, &in); err != nil {
		return utils.HandleError(c, err)
	}
	room, err := services.UpdateRoom(h.DB, c.Params("id"), in, actor(c))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.MessageResponse(c, room, "Room updated", fiber.StatusOK)
}

// ListAllocations handles GET /api/allocations
// @Summary List allocations
// @Tags Allocations
// @Produce json
// @Security BearerAuth
// @Param status query string false "ACTIVE or VACATED"
// @Param studentId query string false "Student ID"
// @Param roomId query string false "Room ID"
// @Param vertical query string false "Vertical"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} utils.PaginatedResponseStruct{data=[]models.Allocation}
// @Router /allocations [get]
func (h *ResidencyHandler) ListAllocations(c *fiber.Ctx) error {
	page := parsePage(c)
	allocs, total, err := services.ListAllocations(h.DB, services.AllocationFilter{
		Status:    models.AllocationStatus(upperQuery(c, "status")),
		StudentID: c.Query("studentId"),
		RoomID:    c.Query("roomId"),
		Vertical:  models.Vertical(upperQuery(c, "vertical")),
	}, page)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.PaginatedResponse(c, allocs, page.Page, page.Limit, total)
}

// Allocate handles POST /api/allocations
// @Summary Allocate a room
// @Description Place a student in a room with a free bed
// @Tags Allocations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.AllocateInput true "Student and room"
// @Success 201 {object} utils.SuccessResponseStruct{data=models.Allocation}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /allocations [post]
func (h *ResidencyHandler) Allocate(c *fiber.Ctx) error {
	var in services.AllocateInput
	if err := parseBody(c, &in); err != nil {
		return utils.HandleError(c, err)
	}
	alloc, err := services.Allocate(h.DB, in, actor(c))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.MessageResponse(c, alloc, "Room allocated", fiber.StatusCreated)
}

// Transfer handles PUT /api/allocations/:id
// @Summary Transfer an allocation
// @Description Move an ACTIVE allocation to another room
// @Tags Allocations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Allocation ID"
// @Param body body TransferRequest true "Target room"
// @Success 200 {object} utils.SuccessResponseStruct{data=models.Allocation}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /allocations/{id} [put]
func (h *ResidencyHandler) Transfer(c *fiber.Ctx) error {
	var req TransferRequest
	if err := parseBody(c, &req); err != nil {
		return utils.HandleError(c, err)
	}
	alloc, err := services.Transfer(h.DB, c.Params("id"), req.RoomID, actor(c))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.MessageResponse(c, alloc, "Allocation transferred", fiber.StatusOK)
}

// Vacate handles PUT /api/allocations/vacate/:id
// @Summary Vacate an allocation
// @Tags Allocations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Allocation ID"
// @Success 200 {object} utils.SuccessResponseStruct{data=models.Allocation}
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /allocations/vacate/{id} [put]
func (h *ResidencyHandler) Vacate(c *fiber.Ctx) error {
	alloc, err := services.Vacate(h.DB, c.Params("id"), actor(c))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.MessageResponse(c, alloc, "Allocation vacated", fiber.StatusOK)
}

// ListRenewals handles GET /api/renewals
// @Summary List renewals
// @Description Renewal state of every ACTIVE allocation, most urgent first
// @Tags Allocations
// @Produce json
// @Security BearerAuth
// @Param vertical query string false "Vertical"
// @Param bucket query string false "OVERDUE, DUE_SOON, UPCOMING or NOT_DUE"
// @Success 200 {object} utils.SuccessResponseStruct{data=[]services.Renewal}
// @Router /renewals [get]
func (h *ResidencyHandler) ListRenewals(c *fiber.Ctx) error {
	renewals, err := services.ListRenewals(h.DB, services.RenewalFilter{
		Vertical:  models.Vertical(upperQuery(c, "vertical")),
		Bucket:    models.RenewalBucket(upperQuery(c, "bucket")),
		StudentID: c.Query("studentId"),
	})
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.SuccessResponse(c, renewals, fiber.StatusOK)
}

// ListLeaves handles GET /api/leaves
// @Summary List leaves
// @Description Staff see every leave, students their own and parents their children's
// @Tags Leaves
// @Produce json
// @Security BearerAuth
// @Param status query string false "PENDING, APPROVED or REJECTED"
// @Param studentId query string false "Student ID"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} utils.PaginatedResponseStruct{data=[]models.Leave}
// @Router /leaves [get]
func (h *ResidencyHandler) ListLeaves(c *fiber.Ctx) error {
	page := parsePage(c)
	leaves, total, err := services.ListLeaves(h.DB, services.LeaveFilter{
		Status:    models.LeaveStatus(upperQuery(c, "status")),
		StudentID: c.Query("studentId"),
	}, page, actor(c))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.PaginatedResponse(c, leaves, page.Page, page.Limit, total)
}

// CreateLeave handles POST /api/leaves
// @Summary Request leave
// @Tags Leaves
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.LeaveInput true "Leave request"
// @Success 201 {object} utils.SuccessResponseStruct{data=models.Leave}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /leaves [post]
func (h *ResidencyHandler) CreateLeave(c *fiber.Ctx) error {
	var in services.LeaveInput
	if err := parseBody(c, &in); err != nil {
		return utils.HandleError(c, err)
	}
	leave, err := services.CreateLeave(h.DB, in, actor(c))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.MessageResponse(c, leave, "Leave requested", fiber.StatusCreated)
}

// ApproveLeave handles PUT /api/leaves/:id/approve
// @Summary Approve leave
// @Tags Leaves
// @Produce json
// @Security BearerAuth
// @Param id path string true "Leave ID"
// @Success 200 {object} utils.SuccessResponseStruct{data=models.Leave}
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /leaves/{id}/approve [put]
func (h *ResidencyHandler) ApproveLeave(c *fiber.Ctx) error {
	return h.decideLeave(c, models.LeaveApproved)
}

// RejectLeave handles PUT /api/leaves/:id/reject
// @Summary Reject leave
// @Description A reason of at least 10 characters is required
// @Tags Leaves
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Leave ID"
// @Param body body LeaveDecisionRequest true "Rejection reason"
// @Success 200 {object} utils.SuccessResponseStruct{data=models.Leave}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /leaves/{id}/reject [put]
func (h *ResidencyHandler) RejectLeave(c *fiber.Ctx) error {
	return h.decideLeave(c, models.LeaveRejected)
}

func (h *ResidencyHandler) decideLeave(c *fiber.Ctx, to models.LeaveStatus) error {
	var req LeaveDecisionRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return utils.HandleError(c, err)
		}
	}
	leave, err := services.DecideLeave(c.UserContext(), h.DB, h.Notifier, c.Params("id"), to, req.Reason, actor(c))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.MessageResponse(c, leave, "Leave "+string(leave.Status), fiber.StatusOK)
}

// InitiateClearance handles POST /api/clearances
// @Summary Start an exit clearance
// @Tags Clearances
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.InitiateClearanceInput true "Allocation"
// @Success 201 {object} utils.SuccessResponseStruct{data=models.ExitClearance}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /clearances [post]
func (h *ResidencyHandler) InitiateClearance(c *fiber.Ctx) error {
	var in services.InitiateClearanceInput
	if err := parseBody(c, &in); err != nil {
		return utils.HandleError(c, err)
	}
	clearance, err := services.InitiateClearance(h.DB, in, actor(c))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.MessageResponse(c, clearance, "Exit clearance started", fiber.StatusCreated)
}

// GetClearance handles GET /api/clearances/:id
// @Summary Get an exit clearance
// @Tags Clearances
// @Produce json
// @Security BearerAuth
// @Param id path string true "Clearance ID"
// @Success 200 {object} utils.SuccessResponseStruct{data=models.ExitClearance}
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /clearances/{id} [get]
func (h *ResidencyHandler) GetClearance(c *fiber.Ctx) error {
	clearance, err := services.GetClearance(h.DB, c.Params("id"))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.SuccessResponse(c, clearance, fiber.StatusOK)
}

// UpdateClearance handles PUT /api/clearances/:id
// @Summary Update an exit clearance checklist
// @Tags Clearances
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Clearance ID"
// @Param body body services.UpdateClearanceInput true "Checklist changes"
// @Success 200 {object} utils.SuccessResponseStruct{data=models.ExitClearance}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /clearances/{id} [put]
func (h *ResidencyHandler) UpdateClearance(c *fiber.Ctx) error {
	var in services.UpdateClearanceInput
	if err := parseBody(c, &in); err != nil {
		return utils.HandleError(c, err)
	}
	clearance, err := services.UpdateClearance(h.DB, c.Params("id"), in, actor(c))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.MessageResponse(c, clearance, "Exit clearance updated", fiber.StatusOK)
}

// CompleteClearance handles PUT /api/clearances/:id/complete
// @Summary Complete an exit clearance
// @Description Requires a finished checklist and no open fees. Vacates the allocation.
// @Tags Clearances
// @Produce json
// @Security BearerAuth
// @Param id path string true "Clearance ID"
// @Success 200 {object} utils.SuccessResponseStruct{data=models.ExitClearance}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /clearances/{id}/complete [put]
func (h *ResidencyHandler) CompleteClearance(c *fiber.Ctx) error {
	clearance, err := services.CompleteClearance(h.DB, c.Params("id"), actor(c))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.MessageResponse(c, clearance, "Exit clearance completed", fiber.StatusOK)
}

// CancelClearance handles PUT /api/clearances/:id/cancel
// @Summary Cancel an exit clearance
// @Tags Clearances
// @Produce json
// @Security BearerAuth
// @Param id path string true "Clearance ID"
// @Success 200 {object} utils.SuccessResponseStruct{data=models.ExitClearance}
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /clearances/{id}/cancel [put]
func (h *ResidencyHandler) CancelClearance(c *fiber.Ctx) error {
	clearance, err := services.CancelClearance(h.DB, c.Params("id"), actor(c))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.MessageResponse(c, clearance, "Exit clearance cancelled", fiber.StatusOK)
}
