// finance.go
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

// FinanceHandler handles fee and payment routes
type FinanceHandler struct {
	DB            *gorm.DB
	PaymentSecret string
}

// ListFees handles GET /api/fees
// @Summary List fees
// @Description Staff see every fee, students their own and parents their children's
// @Tags Fees
// @Produce json
// @Security BearerAuth
// @Param status query string false "PENDING, PAID or OVERDUE"
// @Param studentId query string false "Student ID"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} utils.PaginatedResponseStruct{data=[]models.Fee}
// @Router /fees [get]
func (h *FinanceHandler) ListFees(c *fiber.Ctx) error {
	page := parsePage(c)
	fees, total, err := services.ListFees(h.DB, services.FeeFilter{
		Status:    models.FeeStatus(upperQuery(c, "status")),
		StudentID: c.Query("studentId"),
	}, page, actor(c))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.PaginatedResponse(c, fees, page.Page, page.Limit, total)
}

// RaiseFees handles POST /api/fees
// @Summary Raise fees
// @Description Raise one PENDING fee per listed student
// @Tags Fees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.RaiseFeeInput true "Fee"
// @Success 201 {object} utils.SuccessResponseStruct{data=[]models.Fee}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /fees [post]
func (h *FinanceHandler) RaiseFees(c *fiber.Ctx) error {
	var in services.RaiseFeeInput
	if err := parseBody(c, &in); err != nil {
		return utils.HandleError(c, err)
	}
	fees, err := services.RaiseFees(h.DB, in, actor(c))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.MessageResponse(c, fees, "Fees raised", fiber.StatusCreated)
}

// InitiatePayment handles POST /api/payments
// @Summary Start a payment
// @Description Record a PENDING transaction for the exact amount of an unpaid fee
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.PaymentInput true "Payment"
// @Success 201 {object} utils.SuccessResponseStruct{data=models.Transaction}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /payments [post]
func (h *FinanceHandler) InitiatePayment(c *fiber.Ctx) error {
	var in services.PaymentInput
	if err := parseBody(c, &in); err != nil {
		return utils.HandleError(c, err)
	}
	txn, err := services.InitiatePayment(h.DB, in, actor(c))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.MessageResponse(c, txn, "Payment initiated", fiber.StatusCreated)
}

// VerifyPayment handles POST /api/payments/verify
// @Summary Settle a payment
// @Description Mark a PENDING transaction SUCCESS or FAILED. Success marks the fee PAID.
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.VerifyPaymentInput true "Gateway outcome"
// @Success 200 {object} utils.SuccessResponseStruct{data=services.PaymentResult}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /payments/verify [post]
func (h *FinanceHandler) VerifyPayment(c *fiber.Ctx) error {
	var in services.VerifyPaymentInput
	if err := parseBody(c, &in); err != nil {
		return utils.HandleError(c, err)
	}
	result, err := services.VerifyPayment(h.DB, h.PaymentSecret, in, actor(c))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.MessageResponse(c, result, "Payment "+string(result.Transaction.Status), fiber.StatusOK)
}
