// response.go
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

package utils

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/hostelgate/hostelgate/internal/logger"
	"github.com/hostelgate/hostelgate/internal/types"
	"go.uber.org/zap"
)

// Pagination describes one page of a list
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// SuccessResponseStruct defines the schema for success responses
type SuccessResponseStruct struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Message   string      `json:"message,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// PaginatedResponseStruct defines the schema for list responses
type PaginatedResponseStruct struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
	Timestamp  string      `json:"timestamp"`
}

// ErrorResponseStruct defines the schema for error responses
type ErrorResponseStruct struct {
	Success   bool        `json:"success"`
	Status    int         `json:"status"`
	Error     string      `json:"error"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
	Type      string      `json:"type,omitempty"`
	Timestamp string      `json:"timestamp"`
	URL       string      `json:"url"`
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// SuccessResponse sends a standard success response
func SuccessResponse(c *fiber.Ctx, data interface{}, status int) error {
	return c.Status(status).JSON(SuccessResponseStruct{
		Success:   true,
		Data:      data,
		Timestamp: now(),
	})
}

// MessageResponse sends a success response with a message
func MessageResponse(c *fiber.Ctx, data interface{}, message string, status int) error {
	return c.Status(status).JSON(SuccessResponseStruct{
		Success:   true,
		Data:      data,
		Message:   message,
		Timestamp: now(),
	})
}

// PaginatedResponse sends one page of a list
func PaginatedResponse(c *fiber.Ctx, data interface{}, page, limit int, total int64) error {
	return c.Status(fiber.StatusOK).JSON(PaginatedResponseStruct{
		Success:    true,
		Data:       data,
		Pagination: Pagination{Page: page, Limit: limit, Total: total},
		Timestamp:  now(),
	})
}

// ErrorResponse sends a standard error response
func ErrorResponse(c *fiber.Ctx, message string, status int, errorType string) error {
	return DetailedErrorResponse(c, message, status, errorType, nil)
}

// DetailedErrorResponse sends an error response with details such as field errors
func DetailedErrorResponse(c *fiber.Ctx, message string, status int, errorType string, details interface{}) error {
	return c.Status(status).JSON(ErrorResponseStruct{
		Success:   false,
		Status:    status,
		Error:     message,
		Message:   message,
		Details:   details,
		Type:      errorType,
		Timestamp: now(),
		URL:       c.OriginalURL(),
	})
}

// NotFoundResponse sends a 404 not found response
func NotFoundResponse(c *fiber.Ctx, message string) error {
	return ErrorResponse(c, message, fiber.StatusNotFound, types.TypeNotFound)
}

// HandleError renders a CustomError as-is. Anything else is logged and surfaced as an opaque 500.
func HandleError(c *fiber.Ctx, err error) error {
	if ce, ok := types.AsCustomError(err); ok {
		return DetailedErrorResponse(c, ce.Message, ce.Code, ce.Type, ce.Details)
	}

	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		return ErrorResponse(c, fe.Message, fe.Code, "request")
	}

	logger.FromFiber(c).Error("Request failed",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return ErrorResponse(c, "Internal server error", fiber.StatusInternalServerError, "server")
}
