// error.go
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

package types

import (
	"errors"
	"fmt"
	"net/http"
)

// Error types carried in CustomError.Type
const (
	TypeValidation         = "validation"
	TypeNotFound           = "not_found"
	TypeInvalidTransition  = "invalid_transition"
	TypePreconditionFailed = "precondition_failed"
	TypeUnauthorized       = "unauthorized"
	TypeForbidden          = "forbidden"
	TypeConflict           = "conflict"
	TypeRateLimited        = "rate_limited"
)

// CustomError is the error returned across service and handler layers.
// Code is the HTTP status the error maps to.
type CustomError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Type    string      `json:"type"`
	Details interface{} `json:"details,omitempty"`
}

func (e *CustomError) Error() string {
	return fmt.Sprintf("%d: %s [type: %s]", e.Code, e.Message, e.Type)
}

// Is matches on Type so errors.Is(err, &CustomError{Type: TypeNotFound}) works
func (e *CustomError) Is(target error) bool {
	t, ok := target.(*CustomError)
	if !ok {
		return false
	}
	return t.Type == e.Type
}

// AsCustomError unwraps err to a *CustomError when possible
func AsCustomError(err error) (*CustomError, bool) {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// IsType reports whether err is a CustomError of the given type
func IsType(err error, errorType string) bool {
	ce, ok := AsCustomError(err)
	return ok && ce.Type == errorType
}

// NewValidationError reports field level failures
func NewValidationError(fields map[string]string) *CustomError {
	return &CustomError{
		Code:    http.StatusBadRequest,
		Message: "Validation failed",
		Type:    TypeValidation,
		Details: fields,
	}
}

// NewBadRequestError reports malformed input that has no field breakdown
func NewBadRequestError(message string) *CustomError {
	return &CustomError{
		Code:    http.StatusBadRequest,
		Message: message,
		Type:    TypeValidation,
	}
}

// NewNotFoundError reports a missing entity
func NewNotFoundError(entity, id string) *CustomError {
	return &CustomError{
		Code:    http.StatusNotFound,
		Message: fmt.Sprintf("%s '%s' not found", entity, id),
		Type:    TypeNotFound,
	}
}

// NewInvalidTransitionError reports a status change the entity's state machine does not allow
func NewInvalidTransitionError(entity, from, to string) *CustomError {
	return &CustomError{
		Code:    http.StatusConflict,
		Message: fmt.Sprintf("%s cannot move from %s to %s", entity, from, to),
		Type:    TypeInvalidTransition,
		Details: map[string]string{"entity": entity, "currentStatus": from, "requestedStatus": to},
	}
}

// NewPreconditionFailedError reports a business rule that blocks the operation
func NewPreconditionFailedError(message string) *CustomError {
	return &CustomError{
		Code:    http.StatusBadRequest,
		Message: message,
		Type:    TypePreconditionFailed,
	}
}

// NewUnauthorizedError reports missing, bad or expired credentials
func NewUnauthorizedError(message string) *CustomError {
	return &CustomError{
		Code:    http.StatusUnauthorized,
		Message: message,
		Type:    TypeUnauthorized,
	}
}

// NewForbiddenError reports an authenticated caller without the required role
func NewForbiddenError(message string) *CustomError {
	return &CustomError{
		Code:    http.StatusForbidden,
		Message: message,
		Type:    TypeForbidden,
	}
}

// NewConflictError reports a uniqueness or concurrency conflict
func NewConflictError(message string) *CustomError {
	return &CustomError{
		Code:    http.StatusConflict,
		Message: message,
		Type:    TypeConflict,
	}
}

// NewRateLimitedError reports a throttled caller
func NewRateLimitedError(message string) *CustomError {
	return &CustomError{
		Code:    http.StatusTooManyRequests,
		Message: message,
		Type:    TypeRateLimited,
	}
}
