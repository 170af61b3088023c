// response_test.go
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
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/hostelgate/hostelgate/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		errType string
		message string
	}{
		{"validation", types.NewValidationError(map[string]string{"roomId": "Room is required"}), 400, types.TypeValidation, "Validation failed"},
		{"transition", types.NewInvalidTransitionError("Allocation", "VACATED", "VACATED"), 409, types.TypeInvalidTransition, "Allocation cannot move from VACATED to VACATED"},
		{"wrapped", errors.Join(errors.New("context"), types.NewNotFoundError("Room", "r1")), 404, types.TypeNotFound, ""},
		{"fiber", fiber.NewError(fiber.StatusMethodNotAllowed, "Method Not Allowed"), 405, "request", "Method Not Allowed"},
		{"opaque", errors.New("dial tcp: connection refused"), 500, "server", "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error { return HandleError(c, tt.err) })

			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)

			var body ErrorResponseStruct
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.status, body.Status)
			assert.Equal(t, tt.errType, body.Type)
			if tt.message != "" {
				assert.Equal(t, tt.message, body.Message)
			}
			assert.Equal(t, "/", body.URL)
		})
	}
}

func TestPaginatedResponse(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return PaginatedResponse(c, []string{"a", "b"}, 2, 2, 5)
	})
	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	var body PaginatedResponseStruct
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Success)
	assert.Equal(t, Pagination{Page: 2, Limit: 2, Total: 5}, body.Pagination)
	assert.NotEmpty(t, body.Timestamp)
}
