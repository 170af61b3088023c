// middleware_test.go
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

package middleware_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/hostelgate/hostelgate/internal/middleware"
	"github.com/hostelgate/hostelgate/internal/models"
	"github.com/hostelgate/hostelgate/internal/services"
	"github.com/hostelgate/hostelgate/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAuth accepts a fixed set of tokens
type stubAuth map[string]*services.Actor

func (s stubAuth) Authenticate(_ context.Context, token string) (*services.Actor, error) {
	if token == "" {
		return nil, types.NewUnauthorizedError("authentication required")
	}
	if a, ok := s[token]; ok {
		return a, nil
	}
	return nil, types.NewUnauthorizedError("session is invalid or expired")
}

func newApp(auth middleware.Authenticator) *fiber.App {
	app := fiber.New()
	whoami := func(c *fiber.Ctx) error {
		a := middleware.ActorFrom(c)
		if a == nil {
			return c.SendString("anonymous")
		}
		return c.SendString(a.UserID)
	}
	app.Get("/private", middleware.RequireAuth(auth), whoami)
	app.Get("/optional", middleware.OptionalAuth(auth), whoami)
	app.Get("/admin", middleware.RequireAuth(auth), middleware.RequireRoles(models.RoleAdmin), whoami)
	app.Get("/roles-only", middleware.RequireRoles(models.RoleAdmin), whoami)
	return app
}

func do(t *testing.T, app *fiber.App, req *http.Request) (int, string) {
	t.Helper()
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func errorType(t *testing.T, body string) string {
	t.Helper()
	var env struct {
		Type string `json:"type"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &env))
	return env.Type
}

func TestRequireAuth(t *testing.T) {
	app := newApp(stubAuth{
		"tok-student": {UserID: "student-1", Role: models.RoleStudent},
	})

	status, body := do(t, app, httptest.NewRequest(http.MethodGet, "/private", nil))
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, types.TypeUnauthorized, errorType(t, body))

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer tok-student")
	status, body = do(t, app, req)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "student-1", body)

	req = httptest.NewRequest(http.MethodGet, "/private", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: "tok-student"})
	status, body = do(t, app, req)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "student-1", body)

	req = httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer tok-unknown")
	status, _ = do(t, app, req)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestBearerTokenWinsOverCookie(t *testing.T) {
	app := newApp(stubAuth{
		"tok-a": {UserID: "a", Role: models.RoleStudent},
		"tok-b": {UserID: "b", Role: models.RoleStudent},
	})
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "bearer tok-a")
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: "tok-b"})
	status, body := do(t, app, req)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "a", body)

	// A non-bearer scheme falls back to the cookie
	req = httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: "tok-b"})
	status, body = do(t, app, req)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "b", body)
}

func TestOptionalAuth(t *testing.T) {
	app := newApp(stubAuth{"tok": {UserID: "u1", Role: models.RoleParent}})

	status, body := do(t, app, httptest.NewRequest(http.MethodGet, "/optional", nil))
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "anonymous", body)

	req := httptest.NewRequest(http.MethodGet, "/optional", nil)
	req.Header.Set("Authorization", "Bearer expired")
	status, body = do(t, app, req)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "anonymous", body)

	req = httptest.NewRequest(http.MethodGet, "/optional", nil)
	req.Header.Set("Authorization", "Bearer tok")
	status, body = do(t, app, req)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "u1", body)
}

func TestRequireRoles(t *testing.T) {
	app := newApp(stubAuth{
		"admin":   {UserID: "admin-1", Role: models.RoleAdmin},
		"trustee": {UserID: "trustee-1", Role: models.RoleTrustee},
	})

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer trustee")
	status, body := do(t, app, req)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, types.TypeForbidden, errorType(t, body))

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer admin")
	status, body = do(t, app, req)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "admin-1", body)

	// Without RequireAuth in front there is no actor at all
	status, body = do(t, app, httptest.NewRequest(http.MethodGet, "/roles-only", nil))
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, types.TypeUnauthorized, errorType(t, body))
}

func TestRateLimiter(t *testing.T) {
	rl := middleware.NewRateLimiter(1, 2)
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"), "limits are per key")

	app := fiber.New()
	app.Get("/", middleware.NewRateLimiter(1, 1).Handler(), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	status, _ := do(t, app, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, fiber.StatusOK, status)
	status, body := do(t, app, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, fiber.StatusTooManyRequests, status)
	assert.Equal(t, types.TypeRateLimited, errorType(t, body))
}

func TestVersionMiddleware(t *testing.T) {
	app := fiber.New()
	app.Get("/", middleware.VersionMiddleware(), func(c *fiber.Ctx) error {
		return c.SendString(middleware.APIVersion(c))
	})

	tests := []struct {
		header string
		status int
		want   string
	}{
		{"", fiber.StatusOK, "1.0.0"},
		{"1.0", fiber.StatusOK, "1.0.0"},
		{"v1", fiber.StatusOK, "1.0.0"},
		{"1.0.0", fiber.StatusOK, "1.0.0"},
		{"2.1.0", fiber.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			req.Header.Set(middleware.APIVersionHeader, tt.header)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		require.NoError(t, err)

		assert.Equal(t, tt.status, resp.StatusCode, "header %q", tt.header)
		if tt.status == fiber.StatusOK {
			assert.Equal(t, tt.want, string(body), "header %q", tt.header)
			assert.Equal(t, tt.want, resp.Header.Get(middleware.APIVersionHeader))
		} else {
			assert.Equal(t, types.TypeValidation, errorType(t, string(body)))
		}
	}
}
