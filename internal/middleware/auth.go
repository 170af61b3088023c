// auth.go
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

package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/hostelgate/hostelgate/internal/models"
	"github.com/hostelgate/hostelgate/internal/services"
	"github.com/hostelgate/hostelgate/internal/types"
	"github.com/hostelgate/hostelgate/internal/utils"
)

// SessionCookie carries the session token for browser clients
const SessionCookie = "hg_session"

const actorKey = "actor"

// Authenticator resolves a session token to the caller
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*services.Actor, error)
}

// RequireAuth rejects requests without a valid session
func RequireAuth(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.Authenticate(c.UserContext(), SessionToken(c))
		if err != nil {
			return utils.HandleError(c, err)
		}
		c.Locals(actorKey, actor)
		return c.Next()
	}
}

// OptionalAuth attaches the caller when a valid session is present and carries on anonymously otherwise
func OptionalAuth(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := SessionToken(c); token != "" {
			if actor, err := auth.Authenticate(c.UserContext(), token); err == nil {
				c.Locals(actorKey, actor)
			}
		}
		return c.Next()
	}
}

// RequireRoles rejects callers without one of roles. Mount after RequireAuth.
func RequireRoles(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := ActorFrom(c)
		if actor == nil {
			return utils.HandleError(c, types.NewUnauthorizedError("authentication required"))
		}
		if !actor.HasRole(roles...) {
			return utils.HandleError(c, types.NewForbiddenError("your role may not perform this operation"))
		}
		return c.Next()
	}
}

// ActorFrom returns the authenticated caller, or nil for anonymous requests
func ActorFrom(c *fiber.Ctx) *services.Actor {
	actor, _ := c.Locals(actorKey).(*services.Actor)
	return actor
}

// SessionToken reads a bearer token, falling back to the session cookie
func SessionToken(c *fiber.Ctx) string {
	if h := c.Get(fiber.HeaderAuthorization); h != "" {
		if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
			return strings.TrimSpace(h[7:])
		}
	}
	return c.Cookies(SessionCookie)
}
