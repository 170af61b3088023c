// common.go
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
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/hostelgate/hostelgate/internal/middleware"
	"github.com/hostelgate/hostelgate/internal/services"
	"github.com/hostelgate/hostelgate/internal/types"
)

// parsePage reads page and limit query parameters, clamped to the service bounds
func parsePage(c *fiber.Ctx) services.Page {
	return services.Page{
		Page:  c.QueryInt("page", 1),
		Limit: c.QueryInt("limit", services.DefaultPageLimit),
	}.Normalize()
}

// parseBody decodes a JSON body, reporting malformed input as a validation error
func parseBody(c *fiber.Ctx, dest interface{}) error {
	if len(c.Body()) == 0 {
		return types.NewBadRequestError("request body is required")
	}
	if err := c.BodyParser(dest); err != nil {
		return types.NewBadRequestError("request body is not valid JSON: " + err.Error())
	}
	return nil
}

// actor returns the authenticated caller or nil
func actor(c *fiber.Ctx) *services.Actor {
	return middleware.ActorFrom(c)
}

// upperQuery reads a query parameter normalized to upper case, for enum filters
func upperQuery(c *fiber.Ctx, key string) string {
	return strings.ToUpper(strings.TrimSpace(c.Query(key)))
}
