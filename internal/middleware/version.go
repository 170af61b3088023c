// version.go
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
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/hostelgate/hostelgate/internal/types"
	"github.com/hostelgate/hostelgate/internal/utils"
)

// APIVersionHeader carries the requested API version in and the served version out
const APIVersionHeader = "X-Api-Version"

// DefaultAPIVersion is served when the client does not ask for one
const DefaultAPIVersion = "1.0.0"

const apiVersionKey = "apiVersion"

// supportedVersions maps accepted spellings to the canonical version
var supportedVersions = map[string]string{
	"1":     DefaultAPIVersion,
	"1.0":   DefaultAPIVersion,
	"1.0.0": DefaultAPIVersion,
}

// VersionMiddleware resolves X-Api-Version, rejects versions this server does not speak,
// and echoes the served version on the response
func VersionMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requested := strings.TrimPrefix(strings.TrimSpace(c.Get(APIVersionHeader)), "v")
		version := DefaultAPIVersion
		if requested != "" {
			v, ok := supportedVersions[requested]
			if !ok {
				return utils.HandleError(c, types.NewBadRequestError("unsupported API version "+requested))
			}
			version = v
		}
		c.Locals(apiVersionKey, version)
		c.Set(APIVersionHeader, version)
		return c.Next()
	}
}

// APIVersion returns the version resolved for this request
func APIVersion(c *fiber.Ctx) string {
	if v, ok := c.Locals(apiVersionKey).(string); ok {
		return v
	}
	return DefaultAPIVersion
}
