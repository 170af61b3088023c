// health_test.go
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

package services

import (
	"testing"

	"github.com/hostelgate/hostelgate/internal/config"
	"github.com/hostelgate/hostelgate/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func TestHealthCheck(t *testing.T) {
	db := testutil.NewDB(t)
	cfg := &config.Config{DBType: "sqlite", DBDatabase: ":memory:", RedisAddr: "in-process"}

	result := HealthCheck(t.Context(), cfg, db, nil)
	assert.Equal(t, "healthy", result.Status)
	assert.Equal(t, "ok", result.Database)
	assert.Equal(t, "skipped", result.Redis)

	mr, rdb := testutil.NewRedis(t)
	result = HealthCheck(t.Context(), cfg, db, rdb)
	assert.Equal(t, "healthy", result.Status)
	assert.Equal(t, "ok", result.Redis)

	mr.Close()
	result = HealthCheck(t.Context(), cfg, db, rdb)
	assert.Equal(t, "unhealthy", result.Status)
	assert.Equal(t, "unreachable", result.Redis)
	assert.Contains(t, result.ErrorMessage, "redis ping failed")
}
