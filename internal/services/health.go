// health.go
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
	"context"
	"strings"

	"github.com/hostelgate/hostelgate/internal/config"
	"github.com/hostelgate/hostelgate/internal/logger"
	"github.com/hostelgate/hostelgate/internal/utils"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status       string            `json:"status"`
	Database     string            `json:"database"`
	Redis        string            `json:"redis"`
	Details      map[string]string `json:"details,omitempty"`
	ErrorMessage string            `json:"error,omitempty"`
}

// HealthCheck pings the database and the OTP store. A nil redis client is reported as skipped.
func HealthCheck(ctx context.Context, cfg *config.Config, db *gorm.DB, rdb redis.UniversalClient) HealthCheckResult {
	log := logger.GetLogger()
	result := HealthCheckResult{
		Status:  "healthy",
		Details: make(map[string]string),
	}
	var failures []string

	if err := utils.PingDB(ctx, db); err != nil {
		result.Status = "unhealthy"
		result.Database = "unreachable"
		result.Details["database_error"] = err.Error()
		failures = append(failures, err.Error())
		log.Warn("Health check failed - database", zap.Error(err))
	} else {
		result.Database = "ok"
		result.Details["database_type"] = cfg.DBType
		result.Details["database_name"] = cfg.DBDatabase
	}

	switch {
	case rdb == nil:
		result.Redis = "skipped"
	default:
		if err := utils.PingRedis(ctx, rdb); err != nil {
			result.Status = "unhealthy"
			result.Redis = "unreachable"
			result.Details["redis_error"] = err.Error()
			failures = append(failures, err.Error())
			log.Warn("Health check failed - redis", zap.Error(err))
		} else {
			result.Redis = "ok"
			result.Details["redis_addr"] = cfg.RedisAddr
		}
	}

	if len(failures) > 0 {
		result.ErrorMessage = strings.Join(failures, "; ")
	} else {
		log.Debug("Health check passed - all systems operational")
	}
	return result
}
