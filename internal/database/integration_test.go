// integration_test.go
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

package database_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/hostelgate/hostelgate/data"
	"github.com/hostelgate/hostelgate/internal/config"
	"github.com/hostelgate/hostelgate/internal/database"
	"github.com/hostelgate/hostelgate/internal/models"
	"github.com/hostelgate/hostelgate/internal/services"
	"github.com/hostelgate/hostelgate/internal/testutil"
	"github.com/hostelgate/hostelgate/internal/utils"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestWithMariaDB runs against real MariaDB and Redis containers. Set DB_IMAGE to enable it.
func TestWithMariaDB(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	env := testutil.ContainerEnvFromOS()
	if env.DBImage == "" {
		t.Skip("DB_IMAGE not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	tc, err := testutil.StartContainers(ctx, t, env)
	require.NoError(t, err)
	t.Cleanup(func() { tc.Terminate(t) })

	cfg := &config.Config{
		DBType:                  "mariadb",
		DBHost:                  tc.DBHost,
		DBPort:                  tc.DBPort,
		DBDatabase:              env.DBDatabase,
		DBUser:                  env.DBUser,
		DBPassword:              env.DBPassword,
		DBConnectionLimit:       8,
		DBReportUser:            env.DBReportUser,
		DBReportPassword:        env.DBReportPass,
		DBReportConnectionLimit: 2,
		DBLogLevel:              "silent",
	}

	db, err := database.Connect(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })
	require.NoError(t, database.AutoMigrate(db))
	require.NoError(t, utils.PingDB(ctx, db))

	rdb := redis.NewClient(&redis.Options{Addr: tc.RedisAddr})
	t.Cleanup(func() { rdb.Close() })
	require.NoError(t, utils.PingRedis(ctx, rdb))

	stats, err := database.LoadFixtureSource(ctx, db, data.SeedFixtureName)
	require.NoError(t, err)
	require.Positive(t, stats["rooms"])

	t.Run("last bed goes to exactly one student", func(t *testing.T) {
		admin := testutil.CreateUser(t, db, models.RoleAdmin)
		actor := &services.Actor{UserID: admin.ID, Role: models.RoleAdmin}
		room := testutil.CreateRoom(t, db, "IT-1", models.VerticalBoysHostel, 1, 0)

		const contenders = 4
		students := make([]*models.User, contenders)
		for i := range students {
			students[i] = testutil.CreateUser(t, db, models.RoleStudent)
		}

		var wg sync.WaitGroup
		errs := make([]error, contenders)
		for i, s := range students {
			wg.Add(1)
			go func(i int, studentID string) {
				defer wg.Done()
				_, errs[i] = services.Allocate(db, services.AllocateInput{StudentID: studentID, RoomID: room.ID}, actor)
			}(i, s.ID)
		}
		wg.Wait()

		won := 0
		for _, err := range errs {
			if err == nil {
				won++
			}
		}
		assert.Equal(t, 1, won)

		reloaded, err := services.GetRoom(db, room.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, reloaded.CurrentOccupancy)
		assert.Equal(t, models.RoomFull, reloaded.Status)
	})

	t.Run("reporting pool is read only", func(t *testing.T) {
		report, err := database.ConnectReporting(cfg)
		require.NoError(t, err)
		t.Cleanup(func() { database.Close(report) })

		var count int64
		require.NoError(t, report.Model(&models.Room{}).Count(&count).Error)
		assert.Positive(t, count)

		err = report.Create(&models.Room{RoomNumber: "RO-1", Vertical: models.VerticalDharamshala, Capacity: 1, Status: models.RoomAvailable}).Error
		assert.Error(t, err)
	})
}
