// containers.go
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

package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	_ "github.com/go-sql-driver/mysql"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"
)

// ContainerEnv is read from the environment (usually a .env file) by StartContainers
type ContainerEnv struct {
	DBImage        string
	DBPort         string
	DBDatabase     string
	DBUser         string
	DBPassword     string
	DBRootPassword string
	DBReportUser   string
	DBReportPass   string
	RedisImage     string
}

// ContainerEnvFromOS reads DB_IMAGE, DB_PORT, DB_DATABASE, DB_USER, DB_PASSWORD,
// DB_ROOT_PASSWORD, DB_REPORT_USER, DB_REPORT_PASSWORD and REDIS_IMAGE
func ContainerEnvFromOS() ContainerEnv {
	env := ContainerEnv{
		DBImage:        os.Getenv("DB_IMAGE"),
		DBPort:         getenv("DB_PORT", "3306"),
		DBDatabase:     getenv("DB_DATABASE", "hostelgate"),
		DBUser:         getenv("DB_USER", "hostelgate"),
		DBPassword:     getenv("DB_PASSWORD", "hostelgate"),
		DBRootPassword: getenv("DB_ROOT_PASSWORD", "root"),
		DBReportUser:   getenv("DB_REPORT_USER", "hostelgate_report"),
		DBReportPass:   getenv("DB_REPORT_PASSWORD", "hostelgate_report"),
		RedisImage:     getenv("REDIS_IMAGE", "redis:7-alpine"),
	}
	return env
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Containers is a running MariaDB and Redis pair on a private network
type Containers struct {
	Network *testcontainers.DockerNetwork
	DB      testcontainers.Container
	Redis   testcontainers.Container

	DBHost    string
	DBPort    string
	RedisAddr string
}

// Terminate stops everything that was started. t may be nil outside tests.
func (tc *Containers) Terminate(t *testing.T) {
	ctx := context.Background()
	if tc.Redis != nil {
		if err := tc.Redis.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate Redis: %v", err)
		}
	}
	if tc.DB != nil {
		if err := tc.DB.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate MariaDB: %v", err)
		}
	}
	if tc.Network != nil {
		if err := tc.Network.Remove(ctx); err != nil {
			logMessage(t, "Failed to remove network: %v", err)
		}
	}
}

// StartContainers starts MariaDB and Redis and creates the read-only reporting user.
// t may be nil when run from the standalone command.
func StartContainers(ctx context.Context, t *testing.T, env ContainerEnv) (*Containers, error) {
	if env.DBImage == "" {
		return nil, fmt.Errorf("DB_IMAGE is required")
	}
	tc := &Containers{}

	nw, err := network.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create network: %w", err)
	}
	tc.Network = nw

	if present, err := imageExists(ctx, env.DBImage); err == nil && !present {
		logMessage(t, "Image %s is not local, it will be pulled", env.DBImage)
	}

	dbPort, err := nat.NewPort("tcp", env.DBPort)
	if err != nil {
		tc.Terminate(t)
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	db, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        env.DBImage,
			ExposedPorts: []string{string(dbPort)},
			Env: map[string]string{
				"MYSQL_ROOT_PASSWORD": env.DBRootPassword,
				"MYSQL_DATABASE":      env.DBDatabase,
				"MYSQL_USER":          env.DBUser,
				"MYSQL_PASSWORD":      env.DBPassword,
			},
			HostConfigModifier: func(hc *container.HostConfig) {
				// Throwaway data directory
				hc.Tmpfs = map[string]string{"/var/lib/mysql": "rw"}
			},
			WaitingFor:     wait.ForListeningPort(dbPort).WithStartupTimeout(90 * time.Second),
			Networks:       []string{nw.Name},
			NetworkAliases: map[string][]string{nw.Name: {"db"}},
		},
		Started: true,
	})
	if err != nil {
		tc.Terminate(t)
		return nil, fmt.Errorf("failed to start MariaDB: %w", err)
	}
	tc.DB = db

	host, err := db.Host(ctx)
	if err != nil {
		tc.Terminate(t)
		return nil, err
	}
	mapped, err := db.MappedPort(ctx, dbPort)
	if err != nil {
		tc.Terminate(t)
		return nil, err
	}
	tc.DBHost, tc.DBPort = host, mapped.Port()

	if err := createReportUser(ctx, env, tc.DBHost, tc.DBPort); err != nil {
		tc.Terminate(t)
		return nil, err
	}

	redisPort := nat.Port("6379/tcp")
	rc, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:          env.RedisImage,
			ExposedPorts:   []string{string(redisPort)},
			WaitingFor:     wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
			Networks:       []string{nw.Name},
			NetworkAliases: map[string][]string{nw.Name: {"redis"}},
		},
		Started: true,
	})
	if err != nil {
		tc.Terminate(t)
		return nil, fmt.Errorf("failed to start Redis: %w", err)
	}
	tc.Redis = rc
	redisHost, _ := rc.Host(ctx)
	redisMapped, err := rc.MappedPort(ctx, redisPort)
	if err != nil {
		tc.Terminate(t)
		return nil, err
	}
	tc.RedisAddr = fmt.Sprintf("%s:%s", redisHost, redisMapped.Port())

	logMessage(t, "DB_HOST=%s DB_PORT=%s REDIS_ADDR=%s", tc.DBHost, tc.DBPort, tc.RedisAddr)
	return tc, nil
}

// createReportUser adds the SELECT-only account used by the reporting pool
func createReportUser(ctx context.Context, env ContainerEnv, host, port string) error {
	db, err := sql.Open("mysql", fmt.Sprintf("root:%s@tcp(%s:%s)/", env.DBRootPassword, host, port))
	if err != nil {
		return fmt.Errorf("failed to connect to MariaDB for setup: %w", err)
	}
	defer db.Close()

	// The port opens before the server accepts logins
	for i := 0; i < 30; i++ {
		if err = db.PingContext(ctx); err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	if err != nil {
		return fmt.Errorf("MariaDB not ready after 30 seconds: %w", err)
	}

	statements := []string{
		fmt.Sprintf("CREATE USER IF NOT EXISTS '%s'@'%%' IDENTIFIED BY '%s'", env.DBReportUser, env.DBReportPass),
		fmt.Sprintf("GRANT SELECT ON %s.* TO '%s'@'%%'", env.DBDatabase, env.DBReportUser),
		"FLUSH PRIVILEGES",
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to run %q: %w", stmt, err)
		}
	}
	return nil
}

func imageExists(ctx context.Context, name string) (bool, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return false, err
	}
	defer cli.Close()

	images, err := cli.ImageList(ctx, image.ListOptions{})
	if err != nil {
		return false, err
	}
	for _, img := range images {
		for _, tag := range img.RepoTags {
			if tag == name {
				return true, nil
			}
		}
	}
	return false, nil
}

func logMessage(t *testing.T, format string, args ...any) {
	if t != nil {
		t.Logf(format, args...)
	} else {
		fmt.Printf(format+"\n", args...)
	}
}
