// main.go
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

// Command healthcheck probes the database and Redis the server would use and exits non-zero
// when either is unreachable. It is meant for container HEALTHCHECK instructions.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/hostelgate/hostelgate/internal/config"
	"github.com/hostelgate/hostelgate/internal/database"
	"github.com/hostelgate/hostelgate/internal/services"
	"github.com/redis/go-redis/v9"
)

func main() {
	timeout := flag.Duration("timeout", 5*time.Second, "overall deadline for the probe")
	skipRedis := flag.Bool("skip-redis", false, "do not probe the OTP store")
	quiet := flag.Bool("q", false, "print nothing, report through the exit code only")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	var rdb redis.UniversalClient
	if !*skipRedis {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer client.Close()
		rdb = client
	}

	result := services.HealthCheck(ctx, cfg, db, rdb)
	if !*quiet {
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			log.Fatalf("Failed to marshal health check result: %v", err)
		}
		fmt.Println(string(out))
	}

	if result.Status != "healthy" {
		os.Exit(1)
	}
}
