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

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hostelgate/hostelgate/internal/testutil"
	"github.com/joho/godotenv"
)

func main() {
	var showHelp bool
	flag.BoolVar(&showHelp, "h", false, "show help")
	var envFilename string
	flag.StringVar(&envFilename, "f", "", "path to the .env file")
	flag.Parse()

	usage := `
Start the MariaDB and Redis containers HostelGate needs for local development.

Usage:

testcontainers [-h] [-f ENV_FILE_PATH]

ENV_FILE_PATH: path to the .env file (DB_IMAGE, DB_PORT, DB_DATABASE, DB_USER,
DB_PASSWORD, DB_ROOT_PASSWORD, DB_REPORT_USER, DB_REPORT_PASSWORD, REDIS_IMAGE)

example
  testcontainers -f /path/to/something/.env
`
	if showHelp {
		fmt.Println(usage)
		return
	}

	if envFilename != "" {
		log.Printf("Loading environment variables from %s\n", envFilename)
		if err := godotenv.Load(envFilename); err != nil {
			log.Fatalf("Failed to load environment variables: %v\n", err)
		}
	} else {
		log.Printf("No environment file specified, using current environment variables\n")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	containers, err := testutil.StartContainers(ctx, nil, testutil.ContainerEnvFromOS())
	if err != nil {
		log.Fatalf("Failed to create test containers: %v\n", err)
	}

	fmt.Printf("DB_TYPE=mariadb DB_HOST=%s DB_PORT=%s REDIS_ADDR=%s\n", containers.DBHost, containers.DBPort, containers.RedisAddr)
	<-ctx.Done()
	log.Printf("Received signal, terminating test containers...\n")
	containers.Terminate(nil)
	os.Exit(0)
}
