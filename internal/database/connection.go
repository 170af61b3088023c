// connection.go
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

package database

import (
	"fmt"
	"net"
	"strings"
	"time"

	puresqlite "github.com/glebarez/sqlite"
	gomysql "github.com/go-sql-driver/mysql"
	"github.com/hostelgate/hostelgate/internal/config"
	"github.com/hostelgate/hostelgate/internal/logger"
	"github.com/hostelgate/hostelgate/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect establishes the primary read/write connection based on the configured DB_TYPE
func Connect(cfg *config.Config) (*gorm.DB, error) {
	return open(cfg, cfg.DBUser, cfg.DBPassword, cfg.DBConnectionLimit, "primary")
}

// ConnectReporting establishes the reporting connection used by dashboards and audit reads
func ConnectReporting(cfg *config.Config) (*gorm.DB, error) {
	return open(cfg, cfg.DBReportUser, cfg.DBReportPassword, cfg.DBReportConnectionLimit, "reporting")
}

// Dialector builds the gorm dialector for a DB_TYPE and credentials
func Dialector(cfg *config.Config, user, password string) (gorm.Dialector, error) {
	switch cfg.DBType {
	case "mysql", "mariadb":
		return mysql.Open(MySQLDSN(cfg, user, password)), nil

	case "postgres", "postgresql":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			cfg.DBHost,
			user,
			password,
			cfg.DBDatabase,
			cfg.DBPort,
		)
		return postgres.Open(dsn), nil

	case "sqlite":
		// For SQLite, DBDatabase is the file path or :memory:
		return sqlite.Open(cfg.DBDatabase), nil

	case "file":
		// Pure-Go SQLite for prototyping without CGO
		return puresqlite.Open(cfg.DBDatabase), nil

	case "sqlserver", "mssql":
		dsn := fmt.Sprintf("sqlserver://%s:%s@%s:%s?database=%s",
			user,
			password,
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBDatabase,
		)
		return sqlserver.Open(dsn), nil
	}

	return nil, fmt.Errorf("unsupported database type: %s", cfg.DBType)
}

// MySQLDSN formats a MySQL/MariaDB DSN with parseTime and utf8mb4
func MySQLDSN(cfg *config.Config, user, password string) string {
	mc := gomysql.NewConfig()
	mc.User = user
	mc.Passwd = password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.DBHost, cfg.DBPort)
	mc.DBName = cfg.DBDatabase
	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

// GormLogLevel maps DB_LOG_LEVEL onto the gorm logger levels
func GormLogLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}

func open(cfg *config.Config, user, password string, limit int, pool string) (*gorm.DB, error) {
	dialector, err := Dialector(cfg, user, password)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(GormLogLevel(cfg.DBLogLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", pool, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL DB: %w", err)
	}

	if limit <= 0 {
		limit = 1
	}
	// An in-memory SQLite database exists per connection
	if strings.Contains(cfg.DBDatabase, ":memory:") {
		limit = 1
	}
	sqlDB.SetMaxOpenConns(limit)
	sqlDB.SetMaxIdleConns((limit + 1) / 2)

	logger.GetLogger().Info("Connected to database",
		zap.String("pool", pool),
		zap.String("type", cfg.DBType),
		zap.String("database", cfg.DBDatabase),
	)

	return db, nil
}

// Models lists every persisted model in migration order
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Session{},
		&models.Application{},
		&models.TrackingSequence{},
		&models.Room{},
		&models.Allocation{},
		&models.Leave{},
		&models.Interview{},
		&models.Fee{},
		&models.Transaction{},
		&models.ExitClearance{},
		&models.AuditLog{},
	}
}

// AutoMigrate runs automatic migrations for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

// Close closes the database connection
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
