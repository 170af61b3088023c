// config.go
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

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port          string
	Environment   string
	LogLevel      string
	PublicBaseURL string

	// Database configuration
	DBType                  string // mysql, mariadb, postgres, sqlite, file, sqlserver
	DBHost                  string
	DBPort                  string
	DBDatabase              string
	DBUser                  string
	DBPassword              string
	DBConnectionLimit       int
	DBReportUser            string
	DBReportPassword        string
	DBReportConnectionLimit int
	DBLogLevel              string
	FixtureFile             string

	// Session and OTP configuration
	JWTSecret         string
	SessionTTL        time.Duration
	OTPTTL            time.Duration
	OTPResendCooldown time.Duration
	OTPMaxAttempts    int

	// Redis configuration
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Notification configuration
	NotifyProvider  string // log, aws
	AWSRegion       string
	NotifyEmailFrom string

	// Uploads
	UploadDir      string
	UploadMaxBytes int64

	// Rate limiting for auth and otp routes
	RateLimitRPS   int
	RateLimitBurst int

	// Bootstrap administrator
	AdminEmail    string
	AdminPassword string

	// Jobs
	FeeSweepSchedule        string
	RenewalReminderSchedule string

	// Payment gateway callback signing secret
	PaymentSecret string
}

var defaults = map[string]interface{}{
	"PORT":                       "3000",
	"ENVIRONMENT":                "development",
	"LOG_LEVEL":                  "info",
	"PUBLIC_BASE_URL":            "http://localhost:3000",
	"DB_TYPE":                    "mysql",
	"DB_HOST":                    "localhost",
	"DB_PORT":                    "3306",
	"DB_CONNECTION_LIMIT":        10,
	"DB_REPORT_CONNECTION_LIMIT": 4,
	"DB_LOG_LEVEL":               "warn",
	"SESSION_TTL":                "24h",
	"OTP_TTL":                    "10m",
	"OTP_RESEND_COOLDOWN":        "60s",
	"OTP_MAX_ATTEMPTS":           5,
	"REDIS_ADDR":                 "localhost:6379",
	"REDIS_DB":                   0,
	"NOTIFY_PROVIDER":            "log",
	"AWS_REGION":                 "ap-south-1",
	"NOTIFY_EMAIL_FROM":          "no-reply@hostelgate.local",
	"UPLOAD_DIR":                 "./uploads",
	"UPLOAD_MAX_BYTES":           5 * 1024 * 1024,
	"RATE_LIMIT_RPS":             5,
	"RATE_LIMIT_BURST":           10,
	"FEE_SWEEP_SCHEDULE":         "@daily",
	"RENEWAL_REMINDER_SCHEDULE":  "0 9 * * 1",
}

// Load loads configuration from an optional .env file and the environment
func Load() (*Config, error) {
	// A missing .env is normal outside local development
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	} else {
		_ = godotenv.Load()
	}

	v := viper.New()
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	cfg := &Config{
		Port:                    v.GetString("PORT"),
		Environment:             v.GetString("ENVIRONMENT"),
		LogLevel:                strings.ToLower(v.GetString("LOG_LEVEL")),
		PublicBaseURL:           strings.TrimSuffix(v.GetString("PUBLIC_BASE_URL"), "/"),
		DBType:                  strings.ToLower(v.GetString("DB_TYPE")),
		DBHost:                  v.GetString("DB_HOST"),
		DBPort:                  v.GetString("DB_PORT"),
		DBDatabase:              v.GetString("DB_DATABASE"),
		DBUser:                  v.GetString("DB_USER"),
		DBPassword:              v.GetString("DB_PASSWORD"),
		DBConnectionLimit:       v.GetInt("DB_CONNECTION_LIMIT"),
		DBReportUser:            v.GetString("DB_REPORT_USER"),
		DBReportPassword:        v.GetString("DB_REPORT_PASSWORD"),
		DBReportConnectionLimit: v.GetInt("DB_REPORT_CONNECTION_LIMIT"),
		DBLogLevel:              strings.ToLower(v.GetString("DB_LOG_LEVEL")),
		FixtureFile:             v.GetString("FIXTURE_FILE"),
		JWTSecret:               v.GetString("JWT_SECRET"),
		SessionTTL:              v.GetDuration("SESSION_TTL"),
		OTPTTL:                  v.GetDuration("OTP_TTL"),
		OTPResendCooldown:       v.GetDuration("OTP_RESEND_COOLDOWN"),
		OTPMaxAttempts:          v.GetInt("OTP_MAX_ATTEMPTS"),
		RedisAddr:               v.GetString("REDIS_ADDR"),
		RedisPassword:           v.GetString("REDIS_PASSWORD"),
		RedisDB:                 v.GetInt("REDIS_DB"),
		NotifyProvider:          strings.ToLower(v.GetString("NOTIFY_PROVIDER")),
		AWSRegion:               v.GetString("AWS_REGION"),
		NotifyEmailFrom:         v.GetString("NOTIFY_EMAIL_FROM"),
		UploadDir:               v.GetString("UPLOAD_DIR"),
		UploadMaxBytes:          v.GetInt64("UPLOAD_MAX_BYTES"),
		RateLimitRPS:            v.GetInt("RATE_LIMIT_RPS"),
		RateLimitBurst:          v.GetInt("RATE_LIMIT_BURST"),
		AdminEmail:              v.GetString("ADMIN_EMAIL"),
		AdminPassword:           v.GetString("ADMIN_PASSWORD"),
		FeeSweepSchedule:        v.GetString("FEE_SWEEP_SCHEDULE"),
		RenewalReminderSchedule: v.GetString("RENEWAL_REMINDER_SCHEDULE"),
		PaymentSecret:           v.GetString("PAYMENT_SECRET"),
	}

	// Reporting pool falls back to the primary credentials
	if cfg.DBReportUser == "" {
		cfg.DBReportUser = cfg.DBUser
		cfg.DBReportPassword = cfg.DBPassword
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks required fields
func (c *Config) Validate() error {
	if c.DBDatabase == "" {
		return fmt.Errorf("DB_DATABASE is required")
	}
	if c.DBType != "sqlite" && c.DBType != "file" && c.DBUser == "" {
		return fmt.Errorf("DB_USER is required for DB_TYPE %s", c.DBType)
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET is required and must be at least 32 characters")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	switch c.NotifyProvider {
	case "log", "aws":
	default:
		return fmt.Errorf("unsupported NOTIFY_PROVIDER: %s", c.NotifyProvider)
	}
	return nil
}

// IsProduction reports whether the service runs with production settings
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
