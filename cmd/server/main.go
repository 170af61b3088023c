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
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	swagger "github.com/gofiber/swagger"
	"github.com/hostelgate/hostelgate/internal/config"
	"github.com/hostelgate/hostelgate/internal/database"
	"github.com/hostelgate/hostelgate/internal/handlers"
	"github.com/hostelgate/hostelgate/internal/jobs"
	"github.com/hostelgate/hostelgate/internal/logger"
	"github.com/hostelgate/hostelgate/internal/middleware"
	"github.com/hostelgate/hostelgate/internal/notify"
	"github.com/hostelgate/hostelgate/internal/services"
	"github.com/hostelgate/hostelgate/internal/utils"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/hostelgate/hostelgate/docs/api" // Swagger docs
)

// @title HostelGate API
// @version 1.0.0
// @description Admissions, residency, leave and fee management for a trust's hostels, ashram and dharamshala
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/hostelgate/hostelgate

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		// The logger is not configured yet
		_, _ = os.Stderr.WriteString("Failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.InitLogger(&logger.LogConfig{
		Level:       cfg.LogLevel,
		Environment: cfg.Environment,
		ServiceName: "hostelgate",
	}); err != nil {
		_, _ = os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.GetLogger()

	ctx := context.Background()

	appDB, err := database.Connect(cfg)
	if err != nil {
		log.Fatal("Failed to connect to app database", zap.Error(err))
	}
	defer database.Close(appDB)

	if err := database.AutoMigrate(appDB); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	// The in-memory database is a single connection, so reporting shares it
	reportDB := appDB
	if !strings.Contains(cfg.DBDatabase, ":memory:") {
		if reportDB, err = database.ConnectReporting(cfg); err != nil {
			log.Fatal("Failed to connect to reporting database", zap.Error(err))
		}
		defer database.Close(reportDB)
	}

	if stats, err := database.LoadFixtureSource(ctx, appDB, cfg.FixtureFile); err != nil {
		log.Fatal("Failed to load fixture", zap.String("fixture", cfg.FixtureFile), zap.Error(err))
	} else if cfg.FixtureFile != "" {
		log.Info("Fixture loaded", zap.String("fixture", cfg.FixtureFile), zap.Any("rows", stats))
	}

	if _, err := services.BootstrapAdmin(ctx, appDB, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatal("Failed to bootstrap administrator", zap.Error(err))
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer rdb.Close()
	if err := utils.PingRedis(ctx, rdb); err != nil {
		log.Warn("Redis is not reachable, OTP routes will fail until it is", zap.Error(err))
	}

	notifier, err := notify.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to configure notifications", zap.Error(err))
	}

	otp := &services.OTPService{
		Redis:       rdb,
		Notifier:    notifier,
		Secret:      []byte(cfg.JWTSecret),
		TTL:         cfg.OTPTTL,
		Cooldown:    cfg.OTPResendCooldown,
		MaxAttempts: cfg.OTPMaxAttempts,
	}
	auth := &services.AuthService{
		DB:              appDB,
		OTP:             otp,
		Secret:          []byte(cfg.JWTSecret),
		SessionTTL:      cfg.SessionTTL,
		VerificationTTL: cfg.OTPTTL,
	}

	scheduler, err := jobs.New(appDB, notifier, log, jobs.Schedules{
		FeeSweep:         cfg.FeeSweepSchedule,
		RenewalReminders: cfg.RenewalReminderSchedule,
	})
	if err != nil {
		log.Fatal("Failed to configure scheduled jobs", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    int(cfg.UploadMaxBytes) + 1024*1024,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.Middleware())
	app.Use(cors.New())
	app.Use(compress.New())

	prometheus := fiberprometheus.New("hostelgate")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	app.Get("/swagger/*", swagger.HandlerDefault)
	app.Static("/uploads", cfg.UploadDir)

	routes := &handlers.Routes{
		Authenticator: auth,
		RateLimiter:   middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		Auth:          &handlers.AuthHandler{Auth: auth, OTP: otp, SecureCookie: cfg.IsProduction()},
		Applications:  &handlers.ApplicationHandler{DB: appDB, Verifier: auth},
		Residency:     &handlers.ResidencyHandler{DB: appDB, Notifier: notifier},
		Interviews:    &handlers.InterviewHandler{DB: appDB},
		Finance:       &handlers.FinanceHandler{DB: appDB, PaymentSecret: cfg.PaymentSecret},
		Audit:         &handlers.AuditHandler{DB: reportDB},
		Dashboard:     &handlers.DashboardHandler{DB: reportDB},
		Users:         &handlers.UserHandler{DB: appDB},
		Uploads:       &handlers.UploadHandler{Store: &services.UploadStore{Dir: cfg.UploadDir, MaxBytes: cfg.UploadMaxBytes, BaseURL: cfg.PublicBaseURL}},
		Health:        &handlers.HealthHandler{Config: cfg, DB: appDB, Redis: rdb},
	}
	routes.Mount(app)

	app.Use(func(c *fiber.Ctx) error {
		return utils.NotFoundResponse(c, "[404] Resource Not Found")
	})

	scheduler.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-quit
		log.Info("Gracefully shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		scheduler.Stop(shutdownCtx)
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error("Shutdown did not complete cleanly", zap.Error(err))
		}
	}()

	log.Info("Starting server", zap.String("port", cfg.Port), zap.String("environment", cfg.Environment))
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}

	log.Info("Server stopped")
}

// customErrorHandler renders anything that escapes a handler in the standard envelope
func customErrorHandler(c *fiber.Ctx, err error) error {
	return utils.HandleError(c, err)
}
