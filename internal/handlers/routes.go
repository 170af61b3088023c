// routes.go
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

package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/hostelgate/hostelgate/internal/middleware"
	"github.com/hostelgate/hostelgate/internal/models"
)

// Routes holds every handler group and mounts them under /api
type Routes struct {
	Authenticator middleware.Authenticator
	RateLimiter   *middleware.RateLimiter

	Auth         *AuthHandler
	Applications *ApplicationHandler
	Residency    *ResidencyHandler
	Interviews   *InterviewHandler
	Finance      *FinanceHandler
	Audit        *AuditHandler
	Dashboard    *DashboardHandler
	Users        *UserHandler
	Uploads      *UploadHandler
	Health       *HealthHandler
}

// Mount registers /health and the /api routes on app
func (r *Routes) Mount(app *fiber.App) {
	if r.Health != nil {
		app.Get("/health", r.Health.Health)
	}

	api := app.Group("/api", middleware.VersionMiddleware())

	authed := middleware.RequireAuth(r.Authenticator)
	optional := middleware.OptionalAuth(r.Authenticator)
	staff := middleware.RequireRoles(models.StaffRoles...)
	managers := middleware.RequireRoles(models.RoleAdmin, models.RoleSuperintendent)
	admin := middleware.RequireRoles(models.RoleAdmin)
	throttle := func(c *fiber.Ctx) error { return c.Next() }
	if r.RateLimiter != nil {
		throttle = r.RateLimiter.Handler()
	}

	auth := api.Group("/auth")
	auth.Post("/login", throttle, r.Auth.Login)
	auth.Post("/logout", authed, r.Auth.Logout)
	auth.Post("/session", authed, r.Auth.Session)
	auth.Post("/forgot-password", throttle, r.Auth.ForgotPassword)
	auth.Post("/reset-password", throttle, r.Auth.ResetPassword)

	otp := api.Group("/otp", throttle)
	otp.Post("/send", r.Auth.SendOTP)
	otp.Post("/verify", r.Auth.VerifyOTP)
	otp.Post("/resend", r.Auth.ResendOTP)

	api.Post("/users", authed, admin, r.Users.CreateUser)
	api.Get("/users/:id", authed, staff, r.Users.GetUser)

	apps := api.Group("/applications")
	apps.Get("/track/:trackingNumber", r.Applications.TrackApplication)
	apps.Get("/", authed, staff, r.Applications.ListApplications)
	apps.Post("/", optional, r.Applications.CreateApplication)
	apps.Get("/:id", r.Applications.GetApplication)
	apps.Put("/:id", optional, r.Applications.UpdateApplication)
	apps.Delete("/:id", authed, managers, r.Applications.ArchiveApplication)
	apps.Post("/:id/submit", optional, r.Applications.SubmitApplication)
	apps.Put("/:id/status", authed, staff, r.Applications.ChangeStatus)

	api.Get("/rooms", authed, staff, r.Residency.ListRooms)
	api.Get("/rooms/:id", authed, staff, r.Residency.GetRoom)
	api.Post("/rooms", authed, managers, r.Residency.CreateRoom)
	api.Put("/rooms/:id", authed, managers, r.Residency.UpdateRoom)

	api.Get("/allocations", authed, staff, r.Residency.ListAllocations)
	api.Post("/allocations", authed, staff, r.Residency.Allocate)
	api.Put("/allocations/vacate/:id", authed, managers, r.Residency.Vacate)
	api.Put("/allocations/:id", authed, managers, r.Residency.Transfer)
	api.Get("/renewals", authed, staff, r.Residency.ListRenewals)

	api.Get("/leaves", authed, r.Residency.ListLeaves)
	api.Post("/leaves", authed, r.Residency.CreateLeave)
	api.Put("/leaves/:id/approve", authed, managers, r.Residency.ApproveLeave)
	api.Put("/leaves/:id/reject", authed, managers, r.Residency.RejectLeave)

	api.Post("/clearances", authed, managers, r.Residency.InitiateClearance)
	api.Get("/clearances/:id", authed, managers, r.Residency.GetClearance)
	api.Put("/clearances/:id", authed, managers, r.Residency.UpdateClearance)
	api.Put("/clearances/:id/complete", authed, managers, r.Residency.CompleteClearance)
	api.Put("/clearances/:id/cancel", authed, managers, r.Residency.CancelClearance)

	interviewers := middleware.RequireRoles(models.RoleTrustee, models.RoleAdmin)
	api.Get("/interviews", authed, staff, r.Interviews.ListInterviews)
	api.Post("/interviews", authed, staff, r.Interviews.ScheduleInterview)
	api.Put("/interviews/:id/complete", authed, interviewers, r.Interviews.CompleteInterview)
	api.Put("/interviews/:id/cancel", authed, interviewers, r.Interviews.CancelInterview)

	api.Get("/fees", authed, r.Finance.ListFees)
	api.Post("/fees", authed, middleware.RequireRoles(models.RoleAccounts, models.RoleAdmin), r.Finance.RaiseFees)
	api.Post("/payments", authed, r.Finance.InitiatePayment)
	api.Post("/payments/verify", authed, r.Finance.VerifyPayment)

	api.Post("/uploads", throttle, r.Uploads.Upload)

	api.Get("/audit/entity/:type/:id", authed, middleware.RequireRoles(models.RoleAdmin, models.RoleTrustee), r.Audit.EntityHistory)
	api.Get("/auditLogs", authed, admin, r.Audit.ListAuditLogs)

	dash := api.Group("/dashboard", authed)
	dash.Get("/admin", managers, r.Dashboard.Admin)
	dash.Get("/accounts", middleware.RequireRoles(models.RoleAccounts, models.RoleAdmin), r.Dashboard.Accounts)
	dash.Get("/trustee", interviewers, r.Dashboard.Trustee)
	dash.Get("/student", r.Dashboard.Student)
}
