// handlers_test.go
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

package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/hostelgate/hostelgate/internal/config"
	"github.com/hostelgate/hostelgate/internal/handlers"
	"github.com/hostelgate/hostelgate/internal/middleware"
	"github.com/hostelgate/hostelgate/internal/models"
	"github.com/hostelgate/hostelgate/internal/services"
	"github.com/hostelgate/hostelgate/internal/testutil"
	"github.com/hostelgate/hostelgate/internal/types"
	"github.com/hostelgate/hostelgate/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type server struct {
	app      *fiber.App
	db       *gorm.DB
	notifier *testutil.Recorder
}

func newServer(t *testing.T) *server {
	t.Helper()
	db := testutil.NewDB(t)
	_, rdb := testutil.NewRedis(t)
	notifier := &testutil.Recorder{}

	otp := &services.OTPService{
		Redis:       rdb,
		Notifier:    notifier,
		Secret:      []byte("otp-secret-otp-secret-otp-secret"),
		TTL:         10 * time.Minute,
		Cooldown:    time.Minute,
		MaxAttempts: 3,
	}
	auth := &services.AuthService{
		DB:              db,
		OTP:             otp,
		Secret:          []byte("session-secret-session-secret-32"),
		SessionTTL:      time.Hour,
		VerificationTTL: 10 * time.Minute,
	}
	cfg := &config.Config{DBType: "sqlite", DBDatabase: "memory"}

	app := fiber.New(fiber.Config{ErrorHandler: utils.HandleError})
	routes := &handlers.Routes{
		Authenticator: auth,
		Auth:          &handlers.AuthHandler{Auth: auth, OTP: otp},
		Applications:  &handlers.ApplicationHandler{DB: db, Verifier: auth},
		Residency:     &handlers.ResidencyHandler{DB: db, Notifier: notifier},
		Interviews:    &handlers.InterviewHandler{DB: db},
		Finance:       &handlers.FinanceHandler{DB: db, PaymentSecret: "payment-secret"},
		Audit:         &handlers.AuditHandler{DB: db},
		Dashboard:     &handlers.DashboardHandler{DB: db},
		Users:         &handlers.UserHandler{DB: db},
		Uploads:       &handlers.UploadHandler{Store: &services.UploadStore{Dir: t.TempDir(), MaxBytes: 1 << 20}},
		Health:        &handlers.HealthHandler{Config: cfg, DB: db, Redis: rdb},
	}
	routes.Mount(app)
	return &server{app: app, db: db, notifier: notifier}
}

// envelope is the union of the success and error response shapes
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Type    string          `json:"type"`
	Status  int             `json:"status"`
}

func (s *server) call(t *testing.T, method, path, token string, body interface{}) (*http.Response, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp, env
}

func decode(t *testing.T, raw json.RawMessage, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, dest))
}

func (s *server) login(t *testing.T, u *models.User) string {
	t.Helper()
	resp, env := s.call(t, http.MethodPost, "/api/auth/login", "", handlers.LoginRequest{Email: u.Email, Password: testutil.Password})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var res services.LoginResult
	decode(t, env.Data, &res)
	require.NotEmpty(t, res.Token)
	return res.Token
}

var codePattern = regexp.MustCompile(`\b\d{6}\b`)

func TestHealth(t *testing.T) {
	s := newServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result services.HealthCheckResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "healthy", result.Status)
	assert.Equal(t, "ok", result.Database)
	assert.Equal(t, "ok", result.Redis)
}

func TestLoginSessionLogout(t *testing.T) {
	s := newServer(t)
	user := testutil.CreateUser(t, s.db, models.RoleTrustee)

	resp, env := s.call(t, http.MethodPost, "/api/auth/login", "", handlers.LoginRequest{Email: user.Email, Password: "nope"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, types.TypeUnauthorized, env.Type)

	resp, env = s.call(t, http.MethodPost, "/api/auth/login", "", handlers.LoginRequest{Email: user.Email, Password: testutil.Password})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var res services.LoginResult
	decode(t, env.Data, &res)

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == middleware.SessionCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie, "login sets the session cookie")
	assert.Equal(t, res.Token, cookie.Value)
	assert.True(t, cookie.HttpOnly)

	resp, env = s.call(t, http.MethodPost, "/api/auth/session", res.Token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var session struct {
		User models.User `json:"user"`
	}
	decode(t, env.Data, &session)
	assert.Equal(t, user.ID, session.User.ID)

	resp, _ = s.call(t, http.MethodPost, "/api/auth/logout", res.Token, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, env = s.call(t, http.MethodPost, "/api/auth/session", res.Token, nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, types.TypeUnauthorized, env.Type)
}

func TestLoginRequiresBody(t *testing.T) {
	s := newServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestVerifiedApplicantSubmitsAndTracks(t *testing.T) {
	s := newServer(t)
	phone := "9876543210"

	resp, env := s.call(t, http.MethodPost, "/api/otp/send", "", handlers.OTPRequest{Contact: phone})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, env.Message)
	msg, ok := s.notifier.Last()
	require.True(t, ok)
	assert.Equal(t, phone, msg.To)
	code := codePattern.FindString(msg.Body)
	require.NotEmpty(t, code)

	resp, env = s.call(t, http.MethodPost, "/api/otp/verify", "", handlers.OTPVerifyRequest{Contact: phone, Code: code})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, env.Message)
	var verified handlers.OTPVerifyResponse
	decode(t, env.Data, &verified)
	require.True(t, verified.Verified)
	require.NotEmpty(t, verified.VerificationToken)

	in := services.ApplicationInput{
		Vertical:          models.VerticalBoysHostel,
		ApplicantName:     "Ravi Kumar",
		ApplicantPhone:    phone,
		PersonalData:      map[string]interface{}{"dateOfBirth": "2006-04-12", "gender": "MALE", "address": "12 Temple Road, Pune"},
		GuardianData:      map[string]interface{}{"name": "Suresh Kumar", "phone": "9876500000", "relation": "Father"},
		EducationData:     map[string]interface{}{"institution": "Fergusson College", "course": "BSc"},
		VerificationToken: verified.VerificationToken,
	}
	resp, env = s.call(t, http.MethodPost, "/api/applications", "", in)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, env.Message)
	var app models.Application
	decode(t, env.Data, &app)
	assert.True(t, app.ContactVerified)
	assert.Equal(t, models.ApplicationDraft, app.CurrentStatus)
	assert.Regexp(t, `^HG-\d{4}-\d{5}$`, app.TrackingNumber)

	resp, env = s.call(t, http.MethodPost, "/api/applications/"+app.ID+"/submit", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, env.Message)

	resp, env = s.call(t, http.MethodPost, "/api/applications/"+app.ID+"/submit", "", nil)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, types.TypeInvalidTransition, env.Type)

	resp, env = s.call(t, http.MethodGet, "/api/applications/track/"+app.TrackingNumber, "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var view services.TrackingView
	decode(t, env.Data, &view)
	assert.Equal(t, models.ApplicationSubmitted, view.CurrentStatus)
	assert.NotNil(t, view.SubmittedAt)

	resp, env = s.call(t, http.MethodGet, "/api/applications/track/HG-1999-99999", "", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, types.TypeNotFound, env.Type)
}

func TestApplicationRejectsTokenForAnotherContact(t *testing.T) {
	s := newServer(t)

	resp, _ := s.call(t, http.MethodPost, "/api/otp/send", "", handlers.OTPRequest{Contact: "9000000001"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	msg, _ := s.notifier.Last()
	resp, env := s.call(t, http.MethodPost, "/api/otp/verify", "", handlers.OTPVerifyRequest{Contact: "9000000001", Code: codePattern.FindString(msg.Body)})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var verified handlers.OTPVerifyResponse
	decode(t, env.Data, &verified)

	resp, env = s.call(t, http.MethodPost, "/api/applications", "", services.ApplicationInput{
		Vertical:          models.VerticalGirlsAshram,
		ApplicantName:     "Meera Joshi",
		ApplicantPhone:    "9000000002",
		VerificationToken: verified.VerificationToken,
	})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, types.TypeUnauthorized, env.Type)
}

func TestRoleGuards(t *testing.T) {
	s := newServer(t)
	student := s.login(t, testutil.CreateUser(t, s.db, models.RoleStudent))
	super := s.login(t, testutil.CreateUser(t, s.db, models.RoleSuperintendent))

	resp, env := s.call(t, http.MethodGet, "/api/applications", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, types.TypeUnauthorized, env.Type)

	resp, env = s.call(t, http.MethodGet, "/api/applications", student, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, types.TypeForbidden, env.Type)

	resp, _ = s.call(t, http.MethodGet, "/api/applications", super, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = s.call(t, http.MethodGet, "/api/auditLogs", super, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, _ = s.call(t, http.MethodGet, "/api/dashboard/student", student, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAllocationErrorMapping(t *testing.T) {
	s := newServer(t)
	super := s.login(t, testutil.CreateUser(t, s.db, models.RoleSuperintendent))
	room := testutil.CreateRoom(t, s.db, "B-7", models.VerticalBoysHostel, 1, 0)
	first := testutil.CreateUser(t, s.db, models.RoleStudent)
	second := testutil.CreateUser(t, s.db, models.RoleStudent)

	resp, env := s.call(t, http.MethodPost, "/api/allocations", super, services.AllocateInput{StudentID: first.ID, RoomID: room.ID})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, env.Message)
	var alloc models.Allocation
	decode(t, env.Data, &alloc)

	resp, env = s.call(t, http.MethodPost, "/api/allocations", super, services.AllocateInput{StudentID: second.ID, RoomID: room.ID})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, types.TypePreconditionFailed, env.Type)

	resp, env = s.call(t, http.MethodPost, "/api/allocations", super, services.AllocateInput{StudentID: second.ID})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, types.TypeValidation, env.Type)

	resp, _ = s.call(t, http.MethodPut, "/api/allocations/vacate/"+alloc.ID, super, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, env = s.call(t, http.MethodPut, "/api/allocations/vacate/"+alloc.ID, super, nil)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, types.TypeInvalidTransition, env.Type)

	resp, env = s.call(t, http.MethodPut, "/api/allocations/vacate/does-not-exist", super, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, types.TypeNotFound, env.Type)
}

func TestListApplicationsPaginates(t *testing.T) {
	s := newServer(t)
	super := s.login(t, testutil.CreateUser(t, s.db, models.RoleSuperintendent))

	for _, name := range []string{"Asha Rao", "Bina Shah", "Chitra Iyer"} {
		resp, env := s.call(t, http.MethodPost, "/api/applications", "", services.ApplicationInput{
			Vertical:       models.VerticalGirlsAshram,
			ApplicantName:  name,
			ApplicantPhone: "9812345678",
		})
		require.Equal(t, fiber.StatusCreated, resp.StatusCode, env.Message)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/applications?limit=2&vertical=girls_ashram", nil)
	req.Header.Set("Authorization", "Bearer "+super)
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var page utils.PaginatedResponseStruct
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
	assert.Equal(t, int64(3), page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.Limit)
	assert.Len(t, page.Data, 2)
}
