// auth.go
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
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/hostelgate/hostelgate/internal/middleware"
	"github.com/hostelgate/hostelgate/internal/services"
	"github.com/hostelgate/hostelgate/internal/utils"
)

// AuthHandler handles login, session and OTP routes
type AuthHandler struct {
	Auth         *services.AuthService
	OTP          *services.OTPService
	SecureCookie bool
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ForgotPasswordRequest is the body of POST /auth/forgot-password
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest is the body of POST /auth/reset-password
type ResetPasswordRequest struct {
	Email    string `json:"email"`
	Code     string `json:"code"`
	Password string `json:"password"`
}

// OTPRequest is the body of POST /otp/send and /otp/resend
type OTPRequest struct {
	Contact string `json:"contact"`
}

// OTPVerifyRequest is the body of POST /otp/verify
type OTPVerifyRequest struct {
	Contact string `json:"contact"`
	Code    string `json:"code"`
}

// OTPVerifyResponse carries the verification token for a verified contact
type OTPVerifyResponse struct {
	Verified          bool      `json:"verified"`
	VerificationToken string    `json:"verificationToken"`
	ExpiresAt         time.Time `json:"expiresAt"`
}

// SessionResponse describes the caller's session
type SessionResponse struct {
	User    interface{} `json:"user"`
	Session interface{} `json:"session"`
}

// Login handles POST /api/auth/login
// @Summary Log in
// @Description Check credentials and open a session. The token is also set as a cookie.
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Credentials"
// @Success 200 {object} utils.SuccessResponseStruct{data=services.LoginResult}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := parseBody(c, &req); err != nil {
		return utils.HandleError(c, err)
	}
	result, err := h.Auth.Login(c.UserContext(), req.Email, req.Password, c.IP(), c.Get(fiber.HeaderUserAgent))
	if err != nil {
		return utils.HandleError(c, err)
	}
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    result.Token,
		Expires:  result.ExpiresAt,
		HTTPOnly: true,
		Secure:   h.SecureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
	return utils.MessageResponse(c, result, "Login successful", fiber.StatusOK)
}

// Logout handles POST /api/auth/logout
// @Summary Log out
// @Description Revoke the current session
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.Auth.Logout(c.UserContext(), actor(c)); err != nil {
		return utils.HandleError(c, err)
	}
	c.ClearCookie(middleware.SessionCookie)
	return utils.MessageResponse(c, nil, "Logged out", fiber.StatusOK)
}

// Session handles POST /api/auth/session
// @Summary Current session
// @Description Return the authenticated user and session
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.SuccessResponseStruct{data=SessionResponse}
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /auth/session [post]
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	user, session, err := h.Auth.CurrentSession(c.UserContext(), actor(c))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.SuccessResponse(c, SessionResponse{User: user, Session: session}, fiber.StatusOK)
}

// ForgotPassword handles POST /api/auth/forgot-password
// @Summary Request a password reset code
// @Description Email a reset code. The response does not reveal whether the account exists.
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body ForgotPasswordRequest true "Account email"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req ForgotPasswordRequest
	if err := parseBody(c, &req); err != nil {
		return utils.HandleError(c, err)
	}
	if err := h.Auth.ForgotPassword(c.UserContext(), req.Email); err != nil {
		return utils.HandleError(c, err)
	}
	return utils.MessageResponse(c, nil, "If the account exists, a reset code has been sent", fiber.StatusOK)
}

// ResetPassword handles POST /api/auth/reset-password
// @Summary Reset password
// @Description Consume a reset code, set a new password and end every session
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body ResetPasswordRequest true "Reset details"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 429 {object} utils.ErrorResponseStruct
// @Router /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req ResetPasswordRequest
	if err := parseBody(c, &req); err != nil {
		return utils.HandleError(c, err)
	}
	if err := h.Auth.ResetPassword(c.UserContext(), req.Email, req.Code, req.Password); err != nil {
		return utils.HandleError(c, err)
	}
	return utils.MessageResponse(c, nil, "Password updated, please log in again", fiber.StatusOK)
}

// SendOTP handles POST /api/otp/send
// @Summary Send a verification code
// @Description Send a one-time code to a phone number or email address
// @Tags OTP
// @Accept json
// @Produce json
// @Param body body OTPRequest true "Contact"
// @Success 200 {object} utils.SuccessResponseStruct{data=services.OTPDispatch}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 429 {object} utils.ErrorResponseStruct
// @Router /otp/send [post]
func (h *AuthHandler) SendOTP(c *fiber.Ctx) error {
	var req OTPRequest
	if err := parseBody(c, &req); err != nil {
		return utils.HandleError(c, err)
	}
	dispatch, err := h.OTP.Send(c.UserContext(), services.OTPContact, req.Contact)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.MessageResponse(c, dispatch, "Verification code sent", fiber.StatusOK)
}

// ResendOTP handles POST /api/otp/resend
// @Summary Resend a verification code
// @Description Replace a pending code once the resend cooldown has passed
// @Tags OTP
// @Accept json
// @Produce json
// @Param body body OTPRequest true "Contact"
// @Success 200 {object} utils.SuccessResponseStruct{data=services.OTPDispatch}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 429 {object} utils.ErrorResponseStruct
// @Router /otp/resend [post]
func (h *AuthHandler) ResendOTP(c *fiber.Ctx) error {
	var req OTPRequest
	if err := parseBody(c, &req); err != nil {
		return utils.HandleError(c, err)
	}
	dispatch, err := h.OTP.Resend(c.UserContext(), services.OTPContact, req.Contact)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.MessageResponse(c, dispatch, "Verification code sent", fiber.StatusOK)
}

// VerifyOTP handles POST /api/otp/verify
// @Summary Verify a code
// @Description Check a code and return a short-lived verification token for the contact
// @Tags OTP
// @Accept json
// @Produce json
// @Param body body OTPVerifyRequest true "Contact and code"
// @Success 200 {object} utils.SuccessResponseStruct{data=OTPVerifyResponse}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 429 {object} utils.ErrorResponseStruct
// @Router /otp/verify [post]
func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var req OTPVerifyRequest
	if err := parseBody(c, &req); err != nil {
		return utils.HandleError(c, err)
	}
	if err := h.OTP.Verify(c.UserContext(), services.OTPContact, req.Contact, req.Code); err != nil {
		return utils.HandleError(c, err)
	}
	token, expiresAt, err := h.Auth.IssueVerificationToken(req.Contact, services.OTPContact)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.MessageResponse(c, OTPVerifyResponse{
		Verified:          true,
		VerificationToken: token,
		ExpiresAt:         expiresAt,
	}, "Contact verified", fiber.StatusOK)
}
