// auth_service.go
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

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hostelgate/hostelgate/internal/logger"
	"github.com/hostelgate/hostelgate/internal/models"
	"github.com/hostelgate/hostelgate/internal/types"
	"github.com/hostelgate/hostelgate/internal/validation"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	tokenIssuer         = "hostelgate"
	verificationSubject = "contact-verification"
)

var errBadCredentials = types.NewUnauthorizedError("invalid email or password")

// SessionClaims are carried by a session token. The token ID is the sessions row id.
type SessionClaims struct {
	Role     models.Role      `json:"role"`
	Email    string           `json:"email"`
	Vertical *models.Vertical `json:"vertical,omitempty"`
	jwt.RegisteredClaims
}

// VerificationClaims prove a contact passed OTP verification
type VerificationClaims struct {
	Contact string     `json:"contact"`
	Purpose OTPPurpose `json:"purpose"`
	jwt.RegisteredClaims
}

// LoginResult is returned by a successful login
type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      models.User `json:"user"`
}

// AuthService issues and validates signed session tokens backed by the sessions table
type AuthService struct {
	DB              *gorm.DB
	OTP             *OTPService
	Secret          []byte
	SessionTTL      time.Duration
	VerificationTTL time.Duration
}

func (s *AuthService) sign(claims jwt.Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
}

func (s *AuthService) parse(token string, claims jwt.Claims) error {
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(now),
	)
	return err
}

// HashPassword bcrypt hashes a password
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Login checks credentials and opens a session
func (s *AuthService) Login(ctx context.Context, email, password, ip, userAgent string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validation.Check(validation.LoginSchema, map[string]interface{}{"email": email, "password": password}); err != nil {
		return nil, err
	}

	db := s.DB.WithContext(ctx)
	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errBadCredentials
		}
		return nil, err
	}
	if !user.Active || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, errBadCredentials
	}

	issuedAt := now()
	session := models.Session{
		UserID:    user.ID,
		ExpiresAt: issuedAt.Add(s.SessionTTL),
		IP:        ip,
		UserAgent: truncate(userAgent, 255),
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&session).Error; err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}
		return WriteAudit(tx, AuditEntry{
			EntityType:  models.EntityUser,
			EntityID:    user.ID,
			Action:      models.ActionLogin,
			PerformedBy: &user.ID,
			Metadata:    map[string]interface{}{"session_id": session.ID, "ip": ip},
		})
	})
	if err != nil {
		return nil, err
	}

	token, err := s.sign(SessionClaims{
		Role:     user.Role,
		Email:    user.Email,
		Vertical: user.Vertical,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID,
			Subject:   user.ID,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	return &LoginResult{Token: token, ExpiresAt: session.ExpiresAt, User: user}, nil
}

// Authenticate validates a session token and its session row
func (s *AuthService) Authenticate(ctx context.Context, token string) (*Actor, error) {
	if token == "" {
		return nil, types.NewUnauthorizedError("authentication required")
	}
	var claims SessionClaims
	if err := s.parse(token, &claims); err != nil {
		return nil, types.NewUnauthorizedError("invalid or expired session token")
	}

	db := s.DB.WithContext(ctx)
	var session models.Session
	if err := db.Where("id = ? AND user_id = ?", claims.ID, claims.Subject).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewUnauthorizedError("session not found")
		}
		return nil, err
	}
	if session.RevokedAt != nil || !session.ExpiresAt.After(now()) {
		return nil, types.NewUnauthorizedError("session has ended")
	}

	var user models.User
	if err := db.Where("id = ?", session.UserID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewUnauthorizedError("session user not found")
		}
		return nil, err
	}
	if !user.Active {
		return nil, types.NewUnauthorizedError("account is disabled")
	}

	return &Actor{
		UserID:    user.ID,
		SessionID: session.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		Vertical:  user.Vertical,
	}, nil
}

// Logout revokes the actor's session
func (s *AuthService) Logout(ctx context.Context, actor *Actor) error {
	if actor == nil || actor.SessionID == "" {
		return types.NewUnauthorizedError("authentication required")
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Session{}).
			Where("id = ? AND revoked_at IS NULL", actor.SessionID).
			Update("revoked_at", now())
		if res.Error != nil {
			return fmt.Errorf("failed to revoke session: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return types.NewUnauthorizedError("session has ended")
		}
		return WriteAudit(tx, AuditEntry{
			EntityType:  models.EntitySession,
			EntityID:    actor.SessionID,
			Action:      models.ActionLogout,
			PerformedBy: actor.ID(),
		})
	})
}

// CurrentSession returns the actor's user and session rows
func (s *AuthService) CurrentSession(ctx context.Context, actor *Actor) (*models.User, *models.Session, error) {
	if actor == nil {
		return nil, nil, types.NewUnauthorizedError("authentication required")
	}
	db := s.DB.WithContext(ctx)
	var user models.User
	if err := findByID(db, &user, "User", actor.UserID); err != nil {
		return nil, nil, err
	}
	var session models.Session
	if err := findByID(db, &session, "Session", actor.SessionID); err != nil {
		return nil, nil, err
	}
	return &user, &session, nil
}

// ForgotPassword emails a reset code. Unknown addresses get the same response as known ones.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if !validation.EmailPattern.MatchString(email) {
		return types.NewValidationError(map[string]string{"email": "Email address is invalid"})
	}

	var user models.User
	if err := s.DB.WithContext(ctx).Where("email = ? AND active = ?", email, true).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	if _, err := s.OTP.Send(ctx, OTPPasswordReset, email); err != nil {
		if types.IsType(err, types.TypeRateLimited) {
			return nil
		}
		logger.GetLogger().Error("Failed to send password reset code", zap.String("user_id", user.ID), zap.Error(err))
		return err
	}
	return nil
}

// ResetPassword consumes a reset code, sets the new password and revokes every session
func (s *AuthService) ResetPassword(ctx context.Context, email, code, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validation.Check(validation.PasswordSchema, map[string]interface{}{"password": password}); err != nil {
		return err
	}

	db := s.DB.WithContext(ctx)
	var user models.User
	if err := db.Where("email = ? AND active = ?", email, true).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.NewUnauthorizedError("code expired or was not requested")
		}
		return err
	}
	if err := s.OTP.Verify(ctx, OTPPasswordReset, email, code); err != nil {
		return err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", user.ID).Update("password_hash", hash).Error; err != nil {
			return fmt.Errorf("failed to update password: %w", err)
		}
		revoked := tx.Model(&models.Session{}).
			Where("user_id = ? AND revoked_at IS NULL", user.ID).
			Update("revoked_at", now())
		if revoked.Error != nil {
			return fmt.Errorf("failed to revoke sessions: %w", revoked.Error)
		}
		return WriteAudit(tx, AuditEntry{
			EntityType:  models.EntityUser,
			EntityID:    user.ID,
			Action:      models.ActionPasswordReset,
			PerformedBy: &user.ID,
			Metadata:    map[string]interface{}{"sessions_revoked": revoked.RowsAffected},
		})
	})
}

// IssueVerificationToken proves that contact passed OTP verification
func (s *AuthService) IssueVerificationToken(contact string, purpose OTPPurpose) (string, time.Time, error) {
	issuedAt := now()
	expiresAt := issuedAt.Add(s.VerificationTTL)
	token, err := s.sign(VerificationClaims{
		Contact: NormalizeContact(contact),
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   verificationSubject,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign verification token: %w", err)
	}
	return token, expiresAt, nil
}

// VerifyContactToken reports whether token proves verification of one of contacts
func (s *AuthService) VerifyContactToken(token string, contacts ...string) error {
	var claims VerificationClaims
	if err := s.parse(token, &claims); err != nil || claims.Subject != verificationSubject || claims.Purpose != OTPContact {
		return types.NewUnauthorizedError("verification token is invalid or expired")
	}
	for _, c := range contacts {
		if c != "" && NormalizeContact(c) == claims.Contact {
			return nil
		}
	}
	return types.NewUnauthorizedError("verification token was issued for a different contact")
}

// truncate keeps at most n characters of s
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
