// otp.go
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
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/hostelgate/hostelgate/internal/metrics"
	"github.com/hostelgate/hostelgate/internal/notify"
	"github.com/hostelgate/hostelgate/internal/types"
	"github.com/redis/go-redis/v9"
)

// OTPPurpose scopes a code to one flow
type OTPPurpose string

const (
	OTPContact       OTPPurpose = "contact"
	OTPPasswordReset OTPPurpose = "password_reset"
)

// Valid reports a known purpose
func (p OTPPurpose) Valid() bool {
	return p == OTPContact || p == OTPPasswordReset
}

const otpDigits = 6

// OTPDispatch tells the caller when the code expires and when a resend is allowed
type OTPDispatch struct {
	Channel   notify.Channel `json:"channel"`
	ExpiresIn int            `json:"expiresIn"`
	ResendIn  int            `json:"resendIn"`
}

// OTPService issues and checks one-time codes kept hashed in Redis
type OTPService struct {
	Redis       redis.UniversalClient
	Notifier    notify.Notifier
	Secret      []byte
	TTL         time.Duration
	Cooldown    time.Duration
	MaxAttempts int
}

// generateCode returns a uniformly random zero padded code
var generateCode = func() (string, error) {
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(otpDigits), nil)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", otpDigits, n.Int64()), nil
}

// NormalizeContact lower-cases emails and strips spaces and dashes from phone numbers
func NormalizeContact(contact string) string {
	contact = strings.TrimSpace(contact)
	if strings.Contains(contact, "@") {
		return strings.ToLower(contact)
	}
	return strings.NewReplacer(" ", "", "-", "").Replace(contact)
}

func otpKey(purpose OTPPurpose, contact, part string) string {
	return fmt.Sprintf("otp:%s:%s:%s", purpose, contact, part)
}

func (s *OTPService) hash(purpose OTPPurpose, contact, code string) string {
	mac := hmac.New(sha256.New, s.Secret)
	mac.Write([]byte(string(purpose) + "|" + contact + "|" + code))
	return hex.EncodeToString(mac.Sum(nil))
}

// Send issues a new code unless one was sent within the cooldown
func (s *OTPService) Send(ctx context.Context, purpose OTPPurpose, contact string) (*OTPDispatch, error) {
	if !purpose.Valid() {
		return nil, types.NewValidationError(map[string]string{"purpose": "Purpose must be contact or password_reset"})
	}
	contact = NormalizeContact(contact)
	if contact == "" {
		return nil, types.NewValidationError(map[string]string{"contact": "Phone number or email is required"})
	}

	cooldownKey := otpKey(purpose, contact, "cooldown")
	ok, err := s.Redis.SetNX(ctx, cooldownKey, 1, s.Cooldown).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to check otp cooldown: %w", err)
	}
	if !ok {
		wait, _ := s.Redis.TTL(ctx, cooldownKey).Result()
		ce := types.NewRateLimitedError("a code was sent recently, wait before requesting another")
		ce.Details = map[string]int{"retryAfter": int(wait.Round(time.Second).Seconds())}
		return nil, ce
	}

	code, err := generateCode()
	if err != nil {
		s.Redis.Del(ctx, cooldownKey)
		return nil, fmt.Errorf("failed to generate otp: %w", err)
	}

	if _, err := s.Redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, otpKey(purpose, contact, "code"), s.hash(purpose, contact, code), s.TTL)
		pipe.Del(ctx, otpKey(purpose, contact, "attempts"))
		return nil
	}); err != nil {
		s.Redis.Del(ctx, cooldownKey)
		return nil, fmt.Errorf("failed to store otp: %w", err)
	}

	channel := notify.ChannelFor(contact)
	if err := s.Notifier.Notify(ctx, notify.Message{
		Channel: channel,
		To:      contact,
		Subject: "Your HostelGate verification code",
		Body:    fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", code, int(s.TTL.Minutes())),
	}); err != nil {
		s.Redis.Del(ctx, cooldownKey, otpKey(purpose, contact, "code"))
		return nil, fmt.Errorf("failed to deliver otp: %w", err)
	}

	metrics.OTPSent.WithLabelValues(string(purpose)).Inc()
	return &OTPDispatch{
		Channel:   channel,
		ExpiresIn: int(s.TTL.Seconds()),
		ResendIn:  int(s.Cooldown.Seconds()),
	}, nil
}

// Resend replaces a pending code, subject to the same cooldown
func (s *OTPService) Resend(ctx context.Context, purpose OTPPurpose, contact string) (*OTPDispatch, error) {
	n, err := s.Redis.Exists(ctx, otpKey(purpose, NormalizeContact(contact), "code")).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to check pending otp: %w", err)
	}
	if n == 0 {
		return nil, types.NewPreconditionFailedError("no code is pending for this contact, request a new one")
	}
	return s.Send(ctx, purpose, contact)
}

// Verify checks a code. A code is consumed by success or by exhausting its attempts.
func (s *OTPService) Verify(ctx context.Context, purpose OTPPurpose, contact, code string) error {
	contact = NormalizeContact(contact)
	code = strings.TrimSpace(code)
	if contact == "" || code == "" {
		return types.NewValidationError(map[string]string{"code": "Contact and code are required"})
	}

	codeKey := otpKey(purpose, contact, "code")
	attemptsKey := otpKey(purpose, contact, "attempts")

	stored, err := s.Redis.Get(ctx, codeKey).Result()
	if errors.Is(err, redis.Nil) {
		return types.NewUnauthorizedError("code expired or was not requested")
	}
	if err != nil {
		return fmt.Errorf("failed to read otp: %w", err)
	}

	attempts, err := s.Redis.Incr(ctx, attemptsKey).Result()
	if err != nil {
		return fmt.Errorf("failed to count otp attempts: %w", err)
	}
	s.Redis.Expire(ctx, attemptsKey, s.TTL)

	if attempts > int64(s.MaxAttempts) {
		s.Redis.Del(ctx, codeKey, attemptsKey)
		return types.NewRateLimitedError("too many attempts, request a new code")
	}

	if !hmac.Equal([]byte(stored), []byte(s.hash(purpose, contact, code))) {
		ce := types.NewUnauthorizedError("invalid code")
		ce.Details = map[string]int64{"remainingAttempts": int64(s.MaxAttempts) - attempts}
		return ce
	}

	s.Redis.Del(ctx, codeKey, attemptsKey)
	return nil
}
