// users.go
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

	"github.com/hostelgate/hostelgate/internal/logger"
	"github.com/hostelgate/hostelgate/internal/models"
	"github.com/hostelgate/hostelgate/internal/types"
	"github.com/hostelgate/hostelgate/internal/validation"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CreateUserInput creates an account
type CreateUserInput struct {
	Email         string           `json:"email"`
	Password      string           `json:"password"`
	Name          string           `json:"name"`
	Phone         string           `json:"phone,omitempty"`
	Role          models.Role      `json:"role"`
	Vertical      *models.Vertical `json:"vertical,omitempty"`
	GuardianName  string           `json:"guardianName,omitempty"`
	GuardianPhone string           `json:"guardianPhone,omitempty"`
	GuardianEmail string           `json:"guardianEmail,omitempty"`
	ApplicationID *string          `json:"applicationId,omitempty"`
}

var userSchema = validation.Schema{
	{Name: "email", Rules: []validation.Rule{
		validation.Required("Email is required"),
		validation.Pattern(validation.EmailPattern, "Email address is invalid"),
	}},
	{Name: "name", Rules: []validation.Rule{
		validation.Required("Name is required"),
		validation.Min(2, "Name must be at least 2 characters"),
	}},
	{Name: "role", Rules: []validation.Rule{
		validation.Required("Role is required"),
		validation.Custom(func(v interface{}) bool {
			s, ok := v.(string)
			return ok && models.Role(s).Valid()
		}, "Role must be one of ADMIN, SUPERINTENDENT, TRUSTEE, ACCOUNTS, STUDENT, PARENT"),
	}},
	{Name: "phone", Rules: []validation.Rule{
		validation.Pattern(validation.PhonePattern, "Phone number must be 10 to 15 digits"),
	}},
	{Name: "guardianEmail", Rules: []validation.Rule{
		validation.Pattern(validation.EmailPattern, "Guardian email address is invalid"),
	}},
}

// CreateUser adds an account with a bcrypt hashed password. Students must carry a vertical.
func CreateUser(db *gorm.DB, in CreateUserInput, actor *Actor) (*models.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.GuardianEmail = strings.ToLower(strings.TrimSpace(in.GuardianEmail))

	errs := userSchema.Validate(map[string]interface{}{
		"email":         in.Email,
		"name":          strings.TrimSpace(in.Name),
		"role":          string(in.Role),
		"phone":         in.Phone,
		"guardianEmail": in.GuardianEmail,
	})
	for k, v := range validation.PasswordSchema.Validate(map[string]interface{}{"password": in.Password}) {
		errs[k] = v
	}
	if in.Role == models.RoleStudent && (in.Vertical == nil || !in.Vertical.Valid()) {
		errs["vertical"] = "Students must belong to a vertical"
	}
	if in.Vertical != nil && !in.Vertical.Valid() {
		errs["vertical"] = "Vertical must be one of BOYS_HOSTEL, GIRLS_ASHRAM, DHARAMSHALA"
	}
	if len(errs) > 0 {
		return nil, types.NewValidationError(errs)
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := models.User{
		Email:         in.Email,
		PasswordHash:  hash,
		Name:          strings.TrimSpace(in.Name),
		Phone:         in.Phone,
		Role:          in.Role,
		Vertical:      in.Vertical,
		GuardianName:  in.GuardianName,
		GuardianPhone: in.GuardianPhone,
		GuardianEmail: in.GuardianEmail,
		ApplicationID: in.ApplicationID,
		Active:        true,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.User{}).Where("email = ?", user.Email).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return types.NewConflictError(fmt.Sprintf("an account for %s already exists", user.Email))
		}
		if err := tx.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		return WriteAudit(tx, AuditEntry{
			EntityType:  models.EntityUser,
			EntityID:    user.ID,
			Action:      models.ActionCreate,
			New:         user,
			PerformedBy: actor.ID(),
			Metadata:    map[string]interface{}{"role": user.Role},
		})
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUser retrieves a user by id
func GetUser(db *gorm.DB, id string) (*models.User, error) {
	var user models.User
	if err := findByID(db, &user, "User", id); err != nil {
		return nil, err
	}
	return &user, nil
}

// BootstrapAdmin creates the first administrator when no account uses email
func BootstrapAdmin(ctx context.Context, db *gorm.DB, email, password string) (bool, error) {
	if email == "" || password == "" {
		return false, nil
	}
	var existing models.User
	err := db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	user, err := CreateUser(db.WithContext(ctx), CreateUserInput{
		Email:    email,
		Password: password,
		Name:     "Administrator",
		Role:     models.RoleAdmin,
	}, nil)
	if err != nil {
		return false, err
	}
	logger.GetLogger().Info("Bootstrap administrator created", zap.String("user_id", user.ID), zap.String("email", user.Email))
	return true, nil
}
