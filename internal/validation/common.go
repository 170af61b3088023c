// common.go
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

package validation

import (
	"regexp"

	"github.com/hostelgate/hostelgate/internal/models"
	"github.com/hostelgate/hostelgate/internal/types"
)

var (
	// PhonePattern accepts 10 to 15 digits with an optional leading +
	PhonePattern = regexp.MustCompile(`^\+?[0-9]{10,15}$`)
	// EmailPattern is a deliberately loose address check
	EmailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	// TrackingNumberPattern matches HG-<year>-<seq>
	TrackingNumberPattern = regexp.MustCompile(`^HG-(\d{4})-(\d{5,})$`)
)

// ValidVertical is a Custom predicate for the vertical enumeration
func ValidVertical(value interface{}) bool {
	switch v := value.(type) {
	case string:
		return models.Vertical(v).Valid()
	case models.Vertical:
		return v.Valid()
	}
	return false
}

// NewApplicationSchema covers the fields a draft needs at creation
var NewApplicationSchema = Schema{
	{Name: "vertical", Rules: []Rule{
		Required("Vertical is required"),
		Custom(ValidVertical, "Vertical must be one of BOYS_HOSTEL, GIRLS_ASHRAM, DHARAMSHALA"),
	}},
	{Name: "applicantName", Rules: []Rule{
		Required("Applicant name is required"),
		Min(2, "Applicant name must be at least 2 characters"),
	}},
	{Name: "applicantPhone", Rules: []Rule{
		Required("Phone number is required"),
		Pattern(PhonePattern, "Phone number must be 10 to 15 digits"),
	}},
	{Name: "applicantEmail", Rules: []Rule{
		Pattern(EmailPattern, "Email address is invalid"),
	}},
}

// LoginSchema covers the login form
var LoginSchema = Schema{
	{Name: "email", Rules: []Rule{
		Required("Email is required"),
		Pattern(EmailPattern, "Email address is invalid"),
	}},
	{Name: "password", Rules: []Rule{
		Required("Password is required"),
	}},
}

// PasswordSchema covers a new password
var PasswordSchema = Schema{
	{Name: "password", Rules: []Rule{
		Required("Password is required"),
		Min(8, "Password must be at least 8 characters"),
	}},
}

// Check runs schema and converts a failure into a validation CustomError
func Check(schema Schema, values map[string]interface{}) error {
	if errs := schema.Validate(values); len(errs) > 0 {
		return types.NewValidationError(errs)
	}
	return nil
}
