// validation_test.go
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
	"testing"

	"github.com/hostelgate/hostelgate/internal/models"
	"github.com/hostelgate/hostelgate/internal/testutil"
	"github.com/hostelgate/hostelgate/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaFirstFailurePerField(t *testing.T) {
	schema := Schema{
		{Name: "name", Rules: []Rule{Required("name required"), Min(3, "name too short")}},
		{Name: "code", Rules: []Rule{
			Required("code required"),
			Pattern(regexp.MustCompile(`^[A-Z]+$`), "code must be upper case"),
			Custom(func(v interface{}) bool { return v != "NOPE" }, "code is reserved"),
		}},
		{Name: "note", Rules: []Rule{Min(5, "note too short")}},
	}

	errs := schema.Validate(map[string]interface{}{"code": "abc"})
	assert.Equal(t, Errors{
		"name": "name required",
		"code": "code must be upper case",
	}, errs)

	errs = schema.Validate(map[string]interface{}{"name": "ab", "code": "NOPE", "note": "hi"})
	assert.Equal(t, Errors{
		"name": "name too short",
		"code": "code is reserved",
		"note": "note too short",
	}, errs)

	assert.Empty(t, schema.Validate(map[string]interface{}{"name": "abc", "code": "OK"}))
}

func TestRequiredTreatsBlankAndEmptyAsMissing(t *testing.T) {
	rule := Required("missing")
	for _, v := range []interface{}{nil, "", "   ", []string{}, map[string]interface{}{}} {
		_, ok := rule(v)
		assert.False(t, ok, "%#v", v)
	}
	_, ok := rule(0)
	assert.True(t, ok)
}

func TestNewApplicationSchema(t *testing.T) {
	err := Check(NewApplicationSchema, map[string]interface{}{
		"vertical":       "HOSTEL",
		"applicantName":  "R",
		"applicantPhone": "12345",
		"applicantEmail": "nope",
	})
	ce, ok := types.AsCustomError(err)
	require.True(t, ok)
	fields := ce.Details.(map[string]string)
	assert.Len(t, fields, 4)

	assert.NoError(t, Check(NewApplicationSchema, map[string]interface{}{
		"vertical":       "GIRLS_ASHRAM",
		"applicantName":  "Riya Shah",
		"applicantPhone": "9876543210",
	}))
}

func completeApplication(t *testing.T) *models.Application {
	t.Helper()
	return &models.Application{
		Vertical:        models.VerticalBoysHostel,
		ApplicantName:   "Arjun Mehta",
		ApplicantPhone:  "9876543210",
		ContactVerified: true,
		PersonalData: testutil.JSON(t, map[string]interface{}{
			"dateOfBirth": "2006-04-12", "gender": "MALE", "address": "12 Station Road, Pune",
		}),
		GuardianData: testutil.JSON(t, map[string]interface{}{
			"name": "Suresh Mehta", "phone": "9822001122", "relation": "Father",
		}),
		EducationData: testutil.JSON(t, map[string]interface{}{
			"institution": "Fergusson College", "course": "B.Sc", "year": 1,
		}),
	}
}

func TestCheckSubmissionComplete(t *testing.T) {
	assert.NoError(t, CheckSubmission(completeApplication(t)))
}

func TestCheckSubmissionReportsMissingFields(t *testing.T) {
	app := completeApplication(t)
	app.ContactVerified = false
	app.GuardianData = testutil.JSON(t, map[string]interface{}{"name": "Suresh Mehta"})
	app.EducationData = models.JSON{}

	err := CheckSubmission(app)
	require.Error(t, err)
	ce, ok := types.AsCustomError(err)
	require.True(t, ok)
	assert.Equal(t, types.TypeValidation, ce.Type)

	fields := ce.Details.(map[string]string)
	assert.Contains(t, fields, "educationData")
	assert.Contains(t, fields, "guardianData.phone")
	assert.Contains(t, fields, "guardianData.relation")
	assert.Contains(t, fields, "contactVerified")
}
