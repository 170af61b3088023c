// submission.go
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
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/hostelgate/hostelgate/internal/models"
	"github.com/hostelgate/hostelgate/internal/types"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/application_submit.json
var submitSchemaJSON []byte

var (
	submitSchema     *gojsonschema.Schema
	submitSchemaErr  error
	submitSchemaOnce sync.Once
)

func loadSubmitSchema() (*gojsonschema.Schema, error) {
	submitSchemaOnce.Do(func() {
		submitSchema, submitSchemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(submitSchemaJSON))
	})
	return submitSchema, submitSchemaErr
}

// SubmissionDocument assembles the document the completeness schema runs against
func SubmissionDocument(app *models.Application) (map[string]interface{}, error) {
	doc := map[string]interface{}{
		"vertical":        string(app.Vertical),
		"applicantName":   app.ApplicantName,
		"applicantPhone":  app.ApplicantPhone,
		"contactVerified": app.ContactVerified,
	}
	if app.ApplicantEmail != "" {
		doc["applicantEmail"] = app.ApplicantEmail
	}
	sections := map[string]models.JSON{
		"personalData":  app.PersonalData,
		"guardianData":  app.GuardianData,
		"educationData": app.EducationData,
	}
	for name, col := range sections {
		if col.IsEmpty() {
			continue
		}
		m, err := col.Map()
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", name, err)
		}
		doc[name] = m
	}
	return doc, nil
}

// CheckSubmission reports every missing or malformed field needed before an application leaves DRAFT
func CheckSubmission(app *models.Application) error {
	schema, err := loadSubmitSchema()
	if err != nil {
		return fmt.Errorf("failed to load submission schema: %w", err)
	}
	doc, err := SubmissionDocument(app)
	if err != nil {
		return types.NewBadRequestError(err.Error())
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("failed to validate submission: %w", err)
	}
	if result.Valid() {
		return nil
	}

	errs := Errors{}
	for _, re := range result.Errors() {
		field := strings.TrimPrefix(strings.TrimPrefix(re.Context().String(), gojsonschema.STRING_CONTEXT_ROOT), ".")
		if re.Type() == "required" {
			if prop, ok := re.Details()["property"].(string); ok {
				if field == "" {
					field = prop
				} else {
					field = field + "." + prop
				}
			}
		}
		if field == "" {
			field = "application"
		}
		if _, seen := errs[field]; !seen {
			errs[field] = re.Description()
		}
	}
	return types.NewValidationError(errs)
}
