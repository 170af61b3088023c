// rules.go
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
	"fmt"
	"reflect"
	"regexp"
	"strings"
)

// Rule checks one field value and returns a message when it fails
type Rule func(value interface{}) (string, bool)

// Field pairs a field name with its rules, evaluated in order
type Field struct {
	Name  string
	Rules []Rule
}

// Schema is an ordered list of field rules
type Schema []Field

// Errors maps a field name to the first failing rule's message
type Errors map[string]string

// Validate evaluates every field. Each field stops at its first failing rule.
func (s Schema) Validate(values map[string]interface{}) Errors {
	errs := Errors{}
	for _, f := range s {
		value := values[f.Name]
		for _, rule := range f.Rules {
			if msg, ok := rule(value); !ok {
				errs[f.Name] = msg
				break
			}
		}
	}
	return errs
}

// Required fails on nil, empty or blank strings and empty collections
func Required(message string) Rule {
	return func(value interface{}) (string, bool) {
		if isEmpty(value) {
			return message, false
		}
		return "", true
	}
}

// Min fails when a string is shorter than n characters. Empty values pass; pair with Required.
func Min(n int, message string) Rule {
	return func(value interface{}) (string, bool) {
		if isEmpty(value) {
			return "", true
		}
		if len([]rune(strings.TrimSpace(toString(value)))) < n {
			return message, false
		}
		return "", true
	}
}

// Pattern fails when a non-empty value does not match re
func Pattern(re *regexp.Regexp, message string) Rule {
	return func(value interface{}) (string, bool) {
		if isEmpty(value) {
			return "", true
		}
		if !re.MatchString(toString(value)) {
			return message, false
		}
		return "", true
	}
}

// Custom fails when predicate returns false
func Custom(predicate func(value interface{}) bool, message string) Rule {
	return func(value interface{}) (string, bool) {
		if !predicate(value) {
			return message, false
		}
		return "", true
	}
}

func isEmpty(value interface{}) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		return v.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	}
	return false
}

func toString(value interface{}) string {
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}
