/*
Copyright The Kubernetes Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package assertion compares observed API responses against scenario
// expectations. Verdicts carry full diagnostics and never panic, so a failed
// assertion can fail a step without skipping teardown.
package assertion

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/Shreyoshi-Cal/mcn-qa-harness/pkg/apiclient"
	"github.com/Shreyoshi-Cal/mcn-qa-harness/pkg/resource"
)

// Verdict is the outcome of one assertion.
type Verdict struct {
	Passed   bool
	Check    string
	Expected string
	Actual   string
	Detail   string
	Response *apiclient.Response
}

// Err returns nil for a passing verdict, or an error carrying the
// expected/actual values and the full response body for diagnosis.
func (v Verdict) Err() error {
	if v.Passed {
		return nil
	}
	msg := fmt.Sprintf("%s: expected %s, got %s", v.Check, v.Expected, v.Actual)
	if v.Detail != "" {
		msg += ": " + v.Detail
	}
	if v.Response != nil {
		msg += fmt.Sprintf(" (response: %s)", string(v.Response.Body))
	}
	return fmt.Errorf("%s", msg)
}

func pass(check string) Verdict {
	return Verdict{Passed: true, Check: check}
}

// Status verifies the response status code, with the diagnostic detail the
// suite's QA engineers expect for the common failure codes.
func Status(resp *apiclient.Response, expected int) Verdict {
	check := "status code"
	if resp == nil {
		return Verdict{Check: check, Expected: fmt.Sprint(expected), Actual: "no response"}
	}
	if resp.StatusCode == expected {
		return pass(check)
	}

	v := Verdict{
		Check:    check,
		Expected: fmt.Sprint(expected),
		Actual:   fmt.Sprint(resp.StatusCode),
		Response: resp,
	}
	switch {
	case resp.StatusCode == http.StatusBadRequest:
		v.Detail = "Bad Request: invalid resource configuration"
	case resp.StatusCode == http.StatusUnauthorized:
		v.Detail = "Unauthorized: check authentication headers"
	case resp.StatusCode == http.StatusForbidden:
		v.Detail = "Forbidden: insufficient permissions"
	case resp.StatusCode == http.StatusNotFound:
		v.Detail = "Not Found: API endpoint not found"
	case resp.StatusCode == http.StatusConflict:
		v.Detail = "Conflict: resource already exists or naming conflict"
	case resp.StatusCode >= 500:
		v.Detail = "server error"
	}
	return v
}

// BodyContains checks for a literal substring in the normalized body
// (trimmed, whitespace collapsed).
func BodyContains(resp *apiclient.Response, substring string) Verdict {
	check := "body contains"
	if resp == nil {
		return Verdict{Check: check, Expected: fmt.Sprintf("%q", substring), Actual: "no response"}
	}

	body := normalize(string(resp.Body))
	if strings.Contains(body, normalize(substring)) {
		return pass(check)
	}
	return Verdict{
		Check:    check,
		Expected: fmt.Sprintf("substring %q", substring),
		Actual:   fmt.Sprintf("%q", body),
		Response: resp,
	}
}

// BodyHasID is the structural check behind "body must contain a <type> ID":
// the body must parse and yield a non-empty identifier through the variant's
// extraction rule, not merely match a substring.
func BodyHasID(resp *apiclient.Response, v resource.Variant) Verdict {
	check := fmt.Sprintf("body has %s ID", v.Type())
	if resp == nil {
		return Verdict{Check: check, Expected: "a non-empty identifier", Actual: "no response"}
	}

	id, err := v.ExtractID(resp.Body)
	if err != nil {
		return Verdict{
			Check:    check,
			Expected: "a non-empty identifier field",
			Actual:   "none extractable",
			Detail:   err.Error(),
			Response: resp,
		}
	}

	verdict := pass(check)
	verdict.Actual = id
	return verdict
}

// normalize trims and collapses runs of whitespace to single spaces.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
