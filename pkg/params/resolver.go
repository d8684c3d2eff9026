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

// Package params turns a scenario parameter block (newline-separated
// key=value lines with ${NAME} placeholders) into a typed resource spec.
package params

import (
	"fmt"
	"net/netip"
	"os"
	"regexp"
	"strings"

	"github.com/Shreyoshi-Cal/mcn-qa-harness/pkg/resource"
)

// Env looks up one placeholder or override variable.
type Env func(name string) (string, bool)

// OSEnv resolves variables from the process environment.
func OSEnv(name string) (string, bool) {
	return os.LookupEnv(name)
}

// MapEnv resolves variables from a fixed mapping; used by tests.
func MapEnv(m map[string]string) Env {
	return func(name string) (string, bool) {
		v, ok := m[name]
		return v, ok
	}
}

// MalformedLineError reports a non-blank line without a key=value shape.
type MalformedLineError struct {
	LineNo int
	Line   string
}

func (e *MalformedLineError) Error() string {
	return fmt.Sprintf("malformed parameter line %d: %q (expected key=value)", e.LineNo, e.Line)
}

// UnresolvedPlaceholderError reports a ${NAME} token with no environment entry.
type UnresolvedPlaceholderError struct {
	Name   string
	LineNo int
}

func (e *UnresolvedPlaceholderError) Error() string {
	return fmt.Sprintf("unresolved placeholder ${%s} on line %d", e.Name, e.LineNo)
}

var placeholderRe = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// knownProviders are the cloudProvider tokens the harness exercises.
var knownProviders = map[string]struct{}{
	"aws": {},
}

// Resolve parses a parameter block into a spec. Keys and values are trimmed,
// placeholders are substituted from env, explicit empty values are kept, and
// the spec is validated before any network call can use it.
func Resolve(rawBlock string, env Env) (*resource.Spec, error) {
	spec := resource.NewSpec()

	for i, line := range strings.Split(rawBlock, "\n") {
		lineNo := i + 1
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		key, val, found := strings.Cut(trimmed, "=")
		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)
		if !found || key == "" {
			return nil, &MalformedLineError{LineNo: lineNo, Line: trimmed}
		}

		val, err := substitute(val, env, lineNo)
		if err != nil {
			return nil, err
		}
		spec.Set(key, val)
	}

	if err := validate(spec); err != nil {
		return nil, err
	}
	return spec, nil
}

func substitute(val string, env Env, lineNo int) (string, error) {
	var substErr error
	out := placeholderRe.ReplaceAllStringFunc(val, func(token string) string {
		name := placeholderRe.FindStringSubmatch(token)[1]
		resolved, ok := env(name)
		if !ok {
			if substErr == nil {
				substErr = &UnresolvedPlaceholderError{Name: name, LineNo: lineNo}
			}
			return token
		}
		return resolved
	})
	if substErr != nil {
		return "", substErr
	}
	return out, nil
}

func validate(spec *resource.Spec) error {
	for _, field := range []string{"cidrBlock", "subnetCidr"} {
		if v, ok := spec.Lookup(field); ok && v != "" {
			if _, err := netip.ParsePrefix(v); err != nil {
				return fmt.Errorf("%s %q is not valid CIDR notation: %w", field, v, err)
			}
		}
	}
	if provider, ok := spec.Lookup("cloudProvider"); ok && provider != "" {
		if _, known := knownProviders[provider]; !known {
			return fmt.Errorf("unknown cloudProvider %q", provider)
		}
	}
	return nil
}

// BulkOverride describes an environment-variable set that, when fully
// present, replaces a scenario's parameter block. The bulk creation wrappers
// drive single-scenario features this way.
type BulkOverride struct {
	Vars  []string
	Block func(vals map[string]string) string
}

// VPCBulk is the override set for the VPC creation scenario.
var VPCBulk = BulkOverride{
	Vars: []string{"VPC_BULK_CIDR", "VPC_BULK_NAME", "VPC_BULK_STACK"},
	Block: func(vals map[string]string) string {
		return strings.Join([]string{
			"cidrBlock=" + vals["VPC_BULK_CIDR"],
			"cloudAccountId=1",
			"cloudProvider=aws",
			"cloudRegion=us-east-1",
			"cloudResourceGroup=",
			"name=" + vals["VPC_BULK_NAME"],
			"stackName=" + vals["VPC_BULK_STACK"],
			"tagName=" + vals["VPC_BULK_NAME"],
		}, "\n")
	},
}

// SubnetBulk is the override set for the subnet creation scenario.
var SubnetBulk = BulkOverride{
	Vars: []string{"SUBNET_BULK_VPC_ID", "SUBNET_BULK_CIDR", "SUBNET_BULK_NAME", "SUBNET_BULK_STACK"},
	Block: func(vals map[string]string) string {
		return strings.Join([]string{
			"cloudAccountId=1",
			"cloudProvider=aws",
			"cloudRegion=us-east-1",
			"cloudResourceGroup=",
			"stackName=" + vals["SUBNET_BULK_STACK"],
			"subnetCidr=" + vals["SUBNET_BULK_CIDR"],
			"vpcId=" + vals["SUBNET_BULK_VPC_ID"],
			"name=" + vals["SUBNET_BULK_NAME"],
		}, "\n")
	},
}

// Apply returns the synthesized block when every override variable is set,
// otherwise the raw block unchanged.
func (b BulkOverride) Apply(raw string, env Env) string {
	vals := map[string]string{}
	for _, name := range b.Vars {
		v, ok := env(name)
		if !ok || v == "" {
			return raw
		}
		vals[name] = v
	}
	return b.Block(vals)
}
