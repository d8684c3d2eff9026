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

package resource

import (
	"fmt"

	"github.com/mitchellh/hashstructure/v2"
)

// Type identifies the kind of cloud resource a scenario creates.
type Type string

const (
	TypeVPC    Type = "vpc"
	TypeSubnet Type = "subnet"
)

// CreatedResource records one resource a scenario created and must tear down.
// ParentID is set for subnets and names the owning VPC, which may be
// externally supplied rather than created in the same scenario.
type CreatedResource struct {
	Type     Type
	ID       string
	ParentID string
}

// Spec is an ordered field mapping parsed from a scenario parameter block.
// Field order is insertion order; a field set to "" is present-and-empty,
// which callers must distinguish from absent.
type Spec struct {
	keys   []string
	values map[string]string
}

func NewSpec() *Spec {
	return &Spec{values: map[string]string{}}
}

// Set adds or replaces a field. First insertion fixes the field's position.
func (s *Spec) Set(key, value string) {
	if _, ok := s.values[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.values[key] = value
}

// Get returns the field value, or "" when absent.
func (s *Spec) Get(key string) string {
	return s.values[key]
}

// Lookup returns the field value and whether the field is present.
func (s *Spec) Lookup(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Fields returns the field names in insertion order.
func (s *Spec) Fields() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

func (s *Spec) Len() int {
	return len(s.keys)
}

// Fingerprint returns a stable hash of the spec's fields, used to correlate
// log lines for the same payload across steps.
func (s *Spec) Fingerprint() string {
	h, err := hashstructure.Hash(s.values, hashstructure.FormatV2, nil)
	if err != nil {
		return "unknown"
	}
	return fmt.Sprintf("%016x", h)
}
