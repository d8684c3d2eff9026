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

// Package scenario holds the mutable state one scenario execution owns:
// the registry of resources it created and the most recent API response.
// A Context is never shared between scenarios, so it carries no locking.
package scenario

import (
	"github.com/Shreyoshi-Cal/mcn-qa-harness/pkg/apiclient"
	"github.com/Shreyoshi-Cal/mcn-qa-harness/pkg/resource"
)

// Context is the per-scenario resource registry and response holder.
type Context struct {
	created      []resource.CreatedResource
	lastResponse *apiclient.Response

	// Spec is the parameter block resolved by the current scenario's
	// given-step, consumed by the following when-step.
	Spec *resource.Spec

	// ExternalVPCID is a VPC identifier supplied from outside the scenario
	// (CLI flag or environment), used by delete-by-ID scenarios and as a
	// subnet parent that needs no registry entry.
	ExternalVPCID string

	// ExternalSubnetID is the subnet counterpart of ExternalVPCID.
	ExternalSubnetID string
}

func New() *Context {
	return &Context{}
}

// Register appends a created resource. No deduplication: two VPCs with the
// same name are tracked independently by ID.
func (c *Context) Register(r resource.CreatedResource) {
	c.created = append(c.created, r)
}

// Resources returns the registry in creation order.
func (c *Context) Resources() []resource.CreatedResource {
	out := make([]resource.CreatedResource, len(c.created))
	copy(out, c.created)
	return out
}

// Remove drops the resource with the given ID from the registry, after an
// explicit scenario-level delete step succeeded.
func (c *Context) Remove(id string) {
	kept := c.created[:0]
	for _, r := range c.created {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	c.created = kept
}

// Clear empties the registry. The cleanup coordinator calls this after its
// pass regardless of per-resource outcomes.
func (c *Context) Clear() {
	c.created = nil
}

// HasVPC reports whether the registry holds a VPC with the given ID.
func (c *Context) HasVPC(id string) bool {
	for _, r := range c.created {
		if r.Type == resource.TypeVPC && r.ID == id {
			return true
		}
	}
	return false
}

// SetLastResponse replaces the most recent response wholesale.
func (c *Context) SetLastResponse(resp *apiclient.Response) {
	c.lastResponse = resp
}

// LastResponse returns the most recent API response, or nil before any call.
func (c *Context) LastResponse() *apiclient.Response {
	return c.lastResponse
}
