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

// Package cleanup tears down every resource a scenario registered, in
// reverse creation order, on pass, failure, and cancellation paths alike.
package cleanup

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"
	"go.uber.org/multierr"

	"github.com/Shreyoshi-Cal/mcn-qa-harness/pkg/apiclient"
	"github.com/Shreyoshi-Cal/mcn-qa-harness/pkg/logging"
	"github.com/Shreyoshi-Cal/mcn-qa-harness/pkg/metrics"
	"github.com/Shreyoshi-Cal/mcn-qa-harness/pkg/resource"
	"github.com/Shreyoshi-Cal/mcn-qa-harness/pkg/scenario"
)

// DefaultDeleteTimeout bounds each individual delete call, matching the API
// client's request timeout.
const DefaultDeleteTimeout = 30 * time.Second

// Deleter is the slice of the API client cleanup needs.
type Deleter interface {
	DeleteResource(ctx context.Context, t resource.Type, id string, spec *resource.Spec) (*apiclient.Response, error)
}

// Result is the outcome of one best-effort delete attempt.
type Result struct {
	Resource   resource.CreatedResource
	StatusCode int
	Err        error
}

// Succeeded reports whether the resource was actually deleted.
func (r Result) Succeeded() bool {
	return r.Err == nil
}

// Coordinator issues the teardown pass for a scenario context.
type Coordinator struct {
	client  Deleter
	timeout time.Duration
	log     *logging.Logger
}

func New(client Deleter) *Coordinator {
	return &Coordinator{
		client:  client,
		timeout: DefaultDeleteTimeout,
		log:     logging.CleanupLogger(),
	}
}

// WithTimeout overrides the per-delete timeout.
func (c *Coordinator) WithTimeout(d time.Duration) *Coordinator {
	c.timeout = d
	return c
}

// Run deletes every registered resource in reverse creation order, so
// subnets go before their parent VPC. Each resource gets exactly one
// attempt; a failure never aborts the rest of the pass. The registry is
// cleared unconditionally afterward and failed deletes are reported as leak
// candidates. The aggregated error is informational, never fatal.
func (c *Coordinator) Run(ctx context.Context, sctx *scenario.Context) ([]Result, error) {
	resources := lo.Reverse(sctx.Resources())
	results := make([]Result, 0, len(resources))
	var aggregated error

	for _, r := range resources {
		result := c.deleteOne(ctx, r)
		results = append(results, result)

		if result.Succeeded() {
			metrics.RecordCleanup(string(r.Type), "success")
			c.log.Info("resource deleted", "type", r.Type, "id", r.ID)
			continue
		}

		metrics.RecordCleanup(string(r.Type), "failure")
		metrics.RecordLeak(string(r.Type))
		c.log.Warn("cleanup delete failed, resource is a leak candidate",
			"type", r.Type, "id", r.ID, "status", result.StatusCode, "error", result.Err.Error())
		aggregated = multierr.Append(aggregated,
			fmt.Errorf("cleanup of %s %s: %w", r.Type, r.ID, result.Err))
	}

	sctx.Clear()
	return results, aggregated
}

// deleteOne runs a single delete with its own deadline. The parent context
// may already be cancelled (suite timeout); teardown must still go out, so
// the call detaches from the parent's cancellation.
func (c *Coordinator) deleteOne(ctx context.Context, r resource.CreatedResource) Result {
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()

	resp, err := c.client.DeleteResource(dctx, r.Type, r.ID, nil)
	result := Result{Resource: r, Err: err}
	if resp != nil {
		result.StatusCode = resp.StatusCode
	}
	return result
}
