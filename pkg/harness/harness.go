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

// Package harness binds the VPC/subnet feature files to the API client,
// scenario context, assertion layer, and cleanup coordinator. Each scenario
// gets a fresh state; teardown runs in an After hook on every exit path.
package harness

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
	"github.com/google/uuid"

	"github.com/Shreyoshi-Cal/mcn-qa-harness/pkg/apiclient"
	"github.com/Shreyoshi-Cal/mcn-qa-harness/pkg/assertion"
	"github.com/Shreyoshi-Cal/mcn-qa-harness/pkg/cleanup"
	"github.com/Shreyoshi-Cal/mcn-qa-harness/pkg/logging"
	"github.com/Shreyoshi-Cal/mcn-qa-harness/pkg/params"
	"github.com/Shreyoshi-Cal/mcn-qa-harness/pkg/resource"
	"github.com/Shreyoshi-Cal/mcn-qa-harness/pkg/scenario"
)

// Options wires a Harness.
type Options struct {
	Client *apiclient.Client
	Env    params.Env
	// ExternalVPCID and ExternalSubnetID are CLI-supplied resource IDs for
	// the delete-by-ID scenarios.
	ExternalVPCID    string
	ExternalSubnetID string
	// RunID tags every created resource so leaked ones can be garbage
	// collected later. Defaults to a fresh UUID per process.
	RunID string
}

// Harness is the immutable, shared wiring behind all scenarios.
type Harness struct {
	client      *apiclient.Client
	coordinator *cleanup.Coordinator
	env         params.Env
	runID       string

	externalVPCID    string
	externalSubnetID string
}

func New(opts Options) *Harness {
	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	env := opts.Env
	if env == nil {
		env = params.OSEnv
	}
	return &Harness{
		client:           opts.Client,
		coordinator:      cleanup.New(opts.Client),
		env:              env,
		runID:            runID,
		externalVPCID:    opts.ExternalVPCID,
		externalSubnetID: opts.ExternalSubnetID,
	}
}

// RunID returns the identifier stamped onto every created resource's tags.
func (h *Harness) RunID() string {
	return h.runID
}

// state is the per-scenario mutable part. godog calls the scenario
// initializer once per scenario, so nothing here is shared.
type state struct {
	h    *Harness
	sctx *scenario.Context
	log  *logging.Logger

	accountID    string
	deleteTarget resource.CreatedResource
}

// InitializeScenario registers all step definitions and lifecycle hooks.
func (h *Harness) InitializeScenario(sc *godog.ScenarioContext) {
	s := &state{
		h:    h,
		sctx: scenario.New(),
		log:  logging.ScenarioLogger(),
	}
	s.sctx.ExternalVPCID = h.externalVPCID
	s.sctx.ExternalSubnetID = h.externalSubnetID

	sc.Before(func(ctx context.Context, sn *godog.Scenario) (context.Context, error) {
		s.log = logging.ScenarioLogger().WithValues("scenario", sn.Name)
		s.log.Info("scenario starting")
		return ctx, nil
	})

	// Teardown runs on pass, failure, and cancellation alike. The
	// coordinator detaches from an already-cancelled context so deletes
	// still go out.
	sc.After(func(ctx context.Context, sn *godog.Scenario, scErr error) (context.Context, error) {
		results, cleanupErr := h.coordinator.Run(ctx, s.sctx)
		for _, r := range results {
			s.log.Info("cleanup outcome",
				"type", r.Resource.Type, "id", r.Resource.ID,
				"status", r.StatusCode, "succeeded", r.Succeeded())
		}
		if cleanupErr != nil {
			// leaks are reported, never escalated into a suite failure
			s.log.Warn("cleanup left leak candidates", "error", cleanupErr.Error())
		}
		return ctx, scErr
	})

	// VPC steps
	sc.Step(`^I have a registered AWS account$`, s.iHaveARegisteredAWSAccount)
	sc.Step(`^the AWS API is accessible$`, s.theAPIIsAccessible)
	sc.Step(`^the VPC details are:$`, s.theVPCDetailsAre)
	sc.Step(`^I send a POST request to create a VPC on AWS$`, s.iCreateTheVPC)
	sc.Step(`^the AWS VPC creation API response should be (\d+)$`, s.theResponseStatusIs)
	sc.Step(`^the AWS VPC creation API response body must contain a VPC ID$`, s.theBodyContainsAVPCID)
	sc.Step(`^cleanup any created AWS VPC resources$`, s.cleanupCreatedResources)

	// delete-by-ID steps
	sc.Step(`^the VPC ID from CLI is available$`, s.theVPCIDFromCLIIsAvailable)
	sc.Step(`^the subnet ID from CLI is available$`, s.theSubnetIDFromCLIIsAvailable)
	sc.Step(`^the DELETE call is sent$`, s.theDeleteCallIsSent)
	sc.Step(`^the API responds (\d+)$`, s.theResponseStatusIs)
	sc.Step(`^I delete the created VPC$`, s.iDeleteTheCreatedVPC)
	sc.Step(`^the response body must contain "([^"]*)"$`, s.theBodyContains)

	// subnet steps
	sc.Step(`^the subnet details$`, s.theSubnetDetailsAre)
	sc.Step(`^I send the subnet-creation request$`, s.iCreateTheSubnet)
	sc.Step(`^the subnet API must return (\d+)$`, s.theResponseStatusIs)
	sc.Step(`^the response contains the created subnet id$`, s.theBodyContainsASubnetID)
}

func (s *state) iHaveARegisteredAWSAccount() error {
	s.accountID = "1"
	s.log.Info("AWS account id configured", "accountId", s.accountID)
	return nil
}

func (s *state) theAPIIsAccessible(ctx context.Context) error {
	return s.h.client.Health(ctx)
}

// env layers scenario-scoped values over the harness environment:
// ${LAST_VPC_ID} resolves to the most recently created VPC, so a later
// step's parameter block can reference it.
func (s *state) env() params.Env {
	return func(name string) (string, bool) {
		if name == "LAST_VPC_ID" {
			resources := s.sctx.Resources()
			for i := len(resources) - 1; i >= 0; i-- {
				if resources[i].Type == resource.TypeVPC {
					return resources[i].ID, true
				}
			}
			return "", false
		}
		return s.h.env(name)
	}
}

func (s *state) theVPCDetailsAre(doc *godog.DocString) error {
	raw := params.VPCBulk.Apply(doc.Content, s.env())
	spec, err := params.Resolve(raw, s.env())
	if err != nil {
		return err
	}
	s.sctx.Spec = spec
	s.log.Info("VPC parameter block resolved", "fields", spec.Fields(), "spec", spec.Fingerprint())
	return nil
}

func (s *state) theSubnetDetailsAre(doc *godog.DocString) error {
	raw := params.SubnetBulk.Apply(doc.Content, s.env())
	spec, err := params.Resolve(raw, s.env())
	if err != nil {
		return err
	}
	s.sctx.Spec = spec
	s.log.Info("subnet parameter block resolved", "fields", spec.Fields(), "spec", spec.Fingerprint())
	return nil
}

// runTags are merged into every create payload so out-of-band garbage
// collection can find resources a failed cleanup left behind.
func (s *state) runTags() map[string]string {
	return map[string]string{"HarnessRunID": s.h.runID}
}

func (s *state) create(ctx context.Context, t resource.Type) error {
	if s.sctx.Spec == nil {
		return fmt.Errorf("no %s details resolved before the creation step", t)
	}
	provider := s.sctx.Spec.Get("cloudProvider")
	if provider == "" {
		provider = "aws"
	}
	v, err := resource.VariantFor(provider, t)
	if err != nil {
		return err
	}

	resp, id, err := s.h.client.CreateResource(ctx, v, s.sctx.Spec, s.runTags())
	if resp == nil {
		// only a transport-level failure aborts the step; HTTP errors and
		// extraction failures are surfaced by the assertion steps
		return err
	}
	s.sctx.SetLastResponse(resp)

	if id != "" {
		created := resource.CreatedResource{Type: t, ID: id}
		if t == resource.TypeSubnet {
			created.ParentID = s.sctx.Spec.Get("vpcId")
		}
		s.sctx.Register(created)
		s.deleteTarget = created
	}
	return nil
}

func (s *state) iCreateTheVPC(ctx context.Context) error {
	return s.create(ctx, resource.TypeVPC)
}

func (s *state) iCreateTheSubnet(ctx context.Context) error {
	if s.sctx.Spec == nil {
		return fmt.Errorf("no subnet details resolved before the creation step")
	}
	// a subnet needs its parent VPC confirmed created or pre-declared
	// before any request goes out
	vpcID := s.sctx.Spec.Get("vpcId")
	if vpcID == "" {
		return fmt.Errorf("subnet details must declare a vpcId (created in this scenario or externally supplied)")
	}
	if !s.sctx.HasVPC(vpcID) {
		s.log.Info("vpcId not registered in this scenario, treating as externally supplied", "vpcId", vpcID)
	}
	return s.create(ctx, resource.TypeSubnet)
}

func (s *state) theResponseStatusIs(expected int) error {
	return assertion.Status(s.sctx.LastResponse(), expected).Err()
}

func (s *state) theBodyContains(substring string) error {
	return assertion.BodyContains(s.sctx.LastResponse(), substring).Err()
}

func (s *state) theBodyContainsAVPCID() error {
	v, err := resource.VariantFor("aws", resource.TypeVPC)
	if err != nil {
		return err
	}
	return assertion.BodyHasID(s.sctx.LastResponse(), v).Err()
}

func (s *state) theBodyContainsASubnetID() error {
	v, err := resource.VariantFor("aws", resource.TypeSubnet)
	if err != nil {
		return err
	}
	return assertion.BodyHasID(s.sctx.LastResponse(), v).Err()
}

func (s *state) theVPCIDFromCLIIsAvailable() error {
	if s.sctx.ExternalVPCID == "" {
		return fmt.Errorf("no VPC ID supplied (set --vpc-id or vpc_id_for_deletion)")
	}
	s.deleteTarget = resource.CreatedResource{Type: resource.TypeVPC, ID: s.sctx.ExternalVPCID}
	s.log.Info("deleting VPC", "id", s.sctx.ExternalVPCID)
	return nil
}

func (s *state) theSubnetIDFromCLIIsAvailable() error {
	if s.sctx.ExternalSubnetID == "" {
		return fmt.Errorf("no subnet ID supplied (set --subnet-id or subnet_id_for_deletion)")
	}
	s.deleteTarget = resource.CreatedResource{Type: resource.TypeSubnet, ID: s.sctx.ExternalSubnetID}
	s.log.Info("deleting subnet", "id", s.sctx.ExternalSubnetID)
	return nil
}

func (s *state) iDeleteTheCreatedVPC(ctx context.Context) error {
	s.deleteTarget = resource.CreatedResource{}
	for _, r := range s.sctx.Resources() {
		if r.Type == resource.TypeVPC {
			s.deleteTarget = r
		}
	}
	if s.deleteTarget.ID == "" {
		return fmt.Errorf("no VPC was created in this scenario")
	}
	return s.theDeleteCallIsSent(ctx)
}

func (s *state) theDeleteCallIsSent(ctx context.Context) error {
	if s.deleteTarget.ID == "" {
		return fmt.Errorf("no delete target selected")
	}

	resp, err := s.h.client.DeleteResource(ctx, s.deleteTarget.Type, s.deleteTarget.ID, s.sctx.Spec)
	if resp == nil {
		return err
	}
	s.sctx.SetLastResponse(resp)

	// an explicit successful delete removes the resource from the registry
	// so teardown does not try it again
	if resp.IsSuccess() {
		s.sctx.Remove(s.deleteTarget.ID)
	}
	return nil
}

// cleanupCreatedResources is the scenario-level cleanup step: it runs the
// coordinator immediately and reports outcomes. The After hook still runs
// afterward and finds an empty registry.
func (s *state) cleanupCreatedResources(ctx context.Context) error {
	results, err := s.h.coordinator.Run(ctx, s.sctx)
	for _, r := range results {
		s.log.Info("cleanup tracking",
			"type", r.Resource.Type, "id", r.Resource.ID,
			"status", r.StatusCode, "succeeded", r.Succeeded())
	}
	if err != nil {
		s.log.Warn("some resources could not be deleted", "error", err.Error())
	}
	return nil
}
