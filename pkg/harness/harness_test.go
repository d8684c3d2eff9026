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

package harness

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/cucumber/godog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shreyoshi-Cal/mcn-qa-harness/pkg/apiclient"
	"github.com/Shreyoshi-Cal/mcn-qa-harness/pkg/fake"
	"github.com/Shreyoshi-Cal/mcn-qa-harness/pkg/params"
)

func newTestHarness(t *testing.T, server *fake.Server, opts func(*Options)) *Harness {
	t.Helper()
	client := apiclient.New(server.URL(), apiclient.HeaderSetter(map[string]string{
		"X-TenantID":        "tata",
		"Organization-Name": "caltestorg",
	}))
	o := Options{
		Client: client,
		Env:    params.MapEnv(nil),
		RunID:  "test-run",
	}
	if opts != nil {
		opts(&o)
	}
	return New(o)
}

func runSuite(h *Harness, t *testing.T, godogOpts godog.Options) int {
	if godogOpts.Format == "" {
		godogOpts.Format = "progress"
	}
	godogOpts.Output = io.Discard
	godogOpts.NoColors = true
	suite := godog.TestSuite{
		Name:                "mcn-qa-harness",
		ScenarioInitializer: h.InitializeScenario,
		Options:             &godogOpts,
	}
	return suite.Run()
}

func TestFeatures(t *testing.T) {
	server := fake.NewServer()
	defer server.Close()

	h := newTestHarness(t, server, func(o *Options) {
		o.ExternalVPCID = "vpc-04fc4339d04982788"
		o.ExternalSubnetID = "subnet-0a1b2c3d4e5f6a7b8"
	})

	status := runSuite(h, t, godog.Options{
		Paths: []string{"../../features"},
		Tags:  "~@bulk",
	})
	assert.Equal(t, 0, status, "feature suite failed")
}

func TestBulkScenarioWithEnvironmentOverrides(t *testing.T) {
	server := fake.NewServer()
	defer server.Close()

	h := newTestHarness(t, server, func(o *Options) {
		o.Env = params.MapEnv(map[string]string{
			"VPC_BULK_CIDR":  "10.9.0.0/16",
			"VPC_BULK_NAME":  "bulk-vpc-01",
			"VPC_BULK_STACK": "bulk-stack-01",
		})
	})

	status := runSuite(h, t, godog.Options{
		Paths: []string{"../../features/vpc_create.feature"},
		Tags:  "@bulk",
	})
	require.Equal(t, 0, status)

	var created map[string]interface{}
	for _, r := range server.Requests() {
		if r.Method == http.MethodPost && r.Path == "/cloud/vpc" {
			require.NoError(t, json.Unmarshal(r.Body, &created))
		}
	}
	require.NotNil(t, created, "no VPC create request recorded")
	assert.Equal(t, "10.9.0.0/16", created["cidrBlock"])
	assert.Equal(t, "bulk-vpc-01", created["name"])

	tags := created["tags"].(map[string]interface{})
	assert.Equal(t, "bulk-vpc-01", tags["Name"])
	assert.Equal(t, "test-run", tags["HarnessRunID"])
}

const chainedFeature = `
Feature: chained create
  Scenario: VPC then subnet, torn down in reverse
    Given I have a registered AWS account
    And the VPC details are:
      """
      cidrBlock=10.4.0.0/16
      name=chain-vpc
      stackName=chain-stack
      tagName=chain-vpc
      """
    When I send a POST request to create a VPC on AWS
    Then the AWS VPC creation API response should be 200
    Given the subnet details
      """
      subnetCidr=10.4.1.0/24
      stackName=chain-subnet-stack
      vpcId=${LAST_VPC_ID}
      """
    When I send the subnet-creation request
    Then the subnet API must return 200
    And the response contains the created subnet id
`

func TestCleanupRunsInReverseCreationOrder(t *testing.T) {
	server := fake.NewServer()
	defer server.Close()

	h := newTestHarness(t, server, nil)
	status := runSuite(h, t, godog.Options{
		FeatureContents: []godog.Feature{
			{Name: "chained.feature", Contents: []byte(chainedFeature)},
		},
	})
	require.Equal(t, 0, status)

	deletes := server.DeletePaths()
	require.Len(t, deletes, 2)
	assert.True(t, strings.HasPrefix(deletes[0], "/cloud/subnet/"), "subnet must be deleted first, got %s", deletes[0])
	assert.True(t, strings.HasPrefix(deletes[1], "/cloud/vpc/"), "vpc must be deleted last, got %s", deletes[1])
}

const failingFeature = `
Feature: failing assertion
  Scenario: expected status never arrives
    Given I have a registered AWS account
    And the VPC details are:
      """
      cidrBlock=10.6.0.0/16
      name=failing-vpc
      """
    When I send a POST request to create a VPC on AWS
    Then the AWS VPC creation API response should be 404
`

func TestCleanupRunsAfterAssertionFailure(t *testing.T) {
	server := fake.NewServer()
	defer server.Close()

	h := newTestHarness(t, server, nil)
	status := runSuite(h, t, godog.Options{
		FeatureContents: []godog.Feature{
			{Name: "failing.feature", Contents: []byte(failingFeature)},
		},
	})
	// the scenario fails, yet its VPC is still deleted
	assert.NotEqual(t, 0, status)

	deletes := server.DeletePaths()
	require.Len(t, deletes, 1)
	assert.True(t, strings.HasPrefix(deletes[0], "/cloud/vpc/"))
}

const unresolvedFeature = `
Feature: unresolved placeholder
  Scenario: resolution fails before any network call
    Given I have a registered AWS account
    And the VPC details are:
      """
      cidrBlock=${UNKNOWN_VAR}
      name=never-sent
      """
    When I send a POST request to create a VPC on AWS
    Then the AWS VPC creation API response should be 200
`

func TestUnresolvedPlaceholderSendsNoRequest(t *testing.T) {
	server := fake.NewServer()
	defer server.Close()

	h := newTestHarness(t, server, nil)
	status := runSuite(h, t, godog.Options{
		FeatureContents: []godog.Feature{
			{Name: "unresolved.feature", Contents: []byte(unresolvedFeature)},
		},
	})
	assert.NotEqual(t, 0, status)

	for _, r := range server.Requests() {
		assert.NotEqual(t, http.MethodPost, r.Method, "no create request may be sent for an unresolved block")
	}
}

const idExtractionFeature = `
Feature: missing identifier
  Scenario: 200 without an ID fails the body assertion, not the request step
    Given I have a registered AWS account
    And the VPC details are:
      """
      cidrBlock=10.7.0.0/16
      name=no-id-vpc
      """
    When I send a POST request to create a VPC on AWS
    Then the AWS VPC creation API response should be 200
    And the AWS VPC creation API response body must contain a VPC ID
`

func TestIDExtractionFailureSurfacesInAssertion(t *testing.T) {
	server := fake.NewServer()
	defer server.Close()
	server.OmitIDs(true)

	h := newTestHarness(t, server, nil)
	status := runSuite(h, t, godog.Options{
		FeatureContents: []godog.Feature{
			{Name: "no_id.feature", Contents: []byte(idExtractionFeature)},
		},
	})
	assert.NotEqual(t, 0, status)

	// nothing was registered, so nothing gets deleted
	assert.Empty(t, server.DeletePaths())
}
