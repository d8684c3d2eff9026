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
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Variant describes provider-specific behavior for one {provider, resource
// type} pair: how to turn a Spec into a request payload, where to send it,
// and how to pull the created resource's ID out of a response body.
type Variant interface {
	Type() Type
	Provider() string
	CreatePath() string
	DeletePath(id string) string
	// Payload builds the JSON-serializable request body. Extra tags are
	// merged into the payload's tags object (used for the run identifier).
	Payload(spec *Spec, tags map[string]string) (map[string]interface{}, error)
	// ExtractID pulls the created resource identifier out of a 2xx body.
	ExtractID(body []byte) (string, error)
}

// IDExtractionError reports a 2xx response whose body yielded no usable ID.
type IDExtractionError struct {
	ResourceType Type
	Fields       []string
	Body         string
}

func (e *IDExtractionError) Error() string {
	return fmt.Sprintf("no %s ID found in response (tried fields: %s): %s",
		e.ResourceType, strings.Join(e.Fields, ", "), e.Body)
}

// VariantFor returns the variant for a provider and resource type.
func VariantFor(provider string, t Type) (Variant, error) {
	switch {
	case provider == "aws" && t == TypeVPC:
		return awsVPC{}, nil
	case provider == "aws" && t == TypeSubnet:
		return awsSubnet{}, nil
	default:
		return nil, fmt.Errorf("no variant for provider %q resource type %q", provider, t)
	}
}

type awsVPC struct{}

func (awsVPC) Type() Type                  { return TypeVPC }
func (awsVPC) Provider() string            { return "aws" }
func (awsVPC) CreatePath() string          { return "/cloud/vpc" }
func (awsVPC) DeletePath(id string) string { return "/cloud/vpc/" + id }

func (awsVPC) Payload(spec *Spec, tags map[string]string) (map[string]interface{}, error) {
	payload, err := basePayload(spec)
	if err != nil {
		return nil, err
	}
	// The VPC model always carries these, even when the block omits them.
	if _, ok := payload["cloudAccountId"]; !ok {
		payload["cloudAccountId"] = 1
	}
	if _, ok := payload["cloudProvider"]; !ok {
		payload["cloudProvider"] = "aws"
	}
	if _, ok := payload["cloudRegion"]; !ok {
		payload["cloudRegion"] = "us-east-1"
	}
	if _, ok := payload["cloudResourceGroup"]; !ok {
		payload["cloudResourceGroup"] = ""
	}
	mergeTags(payload, tags)
	return payload, nil
}

func (awsVPC) ExtractID(body []byte) (string, error) {
	fields := []string{"vpcId", "id"}
	id, err := extractID(TypeVPC, body, fields)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(id, "vpc-") {
		return "", fmt.Errorf("found ID %q but it does not match the expected vpc- format", id)
	}
	return id, nil
}

type awsSubnet struct{}

func (awsSubnet) Type() Type                  { return TypeSubnet }
func (awsSubnet) Provider() string            { return "aws" }
func (awsSubnet) CreatePath() string          { return "/cloud/create-subnet" }
func (awsSubnet) DeletePath(id string) string { return "/cloud/subnet/" + id }

func (awsSubnet) Payload(spec *Spec, tags map[string]string) (map[string]interface{}, error) {
	payload, err := basePayload(spec)
	if err != nil {
		return nil, err
	}
	if _, ok := payload["cloudAccountId"]; !ok {
		payload["cloudAccountId"] = 1
	}
	if _, ok := payload["cloudProvider"]; !ok {
		payload["cloudProvider"] = "aws"
	}
	mergeTags(payload, tags)
	return payload, nil
}

func (awsSubnet) ExtractID(body []byte) (string, error) {
	return extractID(TypeSubnet, body, []string{"subnetId", "id"})
}

// basePayload maps spec fields onto the wire model: cloudAccountId is
// numeric, tagName folds into tags.Name, everything else passes through
// unchanged (including explicit empty strings).
func basePayload(spec *Spec) (map[string]interface{}, error) {
	payload := map[string]interface{}{}
	for _, key := range spec.Fields() {
		val := spec.Get(key)
		switch key {
		case "cloudAccountId":
			if val == "" {
				payload[key] = 1
				continue
			}
			n, err := strconv.Atoi(val)
			if err != nil {
				return nil, fmt.Errorf("cloudAccountId must be numeric, got %q", val)
			}
			payload[key] = n
		case "tagName":
			tagsOf(payload)["Name"] = val
		default:
			payload[key] = val
		}
	}
	return payload, nil
}

func mergeTags(payload map[string]interface{}, tags map[string]string) {
	if len(tags) == 0 {
		return
	}
	dst := tagsOf(payload)
	for _, k := range lo.Keys(tags) {
		dst[k] = tags[k]
	}
}

func tagsOf(payload map[string]interface{}) map[string]interface{} {
	if existing, ok := payload["tags"].(map[string]interface{}); ok {
		return existing
	}
	tags := map[string]interface{}{}
	payload["tags"] = tags
	return tags
}

// extractID searches the candidate fields at the top level and nested under
// "data", mirroring the response shapes the MCN API is known to produce.
func extractID(t Type, body []byte, fields []string) (string, error) {
	var parsed map[string]interface{}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("response is not valid JSON: %w", err)
	}

	for _, field := range fields {
		if id, ok := stringField(parsed, field); ok {
			return id, nil
		}
	}
	if nested, ok := parsed["data"].(map[string]interface{}); ok {
		for _, field := range fields {
			if id, ok := stringField(nested, field); ok {
				return id, nil
			}
		}
	}

	return "", &IDExtractionError{ResourceType: t, Fields: fields, Body: string(body)}
}

func stringField(m map[string]interface{}, field string) (string, bool) {
	v, ok := m[field].(string)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}
