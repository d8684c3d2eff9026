/*
Copyright 2024 The Kubernetes Authors.

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

package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Shreyoshi-Cal/mcn-qa-harness/pkg/logging"
	"github.com/Shreyoshi-Cal/mcn-qa-harness/pkg/metrics"
	"github.com/Shreyoshi-Cal/mcn-qa-harness/pkg/resource"
)

// Client is the HTTP client for the MCN VPC/subnet management API
type Client struct {
	client     *http.Client
	baseURL    string
	setHeaders func(*http.Request)
	log        *logging.Logger
}

// RequestConfig contains configuration for HTTP requests
type RequestConfig struct {
	Method    string
	Endpoint  string
	Body      io.Reader
	Headers   map[string]string
	Operation string
}

// Response contains the HTTP response and body
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// IsSuccess reports whether the response carries a 2xx status
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// APIError represents an MCN API error response
type APIError struct {
	StatusCode  int    `json:"-"`
	Code        string `json:"code"`
	Message     string `json:"message"`
	Description string `json:"description"`
	Endpoint    string `json:"-"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("MCN API error (code: %s): %s (endpoint: %s)", e.Code, e.Description, e.Endpoint)
	}
	return fmt.Sprintf("HTTP %d: %s (endpoint: %s)", e.StatusCode, e.Message, e.Endpoint)
}

// IsNotFound returns true if the error is a 404 Not Found error
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsConflict returns true if the error is a 409 Conflict error
func (e *APIError) IsConflict() bool {
	return e.StatusCode == http.StatusConflict
}

// IsUnauthorized returns true if the error is a 401 Unauthorized error
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// HeaderSetter builds the default header function from static headers.
// The MCN API wants Accept/Content-Type JSON plus tenant and organization.
func HeaderSetter(headers map[string]string) func(*http.Request) {
	return func(req *http.Request) {
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Content-Type", "application/json")
		for k, v := range headers {
			req.Header.Set(k, v)
		}
	}
}

// New creates a new MCN API client
func New(baseURL string, setHeaders func(*http.Request)) *Client {
	return &Client{
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     30 * time.Second,
			},
		},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		setHeaders: setHeaders,
		log:        logging.ClientLogger(),
	}
}

// NewWithHTTPClient creates a client wrapper around a custom http.Client
func NewWithHTTPClient(httpClient *http.Client, baseURL string, setHeaders func(*http.Request)) *Client {
	return &Client{
		client:     httpClient,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		setHeaders: setHeaders,
		log:        logging.ClientLogger(),
	}
}

// BaseURL returns the configured API base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do executes an HTTP request and returns the response
func (c *Client) Do(ctx context.Context, config RequestConfig) (*Response, error) {
	url := c.baseURL + config.Endpoint

	req, err := http.NewRequestWithContext(ctx, config.Method, url, config.Body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	if c.setHeaders != nil {
		c.setHeaders(req)
	}
	for k, v := range config.Headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if config.Operation != "" {
		metrics.RecordRequestDuration(config.Operation, time.Since(start))
	}
	if err != nil {
		if config.Operation != "" {
			metrics.RecordAPIRequest(config.Operation, "transport_error")
		}
		return nil, fmt.Errorf("making request: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.log.Debug("failed to close response body", "error", closeErr)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if config.Operation != "" {
		metrics.RecordAPIRequest(config.Operation, strconv.Itoa(resp.StatusCode))
	}

	response := &Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}

	if resp.StatusCode >= 400 {
		return response, c.parseAPIError(resp.StatusCode, body, config.Endpoint)
	}

	return response, nil
}

// Get performs a GET request
func (c *Client) Get(ctx context.Context, endpoint string) (*Response, error) {
	return c.Do(ctx, RequestConfig{
		Method:   http.MethodGet,
		Endpoint: endpoint,
	})
}

// Post performs a POST request
func (c *Client) Post(ctx context.Context, endpoint string, body io.Reader) (*Response, error) {
	return c.Do(ctx, RequestConfig{
		Method:   http.MethodPost,
		Endpoint: endpoint,
		Body:     body,
	})
}

// Delete performs a DELETE request
func (c *Client) Delete(ctx context.Context, endpoint string, body io.Reader) (*Response, error) {
	return c.Do(ctx, RequestConfig{
		Method:   http.MethodDelete,
		Endpoint: endpoint,
		Body:     body,
	})
}

// Health probes GET /health. A missing health endpoint (404) is acceptable;
// only transport failures are returned as errors.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.Do(ctx, RequestConfig{Method: http.MethodGet, Endpoint: "/health"})
	if err != nil && resp == nil {
		return fmt.Errorf("health probe failed: %w", err)
	}
	switch {
	case resp.StatusCode == http.StatusOK:
		c.log.Info("MCN API is healthy")
	case resp.StatusCode == http.StatusNotFound:
		c.log.Info("health endpoint not found (acceptable)")
	case resp.StatusCode >= 500:
		c.log.Warn("health check returned server error", "status", resp.StatusCode)
	default:
		c.log.Warn("health check returned unexpected status", "status", resp.StatusCode)
	}
	return nil
}

// CreateResource POSTs the spec's payload to the variant's create endpoint
// and extracts the created resource ID from a 2xx body. An extraction
// failure is returned alongside the response so the caller can report it
// without losing the response.
func (c *Client) CreateResource(ctx context.Context, v resource.Variant, spec *resource.Spec, tags map[string]string) (*Response, string, error) {
	payload, err := v.Payload(spec, tags)
	if err != nil {
		return nil, "", err
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, "", fmt.Errorf("encoding %s payload: %w", v.Type(), err)
	}

	c.log.Info("creating resource",
		"type", v.Type(), "endpoint", v.CreatePath(), "spec", spec.Fingerprint())

	resp, err := c.Do(ctx, RequestConfig{
		Method:    http.MethodPost,
		Endpoint:  v.CreatePath(),
		Body:      bytes.NewReader(encoded),
		Operation: "create_" + string(v.Type()),
	})
	if err != nil || resp == nil {
		return resp, "", err
	}

	id, extractErr := v.ExtractID(resp.Body)
	if extractErr != nil {
		c.log.Warn("created resource but ID extraction failed",
			"type", v.Type(), "status", resp.StatusCode, "error", extractErr.Error())
		return resp, "", extractErr
	}

	c.log.Info("resource created", "type", v.Type(), "id", id)
	return resp, id, nil
}

// deletePayload is the body sent with payload-based DELETE calls. When no
// spec is available (CLI-supplied ID case) provider defaults are used.
func deletePayload(spec *resource.Spec) map[string]interface{} {
	payload := map[string]interface{}{
		"cloudAccountId": 1,
		"cloudProvider":  "aws",
		"cloudRegion":    "us-east-1",
	}
	if spec == nil {
		return payload
	}
	if v, ok := spec.Lookup("cloudAccountId"); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			payload["cloudAccountId"] = n
		}
	}
	if v, ok := spec.Lookup("cloudProvider"); ok && v != "" {
		payload["cloudProvider"] = v
	}
	if v, ok := spec.Lookup("cloudRegion"); ok && v != "" {
		payload["cloudRegion"] = v
	}
	return payload
}

// DeleteResource issues a DELETE for the given resource. Non-2xx responses
// are returned as-is together with the typed error; the caller decides
// pass/fail. Exactly one request is sent; there are no retries.
func (c *Client) DeleteResource(ctx context.Context, t resource.Type, id string, spec *resource.Spec) (*Response, error) {
	provider := "aws"
	if spec != nil {
		if p, ok := spec.Lookup("cloudProvider"); ok && p != "" {
			provider = p
		}
	}
	v, err := resource.VariantFor(provider, t)
	if err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(deletePayload(spec))
	if err != nil {
		return nil, fmt.Errorf("encoding delete payload: %w", err)
	}

	c.log.Info("deleting resource", "type", t, "id", id, "endpoint", v.DeletePath(id))

	return c.Do(ctx, RequestConfig{
		Method:    http.MethodDelete,
		Endpoint:  v.DeletePath(id),
		Body:      bytes.NewReader(encoded),
		Operation: "delete_" + string(t),
	})
}

// parseAPIError parses MCN API error responses
func (c *Client) parseAPIError(statusCode int, body []byte, endpoint string) error {
	apiErr := &APIError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
	}

	var errorResp struct {
		Code        string `json:"code"`
		Description string `json:"description"`
		Message     string `json:"message"`
	}

	if err := json.Unmarshal(body, &errorResp); err == nil {
		apiErr.Code = errorResp.Code
		apiErr.Description = errorResp.Description
		apiErr.Message = errorResp.Message
	}
	if apiErr.Message == "" {
		apiErr.Message = string(body)
	}

	return apiErr
}
