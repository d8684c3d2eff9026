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

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all harness metrics; cmd/harness can expose it when a
// scrape endpoint is wanted.
var Registry = prometheus.NewRegistry()

var (
	APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcn_harness_api_requests_total",
			Help: "Total MCN API requests by operation and status",
		},
		[]string{"operation", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mcn_harness_request_duration_seconds",
			Help:    "MCN API request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	CleanupTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcn_harness_cleanup_total",
			Help: "Cleanup attempts by resource type and outcome.",
		},
		[]string{"resource_type", "outcome"},
	)

	LeakedResources = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcn_harness_leaked_resources_total",
			Help: "Resources whose cleanup delete failed and were left behind.",
		},
		[]string{"resource_type"},
	)
)

func init() {
	Registry.MustRegister(
		APIRequestsTotal,
		RequestDuration,
		CleanupTotal,
		LeakedResources,
	)
}

// RecordAPIRequest records a single API request outcome
func RecordAPIRequest(operation, status string) {
	APIRequestsTotal.WithLabelValues(operation, status).Inc()
}

// RecordRequestDuration records how long an API request took
func RecordRequestDuration(operation string, d time.Duration) {
	RequestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// RecordCleanup records one cleanup attempt outcome
func RecordCleanup(resourceType, outcome string) {
	CleanupTotal.WithLabelValues(resourceType, outcome).Inc()
}

// RecordLeak records a resource left behind after a failed cleanup delete
func RecordLeak(resourceType string) {
	LeakedResources.WithLabelValues(resourceType).Inc()
}
