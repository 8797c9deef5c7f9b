// Package metrics holds the Prometheus collectors exported by the console.
// They register with the default registry on import and are served by the
// dashboard on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "credibuy_console"

// Refresh results.
const (
	RefreshSuccess      = "success"
	RefreshNoToken      = "no_refresh_token"
	RefreshRejected     = "rejected"
	RefreshStoreFailure = "store_error"
)

// Transport outcomes.
const (
	OutcomeOK           = "ok"
	OutcomeUnauthorized = "unauthorized"
	OutcomeError        = "error"
)

// TokenRefreshTotal counts refresh exchanges actually performed, not coalesced callers.
// Label:
//   - result: success, no_refresh_token, rejected or store_error
var TokenRefreshTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_refresh_total",
		Help:      "Total number of access token refresh exchanges, by result.",
	},
	[]string{"result"},
)

// TransportRequestsTotal counts requests leaving the authenticated transport.
// Label:
//   - outcome: ok (any non-401 response), unauthorized or error (network failure)
var TransportRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transport_requests_total",
		Help:      "Total number of API requests sent by the authenticated transport, by outcome.",
	},
	[]string{"outcome"},
)

// TransportRetriesTotal counts requests re-issued after a successful refresh.
var TransportRetriesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transport_retries_total",
		Help:      "Total number of API requests retried after a 401.",
	},
)

// TransportRequestDuration measures round trips including any refresh and retry.
var TransportRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "transport_request_duration_seconds",
		Help:      "Duration of API round trips through the authenticated transport.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method"},
)
