package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medsage_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "medsage_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	medAPICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medsage_medapi_calls_total",
			Help: "Calls to the external prediction/interaction API",
		},
		[]string{"operation", "outcome"},
	)

	medAPICallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "medsage_medapi_call_duration_seconds",
			Help:    "External prediction/interaction API latency in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"operation"},
	)

	wizardTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medsage_wizard_transitions_total",
			Help: "Wizard step transitions",
		},
		[]string{"kind"},
	)

	interactionChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medsage_interaction_checks_total",
			Help: "Drug interaction checks by resolver mode",
		},
		[]string{"mode", "outcome"},
	)

	profileOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medsage_profile_operations_total",
			Help: "Profile load/save/setup operations by resulting state",
		},
		[]string{"operation", "state"},
	)
)

// RecordHTTPRequest records an HTTP request metric.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordMedAPICall records one outbound call; outcome is "ok" or an error class.
func RecordMedAPICall(operation, outcome string, duration time.Duration) {
	medAPICallsTotal.WithLabelValues(operation, outcome).Inc()
	medAPICallDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func RecordWizardTransition(kind string) {
	wizardTransitions.WithLabelValues(kind).Inc()
}

func RecordInteractionCheck(mode, outcome string) {
	interactionChecks.WithLabelValues(mode, outcome).Inc()
}

func RecordProfileOperation(operation, state string) {
	profileOperations.WithLabelValues(operation, state).Inc()
}

// Handler returns the Prometheus metrics handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
