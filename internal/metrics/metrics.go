// Package metrics exposes Prometheus collectors for the HTTP surface and
// the ingestion/retrieval pipeline.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "http_requests_total",
	Help: "Total number of requests labelled by path and status",
}, []string{"path", "status"})

var httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "http_request_duration_seconds",
	Help:    "Time spent serving HTTP requests.",
	Buckets: []float64{.01, .05, .1, .5, 1, 2, 5, 10, 30},
}, []string{"path"})

var documentsIngestedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "documents_ingested_total",
	Help: "Number of contracts successfully ingested",
})

var chunksIngestedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "chunks_ingested_total",
	Help: "Number of chunks stored across all ingested contracts",
})

var questionsAskedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "questions_asked_total",
	Help: "Number of questions answered over the contract corpus",
})

var dependencyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "dependency_latency_seconds",
	Help:    "Latency of external service calls.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10},
}, []string{"service"})

var lifecycleSweepsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "lifecycle_sweeps_total",
	Help: "Documents moved by the status sweeper, labelled by target status",
}, []string{"status"})

// Handler returns the /metrics endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordRequest counts one served HTTP request.
func RecordRequest(path string, status int, elapsed time.Duration) {
	httpRequestsTotal.WithLabelValues(path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(path).Observe(elapsed.Seconds())
}

// RecordIngestion counts one ingested document and its chunks.
func RecordIngestion(chunks int) {
	documentsIngestedTotal.Inc()
	chunksIngestedTotal.Add(float64(chunks))
}

// RecordQuestion counts one answered question.
func RecordQuestion() {
	questionsAskedTotal.Inc()
}

// RecordDependencyLatency observes one external call.
func RecordDependencyLatency(service string, elapsed time.Duration) {
	dependencyLatency.WithLabelValues(service).Observe(elapsed.Seconds())
}

// RecordLifecycleSweep counts documents moved to a new status by the sweeper.
func RecordLifecycleSweep(status string, count int64) {
	lifecycleSweepsTotal.WithLabelValues(status).Add(float64(count))
}
