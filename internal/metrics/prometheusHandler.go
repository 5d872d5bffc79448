package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var HttpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "insight",
	Name:      "http_requests_total",
	Help:      "Total number of requests labelled by path and status",
}, []string{"path", "status"})

var countJobsInQueue = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "insight",
	Name:      "count_jobs_in_queue",
	Help:      "Number of jobs in queue",
})

var dispatcherSignalCount = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "insight",
	Name:      "dispatcher_signal_count",
	Help:      "How often the dispatcher has signaled to start worker",
})

var activeWorkerCount = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "insight",
	Name:      "active_worker_count",
	Help:      "Number of active workers",
})

// HttpStatusRecorder remembers the status code a handler wrote so it can be used as a metric label.
type HttpStatusRecorder struct {
	http.ResponseWriter
	Status int
}

func (r *HttpStatusRecorder) WriteHeader(code int) {
	r.Status = code
	r.ResponseWriter.WriteHeader(code)
}

func IncrementJobsInQueue() {
	countJobsInQueue.Inc()
}

func DecrementJobsInQueue() {
	countJobsInQueue.Dec()
}

func StartDispatcherSignalCount() {
	dispatcherSignalCount.Inc()
}

func IncrementActiveWorkerCount() {
	activeWorkerCount.Inc()
}
func DecrementActiveWorkerCount() {
	activeWorkerCount.Dec()
}

var requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "insight",
	Name:      "process_request_duration_seconds",
	Help:      "Total time spent in ProcessRequest.",
	Buckets:   []float64{.1, .5, 1, 2, 5, 10, 30},
}, []string{"status"})

var dependencyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "insight",
	Name:      "dependency_latency_seconds",
	Help:      "Latency of external service calls.",
	Buckets:   []float64{.05, .1, .25, .5, 1, 2, 5, 10},
}, []string{"service"})

var webEngineFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "insight",
	Name:      "web_engine_failures_total",
	Help:      "Search engine requests that failed or returned non-200",
}, []string{"engine"})

var documentsLoaded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "insight",
	Name:      "documents_loaded_total",
	Help:      "Documents processed by LoadDocuments labelled by outcome",
}, []string{"outcome"})

var questionsAnswered = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "insight",
	Name:      "questions_answered_total",
	Help:      "Questions answered labelled by task type",
}, []string{"task_type"})

func IncrementWebEngineFailures(engine string) {
	webEngineFailures.WithLabelValues(engine).Inc()
}

func IncrementDocumentsLoaded(success bool) {
	outcome := "error"
	if success {
		outcome = "success"
	}
	documentsLoaded.WithLabelValues(outcome).Inc()
}

func IncrementQuestionsAnswered(taskType string) {
	questionsAnswered.WithLabelValues(taskType).Inc()
}

func CaptureExecutionMetrics(label string, timeElapsed time.Duration) {
	dependencyLatency.WithLabelValues(label).Observe(timeElapsed.Seconds())
}

func CaptureJobMetrics(label string, timeElapsed time.Duration) {
	requestDuration.WithLabelValues(label).Observe(timeElapsed.Seconds())
}
