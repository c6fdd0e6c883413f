package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Custom histogram buckets optimized for call durations ranging from
	// milliseconds to tens of seconds (document uploads can be slow).
	CustomAPIBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 8, 13, 21, 34, 55}

	// HTTP Metrics
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_server_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	HTTPRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_server_request_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	ActiveRequests = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_server_active_requests",
			Help: "Number of active HTTP requests",
		},
		[]string{"http_request_method"},
	)

	// Remote collaborator metrics
	RemoteCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "remote_client_operation_duration_seconds",
			Help:    "Remote service call duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"service", "operation", "status"},
	)

	RemoteCallTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "remote_client_operation_total",
			Help: "Total number of remote service calls",
		},
		[]string{"service", "operation", "status"},
	)

	// Storage client metrics (S3-compatible object storage)
	StorageRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storage_client_operation_duration_seconds",
			Help:    "Storage client operation duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"operation", "status"},
	)

	StorageRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_client_operation_total",
			Help: "Total number of storage client operations",
		},
		[]string{"operation", "status"},
	)

	// Draft store metrics
	DraftStoreOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onboarding_draft_store_operations_total",
			Help: "Total number of draft store operations",
		},
		[]string{"operation", "status"},
	)

	DraftCorruptEntries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onboarding_draft_corrupt_entries_total",
			Help: "Stored draft sections that failed to decode and were dropped",
		},
		[]string{"section"},
	)

	// Business metrics
	WizardSteps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onboarding_wizard_step_transitions_total",
			Help: "Wizard step transitions by direction and outcome",
		},
		[]string{"direction", "outcome"},
	)

	Submissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onboarding_submissions_total",
			Help: "Total onboarding submission attempts",
		},
		[]string{"role", "status"},
	)

	SubmissionPhaseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "onboarding_submission_phase_duration_seconds",
			Help:    "Duration of each submission phase in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"phase"},
	)

	DocumentUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onboarding_document_uploads_total",
			Help: "Document upload attempts by category and status",
		},
		[]string{"category", "status"},
	)

	ProjectCreations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onboarding_project_creations_total",
			Help: "Remote project creation attempts",
		},
		[]string{"status"},
	)

	FileRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onboarding_file_rejections_total",
			Help: "Files rejected at attach time by the local policy",
		},
		[]string{"slot", "reason"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "onboarding_active_sessions",
			Help: "Number of wizard sessions currently held in memory",
		},
	)

	// Infrastructure metrics
	GoRoutines = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_goroutines",
			Help: "Number of goroutines",
		},
	)

	HeapAlloc = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_mem_heap_alloc_bytes",
			Help: "Heap allocated bytes",
		},
	)
)

// RecordInfrastructureMetrics collects infrastructure metrics periodically
func RecordInfrastructureMetrics() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		for range ticker.C {
			var m runtime.MemStats
			runtime.ReadMemStats(&m)

			GoRoutines.Set(float64(runtime.NumGoroutine()))
			HeapAlloc.Set(float64(m.HeapAlloc))
		}
	}()
}

// MeasureDuration measures the duration of an operation
func MeasureDuration(start time.Time) float64 {
	return time.Since(start).Seconds()
}
