package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rental_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rental_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	jobRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rental_job_runs_total",
		Help: "Scheduled job runs per tenant by job and result",
	}, []string{"job", "result"})

	jobEntityErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rental_job_entity_errors_total",
		Help: "Per-entity failures collected by batch jobs",
	}, []string{"job"})

	paymentsGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rental_payments_generated_total",
		Help: "Pending payments created by the generator",
	})

	leasesRenewed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rental_leases_renewed_total",
		Help: "Leases extended by the renewal engine",
	})

	auditWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rental_audit_write_failures_total",
		Help: "Audit records that could not be persisted",
	})

	notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rental_notifications_total",
		Help: "Notification dispatches by result",
	}, []string{"result"})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveJobRun records the outcome of one job run for one tenant.
func ObserveJobRun(job, result string) {
	jobRuns.WithLabelValues(job, result).Inc()
}

func ObserveJobEntityErrors(job string, count int) {
	if count <= 0 {
		return
	}
	jobEntityErrors.WithLabelValues(job).Add(float64(count))
}

func AddPaymentsGenerated(count int) {
	if count <= 0 {
		return
	}
	paymentsGenerated.Add(float64(count))
}

func AddLeasesRenewed(count int) {
	if count <= 0 {
		return
	}
	leasesRenewed.Add(float64(count))
}

func IncAuditWriteFailure() {
	auditWriteFailures.Inc()
}

func ObserveNotification(result string) {
	notifications.WithLabelValues(result).Inc()
}
