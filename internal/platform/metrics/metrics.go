package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	Logins            *prometheus.CounterVec
	MembersSubmitted  prometheus.Counter
	WorkflowDecisions *prometheus.CounterVec
	AuditDropped      prometheus.Counter
	RequestLatency    *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		Logins: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "locality_logins_total",
			Help: "Total login attempts by role and outcome.",
		}, []string{"role", "outcome"}),
		MembersSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "locality_members_submitted_total",
			Help: "Total member records submitted by family heads.",
		}),
		WorkflowDecisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "locality_workflow_decisions_total",
			Help: "Admin workflow decisions by workflow and resulting status.",
		}, []string{"workflow", "status"}),
		AuditDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "locality_audit_events_dropped_total",
			Help: "Audit events dropped because the buffer was full.",
		}),
		RequestLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "locality_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern and status class.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}

// NewForTest creates metrics bound to a private registry so parallel test
// packages don't collide on promauto's default registerer.
func NewForTest() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		Logins: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "locality_logins_total",
			Help: "Total login attempts by role and outcome.",
		}, []string{"role", "outcome"}),
		MembersSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "locality_members_submitted_total",
			Help: "Total member records submitted by family heads.",
		}),
		WorkflowDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "locality_workflow_decisions_total",
			Help: "Admin workflow decisions by workflow and resulting status.",
		}, []string{"workflow", "status"}),
		AuditDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "locality_audit_events_dropped_total",
			Help: "Audit events dropped because the buffer was full.",
		}),
		RequestLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "locality_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern and status class.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}
