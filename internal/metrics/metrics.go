package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Filter reasons for signals that did not open an escalation
const (
	FilterReasonMood      = "mood"
	FilterReasonThreshold = "below_threshold"
	FilterReasonConsent   = "no_standing_consent"
)

// Metrics holds the escalation workflow counters
type Metrics struct {
	EscalationsCreated  prometheus.Counter
	SignalsFiltered     *prometheus.CounterVec
	Decisions           *prometheus.CounterVec
	TransitionConflicts *prometheus.CounterVec
	NotificationsSent   *prometheus.CounterVec
	AuditWriteFailures  prometheus.Counter
	RequestLatency      *prometheus.HistogramVec
}

// New creates the metrics and registers them on reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		EscalationsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "carecompanion_escalations_created_total",
			Help: "Total number of escalation requests opened",
		}),
		SignalsFiltered: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "carecompanion_escalation_signals_filtered_total",
			Help: "Risk signals that did not open an escalation, by reason",
		}, []string{"reason"}),
		Decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "carecompanion_escalation_decisions_total",
			Help: "Moderator decisions applied, by decision",
		}, []string{"decision"}),
		TransitionConflicts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "carecompanion_escalation_transition_conflicts_total",
			Help: "Transitions refused because the escalation was no longer pending",
		}, []string{"operation"}),
		NotificationsSent: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "carecompanion_notifications_dispatched_total",
			Help: "Notification dispatch attempts, by channel and status",
		}, []string{"channel", "status"}),
		AuditWriteFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "carecompanion_audit_write_failures_total",
			Help: "Audit entries that could not be persisted",
		}),
		RequestLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "carecompanion_http_request_duration_seconds",
			Help:    "Latency of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

// NewRegistry returns a registry with the Go runtime and process collectors
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}
