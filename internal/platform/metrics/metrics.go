package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the engine.
type Metrics struct {
	AdmissionsGranted  prometheus.Counter
	AdmissionsRejected *prometheus.CounterVec
	InboundApplied     *prometheus.CounterVec
	InboundDropped     *prometheus.CounterVec
	OutboundSent       prometheus.Counter
	OutboundSkipped    *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		AdmissionsGranted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mintgate_admissions_granted_total",
			Help: "Total number of successful pool admissions on this replica",
		}),
		AdmissionsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mintgate_admissions_rejected_total",
			Help: "Total number of rejected admission attempts by reason",
		}, []string{"reason"}),
		InboundApplied: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mintgate_relay_inbound_applied_total",
			Help: "Total number of applied inbound relay messages by kind",
		}, []string{"kind"}),
		InboundDropped: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mintgate_relay_inbound_dropped_total",
			Help: "Total number of dropped inbound relay messages by reason",
		}, []string{"reason"}),
		OutboundSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mintgate_relay_outbound_sent_total",
			Help: "Total number of peer notifications handed to the relay",
		}),
		OutboundSkipped: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mintgate_relay_outbound_skipped_total",
			Help: "Total number of peer notifications skipped by reason",
		}, []string{"reason"}),
	}
}
