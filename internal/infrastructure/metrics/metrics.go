package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// EscrowMetrics holds the ledger's counters and histograms.
type EscrowMetrics struct {
	// Transitions by operation and outcome
	EscrowTransitionsTotal  prometheus.CounterVec
	PaymentTransitionsTotal prometheus.CounterVec

	// Money flow
	EscrowCreatedAmountTotal  prometheus.Counter
	EscrowReleasedAmountTotal prometheus.CounterVec
	EscrowRefundedAmountTotal prometheus.Counter

	// Sweep
	SweepDuration      prometheus.Histogram
	SweepReleasedTotal prometheus.Counter
	SweepSkippedTotal  prometheus.CounterVec
	SweepRunsTotal     prometheus.CounterVec

	// Event delivery
	EventPublishErrorsTotal prometheus.CounterVec
}

// NewEscrowMetrics registers all collectors on reg; pass prometheus.DefaultRegisterer in production.
func NewEscrowMetrics(reg prometheus.Registerer) *EscrowMetrics {
	factory := promauto.With(reg)
	return &EscrowMetrics{
		EscrowTransitionsTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "escrow_transitions_total",
				Help: "Escrow transaction operations by outcome",
			},
			[]string{"operation", "result"},
		),
		PaymentTransitionsTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_transitions_total",
				Help: "Payment transaction operations by outcome",
			},
			[]string{"operation", "result"},
		),
		EscrowCreatedAmountTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "escrow_created_amount_total",
				Help: "Total amount placed in escrow",
			},
		),
		EscrowReleasedAmountTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "escrow_released_amount_total",
				Help: "Total amount released to receivers",
			},
			[]string{"trigger"},
		),
		EscrowRefundedAmountTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "escrow_refunded_amount_total",
				Help: "Total amount refunded to payers",
			},
		),
		SweepDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "escrow_sweep_duration_seconds",
				Help:    "Duration of an auto-release sweep pass",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
			},
		),
		SweepReleasedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "escrow_sweep_released_total",
				Help: "Escrow transactions released by the sweep",
			},
		),
		SweepSkippedTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "escrow_sweep_skipped_total",
				Help: "Eligible escrow transactions the sweep skipped",
			},
			[]string{"reason"},
		),
		SweepRunsTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "escrow_sweep_runs_total",
				Help: "Sweep passes by outcome",
			},
			[]string{"result"},
		),
		EventPublishErrorsTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "escrow_event_publish_errors_total",
				Help: "Events that could not be delivered to the broker",
			},
			[]string{"event_type"},
		),
	}
}

func (m *EscrowMetrics) RecordEscrowTransition(operation, result string) {
	m.EscrowTransitionsTotal.WithLabelValues(operation, result).Inc()
}

func (m *EscrowMetrics) RecordPaymentTransition(operation, result string) {
	m.PaymentTransitionsTotal.WithLabelValues(operation, result).Inc()
}

func (m *EscrowMetrics) RecordEscrowCreated(amount float64) {
	m.EscrowCreatedAmountTotal.Add(amount)
}

func (m *EscrowMetrics) RecordEscrowReleased(trigger string, amount float64) {
	m.EscrowReleasedAmountTotal.WithLabelValues(trigger).Add(amount)
}

func (m *EscrowMetrics) RecordEscrowRefunded(amount float64) {
	m.EscrowRefundedAmountTotal.Add(amount)
}

func (m *EscrowMetrics) RecordSweep(result string, durationSeconds float64, released int) {
	m.SweepRunsTotal.WithLabelValues(result).Inc()
	m.SweepDuration.Observe(durationSeconds)
	m.SweepReleasedTotal.Add(float64(released))
}

func (m *EscrowMetrics) RecordSweepSkipped(reason string) {
	m.SweepSkippedTotal.WithLabelValues(reason).Inc()
}

func (m *EscrowMetrics) RecordPublishError(eventType string) {
	m.EventPublishErrorsTotal.WithLabelValues(eventType).Inc()
}
