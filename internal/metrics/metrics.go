// Package metrics holds the Prometheus collectors for the submission workflow.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"docverify/internal/model"
)

const namespace = "docverify"

// Outcome labels.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// Workflow records attempt transitions and the external calls behind them.
// A nil *Workflow is valid and records nothing.
type Workflow struct {
	transitions   *prometheus.CounterVec
	phaseDuration *prometheus.HistogramVec
	storagePuts   *prometheus.CounterVec
	ledgerWrites  *prometheus.CounterVec
	reloads       *prometheus.CounterVec
}

// NewWorkflow creates the collectors and registers them on reg.
func NewWorkflow(reg prometheus.Registerer) (*Workflow, error) {
	w := &Workflow{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attempt_transitions_total",
			Help:      "Submission attempt phase transitions.",
		}, []string{"from", "to"}),
		phaseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "attempt_phase_duration_seconds",
			Help:      "Time spent in a working phase before leaving it.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"phase"}),
		storagePuts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_puts_total",
			Help:      "Content storage calls by outcome.",
		}, []string{"outcome"}),
		ledgerWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_writes_total",
			Help:      "State-changing ledger calls by method and outcome.",
		}, []string{"method", "outcome"}),
		reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "view_reloads_total",
			Help:      "Document view reloads by outcome.",
		}, []string{"outcome"}),
	}
	for _, c := range []prometheus.Collector{w.transitions, w.phaseDuration, w.storagePuts, w.ledgerWrites, w.reloads} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return w, nil
}

func (w *Workflow) Transition(from, to model.Phase) {
	if w == nil {
		return
	}
	w.transitions.WithLabelValues(string(from), string(to)).Inc()
}

func (w *Workflow) ObservePhase(phase model.Phase, d time.Duration) {
	if w == nil {
		return
	}
	w.phaseDuration.WithLabelValues(string(phase)).Observe(d.Seconds())
}

func (w *Workflow) StoragePut(outcome string) {
	if w == nil {
		return
	}
	w.storagePuts.WithLabelValues(outcome).Inc()
}

func (w *Workflow) LedgerWrite(method, outcome string) {
	if w == nil {
		return
	}
	w.ledgerWrites.WithLabelValues(method, outcome).Inc()
}

func (w *Workflow) Reload(outcome string) {
	if w == nil {
		return
	}
	w.reloads.WithLabelValues(outcome).Inc()
}
