package httpinterface

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sentry-network/sentry-wallet/internal/core/domain"
)

const (
	namespace = "sentry"
	resultOK  = "ok"
)

type metrics struct {
	sessionTransitions *prometheus.CounterVec
	transactions       *prometheus.CounterVec
	nomineeOperations  *prometheus.CounterVec
	confirmation       prometheus.Histogram
}

func newMetrics(registerer prometheus.Registerer) *metrics {
	m := &metrics{
		sessionTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_transitions_total",
			Help:      "Wallet session lifecycle operations by result.",
		}, []string{"op", "result"}),
		transactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_total",
			Help:      "Value transfers and contract calls by result.",
		}, []string{"kind", "result"}),
		nomineeOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "nominee_operations_total",
			Help:      "Nominee reads and writes by result.",
		}, []string{"op", "result"}),
		confirmation: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "confirmation_seconds",
			Help:      "Time from submission to confirmation of transactions.",
			Buckets:   []float64{1, 2, 5, 10, 20, 30, 60, 90, 120, 180},
		}),
	}
	registerer.MustRegister(
		m.sessionTransitions, m.transactions, m.nomineeOperations, m.confirmation,
	)
	return m
}

func (m *metrics) sessionTransition(op string, err error) {
	m.sessionTransitions.WithLabelValues(op, resultLabel(err)).Inc()
}

func (m *metrics) transaction(kind domain.TxKind, start time.Time, err error) {
	m.transactions.WithLabelValues(string(kind), resultLabel(err)).Inc()
	if err == nil {
		m.confirmation.Observe(time.Since(start).Seconds())
	}
}

func (m *metrics) nomineeOperation(op string, err error) {
	m.nomineeOperations.WithLabelValues(op, resultLabel(err)).Inc()
}

func resultLabel(err error) string {
	if err == nil {
		return resultOK
	}
	var domainErr *domain.Error
	if errors.As(err, &domainErr) {
		return domainErr.Kind.String()
	}
	return domain.KindInternal.String()
}
