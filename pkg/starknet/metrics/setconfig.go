package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcomes are the final protocol states recorded by the set_config counter.
var Outcomes = []string{"verified", "rejected", "verification_failed", "failed"}

type SetConfig interface {
	IncOutcome(contract, outcome string)
	SetOffchainConfigFelts(contract string, n int)
	Cleanup(contract string)
}

var _ SetConfig = (*setConfigMetrics)(nil)

type setConfigMetrics struct {
	total *prometheus.CounterVec
	felts *prometheus.GaugeVec
}

func NewSetConfig() *setConfigMetrics {
	return &setConfigMetrics{
		total: counters[SetConfigTotalMetric],
		felts: gauges[OffchainConfigFeltsMetric],
	}
}

func (m *setConfigMetrics) IncOutcome(contract, outcome string) {
	m.total.With(prometheus.Labels{"contract": contract, "outcome": outcome}).Inc()
}

func (m *setConfigMetrics) SetOffchainConfigFelts(contract string, n int) {
	m.felts.With(prometheus.Labels{"contract": contract}).Set(float64(n))
}

func (m *setConfigMetrics) Cleanup(contract string) {
	for _, outcome := range Outcomes {
		m.total.Delete(prometheus.Labels{"contract": contract, "outcome": outcome})
	}
	m.felts.Delete(prometheus.Labels{"contract": contract})
}
