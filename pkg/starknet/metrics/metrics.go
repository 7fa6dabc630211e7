package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	SetConfigTotalMetric      = "starknet_ocr2_set_config_total"
	OffchainConfigFeltsMetric = "starknet_ocr2_offchain_config_felts"
)

var (
	setConfigLabelNames = []string{
		"contract",
		// one of Outcomes
		"outcome",
	}

	offchainConfigLabelNames = []string{
		"contract",
	}
)

var (
	counters map[string]*prometheus.CounterVec
	gauges   map[string]*prometheus.GaugeVec
)

func init() {
	counters = map[string]*prometheus.CounterVec{}
	gauges = map[string]*prometheus.GaugeVec{}

	counters[SetConfigTotalMetric] = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: SetConfigTotalMetric,
			Help: "set_config invocations by final outcome",
		},
		setConfigLabelNames,
	)

	// size of the last submitted offchain config, the dominant part of the tx size
	gauges[OffchainConfigFeltsMetric] = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: OffchainConfigFeltsMetric,
			Help: "number of felts in the last encoded offchain config",
		},
		offchainConfigLabelNames,
	)
}
