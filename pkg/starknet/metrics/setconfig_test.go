package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetConfig(t *testing.T) {
	m := NewSetConfig()

	total, ok := counters[SetConfigTotalMetric]
	require.True(t, ok)
	felts, ok := gauges[OffchainConfigFeltsMetric]
	require.True(t, ok)

	contract := t.Name()
	assert.NotPanics(t, func() {
		m.IncOutcome(contract, "verified")
		m.IncOutcome(contract, "verified")
		m.IncOutcome(contract, "rejected")
		m.SetOffchainConfigFelts(contract, 42)
	})

	assert.Equal(t, float64(2), testutil.ToFloat64(total.With(prometheus.Labels{"contract": contract, "outcome": "verified"})))
	assert.Equal(t, float64(1), testutil.ToFloat64(total.With(prometheus.Labels{"contract": contract, "outcome": "rejected"})))
	assert.Equal(t, float64(42), testutil.ToFloat64(felts.With(prometheus.Labels{"contract": contract})))

	assert.NotPanics(t, func() { m.Cleanup(contract) })
	assert.Equal(t, 0, testutil.CollectAndCount(felts))
	assert.Equal(t, 0, testutil.CollectAndCount(total))
}
