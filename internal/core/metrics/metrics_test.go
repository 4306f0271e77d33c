package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrderMetrics_Registers(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewOrderMetrics(reg)

	m.OrdersCreated.WithLabelValues("BYN", "bepaid").Inc()
	m.OrderFailures.WithLabelValues("validation").Add(2)
	m.StatusTransitions.WithLabelValues("status", "shipped", "false").Inc()
	m.OrderTotal.WithLabelValues("BYN").Observe(110)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.OrdersCreated.WithLabelValues("BYN", "bepaid")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.OrderFailures.WithLabelValues("validation")))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 4)
}

func TestNewOrderMetrics_DoubleRegisterPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewOrderMetrics(reg)

	assert.Panics(t, func() { NewOrderMetrics(reg) })
}
