package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics groups the collectors recorded by the order engine.
type OrderMetrics struct {
	// OrdersCreated counts committed orders by currency and payment method.
	OrdersCreated *prometheus.CounterVec
	// OrderFailures counts rejected order creations by reason.
	OrderFailures *prometheus.CounterVec
	// StatusTransitions counts applied status changes by field and target state.
	StatusTransitions *prometheus.CounterVec
	// OrderTotal observes order totals in major currency units.
	OrderTotal *prometheus.HistogramVec
}

// NewOrderMetrics creates the collectors and registers them with reg.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	m := &OrderMetrics{
		OrdersCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orders_created_total",
				Help: "Total number of created orders",
			},
			[]string{"currency", "payment_method"},
		),
		OrderFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "order_create_failures_total",
				Help: "Total number of rejected order creations",
			},
			[]string{"reason"},
		),
		StatusTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "order_status_transitions_total",
				Help: "Total number of order status and payment status changes",
			},
			[]string{"field", "to", "forced"},
		),
		OrderTotal: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "order_total_amount",
				Help:    "Order totals in major currency units",
				Buckets: []float64{10, 25, 50, 100, 250, 500, 1000},
			},
			[]string{"currency"},
		),
	}

	reg.MustRegister(m.OrdersCreated, m.OrderFailures, m.StatusTransitions, m.OrderTotal)
	return m
}
