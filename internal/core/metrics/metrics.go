package metrics

import "github.com/prometheus/client_golang/prometheus"

// Prometheus metrics for the fulfillment pipeline.
var (
	OrdersCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Total number of orders created through checkout",
		},
	)

	PaymentsDeclinedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "payments_declined_total",
			Help: "Total number of checkout attempts declined by the payment gateway",
		},
	)

	TransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shipment_transitions_total",
			Help: "Total number of applied shipment status transitions",
		},
		[]string{"status"},
	)

	InvalidTransitionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "shipment_invalid_transitions_total",
			Help: "Total number of rejected shipment status transitions",
		},
	)

	LabelGeneratorFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "label_generator_failures_total",
			Help: "Total number of failed or timed out label generator calls",
		},
	)

	LabelGeneratorDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "label_generator_duration_seconds",
			Help:    "Duration of label generator calls",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// Register registers all Prometheus metrics.
func Register() {
	prometheus.MustRegister(OrdersCreatedTotal)
	prometheus.MustRegister(PaymentsDeclinedTotal)
	prometheus.MustRegister(TransitionsTotal)
	prometheus.MustRegister(InvalidTransitionsTotal)
	prometheus.MustRegister(LabelGeneratorFailuresTotal)
	prometheus.MustRegister(LabelGeneratorDuration)
}
