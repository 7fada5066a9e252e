package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics tracks order commit outcomes.
type OrderMetrics struct {
	created    *prometheus.CounterVec
	failed     prometheus.Counter
	retries    prometheus.Counter
	totalValue prometheus.Histogram
}

// NewOrderMetrics registers the order metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	created := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Committed orders, labeled by applied discount path.",
	}, []string{"discount_path"})
	failed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_failed_total",
		Help: "Order creation attempts that returned an error.",
	})
	retries := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "order_commit_retries_total",
		Help: "Transaction retries during order commit.",
	})
	totalValue := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "order_total_amount",
		Help:    "Distribution of committed order totals in currency units.",
		Buckets: prometheus.ExponentialBuckets(500, 3, 10),
	})
	reg.MustRegister(created, failed, retries, totalValue)
	return &OrderMetrics{
		created:    created,
		failed:     failed,
		retries:    retries,
		totalValue: totalValue,
	}
}

// IncCreated records a committed order under its discount path label.
func (m *OrderMetrics) IncCreated(discountPath string) {
	if m == nil || m.created == nil {
		return
	}
	m.created.WithLabelValues(discountPath).Inc()
}

// IncFailed records a failed order creation.
func (m *OrderMetrics) IncFailed() {
	if m == nil || m.failed == nil {
		return
	}
	m.failed.Inc()
}

// IncRetry records one transaction retry.
func (m *OrderMetrics) IncRetry() {
	if m == nil || m.retries == nil {
		return
	}
	m.retries.Inc()
}

// ObserveTotal records the committed order total.
func (m *OrderMetrics) ObserveTotal(total int) {
	if m == nil || m.totalValue == nil {
		return
	}
	m.totalValue.Observe(float64(total))
}
