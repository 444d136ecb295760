package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the HTTP and business collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	ordersCreated prometheus.Counter
	paymentsSaved *prometheus.CounterVec
	alertsCreated *prometheus.CounterVec
}

// New registers the collectors on reg under the given namespace.
func New(reg prometheus.Registerer, namespace string) *Metrics {
	if reg == nil {
		return nil
	}
	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		ordersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Orders created through the order workflow.",
		}),
		paymentsSaved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_updated_total",
			Help:      "Payment updates by resulting status.",
		}, []string{"status"}),
		alertsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_alerts_created_total",
			Help:      "Stock alerts opened by the rule engine.",
		}, []string{"type"}),
	}
	reg.MustRegister(m.httpRequests, m.httpDuration, m.ordersCreated, m.paymentsSaved, m.alertsCreated)
	return m
}

func (m *Metrics) ObserveRequest(method, path, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	if path == "" {
		path = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, path, status).Inc()
	m.httpDuration.WithLabelValues(method, path, status).Observe(elapsed.Seconds())
}

func (m *Metrics) IncOrderCreated() {
	if m == nil {
		return
	}
	m.ordersCreated.Inc()
}

func (m *Metrics) IncPaymentUpdated(status string) {
	if m == nil {
		return
	}
	m.paymentsSaved.WithLabelValues(status).Inc()
}

func (m *Metrics) IncAlertCreated(alertType string) {
	if m == nil {
		return
	}
	m.alertsCreated.WithLabelValues(alertType).Inc()
}
