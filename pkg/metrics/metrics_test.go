package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsExportCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg, "flora")

	m.ObserveRequest("POST", "/api/v1/orders", "201", 120*time.Millisecond)
	m.IncOrderCreated()
	m.IncOrderCreated()
	m.IncAlertCreated("low_stock")
	m.IncPaymentUpdated("completed")

	mfs, err := reg.Gather()
	require.NoError(t, err)

	got, err := counterValue(mfs, "flora_orders_created_total", "", "")
	require.NoError(t, err)
	assert.Equal(t, 2.0, got)

	got, err = counterValue(mfs, "flora_stock_alerts_created_total", "type", "low_stock")
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)

	got, err = counterValue(mfs, "flora_http_requests_total", "path", "/api/v1/orders")
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncOrderCreated()
		m.IncAlertCreated("out_of_stock")
		m.IncPaymentUpdated("failed")
		m.ObserveRequest("GET", "", "404", time.Millisecond)
	})
	assert.Nil(t, New(nil, "flora"))
}

func counterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if label == "" {
				return metric.GetCounter().GetValue(), nil
			}
			for _, lp := range metric.GetLabel() {
				if lp.GetName() == label && lp.GetValue() == value {
					return metric.GetCounter().GetValue(), nil
				}
			}
		}
		return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
	}
	return 0, fmt.Errorf("metric %q not found", name)
}
