package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/projecteru2/yafuse/pkg/test/assert"
)

func TestIncr(t *testing.T) {
	metr = nil
	assert.NilErr(t, Incr(MetricBurnCount, map[string]string{"sku": "X"}))

	var m = Setup("node0")
	defer func() { metr = nil }()

	assert.NilErr(t, Incr(MetricSkuMatchCount, map[string]string{"sku": "X"}))
	assert.NilErr(t, Incr(MetricSkuMatchCount, map[string]string{"sku": "X"}))
	IncrError()

	col := m.collectors[MetricSkuMatchCount].(*prometheus.CounterVec)
	assert.Equal(t, float64(2), testutil.ToFloat64(col.With(prometheus.Labels{"sku": "X", "host": "node0"})))
	errs := m.collectors[MetricErrorCount].(*prometheus.CounterVec)
	assert.Equal(t, float64(1), testutil.ToFloat64(errs.With(prometheus.Labels{"host": "node0"})))

	assert.NilErr(t, Store(MetricPlanWords, 12, map[string]string{"sku": "X"}))
	gauge := m.collectors[MetricPlanWords].(*prometheus.GaugeVec)
	assert.Equal(t, float64(12), testutil.ToFloat64(gauge.With(prometheus.Labels{"sku": "X", "host": "node0"})))

	assert.Err(t, Incr("yafuse_nothing", nil))
	assert.Err(t, Store(MetricBurnCount, 1, map[string]string{"sku": "X"}))
	assert.NotNil(t, Handler())
}

func TestRegisterTwice(t *testing.T) {
	var m = New("node0")
	assert.NilErr(t, m.RegisterCounter("yafuse_test_total", "test", nil))
	assert.Err(t, m.RegisterCounter("yafuse_test_total", "test", nil))
}
