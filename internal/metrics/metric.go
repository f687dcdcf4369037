package metrics

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/projecteru2/yafuse/pkg/utils"
)

var (
	// DefaultLabels .
	DefaultLabels = []string{"host"}

	// MetricErrorCount .
	MetricErrorCount = "yafuse_error_total"
	// MetricSkuMatchCount counts matched SKUs by name.
	MetricSkuMatchCount = "yafuse_sku_match_total"
	// MetricFuseCheckCount counts ad-hoc checks by result.
	MetricFuseCheckCount = "yafuse_fuse_check_total"
	// MetricPlanFailureCount counts plans aborted on a fuse.
	MetricPlanFailureCount = "yafuse_plan_failure_total"
	// MetricBurnCount .
	MetricBurnCount = "yafuse_burn_total"
	// MetricPlanWords is the size of the last write plan per SKU.
	MetricPlanWords = "yafuse_plan_words"

	metr *Metrics
)

// Setup registers every yafuse collector for host. Metrics are dropped until
// Setup is called.
func Setup(host string) *Metrics {
	m := New(host)
	for _, c := range []struct {
		name   string
		desc   string
		labels []string
	}{
		{MetricErrorCount, "yafuse errors", nil},
		{MetricSkuMatchCount, "SKUs matched by the device", []string{"sku"}},
		{MetricFuseCheckCount, "ad-hoc fuse checks", []string{"result"}},
		{MetricPlanFailureCount, "burn plans aborted", []string{"fuse"}},
		{MetricBurnCount, "write plans handed to hardware", []string{"sku"}},
	} {
		m.RegisterCounter(c.name, c.desc, c.labels) //nolint
	}
	m.RegisterGauge(MetricPlanWords, "words of the last write plan", []string{"sku"}) //nolint
	metr = m
	return m
}

// Metrics .
type Metrics struct {
	host       string
	registry   *prometheus.Registry
	collectors map[string]prometheus.Collector
}

// New .
func New(host string) *Metrics {
	return &Metrics{
		host:       host,
		registry:   prometheus.NewRegistry(),
		collectors: map[string]prometheus.Collector{},
	}
}

// RegisterCounter .
func (m *Metrics) RegisterCounter(name, desc string, labels []string) error {
	var col = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: name,
			Help: desc,
		},
		utils.MergeStrings(labels, DefaultLabels),
	)

	if err := m.registry.Register(col); err != nil {
		return errors.Wrap(err, name)
	}
	m.collectors[name] = col

	return nil
}

// RegisterGauge .
func (m *Metrics) RegisterGauge(name, desc string, labels []string) error {
	var col = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: name,
			Help: desc,
		},
		utils.MergeStrings(labels, DefaultLabels),
	)

	if err := m.registry.Register(col); err != nil {
		return errors.Wrap(err, name)
	}
	m.collectors[name] = col

	return nil
}

// Incr .
func (m *Metrics) Incr(name string, labels map[string]string) error {
	var collector, exists = m.collectors[name]
	if !exists {
		return errors.Errorf("collector %s not found", name)
	}

	labels = m.appendLabel(labels, "host", m.host)
	switch col := collector.(type) {
	case *prometheus.GaugeVec:
		col.With(labels).Inc()
	case *prometheus.CounterVec:
		col.With(labels).Inc()
	default:
		return errors.Errorf("collector %s is not counter or gauge", name)
	}

	return nil
}

// Store .
func (m *Metrics) Store(name string, value float64, labels map[string]string) error {
	var collector, exists = m.collectors[name]
	if !exists {
		return errors.Errorf("collector %s not found", name)
	}

	labels = m.appendLabel(labels, "host", m.host)
	switch col := collector.(type) {
	case *prometheus.GaugeVec:
		col.With(labels).Set(value)
	default:
		return errors.Errorf("collector %s is not gauge", name)
	}

	return nil
}

func (m *Metrics) appendLabel(labels map[string]string, key, value string) map[string]string {
	if labels != nil {
		labels[key] = value
	} else {
		labels = map[string]string{key: value}
	}
	return labels
}

// Handler serves the collectors registered by Setup.
func Handler() http.Handler {
	if metr == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(metr.registry, promhttp.HandlerOpts{})
}

// IncrError .
func IncrError() {
	Incr(MetricErrorCount, nil) //nolint
}

// Incr .
func Incr(name string, labels map[string]string) error {
	if metr == nil {
		return nil
	}
	return metr.Incr(name, labels)
}

// Store .
func Store(name string, value float64, labels map[string]string) error {
	if metr == nil {
		return nil
	}
	return metr.Store(name, value, labels)
}
