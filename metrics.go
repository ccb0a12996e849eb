package grove

import "github.com/prometheus/client_golang/prometheus"

// Metrics exports container activity as Prometheus collectors. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	constructed *prometheus.CounterVec
	disposed    *prometheus.CounterVec
	failures    *prometheus.CounterVec
	scopes      prometheus.Gauge
}

// NewMetrics creates the grove collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		constructed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "grove",
			Name:      "instances_constructed_total",
			Help:      "Instances constructed, by service name.",
		}, []string{"service"}),
		disposed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "grove",
			Name:      "instances_disposed_total",
			Help:      "Instances disposed, by service name.",
		}, []string{"service"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "grove",
			Name:      "resolution_failures_total",
			Help:      "Failed resolutions, by error code.",
		}, []string{"code"}),
		scopes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "grove",
			Name:      "scopes_active",
			Help:      "Containers created and not yet disposed.",
		}),
	}

	for _, col := range []prometheus.Collector{m.constructed, m.disposed, m.failures, m.scopes} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) instanceConstructed(id ServiceID) {
	if m == nil {
		return
	}
	m.constructed.WithLabelValues(id.Name()).Inc()
}

func (m *Metrics) instanceDisposed(id ServiceID) {
	if m == nil {
		return
	}
	m.disposed.WithLabelValues(id.Name()).Inc()
}

func (m *Metrics) resolutionFailed(err error) {
	if m == nil {
		return
	}
	code := "UNKNOWN"
	if re, ok := err.(*ResolutionError); ok {
		code = string(re.Code)
	}
	m.failures.WithLabelValues(code).Inc()
}

func (m *Metrics) scopeOpened() {
	if m == nil {
		return
	}
	m.scopes.Inc()
}

func (m *Metrics) scopeClosed() {
	if m == nil {
		return
	}
	m.scopes.Dec()
}
