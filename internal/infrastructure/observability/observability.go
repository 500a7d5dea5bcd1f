package observability

import (
	"github.com/Zhima-Mochi/minishop-pos/internal/infrastructure/observability/prometrics"
	"github.com/Zhima-Mochi/minishop-pos/internal/observability"
)

type provider struct {
	tracer  observability.Tracer
	logger  observability.Logger
	metrics observability.Metrics
}

type registeredMetrics struct {
	counters   map[observability.MetricKey]observability.Counter
	histograms map[observability.MetricKey]observability.Histogram
	gauges     map[observability.MetricKey]observability.Gauge
}

func (m *registeredMetrics) Counter(name observability.MetricKey) observability.Counter {
	if c, ok := m.counters[name]; ok && c != nil {
		return c
	}
	return observability.NopCounter()
}

func (m *registeredMetrics) Histogram(name observability.MetricKey) observability.Histogram {
	if h, ok := m.histograms[name]; ok && h != nil {
		return h
	}
	return observability.NopHistogram()
}

func (m *registeredMetrics) Gauge(name observability.MetricKey) observability.Gauge {
	if g, ok := m.gauges[name]; ok && g != nil {
		return g
	}
	return observability.NopGauge()
}

// Instruments groups metric instruments by key.
type Instruments struct {
	Counters   map[observability.MetricKey]observability.Counter
	Histograms map[observability.MetricKey]observability.Histogram
	Gauges     map[observability.MetricKey]observability.Gauge
}

// RegisterInstruments creates every instrument the point-of-sale services record.
func RegisterInstruments(r prometrics.Registry) Instruments {
	return Instruments{
		Counters: map[observability.MetricKey]observability.Counter{
			observability.MUsecaseRequests: r.Counter(string(observability.MUsecaseRequests),
				"Total number of use case invocations.", "use_case", "outcome"),
			observability.MTransactions: r.Counter(string(observability.MTransactions),
				"Transactions closed, by kind and outcome.", "kind", "outcome"),
			observability.MSalesRevenue: r.Counter(string(observability.MSalesRevenue),
				"Sum of completed sale totals."),
			observability.MReturnsRefund: r.Counter(string(observability.MReturnsRefund),
				"Sum of completed return refunds."),
			observability.MHTTPRequests: r.Counter(string(observability.MHTTPRequests),
				"Ops endpoint requests.", "method", "route", "status"),
		},
		Histograms: map[observability.MetricKey]observability.Histogram{
			observability.MUsecaseDuration: r.Histogram(string(observability.MUsecaseDuration),
				"Duration of use case execution in seconds.", nil, "use_case"),
			observability.MEventHandleDuration: r.Histogram(string(observability.MEventHandleDuration),
				"Duration of event handler execution in seconds.", nil, "event", "outcome"),
			observability.MHTTPDuration: r.Histogram(string(observability.MHTTPDuration),
				"Ops endpoint latency in seconds.", nil, "method", "route", "status"),
		},
		Gauges: map[observability.MetricKey]observability.Gauge{
			observability.MStockLevel: r.Gauge(string(observability.MStockLevel),
				"Units on hand per product.", "product_id"),
		},
	}
}

// New assembles a Telemetry provider backed by the supplied tracer, logger, and metric instruments.
func New(
	tracer observability.Tracer,
	logger observability.Logger,
	instruments Instruments,
) observability.Observability {
	if tracer == nil {
		tracer = observability.NopTracer()
	}
	if logger == nil {
		logger = observability.NopLogger()
	}

	var metrics observability.Metrics = observability.NopMetrics()
	if len(instruments.Counters) > 0 || len(instruments.Histograms) > 0 || len(instruments.Gauges) > 0 {
		m := &registeredMetrics{
			counters:   make(map[observability.MetricKey]observability.Counter, len(instruments.Counters)),
			histograms: make(map[observability.MetricKey]observability.Histogram, len(instruments.Histograms)),
			gauges:     make(map[observability.MetricKey]observability.Gauge, len(instruments.Gauges)),
		}
		for k, v := range instruments.Counters {
			if v != nil {
				m.counters[k] = v
			}
		}
		for k, v := range instruments.Histograms {
			if v != nil {
				m.histograms[k] = v
			}
		}
		for k, v := range instruments.Gauges {
			if v != nil {
				m.gauges[k] = v
			}
		}
		metrics = m
	}

	return &provider{
		tracer:  tracer,
		logger:  logger,
		metrics: metrics,
	}
}

func (p *provider) Tracer() observability.Tracer {
	return p.tracer
}

func (p *provider) Logger() observability.Logger {
	return p.logger
}

func (p *provider) Metrics() observability.Metrics {
	if p.metrics == nil {
		return observability.NopMetrics()
	}
	return p.metrics
}
