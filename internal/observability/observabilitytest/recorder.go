// Package observabilitytest provides an in-memory Observability for tests.
package observabilitytest

import (
	"sort"
	"strings"
	"sync"

	"github.com/Zhima-Mochi/minishop-pos/internal/observability"
)

// Entry is one captured log line with the fields accumulated through With.
type Entry struct {
	Level  string
	Msg    string
	Fields map[string]any
}

// Recorder captures logs and metric updates. Spans go to the no-op tracer.
type Recorder struct {
	mu         sync.Mutex
	entries    []Entry
	counters   map[string]float64
	histograms map[string][]float64
	gauges     map[string]float64
}

func New() *Recorder {
	return &Recorder{
		counters:   make(map[string]float64),
		histograms: make(map[string][]float64),
		gauges:     make(map[string]float64),
	}
}

func (r *Recorder) Tracer() observability.Tracer { return observability.NopTracer() }
func (r *Recorder) Logger() observability.Logger { return &logger{r: r} }
func (r *Recorder) Metrics() observability.Metrics {
	return metrics{r: r}
}

// Entries returns the captured log lines with the given message.
func (r *Recorder) Entries(msg string) []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Entry
	for _, e := range r.entries {
		if e.Msg == msg {
			out = append(out, e)
		}
	}
	return out
}

// Counter returns the accumulated value for name with exactly these labels.
func (r *Recorder) Counter(name observability.MetricKey, labels ...observability.Label) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counters[seriesKey(name, labels)]
}

// Observations returns the histogram samples for name with exactly these labels.
func (r *Recorder) Observations(name observability.MetricKey, labels ...observability.Label) []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]float64(nil), r.histograms[seriesKey(name, labels)]...)
}

// Gauge returns the last value set for name with exactly these labels.
func (r *Recorder) Gauge(name observability.MetricKey, labels ...observability.Label) (float64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.gauges[seriesKey(name, labels)]
	return v, ok
}

func seriesKey(name observability.MetricKey, labels []observability.Label) string {
	parts := make([]string, 0, len(labels))
	for _, l := range labels {
		parts = append(parts, l.Key+"="+l.Value)
	}
	sort.Strings(parts)
	return string(name) + "{" + strings.Join(parts, ",") + "}"
}

type logger struct {
	r      *Recorder
	fields []observability.Field
}

func (l *logger) With(fields ...observability.Field) observability.Logger {
	merged := append(append([]observability.Field(nil), l.fields...), fields...)
	return &logger{r: l.r, fields: merged}
}

func (l *logger) Debug(msg string, fields ...observability.Field) { l.log("debug", msg, fields) }
func (l *logger) Info(msg string, fields ...observability.Field)  { l.log("info", msg, fields) }
func (l *logger) Warn(msg string, fields ...observability.Field)  { l.log("warn", msg, fields) }
func (l *logger) Error(msg string, fields ...observability.Field) { l.log("error", msg, fields) }

func (l *logger) log(level, msg string, fields []observability.Field) {
	all := make(map[string]any, len(l.fields)+len(fields))
	for _, f := range l.fields {
		all[f.Key] = f.Value
	}
	for _, f := range fields {
		all[f.Key] = f.Value
	}
	l.r.mu.Lock()
	defer l.r.mu.Unlock()
	l.r.entries = append(l.r.entries, Entry{Level: level, Msg: msg, Fields: all})
}

type metrics struct{ r *Recorder }

func (m metrics) Counter(name observability.MetricKey) observability.Counter {
	return counter{r: m.r, name: name}
}

func (m metrics) Histogram(name observability.MetricKey) observability.Histogram {
	return histogram{r: m.r, name: name}
}

func (m metrics) Gauge(name observability.MetricKey) observability.Gauge {
	return gauge{r: m.r, name: name}
}

type counter struct {
	r    *Recorder
	name observability.MetricKey
}

func (c counter) Add(delta float64, labels ...observability.Label) {
	c.r.mu.Lock()
	defer c.r.mu.Unlock()
	c.r.counters[seriesKey(c.name, labels)] += delta
}

type histogram struct {
	r    *Recorder
	name observability.MetricKey
}

func (h histogram) Observe(value float64, labels ...observability.Label) {
	h.r.mu.Lock()
	defer h.r.mu.Unlock()
	key := seriesKey(h.name, labels)
	h.r.histograms[key] = append(h.r.histograms[key], value)
}

type gauge struct {
	r    *Recorder
	name observability.MetricKey
}

func (g gauge) Set(value float64, labels ...observability.Label) {
	g.r.mu.Lock()
	defer g.r.mu.Unlock()
	g.r.gauges[seriesKey(g.name, labels)] = value
}
