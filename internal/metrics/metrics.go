package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hamed0406/outboundcheck/internal/domain"
)

const namespace = "outboundcheck"

// Metrics owns its registry so tests can build as many as they like.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	reg           *prometheus.Registry
	probeDuration *prometheus.HistogramVec
	checkRuns     *prometheus.CounterVec
	checkSections *prometheus.GaugeVec
}

func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		probeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "probe_duration_seconds",
			Help:      "Duration of latency probe calls against the controller.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"kind", "outcome"}),
		checkRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "check_runs_total",
			Help:      "Finished diagnostic runs by terminal state.",
		}, []string{"code", "state"}),
		checkSections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "check_sections",
			Help:      "Sections of the latest run by item state.",
		}, []string{"code", "state"}),
	}
	m.reg.MustRegister(
		m.probeDuration,
		m.checkRuns,
		m.checkSections,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) ObserveProbe(kind string, ok bool, d time.Duration) {
	if m == nil {
		return
	}
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	m.probeDuration.WithLabelValues(kind, outcome).Observe(d.Seconds())
}

// ObserveRun records a terminal run result. Loading writes are ignored.
func (m *Metrics) ObserveRun(r domain.CheckRunResult) {
	if m == nil || !r.State.Terminal() {
		return
	}
	m.checkRuns.WithLabelValues(r.Code, string(r.State)).Inc()

	var good, bad int
	for _, it := range r.Items {
		if it.State == domain.ItemSuccess {
			good++
		} else {
			bad++
		}
	}
	m.checkSections.WithLabelValues(r.Code, string(domain.ItemSuccess)).Set(float64(good))
	m.checkSections.WithLabelValues(r.Code, string(domain.ItemError)).Set(float64(bad))
}

func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
