package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics 汇总一次运行的计数器。所有方法对 nil 接收者安全, 方便测试中省略。
type Metrics struct {
	registry *prometheus.Registry

	domains      *prometheus.CounterVec
	requests     *prometheus.CounterVec
	retries      prometheus.Counter
	degraded     prometheus.Counter
	bannerChecks *prometheus.CounterVec
	runDuration  prometheus.Gauge
}

// New registers all collectors in a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		domains: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auctionscan_domains_total",
				Help: "Domains scanned, by listing classification.",
			},
			[]string{"class"},
		),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auctionscan_requests_total",
				Help: "HTTP requests to the marketplace, by endpoint and outcome.",
			},
			[]string{"endpoint", "outcome"}, // endpoint: listing/api, outcome: ok/error
		),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auctionscan_retries_total",
			Help: "Attempts beyond the first one for a domain.",
		}),
		degraded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auctionscan_degraded_total",
			Help: "Domains returned degraded after exhausting the retry budget.",
		}),
		bannerChecks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auctionscan_banner_checks_total",
				Help: "Headless browser banner checks, by result.",
			},
			[]string{"result"},
		),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "auctionscan_run_duration_seconds",
			Help: "Wall time of the last run.",
		}),
	}
	m.registry.MustRegister(m.domains, m.requests, m.retries, m.degraded, m.bannerChecks, m.runDuration)
	return m
}

func (m *Metrics) ObserveDomain(class string) {
	if m == nil {
		return
	}
	m.domains.WithLabelValues(class).Inc()
}

func (m *Metrics) ObserveRequest(endpoint string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.requests.WithLabelValues(endpoint, outcome).Inc()
}

func (m *Metrics) ObserveRetry() {
	if m == nil {
		return
	}
	m.retries.Inc()
}

func (m *Metrics) ObserveDegraded() {
	if m == nil {
		return
	}
	m.degraded.Inc()
}

func (m *Metrics) ObserveBannerCheck(active bool) {
	if m == nil {
		return
	}
	result := "inactive"
	if active {
		result = "active"
	}
	m.bannerChecks.WithLabelValues(result).Inc()
}

func (m *Metrics) SetRunDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.runDuration.Set(d.Seconds())
}

// WriteTextfile 以 Prometheus 文本格式写出所有指标 (node_exporter textfile collector 可直接读取)。
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
