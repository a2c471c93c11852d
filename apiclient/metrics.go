package apiclient

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	refreshSuccess = "success"
	refreshFailure = "failure"
	refreshNoToken = "no_token"

	statusTransportError = "transport_error"
)

// Metrics holds the Prometheus metrics of the request pipeline.
// A nil *Metrics records nothing.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RefreshTotal    *prometheus.CounterVec
	RefreshWaiters  prometheus.Gauge
	ForcedLogouts   prometheus.Counter
}

// NewMetrics creates and registers all metrics with the given registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		RequestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "admin_console",
				Name:      "api_requests_total",
				Help:      "Total number of backend requests dispatched",
			},
			[]string{"method", "status"}, // status=200/401/.../transport_error
		),
		RequestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "admin_console",
				Name:      "api_request_duration_seconds",
				Help:      "Backend request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		RefreshTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "admin_console",
				Name:      "token_refreshes_total",
				Help:      "Token refresh flights by outcome",
			},
			[]string{"result"}, // result=success/failure/no_token
		),
		RefreshWaiters: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Namespace: "admin_console",
				Name:      "token_refresh_waiters",
				Help:      "Requests currently parked on the in-flight token refresh",
			},
		),
		ForcedLogouts: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Namespace: "admin_console",
				Name:      "forced_logouts_total",
				Help:      "Sessions cleared by the request pipeline",
			},
		),
	}
}

func (m *Metrics) observeRequest(method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	label := statusTransportError
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.RequestsTotal.WithLabelValues(method, label).Inc()
	m.RequestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

func (m *Metrics) refresh(result string) {
	if m == nil {
		return
	}
	m.RefreshTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) setWaiters(n int64) {
	if m == nil {
		return
	}
	m.RefreshWaiters.Set(float64(n))
}

func (m *Metrics) forcedLogout() {
	if m == nil {
		return
	}
	m.ForcedLogouts.Inc()
}
