package observability

import (
	"net/http"
	"time"

	"github.com/klyr/fragpath/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	resolutionsTotal   *prometheus.CounterVec
	fragments          *prometheus.HistogramVec
	tempFilesTotal     *prometheus.CounterVec
	ratelimitHitsTotal prometheus.Counter
	requestDuration    *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		resolutionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "fragpath_resolutions_total", Help: "Total path resolutions"},
			[]string{"operation", "kind"},
		),
		fragments: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fragpath_fragments",
				Help:    "Fragments per resolution",
				Buckets: prometheus.LinearBuckets(1, 1, 8),
			},
			[]string{"operation"},
		),
		tempFilesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "fragpath_tempfiles_total", Help: "Total temp file creations"},
			[]string{"result"},
		),
		ratelimitHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{Name: "fragpath_ratelimit_hits_total", Help: "Total rate limited requests"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fragpath_request_duration_seconds",
				Help:    "Request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}

	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(
		m.resolutionsTotal,
		m.fragments,
		m.tempFilesTotal,
		m.ratelimitHitsTotal,
		m.requestDuration,
	)

	return m
}

func (m *Metrics) Handler(reg *prometheus.Registry) http.Handler {
	if reg == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func (m *Metrics) Observe(resolution logging.Resolution, elapsed time.Duration) {
	if m == nil {
		return
	}

	op := resolution.Operation
	m.requestDuration.WithLabelValues(op).Observe(elapsed.Seconds())

	if op == logging.OpTempFile {
		result := "ok"
		if resolution.Error != "" {
			result = "error"
		}
		m.tempFilesTotal.WithLabelValues(result).Inc()
		return
	}

	m.resolutionsTotal.WithLabelValues(op, resolution.Kind).Inc()
	m.fragments.WithLabelValues(op).Observe(float64(len(resolution.Fragments)))
}

func (m *Metrics) RateLimited() {
	if m == nil {
		return
	}
	m.ratelimitHitsTotal.Inc()
}
