package observability

import (
	"testing"
	"time"

	"github.com/klyr/fragpath/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
)

func TestMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)

	metrics.Observe(logging.Resolution{Operation: logging.OpResolve, Kind: "absolute", Fragments: []string{"/a", "b"}}, 2*time.Millisecond)
	metrics.Observe(logging.Resolution{Operation: logging.OpTempFile, Error: "boom"}, time.Millisecond)
	metrics.RateLimited()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("expected metrics gather to succeed: %v", err)
	}

	counts := map[string]float64{}
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			if c := metric.GetCounter(); c != nil {
				counts[family.GetName()] += c.GetValue()
			}
		}
	}
	if counts["fragpath_resolutions_total"] != 1 {
		t.Fatalf("expected 1 resolution, got %v", counts["fragpath_resolutions_total"])
	}
	if counts["fragpath_tempfiles_total"] != 1 {
		t.Fatalf("expected 1 temp file, got %v", counts["fragpath_tempfiles_total"])
	}
	if counts["fragpath_ratelimit_hits_total"] != 1 {
		t.Fatalf("expected 1 rate limit hit, got %v", counts["fragpath_ratelimit_hits_total"])
	}
}

func TestNilMetrics(t *testing.T) {
	var metrics *Metrics
	metrics.Observe(logging.Resolution{Operation: logging.OpResolve}, 0)
	metrics.RateLimited()
}
