package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveGenerationCountsOutcomes(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveGeneration("prologue", time.Now(), 3, nil)
	m.ObserveGeneration("prologue", time.Now(), 0, errors.New("boom"))
	m.ObserveSkipped("prologue")

	if got := testutil.ToFloat64(m.FeedGenerationsTotal.WithLabelValues("prologue", OutcomeSuccess)); got != 1 {
		t.Fatalf("success count = %v", got)
	}
	if got := testutil.ToFloat64(m.FeedGenerationsTotal.WithLabelValues("prologue", OutcomeError)); got != 1 {
		t.Fatalf("error count = %v", got)
	}
	if got := testutil.ToFloat64(m.FeedGenerationsTotal.WithLabelValues("prologue", OutcomeSkipped)); got != 1 {
		t.Fatalf("skipped count = %v", got)
	}
	if got := testutil.ToFloat64(m.FeedItems.WithLabelValues("prologue")); got != 3 {
		t.Fatalf("feed items gauge = %v, failed run must not reset it", got)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveGeneration("x", time.Now(), 1, nil)
	m.ObserveScrape(time.Now(), nil)
	m.ObserveSkipped("x")
	m.ObserveAnnouncement(nil)
}
