// Package metrics exposes Prometheus instruments for feed generation.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// Namespace prefixes every metric name.
	Namespace = "rssfeed"

	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeSkipped = "skipped"
)

// Metrics holds the registered instruments. A nil *Metrics is valid and records nothing.
type Metrics struct {
	FeedGenerationsTotal   *prometheus.CounterVec
	FeedGenerationDuration *prometheus.HistogramVec
	FeedItems              *prometheus.GaugeVec
	PageScrapesTotal       *prometheus.CounterVec
	PageScrapeDuration     prometheus.Histogram
	AnnouncementsTotal     *prometheus.CounterVec
}

// New creates and registers all metrics on reg (the default registerer when nil).
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		FeedGenerationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "feed_generations_total",
			Help:      "Feed generation requests by source and outcome",
		}, []string{"source", "outcome"}),
		FeedGenerationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "feed_generation_duration_seconds",
			Help:      "Wall time of a full sitemap-to-XML generation",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 8),
		}, []string{"source"}),
		FeedItems: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "feed_items",
			Help:      "Items in the most recently generated feed",
		}, []string{"source"}),
		PageScrapesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "page_scrapes_total",
			Help:      "Post page scrapes by outcome",
		}, []string{"outcome"}),
		PageScrapeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "page_scrape_duration_seconds",
			Help:      "Wall time of a single post page scrape",
			Buckets:   prometheus.DefBuckets,
		}),
		AnnouncementsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "announcements_total",
			Help:      "Feed item announcements by outcome",
		}, []string{"outcome"}),
	}
}

// ObserveGeneration records one feed generation.
func (m *Metrics) ObserveGeneration(source string, start time.Time, items int, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	} else {
		m.FeedItems.WithLabelValues(source).Set(float64(items))
	}
	m.FeedGenerationsTotal.WithLabelValues(source, outcome).Inc()
	m.FeedGenerationDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
}

// ObserveSkipped records a request answered without generating.
func (m *Metrics) ObserveSkipped(source string) {
	if m == nil {
		return
	}
	m.FeedGenerationsTotal.WithLabelValues(source, OutcomeSkipped).Inc()
}

// ObserveScrape records one page scrape.
func (m *Metrics) ObserveScrape(start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	m.PageScrapesTotal.WithLabelValues(outcome).Inc()
	m.PageScrapeDuration.Observe(time.Since(start).Seconds())
}

// ObserveAnnouncement records one published (or failed) item announcement.
func (m *Metrics) ObserveAnnouncement(err error) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	m.AnnouncementsTotal.WithLabelValues(outcome).Inc()
}
