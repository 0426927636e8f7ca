// Package feed turns scraped post pages into an RSS 2.0 document.
package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/samvad-hq/rssfeed/internal/domain"
	"github.com/samvad-hq/rssfeed/internal/logger"
	"github.com/samvad-hq/rssfeed/internal/metrics"
	"github.com/samvad-hq/rssfeed/pkg/sources"
	"golang.org/x/sync/errgroup"
)

// PageScraper extracts metadata for a single post URL.
type PageScraper interface {
	Scrape(ctx context.Context, url string, headers map[string]string) (domain.PageMetadata, error)
}

// Assembler scrapes every post of a source concurrently and builds the feed document.
type Assembler struct {
	scraper PageScraper
	metrics *metrics.Metrics
	log     logger.Logger
}

// NewAssembler wires an assembler. m may be nil.
func NewAssembler(scraper PageScraper, m *metrics.Metrics, log logger.Logger) *Assembler {
	return &Assembler{scraper: scraper, metrics: m, log: logger.Ensure(log)}
}

// Assemble scrapes all urls at once and returns the items in urls order. The
// first failing scrape fails the whole document and cancels the others; no
// partial feed is ever returned.
func (a *Assembler) Assemble(ctx context.Context, src sources.Source, urls []string) (domain.FeedDocument, error) {
	if a == nil || a.scraper == nil {
		return domain.FeedDocument{}, fmt.Errorf("feed assembler is not initialized")
	}

	headers := sources.Headers(src)
	items := make([]domain.PageMetadata, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	for i, u := range urls {
		g.Go(func() error {
			start := time.Now()
			meta, err := a.scraper.Scrape(gctx, u, headers)
			a.metrics.ObserveScrape(start, err)
			if err != nil {
				return fmt.Errorf("scrape %s: %w", u, err)
			}
			items[i] = meta
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		a.log.WarnObj("feed assembly aborted", "feed_error", map[string]any{
			"source_id": src.ID,
			"posts":     len(urls),
			"error":     err.Error(),
		})
		return domain.FeedDocument{}, err
	}

	return domain.FeedDocument{Channel: src.Channel, Items: items}, nil
}
