package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/samvad-hq/rssfeed/internal/domain"
	"github.com/samvad-hq/rssfeed/internal/feed"
	"github.com/samvad-hq/rssfeed/internal/logger"
	"github.com/samvad-hq/rssfeed/internal/metrics"
	"github.com/samvad-hq/rssfeed/pkg/sources"
)

const announceTimeout = 30 * time.Second

// SitemapReader lists the post URLs of a source.
type SitemapReader interface {
	ReadSource(ctx context.Context, src sources.Source) ([]string, error)
}

// FeedAssembler scrapes post URLs into a feed document.
type FeedAssembler interface {
	Assemble(ctx context.Context, src sources.Source, urls []string) (domain.FeedDocument, error)
}

// ItemAnnouncer pushes new feed items downstream.
type ItemAnnouncer interface {
	Announce(ctx context.Context, src sources.Source, doc domain.FeedDocument) (int, error)
}

// Generator runs one sitemap -> scrape -> RSS pass per call. Nothing is cached
// between calls.
type Generator struct {
	sitemap   SitemapReader
	assembler FeedAssembler
	announcer ItemAnnouncer
	metrics   *metrics.Metrics
	log       logger.Logger

	pending sync.WaitGroup
}

// NewGenerator wires a generator. announcer and m may be nil.
func NewGenerator(reader SitemapReader, assembler FeedAssembler, announcer ItemAnnouncer, m *metrics.Metrics, log logger.Logger) *Generator {
	return &Generator{
		sitemap:   reader,
		assembler: assembler,
		announcer: announcer,
		metrics:   m,
		log:       logger.Ensure(log),
	}
}

// Generate builds the RSS XML for src. Announcing the new items happens in the
// background after the XML is ready and never affects the result.
func (g *Generator) Generate(ctx context.Context, src sources.Source) ([]byte, error) {
	if g == nil || g.sitemap == nil || g.assembler == nil {
		return nil, fmt.Errorf("feed generator is not initialized")
	}

	start := time.Now()
	doc, out, err := g.build(ctx, src)
	g.metrics.ObserveGeneration(src.ID, start, len(doc.Items), err)
	if err != nil {
		g.log.ErrorObj("feed generation failed", "feed_error", map[string]any{
			"source_id":  src.ID,
			"error":      err.Error(),
			"elapsed_ms": time.Since(start).Milliseconds(),
		})
		return nil, err
	}

	g.log.InfoObj("feed generated", "feed_result", map[string]any{
		"source_id":  src.ID,
		"items":      len(doc.Items),
		"bytes":      len(out),
		"elapsed_ms": time.Since(start).Milliseconds(),
	})

	g.announce(ctx, src, doc)
	return out, nil
}

func (g *Generator) build(ctx context.Context, src sources.Source) (domain.FeedDocument, []byte, error) {
	urls, err := g.sitemap.ReadSource(ctx, src)
	if err != nil {
		return domain.FeedDocument{}, nil, fmt.Errorf("read sitemap for %s: %w", src.ID, err)
	}

	doc, err := g.assembler.Assemble(ctx, src, urls)
	if err != nil {
		return domain.FeedDocument{}, nil, fmt.Errorf("assemble feed for %s: %w", src.ID, err)
	}

	out, err := feed.Serialize(doc)
	if err != nil {
		return domain.FeedDocument{}, nil, fmt.Errorf("serialize feed for %s: %w", src.ID, err)
	}
	return doc, out, nil
}

func (g *Generator) announce(ctx context.Context, src sources.Source, doc domain.FeedDocument) {
	if g.announcer == nil || len(doc.Items) == 0 {
		return
	}

	// the request context ends with the response; announcing outlives it
	actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), announceTimeout)
	g.pending.Add(1)
	go func() {
		defer g.pending.Done()
		defer cancel()
		if _, err := g.announcer.Announce(actx, src, doc); err != nil {
			g.log.WarnObj("feed announcement incomplete", "announce_error", map[string]any{
				"source_id": src.ID,
				"error":     err.Error(),
			})
		}
	}()
}

// Wait blocks until background announcements finish.
func (g *Generator) Wait() {
	if g == nil {
		return
	}
	g.pending.Wait()
}
