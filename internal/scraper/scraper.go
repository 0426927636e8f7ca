package scraper

import (
	"bytes"
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"github.com/samvad-hq/rssfeed/internal/domain"
	"github.com/samvad-hq/rssfeed/internal/logger"
	"github.com/samvad-hq/rssfeed/internal/rfc822"
	"github.com/samvad-hq/rssfeed/pkg/httpclient"
)

// Scraper fetches post pages and extracts feed item metadata from OG tags.
type Scraper struct {
	client httpclient.Client
	dates  DateExtractor
	log    logger.Logger
}

// NewScraper constructs a scraper. A nil dates falls back to the Framer extractor.
func NewScraper(client httpclient.Client, dates DateExtractor, log logger.Logger) *Scraper {
	if dates == nil {
		dates = NewFramerDateExtractor()
	}
	return &Scraper{client: client, dates: dates, log: logger.Ensure(log)}
}

// Scrape issues one GET for url and extracts its metadata. Only transport and
// status failures are returned; missing page elements become nil fields.
func (s *Scraper) Scrape(ctx context.Context, url string, headers map[string]string) (domain.PageMetadata, error) {
	if s == nil || s.client == nil {
		return domain.PageMetadata{}, fmt.Errorf("scraper is not initialized")
	}

	body, err := httpclient.GetOK(ctx, s.client, url, headers)
	if err != nil {
		return domain.PageMetadata{}, fmt.Errorf("fetch page: %w", err)
	}

	return s.parse(url, body), nil
}

func (s *Scraper) parse(url string, body []byte) domain.PageMetadata {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		s.log.WarnObj("page html parse failed", "page_error", map[string]any{
			"url":   url,
			"error": err.Error(),
		})
		return domain.PageMetadata{}
	}

	meta := domain.PageMetadata{
		Title:       metaContent(doc, `meta[property="og:title"]`),
		Link:        metaContent(doc, `meta[property="og:url"]`),
		Description: metaContent(doc, `meta[property="og:description"]`),
	}

	if raw, ok := s.dates.Extract(doc); ok {
		formatted, err := rfc822.Format(raw)
		if err != nil {
			s.log.WarnObj("page publish date unusable", "page_error", map[string]any{
				"url":   url,
				"raw":   raw,
				"error": err.Error(),
			})
		} else {
			meta.PubDate = &formatted
		}
	}

	return meta
}

// metaContent returns the content attribute of the first node matching sel, or
// nil when there is no such node or it has no content attribute.
func metaContent(doc *goquery.Document, sel string) *string {
	node := doc.Find(sel).First()
	if node.Length() == 0 {
		return nil
	}
	val, ok := node.Attr("content")
	if !ok {
		return nil
	}
	return &val
}
