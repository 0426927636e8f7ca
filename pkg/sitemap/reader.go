// Package sitemap fetches XML sitemaps and extracts the post URLs they list.
package sitemap

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"

	"github.com/samvad-hq/rssfeed/internal/logger"
	"github.com/samvad-hq/rssfeed/pkg/httpclient"
	"github.com/samvad-hq/rssfeed/pkg/sources"
)

var (
	// ErrMalformedSitemap wraps XML decode failures.
	ErrMalformedSitemap = errors.New("malformed sitemap")
	// ErrMissingLoc is returned when a <url> entry has no <loc> child.
	ErrMissingLoc = errors.New("sitemap url entry has no loc")
)

// urlSet is the root element of a standard sitemap. Namespaces are ignored.
type urlSet struct {
	URLs []urlEntry `xml:"url"`
}

// urlEntry keeps Loc as a pointer so an absent <loc> is distinguishable from an empty one.
type urlEntry struct {
	Loc *string `xml:"loc"`
}

// Matcher decides whether a sitemap location is kept.
type Matcher func(loc string) bool

// Reader downloads sitemaps through the shared HTTP client.
type Reader struct {
	client httpclient.Client
	log    logger.Logger
}

// NewReader builds a Reader. A nil log discards output.
func NewReader(client httpclient.Client, log logger.Logger) *Reader {
	return &Reader{client: client, log: logger.Ensure(log)}
}

// ReadSource reads the sitemap of src and keeps only its post URLs.
func (r *Reader) ReadSource(ctx context.Context, src sources.Source) ([]string, error) {
	return r.Read(ctx, src.SitemapURL, sources.Headers(src), src.MatchesPost)
}

// Read fetches url, extracts every <url><loc> in document order and keeps the
// ones match accepts. Transport failures come back as *httpclient.NetworkError.
func (r *Reader) Read(ctx context.Context, url string, headers map[string]string, match Matcher) ([]string, error) {
	body, err := httpclient.GetOK(ctx, r.client, url, headers)
	if err != nil {
		return nil, fmt.Errorf("fetch sitemap: %w", err)
	}

	locs, err := ParseLocs(body)
	if err != nil {
		return nil, err
	}

	urls := Filter(locs, match)
	r.log.DebugObj("sitemap parsed", "sitemap_meta", map[string]any{
		"url":        url,
		"locs_total": len(locs),
		"posts":      len(urls),
	})
	return urls, nil
}

// ParseLocs decodes a <urlset> body and returns the trimmed <loc> values in
// document order. Any <url> without a <loc> fails the whole parse.
func ParseLocs(data []byte) ([]string, error) {
	var set urlSet
	dec := xml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&set); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSitemap, err)
	}

	locs := make([]string, 0, len(set.URLs))
	for i, entry := range set.URLs {
		if entry.Loc == nil {
			return nil, fmt.Errorf("url[%d]: %w", i, ErrMissingLoc)
		}
		locs = append(locs, strings.TrimSpace(*entry.Loc))
	}
	return locs, nil
}

// Filter keeps the locations match accepts, preserving order. A nil match keeps nothing.
func Filter(locs []string, match Matcher) []string {
	out := make([]string, 0, len(locs))
	if match == nil {
		return out
	}
	for _, loc := range locs {
		if match(loc) {
			out = append(out, loc)
		}
	}
	return out
}
