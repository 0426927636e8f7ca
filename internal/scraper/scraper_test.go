package scraper

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/samvad-hq/rssfeed/internal/domain"
	"github.com/samvad-hq/rssfeed/pkg/httpclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubHTTPResponse implements httpclient.Response.
type stubHTTPResponse struct {
	body       []byte
	statusCode int
}

func (s stubHTTPResponse) Body() []byte    { return s.body }
func (s stubHTTPResponse) StatusCode() int { return s.statusCode }

// stubHTTPClient returns a single response or error.
type stubHTTPClient struct {
	resp    httpclient.Response
	err     error
	headers map[string]string
}

func (s *stubHTTPClient) Get(_ context.Context, _ string, headers map[string]string) (httpclient.Response, error) {
	s.headers = headers
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

const framerHeader = `
<div data-framer-name="HeaderContent">
  <div data-framer-component-type="RichTextContainer"><p class="framer-text"><a class="framer-text">Not the date</a></p></div>
  <div data-framer-component-type="RichTextContainer">
    <p class="framer-text"><a class="framer-text">Author</a></p>
    <p class="framer-text"><a class="framer-text">  2024-03-05  </a></p>
  </div>
</div>`

func page(head, body string) []byte {
	return []byte("<html><head>" + head + "</head><body>" + body + "</body></html>")
}

func scrapeBody(t *testing.T, body []byte) domain.PageMetadata {
	t.Helper()
	client := &stubHTTPClient{resp: stubHTTPResponse{body: body, statusCode: http.StatusOK}}
	meta, err := NewScraper(client, nil, nil).Scrape(context.Background(), "https://p.example/1", nil)
	require.NoError(t, err)
	return meta
}

func TestScrapeExtractsAllFields(t *testing.T) {
	meta := scrapeBody(t, page(`
    <meta property="og:title" content="Title &amp; more">
    <meta property="og:url" content="https://p.example/1">
    <meta property="og:description" content="Desc">`, framerHeader))

	assert.Equal(t, "Title & more", domain.Deref(meta.Title))
	assert.Equal(t, "https://p.example/1", domain.Deref(meta.Link))
	assert.Equal(t, "Desc", domain.Deref(meta.Description))
	assert.Equal(t, "Tue, 05 Mar 2024 00:00:00 GMT", domain.Deref(meta.PubDate))
}

func TestScrapeMissingFieldsAreIndependent(t *testing.T) {
	tags := map[string]string{
		"title":       `<meta property="og:title" content="T">`,
		"link":        `<meta property="og:url" content="L">`,
		"description": `<meta property="og:description" content="D">`,
	}
	fields := []string{"title", "link", "description", "pubDate"}

	// every subset of the four sources, encoded as a bitmask
	for mask := 0; mask < 1<<len(fields); mask++ {
		var head, body strings.Builder
		present := map[string]bool{}
		for i, f := range fields {
			if mask&(1<<i) == 0 {
				continue
			}
			present[f] = true
			if f == "pubDate" {
				body.WriteString(framerHeader)
			} else {
				head.WriteString(tags[f])
			}
		}

		meta := scrapeBody(t, page(head.String(), body.String()))
		assert.Equal(t, present["title"], meta.Title != nil, "mask %b title", mask)
		assert.Equal(t, present["link"], meta.Link != nil, "mask %b link", mask)
		assert.Equal(t, present["description"], meta.Description != nil, "mask %b description", mask)
		assert.Equal(t, present["pubDate"], meta.PubDate != nil, "mask %b pubDate", mask)
	}
}

func TestScrapeMetaWithoutContentIsNil(t *testing.T) {
	meta := scrapeBody(t, page(`<meta property="og:title"><meta property="og:description" content="">`, ""))
	assert.Nil(t, meta.Title)
	require.NotNil(t, meta.Description)
	assert.Equal(t, "", *meta.Description)
}

func TestScrapeInvalidDateYieldsNilPubDate(t *testing.T) {
	body := strings.Replace(framerHeader, "2024-03-05", "someday", 1)
	meta := scrapeBody(t, page(`<meta property="og:title" content="T">`, body))
	assert.Nil(t, meta.PubDate)
	assert.Equal(t, "T", domain.Deref(meta.Title))
}

func TestScrapeUsesInjectedDateExtractor(t *testing.T) {
	dates := DateExtractorFunc(func(doc *goquery.Document) (string, bool) {
		v, ok := doc.Find("time").Attr("datetime")
		return v, ok
	})
	client := &stubHTTPClient{resp: stubHTTPResponse{
		body:       page("", `<time datetime="2023-11-02T08:05:00Z">Nov 2</time>`),
		statusCode: http.StatusOK,
	}}

	meta, err := NewScraper(client, dates, nil).Scrape(context.Background(), "https://p.example/2", map[string]string{"Accept": "text/html"})
	require.NoError(t, err)
	assert.Equal(t, "Thu, 02 Nov 2023 08:05:00 GMT", domain.Deref(meta.PubDate))
	assert.Equal(t, "text/html", client.headers["Accept"])
}

func TestScrapeReturnsNetworkErrors(t *testing.T) {
	client := &stubHTTPClient{err: errors.New("dial tcp: refused")}
	_, err := NewScraper(client, nil, nil).Scrape(context.Background(), "https://p.example/1", nil)
	assert.True(t, httpclient.IsNetworkError(err))

	client = &stubHTTPClient{resp: stubHTTPResponse{body: []byte("nope"), statusCode: http.StatusBadGateway}}
	_, err = NewScraper(client, nil, nil).Scrape(context.Background(), "https://p.example/1", nil)
	assert.True(t, httpclient.IsNetworkError(err))
}

func TestScrapeLargePageKeepsBodyDate(t *testing.T) {
	style := "<style>" + strings.Repeat(".framer-x{color:red}", 1<<17) + "</style>"
	meta := scrapeBody(t, page(`<meta property="og:title" content="T">`+style, framerHeader))
	assert.Equal(t, "T", domain.Deref(meta.Title))
	assert.Equal(t, "Tue, 05 Mar 2024 00:00:00 GMT", domain.Deref(meta.PubDate))
}

func TestSelectorDateExtractorEmptyText(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(page("", strings.Replace(framerHeader, "2024-03-05", "   ", 1)))))
	require.NoError(t, err)
	_, ok := NewFramerDateExtractor().Extract(doc)
	assert.False(t, ok)
}
