package app

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/samvad-hq/rssfeed/internal/domain"
	"github.com/samvad-hq/rssfeed/internal/feed"
	"github.com/samvad-hq/rssfeed/internal/scraper"
	"github.com/samvad-hq/rssfeed/pkg/httpclient"
	"github.com/samvad-hq/rssfeed/pkg/sitemap"
	"github.com/samvad-hq/rssfeed/pkg/sources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blogServer serves a sitemap listing posts 3, 1, 2 plus a non-post page.
// Posts named in failing answer 500.
func blogServer(t *testing.T, failing ...string) *httptest.Server {
	t.Helper()
	fail := make(map[string]bool, len(failing))
	for _, p := range failing {
		fail[p] = true
	}

	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if path == "/sitemap.xml" {
			w.Header().Set("Content-Type", "application/xml")
			fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>%[1]s/3</loc></url>
  <url><loc>%[1]s/about</loc></url>
  <url><loc>%[1]s/1</loc></url>
  <url><loc>%[1]s/2</loc></url>
</urlset>`, srv.URL)
			return
		}

		id := strings.TrimPrefix(path, "/")
		if fail[id] {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if _, ok := map[string]bool{"1": true, "2": true, "3": true}[id]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprintf(w, `<html><head>
<meta property="og:title" content="Post %[2]s">
<meta property="og:url" content="%[1]s/%[2]s">
<meta property="og:description" content="About post %[2]s">
</head><body>
<div data-framer-name="HeaderContent">
  <div data-framer-component-type="RichTextContainer">
    <p class="framer-text"><a class="framer-text">2024-03-0%[2]s</a></p>
  </div>
</div>
</body></html>`, srv.URL, id)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func blogSource(t *testing.T, baseURL string) sources.Source {
	t.Helper()
	reg, err := sources.NewRegistry(sources.Source{
		ID:             "blog",
		Name:           "Blog",
		SitemapURL:     baseURL + "/sitemap.xml",
		PostURLPattern: "^" + regexp.QuoteMeta(baseURL) + `/\d+$`,
		Channel: domain.Channel{
			Title:       "Blog",
			Link:        baseURL,
			Description: "Posts",
		},
	})
	require.NoError(t, err)
	src, ok := reg.ByID("blog")
	require.True(t, ok)
	return src
}

func realGenerator() *Generator {
	client := httpclient.NewRestyClient(5*time.Second, "")
	assembler := feed.NewAssembler(scraper.NewScraper(client, scraper.NewFramerDateExtractor(), nil), nil, nil)
	return NewGenerator(sitemap.NewReader(client, nil), assembler, nil, nil, nil)
}

func TestGenerateAgainstLiveSiteKeepsSitemapOrder(t *testing.T) {
	srv := blogServer(t)
	src := blogSource(t, srv.URL)

	out, err := realGenerator().Generate(context.Background(), src)
	require.NoError(t, err)

	parsed, err := gofeed.NewParser().ParseString(string(out))
	require.NoError(t, err)
	assert.Equal(t, "Blog", parsed.Title)
	require.Len(t, parsed.Items, 3)

	want := []struct{ id, pubDate string }{
		{"3", "Sun, 03 Mar 2024 00:00:00 GMT"},
		{"1", "Fri, 01 Mar 2024 00:00:00 GMT"},
		{"2", "Sat, 02 Mar 2024 00:00:00 GMT"},
	}
	for i, w := range want {
		item := parsed.Items[i]
		assert.Equal(t, "Post "+w.id, item.Title)
		assert.Equal(t, srv.URL+"/"+w.id, item.Link)
		assert.Equal(t, "About post "+w.id, item.Description)
		assert.Equal(t, w.pubDate, item.Published)
	}
	assert.NotContains(t, string(out), "/about")
}

func TestGenerateAgainstLiveSiteFailsOnOneBadPage(t *testing.T) {
	srv := blogServer(t, "1")
	src := blogSource(t, srv.URL)

	out, err := realGenerator().Generate(context.Background(), src)
	require.Error(t, err)
	assert.Nil(t, out)
	assert.True(t, httpclient.IsNetworkError(err))
}
