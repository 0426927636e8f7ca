package feed

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/samvad-hq/rssfeed/internal/domain"
	"github.com/samvad-hq/rssfeed/internal/metrics"
	"github.com/samvad-hq/rssfeed/pkg/httpclient"
	"github.com/samvad-hq/rssfeed/pkg/sources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// orderedScraper lets "slow" finish only after every other URL has completed.
type orderedScraper struct {
	slow   string
	others sync.WaitGroup

	mu        sync.Mutex
	completed []string
	errs      map[string]error
}

func (s *orderedScraper) Scrape(ctx context.Context, url string, _ map[string]string) (domain.PageMetadata, error) {
	if url == s.slow {
		s.others.Wait()
	} else {
		defer s.others.Done()
	}

	s.mu.Lock()
	s.completed = append(s.completed, url)
	err := s.errs[url]
	s.mu.Unlock()

	if err != nil {
		return domain.PageMetadata{}, err
	}
	return domain.PageMetadata{Title: domain.StringPtr("title " + url), Link: domain.StringPtr(url)}, nil
}

func TestAssemblePreservesInputOrder(t *testing.T) {
	scraper := &orderedScraper{slow: "B"}
	scraper.others.Add(2)

	doc, err := NewAssembler(scraper, nil, nil).Assemble(context.Background(), sources.Default(), []string{"A", "B", "C"})
	require.NoError(t, err)

	assert.Equal(t, "B", scraper.completed[len(scraper.completed)-1], "B must finish last")
	require.Len(t, doc.Items, 3)
	for i, want := range []string{"A", "B", "C"} {
		assert.Equal(t, want, domain.Deref(doc.Items[i].Link))
	}
	assert.Equal(t, sources.Default().Channel, doc.Channel)
}

type failingScraper struct {
	failOn string
	calls  sync.Map
}

func (s *failingScraper) Scrape(ctx context.Context, url string, _ map[string]string) (domain.PageMetadata, error) {
	s.calls.Store(url, true)
	if url == s.failOn {
		return domain.PageMetadata{}, &httpclient.NetworkError{URL: url, Err: errors.New("connection reset")}
	}
	select {
	case <-ctx.Done():
		return domain.PageMetadata{}, ctx.Err()
	case <-time.After(10 * time.Millisecond):
	}
	return domain.PageMetadata{Link: domain.StringPtr(url)}, nil
}

func TestAssembleFailsWholeFeedOnOneFailure(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	scraper := &failingScraper{failOn: "B"}

	doc, err := NewAssembler(scraper, m, nil).Assemble(context.Background(), sources.Default(), []string{"A", "B", "C"})
	require.Error(t, err)
	assert.True(t, httpclient.IsNetworkError(err))
	assert.Contains(t, err.Error(), "scrape B")
	assert.Empty(t, doc.Items)
	assert.GreaterOrEqual(t, testutil.ToFloat64(m.PageScrapesTotal.WithLabelValues(metrics.OutcomeError)), 1.0)
}

func TestAssembleEmptyURLList(t *testing.T) {
	doc, err := NewAssembler(&failingScraper{}, nil, nil).Assemble(context.Background(), sources.Default(), nil)
	require.NoError(t, err)
	assert.Empty(t, doc.Items)
	assert.Equal(t, "프롤로그", doc.Channel.Title)
}

type headerRecorder struct {
	mu      sync.Mutex
	headers []map[string]string
}

func (h *headerRecorder) Scrape(_ context.Context, _ string, headers map[string]string) (domain.PageMetadata, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.headers = append(h.headers, headers)
	return domain.PageMetadata{}, nil
}

func TestAssemblePassesSourceHeaders(t *testing.T) {
	src := sources.Default()
	src.Config = map[string]any{sources.ConfigAcceptLanguageKey: "ko-KR"}
	rec := &headerRecorder{}

	_, err := NewAssembler(rec, nil, nil).Assemble(context.Background(), src, []string{"A", "B"})
	require.NoError(t, err)
	require.Len(t, rec.headers, 2)
	for _, h := range rec.headers {
		assert.Equal(t, "ko-KR", h["Accept-Language"])
	}
}
