package publishers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/samvad-hq/rssfeed/internal/domain"
	"github.com/samvad-hq/rssfeed/pkg/httpclient"
)

func newTestHTTPPublisher(t *testing.T, url, method string, headers map[string]string) Publisher {
	t.Helper()
	cfg := PublisherConfig{
		ID:   "hook",
		Type: TypeHTTP,
		HTTP: &HTTPPublisherConfig{URL: url, Method: method, Headers: headers, TimeoutSeconds: 2},
	}.normalized()
	pub, err := newHTTPPublisher(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("newHTTPPublisher: %v", err)
	}
	return pub
}

func TestHTTPPublisherDeliversEventJSON(t *testing.T) {
	var got Event
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if v := r.Header.Get("Authorization"); v != "Bearer t" {
			t.Errorf("Authorization = %q", v)
		}
		if v := r.Header.Get(headerSourceID); v != "prologue" {
			t.Errorf("%s = %q", headerSourceID, v)
		}
		if v := r.Header.Get(headerItemLink); v != "https://prologue.rememberapp.co.kr/42" {
			t.Errorf("%s = %q", headerItemLink, v)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	pub := newTestHTTPPublisher(t, srv.URL, "", map[string]string{"Authorization": "Bearer t"})
	if err := pub.Publish(context.Background(), sampleEvent()); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if got.SourceName != "Prologue" || domain.Deref(got.Item.Title) != "Hello" {
		t.Fatalf("unexpected payload %+v", got)
	}
	if got.GeneratedAt.IsZero() {
		t.Fatalf("generated_at missing")
	}
}

func TestHTTPPublisherErrorOnNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusBadRequest)
	}))
	defer srv.Close()

	pub := newTestHTTPPublisher(t, srv.URL, http.MethodPut, nil)
	err := pub.Publish(context.Background(), Event{SourceID: "prologue"})
	if !httpclient.IsNetworkError(err) {
		t.Fatalf("expected NetworkError on non-2xx response, got %v", err)
	}
}

func TestHTTPPublisherRequiresConfig(t *testing.T) {
	if _, err := newHTTPPublisher(context.Background(), PublisherConfig{ID: "hook", Type: TypeHTTP}, nil); err == nil {
		t.Fatalf("expected error for missing http block")
	}
}
