package httpclient

import "context"

// Response is the part of an HTTP response callers look at.
type Response interface {
	Body() []byte
	StatusCode() int
}

// Client issues the GETs for sitemaps and post pages.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
}

// Sender issues a request with a JSON-encoded body.
type Sender interface {
	Send(ctx context.Context, method, url string, headers map[string]string, body any) (Response, error)
}
