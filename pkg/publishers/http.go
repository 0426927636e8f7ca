package publishers

import (
	"context"
	"fmt"
	"maps"
	"time"

	"github.com/samvad-hq/rssfeed/internal/logger"
	"github.com/samvad-hq/rssfeed/pkg/httpclient"
)

const (
	headerSourceID = "X-Feed-Source"
	headerItemLink = "X-Feed-Item-Link"
)

// httpPublisher POSTs (or PUTs, ...) each event as JSON to a webhook.
type httpPublisher struct {
	id      string
	method  string
	url     string
	headers map[string]string
	sender  httpclient.Sender
	log     logger.Logger
}

func newHTTPPublisher(_ context.Context, cfg PublisherConfig, log logger.Logger) (Publisher, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("missing http configuration")
	}
	timeout := time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second
	return &httpPublisher{
		id:      cfg.ID,
		method:  cfg.HTTP.Method,
		url:     cfg.HTTP.URL,
		headers: cfg.HTTP.Headers,
		sender:  httpclient.NewRestyClient(timeout, ""),
		log:     logger.Ensure(log),
	}, nil
}

func (h *httpPublisher) ID() string   { return h.id }
func (h *httpPublisher) Type() string { return TypeHTTP }

func (h *httpPublisher) Publish(ctx context.Context, evt Event) error {
	headers := make(map[string]string, len(h.headers)+2)
	maps.Copy(headers, h.headers)
	attrs := evt.attributes()
	headers[headerSourceID] = attrs[attrSourceID]
	if link, ok := attrs[attrItemLink]; ok {
		headers[headerItemLink] = link
	}

	status, err := httpclient.SendOK(ctx, h.sender, h.method, h.url, headers, evt)
	if err != nil {
		return err
	}
	h.log.DebugObj("http publisher delivered event", "publisher_http_delivery", map[string]any{
		"publisher_id": h.id,
		"status":       status,
	})
	return nil
}
