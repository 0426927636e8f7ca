// Package announce pushes newly seen feed items to downstream publishers.
package announce

import (
	"context"
	"errors"
	"fmt"

	"github.com/samvad-hq/rssfeed/internal/domain"
	"github.com/samvad-hq/rssfeed/internal/logger"
	"github.com/samvad-hq/rssfeed/internal/metrics"
	"github.com/samvad-hq/rssfeed/internal/storage"
	"github.com/samvad-hq/rssfeed/pkg/publishers"
	"github.com/samvad-hq/rssfeed/pkg/sources"
)

// EventPublisher is the slice of *publishers.Fanout the announcer needs.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}

// Announcer publishes each item link at most once per store TTL.
type Announcer struct {
	pub     EventPublisher
	store   storage.Store
	metrics *metrics.Metrics
	log     logger.Logger
}

// New builds an Announcer. A nil store announces every item on every call.
func New(pub EventPublisher, store storage.Store, m *metrics.Metrics, log logger.Logger) *Announcer {
	if store == nil {
		store, _ = storage.NewStore("none", "", storage.Options{})
	}
	return &Announcer{pub: pub, store: store, metrics: m, log: logger.Ensure(log)}
}

// Announce publishes the items of doc not announced before. Items without a
// link are skipped since there is nothing stable to key them on. Each item is
// claimed right before its publish, so items left over when ctx ends stay
// unclaimed for the next generation. The returned count is the number of
// items delivered to at least one publisher.
func (a *Announcer) Announce(ctx context.Context, src sources.Source, doc domain.FeedDocument) (int, error) {
	if a == nil || a.pub == nil {
		return 0, nil
	}

	var errs []error
	announced := 0
	for _, item := range doc.Items {
		if item.Link == nil || *item.Link == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		key := itemKey(src, item)
		if !a.claim(src, key, *item.Link) {
			continue
		}

		evt := publishers.NewEvent(src.ID, src.Name, item)
		delivered, err := a.pub.Publish(ctx, evt)
		a.metrics.ObserveAnnouncement(err)
		if err != nil {
			errs = append(errs, fmt.Errorf("announce %s: %w", *item.Link, err))
		}
		if delivered == 0 {
			// nobody got it, so let the next generation try again
			if relErr := a.store.Release(key); relErr != nil {
				a.log.WarnObj("announcement release failed", "announce_release_error", map[string]any{
					"source_id": src.ID,
					"link":      *item.Link,
					"error":     relErr.Error(),
				})
			}
			continue
		}
		announced++
	}

	a.log.InfoObj("feed items announced", "announce_result", map[string]any{
		"source_id": src.ID,
		"items":     len(doc.Items),
		"announced": announced,
	})
	return announced, errors.Join(errs...)
}

// claim reports whether key is new. A store failure counts as new.
func (a *Announcer) claim(src sources.Source, key, link string) bool {
	fresh, err := a.store.Claim(key)
	if err != nil {
		a.log.WarnObj("announcement claim failed", "announce_claim_error", map[string]any{
			"source_id": src.ID,
			"link":      link,
			"error":     err.Error(),
		})
		return true
	}
	return fresh
}

func itemKey(src sources.Source, item domain.PageMetadata) string {
	return src.ID + "|" + domain.Deref(item.Link)
}
