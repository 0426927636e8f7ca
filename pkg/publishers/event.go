package publishers

import (
	"time"

	"github.com/samvad-hq/rssfeed/internal/domain"
)

// Event announces one feed item that has not been seen downstream before.
type Event struct {
	SourceID    string              `json:"source_id"`
	SourceName  string              `json:"source_name"`
	Item        domain.PageMetadata `json:"item"`
	GeneratedAt time.Time           `json:"generated_at"`
}

// NewEvent constructs an Event for the given source + item.
func NewEvent(sourceID, sourceName string, item domain.PageMetadata) Event {
	return Event{
		SourceID:    sourceID,
		SourceName:  sourceName,
		Item:        item,
		GeneratedAt: time.Now().UTC(),
	}
}

const (
	attrSourceID = "source_id"
	attrItemLink = "item_link"
)

// attributes travel next to the body (message attributes, headers) so
// consumers can route without decoding JSON.
func (e Event) attributes() map[string]string {
	attrs := map[string]string{attrSourceID: e.SourceID}
	if e.Item.Link != nil {
		attrs[attrItemLink] = *e.Item.Link
	}
	return attrs
}
