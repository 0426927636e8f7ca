package domain

// PageMetadata is what one post page yields. A nil field means the page did not
// carry the source element; it never means the scrape failed.
type PageMetadata struct {
	Title       *string `json:"title,omitempty"`
	Link        *string `json:"link,omitempty"`
	Description *string `json:"description,omitempty"`
	PubDate     *string `json:"pub_date,omitempty"`
}

// Channel holds the fixed channel-level fields of a feed.
type Channel struct {
	Title       string `json:"title" yaml:"title"`
	Link        string `json:"link" yaml:"link"`
	Description string `json:"description" yaml:"description"`
}

// FeedDocument is the assembled feed. Items keep sitemap order.
type FeedDocument struct {
	Channel Channel
	Items   []PageMetadata
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string { return &s }

// Deref returns *s, or "" for nil.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
