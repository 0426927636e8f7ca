package feed

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/samvad-hq/rssfeed/internal/domain"
)

// RSSVersion is the only attribute written to the document.
const RSSVersion = "2.0"

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel channelXML `xml:"channel"`
}

type channelXML struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []itemXML `xml:"item"`
}

// itemXML fields are pointers so absent metadata is left out instead of written empty.
type itemXML struct {
	Title       *string `xml:"title,omitempty"`
	Link        *string `xml:"link,omitempty"`
	Description *string `xml:"description,omitempty"`
	PubDate     *string `xml:"pubDate,omitempty"`
}

// Serialize renders doc as indented RSS 2.0 XML with an XML declaration.
func Serialize(doc domain.FeedDocument) ([]byte, error) {
	out := rssXML{
		Version: RSSVersion,
		Channel: channelXML{
			Title:       doc.Channel.Title,
			Link:        doc.Channel.Link,
			Description: doc.Channel.Description,
			Items:       make([]itemXML, 0, len(doc.Items)),
		},
	}
	for _, it := range doc.Items {
		out.Channel.Items = append(out.Channel.Items, itemXML{
			Title:       it.Title,
			Link:        it.Link,
			Description: it.Description,
			PubDate:     it.PubDate,
		})
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(out); err != nil {
		return nil, fmt.Errorf("encode rss: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode rss: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
