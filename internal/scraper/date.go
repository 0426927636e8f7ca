package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DateExtractor pulls the raw publish-date text out of a parsed page. It is a
// best-effort structural lookup: ok is false when the structure is not there.
type DateExtractor interface {
	Extract(doc *goquery.Document) (text string, ok bool)
}

// FramerPubDateSelector points at the last link of the last rich-text paragraph in
// the header block of a Framer-built post page, which holds the publish date.
const FramerPubDateSelector = `div[data-framer-name="HeaderContent"] > div[data-framer-component-type="RichTextContainer"]:last-of-type > p.framer-text:last-of-type > a.framer-text`

// SelectorDateExtractor reads the trimmed text of the first node matching Selector.
type SelectorDateExtractor struct {
	Selector string
}

// NewFramerDateExtractor returns the extractor used for Framer post pages.
func NewFramerDateExtractor() SelectorDateExtractor {
	return SelectorDateExtractor{Selector: FramerPubDateSelector}
}

func (e SelectorDateExtractor) Extract(doc *goquery.Document) (string, bool) {
	if doc == nil || e.Selector == "" {
		return "", false
	}
	node := doc.Find(e.Selector).First()
	if node.Length() == 0 {
		return "", false
	}
	text := strings.TrimSpace(node.Text())
	if text == "" {
		return "", false
	}
	return text, true
}

// DateExtractorFunc adapts a plain function to DateExtractor.
type DateExtractorFunc func(doc *goquery.Document) (string, bool)

func (f DateExtractorFunc) Extract(doc *goquery.Document) (string, bool) { return f(doc) }
