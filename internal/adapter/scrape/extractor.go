package scrape

import (
	"net/url"
	"strings"
)

// Result count bounds.
const (
	DefaultCount = 3
	MaxCount     = 10
)

// Markers is the ordered marker list for one kind of results page.
//
// Each result is found by seeking Anchor (First for the very first result
// when set), then the text between LinkStart and LinkEnd is the raw link.
type Markers struct {
	First     string
	Anchor    string
	LinkStart string
	LinkEnd   string
}

// DefaultTextMarkers locate links on a web results page.
var DefaultTextMarkers = Markers{
	First:     `<div class="g"><div data-hveid="`,
	Anchor:    `<div class="g">`,
	LinkStart: `<a href="`,
	LinkEnd:   `"`,
}

// DefaultImageMarkers locate full-size image URLs on an image results page.
var DefaultImageMarkers = Markers{
	Anchor:    `<div class="rg_meta notranslate">`,
	LinkStart: `"ou":"`,
	LinkEnd:   `","ow":`,
}

// Extractor pulls a fixed number of links out of a page.
type Extractor struct {
	Markers Markers
	// Clean post-processes each raw link. Nil keeps links as found.
	Clean func(string) string
}

// NewTextExtractor returns an extractor for web results with redirect cleaning.
func NewTextExtractor(m Markers) *Extractor {
	return &Extractor{Markers: m, Clean: CleanRedirect}
}

// NewImageExtractor returns an extractor for image results.
func NewImageExtractor(m Markers) *Extractor {
	return &Extractor{Markers: m}
}

// Extract returns exactly ClampCount(n) entries. Entries whose markers
// could not be found are empty strings.
func (e *Extractor) Extract(page string, n int) []string {
	n = ClampCount(n)
	links := make([]string, 0, n)
	c := NewCursor(page)
	for i := range n {
		anchor := e.Markers.Anchor
		if i == 0 && e.Markers.First != "" {
			anchor = e.Markers.First
		}
		links = append(links, e.next(c, anchor))
	}
	return links
}

func (e *Extractor) next(c *Cursor, anchor string) string {
	if !c.Seek(anchor) {
		return ""
	}
	// Step over this anchor so a miss below cannot match it again.
	c.Advance(len(anchor))
	if !c.Skip(e.Markers.LinkStart) {
		return ""
	}
	raw, ok := c.Take(e.Markers.LinkEnd)
	if !ok {
		return ""
	}
	if e.Clean != nil {
		return e.Clean(raw)
	}
	return raw
}

// ClampCount maps a configured result count into [1, MaxCount].
// Zero, negative and missing (-1) counts become DefaultCount.
func ClampCount(n int) int {
	switch {
	case n <= 0:
		return DefaultCount
	case n > MaxCount:
		return MaxCount
	}
	return n
}

// CleanRedirect strips a search engine redirect wrapper from a result link:
// the text from the first "https://" (or "http://") up to "&amp;sa",
// percent-decoded. A link without a scheme cleans to "".
func CleanRedirect(raw string) string {
	i := strings.Index(raw, "https://")
	if i < 0 {
		i = strings.Index(raw, "http://")
	}
	if i < 0 {
		return ""
	}
	link := raw[i:]
	if j := strings.Index(link, "&amp;sa"); j >= 0 {
		link = link[:j]
	}
	// PathUnescape leaves '+' alone.
	if decoded, err := url.PathUnescape(link); err == nil {
		return decoded
	}
	return link
}
