package domain

import (
	"context"
	"net/http"
)

// SearchKind selects which results page and markers a search uses.
type SearchKind string

const (
	SearchText  SearchKind = "text"
	SearchImage SearchKind = "image"
)

// Fetcher retrieves the raw bytes behind a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string, header http.Header) ([]byte, error)
	Name() string
}

// SearchResult is the ordered list of links extracted for one request.
// Entries may be empty when the page lacked the expected markers.
type SearchResult struct {
	Kind  SearchKind
	Query string
	Links []string
}
