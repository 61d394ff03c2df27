package fetch

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"googlebot/internal/domain"
)

// DumpingFetcher saves the most recently fetched document to a file for
// inspection. It is installed only in debug mode.
type DumpingFetcher struct {
	inner  domain.Fetcher
	path   string
	logger *slog.Logger
}

// NewDumpingFetcher wraps inner, overwriting path after every successful fetch.
func NewDumpingFetcher(inner domain.Fetcher, path string, logger *slog.Logger) *DumpingFetcher {
	return &DumpingFetcher{inner: inner, path: path, logger: logger}
}

func (f *DumpingFetcher) Name() string { return f.inner.Name() }

// Fetch delegates to the wrapped fetcher. A failed dump is logged, not returned.
func (f *DumpingFetcher) Fetch(ctx context.Context, url string, header http.Header) ([]byte, error) {
	body, err := f.inner.Fetch(ctx, url, header)
	if err != nil {
		return nil, err
	}
	if werr := os.WriteFile(f.path, body, 0644); werr != nil {
		f.logger.Warn("failed to save fetched page", "path", f.path, "error", werr)
	} else {
		f.logger.Debug("saved fetched page", "url", url, "path", f.path)
	}
	return body, nil
}

var _ domain.Fetcher = (*DumpingFetcher)(nil)
