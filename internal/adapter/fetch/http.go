// Package fetch implements domain.Fetcher: plain HTTP, headless Chrome, and
// decorators for circuit breaking and debug dumps.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"googlebot/internal/domain"
	"googlebot/internal/infra/tracer"
)

const defaultMaxBodyBytes = 4 * 1024 * 1024

// HTTPFetcher performs a plain GET.
type HTTPFetcher struct {
	client  *http.Client
	maxBody int64
	logger  *slog.Logger
}

// NewHTTPFetcher creates a fetcher. A zero timeout waits forever; a
// non-positive maxBody uses the 4 MiB default.
func NewHTTPFetcher(timeout time.Duration, maxBody int64, logger *slog.Logger) *HTTPFetcher {
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}
	return &HTTPFetcher{
		client:  &http.Client{Timeout: timeout},
		maxBody: maxBody,
		logger:  logger,
	}
}

func (f *HTTPFetcher) Name() string { return "http" }

// Fetch GETs url with header and returns at most maxBody bytes of the body.
// Transport errors and non-2xx statuses wrap domain.ErrFetch.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string, header http.Header) (_ []byte, err error) {
	ctx, span := tracer.StartSpan(ctx, "fetch")
	span.SetAttributes(tracer.KeyURL.String(url))
	defer func() { tracer.End(span, err) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, domain.NewDomainError("HTTPFetcher.Fetch", domain.ErrFetch, fmt.Sprintf("create request: %v", err))
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, domain.NewDomainError("HTTPFetcher.Fetch", domain.ErrFetch, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody))
	if err != nil {
		return nil, domain.NewDomainError("HTTPFetcher.Fetch", domain.ErrFetch, fmt.Sprintf("read response: %v", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, domain.NewDomainError("HTTPFetcher.Fetch", domain.ErrFetch, fmt.Sprintf("HTTP %d", resp.StatusCode))
	}

	span.SetAttributes(tracer.KeyBytes.Int(len(body)))
	f.logger.Debug("page fetched",
		"url", url,
		"status", resp.StatusCode,
		"bytes", len(body),
		"duration", time.Since(start),
	)
	return body, nil
}

var _ domain.Fetcher = (*HTTPFetcher)(nil)
