package usecase

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"googlebot/internal/adapter/kvstore"
	"googlebot/internal/adapter/scrape"
	"googlebot/internal/domain"
	"googlebot/internal/infra/tracer"
)

// imageKeywords start an image search. Plural forms return IMAGE_RESULTS images.
var imageKeywords = []string{"image", "picture", "images", "pictures"}

// SearchConfig holds the results page settings.
type SearchConfig struct {
	BaseURL        string
	TextUserAgent  string
	ImageUserAgent string
	TextMarkers    scrape.Markers
	ImageMarkers   scrape.Markers
}

// Search runs link and image searches against a results page.
type Search struct {
	fetcher domain.Fetcher
	store   ConfigStore
	cfg     SearchConfig
	text    *scrape.Extractor
	image   *scrape.Extractor
	logger  *slog.Logger
}

// NewSearch creates a Search. Result counts are read from store on every call.
func NewSearch(fetcher domain.Fetcher, store ConfigStore, cfg SearchConfig, logger *slog.Logger) *Search {
	return &Search{
		fetcher: fetcher,
		store:   store,
		cfg:     cfg,
		text:    scrape.NewTextExtractor(cfg.TextMarkers),
		image:   scrape.NewImageExtractor(cfg.ImageMarkers),
		logger:  logger,
	}
}

// Links searches the web for query and returns the extracted links.
func (s *Search) Links(ctx context.Context, query string) (_ domain.SearchResult, err error) {
	ctx, span := tracer.StartSpan(ctx, "search.link")
	span.SetAttributes(tracer.KeyQuery.String(query))
	defer func() { tracer.End(span, err) }()

	n, err := s.store.Get(kvstore.TextResults)
	if err != nil {
		return domain.SearchResult{}, domain.WrapOp("link search", err)
	}
	n = scrape.ClampCount(n)
	span.SetAttributes(tracer.KeyCount.Int(n))

	pageURL := s.cfg.BaseURL + "?q=" + url.QueryEscape(query)
	body, err := s.fetch(ctx, pageURL, s.cfg.TextUserAgent)
	if err != nil {
		return domain.SearchResult{}, domain.WrapOp("link search", err)
	}

	links := s.text.Extract(string(body), n)
	s.logger.Debug("link search", "query", query, "url", pageURL, "results", n)
	for i, link := range links {
		s.logger.Debug("found result", "index", i, "link", link)
	}
	return domain.SearchResult{Kind: domain.SearchText, Query: query, Links: links}, nil
}

// Images searches images for a message such as "images of cats". The
// singular keywords return one image; plural keywords return IMAGE_RESULTS.
func (s *Search) Images(ctx context.Context, text string) (_ domain.SearchResult, err error) {
	keyword, query, _ := strings.Cut(text, " ")
	query = strings.TrimPrefix(query, "of ")

	ctx, span := tracer.StartSpan(ctx, "search.image")
	span.SetAttributes(tracer.KeyQuery.String(query))
	defer func() { tracer.End(span, err) }()

	n := 1
	if strings.HasSuffix(keyword, "s") {
		n, err = s.store.Get(kvstore.ImageResults)
		if err != nil {
			return domain.SearchResult{}, domain.WrapOp("image search", err)
		}
		n = scrape.ClampCount(n)
	}
	span.SetAttributes(tracer.KeyCount.Int(n))

	pageURL := s.cfg.BaseURL + "?&tbm=isch&q=" + url.QueryEscape(query)
	body, err := s.fetch(ctx, pageURL, s.cfg.ImageUserAgent)
	if err != nil {
		return domain.SearchResult{}, domain.WrapOp("image search", err)
	}

	links := s.image.Extract(string(body), n)
	s.logger.Debug("image search", "input", text, "query", query, "results", n)
	for i, link := range links {
		s.logger.Debug("found result", "index", i, "link", link)
	}
	return domain.SearchResult{Kind: domain.SearchImage, Query: query, Links: links}, nil
}

func (s *Search) fetch(ctx context.Context, pageURL, userAgent string) ([]byte, error) {
	header := http.Header{}
	if userAgent != "" {
		header.Set("User-Agent", userAgent)
	}
	return s.fetcher.Fetch(ctx, pageURL, header)
}

// isImageRequest reports whether text starts with an image keyword followed by a space.
func isImageRequest(text string) bool {
	for _, kw := range imageKeywords {
		if strings.HasPrefix(text, kw+" ") {
			return true
		}
	}
	return false
}

// FormatLinks renders a link search reply.
func FormatLinks(links []string) string {
	var b strings.Builder
	if len(links) == 1 {
		b.WriteString("Top result:")
	} else {
		b.WriteString("Top " + strconv.Itoa(len(links)) + " results:")
	}
	for _, link := range links {
		b.WriteString("\n" + link)
	}
	return b.String()
}
