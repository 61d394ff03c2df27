package usecase

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"googlebot/internal/adapter/helpdoc"
	"googlebot/internal/adapter/kvstore"
	"googlebot/internal/domain"
)

func newTestLogger() *slog.Logger { return slog.Default() }

const testChangelog = `v1.2.0
- image search takes "of"
- roll clamps die size
v1.2.0 hotfix
- fix help fallback
v1.1.0
- add roll
v1.0.0
- first release
`

// fixture is an on-disk bot directory.
type fixture struct {
	dir       string
	store     *kvstore.FileStore
	help      *helpdoc.Loader
	changelog string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	write := func(name, content string) {
		t.Helper()
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	write("GoogleBot.config", "TEXT_RESULTS: 3\nIMAGE_RESULTS: 2\n")
	write("changelog.txt", testChangelog)
	write("overview.help", "overview")
	write("help/roll.help", "roll help")
	write("help/config.help", "config help")
	write("help/wa.help", "wa help")

	return &fixture{
		dir:       dir,
		store:     kvstore.New(filepath.Join(dir, "GoogleBot.config")),
		help:      helpdoc.New(filepath.Join(dir, "help"), filepath.Join(dir, "overview.help"), nil),
		changelog: filepath.Join(dir, "changelog.txt"),
	}
}

// fakeFetcher serves canned pages by URL and records requests.
type fakeFetcher struct {
	mu      sync.Mutex
	pages   map[string]string
	err     error
	urls    []string
	headers []http.Header
}

func (f *fakeFetcher) Name() string { return "fake" }

func (f *fakeFetcher) Fetch(_ context.Context, url string, header http.Header) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.urls = append(f.urls, url)
	f.headers = append(f.headers, header)
	if f.err != nil {
		return nil, f.err
	}
	return []byte(f.pages[url]), nil
}

// recordingSender collects outbound messages.
type recordingSender struct {
	mu   sync.Mutex
	sent []domain.OutboundMessage
	err  error
}

func (s *recordingSender) Send(_ context.Context, msg domain.OutboundMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func (s *recordingSender) contents() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.sent))
	for i, m := range s.sent {
		out[i] = m.Content
	}
	return out
}
