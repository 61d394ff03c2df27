package usecase

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"googlebot/internal/adapter/scrape"
	"googlebot/internal/domain"
)

const testBaseURL = "https://search.test/search"

func textPage(hrefs ...string) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	for _, h := range hrefs {
		b.WriteString(`<div class="g"><div data-hveid="x"><a href="` + h + `"><h3>t</h3></a></div></div>`)
	}
	b.WriteString("</body></html>")
	return b.String()
}

func imagePage(urls ...string) string {
	var b strings.Builder
	for _, u := range urls {
		b.WriteString(`<div class="rg_meta notranslate">{"ou":"` + u + `","ow":800,"oh":600}</div>`)
	}
	return b.String()
}

type routerHarness struct {
	fx      *fixture
	fetcher *fakeFetcher
	sender  *recordingSender
	router  *Router
}

func newRouterHarness(t *testing.T) *routerHarness {
	t.Helper()
	fx := newFixture(t)
	fetcher := &fakeFetcher{pages: map[string]string{}}
	sender := &recordingSender{}
	search := NewSearch(fetcher, fx.store, SearchConfig{
		BaseURL:        testBaseURL,
		TextUserAgent:  "text-agent",
		ImageUserAgent: "image-agent",
		TextMarkers:    scrape.DefaultTextMarkers,
		ImageMarkers:   scrape.DefaultImageMarkers,
	}, newTestLogger())
	commands := newCommands(t, fx, fetcher, CommandsConfig{}, WithDice(func(n int64) int64 { return 0 }))
	return &routerHarness{
		fx:      fx,
		fetcher: fetcher,
		sender:  sender,
		router:  NewRouter(commands, search, sender, newTestLogger()),
	}
}

func inbound(content string) domain.InboundMessage {
	return domain.InboundMessage{
		SessionID:   "chan-1",
		Content:     content,
		ChannelName: "discord",
		SenderID:    "user-1",
		BotID:       "42",
		Mentions:    []string{"<@42>", "<@!42>"},
	}
}

func TestRouterIgnoresSelfAndUnaddressed(t *testing.T) {
	h := newRouterHarness(t)

	self := inbound("<@42> !version")
	self.SenderID = "42"
	for _, msg := range []domain.InboundMessage{
		self,
		inbound("!version"),
		inbound("hello <@42> !version"),
		inbound("<@42>!version"),
		inbound("<@43> !version"),
	} {
		require.NoError(t, h.router.Handle(context.Background(), msg))
	}
	assert.Empty(t, h.sender.sent)
	assert.Empty(t, h.fetcher.urls)
}

func TestRouterCommand(t *testing.T) {
	h := newRouterHarness(t)

	require.NoError(t, h.router.Handle(context.Background(), inbound("<@42> !version")))
	require.NoError(t, h.router.Handle(context.Background(), inbound("<@!42> !roll 0")))

	assert.Equal(t, []string{"```v1.2.0```", "You rolled a 1 on a 2-sided die."}, h.sender.contents())
	assert.Equal(t, "chan-1", h.sender.sent[0].SessionID)
}

func TestRouterLinkSearch(t *testing.T) {
	h := newRouterHarness(t)
	h.fetcher.pages[testBaseURL+"?q=golang+generics"] = textPage(
		"/url?q=https://go.dev/doc/tutorial/generics&amp;sa=U",
		"/url?q=https://go.dev/blog/intro-generics&amp;sa=U",
		"/url?q=http://example.com/a%20b&amp;sa=U",
		"/url?q=https://extra.com/&amp;sa=U",
	)

	require.NoError(t, h.router.Handle(context.Background(), inbound("<@42> golang generics")))

	require.Len(t, h.sender.sent, 1)
	assert.Equal(t, "Top 3 results:\nhttps://go.dev/doc/tutorial/generics\nhttps://go.dev/blog/intro-generics\nhttp://example.com/a b", h.sender.sent[0].Content)
	assert.Equal(t, "text-agent", h.fetcher.headers[0].Get("User-Agent"))
}

func TestRouterLinkSearchSingleResult(t *testing.T) {
	h := newRouterHarness(t)
	_, err := h.fx.store.Set("TEXT_RESULTS", 1)
	require.NoError(t, err)
	h.fetcher.pages[testBaseURL+"?q=one"] = textPage("/url?q=https://one.com/&amp;sa=U")

	require.NoError(t, h.router.Handle(context.Background(), inbound("<@42> one")))
	assert.Equal(t, []string{"Top result:\nhttps://one.com/"}, h.sender.contents())
}

func TestRouterLinkSearchClampsCount(t *testing.T) {
	h := newRouterHarness(t)
	_, err := h.fx.store.Set("TEXT_RESULTS", 50)
	require.NoError(t, err)

	// An empty page still yields ten (empty) entries.
	require.NoError(t, h.router.Handle(context.Background(), inbound("<@42> nothing")))
	require.Len(t, h.sender.sent, 1)
	assert.Equal(t, "Top 10 results:"+strings.Repeat("\n", 10), h.sender.sent[0].Content)
}

func TestRouterImageSearchPlural(t *testing.T) {
	h := newRouterHarness(t)
	h.fetcher.pages[testBaseURL+"?&tbm=isch&q=cats"] = imagePage(
		"https://img.test/1.jpg", "https://img.test/2.jpg", "https://img.test/3.jpg",
	)

	require.NoError(t, h.router.Handle(context.Background(), inbound("<@42> images of cats")))

	// IMAGE_RESULTS is 2 in the fixture.
	assert.Equal(t, []string{"https://img.test/1.jpg", "https://img.test/2.jpg"}, h.sender.contents())
	assert.Equal(t, "image-agent", h.fetcher.headers[0].Get("User-Agent"))
}

func TestRouterImageSearchSingular(t *testing.T) {
	h := newRouterHarness(t)
	h.fetcher.pages[testBaseURL+"?&tbm=isch&q=cat"] = imagePage("https://img.test/1.jpg", "https://img.test/2.jpg")
	h.fetcher.pages[testBaseURL+"?&tbm=isch&q=red+panda"] = imagePage("https://img.test/panda.jpg")

	require.NoError(t, h.router.Handle(context.Background(), inbound("<@42> image cat")))
	require.NoError(t, h.router.Handle(context.Background(), inbound("<@42> picture of red panda")))

	assert.Equal(t, []string{"https://img.test/1.jpg", "https://img.test/panda.jpg"}, h.sender.contents())
}

func TestRouterImageSearchSkipsMisses(t *testing.T) {
	h := newRouterHarness(t)
	h.fetcher.pages[testBaseURL+"?&tbm=isch&q=dogs"] = imagePage("https://img.test/only.jpg")

	require.NoError(t, h.router.Handle(context.Background(), inbound("<@42> pictures dogs")))
	assert.Equal(t, []string{"https://img.test/only.jpg"}, h.sender.contents())
}

func TestRouterImageKeywordNeedsSpace(t *testing.T) {
	h := newRouterHarness(t)
	require.NoError(t, h.router.Handle(context.Background(), inbound("<@42> imagery")))
	require.Len(t, h.fetcher.urls, 1)
	assert.Equal(t, testBaseURL+"?q=imagery", h.fetcher.urls[0])
}

func TestRouterFetchErrorSendsNothing(t *testing.T) {
	h := newRouterHarness(t)
	h.fetcher.err = domain.NewDomainError("fake", domain.ErrFetch, "connection refused")

	err := h.router.Handle(context.Background(), inbound("<@42> anything"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFetch)
	assert.Empty(t, h.sender.sent)
}

func TestRouterMissingFileSendsNothing(t *testing.T) {
	h := newRouterHarness(t)
	require.NoError(t, os.Remove(filepath.Join(h.fx.dir, "GoogleBot.config")))

	err := h.router.Handle(context.Background(), inbound("<@42> !config"))
	assert.ErrorIs(t, err, domain.ErrStoreIO)
	err = h.router.Handle(context.Background(), inbound("<@42> search me"))
	assert.ErrorIs(t, err, domain.ErrStoreIO)
	assert.Empty(t, h.sender.sent)
	assert.Empty(t, h.fetcher.urls)
}

func TestRouterSendError(t *testing.T) {
	h := newRouterHarness(t)
	h.sender.err = assert.AnError
	err := h.router.Handle(context.Background(), inbound("<@42> !version"))
	assert.ErrorIs(t, err, assert.AnError)
}

func TestAddressedText(t *testing.T) {
	mentions := []string{"<@42>", "<@!42>"}
	got, ok := addressedText("<@!42> images of cats", mentions)
	assert.True(t, ok)
	assert.Equal(t, "images of cats", got)

	_, ok = addressedText("<@42>", mentions)
	assert.False(t, ok)
	_, ok = addressedText("<@42> x", nil)
	assert.False(t, ok)
}

func TestFormatLinks(t *testing.T) {
	assert.Equal(t, "Top result:\na", FormatLinks([]string{"a"}))
	assert.Equal(t, "Top 2 results:\na\nb", FormatLinks([]string{"a", "b"}))
}

func TestNewRequestIDUnique(t *testing.T) {
	a, b := newRequestID(), newRequestID()
	assert.Len(t, a, 26)
	assert.NotEqual(t, a, b)
}
