package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"googlebot/internal/domain"
	"googlebot/internal/infra/tracer"
)

// ChromeConfig configures the chromedp fetcher.
type ChromeConfig struct {
	// RemoteURL is a CDP WebSocket endpoint. Empty launches a local Chrome.
	RemoteURL string
	Headless  bool
	// Timeout bounds one page render. Zero waits forever.
	Timeout time.Duration
}

// ChromeDPFetcher renders pages in headless Chrome and returns the outer
// HTML of the document. Each fetch gets its own tab.
type ChromeDPFetcher struct {
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	timeout       time.Duration
	logger        *slog.Logger

	startOnce sync.Once
	startErr  error
}

// NewChromeDPFetcher prepares the browser allocator. Chrome itself is
// started on the first fetch.
func NewChromeDPFetcher(cfg ChromeConfig, logger *slog.Logger) *ChromeDPFetcher {
	f := &ChromeDPFetcher{timeout: cfg.Timeout, logger: logger}

	var allocCtx context.Context
	if cfg.RemoteURL != "" {
		allocCtx, f.allocCancel = chromedp.NewRemoteAllocator(context.Background(), cfg.RemoteURL)
		logger.Info("chromedp using remote browser", "url", cfg.RemoteURL)
	} else {
		opts := make([]chromedp.ExecAllocatorOption, len(chromedp.DefaultExecAllocatorOptions))
		copy(opts, chromedp.DefaultExecAllocatorOptions[:])
		opts = append(opts,
			chromedp.Flag("headless", cfg.Headless),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)
		allocCtx, f.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	}
	f.browserCtx, f.browserCancel = chromedp.NewContext(allocCtx)
	return f
}

func (f *ChromeDPFetcher) Name() string { return "chromedp" }

// start launches the browser. The first Run binds the browser to its
// context, so it must be the long-lived browserCtx and not a request context.
func (f *ChromeDPFetcher) start() error {
	f.startOnce.Do(func() {
		if err := chromedp.Run(f.browserCtx); err != nil {
			f.startErr = fmt.Errorf("start browser: %w", err)
			return
		}
		f.logger.Info("chromedp browser started")
	})
	return f.startErr
}

// Fetch renders url and returns the document HTML. The User-Agent header is
// applied through device emulation; other headers are sent as extra headers.
func (f *ChromeDPFetcher) Fetch(ctx context.Context, url string, header http.Header) (_ []byte, err error) {
	ctx, span := tracer.StartSpan(ctx, "fetch")
	span.SetAttributes(tracer.KeyURL.String(url))
	defer func() { tracer.End(span, err) }()

	if err := f.start(); err != nil {
		return nil, domain.NewDomainError("ChromeDPFetcher.Fetch", domain.ErrFetch, err.Error())
	}

	tabCtx, tabCancel := chromedp.NewContext(f.browserCtx)
	defer tabCancel()
	stop := context.AfterFunc(ctx, tabCancel)
	defer stop()

	runCtx := tabCtx
	if f.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(tabCtx, f.timeout)
		defer cancel()
	}

	var actions []chromedp.Action
	if ua := header.Get("User-Agent"); ua != "" {
		actions = append(actions, emulation.SetUserAgentOverride(ua))
	}
	if extra := extraHeaders(header); len(extra) > 0 {
		actions = append(actions, network.Enable(), network.SetExtraHTTPHeaders(extra))
	}

	var doc string
	actions = append(actions,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.OuterHTML("html", &doc, chromedp.ByQuery),
	)

	start := time.Now()
	if err := chromedp.Run(runCtx, actions...); err != nil {
		return nil, domain.NewDomainError("ChromeDPFetcher.Fetch", domain.ErrFetch, err.Error())
	}

	span.SetAttributes(tracer.KeyBytes.Int(len(doc)))
	f.logger.Debug("page rendered", "url", url, "bytes", len(doc), "duration", time.Since(start))
	return []byte(doc), nil
}

// extraHeaders returns every header except User-Agent in CDP form.
func extraHeaders(header http.Header) network.Headers {
	out := network.Headers{}
	for k, vs := range header {
		if strings.EqualFold(k, "User-Agent") || len(vs) == 0 {
			continue
		}
		out[k] = strings.Join(vs, ", ")
	}
	return out
}

// Close shuts the browser down.
func (f *ChromeDPFetcher) Close() error {
	if f.browserCancel != nil {
		f.browserCancel()
	}
	if f.allocCancel != nil {
		f.allocCancel()
	}
	return nil
}

var _ domain.Fetcher = (*ChromeDPFetcher)(nil)
