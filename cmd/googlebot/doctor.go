package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"googlebot/internal/adapter/fetch"
	"googlebot/internal/adapter/kvstore"
	"googlebot/internal/infra/config"
)

// CheckStatus represents the result of a health check.
type CheckStatus string

const (
	StatusPass CheckStatus = "PASS"
	StatusWarn CheckStatus = "WARN"
	StatusFail CheckStatus = "FAIL"
)

// CheckResult holds the outcome of a single health check.
type CheckResult struct {
	Name    string
	Status  CheckStatus
	Message string
	Fix     string // optional fix suggestion
}

// Check is a named health check function.
type Check struct {
	Name string
	Fn   func(cfg *config.Config) CheckResult
}

var notLoaded = CheckResult{Status: StatusFail, Message: "cannot check, config not loaded"}

// runDoctor executes all health checks and reports results.
func runDoctor() error {
	cfgPath := configPath()
	cfg, cfgErr := config.Load(cfgPath)

	checks := []Check{
		{Name: "Config file", Fn: checkConfigFile(cfgPath, cfgErr)},
		{Name: "Chat token", Fn: checkChatToken},
		{Name: "Config store", Fn: checkStore},
		{Name: "Changelog", Fn: checkChangelog},
		{Name: "Help files", Fn: checkHelpFiles},
		{Name: "Wolfram|Alpha", Fn: checkWolfram},
		{Name: "Chromium", Fn: checkChromium},
		{Name: "Search page", Fn: checkSearchPage},
	}

	fmt.Println("googlebot doctor")
	fmt.Println(strings.Repeat("=", 50))
	fmt.Println()

	var pass, warn, fail int
	for _, check := range checks {
		result := check.Fn(cfg)
		result.Name = check.Name

		fmt.Printf("  %s %s: %s\n", statusIcon(result.Status), result.Name, result.Message)
		if result.Fix != "" {
			fmt.Printf("      Fix: %s\n", result.Fix)
		}

		switch result.Status {
		case StatusPass:
			pass++
		case StatusWarn:
			warn++
		case StatusFail:
			fail++
		}
	}

	fmt.Println()
	fmt.Println(strings.Repeat("-", 50))
	fmt.Printf("Results: %d passed, %d warnings, %d failed\n", pass, warn, fail)

	if fail > 0 {
		return fmt.Errorf("%d check(s) failed", fail)
	}
	return nil
}

func statusIcon(s CheckStatus) string {
	switch s {
	case StatusPass:
		return "[PASS]"
	case StatusWarn:
		return "[WARN]"
	case StatusFail:
		return "[FAIL]"
	default:
		return "[????]"
	}
}

// checkConfigFile reports whether the YAML file exists and the loaded
// configuration validated. A missing file is allowed; defaults apply.
func checkConfigFile(cfgPath string, cfgErr error) func(*config.Config) CheckResult {
	return func(_ *config.Config) CheckResult {
		if cfgErr != nil {
			return CheckResult{
				Status:  StatusFail,
				Message: fmt.Sprintf("config error: %v", cfgErr),
				Fix:     "Check googlebot.yaml syntax and GOOGLEBOT_* variables",
			}
		}
		if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
			return CheckResult{
				Status:  StatusWarn,
				Message: fmt.Sprintf("%s not found, using defaults and environment", cfgPath),
			}
		}
		return CheckResult{
			Status:  StatusPass,
			Message: fmt.Sprintf("config loaded from %s", cfgPath),
		}
	}
}

func checkChatToken(cfg *config.Config) CheckResult {
	if cfg == nil {
		return notLoaded
	}
	switch cfg.Bot.Channel {
	case "slack":
		if cfg.Bot.Slack.BotToken == "" || cfg.Bot.Slack.AppToken == "" {
			return CheckResult{
				Status:  StatusFail,
				Message: "slack bot or app token missing",
				Fix:     "Set GOOGLEBOT_SLACK_BOT_TOKEN and GOOGLEBOT_SLACK_APP_TOKEN",
			}
		}
	default:
		if cfg.Bot.Discord.Token == "" {
			return CheckResult{
				Status:  StatusFail,
				Message: "discord token missing",
				Fix:     "Set GOOGLEBOT_DISCORD_TOKEN or AUTH_TOKEN",
			}
		}
	}
	return CheckResult{
		Status:  StatusPass,
		Message: fmt.Sprintf("%s credentials configured", cfg.Bot.Channel),
	}
}

// checkStore verifies the flat config file is readable and carries the
// result count keys.
func checkStore(cfg *config.Config) CheckResult {
	if cfg == nil {
		return notLoaded
	}
	store := kvstore.New(cfg.Files.Store)
	var missing []string
	for _, key := range []string{kvstore.TextResults, kvstore.ImageResults} {
		v, err := store.Get(key)
		if err != nil {
			return CheckResult{
				Status:  StatusFail,
				Message: fmt.Sprintf("cannot read %s: %v", cfg.Files.Store, err),
				Fix:     fmt.Sprintf("Create %s with %s and %s lines", cfg.Files.Store, kvstore.TextResults, kvstore.ImageResults),
			}
		}
		if v == kvstore.Missing {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return CheckResult{
			Status:  StatusWarn,
			Message: fmt.Sprintf("no numeric value for %s, the default count applies", strings.Join(missing, ", ")),
		}
	}
	return CheckResult{
		Status:  StatusPass,
		Message: fmt.Sprintf("%s readable", cfg.Files.Store),
	}
}

func checkChangelog(cfg *config.Config) CheckResult {
	if cfg == nil {
		return notLoaded
	}
	f, err := os.Open(cfg.Files.Changelog)
	if err != nil {
		return CheckResult{
			Status:  StatusFail,
			Message: fmt.Sprintf("cannot open changelog: %v", err),
			Fix:     "Point files.changelog at a file whose first line is the version",
		}
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	if !sc.Scan() || strings.TrimSpace(sc.Text()) == "" {
		return CheckResult{
			Status:  StatusWarn,
			Message: "changelog is empty, !version will reply with an empty block",
		}
	}
	return CheckResult{
		Status:  StatusPass,
		Message: fmt.Sprintf("version %s", strings.TrimSpace(sc.Text())),
	}
}

func checkHelpFiles(cfg *config.Config) CheckResult {
	if cfg == nil {
		return notLoaded
	}
	if _, err := os.Stat(cfg.Files.Overview); err != nil {
		return CheckResult{
			Status:  StatusFail,
			Message: fmt.Sprintf("overview help missing: %v", err),
			Fix:     "Create the file named by files.overview",
		}
	}
	topics, _ := filepath.Glob(filepath.Join(cfg.Files.HelpDir, "*.help"))
	if len(topics) == 0 {
		return CheckResult{
			Status:  StatusWarn,
			Message: fmt.Sprintf("no topic files in %s, every topic falls back to the overview", cfg.Files.HelpDir),
		}
	}
	return CheckResult{
		Status:  StatusPass,
		Message: fmt.Sprintf("overview and %d topic file(s)", len(topics)),
	}
}

func checkWolfram(cfg *config.Config) CheckResult {
	if cfg == nil {
		return notLoaded
	}
	if cfg.Wolfram.AppID == "" {
		return CheckResult{
			Status:  StatusWarn,
			Message: "no app id, !wa is disabled",
			Fix:     "Set GOOGLEBOT_WOLFRAM_APP_ID or WA_API",
		}
	}
	return CheckResult{Status: StatusPass, Message: "app id configured"}
}

// checkChromium looks for a local browser when the chromedp backend runs
// without a remote endpoint.
func checkChromium(cfg *config.Config) CheckResult {
	if cfg == nil {
		return notLoaded
	}
	if cfg.Search.Backend != "chromedp" {
		return CheckResult{
			Status:  StatusPass,
			Message: fmt.Sprintf("search backend is %q, Chromium not required", cfg.Search.Backend),
		}
	}
	if cfg.Search.ChromeDP.RemoteURL != "" {
		return CheckResult{
			Status:  StatusPass,
			Message: fmt.Sprintf("using remote browser at %s", cfg.Search.ChromeDP.RemoteURL),
		}
	}
	for _, name := range []string{"chromium", "chromium-browser", "google-chrome"} {
		if path, err := exec.LookPath(name); err == nil {
			return CheckResult{
				Status:  StatusPass,
				Message: fmt.Sprintf("found %s at %s", name, path),
			}
		}
	}
	return CheckResult{
		Status:  StatusFail,
		Message: "Chromium not found but search.backend is chromedp",
		Fix:     "Install Chromium or set search.chromedp.remote_url",
	}
}

func checkSearchPage(cfg *config.Config) CheckResult {
	if cfg == nil {
		return notLoaded
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	f := fetch.NewHTTPFetcher(0, 64<<10, slog.New(slog.DiscardHandler))
	header := http.Header{}
	header.Set("User-Agent", cfg.Search.TextUserAgent)

	start := time.Now()
	if _, err := f.Fetch(ctx, cfg.Search.BaseURL, header); err != nil {
		return CheckResult{
			Status:  StatusFail,
			Message: fmt.Sprintf("cannot reach %s: %v", cfg.Search.BaseURL, err),
			Fix:     "Check network access and search.base_url",
		}
	}
	return CheckResult{
		Status:  StatusPass,
		Message: fmt.Sprintf("%s reachable (latency: %dms)", cfg.Search.BaseURL, time.Since(start).Milliseconds()),
	}
}
