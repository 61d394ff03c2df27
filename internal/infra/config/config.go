package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"googlebot/internal/domain"
)

// Config is the top-level application configuration.
//
// It only holds process settings. The result counts the bot users can change
// at runtime live in the flat key-value store at Files.Store.
type Config struct {
	Bot     BotConfig     `yaml:"bot"`
	Files   FilesConfig   `yaml:"files"`
	Search  SearchConfig  `yaml:"search"`
	Wolfram WolframConfig `yaml:"wolfram"`
	NOAA    NOAAConfig    `yaml:"noaa"`
	Debug   DebugConfig   `yaml:"debug"`
	Logger  LoggerConfig  `yaml:"logger"`
	Tracer  TracerConfig  `yaml:"tracer"`
}

// BotConfig selects and configures the chat platform.
type BotConfig struct {
	Channel string        `yaml:"channel"` // "discord" or "slack"
	Discord DiscordConfig `yaml:"discord"`
	Slack   SlackConfig   `yaml:"slack"`
}

// DiscordConfig holds Discord channel settings.
type DiscordConfig struct {
	Token      string   `yaml:"token"`
	GuildID    string   `yaml:"guild_id,omitempty"`
	ChannelIDs []string `yaml:"channel_ids,omitempty"`
}

// SlackConfig holds Slack Socket Mode settings.
type SlackConfig struct {
	BotToken   string   `yaml:"bot_token"`
	AppToken   string   `yaml:"app_token"`
	ChannelIDs []string `yaml:"channel_ids,omitempty"`
}

// FilesConfig locates the files the commands read and write.
type FilesConfig struct {
	Store     string `yaml:"store"`
	Changelog string `yaml:"changelog"`
	HelpDir   string `yaml:"help_dir"`
	Overview  string `yaml:"overview"`
}

// SearchConfig configures the results page fetch and the extraction markers.
type SearchConfig struct {
	Backend        string        `yaml:"backend"` // "http" or "chromedp"
	BaseURL        string        `yaml:"base_url"`
	TextUserAgent  string        `yaml:"text_user_agent"`
	ImageUserAgent string        `yaml:"image_user_agent"`
	Timeout        time.Duration `yaml:"timeout"` // 0 waits forever
	MaxBodyBytes   int64         `yaml:"max_body_bytes"`
	TextMarkers    MarkersConfig `yaml:"text_markers"`
	ImageMarkers   MarkersConfig `yaml:"image_markers"`
	Breaker        BreakerConfig `yaml:"breaker"`
	ChromeDP       ChromeConfig  `yaml:"chromedp"`
}

// MarkersConfig is the ordered marker list used to chase links through a page.
type MarkersConfig struct {
	First     string `yaml:"first,omitempty"`
	Anchor    string `yaml:"anchor"`
	LinkStart string `yaml:"link_start"`
	LinkEnd   string `yaml:"link_end"`
}

// BreakerConfig configures the circuit breaker around the fetcher.
type BreakerConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxFailures uint32        `yaml:"max_failures"`
	Timeout     time.Duration `yaml:"timeout"`
	Interval    time.Duration `yaml:"interval"`
}

// ChromeConfig configures the chromedp fetch backend.
type ChromeConfig struct {
	RemoteURL string `yaml:"remote_url,omitempty"`
	Headless  bool   `yaml:"headless"`
}

// WolframConfig holds the Wolfram|Alpha v2 API settings for the !wa command.
type WolframConfig struct {
	AppID   string `yaml:"app_id"`
	BaseURL string `yaml:"base_url"`
}

// NOAAConfig holds the settings for the !noaa command.
type NOAAConfig struct {
	PageURL   string `yaml:"page_url"`
	MirrorURL string `yaml:"mirror_url,omitempty"`
}

// DebugConfig enables diagnostics. It is handed to components explicitly.
type DebugConfig struct {
	Enabled  bool   `yaml:"enabled"`
	DumpPath string `yaml:"dump_path"`
}

// LoggerConfig holds logger settings.
type LoggerConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// TracerConfig holds OpenTelemetry settings.
type TracerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"`
}

// Defaults returns a Config with sensible defaults.
func Defaults() *Config {
	return &Config{
		Bot: BotConfig{
			Channel: "discord",
		},
		Files: FilesConfig{
			Store:     "GoogleBot.config",
			Changelog: "changelog.txt",
			HelpDir:   "help",
			Overview:  "overview.help",
		},
		Search: SearchConfig{
			Backend:        "http",
			BaseURL:        "https://www.google.com/search",
			TextUserAgent:  "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/75.0.3770.100 Safari/537.36",
			ImageUserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/71.0.3578.98 Safari/537.36 Viv/2.2.1388.37",
			Timeout:        20 * time.Second,
			MaxBodyBytes:   4 * 1024 * 1024,
			TextMarkers: MarkersConfig{
				First:     `<div class="g"><div data-hveid="`,
				Anchor:    `<div class="g">`,
				LinkStart: `<a href="`,
				LinkEnd:   `"`,
			},
			ImageMarkers: MarkersConfig{
				Anchor:    `<div class="rg_meta notranslate">`,
				LinkStart: `"ou":"`,
				LinkEnd:   `","ow":`,
			},
			Breaker: BreakerConfig{
				Enabled:     true,
				MaxFailures: 5,
				Timeout:     30 * time.Second,
				Interval:    60 * time.Second,
			},
			ChromeDP: ChromeConfig{
				Headless: true,
			},
		},
		Wolfram: WolframConfig{
			BaseURL: "http://api.wolframalpha.com/v2/query",
		},
		NOAA: NOAAConfig{
			PageURL: "https://www.nhc.noaa.gov/",
		},
		Debug: DebugConfig{
			DumpPath: "lastResult.html",
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Tracer: TracerConfig{
			Exporter: "noop",
		},
	}
}

// Load reads a YAML config file, applies .env and env var overrides, and
// decrypts secrets. A missing file yields the defaults plus overrides.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	// A missing .env is the normal case.
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("resolve config path: %w", err)
		}
		if err := validatePermissions(absPath); err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, domain.NewDomainError("config.Load", domain.ErrConfigLoad, err.Error())
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	ApplyEnvOverrides(cfg)

	if passphrase := os.Getenv("GOOGLEBOT_CONFIG_KEY"); passphrase != "" {
		if err := decryptSecrets(cfg, passphrase); err != nil {
			return nil, fmt.Errorf("decrypt secrets: %w", err)
		}
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnvOverrides maps GOOGLEBOT_* env vars to config fields.
func ApplyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GOOGLEBOT_CHANNEL"); v != "" {
		cfg.Bot.Channel = v
	}
	// AUTH_TOKEN is the variable the bot has always been deployed with.
	for _, name := range []string{"GOOGLEBOT_DISCORD_TOKEN", "AUTH_TOKEN"} {
		if v := os.Getenv(name); v != "" {
			cfg.Bot.Discord.Token = v
			break
		}
	}
	if v := os.Getenv("GOOGLEBOT_DISCORD_GUILD_ID"); v != "" {
		cfg.Bot.Discord.GuildID = v
	}
	if v := os.Getenv("GOOGLEBOT_DISCORD_CHANNEL_IDS"); v != "" {
		cfg.Bot.Discord.ChannelIDs = splitAndTrim(v, ",")
	}
	if v := os.Getenv("GOOGLEBOT_SLACK_BOT_TOKEN"); v != "" {
		cfg.Bot.Slack.BotToken = v
	}
	if v := os.Getenv("GOOGLEBOT_SLACK_APP_TOKEN"); v != "" {
		cfg.Bot.Slack.AppToken = v
	}
	if v := os.Getenv("GOOGLEBOT_STORE_PATH"); v != "" {
		cfg.Files.Store = v
	}
	if v := os.Getenv("GOOGLEBOT_SEARCH_BACKEND"); v != "" {
		cfg.Search.Backend = v
	}
	if v := os.Getenv("GOOGLEBOT_SEARCH_BASE_URL"); v != "" {
		cfg.Search.BaseURL = v
	}
	if v := os.Getenv("GOOGLEBOT_SEARCH_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			cfg.Search.Timeout = d
		}
	}
	if v := os.Getenv("GOOGLEBOT_SEARCH_MAX_BODY_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.Search.MaxBodyBytes = n
		}
	}
	if v := os.Getenv("GOOGLEBOT_CHROMEDP_URL"); v != "" {
		cfg.Search.ChromeDP.RemoteURL = v
	}
	for _, name := range []string{"GOOGLEBOT_WOLFRAM_APP_ID", "WA_API"} {
		if v := os.Getenv(name); v != "" {
			cfg.Wolfram.AppID = v
			break
		}
	}
	if v := os.Getenv("GOOGLEBOT_DEBUG"); v != "" {
		cfg.Debug.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("GOOGLEBOT_LOGGER_LEVEL"); v != "" {
		cfg.Logger.Level = v
	}
	if v := os.Getenv("GOOGLEBOT_LOGGER_FORMAT"); v != "" {
		cfg.Logger.Format = v
	}
	if v := os.Getenv("GOOGLEBOT_TRACER_ENABLED"); v == "true" {
		cfg.Tracer.Enabled = true
	}
	if v := os.Getenv("GOOGLEBOT_TRACER_EXPORTER"); v != "" {
		cfg.Tracer.Exporter = v
	}
}

// splitAndTrim splits s by sep and trims whitespace from each element.
func splitAndTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// validatePermissions checks the config file has restrictive permissions.
func validatePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat config: %w", err)
	}
	mode := info.Mode().Perm()
	// Allow 0600 and 0644 (readable by others but not writable)
	if mode&0o077 > 0o044 {
		return fmt.Errorf("config file %s has insecure permissions %o (want 0600 or 0644)", path, mode)
	}
	return nil
}
