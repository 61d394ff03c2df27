package main

import (
	"fmt"
	"log/slog"

	"googlebot/internal/adapter/channel"
	"googlebot/internal/adapter/fetch"
	"googlebot/internal/adapter/helpdoc"
	"googlebot/internal/adapter/kvstore"
	"googlebot/internal/adapter/scrape"
	"googlebot/internal/domain"
	"googlebot/internal/infra/config"
	"googlebot/internal/usecase"
)

// bot holds the wired application.
type bot struct {
	Router        *usecase.Router
	SearchFetcher domain.Fetcher
	closers       []func() error
}

// Close releases the fetch backends.
func (b *bot) Close() {
	for _, c := range b.closers {
		_ = c()
	}
}

func buildChannel(bc config.BotConfig, log *slog.Logger) (domain.Channel, error) {
	switch bc.Channel {
	case "discord", "":
		return buildDiscordChannel(bc, log)
	case "slack":
		return buildSlackChannel(bc, log)
	default:
		return nil, fmt.Errorf("unsupported channel %q", bc.Channel)
	}
}

func buildDiscordChannel(bc config.BotConfig, log *slog.Logger) (domain.Channel, error) {
	if bc.Discord.Token == "" {
		return nil, fmt.Errorf("discord.token is required")
	}
	var opts []channel.DiscordOption
	if bc.Discord.GuildID != "" {
		opts = append(opts, channel.WithDiscordGuild(bc.Discord.GuildID))
	}
	if len(bc.Discord.ChannelIDs) > 0 {
		opts = append(opts, channel.WithDiscordChannels(bc.Discord.ChannelIDs))
	}
	return channel.NewDiscordChannel(bc.Discord.Token, log, opts...), nil
}

// buildBot wires the search and command pipeline behind sender.
func buildBot(cfg *config.Config, sender domain.Sender, log *slog.Logger) *bot {
	b := &bot{}

	searchFetcher := buildSearchFetcher(cfg, log, b)
	// Wolfram|Alpha and NHC return plain documents, never the chromedp backend.
	apiFetcher := decorate(fetch.NewHTTPFetcher(cfg.Search.Timeout, cfg.Search.MaxBodyBytes, log), cfg, log)
	b.SearchFetcher = searchFetcher

	store := kvstore.New(cfg.Files.Store, kvstore.WithLogger(log))
	help := helpdoc.New(cfg.Files.HelpDir, cfg.Files.Overview, log)

	commands := usecase.NewCommands(store, help, apiFetcher, usecase.CommandsConfig{
		ChangelogPath:  cfg.Files.Changelog,
		WolframAppID:   cfg.Wolfram.AppID,
		WolframBaseURL: cfg.Wolfram.BaseURL,
		StormPageURL:   cfg.NOAA.PageURL,
		StormMirrorURL: cfg.NOAA.MirrorURL,
	}, log)

	search := usecase.NewSearch(searchFetcher, store, usecase.SearchConfig{
		BaseURL:        cfg.Search.BaseURL,
		TextUserAgent:  cfg.Search.TextUserAgent,
		ImageUserAgent: cfg.Search.ImageUserAgent,
		TextMarkers:    markers(cfg.Search.TextMarkers),
		ImageMarkers:   markers(cfg.Search.ImageMarkers),
	}, log)

	b.Router = usecase.NewRouter(commands, search, sender, log)
	return b
}

// buildSearchFetcher returns the results page fetcher for the configured
// backend, with the debug dump and circuit breaker applied.
func buildSearchFetcher(cfg *config.Config, log *slog.Logger, b *bot) domain.Fetcher {
	var base domain.Fetcher
	switch cfg.Search.Backend {
	case "chromedp":
		cf := fetch.NewChromeDPFetcher(fetch.ChromeConfig{
			RemoteURL: cfg.Search.ChromeDP.RemoteURL,
			Headless:  cfg.Search.ChromeDP.Headless,
			Timeout:   cfg.Search.Timeout,
		}, log)
		b.closers = append(b.closers, cf.Close)
		base = cf
	default:
		base = fetch.NewHTTPFetcher(cfg.Search.Timeout, cfg.Search.MaxBodyBytes, log)
	}

	if cfg.Debug.Enabled {
		base = fetch.NewDumpingFetcher(base, cfg.Debug.DumpPath, log)
	}
	if cfg.Search.Breaker.Enabled {
		base = fetch.NewBreakerFetcher(base, breakerConfig(cfg.Search.Breaker), log)
	}
	return base
}

// decorate applies the circuit breaker to an API fetcher.
func decorate(f domain.Fetcher, cfg *config.Config, log *slog.Logger) domain.Fetcher {
	if cfg.Search.Breaker.Enabled {
		return fetch.NewBreakerFetcher(f, breakerConfig(cfg.Search.Breaker), log)
	}
	return f
}

func breakerConfig(bc config.BreakerConfig) fetch.BreakerConfig {
	return fetch.BreakerConfig{
		MaxFailures: bc.MaxFailures,
		Timeout:     bc.Timeout,
		Interval:    bc.Interval,
	}
}

func markers(mc config.MarkersConfig) scrape.Markers {
	return scrape.Markers{
		First:     mc.First,
		Anchor:    mc.Anchor,
		LinkStart: mc.LinkStart,
		LinkEnd:   mc.LinkEnd,
	}
}
