package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := Defaults()
	cfg.Bot.Discord.Token = "tok"
	return cfg
}

func validationErrors(t *testing.T, cfg *Config) []string {
	t.Helper()
	err := Validate(cfg)
	if err == nil {
		return nil
	}
	ve, ok := err.(*ValidationError)
	require.True(t, ok, "expected *ValidationError, got %T", err)
	return ve.Errors
}

func containsPrefix(errs []string, prefix string) bool {
	for _, e := range errs {
		if len(e) >= len(prefix) && e[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}

func TestValidateDefaultsWithToken(t *testing.T) {
	assert.NoError(t, Validate(validConfig()))
}

func TestValidateUnknownChannel(t *testing.T) {
	cfg := validConfig()
	cfg.Bot.Channel = "irc"
	errs := validationErrors(t, cfg)
	assert.True(t, containsPrefix(errs, "bot.channel"), "errors: %v", errs)
}

func TestValidateSlackNeedsBothTokens(t *testing.T) {
	cfg := validConfig()
	cfg.Bot.Channel = "slack"
	cfg.Bot.Slack.BotToken = "xoxb"
	errs := validationErrors(t, cfg)
	assert.True(t, containsPrefix(errs, "bot.slack.app_token"), "errors: %v", errs)
	assert.False(t, containsPrefix(errs, "bot.slack.bot_token"), "errors: %v", errs)
}

func TestValidateSearchBackend(t *testing.T) {
	cfg := validConfig()
	cfg.Search.Backend = "curl"
	errs := validationErrors(t, cfg)
	assert.True(t, containsPrefix(errs, "search.backend"), "errors: %v", errs)
}

func TestValidateBaseURL(t *testing.T) {
	cfg := validConfig()
	cfg.Search.BaseURL = "ftp://example.com/search"
	errs := validationErrors(t, cfg)
	assert.True(t, containsPrefix(errs, "search.base_url"), "errors: %v", errs)
}

func TestValidateMarkersRequired(t *testing.T) {
	cfg := validConfig()
	cfg.Search.ImageMarkers.LinkEnd = ""
	errs := validationErrors(t, cfg)
	assert.True(t, containsPrefix(errs, "search.image_markers.link_end"), "errors: %v", errs)
}

func TestValidateNegativeTimeout(t *testing.T) {
	cfg := validConfig()
	cfg.Search.Timeout = -1
	errs := validationErrors(t, cfg)
	assert.True(t, containsPrefix(errs, "search.timeout"), "errors: %v", errs)
}

func TestValidateZeroTimeoutAllowed(t *testing.T) {
	cfg := validConfig()
	cfg.Search.Timeout = 0
	assert.NoError(t, Validate(cfg))
}

func TestValidateBreakerNeedsFailures(t *testing.T) {
	cfg := validConfig()
	cfg.Search.Breaker.MaxFailures = 0
	errs := validationErrors(t, cfg)
	assert.True(t, containsPrefix(errs, "search.breaker.max_failures"), "errors: %v", errs)

	cfg.Search.Breaker.Enabled = false
	assert.NoError(t, Validate(cfg))
}

func TestValidateDebugDumpPath(t *testing.T) {
	cfg := validConfig()
	cfg.Debug.Enabled = true
	cfg.Debug.DumpPath = ""
	errs := validationErrors(t, cfg)
	assert.Contains(t, errs, "debug.dump_path must not be empty when debug is enabled")
}

func TestValidateLoggerLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Logger.Level = "loud"
	errs := validationErrors(t, cfg)
	assert.True(t, containsPrefix(errs, "logger.level"), "errors: %v", errs)
}

func TestValidateAccumulates(t *testing.T) {
	cfg := validConfig()
	cfg.Bot.Discord.Token = ""
	cfg.Files.Store = ""
	cfg.Tracer.Exporter = "jaeger"
	errs := validationErrors(t, cfg)
	assert.GreaterOrEqual(t, len(errs), 3)
}

func TestValidationErrorMessage(t *testing.T) {
	ve := &ValidationError{}
	assert.False(t, ve.HasErrors())
	ve.Add("a %d", 1)
	ve.Add("b")
	assert.True(t, ve.HasErrors())
	assert.Equal(t, "config validation failed:\n  - a 1\n  - b", ve.Error())
}
