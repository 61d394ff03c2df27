package config

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

func init() {
	// Report fields by their YAML names.
	validation.ErrorTag = "yaml"
}

// ValidationError accumulates config validation errors.
type ValidationError struct {
	Errors []string
}

func (v *ValidationError) Error() string {
	return "config validation failed:\n  - " + strings.Join(v.Errors, "\n  - ")
}

// HasErrors reports whether any validation errors have been recorded.
func (v *ValidationError) HasErrors() bool {
	return len(v.Errors) > 0
}

// Add records a formatted validation error.
func (v *ValidationError) Add(format string, args ...interface{}) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}

// addAll flattens an ozzo-validation result under the given section prefix.
func (v *ValidationError) addAll(section string, err error) {
	if err == nil {
		return
	}
	var errs validation.Errors
	if !errors.As(err, &errs) {
		v.Add("%s: %v", section, err)
		return
	}
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v.addAll(section+"."+k, errs[k])
	}
}

// Validate checks cfg for structural correctness. It returns a *ValidationError
// when one or more problems are found, allowing callers to inspect all issues.
func Validate(cfg *Config) error {
	ve := &ValidationError{}
	validateBot(cfg, ve)
	validateFiles(cfg, ve)
	validateSearch(cfg, ve)
	validateLogger(cfg, ve)
	validateTracer(cfg, ve)
	if ve.HasErrors() {
		return ve
	}
	return nil
}

func validateBot(cfg *Config, ve *ValidationError) {
	b := &cfg.Bot
	ve.addAll("bot", validation.ValidateStruct(b,
		validation.Field(&b.Channel, validation.Required, validation.In("discord", "slack")),
	))
	switch b.Channel {
	case "discord":
		d := &b.Discord
		ve.addAll("bot.discord", validation.ValidateStruct(d,
			validation.Field(&d.Token, validation.Required),
		))
	case "slack":
		s := &b.Slack
		ve.addAll("bot.slack", validation.ValidateStruct(s,
			validation.Field(&s.BotToken, validation.Required),
			validation.Field(&s.AppToken, validation.Required),
		))
	}
}

func validateFiles(cfg *Config, ve *ValidationError) {
	f := &cfg.Files
	ve.addAll("files", validation.ValidateStruct(f,
		validation.Field(&f.Store, validation.Required),
		validation.Field(&f.Changelog, validation.Required),
		validation.Field(&f.HelpDir, validation.Required),
		validation.Field(&f.Overview, validation.Required),
	))
}

func validateSearch(cfg *Config, ve *ValidationError) {
	s := &cfg.Search
	ve.addAll("search", validation.ValidateStruct(s,
		validation.Field(&s.Backend, validation.Required, validation.In("http", "chromedp")),
		validation.Field(&s.BaseURL, validation.Required, validation.By(absoluteURL)),
		validation.Field(&s.Timeout, validation.Min(0)),
		validation.Field(&s.MaxBodyBytes, validation.Min(int64(1024))),
	))
	validateMarkers("search.text_markers", &s.TextMarkers, ve)
	validateMarkers("search.image_markers", &s.ImageMarkers, ve)

	if s.Breaker.Enabled {
		br := &s.Breaker
		ve.addAll("search.breaker", validation.ValidateStruct(br,
			validation.Field(&br.MaxFailures, validation.Required),
			validation.Field(&br.Timeout, validation.Min(0)),
			validation.Field(&br.Interval, validation.Min(0)),
		))
	}
	if cfg.Wolfram.AppID != "" {
		w := &cfg.Wolfram
		ve.addAll("wolfram", validation.ValidateStruct(w,
			validation.Field(&w.BaseURL, validation.Required, validation.By(absoluteURL)),
		))
	}
	n := &cfg.NOAA
	ve.addAll("noaa", validation.ValidateStruct(n,
		validation.Field(&n.PageURL, validation.Required, validation.By(absoluteURL)),
		validation.Field(&n.MirrorURL, validation.By(absoluteURL)),
	))
	if cfg.Debug.Enabled && cfg.Debug.DumpPath == "" {
		ve.Add("debug.dump_path must not be empty when debug is enabled")
	}
}

func validateMarkers(section string, m *MarkersConfig, ve *ValidationError) {
	ve.addAll(section, validation.ValidateStruct(m,
		validation.Field(&m.Anchor, validation.Required),
		validation.Field(&m.LinkStart, validation.Required),
		validation.Field(&m.LinkEnd, validation.Required),
	))
}

func validateLogger(cfg *Config, ve *ValidationError) {
	l := &cfg.Logger
	ve.addAll("logger", validation.ValidateStruct(l,
		validation.Field(&l.Level, validation.In("debug", "info", "warn", "warning", "error")),
		validation.Field(&l.Format, validation.In("text", "json")),
	))
}

func validateTracer(cfg *Config, ve *ValidationError) {
	t := &cfg.Tracer
	ve.addAll("tracer", validation.ValidateStruct(t,
		validation.Field(&t.Exporter, validation.In("noop", "stdout")),
	))
}

// absoluteURL is a validation.RuleFunc accepting empty strings and http(s) URLs.
func absoluteURL(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("must be an http or https URL")
	}
	if u.Host == "" {
		return errors.New("must include a host")
	}
	return nil
}
