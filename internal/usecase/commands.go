package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"googlebot/internal/adapter/scrape"
	"googlebot/internal/domain"
	"googlebot/internal/infra/tracer"
)

// ConfigStore is the flat key-value settings file.
type ConfigStore interface {
	Get(key string) (int, error)
	Set(key string, value int) (bool, error)
	Raw() (string, error)
}

// HelpSource serves help documents.
type HelpSource interface {
	// Load returns a topic, falling back to the overview.
	Load(topic string) (string, error)
	Overview() (string, error)
	// Topic returns a topic without fallback.
	Topic(topic string) (string, error)
}

// Responses for the network-backed commands.
const (
	wolframNotConfigured = "Wolfram|Alpha is not configured"
	wolframNoAnswer      = "Sorry, I don't understand your query."
	stormMapNotFound     = "Could not find the tropical outlook map."
)

const defaultDieSides = 6

// CommandsConfig holds the file and endpoint settings for Commands.
type CommandsConfig struct {
	ChangelogPath  string
	WolframAppID   string
	WolframBaseURL string
	StormPageURL   string
	StormMirrorURL string
}

// CommandsOption configures Commands.
type CommandsOption func(*Commands)

// WithDice replaces the random source of !roll. intn must return a value in [0, n).
func WithDice(intn func(n int64) int64) CommandsOption {
	return func(c *Commands) {
		c.intn = intn
	}
}

// Commands executes "!" commands.
type Commands struct {
	store   ConfigStore
	help    HelpSource
	fetcher domain.Fetcher
	cfg     CommandsConfig
	intn    func(n int64) int64
	logger  *slog.Logger
}

// NewCommands creates a command executor. fetcher is used by !wa and !noaa
// and may be nil when neither is reachable.
func NewCommands(store ConfigStore, help HelpSource, fetcher domain.Fetcher, cfg CommandsConfig, logger *slog.Logger, opts ...CommandsOption) *Commands {
	c := &Commands{
		store:   store,
		help:    help,
		fetcher: fetcher,
		cfg:     cfg,
		intn:    rand.Int64N,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Execute runs the command text found after "!" and returns the reply.
// A missing file or failed fetch is returned as an error and no reply is produced.
func (c *Commands) Execute(ctx context.Context, raw string) (reply string, err error) {
	cmd := domain.ParseCommand(raw)

	ctx, span := tracer.StartSpan(ctx, "command."+string(cmd.Kind))
	span.SetAttributes(tracer.KeyCommand.String(string(cmd.Kind)))
	defer func() { tracer.End(span, err) }()

	if cmd.Kind != domain.CommandUnknown && cmd.HasFlag("-?") {
		reply, err = c.topicHelp(cmd.Kind)
	} else {
		reply, err = c.run(ctx, cmd)
	}
	if err != nil {
		return "", domain.WrapOp("command "+string(cmd.Kind), err)
	}

	c.logger.Debug("command handled", "command", raw, "response", reply)
	return reply, nil
}

func (c *Commands) run(ctx context.Context, cmd domain.Command) (string, error) {
	switch cmd.Kind {
	case domain.CommandVersion:
		return c.version()
	case domain.CommandChangelog:
		return c.changelog(cmd)
	case domain.CommandConfig:
		return c.config(cmd)
	case domain.CommandRoll:
		return c.roll(cmd), nil
	case domain.CommandHelp:
		return c.helpCommand(cmd)
	case domain.CommandWolfram:
		return c.wolfram(ctx, cmd)
	case domain.CommandStorm:
		return c.storm(ctx)
	default:
		return fmt.Sprintf("Command \"%s\" not recognized", cmd.Raw), nil
	}
}

// helpTopics maps commands to their help document names.
var helpTopics = map[domain.CommandKind]string{
	domain.CommandWolfram: "wa",
	domain.CommandStorm:   "noaa",
}

func (c *Commands) topicHelp(kind domain.CommandKind) (string, error) {
	topic, ok := helpTopics[kind]
	if !ok {
		topic = string(kind)
	}
	text, err := c.help.Topic(topic)
	if err != nil {
		return "", err
	}
	return codeBlock(text), nil
}

func (c *Commands) readChangelog() (string, error) {
	data, err := os.ReadFile(c.cfg.ChangelogPath)
	if err != nil {
		return "", domain.NewDomainError("Commands.changelog", domain.ErrStoreIO, err.Error())
	}
	return string(data), nil
}

func (c *Commands) version() (string, error) {
	log, err := c.readChangelog()
	if err != nil {
		return "", err
	}
	first, _, _ := strings.Cut(log, "\n")
	return inline(strings.TrimSpace(first)), nil
}

// changelog returns the newest version block: lines from the top up to the
// first later line that starts with "v" and does not contain the first line.
func (c *Commands) changelog(cmd domain.Command) (string, error) {
	log, err := c.readChangelog()
	if err != nil {
		return "", err
	}
	if cmd.HasFlag("-f", "-full") {
		return inline(log), nil
	}

	lines := strings.SplitAfter(log, "\n")
	head := strings.TrimSpace(lines[0])
	var b strings.Builder
	for _, line := range lines {
		if strings.HasPrefix(line, "v") && !strings.Contains(line, head) {
			break
		}
		b.WriteString(line)
	}
	return inline(b.String()), nil
}

func (c *Commands) config(cmd domain.Command) (string, error) {
	if !cmd.HasFlag("-s", "-set") {
		raw, err := c.store.Raw()
		if err != nil {
			return "", err
		}
		return "Contents of config file:\n" + inline(raw), nil
	}

	// "-s" also finds "-set"; the tokens after the flag are name and value.
	fields := strings.Fields(cmd.Raw[strings.Index(cmd.Raw, "-s"):])
	var param, rawValue string
	if len(fields) > 1 {
		param = fields[1]
	}
	if len(fields) > 2 {
		rawValue = fields[2]
	}
	value, err := strconv.Atoi(rawValue)
	if err != nil {
		value = 1
	}

	ok, err := c.store.Set(param, value)
	if err != nil {
		return "", err
	}
	if !ok {
		return inline(fmt.Sprintf("Failed to set \"%s\" to value \"%d\"", param, value)), nil
	}
	return inline(fmt.Sprintf("Set \"%s\" to value \"%d\"", param, value)), nil
}

// roll rolls a die whose size is the first all-digit token. The result lies
// in [1, N), so N itself is never rolled.
func (c *Commands) roll(cmd domain.Command) string {
	sides := int64(defaultDieSides)
	for _, tok := range strings.Fields(cmd.Raw) {
		if !isDigits(tok) {
			continue
		}
		n, err := strconv.ParseInt(tok, 10, 64)
		if errors.Is(err, strconv.ErrRange) {
			n = math.MaxInt64
		}
		sides = max(n, 2)
		break
	}
	result := 1 + c.intn(sides-1)
	return fmt.Sprintf("You rolled a %d on a %d-sided die.", result, sides)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func (c *Commands) helpCommand(cmd domain.Command) (string, error) {
	var (
		text string
		err  error
	)
	if topic := strings.TrimSpace(cmd.Args()); topic != "" {
		text, err = c.help.Load(topic)
	} else {
		text, err = c.help.Overview()
	}
	if err != nil {
		return "", err
	}
	return codeBlock(text), nil
}

func (c *Commands) wolfram(ctx context.Context, cmd domain.Command) (string, error) {
	if c.cfg.WolframAppID == "" || c.fetcher == nil {
		return wolframNotConfigured, nil
	}
	question := strings.TrimSpace(cmd.Args())
	if question == "" {
		return wolframNoAnswer, nil
	}

	q := url.Values{}
	q.Set("appid", c.cfg.WolframAppID)
	q.Set("input", question)
	body, err := c.fetcher.Fetch(ctx, c.cfg.WolframBaseURL+"?"+q.Encode(), http.Header{})
	if err != nil {
		return "", err
	}

	answer, ok := scrape.WolframAnswer(string(body))
	if !ok {
		c.logger.Debug("wolfram answer not found", "question", question)
		return wolframNoAnswer, nil
	}
	return answer, nil
}

func (c *Commands) storm(ctx context.Context) (string, error) {
	if c.cfg.StormMirrorURL != "" {
		return c.cfg.StormMirrorURL, nil
	}
	if c.fetcher == nil {
		return stormMapNotFound, nil
	}

	body, err := c.fetcher.Fetch(ctx, c.cfg.StormPageURL, http.Header{})
	if err != nil {
		return "", err
	}
	path, ok := scrape.StormMapPath(string(body))
	if !ok {
		return stormMapNotFound, nil
	}

	base, err := url.Parse(c.cfg.StormPageURL)
	if err != nil {
		return "", domain.NewDomainError("Commands.storm", domain.ErrInvalidInput, err.Error())
	}
	ref, err := url.Parse(path)
	if err != nil {
		c.logger.Debug("storm map path unparsable", "path", path, "error", err)
		return stormMapNotFound, nil
	}
	return base.ResolveReference(ref).String(), nil
}

// inline wraps s in a code block on the same line.
func inline(s string) string { return "```" + s + "```" }

// codeBlock wraps s in a code block on its own lines.
func codeBlock(s string) string { return "```\n" + s + "\n```" }
