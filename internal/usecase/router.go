package usecase

import (
	"context"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"googlebot/internal/domain"
	"googlebot/internal/infra/logger"
	"googlebot/internal/infra/tracer"
)

// Router decides whether an inbound message is addressed to the bot and
// hands it to the command executor, image search or link search.
type Router struct {
	commands *Commands
	search   *Search
	sender   domain.Sender
	logger   *slog.Logger
}

// NewRouter creates a Router replying through sender.
func NewRouter(commands *Commands, search *Search, sender domain.Sender, logger *slog.Logger) *Router {
	return &Router{
		commands: commands,
		search:   search,
		sender:   sender,
		logger:   logger,
	}
}

// Handle implements domain.MessageHandler. Messages from the bot itself and
// messages that do not start with "<mention> " are ignored. File and network
// failures are returned without replying.
func (r *Router) Handle(ctx context.Context, msg domain.InboundMessage) (err error) {
	if msg.BotID != "" && msg.SenderID == msg.BotID {
		return nil
	}
	text, ok := addressedText(msg.Content, msg.Mentions)
	if !ok {
		return nil
	}

	reqID := newRequestID()
	log := logger.ForRequest(r.logger, reqID, msg.ChannelName)

	ctx, span := tracer.StartSpan(ctx, "router.handle")
	span.SetAttributes(
		tracer.KeyRequestID.String(reqID),
		tracer.KeyChannel.String(msg.ChannelName),
	)
	defer func() { tracer.End(span, err) }()

	start := time.Now()
	switch {
	case strings.HasPrefix(text, "!"):
		err = r.handleCommand(ctx, msg, text[1:])
	case isImageRequest(text):
		err = r.handleImages(ctx, msg, text, log)
	default:
		err = r.handleLinks(ctx, msg, text)
	}
	if err != nil {
		log.Error("message not handled",
			"error", err,
			"code", domain.ErrorCodeOf(err),
			"sender", msg.SenderID,
		)
		return domain.WrapOp("route", err)
	}

	log.Debug("message handled", "input", text, "duration", time.Since(start))
	return nil
}

func (r *Router) handleCommand(ctx context.Context, msg domain.InboundMessage, command string) error {
	reply, err := r.commands.Execute(ctx, command)
	if err != nil {
		return err
	}
	return r.reply(ctx, msg, reply)
}

func (r *Router) handleLinks(ctx context.Context, msg domain.InboundMessage, query string) error {
	res, err := r.search.Links(ctx, query)
	if err != nil {
		return err
	}
	return r.reply(ctx, msg, FormatLinks(res.Links))
}

func (r *Router) handleImages(ctx context.Context, msg domain.InboundMessage, text string, log *slog.Logger) error {
	res, err := r.search.Images(ctx, text)
	if err != nil {
		return err
	}
	for i, link := range res.Links {
		// Chat platforms reject empty messages.
		if link == "" {
			log.Debug("skipping empty image result", "index", i)
			continue
		}
		if err := r.reply(ctx, msg, link); err != nil {
			return err
		}
	}
	return nil
}

func (r *Router) reply(ctx context.Context, msg domain.InboundMessage, content string) error {
	return r.sender.Send(ctx, domain.OutboundMessage{SessionID: msg.SessionID, Content: content})
}

// addressedText returns the text after "<mention> " for the first mention
// that content starts with.
func addressedText(content string, mentions []string) (string, bool) {
	for _, m := range mentions {
		if m == "" {
			continue
		}
		if rest, ok := strings.CutPrefix(content, m+" "); ok {
			return rest, true
		}
	}
	return "", false
}

func newRequestID() string {
	t := time.Now()
	entropy := ulid.Monotonic(rand.New(rand.NewSource(t.UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}
