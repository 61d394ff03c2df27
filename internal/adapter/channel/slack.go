//go:build slack

package channel

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"

	"googlebot/internal/domain"
)

// SlackOption configures the Slack channel.
type SlackOption func(*SlackChannel)

// WithSlackChannels limits the bot to specific channel IDs.
func WithSlackChannels(ids []string) SlackOption {
	return func(s *SlackChannel) {
		s.channelIDs = make(map[string]bool, len(ids))
		for _, id := range ids {
			s.channelIDs[id] = true
		}
	}
}

// SlackChannel implements domain.Channel for Slack via Socket Mode.
// Events are handled one at a time by a single event loop.
type SlackChannel struct {
	botToken   string
	appToken   string
	api        *slack.Client
	socketCli  *socketmode.Client
	handler    domain.MessageHandler
	logger     *slog.Logger
	channelIDs map[string]bool
	botUserID  string
	userNames  sync.Map // userID -> display name
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewSlackChannel creates a Slack channel.
func NewSlackChannel(botToken, appToken string, logger *slog.Logger, opts ...SlackOption) *SlackChannel {
	s := &SlackChannel{
		botToken: botToken,
		appToken: appToken,
		logger:   logger,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *SlackChannel) Name() string { return "slack" }

func (s *SlackChannel) Start(ctx context.Context, handler domain.MessageHandler) error {
	s.handler = handler
	s.ctx, s.cancel = context.WithCancel(ctx)

	s.api = slack.New(s.botToken, slack.OptionAppLevelToken(s.appToken))
	s.socketCli = socketmode.New(s.api)

	authResp, err := s.api.AuthTestContext(ctx)
	if err != nil {
		return err
	}
	s.botUserID = authResp.UserID
	s.logger.Info("slack channel started", "bot_user_id", s.botUserID)

	go s.eventLoop()
	go func() {
		if err := s.socketCli.RunContext(s.ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("slack socket mode error", "error", err)
		}
	}()
	return nil
}

func (s *SlackChannel) Stop(_ context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}
	return nil
}

func (s *SlackChannel) Send(ctx context.Context, msg domain.OutboundMessage) error {
	if s.api == nil {
		return errors.New("slack channel not started")
	}
	_, _, err := s.api.PostMessageContext(ctx, msg.SessionID, slack.MsgOptionText(msg.Content, false))
	return err
}

func (s *SlackChannel) eventLoop() {
	for {
		select {
		case <-s.ctx.Done():
			return
		case evt := <-s.socketCli.Events:
			if evt.Type != socketmode.EventTypeEventsAPI {
				continue
			}
			eventsAPIEvent, ok := evt.Data.(slackevents.EventsAPIEvent)
			if !ok {
				continue
			}
			s.socketCli.Ack(*evt.Request)

			if ev, ok := eventsAPIEvent.InnerEvent.Data.(*slackevents.MessageEvent); ok {
				s.handleMessage(ev)
			}
		}
	}
}

// resolveUserName returns a display name for a Slack user ID.
func (s *SlackChannel) resolveUserName(userID string) string {
	if v, ok := s.userNames.Load(userID); ok {
		return v.(string)
	}
	if s.api == nil {
		return userID
	}
	info, err := s.api.GetUserInfo(userID)
	if err != nil {
		s.logger.Warn("slack: failed to resolve user name", "user_id", userID, "error", err)
		return userID
	}
	name := info.RealName
	if name == "" {
		name = info.Name
	}
	s.userNames.Store(userID, name)
	return name
}

func (s *SlackChannel) handleMessage(ev *slackevents.MessageEvent) {
	msg, ok := s.inbound(ev)
	if !ok {
		return
	}
	if err := s.handler(s.ctx, msg); err != nil {
		s.logger.Error("slack handler error", "error", err, "channel", ev.Channel)
	}
}

// inbound converts a Slack message event, passing the text on verbatim.
func (s *SlackChannel) inbound(ev *slackevents.MessageEvent) (domain.InboundMessage, bool) {
	// Other bots and edits/joins carry no user.
	if ev.User == "" || ev.BotID != "" {
		return domain.InboundMessage{}, false
	}
	if len(s.channelIDs) > 0 && !s.channelIDs[ev.Channel] {
		return domain.InboundMessage{}, false
	}

	var mentions []string
	if s.botUserID != "" {
		mentions = []string{"<@" + s.botUserID + ">"}
	}
	return domain.InboundMessage{
		SessionID:   ev.Channel,
		Content:     ev.Text,
		ChannelName: s.Name(),
		SenderID:    ev.User,
		SenderName:  s.resolveUserName(ev.User),
		BotID:       s.botUserID,
		Mentions:    mentions,
	}, true
}

var _ domain.Channel = (*SlackChannel)(nil)
