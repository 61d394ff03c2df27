package channel

import (
	"context"
	"errors"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"googlebot/internal/domain"
)

// DiscordOption configures the Discord channel.
type DiscordOption func(*DiscordChannel)

// WithDiscordGuild limits the bot to a specific guild.
func WithDiscordGuild(guildID string) DiscordOption {
	return func(d *DiscordChannel) { d.guildID = guildID }
}

// WithDiscordChannels limits the bot to specific channel IDs.
func WithDiscordChannels(ids []string) DiscordOption {
	return func(d *DiscordChannel) {
		d.channelIDs = make(map[string]bool, len(ids))
		for _, id := range ids {
			d.channelIDs[id] = true
		}
	}
}

// DiscordChannel implements domain.Channel for Discord via discordgo.
//
// Events are delivered synchronously, so one message is handled to
// completion before the next is read.
type DiscordChannel struct {
	token      string
	session    *discordgo.Session
	handler    domain.MessageHandler
	logger     *slog.Logger
	guildID    string
	channelIDs map[string]bool
	botUserID  string
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewDiscordChannel creates a Discord bot channel.
func NewDiscordChannel(token string, logger *slog.Logger, opts ...DiscordOption) *DiscordChannel {
	d := &DiscordChannel{
		token:  token,
		logger: logger,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

func (d *DiscordChannel) Name() string { return "discord" }

func (d *DiscordChannel) Start(ctx context.Context, handler domain.MessageHandler) error {
	d.handler = handler
	d.ctx, d.cancel = context.WithCancel(ctx)

	dg, err := discordgo.New("Bot " + d.token)
	if err != nil {
		return err
	}
	d.session = dg
	d.session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent
	d.session.SyncEvents = true

	d.session.AddHandler(d.onReady)
	d.session.AddHandler(d.onMessageCreate)

	if err := d.session.Open(); err != nil {
		return err
	}

	d.botUserID = d.session.State.User.ID
	d.logger.Info("discord channel started", "user_id", d.botUserID)
	return nil
}

func (d *DiscordChannel) Stop(_ context.Context) error {
	if d.cancel != nil {
		d.cancel()
	}
	if d.session != nil {
		return d.session.Close()
	}
	return nil
}

func (d *DiscordChannel) Send(_ context.Context, msg domain.OutboundMessage) error {
	if d.session == nil {
		return errors.New("discord channel not started")
	}
	_, err := d.session.ChannelMessageSend(msg.SessionID, msg.Content)
	return err
}

func (d *DiscordChannel) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	d.logger.Info("discord connected",
		"user", r.User.Username,
		"user_id", r.User.ID,
		"guilds", len(r.Guilds),
	)
}

func (d *DiscordChannel) onMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	msg, ok := d.inbound(m)
	if !ok {
		return
	}
	if err := d.handler(d.ctx, msg); err != nil {
		d.logger.Error("discord handler error", "error", err, "channel", m.ChannelID)
	}
}

// inbound converts a Discord message. Content is passed on verbatim; the
// router decides whether it is addressed to the bot.
func (d *DiscordChannel) inbound(m *discordgo.MessageCreate) (domain.InboundMessage, bool) {
	if m.Message == nil || m.Author == nil {
		return domain.InboundMessage{}, false
	}
	if d.guildID != "" && m.GuildID != d.guildID {
		return domain.InboundMessage{}, false
	}
	if len(d.channelIDs) > 0 && !d.channelIDs[m.ChannelID] {
		return domain.InboundMessage{}, false
	}

	return domain.InboundMessage{
		SessionID:   m.ChannelID,
		Content:     m.Content,
		ChannelName: d.Name(),
		SenderID:    m.Author.ID,
		SenderName:  m.Author.Username,
		GroupID:     m.GuildID,
		BotID:       d.botUserID,
		Mentions:    DiscordMentions(d.botUserID),
	}, true
}

// DiscordMentions returns both forms of a user mention: "<@id>" and the
// nickname form "<@!id>".
func DiscordMentions(userID string) []string {
	if userID == "" {
		return nil
	}
	return []string{"<@" + userID + ">", "<@!" + userID + ">"}
}

var _ domain.Channel = (*DiscordChannel)(nil)
