package channel

import (
	"context"
	"log/slog"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"googlebot/internal/domain"
)

func newTestLogger() *slog.Logger { return slog.Default() }

func discordMessage(author, channel, guild, content string) *discordgo.MessageCreate {
	return &discordgo.MessageCreate{Message: &discordgo.Message{
		ChannelID: channel,
		GuildID:   guild,
		Content:   content,
		Author:    &discordgo.User{ID: author, Username: "user-" + author},
	}}
}

func TestDiscordChannelName(t *testing.T) {
	ch := NewDiscordChannel("token", newTestLogger())
	assert.Equal(t, "discord", ch.Name())
}

func TestDiscordOptions(t *testing.T) {
	ch := NewDiscordChannel("tok", newTestLogger(),
		WithDiscordGuild("g"),
		WithDiscordChannels([]string{"ch1"}),
	)
	assert.Equal(t, "tok", ch.token)
	assert.Equal(t, "g", ch.guildID)
	assert.True(t, ch.channelIDs["ch1"])
}

func TestDiscordStopBeforeStart(t *testing.T) {
	ch := NewDiscordChannel("token", newTestLogger())
	assert.NoError(t, ch.Stop(context.Background()))
}

func TestDiscordSendBeforeStart(t *testing.T) {
	ch := NewDiscordChannel("token", newTestLogger())
	assert.Error(t, ch.Send(context.Background(), domain.OutboundMessage{SessionID: "c", Content: "x"}))
}

func TestDiscordInbound(t *testing.T) {
	ch := NewDiscordChannel("token", newTestLogger())
	ch.botUserID = "42"

	msg, ok := ch.inbound(discordMessage("7", "c1", "g1", "<@!42> !roll 20"))
	require.True(t, ok)
	assert.Equal(t, domain.InboundMessage{
		SessionID:   "c1",
		Content:     "<@!42> !roll 20",
		ChannelName: "discord",
		SenderID:    "7",
		SenderName:  "user-7",
		GroupID:     "g1",
		BotID:       "42",
		Mentions:    []string{"<@42>", "<@!42>"},
	}, msg)
}

func TestDiscordInboundKeepsOwnMessages(t *testing.T) {
	ch := NewDiscordChannel("token", newTestLogger())
	ch.botUserID = "42"

	// Self-filtering happens in the router, which sees BotID == SenderID.
	msg, ok := ch.inbound(discordMessage("42", "c1", "", "hello"))
	require.True(t, ok)
	assert.Equal(t, msg.BotID, msg.SenderID)
}

func TestDiscordInboundFilters(t *testing.T) {
	ch := NewDiscordChannel("token", newTestLogger(),
		WithDiscordGuild("g1"),
		WithDiscordChannels([]string{"c1"}),
	)
	ch.botUserID = "42"

	_, ok := ch.inbound(discordMessage("7", "c1", "other", "x"))
	assert.False(t, ok, "wrong guild")
	_, ok = ch.inbound(discordMessage("7", "c2", "g1", "x"))
	assert.False(t, ok, "wrong channel")
	_, ok = ch.inbound(&discordgo.MessageCreate{Message: &discordgo.Message{ChannelID: "c1", GuildID: "g1"}})
	assert.False(t, ok, "no author")
	_, ok = ch.inbound(discordMessage("7", "c1", "g1", "x"))
	assert.True(t, ok)
}

func TestDiscordOnMessageCreateCallsHandler(t *testing.T) {
	ch := NewDiscordChannel("token", newTestLogger())
	ch.botUserID = "42"
	ch.ctx = context.Background()

	var got []domain.InboundMessage
	ch.handler = func(_ context.Context, msg domain.InboundMessage) error {
		got = append(got, msg)
		return domain.ErrFetch
	}

	ch.onMessageCreate(nil, discordMessage("7", "c1", "", "<@42> cats"))
	require.Len(t, got, 1)
	assert.Equal(t, "<@42> cats", got[0].Content)
}

func TestDiscordMentions(t *testing.T) {
	assert.Equal(t, []string{"<@1>", "<@!1>"}, DiscordMentions("1"))
	assert.Nil(t, DiscordMentions(""))
}
