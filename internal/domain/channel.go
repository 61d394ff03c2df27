package domain

import "context"

// InboundMessage is a message received from a channel.
//
// Content is delivered verbatim, mention included; the router decides whether
// the message is addressed to the bot.
type InboundMessage struct {
	SessionID   string
	Content     string
	ChannelName string

	SenderID   string `json:"sender_id,omitempty"`
	SenderName string `json:"sender_name,omitempty"`
	GroupID    string `json:"group_id,omitempty"`

	// BotID is the channel's own user id, used to drop self-authored messages.
	BotID string `json:"bot_id,omitempty"`
	// Mentions lists every string that addresses the bot on this channel
	// (Discord uses both "<@id>" and the nickname form "<@!id>").
	Mentions []string `json:"mentions,omitempty"`
}

// OutboundMessage is a plain text message sent back to a channel.
type OutboundMessage struct {
	SessionID string
	Content   string
}

// MessageHandler is a callback the channel invokes for every inbound message.
type MessageHandler func(ctx context.Context, msg InboundMessage) error

// Sender delivers outbound text.
type Sender interface {
	Send(ctx context.Context, msg OutboundMessage) error
}

// Channel is the interface for chat platform adapters.
type Channel interface {
	Sender
	Start(ctx context.Context, handler MessageHandler) error
	Stop(ctx context.Context) error
	Name() string
}
