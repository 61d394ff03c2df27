//go:build slack

package main

import (
	"fmt"
	"log/slog"

	"googlebot/internal/adapter/channel"
	"googlebot/internal/domain"
	"googlebot/internal/infra/config"
)

func buildSlackChannel(bc config.BotConfig, log *slog.Logger) (domain.Channel, error) {
	if bc.Slack.BotToken == "" || bc.Slack.AppToken == "" {
		return nil, fmt.Errorf("slack.bot_token and slack.app_token are required")
	}
	var opts []channel.SlackOption
	if len(bc.Slack.ChannelIDs) > 0 {
		opts = append(opts, channel.WithSlackChannels(bc.Slack.ChannelIDs))
	}
	return channel.NewSlackChannel(bc.Slack.BotToken, bc.Slack.AppToken, log, opts...), nil
}
