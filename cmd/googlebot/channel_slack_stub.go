//go:build !slack

package main

import (
	"fmt"
	"log/slog"

	"googlebot/internal/domain"
	"googlebot/internal/infra/config"
)

func buildSlackChannel(_ config.BotConfig, _ *slog.Logger) (domain.Channel, error) {
	return nil, fmt.Errorf("slack channel requires build with -tags slack")
}
