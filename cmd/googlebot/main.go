package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"googlebot/internal/infra/config"
	"googlebot/internal/infra/logger"
	"googlebot/internal/infra/tracer"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "--help", "-h", "help":
			showUsage()
			return
		case "doctor":
			if err := runDoctor(); err != nil {
				os.Exit(1)
			}
			return
		case "encrypt":
			if err := runEncrypt(os.Args[2:]); err != nil {
				fmt.Fprintf(os.Stderr, "encrypt: %v\n", err)
				os.Exit(1)
			}
			return
		}
		if !strings.HasPrefix(os.Args[1], "-") {
			fmt.Fprintf(os.Stderr, "unknown command: %s\n\nRun 'googlebot --help' for usage information.\n", os.Args[1])
			os.Exit(1)
		}
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func showUsage() {
	fmt.Println(`googlebot - chat bot for web and image searches

USAGE:
    googlebot [--config PATH]
    googlebot doctor
    googlebot encrypt VALUE

COMMANDS:
    doctor      Check configuration, data files and connectivity
    encrypt     Print VALUE encrypted with GOOGLEBOT_CONFIG_KEY, for use as
                "enc:..." in the config file

    (no command) - Run the bot

FLAGS:
    -h, --help         Show this help message
    --config PATH      Config file path (default: ./googlebot.yaml)

CONFIGURATION:
    Config file: ./googlebot.yaml (optional)
    Environment: GOOGLEBOT_* variables override the config file;
                 AUTH_TOKEN and WA_API are also accepted.
    A .env file in the working directory is loaded first.`)
}

func configPath() string {
	for i, arg := range os.Args {
		if arg == "--config" && i+1 < len(os.Args) {
			return os.Args[i+1]
		}
		if strings.HasPrefix(arg, "--config=") {
			return strings.TrimPrefix(arg, "--config=")
		}
	}
	if p := os.Getenv("GOOGLEBOT_CONFIG"); p != "" {
		return p
	}
	return "googlebot.yaml"
}

func run() error {
	// 1. Config
	cfg, err := config.Load(configPath())
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// 2. Logger & Tracer
	log, logCloser, err := logger.New(cfg.Logger, cfg.Debug.Enabled, os.Stdout)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logCloser()

	ctx := context.Background()
	tracerShutdown, err := tracer.Setup(ctx, cfg.Tracer)
	if err != nil {
		return fmt.Errorf("tracer: %w", err)
	}
	defer tracerShutdown(ctx)

	// 3. Channel
	ch, err := buildChannel(cfg.Bot, log)
	if err != nil {
		return fmt.Errorf("channel: %w", err)
	}

	// 4. Fetchers, commands, search, router
	bot := buildBot(cfg, ch, log)
	defer bot.Close()

	// 5. Graceful shutdown
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("googlebot starting",
		"channel", ch.Name(),
		"backend", bot.SearchFetcher.Name(),
		"store", cfg.Files.Store,
		"wolfram", cfg.Wolfram.AppID != "",
		"debug", cfg.Debug.Enabled,
	)

	if err := ch.Start(ctx, bot.Router.Handle); err != nil {
		return fmt.Errorf("channel %s: %w", ch.Name(), err)
	}

	<-ctx.Done()
	log.Info("googlebot shutting down")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	if err := ch.Stop(stopCtx); err != nil {
		log.Error("channel stop error", "error", err)
	}
	return nil
}

func runEncrypt(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: googlebot encrypt VALUE")
	}
	passphrase := os.Getenv("GOOGLEBOT_CONFIG_KEY")
	if passphrase == "" {
		return fmt.Errorf("GOOGLEBOT_CONFIG_KEY is not set")
	}
	enc, err := config.EncryptValue(args[0], passphrase)
	if err != nil {
		return err
	}
	fmt.Println("enc:" + enc)
	return nil
}
