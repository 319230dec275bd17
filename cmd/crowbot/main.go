// Copyright 2026 The Crowbot Authors
// SPDX-License-Identifier: Apache-2.0

// crowbot is the chat-relay gateway daemon: an IRC bot with a factoid
// store, deferred tells, per-channel logs, and a GitHub webhook
// bridge that announces issue and pull request activity in chat.
//
// All state comes from a single YAML config file (see lib/config).
// The process serves three listeners: the IRC connections themselves,
// an HTTP endpoint for webhook ingestion, and a Unix admin socket
// spoken by crowbotctl.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/crowbot-irc/crowbot/gateway"
	"github.com/crowbot-irc/crowbot/lib/clock"
	"github.com/crowbot-irc/crowbot/lib/config"
	"github.com/crowbot-irc/crowbot/lib/process"
	"github.com/crowbot-irc/crowbot/lib/service"
	"github.com/crowbot-irc/crowbot/lib/version"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	var configPath string
	var logLevel string
	var showVersion bool

	flagSet := pflag.NewFlagSet("crowbot", pflag.ContinueOnError)
	flagSet.StringVarP(&configPath, "config", "c", "", "path to the YAML config file")
	flagSet.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	flagSet.BoolVar(&showVersion, "version", false, "print version information and exit")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		return err
	}

	if showVersion {
		version.Print("crowbot")
		return nil
	}

	if configPath == "" {
		configPath = os.Getenv("CROWBOT_CONFIG")
	}
	if configPath == "" {
		return fmt.Errorf("no config file: pass --config or set CROWBOT_CONFIG")
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", logLevel, err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, err := gateway.New(cfg, logger, clock.Real())
	if err != nil {
		return err
	}

	// Webhook ingestion.
	httpServer := service.NewHTTPServer(service.HTTPServerConfig{
		Address: cfg.Webhook.Listen,
		Handler: g.WebhookHandler(),
		Logger:  logger,
	})
	httpDone := make(chan error, 1)
	go func() {
		httpDone <- httpServer.Serve(ctx)
	}()

	select {
	case <-httpServer.Ready():
		logger.Info("webhook listener ready", "address", httpServer.Addr().String())
	case err := <-httpDone:
		return fmt.Errorf("webhook listener: %w", err)
	case <-ctx.Done():
		return nil
	}

	// Admin socket, if configured.
	socketDone := make(chan error, 1)
	if cfg.AdminSocket != "" {
		socketServer := service.NewSocketServer(cfg.AdminSocket, logger)
		g.RegisterAdminActions(socketServer)
		go func() {
			socketDone <- socketServer.Serve(ctx)
		}()
	}

	logger.Info("crowbot running",
		"version", version.Info(),
		"nick", cfg.Nick,
		"networks", len(cfg.Networks),
	)

	// Blocks until ctx is cancelled and the network sessions drain.
	runErr := g.Run(ctx)

	if err := <-httpDone; err != nil {
		return err
	}
	if cfg.AdminSocket != "" {
		if err := <-socketDone; err != nil {
			return err
		}
	}
	return runErr
}
