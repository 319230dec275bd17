// Copyright 2026 The Crowbot Authors
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/crowbot-irc/crowbot/lib/chanlog"
	"github.com/crowbot-irc/crowbot/lib/clock"
	"github.com/crowbot-irc/crowbot/lib/command"
	"github.com/crowbot-irc/crowbot/lib/config"
	"github.com/crowbot-irc/crowbot/lib/factoid"
	"github.com/crowbot-irc/crowbot/lib/ref"
	"github.com/crowbot-irc/crowbot/lib/router"
	"github.com/crowbot-irc/crowbot/lib/tellqueue"
	"github.com/crowbot-irc/crowbot/webhook"
)

// helpText is the self-description returned by the help command.
const helpText = "This is Crowbot.  https://github.com/crowbot-irc/crowbot"

// Gateway owns the relay's shared state and supervises its network
// sessions.
type Gateway struct {
	cfg    *config.Config
	logger *slog.Logger
	clk    clock.Clock

	factoids   *factoid.Store
	tells      *tellqueue.Queue
	bindings   *webhook.Bindings
	dispatcher *command.Dispatcher
	pool       *router.Pool
	chanlog    *chanlog.Logger

	nickservPassword string
}

// New builds a gateway from a validated config: opens the channel
// logs, loads the factoid and secret files, and wires the dispatcher
// and connection pool. Any load failure aborts startup.
func New(cfg *config.Config, logger *slog.Logger, clk clock.Clock) (*Gateway, error) {
	password, err := cfg.NickServPassword()
	if err != nil {
		return nil, err
	}

	compression, err := chanlog.ParseCompression(cfg.Logs.Compression)
	if err != nil {
		return nil, err
	}
	logs, err := chanlog.Open(cfg.Logs.Dir, compression, clk, logger)
	if err != nil {
		return nil, err
	}

	g := &Gateway{
		cfg:              cfg,
		logger:           logger,
		clk:              clk,
		factoids:         factoid.New(),
		tells:            tellqueue.New(),
		bindings:         webhook.NewBindings(),
		chanlog:          logs,
		nickservPassword: password,
	}

	if _, _, err := g.Rehash(); err != nil {
		logs.Close()
		return nil, fmt.Errorf("initial load: %w", err)
	}

	g.pool = router.NewPool(router.Config{
		Nickname:            cfg.Nick,
		ExpectedConnections: cfg.ExpectedConnections(),
		Log:                 logs,
		Logger:              logger,
	})

	g.dispatcher = command.NewDispatcher(command.Config{
		Nick:     cfg.Nick,
		Admin:    cfg.Admin,
		Factoids: g.factoids,
	})
	command.RegisterBuiltins(g.dispatcher, command.BuiltinDeps{
		HelpText: helpText,
		Factoids: g.factoids,
		Tells:    g.tells,
		Clock:    clk,
		LogsURL:  g.publicLogsURL,
		Rehash:   g.Rehash,
	})

	return g, nil
}

// publicLogsURL reports the published log URL for a channel.
func (g *Gateway) publicLogsURL(channel ref.ChannelID) (string, bool) {
	url, ok := g.cfg.Logs.PublicURLs[channel.String()]
	return url, ok
}

// Pool returns the connection pool, for readiness waits and status
// reporting.
func (g *Gateway) Pool() *router.Pool {
	return g.pool
}

// WebhookHandler returns the HTTP handler for GitHub deliveries,
// broadcasting through the gateway's pool.
func (g *Gateway) WebhookHandler() http.Handler {
	return webhook.NewHandler(webhook.HandlerConfig{
		Bindings:    g.bindings,
		Broadcaster: g.pool,
		Logger:      g.logger,
	})
}

// Rehash reloads the factoid and webhook secret files. The reload is
// all-or-nothing: both files must parse before either live structure
// is touched, so a bad edit leaves the previous state serving.
// Returns the installed secret and factoid counts.
func (g *Gateway) Rehash() (secrets, factoids int, err error) {
	scopes := map[string]map[string]string{}
	if g.cfg.FactoidsFile != "" {
		scopes, err = config.LoadFactoids(g.cfg.FactoidsFile)
		if err != nil {
			return 0, 0, err
		}
	}

	secretMap := map[string][]byte{}
	if g.cfg.SecretsFile != "" {
		secretMap, err = config.LoadSecrets(g.cfg.SecretsFile)
		if err != nil {
			return 0, 0, err
		}
	}

	factoids = g.factoids.Replace(scopes)
	secrets = g.bindings.Replace(secretMap, g.cfg.RepositoryChannels())
	g.logger.Info("state reloaded", "secrets", secrets, "factoids", factoids)
	return secrets, factoids, nil
}

// Run supervises one session per configured network until ctx is
// cancelled, then closes the channel logs. The systemd readiness
// notification fires when the pool reports every connection Active.
func (g *Gateway) Run(ctx context.Context) error {
	go func() {
		select {
		case <-g.pool.Ready():
			notifyReady(g.logger)
		case <-ctx.Done():
		}
	}()

	var wg sync.WaitGroup
	for _, network := range g.cfg.Networks {
		wg.Add(1)
		go func(network config.NetworkConfig) {
			defer wg.Done()
			g.superviseNetwork(ctx, network)
		}(network)
	}
	wg.Wait()

	return g.chanlog.Close()
}
