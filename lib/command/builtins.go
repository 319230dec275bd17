// Copyright 2026 The Crowbot Authors
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"fmt"
	"strings"

	"github.com/crowbot-irc/crowbot/lib/clock"
	"github.com/crowbot-irc/crowbot/lib/factoid"
	"github.com/crowbot-irc/crowbot/lib/ref"
	"github.com/crowbot-irc/crowbot/lib/tellqueue"
)

// BuiltinDeps carries everything the built-in command set needs.
type BuiltinDeps struct {
	// HelpText is the self-description returned by the help command.
	HelpText string

	// Factoids backs the factoids listing command.
	Factoids *factoid.Store

	// Tells backs the tell and clear commands.
	Tells *tellqueue.Queue

	// Clock stamps enqueued tells.
	Clock clock.Clock

	// LogsURL reports the public log URL for a channel, if its logs
	// are published.
	LogsURL func(channel ref.ChannelID) (string, bool)

	// Rehash reloads the factoid store and webhook secrets, returning
	// the new entry counts.
	Rehash func() (secrets, factoids int, err error)
}

// RegisterBuiltins installs the standard command set on a dispatcher.
func RegisterBuiltins(d *Dispatcher, deps BuiltinDeps) {
	d.Register("ping", Handler{
		Run: func(string, string, ref.ChannelID) (string, error) {
			return "pong", nil
		},
	})

	d.Register("help", Handler{
		Run: func(string, string, ref.ChannelID) (string, error) {
			return deps.HelpText, nil
		},
	})

	d.Register("hello", Handler{
		Run: func(string, string, ref.ChannelID) (string, error) {
			return "Hello!", nil
		},
	})

	d.Register("hi", Handler{
		Run: func(string, string, ref.ChannelID) (string, error) {
			return "Hi!", nil
		},
	})

	d.Register("factoids", Handler{
		Run: func(_, _ string, channel ref.ChannelID) (string, error) {
			keys, err := deps.Factoids.List(channel)
			if err != nil {
				return "", err
			}
			return channel.String() + " factoids: " + strings.Join(keys, ", "), nil
		},
	})

	d.Register("tell", Handler{
		Run: func(sender, args string, channel ref.ChannelID) (string, error) {
			target, body, found := strings.Cut(args, " ")
			body = strings.TrimSpace(body)
			if !found || target == "" || body == "" {
				return "", fmt.Errorf("Error: tell requires a target and a message.")
			}
			deps.Tells.Enqueue(channel, target, sender, body, deps.Clock.Now())
			return "acknowledged.", nil
		},
	})

	d.Register("logs", Handler{
		Run: func(_, _ string, channel ref.ChannelID) (string, error) {
			if url, ok := deps.LogsURL(channel); ok {
				return "Logs for " + channel.Name() + ": " + url, nil
			}
			return "This channel is logged, but the logs are not available publicly yet. Channel operators can ask for publication.", nil
		},
	})

	d.Register("clear", Handler{
		AdminOnly: true,
		Refusal:   "Error: must be admin to clear tell queue.",
		Run: func(string, string, ref.ChannelID) (string, error) {
			deps.Tells.Clear()
			return "Tell queue cleared successfully.", nil
		},
	})

	d.Register("rehash", Handler{
		AdminOnly: true,
		Refusal:   "Error: must be admin to rehash.",
		Run: func(string, string, ref.ChannelID) (string, error) {
			secrets, factoids, err := deps.Rehash()
			if err != nil {
				return "", fmt.Errorf("Error: rehash failed: %v", err)
			}
			return fmt.Sprintf("%d secrets and %d factoids loaded.", secrets, factoids), nil
		},
	})
}
