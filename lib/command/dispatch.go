// Copyright 2026 The Crowbot Authors
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"fmt"
	"strings"

	"github.com/crowbot-irc/crowbot/lib/factoid"
	"github.com/crowbot-irc/crowbot/lib/ref"
)

// HandlerFunc executes one command. It receives the sender identity,
// the trimmed argument remainder, and the channel the line arrived in.
// Return the reply text, or an empty string for no reply. A returned
// error becomes a single-line error reply to the channel.
type HandlerFunc func(sender, args string, channel ref.ChannelID) (string, error)

// Handler is one entry in the dispatch table.
type Handler struct {
	// Run executes the command.
	Run HandlerFunc

	// AdminOnly gates the command to the configured admin identity.
	AdminOnly bool

	// Refusal is the fixed reply sent to non-admin callers of an
	// AdminOnly command. Required when AdminOnly is set.
	Refusal string
}

// Config configures a Dispatcher.
type Config struct {
	// Nick is the wake word (the bot's nickname). Required.
	Nick string

	// Admin is the identity allowed to run AdminOnly commands,
	// compared by exact string equality. Required.
	Admin string

	// Factoids is the fallback store for unknown command tokens.
	// Required.
	Factoids *factoid.Store
}

// Dispatcher turns inbound chat lines into replies. The handler table
// is fixed after startup; Dispatch only reads it, so no locking is
// needed around dispatch itself.
type Dispatcher struct {
	nick     string
	admin    string
	factoids *factoid.Store
	handlers map[string]Handler
}

// NewDispatcher creates a dispatcher with an empty handler table.
// Register handlers before the first Dispatch call.
func NewDispatcher(config Config) *Dispatcher {
	if config.Nick == "" {
		panic("command.Dispatcher: Nick is required")
	}
	if config.Admin == "" {
		panic("command.Dispatcher: Admin is required")
	}
	if config.Factoids == nil {
		panic("command.Dispatcher: Factoids is required")
	}
	return &Dispatcher{
		nick:     config.Nick,
		admin:    config.Admin,
		factoids: config.Factoids,
		handlers: make(map[string]Handler),
	}
}

// Register adds a handler to the table. Panics on a duplicate name or
// an AdminOnly handler without a refusal message — both are wiring
// bugs.
func (d *Dispatcher) Register(name string, handler Handler) {
	if _, exists := d.handlers[name]; exists {
		panic(fmt.Sprintf("command.Dispatcher: duplicate handler %q", name))
	}
	if handler.Run == nil {
		panic(fmt.Sprintf("command.Dispatcher: handler %q has no Run function", name))
	}
	if handler.AdminOnly && handler.Refusal == "" {
		panic(fmt.Sprintf("command.Dispatcher: admin handler %q has no refusal message", name))
	}
	d.handlers[name] = handler
}

// Dispatch processes one chat line. Returns the reply text and whether
// there is a reply at all — a line outside the command grammar, or an
// unknown token with no matching factoid, yields ("", false).
func (d *Dispatcher) Dispatch(sender string, channel ref.ChannelID, line string) (string, bool) {
	token, args, ok := d.match(line)
	if !ok {
		return "", false
	}

	handler, known := d.handlers[token]
	if !known {
		// The token itself becomes the factoid key; the argument
		// remainder is carried along but has no effect on a plain
		// text factoid.
		text, found := d.factoids.Lookup(channel, token)
		return text, found
	}

	if handler.AdminOnly && sender != d.admin {
		return handler.Refusal, true
	}

	reply, err := handler.Run(sender, args, channel)
	if err != nil {
		// Handler failures become a reply line, never a dropped
		// connection.
		return err.Error(), true
	}
	if reply == "" {
		return "", false
	}
	return reply, true
}

// match applies the wake-prefix grammar and splits out the command
// token and trimmed argument remainder.
func (d *Dispatcher) match(line string) (token, args string, ok bool) {
	line = strings.TrimSpace(line)

	var body string
	switch {
	case strings.HasPrefix(line, "!"):
		body = line[1:]
	case len(line) > len(d.nick) && strings.EqualFold(line[:len(d.nick)], d.nick):
		rest := line[len(d.nick):]
		switch {
		case rest[0] == ' ':
			body = rest[1:]
		case len(rest) >= 2 && rest[1] == ' ':
			// One punctuation character after the nick: "Crowbot: ping".
			body = rest[2:]
		default:
			return "", "", false
		}
	default:
		return "", "", false
	}

	token, args, _ = strings.Cut(body, " ")
	if token == "" {
		return "", "", false
	}
	return token, strings.TrimSpace(args), true
}
