// Copyright 2026 The Crowbot Authors
// SPDX-License-Identifier: Apache-2.0

package router

import (
	"log/slog"
	"sync"

	"github.com/crowbot-irc/crowbot/lib/ref"
)

// State is a connection's position in its lifecycle state machine.
type State int

const (
	// StateConnecting: transport reported a fresh connection; nothing
	// sent yet.
	StateConnecting State = iota

	// StateAuthenticating: the identify request has been sent to the
	// network's authentication service; waiting for confirmation.
	StateAuthenticating

	// StateJoining: identification confirmed; joins issued for the
	// connection's configured channel list.
	StateJoining

	// StateActive: every configured channel has been joined. The
	// connection participates in broadcasts.
	StateActive
)

// String returns the lowercase state name for logs.
func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateAuthenticating:
		return "authenticating"
	case StateJoining:
		return "joining"
	case StateActive:
		return "active"
	default:
		return "unknown"
	}
}

// SendFunc delivers one line of text to a channel on a single
// connection. The channel is the bare wire-level name; the connection
// knows its own network. Sends are fire-and-forget handoffs to the
// transport — failures surface as a transport disconnect, not an
// error here.
type SendFunc func(channelName, text string)

// BroadcastLog receives a copy of every broadcast for the channel's
// append-only log.
type BroadcastLog interface {
	Message(channel ref.ChannelID, nick, text string)
}

// Conn is one registered connection record. All mutable fields are
// guarded by the owning Pool's mutex; transport goroutines interact
// with a Conn only through Pool methods.
type Conn struct {
	network  string
	autojoin []ref.ChannelID
	send     SendFunc

	state         State
	joined        map[ref.ChannelID]struct{}
	reachedActive bool
}

// Network returns the chat network this connection is logged into.
func (c *Conn) Network() string { return c.network }

// Config configures a Pool.
type Config struct {
	// Nickname is the bot's own nick, used as the sender identity
	// when logging broadcasts. Required.
	Nickname string

	// ExpectedConnections is the number of configured networks. The
	// ready signal fires when this many connections have reached
	// Active. Required (> 0).
	ExpectedConnections int

	// Log receives a copy of every broadcast. Required.
	Log BroadcastLog

	// Logger is the structured logger. Required.
	Logger *slog.Logger
}

// Pool owns the set of live connection records and the process-wide
// readiness signal. Constructed once at startup; connections register
// through Register rather than mutating any shared global.
type Pool struct {
	nickname string
	expected int
	log      BroadcastLog
	logger   *slog.Logger

	mu    sync.RWMutex
	conns map[*Conn]struct{}

	// activated counts connections that have ever reached Active.
	// It never decrements — a disconnect after activation does not
	// un-fire readiness.
	activated int
	ready     chan struct{}
	readyOnce sync.Once
}

// NewPool creates the connection pool. Panics on missing required
// configuration — these are wiring bugs, not runtime conditions.
func NewPool(config Config) *Pool {
	if config.Nickname == "" {
		panic("router.Pool: Nickname is required")
	}
	if config.ExpectedConnections <= 0 {
		panic("router.Pool: ExpectedConnections must be positive")
	}
	if config.Log == nil {
		panic("router.Pool: Log is required")
	}
	if config.Logger == nil {
		panic("router.Pool: Logger is required")
	}
	return &Pool{
		nickname: config.Nickname,
		expected: config.ExpectedConnections,
		log:      config.Log,
		logger:   config.Logger,
		conns:    make(map[*Conn]struct{}),
		ready:    make(chan struct{}),
	}
}

// Register adds a fresh connection record in StateConnecting. Called
// by the transport each time a connection to a network succeeds,
// including reconnects — the old record for that network must have
// been removed on disconnect first.
func (p *Pool) Register(network string, autojoin []ref.ChannelID, send SendFunc) *Conn {
	conn := &Conn{
		network:  network,
		autojoin: autojoin,
		send:     send,
		state:    StateConnecting,
		joined:   make(map[ref.ChannelID]struct{}),
	}

	p.mu.Lock()
	p.conns[conn] = struct{}{}
	p.mu.Unlock()

	p.logger.Info("connection registered",
		"network", network,
		"autojoin", len(autojoin),
	)
	return conn
}

// Remove discards a connection record after a transport disconnect.
// Reconnecting is the transport's job; it registers a new record when
// it succeeds. The readiness counter is unaffected.
func (p *Pool) Remove(conn *Conn) {
	p.mu.Lock()
	delete(p.conns, conn)
	p.mu.Unlock()

	p.logger.Info("connection removed",
		"network", conn.network,
		"state", conn.state.String(),
	)
}

// MarkAuthenticating records that the identify request was sent.
func (p *Pool) MarkAuthenticating(conn *Conn) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if conn.state == StateConnecting {
		conn.state = StateAuthenticating
	}
}

// MarkIdentified moves the connection to StateJoining on the confirmed
// identification notice. Returns false when the connection was not
// waiting for one — a stray or duplicate notice is ignored, and the
// caller must not issue joins.
func (p *Pool) MarkIdentified(conn *Conn) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if conn.state != StateAuthenticating {
		return false
	}
	conn.state = StateJoining
	return true
}

// MarkJoined records a confirmed channel join. When the connection is
// in StateJoining and all of its configured channels are joined, it
// becomes Active and counts toward readiness. Joins outside the
// configured list (an accepted invite) are tracked for routing but do
// not gate activation.
func (p *Pool) MarkJoined(conn *Conn, channel ref.ChannelID) {
	p.mu.Lock()
	defer p.mu.Unlock()

	conn.joined[channel] = struct{}{}

	if conn.state != StateJoining {
		return
	}
	for _, configured := range conn.autojoin {
		if _, ok := conn.joined[configured]; !ok {
			return
		}
	}

	conn.state = StateActive
	p.logger.Info("connection active", "network", conn.network)

	if !conn.reachedActive {
		conn.reachedActive = true
		p.activated++
		if p.activated == p.expected {
			p.readyOnce.Do(func() { close(p.ready) })
			p.logger.Info("all connections active", "count", p.activated)
		}
	}
}

// State returns the connection's current lifecycle state.
func (p *Pool) State(conn *Conn) State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return conn.state
}

// Ready returns a channel closed exactly once, when the number of
// connections that have reached Active equals the expected count. It
// never re-opens and never fires again, regardless of later
// disconnects.
func (p *Pool) Ready() <-chan struct{} {
	return p.ready
}

// SendToChannel delivers text on every Active connection joined to the
// exact qualified channel, and logs each delivery under the bot's own
// nickname. No matching connection is a silent no-op: channels may be
// configured for routing before any connection has finished joining
// them.
func (p *Pool) SendToChannel(channel ref.ChannelID, text string) {
	p.mu.RLock()
	var targets []*Conn
	for conn := range p.conns {
		if conn.state != StateActive {
			continue
		}
		if _, ok := conn.joined[channel]; ok {
			targets = append(targets, conn)
		}
	}
	p.mu.RUnlock()

	for _, conn := range targets {
		conn.send(channel.Name(), text)
		p.log.Message(channel, p.nickname, text)
	}
}

// ActiveConnections returns the number of currently Active records.
// Unlike the readiness counter this reflects the live set — it drops
// when an active connection disconnects.
func (p *Pool) ActiveConnections() int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	count := 0
	for conn := range p.conns {
		if conn.state == StateActive {
			count++
		}
	}
	return count
}
