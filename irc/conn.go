// Copyright 2026 The Crowbot Authors
// SPDX-License-Identifier: Apache-2.0

package irc

import (
	"bufio"
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"
)

// dialTimeout bounds the connect phase, including the TLS handshake.
const dialTimeout = 30 * time.Second

// writeDeadline bounds each outbound line. The server reading slower
// than this means the connection is effectively dead.
const writeDeadline = 30 * time.Second

// maxLineLength is the longest inbound line we accept. The protocol
// caps lines at 512 bytes but some networks send longer lines with
// message tags attached; 4KB absorbs those.
const maxLineLength = 4096

// Events receives parsed protocol activity from a connection. Any nil
// callback is skipped. Callbacks run on the connection's read
// goroutine: they must not block, and they may call back into the
// Conn's outbound methods.
type Events struct {
	// Welcome fires on the 001 numeric, once registration has
	// completed and the server accepts commands.
	Welcome func()

	// Message fires for each channel or private PRIVMSG that is not
	// a CTCP action.
	Message func(nick, target, text string)

	// Action fires for CTCP ACTION payloads ("/me waves").
	Action func(nick, target, text string)

	// Notice fires for each NOTICE.
	Notice func(nick, target, text string)

	// Joined fires when our own JOIN to a channel is confirmed.
	Joined func(channel string)

	// UserJoined fires when another user joins a channel we are in.
	UserJoined func(nick, channel string)

	// Renamed fires on a NICK change, including our own.
	Renamed func(oldNick, newNick string)

	// Invited fires when we receive an INVITE to a channel.
	Invited func(channel string)
}

// Config configures a Conn.
type Config struct {
	// Network is the configured network name, used only for logging.
	// Required.
	Network string

	// Address is the host:port to connect to. Required.
	Address string

	// TLS enables TLS on the connection.
	TLS bool

	// Nick is the nickname to register with. Required.
	Nick string

	// RealName is the realname field of the USER command. Defaults
	// to Nick.
	RealName string

	// Logger is the structured logger. Required.
	Logger *slog.Logger

	// Events receives parsed protocol activity.
	Events Events
}

// Conn is one IRC client connection. Construct with New, then Run.
// The outbound methods (Privmsg, Notice, Join) are safe from any
// goroutine once Run has dialed.
type Conn struct {
	config Config
	logger *slog.Logger

	writeMu sync.Mutex
	netConn net.Conn

	nickMu sync.Mutex
	nick   string
}

// New creates an unconnected Conn.
func New(config Config) *Conn {
	if config.Network == "" {
		panic("irc.Conn: Network is required")
	}
	if config.Address == "" {
		panic("irc.Conn: Address is required")
	}
	if config.Nick == "" {
		panic("irc.Conn: Nick is required")
	}
	if config.Logger == nil {
		panic("irc.Conn: Logger is required")
	}
	if config.RealName == "" {
		config.RealName = config.Nick
	}
	return &Conn{
		config: config,
		logger: config.Logger.With("network", config.Network),
		nick:   config.Nick,
	}
}

// Nick returns the connection's current nickname. This tracks NICK
// changes applied to us by the server.
func (c *Conn) Nick() string {
	c.nickMu.Lock()
	defer c.nickMu.Unlock()
	return c.nick
}

// Run dials the server, registers, and processes inbound lines until
// the connection drops or ctx is cancelled. Returns nil on clean
// context cancellation, otherwise the error that ended the
// connection.
func (c *Conn) Run(ctx context.Context) error {
	dialer := net.Dialer{Timeout: dialTimeout}

	var netConn net.Conn
	var err error
	if c.config.TLS {
		tlsDialer := tls.Dialer{NetDialer: &dialer}
		netConn, err = tlsDialer.DialContext(ctx, "tcp", c.config.Address)
	} else {
		netConn, err = dialer.DialContext(ctx, "tcp", c.config.Address)
	}
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", c.config.Address, err)
	}

	c.writeMu.Lock()
	c.netConn = netConn
	c.writeMu.Unlock()

	// Unblock the read loop when the context is cancelled.
	stop := context.AfterFunc(ctx, func() {
		netConn.Close()
	})
	defer stop()
	defer netConn.Close()

	c.logger.Info("connected", "address", c.config.Address, "tls", c.config.TLS)

	if err := c.register(); err != nil {
		return err
	}

	scanner := bufio.NewScanner(netConn)
	scanner.Buffer(make([]byte, maxLineLength), maxLineLength)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		message, err := ParseMessage(line)
		if err != nil {
			c.logger.Debug("unparseable line", "line", line, "error", err)
			continue
		}
		if err := c.handle(message); err != nil {
			return err
		}
	}

	if ctx.Err() != nil {
		return nil
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading from %s: %w", c.config.Address, err)
	}
	return fmt.Errorf("connection to %s closed by server", c.config.Address)
}

// register sends the NICK/USER registration sequence.
func (c *Conn) register() error {
	if err := c.writeLine("NICK " + c.config.Nick); err != nil {
		return err
	}
	return c.writeLine("USER " + c.config.Nick + " 0 * :" + c.config.RealName)
}

// handle dispatches one parsed message. A returned error terminates
// the connection.
func (c *Conn) handle(message Message) error {
	switch message.Command {
	case "PING":
		return c.writeLine("PONG :" + message.Trailing)

	case "ERROR":
		return fmt.Errorf("server error: %s", message.Trailing)

	case "001":
		c.logger.Info("registered", "nick", c.Nick())
		if c.config.Events.Welcome != nil {
			c.config.Events.Welcome()
		}

	case "PRIVMSG":
		target := message.Param(0)
		if text, ok := ctcpAction(message.Trailing); ok {
			if c.config.Events.Action != nil {
				c.config.Events.Action(message.Nick, target, text)
			}
		} else if c.config.Events.Message != nil {
			c.config.Events.Message(message.Nick, target, message.Trailing)
		}

	case "NOTICE":
		if c.config.Events.Notice != nil {
			c.config.Events.Notice(message.Nick, message.Param(0), message.Trailing)
		}

	case "JOIN":
		// Some servers carry the channel as a middle parameter,
		// others as the trailing parameter.
		channel := message.Param(0)
		if channel == "" {
			channel = message.Trailing
		}
		if message.Nick == c.Nick() {
			c.logger.Info("joined channel", "channel", channel)
			if c.config.Events.Joined != nil {
				c.config.Events.Joined(channel)
			}
		} else if c.config.Events.UserJoined != nil {
			c.config.Events.UserJoined(message.Nick, channel)
		}

	case "NICK":
		newNick := message.Param(0)
		if newNick == "" {
			newNick = message.Trailing
		}
		c.nickMu.Lock()
		if message.Nick == c.nick {
			c.nick = newNick
		}
		c.nickMu.Unlock()
		if c.config.Events.Renamed != nil {
			c.config.Events.Renamed(message.Nick, newNick)
		}

	case "INVITE":
		channel := message.Param(1)
		if channel == "" {
			channel = message.Trailing
		}
		c.logger.Info("invited", "channel", channel, "by", message.Nick)
		if c.config.Events.Invited != nil {
			c.config.Events.Invited(channel)
		}
	}
	return nil
}

// Privmsg sends a PRIVMSG to a channel or nick.
func (c *Conn) Privmsg(target, text string) error {
	return c.writeLine("PRIVMSG " + target + " :" + sanitize(text))
}

// Notice sends a NOTICE to a channel or nick.
func (c *Conn) Notice(target, text string) error {
	return c.writeLine("NOTICE " + target + " :" + sanitize(text))
}

// Join requests membership in a channel. The join is confirmed
// asynchronously via Events.Joined.
func (c *Conn) Join(channel string) error {
	return c.writeLine("JOIN " + channel)
}

// writeLine sends one protocol line, appending CRLF.
func (c *Conn) writeLine(line string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.netConn == nil {
		return fmt.Errorf("not connected to %s", c.config.Address)
	}
	c.netConn.SetWriteDeadline(time.Now().Add(writeDeadline))
	if _, err := c.netConn.Write([]byte(line + "\r\n")); err != nil {
		return fmt.Errorf("writing to %s: %w", c.config.Address, err)
	}
	return nil
}

// sanitize strips characters that would let message text inject
// additional protocol lines.
func sanitize(text string) string {
	return strings.Map(func(r rune) rune {
		if r == '\r' || r == '\n' || r == 0 {
			return -1
		}
		return r
	}, text)
}
