// Copyright 2026 The Crowbot Authors
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/crowbot-irc/crowbot/irc"
	"github.com/crowbot-irc/crowbot/lib/config"
	"github.com/crowbot-irc/crowbot/lib/ref"
	"github.com/crowbot-irc/crowbot/lib/router"
)

// Reconnect backoff bounds. The delay doubles on each consecutive
// failure and resets after a session that reached registration.
const (
	reconnectInitialDelay = 2 * time.Second
	reconnectMaxDelay     = 5 * time.Minute
)

// transport is the slice of irc.Conn a session sends through,
// separated so tests can substitute a recorder.
type transport interface {
	Privmsg(target, text string) error
	Join(channel string) error
}

// session holds the chat-side behavior of one live connection: the
// reply loop, tell delivery, NickServ identification, and invite
// handling. A fresh session is built for every (re)connect.
type session struct {
	g         *Gateway
	network   config.NetworkConfig
	transport transport
	poolConn  *router.Conn

	mu     sync.Mutex
	joined []ref.ChannelID

	// welcomed notes that registration completed, used to reset the
	// reconnect backoff.
	welcomed bool
}

// superviseNetwork keeps one network connected: it runs a session,
// and when the session ends it waits out the backoff and starts a
// fresh one. Returns when ctx is cancelled.
func (g *Gateway) superviseNetwork(ctx context.Context, network config.NetworkConfig) {
	delay := reconnectInitialDelay
	for ctx.Err() == nil {
		s := &session{g: g, network: network}

		conn := irc.New(irc.Config{
			Network:  network.Name,
			Address:  network.Address,
			TLS:      network.TLS,
			Nick:     g.cfg.Nick,
			RealName: g.cfg.RealName,
			Logger:   g.logger,
			Events: irc.Events{
				Welcome:    s.handleWelcome,
				Message:    s.handleMessage,
				Action:     s.handleAction,
				Notice:     s.handleNotice,
				Joined:     s.handleJoined,
				UserJoined: s.handleUserJoined,
				Renamed:    s.handleRenamed,
				Invited:    s.handleInvited,
			},
		})
		s.transport = conn
		s.poolConn = g.pool.Register(network.Name, network.ChannelIDs, func(channelName, text string) {
			conn.Privmsg(channelName, text)
		})

		err := conn.Run(ctx)
		g.pool.Remove(s.poolConn)
		if ctx.Err() != nil {
			return
		}
		g.logger.Error("connection lost",
			"network", network.Name,
			"error", err,
		)

		if s.welcomed {
			delay = reconnectInitialDelay
		}
		g.clk.Sleep(delay)
		delay *= 2
		if delay > reconnectMaxDelay {
			delay = reconnectMaxDelay
		}
	}
}

// channelID qualifies a bare channel name with the session's network.
func (s *session) channelID(name string) ref.ChannelID {
	return ref.Channel(s.network.Name, name)
}

// isChannel reports whether an IRC message target is a channel rather
// than a nick.
func isChannel(target string) bool {
	return strings.HasPrefix(target, "#") || strings.HasPrefix(target, "&")
}

// handleWelcome runs once registration completes. With a NickServ
// password configured the session identifies and waits for the
// confirmation notice before joining; without one it proceeds
// straight to the channel list.
func (s *session) handleWelcome() {
	s.mu.Lock()
	s.welcomed = true
	s.mu.Unlock()

	s.g.pool.MarkAuthenticating(s.poolConn)
	if s.g.nickservPassword != "" {
		s.transport.Privmsg("NickServ", "identify "+s.g.cfg.Nick+" "+s.g.nickservPassword)
		return
	}
	if s.g.pool.MarkIdentified(s.poolConn) {
		s.joinConfigured()
	}
}

// joinConfigured issues joins for the network's channel list.
func (s *session) joinConfigured() {
	for _, channel := range s.network.ChannelIDs {
		s.transport.Join(channel.Name())
	}
}

// handleNotice watches for the NickServ identification confirmation
// and logs channel notices.
func (s *session) handleNotice(nick, target, text string) {
	if strings.EqualFold(nick, "NickServ") && strings.Contains(text, "identified") {
		if s.g.pool.MarkIdentified(s.poolConn) {
			s.joinConfigured()
		}
	}
	if isChannel(target) {
		s.g.chanlog.Notice(s.channelID(target), nick, text)
	}
}

// handleMessage logs the line, runs it through the dispatcher, and
// sends any reply back addressed to the sender.
func (s *session) handleMessage(nick, target, text string) {
	if !isChannel(target) {
		return
	}
	channel := s.channelID(target)
	s.g.chanlog.Message(channel, nick, text)

	reply, ok := s.g.dispatcher.Dispatch(nick, channel, text)
	if !ok {
		return
	}
	s.send(channel, nick+": "+reply)
}

// handleAction logs "/me" lines. Actions never carry commands.
func (s *session) handleAction(nick, target, text string) {
	if isChannel(target) {
		s.g.chanlog.Action(s.channelID(target), nick, text)
	}
}

// handleJoined records our own confirmed join.
func (s *session) handleJoined(channelName string) {
	channel := s.channelID(channelName)

	s.mu.Lock()
	s.joined = append(s.joined, channel)
	s.mu.Unlock()

	s.g.pool.MarkJoined(s.poolConn, channel)
}

// handleUserJoined delivers any queued tells for the arriving nick.
func (s *session) handleUserJoined(nick, channelName string) {
	s.deliverTells(nick, s.channelID(channelName))
}

// handleRenamed delivers queued tells addressed to either side of a
// rename, old name first, in every channel this session has joined.
// A message queued for the pre-rename name reaches the user the
// moment they are seen under the new one, and vice versa.
func (s *session) handleRenamed(oldNick, newNick string) {
	s.mu.Lock()
	channels := make([]ref.ChannelID, len(s.joined))
	copy(channels, s.joined)
	s.mu.Unlock()

	for _, channel := range channels {
		s.deliverTells(oldNick, channel)
		s.deliverTells(newNick, channel)
	}
}

// handleInvited accepts the invitation.
func (s *session) handleInvited(channelName string) {
	s.transport.Join(channelName)
}

// deliverTells drains and sends the queued tells for one nick in one
// channel, each as its own message.
func (s *session) deliverTells(nick string, channel ref.ChannelID) {
	for _, entry := range s.g.tells.Drain(channel, nick) {
		s.send(channel, nick+": "+entry.Render())
	}
}

// send delivers one outbound line on this session and logs it under
// the bot's own nickname.
func (s *session) send(channel ref.ChannelID, text string) {
	s.transport.Privmsg(channel.Name(), text)
	s.g.chanlog.Message(channel, s.g.cfg.Nick, text)
}
