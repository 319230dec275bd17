// Copyright 2026 The Crowbot Authors
// SPDX-License-Identifier: Apache-2.0

// Package irc implements the client side of the IRC line protocol:
// connection registration, message parsing, ping handling, and the
// small set of commands the bot sends (PRIVMSG, NOTICE, JOIN, NICK).
//
// The package deliberately stops at the wire protocol. Connection
// supervision, channel state, and reply logic live in the gateway
// package; this package turns a TCP (or TLS) stream into a series of
// event callbacks and accepts outbound commands.
package irc
