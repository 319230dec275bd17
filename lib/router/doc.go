// Copyright 2026 The Crowbot Authors
// SPDX-License-Identifier: Apache-2.0

// Package router tracks the gateway's live chat-network connections
// and routes outbound messages to them.
//
// [Pool] is the explicitly owned registry of connection records —
// there is no process-wide global. Each connection registers itself
// on successful connect and walks a fixed state machine (Connecting →
// Authenticating → Joining → Active) driven by transport events. The
// Authenticating state has no timeout at this layer: a connection whose
// identification notice never arrives stalls until the transport's own
// disconnect/reconnect cycle tears it down.
//
// [Pool.SendToChannel] is the broadcast primitive: deliver one line of
// text on every Active connection joined to the exact network-qualified
// channel, logging each delivery under the bot's own nickname. A
// channel nobody has joined yet is a silent no-op, since routing can be
// configured before any connection finishes joining.
package router
