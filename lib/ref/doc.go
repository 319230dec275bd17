// Copyright 2026 The Crowbot Authors
// SPDX-License-Identifier: Apache-2.0

// Package ref provides validated identifier types used across Crowbot
// packages.
//
// [ChannelID] is the network-qualified channel identifier. The gateway
// can be logged into more than one chat network at once, and the same
// channel name on two networks is two distinct channels, so every piece
// of channel-scoped state (factoids, the tell queue, channel logs,
// broadcast routing) is keyed by ChannelID, never by bare channel name.
//
// Identifier types are immutable value types parsed at the boundary
// (config load, webhook bindings). The zero value is never valid; use
// IsZero to check.
package ref
