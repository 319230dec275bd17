// Copyright 2026 The Crowbot Authors
// SPDX-License-Identifier: Apache-2.0

// Package tellqueue implements the deferred "tell" delivery mailbox.
//
// A tell is a message left for an identity that is not currently
// present in a channel. Entries accumulate FIFO per (channel, target)
// and are drained — removed and delivered — when the target is
// observed joining the channel or renaming to or from the queued name.
// Drain-then-send means a crash between the two loses the message;
// that is the accepted trade for never double-delivering.
package tellqueue
