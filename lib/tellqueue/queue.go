// Copyright 2026 The Crowbot Authors
// SPDX-License-Identifier: Apache-2.0

package tellqueue

import (
	"sync"
	"time"

	"github.com/crowbot-irc/crowbot/lib/ref"
)

// Entry is one deferred message awaiting delivery to a target
// identity in a channel.
type Entry struct {
	// QueuedAt is when the tell was enqueued. Only the time of day is
	// rendered on delivery.
	QueuedAt time.Time

	// Sender is the identity that asked for the message to be passed
	// on.
	Sender string

	// Body is the message text, verbatim.
	Body string
}

// Render formats an entry for delivery: "15:04:05 <sender> body".
// The target prefix is added at send time, like any other reply.
func (e Entry) Render() string {
	return e.QueuedAt.Format("15:04:05") + " <" + e.Sender + "> " + e.Body
}

// target keys the per-channel mailbox map.
type target struct {
	channel ref.ChannelID
	nick    string
}

// Queue is the deferred-message mailbox: a FIFO list of entries per
// (channel, target identity) pair. Entries are created by the tell
// command and destroyed by Drain the moment the target is observed in
// the channel. Delivery is a pop, not a peek — a drained entry is gone
// whether or not the subsequent send succeeds, so no entry is ever
// delivered twice.
//
// Safe for concurrent use from multiple connection goroutines.
type Queue struct {
	mu      sync.Mutex
	pending map[target][]Entry
}

// New returns an empty queue.
func New() *Queue {
	return &Queue{pending: make(map[target][]Entry)}
}

// Enqueue appends a tell to the target's mailbox, creating the mailbox
// if absent. Always succeeds.
func (q *Queue) Enqueue(channel ref.ChannelID, nick, sender, body string, queuedAt time.Time) {
	key := target{channel: channel, nick: nick}

	q.mu.Lock()
	q.pending[key] = append(q.pending[key], Entry{
		QueuedAt: queuedAt,
		Sender:   sender,
		Body:     body,
	})
	q.mu.Unlock()
}

// Drain atomically removes and returns all entries for the target in
// the channel, in arrival order. Returns an empty slice when there is
// nothing pending — observing a join is routine, not an error.
func (q *Queue) Drain(channel ref.ChannelID, nick string) []Entry {
	key := target{channel: channel, nick: nick}

	q.mu.Lock()
	entries := q.pending[key]
	delete(q.pending, key)
	q.mu.Unlock()

	return entries
}

// Clear discards every pending entry across all channels. Admin-only
// at the command layer.
func (q *Queue) Clear() {
	q.mu.Lock()
	q.pending = make(map[target][]Entry)
	q.mu.Unlock()
}

// Len returns the total number of pending entries across all
// mailboxes. Used by the admin status action.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	total := 0
	for _, entries := range q.pending {
		total += len(entries)
	}
	return total
}
