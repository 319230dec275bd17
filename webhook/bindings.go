// Copyright 2026 The Crowbot Authors
// SPDX-License-Identifier: Apache-2.0

package webhook

import (
	"sync"

	"github.com/crowbot-irc/crowbot/lib/ref"
)

// Bindings holds the per-repository routing and authentication state:
// which channel a repository announces into, and the shared secret
// its deliveries are signed with. The two maps are independent — a
// repository can have a secret without a channel mapping (deliveries
// verify but are rejected as unrouted) and vice versa.
//
// Replace swaps both maps atomically, so a rehash never exposes a
// half-updated view to in-flight requests.
type Bindings struct {
	mu       sync.RWMutex
	secrets  map[string][]byte
	channels map[string]ref.ChannelID
}

// NewBindings creates an empty binding set.
func NewBindings() *Bindings {
	return &Bindings{
		secrets:  make(map[string][]byte),
		channels: make(map[string]ref.ChannelID),
	}
}

// Replace atomically installs a new secret map and channel map.
// Returns the number of secrets installed.
func (b *Bindings) Replace(secrets map[string][]byte, channels map[string]ref.ChannelID) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.secrets = secrets
	b.channels = channels
	return len(secrets)
}

// Secret returns the shared secret for a full repository name
// ("owner/repo").
func (b *Bindings) Secret(repo string) ([]byte, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	secret, ok := b.secrets[repo]
	return secret, ok
}

// Channel returns the target channel for a full repository name.
func (b *Bindings) Channel(repo string) (ref.ChannelID, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	channel, ok := b.channels[repo]
	return channel, ok
}

// SecretCount returns the number of configured secrets.
func (b *Bindings) SecretCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.secrets)
}
