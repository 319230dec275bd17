// Copyright 2026 The Crowbot Authors
// SPDX-License-Identifier: Apache-2.0

package factoid

import (
	"fmt"
	"sort"
	"sync"

	"github.com/crowbot-irc/crowbot/lib/ref"
)

// GlobalScope is the scope key for factoids visible in every channel.
// It is the literal key used in the factoid source file; the '!'
// prefix keeps it from ever colliding with a network-qualified
// channel identifier.
const GlobalScope = "!global"

// Store holds the in-memory factoid mapping: (scope, key) → response
// text, where a scope is either a qualified channel identifier or
// [GlobalScope]. The store is immutable between reloads — Replace
// swaps the entire structure atomically, and nothing mutates entries
// in place.
//
// Safe for concurrent use: lookups take a read lock, Replace takes the
// write lock.
type Store struct {
	mu     sync.RWMutex
	scopes map[string]map[string]string
	count  int
}

// New returns an empty store. Populate it with Replace.
func New() *Store {
	return &Store{scopes: make(map[string]map[string]string)}
}

// Replace atomically installs a new factoid mapping, discarding the
// previous one, and returns the total entry count across all scopes.
// Callers parse and validate the source before calling Replace, so a
// malformed source never clobbers a working store.
func (s *Store) Replace(scopes map[string]map[string]string) int {
	count := 0
	for _, entries := range scopes {
		count += len(entries)
	}

	s.mu.Lock()
	s.scopes = scopes
	s.count = count
	s.mu.Unlock()

	return count
}

// Lookup resolves a factoid key for a channel. The channel's own scope
// shadows the global scope; a key absent from both reports ok=false,
// which the dispatcher treats as "no reply", not an error.
//
// Keys are case-sensitive.
func (s *Store) Lookup(channel ref.ChannelID, key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if entries, ok := s.scopes[channel.String()]; ok {
		if text, ok := entries[key]; ok {
			return text, true
		}
	}
	if entries, ok := s.scopes[GlobalScope]; ok {
		if text, ok := entries[key]; ok {
			return text, true
		}
	}
	return "", false
}

// List returns the sorted factoid keys for a channel's own scope.
// Unlike Lookup there is no fallback to the global scope: listing is
// about what this channel has configured. Returns an error when the
// channel has no entries at all.
func (s *Store) List(channel ref.ChannelID) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, ok := s.scopes[channel.String()]
	if !ok || len(entries) == 0 {
		return nil, fmt.Errorf("no factoids for %s", channel)
	}

	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

// Count returns the total entry count across all scopes as of the last
// Replace.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}
