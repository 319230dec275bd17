// Copyright 2026 The Crowbot Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import (
	"fmt"
	"strings"
)

// ChannelID is a network-qualified channel identifier, written as
// "network/#channel" (e.g., "libera/#nikola"). The network part names
// the chat-network connection the channel lives on; the name part is
// the channel name as the network knows it, including its leading
// prefix character.
//
// ChannelID is an immutable value type. The zero value is not valid;
// use IsZero to check.
type ChannelID struct {
	network string
	name    string
}

// ParseChannelID validates and parses a "network/#channel" string.
// Returns an error if either part is empty or the separator is
// missing. The channel name must start with '#' or '&' — the two
// channel prefix characters the gateway joins.
func ParseChannelID(raw string) (ChannelID, error) {
	if raw == "" {
		return ChannelID{}, fmt.Errorf("empty channel ID")
	}

	slashIndex := strings.IndexByte(raw, '/')
	if slashIndex < 0 {
		return ChannelID{}, fmt.Errorf("channel ID missing 'network/' qualifier: %q", raw)
	}
	network := raw[:slashIndex]
	name := raw[slashIndex+1:]

	if network == "" {
		return ChannelID{}, fmt.Errorf("channel ID has empty network part: %q", raw)
	}
	if name == "" {
		return ChannelID{}, fmt.Errorf("channel ID has empty channel name: %q", raw)
	}
	if name[0] != '#' && name[0] != '&' {
		return ChannelID{}, fmt.Errorf("channel name must start with '#' or '&': %q", raw)
	}

	return ChannelID{network: network, name: name}, nil
}

// Channel constructs a ChannelID from an already-validated network and
// channel name. Used where the parts arrive separately (a JOIN event
// on a known connection) rather than as a qualified string.
func Channel(network, name string) ChannelID {
	return ChannelID{network: network, name: name}
}

// Network returns the network part of the identifier.
func (c ChannelID) Network() string { return c.network }

// Name returns the bare channel name (with its prefix character), as
// used on the wire with the chat network.
func (c ChannelID) Name() string { return c.name }

// String returns the full qualified identifier ("network/#channel").
func (c ChannelID) String() string { return c.network + "/" + c.name }

// IsZero reports whether the ChannelID is the zero value.
func (c ChannelID) IsZero() bool { return c.network == "" && c.name == "" }

// MarshalText implements encoding.TextMarshaler so ChannelID can be
// used directly in YAML, JSON, and CBOR payloads.
func (c ChannelID) MarshalText() ([]byte, error) {
	if c.IsZero() {
		return nil, fmt.Errorf("cannot marshal zero ChannelID")
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *ChannelID) UnmarshalText(text []byte) error {
	parsed, err := ParseChannelID(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
