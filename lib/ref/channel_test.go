// Copyright 2026 The Crowbot Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import "testing"

func TestParseChannelID(t *testing.T) {
	id, err := ParseChannelID("libera/#nikola")
	if err != nil {
		t.Fatalf("ParseChannelID: %v", err)
	}
	if id.Network() != "libera" {
		t.Errorf("Network() = %q, want %q", id.Network(), "libera")
	}
	if id.Name() != "#nikola" {
		t.Errorf("Name() = %q, want %q", id.Name(), "#nikola")
	}
	if id.String() != "libera/#nikola" {
		t.Errorf("String() = %q, want %q", id.String(), "libera/#nikola")
	}
	if id.IsZero() {
		t.Error("IsZero() = true for a parsed ID")
	}
}

func TestParseChannelIDRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"#nikola",          // no network qualifier
		"/#nikola",         // empty network
		"libera/",          // empty name
		"libera/nikola",    // missing channel prefix
		"libera/!nikola",   // invalid prefix character
	}
	for _, raw := range cases {
		if _, err := ParseChannelID(raw); err == nil {
			t.Errorf("ParseChannelID(%q) succeeded, want error", raw)
		}
	}
}

func TestChannelIDSameNameDifferentNetworks(t *testing.T) {
	a := Channel("libera", "#nikola")
	b := Channel("oftc", "#nikola")
	if a == b {
		t.Error("same channel name on different networks compared equal")
	}
}

func TestChannelIDTextRoundTrip(t *testing.T) {
	id := Channel("libera", "#crowbot")
	text, err := id.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}

	var decoded ChannelID
	if err := decoded.UnmarshalText(text); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if decoded != id {
		t.Errorf("round trip = %v, want %v", decoded, id)
	}
}

func TestZeroChannelIDDoesNotMarshal(t *testing.T) {
	var zero ChannelID
	if _, err := zero.MarshalText(); err == nil {
		t.Error("MarshalText on zero value succeeded, want error")
	}
}
