// Copyright 2026 The Crowbot Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"testing"

	"github.com/crowbot-irc/crowbot/lib/ref"
)

func TestMarshalDeterministic(t *testing.T) {
	value := map[string]any{
		"zeta":  1,
		"alpha": "two",
		"mid":   []int{3, 4},
	}

	first, err := Marshal(value)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	second, err := Marshal(value)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("two marshals of the same map produced different bytes")
	}
}

func TestChannelIDEncodesAsTextString(t *testing.T) {
	type request struct {
		Channel ref.ChannelID `cbor:"channel"`
	}

	encoded, err := Marshal(request{Channel: ref.Channel("libera", "#nikola")})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded request
	if err := Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Channel.String() != "libera/#nikola" {
		t.Errorf("channel round trip = %q, want %q", decoded.Channel, "libera/#nikola")
	}
}

func TestUnmarshalIgnoresUnknownFields(t *testing.T) {
	encoded, err := Marshal(map[string]any{
		"action": "status",
		"future": "field from a newer client",
	})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var header struct {
		Action string `cbor:"action"`
	}
	if err := Unmarshal(encoded, &header); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if header.Action != "status" {
		t.Errorf("action = %q, want %q", header.Action, "status")
	}
}

func TestAnyTargetDecodesStringKeyedMaps(t *testing.T) {
	encoded, err := Marshal(map[string]any{"outer": map[string]any{"inner": 1}})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded map[string]any
	if err := Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if _, ok := decoded["outer"].(map[string]any); !ok {
		t.Errorf("nested map decoded as %T, want map[string]any", decoded["outer"])
	}
}
