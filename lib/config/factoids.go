// Copyright 2026 The Crowbot Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"

	"github.com/crowbot-irc/crowbot/lib/factoid"
	"github.com/crowbot-irc/crowbot/lib/ref"
)

// LoadFactoids parses the JSONC factoid source into the scope → key →
// text structure the store installs wholesale. The file's top-level
// keys are qualified channel identifiers plus the "!global" scope:
//
//	{
//	    // shared across every channel
//	    "!global": {"docs": "https://example.org/docs"},
//	    "libera/#nikola": {"handbook": "https://..."}
//	}
//
// Any malformed scope key or JSON error fails the whole load, so a bad
// edit never half-replaces a working store.
func LoadFactoids(path string) (map[string]map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading factoids %s: %w", path, err)
	}

	scopes := make(map[string]map[string]string)
	if err := json.Unmarshal(jsonc.ToJSON(data), &scopes); err != nil {
		return nil, fmt.Errorf("parsing factoids %s: %w", path, err)
	}

	for scope := range scopes {
		if scope == factoid.GlobalScope {
			continue
		}
		if _, err := ref.ParseChannelID(scope); err != nil {
			return nil, fmt.Errorf("factoids %s: scope %q: %w", path, scope, err)
		}
	}

	return scopes, nil
}
