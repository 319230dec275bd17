// Copyright 2026 The Crowbot Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"strings"
)

// LoadSecrets parses the webhook secrets file: one
// "owner/repo:secret" per line, blank lines and '#' comments ignored.
// The secret is everything after the first colon, trimmed — secrets
// containing colons survive intact.
func LoadSecrets(path string) (map[string][]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading secrets %s: %w", path, err)
	}

	secrets := make(map[string][]byte)
	for number, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		repo, secret, found := strings.Cut(line, ":")
		if !found {
			return nil, fmt.Errorf("secrets %s:%d: want \"owner/repo:secret\"", path, number+1)
		}
		repo = strings.TrimSpace(repo)
		secret = strings.TrimSpace(secret)
		if repo == "" || secret == "" {
			return nil, fmt.Errorf("secrets %s:%d: empty repository or secret", path, number+1)
		}
		if _, duplicate := secrets[repo]; duplicate {
			return nil, fmt.Errorf("secrets %s:%d: duplicate repository %q", path, number+1, repo)
		}
		secrets[repo] = []byte(secret)
	}

	return secrets, nil
}
