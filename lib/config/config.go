// Copyright 2026 The Crowbot Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/crowbot-irc/crowbot/lib/ref"
)

// Config is the gateway's master configuration.
type Config struct {
	// Nick is the bot's nickname on every network, and the wake word
	// for the command grammar.
	Nick string `yaml:"nick"`

	// RealName is the free-text real-name field sent at registration.
	RealName string `yaml:"real_name"`

	// Admin is the single identity allowed to run admin-gated
	// commands. Compared by exact string equality.
	Admin string `yaml:"admin"`

	// PasswordFile holds the NickServ password, trimmed of
	// surrounding whitespace when read.
	PasswordFile string `yaml:"password_file"`

	// FactoidsFile is the JSONC factoid source.
	FactoidsFile string `yaml:"factoids_file"`

	// SecretsFile holds per-repository webhook secrets, one
	// "owner/repo:secret" per line.
	SecretsFile string `yaml:"secrets_file"`

	// AdminSocket is the Unix socket path for the CBOR admin
	// protocol.
	AdminSocket string `yaml:"admin_socket"`

	// Logs configures the per-channel chat logs.
	Logs LogsConfig `yaml:"logs"`

	// Networks lists the chat networks to stay connected to. Each
	// connection only auto-joins its own network's channels.
	Networks []NetworkConfig `yaml:"networks"`

	// Webhook configures the issue-tracker ingress.
	Webhook WebhookConfig `yaml:"webhook"`

	// Repositories maps a tracker repository's full name
	// ("owner/repo") to the qualified channel its events are
	// announced in.
	Repositories map[string]string `yaml:"repositories"`

	// repoChannels is Repositories with the channel side parsed and
	// validated.
	repoChannels map[string]ref.ChannelID
}

// NetworkConfig is one chat-network connection.
type NetworkConfig struct {
	// Name qualifies this network's channels ("libera"). Must be
	// unique across the Networks list.
	Name string `yaml:"name"`

	// Address is the host:port to dial.
	Address string `yaml:"address"`

	// TLS enables a TLS client connection.
	TLS bool `yaml:"tls"`

	// Channels are the bare channel names to auto-join.
	Channels []string `yaml:"channels"`

	// ChannelIDs is Channels qualified with this network's name,
	// populated at load time.
	ChannelIDs []ref.ChannelID `yaml:"-"`
}

// WebhookConfig configures the HTTP ingress for tracker events.
type WebhookConfig struct {
	// Listen is the TCP listen address (default "127.0.0.1:5944").
	Listen string `yaml:"listen"`
}

// LogsConfig configures the channel logger.
type LogsConfig struct {
	// Dir is the root of the per-channel-per-day log tree.
	Dir string `yaml:"dir"`

	// Compression is the codec for finished day files: "none",
	// "lz4", or "zstd" (default).
	Compression string `yaml:"compression"`

	// PublicURLs maps a qualified channel to the public URL of its
	// published logs, used by the logs command.
	PublicURLs map[string]string `yaml:"public_urls"`
}

// Load reads and validates the config file. Unknown fields are
// rejected — a typo in a key name should fail loudly at startup, not
// silently fall back to a default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	config := &Config{}
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return config, nil
}

func (c *Config) validate() error {
	if c.Nick == "" {
		return fmt.Errorf("nick is required")
	}
	if c.Admin == "" {
		return fmt.Errorf("admin is required")
	}
	if len(c.Networks) == 0 {
		return fmt.Errorf("at least one network is required")
	}
	if c.Webhook.Listen == "" {
		c.Webhook.Listen = "127.0.0.1:5944"
	}
	if c.RealName == "" {
		c.RealName = c.Nick
	}

	seen := make(map[string]struct{}, len(c.Networks))
	for i := range c.Networks {
		network := &c.Networks[i]
		if network.Name == "" {
			return fmt.Errorf("networks[%d]: name is required", i)
		}
		if strings.ContainsRune(network.Name, '/') {
			return fmt.Errorf("network name %q must not contain '/'", network.Name)
		}
		if _, duplicate := seen[network.Name]; duplicate {
			return fmt.Errorf("duplicate network name %q", network.Name)
		}
		seen[network.Name] = struct{}{}
		if network.Address == "" {
			return fmt.Errorf("network %q: address is required", network.Name)
		}

		network.ChannelIDs = make([]ref.ChannelID, 0, len(network.Channels))
		for _, name := range network.Channels {
			id, err := ref.ParseChannelID(network.Name + "/" + name)
			if err != nil {
				return fmt.Errorf("network %q: %w", network.Name, err)
			}
			network.ChannelIDs = append(network.ChannelIDs, id)
		}
	}

	c.repoChannels = make(map[string]ref.ChannelID, len(c.Repositories))
	for repo, channel := range c.Repositories {
		if !strings.Contains(repo, "/") {
			return fmt.Errorf("repository %q: want full \"owner/repo\" name", repo)
		}
		id, err := ref.ParseChannelID(channel)
		if err != nil {
			return fmt.Errorf("repository %q: %w", repo, err)
		}
		c.repoChannels[repo] = id
	}

	return nil
}

// RepositoryChannel returns the announcement channel bound to a
// repository's full name.
func (c *Config) RepositoryChannel(fullName string) (ref.ChannelID, bool) {
	id, ok := c.repoChannels[fullName]
	return id, ok
}

// RepositoryChannels returns a copy of the full binding map, used to
// seed the webhook bridge.
func (c *Config) RepositoryChannels() map[string]ref.ChannelID {
	bindings := make(map[string]ref.ChannelID, len(c.repoChannels))
	for repo, channel := range c.repoChannels {
		bindings[repo] = channel
	}
	return bindings
}

// ExpectedConnections returns the number of configured networks, which
// is the readiness target for the connection pool.
func (c *Config) ExpectedConnections() int {
	return len(c.Networks)
}

// NickServPassword reads and trims the NickServ password file.
// Returns an empty password without error when no file is configured —
// some networks have no authentication service.
func (c *Config) NickServPassword() (string, error) {
	if c.PasswordFile == "" {
		return "", nil
	}
	data, err := os.ReadFile(c.PasswordFile)
	if err != nil {
		return "", fmt.Errorf("reading password file %s: %w", c.PasswordFile, err)
	}
	password := strings.TrimSpace(string(data))
	if password == "" {
		return "", fmt.Errorf("password file %s is empty", c.PasswordFile)
	}
	return password, nil
}
