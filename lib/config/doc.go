// Copyright 2026 The Crowbot Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for the gateway.
//
// Configuration is a single YAML file passed via --config (or the
// CROWBOT_CONFIG environment variable). There are no fallbacks or
// automatic discovery; this keeps deployments deterministic and
// auditable.
//
// Two auxiliary sources are referenced from the main file and reloaded
// on admin-triggered rehash: the factoid source (JSONC, so operators
// can comment entries) and the webhook secrets file (one
// "owner/repo:secret" line per repository). Loading is all-or-nothing:
// any parse or validation error leaves previously loaded state
// untouched at the call sites.
package config
