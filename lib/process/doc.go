// Copyright 2026 The Crowbot Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides binary entrypoint helpers for the crowbot
// and crowbotctl binaries: fatal error reporting to stderr for errors
// from run() that occur before the structured logger exists, and
// process exit after an unrecoverable error in main().
//
// All other output in the gateway goes through log/slog; crowbotctl,
// as a CLI, prints results to stdout directly.
package process
