// Copyright 2026 The Crowbot Authors
// SPDX-License-Identifier: Apache-2.0

// Package command parses chat lines into bot commands and runs them.
//
// A line wakes the bot either with its nick (optionally followed by a
// single punctuation character, then a space: "Crowbot: ping") or with
// a leading '!' sentinel ("!ping"). The wake prefix matches
// case-insensitively; the command token and arguments are
// case-sensitive. Lines that don't match the grammar produce no reply
// and no error.
//
// Resolution goes through an explicit handler table built once at
// startup — command token to handler function, no reflection. An
// unknown token falls back to a factoid lookup with the token as the
// key. Handler failures are caught at the dispatch boundary and become
// a single-line error reply; they never reach the connection.
package command
