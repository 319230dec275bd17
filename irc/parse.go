// Copyright 2026 The Crowbot Authors
// SPDX-License-Identifier: Apache-2.0

package irc

import (
	"errors"
	"strings"
)

// Message is one parsed IRC protocol line.
type Message struct {
	// Prefix is the raw source, without the leading colon. Empty for
	// lines the server sends about itself (PING, ERROR).
	Prefix string

	// Nick is the nickname part of the prefix (everything before the
	// first "!" or "@"). For server-origin lines this is the server
	// name.
	Nick string

	// Command is the command or three-digit numeric, uppercased.
	Command string

	// Params holds the middle parameters, not including the trailing
	// parameter.
	Params []string

	// Trailing is the final parameter introduced by " :", without the
	// colon. Empty if the line has no trailing parameter.
	Trailing string
}

// ErrEmptyLine is returned by ParseMessage for blank input.
var ErrEmptyLine = errors.New("irc: empty line")

// ParseMessage parses one protocol line, without its CRLF terminator.
func ParseMessage(line string) (Message, error) {
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return Message{}, ErrEmptyLine
	}

	var message Message

	if line[0] == ':' {
		prefix, rest, found := strings.Cut(line[1:], " ")
		if !found {
			return Message{}, errors.New("irc: prefix without command")
		}
		message.Prefix = prefix
		message.Nick = prefix
		if i := strings.IndexAny(prefix, "!@"); i >= 0 {
			message.Nick = prefix[:i]
		}
		line = rest
	}

	// Split off the trailing parameter first; it may contain spaces.
	head, trailing, hasTrailing := strings.Cut(line, " :")
	if strings.HasPrefix(head, ":") {
		// The whole remainder is a trailing parameter with no
		// middle parameters, e.g. "PING :server".
		head, trailing, hasTrailing = "", line[1:], true
	}
	message.Trailing = trailing

	fields := strings.Fields(head)
	if len(fields) == 0 {
		if !hasTrailing {
			return Message{}, errors.New("irc: missing command")
		}
		return Message{}, errors.New("irc: trailing without command")
	}
	message.Command = strings.ToUpper(fields[0])
	message.Params = fields[1:]

	return message, nil
}

// Param returns the i'th middle parameter, or "" when absent. Saves
// length checks at call sites that tolerate short lines.
func (m Message) Param(i int) string {
	if i < 0 || i >= len(m.Params) {
		return ""
	}
	return m.Params[i]
}

// ctcpAction extracts the action text from a CTCP ACTION payload
// ("\x01ACTION waves\x01" → "waves", true). Any other payload returns
// ok=false.
func ctcpAction(text string) (string, bool) {
	if !strings.HasPrefix(text, "\x01ACTION ") {
		return "", false
	}
	return strings.TrimSuffix(text[len("\x01ACTION "):], "\x01"), true
}
