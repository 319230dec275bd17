// Copyright 2026 The Crowbot Authors
// SPDX-License-Identifier: Apache-2.0

package chanlog

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/crowbot-irc/crowbot/lib/clock"
	"github.com/crowbot-irc/crowbot/lib/ref"
)

// formattingCodes matches mIRC formatting control codes: color (with
// optional foreground/background numbers), bold, reset, reverse,
// italic, and underline. Logs are plain text; the codes are stripped
// before writing.
var formattingCodes = regexp.MustCompile(`\x03\d{1,2}(,\d{1,2})?|\x03|\x02|\x0f|\x16|\x1d|\x1f`)

// dayFile is one open per-channel log file for a single UTC date.
type dayFile struct {
	date string // "2006-01-02"
	path string
	file *os.File
}

// Logger writes append-only per-channel-per-day text logs. Every
// inbound and outbound chat line lands here with a rendered sender
// prefix: "<nick>" for messages, "-nick:channel-" for notices, and
// "* nick" for actions. Writes are atomic per entry — one line per
// call under the lock, so two drained tells never interleave within
// a write. Ordering is only guaranteed within a channel.
//
// When a write lands on a new UTC date, the finished day's file is
// closed and compressed with the configured codec.
type Logger struct {
	dir         string
	compression Compression
	clock       clock.Clock
	logger      *slog.Logger

	mu    sync.Mutex
	files map[ref.ChannelID]*dayFile
}

// Open creates a channel logger rooted at dir. The directory is
// created if absent; per-channel subdirectories are created on first
// write.
func Open(dir string, compression Compression, clk clock.Clock, logger *slog.Logger) (*Logger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory %s: %w", dir, err)
	}
	return &Logger{
		dir:         dir,
		compression: compression,
		clock:       clk,
		logger:      logger,
		files:       make(map[ref.ChannelID]*dayFile),
	}, nil
}

// Message logs a channel message as "<nick> text".
func (l *Logger) Message(channel ref.ChannelID, nick, text string) {
	l.write(channel, "<"+nick+">", text)
}

// Notice logs a channel notice as "-nick:channel- text".
func (l *Logger) Notice(channel ref.ChannelID, nick, text string) {
	l.write(channel, "-"+nick+":"+channel.Name()+"-", text)
}

// Action logs a CTCP action as "* nick text".
func (l *Logger) Action(channel ref.ChannelID, nick, text string) {
	l.write(channel, "* "+nick, text)
}

// write appends one "HH:MM:SS prefix text" line to the channel's
// current day file, rolling over and compressing the previous day
// first when the date has changed.
func (l *Logger) write(channel ref.ChannelID, prefix, text string) {
	now := l.clock.Now().UTC()
	date := now.Format("2006-01-02")
	line := now.Format("15:04:05") + " " + prefix + " " + formattingCodes.ReplaceAllString(text, "") + "\n"

	l.mu.Lock()
	defer l.mu.Unlock()

	current := l.files[channel]
	if current == nil || current.date != date {
		rotated, err := l.rotateLocked(channel, current, date)
		if err != nil {
			l.logger.Error("channel log rotation failed",
				"channel", channel.String(),
				"error", err,
			)
			return
		}
		current = rotated
		l.files[channel] = current
	}

	if _, err := current.file.WriteString(line); err != nil {
		l.logger.Error("channel log write failed",
			"channel", channel.String(),
			"error", err,
		)
	}
}

// rotateLocked closes and compresses the finished day file (if any)
// and opens the file for the new date. Callers must hold l.mu.
func (l *Logger) rotateLocked(channel ref.ChannelID, finished *dayFile, date string) (*dayFile, error) {
	if finished != nil {
		if err := finished.file.Close(); err != nil {
			l.logger.Warn("closing finished day log",
				"path", finished.path,
				"error", err,
			)
		}
		if err := compressFile(finished.path, l.compression); err != nil {
			// The raw .log stays on disk; compression can be retried
			// out of band.
			l.logger.Warn("compressing finished day log",
				"path", finished.path,
				"error", err,
			)
		}
	}

	channelDir := filepath.Join(l.dir, channel.Network(), channel.Name())
	if err := os.MkdirAll(channelDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating channel log directory: %w", err)
	}

	path := filepath.Join(channelDir, date+".log")
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening day log %s: %w", path, err)
	}
	return &dayFile{date: date, path: path, file: file}, nil
}

// Close closes all open day files. Finished files are not compressed
// on Close — the current day is still in progress at shutdown.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var firstErr error
	for channel, open := range l.files {
		if err := open.file.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing log for %s: %w", channel, err)
		}
		delete(l.files, channel)
	}
	return firstErr
}
