// Copyright 2026 The Crowbot Authors
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"log/slog"
	"net"
	"os"
)

// notifyReady sends the systemd READY=1 datagram to $NOTIFY_SOCKET.
// Outside a systemd unit the variable is unset and this is a no-op.
// Failures are logged and swallowed: readiness notification is an
// operator convenience, never worth taking the bot down over.
func notifyReady(logger *slog.Logger) {
	socketPath := os.Getenv("NOTIFY_SOCKET")
	if socketPath == "" {
		return
	}
	// Abstract-namespace sockets ('@' prefix) pass through as-is;
	// the net package handles the translation.
	conn, err := net.Dial("unixgram", socketPath)
	if err != nil {
		logger.Warn("sd_notify: dial failed", "socket", socketPath, "error", err)
		return
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("READY=1")); err != nil {
		logger.Warn("sd_notify: write failed", "error", err)
		return
	}
	logger.Info("sd_notify: READY=1 sent")
}
