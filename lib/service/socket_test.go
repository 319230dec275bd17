// Copyright 2026 The Crowbot Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/crowbot-irc/crowbot/lib/codec"
)

func testSocketPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test.sock")
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startServer runs the socket server in a goroutine and waits for the
// socket file to appear. Cleanup cancels the context and waits for
// Serve to return.
func startServer(t *testing.T, server *SocketServer, socketPath string) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	serveDone := make(chan error, 1)
	go func() {
		serveDone <- server.Serve(ctx)
	}()

	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, err := os.Stat(socketPath); err == nil {
			break
		}
		if time.Now().After(deadline) {
			cancel()
			t.Fatal("socket file did not appear")
		}
		time.Sleep(5 * time.Millisecond)
	}

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-serveDone:
			if err != nil {
				t.Errorf("Serve() = %v, want nil", err)
			}
		case <-time.After(5 * time.Second):
			t.Error("Serve did not return after context cancel")
		}
	})
}

// sendRequest connects to a Unix socket, sends a CBOR request, and
// returns the decoded response envelope.
func sendRequest(t *testing.T, socketPath string, request any) Response {
	t.Helper()

	conn, err := net.DialTimeout("unix", socketPath, 5*time.Second)
	if err != nil {
		t.Fatalf("connecting to socket: %v", err)
	}
	defer conn.Close()

	if err := codec.NewEncoder(conn).Encode(request); err != nil {
		t.Fatalf("writing request: %v", err)
	}
	if unixConn, ok := conn.(*net.UnixConn); ok {
		unixConn.CloseWrite()
	}

	var response Response
	if err := codec.NewDecoder(conn).Decode(&response); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return response
}

func TestSocketServerRoundTrip(t *testing.T) {
	socketPath := testSocketPath(t)
	server := NewSocketServer(socketPath, testLogger())

	server.Handle("status", func(ctx context.Context, raw []byte) (any, error) {
		return map[string]any{"connections": 2}, nil
	})
	server.Handle("fail", func(ctx context.Context, raw []byte) (any, error) {
		return nil, errors.New("deliberate failure")
	})
	server.Handle("echo", func(ctx context.Context, raw []byte) (any, error) {
		var request struct {
			Text string `cbor:"text"`
		}
		if err := codec.Unmarshal(raw, &request); err != nil {
			return nil, err
		}
		return map[string]any{"text": request.Text}, nil
	})

	startServer(t, server, socketPath)

	t.Run("success_with_data", func(t *testing.T) {
		response := sendRequest(t, socketPath, map[string]any{"action": "status"})
		if !response.OK {
			t.Fatalf("response not ok: %s", response.Error)
		}
		var data struct {
			Connections int `cbor:"connections"`
		}
		if err := codec.Unmarshal(response.Data, &data); err != nil {
			t.Fatalf("decoding data: %v", err)
		}
		if data.Connections != 2 {
			t.Errorf("connections = %d, want 2", data.Connections)
		}
	})

	t.Run("handler_error", func(t *testing.T) {
		response := sendRequest(t, socketPath, map[string]any{"action": "fail"})
		if response.OK {
			t.Fatal("response ok, want failure")
		}
		if response.Error != "deliberate failure" {
			t.Errorf("error = %q, want %q", response.Error, "deliberate failure")
		}
	})

	t.Run("handler_sees_request_fields", func(t *testing.T) {
		response := sendRequest(t, socketPath, map[string]any{
			"action": "echo",
			"text":   "hello",
		})
		if !response.OK {
			t.Fatalf("response not ok: %s", response.Error)
		}
		var data struct {
			Text string `cbor:"text"`
		}
		if err := codec.Unmarshal(response.Data, &data); err != nil {
			t.Fatalf("decoding data: %v", err)
		}
		if data.Text != "hello" {
			t.Errorf("text = %q, want %q", data.Text, "hello")
		}
	})

	t.Run("unknown_action", func(t *testing.T) {
		response := sendRequest(t, socketPath, map[string]any{"action": "bogus"})
		if response.OK {
			t.Fatal("response ok, want failure")
		}
		if !strings.Contains(response.Error, "unknown action") {
			t.Errorf("error = %q, want 'unknown action'", response.Error)
		}
	})

	t.Run("missing_action", func(t *testing.T) {
		response := sendRequest(t, socketPath, map[string]any{"text": "hi"})
		if response.OK {
			t.Fatal("response ok, want failure")
		}
		if !strings.Contains(response.Error, "action") {
			t.Errorf("error = %q, want a missing-action message", response.Error)
		}
	})
}

func TestSocketClientCall(t *testing.T) {
	socketPath := testSocketPath(t)
	server := NewSocketServer(socketPath, testLogger())

	server.Handle("reload", func(ctx context.Context, raw []byte) (any, error) {
		return map[string]any{"secrets": 3, "factoids": 9}, nil
	})
	server.Handle("fail", func(ctx context.Context, raw []byte) (any, error) {
		return nil, errors.New("not today")
	})

	startServer(t, server, socketPath)

	client := NewSocketClient(socketPath)

	var result struct {
		Secrets  int `cbor:"secrets"`
		Factoids int `cbor:"factoids"`
	}
	if err := client.Call(context.Background(), "reload", nil, &result); err != nil {
		t.Fatalf("Call(reload): %v", err)
	}
	if result.Secrets != 3 || result.Factoids != 9 {
		t.Errorf("result = %+v, want secrets=3 factoids=9", result)
	}

	err := client.Call(context.Background(), "fail", nil, nil)
	var socketErr *SocketError
	if !errors.As(err, &socketErr) {
		t.Fatalf("Call(fail) = %v, want *SocketError", err)
	}
	if socketErr.Message != "not today" {
		t.Errorf("message = %q, want %q", socketErr.Message, "not today")
	}
	if socketErr.Action != "fail" {
		t.Errorf("action = %q, want %q", socketErr.Action, "fail")
	}
}

func TestSocketServerRemovesStaleSocket(t *testing.T) {
	socketPath := testSocketPath(t)

	// Leave a stale socket file behind.
	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		t.Fatalf("pre-creating socket: %v", err)
	}
	listener.Close()
	if _, err := os.Stat(socketPath); err != nil {
		// Close removed the file; recreate a plain file to simulate
		// a crashed process.
		if err := os.WriteFile(socketPath, nil, 0o600); err != nil {
			t.Fatalf("creating stale file: %v", err)
		}
	}

	server := NewSocketServer(socketPath, testLogger())
	server.Handle("ping", func(ctx context.Context, raw []byte) (any, error) {
		return nil, nil
	})
	startServer(t, server, socketPath)

	response := sendRequest(t, socketPath, map[string]any{"action": "ping"})
	if !response.OK {
		t.Fatalf("response not ok: %s", response.Error)
	}
}
