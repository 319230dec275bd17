// Copyright 2026 The Crowbot Authors
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/crowbot-irc/crowbot/lib/clock"
	"github.com/crowbot-irc/crowbot/lib/config"
	"github.com/crowbot-irc/crowbot/lib/ref"
	"github.com/crowbot-irc/crowbot/lib/router"
	"github.com/crowbot-irc/crowbot/lib/testutil"
)

// fakeTransport records the lines a session sends.
type fakeTransport struct {
	mu       sync.Mutex
	privmsgs [][2]string // target, text
	joins    []string
}

func (f *fakeTransport) Privmsg(target, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.privmsgs = append(f.privmsgs, [2]string{target, text})
	return nil
}

func (f *fakeTransport) Join(channel string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.joins = append(f.joins, channel)
	return nil
}

func (f *fakeTransport) sentPrivmsgs() [][2]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][2]string, len(f.privmsgs))
	copy(out, f.privmsgs)
	return out
}

func (f *fakeTransport) sentJoins() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.joins))
	copy(out, f.joins)
	return out
}

// testEpoch is the fake clock's fixed time; tell renders use its
// HH:MM:SS.
var testEpoch = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

// writeTestConfig lays out a config file plus factoid and secret
// sources in a temp dir and returns the loaded config.
func writeTestConfig(t *testing.T, passwordFile string) *config.Config {
	t.Helper()
	dir := t.TempDir()

	factoidsPath := filepath.Join(dir, "factoids.jsonc")
	if err := os.WriteFile(factoidsPath, []byte(`{
		// shared everywhere
		"!global": {"docs": "https://example.org/docs"},
		"libera/#nikola": {"handbook": "https://example.org/handbook"}
	}`), 0o600); err != nil {
		t.Fatalf("writing factoids: %v", err)
	}

	secretsPath := filepath.Join(dir, "secrets")
	if err := os.WriteFile(secretsPath, []byte("getnikola/nikola:nikola-secret\n"), 0o600); err != nil {
		t.Fatalf("writing secrets: %v", err)
	}

	configText := `
nick: Crowbot
admin: alice
factoids_file: ` + factoidsPath + `
secrets_file: ` + secretsPath + `
admin_socket: ` + filepath.Join(dir, "admin.sock") + `
logs:
  dir: ` + filepath.Join(dir, "logs") + `
  compression: none
networks:
  - name: libera
    address: 127.0.0.1:1
    channels: ["#nikola"]
repositories:
  getnikola/nikola: libera/#nikola
`
	if passwordFile != "" {
		configText += "password_file: " + passwordFile + "\n"
	}

	configPath := filepath.Join(dir, "crowbot.yaml")
	if err := os.WriteFile(configPath, []byte(configText), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return cfg
}

func newTestGateway(t *testing.T, passwordFile string) *Gateway {
	t.Helper()
	cfg := writeTestConfig(t, passwordFile)
	g, err := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), clock.Fake(testEpoch))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { g.chanlog.Close() })
	return g
}

// newTestSession registers a session for the first configured network.
func newTestSession(t *testing.T, g *Gateway) (*session, *fakeTransport) {
	t.Helper()
	transport := &fakeTransport{}
	s := &session{g: g, network: g.cfg.Networks[0], transport: transport}
	s.poolConn = g.pool.Register(s.network.Name, s.network.ChannelIDs, func(channelName, text string) {
		transport.Privmsg(channelName, text)
	})
	return s, transport
}

func TestSessionJoinsWithoutPassword(t *testing.T) {
	g := newTestGateway(t, "")
	s, transport := newTestSession(t, g)

	s.handleWelcome()

	joins := transport.sentJoins()
	if len(joins) != 1 || joins[0] != "#nikola" {
		t.Fatalf("joins = %v, want [#nikola]", joins)
	}

	s.handleJoined("#nikola")
	if got := g.pool.State(s.poolConn); got != router.StateActive {
		t.Errorf("state = %v, want active", got)
	}
	testutil.RequireClosed(t, g.pool.Ready(), 5*time.Second, "pool ready")
}

func TestSessionIdentifiesWithPassword(t *testing.T) {
	passwordFile := filepath.Join(t.TempDir(), "password")
	if err := os.WriteFile(passwordFile, []byte("hunter2\n"), 0o600); err != nil {
		t.Fatalf("writing password: %v", err)
	}
	g := newTestGateway(t, passwordFile)
	s, transport := newTestSession(t, g)

	s.handleWelcome()

	sent := transport.sentPrivmsgs()
	if len(sent) != 1 {
		t.Fatalf("privmsgs = %v, want one identify line", sent)
	}
	if sent[0][0] != "NickServ" || sent[0][1] != "identify Crowbot hunter2" {
		t.Errorf("identify line = %v", sent[0])
	}
	if len(transport.sentJoins()) != 0 {
		t.Error("joined before identification was confirmed")
	}
	if got := g.pool.State(s.poolConn); got != router.StateAuthenticating {
		t.Errorf("state = %v, want authenticating", got)
	}

	// An unrelated notice must not trigger the joins.
	s.handleNotice("alice", "#nikola", "you should get identified")
	if len(transport.sentJoins()) != 0 {
		t.Error("joined on a non-NickServ notice")
	}

	s.handleNotice("NickServ", "Crowbot", "You are now identified for Crowbot.")
	joins := transport.sentJoins()
	if len(joins) != 1 || joins[0] != "#nikola" {
		t.Fatalf("joins = %v, want [#nikola]", joins)
	}

	// A duplicate confirmation must not re-join.
	s.handleNotice("NickServ", "Crowbot", "You are now identified for Crowbot.")
	if len(transport.sentJoins()) != 1 {
		t.Errorf("joins = %v after duplicate confirmation, want one", transport.sentJoins())
	}
}

func TestSessionDispatchesCommands(t *testing.T) {
	g := newTestGateway(t, "")
	s, transport := newTestSession(t, g)

	s.handleMessage("alice", "#nikola", "!ping")
	sent := transport.sentPrivmsgs()
	if len(sent) != 1 {
		t.Fatalf("privmsgs = %v, want one reply", sent)
	}
	if sent[0][0] != "#nikola" || sent[0][1] != "alice: pong" {
		t.Errorf("reply = %v, want #nikola / alice: pong", sent[0])
	}

	// A non-command line produces no reply.
	s.handleMessage("alice", "#nikola", "just chatting")
	if len(transport.sentPrivmsgs()) != 1 {
		t.Errorf("privmsgs = %v, want no new reply", transport.sentPrivmsgs())
	}

	// Factoid fallback, channel scope.
	s.handleMessage("alice", "#nikola", "!handbook")
	sent = transport.sentPrivmsgs()
	if len(sent) != 2 || sent[1][1] != "alice: https://example.org/handbook" {
		t.Errorf("privmsgs = %v, want handbook factoid reply", sent)
	}
}

func TestSessionTellDelivery(t *testing.T) {
	g := newTestGateway(t, "")
	s, transport := newTestSession(t, g)

	s.handleMessage("alice", "#nikola", "!tell carol the build is fixed")
	sent := transport.sentPrivmsgs()
	if len(sent) != 1 || sent[0][1] != "alice: acknowledged." {
		t.Fatalf("privmsgs = %v, want acknowledgement", sent)
	}

	s.handleUserJoined("carol", "#nikola")
	sent = transport.sentPrivmsgs()
	if len(sent) != 2 {
		t.Fatalf("privmsgs = %v, want delivered tell", sent)
	}
	want := "carol: 09:26:53 <alice> the build is fixed"
	if sent[1][0] != "#nikola" || sent[1][1] != want {
		t.Errorf("delivery = %v, want %q", sent[1], want)
	}

	// Delivered exactly once.
	s.handleUserJoined("carol", "#nikola")
	if len(transport.sentPrivmsgs()) != 2 {
		t.Errorf("privmsgs = %v, tell delivered twice", transport.sentPrivmsgs())
	}
}

func TestSessionRenameDrainsBothNames(t *testing.T) {
	g := newTestGateway(t, "")
	s, transport := newTestSession(t, g)
	s.handleJoined("#nikola")

	channel := ref.Channel("libera", "#nikola")
	g.tells.Enqueue(channel, "carol", "alice", "for the old name", testEpoch)
	g.tells.Enqueue(channel, "carol_away", "bob", "for the new name", testEpoch)

	s.handleRenamed("carol", "carol_away")

	sent := transport.sentPrivmsgs()
	if len(sent) != 2 {
		t.Fatalf("privmsgs = %v, want two deliveries", sent)
	}
	if !strings.Contains(sent[0][1], "for the old name") {
		t.Errorf("first delivery = %v, want the old name's tell first", sent[0])
	}
	if !strings.Contains(sent[1][1], "for the new name") {
		t.Errorf("second delivery = %v, want the new name's tell second", sent[1])
	}
}

func TestSessionAcceptsInvite(t *testing.T) {
	g := newTestGateway(t, "")
	s, transport := newTestSession(t, g)

	s.handleInvited("#secret")
	joins := transport.sentJoins()
	if len(joins) != 1 || joins[0] != "#secret" {
		t.Errorf("joins = %v, want [#secret]", joins)
	}
}

func TestRehashIsAllOrNothing(t *testing.T) {
	g := newTestGateway(t, "")

	// Break the factoid file, then rehash: the error must surface
	// and the previous store must keep serving.
	if err := os.WriteFile(g.cfg.FactoidsFile, []byte(`{"not a channel": {}}`), 0o600); err != nil {
		t.Fatalf("writing factoids: %v", err)
	}
	if _, _, err := g.Rehash(); err == nil {
		t.Fatal("Rehash() = nil, want error for a malformed scope")
	}

	channel := ref.Channel("libera", "#nikola")
	if _, ok := g.factoids.Lookup(channel, "handbook"); !ok {
		t.Error("previous factoids lost after a failed rehash")
	}
	if _, ok := g.bindings.Secret("getnikola/nikola"); !ok {
		t.Error("previous secrets lost after a failed rehash")
	}
}

func TestWebhookBroadcastReachesActiveSession(t *testing.T) {
	g := newTestGateway(t, "")
	s, transport := newTestSession(t, g)
	s.handleWelcome()
	s.handleJoined("#nikola")

	g.pool.SendToChannel(ref.Channel("libera", "#nikola"), "announcement")
	sent := transport.sentPrivmsgs()
	// handleWelcome issued no privmsgs (no password), so the
	// broadcast is the only line.
	if len(sent) != 1 || sent[0][0] != "#nikola" || sent[0][1] != "announcement" {
		t.Errorf("privmsgs = %v, want the broadcast on #nikola", sent)
	}

	// A channel no session has joined is a silent no-op.
	g.pool.SendToChannel(ref.Channel("libera", "#other"), "dropped")
	if len(transport.sentPrivmsgs()) != 1 {
		t.Errorf("privmsgs = %v, broadcast leaked to unjoined channel", transport.sentPrivmsgs())
	}
}
