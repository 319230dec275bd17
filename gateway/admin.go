// Copyright 2026 The Crowbot Authors
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"context"

	"github.com/crowbot-irc/crowbot/lib/service"
)

// StatusResult is the response payload of the status action.
type StatusResult struct {
	ActiveConnections int `cbor:"active_connections"`
	Factoids          int `cbor:"factoids"`
	Secrets           int `cbor:"secrets"`
	PendingTells      int `cbor:"pending_tells"`
}

// ReloadResult is the response payload of the reload action.
type ReloadResult struct {
	Secrets  int `cbor:"secrets"`
	Factoids int `cbor:"factoids"`
}

// RegisterAdminActions installs the gateway's admin protocol on a
// socket server. The actions mirror the chat-side admin commands, for
// operators without channel access.
func (g *Gateway) RegisterAdminActions(server *service.SocketServer) {
	server.Handle("status", func(ctx context.Context, raw []byte) (any, error) {
		return StatusResult{
			ActiveConnections: g.pool.ActiveConnections(),
			Factoids:          g.factoids.Count(),
			Secrets:           g.bindings.SecretCount(),
			PendingTells:      g.tells.Len(),
		}, nil
	})

	server.Handle("reload", func(ctx context.Context, raw []byte) (any, error) {
		secrets, factoids, err := g.Rehash()
		if err != nil {
			return nil, err
		}
		return ReloadResult{Secrets: secrets, Factoids: factoids}, nil
	})

	server.Handle("clear-tells", func(ctx context.Context, raw []byte) (any, error) {
		g.tells.Clear()
		g.logger.Info("tell queue cleared via admin socket")
		return nil, nil
	})
}
