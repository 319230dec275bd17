// Copyright 2026 The Crowbot Authors
// SPDX-License-Identifier: Apache-2.0

// Package gateway glues the pieces of the relay together: it owns the
// factoid store, tell queue, dispatcher, connection pool, channel
// logs, and webhook bindings, supervises one IRC connection per
// configured network, and exposes the webhook handler and admin
// socket actions that cmd/crowbot serves.
//
// Per-connection chat semantics (command replies, tell delivery on
// join and rename, NickServ identification, invite handling) live in
// the session type; the Gateway itself only reconnects sessions and
// reloads state.
package gateway
