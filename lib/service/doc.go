// Copyright 2026 The Crowbot Authors
// SPDX-License-Identifier: Apache-2.0

// Package service provides shared process infrastructure for the
// crowbot binaries: an HTTP server for webhook ingestion, a CBOR
// Unix socket server for the admin protocol, and a matching socket
// client used by crowbotctl.
//
// The two servers follow the same lifecycle pattern: construct,
// register handlers, then Serve(ctx) blocks until the context is
// cancelled and in-flight work drains. The socket protocol handles
// exactly one request-response cycle per connection: the client
// writes a CBOR value, the server writes a CBOR Response, and the
// connection closes.
package service
