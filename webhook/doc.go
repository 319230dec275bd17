// Copyright 2026 The Crowbot Authors
// SPDX-License-Identifier: Apache-2.0

// Package webhook bridges GitHub webhook deliveries into chat
// messages. The handler verifies each delivery against a
// per-repository shared secret (HMAC-SHA1 over the raw body, as
// GitHub signs the X-Hub-Signature header), maps the repository to a
// target channel, formats the event through a fixed per-action
// template, and hands the result to the broadcast router.
//
// Responses are plain text. Every validation failure is a 400 with a
// short body naming the stage that rejected the delivery; an
// unrecognized action on a well-formed, authenticated delivery is a
// 200 without a broadcast, so that GitHub does not retry it.
package webhook
