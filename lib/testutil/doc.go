// Copyright 2026 The Crowbot Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for Crowbot packages.
//
// [RequireReceive], [RequireSend], and [RequireClosed] encapsulate the
// timeout safety valve pattern (select with time.After fallback) so
// that individual tests do not need direct time.After calls. They are
// used for the pool's readiness channel, the HTTP server's ready
// channel, and outbound-send capture channels in gateway tests.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no Crowbot-internal dependencies.
package testutil
