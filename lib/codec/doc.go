// Copyright 2026 The Crowbot Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides deterministic CBOR encoding for the admin
// control socket protocol.
//
// All wire encoding goes through [Marshal]/[Unmarshal] or the stream
// [NewEncoder]/[NewDecoder] constructors, so every package that talks
// CBOR uses identical encoder options: Core Deterministic Encoding on
// the way out (same logical request always produces identical bytes)
// and lenient decoding with unknown-field tolerance on the way in, so
// an older crowbotctl can talk to a newer gateway.
package codec
