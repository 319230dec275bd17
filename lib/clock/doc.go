// Copyright 2026 The Crowbot Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts time for testability.
//
// [Real] returns a Clock backed by the time package for production
// use. [Fake] returns a deterministic clock whose time only moves when
// a test calls Advance or Set, letting tests exercise tell-entry
// timestamps, channel-log day rollover, and reconnect backoff without
// real waiting.
package clock
