// Copyright 2026 The Crowbot Authors
// SPDX-License-Identifier: Apache-2.0

// Package chanlog writes the append-only per-channel-per-day chat
// logs.
//
// Each qualified channel gets its own directory tree
// (logdir/network/#channel/2026-03-14.log) so the same channel name on
// two networks never shares a file. mIRC formatting codes are stripped
// on the way in, entries are written atomically one line at a time,
// and a finished day's file is compressed (zstd by default) when the
// first write of the next day arrives.
package chanlog
