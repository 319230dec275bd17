// Copyright 2026 The Crowbot Authors
// SPDX-License-Identifier: Apache-2.0

// Package factoid implements the canned-response store.
//
// A factoid is a short key mapped to arbitrary response text, scoped
// either to a single channel or to the global scope shared by all
// channels. The store is loaded in bulk from the factoid source file
// at startup and on admin-triggered rehash; it is never mutated
// incrementally at runtime. Channel scope shadows global scope on
// lookup; a miss in both is silence, not an error.
package factoid
