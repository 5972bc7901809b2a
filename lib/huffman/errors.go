// Copyright 2026 The Huffpack Authors
// SPDX-License-Identifier: Apache-2.0

package huffman

import "errors"

// Error kinds. Every error returned by this package wraps exactly one
// of these sentinels, so callers can classify failures with errors.Is
// without string matching. The distinction matters at API boundaries:
// invalid input is the client's fault (reject the request), corrupt
// data means a payload or its metadata no longer describe each other
// (the stored content is damaged).
var (
	// ErrInvalidInput marks malformed inputs detected before any
	// decoding work: empty or negative frequency tables, code tables
	// with non-binary digits, tables that are not prefix-free.
	ErrInvalidInput = errors.New("huffman: invalid input")

	// ErrCorrupt marks content-integrity failures: padding
	// inconsistent with the payload, a bitstream that ends mid-code
	// or walks off the tree, or a decoded length that contradicts
	// the recorded original size.
	ErrCorrupt = errors.New("huffman: corrupt data")
)

// IsInvalidInput reports whether err is an invalid-input error.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsCorrupt reports whether err is a content-integrity error.
func IsCorrupt(err error) bool {
	return errors.Is(err, ErrCorrupt)
}
