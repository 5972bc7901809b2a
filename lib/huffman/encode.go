// Copyright 2026 The Huffpack Authors
// SPDX-License-Identifier: Apache-2.0

package huffman

import "fmt"

// Result is the complete output of one compression pass: everything a
// container record needs to describe the payload and everything the
// visualizer surface needs to draw the tree. For empty input, Payload
// is empty, Codes is empty, Padding and OriginalSize are 0, and Tree
// is nil.
type Result struct {
	// Payload is the packed bitstream, padded to a whole number of
	// bytes.
	Payload []byte

	// Codes is the table the payload was packed with. Decoding
	// requires it; it travels in container metadata.
	Codes CodeTable

	// Padding is the number of zero bits appended to align the
	// stream: 8 - (bitLen mod 8), between 1 and 8 for non-empty
	// input. A value of 8 means the stream was already aligned and a
	// full zero byte was appended.
	Padding int

	// OriginalSize is the input length in bytes.
	OriginalSize int

	// Tree is the visualization projection of the code tree.
	Tree *TreeView
}

// Compress runs the full pipeline over data: count, build the tree,
// derive codes, pack. Output is deterministic for identical input.
func Compress(data []byte) (*Result, error) {
	if len(data) == 0 {
		return &Result{Codes: CodeTable{}}, nil
	}

	root, err := BuildTree(Count(data))
	if err != nil {
		return nil, fmt.Errorf("building code tree: %w", err)
	}
	codes := BuildCodes(root)

	payload, padding, err := Pack(data, codes)
	if err != nil {
		return nil, fmt.Errorf("packing bitstream: %w", err)
	}

	return &Result{
		Payload:      payload,
		Codes:        codes,
		Padding:      padding,
		OriginalSize: len(data),
		Tree:         NewTreeView(root),
	}, nil
}

// Pack concatenates the code of every input symbol into one logical
// bitstream, packed MSB-first into bytes. The returned padding is the
// number of zero bits appended to reach byte alignment: always in
// [1, 8] for non-empty input, with 8 meaning the stream was aligned
// and one full zero byte was appended anyway. Empty input returns an
// empty payload and padding 0.
//
// Every symbol in data must have a code; a missing code is an
// invalid-input error.
func Pack(data []byte, codes CodeTable) ([]byte, int, error) {
	if len(data) == 0 {
		return nil, 0, nil
	}

	// Indexing an array by the symbol replaces two map lookups per
	// input byte with one slice-header load.
	var codeFor [256]string
	for symbol, code := range codes {
		codeFor[symbol] = code
	}

	bitLen := 0
	for _, b := range data {
		length := len(codeFor[b])
		if length == 0 {
			return nil, 0, fmt.Errorf("%w: no code for symbol 0x%02x", ErrInvalidInput, b)
		}
		bitLen += length
	}
	padding := 8 - bitLen%8

	packed := make([]byte, 0, (bitLen+padding)/8)
	var current byte
	filled := 0
	for _, b := range data {
		code := codeFor[b]
		for i := 0; i < len(code); i++ {
			current <<= 1
			if code[i] == '1' {
				current |= 1
			}
			filled++
			if filled == 8 {
				packed = append(packed, current)
				current = 0
				filled = 0
			}
		}
	}

	// Flush the final byte, zero-filled on the right. When the
	// stream is already aligned (filled == 0) this appends the full
	// zero pad byte that padding == 8 describes.
	packed = append(packed, current<<(8-filled))

	return packed, padding, nil
}
