// Copyright 2026 The Huffpack Authors
// SPDX-License-Identifier: Apache-2.0

package huffman

import "fmt"

// Decompress reverses [Pack]: it rebuilds the decode tree from the
// code table, expands the payload MSB-first, drops the trailing
// padding bits, and walks the tree to recover the original symbols.
//
// padding must be in [0, 8] and originalSize must match the decoded
// symbol count exactly; violations are content-integrity errors. A
// malformed code table (empty, non-binary digits, not prefix-free) is
// an invalid-input error, detected before any bit is examined.
func Decompress(payload []byte, codes CodeTable, padding, originalSize int) ([]byte, error) {
	if originalSize < 0 {
		return nil, fmt.Errorf("%w: negative original size %d", ErrInvalidInput, originalSize)
	}
	if padding < 0 || padding > 8 {
		return nil, fmt.Errorf("%w: padding %d outside [0, 8]", ErrCorrupt, padding)
	}
	if len(payload) == 0 {
		if originalSize != 0 {
			return nil, fmt.Errorf("%w: empty payload cannot decode to %d symbols", ErrCorrupt, originalSize)
		}
		return nil, nil
	}

	root, err := buildDecodeTree(codes)
	if err != nil {
		return nil, err
	}

	bitLen := len(payload)*8 - padding
	decoded := make([]byte, 0, originalSize)
	node := root
	for i := 0; i < bitLen; i++ {
		branch := int(payload[i>>3]>>(7-i&7)) & 1
		next := node.children[branch]
		if next == nil {
			return nil, fmt.Errorf("%w: bitstream does not resolve at bit %d", ErrCorrupt, i)
		}
		if next.leaf {
			decoded = append(decoded, next.symbol)
			node = root
		} else {
			node = next
		}
	}
	if node != root {
		return nil, fmt.Errorf("%w: bitstream ends mid-code", ErrCorrupt)
	}
	if len(decoded) != originalSize {
		return nil, fmt.Errorf("%w: decoded %d symbols, expected %d", ErrCorrupt, len(decoded), originalSize)
	}

	return decoded, nil
}
