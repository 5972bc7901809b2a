// Copyright 2026 The Huffpack Authors
// SPDX-License-Identifier: Apache-2.0

package huffman

import "fmt"

// CodeTable maps symbols to their bit strings over {'0', '1'}. The
// table is prefix-free: no code is a prefix of another, which is what
// allows the decoder to resolve the bitstream greedily without
// separators.
type CodeTable map[byte]string

// BuildCodes derives the code table from a code tree: "0" appended on
// every left descent, "1" on every right. A lone-leaf root (single
// distinct symbol in the input) gets the fixed code "0" so the packed
// stream is never empty for non-empty input.
func BuildCodes(root *Node) CodeTable {
	codes := make(CodeTable)
	if root == nil {
		return codes
	}
	if root.Leaf {
		codes[root.Symbol] = "0"
		return codes
	}
	assignCodes(root, "", codes)
	return codes
}

func assignCodes(node *Node, prefix string, codes CodeTable) {
	if node.Leaf {
		codes[node.Symbol] = prefix
		return
	}
	assignCodes(node.Left, prefix+"0", codes)
	assignCodes(node.Right, prefix+"1", codes)
}

// Validate checks that the table is usable for decoding: every code
// is a non-empty string over {'0', '1'} and no code is a prefix of
// another (duplicates included). Tables produced by [BuildCodes]
// always pass; tables deserialized from container metadata are
// untrusted and must be checked before decode.
func (t CodeTable) Validate() error {
	_, err := buildDecodeTree(t)
	return err
}

// MaxCodeLen returns the length in bits of the longest code, 0 for an
// empty table.
func (t CodeTable) MaxCodeLen() int {
	longest := 0
	for _, code := range t {
		if len(code) > longest {
			longest = len(code)
		}
	}
	return longest
}

// decodeNode is one node of the decode tree rebuilt from a code
// table. It mirrors the shape of the original code tree minus the
// weights: the table alone fully determines it.
type decodeNode struct {
	children [2]*decodeNode
	symbol   byte
	leaf     bool
}

// buildDecodeTree inverts a code table into a walkable tree. The
// construction doubles as validation: any table that is not
// prefix-free fails to build, because some code would have to either
// terminate on an existing interior node or descend through an
// existing leaf.
func buildDecodeTree(codes CodeTable) (*decodeNode, error) {
	if len(codes) == 0 {
		return nil, fmt.Errorf("%w: empty code table", ErrInvalidInput)
	}

	root := &decodeNode{}
	for symbol := 0; symbol < 256; symbol++ {
		code, present := codes[byte(symbol)]
		if !present {
			continue
		}
		if code == "" {
			return nil, fmt.Errorf("%w: symbol 0x%02x has an empty code", ErrInvalidInput, symbol)
		}

		node := root
		for i := 0; i < len(code); i++ {
			var branch int
			switch code[i] {
			case '0':
				branch = 0
			case '1':
				branch = 1
			default:
				return nil, fmt.Errorf("%w: symbol 0x%02x code %q contains %q", ErrInvalidInput, symbol, code, code[i])
			}
			if node.leaf {
				// Walking through a completed code: some shorter
				// code is a prefix of this one.
				return nil, fmt.Errorf("%w: code table is not prefix-free at symbol 0x%02x", ErrInvalidInput, symbol)
			}
			if node.children[branch] == nil {
				node.children[branch] = &decodeNode{}
			}
			node = node.children[branch]
		}

		if node.leaf || node.children[0] != nil || node.children[1] != nil {
			// Terminating on a leaf is a duplicate code; terminating
			// on an interior node means this code prefixes another.
			return nil, fmt.Errorf("%w: code table is not prefix-free at symbol 0x%02x", ErrInvalidInput, symbol)
		}
		node.symbol = byte(symbol)
		node.leaf = true
	}

	return root, nil
}
