// Copyright 2026 The Huffpack Authors
// SPDX-License-Identifier: Apache-2.0

package huffman

// FrequencyTable maps each symbol that occurs in an input to its
// occurrence count. Symbols that do not occur are absent, never
// present with a zero count. The sum of all counts equals the input
// length in bytes.
type FrequencyTable map[byte]int

// Count tallies symbol frequencies over data. Empty input yields an
// empty table; callers special-case that before building a tree.
func Count(data []byte) FrequencyTable {
	// Fixed-size counting avoids per-symbol map operations on the
	// hot path. The map is built once at the end, from the symbols
	// that actually occurred.
	var counts [256]int
	for _, b := range data {
		counts[b]++
	}

	table := make(FrequencyTable)
	for symbol, count := range counts {
		if count > 0 {
			table[byte(symbol)] = count
		}
	}
	return table
}

// Total returns the sum of all counts: the length in bytes of the
// input the table was derived from.
func (t FrequencyTable) Total() int {
	total := 0
	for _, count := range t {
		total += count
	}
	return total
}
