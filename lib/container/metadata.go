// Copyright 2026 The Huffpack Authors
// SPDX-License-Identifier: Apache-2.0

package container

import (
	"fmt"
	"unicode/utf8"

	json "github.com/goccy/go-json"

	"github.com/huffpack/huffpack/lib/huffman"
)

// Metadata is the recovery document stored next to each compressed
// payload: the ".meta" half of a record. Field names are the wire
// contract — archives produced by earlier implementations of the
// format decode with exactly these keys, and the checksum field is
// optional so their records (which predate it) still verify as
// structurally valid.
type Metadata struct {
	// Codes is the code table with each symbol in its one-rune
	// string form. A symbol byte b appears as string(rune(b)), so
	// bytes above 0x7f become two-byte UTF-8 sequences in the
	// document while still naming a single-byte symbol.
	Codes map[string]string `json:"codes"`

	// Padding is the number of zero bits appended to the packed
	// bitstream: 0 only for an empty original, otherwise in [1, 8].
	Padding int `json:"padding"`

	// OriginalSize is the byte length of the original content.
	OriginalSize int `json:"original_size"`

	// OriginalExtension is the extension of the original filename,
	// dot included ("" when the name had none).
	OriginalExtension string `json:"original_extension"`

	// IsBinary records whether the original content was not valid
	// UTF-8 or contained a NUL byte. Advisory: it picks the content
	// type when restored files are served.
	IsBinary bool `json:"is_binary"`

	// Checksum is the hex content-domain BLAKE3 hash of the original
	// bytes, verified after decompression. Empty means the record
	// carries no checksum and decompression skips verification.
	Checksum string `json:"checksum,omitempty"`
}

// MarshalDocument serializes the metadata to its JSON document form.
func (m *Metadata) MarshalDocument() ([]byte, error) {
	document, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encoding metadata document: %w", err)
	}
	return document, nil
}

// ParseDocument deserializes and validates a JSON metadata document.
// Malformed JSON and out-of-range fields are invalid-input errors.
func ParseDocument(document []byte) (*Metadata, error) {
	var meta Metadata
	if err := json.Unmarshal(document, &meta); err != nil {
		return nil, fmt.Errorf("%w: metadata document: %v", huffman.ErrInvalidInput, err)
	}
	if err := meta.Validate(); err != nil {
		return nil, err
	}
	return &meta, nil
}

// Validate checks field ranges and the shape of the code table keys.
// The deeper prefix-free check runs when the table is inverted at
// decode time; this catches documents that could never have been
// produced by the encoder.
func (m *Metadata) Validate() error {
	if m.Padding < 0 || m.Padding > 8 {
		return fmt.Errorf("%w: metadata padding %d outside [0, 8]", huffman.ErrInvalidInput, m.Padding)
	}
	if m.OriginalSize < 0 {
		return fmt.Errorf("%w: metadata original_size %d is negative", huffman.ErrInvalidInput, m.OriginalSize)
	}
	if len(m.Codes) > 256 {
		return fmt.Errorf("%w: metadata has %d codes, more than 256 symbols exist", huffman.ErrInvalidInput, len(m.Codes))
	}
	for key := range m.Codes {
		if _, err := ParseSymbolKey(key); err != nil {
			return err
		}
	}
	return nil
}

// CodeTable converts the wire-form code table to the codec's form.
func (m *Metadata) CodeTable() (huffman.CodeTable, error) {
	codes := make(huffman.CodeTable, len(m.Codes))
	for key, code := range m.Codes {
		symbol, err := ParseSymbolKey(key)
		if err != nil {
			return nil, err
		}
		codes[symbol] = code
	}
	return codes, nil
}

// WireCodes converts a codec table to the one-rune-string keyed wire
// form used in metadata documents and API responses.
func WireCodes(codes huffman.CodeTable) map[string]string {
	wire := make(map[string]string, len(codes))
	for symbol, code := range codes {
		wire[string(rune(symbol))] = code
	}
	return wire
}

// ParseSymbolKey decodes a wire symbol key (code-table key, frequency
// spec key) back to its symbol byte. Keys must be exactly one rune
// with a code point of at most 0xFF; anything else cannot name a byte
// symbol.
func ParseSymbolKey(key string) (byte, error) {
	r, size := utf8.DecodeRuneInString(key)
	if key == "" || (r == utf8.RuneError && size <= 1) {
		return 0, fmt.Errorf("%w: symbol key %q is not valid UTF-8", huffman.ErrInvalidInput, key)
	}
	if size != len(key) {
		return 0, fmt.Errorf("%w: symbol key %q is not a single rune", huffman.ErrInvalidInput, key)
	}
	if r > 0xFF {
		return 0, fmt.Errorf("%w: symbol key %q exceeds the byte alphabet", huffman.ErrInvalidInput, key)
	}
	return byte(r), nil
}

// ParseFrequencySpec validates a wire frequency spec and converts it
// to a codec frequency table. Keys follow the symbol key convention;
// a negative count rejects the whole spec, a zero count means the
// symbol is absent. A spec with no positive counts is an error: there
// is nothing to build a tree from.
func ParseFrequencySpec(spec map[string]int) (huffman.FrequencyTable, error) {
	table := make(huffman.FrequencyTable, len(spec))
	for key, count := range spec {
		symbol, err := ParseSymbolKey(key)
		if err != nil {
			return nil, err
		}
		if count < 0 {
			return nil, fmt.Errorf("%w: frequency for %q is negative", huffman.ErrInvalidInput, key)
		}
		if count == 0 {
			continue
		}
		table[symbol] = count
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("%w: frequency spec has no symbols with positive counts", huffman.ErrInvalidInput)
	}
	return table, nil
}
