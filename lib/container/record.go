// Copyright 2026 The Huffpack Authors
// SPDX-License-Identifier: Apache-2.0

package container

import (
	"bytes"
	"fmt"
	"mime"
	"path/filepath"
	"unicode/utf8"

	"github.com/huffpack/huffpack/lib/huffman"
)

// Record is one compressed unit: a payload and the metadata that
// reverses it. Name is the original filename; the archive layer
// derives both entry names from it.
type Record struct {
	Name    string
	Payload []byte
	Meta    Metadata
}

// Compress runs the codec over content and assembles the complete
// record for it, including the recovery metadata and the content
// checksum.
func Compress(name string, content []byte) (*Record, error) {
	result, err := huffman.Compress(content)
	if err != nil {
		return nil, fmt.Errorf("compressing %q: %w", name, err)
	}

	return &Record{
		Name:    name,
		Payload: result.Payload,
		Meta: Metadata{
			Codes:             WireCodes(result.Codes),
			Padding:           result.Padding,
			OriginalSize:      result.OriginalSize,
			OriginalExtension: filepath.Ext(name),
			IsBinary:          DetectBinary(content),
			Checksum:          FormatHash(HashContent(content)),
		},
	}, nil
}

// Decompress restores the original content of a record. The decoded
// length must match the recorded original size, and when the record
// carries a checksum the restored bytes must hash to it; violations
// are content-integrity errors.
func Decompress(record *Record) ([]byte, error) {
	if err := record.Meta.Validate(); err != nil {
		return nil, fmt.Errorf("record %q: %w", record.Name, err)
	}
	codes, err := record.Meta.CodeTable()
	if err != nil {
		return nil, fmt.Errorf("record %q: %w", record.Name, err)
	}

	content, err := huffman.Decompress(record.Payload, codes, record.Meta.Padding, record.Meta.OriginalSize)
	if err != nil {
		return nil, fmt.Errorf("record %q: %w", record.Name, err)
	}

	if record.Meta.Checksum != "" {
		if actual := FormatHash(HashContent(content)); actual != record.Meta.Checksum {
			return nil, fmt.Errorf("record %q: checksum mismatch (stored %.12s…, computed %.12s…): %w",
				record.Name, record.Meta.Checksum, actual, huffman.ErrCorrupt)
		}
	}

	return content, nil
}

// CompressedSize returns the payload length in bytes.
func (r *Record) CompressedSize() int {
	return len(r.Payload)
}

// Ratio returns original size divided by payload size. Zero when the
// payload is empty.
func (r *Record) Ratio() float64 {
	if len(r.Payload) == 0 {
		return 0
	}
	return float64(r.Meta.OriginalSize) / float64(len(r.Payload))
}

// ContentType returns the MIME type to serve restored content with.
// A registered type for the original extension wins; otherwise the
// binary flag decides between a generic byte stream and plain text.
func (m *Metadata) ContentType() string {
	if m.OriginalExtension != "" {
		if byExtension := mime.TypeByExtension(m.OriginalExtension); byExtension != "" {
			return byExtension
		}
	}
	if m.IsBinary {
		return "application/octet-stream"
	}
	return "text/plain; charset=utf-8"
}

// DetectBinary reports whether content should be flagged binary:
// anything that is not valid UTF-8 or contains a NUL byte. Empty
// content counts as text.
func DetectBinary(content []byte) bool {
	return !utf8.Valid(content) || bytes.IndexByte(content, 0) >= 0
}
