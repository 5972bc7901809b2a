// Copyright 2026 The Huffpack Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"testing"
)

// sampleRecord mirrors the shape of a store job record: json tags
// only, relying on fxamacker's json-tag fallback for CBOR field
// names.
type sampleRecord struct {
	Ref       string   `json:"ref"`
	FileCount int      `json:"file_count"`
	Names     []string `json:"names,omitempty"`
}

func TestMarshalUnmarshalRoundtrip(t *testing.T) {
	original := sampleRecord{
		Ref:       "arc-3f9a01c2b44d",
		FileCount: 3,
		Names:     []string{"notes.txt", "report.pdf", "logo.png"},
	}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Marshal produced empty output")
	}

	var decoded sampleRecord
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Ref != original.Ref || decoded.FileCount != original.FileCount {
		t.Errorf("roundtrip mismatch: got %+v, want %+v", decoded, original)
	}
	if len(decoded.Names) != len(original.Names) {
		t.Fatalf("names: got %d entries, want %d", len(decoded.Names), len(original.Names))
	}
	for i := range original.Names {
		if decoded.Names[i] != original.Names[i] {
			t.Errorf("names[%d]: got %q, want %q", i, decoded.Names[i], original.Names[i])
		}
	}
}

func TestMarshalDeterministic(t *testing.T) {
	// Maps are the canonical source of encoding nondeterminism; the
	// deterministic mode must sort keys.
	message := map[string]int{"padding": 5, "alpha": 1, "zeta": 26, "mid": 13}

	first, err := Marshal(message)
	if err != nil {
		t.Fatalf("first Marshal: %v", err)
	}
	for i := 0; i < 16; i++ {
		again, err := Marshal(message)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatalf("deterministic encoding violated:\n  first: %x\n  again: %x", first, again)
		}
	}
}

func TestOmitemptyRespected(t *testing.T) {
	// A zero-value omitempty field should not appear in output.
	withNames := sampleRecord{Ref: "arc-0", FileCount: 1, Names: []string{"a.txt"}}
	withoutNames := sampleRecord{Ref: "arc-0", FileCount: 1}

	dataWith, err := Marshal(withNames)
	if err != nil {
		t.Fatal(err)
	}
	dataWithout, err := Marshal(withoutNames)
	if err != nil {
		t.Fatal(err)
	}

	if len(dataWithout) >= len(dataWith) {
		t.Errorf("omitempty not effective: without=%d bytes, with=%d bytes",
			len(dataWithout), len(dataWith))
	}
}

func TestUnmarshalIgnoresUnknownFields(t *testing.T) {
	// Forward compatibility: a record written by a newer version with
	// extra fields still decodes.
	extended := map[string]any{
		"ref":        "arc-0011223344ff",
		"file_count": 2,
		"added_in_a_future_version": true,
	}
	data, err := Marshal(extended)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded sampleRecord
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Ref != "arc-0011223344ff" || decoded.FileCount != 2 {
		t.Errorf("got %+v, want ref and file_count preserved", decoded)
	}
}

func TestUnmarshalAnyUsesStringKeyedMaps(t *testing.T) {
	data, err := Marshal(map[string]any{"outer": map[string]any{"inner": 1}})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded any
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	outer, ok := decoded.(map[string]any)
	if !ok {
		t.Fatalf("decoded to %T, want map[string]any", decoded)
	}
	if _, ok := outer["outer"].(map[string]any); !ok {
		t.Fatalf("nested value decoded to %T, want map[string]any", outer["outer"])
	}
}

func TestUnmarshalInvalidCBOR(t *testing.T) {
	var record sampleRecord
	if err := Unmarshal([]byte{0xFF, 0xFE, 0xFD}, &record); err == nil {
		t.Error("Unmarshal should reject invalid CBOR")
	}
}

func TestByteStringRoundtrip(t *testing.T) {
	// []byte fields encode as CBOR byte strings (major type 2), not
	// text strings. Job records carry raw digests this way.
	type envelope struct {
		Digest []byte `json:"digest"`
	}

	original := envelope{Digest: []byte{0xde, 0xad, 0xbe, 0xef, 0x00, 0x01}}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded envelope
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !bytes.Equal(decoded.Digest, original.Digest) {
		t.Errorf("byte string roundtrip: got %x, want %x", decoded.Digest, original.Digest)
	}
}

func BenchmarkMarshal(b *testing.B) {
	record := sampleRecord{
		Ref:       "arc-3f9a01c2b44d",
		FileCount: 3,
		Names:     []string{"notes.txt", "report.pdf", "logo.png"},
	}

	b.ReportAllocs()
	for b.Loop() {
		Marshal(record)
	}
}

func BenchmarkUnmarshal(b *testing.B) {
	record := sampleRecord{
		Ref:       "arc-3f9a01c2b44d",
		FileCount: 3,
		Names:     []string{"notes.txt", "report.pdf", "logo.png"},
	}
	data, err := Marshal(record)
	if err != nil {
		b.Fatal(err)
	}

	b.SetBytes(int64(len(data)))
	b.ReportAllocs()
	for b.Loop() {
		var decoded sampleRecord
		Unmarshal(data, &decoded)
	}
}
