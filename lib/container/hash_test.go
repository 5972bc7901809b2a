// Copyright 2026 The Huffpack Authors
// SPDX-License-Identifier: Apache-2.0

package container

import (
	"strings"
	"testing"
)

func TestHashDomainsAreDistinct(t *testing.T) {
	// Domain separation: identical bytes hash differently as content
	// and as archive.
	input := []byte("the same input bytes for both domains")

	if HashContent(input) == HashArchive(input) {
		t.Error("content and archive domains produced the same hash for identical input")
	}
}

func TestHashDeterministic(t *testing.T) {
	input := []byte("deterministic input")
	if HashContent(input) != HashContent(input) {
		t.Error("HashContent produced different results for the same input")
	}
	if HashArchive(input) != HashArchive(input) {
		t.Error("HashArchive produced different results for the same input")
	}
}

func TestDomainKeysAreReadable(t *testing.T) {
	// The keys are ASCII domain names, zero-padded. A copy-paste slip
	// that made them identical would silently collapse the domains.
	if contentDomainKey == archiveDomainKey {
		t.Fatal("content and archive domain keys are identical")
	}
	prefix := "huffpack."
	if string(contentDomainKey[:len(prefix)]) != prefix {
		t.Errorf("content key does not start with %q", prefix)
	}
	if string(archiveDomainKey[:len(prefix)]) != prefix {
		t.Errorf("archive key does not start with %q", prefix)
	}
}

func TestFormatParseHashRoundtrip(t *testing.T) {
	hash := HashContent([]byte("round trip me"))

	formatted := FormatHash(hash)
	if len(formatted) != 64 {
		t.Fatalf("formatted hash is %d characters, want 64", len(formatted))
	}

	parsed, err := ParseHash(formatted)
	if err != nil {
		t.Fatalf("ParseHash: %v", err)
	}
	if parsed != hash {
		t.Error("parsed hash differs from original")
	}
}

func TestParseHashRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"zz",
		"abcd",
		strings.Repeat("ab", 31),
		strings.Repeat("ab", 33),
	}
	for _, input := range cases {
		if _, err := ParseHash(input); err == nil {
			t.Errorf("ParseHash(%q) succeeded, want error", input)
		}
	}
}

func TestFormatRef(t *testing.T) {
	hash := HashArchive([]byte("some archive bytes"))
	ref := FormatRef(hash)

	if !strings.HasPrefix(ref, "arc-") {
		t.Errorf("ref %q does not start with arc-", ref)
	}
	if len(ref) != len("arc-")+12 {
		t.Errorf("ref %q is %d characters, want %d", ref, len(ref), len("arc-")+12)
	}
	if !strings.HasPrefix(FormatHash(hash), ref[len("arc-"):]) {
		t.Errorf("ref %q is not a prefix of the full hash %q", ref, FormatHash(hash))
	}
}
