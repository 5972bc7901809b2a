// Copyright 2026 The Huffpack Authors
// SPDX-License-Identifier: Apache-2.0

package staging

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStashRetrieveRoundTrip(t *testing.T) {
	area, err := NewArea(t.TempDir(), "roundtrip")
	if err != nil {
		t.Fatalf("NewArea: %v", err)
	}
	defer area.Close()

	tests := []struct {
		name    string
		content []byte
	}{
		{"text.txt", []byte(strings.Repeat("compressible staging content. ", 64))},
		{"short.bin", []byte{0x01, 0x02, 0x03}},
		{"empty.txt", nil},
	}
	for _, tt := range tests {
		if err := area.Stash(tt.name, tt.content); err != nil {
			t.Fatalf("Stash(%q): %v", tt.name, err)
		}
		restored, err := area.Retrieve(tt.name)
		if err != nil {
			t.Fatalf("Retrieve(%q): %v", tt.name, err)
		}
		if !bytes.Equal(restored, tt.content) {
			t.Errorf("%q: round trip changed content (%d bytes -> %d bytes)",
				tt.name, len(tt.content), len(restored))
		}
	}
}

func TestStagedFilesAreCompressedAtRest(t *testing.T) {
	area, err := NewArea(t.TempDir(), "atrest")
	if err != nil {
		t.Fatalf("NewArea: %v", err)
	}
	defer area.Close()

	content := []byte(strings.Repeat("the same sentence over and over again. ", 256))
	if err := area.Stash("repetitive.txt", content); err != nil {
		t.Fatalf("Stash: %v", err)
	}

	onDisk, err := os.ReadFile(filepath.Join(area.Path(), "repetitive.txt"))
	if err != nil {
		t.Fatalf("reading staged file: %v", err)
	}
	if onDisk[0] != tagLZ4 {
		t.Errorf("staged tag: got 0x%02x, want lz4", onDisk[0])
	}
	if len(onDisk) >= len(content) {
		t.Errorf("staged file is %d bytes for %d bytes of repetitive content", len(onDisk), len(content))
	}
}

func TestIncompressibleContentStoredRaw(t *testing.T) {
	area, err := NewArea(t.TempDir(), "raw")
	if err != nil {
		t.Fatalf("NewArea: %v", err)
	}
	defer area.Close()

	// 256 distinct bytes with no repetition: nothing for LZ4 to find.
	content := make([]byte, 256)
	for i := range content {
		content[i] = byte(i)
	}
	if err := area.Stash("entropy.bin", content); err != nil {
		t.Fatalf("Stash: %v", err)
	}

	onDisk, err := os.ReadFile(filepath.Join(area.Path(), "entropy.bin"))
	if err != nil {
		t.Fatalf("reading staged file: %v", err)
	}
	if onDisk[0] != tagRaw {
		t.Errorf("staged tag: got 0x%02x, want raw", onDisk[0])
	}
	if len(onDisk) != headerSize+len(content) {
		t.Errorf("raw staged file is %d bytes, want %d", len(onDisk), headerSize+len(content))
	}

	restored, err := area.Retrieve("entropy.bin")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if !bytes.Equal(restored, content) {
		t.Error("raw round trip changed content")
	}
}

func TestAreasAreIsolated(t *testing.T) {
	root := t.TempDir()
	first, err := NewArea(root, "upload")
	if err != nil {
		t.Fatalf("NewArea: %v", err)
	}
	defer first.Close()
	second, err := NewArea(root, "upload")
	if err != nil {
		t.Fatalf("NewArea: %v", err)
	}
	defer second.Close()

	if first.Path() == second.Path() {
		t.Fatal("two areas with the same label share a directory")
	}

	if err := first.Stash("private.txt", []byte("mine")); err != nil {
		t.Fatalf("Stash: %v", err)
	}
	if _, err := second.Retrieve("private.txt"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("file from another area visible: err = %v", err)
	}
}

func TestCloseRemovesEverything(t *testing.T) {
	area, err := NewArea(t.TempDir(), "cleanup")
	if err != nil {
		t.Fatalf("NewArea: %v", err)
	}
	if err := area.Stash("leftover.txt", []byte("to be removed")); err != nil {
		t.Fatalf("Stash: %v", err)
	}

	if err := area.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(area.Path()); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("area still exists after Close: %v", err)
	}

	// Close is safe on every exit path, including a second call.
	if err := area.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestStashRejectsTraversalNames(t *testing.T) {
	area, err := NewArea(t.TempDir(), "names")
	if err != nil {
		t.Fatalf("NewArea: %v", err)
	}
	defer area.Close()

	for _, name := range []string{"", ".", "..", "a/b.txt", "../escape.txt", "/etc/passwd"} {
		if err := area.Stash(name, []byte("x")); err == nil {
			t.Errorf("Stash(%q) succeeded, want error", name)
		}
		if _, err := area.Retrieve(name); err == nil {
			t.Errorf("Retrieve(%q) succeeded, want error", name)
		}
	}
}

func TestList(t *testing.T) {
	area, err := NewArea(t.TempDir(), "list")
	if err != nil {
		t.Fatalf("NewArea: %v", err)
	}
	defer area.Close()

	for _, name := range []string{"zebra.txt", "alpha.txt", "mid.bin"} {
		if err := area.Stash(name, []byte(name)); err != nil {
			t.Fatalf("Stash(%q): %v", name, err)
		}
	}

	names, err := area.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"alpha.txt", "mid.bin", "zebra.txt"}
	if len(names) != len(want) {
		t.Fatalf("got %d names, want %d", len(names), len(want))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d]: got %q, want %q", i, names[i], want[i])
		}
	}
}
