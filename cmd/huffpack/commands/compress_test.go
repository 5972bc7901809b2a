// Copyright 2026 The Huffpack Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/huffpack/huffpack/lib/container"
)

// writeInputs creates the named files under a fresh temp directory
// and returns their paths in input order.
func writeInputs(t *testing.T, files map[string][]byte) (string, []string) {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, 0, len(files))
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, content, 0644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
		paths = append(paths, path)
	}
	return dir, paths
}

func readBackArchive(t *testing.T, path string) *container.Archive {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening archive: %v", err)
	}
	defer file.Close()
	info, err := file.Stat()
	if err != nil {
		t.Fatalf("stat archive: %v", err)
	}
	archive, err := container.ReadArchive(file, info.Size())
	if err != nil {
		t.Fatalf("ReadArchive: %v", err)
	}
	return archive
}

func TestRunCompressRoundTrip(t *testing.T) {
	contents := map[string][]byte{
		"notes.txt": []byte("the quick brown fox jumps over the lazy dog"),
		"blob.bin":  {0x00, 0xFF, 0x10, 0x00, 0xFF, 0xFF, 0x42},
	}
	dir, inputs := writeInputs(t, contents)
	outputPath := filepath.Join(dir, "out.zip")

	var out bytes.Buffer
	if err := runCompress(inputs, outputPath, io.Discard, &out); err != nil {
		t.Fatalf("runCompress: %v", err)
	}

	for _, want := range []string{"ENTRY", "notes.txt", "blob.bin", "TOTAL", outputPath} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}

	archive := readBackArchive(t, outputPath)
	if len(archive.Records) != 2 {
		t.Fatalf("got %d records, want 2", len(archive.Records))
	}
	for _, item := range archive.ExtractAll() {
		if item.Err != nil {
			t.Fatalf("restoring %s: %v", item.Name, item.Err)
		}
		if !bytes.Equal(item.Data, contents[item.Name]) {
			t.Errorf("%s: restored bytes differ from input", item.Name)
		}
	}
}

func TestRunCompressRequiresInput(t *testing.T) {
	err := runCompress(nil, "out.zip", io.Discard, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "at least one input file") {
		t.Errorf("got %v, want input-required error", err)
	}
}

func TestRunCompressRejectsEntryCollision(t *testing.T) {
	dirA, pathsA := writeInputs(t, map[string][]byte{"same.txt": []byte("one")})
	_, pathsB := writeInputs(t, map[string][]byte{"same.txt": []byte("two")})

	err := runCompress(append(pathsA, pathsB...), filepath.Join(dirA, "out.zip"), io.Discard, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "collide on archive entry") {
		t.Errorf("got %v, want collision error", err)
	}
}

func TestRunCompressMissingInput(t *testing.T) {
	dir := t.TempDir()
	err := runCompress([]string{filepath.Join(dir, "absent.txt")}, filepath.Join(dir, "out.zip"), io.Discard, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "absent.txt") {
		t.Errorf("got %v, want stat error naming the file", err)
	}
}

func TestRunCompressRejectsDirectory(t *testing.T) {
	dir := t.TempDir()
	err := runCompress([]string{dir}, filepath.Join(dir, "out.zip"), io.Discard, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "is a directory") {
		t.Errorf("got %v, want directory error", err)
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1536, "1.5 KB"},
		{3 << 20, "3.0 MB"},
		{2 << 30, "2.0 GB"},
	}
	for _, tt := range tests {
		if got := formatSize(tt.bytes); got != tt.want {
			t.Errorf("formatSize(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}

func TestFormatRatio(t *testing.T) {
	if got := formatRatio(1.5); got != "1.50x" {
		t.Errorf("formatRatio(1.5) = %q, want %q", got, "1.50x")
	}
	if got := formatRatio(0); got != "-" {
		t.Errorf("formatRatio(0) = %q, want %q", got, "-")
	}
}
