// Copyright 2026 The Huffpack Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huffpack/huffpack/lib/container"
)

// buildArchive produces real archive bytes for one file, so store
// tests exercise the same bytes the handler stores.
func buildArchive(t *testing.T, name string, content []byte) []byte {
	t.Helper()
	record, err := container.Compress(name, content)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	var buffer bytes.Buffer
	if err := container.WriteArchive(&buffer, []*container.Record{record}); err != nil {
		t.Fatalf("WriteArchive: %v", err)
	}
	return buffer.Bytes()
}

func TestPutGetRoundTrip(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	archive := buildArchive(t, "essay.txt", []byte("store me please, twice over, store me please"))
	ref, err := s.Put(archive, JobRecord{
		Files: []FileStat{{Name: "essay.txt", OriginalSize: 44, CompressedSize: 20}},
	})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !strings.HasPrefix(ref, "arc-") || len(ref) != len("arc-")+12 {
		t.Fatalf("ref %q has the wrong shape", ref)
	}
	if want := container.FormatRef(container.HashArchive(archive)); ref != want {
		t.Errorf("ref: got %q, want %q", ref, want)
	}

	stored, err := s.Get(ref)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(stored, archive) {
		t.Error("stored archive bytes differ from input")
	}

	job, err := s.Job(ref)
	if err != nil {
		t.Fatalf("Job: %v", err)
	}
	if job.Ref != ref {
		t.Errorf("job ref: got %q, want %q", job.Ref, ref)
	}
	if job.ArchiveSize != int64(len(archive)) {
		t.Errorf("archive size: got %d, want %d", job.ArchiveSize, len(archive))
	}
	if job.CreatedAt.IsZero() {
		t.Error("CreatedAt was not filled in")
	}
	if len(job.Files) != 1 || job.Files[0].Name != "essay.txt" {
		t.Errorf("files: got %+v", job.Files)
	}
}

func TestPutIsIdempotent(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	archive := buildArchive(t, "same.txt", []byte("identical bytes land on the identical ref"))
	firstCreated := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	firstRef, err := s.Put(archive, JobRecord{CreatedAt: firstCreated})
	if err != nil {
		t.Fatalf("first Put: %v", err)
	}
	secondRef, err := s.Put(archive, JobRecord{CreatedAt: firstCreated.Add(time.Hour)})
	if err != nil {
		t.Fatalf("second Put: %v", err)
	}
	if firstRef != secondRef {
		t.Fatalf("refs differ for identical bytes: %q vs %q", firstRef, secondRef)
	}

	// The original record survives; the second Put was a no-op.
	job, err := s.Job(firstRef)
	if err != nil {
		t.Fatalf("Job: %v", err)
	}
	if !job.CreatedAt.Equal(firstCreated) {
		t.Errorf("CreatedAt: got %v, want the first record's %v", job.CreatedAt, firstCreated)
	}

	records, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("got %d records after double Put, want 1", len(records))
	}
}

func TestDistinctContentDistinctRefs(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	refA, err := s.Put([]byte("archive bytes A"), JobRecord{})
	if err != nil {
		t.Fatalf("Put A: %v", err)
	}
	refB, err := s.Put([]byte("archive bytes B"), JobRecord{})
	if err != nil {
		t.Fatalf("Put B: %v", err)
	}
	if refA == refB {
		t.Error("different bytes produced the same ref")
	}
}

func TestLookupErrors(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := s.Get("arc-0123456789ab"); !IsNotFound(err) {
		t.Errorf("unknown ref: got %v, want not-found error", err)
	}

	for _, ref := range []string{"", "x", "0123456789ab", "arc-0123", "arc-0123456789AB", "arc-0123456789zz", "arc-0123456789abcd"} {
		if _, err := s.Get(ref); !IsBadRef(err) {
			t.Errorf("ref %q: got %v, want bad-ref error", ref, err)
		}
	}
}

func TestListOrder(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	base := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	refs := make([]string, 3)
	for i := range refs {
		archive := []byte(strings.Repeat("archive body ", i+1))
		ref, err := s.Put(archive, JobRecord{CreatedAt: base.Add(time.Duration(i) * time.Minute)})
		if err != nil {
			t.Fatalf("Put %d: %v", i, err)
		}
		refs[i] = ref
	}

	records, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	// Newest first.
	for i, want := range []string{refs[2], refs[1], refs[0]} {
		if records[i].Ref != want {
			t.Errorf("records[%d]: got %q, want %q", i, records[i].Ref, want)
		}
	}
}

func TestDelete(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ref, err := s.Put([]byte("short lived archive"), JobRecord{})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	if err := s.Delete(ref); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ref); !IsNotFound(err) {
		t.Errorf("Get after delete: got %v, want not-found error", err)
	}
	if err := s.Delete(ref); !IsNotFound(err) {
		t.Errorf("second Delete: got %v, want not-found error", err)
	}

	records, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records after delete, want 0", len(records))
	}
}

func TestPutLeavesNoTempFiles(t *testing.T) {
	root := t.TempDir()
	s, err := New(root)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	archive := []byte("tidy store")
	ref, err := s.Put(archive, JobRecord{})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	hexHash := container.FormatHash(container.HashArchive(archive))
	shard := filepath.Join(root, hexHash[0:2], hexHash[2:4])
	entries, err := os.ReadDir(shard)
	if err != nil {
		t.Fatalf("reading shard: %v", err)
	}
	if len(entries) != 2 {
		names := make([]string, len(entries))
		for i, entry := range entries {
			names[i] = entry.Name()
		}
		t.Errorf("shard for %s holds %v, want exactly the archive and its sidecar", ref, names)
	}
}
