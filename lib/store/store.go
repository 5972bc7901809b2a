// Copyright 2026 The Huffpack Authors
// SPDX-License-Identifier: Apache-2.0

// Package store keeps finished archives on disk, addressed by the
// archive-domain hash of their bytes. Content addressing is what
// makes the service safe under concurrency: two requests can never
// fight over a shared output name, and re-storing identical content
// is a no-op that lands on the same reference.
//
// Layout: <root>/<aa>/<bb>/<hash>.zip with a <hash>.cbor job-record
// sidecar, where aa and bb are the first two byte pairs of the hex
// hash. The sidecar is written last and is the marker that the
// archive is fully stored; listings scan sidecars only.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/huffpack/huffpack/lib/codec"
	"github.com/huffpack/huffpack/lib/container"
)

// Errors returned by lookup operations.
var (
	ErrNotFound = errors.New("store: archive not found")
	ErrBadRef   = errors.New("store: malformed archive reference")
)

// IsNotFound reports whether err means the reference names no stored
// archive.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsBadRef reports whether err means the reference string itself is
// malformed.
func IsBadRef(err error) bool {
	return errors.Is(err, ErrBadRef)
}

const (
	refPrefix    = "arc-"
	refHexLength = 12

	archiveExtension = ".zip"
	sidecarExtension = ".cbor"
)

// FileStat summarizes one record inside a stored archive.
type FileStat struct {
	Name           string `json:"name"`
	OriginalSize   int    `json:"original_size"`
	CompressedSize int    `json:"compressed_size"`
}

// JobRecord describes one stored archive: what went in and what came
// out. Persisted as the CBOR sidecar and served directly as JSON in
// listings, so fields carry json tags for both.
type JobRecord struct {
	Ref         string     `json:"ref"`
	CreatedAt   time.Time  `json:"created_at"`
	ArchiveSize int64      `json:"archive_size"`
	Files       []FileStat `json:"files,omitempty"`
}

// Store is a content-addressed archive store rooted at one directory.
// All methods are safe for concurrent use: writes go through unique
// temp files and the final rename is atomic.
type Store struct {
	root string
}

// New opens (creating if needed) a store rooted at root.
func New(root string) (*Store, error) {
	if root == "" {
		return nil, fmt.Errorf("store root must not be empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating store root: %w", err)
	}
	return &Store{root: root}, nil
}

// Root returns the store's root directory.
func (s *Store) Root() string {
	return s.root
}

// Put stores archive bytes and their job record, returning the
// archive reference. Storing bytes that are already present is
// idempotent: the existing record is kept and the same reference
// comes back. The record's Ref, ArchiveSize, and (when zero)
// CreatedAt fields are filled in here.
func (s *Store) Put(archive []byte, job JobRecord) (string, error) {
	hash := container.HashArchive(archive)
	hexHash := container.FormatHash(hash)
	ref := container.FormatRef(hash)

	directory := filepath.Join(s.root, hexHash[0:2], hexHash[2:4])
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return "", fmt.Errorf("creating shard directory: %w", err)
	}
	archivePath := filepath.Join(directory, hexHash+archiveExtension)
	sidecarPath := filepath.Join(directory, hexHash+sidecarExtension)

	// Same bytes, same path: an existing sidecar means a previous
	// Put completed and there is nothing to do.
	if _, err := os.Stat(sidecarPath); err == nil {
		return ref, nil
	}

	job.Ref = ref
	job.ArchiveSize = int64(len(archive))
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	sidecar, err := codec.Marshal(&job)
	if err != nil {
		return "", fmt.Errorf("encoding job record: %w", err)
	}

	if err := writeAtomic(directory, archivePath, archive); err != nil {
		return "", err
	}
	// The sidecar lands after the archive so a sidecar on disk always
	// points at complete archive bytes.
	if err := writeAtomic(directory, sidecarPath, sidecar); err != nil {
		return "", err
	}

	return ref, nil
}

// Get returns the archive bytes for a reference.
func (s *Store) Get(ref string) ([]byte, error) {
	basePath, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}
	archive, err := os.ReadFile(basePath + archiveExtension)
	if err != nil {
		return nil, fmt.Errorf("reading archive %s: %w", ref, err)
	}
	return archive, nil
}

// Job returns the job record for a reference.
func (s *Store) Job(ref string) (*JobRecord, error) {
	basePath, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}
	return readJobRecord(basePath + sidecarExtension)
}

// List returns the job records of every stored archive, newest
// first; ties on creation time fall back to reference order.
func (s *Store) List() ([]*JobRecord, error) {
	var records []*JobRecord

	pattern := filepath.Join(s.root, "??", "??", "*"+sidecarExtension)
	sidecars, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("scanning store: %w", err)
	}
	for _, sidecarPath := range sidecars {
		record, err := readJobRecord(sidecarPath)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	sort.Slice(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		}
		return records[i].Ref < records[j].Ref
	})
	return records, nil
}

// Delete removes an archive and its job record.
func (s *Store) Delete(ref string) error {
	basePath, err := s.resolve(ref)
	if err != nil {
		return err
	}
	// Sidecar first: a failure between the two removals leaves an
	// archive without a sidecar, which listings already ignore.
	if err := os.Remove(basePath + sidecarExtension); err != nil {
		return fmt.Errorf("removing job record for %s: %w", ref, err)
	}
	if err := os.Remove(basePath + archiveExtension); err != nil {
		return fmt.Errorf("removing archive %s: %w", ref, err)
	}
	return nil
}

// resolve maps a reference to the stored base path (no extension).
// The reference carries the first 12 hex characters of the hash; the
// shard directory narrows the search to one directory scan.
func (s *Store) resolve(ref string) (string, error) {
	hexPart, ok := strings.CutPrefix(ref, refPrefix)
	if !ok || len(hexPart) != refHexLength || !isLowerHex(hexPart) {
		return "", fmt.Errorf("%w: %q", ErrBadRef, ref)
	}

	directory := filepath.Join(s.root, hexPart[0:2], hexPart[2:4])
	entries, err := os.ReadDir(directory)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, ref)
		}
		return "", fmt.Errorf("scanning shard for %s: %w", ref, err)
	}

	var matches []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, hexPart) && strings.HasSuffix(name, sidecarExtension) {
			matches = append(matches, strings.TrimSuffix(name, sidecarExtension))
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrNotFound, ref)
	case 1:
		return filepath.Join(directory, matches[0]), nil
	default:
		return "", fmt.Errorf("reference %s is ambiguous: %d archives share the prefix", ref, len(matches))
	}
}

func readJobRecord(sidecarPath string) (*JobRecord, error) {
	sidecar, err := os.ReadFile(sidecarPath)
	if err != nil {
		return nil, fmt.Errorf("reading job record %s: %w", filepath.Base(sidecarPath), err)
	}
	var record JobRecord
	if err := codec.Unmarshal(sidecar, &record); err != nil {
		return nil, fmt.Errorf("decoding job record %s: %w", filepath.Base(sidecarPath), err)
	}
	return &record, nil
}

// writeAtomic writes data via a temp file in the same directory and
// renames it into place.
func writeAtomic(directory, finalPath string, data []byte) error {
	tmpFile, err := os.CreateTemp(directory, ".put-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing %s: %w", filepath.Base(finalPath), err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", filepath.Base(finalPath), err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return fmt.Errorf("renaming %s into place: %w", filepath.Base(finalPath), err)
	}

	success = true
	return nil
}

func isLowerHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
