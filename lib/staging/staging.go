// Copyright 2026 The Huffpack Authors
// SPDX-License-Identifier: Apache-2.0

// Package staging provides per-request scratch areas for uploaded
// content. Every request gets a uniquely named directory under the
// staging root, so concurrent requests can never observe or clobber
// each other's files, and Close removes the whole area on every exit
// path. Staged payloads are LZ4-block-compressed at rest with a raw
// fallback for incompressible content.
package staging

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pierrec/lz4/v4"
)

// Staged file layout: one tag byte, the uncompressed size as 8 bytes
// little-endian, then the body. The tag decides how the body is
// interpreted; these values are on-disk constants.
const (
	tagRaw byte = 0
	tagLZ4 byte = 1

	headerSize = 9
)

// Area is one request's private scratch directory. Not safe for
// concurrent use; a request handles its own uploads sequentially.
type Area struct {
	path string
}

// NewArea creates a fresh scratch directory under root. The label
// becomes part of the directory name for operator-friendly listings;
// uniqueness comes from the random suffix, never from the label. An
// empty root falls back to the system temp directory.
func NewArea(root, label string) (*Area, error) {
	if root == "" {
		root = os.TempDir()
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating staging root: %w", err)
	}
	if label == "" {
		label = "req"
	}
	if err := checkName(label); err != nil {
		return nil, fmt.Errorf("staging label: %w", err)
	}

	path, err := os.MkdirTemp(root, label+"-*")
	if err != nil {
		return nil, fmt.Errorf("creating staging area: %w", err)
	}
	return &Area{path: path}, nil
}

// Path returns the area's directory.
func (a *Area) Path() string {
	return a.path
}

// Stash writes content into the area under name. The name must be a
// bare file name; anything that could escape the area is rejected.
func (a *Area) Stash(name string, content []byte) error {
	if err := checkName(name); err != nil {
		return err
	}

	encoded := encodeStaged(content)
	if err := os.WriteFile(filepath.Join(a.path, name), encoded, 0o600); err != nil {
		return fmt.Errorf("stashing %q: %w", name, err)
	}
	return nil
}

// Retrieve reads back content stashed under name. A name that was
// never stashed surfaces as fs.ErrNotExist through the wrap.
func (a *Area) Retrieve(name string) ([]byte, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}

	encoded, err := os.ReadFile(filepath.Join(a.path, name))
	if err != nil {
		return nil, fmt.Errorf("retrieving %q: %w", name, err)
	}
	content, err := decodeStaged(encoded)
	if err != nil {
		return nil, fmt.Errorf("retrieving %q: %w", name, err)
	}
	return content, nil
}

// List returns the stashed names in lexical order.
func (a *Area) List() ([]string, error) {
	entries, err := os.ReadDir(a.path)
	if err != nil {
		return nil, fmt.Errorf("listing staging area: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

// Close removes the area and everything in it. Safe to call on every
// exit path, including more than once.
func (a *Area) Close() error {
	if err := os.RemoveAll(a.path); err != nil {
		return fmt.Errorf("removing staging area: %w", err)
	}
	return nil
}

// checkName rejects names that are not bare file names. Uploaded
// filenames travel through here, so path traversal must die at this
// boundary.
func checkName(name string) error {
	if name == "" || name == "." || name == ".." {
		return fmt.Errorf("staging name %q is not a file name", name)
	}
	if filepath.Base(name) != name {
		return fmt.Errorf("staging name %q contains path separators", name)
	}
	return nil
}

// encodeStaged wraps content in the at-rest format. Incompressible
// content (CompressBlock signals it by writing zero bytes, or the
// result is no smaller) is stored raw so the wrapper never inflates
// a payload beyond the fixed header.
func encodeStaged(content []byte) []byte {
	bound := lz4.CompressBlockBound(len(content))
	destination := make([]byte, headerSize+bound)

	written, err := lz4.CompressBlock(content, destination[headerSize:], nil)
	if err != nil || written == 0 || written >= len(content) {
		raw := make([]byte, headerSize+len(content))
		raw[0] = tagRaw
		binary.LittleEndian.PutUint64(raw[1:headerSize], uint64(len(content)))
		copy(raw[headerSize:], content)
		return raw
	}

	destination[0] = tagLZ4
	binary.LittleEndian.PutUint64(destination[1:headerSize], uint64(len(content)))
	return destination[:headerSize+written]
}

// decodeStaged reverses encodeStaged.
func decodeStaged(encoded []byte) ([]byte, error) {
	if len(encoded) < headerSize {
		return nil, fmt.Errorf("staged file is %d bytes, shorter than the %d-byte header", len(encoded), headerSize)
	}
	tag := encoded[0]
	size := binary.LittleEndian.Uint64(encoded[1:headerSize])
	body := encoded[headerSize:]

	switch tag {
	case tagRaw:
		if uint64(len(body)) != size {
			return nil, fmt.Errorf("raw staged body is %d bytes, header says %d", len(body), size)
		}
		return body, nil

	case tagLZ4:
		destination := make([]byte, size)
		read, err := lz4.UncompressBlock(body, destination)
		if err != nil {
			return nil, fmt.Errorf("lz4 decompress: %w", err)
		}
		if uint64(read) != size {
			return nil, fmt.Errorf("lz4 decompress: got %d bytes, header says %d", read, size)
		}
		return destination, nil

	default:
		return nil, fmt.Errorf("staged file has unknown tag 0x%02x", tag)
	}
}
