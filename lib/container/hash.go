// Copyright 2026 The Huffpack Authors
// SPDX-License-Identifier: Apache-2.0

package container

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// Hash is a 32-byte BLAKE3 digest. Content checksums and archive
// references are both this size.
type Hash [32]byte

// domainKey is a 32-byte key for BLAKE3 keyed hashing. Domain
// separation ensures that the same input bytes produce different
// hashes in different contexts, preventing cross-domain collisions.
type domainKey [32]byte

// Domain separation keys. These are fixed constants — changing them
// invalidates every stored checksum and archive reference. The byte
// values are the ASCII encoding of the domain name, zero-padded to
// 32 bytes, so the keys stay readable in hex dumps and debuggers.
var (
	contentDomainKey = domainKey{
		'h', 'u', 'f', 'f', 'p', 'a', 'c', 'k', '.',
		'c', 'o', 'n', 't', 'e', 'n', 't', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	}

	archiveDomainKey = domainKey{
		'h', 'u', 'f', 'f', 'p', 'a', 'c', 'k', '.',
		'a', 'r', 'c', 'h', 'i', 'v', 'e', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	}
)

// HashContent computes the content-domain hash of original file
// bytes. This is the checksum recorded in container metadata and
// verified after decompression.
func HashContent(data []byte) Hash {
	return keyedHash(contentDomainKey, data)
}

// HashArchive computes the archive-domain hash of finished archive
// bytes. The result store derives storage paths and references from
// it.
func HashArchive(data []byte) Hash {
	return keyedHash(archiveDomainKey, data)
}

// FormatHash returns the hex-encoded string representation of a
// hash: the canonical format in metadata, logs, and CLI output.
func FormatHash(hash Hash) string {
	return hex.EncodeToString(hash[:])
}

// ParseHash parses a 64-character hex string into a Hash.
func ParseHash(hexString string) (Hash, error) {
	var hash Hash
	decoded, err := hex.DecodeString(hexString)
	if err != nil {
		return hash, fmt.Errorf("parsing hash: %w", err)
	}
	if len(decoded) != 32 {
		return hash, fmt.Errorf("hash is %d bytes, want 32", len(decoded))
	}
	copy(hash[:], decoded)
	return hash, nil
}

// FormatRef returns the short archive reference for an archive-domain
// hash: the "arc-" prefix followed by the first 12 hex characters.
func FormatRef(archiveHash Hash) string {
	return "arc-" + hex.EncodeToString(archiveHash[:6])
}

// keyedHash computes a BLAKE3 keyed hash with the given domain key.
func keyedHash(key domainKey, data []byte) Hash {
	// NewKeyed requires exactly 32 bytes, which domainKey guarantees.
	// The error is only returned for wrong key length, so this cannot
	// fail with our fixed-size type.
	hasher, err := blake3.NewKeyed(key[:])
	if err != nil {
		panic("container: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(data)
	var hash Hash
	copy(hash[:], hasher.Sum(nil))
	return hash
}
