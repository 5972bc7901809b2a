// Copyright 2026 The Huffpack Authors
// SPDX-License-Identifier: Apache-2.0

// Package container implements the multi-file container format that
// packages compressed payloads with their recovery metadata.
//
// One input file becomes one [Record]: the packed bitstream plus a
// [Metadata] document carrying everything needed to reverse the
// compression — the code table, the padding bit count, the original
// size and extension, a binary-content flag, and a keyed BLAKE3
// checksum of the original bytes. A record is self-describing: no
// state outside the record is needed to restore the file bit-exactly.
//
// Records are bundled into zip archives with two entries per record,
// a "<name>.huf" payload and a "<name>.meta" JSON document. The
// archive layer registers a klauspost deflater on the writer and
// emits entries without timestamps, so identical records always
// produce identical archive bytes — which is what lets the result
// store address archives by content.
//
// Extraction is batch-oriented with per-item isolation: one damaged
// record yields one failed [Item], never an aborted batch. Error
// classification follows the codec's taxonomy — huffman.IsInvalidInput
// for malformed client data, huffman.IsCorrupt for payloads whose
// metadata no longer describes them.
package container
