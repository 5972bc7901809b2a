// Copyright 2026 The Huffpack Authors
// SPDX-License-Identifier: Apache-2.0

// Package huffman implements the symbol-frequency codec at the core of
// huffpack: frequency analysis, prefix-free code tree construction,
// code generation, and bit-level packing and unpacking. It is the pure
// data pipeline that the container format, the compression service,
// and the CLI build on.
//
// The codec operates on byte alphabets. Text is treated as its UTF-8
// byte sequence, so at most 256 distinct symbols exist and any binary
// content round-trips bit-exactly. The pipeline is:
//
//	raw bytes → Count → BuildTree → BuildCodes → Pack
//
// and back:
//
//	packed bytes + code table + padding → Decompress → raw bytes
//
// [Compress] and [Decompress] bundle the pipeline for callers that
// want the one-shot form. Compression output is deterministic:
// identical input produces a byte-identical payload and an identical
// code table on every run, on every platform. Determinism comes from
// two rules: leaves enter the build heap in ascending symbol order,
// and ties on weight are broken by insertion sequence.
//
// The tree itself is transient — it is discarded once the code table
// is derived. Callers that need to show the tree (the visualizer
// surface) get the read-only [TreeView] projection instead.
//
// The codec holds no state between calls and never touches the
// filesystem; every function is safe for concurrent use.
package huffman
