// Copyright 2026 The Huffpack Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides huffpack's standard CBOR encoding configuration.
//
// huffpack uses two serialization formats with a clear boundary:
//
//   - JSON for external interfaces: the .meta documents inside
//     archives, HTTP request and response bodies, and CLI --json
//     output. These are consumed by code huffpack does not control,
//     so they stay in the lingua franca.
//   - CBOR for internal persistence: the job-record sidecars the
//     result store keeps next to each archive. Nothing outside this
//     repository reads them, and deterministic encoding keeps a
//     stored record byte-stable across rewrites.
//
// This package provides the shared CBOR modes so every package
// encodes identically without duplicating configuration. The encoder
// uses Core Deterministic Encoding (RFC 8949 §4.2): sorted map keys,
// smallest integer encoding, no indefinite-length items. Same logical
// data always produces identical bytes.
//
// Types persisted as CBOR carry `json` struct tags: fxamacker/cbor
// reads json tags as fallback, so one tag controls field naming for
// both formats and the same type can appear in CLI --json output
// without a second declaration.
package codec
