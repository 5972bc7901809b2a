// Copyright 2026 The Huffpack Authors
// SPDX-License-Identifier: Apache-2.0

// Huffpack compression service. Accepts file uploads over HTTP,
// Huffman-compresses each file into a self-describing record, bundles
// the records into a zip archive, and keeps the archive in a
// content-addressed store for later download or restoration.
//
// Endpoints:
//   - GET  /healthz              liveness probe
//   - POST /api/visualize        build a code tree from a frequency spec
//   - POST /api/compress         multipart upload -> stored archive
//   - POST /api/decompress       archive upload -> restored files + manifest
//   - GET  /api/archives         list stored archives
//   - GET  /api/archives/{ref}   download one archive
//   - DELETE /api/archives/{ref} remove one archive
//
// Configuration comes from a single YAML file (HUFFPACK_CONFIG or
// --config); --listen and --data-dir override it for development.
package main
