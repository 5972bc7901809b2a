// Copyright 2026 The Huffpack Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides binary entrypoint helpers for huffpack
// binaries. These functions centralize the two legitimate raw I/O
// patterns that exist before or after the structured logger:
//
//   - Fatal error reporting to stderr when the logger may not be
//     initialized (pre-logger).
//   - Process exit after an unrecoverable error in main().
//
// All other raw I/O in service binaries should go through the
// structured logger; CLI commands write user-facing output directly.
package process
