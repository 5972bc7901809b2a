// Copyright 2026 The Huffpack Authors
// SPDX-License-Identifier: Apache-2.0

// Package service provides shared infrastructure for huffpack services.
//
// A huffpack service is a standalone Go binary serving HTTP. This
// package extracts the common scaffolding that every service needs:
//
//   - Logging: the standard structured logger (JSON on stderr).
//   - HTTP server: listener lifecycle with readiness signalling and
//     graceful shutdown driven by context cancellation.
//
// Services compose these utilities in their own main() function rather
// than subclassing a framework. The package provides building blocks,
// not a runtime.
package service
