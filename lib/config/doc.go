// Copyright 2026 The Huffpack Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for huffpack services.
//
// Configuration is loaded from a single file specified by either the
// HUFFPACK_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There are no fallbacks, no ~/.config discovery,
// and no automatic file search. This ensures deterministic, auditable
// configuration with no hidden overrides.
//
// Values absent from the file take the defaults from [Default]: data
// under ~/.cache/huffpack, with the archive store and staging areas
// derived from the data root unless set explicitly. Environment
// variables referenced as $VAR or ${VAR} inside path fields are
// expanded after loading; no other environment variables override
// config values.
//
// Key exports:
//
//   - [Config] -- master struct with Listen, Paths, and Limits
//   - [Default] -- returns a Config with development defaults
//   - [Load] and [LoadFile] -- the two entry points for loading
//
// This package depends on no other huffpack packages.
package config
