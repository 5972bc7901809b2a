// Copyright 2026 The Huffpack Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the complete huffpack CLI command tree. The
// commands work on local files and archives with the same codec and
// container layers the server exposes over HTTP, so an archive
// produced by either side restores with the other.
package commands

import (
	"fmt"

	"github.com/huffpack/huffpack/cmd/huffpack/cli"
	"github.com/huffpack/huffpack/lib/version"
)

// Root builds and returns the complete huffpack CLI command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "huffpack",
		Description: `Huffpack: Huffman archive toolkit.

Compress files into multi-file archives, restore and inspect them, and
render the code tree behind a compression.`,
		Subcommands: []*cli.Command{
			compressCommand(),
			decompressCommand(),
			inspectCommand(),
			treeCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(args []string) error {
					fmt.Printf("huffpack %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Compress files into an archive",
				Command:     "huffpack compress notes.txt report.csv -o out.zip",
			},
			{
				Description: "Restore an archive into a directory",
				Command:     "huffpack decompress out.zip -d restored/",
			},
			{
				Description: "Show per-entry metadata for an archive",
				Command:     "huffpack inspect out.zip",
			},
			{
				Description: "Render the code tree for a file",
				Command:     "huffpack tree notes.txt",
			},
			{
				Description: "Render the code tree for explicit frequencies",
				Command:     `huffpack tree --freq '{"a":3,"b":2,"c":1}'`,
			},
		},
	}
}

// formatSize returns a human-readable byte size.
func formatSize(bytes int64) string {
	switch {
	case bytes >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(1<<30))
	case bytes >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(1<<20))
	case bytes >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
