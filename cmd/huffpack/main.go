// Copyright 2026 The Huffpack Authors
// SPDX-License-Identifier: Apache-2.0

// Huffpack is the CLI for working with huffpack archives locally:
// compressing files into archives, restoring and inspecting them, and
// rendering the code tree behind a compression. It shares the codec
// and container layers with huffpack-server, so archives move freely
// between the two.
package main

import (
	"fmt"
	"os"

	"github.com/huffpack/huffpack/cmd/huffpack/commands"
)

func main() {
	if err := run(); err != nil {
		// Commands that print their own output (like decompress's
		// failure summary) return an ExitError with the desired exit
		// code. Don't print a redundant "error:" line for those.
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return commands.Root().Execute(os.Args[1:])
}
