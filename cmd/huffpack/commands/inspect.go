// Copyright 2026 The Huffpack Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/huffpack/huffpack/cmd/huffpack/cli"
	"github.com/huffpack/huffpack/lib/container"
)

func inspectCommand() *cli.Command {
	return &cli.Command{
		Name:    "inspect",
		Summary: "Show per-entry archive metadata",
		Usage:   "huffpack inspect <archive>",
		Description: `Print the recovery metadata of every entry in an archive: sizes,
compression ratio, code table width, bitstream padding, the binary
flag, and the content checksum.

Entries whose payload or metadata cannot be read are listed separately
with the reason. Inspection never modifies the archive.`,
		Examples: []cli.Example{
			{
				Description: "Inspect an archive",
				Command:     "huffpack inspect out.zip",
			},
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("exactly one archive path is required")
			}
			return runInspect(args[0], os.Stdout)
		},
	}
}

// runInspect prints the metadata table for the archive at archivePath.
func runInspect(archivePath string, out io.Writer) error {
	file, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", archivePath, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", archivePath, err)
	}

	archive, err := container.ReadArchive(file, info.Size())
	if err != nil {
		return fmt.Errorf("reading %s: %w", archivePath, err)
	}
	if len(archive.Records) == 0 && len(archive.Damaged) == 0 {
		return fmt.Errorf("%s holds no records", archivePath)
	}

	writer := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(writer, "ENTRY\tORIGINAL\tPACKED\tRATIO\tSYMBOLS\tPADDING\tTYPE\tCHECKSUM\n")
	for _, record := range archive.Records {
		kind := "text"
		if record.Meta.IsBinary {
			kind = "binary"
		}
		checksum := "-"
		if record.Meta.Checksum != "" {
			checksum = fmt.Sprintf("%.12s", record.Meta.Checksum)
		}
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			record.Name,
			formatSize(int64(record.Meta.OriginalSize)),
			formatSize(int64(record.CompressedSize())),
			formatRatio(record.Ratio()),
			len(record.Meta.Codes),
			record.Meta.Padding,
			kind,
			checksum,
		)
	}
	writer.Flush()

	if len(archive.Damaged) > 0 {
		fmt.Fprintf(out, "\nDamaged entries:\n")
		for _, damaged := range archive.Damaged {
			fmt.Fprintf(out, "  %s: %v\n", damaged.Name, damaged.Err)
		}
	}

	fmt.Fprintf(out, "\n%d entries (%s archive)\n", len(archive.Records)+len(archive.Damaged), formatSize(info.Size()))
	return nil
}
