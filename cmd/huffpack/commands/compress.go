// Copyright 2026 The Huffpack Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/schollz/progressbar/v2"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/huffpack/huffpack/cmd/huffpack/cli"
	"github.com/huffpack/huffpack/lib/container"
)

func compressCommand() *cli.Command {
	var (
		outputPath string
		progress   bool
	)

	return &cli.Command{
		Name:    "compress",
		Summary: "Compress files into an archive",
		Usage:   "huffpack compress <file>... [flags]",
		Description: `Compress one or more files into a single archive.

Each file is compressed independently with its own code table, so the
archive restores per entry: damage to one entry never takes the rest
down with it. Entries are named by the input's base name, which must
therefore be unique across the inputs.

The resulting archive is the same format the server produces and
accepts, so it can be uploaded to /api/decompress or restored locally
with "huffpack decompress".`,
		Examples: []cli.Example{
			{
				Description: "Compress two files",
				Command:     "huffpack compress notes.txt report.csv -o out.zip",
			},
			{
				Description: "Compress without the progress bar",
				Command:     "huffpack compress big.bin --progress=false",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("compress", pflag.ContinueOnError)
			flagSet.StringVarP(&outputPath, "output", "o", "huffpack.zip", "output archive path")
			flagSet.BoolVar(&progress, "progress", true, "show a progress bar while compressing")
			return flagSet
		},
		Run: func(args []string) error {
			return runCompress(args, outputPath, progressWriter(progress), os.Stdout)
		},
	}
}

// progressWriter returns the writer progress bars render to: stderr
// when enabled and stderr is a terminal, a discard writer otherwise.
// Bars never land in redirected output.
func progressWriter(enabled bool) io.Writer {
	if enabled && term.IsTerminal(int(os.Stderr.Fd())) {
		return os.Stderr
	}
	return io.Discard
}

// runCompress compresses the input files into an archive at
// outputPath and prints the per-entry ratio table to out.
func runCompress(inputs []string, outputPath string, progressOutput, out io.Writer) error {
	if len(inputs) == 0 {
		return fmt.Errorf("at least one input file is required")
	}

	// Archive entries are named by base name, so two inputs that
	// share one would silently shadow each other.
	entryFor := make(map[string]string, len(inputs))
	totalBytes := int64(0)
	for _, input := range inputs {
		base := filepath.Base(input)
		if previous, taken := entryFor[base]; taken {
			return fmt.Errorf("inputs %q and %q collide on archive entry %q", previous, input, base)
		}
		entryFor[base] = input

		info, err := os.Stat(input)
		if err != nil {
			return fmt.Errorf("stat %s: %w", input, err)
		}
		if info.IsDir() {
			return fmt.Errorf("%s is a directory", input)
		}
		totalBytes += info.Size()
	}

	bar := progressbar.NewOptions64(totalBytes,
		progressbar.OptionSetBytes64(totalBytes),
		progressbar.OptionSetWriter(progressOutput),
		progressbar.OptionSetPredictTime(true))
	bar.RenderBlank()

	records := make([]*container.Record, 0, len(inputs))
	for _, input := range inputs {
		content, err := os.ReadFile(input)
		if err != nil {
			return fmt.Errorf("reading %s: %w", input, err)
		}
		record, err := container.Compress(filepath.Base(input), content)
		if err != nil {
			return err
		}
		records = append(records, record)
		bar.Add(len(content))
	}
	fmt.Fprintln(progressOutput)

	if err := writeArchiveFile(outputPath, records); err != nil {
		return err
	}
	info, err := os.Stat(outputPath)
	if err != nil {
		return fmt.Errorf("stat %s: %w", outputPath, err)
	}

	printRatioTable(out, records)
	fmt.Fprintf(out, "\n%s (%s, %d entries)\n", outputPath, formatSize(info.Size()), len(records))
	return nil
}

// writeArchiveFile writes records as an archive at path. A partial
// file from a failed write is removed rather than left behind.
func writeArchiveFile(path string, records []*container.Record) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := container.WriteArchive(file, records); err != nil {
		file.Close()
		os.Remove(path)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}

// printRatioTable prints one row per record: entry name, sizes, and
// the compression ratio.
func printRatioTable(out io.Writer, records []*container.Record) {
	writer := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(writer, "ENTRY\tORIGINAL\tPACKED\tRATIO\n")

	totalOriginal := int64(0)
	totalPacked := int64(0)
	for _, record := range records {
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\n",
			record.Name,
			formatSize(int64(record.Meta.OriginalSize)),
			formatSize(int64(record.CompressedSize())),
			formatRatio(record.Ratio()),
		)
		totalOriginal += int64(record.Meta.OriginalSize)
		totalPacked += int64(record.CompressedSize())
	}

	if len(records) > 1 {
		ratio := 0.0
		if totalPacked > 0 {
			ratio = float64(totalOriginal) / float64(totalPacked)
		}
		fmt.Fprintf(writer, "TOTAL\t%s\t%s\t%s\n",
			formatSize(totalOriginal), formatSize(totalPacked), formatRatio(ratio))
	}
	writer.Flush()
}

// formatRatio renders original/packed as a fixed-point factor, with a
// dash for records that have no payload to compare against.
func formatRatio(ratio float64) string {
	if ratio == 0 {
		return "-"
	}
	return fmt.Sprintf("%.2fx", ratio)
}
