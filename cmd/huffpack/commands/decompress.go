// Copyright 2026 The Huffpack Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v2"
	"github.com/spf13/pflag"

	"github.com/huffpack/huffpack/cmd/huffpack/cli"
	"github.com/huffpack/huffpack/lib/container"
)

func decompressCommand() *cli.Command {
	var (
		dir       string
		keepGoing bool
		progress  bool
	)

	return &cli.Command{
		Name:    "decompress",
		Summary: "Restore files from an archive",
		Usage:   "huffpack decompress <archive> [flags]",
		Description: `Restore every entry of an archive into a directory.

Entries are restored independently. With --keep-going (the default), a
damaged entry is reported and skipped while the rest of the archive is
restored; the command then exits non-zero so scripts still notice.
With --keep-going=false the first damaged entry aborts the restore.`,
		Examples: []cli.Example{
			{
				Description: "Restore into the current directory",
				Command:     "huffpack decompress out.zip",
			},
			{
				Description: "Restore into a directory, aborting on the first damaged entry",
				Command:     "huffpack decompress out.zip -d restored/ --keep-going=false",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("decompress", pflag.ContinueOnError)
			flagSet.StringVarP(&dir, "dir", "d", ".", "directory to restore into")
			flagSet.BoolVar(&keepGoing, "keep-going", true, "restore the remaining entries when one fails")
			flagSet.BoolVar(&progress, "progress", true, "show a progress bar while restoring")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("exactly one archive path is required")
			}
			return runDecompress(args[0], dir, keepGoing, progressWriter(progress), os.Stdout, os.Stderr)
		},
	}
}

// runDecompress restores archivePath into dir. The summary goes to
// out, per-entry failures to errOut. When entries failed under
// keep-going the returned error is a [cli.ExitError] so main exits
// non-zero without printing a redundant message.
func runDecompress(archivePath, dir string, keepGoing bool, progressOutput, out, errOut io.Writer) error {
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

	if !keepGoing && len(archive.Damaged) > 0 {
		first := archive.Damaged[0]
		return fmt.Errorf("entry %s: %w", first.Name, first.Err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	totalBytes := int64(0)
	for _, record := range archive.Records {
		totalBytes += int64(record.Meta.OriginalSize)
	}
	bar := progressbar.NewOptions64(totalBytes,
		progressbar.OptionSetBytes64(totalBytes),
		progressbar.OptionSetWriter(progressOutput),
		progressbar.OptionSetPredictTime(true))
	bar.RenderBlank()

	type failure struct {
		name string
		err  error
	}
	var failures []failure
	restored := 0

	for _, record := range archive.Records {
		content, err := container.Decompress(record)
		if err != nil {
			if !keepGoing {
				return fmt.Errorf("entry %s: %w", record.Name, err)
			}
			failures = append(failures, failure{record.Name, err})
			continue
		}

		// Base name again: archives from elsewhere could smuggle
		// path segments into entry names.
		path := filepath.Join(dir, filepath.Base(record.Name))
		if err := os.WriteFile(path, content, 0644); err != nil {
			if !keepGoing {
				return fmt.Errorf("writing %s: %w", path, err)
			}
			failures = append(failures, failure{record.Name, err})
			continue
		}
		restored++
		bar.Add(record.Meta.OriginalSize)
	}
	for _, damaged := range archive.Damaged {
		failures = append(failures, failure{damaged.Name, damaged.Err})
	}
	fmt.Fprintln(progressOutput)

	total := len(archive.Records) + len(archive.Damaged)
	fmt.Fprintf(out, "restored %d of %d entries to %s\n", restored, total, dir)

	if len(failures) > 0 {
		for _, failed := range failures {
			fmt.Fprintf(errOut, "failed: %s: %v\n", failed.name, failed.err)
		}
		return &cli.ExitError{Code: 1}
	}
	return nil
}
