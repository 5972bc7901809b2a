// Copyright 2026 The Huffpack Authors
// SPDX-License-Identifier: Apache-2.0

package container

import (
	"archive/zip"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/flate"

	"github.com/huffpack/huffpack/lib/huffman"
)

// Archive entry suffixes. A record named "report.pdf" is stored as
// "report.pdf.huf" plus "report.pdf.meta"; these names are part of
// the format.
const (
	payloadSuffix = ".huf"
	metaSuffix    = ".meta"
)

// WriteArchive writes records to w as a zip archive, two entries per
// record. Entries carry no timestamps and the deflater is
// deterministic, so identical records produce identical archive
// bytes regardless of when or where the archive is written — the
// property the content-addressed store depends on.
func WriteArchive(w io.Writer, records []*Record) error {
	archiveWriter := zip.NewWriter(w)
	archiveWriter.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.DefaultCompression)
	})

	for _, record := range records {
		payloadEntry, err := archiveWriter.Create(record.Name + payloadSuffix)
		if err != nil {
			return fmt.Errorf("creating payload entry for %q: %w", record.Name, err)
		}
		if _, err := payloadEntry.Write(record.Payload); err != nil {
			return fmt.Errorf("writing payload of %q: %w", record.Name, err)
		}

		document, err := record.Meta.MarshalDocument()
		if err != nil {
			return fmt.Errorf("record %q: %w", record.Name, err)
		}
		metaEntry, err := archiveWriter.Create(record.Name + metaSuffix)
		if err != nil {
			return fmt.Errorf("creating metadata entry for %q: %w", record.Name, err)
		}
		if _, err := metaEntry.Write(document); err != nil {
			return fmt.Errorf("writing metadata of %q: %w", record.Name, err)
		}
	}

	if err := archiveWriter.Close(); err != nil {
		return fmt.Errorf("finalizing archive: %w", err)
	}
	return nil
}

// Archive is the parsed form of an archive: records that read
// cleanly, in first-seen entry order, plus the entries that could
// not be read. Damaged entries are reported per record so one bad
// entry never hides the rest of the archive.
type Archive struct {
	Records []*Record
	Damaged []Damaged
}

// Damaged names a record that could not be read out of the archive
// and why.
type Damaged struct {
	Name string
	Err  error
}

// ReadArchive parses an archive produced by [WriteArchive]. The
// error return covers containers that are not readable zip files at
// all, and entries whose names fit neither suffix — both mean the
// upload was never one of ours. Per-record structural problems (a
// payload missing its metadata document, an unparseable document, a
// zip-level read failure) land in [Archive.Damaged] instead.
func ReadArchive(r io.ReaderAt, size int64) (*Archive, error) {
	zipReader, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: opening archive: %v", huffman.ErrInvalidInput, err)
	}

	type pendingRecord struct {
		payload      []byte
		payloadSeen  bool
		document     []byte
		documentSeen bool
		broken       error
	}
	order := make([]string, 0, len(zipReader.File)/2)
	pending := make(map[string]*pendingRecord)

	for _, file := range zipReader.File {
		var base string
		isMeta := false
		switch {
		case strings.HasSuffix(file.Name, payloadSuffix):
			base = strings.TrimSuffix(file.Name, payloadSuffix)
		case strings.HasSuffix(file.Name, metaSuffix):
			base = strings.TrimSuffix(file.Name, metaSuffix)
			isMeta = true
		default:
			return nil, fmt.Errorf("%w: archive entry %q is neither a payload nor a metadata document",
				huffman.ErrInvalidInput, file.Name)
		}
		if base == "" {
			return nil, fmt.Errorf("%w: archive entry %q has an empty record name", huffman.ErrInvalidInput, file.Name)
		}

		record := pending[base]
		if record == nil {
			record = &pendingRecord{}
			pending[base] = record
			order = append(order, base)
		}

		data, err := readEntry(file)
		if err != nil {
			if record.broken == nil {
				record.broken = fmt.Errorf("%w: reading archive entry %q: %v", huffman.ErrCorrupt, file.Name, err)
			}
			continue
		}
		if isMeta {
			record.document = data
			record.documentSeen = true
		} else {
			record.payload = data
			record.payloadSeen = true
		}
	}

	archive := &Archive{}
	for _, base := range order {
		record := pending[base]
		switch {
		case record.broken != nil:
			archive.Damaged = append(archive.Damaged, Damaged{Name: base, Err: record.broken})
		case !record.documentSeen:
			archive.Damaged = append(archive.Damaged, Damaged{
				Name: base,
				Err:  fmt.Errorf("%w: record %q has a payload but no metadata document", huffman.ErrInvalidInput, base),
			})
		case !record.payloadSeen:
			archive.Damaged = append(archive.Damaged, Damaged{
				Name: base,
				Err:  fmt.Errorf("%w: record %q has a metadata document but no payload", huffman.ErrInvalidInput, base),
			})
		default:
			meta, err := ParseDocument(record.document)
			if err != nil {
				archive.Damaged = append(archive.Damaged, Damaged{
					Name: base,
					Err:  fmt.Errorf("record %q: %w", base, err),
				})
				continue
			}
			archive.Records = append(archive.Records, &Record{
				Name:    base,
				Payload: record.payload,
				Meta:    *meta,
			})
		}
	}

	return archive, nil
}

// Item is the outcome of restoring one record from an archive.
// Exactly one of Data and Err is meaningful.
type Item struct {
	Name        string
	Data        []byte
	ContentType string
	Err         error
}

// ExtractAll restores every record with per-item isolation: a record
// that fails to decompress yields an Item with Err set and the batch
// continues. Damaged entries from [ReadArchive] are appended as
// failed items so callers see one complete report.
func (a *Archive) ExtractAll() []Item {
	items := make([]Item, 0, len(a.Records)+len(a.Damaged))
	for _, record := range a.Records {
		content, err := Decompress(record)
		if err != nil {
			items = append(items, Item{Name: record.Name, Err: err})
			continue
		}
		items = append(items, Item{
			Name:        record.Name,
			Data:        content,
			ContentType: record.Meta.ContentType(),
		})
	}
	for _, damaged := range a.Damaged {
		items = append(items, Item{Name: damaged.Name, Err: damaged.Err})
	}
	return items
}

func readEntry(file *zip.File) ([]byte, error) {
	reader, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return io.ReadAll(reader)
}
