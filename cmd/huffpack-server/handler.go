// Copyright 2026 The Huffpack Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/klauspost/compress/flate"

	"github.com/huffpack/huffpack/lib/config"
	"github.com/huffpack/huffpack/lib/container"
	"github.com/huffpack/huffpack/lib/huffman"
	"github.com/huffpack/huffpack/lib/staging"
	"github.com/huffpack/huffpack/lib/store"
)

// archiveRefHeader carries the store reference of the archive a
// compress response was saved under. Clients use it to re-download
// or delete the archive later.
const archiveRefHeader = "X-Huffpack-Archive-Ref"

// maxVisualizeBodySize caps the frequency-spec body. The alphabet
// tops out at 256 symbols, so even generous specs are tiny.
const maxVisualizeBodySize = 1 << 20

// CompressorService serves the huffpack HTTP API: code-tree
// visualization, multi-file compression into stored archives, and
// archive listing, download, restoration, and deletion.
type CompressorService struct {
	config *config.Config
	store  *store.Store
	logger *slog.Logger
}

// NewCompressorService creates the service. Panics if any dependency
// is missing — a service without its store or logger is a programming
// error, not a runtime condition.
func NewCompressorService(cfg *config.Config, archiveStore *store.Store, logger *slog.Logger) *CompressorService {
	if cfg == nil {
		panic("CompressorService: config is required")
	}
	if archiveStore == nil {
		panic("CompressorService: store is required")
	}
	if logger == nil {
		panic("CompressorService: logger is required")
	}
	return &CompressorService{
		config: cfg,
		store:  archiveStore,
		logger: logger,
	}
}

// Handler returns the routing mux for the service.
func (s *CompressorService) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("POST /api/visualize", s.handleVisualize)
	mux.HandleFunc("POST /api/compress", s.handleCompress)
	mux.HandleFunc("POST /api/decompress", s.handleDecompress)
	mux.HandleFunc("GET /api/archives", s.handleListArchives)
	mux.HandleFunc("GET /api/archives/{ref}", s.handleGetArchive)
	mux.HandleFunc("DELETE /api/archives/{ref}", s.handleDeleteArchive)
	return mux
}

// --- Health ---

type healthResponse struct {
	OK bool `json:"ok"`
}

func (s *CompressorService) handleHealthz(writer http.ResponseWriter, request *http.Request) {
	s.writeJSON(writer, http.StatusOK, healthResponse{OK: true})
}

// --- Visualize ---

type visualizeResponse struct {
	Tree  *huffman.TreeView `json:"tree"`
	Codes map[string]string `json:"codes"`
}

// handleVisualize builds a code tree from a JSON frequency spec. The
// body is either {"char_freq": {"a": 3, ...}} or the bare map; both
// forms are accepted for compatibility with the original form field.
func (s *CompressorService) handleVisualize(writer http.ResponseWriter, request *http.Request) {
	body, err := io.ReadAll(io.LimitReader(request.Body, maxVisualizeBodySize))
	if err != nil {
		s.writeError(writer, request, fmt.Errorf("reading request body: %w", err))
		return
	}

	var envelope struct {
		CharFreq map[string]int `json:"char_freq"`
	}
	spec := map[string]int{}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.CharFreq != nil {
		spec = envelope.CharFreq
	} else if err := json.Unmarshal(body, &spec); err != nil {
		s.writeError(writer, request, fmt.Errorf("%w: frequency spec: %v", huffman.ErrInvalidInput, err))
		return
	}

	table, err := container.ParseFrequencySpec(spec)
	if err != nil {
		s.writeError(writer, request, err)
		return
	}

	root, err := huffman.BuildTree(table)
	if err != nil {
		s.writeError(writer, request, err)
		return
	}

	s.writeJSON(writer, http.StatusOK, visualizeResponse{
		Tree:  huffman.NewTreeView(root),
		Codes: container.WireCodes(huffman.BuildCodes(root)),
	})
}

// --- Compress ---

// uploadError describes why one file in a multipart upload was not
// accepted.
type uploadError struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

type rejectionResponse struct {
	Error    string        `json:"error"`
	Rejected []uploadError `json:"rejected"`
}

// handleCompress accepts a multipart upload of files[], compresses
// every file into a record, bundles the records into one archive,
// stores it, and returns the archive bytes with the store reference
// in the response headers. The request is all-or-nothing: any
// rejected file fails the whole request with per-file reasons.
func (s *CompressorService) handleCompress(writer http.ResponseWriter, request *http.Request) {
	request.Body = http.MaxBytesReader(writer, request.Body, s.config.Limits.MaxUploadBytes)

	area, err := staging.NewArea(s.config.Paths.Staging, "compress")
	if err != nil {
		s.writeError(writer, request, fmt.Errorf("creating staging area: %w", err))
		return
	}
	defer area.Close()

	names, rejected, err := s.stageUploads(request, area)
	if err != nil {
		s.writeError(writer, request, err)
		return
	}
	if len(rejected) > 0 {
		s.writeJSON(writer, http.StatusBadRequest, rejectionResponse{
			Error:    "one or more files were rejected",
			Rejected: rejected,
		})
		return
	}
	if len(names) == 0 {
		s.writeError(writer, request, fmt.Errorf("%w: no files uploaded", huffman.ErrInvalidInput))
		return
	}

	records := make([]*container.Record, 0, len(names))
	stats := make([]store.FileStat, 0, len(names))
	for _, name := range names {
		content, err := area.Retrieve(name)
		if err != nil {
			s.writeError(writer, request, fmt.Errorf("retrieving staged upload %q: %w", name, err))
			return
		}
		record, err := container.Compress(name, content)
		if err != nil {
			s.writeError(writer, request, err)
			return
		}
		records = append(records, record)
		stats = append(stats, store.FileStat{
			Name:           name,
			OriginalSize:   record.Meta.OriginalSize,
			CompressedSize: record.CompressedSize(),
		})
	}

	var archiveBuffer bytes.Buffer
	if err := container.WriteArchive(&archiveBuffer, records); err != nil {
		s.writeError(writer, request, err)
		return
	}

	ref, err := s.store.Put(archiveBuffer.Bytes(), store.JobRecord{Files: stats})
	if err != nil {
		s.writeError(writer, request, err)
		return
	}

	s.logger.Info("archive stored",
		"ref", ref,
		"files", len(records),
		"archive_bytes", archiveBuffer.Len(),
	)

	writer.Header().Set("Content-Type", "application/zip")
	writer.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ref+".zip"))
	writer.Header().Set(archiveRefHeader, ref)
	writer.WriteHeader(http.StatusOK)
	if _, err := writer.Write(archiveBuffer.Bytes()); err != nil {
		s.logger.Error("writing archive response", "ref", ref, "error", err)
	}
}

// stageUploads drains the multipart reader, spooling every accepted
// files[] part into the staging area. Disallowed extensions and
// oversized files are collected as rejections rather than errors so
// the response can name each offending file.
func (s *CompressorService) stageUploads(request *http.Request, area *staging.Area) (names []string, rejected []uploadError, err error) {
	reader, err := request.MultipartReader()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: reading multipart upload: %v", huffman.ErrInvalidInput, err)
	}

	staged := make(map[string]bool)
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%w: reading multipart upload: %v", huffman.ErrInvalidInput, err)
		}

		if field := part.FormName(); field != "files" && field != "files[]" {
			continue
		}
		// Browsers send a part with an empty filename for an empty
		// file input; base-name normalization also strips any path
		// the client smuggled in.
		filename := filepath.Base(part.FileName())
		if filename == "." || filename == string(filepath.Separator) {
			continue
		}

		if !s.config.ExtensionAllowed(filename) {
			rejected = append(rejected, uploadError{Name: filename, Reason: "extension not allowed"})
			continue
		}

		content, err := io.ReadAll(io.LimitReader(part, s.config.Limits.MaxFileBytes+1))
		if err != nil {
			return nil, nil, fmt.Errorf("reading upload %q: %w", filename, err)
		}
		if int64(len(content)) > s.config.Limits.MaxFileBytes {
			rejected = append(rejected, uploadError{
				Name:   filename,
				Reason: fmt.Sprintf("exceeds per-file limit of %d bytes", s.config.Limits.MaxFileBytes),
			})
			continue
		}

		if err := area.Stash(filename, content); err != nil {
			return nil, nil, fmt.Errorf("staging upload %q: %w", filename, err)
		}
		if !staged[filename] {
			staged[filename] = true
			names = append(names, filename)
		}
	}

	return names, rejected, nil
}

// --- Decompress ---

type restoreEntry struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Size   int    `json:"size,omitempty"`
	Error  string `json:"error,omitempty"`
	Kind   string `json:"kind,omitempty"`
}

type restoreManifest struct {
	Restored int            `json:"restored"`
	Failed   int            `json:"failed"`
	Items    []restoreEntry `json:"items"`
}

// handleDecompress restores every record of an uploaded archive. The
// response zip holds the restored files plus a manifest.json with
// per-item status; corrupt items are reported there instead of
// aborting the batch.
func (s *CompressorService) handleDecompress(writer http.ResponseWriter, request *http.Request) {
	request.Body = http.MaxBytesReader(writer, request.Body, s.config.Limits.MaxUploadBytes)

	archiveBytes, err := readArchiveUpload(request)
	if err != nil {
		s.writeError(writer, request, err)
		return
	}

	archive, err := container.ReadArchive(bytes.NewReader(archiveBytes), int64(len(archiveBytes)))
	if err != nil {
		s.writeError(writer, request, err)
		return
	}

	items := archive.ExtractAll()
	if len(items) == 0 {
		s.writeError(writer, request, fmt.Errorf("%w: archive holds no records", huffman.ErrInvalidInput))
		return
	}

	manifest := restoreManifest{Items: make([]restoreEntry, 0, len(items))}
	var out bytes.Buffer
	zipWriter := zip.NewWriter(&out)
	zipWriter.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, flate.DefaultCompression)
	})
	for _, item := range items {
		if item.Err != nil {
			manifest.Failed++
			manifest.Items = append(manifest.Items, restoreEntry{
				Name:   item.Name,
				Status: "failed",
				Error:  item.Err.Error(),
				Kind:   errorKind(item.Err),
			})
			continue
		}
		entry, err := zipWriter.Create(item.Name)
		if err != nil {
			s.writeError(writer, request, fmt.Errorf("writing restored entry %q: %w", item.Name, err))
			return
		}
		if _, err := entry.Write(item.Data); err != nil {
			s.writeError(writer, request, fmt.Errorf("writing restored entry %q: %w", item.Name, err))
			return
		}
		manifest.Restored++
		manifest.Items = append(manifest.Items, restoreEntry{
			Name:   item.Name,
			Status: "restored",
			Size:   len(item.Data),
		})
	}

	manifestEntry, err := zipWriter.Create("manifest.json")
	if err != nil {
		s.writeError(writer, request, fmt.Errorf("writing manifest: %w", err))
		return
	}
	manifestJSON, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		s.writeError(writer, request, fmt.Errorf("encoding manifest: %w", err))
		return
	}
	if _, err := manifestEntry.Write(manifestJSON); err != nil {
		s.writeError(writer, request, fmt.Errorf("writing manifest: %w", err))
		return
	}
	if err := zipWriter.Close(); err != nil {
		s.writeError(writer, request, fmt.Errorf("finishing restored archive: %w", err))
		return
	}

	s.logger.Info("archive restored",
		"restored", manifest.Restored,
		"failed", manifest.Failed,
	)

	writer.Header().Set("Content-Type", "application/zip")
	writer.Header().Set("Content-Disposition", `attachment; filename="restored.zip"`)
	writer.WriteHeader(http.StatusOK)
	if _, err := writer.Write(out.Bytes()); err != nil {
		s.logger.Error("writing restore response", "error", err)
	}
}

// readArchiveUpload accepts the archive either as a multipart file
// field or as the raw request body.
func readArchiveUpload(request *http.Request) ([]byte, error) {
	mediaType, _, err := mime.ParseMediaType(request.Header.Get("Content-Type"))
	if err == nil && strings.HasPrefix(mediaType, "multipart/") {
		reader, err := request.MultipartReader()
		if err != nil {
			return nil, fmt.Errorf("%w: reading multipart upload: %v", huffman.ErrInvalidInput, err)
		}
		for {
			part, err := reader.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				return nil, fmt.Errorf("%w: reading multipart upload: %v", huffman.ErrInvalidInput, err)
			}
			if part.FileName() == "" {
				continue
			}
			data, err := io.ReadAll(part)
			if err != nil {
				return nil, fmt.Errorf("reading archive upload: %w", err)
			}
			return data, nil
		}
		return nil, fmt.Errorf("%w: multipart upload carries no file", huffman.ErrInvalidInput)
	}

	data, err := io.ReadAll(request.Body)
	if err != nil {
		return nil, fmt.Errorf("reading archive upload: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty request body", huffman.ErrInvalidInput)
	}
	return data, nil
}

// errorKind classifies an extraction failure for the manifest.
func errorKind(err error) string {
	switch {
	case huffman.IsCorrupt(err):
		return "corrupt"
	case huffman.IsInvalidInput(err):
		return "invalid_input"
	default:
		return "error"
	}
}

// --- Archive store ---

type archiveListResponse struct {
	Archives []*store.JobRecord `json:"archives"`
}

func (s *CompressorService) handleListArchives(writer http.ResponseWriter, request *http.Request) {
	jobs, err := s.store.List()
	if err != nil {
		s.writeError(writer, request, err)
		return
	}
	if jobs == nil {
		jobs = []*store.JobRecord{}
	}
	s.writeJSON(writer, http.StatusOK, archiveListResponse{Archives: jobs})
}

func (s *CompressorService) handleGetArchive(writer http.ResponseWriter, request *http.Request) {
	ref := request.PathValue("ref")
	data, err := s.store.Get(ref)
	if err != nil {
		s.writeError(writer, request, err)
		return
	}

	writer.Header().Set("Content-Type", "application/zip")
	writer.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ref+".zip"))
	writer.Header().Set(archiveRefHeader, ref)
	writer.WriteHeader(http.StatusOK)
	if _, err := writer.Write(data); err != nil {
		s.logger.Error("writing archive response", "ref", ref, "error", err)
	}
}

func (s *CompressorService) handleDeleteArchive(writer http.ResponseWriter, request *http.Request) {
	ref := request.PathValue("ref")
	if err := s.store.Delete(ref); err != nil {
		s.writeError(writer, request, err)
		return
	}
	s.logger.Info("archive deleted", "ref", ref)
	writer.WriteHeader(http.StatusNoContent)
}

// --- Response writing ---

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes v as the JSON response body with the given status.
func (s *CompressorService) writeJSON(writer http.ResponseWriter, status int, v any) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	if err := json.NewEncoder(writer).Encode(v); err != nil {
		s.logger.Error("writing json response", "error", err)
	}
}

// writeError maps an error to its HTTP status: client-input,
// integrity, and size-limit problems are 400s, unknown refs 404.
// Anything else is a 500 whose detail stays in the log rather than
// the response.
func (s *CompressorService) writeError(writer http.ResponseWriter, request *http.Request, err error) {
	var maxBytesErr *http.MaxBytesError

	status := http.StatusInternalServerError
	message := "internal error"
	switch {
	case errors.As(err, &maxBytesErr):
		status = http.StatusBadRequest
		message = fmt.Sprintf("request body exceeds %d bytes", maxBytesErr.Limit)
	case store.IsNotFound(err):
		status = http.StatusNotFound
		message = err.Error()
	case store.IsBadRef(err), huffman.IsInvalidInput(err), huffman.IsCorrupt(err):
		status = http.StatusBadRequest
		message = err.Error()
	default:
		s.logger.Error("request failed",
			"method", request.Method,
			"path", request.URL.Path,
			"error", err,
		)
	}
	s.writeJSON(writer, status, errorResponse{Error: message})
}
