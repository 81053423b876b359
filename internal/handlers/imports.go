package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"asset-angel-api/internal/auth"
	"asset-angel-api/internal/logging"
	"asset-angel-api/pkg/importer"
)

// ImportsHandler handles Excel import operations
type ImportsHandler struct {
	Sink       importer.AssetSink
	MaxBytes   int64
	DefaultMap string // mapping file path; empty uses the embedded mapping
}

// NewImportsHandler creates a new imports handler
func NewImportsHandler(sink importer.AssetSink) *ImportsHandler {
	return &ImportsHandler{
		Sink:     sink,
		MaxBytes: 20 << 20, // 20 MB
	}
}

// UploadExcel handles Excel file uploads for asset import.
// Form fields: file (required), dry_run, max_errors, and an optional
// mapping part holding a YAML column mapping.
func (h *ImportsHandler) UploadExcel(w http.ResponseWriter, r *http.Request) {
	// Limit body size
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxBytes)

	// Require multipart
	if !strings.Contains(r.Header.Get("Content-Type"), "multipart/form-data") {
		http.Error(w, "content-type must be multipart/form-data", http.StatusBadRequest)
		return
	}

	if err := r.ParseMultipartForm(h.MaxBytes); err != nil {
		http.Error(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}

	dryRun := r.FormValue("dry_run") == "true"
	maxErrors := importer.DefaultMaxErrors
	if v := r.FormValue("max_errors"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "max_errors must be a positive integer", http.StatusBadRequest)
			return
		}
		maxErrors = n
	}

	opts := importer.ImportOptions{
		MappingPath: h.DefaultMap,
		DryRun:      dryRun,
		MaxErrors:   maxErrors,
	}

	if part, _, err := r.FormFile("mapping"); err == nil {
		raw, err := io.ReadAll(part)
		part.Close()
		if err != nil {
			http.Error(w, "failed to read mapping: "+err.Error(), http.StatusBadRequest)
			return
		}
		mapping, err := importer.ParseMapping(raw)
		if err != nil {
			http.Error(w, "invalid mapping: "+err.Error(), http.StatusBadRequest)
			return
		}
		opts.Mapping = mapping
	} else if !errors.Is(err, http.ErrMissingFile) {
		http.Error(w, "invalid mapping: "+err.Error(), http.StatusBadRequest)
		return
	}

	// File
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	if !isXLSX(header) {
		http.Error(w, "only .xlsx files are accepted", http.StatusBadRequest)
		return
	}

	logger := logging.FromContext(r.Context())
	if s := auth.SessionFromContext(r.Context()); s != nil {
		logger = logger.With("user_id", s.User.ID)
	}

	sum, impErr := importer.ImportAssets(r.Context(), h.Sink, file, opts)
	if impErr != nil {
		logger.Warn("asset import failed", "file", header.Filename, "error", impErr, "errors", sum.Errors)
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":   "IMPORT_FAILED",
			"details": impErr.Error(),
			"data":    sum, // might include partial
		})
		return
	}

	logger.Info("asset import finished",
		"file", header.Filename,
		"dry_run", sum.DryRun,
		"inserted", sum.Inserted,
		"updated", sum.Updated,
		"skipped", sum.Skipped,
		"errors", sum.Errors,
	)
	writeJSON(w, http.StatusOK, map[string]any{
		"data": sum,
		"meta": map[string]any{
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"version":   "1.0.0",
		},
	})
}

// isXLSX checks if the uploaded file is an Excel .xlsx file
func isXLSX(h *multipart.FileHeader) bool {
	return strings.HasSuffix(strings.ToLower(h.Filename), ".xlsx")
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
