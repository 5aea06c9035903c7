package handlers

import (
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"campus-assets-api/internal/auth"
	"campus-assets-api/pkg/ingest"
)

// UploadsHandler handles spreadsheet upload operations
type UploadsHandler struct {
	Store    ingest.Store
	Mapping  ingest.Mapping
	MaxBytes int64

	// OnResult is called after each completed run, e.g. to record metrics.
	OnResult func(*ingest.Result)
}

// NewUploadsHandler creates a new uploads handler
func NewUploadsHandler(store ingest.Store, mapping ingest.Mapping) *UploadsHandler {
	return &UploadsHandler{
		Store:    store,
		Mapping:  mapping,
		MaxBytes: 20 << 20, // 20 MB
	}
}

// UploadCSV handles CSV file uploads
func (h *UploadsHandler) UploadCSV(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, ingest.KindCSV, hasExtension(".csv"))
}

// UploadExcel handles Excel file uploads
func (h *UploadsHandler) UploadExcel(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, ingest.KindExcel, hasExtension(".xlsx", ".xls"))
}

func (h *UploadsHandler) upload(w http.ResponseWriter, r *http.Request, kind ingest.Kind, extOK func(*multipart.FileHeader) bool) {
	// Limit body size
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxBytes)

	// Require multipart
	if !strings.Contains(r.Header.Get("Content-Type"), "multipart/form-data") {
		writeError(w, http.StatusBadRequest, "content-type must be multipart/form-data")
		return
	}

	if err := r.ParseMultipartForm(h.MaxBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	parentDepartment := strings.TrimSpace(r.FormValue("parent_department"))
	if parentDepartment == "" {
		writeError(w, http.StatusBadRequest, "parent_department is required")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required: "+err.Error())
		return
	}
	defer file.Close()

	if !extOK(header) {
		writeError(w, http.StatusBadRequest, "file extension does not match this endpoint")
		return
	}

	uploadedBy := ""
	if claims := auth.ClaimsFromContext(r.Context()); claims != nil {
		uploadedBy = claims.Email
	}

	meta := ingest.Meta{
		ParentDepartment: parentDepartment,
		UploadedBy:       uploadedBy,
		Now:              time.Now().UTC(),
	}

	result, err := ingest.Ingest(r.Context(), file, header.Filename, kind, meta, h.Mapping, h.Store)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if h.OnResult != nil {
		h.OnResult(result)
	}

	writeJSON(w, http.StatusOK, result, "upload processed")
}

// hasExtension accepts files named with one of the given extensions
func hasExtension(exts ...string) func(*multipart.FileHeader) bool {
	return func(h *multipart.FileHeader) bool {
		name := strings.ToLower(h.Filename)
		for _, ext := range exts {
			if strings.HasSuffix(name, ext) {
				return true
			}
		}
		return false
	}
}

// writeJSON writes a JSON response in the shared envelope shape
func writeJSON(w http.ResponseWriter, status int, data interface{}, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"data":      data,
		"message":   message,
		"error":     "",
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"data":      nil,
		"message":   "",
		"error":     message,
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
