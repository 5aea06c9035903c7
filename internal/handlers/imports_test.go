package handlers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"campus-assets-api/internal/auth"
	"campus-assets-api/pkg/ingest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingStore struct {
	records []ingest.Record
	metas   []ingest.Meta
}

func (r *recordingStore) Insert(_ context.Context, rec ingest.Record, meta ingest.Meta) error {
	r.records = append(r.records, rec)
	r.metas = append(r.metas, meta)
	return nil
}

func adminContext(req *http.Request) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), auth.ClaimsKey, &auth.Claims{
		UserID: 1,
		Email:  "admin@example.edu",
		Role:   "admin",
	}))
}

func multipartBody(t *testing.T, fields map[string]string, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if filename != "" {
		part, err := writer.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestUploadsHandler_UploadCSV(t *testing.T) {
	t.Run("Rejects non-multipart content type", func(t *testing.T) {
		handler := NewUploadsHandler(&recordingStore{}, ingest.DefaultMapping())

		req := httptest.NewRequest("POST", "/api/upload-csv", nil)
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		handler.UploadCSV(w, adminContext(req))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "content-type must be multipart/form-data")
	})

	t.Run("Rejects missing parent_department", func(t *testing.T) {
		handler := NewUploadsHandler(&recordingStore{}, ingest.DefaultMapping())

		body, contentType := multipartBody(t, nil, "assets.csv", "x")
		req := httptest.NewRequest("POST", "/api/upload-csv", body)
		req.Header.Set("Content-Type", contentType)

		w := httptest.NewRecorder()
		handler.UploadCSV(w, adminContext(req))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "parent_department is required")
	})

	t.Run("Rejects missing file", func(t *testing.T) {
		handler := NewUploadsHandler(&recordingStore{}, ingest.DefaultMapping())

		body, contentType := multipartBody(t, map[string]string{"parent_department": "EIE"}, "", "")
		req := httptest.NewRequest("POST", "/api/upload-csv", body)
		req.Header.Set("Content-Type", contentType)

		w := httptest.NewRecorder()
		handler.UploadCSV(w, adminContext(req))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "file is required")
	})

	t.Run("Rejects wrong extension", func(t *testing.T) {
		handler := NewUploadsHandler(&recordingStore{}, ingest.DefaultMapping())

		body, contentType := multipartBody(t, map[string]string{"parent_department": "EIE"}, "assets.xlsx", "x")
		req := httptest.NewRequest("POST", "/api/upload-csv", body)
		req.Header.Set("Content-Type", contentType)

		w := httptest.NewRecorder()
		handler.UploadCSV(w, adminContext(req))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "extension")
	})

	t.Run("Processes a standard CSV upload", func(t *testing.T) {
		store := &recordingStore{}
		handler := NewUploadsHandler(store, ingest.DefaultMapping())

		csv := "SL No,Description,Service Tag,Identification Number,Procurement Date,Cost,Location,Department\n" +
			"1,Dell Laptop,ST500,ID100,2021-03-05,45000,Lab 1,CSE\n"
		body, contentType := multipartBody(t, map[string]string{"parent_department": "EIE"}, "assets.csv", csv)
		req := httptest.NewRequest("POST", "/api/upload-csv", body)
		req.Header.Set("Content-Type", contentType)

		w := httptest.NewRecorder()
		handler.UploadCSV(w, adminContext(req))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"success_count":1`)
		assert.Contains(t, w.Body.String(), `"format_type":"standard"`)

		require.Len(t, store.records, 1)
		assert.Equal(t, "Dell Laptop", store.records[0].Description)
		assert.Equal(t, "EIE", store.metas[0].ParentDepartment)
		assert.Equal(t, "admin@example.edu", store.metas[0].UploadedBy)
	})

	t.Run("Rejects an unrecognized layout", func(t *testing.T) {
		handler := NewUploadsHandler(&recordingStore{}, ingest.DefaultMapping())

		body, contentType := multipartBody(t, map[string]string{"parent_department": "EIE"}, "odd.csv", "a,b\nc,d\n")
		req := httptest.NewRequest("POST", "/api/upload-csv", body)
		req.Header.Set("Content-Type", contentType)

		w := httptest.NewRecorder()
		handler.UploadCSV(w, adminContext(req))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestUploadsHandler_UploadExcelRejectsCSVName(t *testing.T) {
	handler := NewUploadsHandler(&recordingStore{}, ingest.DefaultMapping())

	body, contentType := multipartBody(t, map[string]string{"parent_department": "EIE"}, "assets.csv", "x")
	req := httptest.NewRequest("POST", "/api/upload-excel", body)
	req.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	handler.UploadExcel(w, adminContext(req))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
