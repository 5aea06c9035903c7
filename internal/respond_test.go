package internal

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSendJSONEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	sendJSON(w, http.StatusCreated, map[string]int{"id": 7}, "resource created")

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("unexpected content type %q", ct)
	}

	var resp envelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != http.StatusCreated {
		t.Errorf("expected status 201 in body, got %d", resp.Status)
	}
	if resp.Message != "resource created" {
		t.Errorf("unexpected message %q", resp.Message)
	}
	if resp.Error != "" {
		t.Errorf("expected empty error, got %q", resp.Error)
	}
	if resp.Timestamp == "" {
		t.Error("expected a timestamp")
	}
}

func TestSendErrorEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	sendError(w, http.StatusNotFound, "resource not found")

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}

	var resp envelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Error != "resource not found" {
		t.Errorf("unexpected error %q", resp.Error)
	}
	if resp.Data != nil {
		t.Errorf("expected nil data, got %v", resp.Data)
	}
}

func TestSendListResponsePagination(t *testing.T) {
	w := httptest.NewRecorder()
	params := listParams{page: 2, limit: 10}
	sendListResponse(w, []string{"a", "b"}, 25, params)

	var resp struct {
		Data listPayload `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Data.Total != 25 {
		t.Errorf("expected total 25, got %d", resp.Data.Total)
	}
	if resp.Data.Page != 2 {
		t.Errorf("expected page 2, got %d", resp.Data.Page)
	}
	if resp.Data.TotalPages != 3 {
		t.Errorf("expected 3 total pages, got %d", resp.Data.TotalPages)
	}
}
