package internal

import (
	"encoding/json"
	"net/http"
	"time"
)

// envelope is the uniform response body for JSON endpoints
type envelope struct {
	Data      interface{} `json:"data"`
	Message   string      `json:"message"`
	Error     string      `json:"error"`
	Status    int         `json:"status"`
	Timestamp string      `json:"timestamp"`
}

// listPayload wraps list results with pagination metadata
type listPayload struct {
	Items      interface{} `json:"items"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalPages int         `json:"total_pages"`
}

func sendJSON(w http.ResponseWriter, status int, data interface{}, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := envelope{
		Data:      data,
		Message:   message,
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func sendError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := envelope{
		Error:     message,
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func sendListResponse(w http.ResponseWriter, items interface{}, total int, params listParams) {
	totalPages := 0
	if params.limit > 0 {
		totalPages = (total + params.limit - 1) / params.limit
	}
	sendJSON(w, http.StatusOK, listPayload{
		Items:      items,
		Total:      total,
		Page:       params.page,
		Limit:      params.limit,
		TotalPages: totalPages,
	}, "")
}
