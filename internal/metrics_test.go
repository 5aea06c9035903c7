package internal

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"campus-assets-api/pkg/ingest"

	"github.com/go-chi/chi/v5"
)

func TestMetricsEndpoint(t *testing.T) {
	metrics := NewMetrics()

	router := chi.NewRouter()
	router.Use(metrics.Middleware())
	router.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})
	router.Get("/metrics", metrics.Handler().ServeHTTP)

	// Make a request to generate some metrics
	testReq := httptest.NewRequest("GET", "/ping", nil)
	testW := httptest.NewRecorder()
	router.ServeHTTP(testW, testReq)

	if testW.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", testW.Code)
	}

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	body := w.Body.String()
	expectedMetrics := []string{"http_requests_total", "http_request_duration_seconds"}
	for _, metric := range expectedMetrics {
		if !strings.Contains(body, metric) {
			t.Errorf("Expected metric '%s' not found in response", metric)
		}
	}

	if !strings.Contains(body, `path="/ping"`) {
		t.Error("Expected metrics to contain path label for /ping endpoint")
	}
}

func TestMetricsMiddleware(t *testing.T) {
	metrics := NewMetrics()

	router := chi.NewRouter()
	router.Use(metrics.Middleware())
	router.Get("/test", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("test response"))
	})

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if w.Body.String() != "test response" {
		t.Errorf("Expected body 'test response', got '%s'", w.Body.String())
	}
}

func TestMetricsWithChiRoutePatterns(t *testing.T) {
	metrics := NewMetrics()
	router := chi.NewRouter()
	router.Use(metrics.Middleware())
	router.Get("/api/resources/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("resource"))
	})
	router.Get("/metrics", metrics.Handler().ServeHTTP)

	testReq := httptest.NewRequest("GET", "/api/resources/123", nil)
	testW := httptest.NewRecorder()
	router.ServeHTTP(testW, testReq)

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	body := w.Body.String()

	// Should contain the route pattern, not the actual path
	if !strings.Contains(body, `path="/api/resources/{id}"`) {
		t.Error("Expected metrics to contain Chi route pattern, not actual path")
	}
}

func TestRecordIngest(t *testing.T) {
	metrics := NewMetrics()
	metrics.RecordIngest(&ingest.Result{
		FormatType:   "standard",
		SuccessCount: 3,
		ErrorCount:   1,
		SkippedRows:  2,
	})
	metrics.RecordIngest(nil)

	router := chi.NewRouter()
	router.Get("/metrics", metrics.Handler().ServeHTTP)

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	body := w.Body.String()
	for _, want := range []string{
		`ingest_runs_total{format="standard"} 1`,
		`ingest_rows_total{format="standard",outcome="stored"} 3`,
		`ingest_rows_total{format="standard",outcome="error"} 1`,
		`ingest_rows_total{format="standard",outcome="skipped"} 2`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected metrics to contain %q", want)
		}
	}
}
