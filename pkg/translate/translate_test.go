// ABOUTME: Tests for the M2M100 sidecar HTTP client
// ABOUTME: Uses httptest servers to exercise success, error and cancellation paths

package translate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestTranslate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/translate" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req translateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.SourceLang != "en" || req.TargetLang != "hi" {
			t.Errorf("langs = %q -> %q", req.SourceLang, req.TargetLang)
		}
		json.NewEncoder(w).Encode(translateResponse{Translation: "<PH0001> ठीक"})
	}))
	defer srv.Close()

	got, err := NewClient(srv.URL).Translate(context.Background(), "<PH0001> okay", "en", "hi")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got != "<PH0001> ठीक" {
		t.Errorf("translation = %q", got)
	}
}

func TestTranslateSidecarError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(translateResponse{Error: "model not loaded"})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Translate(context.Background(), "x", "en", "hi")
	if err == nil || !strings.Contains(err.Error(), "model not loaded") {
		t.Fatalf("err = %v", err)
	}
}

func TestTranslateHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Translate(context.Background(), "x", "en", "hi")
	if err == nil || !strings.Contains(err.Error(), "503") {
		t.Fatalf("err = %v", err)
	}
}

func TestTranslateContextCancellation(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := NewClient(srv.URL).Translate(ctx, "x", "en", "hi")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}

func TestHealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	if !NewClient(srv.URL).Healthy(context.Background()) {
		t.Error("Healthy = false against a live sidecar")
	}
	srv.Close()
	if NewClient(srv.URL).Healthy(context.Background()) {
		t.Error("Healthy = true against a closed sidecar")
	}
}
