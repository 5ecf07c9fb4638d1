package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPreflightAllowsAnyOrigin(t *testing.T) {
	handler, _ := newTestHandler(t)

	request := httptest.NewRequest(http.MethodOptions, "/", http.NoBody)
	request.Header.Set("Origin", "https://ifnoise.github.io")
	request.Header.Set("Access-Control-Request-Method", http.MethodPost)
	request.Header.Set("Access-Control-Request-Headers", "Content-Type")

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusNoContent && recorder.Code != http.StatusOK {
		t.Fatalf("unexpected preflight status: %d", recorder.Code)
	}
	if recorder.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("expected wildcard origin, got %q", recorder.Header().Get("Access-Control-Allow-Origin"))
	}
	if recorder.Body.Len() != 0 {
		t.Fatalf("preflight body should be empty, got %q", recorder.Body.String())
	}
}

func TestSubmitResponseCarriesCORSHeaders(t *testing.T) {
	handler, _ := newTestHandler(t)

	request := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	request.Header.Set("Origin", "https://ifnoise.github.io")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	if recorder.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("expected wildcard origin on simple request, got %q",
			recorder.Header().Get("Access-Control-Allow-Origin"))
	}
}
