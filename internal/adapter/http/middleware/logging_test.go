package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestLoggingMiddlewareRecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	mw := NewLoggingMiddleware(zerolog.New(&buf))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ledgers/GL", nil)
	rr := httptest.NewRecorder()

	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})).ServeHTTP(rr, req)

	output := buf.String()
	if !strings.Contains(output, `"status":404`) {
		t.Fatalf("expected logged status 404, got %q", output)
	}
	if !strings.Contains(output, `"path":"/api/v1/ledgers/GL"`) {
		t.Fatalf("expected logged path, got %q", output)
	}
}
