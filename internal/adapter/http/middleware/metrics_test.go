package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	httpRequestsTotal.Reset()
	httpRequestDuration.Reset()
	httpRequestsInFlight.Set(0)

	handlerCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/entries", nil)
	rr := httptest.NewRecorder()

	Metrics(next).ServeHTTP(rr, req)

	if !handlerCalled {
		t.Fatalf("expected handler to be called")
	}

	count := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(
		http.MethodPost, "/api/v1/entries", strconv.Itoa(http.StatusCreated),
	))
	if count != 1 {
		t.Fatalf("expected 1 recorded request, got %v", count)
	}

	inFlight := testutil.ToFloat64(httpRequestsInFlight)
	if inFlight != 0 {
		t.Fatalf("expected in-flight gauge back at 0, got %v", inFlight)
	}
}

func TestRoutePatternFallsBackToRawPath(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)

	if got := routePattern(req); got != "/health" {
		t.Fatalf("expected raw path fallback, got %s", got)
	}
}
