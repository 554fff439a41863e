package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

type recordedRequest struct {
	method, route string
	status        int
}

type mockHTTPMetrics struct {
	mu       sync.Mutex
	recorded []recordedRequest
}

func (m *mockHTTPMetrics) RecordHTTPRequest(method, route string, statusCode int, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recorded = append(m.recorded, recordedRequest{method, route, statusCode})
}

func TestMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	rec := &mockHTTPMetrics{}

	r := chi.NewRouter()
	r.Use(NewMetricsMiddleware(rec))
	r.Get("/transactions/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/transactions/"+id, nil))
	}

	if len(rec.recorded) != 2 {
		t.Fatalf("recorded = %d, want 2", len(rec.recorded))
	}
	for _, got := range rec.recorded {
		want := recordedRequest{http.MethodGet, "/transactions/{id}", http.StatusNotFound}
		if got != want {
			t.Errorf("recorded = %+v, want %+v", got, want)
		}
	}
}

func TestMetricsMiddleware_UnmatchedRoute(t *testing.T) {
	rec := &mockHTTPMetrics{}

	r := chi.NewRouter()
	r.Use(NewMetricsMiddleware(rec))
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	if len(rec.recorded) != 1 {
		t.Fatalf("recorded = %d, want 1", len(rec.recorded))
	}
	if rec.recorded[0].route != unmatchedRoute {
		t.Errorf("route = %q, want %q", rec.recorded[0].route, unmatchedRoute)
	}
	if rec.recorded[0].status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.recorded[0].status)
	}
}
