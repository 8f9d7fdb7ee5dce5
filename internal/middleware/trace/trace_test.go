package trace

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHandlerInjectsRequestID(t *testing.T) {
	m := NewMiddleware(nil)

	var seen string
	handler := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	if seen == "" {
		t.Fatal("handler must see a request id in its context")
	}
	if rec.Code != http.StatusTeapot {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestHandlerAssignsDistinctIDs(t *testing.T) {
	m := NewMiddleware(func(*http.Request) string { return "10.0.0.1" })

	ids := map[string]bool{}
	handler := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids[RequestID(r.Context())] = true
	}))

	for i := 0; i < 3; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}

	if len(ids) != 3 {
		t.Fatalf("got %d distinct ids, want 3", len(ids))
	}
	if got := m.Metrics().TotalRequests; got != 3 {
		t.Fatalf("TotalRequests = %d", got)
	}
}

func TestRequestIDOutsideTracedRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if id := RequestID(req.Context()); id != "" {
		t.Fatalf("id = %q, want empty", id)
	}
}
