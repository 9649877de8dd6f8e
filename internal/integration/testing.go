package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// RetrieveRequest records one clip-retrieval call seen by the fake backend.
type RetrieveRequest struct {
	UserID string `json:"user_id"`
	Query  string `json:"query"`
	TopK   int    `json:"top_k"`
}

// FakeBackend is an in-process stand-in for the video-processing API.
type FakeBackend struct {
	srv *httptest.Server

	mu       sync.Mutex
	requests []RetrieveRequest
	clips    []map[string]any
	status   int
	healthy  bool
}

// NewFakeBackend starts a backend that answers retrievals with the given
// clips. It is closed automatically when the test finishes.
func NewFakeBackend(t *testing.T, clips []map[string]any) *FakeBackend {
	t.Helper()

	f := &FakeBackend{clips: clips, status: http.StatusOK, healthy: true}
	f.srv = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *FakeBackend) handle(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/retrieve-clips-with-descriptions":
		var req RetrieveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		f.mu.Lock()
		f.requests = append(f.requests, req)
		status, clips := f.status, f.clips
		f.mu.Unlock()

		if status != http.StatusOK {
			http.Error(w, "backend error", status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"clips": clips})

	case "/health":
		f.mu.Lock()
		healthy := f.healthy
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if !healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})

	default:
		http.NotFound(w, r)
	}
}

// URL returns the backend's base URL.
func (f *FakeBackend) URL() string { return f.srv.URL }

// Close shuts the backend down, making it unreachable.
func (f *FakeBackend) Close() { f.srv.Close() }

// Requests returns a copy of the retrieval requests seen so far.
func (f *FakeBackend) Requests() []RetrieveRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]RetrieveRequest(nil), f.requests...)
}

// SetStatus makes subsequent retrievals answer with the given HTTP status.
func (f *FakeBackend) SetStatus(status int) {
	f.mu.Lock()
	f.status = status
	f.mu.Unlock()
}

// SkipIfShort skips integration tests in short mode.
func SkipIfShort(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
}

// NewTestContext creates a context with timeout for integration tests.
func NewTestContext(t *testing.T, timeout time.Duration) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx
}
