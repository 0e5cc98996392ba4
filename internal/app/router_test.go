package app

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gemrelay/gemrelay/internal/metrics"
	"github.com/gemrelay/gemrelay/internal/pool"
	"github.com/gemrelay/gemrelay/internal/storage"
	"github.com/gemrelay/gemrelay/internal/transport/http/handler"
	"github.com/gemrelay/gemrelay/internal/upstream"
)

func newTestRouter(t *testing.T) http.Handler {
	router, _ := newTestRouterWithStore(t)
	return router
}

func newTestRouterWithStore(t *testing.T) (http.Handler, storage.Storage) {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{
					"content":      map[string]any{"parts": []map[string]string{{"text": "Hello"}}},
					"finishReason": "STOP",
				},
			},
		})
	}))
	t.Cleanup(srv.Close)

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "router_test.db"))
	if err != nil {
		t.Fatalf("creating storage: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	repo := handler.NewRepo(handler.Deps{
		Pool:         pool.New([]pool.Entry{{ID: "cred-1", Key: "test-key"}}, time.Minute),
		Upstream:     upstream.New(srv.URL, 5*time.Second),
		Metrics:      metrics.New(),
		Storage:      store,
		DefaultModel: "gemini-2.0-flash-exp",
	})

	router := NewRouter(repo, &RouterOptions{
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Storage: store,
	})
	return router, store
}

func TestRouterChatCompletions(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions",
		strings.NewReader(`{"messages":[{"role":"user","content":"Hi"}]}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "chatcmpl-") {
		t.Error("expected chat completion response")
	}
}

func TestRouterOptionsPreflightReturnsEmpty200(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/v1/chat/completions", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", rec.Body.String())
	}
}

func TestRouterUnknownRoute(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/v1/non-existent", "/nope"} {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader("{}"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("POST %s: status = %d, want 404", path, rec.Code)
		}
	}
}

func TestRouterHealthAndMetrics(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/health", "/metrics", "/"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("GET %s: status = %d, want 200", path, rec.Code)
		}
	}
}

func TestRouterAdminOpenWithoutPassword(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/system/status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 with no password configured", rec.Code)
	}
}

func TestRouterAdminGuardedWithPassword(t *testing.T) {
	router, store := newTestRouterWithStore(t)

	hash, err := storage.HashPassword("Sup3rSecret", storage.DefaultArgon2Params())
	if err != nil {
		t.Fatal(err)
	}
	if err := store.SetAdminPasswordHash(hash); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/system/status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/system/status", nil)
	req.Header.Set("Authorization", "Bearer Sup3rSecret")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("with token: status = %d, want 200", rec.Code)
	}
}
