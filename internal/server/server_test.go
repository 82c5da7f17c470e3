package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/sinnsyakai/research-assistant/internal/pipeline"
	"github.com/sinnsyakai/research-assistant/internal/result"
	"github.com/sinnsyakai/research-assistant/internal/search"
)

type stubWeb struct {
	mu      sync.Mutex
	queries []string
}

func (s *stubWeb) Search(_ context.Context, req search.WebRequest) ([]search.WebResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, req.Query)
	return []search.WebResult{{
		Title:       "検索結果のタイトルです",
		Link:        "https://example.com/2024/03/15/article/",
		Snippet:     "スニペット",
		DisplayLink: "example.com",
	}}, nil
}

func newTestServer(t *testing.T) (*Server, *stubWeb) {
	t.Helper()
	web := &stubWeb{}
	pipe := pipeline.New(pipeline.Config{
		Web: web,
		Now: func() time.Time { return time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC) },
	})
	return New(pipe, 0, nil), web
}

func TestHandleSearch(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/search?query=量子コンピュータ", nil)
	rec := httptest.NewRecorder()
	srv.srv.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Data []result.Canonical `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Data) == 0 {
		t.Fatal("expected results in the data envelope")
	}
	if body.Data[0].Title != "検索結果のタイトルです" {
		t.Errorf("unexpected first result: %+v", body.Data[0])
	}
}

func TestHandleSearchMissingQuery(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/search", nil)
	rec := httptest.NewRecorder()
	srv.srv.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] == "" {
		t.Fatal("expected an error message")
	}
}

func TestHandleHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.srv.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("status body = %+v", body)
	}
}
