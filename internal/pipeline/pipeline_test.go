package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sinnsyakai/research-assistant/internal/ai"
	"github.com/sinnsyakai/research-assistant/internal/intent"
	"github.com/sinnsyakai/research-assistant/internal/search"
)

func fixedNow() time.Time {
	return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
}

// fakeWeb returns canned results and records requests. The fetcher calls
// Search from concurrent goroutines, so access is serialized.
type fakeWeb struct {
	mu       sync.Mutex
	requests []search.WebRequest
	results  func(req search.WebRequest) []search.WebResult
	err      error
}

func (f *fakeWeb) Search(_ context.Context, req search.WebRequest) ([]search.WebResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	if f.results == nil {
		return nil, nil
	}
	return f.results(req), nil
}

type fakeAcademic struct {
	requests []search.AcademicRequest
	works    []search.AcademicWork
	err      error
}

func (f *fakeAcademic) Search(_ context.Context, req search.AcademicRequest) ([]search.AcademicWork, error) {
	f.requests = append(f.requests, req)
	return f.works, f.err
}

// fakeAssistant overrides selected Noop behaviors.
type fakeAssistant struct {
	ai.Noop
	translated string
	clarified  string
	relevant   []int
	filterErr  error
}

func (f *fakeAssistant) TranslateQuery(_ context.Context, query string, _ bool) (string, error) {
	if f.translated != "" {
		return f.translated, nil
	}
	return query, nil
}

func (f *fakeAssistant) ClarifyQuery(_ context.Context, query string) (string, error) {
	if f.clarified != "" {
		return f.clarified, nil
	}
	return query, nil
}

func (f *fakeAssistant) FilterRelevant(_ context.Context, query string, titles []string) ([]int, error) {
	if f.filterErr != nil {
		return nil, f.filterErr
	}
	if f.relevant != nil {
		return f.relevant, nil
	}
	return ai.Noop{}.FilterRelevant(context.Background(), query, titles)
}

func articleResult(i int) search.WebResult {
	return search.WebResult{
		Title:       fmt.Sprintf("記事タイトル第%d号のニュース解説", i),
		Link:        fmt.Sprintf("https://example.com/2024/03/%02d/article-%d/", (i%28)+1, i),
		Snippet:     "スニペット",
		DisplayLink: "example.com",
	}
}

func TestRunRequiresQuery(t *testing.T) {
	p := New(Config{Log: slog.Default(), Now: fixedNow})
	if _, err := p.Run(context.Background(), Request{}); !errors.Is(err, ErrMissingQuery) {
		t.Fatalf("err = %v, want ErrMissingQuery", err)
	}
}

func TestRunWithoutWebYieldsPlaceholder(t *testing.T) {
	p := New(Config{Now: fixedNow})
	results, err := p.Run(context.Background(), Request{Query: "q"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 1 || results[0].ID != "sys-config" {
		t.Fatalf("got %+v, want the configuration placeholder", results)
	}
}

func TestRunWebEndToEnd(t *testing.T) {
	web := &fakeWeb{results: func(req search.WebRequest) []search.WebResult {
		// One article, one duplicate of it, one home page, per request.
		n := req.Start
		return []search.WebResult{
			articleResult(n),
			{Title: "ホーム", Link: "https://example.com/", DisplayLink: "example.com"},
		}
	}}

	p := New(Config{Web: web, Now: fixedNow})
	results, err := p.Run(context.Background(), Request{Query: "量子コンピュータ"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// 6 plans issued: 2 trusted, 3 general, 1 video.
	if len(web.requests) != 6 {
		t.Fatalf("got %d requests, want 6", len(web.requests))
	}

	if len(results) == 0 {
		t.Fatal("expected results")
	}
	for _, r := range results {
		if r.ID == "" || r.Title == "" || r.URL == "" {
			t.Errorf("incomplete canonical result: %+v", r)
		}
		if r.URL == "https://example.com/" {
			t.Errorf("home page leaked through classification: %+v", r)
		}
		if r.PublicationDate == "" {
			t.Errorf("dated URL yielded no publication date: %+v", r)
		}
	}
}

func TestRunWebCapsResults(t *testing.T) {
	seq := 0
	web := &fakeWeb{results: func(req search.WebRequest) []search.WebResult {
		out := make([]search.WebResult, 10)
		for i := range out {
			seq++
			out[i] = articleResult(seq)
		}
		return out
	}}

	p := New(Config{Web: web, Now: fixedNow, Assistant: &fakeAssistant{filterErr: errors.New("down")}})
	results, err := p.Run(context.Background(), Request{Query: "q"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 20 {
		t.Fatalf("got %d results, want the 20-item cap", len(results))
	}
}

func TestRunWebRelevanceFilter(t *testing.T) {
	seq := 0
	web := &fakeWeb{results: func(req search.WebRequest) []search.WebResult {
		out := make([]search.WebResult, 5)
		for i := range out {
			seq++
			out[i] = articleResult(seq)
		}
		return out
	}}

	// Only the first leading result is relevant.
	p := New(Config{Web: web, Now: fixedNow, Assistant: &fakeAssistant{relevant: []int{0}}})
	results, err := p.Run(context.Background(), Request{Query: "q"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// 15 reviewed minus 14 dropped, plus everything beyond the window.
	if len(results) != 6 {
		t.Fatalf("got %d results, want 6", len(results))
	}
}

func TestRunWebSurvivesCollaboratorFailure(t *testing.T) {
	web := &fakeWeb{err: errors.New("upstream down")}
	p := New(Config{Web: web, Now: fixedNow})

	results, err := p.Run(context.Background(), Request{Query: "q"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("got %+v, want empty results on total fetch failure", results)
	}
}

func TestRunGlobalTranslatesQuery(t *testing.T) {
	web := &fakeWeb{}
	p := New(Config{Web: web, Now: fixedNow, Assistant: &fakeAssistant{translated: "quantum computer"}})

	if _, err := p.Run(context.Background(), Request{Query: "量子コンピュータ", Mode: intent.ModeGlobal}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(web.requests) != 5 {
		t.Fatalf("got %d requests, want 5 (no video phase)", len(web.requests))
	}
	for _, req := range web.requests {
		if !strings.Contains(req.Query, "quantum computer") {
			t.Errorf("request query %q not translated", req.Query)
		}
		if strings.Contains(req.Query, "量子") {
			t.Errorf("request query %q kept the untranslated text", req.Query)
		}
	}
}

func TestRunClarifiedQueryKeepsVideoPhaseRaw(t *testing.T) {
	web := &fakeWeb{}
	p := New(Config{Web: web, Now: fixedNow, Assistant: &fakeAssistant{clarified: "量子コンピュータ 最新動向"}})

	if _, err := p.Run(context.Background(), Request{Query: "量子コンピュータ"}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(web.requests) != 6 {
		t.Fatalf("got %d requests, want 6", len(web.requests))
	}
	videos := 0
	for _, req := range web.requests {
		if !strings.Contains(req.Query, "site:youtube.com") {
			if !strings.Contains(req.Query, "量子コンピュータ 最新動向") {
				t.Errorf("request query %q not clarified", req.Query)
			}
			continue
		}
		videos++
		if req.Query != "量子コンピュータ site:youtube.com" {
			t.Errorf("video query = %q, want the query as typed", req.Query)
		}
	}
	if videos != 1 {
		t.Fatalf("got %d video requests, want 1", videos)
	}
}

func TestRunAcademic(t *testing.T) {
	academic := &fakeAcademic{works: []search.AcademicWork{
		{
			ID: "W1", Title: "Quantum Error Correction", Abstract: "abstract",
			URL: "https://journal.example.com/w1", Year: 2023,
			PublicationDate: "2023-03-15", Authors: []string{"A", "B"},
			Venue: "Journal", Country: "GB",
		},
		{
			ID: "W2", Title: "Another Work", URL: "https://journal.example.com/w2", Year: 2022,
			Venue: "Journal",
		},
	}}

	p := New(Config{Academic: academic, Now: fixedNow})
	results, err := p.Run(context.Background(), Request{Query: "量子誤り訂正", Mode: intent.ModeAcademic, Sort: "publication_year"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(academic.requests) != 1 {
		t.Fatalf("got %d academic requests, want 1", len(academic.requests))
	}
	req := academic.requests[0]
	if req.PerPage != 30 || req.Page != 1 || !req.SortByDate {
		t.Errorf("unexpected academic request: %+v", req)
	}

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].ID != "W1" || results[0].Year != 2023 {
		t.Errorf("unexpected first result: %+v", results[0])
	}
	if len(results[0].Authors) != 2 || results[0].Authors[0].Name != "A" {
		t.Errorf("authors = %+v", results[0].Authors)
	}
	if len(results[1].Authors) != 1 || results[1].Authors[0].Name != "Unknown" {
		t.Errorf("missing authors must fall back to Unknown: %+v", results[1].Authors)
	}
}

func TestRunAcademicFailureYieldsEmpty(t *testing.T) {
	academic := &fakeAcademic{err: errors.New("index down")}
	p := New(Config{Academic: academic, Now: fixedNow})

	results, err := p.Run(context.Background(), Request{Query: "q", Mode: intent.ModeAcademic})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("got %+v, want empty results", results)
	}
}
