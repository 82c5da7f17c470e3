// Package pipeline wires the stages of a search run: intent analysis, query
// planning, source fetching, classification, date extraction, deduplication,
// and assembly. All collaborators are injected; the pipeline holds no
// process-wide mutable state.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sinnsyakai/research-assistant/internal/ai"
	"github.com/sinnsyakai/research-assistant/internal/assemble"
	"github.com/sinnsyakai/research-assistant/internal/classify"
	"github.com/sinnsyakai/research-assistant/internal/dedup"
	"github.com/sinnsyakai/research-assistant/internal/fetch"
	"github.com/sinnsyakai/research-assistant/internal/intent"
	"github.com/sinnsyakai/research-assistant/internal/metrics"
	"github.com/sinnsyakai/research-assistant/internal/plan"
	"github.com/sinnsyakai/research-assistant/internal/pubdate"
	"github.com/sinnsyakai/research-assistant/internal/result"
	"github.com/sinnsyakai/research-assistant/internal/rules"
	"github.com/sinnsyakai/research-assistant/internal/search"
)

// ErrMissingQuery rejects a request before any stage runs.
var ErrMissingQuery = errors.New("query is required")

// relevanceWindow is how many leading results the AI relevance filter
// reviews; items beyond the window are always kept.
const relevanceWindow = 15

// translateWindow caps how many results are submitted for translation.
const translateWindow = 20

// academicPageSize is the per-page request against the academic index.
const academicPageSize = 30

// Request describes one pipeline run. Immutable once submitted.
type Request struct {
	Query  string
	Mode   intent.Mode
	Window plan.Window
	Sort   string
	Page   int
}

// Config bundles the injected collaborators.
type Config struct {
	// Web may be nil when search credentials are not configured; runs then
	// yield a single synthetic result explaining the missing configuration.
	Web       search.WebSearcher
	Academic  search.AcademicSearcher
	Assistant ai.Assistant
	Log       *slog.Logger
	Now       func() time.Time
	// Cap bounds the output length; zero means assemble.DefaultCap.
	Cap int
}

// Pipeline executes search runs.
type Pipeline struct {
	web       search.WebSearcher
	academic  search.AcademicSearcher
	assistant ai.Assistant
	fetcher   *fetch.Fetcher
	assembler *assemble.Assembler
	log       *slog.Logger
	now       func() time.Time
}

// New constructs a Pipeline from its collaborators.
func New(cfg Config) *Pipeline {
	if cfg.Assistant == nil {
		cfg.Assistant = ai.Noop{}
	}
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Pipeline{
		web:       cfg.Web,
		academic:  cfg.Academic,
		assistant: cfg.Assistant,
		fetcher:   fetch.New(cfg.Web, cfg.Log),
		assembler: &assemble.Assembler{Cap: cfg.Cap},
		log:       cfg.Log,
		now:       cfg.Now,
	}
}

// Run executes one request. No stage failure is fatal: the worst case is an
// empty or partial result list. Only a missing query is rejected.
func (p *Pipeline) Run(ctx context.Context, req Request) ([]result.Canonical, error) {
	if req.Query == "" {
		return nil, ErrMissingQuery
	}
	if req.Mode == "" {
		req.Mode = intent.ModeGeneral
	}
	if req.Page < 1 {
		req.Page = 1
	}

	start := p.now()
	metrics.SearchRequestsTotal.WithLabelValues(string(req.Mode)).Inc()
	defer func() {
		metrics.PipelineDuration.WithLabelValues(string(req.Mode)).Observe(time.Since(start).Seconds())
	}()

	if req.Mode == intent.ModeAcademic {
		return p.runAcademic(ctx, req), nil
	}
	return p.runWeb(ctx, req), nil
}

func (p *Pipeline) runWeb(ctx context.Context, req Request) []result.Canonical {
	if p.web == nil {
		return []result.Canonical{missingConfigResult()}
	}

	sig := intent.Analyze(req.Query, req.Mode)

	searchQuery := req.Query
	if sig.GlobalTarget {
		if translated, err := p.assistant.TranslateQuery(ctx, req.Query, false); err == nil && translated != "" {
			searchQuery = translated
		} else if err != nil {
			p.log.Debug("query translation skipped", "err", err)
		}
	} else {
		if clarified, err := p.assistant.ClarifyQuery(ctx, req.Query); err == nil && clarified != "" {
			searchQuery = clarified
		} else if err != nil {
			p.log.Debug("query clarification skipped", "err", err)
		}
	}

	plans := plan.Build(searchQuery, req.Query, sig, req.Window, req.Page)
	raw := p.fetcher.Run(ctx, plans)
	p.log.Info("fetched raw items", "count", len(raw), "query", searchQuery)

	accepted := make([]result.RawItem, 0, len(raw))
	for _, it := range raw {
		v := classify.Classify(it.URL, it.Title, sig)
		if !v.Accepted {
			metrics.ItemsRejectedTotal.WithLabelValues(v.Rule).Inc()
			p.log.Debug("rejected item", "rule", v.Rule, "url", it.URL)
			continue
		}
		metrics.ItemsAcceptedTotal.Inc()
		accepted = append(accepted, it)
	}

	dated := pubdate.Annotate(accepted, p.now())
	deduped := dedup.Dedupe(dated)
	results := p.assembler.Assemble(deduped, sig)
	p.log.Info("assembled results", "accepted", len(accepted), "deduped", len(deduped), "final", len(results))

	results = p.filterRelevant(ctx, req.Query, results)

	if sig.GlobalTarget {
		results = p.translateResults(ctx, results)
	}

	return results
}

func (p *Pipeline) runAcademic(ctx context.Context, req Request) []result.Canonical {
	if p.academic == nil {
		return nil
	}

	paperQuery := req.Query
	if rules.DomesticText.MatchString(req.Query) {
		if translated, err := p.assistant.TranslateQuery(ctx, req.Query, true); err == nil && translated != "" {
			paperQuery = translated
		} else if err != nil {
			p.log.Debug("academic query translation skipped", "err", err)
		}
	}

	works, err := p.academic.Search(ctx, search.AcademicRequest{
		Query:      paperQuery,
		PerPage:    academicPageSize,
		Page:       req.Page,
		SortByDate: req.Sort == "publication_year",
	})
	if err != nil {
		p.log.Warn("academic search failed", "err", err)
		metrics.CollaboratorErrorsTotal.WithLabelValues("academic").Inc()
		return nil
	}

	results := make([]result.Canonical, 0, len(works))
	for _, w := range works {
		c := result.Canonical{
			ID:              w.ID,
			Title:           w.Title,
			Abstract:        w.Abstract,
			URL:             w.URL,
			Year:            w.Year,
			PublicationDate: w.PublicationDate,
			Venue:           w.Venue,
			Country:         w.Country,
		}
		for _, name := range w.Authors {
			c.Authors = append(c.Authors, result.Author{Name: name})
		}
		if len(c.Authors) == 0 {
			c.Authors = []result.Author{{Name: "Unknown"}}
		}
		results = append(results, c)
	}

	return p.translateForeign(ctx, results)
}

// filterRelevant asks the assistant which leading results answer the query.
// Failures keep the unfiltered list.
func (p *Pipeline) filterRelevant(ctx context.Context, query string, results []result.Canonical) []result.Canonical {
	if len(results) == 0 {
		return results
	}

	window := len(results)
	if window > relevanceWindow {
		window = relevanceWindow
	}
	titles := make([]string, window)
	for i := 0; i < window; i++ {
		titles[i] = results[i].Title
	}

	idx, err := p.assistant.FilterRelevant(ctx, query, titles)
	if err != nil {
		p.log.Debug("relevance filter skipped", "err", err)
		return results
	}
	if len(idx) == 0 {
		return results
	}

	relevant := make(map[int]bool, len(idx))
	for _, i := range idx {
		relevant[i] = true
	}

	kept := make([]result.Canonical, 0, len(results))
	for i, r := range results {
		if i >= window || relevant[i] {
			kept = append(kept, r)
		}
	}
	return kept
}

// translateResults renders titles and abstracts into the domestic language.
// Failures keep the untranslated results.
func (p *Pipeline) translateResults(ctx context.Context, results []result.Canonical) []result.Canonical {
	if len(results) == 0 {
		return results
	}

	window := len(results)
	if window > translateWindow {
		window = translateWindow
	}
	items := make([]ai.Translatable, window)
	for i := 0; i < window; i++ {
		items[i] = ai.Translatable{Title: results[i].Title, Abstract: results[i].Abstract}
	}

	translated, err := p.assistant.TranslateResults(ctx, items)
	if err != nil {
		p.log.Debug("result translation skipped", "err", err)
		return results
	}

	for i, t := range translated {
		if i >= window {
			break
		}
		if t.Title != "" {
			results[i].Title = t.Title
		}
		if t.Abstract != "" {
			results[i].Abstract = t.Abstract
		}
	}
	return results
}

// translateForeign translates academic works whose titles carry no
// domestic-script characters.
func (p *Pipeline) translateForeign(ctx context.Context, results []result.Canonical) []result.Canonical {
	var foreign []int
	for i, r := range results {
		if !rules.DomesticText.MatchString(r.Title) {
			foreign = append(foreign, i)
		}
		if len(foreign) >= academicPageSize {
			break
		}
	}
	if len(foreign) == 0 {
		return results
	}

	items := make([]ai.Translatable, len(foreign))
	for i, idx := range foreign {
		abstract := results[idx].Abstract
		if len(abstract) > 300 {
			abstract = abstract[:300]
		}
		items[i] = ai.Translatable{Title: results[idx].Title, Abstract: abstract}
	}

	translated, err := p.assistant.TranslateResults(ctx, items)
	if err != nil {
		p.log.Debug("academic translation skipped", "err", err)
		return results
	}

	for i, t := range translated {
		if i >= len(foreign) {
			break
		}
		idx := foreign[i]
		if t.Title != "" {
			results[idx].Title = t.Title
		}
		if t.Abstract != "" {
			results[idx].Abstract = t.Abstract
		}
	}
	return results
}

// missingConfigResult is surfaced instead of an empty list so the caller is
// not confused by silence when credentials are absent.
func missingConfigResult() result.Canonical {
	return result.Canonical{
		ID:       "sys-config",
		Title:    "⚠️ 設定が必要です",
		Abstract: "検索APIキーとエンジンIDを設定してください。",
		URL:      "#",
		Authors:  []result.Author{{Name: "System"}},
		Venue:    "System",
		Country:  "JP",
	}
}
