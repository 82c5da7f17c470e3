// Package bot runs the notification digest: per-genre keyword searches,
// freshness and history filtering, AI curation, and delivery through a
// notify.Sender. Each invocation is one complete digest run.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sinnsyakai/research-assistant/internal/ai"
	"github.com/sinnsyakai/research-assistant/internal/dedup"
	"github.com/sinnsyakai/research-assistant/internal/history"
	"github.com/sinnsyakai/research-assistant/internal/metrics"
	"github.com/sinnsyakai/research-assistant/internal/notify"
	"github.com/sinnsyakai/research-assistant/internal/rules"
	"github.com/sinnsyakai/research-assistant/internal/search"
)

// Genre is one digest category and its search keywords.
type Genre struct {
	ID       string   `mapstructure:"id"`
	Name     string   `mapstructure:"name"`
	Keywords []string `mapstructure:"keywords"`
	MaxItems int      `mapstructure:"max_items"`
}

// DefaultGenres is used when configuration supplies none.
var DefaultGenres = []Genre{
	{ID: "tech", Name: "テクノロジー", Keywords: []string{"AI", "生成AI", "半導体"}, MaxItems: 3},
	{ID: "business", Name: "ビジネス", Keywords: []string{"経済", "企業 決算"}, MaxItems: 3},
	{ID: "science", Name: "科学", Keywords: []string{"研究 成果", "宇宙"}, MaxItems: 2},
}

// exclusionSuffix trims social posts, video and blog platforms, and
// documents out of the raw keyword searches.
const exclusionSuffix = "-site:twitter.com -site:x.com -site:facebook.com -site:instagram.com" +
	" -site:tiktok.com -site:youtube.com -site:note.com -site:ameblo.jp -filetype:pdf"

// perKeywordCount is how many hits each keyword search requests.
const perKeywordCount = 10

// Config bundles the runner's collaborators.
type Config struct {
	Web       search.WebSearcher
	Assistant ai.Assistant
	History   history.Store
	Sender    notify.Sender
	Genres    []Genre
	// Period is the date-restriction code for keyword searches; empty
	// means one day.
	Period string
	Log    *slog.Logger
	Now    func() time.Time
}

// Runner executes digest runs.
type Runner struct {
	web       search.WebSearcher
	assistant ai.Assistant
	history   history.Store
	sender    notify.Sender
	genres    []Genre
	period    string
	log       *slog.Logger
	now       func() time.Time
}

// New constructs a Runner. Web, History, and Sender are required.
func New(cfg Config) (*Runner, error) {
	if cfg.Web == nil {
		return nil, fmt.Errorf("web searcher is required")
	}
	if cfg.History == nil {
		return nil, fmt.Errorf("history store is required")
	}
	if cfg.Sender == nil {
		return nil, fmt.Errorf("sender is required")
	}
	if cfg.Assistant == nil {
		cfg.Assistant = ai.Noop{}
	}
	if len(cfg.Genres) == 0 {
		cfg.Genres = DefaultGenres
	}
	if cfg.Period == "" {
		cfg.Period = "d1"
	}
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Runner{
		web:       cfg.Web,
		assistant: cfg.Assistant,
		history:   cfg.History,
		sender:    cfg.Sender,
		genres:    cfg.Genres,
		period:    cfg.Period,
		log:       cfg.Log,
		now:       cfg.Now,
	}, nil
}

// Run executes one digest: gather, filter, curate, deliver, record.
func (r *Runner) Run(ctx context.Context) error {
	var sections []notify.Section
	var delivered []history.Record
	now := r.now()

	for _, genre := range r.genres {
		candidates := r.gather(ctx, genre)
		candidates = r.filterUnseen(ctx, candidates)
		if len(candidates) == 0 {
			r.log.Info("no fresh candidates", "genre", genre.ID)
			continue
		}

		curated := r.curate(ctx, genre, candidates)
		if len(curated) == 0 {
			continue
		}

		sections = append(sections, notify.Section{Genre: genre.Name, Items: curated})
		for _, c := range curated {
			delivered = append(delivered, history.Record{
				URL:    dedup.NormalizeURL(c.URL),
				Title:  c.Title,
				SentAt: now,
			})
		}
	}

	message, err := notify.FormatDigest(now, sections)
	if err != nil {
		return fmt.Errorf("format digest: %w", err)
	}
	if message == "" {
		r.log.Info("digest empty, nothing to send")
		return nil
	}

	if err := r.sender.Send(ctx, message); err != nil {
		return fmt.Errorf("deliver digest: %w", err)
	}
	metrics.BotDeliveriesTotal.Inc()

	if err := r.history.Add(ctx, delivered); err != nil {
		// Delivery already happened; a history write failure only risks a
		// future repeat.
		r.log.Warn("history update failed", "err", err)
	}

	r.log.Info("digest delivered", "sections", len(sections), "items", len(delivered))
	return nil
}

// gather runs every keyword search of a genre concurrently and merges the
// filtered, URL-deduplicated hits.
func (r *Runner) gather(ctx context.Context, genre Genre) []ai.Candidate {
	perKeyword := make([][]ai.Candidate, len(genre.Keywords))

	g, gCtx := errgroup.WithContext(ctx)
	for i, kw := range genre.Keywords {
		g.Go(func() error {
			query := fmt.Sprintf("%s ニュース %s", kw, exclusionSuffix)
			res, err := r.web.Search(gCtx, search.WebRequest{
				Query:        query,
				Count:        perKeywordCount,
				Start:        1,
				DateRestrict: r.period,
				Country:      "jp",
				Language:     "ja",
				LangRestrict: "lang_ja",
			})
			if err != nil {
				r.log.Warn("keyword search failed", "genre", genre.ID, "keyword", kw, "err", err)
				metrics.CollaboratorErrorsTotal.WithLabelValues("web").Inc()
				return nil
			}

			var out []ai.Candidate
			for _, item := range res {
				if !acceptable(item.Link, item.Title, item.Snippet) {
					continue
				}
				out = append(out, ai.Candidate{
					Title:   item.Title,
					URL:     item.Link,
					Snippet: item.Snippet,
				})
			}
			perKeyword[i] = out
			return nil
		})
	}
	_ = g.Wait()

	seen := make(map[string]bool)
	var merged []ai.Candidate
	for _, out := range perKeyword {
		for _, c := range out {
			key := dedup.NormalizeURL(c.URL)
			if seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, c)
		}
	}
	return merged
}

// acceptable applies the digest-specific shape filters. They are stricter
// than the interactive classifier because a push message cannot be ignored
// as cheaply as a bad search result.
func acceptable(url, title, snippet string) bool {
	if url == "" || title == "" {
		return false
	}
	lower := strings.ToLower(url)
	for _, re := range rules.Blocked {
		if re.MatchString(lower) {
			return false
		}
	}
	if strings.HasSuffix(lower, ".pdf") {
		return false
	}
	// Digest is domestic only; either the title or the snippet may carry
	// the script.
	if !rules.DomesticText.MatchString(title) && !rules.DomesticText.MatchString(snippet) {
		return false
	}
	for _, marker := range []string{"/category/", "/genre/", "/index.html", "/ranking"} {
		if strings.Contains(lower, marker) {
			return false
		}
	}
	return true
}

// filterUnseen drops candidates already recorded in history. A failing
// history lookup keeps the candidate; a repeat beats a silent drop.
func (r *Runner) filterUnseen(ctx context.Context, candidates []ai.Candidate) []ai.Candidate {
	var fresh []ai.Candidate
	for _, c := range candidates {
		seen, err := r.history.Seen(ctx, dedup.NormalizeURL(c.URL), c.Title)
		if err != nil {
			r.log.Warn("history lookup failed", "url", c.URL, "err", err)
			fresh = append(fresh, c)
			continue
		}
		if !seen {
			fresh = append(fresh, c)
		}
	}
	return fresh
}

// curate asks the assistant for the highest-impact picks, falling back to
// the leading candidates when the assistant fails.
func (r *Runner) curate(ctx context.Context, genre Genre, candidates []ai.Candidate) []ai.Curated {
	max := genre.MaxItems
	if max <= 0 {
		max = 3
	}

	curated, err := r.assistant.CurateDigest(ctx, genre.Name, candidates, max)
	if err != nil {
		r.log.Warn("curation failed, using leading candidates", "genre", genre.ID, "err", err)
		curated, _ = ai.Noop{}.CurateDigest(ctx, genre.Name, candidates, max)
	}
	if len(curated) > max {
		curated = curated[:max]
	}
	return curated
}
