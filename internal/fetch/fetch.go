// Package fetch executes fetch plans against the web-search collaborator in
// two phases: the trusted group first, then the general/video group. Within a
// group every request runs concurrently; the group boundary is a
// synchronization barrier so the merged output keeps phase priority order.
package fetch

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/sinnsyakai/research-assistant/internal/metrics"
	"github.com/sinnsyakai/research-assistant/internal/plan"
	"github.com/sinnsyakai/research-assistant/internal/result"
	"github.com/sinnsyakai/research-assistant/internal/search"
)

// Fetcher runs planned requests against the web-search collaborator.
type Fetcher struct {
	web search.WebSearcher
	log *slog.Logger
}

// New constructs a Fetcher.
func New(web search.WebSearcher, log *slog.Logger) *Fetcher {
	if log == nil {
		log = slog.Default()
	}
	return &Fetcher{web: web, log: log}
}

// Run executes all plans and returns the merged raw items concatenated
// strictly as [trusted] + [general] + [video]. Individual request failures
// are logged and contribute nothing; they never fail the run.
func (f *Fetcher) Run(ctx context.Context, plans []plan.FetchPlan) []result.RawItem {
	var trusted, rest []plan.FetchPlan
	for _, p := range plans {
		if p.Phase == result.PhaseTrusted {
			trusted = append(trusted, p)
		} else {
			rest = append(rest, p)
		}
	}

	items := f.runGroup(ctx, trusted)
	// The second group always runs regardless of trusted-phase yield, to
	// guarantee a minimum result volume.
	items = append(items, f.runGroup(ctx, rest)...)

	return items
}

// runGroup dispatches every plan in the group concurrently and waits for all
// of them to settle. Results keep plan order, not completion order.
func (f *Fetcher) runGroup(ctx context.Context, plans []plan.FetchPlan) []result.RawItem {
	if len(plans) == 0 {
		return nil
	}

	perPlan := make([][]result.RawItem, len(plans))

	g, gCtx := errgroup.WithContext(ctx)
	for i, p := range plans {
		g.Go(func() error {
			res, err := f.web.Search(gCtx, search.WebRequest{
				Query:        p.Query,
				Count:        p.Count,
				Start:        p.Start,
				DateRestrict: string(p.Restrict),
				Country:      p.Locale.Country,
				Language:     p.Locale.Language,
				LangRestrict: p.Locale.LangRestrict,
			})
			if err != nil {
				f.log.Warn("fetch plan failed", "phase", p.Phase, "start", p.Start, "err", err)
				metrics.CollaboratorErrorsTotal.WithLabelValues("web").Inc()
				return nil
			}

			out := make([]result.RawItem, 0, len(res))
			for _, r := range res {
				out = append(out, result.RawItem{
					Title:       r.Title,
					URL:         r.Link,
					Snippet:     r.Snippet,
					DisplayHost: r.DisplayLink,
					Metadata:    r.Metadata,
					Phase:       p.Phase,
				})
			}
			perPlan[i] = out
			metrics.FetchResultsTotal.WithLabelValues(string(p.Phase)).Add(float64(len(out)))
			return nil
		})
	}
	// Workers only ever return nil; Wait is the settlement barrier.
	_ = g.Wait()

	var merged []result.RawItem
	for _, out := range perPlan {
		merged = append(merged, out...)
	}
	return merged
}
