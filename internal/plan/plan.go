// Package plan turns intent signals plus the requested page and date window
// into concrete fetch plans. Planning is pure data; no I/O happens here.
package plan

import (
	"fmt"
	"strings"

	"github.com/sinnsyakai/research-assistant/internal/intent"
	"github.com/sinnsyakai/research-assistant/internal/result"
	"github.com/sinnsyakai/research-assistant/internal/rules"
)

// Window is the caller-supplied date-window selector.
type Window string

const (
	WindowAll      Window = "all"
	WindowWeek     Window = "1w"
	WindowMonth    Window = "1m"
	WindowYear     Window = "1y"
	WindowFiveYear Window = "5y"
	WindowOlder    Window = "6y+"
)

// Restrict is the date-restriction code sent to the search collaborator.
// The empty string means unrestricted.
type Restrict string

const (
	RestrictDay      Restrict = "d1"
	RestrictWeek     Restrict = "w1"
	RestrictMonth    Restrict = "m1"
	RestrictYear     Restrict = "y1"
	RestrictFiveYear Restrict = "y5"
	Unrestricted     Restrict = ""
)

// PageSize is the per-request result count asked of the web collaborator.
const PageSize = 10

// Locale carries the collaborator's locale/language hints.
type Locale struct {
	Country      string
	Language     string
	LangRestrict string
}

// FetchPlan describes one request the source fetcher will issue.
type FetchPlan struct {
	Phase    result.Phase
	Query    string
	Count    int
	Start    int
	Restrict Restrict
	Locale   Locale
}

// ResolveRestrict maps the caller's window to a restriction code. Without an
// explicit window the default is one year, tightened to one month when the
// query carries news urgency. An explicit choice is never overridden.
func ResolveRestrict(window Window, sig intent.Signals) Restrict {
	switch window {
	case WindowWeek:
		return RestrictWeek
	case WindowMonth:
		return RestrictMonth
	case WindowYear:
		return RestrictYear
	case WindowFiveYear:
		return RestrictFiveYear
	case WindowOlder:
		return Unrestricted
	}
	if sig.NewsUrgent {
		return RestrictMonth
	}
	return RestrictYear
}

// Build computes the full plan set for one run. query drives the trusted and
// general phases and may be an AI-refined form of the user's text; rawQuery
// is the text as typed and feeds the video phase unchanged. The trusted phase
// always re-starts at offset 1: its absolute result count is small and
// stable, so it is re-evaluated from the top regardless of the requested page.
func Build(query, rawQuery string, sig intent.Signals, window Window, page int) []FetchPlan {
	if page < 1 {
		page = 1
	}
	if rawQuery == "" {
		rawQuery = query
	}
	restrict := ResolveRestrict(window, sig)
	locale := localeFor(sig)
	baseStart := (page-1)*PageSize + 1

	plans := []FetchPlan{
		{Phase: result.PhaseTrusted, Query: TrustedQuery(query, sig.GlobalTarget), Count: PageSize, Start: 1, Restrict: restrict, Locale: locale},
		{Phase: result.PhaseTrusted, Query: TrustedQuery(query, sig.GlobalTarget), Count: PageSize, Start: 1 + PageSize, Restrict: restrict, Locale: locale},
		{Phase: result.PhaseGeneral, Query: query, Count: PageSize, Start: baseStart, Restrict: restrict, Locale: locale},
		{Phase: result.PhaseGeneral, Query: query, Count: PageSize, Start: baseStart + PageSize, Restrict: restrict, Locale: locale},
		{Phase: result.PhaseGeneral, Query: query, Count: PageSize, Start: baseStart + 2*PageSize, Restrict: restrict, Locale: locale},
	}

	if !sig.GlobalTarget {
		plans = append(plans, FetchPlan{
			Phase:    result.PhaseVideo,
			Query:    fmt.Sprintf("%s site:%s", rawQuery, rules.VideoHost),
			Count:    PageSize,
			Start:    1,
			Restrict: restrict,
			Locale:   locale,
		})
	}

	return plans
}

// TrustedQuery ANDs the query with a disjunction of allow-listed domains.
func TrustedQuery(query string, global bool) string {
	domains := rules.TrustedDomainsDomestic
	if global {
		domains = rules.TrustedDomainsGlobal
	}
	sites := make([]string, len(domains))
	for i, d := range domains {
		sites[i] = "site:" + d
	}
	return fmt.Sprintf("%s (%s)", query, strings.Join(sites, " OR "))
}

func localeFor(sig intent.Signals) Locale {
	if sig.GlobalTarget {
		return Locale{Country: "us", Language: "en"}
	}
	// Domestic runs additionally restrict results to the domestic language.
	return Locale{Country: "jp", Language: "ja", LangRestrict: "lang_ja"}
}
