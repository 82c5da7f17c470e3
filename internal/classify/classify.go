// Package classify decides whether a search hit is an individual article
// worth keeping. The decision runs through a fixed, ordered list of named
// rules with first-match-wins semantics; every rejection is attributable to
// exactly one rule.
package classify

import (
	"net/url"
	"strings"

	"github.com/sinnsyakai/research-assistant/internal/intent"
	"github.com/sinnsyakai/research-assistant/internal/rules"
)

// Verdict is the classifier outcome with the rule that decided it.
type Verdict struct {
	Accepted bool
	Rule     string
}

// Item is the classifier's view of one raw result.
type Item struct {
	RawURL   string
	LowerURL string
	Path     string
	Segments []string
	Title    string
	Signals  intent.Signals
}

// Rule is a named predicate over an item. Eval returns decided=false to pass
// the item on to the next rule.
type Rule struct {
	Name string
	Eval func(it *Item) (v Verdict, decided bool)
}

// Rules returns the classifier stages in their fixed evaluation order. The
// global-mode filter is not part of the chain: it runs against every item
// after the chain, so no accepting stage can bypass it.
func Rules() []Rule {
	return []Rule{
		{Name: "empty-path", Eval: evalEmptyPath},
		{Name: "video-domain", Eval: evalVideoDomain},
		{Name: "no-article-pattern", Eval: evalPositivePatterns},
		{Name: "blocklist", Eval: evalBlocklist},
		{Name: "list-page", Eval: evalListPage},
	}
}

// Classify evaluates one URL (+ title context) against the rule table, then
// applies the global-mode filter to whatever the chain accepted.
// It is a pure function: repeated evaluation yields the same verdict.
func Classify(rawURL, title string, sig intent.Signals) Verdict {
	it := newItem(rawURL, title, sig)

	v := Verdict{Accepted: true, Rule: "default-accept"}
	for _, r := range Rules() {
		if rv, decided := r.Eval(it); decided {
			v = rv
			break
		}
	}
	if v.Accepted {
		if gv, decided := evalGlobalFilter(it); decided {
			return gv
		}
	}
	return v
}

func newItem(rawURL, title string, sig intent.Signals) *Item {
	it := &Item{
		RawURL:   rawURL,
		LowerURL: strings.ToLower(rawURL),
		Title:    title,
		Signals:  sig,
	}
	if u, err := url.Parse(rawURL); err == nil {
		it.Path = u.Path
		it.Segments = splitSegments(u.Path)
	}
	return it
}

func splitSegments(path string) []string {
	var segs []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

// evalEmptyPath rejects home pages and unparseable URLs outright.
func evalEmptyPath(it *Item) (Verdict, bool) {
	if it.RawURL == "" || it.Path == "" || it.Path == "/" {
		return Verdict{Accepted: false, Rule: "empty-path"}, true
	}
	return Verdict{}, false
}

// evalVideoDomain accepts only watch pages on the known video host; list and
// channel pages are rejected.
func evalVideoDomain(it *Item) (Verdict, bool) {
	if !strings.Contains(it.LowerURL, rules.VideoHost) {
		return Verdict{}, false
	}
	if strings.Contains(it.LowerURL, rules.VideoWatch) {
		return Verdict{Accepted: true, Rule: "video-watch"}, true
	}
	return Verdict{Accepted: false, Rule: "video-list"}, true
}

// evalPositivePatterns rejects items whose URL matches none of the article
// shapes. A match is necessary but not sufficient: matching items continue
// down the rule table.
func evalPositivePatterns(it *Item) (Verdict, bool) {
	for _, re := range rules.DateInPath {
		if re.MatchString(it.Path) {
			return Verdict{}, false
		}
	}
	for _, re := range rules.ArticleID {
		if re.MatchString(it.Path) {
			return Verdict{}, false
		}
	}
	if rules.Slug.MatchString(it.Path) {
		return Verdict{}, false
	}
	if strings.Contains(it.LowerURL, "nhk.or.jp") && rules.BroadcasterArticle.MatchString(it.Path) {
		return Verdict{}, false
	}
	if strings.Contains(it.LowerURL, "news.yahoo.co.jp") && rules.AggregatorArticle.MatchString(it.Path) {
		return Verdict{}, false
	}
	return Verdict{Accepted: false, Rule: "no-article-pattern"}, true
}

// evalBlocklist rejects URLs on the deny-list. The commerce sub-list is only
// active when the query shows no product intent.
func evalBlocklist(it *Item) (Verdict, bool) {
	for _, re := range rules.Blocked {
		if re.MatchString(it.LowerURL) {
			return Verdict{Accepted: false, Rule: "blocklist"}, true
		}
	}
	if !it.Signals.ProductInfo {
		for _, re := range rules.BlockedCommerce {
			if re.MatchString(it.LowerURL) {
				return Verdict{Accepted: false, Rule: "blocklist-commerce"}, true
			}
		}
	}
	return Verdict{}, false
}

// evalListPage re-examines topic/spotlight/category-style URLs: a date
// pattern, a long opaque identifier, or a path depth of 4+ segments rescues
// the item as an article; otherwise it is a list page.
func evalListPage(it *Item) (Verdict, bool) {
	if !rules.ListSegment.MatchString(it.RawURL) {
		return Verdict{}, false
	}
	if rules.ListDateRescue.MatchString(it.RawURL) ||
		rules.ListIDRescue.MatchString(it.LowerURL) ||
		len(it.Segments) >= 4 {
		return Verdict{Accepted: true, Rule: "list-section-article"}, true
	}
	return Verdict{Accepted: false, Rule: "list-page"}, true
}

// evalGlobalFilter drops domestic-market domains and domestic-script titles
// when the run targets global sources. It applies to every accepted item,
// whichever stage accepted it. Shared ideographs are tolerated; only the
// syllabary ranges are treated as domestic-specific.
func evalGlobalFilter(it *Item) (Verdict, bool) {
	if !it.Signals.GlobalTarget {
		return Verdict{}, false
	}
	for _, marker := range rules.DomesticURLMarkers {
		if strings.Contains(it.LowerURL, marker) {
			return Verdict{Accepted: false, Rule: "global-domestic-url"}, true
		}
	}
	if rules.Hiragana.MatchString(it.Title) || rules.Katakana.MatchString(it.Title) {
		return Verdict{Accepted: false, Rule: "global-domestic-title"}, true
	}
	return Verdict{}, false
}
