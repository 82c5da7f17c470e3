package classify

import (
	"testing"

	"github.com/sinnsyakai/research-assistant/internal/intent"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		title    string
		sig      intent.Signals
		accepted bool
		rule     string
	}{
		{
			name:     "home page is rejected",
			url:      "https://example.com/",
			accepted: false,
			rule:     "empty-path",
		},
		{
			name:     "empty url is rejected",
			url:      "",
			accepted: false,
			rule:     "empty-path",
		},
		{
			name:     "dated path is an article",
			url:      "https://www.asahi.com/2024/03/15/politics-reform-vote/",
			accepted: true,
			rule:     "default-accept",
		},
		{
			name:     "article id path is an article",
			url:      "https://mainichi.jp/articles/20240315",
			accepted: true,
			rule:     "default-accept",
		},
		{
			name:     "slug path is an article",
			url:      "https://techcrunch.com/startup-raises-series-b",
			accepted: true,
			rule:     "default-accept",
		},
		{
			name:     "broadcaster article shape is recognized",
			url:      "https://www3.nhk.or.jp/news/html/20240315/k10014390001000.html",
			accepted: true,
			rule:     "default-accept",
		},
		{
			name:     "aggregator article shape is recognized",
			url:      "https://news.yahoo.co.jp/articles/abc123def456",
			accepted: true,
			rule:     "default-accept",
		},
		{
			name:     "undated shallow path has no article pattern",
			url:      "https://example.com/about",
			accepted: false,
			rule:     "no-article-pattern",
		},
		{
			name:     "bare section landing page is rejected",
			url:      "https://news.example.jp/business/",
			accepted: false,
			rule:     "no-article-pattern",
		},
		{
			name:     "dated article with id is accepted",
			url:      "https://news.example.jp/articles/2024/05/01/12345",
			accepted: true,
			rule:     "default-accept",
		},
		{
			name:     "video watch page is accepted",
			url:      "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			accepted: true,
			rule:     "video-watch",
		},
		{
			name:     "video channel page is rejected",
			url:      "https://www.youtube.com/channel/UCabc123",
			accepted: false,
			rule:     "video-list",
		},
		{
			name:     "qa site is blocked despite article pattern",
			url:      "https://chiebukuro.yahoo.co.jp/question/1234567890",
			accepted: false,
			rule:     "blocklist",
		},
		{
			name:     "blog platform is blocked despite dated path",
			url:      "https://blog.livedoor.jp/user/2024/03/15/post/",
			accepted: false,
			rule:     "blocklist",
		},
		{
			name:     "commerce is blocked without product intent",
			url:      "https://www.amazon.co.jp/product/12345678",
			accepted: false,
			rule:     "blocklist-commerce",
		},
		{
			name:     "commerce passes with product intent",
			url:      "https://kakaku.com/article/review/12345678/",
			sig:      intent.Signals{ProductInfo: true},
			accepted: true,
			rule:     "default-accept",
		},
		{
			name:     "shallow topics page is a list",
			url:      "https://example.com/topics/12345",
			accepted: false,
			rule:     "list-page",
		},
		{
			name:     "topics page with date is rescued",
			url:      "https://example.com/topics/2024/03/article-title-12345",
			accepted: true,
			rule:     "list-section-article",
		},
		{
			name:     "deep topics path is rescued",
			url:      "https://example.com/news/topics/tech/ai/20240315x",
			accepted: true,
			rule:     "list-section-article",
		},
		{
			name:     "global run drops domestic domain",
			url:      "https://www.nikkei.com/article/quantum-research-update-2024/",
			sig:      intent.Signals{GlobalTarget: true},
			accepted: false,
			rule:     "global-domestic-url",
		},
		{
			name:     "global run drops domestic-script title",
			url:      "https://example.com/2024/03/15/some-article/",
			title:    "量子コンピュータのニュース",
			sig:      intent.Signals{GlobalTarget: true},
			accepted: false,
			rule:     "global-domestic-title",
		},
		{
			name:     "global run keeps ideograph-only title",
			url:      "https://example.com/2024/03/15/some-article/",
			title:    "量子計算機",
			sig:      intent.Signals{GlobalTarget: true},
			accepted: true,
			rule:     "default-accept",
		},
		{
			name:     "global run drops rescued domestic section article",
			url:      "https://www.example.jp/topics/2024/05/some-story",
			sig:      intent.Signals{GlobalTarget: true},
			accepted: false,
			rule:     "global-domestic-url",
		},
		{
			name:     "global run drops video watch page with domestic title",
			url:      "https://www.youtube.com/watch?v=abc123",
			title:    "ニュースダイジェスト",
			sig:      intent.Signals{GlobalTarget: true},
			accepted: false,
			rule:     "global-domestic-title",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.url, tt.title, tt.sig)
			if got.Accepted != tt.accepted || got.Rule != tt.rule {
				t.Fatalf("Classify(%q) = %+v, want accepted=%v rule=%q",
					tt.url, got, tt.accepted, tt.rule)
			}
		})
	}
}

func TestClassifyIsIdempotent(t *testing.T) {
	urls := []string{
		"https://www.asahi.com/2024/03/15/article/",
		"https://example.com/topics/12345",
		"https://www.youtube.com/watch?v=abc",
		"https://ameblo.jp/entry-123456",
	}
	for _, u := range urls {
		first := Classify(u, "", intent.Signals{})
		for i := 0; i < 3; i++ {
			if got := Classify(u, "", intent.Signals{}); got != first {
				t.Fatalf("%s: verdict changed from %+v to %+v on re-evaluation", u, first, got)
			}
		}
	}
}

func TestRulesOrder(t *testing.T) {
	want := []string{
		"empty-path",
		"video-domain",
		"no-article-pattern",
		"blocklist",
		"list-page",
	}
	rules := Rules()
	if len(rules) != len(want) {
		t.Fatalf("got %d rules, want %d", len(rules), len(want))
	}
	for i, r := range rules {
		if r.Name != want[i] {
			t.Errorf("rule %d = %q, want %q", i, r.Name, want[i])
		}
	}
}
