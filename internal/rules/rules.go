// Package rules holds the static pattern registries consumed by the intent
// analyzer, query planner, and article classifier: trusted-domain allow-lists,
// blocked-domain deny-lists, positive article-shape patterns, and the query
// vocabularies that derive intent signals. The package contains data only;
// evaluation order lives with the consumers.
package rules

import "regexp"

// TrustedDomainsDomestic is the allow-list used to build the trusted-phase
// sub-query for domestic searches.
var TrustedDomainsDomestic = []string{
	"nhk.or.jp",
	"asahi.com",
	"yomiuri.co.jp",
	"mainichi.jp",
	"sankei.com",
	"jiji.com",
	"businessinsider.jp",
	"itmedia.co.jp",
	"gigazine.net",
}

// TrustedDomainsGlobal is the allow-list for global-mode searches.
var TrustedDomainsGlobal = []string{
	"reuters.com",
	"bbc.com",
	"nytimes.com",
	"theguardian.com",
	"washingtonpost.com",
	"cnn.com",
	"techcrunch.com",
	"wired.com",
	"theverge.com",
	"arstechnica.com",
	"forbes.com",
	"bloomberg.com",
}

// Intent vocabularies. All are tested against the raw query text.
var (
	// Urgency recency terms force a tighter default date window.
	NewsUrgency = regexp.MustCompile(`(?i)ニュース|最新|最近|今|今週|今月|速報|アップデート|更新|news|latest|recent|update|today|this week|this month`)

	// Commerce/comparison vocabulary relaxes the shopping-site blocklist.
	ProductIntent = regexp.MustCompile(`(?i)商品|製品|レビュー|比較|スペック|性能|価格|購入|買う|おすすめ|ランキング|product|review|comparison|specs|price|buy|best|vs\b`)

	// Administrative/government vocabulary disables gov-domain suppression.
	GovernmentIntent = regexp.MustCompile(`官公庁|行政|政府|省庁|自治体|市役所|区役所|町役場|村役場|都道府県|北海道|青森|岩手|宮城|秋田|山形|福島|茨城|栃木|群馬|埼玉|千葉|東京|神奈川|新潟|富山|石川|福井|山梨|長野|岐阜|静岡|愛知|三重|滋賀|京都|大阪|兵庫|奈良|和歌山|鳥取|島根|岡山|広島|山口|徳島|香川|愛媛|高知|福岡|佐賀|長崎|熊本|大分|宮崎|鹿児島|沖縄|文部科学省|スポーツ庁|厚生労働省|経済産業省|総務省|国土交通省|環境省|農林水産省|法務省|外務省|財務省|防衛省|内閣府`)
)

// Positive article-shape patterns. Matching at least one is necessary but not
// sufficient evidence of an individual article page.
var (
	DateInPath = []*regexp.Regexp{
		regexp.MustCompile(`/\d{4}/\d{2}/\d{2}/`),
		regexp.MustCompile(`/\d{4}-\d{2}-\d{2}/`),
		regexp.MustCompile(`/\d{4}/\d{2}/`),
		regexp.MustCompile(`/\d{8}/`),
	}

	ArticleID = []*regexp.Regexp{
		regexp.MustCompile(`/articles?/\d+`),
		regexp.MustCompile(`/news/\d+`),
		regexp.MustCompile(`/story/\d+`),
		regexp.MustCompile(`/\d{5,}`),
		regexp.MustCompile(`/(sp|sph|amp)/.*\d+`),
	}

	Slug = regexp.MustCompile(`/[a-z0-9]+-[a-z0-9]+-[a-z0-9]+`)

	// Named-site article shapes that escape the generic patterns.
	BroadcasterArticle = regexp.MustCompile(`/news/html/\d+`) // nhk.or.jp
	AggregatorArticle  = regexp.MustCompile(`/articles/`)     // news.yahoo.co.jp
)

// Blocked always rejects a URL even when it matched a positive pattern.
var Blocked = []*regexp.Regexp{
	// Q&A sites
	regexp.MustCompile(`(?i)chiebukuro|oshiete|okwave|quora|stackoverflow`),
	regexp.MustCompile(`(?i)発言小町|komachi\.yomiuri`),
	regexp.MustCompile(`(?i)hatsugen\.`),
	// Personal/promotional blog platforms
	regexp.MustCompile(`(?i)ameblo|note\.com|hatena|livedoor|seesaa|jugem|fc2\.com|blogspot`),
	regexp.MustCompile(`(?i)niigatamom|ママブログ|子育てブログ`),
	// PR / advertorial sections
	regexp.MustCompile(`(?i)/edua/|/adv/|/pr/|/sponsored/`),
	regexp.MustCompile(`(?i)/advertorial/|/native-ad/`),
	// Dictionary / reference
	regexp.MustCompile(`(?i)wikipedia|weblio|kotobank|goo\.ne\.jp/word`),
	// Bulletin boards / forums
	regexp.MustCompile(`(?i)5ch\.net|5chan|2ch\.net|2chan|2ちゃんねる|5ちゃんねる`),
	regexp.MustCompile(`(?i)reddit\.com|4chan|8chan|8kun`),
	regexp.MustCompile(`(?i)bakusai\.com|爆サイ`),
	regexp.MustCompile(`(?i)machi\.to|したらば|jbbs\.shitaraba`),
	regexp.MustCompile(`(?i)/bbs/`),
	regexp.MustCompile(`(?i)/thread/`),
	regexp.MustCompile(`(?i)/forum/`),
	// Suspicious TLDs and adult markers
	regexp.MustCompile(`(?i)\.sk/|\.ru/|\.xyz/|\.top/|\.pw/`),
	regexp.MustCompile(`(?i)washapp\.|mature|adult|xxx`),
	// Tag/keyword/list/archive-style suffixes
	regexp.MustCompile(`(?i)/tag/[^/]+/?$`),
	regexp.MustCompile(`(?i)/keyword/[^/]+/?$`),
	regexp.MustCompile(`(?i)/list/?$`),
	regexp.MustCompile(`(?i)/archive/?$`),
	regexp.MustCompile(`(?i)/pl/news-nwa-topic`),
	regexp.MustCompile(`(?i)/newsweb/pl/`),
	// Bare topic-section landing paths
	regexp.MustCompile(`(?i)/(food|business|trends|politics|world|tech|technology|entertainment|sports|lifestyle|international|opinion)/?\s*$`),
	regexp.MustCompile(`(?i)/(section|rubric|channel)/[^/]+/?$`),
}

// BlockedCommerce extends Blocked only when the query shows no product intent.
var BlockedCommerce = []*regexp.Regexp{
	regexp.MustCompile(`(?i)amazon|rakuten|mercari|yahoo\.co\.jp/shopping|aliexpress|ebay`),
	regexp.MustCompile(`(?i)kakaku\.com|価格\.com`),
	regexp.MustCompile(`(?i)/books?/`),
	regexp.MustCompile(`(?i)/product/`),
	regexp.MustCompile(`(?i)/shop/`),
	regexp.MustCompile(`(?i)/store/`),
	regexp.MustCompile(`(?i)/ranking`),
	regexp.MustCompile(`(?i)best-.*-review|top-\d+-`),
	regexp.MustCompile(`(?i)affiliate|sponsored`),
}

// List-page override patterns (§topic/spotlight/category segments) and the
// signals that rescue such a URL as an article anyway.
var (
	ListSegment    = regexp.MustCompile(`(?i)/(topics|topic|spotlight|category|section|news/topics)/`)
	ListDateRescue = regexp.MustCompile(`/\d{4}/\d{2}/|/\d{4}-\d{2}-|/\d{8}/`)
	ListIDRescue   = regexp.MustCompile(`(?i)/[a-z0-9]{20,}|/\d{6,}|/article/`)
)

// Video-hosting special case: only watch pages count as articles.
var (
	VideoHost  = "youtube.com"
	VideoWatch = "/watch?v="
)

// Global-mode rejection of domestic-market URLs and domestic-script titles.
var (
	DomesticURLMarkers = []string{
		".jp/", ".co.jp", "/japanese/", "/ja/",
		"nippon", "nikkei", "nhk.or", "asahi.com", "yomiuri",
	}
	// Hiragana and katakana are unique to the domestic script; ideographs are
	// shared with other languages and tolerated.
	Hiragana = regexp.MustCompile(`[\x{3040}-\x{309F}]`)
	Katakana = regexp.MustCompile(`[\x{30A0}-\x{30FF}]`)
)

// DomesticText matches any domestic-script character including shared
// ideographs; used to decide whether a query or title needs translation.
var DomesticText = regexp.MustCompile(`[\x{3040}-\x{309F}\x{30A0}-\x{30FF}\x{4E00}-\x{9FAF}]`)

// Government top-level/administrative domain markers suppressed by the
// assembler unless the query asks for administrative information.
var GovDomainMarkers = []string{".go.jp", ".lg.jp"}
