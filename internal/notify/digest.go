package notify

import (
	"fmt"
	"html"
	"strings"
	"text/template"
	"time"

	"github.com/sinnsyakai/research-assistant/internal/ai"
)

// Section is one genre block of a digest message.
type Section struct {
	Genre string
	Items []ai.Curated
}

// digestTmpl renders the whole digest as Telegram HTML. Item fields are
// escaped before template execution.
var digestTmpl = template.Must(template.New("digest").Parse(
	`📰 <b>本日のニュースダイジェスト</b> ({{.Date}})
{{range .Sections}}
━━━━━━━━━━
<b>【{{.Genre}}】</b>
{{range .Items}}
{{.Badge}} <a href="{{.URL}}">{{.Title}}</a>
{{if .Summary}}{{.Summary}}
{{end}}{{end}}{{end}}`))

type digestItem struct {
	Badge   string
	Title   string
	URL     string
	Summary string
}

type digestSection struct {
	Genre string
	Items []digestItem
}

type digestData struct {
	Date     string
	Sections []digestSection
}

// FormatDigest renders the sections into one message. Empty sections are
// dropped; an all-empty digest returns "".
func FormatDigest(now time.Time, sections []Section) (string, error) {
	data := digestData{Date: now.Format("2006/01/02")}
	for _, s := range sections {
		if len(s.Items) == 0 {
			continue
		}
		out := digestSection{Genre: html.EscapeString(s.Genre)}
		for _, it := range s.Items {
			out.Items = append(out.Items, digestItem{
				Badge:   importanceBadge(it.Importance),
				Title:   html.EscapeString(it.Title),
				URL:     it.URL,
				Summary: html.EscapeString(it.Summary),
			})
		}
		data.Sections = append(data.Sections, out)
	}
	if len(data.Sections) == 0 {
		return "", nil
	}

	var buf strings.Builder
	if err := digestTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render digest: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func importanceBadge(importance int) string {
	switch {
	case importance >= 5:
		return "🔥"
	case importance >= 3:
		return "⭐"
	default:
		return "▪️"
	}
}
