// Package intent derives boolean signals from the raw query text. Analysis is
// a pure function: signals are computed once per pipeline run and never
// re-derived by later stages.
package intent

import "github.com/sinnsyakai/research-assistant/internal/rules"

// Mode selects which sources a pipeline run queries.
type Mode string

const (
	ModeGeneral  Mode = "default"
	ModeNews     Mode = "news"
	ModeAcademic Mode = "papers"
	ModeGlobal   Mode = "global"
)

// Signals is the read-only record of intent booleans attached to a query.
type Signals struct {
	NewsUrgent     bool
	ProductInfo    bool
	GovernmentInfo bool
	GlobalTarget   bool
}

// Analyze inspects the query text and mode tag. Absence of a signal simply
// defaults to false; there are no failure modes.
func Analyze(query string, mode Mode) Signals {
	return Signals{
		NewsUrgent:     mode == ModeNews || rules.NewsUrgency.MatchString(query),
		ProductInfo:    rules.ProductIntent.MatchString(query),
		GovernmentInfo: rules.GovernmentIntent.MatchString(query),
		GlobalTarget:   mode == ModeGlobal,
	}
}
