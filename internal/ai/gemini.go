package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/sinnsyakai/research-assistant/pkg/ratelimit"
)

const defaultModel = "gemini-2.0-flash"

// Gemini implements Assistant on the Gemini API. The collaborator is
// rate-limited and unreliable, so every call is paced by the limiter and
// failures are returned for the caller to ignore.
type Gemini struct {
	client  *genai.Client
	model   string
	limiter *ratelimit.Limiter
}

var _ Assistant = (*Gemini)(nil)

// GeminiConfig configures the Gemini assistant.
type GeminiConfig struct {
	APIKey string
	Model  string
	// RPS caps the request rate; <= 0 disables pacing.
	RPS float64
}

// NewGemini builds the Gemini-backed assistant.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini requires an API key")
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Gemini{
		client:  client,
		model:   cfg.Model,
		limiter: ratelimit.NewLimiter(cfg.RPS, 0.2),
	}, nil
}

// Close releases the underlying client and limiter.
func (g *Gemini) Close() error {
	g.limiter.Stop()
	return g.client.Close()
}

func (g *Gemini) generate(ctx context.Context, prompt string) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", err
	}

	model := g.client.GenerativeModel(g.model)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return strings.TrimSpace(b.String()), nil
}

// stripFences removes markdown code fences the model wraps around JSON.
func stripFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

func (g *Gemini) ClarifyQuery(ctx context.Context, query string) (string, error) {
	prompt := fmt.Sprintf(`You are a search query optimizer. Analyze this Japanese search query and clarify any ambiguous terms.

Query: "%s"

Rules:
1. Add clarifying terms to make the search intent clear
2. Keep the query in Japanese
3. Return ONLY the clarified query, nothing else`, query)

	clarified, err := g.generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	if clarified == "" {
		return query, nil
	}
	return clarified, nil
}

func (g *Gemini) TranslateQuery(ctx context.Context, query string, academic bool) (string, error) {
	var prompt string
	if academic {
		prompt = fmt.Sprintf(`You are translating a Japanese search query for an academic paper index.

RULES:
1. Translate to proper English ACADEMIC terminology
2. For umbrella terms, expand to include specific subtypes joined with OR
3. Use quotes for multi-word phrase search

Japanese Query: "%s"

Return ONLY the optimized English search query:`, query)
	} else {
		prompt = fmt.Sprintf(`You are translating a Japanese search query for US web search.

RULES:
1. Translate the MEANING, not literally
2. Keep it SIMPLE - just a few key words, no quotes, no OR operators
3. Expand abstract terms to 2-3 specific examples

Japanese Query: "%s"

Return ONLY simple English keywords:`, query)
	}

	translated, err := g.generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	if translated == "" {
		return query, nil
	}
	return translated, nil
}

func (g *Gemini) FilterRelevant(ctx context.Context, query string, titles []string) ([]int, error) {
	var list strings.Builder
	for i, t := range titles {
		fmt.Fprintf(&list, "%d. %s\n", i+1, t)
	}

	prompt := fmt.Sprintf(`You are a search result quality filter.

User Query: "%s"

Search Results:
%s
Task: Identify which results are RELEVANT to the user's query.
- Return ONLY the numbers of RELEVANT results as a JSON array
- Generic section pages (like "Food Section", "Business News") are NOT relevant
- Results about unrelated topics are NOT relevant

Return ONLY the JSON array of numbers, nothing else:`, query, list.String())

	text, err := g.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var oneBased []int
	if err := json.Unmarshal([]byte(stripFences(text)), &oneBased); err != nil {
		return nil, fmt.Errorf("parse relevance response: %w", err)
	}

	idx := make([]int, 0, len(oneBased))
	for _, n := range oneBased {
		if n >= 1 && n <= len(titles) {
			idx = append(idx, n-1)
		}
	}
	return idx, nil
}

func (g *Gemini) TranslateResults(ctx context.Context, items []Translatable) ([]Translatable, error) {
	var body strings.Builder
	for i, it := range items {
		fmt.Fprintf(&body, "%d. TITLE: %s\nABSTRACT: %s\n\n", i+1, it.Title, it.Abstract)
	}

	prompt := fmt.Sprintf(`Translate the following search results to Japanese. Keep the order exactly the same.
Return ONLY the translations in JSON format like: [{"title": "...", "abstract": "..."}, ...]

%s`, body.String())

	text, err := g.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var translated []Translatable
	if err := json.Unmarshal([]byte(stripFences(text)), &translated); err != nil {
		return nil, fmt.Errorf("parse translation response: %w", err)
	}
	return translated, nil
}

func (g *Gemini) CurateDigest(ctx context.Context, genre string, items []Candidate, max int) ([]Curated, error) {
	payload, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode candidates: %w", err)
	}

	prompt := fmt.Sprintf(`You are an elite news editor for a busy executive who wants only the most impactful information.
Curate the top %d news items from the provided search results for the genre "%s".

### Input Data
%s

### Filtering Rules (STRICT)
1. Exclude noise: individual opinions, social-media buzz, how-to guides, affiliate blogs, minor app updates, minor press releases.
2. Prioritize high impact: structural industry/society changes, major policies, significant breakthroughs, leading company strategy.
3. Deduplicate: if multiple results cover the same story, pick only the most credible one.

### Output JSON Format
Return a JSON array of objects:
[{"title": "Clear, objective title (max 40 chars)", "url": "Original URL", "summary": "Why this is important (max 80 chars)", "category": "%s", "importance": 5}]
Only output items with importance >= 3. Do not include markdown code blocks. Just valid JSON.`, max, genre, payload, genre)

	text, err := g.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var curated []Curated
	if err := json.Unmarshal([]byte(stripFences(text)), &curated); err != nil {
		return nil, fmt.Errorf("parse curation response: %w", err)
	}
	if len(curated) > max && max > 0 {
		curated = curated[:max]
	}
	return curated, nil
}
