package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sinnsyakai/research-assistant/pkg/httpclient"
)

const defaultAcademicEndpoint = "https://api.openalex.org/works"

// maxAuthors caps how many author display names a work carries downstream.
const maxAuthors = 3

// ensure AcademicClient implements AcademicSearcher
var _ AcademicSearcher = (*AcademicClient)(nil)

// AcademicClient talks to an OpenAlex-style works API.
type AcademicClient struct {
	endpoint  string
	userAgent string
	client    *httpclient.Client
	now       func() time.Time
}

// AcademicClientConfig configures an AcademicClient. All fields are optional.
type AcademicClientConfig struct {
	Endpoint  string
	UserAgent string
	Client    *httpclient.Client
	Now       func() time.Time
}

// NewAcademicClient builds an academic-index client.
func NewAcademicClient(cfg AcademicClientConfig) *AcademicClient {
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultAcademicEndpoint
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "ResearchAssistant/1.0"
	}
	if cfg.Client == nil {
		cfg.Client = httpclient.New(httpclient.Config{})
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &AcademicClient{
		endpoint:  cfg.Endpoint,
		userAgent: cfg.UserAgent,
		client:    cfg.Client,
		now:       cfg.Now,
	}
}

type academicResponse struct {
	Results []struct {
		ID                    string           `json:"id"`
		DisplayName           string           `json:"display_name"`
		AbstractInvertedIndex map[string][]int `json:"abstract_inverted_index"`
		PublicationYear       int              `json:"publication_year"`
		PublicationDate       string           `json:"publication_date"`
		PrimaryLocation       *struct {
			LandingPageURL string `json:"landing_page_url"`
			Source         *struct {
				DisplayName string `json:"display_name"`
				CountryCode string `json:"country_code"`
			} `json:"source"`
		} `json:"primary_location"`
		Authorships []struct {
			Author struct {
				DisplayName string `json:"display_name"`
			} `json:"author"`
		} `json:"authorships"`
	} `json:"results"`
}

// Search queries the works index. Recent works with abstracts are requested
// first; when the yield is below five works, one retry without the year
// filter broadens the result set.
func (c *AcademicClient) Search(ctx context.Context, req AcademicRequest) ([]AcademicWork, error) {
	currentYear := c.now().Year()

	filter := fmt.Sprintf("has_abstract:true,publication_year:>%d", currentYear-5)
	sort := "publication_year:desc,relevance_score:desc"
	if req.SortByDate {
		sort = "publication_year:desc"
	}

	works, err := c.query(ctx, req, filter, sort, currentYear)
	if err != nil {
		return nil, err
	}

	if len(works) < 5 {
		more, err := c.query(ctx, req, "has_abstract:true", "relevance_score:desc", currentYear)
		if err == nil {
			works = append(works, more...)
		}
	}

	return works, nil
}

func (c *AcademicClient) query(ctx context.Context, req AcademicRequest, filter, sort string, currentYear int) ([]AcademicWork, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("bad endpoint: %w", err)
	}

	q := u.Query()
	q.Set("search", req.Query)
	q.Set("per_page", strconv.Itoa(req.PerPage))
	q.Set("page", strconv.Itoa(req.Page))
	q.Set("filter", filter)
	q.Set("sort", sort)
	u.RawQuery = q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(ctx, httpReq)
	if err != nil {
		return nil, fmt.Errorf("academic search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("academic search: unexpected status %d", resp.StatusCode)
	}

	var body academicResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("academic search: decode response: %w", err)
	}

	works := make([]AcademicWork, 0, len(body.Results))
	for _, w := range body.Results {
		// Works with missing or future publication years are unusable.
		if w.PublicationYear == 0 || w.PublicationYear > currentYear {
			continue
		}

		work := AcademicWork{
			ID:              w.ID,
			Title:           w.DisplayName,
			Abstract:        ReconstructAbstract(w.AbstractInvertedIndex),
			URL:             w.ID,
			Year:            w.PublicationYear,
			PublicationDate: w.PublicationDate,
			Venue:           "Unknown",
		}
		if w.PrimaryLocation != nil {
			if w.PrimaryLocation.LandingPageURL != "" {
				work.URL = w.PrimaryLocation.LandingPageURL
			}
			if w.PrimaryLocation.Source != nil {
				if w.PrimaryLocation.Source.DisplayName != "" {
					work.Venue = w.PrimaryLocation.Source.DisplayName
				}
				work.Country = strings.ToUpper(w.PrimaryLocation.Source.CountryCode)
			}
		}
		for i, a := range w.Authorships {
			if i >= maxAuthors {
				break
			}
			work.Authors = append(work.Authors, a.Author.DisplayName)
		}

		works = append(works, work)
	}

	return works, nil
}

// ReconstructAbstract rebuilds plain text from the index's inverted-index
// abstract representation: each token is placed at each of its listed
// positions and the sequence is joined with single spaces.
func ReconstructAbstract(inverted map[string][]int) string {
	if len(inverted) == 0 {
		return ""
	}

	maxPos := -1
	for _, positions := range inverted {
		for _, p := range positions {
			if p > maxPos {
				maxPos = p
			}
		}
	}
	if maxPos < 0 {
		return ""
	}

	words := make([]string, maxPos+1)
	for token, positions := range inverted {
		for _, p := range positions {
			if p >= 0 && p <= maxPos {
				words[p] = token
			}
		}
	}

	return strings.Join(words, " ")
}
