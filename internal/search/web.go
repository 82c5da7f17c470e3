package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sinnsyakai/research-assistant/pkg/httpclient"
)

const defaultWebEndpoint = "https://www.googleapis.com/customsearch/v1"

// ensure WebClient implements WebSearcher
var _ WebSearcher = (*WebClient)(nil)

// WebClient talks to a Google Custom Search-style JSON API.
type WebClient struct {
	endpoint string
	apiKey   string
	engineID string
	client   *httpclient.Client
}

// WebClientConfig configures a WebClient. Endpoint and Client are optional.
type WebClientConfig struct {
	Endpoint string
	APIKey   string
	EngineID string
	Client   *httpclient.Client
}

// NewWebClient builds a web-search client. Credentials are required; callers
// that have none should not construct a client at all so the pipeline can
// surface the missing configuration instead.
func NewWebClient(cfg WebClientConfig) (*WebClient, error) {
	if cfg.APIKey == "" || cfg.EngineID == "" {
		return nil, fmt.Errorf("web search requires an API key and engine ID")
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultWebEndpoint
	}
	if cfg.Client == nil {
		cfg.Client = httpclient.New(httpclient.Config{})
	}
	return &WebClient{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		engineID: cfg.EngineID,
		client:   cfg.Client,
	}, nil
}

// webResponse mirrors the subset of the collaborator's response we consume.
type webResponse struct {
	Items []struct {
		Title       string `json:"title"`
		Link        string `json:"link"`
		Snippet     string `json:"snippet"`
		DisplayLink string `json:"displayLink"`
		Pagemap     struct {
			Metatags    []map[string]string `json:"metatags"`
			NewsArticle []struct {
				DatePublished string `json:"datepublished"`
			} `json:"newsarticle"`
			Article []struct {
				DatePublished string `json:"datepublished"`
			} `json:"article"`
			VideoObject []struct {
				UploadDate string `json:"uploaddate"`
			} `json:"videoobject"`
		} `json:"pagemap"`
	} `json:"items"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Search issues one request and returns its hits in collaborator order.
func (c *WebClient) Search(ctx context.Context, req WebRequest) ([]WebResult, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("bad endpoint: %w", err)
	}

	q := u.Query()
	q.Set("key", c.apiKey)
	q.Set("cx", c.engineID)
	q.Set("q", req.Query)
	q.Set("num", strconv.Itoa(req.Count))
	q.Set("start", strconv.Itoa(req.Start))
	if req.DateRestrict != "" {
		q.Set("dateRestrict", req.DateRestrict)
	}
	if req.Country != "" {
		q.Set("gl", req.Country)
	}
	if req.Language != "" {
		q.Set("hl", req.Language)
	}
	if req.LangRestrict != "" {
		q.Set("lr", req.LangRestrict)
	}
	u.RawQuery = q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.client.Do(ctx, httpReq)
	if err != nil {
		return nil, fmt.Errorf("web search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("web search: unexpected status %d", resp.StatusCode)
	}

	var body webResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("web search: decode response: %w", err)
	}
	if body.Error != nil {
		return nil, fmt.Errorf("web search: collaborator error %d: %s", body.Error.Code, body.Error.Message)
	}

	results := make([]WebResult, 0, len(body.Items))
	for _, item := range body.Items {
		meta := map[string]string{}
		if len(item.Pagemap.Metatags) > 0 {
			for k, v := range item.Pagemap.Metatags[0] {
				if v != "" {
					meta[k] = v
				}
			}
		}
		if len(item.Pagemap.NewsArticle) > 0 && item.Pagemap.NewsArticle[0].DatePublished != "" {
			meta["newsarticle:datepublished"] = item.Pagemap.NewsArticle[0].DatePublished
		}
		if len(item.Pagemap.Article) > 0 && item.Pagemap.Article[0].DatePublished != "" {
			meta["article:datepublished"] = item.Pagemap.Article[0].DatePublished
		}
		if len(item.Pagemap.VideoObject) > 0 && item.Pagemap.VideoObject[0].UploadDate != "" {
			meta["videoobject:uploaddate"] = item.Pagemap.VideoObject[0].UploadDate
		}

		results = append(results, WebResult{
			Title:       item.Title,
			Link:        item.Link,
			Snippet:     item.Snippet,
			DisplayLink: item.DisplayLink,
			Metadata:    meta,
		})
	}

	return results, nil
}
