package serp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/lattice-ai/lattice/pkg/domain"
	"github.com/lattice-ai/lattice/pkg/ports"
)

const defaultBaseURL = "https://serpapi.com/search"

// Client fetches organic web results from SerpAPI. It implements
// ports.WebSearcher. Safe for concurrent use.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL (used by tests).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// New creates a client with the given default API key. The key may be
// overridden per query.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchResponse struct {
	Error          string `json:"error,omitempty"`
	OrganicResults []struct {
		Title   string `json:"title"`
		Snippet string `json:"snippet"`
		Link    string `json:"link"`
	} `json:"organic_results"`
}

// Search performs a Google-engine search and returns up to q.Limit organic
// results.
func (c *Client) Search(ctx context.Context, q ports.SearchQuery) ([]domain.SearchResult, error) {
	apiKey := q.APIKey
	if apiKey == "" {
		apiKey = c.apiKey
	}
	if apiKey == "" {
		return nil, errors.New("no SerpAPI key provided for web search")
	}

	params := url.Values{}
	params.Set("q", q.Query)
	params.Set("api_key", apiKey)
	params.Set("engine", "google")
	if q.Limit > 0 {
		params.Set("num", strconv.Itoa(q.Limit))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("web search connection error: %w", err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("web search connection error: %w", err)
	}

	var resp searchResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("web search: unexpected response (%s): %w", res.Status, err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("SerpAPI error: %s", resp.Error)
	}

	results := make([]domain.SearchResult, 0, len(resp.OrganicResults))
	for _, r := range resp.OrganicResults {
		results = append(results, domain.SearchResult{
			Title:   r.Title,
			Snippet: r.Snippet,
			URL:     r.Link,
		})
		if q.Limit > 0 && len(results) >= q.Limit {
			break
		}
	}
	return results, nil
}
