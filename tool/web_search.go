package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/habiliai/spoar/errors"
)

const (
	DefaultTavilyURL     = "https://api.tavily.com"
	defaultSearchResults = 5
)

type (
	SearchRequest struct {
		Query       string `json:"query"`
		SearchDepth string `json:"search_depth,omitempty"`
		MaxResults  int    `json:"max_results,omitempty"`
	}

	SearchResult struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	}

	WebSearcher interface {
		Search(ctx context.Context, req SearchRequest) ([]SearchResult, error)
	}

	TavilyClient struct {
		apiKey     string
		baseURL    string
		httpClient *http.Client
	}
)

var (
	_ WebSearcher = (*TavilyClient)(nil)
)

func NewTavilyClient(apiKey, baseURL string) *TavilyClient {
	if baseURL == "" {
		baseURL = DefaultTavilyURL
	}
	return &TavilyClient{
		apiKey:     apiKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *TavilyClient) Search(ctx context.Context, req SearchRequest) ([]SearchResult, error) {
	if req.Query == "" {
		return nil, errors.Wrapf(errors.ErrInvalidParams, "query is required")
	}
	if req.SearchDepth == "" {
		req.SearchDepth = "basic"
	}
	if req.MaxResults <= 0 {
		req.MaxResults = defaultSearchResults
	}

	body, err := json.Marshal(map[string]any{
		"api_key":      c.apiKey,
		"query":        req.Query,
		"search_depth": req.SearchDepth,
		"max_results":  req.MaxResults,
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.Wrapf(err, "tavily search failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, errors.Errorf("tavily search error (%d): %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out struct {
		Results []SearchResult `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, errors.Wrapf(err, "failed to parse tavily response")
	}

	return out.Results, nil
}

// FormatSearchResults renders results as numbered entries for the planner.
func FormatSearchResults(query string, results []SearchResult) string {
	if len(results) == 0 {
		return fmt.Sprintf("No web results found for query: '%s'.", query)
	}

	var sb strings.Builder
	for i, r := range results {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "%d. %s\n   %s\n   %s", i+1, r.Title, r.URL, strings.TrimSpace(r.Content))
	}
	return sb.String()
}

func RegisterWebSearch(r *Registry, searcher WebSearcher) error {
	return RegisterFunc(r,
		"web_search",
		"Search the web for current information. Args: query, search_depth (basic|advanced), max_results.",
		func(ctx context.Context, req SearchRequest) (string, error) {
			results, err := searcher.Search(ctx, req)
			if err != nil {
				return "", err
			}
			return FormatSearchResults(req.Query, results), nil
		},
	)
}
