package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/harborline/wayplan/internal/provider"
)

// Compile-time interface check.
var _ Provider = (*SerpAPI)(nil)

const (
	providerName   = "serpapi"
	defaultBaseURL = "https://serpapi.com"
)

// SerpAPI implements Provider against the SerpAPI Google engine.
type SerpAPI struct {
	http       *http.Client
	baseURL    string
	apiKey     string
	maxResults int
}

// Option configures a SerpAPI client.
type Option func(*SerpAPI)

// WithBaseURL overrides the API base URL. Used by tests to point at a local
// httptest server.
func WithBaseURL(u string) Option {
	return func(s *SerpAPI) {
		s.baseURL = strings.TrimRight(u, "/")
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *SerpAPI) {
		s.http.Timeout = d
	}
}

// WithHTTPClient replaces the underlying *http.Client entirely.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *SerpAPI) {
		s.http = hc
	}
}

// WithMaxResults caps the number of candidates returned per search (default 5).
func WithMaxResults(n int) Option {
	return func(s *SerpAPI) {
		s.maxResults = n
	}
}

// NewSerpAPI creates a SerpAPI client for the given API key.
func NewSerpAPI(apiKey string, opts ...Option) *SerpAPI {
	s := &SerpAPI{
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		maxResults: 5,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// searchResponse is the subset of a SerpAPI Google response we consume:
// local map results when the query is place-shaped, organic results as the
// fallback.
type searchResponse struct {
	LocalResults struct {
		Places []struct {
			Position int     `json:"position"`
			Title    string  `json:"title"`
			Address  string  `json:"address"`
			Type     string  `json:"type"`
			Rating   float64 `json:"rating"`
		} `json:"places"`
	} `json:"local_results"`
	OrganicResults []struct {
		Position      int    `json:"position"`
		Title         string `json:"title"`
		Snippet       string `json:"snippet"`
		Link          string `json:"link"`
		DisplayedLink string `json:"displayed_link"`
	} `json:"organic_results"`
}

// Search queries the Google engine for "{query} in {location}" and returns
// candidates ordered by descending confidence. Local (map) results carry
// addresses and rating-derived confidence; organic results fall back to
// position-derived confidence.
func (s *SerpAPI) Search(ctx context.Context, location, query string) ([]Candidate, error) {
	q := url.Values{}
	q.Set("engine", "google")
	q.Set("q", fmt.Sprintf("%s in %s", query, location))
	q.Set("num", fmt.Sprintf("%d", s.maxResults))
	q.Set("api_key", s.apiKey)

	reqURL := fmt.Sprintf("%s/search.json?%s", s.baseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &provider.Error{Provider: providerName, Kind: provider.KindNetwork, Message: "create request", Err: err}
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, provider.Classify(providerName, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, provider.Classify(providerName, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, provider.FromStatus(providerName, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out searchResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &provider.Error{Provider: providerName, Kind: provider.KindNetwork, Message: "decode response", Err: err}
	}

	var candidates []Candidate
	for _, p := range out.LocalResults.Places {
		category := p.Type
		if category == "" {
			category = query
		}
		candidates = append(candidates, Candidate{
			Name:       p.Title,
			Address:    p.Address,
			Category:   category,
			Confidence: localConfidence(p.Rating, p.Position),
		})
	}
	for _, r := range out.OrganicResults {
		candidates = append(candidates, Candidate{
			Name:       r.Title,
			Address:    r.Snippet,
			Category:   query,
			Link:       r.Link,
			Confidence: positionConfidence(r.Position),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})
	if len(candidates) > s.maxResults {
		candidates = candidates[:s.maxResults]
	}
	return candidates, nil
}

// localConfidence scores a map result by its rating, falling back to its
// position when no rating is present.
func localConfidence(rating float64, position int) float64 {
	if rating > 0 {
		return rating / 5
	}
	return positionConfidence(position)
}

// positionConfidence scores a result by rank: 1.0 for the first result,
// decaying toward zero.
func positionConfidence(position int) float64 {
	if position < 1 {
		position = 1
	}
	return 1 / float64(position)
}
