package places

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborline/wayplan/internal/provider"
)

const jaipurForts = `{
	"local_results": {
		"places": [
			{"position": 1, "title": "Amber Fort", "address": "Devisinghpura, Amer", "type": "Fortress", "rating": 4.6},
			{"position": 2, "title": "Nahargarh Fort", "address": "Krishna Nagar, Brahampuri"}
		]
	},
	"organic_results": [
		{"position": 1, "title": "The 10 best forts near Jaipur", "snippet": "Ranked list of forts.", "link": "https://example.com/forts"},
		{"position": 4, "title": "Jaipur fort guide", "snippet": "A walking guide.", "link": "https://example.com/guide"}
	]
}`

func TestSearch_RanksLocalAndOrganicByConfidence(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search.json", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "google", q.Get("engine"))
		assert.Equal(t, "fort in Jaipur", q.Get("q"))
		assert.Equal(t, "test-key", q.Get("api_key"))
		fmt.Fprint(w, jaipurForts)
	}))
	defer srv.Close()

	sp := NewSerpAPI("test-key", WithBaseURL(srv.URL))
	candidates, err := sp.Search(context.Background(), "Jaipur", "fort")
	require.NoError(t, err)
	require.Len(t, candidates, 4)

	// Organic rank 1 scores 1.0, rated local 4.6/5 = 0.92, unrated local at
	// position 2 scores 0.5, organic rank 4 scores 0.25.
	assert.Equal(t, "The 10 best forts near Jaipur", candidates[0].Name)
	assert.Equal(t, 1.0, candidates[0].Confidence)
	assert.Equal(t, "https://example.com/forts", candidates[0].Link)
	assert.Equal(t, "fort", candidates[0].Category, "organic results inherit the query as category")

	assert.Equal(t, "Amber Fort", candidates[1].Name)
	assert.Equal(t, "Devisinghpura, Amer", candidates[1].Address)
	assert.Equal(t, "Fortress", candidates[1].Category)
	assert.InDelta(t, 0.92, candidates[1].Confidence, 1e-9)

	assert.Equal(t, "Nahargarh Fort", candidates[2].Name)
	assert.Equal(t, "fort", candidates[2].Category, "untyped local results inherit the query")
	assert.Equal(t, 0.5, candidates[2].Confidence)

	assert.Equal(t, "Jaipur fort guide", candidates[3].Name)
	assert.Equal(t, 0.25, candidates[3].Confidence)
}

func TestSearch_CapsResultsAtMax(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, jaipurForts)
	}))
	defer srv.Close()

	sp := NewSerpAPI("test-key", WithBaseURL(srv.URL), WithMaxResults(2))
	candidates, err := sp.Search(context.Background(), "Jaipur", "fort")
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "The 10 best forts near Jaipur", candidates[0].Name)
	assert.Equal(t, "Amber Fort", candidates[1].Name)
}

func TestSearch_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	sp := NewSerpAPI("test-key", WithBaseURL(srv.URL))
	candidates, err := sp.Search(context.Background(), "Jaipur", "planetarium")
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestSearch_RateLimitIsQuotaKind(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, "run out of searches")
	}))
	defer srv.Close()

	sp := NewSerpAPI("test-key", WithBaseURL(srv.URL))
	_, err := sp.Search(context.Background(), "Jaipur", "fort")
	require.Error(t, err)

	var perr *provider.Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, provider.KindQuota, perr.Kind)
	assert.Equal(t, http.StatusTooManyRequests, perr.Status)
	assert.Equal(t, "run out of searches", perr.Message)
	assert.Equal(t, "serpapi", perr.Provider)
}

func TestSearch_UndecodableBodyIsNetworkKind(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>gateway error</html>")
	}))
	defer srv.Close()

	sp := NewSerpAPI("test-key", WithBaseURL(srv.URL))
	_, err := sp.Search(context.Background(), "Jaipur", "fort")

	var perr *provider.Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, provider.KindNetwork, perr.Kind)
}
