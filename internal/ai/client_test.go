// internal/ai/client_test.go
package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/storefront-backend/internal/config"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestClient(baseURL, apiKey string) *Client {
	return NewClient(&config.Config{
		AI: config.AIConfig{
			BaseURL:        baseURL,
			APIKey:         apiKey,
			Model:          "test-model",
			Timeout:        2 * time.Second,
			MaxRankResults: 3,
		},
	}, testLogger())
}

// chatServer returns a completions endpoint whose assistant message content
// is the given string.
func chatServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func sampleCandidates() []ProductSummary {
	return []ProductSummary{
		{ID: 1, Name: "Trail Shoes", Category: "footwear", Price: 89.99, Ratings: 4.5},
		{ID: 2, Name: "Road Shoes", Category: "footwear", Price: 120.00, Ratings: 4.0},
		{ID: 3, Name: "Sandals", Category: "footwear", Price: 30.00, Ratings: 3.5},
		{ID: 4, Name: "Boots", Category: "footwear", Price: 150.00, Ratings: 4.8},
	}
}

func TestNormalizeFiltersWithoutAPIKey(t *testing.T) {
	client := newTestClient("http://unused.invalid", "")

	filters := client.NormalizeFilters(context.Background(), "  Cheap Running Shoes ")
	assert.Equal(t, "cheap running shoes", filters.Keyword)
	assert.Zero(t, filters.MinPrice)
	assert.Zero(t, filters.MaxPrice)
	assert.Empty(t, filters.Category)
}

func TestNormalizeFiltersServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL, "test-key")
	filters := client.NormalizeFilters(context.Background(), "running shoes")
	assert.Equal(t, FallbackFilters("running shoes"), filters)
}

func TestNormalizeFiltersParsesResponse(t *testing.T) {
	// Inverted price bounds must come back swapped.
	server := chatServer(t, `Here you go: {"keyword":"Shoes","category":"footwear","min_price":100,"max_price":50,"min_rating":9,"sort_by":"price_asc"}`)
	defer server.Close()

	client := newTestClient(server.URL, "test-key")
	filters := client.NormalizeFilters(context.Background(), "shoes under 100")

	assert.Equal(t, "shoes", filters.Keyword)
	assert.Equal(t, "footwear", filters.Category)
	assert.InDelta(t, 50.0, filters.MinPrice, 0.001)
	assert.InDelta(t, 100.0, filters.MaxPrice, 0.001)
	assert.InDelta(t, 5.0, filters.MinRating, 0.001)
	assert.Equal(t, "price_asc", filters.SortBy)
}

func TestNormalizeFiltersMalformedContent(t *testing.T) {
	server := chatServer(t, "I could not produce filters, sorry.")
	defer server.Close()

	client := newTestClient(server.URL, "test-key")
	filters := client.NormalizeFilters(context.Background(), "Shoes")
	assert.Equal(t, FallbackFilters("Shoes"), filters)
}

func TestRankProductsParsesAndFiltersIDs(t *testing.T) {
	// 99 is not a candidate and must be dropped; 2 repeats and must dedupe.
	server := chatServer(t, `[4, 99, 2, 2, 1, 3]`)
	defer server.Close()

	client := newTestClient(server.URL, "test-key")
	ids := client.RankProducts(context.Background(), "best shoes", sampleCandidates())
	assert.Equal(t, []uint{4, 2, 1}, ids, "ranked order capped at the configured limit")
}

func TestRankProductsDegradesOnFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(server.URL, "test-key")
	ids := client.RankProducts(context.Background(), "best shoes", sampleCandidates())
	assert.Equal(t, []uint{1, 2, 3}, ids, "first N candidates unranked")
}

func TestRankProductsEmptyCandidates(t *testing.T) {
	client := newTestClient("http://unused.invalid", "test-key")
	ids := client.RankProducts(context.Background(), "anything", nil)
	assert.Empty(t, ids)
}

func TestRankProductsAllUnknownIDsFallsBack(t *testing.T) {
	server := chatServer(t, `[77, 88, 99]`)
	defer server.Close()

	client := newTestClient(server.URL, "test-key")
	ids := client.RankProducts(context.Background(), "best shoes", sampleCandidates())
	assert.Equal(t, []uint{1, 2, 3}, ids)
}

func TestFallbackRankingLimit(t *testing.T) {
	candidates := sampleCandidates()

	assert.Equal(t, []uint{1, 2}, FallbackRanking(candidates, 2))
	assert.Equal(t, []uint{1, 2, 3, 4}, FallbackRanking(candidates, 0), "non-positive limit returns all")
	assert.Equal(t, []uint{1, 2, 3, 4}, FallbackRanking(candidates, 10), "limit beyond length returns all")
}

func TestStaticClient(t *testing.T) {
	static := NewStatic(2)

	filters := static.NormalizeFilters(context.Background(), "Hiking Boots")
	assert.Equal(t, "hiking boots", filters.Keyword)

	ids := static.RankProducts(context.Background(), "boots", sampleCandidates())
	assert.Equal(t, []uint{1, 2}, ids)
}
