// internal/ai/ai.go
package ai

import (
	"context"
	"strings"
)

// SearchFilters is the structured form of a free-text catalog query.
type SearchFilters struct {
	Keyword   string  `json:"keyword"`
	Category  string  `json:"category"`
	MinPrice  float64 `json:"min_price"`
	MaxPrice  float64 `json:"max_price"`
	MinRating float64 `json:"min_rating"`
	SortBy    string  `json:"sort_by"`
}

// ProductSummary is the candidate shape handed to the ranker.
type ProductSummary struct {
	ID       uint    `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Ratings  float64 `json:"ratings"`
}

// Normalizer translates free-text search queries into structured filters.
// Implementations must never return an error to the caller: when the
// backing service is unavailable or returns unusable output they degrade to
// FallbackFilters.
type Normalizer interface {
	NormalizeFilters(ctx context.Context, query string) SearchFilters
}

// Ranker orders candidate products against a free-text prompt and returns
// an ordered subset of their IDs. Implementations degrade to the first N
// candidates unranked; they never fail the caller.
type Ranker interface {
	RankProducts(ctx context.Context, prompt string, candidates []ProductSummary) []uint
}

// FallbackFilters is the mandatory degradation result for NormalizeFilters.
func FallbackFilters(query string) SearchFilters {
	return SearchFilters{
		Keyword: strings.ToLower(strings.TrimSpace(query)),
	}
}

// FallbackRanking returns the first limit candidate IDs unranked.
func FallbackRanking(candidates []ProductSummary, limit int) []uint {
	if limit <= 0 || limit > len(candidates) {
		limit = len(candidates)
	}
	ids := make([]uint, 0, limit)
	for _, c := range candidates[:limit] {
		ids = append(ids, c.ID)
	}
	return ids
}

// normalize fixes up a parsed filter set so callers always get a usable
// value: negative bounds are zeroed and inverted price bounds are swapped.
func (f SearchFilters) normalize(query string) SearchFilters {
	if f.Keyword == "" {
		f.Keyword = strings.ToLower(strings.TrimSpace(query))
	} else {
		f.Keyword = strings.ToLower(strings.TrimSpace(f.Keyword))
	}
	if f.MinPrice < 0 {
		f.MinPrice = 0
	}
	if f.MaxPrice < 0 {
		f.MaxPrice = 0
	}
	if f.MaxPrice > 0 && f.MinPrice > f.MaxPrice {
		f.MinPrice, f.MaxPrice = f.MaxPrice, f.MinPrice
	}
	if f.MinRating < 0 {
		f.MinRating = 0
	}
	if f.MinRating > 5 {
		f.MinRating = 5
	}
	return f
}
