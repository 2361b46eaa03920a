// internal/ai/static.go
package ai

import "context"

// Static is a deterministic Normalizer/Ranker used in tests and when no AI
// API key is configured. It always answers with the degradation result, so
// search behaves exactly as it would with an unreachable backing service.
type Static struct {
	MaxRankResults int
}

// NewStatic creates a static client ranking at most limit products
func NewStatic(limit int) *Static {
	if limit <= 0 {
		limit = 5
	}
	return &Static{MaxRankResults: limit}
}

// NormalizeFilters returns the deterministic fallback filters
func (s *Static) NormalizeFilters(_ context.Context, query string) SearchFilters {
	return FallbackFilters(query)
}

// RankProducts returns the first N candidates unranked
func (s *Static) RankProducts(_ context.Context, _ string, candidates []ProductSummary) []uint {
	return FallbackRanking(candidates, s.MaxRankResults)
}
