// internal/ai/client.go
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/metrics"
)

const filtersSystemPrompt = `You translate storefront search queries into JSON filters.
Respond with a single JSON object with exactly these keys:
keyword (string), category (string), min_price (number), max_price (number),
min_rating (number), sort_by (one of "", "price_asc", "price_desc", "rating", "newest").
Use 0 for numeric fields the query does not constrain and "" for unknown strings.`

const rankingSystemPrompt = `You rank storefront products for a shopper prompt.
Given a prompt and a JSON array of candidate products, respond with a single
JSON array of the most relevant product ids, best first, at most %d entries.
Only use ids that appear in the candidate list.`

// Client calls an OpenAI-compatible chat completions API to normalize
// queries and rank products. Every failure path degrades to the
// deterministic fallback; callers never see an error.
type Client struct {
	config     *config.Config
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient creates a new AI client
func NewClient(cfg *config.Config, logger *logrus.Logger) *Client {
	return &Client{
		config: cfg,
		httpClient: &http.Client{
			Timeout: cfg.AI.Timeout,
		},
		logger: logger,
	}
}

// chat completions request/response structures

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// NormalizeFilters translates a free-text query into structured filters,
// degrading to FallbackFilters on any transport or parse failure.
func (c *Client) NormalizeFilters(ctx context.Context, query string) SearchFilters {
	content, err := c.complete(ctx, filtersSystemPrompt, query)
	if err != nil {
		c.logger.WithError(err).Warn("query normalization degraded to fallback")
		metrics.AIDegradations.WithLabelValues("normalize").Inc()
		return FallbackFilters(query)
	}

	var filters SearchFilters
	if err := json.Unmarshal([]byte(extractJSON(content, '{', '}')), &filters); err != nil {
		c.logger.WithError(err).Warn("query normalization returned malformed filters")
		metrics.AIDegradations.WithLabelValues("normalize").Inc()
		return FallbackFilters(query)
	}

	return filters.normalize(query)
}

// RankProducts returns an ordered subset of candidate IDs, degrading to the
// first N candidates when the backing service is unusable.
func (c *Client) RankProducts(ctx context.Context, prompt string, candidates []ProductSummary) []uint {
	limit := c.config.AI.MaxRankResults
	if len(candidates) == 0 {
		return []uint{}
	}

	payload, err := json.Marshal(candidates)
	if err != nil {
		return FallbackRanking(candidates, limit)
	}

	system := fmt.Sprintf(rankingSystemPrompt, limit)
	user := fmt.Sprintf("Prompt: %s\nCandidates: %s", prompt, payload)

	content, err := c.complete(ctx, system, user)
	if err != nil {
		c.logger.WithError(err).Warn("product ranking degraded to fallback")
		metrics.AIDegradations.WithLabelValues("rank").Inc()
		return FallbackRanking(candidates, limit)
	}

	var ids []uint
	if err := json.Unmarshal([]byte(extractJSON(content, '[', ']')), &ids); err != nil {
		c.logger.WithError(err).Warn("product ranking returned malformed ids")
		metrics.AIDegradations.WithLabelValues("rank").Inc()
		return FallbackRanking(candidates, limit)
	}

	// Keep only ids present in the candidate set, preserving rank order
	known := make(map[uint]bool, len(candidates))
	for _, cand := range candidates {
		known[cand.ID] = true
	}

	ranked := make([]uint, 0, limit)
	seen := make(map[uint]bool, limit)
	for _, id := range ids {
		if known[id] && !seen[id] {
			ranked = append(ranked, id)
			seen[id] = true
		}
		if len(ranked) >= limit {
			break
		}
	}

	if len(ranked) == 0 {
		return FallbackRanking(candidates, limit)
	}
	return ranked
}

// complete performs a single chat completion call with the configured hard
// timeout and returns the assistant message content.
func (c *Client) complete(ctx context.Context, system, user string) (string, error) {
	if c.config.AI.APIKey == "" {
		return "", fmt.Errorf("AI API key not configured")
	}

	reqData := chatRequest{
		Model: c.config.AI.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0,
	}

	jsonData, err := json.Marshal(reqData)
	if err != nil {
		return "", fmt.Errorf("failed to marshal completion request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.AI.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "POST",
		c.config.AI.BaseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create completion request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.config.AI.APIKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("completion API returned status %d", resp.StatusCode)
	}

	var completion chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", fmt.Errorf("failed to decode completion response: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("completion response contained no choices")
	}

	c.logger.WithField("latency", time.Since(start)).Debug("completion call finished")
	return completion.Choices[0].Message.Content, nil
}

// extractJSON trims any prose the model wraps around the JSON payload
func extractJSON(content string, open, close byte) string {
	start := strings.IndexByte(content, open)
	end := strings.LastIndexByte(content, close)
	if start < 0 || end < start {
		return content
	}
	return content[start : end+1]
}
