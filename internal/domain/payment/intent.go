// internal/domain/payment/intent.go
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/your-org/storefront-backend/internal/config"
)

// Intent is the gateway's handle for a pending payment. Its ID becomes the
// order's payment reference.
type Intent struct {
	ID       string  `json:"id"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Status   string  `json:"status"`
}

// IntentCreator creates payment intents at the gateway. The core only
// depends on this request/response contract.
type IntentCreator interface {
	CreateIntent(ctx context.Context, amount float64, receipt string) (*Intent, error)
}

// NewIntentCreator selects a gateway implementation from configuration
func NewIntentCreator(cfg *config.Config) IntentCreator {
	if cfg.External.Gateway.KeyID == "" {
		return NewFakeIntentCreator()
	}
	return NewGatewayService(cfg)
}

// GatewayService creates intents against an HTTP payment gateway
type GatewayService struct {
	config     *config.Config
	httpClient *http.Client
}

// NewGatewayService creates a new gateway-backed intent creator
func NewGatewayService(cfg *config.Config) *GatewayService {
	return &GatewayService{
		config: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type gatewayOrderRequest struct {
	// Amount is sent in the gateway's minor unit
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type gatewayOrderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

// CreateIntent implements IntentCreator
func (g *GatewayService) CreateIntent(ctx context.Context, amount float64, receipt string) (*Intent, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("intent amount must be positive")
	}

	reqData := gatewayOrderRequest{
		Amount:   int64(math.Round(amount * 100)),
		Currency: g.config.External.Gateway.Currency,
		Receipt:  receipt,
	}

	jsonData, err := json.Marshal(reqData)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal intent request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", g.config.External.Gateway.BaseURL+"/orders", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create intent request: %w", err)
	}

	req.SetBasicAuth(g.config.External.Gateway.KeyID, g.config.External.Gateway.KeySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach payment gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("payment gateway returned status %d", resp.StatusCode)
	}

	var gatewayOrder gatewayOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&gatewayOrder); err != nil {
		return nil, fmt.Errorf("failed to decode gateway response: %w", err)
	}

	return &Intent{
		ID:       gatewayOrder.ID,
		Amount:   float64(gatewayOrder.Amount) / 100,
		Currency: gatewayOrder.Currency,
		Status:   gatewayOrder.Status,
	}, nil
}

// FakeIntentCreator issues deterministic intents without network access.
// Used in tests and when no gateway credentials are configured.
type FakeIntentCreator struct {
	seq int
}

// NewFakeIntentCreator creates a new fake intent creator
func NewFakeIntentCreator() *FakeIntentCreator {
	return &FakeIntentCreator{}
}

// CreateIntent implements IntentCreator
func (f *FakeIntentCreator) CreateIntent(_ context.Context, amount float64, receipt string) (*Intent, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("intent amount must be positive")
	}
	f.seq++
	return &Intent{
		ID:       fmt.Sprintf("intent_fake_%06d", f.seq),
		Amount:   amount,
		Currency: "USD",
		Status:   "created",
	}, nil
}
