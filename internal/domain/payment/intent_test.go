// internal/domain/payment/intent_test.go
package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/storefront-backend/internal/config"
)

func gatewayConfig(baseURL string) *config.Config {
	return &config.Config{
		External: config.ExternalConfig{
			Gateway: config.GatewayConfig{
				BaseURL:   baseURL,
				KeyID:     "key_test",
				KeySecret: "secret_test",
				Currency:  "USD",
			},
		},
	}
}

func TestGatewayCreateIntent(t *testing.T) {
	var received gatewayOrderRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/orders", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		require.Equal(t, "key_test", user)
		require.Equal(t, "secret_test", pass)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		json.NewEncoder(w).Encode(gatewayOrderResponse{
			ID:       "order_xyz",
			Amount:   received.Amount,
			Currency: received.Currency,
			Status:   "created",
		})
	}))
	defer server.Close()

	svc := NewGatewayService(gatewayConfig(server.URL))
	intent, err := svc.CreateIntent(context.Background(), 1999.99, "user-7")
	require.NoError(t, err)

	// The minor-unit conversion must round, not truncate
	assert.Equal(t, int64(199999), received.Amount)
	assert.Equal(t, "USD", received.Currency)
	assert.Equal(t, "user-7", received.Receipt)

	assert.Equal(t, "order_xyz", intent.ID)
	assert.InDelta(t, 1999.99, intent.Amount, 0.001)
	assert.Equal(t, "created", intent.Status)
}

func TestGatewayCreateIntentErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	svc := NewGatewayService(gatewayConfig(server.URL))
	_, err := svc.CreateIntent(context.Background(), 10, "user-7")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestCreateIntentRejectsNonPositiveAmount(t *testing.T) {
	svc := NewGatewayService(gatewayConfig("http://unused.invalid"))
	_, err := svc.CreateIntent(context.Background(), 0, "user-7")
	require.Error(t, err)

	fake := NewFakeIntentCreator()
	_, err = fake.CreateIntent(context.Background(), -5, "user-7")
	require.Error(t, err)
}

func TestFakeIntentCreatorSequence(t *testing.T) {
	fake := NewFakeIntentCreator()

	first, err := fake.CreateIntent(context.Background(), 25.50, "user-1")
	require.NoError(t, err)
	second, err := fake.CreateIntent(context.Background(), 10.00, "user-2")
	require.NoError(t, err)

	assert.Equal(t, "intent_fake_000001", first.ID)
	assert.Equal(t, "intent_fake_000002", second.ID)
	assert.InDelta(t, 25.50, first.Amount, 0.001)
	assert.Equal(t, "USD", first.Currency)
	assert.Equal(t, "created", first.Status)
}

func TestNewIntentCreatorSelection(t *testing.T) {
	_, isFake := NewIntentCreator(&config.Config{}).(*FakeIntentCreator)
	assert.True(t, isFake, "no credentials selects the fake")

	_, isGateway := NewIntentCreator(gatewayConfig("http://gateway.invalid")).(*GatewayService)
	assert.True(t, isGateway)
}
