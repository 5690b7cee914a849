package infrastructure

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/nexoshop/internal/payment/domain"
)

func TestSimulatedGateway(t *testing.T) {
	g := NewSimulatedGateway()
	ctx := context.Background()

	res, err := g.Charge(ctx, domain.ChargeRequest{OrderNumber: "MOCK-0001", Amount: decimal.NewFromInt(10), Nonce: NonceValid})
	require.NoError(t, err)
	assert.NotEmpty(t, res.TransactionID)

	_, err = g.Charge(ctx, domain.ChargeRequest{Nonce: "fake-declined-card"})
	assert.ErrorIs(t, err, domain.ErrPaymentDeclined)

	_, err = g.Charge(ctx, domain.ChargeRequest{})
	assert.ErrorIs(t, err, domain.ErrMissingNonce)
}

func TestHTTPGatewayRetriesAndSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/charges", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		assert.Equal(t, "25.00", body["amount"])
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"transaction_id":"tx-1","status":"settled"}`))
	}))
	defer srv.Close()

	g := NewHTTPGateway(HTTPConfig{BaseURL: srv.URL, APIKey: "secret", Timeout: time.Second, Retries: 2})
	res, err := g.Charge(context.Background(), domain.ChargeRequest{OrderNumber: "MOCK-0002", Amount: decimal.NewFromInt(25), Nonce: "n"})
	require.NoError(t, err)
	assert.Equal(t, "tx-1", res.TransactionID)
	assert.Equal(t, int32(2), calls.Load())
}

func TestHTTPGatewayDeclined(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"error":"card declined"}`))
	}))
	defer srv.Close()

	g := NewHTTPGateway(HTTPConfig{BaseURL: srv.URL, Timeout: time.Second})
	_, err := g.Charge(context.Background(), domain.ChargeRequest{OrderNumber: "MOCK-0003", Nonce: "n"})
	assert.ErrorIs(t, err, domain.ErrPaymentDeclined)
}
