package payment

import (
	"IdeaVault/internal/api/config"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCheckoutSession(t *testing.T) {
	var got CheckoutRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/checkout/sessions", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_1","url":"https://pay.example/cs_1"}`))
	}))
	defer srv.Close()

	c := NewClient(config.PaymentConfig{URL: srv.URL, ApiKey: "sk_test", SuccessURL: "/ok", CancelURL: "/no"})
	session, err := c.CreateCheckoutSession(context.Background(), 7, "pro")
	require.NoError(t, err)
	assert.Equal(t, "cs_1", session.ID)
	assert.Equal(t, "https://pay.example/cs_1", session.URL)
	assert.Equal(t, uint64(7), got.UserID)
	assert.Equal(t, "pro", got.Tier)
	assert.Equal(t, "/ok", got.SuccessURL)
}

func TestCreateCheckoutSessionRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"bad tier"}}`))
	}))
	defer srv.Close()

	c := NewClient(config.PaymentConfig{URL: srv.URL})
	_, err := c.CreateCheckoutSession(context.Background(), 7, "pro")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad tier")
}

func TestCreateCheckoutSessionNotConfigured(t *testing.T) {
	c := NewClient(config.PaymentConfig{})
	_, err := c.CreateCheckoutSession(context.Background(), 7, "pro")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
