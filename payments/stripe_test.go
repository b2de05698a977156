package payments

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStripe serves just enough of the PaymentIntents API for the provider.
func fakeStripe(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/payment_intents", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "1999", r.PostForm.Get("amount"))
		assert.Equal(t, "usd", r.PostForm.Get("currency"))
		assert.Equal(t, "7", r.PostForm.Get("metadata[customer_id]"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pi_new","object":"payment_intent","amount":1999,"currency":"usd",
			"client_secret":"pi_new_secret","status":"requires_payment_method","metadata":{"customer_id":"7"}}`))
	})
	mux.HandleFunc("GET /v1/payment_intents/pi_done", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pi_done","object":"payment_intent","amount":2500,"currency":"usd",
			"status":"succeeded","metadata":{"customer_id":"7"}}`))
	})
	mux.HandleFunc("GET /v1/payment_intents/pi_anon", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pi_anon","object":"payment_intent","amount":100,"currency":"usd","status":"succeeded","metadata":{}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestStripeProvider(t *testing.T) {
	srv := fakeStripe(t)
	p := NewStripeProvider("sk_test_123", srv.URL)
	ctx := context.Background()

	intent, err := p.CreateIntent(ctx, 7, decimal.RequireFromString("19.99"))
	require.NoError(t, err)
	assert.Equal(t, "pi_new", intent.Reference)
	assert.Equal(t, "pi_new_secret", intent.ClientSecret)
	assert.Equal(t, uint(7), intent.CustomerID)
	assert.True(t, decimal.RequireFromString("19.99").Equal(intent.Amount))

	intent, err = p.LookupIntent(ctx, "pi_done")
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, intent.Status)
	assert.True(t, decimal.NewFromInt(25).Equal(intent.Amount))

	_, err = p.LookupIntent(ctx, "pi_anon")
	assert.ErrorContains(t, err, "no customer_id metadata")
}
