package payments

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

const customerMetadataKey = "customer_id"

var hundred = decimal.NewFromInt(100)

// StripeProvider creates and reads Stripe PaymentIntents in USD.
type StripeProvider struct {
	api *client.API
}

// NewStripeProvider returns a provider using key. A non-empty apiBase points
// the client at another Stripe-compatible endpoint.
func NewStripeProvider(key, apiBase string) *StripeProvider {
	var backends *stripe.Backends
	if apiBase != "" {
		b := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
			URL:               stripe.String(apiBase),
			MaxNetworkRetries: stripe.Int64(0),
		})
		backends = &stripe.Backends{API: b, Connect: b, Uploads: b}
	}
	return &StripeProvider{api: client.New(key, backends)}
}

func (p *StripeProvider) CreateIntent(ctx context.Context, customerID uint, amount decimal.Decimal) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Params:   stripe.Params{Context: ctx},
		Amount:   stripe.Int64(amount.Mul(hundred).Round(0).IntPart()),
		Currency: stripe.String(string(stripe.CurrencyUSD)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.AddMetadata(customerMetadataKey, strconv.FormatUint(uint64(customerID), 10))

	pi, err := p.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: create payment intent: %w", err)
	}
	return toIntent(pi)
}

func (p *StripeProvider) LookupIntent(ctx context.Context, reference string) (*Intent, error) {
	pi, err := p.api.PaymentIntents.Get(reference, &stripe.PaymentIntentParams{
		Params: stripe.Params{Context: ctx},
	})
	if err != nil {
		return nil, fmt.Errorf("stripe: get payment intent %s: %w", reference, err)
	}
	return toIntent(pi)
}

func toIntent(pi *stripe.PaymentIntent) (*Intent, error) {
	raw, ok := pi.Metadata[customerMetadataKey]
	if !ok {
		return nil, fmt.Errorf("stripe: payment intent %s has no %s metadata", pi.ID, customerMetadataKey)
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("stripe: payment intent %s: bad %s %q: %w", pi.ID, customerMetadataKey, raw, err)
	}
	return &Intent{
		Reference:    pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		Amount:       decimal.New(pi.Amount, -2),
		CustomerID:   uint(id),
	}, nil
}
