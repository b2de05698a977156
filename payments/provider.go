// Package payments moves money from an external card processor into customer
// deposit balances.
package payments

//go:generate mockgen -destination=mocks/provider_mock.go -package=mocks food-marketplace/payments Provider

import (
	"context"

	"github.com/shopspring/decimal"
)

const StatusSucceeded = "succeeded"

// Intent is a provider-side payment the customer completes out of band.
type Intent struct {
	Reference    string          `json:"reference"`
	ClientSecret string          `json:"client_secret,omitempty"`
	Status       string          `json:"status"`
	Amount       decimal.Decimal `json:"amount"`
	CustomerID   uint            `json:"customer_id"`
}

// Provider is the external payment processor.
type Provider interface {
	CreateIntent(ctx context.Context, customerID uint, amount decimal.Decimal) (*Intent, error)
	LookupIntent(ctx context.Context, reference string) (*Intent, error)
}
