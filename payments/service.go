package payments

import (
	"context"
	"fmt"
	"strings"

	"food-marketplace/accounts"
	"food-marketplace/apperr"
	"food-marketplace/ledger"
	"food-marketplace/models"
	"food-marketplace/store"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrAlreadyProcessed = &apperr.Error{Kind: apperr.KindConflict, Msg: "payment already processed"}
	ErrNotSucceeded     = &apperr.Error{Kind: apperr.KindValidation, Msg: "payment has not succeeded"}
)

// Confirmation is the result of crediting an external payment.
type Confirmation struct {
	Reference  string          `json:"reference"`
	Credited   decimal.Decimal `json:"credited"`
	NewBalance decimal.Decimal `json:"new_balance"`
}

type Service struct {
	db       *gorm.DB
	provider Provider
}

func NewService(db *gorm.DB, provider Provider) *Service {
	return &Service{db: db, provider: provider}
}

// CreateDeposit opens a provider payment for amount on behalf of customerID.
// The balance changes only once the payment is confirmed.
func (s *Service) CreateDeposit(ctx context.Context, customerID uint, amount decimal.Decimal) (*Intent, error) {
	amount = amount.Round(2)
	if !amount.IsPositive() {
		return nil, apperr.Validation("deposit amount must be positive")
	}
	if _, err := accounts.RequireCustomer(s.db.WithContext(ctx), customerID); err != nil {
		return nil, err
	}

	intent, err := s.provider.CreateIntent(ctx, customerID, amount)
	if err != nil {
		log.Error().Err(err).Uint("customer_id", customerID).Msg("payments: create intent failed")
		return nil, apperr.External(err, "payment provider unavailable")
	}
	log.Info().Uint("customer_id", customerID).Str("reference", intent.Reference).
		Str("amount", amount.StringFixed(2)).Msg("payments: deposit intent created")
	return intent, nil
}

// ConfirmExternalPayment credits a succeeded provider payment to its customer.
// Each reference is credited at most once.
func (s *Service) ConfirmExternalPayment(ctx context.Context, customerID uint, reference string) (*Confirmation, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, apperr.Validation("payment reference is required")
	}
	if seen, err := processed(s.db.WithContext(ctx), reference); err != nil {
		return nil, fmt.Errorf("payments.ConfirmExternalPayment: %w", err)
	} else if seen {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyProcessed, reference)
	}

	intent, err := s.provider.LookupIntent(ctx, reference)
	if err != nil {
		log.Error().Err(err).Str("reference", reference).Msg("payments: lookup failed")
		return nil, apperr.External(err, "payment provider unavailable")
	}
	if intent.CustomerID != customerID {
		return nil, apperr.Authorization("payment %s does not belong to customer %d", reference, customerID)
	}
	if intent.Status != StatusSucceeded {
		return nil, fmt.Errorf("%w: %s is %s", ErrNotSucceeded, reference, intent.Status)
	}

	out := &Confirmation{Reference: reference, Credited: intent.Amount.Round(2)}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := ledger.Lock(tx, customerID)
		if err != nil {
			return err
		}
		if c.ClosedAt != nil {
			return apperr.Authorization("customer %d account is closed", customerID)
		}
		if seen, err := processed(tx, reference); err != nil {
			return err
		} else if seen {
			return fmt.Errorf("%w: %s", ErrAlreadyProcessed, reference)
		}
		ref := reference
		out.NewBalance, err = ledger.Credit(tx, c, out.Credited, ledger.Entry{
			Type:             models.TxDeposit,
			PaymentReference: &ref,
			Note:             "Card deposit",
		})
		if store.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrAlreadyProcessed, reference)
		}
		return err
	})
	if err != nil {
		log.Warn().Err(err).Uint("customer_id", customerID).Str("reference", reference).Msg("payments: confirmation rejected")
		return nil, apperr.Wrap("payments.ConfirmExternalPayment", err)
	}

	log.Info().Uint("customer_id", customerID).Str("reference", reference).
		Str("credited", out.Credited.StringFixed(2)).Str("balance", out.NewBalance.StringFixed(2)).
		Msg("payments: deposit credited")
	return out, nil
}

func processed(db *gorm.DB, reference string) (bool, error) {
	var n int64
	err := db.Model(&models.Transaction{}).Where("payment_reference = ?", reference).Count(&n).Error
	return n > 0, err
}
