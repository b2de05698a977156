// Package ledger owns customer deposit balances. Every balance change happens
// against a row-locked customer and leaves a Transaction behind.
package ledger

import (
	"context"
	"fmt"

	"food-marketplace/apperr"
	"food-marketplace/models"
	"food-marketplace/store"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Entry describes the ledger record written alongside a balance change.
type Entry struct {
	Type             models.TransactionType
	OrderID          *uint
	PaymentReference *string
	Note             string
}

// Lock loads the customer row for update inside tx.
func Lock(tx *gorm.DB, customerID uint) (*models.Customer, error) {
	var c models.Customer
	if err := store.ForUpdate(tx).First(&c, customerID).Error; err != nil {
		if store.IsNotFound(err) {
			return nil, apperr.NotFound("customer %d not found", customerID)
		}
		return nil, fmt.Errorf("ledger.Lock: %w", err)
	}
	return &c, nil
}

// Debit takes amount from a customer locked with Lock. The balance is left
// untouched and *apperr.InsufficientFunds returned when it does not cover amount.
func Debit(tx *gorm.DB, c *models.Customer, amount decimal.Decimal, entry Entry) (decimal.Decimal, error) {
	amount = amount.Round(2)
	if !amount.IsPositive() {
		return c.Balance, apperr.Validation("debit amount must be positive, got %s", amount)
	}
	if c.Balance.LessThan(amount) {
		return c.Balance, &apperr.InsufficientFunds{CurrentBalance: c.Balance, OrderTotal: amount}
	}
	return apply(tx, c, amount.Neg(), entry)
}

// Credit adds amount to a customer locked with Lock.
func Credit(tx *gorm.DB, c *models.Customer, amount decimal.Decimal, entry Entry) (decimal.Decimal, error) {
	amount = amount.Round(2)
	if !amount.IsPositive() {
		return c.Balance, apperr.Validation("credit amount must be positive, got %s", amount)
	}
	return apply(tx, c, amount, entry)
}

func apply(tx *gorm.DB, c *models.Customer, delta decimal.Decimal, entry Entry) (decimal.Decimal, error) {
	newBalance := c.Balance.Add(delta).Round(2)
	if err := tx.Model(c).Update("balance", newBalance).Error; err != nil {
		return c.Balance, fmt.Errorf("ledger: update balance: %w", err)
	}
	c.Balance = newBalance

	rec := models.Transaction{
		Reference:        "txn_" + uuid.NewString(),
		CustomerID:       c.UserID,
		Type:             entry.Type,
		Amount:           delta.Abs(),
		BalanceAfter:     newBalance,
		OrderID:          entry.OrderID,
		PaymentReference: entry.PaymentReference,
		Note:             entry.Note,
	}
	if err := tx.Create(&rec).Error; err != nil {
		return c.Balance, fmt.Errorf("ledger: record transaction: %w", err)
	}
	return newBalance, nil
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Debit runs a standalone debit in its own transaction.
func (s *Service) Debit(ctx context.Context, customerID uint, amount decimal.Decimal, entry Entry) (decimal.Decimal, error) {
	return s.run(ctx, customerID, func(tx *gorm.DB, c *models.Customer) (decimal.Decimal, error) {
		return Debit(tx, c, amount, entry)
	})
}

// Credit runs a standalone credit in its own transaction.
func (s *Service) Credit(ctx context.Context, customerID uint, amount decimal.Decimal, entry Entry) (decimal.Decimal, error) {
	return s.run(ctx, customerID, func(tx *gorm.DB, c *models.Customer) (decimal.Decimal, error) {
		return Credit(tx, c, amount, entry)
	})
}

func (s *Service) run(ctx context.Context, customerID uint, fn func(*gorm.DB, *models.Customer) (decimal.Decimal, error)) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := Lock(tx, customerID)
		if err != nil {
			return err
		}
		if c.ClosedAt != nil {
			return apperr.Authorization("account %d is closed", customerID)
		}
		balance, err = fn(tx, c)
		return err
	})
	if err != nil {
		log.Warn().Err(err).Uint("customer_id", customerID).Msg("ledger: balance change rejected")
		return decimal.Zero, err
	}
	return balance, nil
}

// Balance returns the current balance without locking.
func (s *Service) Balance(ctx context.Context, customerID uint) (decimal.Decimal, error) {
	var c models.Customer
	if err := s.db.WithContext(ctx).First(&c, customerID).Error; err != nil {
		if store.IsNotFound(err) {
			return decimal.Zero, apperr.NotFound("customer %d not found", customerID)
		}
		return decimal.Zero, fmt.Errorf("ledger.Balance: %w", err)
	}
	return c.Balance, nil
}

// History lists a customer's ledger entries, newest first.
func (s *Service) History(ctx context.Context, customerID uint) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := s.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at desc, id desc").
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("ledger.History: %w", err)
	}
	return txs, nil
}
