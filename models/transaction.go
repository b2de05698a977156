package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TxDeposit        TransactionType = "deposit"
	TxOrderPayment   TransactionType = "order_payment"
	TxRefund         TransactionType = "refund"
	TxAccountClosure TransactionType = "account_closure"
)

// Transaction is one ledger entry against a customer's balance.
// PaymentReference is set only for externally confirmed deposits and is
// unique, so a provider reference can be credited at most once.
type Transaction struct {
	ID               uint            `json:"id" gorm:"primaryKey"`
	Reference        string          `json:"reference" gorm:"uniqueIndex;not null"`
	CustomerID       uint            `json:"customer_id" gorm:"not null;index"`
	Type             TransactionType `json:"type" gorm:"not null"`
	Amount           decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	BalanceAfter     decimal.Decimal `json:"balance_after" gorm:"type:decimal(12,2);not null"`
	OrderID          *uint           `json:"order_id,omitempty"`
	PaymentReference *string         `json:"payment_reference,omitempty" gorm:"uniqueIndex"`
	Note             string          `json:"note"`
	CreatedAt        time.Time       `json:"created_at"`
}
