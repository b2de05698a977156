package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"food-marketplace/apperr"
	"food-marketplace/models"
	"food-marketplace/store/storetest"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestService_DebitAndCredit(t *testing.T) {
	db := storetest.NewDB(t)
	svc := NewService(db)
	ctx := context.Background()
	c := storetest.Customer(t, db, "50.00")

	balance, err := svc.Debit(ctx, c.UserID, dec("12.345"), Entry{Type: models.TxOrderPayment, Note: "lunch"})
	require.NoError(t, err)
	assert.True(t, dec("37.65").Equal(balance), "got %s", balance)

	balance, err = svc.Credit(ctx, c.UserID, dec("2.35"), Entry{Type: models.TxRefund})
	require.NoError(t, err)
	assert.True(t, dec("40").Equal(balance), "got %s", balance)

	history, err := svc.History(ctx, c.UserID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.TxRefund, history[0].Type)
	assert.True(t, dec("40").Equal(history[0].BalanceAfter))
	assert.True(t, dec("12.35").Equal(history[1].Amount))
	assert.NotEqual(t, history[0].Reference, history[1].Reference)
}

func TestService_DebitInsufficientFunds(t *testing.T) {
	db := storetest.NewDB(t)
	svc := NewService(db)
	c := storetest.Customer(t, db, "10.00")

	_, err := svc.Debit(context.Background(), c.UserID, dec("10.01"), Entry{Type: models.TxOrderPayment})

	var funds *apperr.InsufficientFunds
	require.True(t, errors.As(err, &funds))
	assert.True(t, dec("10").Equal(funds.CurrentBalance))
	assert.True(t, dec("10.01").Equal(funds.OrderTotal))

	balance, err := svc.Balance(context.Background(), c.UserID)
	require.NoError(t, err)
	assert.True(t, dec("10").Equal(balance), "balance must be untouched")

	var count int64
	db.Model(&models.Transaction{}).Where("customer_id = ?", c.UserID).Count(&count)
	assert.Zero(t, count)
}

func TestService_RejectsNonPositiveAmounts(t *testing.T) {
	db := storetest.NewDB(t)
	svc := NewService(db)
	c := storetest.Customer(t, db, "10.00")

	_, err := svc.Debit(context.Background(), c.UserID, decimal.Zero, Entry{Type: models.TxOrderPayment})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = svc.Credit(context.Background(), c.UserID, dec("-1"), Entry{Type: models.TxDeposit})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestService_UnknownAndClosedAccounts(t *testing.T) {
	db := storetest.NewDB(t)
	svc := NewService(db)

	_, err := svc.Credit(context.Background(), 9999, dec("1"), Entry{Type: models.TxDeposit})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	closed := storetest.Customer(t, db, "5.00", func(c *models.Customer) {
		now := time.Now()
		c.ClosedAt = &now
	})
	_, err = svc.Credit(context.Background(), closed.UserID, dec("1"), Entry{Type: models.TxDeposit})
	assert.True(t, apperr.Is(err, apperr.KindAuthorization))
}
