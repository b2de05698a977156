package pricing

import (
	"food-marketplace/apperr"
	"food-marketplace/models"

	"github.com/shopspring/decimal"
)

// Rules are the marketplace fee constants.
type Rules struct {
	DeliveryFee       decimal.Decimal
	DriverFee         decimal.Decimal
	VIPDiscountRate   decimal.Decimal
	FreeDeliveryEvery int
}

func DefaultRules() Rules {
	return Rules{
		DeliveryFee:       decimal.RequireFromString("5.00"),
		DriverFee:         decimal.RequireFromString("2.00"),
		VIPDiscountRate:   decimal.RequireFromString("0.05"),
		FreeDeliveryEvery: 3,
	}
}

// Line is one priced order line. UnitPrice is the menu price captured at
// checkout.
type Line struct {
	MenuItemID uint
	UnitPrice  decimal.Decimal
	Quantity   int
}

type Quote struct {
	Subtotal     decimal.Decimal `json:"subtotal"`
	Discount     decimal.Decimal `json:"discount"`
	DeliveryFee  decimal.Decimal `json:"delivery_fee"`
	DriverFee    decimal.Decimal `json:"driver_fee"`
	Total        decimal.Decimal `json:"total"`
	FreeDelivery bool            `json:"free_delivery"`
	UsedCredit   bool            `json:"used_free_delivery_credit"`
}

type Engine struct {
	rules Rules
}

func NewEngine(rules Rules) *Engine {
	if rules.FreeDeliveryEvery <= 0 {
		rules.FreeDeliveryEvery = DefaultRules().FreeDeliveryEvery
	}
	return &Engine{rules: rules}
}

func (e *Engine) Rules() Rules { return e.rules }

// Price quotes lines for the given customer. It does not mutate the customer;
// callers persist a consumed free-delivery credit when Quote.UsedCredit is set.
func (e *Engine) Price(lines []Line, c *models.Customer) (Quote, error) {
	if len(lines) == 0 {
		return Quote{}, apperr.Validation("order must contain at least one item")
	}

	subtotal := decimal.Zero
	for _, l := range lines {
		if l.Quantity < 1 {
			return Quote{}, apperr.Validation("quantity for menu item %d must be at least 1", l.MenuItemID)
		}
		if l.UnitPrice.IsNegative() {
			return Quote{}, apperr.Validation("price for menu item %d is negative", l.MenuItemID)
		}
		subtotal = subtotal.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}

	q := Quote{
		Subtotal:    subtotal.Round(2),
		Discount:    decimal.Zero,
		DeliveryFee: e.rules.DeliveryFee,
		DriverFee:   e.rules.DriverFee,
	}

	if c.IsVIP() {
		switch {
		case (c.OrderCount+1)%e.rules.FreeDeliveryEvery == 0:
			q.FreeDelivery = true
		case c.FreeDeliveryCredits > 0:
			q.FreeDelivery = true
			q.UsedCredit = true
		}
		q.Discount = subtotal.Mul(e.rules.VIPDiscountRate).Round(2)
	}
	if q.FreeDelivery {
		q.DeliveryFee = decimal.Zero
	}

	q.Total = q.Subtotal.Sub(q.Discount).Add(q.DeliveryFee).Add(q.DriverFee).Round(2)
	return q, nil
}
