// Package orders runs the order lifecycle from checkout to delivery.
package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"food-marketplace/accounts"
	"food-marketplace/apperr"
	"food-marketplace/ledger"
	"food-marketplace/models"
	"food-marketplace/pricing"
	"food-marketplace/reputation"
	"food-marketplace/statemachine"
	"food-marketplace/store"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ItemRequest struct {
	MenuItemID uint `json:"menu_item_id" binding:"required" validate:"required"`
	Quantity   int  `json:"quantity" binding:"required,min=1" validate:"min=1"`
}

type PlaceOrderInput struct {
	CustomerID      uint          `validate:"required"`
	Items           []ItemRequest `validate:"required,min=1,dive"`
	DeliveryAddress string        `validate:"required"`
}

type PlaceOrderResult struct {
	Order            *models.Order   `json:"order"`
	Quote            pricing.Quote   `json:"quote"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
	Upgraded         bool            `json:"upgraded"`
}

type Service struct {
	db       *gorm.DB
	pricing  *pricing.Engine
	validate *validator.Validate
}

func NewService(db *gorm.DB, engine *pricing.Engine) *Service {
	return &Service{db: db, pricing: engine, validate: validator.New()}
}

// PlaceOrder prices and pays for an order while holding the customer's row
// lock. When the balance falls short the customer is warned, the warning is
// committed, nothing else is persisted and *apperr.InsufficientFunds is
// returned.
func (s *Service) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*PlaceOrderResult, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, apperr.FromValidator(err)
	}

	var (
		result    *PlaceOrderResult
		shortfall *apperr.InsufficientFunds
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := ledger.Lock(tx, in.CustomerID)
		if err != nil {
			return err
		}
		if c.ClosedAt != nil {
			return apperr.Authorization("account %d is closed", c.UserID)
		}
		if c.Blacklisted {
			return apperr.Authorization("account %d is blacklisted", c.UserID)
		}

		lines, items, err := resolveItems(tx, in.Items, c)
		if err != nil {
			return err
		}
		quote, err := s.pricing.Price(lines, c)
		if err != nil {
			return err
		}

		order := &models.Order{
			CustomerID:             c.UserID,
			Status:                 models.StatusPending,
			Subtotal:               quote.Subtotal,
			Discount:               quote.Discount,
			DeliveryFee:            quote.DeliveryFee,
			DriverFee:              quote.DriverFee,
			TotalPrice:             quote.Total,
			IsFreeDelivery:         quote.FreeDelivery,
			UsedFreeDeliveryCredit: quote.UsedCredit,
			DeliveryAddress:        in.DeliveryAddress,
			Items:                  items,
		}

		// the order and its debit share a savepoint so a shortfall leaves no order behind
		err = tx.Transaction(func(inner *gorm.DB) error {
			if err := inner.Create(order).Error; err != nil {
				return err
			}
			if _, err := ledger.Debit(inner, c, quote.Total, ledger.Entry{
				Type:    models.TxOrderPayment,
				OrderID: &order.ID,
			}); err != nil {
				return err
			}
			return inner.Create(&models.OrderStatusHistory{
				OrderID:   order.ID,
				ToStatus:  models.StatusPending,
				ChangedBy: c.UserID,
				Note:      "Order placed by customer",
			}).Error
		})
		if errors.As(err, &shortfall) {
			sig := reputation.AddWarning(c)
			if err := reputation.SaveCustomer(tx, c); err != nil {
				return err
			}
			shortfall.WarningIssued = true
			shortfall.WarningsCount = c.WarningsCount
			shortfall.Blacklisted = c.Blacklisted
			if sig.Demoted {
				log.Warn().Uint("customer_id", c.UserID).Msg("orders: vip demoted after failed checkout")
			}
			return nil
		}
		if err != nil {
			return err
		}

		c.TotalSpent = c.TotalSpent.Add(quote.Total)
		c.VIPProgressSpend = c.VIPProgressSpend.Add(quote.Total)
		c.OrderCount++
		if quote.UsedCredit {
			c.FreeDeliveryCredits--
		}
		upgraded := reputation.EvaluateUpgrade(c)
		if err := reputation.SaveCustomer(tx, c); err != nil {
			return err
		}

		result = &PlaceOrderResult{
			Order:            order,
			Quote:            quote,
			RemainingBalance: c.Balance,
			Upgraded:         upgraded,
		}
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Uint("customer_id", in.CustomerID).Msg("orders: checkout rejected")
		return nil, apperr.Wrap("orders.PlaceOrder", err)
	}
	if shortfall != nil {
		log.Warn().Uint("customer_id", in.CustomerID).
			Str("balance", shortfall.CurrentBalance.StringFixed(2)).
			Str("total", shortfall.OrderTotal.StringFixed(2)).
			Int("warnings", shortfall.WarningsCount).
			Bool("blacklisted", shortfall.Blacklisted).
			Msg("orders: insufficient funds, warning issued")
		return nil, shortfall
	}

	log.Info().Uint("order_id", result.Order.ID).Uint("customer_id", in.CustomerID).
		Str("total", result.Quote.Total.StringFixed(2)).Bool("upgraded", result.Upgraded).
		Msg("orders: order placed")
	return result, nil
}

// resolveItems snapshots menu prices for the requested lines. Any unknown
// item aborts the whole order.
func resolveItems(tx *gorm.DB, reqs []ItemRequest, c *models.Customer) ([]pricing.Line, []models.OrderItem, error) {
	ids := make([]uint, 0, len(reqs))
	for _, r := range reqs {
		ids = append(ids, r.MenuItemID)
	}
	var menu []models.MenuItem
	if err := tx.Where("id IN ?", ids).Find(&menu).Error; err != nil {
		return nil, nil, err
	}
	byID := make(map[uint]models.MenuItem, len(menu))
	for _, m := range menu {
		byID[m.ID] = m
	}

	lines := make([]pricing.Line, 0, len(reqs))
	items := make([]models.OrderItem, 0, len(reqs))
	for _, r := range reqs {
		m, ok := byID[r.MenuItemID]
		if !ok {
			return nil, nil, apperr.NotFound("menu item %d not found", r.MenuItemID)
		}
		if !m.IsAvailable {
			return nil, nil, apperr.Validation("menu item '%s' is not available", m.Name)
		}
		if m.IsVIPExclusive && !c.IsVIP() {
			return nil, nil, apperr.Authorization("menu item '%s' is reserved for VIP customers", m.Name)
		}
		lines = append(lines, pricing.Line{MenuItemID: m.ID, UnitPrice: m.Price, Quantity: r.Quantity})
		items = append(items, models.OrderItem{
			MenuItemID: m.ID,
			Quantity:   r.Quantity,
			Price:      m.Price,
			Name:       m.Name,
		})
	}
	return lines, items, nil
}

// Transition moves a locked order to a new status on behalf of actor and
// appends the history row.
func Transition(tx *gorm.DB, order *models.Order, to models.OrderStatus, actor statemachine.Actor, actorID uint, note string) error {
	if err := statemachine.CanTransition(order.Status, to, actor); err != nil {
		return err
	}
	from := order.Status
	updates := map[string]any{"status": to}
	if to == models.StatusDelivered {
		now := time.Now()
		updates["delivered_at"] = now
		order.DeliveredAt = &now
	}
	if err := tx.Model(order).Updates(updates).Error; err != nil {
		return fmt.Errorf("orders: update status: %w", err)
	}
	order.Status = to
	return tx.Create(&models.OrderStatusHistory{
		OrderID:    order.ID,
		FromStatus: from,
		ToStatus:   to,
		ChangedBy:  actorID,
		Note:       note,
	}).Error
}

// LockOrder loads an order for update inside tx.
func LockOrder(tx *gorm.DB, orderID uint) (*models.Order, error) {
	var order models.Order
	if err := store.ForUpdate(tx).First(&order, orderID).Error; err != nil {
		if store.IsNotFound(err) {
			return nil, apperr.NotFound("order %d not found", orderID)
		}
		return nil, err
	}
	return &order, nil
}

// UpdateDeliveryStatus advances an order on behalf of its assigned delivery
// person.
func (s *Service) UpdateDeliveryStatus(ctx context.Context, orderID, deliveryPersonID uint, to models.OrderStatus) (*models.Order, error) {
	var order *models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = LockOrder(tx, orderID)
		if err != nil {
			return err
		}
		if order.DeliveryPersonID == nil || *order.DeliveryPersonID != deliveryPersonID {
			return apperr.InvalidTransition("order %d is not assigned to delivery person %d", orderID, deliveryPersonID)
		}
		note := "Order picked up for delivery"
		if to == models.StatusDelivered {
			note = "Order delivered to customer"
		}
		return Transition(tx, order, to, statemachine.ActorDelivery, deliveryPersonID, note)
	})
	if err != nil {
		log.Warn().Err(err).Uint("order_id", orderID).Uint("delivery_person_id", deliveryPersonID).
			Str("requested", string(to)).Msg("orders: delivery status update rejected")
		return nil, apperr.Wrap("orders.UpdateDeliveryStatus", err)
	}
	log.Info().Uint("order_id", orderID).Str("status", string(to)).Msg("orders: delivery status updated")
	return order, nil
}

// Cancel cancels a pending order nobody has bid on yet and refunds its total.
// actor must be the owning customer or a manager.
func (s *Service) Cancel(ctx context.Context, orderID, actorID uint, actor statemachine.Actor) (*models.Order, error) {
	var order *models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = LockOrder(tx, orderID)
		if err != nil {
			return err
		}
		switch actor {
		case statemachine.ActorCustomer:
			if order.CustomerID != actorID {
				return apperr.Authorization("order %d does not belong to you", orderID)
			}
		case statemachine.ActorManager:
			if _, err := accounts.RequireManager(tx, actorID); err != nil {
				return err
			}
		default:
			return apperr.Authorization("%s cannot cancel orders", actor)
		}

		var bids int64
		if err := tx.Model(&models.DeliveryBid{}).Where("order_id = ?", orderID).Count(&bids).Error; err != nil {
			return err
		}
		if bids > 0 {
			return apperr.InvalidTransition("order %d cannot be cancelled once bidding has begun", orderID)
		}
		if err := Transition(tx, order, models.StatusCancelled, actor, actorID, fmt.Sprintf("Order cancelled by %s", actor)); err != nil {
			return err
		}

		c, err := ledger.Lock(tx, order.CustomerID)
		if err != nil {
			return err
		}
		if order.TotalPrice.IsPositive() {
			if _, err := ledger.Credit(tx, c, order.TotalPrice, ledger.Entry{
				Type:    models.TxRefund,
				OrderID: &order.ID,
				Note:    "order cancelled",
			}); err != nil {
				return err
			}
		}
		c.TotalSpent = floorZero(c.TotalSpent.Sub(order.TotalPrice))
		c.VIPProgressSpend = floorZero(c.VIPProgressSpend.Sub(order.TotalPrice))
		if c.OrderCount > 0 {
			c.OrderCount--
		}
		if order.UsedFreeDeliveryCredit {
			c.FreeDeliveryCredits++
		}
		return reputation.SaveCustomer(tx, c)
	})
	if err != nil {
		log.Warn().Err(err).Uint("order_id", orderID).Msg("orders: cancellation rejected")
		return nil, apperr.Wrap("orders.Cancel", err)
	}
	log.Info().Uint("order_id", orderID).Str("actor", string(actor)).Msg("orders: order cancelled and refunded")
	return order, nil
}

func floorZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Get returns an order with its items and status history.
func (s *Service) Get(ctx context.Context, orderID uint) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		First(&order, orderID).Error
	if err != nil {
		if store.IsNotFound(err) {
			return nil, apperr.NotFound("order %d not found", orderID)
		}
		return nil, fmt.Errorf("orders.Get: %w", err)
	}
	return &order, nil
}

// ListForCustomer returns a customer's orders, newest first.
func (s *Service) ListForCustomer(ctx context.Context, customerID uint) ([]models.Order, error) {
	var list []models.Order
	err := s.db.WithContext(ctx).Preload("Items").
		Where("customer_id = ?", customerID).
		Order("created_at desc").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("orders.ListForCustomer: %w", err)
	}
	return list, nil
}

// ListForDeliveryPerson returns the orders assigned to a delivery person,
// newest first.
func (s *Service) ListForDeliveryPerson(ctx context.Context, deliveryPersonID uint) ([]models.Order, error) {
	var list []models.Order
	err := s.db.WithContext(ctx).Preload("Items").
		Where("delivery_person_id = ?", deliveryPersonID).
		Order("created_at desc, id desc").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("orders.ListForDeliveryPerson: %w", err)
	}
	return list, nil
}
