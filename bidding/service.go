// Package bidding collects delivery bids and turns one of them, or a manual
// choice, into the order's single delivery assignment.
package bidding

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"food-marketplace/accounts"
	"food-marketplace/apperr"
	"food-marketplace/models"
	"food-marketplace/orders"
	"food-marketplace/statemachine"
	"food-marketplace/store"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Manual is an out-of-band assignment with an explicit fee.
type Manual struct {
	DeliveryPersonID uint
	Fee              decimal.Decimal
}

// AssignInput selects exactly one of BidID or Manual.
type AssignInput struct {
	ManagerID     uint
	OrderID       uint
	BidID         *uint
	Manual        *Manual
	Justification string
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// PlaceBid records a delivery person's offer on a pending, unassigned order.
func (s *Service) PlaceBid(ctx context.Context, orderID, deliveryPersonID uint, amount decimal.Decimal) (*models.DeliveryBid, error) {
	amount = amount.Round(2)
	if !amount.IsPositive() {
		return nil, apperr.Validation("bid amount must be positive")
	}

	bid := &models.DeliveryBid{OrderID: orderID, DeliveryPersonID: deliveryPersonID, Amount: amount}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := accounts.RequireDeliveryPerson(tx, deliveryPersonID); err != nil {
			return err
		}
		var order models.Order
		if err := tx.First(&order, orderID).Error; err != nil {
			if store.IsNotFound(err) {
				return apperr.NotFound("order %d not found", orderID)
			}
			return err
		}
		if order.Status != models.StatusPending || order.DeliveryPersonID != nil {
			return apperr.Conflict("order %d is no longer open for bids (status %s)", orderID, order.Status)
		}

		var existing int64
		if err := tx.Model(&models.DeliveryBid{}).
			Where("order_id = ? AND delivery_person_id = ?", orderID, deliveryPersonID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return apperr.Conflict("delivery person %d already bid on order %d", deliveryPersonID, orderID)
		}
		if err := tx.Create(bid).Error; err != nil {
			if store.IsUniqueViolation(err) {
				return apperr.Conflict("delivery person %d already bid on order %d", deliveryPersonID, orderID)
			}
			return err
		}
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Uint("order_id", orderID).Uint("delivery_person_id", deliveryPersonID).Msg("bidding: bid rejected")
		return nil, apperr.Wrap("bidding.PlaceBid", err)
	}

	log.Info().Uint("order_id", orderID).Uint("delivery_person_id", deliveryPersonID).
		Str("amount", amount.StringFixed(2)).Msg("bidding: bid placed")
	return bid, nil
}

// ListBids returns an order's bids, cheapest first.
func (s *Service) ListBids(ctx context.Context, orderID uint) ([]models.DeliveryBid, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).First(&order, orderID).Error; err != nil {
		if store.IsNotFound(err) {
			return nil, apperr.NotFound("order %d not found", orderID)
		}
		return nil, fmt.Errorf("bidding.ListBids: %w", err)
	}
	bids, err := sortedBids(s.db.WithContext(ctx), orderID)
	if err != nil {
		return nil, fmt.Errorf("bidding.ListBids: %w", err)
	}
	return bids, nil
}

// BidsByDeliveryPerson returns every bid a delivery person has placed.
func (s *Service) BidsByDeliveryPerson(ctx context.Context, deliveryPersonID uint) ([]models.DeliveryBid, error) {
	var bids []models.DeliveryBid
	err := s.db.WithContext(ctx).
		Where("delivery_person_id = ?", deliveryPersonID).
		Order("created_at desc, id desc").
		Find(&bids).Error
	if err != nil {
		return nil, fmt.Errorf("bidding.BidsByDeliveryPerson: %w", err)
	}
	return bids, nil
}

// OpenOrder is a pending, unassigned order as a delivery person sees it when
// deciding whether to bid.
type OpenOrder struct {
	Order     models.Order        `json:"order"`
	BidCount  int                 `json:"bid_count"`
	LowestBid decimal.NullDecimal `json:"lowest_bid"`
	MyBid     decimal.NullDecimal `json:"my_bid"`
}

// AvailableOrders lists the orders still open for bids, oldest first, with the
// competition so far and the caller's own bid if any.
func (s *Service) AvailableOrders(ctx context.Context, deliveryPersonID uint) ([]OpenOrder, error) {
	db := s.db.WithContext(ctx)
	if _, err := accounts.RequireDeliveryPerson(db, deliveryPersonID); err != nil {
		return nil, apperr.Wrap("bidding.AvailableOrders", err)
	}

	var open []models.Order
	err := db.Preload("Items").
		Where("status = ? AND delivery_person_id IS NULL", models.StatusPending).
		Order("created_at asc, id asc").
		Find(&open).Error
	if err != nil {
		return nil, fmt.Errorf("bidding.AvailableOrders: %w", err)
	}
	if len(open) == 0 {
		return []OpenOrder{}, nil
	}

	ids := make([]uint, len(open))
	for i, o := range open {
		ids[i] = o.ID
	}
	var bids []models.DeliveryBid
	if err := db.Where("order_id IN ?", ids).Find(&bids).Error; err != nil {
		return nil, fmt.Errorf("bidding.AvailableOrders: %w", err)
	}

	out := make([]OpenOrder, len(open))
	index := make(map[uint]*OpenOrder, len(open))
	for i, o := range open {
		out[i] = OpenOrder{Order: o}
		index[o.ID] = &out[i]
	}
	for _, b := range bids {
		o := index[b.OrderID]
		o.BidCount++
		if !o.LowestBid.Valid || b.Amount.LessThan(o.LowestBid.Decimal) {
			o.LowestBid = decimal.NewNullDecimal(b.Amount)
		}
		if b.DeliveryPersonID == deliveryPersonID {
			o.MyBid = decimal.NewNullDecimal(b.Amount)
		}
	}
	return out, nil
}

func sortedBids(db *gorm.DB, orderID uint) ([]models.DeliveryBid, error) {
	var bids []models.DeliveryBid
	if err := db.Where("order_id = ?", orderID).Order("created_at asc, id asc").Find(&bids).Error; err != nil {
		return nil, err
	}
	slices.SortStableFunc(bids, func(a, b models.DeliveryBid) int { return a.Amount.Cmp(b.Amount) })
	return bids, nil
}

// AssignDelivery binds a delivery person to a pending order and starts
// preparation. Choosing anything other than the cheapest bid needs a
// justification memo.
func (s *Service) AssignDelivery(ctx context.Context, in AssignInput) (*models.DeliveryAssignment, error) {
	if (in.BidID == nil) == (in.Manual == nil) {
		return nil, apperr.Validation("choose either a bid or a manual assignment")
	}
	if in.Manual != nil && !in.Manual.Fee.IsPositive() {
		return nil, apperr.Validation("manual assignment fee must be positive")
	}
	memo := strings.TrimSpace(in.Justification)

	var assignment *models.DeliveryAssignment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := accounts.RequireManager(tx, in.ManagerID); err != nil {
			return err
		}
		order, err := orders.LockOrder(tx, in.OrderID)
		if err != nil {
			return err
		}
		if order.DeliveryPersonID != nil {
			return apperr.Conflict("order %d is already assigned", order.ID)
		}
		if order.Status != models.StatusPending {
			return apperr.Conflict("order %d is %s and cannot be assigned", order.ID, order.Status)
		}

		bids, err := sortedBids(tx, order.ID)
		if err != nil {
			return err
		}

		assignment = &models.DeliveryAssignment{
			OrderID:           order.ID,
			AssignedBy:        in.ManagerID,
			JustificationMemo: memo,
		}
		if in.BidID != nil {
			chosen, lowest := findBid(bids, *in.BidID)
			if chosen == nil {
				return apperr.NotFound("bid %d not found on order %d", *in.BidID, order.ID)
			}
			if chosen.Amount.GreaterThan(lowest) && memo == "" {
				return apperr.Validation("bid %d is not the lowest (%s); a justification memo is required",
					chosen.ID, lowest.StringFixed(2))
			}
			if _, err := accounts.RequireDeliveryPerson(tx, chosen.DeliveryPersonID); err != nil {
				return err
			}
			assignment.DeliveryPersonID = chosen.DeliveryPersonID
			assignment.WinningBidID = &chosen.ID
			assignment.Fee = chosen.Amount
		} else {
			if len(bids) > 0 && memo == "" {
				return apperr.Validation("order %d has bids; a manual assignment requires a justification memo", order.ID)
			}
			if _, err := accounts.RequireDeliveryPerson(tx, in.Manual.DeliveryPersonID); err != nil {
				return err
			}
			assignment.DeliveryPersonID = in.Manual.DeliveryPersonID
			assignment.Fee = in.Manual.Fee.Round(2)
		}

		if err := tx.Create(assignment).Error; err != nil {
			if store.IsUniqueViolation(err) {
				return apperr.Conflict("order %d is already assigned", order.ID)
			}
			return err
		}
		if err := tx.Model(order).Updates(map[string]any{
			"delivery_person_id": assignment.DeliveryPersonID,
			"winning_bid_id":     assignment.WinningBidID,
			"delivery_bid_price": decimal.NewNullDecimal(assignment.Fee),
		}).Error; err != nil {
			return err
		}
		note := fmt.Sprintf("Assigned to delivery person %d", assignment.DeliveryPersonID)
		if memo != "" {
			note += ": " + memo
		}
		return orders.Transition(tx, order, models.StatusPreparing, statemachine.ActorManager, in.ManagerID, note)
	})
	if err != nil {
		log.Warn().Err(err).Uint("order_id", in.OrderID).Uint("manager_id", in.ManagerID).Msg("bidding: assignment rejected")
		return nil, apperr.Wrap("bidding.AssignDelivery", err)
	}

	log.Info().Uint("order_id", in.OrderID).Uint("delivery_person_id", assignment.DeliveryPersonID).
		Str("fee", assignment.Fee.StringFixed(2)).Bool("justified", memo != "").
		Msg("bidding: delivery assigned")
	return assignment, nil
}

// findBid returns the bid with id and the lowest amount among bids, which are
// sorted ascending.
func findBid(bids []models.DeliveryBid, id uint) (*models.DeliveryBid, decimal.Decimal) {
	if len(bids) == 0 {
		return nil, decimal.Zero
	}
	lowest := bids[0].Amount
	for i := range bids {
		if bids[i].ID == id {
			return &bids[i], lowest
		}
	}
	return nil, lowest
}
