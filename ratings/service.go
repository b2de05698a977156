// Package ratings records star ratings for delivered orders and keeps the
// dish, chef and delivery person averages current.
package ratings

import (
	"context"

	"food-marketplace/accounts"
	"food-marketplace/apperr"
	"food-marketplace/models"
	"food-marketplace/reputation"
	"food-marketplace/store"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	MinStars = 1
	MaxStars = 5
)

type FoodResult struct {
	Rating      models.FoodRating         `json:"rating"`
	ChefID      uint                      `json:"chef_id"`
	DishAverage float64                   `json:"dish_average"`
	ChefAverage float64                   `json:"chef_average"`
	Chef        reputation.EmployeeSignal `json:"chef"`
}

type DeliveryResult struct {
	Rating          models.DeliveryRating     `json:"rating"`
	DeliveryAverage float64                   `json:"delivery_average"`
	DeliveryPerson  reputation.EmployeeSignal `json:"delivery_person"`
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

type aggregate struct {
	Avg   float64
	Count int
}

func checkStars(stars int) error {
	if stars < MinStars || stars > MaxStars {
		return apperr.Validation("stars must be between %d and %d, got %d", MinStars, MaxStars, stars)
	}
	return nil
}

// deliveredOrder loads orderID and checks that customerID placed it and that
// it has been delivered.
func deliveredOrder(tx *gorm.DB, customerID, orderID uint) (*models.Order, error) {
	if _, err := accounts.RequireCustomer(tx, customerID); err != nil {
		return nil, err
	}
	var order models.Order
	if err := tx.First(&order, orderID).Error; err != nil {
		if store.IsNotFound(err) {
			return nil, apperr.NotFound("order %d not found", orderID)
		}
		return nil, err
	}
	if order.CustomerID != customerID {
		return nil, apperr.Authorization("order %d does not belong to customer %d", orderID, customerID)
	}
	if order.Status != models.StatusDelivered {
		return nil, apperr.Validation("order %d is %s; only delivered orders can be rated", orderID, order.Status)
	}
	return &order, nil
}

// applyRating feeds a recomputed average into an employee's standing.
// Terminated employees keep their average but no longer change standing.
func applyRating(tx *gorm.DB, employeeID uint, agg aggregate) (reputation.EmployeeSignal, error) {
	e, err := reputation.LockEmployee(tx, employeeID)
	if err != nil {
		return reputation.EmployeeSignal{}, err
	}
	var sig reputation.EmployeeSignal
	if e.TerminatedAt == nil {
		sig = reputation.UpdateRating(e, agg.Avg, agg.Count)
	} else {
		e.AverageRating, e.RatingCount = agg.Avg, agg.Count
	}
	if err := reputation.SaveEmployee(tx, e); err != nil {
		return sig, err
	}
	if sig.Terminated {
		return sig, accounts.TerminateEmployee(tx, e, "second demotion")
	}
	return sig, nil
}

// RateFood rates one line of a delivered order. The dish average and the
// chef's average across all of their dishes are recomputed.
func (s *Service) RateFood(ctx context.Context, customerID, orderItemID uint, stars int, comment string) (*FoodResult, error) {
	if err := checkStars(stars); err != nil {
		return nil, err
	}

	out := &FoodResult{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var line models.OrderItem
		if err := tx.First(&line, orderItemID).Error; err != nil {
			if store.IsNotFound(err) {
				return apperr.NotFound("order item %d not found", orderItemID)
			}
			return err
		}
		if _, err := deliveredOrder(tx, customerID, line.OrderID); err != nil {
			return err
		}

		var dish models.MenuItem
		if err := store.ForUpdate(tx).First(&dish, line.MenuItemID).Error; err != nil {
			if store.IsNotFound(err) {
				return apperr.NotFound("menu item %d not found", line.MenuItemID)
			}
			return err
		}

		out.Rating = models.FoodRating{
			OrderItemID: line.ID,
			CustomerID:  customerID,
			MenuItemID:  dish.ID,
			Stars:       stars,
			Comment:     comment,
		}
		if err := tx.Create(&out.Rating).Error; err != nil {
			if store.IsUniqueViolation(err) {
				return apperr.Conflict("order item %d has already been rated", orderItemID)
			}
			return err
		}

		var dishAgg aggregate
		if err := tx.Model(&models.FoodRating{}).
			Select("COALESCE(AVG(stars), 0) AS avg, COUNT(*) AS count").
			Where("menu_item_id = ?", dish.ID).
			Scan(&dishAgg).Error; err != nil {
			return err
		}
		if err := tx.Model(&dish).Updates(map[string]any{
			"average_rating": dishAgg.Avg,
			"total_orders":   gorm.Expr("total_orders + ?", 1),
		}).Error; err != nil {
			return err
		}
		out.DishAverage = dishAgg.Avg

		var chefAgg aggregate
		if err := tx.Table("food_ratings").
			Select("COALESCE(AVG(food_ratings.stars), 0) AS avg, COUNT(*) AS count").
			Joins("JOIN menu_items ON menu_items.id = food_ratings.menu_item_id").
			Where("menu_items.chef_id = ?", dish.ChefID).
			Scan(&chefAgg).Error; err != nil {
			return err
		}
		out.ChefID = dish.ChefID
		out.ChefAverage = chefAgg.Avg
		sig, err := applyRating(tx, dish.ChefID, chefAgg)
		out.Chef = sig
		return err
	})
	if err != nil {
		log.Warn().Err(err).Uint("order_item_id", orderItemID).Msg("ratings: food rating rejected")
		return nil, apperr.Wrap("ratings.RateFood", err)
	}

	log.Info().Uint("menu_item_id", out.Rating.MenuItemID).Int("stars", stars).
		Float64("dish_average", out.DishAverage).Float64("chef_average", out.ChefAverage).
		Bool("chef_demoted", out.Chef.Demoted).Msg("ratings: food rated")
	return out, nil
}

// RateDelivery rates the delivery person assigned to a delivered order.
func (s *Service) RateDelivery(ctx context.Context, customerID, orderID uint, stars int, comment string) (*DeliveryResult, error) {
	if err := checkStars(stars); err != nil {
		return nil, err
	}

	out := &DeliveryResult{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := deliveredOrder(tx, customerID, orderID)
		if err != nil {
			return err
		}
		if order.DeliveryPersonID == nil {
			return apperr.Validation("order %d has no delivery person to rate", orderID)
		}

		out.Rating = models.DeliveryRating{
			OrderID:          order.ID,
			CustomerID:       customerID,
			DeliveryPersonID: *order.DeliveryPersonID,
			Stars:            stars,
			Comment:          comment,
		}
		if err := tx.Create(&out.Rating).Error; err != nil {
			if store.IsUniqueViolation(err) {
				return apperr.Conflict("delivery of order %d has already been rated", orderID)
			}
			return err
		}

		var agg aggregate
		if err := tx.Model(&models.DeliveryRating{}).
			Select("COALESCE(AVG(stars), 0) AS avg, COUNT(*) AS count").
			Where("delivery_person_id = ?", *order.DeliveryPersonID).
			Scan(&agg).Error; err != nil {
			return err
		}
		out.DeliveryAverage = agg.Avg
		sig, err := applyRating(tx, *order.DeliveryPersonID, agg)
		out.DeliveryPerson = sig
		return err
	})
	if err != nil {
		log.Warn().Err(err).Uint("order_id", orderID).Msg("ratings: delivery rating rejected")
		return nil, apperr.Wrap("ratings.RateDelivery", err)
	}

	log.Info().Uint("delivery_person_id", out.Rating.DeliveryPersonID).Int("stars", stars).
		Float64("average", out.DeliveryAverage).Bool("demoted", out.DeliveryPerson.Demoted).
		Msg("ratings: delivery rated")
	return out, nil
}
