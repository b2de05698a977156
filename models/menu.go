package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MenuItem is a dish offered by a chef. AverageRating and TotalOrders are
// maintained by the rating aggregator.
type MenuItem struct {
	ID             uint            `json:"id" gorm:"primaryKey"`
	ChefID         uint            `json:"chef_id" gorm:"not null;index"`
	Name           string          `json:"name" gorm:"not null"`
	Description    string          `json:"description"`
	Price          decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	Category       string          `json:"category"`
	IsAvailable    bool            `json:"is_available"`
	IsVIPExclusive bool            `json:"is_vip_exclusive" gorm:"column:is_vip_exclusive"`
	AverageRating  float64         `json:"average_rating"`
	TotalOrders    int             `json:"total_orders"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
