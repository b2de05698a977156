package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents all possible states of an order
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusPreparing  OrderStatus = "preparing"
	StatusDelivering OrderStatus = "delivering"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

type Order struct {
	ID                     uint                 `json:"id" gorm:"primaryKey"`
	CustomerID             uint                 `json:"customer_id" gorm:"not null;index"`
	Status                 OrderStatus          `json:"status" gorm:"not null;default:'pending';index"`
	Subtotal               decimal.Decimal      `json:"subtotal" gorm:"type:decimal(12,2);not null"`
	Discount               decimal.Decimal      `json:"discount" gorm:"type:decimal(12,2);not null"`
	DeliveryFee            decimal.Decimal      `json:"delivery_fee" gorm:"type:decimal(12,2);not null"`
	DriverFee              decimal.Decimal      `json:"driver_fee" gorm:"type:decimal(12,2);not null"`
	TotalPrice             decimal.Decimal      `json:"total_price" gorm:"type:decimal(12,2);not null"`
	IsFreeDelivery         bool                 `json:"is_free_delivery"`
	UsedFreeDeliveryCredit bool                 `json:"used_free_delivery_credit"`
	DeliveryAddress        string               `json:"delivery_address" gorm:"not null"`
	DeliveryPersonID       *uint                `json:"delivery_person_id" gorm:"index"`
	WinningBidID           *uint                `json:"winning_bid_id"`
	DeliveryBidPrice       decimal.NullDecimal  `json:"delivery_bid_price" gorm:"type:decimal(12,2)"`
	DeliveredAt            *time.Time           `json:"delivered_at,omitempty"`
	Items                  []OrderItem          `json:"items,omitempty" gorm:"foreignKey:OrderID"`
	StatusHistory          []OrderStatusHistory `json:"status_history,omitempty" gorm:"foreignKey:OrderID"`
	CreatedAt              time.Time            `json:"created_at"`
	UpdatedAt              time.Time            `json:"updated_at"`
}

type OrderItem struct {
	ID         uint            `json:"id" gorm:"primaryKey"`
	OrderID    uint            `json:"order_id" gorm:"not null;index"`
	MenuItemID uint            `json:"menu_item_id" gorm:"not null;index"`
	Quantity   int             `json:"quantity" gorm:"not null"`
	Price      decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"` // snapshot price at time of order
	Name       string          `json:"name"`                                     // snapshot name
}

// OrderStatusHistory tracks every status change
type OrderStatusHistory struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	OrderID    uint        `json:"order_id" gorm:"not null;index"`
	FromStatus OrderStatus `json:"from_status"`
	ToStatus   OrderStatus `json:"to_status" gorm:"not null"`
	ChangedBy  uint        `json:"changed_by"` // user ID who triggered the transition
	Note       string      `json:"note"`
	CreatedAt  time.Time   `json:"created_at"`
}

// DeliveryBid is a delivery person's offer to deliver an order.
type DeliveryBid struct {
	ID               uint            `json:"id" gorm:"primaryKey"`
	OrderID          uint            `json:"order_id" gorm:"not null;uniqueIndex:idx_bid_order_courier"`
	DeliveryPersonID uint            `json:"delivery_person_id" gorm:"not null;uniqueIndex:idx_bid_order_courier"`
	Amount           decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	CreatedAt        time.Time       `json:"created_at"`
}

// DeliveryAssignment binds exactly one delivery person to an order.
type DeliveryAssignment struct {
	ID                uint            `json:"id" gorm:"primaryKey"`
	OrderID           uint            `json:"order_id" gorm:"not null;uniqueIndex"`
	DeliveryPersonID  uint            `json:"delivery_person_id" gorm:"not null;index"`
	AssignedBy        uint            `json:"assigned_by" gorm:"not null"`
	WinningBidID      *uint           `json:"winning_bid_id"`
	Fee               decimal.Decimal `json:"fee" gorm:"type:decimal(12,2);not null"`
	JustificationMemo string          `json:"justification_memo"`
	CreatedAt         time.Time       `json:"created_at"`
}
