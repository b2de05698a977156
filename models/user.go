package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// UserRole defines allowed roles in the system
type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleChef     UserRole = "chef"
	RoleDelivery UserRole = "delivery"
	RoleManager  UserRole = "manager"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleCustomer, RoleChef, RoleDelivery, RoleManager:
		return true
	}
	return false
}

type User struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	Name         string         `json:"name" gorm:"not null"`
	Email        string         `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string         `json:"-" gorm:"not null"`
	Role         UserRole       `json:"role" gorm:"not null;index"`
	Phone        string         `json:"phone"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

// CustomerTier is the customer's standing, registered or vip
type CustomerTier string

const (
	TierRegistered CustomerTier = "registered"
	TierVIP        CustomerTier = "vip"
)

// Customer holds the deposit balance and standing of a customer account.
// Money columns are rounded to cents before every write.
type Customer struct {
	UserID              uint            `json:"user_id" gorm:"primaryKey;autoIncrement:false"`
	Tier                CustomerTier    `json:"tier" gorm:"not null;default:'registered'"`
	Balance             decimal.Decimal `json:"balance" gorm:"type:decimal(12,2);not null"`
	TotalSpent          decimal.Decimal `json:"total_spent" gorm:"type:decimal(12,2);not null"`
	VIPProgressSpend    decimal.Decimal `json:"vip_progress_spend" gorm:"column:vip_progress_spend;type:decimal(12,2);not null"`
	OrderCount          int             `json:"order_count" gorm:"not null"`
	WarningsCount       int             `json:"warnings_count" gorm:"not null"`
	Blacklisted         bool            `json:"blacklisted" gorm:"not null"`
	FreeDeliveryCredits int             `json:"free_delivery_credits" gorm:"not null"`
	DefaultAddress      string          `json:"default_address"`
	ClosedAt            *time.Time      `json:"closed_at,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

func (c *Customer) IsVIP() bool { return c.Tier == TierVIP }

// EmployeeKind distinguishes chefs from delivery persons
type EmployeeKind string

const (
	KindChef     EmployeeKind = "chef"
	KindDelivery EmployeeKind = "delivery"
)

type Employee struct {
	UserID          uint            `json:"user_id" gorm:"primaryKey;autoIncrement:false"`
	Kind            EmployeeKind    `json:"kind" gorm:"not null;index"`
	Salary          decimal.Decimal `json:"salary" gorm:"type:decimal(12,2);not null"`
	ComplaintCount  int             `json:"complaint_count" gorm:"not null"`
	ComplimentCount int             `json:"compliment_count" gorm:"not null"`
	DemotionCount   int             `json:"demotion_count" gorm:"not null"`
	AverageRating   float64         `json:"average_rating" gorm:"not null"`
	RatingCount     int             `json:"rating_count" gorm:"not null"`
	TerminatedAt    *time.Time      `json:"terminated_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
