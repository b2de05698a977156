package models

import "time"

// TargetType names the kind of account a complaint or compliment is about
type TargetType string

const (
	TargetChef     TargetType = "chef"
	TargetDelivery TargetType = "delivery"
	TargetCustomer TargetType = "customer"
)

type ComplaintStatus string

const (
	ComplaintPending   ComplaintStatus = "pending"
	ComplaintUpheld    ComplaintStatus = "upheld"
	ComplaintDismissed ComplaintStatus = "dismissed"
	ComplaintCancelled ComplaintStatus = "cancelled" // upheld, then absorbed by a compliment
)

type Complaint struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	ComplainantID uint            `json:"complainant_id" gorm:"not null;index"`
	TargetUserID  uint            `json:"target_user_id" gorm:"not null;index"`
	TargetType    TargetType      `json:"target_type" gorm:"not null"`
	OrderID       *uint           `json:"order_id"`
	Description   string          `json:"description" gorm:"not null"`
	Weight        int             `json:"weight" gorm:"not null;default:1"`
	Status        ComplaintStatus `json:"status" gorm:"not null;default:'pending';index"`
	DisputeText   string          `json:"dispute_text"`
	DisputedAt    *time.Time      `json:"disputed_at,omitempty"`
	ManagerNotes  string          `json:"manager_notes"`
	ProcessedBy   *uint           `json:"processed_by"`
	ProcessedAt   *time.Time      `json:"processed_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type ComplimentStatus string

const (
	ComplimentPending   ComplimentStatus = "pending"
	ComplimentApproved  ComplimentStatus = "approved"
	ComplimentDismissed ComplimentStatus = "dismissed"
)

type Compliment struct {
	ID           uint             `json:"id" gorm:"primaryKey"`
	AuthorID     uint             `json:"author_id" gorm:"not null;index"`
	TargetUserID uint             `json:"target_user_id" gorm:"not null;index"`
	TargetType   TargetType       `json:"target_type" gorm:"not null"`
	OrderID      *uint            `json:"order_id"`
	Description  string           `json:"description" gorm:"not null"`
	Weight       int              `json:"weight" gorm:"not null;default:1"`
	Status       ComplimentStatus `json:"status" gorm:"not null;default:'pending';index"`
	ProcessedBy  *uint            `json:"processed_by"`
	ProcessedAt  *time.Time       `json:"processed_at,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

type FoodRating struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	OrderItemID uint      `json:"order_item_id" gorm:"not null;uniqueIndex:idx_food_rating_rater"`
	CustomerID  uint      `json:"customer_id" gorm:"not null;uniqueIndex:idx_food_rating_rater"`
	MenuItemID  uint      `json:"menu_item_id" gorm:"not null;index"`
	Stars       int       `json:"stars" gorm:"not null"`
	Comment     string    `json:"comment"`
	CreatedAt   time.Time `json:"created_at"`
}

type DeliveryRating struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	OrderID          uint      `json:"order_id" gorm:"not null;uniqueIndex:idx_delivery_rating_rater"`
	CustomerID       uint      `json:"customer_id" gorm:"not null;uniqueIndex:idx_delivery_rating_rater"`
	DeliveryPersonID uint      `json:"delivery_person_id" gorm:"not null;index"`
	Stars            int       `json:"stars" gorm:"not null"`
	Comment          string    `json:"comment"`
	CreatedAt        time.Time `json:"created_at"`
}
