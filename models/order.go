package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	OrderSourceUser  = "user"
	OrderSourceGuest = "guest"
)

const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

type Order struct {
	ID            string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Source        string    `gorm:"type:varchar(10);not null" json:"source"`
	UserID        *string   `gorm:"type:varchar(36);index" json:"user_id,omitempty"`
	CustomerName  string    `gorm:"type:varchar(255);not null" json:"customer_name"`
	CustomerEmail string    `gorm:"type:varchar(255)" json:"customer_email,omitempty"`
	Department    string    `gorm:"type:varchar(100)" json:"department,omitempty"`
	MenuID        string    `gorm:"type:varchar(36);index" json:"menu_id"`
	OptionName    string    `gorm:"type:varchar(255);not null" json:"option_name"`
	OptionPrice   float64   `gorm:"type:decimal(10,2);not null" json:"option_price"`
	DietaryTag    string    `gorm:"type:varchar(50)" json:"dietary_tag,omitempty"`
	Quantity      int       `gorm:"not null" json:"quantity"`
	TotalPrice    float64   `gorm:"type:decimal(10,2);not null" json:"total_price"`
	OrderDate     string    `gorm:"type:varchar(10);not null;index" json:"order_date"`
	Status        string    `gorm:"type:varchar(20);not null;index" json:"status"`
	DeliveryID    *string   `gorm:"type:varchar(36);index" json:"delivery_id"`
	Notes         string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null" json:"updated_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = NewID()
	}
	return nil
}

// IsAssigned reports whether the order already rides on a delivery.
func (o *Order) IsAssigned() bool {
	return o.DeliveryID != nil && *o.DeliveryID != ""
}

// orderTransitions lists the statuses reachable from each status.
var orderTransitions = map[string][]string{
	OrderStatusPending:   {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusDelivered, OrderStatusCancelled},
}

// CanTransitionOrder reports whether an order may move from one status to another.
func CanTransitionOrder(from, to string) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsValidOrderStatus reports whether status is one of the known order statuses.
func IsValidOrderStatus(status string) bool {
	switch status {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}
