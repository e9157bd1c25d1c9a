package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	DeliveryMethodMotorcycle = "motorcycle"
	DeliveryMethodTaxi       = "taxi"
)

const (
	DeliveryStatusPending   = "pending"
	DeliveryStatusInTransit = "in_transit"
	DeliveryStatusCompleted = "completed"
)

// Delivery adalah satu kali pengantaran yang membawa sekumpulan order.
// Selama delivery ada, setiap id di OrderIDs harus menunjuk balik lewat Order.DeliveryID.
type Delivery struct {
	ID            string                      `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Method        string                      `gorm:"type:varchar(20);not null" json:"method"`
	DriverID      *string                     `gorm:"type:varchar(36);index" json:"driver_id,omitempty"`
	DriverName    string                      `gorm:"type:varchar(255)" json:"driver_name,omitempty"`
	TaxiService   string                      `gorm:"type:varchar(255)" json:"taxi_service,omitempty"`
	OrderIDs      datatypes.JSONSlice[string] `gorm:"not null" json:"order_ids"`
	DeliveryDate  string                      `gorm:"type:varchar(10);not null;index" json:"delivery_date"`
	DeliveryTime  string                      `gorm:"type:varchar(5)" json:"delivery_time"`
	DeliveryPrice float64                     `gorm:"type:decimal(10,2);not null" json:"delivery_price"`
	Status        string                      `gorm:"type:varchar(20);not null;index" json:"status"`
	Notes         string                      `gorm:"type:text" json:"notes,omitempty"`
	MenuID        string                      `gorm:"type:varchar(36);not null" json:"menu_id"`
	CreatedBy     *string                     `gorm:"type:varchar(36)" json:"created_by,omitempty"`
	CreatedAt     time.Time                   `gorm:"not null;index" json:"created_at"`
	UpdatedAt     time.Time                   `gorm:"not null" json:"updated_at"`
	CompletedAt   *time.Time                  `json:"completed_at,omitempty"`
}

func (d *Delivery) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = NewID()
	}
	return nil
}

// DeliveryWithOrders is a delivery with its order ids resolved to documents.
type DeliveryWithOrders struct {
	Delivery
	Orders []Order `json:"orders"`
}

// CanTransitionDelivery reports whether a delivery may move from one status to another.
// Status is monotonic: pending -> in_transit -> completed, with pending -> completed allowed.
func CanTransitionDelivery(from, to string) bool {
	switch from {
	case DeliveryStatusPending:
		return to == DeliveryStatusInTransit || to == DeliveryStatusCompleted
	case DeliveryStatusInTransit:
		return to == DeliveryStatusCompleted
	}
	return false
}

func IsValidDeliveryMethod(method string) bool {
	return method == DeliveryMethodMotorcycle || method == DeliveryMethodTaxi
}
