package models

import (
	"time"

	"gorm.io/gorm"
)

type DeliveryDriver struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null;index" json:"name"`
	Phone     *string   `gorm:"type:varchar(30)" json:"phone,omitempty"`
	IsActive  bool      `gorm:"not null" json:"is_active"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (d *DeliveryDriver) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = NewID()
	}
	return nil
}
