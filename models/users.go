package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
)

type User struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name       string    `gorm:"type:varchar(255); not null" json:"name"`
	Email      string    `gorm:"type:varchar(255); unique;not null" json:"email"`
	Password   string    `gorm:"type:varchar(255); not null" json:"-"`
	Role       string    `gorm:"type:varchar(20); not null" json:"role"`
	Department string    `gorm:"type:varchar(100)" json:"department,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = NewID()
	}
	return nil
}
