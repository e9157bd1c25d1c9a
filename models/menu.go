package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MenuOption adalah satu pilihan makanan di menu harian.
type MenuOption struct {
	Name        string  `json:"name" binding:"required"`
	Price       float64 `json:"price" binding:"gte=0"`
	DietaryTag  string  `json:"dietary_tag,omitempty"`
	Description string  `json:"description,omitempty"`
}

type Menu struct {
	ID          string                          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Date        string                          `gorm:"type:varchar(10);not null;index" json:"date"`
	Title       string                          `gorm:"type:varchar(255)" json:"title"`
	Options     datatypes.JSONSlice[MenuOption] `gorm:"not null" json:"options"`
	IsActive    bool                            `gorm:"not null;index" json:"is_active"`
	IsPublished bool                            `gorm:"not null;index" json:"is_published"`
	CreatedAt   time.Time                       `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time                       `gorm:"not null" json:"updated_at"`
}

func (m *Menu) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = NewID()
	}
	return nil
}

// FindOption returns the option with the given name, if the menu carries it.
func (m *Menu) FindOption(name string) (MenuOption, bool) {
	for _, opt := range m.Options {
		if opt.Name == name {
			return opt, true
		}
	}
	return MenuOption{}, false
}
