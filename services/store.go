package services

import (
	"context"
	"errors"
	"time"

	"github.com/yeremiapane/choprek/models"
	"gorm.io/gorm"
)

// Actor is the authenticated user on whose behalf a mutation runs.
type Actor struct {
	ID   string
	Role string
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

func (a Actor) idPtr() *string {
	if a.ID == "" {
		return nil
	}
	id := a.ID
	return &id
}

// batch runs fn in one transaction: every write inside either commits together or not at all.
func batch(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.WithContext(ctx).Transaction(fn)
}

// recordChange appends outbox rows for ids; it must be called with the transaction
// that performs the mutation so the rows commit with it.
func recordChange(tx *gorm.DB, collection, action string, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	now := time.Now()
	rows := make([]models.StoreChange, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, models.StoreChange{
			Collection: collection,
			DocumentID: id,
			ActionType: action,
			ChangedAt:  now,
		})
	}
	return tx.Create(&rows).Error
}

// activeMenu returns the menu that is both active and published.
func activeMenu(tx *gorm.DB) (*models.Menu, error) {
	var menu models.Menu
	err := tx.Where("is_active = ? AND is_published = ?", true, true).
		Order("updated_at desc").
		First(&menu).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveMenu
		}
		return nil, err
	}
	return &menu, nil
}
