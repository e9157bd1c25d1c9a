package services

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/choprek/models"
	"github.com/yeremiapane/choprek/realtime"
	"github.com/yeremiapane/choprek/utils"
	"gorm.io/gorm"
)

type MenuInput struct {
	Date    string              `json:"date" binding:"required,isodate"`
	Title   string              `json:"title"`
	Options []models.MenuOption `json:"options" binding:"required,min=1,dive"`
}

type MenuUpdate struct {
	Date    *string              `json:"date" binding:"omitempty,isodate"`
	Title   *string              `json:"title"`
	Options *[]models.MenuOption `json:"options"`
}

type MenuService struct {
	db   *gorm.DB
	feed *realtime.Feed
}

func NewMenuService(db *gorm.DB, feed *realtime.Feed) *MenuService {
	return &MenuService{db: db, feed: feed}
}

func validateOptions(options []models.MenuOption) error {
	if len(options) == 0 {
		return invalid("a menu needs at least one option")
	}
	seen := make(map[string]struct{}, len(options))
	for _, opt := range options {
		name := strings.TrimSpace(opt.Name)
		if name == "" {
			return invalid("option name is required")
		}
		if opt.Price < 0 {
			return invalid("option %s has a negative price", name)
		}
		if _, dup := seen[name]; dup {
			return invalid("option %s listed twice", name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

// CreateMenu stores a new, inactive and unpublished menu.
func (s *MenuService) CreateMenu(ctx context.Context, in MenuInput) (*models.Menu, error) {
	if !utils.IsISODate(in.Date) {
		return nil, invalid("date must be YYYY-MM-DD, got %q", in.Date)
	}
	if err := validateOptions(in.Options); err != nil {
		return nil, err
	}

	menu := models.Menu{
		Date:    in.Date,
		Title:   strings.TrimSpace(in.Title),
		Options: in.Options,
	}
	err := batch(ctx, s.db, func(tx *gorm.DB) error {
		if err := tx.Create(&menu).Error; err != nil {
			return err
		}
		return recordChange(tx, models.CollectionMenus, models.ChangeInsert, menu.ID)
	})
	if err != nil {
		return nil, fail("create menu", err, logrus.Fields{"date": in.Date})
	}
	return &menu, nil
}

func (s *MenuService) UpdateMenu(ctx context.Context, id string, upd MenuUpdate) (*models.Menu, error) {
	var menu models.Menu
	err := batch(ctx, s.db, func(tx *gorm.DB) error {
		if err := tx.First(&menu, "id = ?", id).Error; err != nil {
			return notFound(err, ErrMenuNotFound, id)
		}
		if upd.Date != nil {
			if !utils.IsISODate(*upd.Date) {
				return invalid("date must be YYYY-MM-DD, got %q", *upd.Date)
			}
			menu.Date = *upd.Date
		}
		if upd.Title != nil {
			menu.Title = strings.TrimSpace(*upd.Title)
		}
		if upd.Options != nil {
			if err := validateOptions(*upd.Options); err != nil {
				return err
			}
			menu.Options = *upd.Options
		}
		if err := tx.Save(&menu).Error; err != nil {
			return err
		}
		return recordChange(tx, models.CollectionMenus, models.ChangeUpdate, id)
	})
	if err != nil {
		return nil, fail("update menu", err, logrus.Fields{"menu_id": id})
	}
	return &menu, nil
}

// DeleteMenu removes a menu unless it is the one currently taking orders.
func (s *MenuService) DeleteMenu(ctx context.Context, id string) error {
	err := batch(ctx, s.db, func(tx *gorm.DB) error {
		var menu models.Menu
		if err := tx.First(&menu, "id = ?", id).Error; err != nil {
			return notFound(err, ErrMenuNotFound, id)
		}
		if menu.IsActive {
			return errors.Wrapf(ErrMenuActive, "menu %s", id)
		}
		if err := tx.Delete(&menu).Error; err != nil {
			return err
		}
		return recordChange(tx, models.CollectionMenus, models.ChangeDelete, id)
	})
	return fail("delete menu", err, logrus.Fields{"menu_id": id})
}

// GetMenus lists menus by date, latest first.
func (s *MenuService) GetMenus(ctx context.Context) ([]models.Menu, error) {
	var menus []models.Menu
	if err := s.db.WithContext(ctx).Order("date desc, created_at desc").Find(&menus).Error; err != nil {
		return nil, fail("get menus", err, nil)
	}
	return menus, nil
}

func (s *MenuService) GetMenuByID(ctx context.Context, id string) (*models.Menu, error) {
	var menu models.Menu
	if err := s.db.WithContext(ctx).First(&menu, "id = ?", id).Error; err != nil {
		return nil, fail("get menu", notFound(err, ErrMenuNotFound, id), logrus.Fields{"menu_id": id})
	}
	return &menu, nil
}

// GetActiveMenu returns the menu that is active and published, or ErrNoActiveMenu.
func (s *MenuService) GetActiveMenu(ctx context.Context) (*models.Menu, error) {
	menu, err := activeMenu(s.db.WithContext(ctx))
	if err != nil {
		return nil, fail("get active menu", err, nil)
	}
	return menu, nil
}

// ActivateMenu makes id the only active menu and publishes it.
func (s *MenuService) ActivateMenu(ctx context.Context, id string) error {
	err := batch(ctx, s.db, func(tx *gorm.DB) error {
		var menu models.Menu
		if err := tx.First(&menu, "id = ?", id).Error; err != nil {
			return notFound(err, ErrMenuNotFound, id)
		}

		var previous []string
		if err := tx.Model(&models.Menu{}).Where("is_active = ? AND id <> ?", true, id).Pluck("id", &previous).Error; err != nil {
			return err
		}
		now := time.Now()
		if len(previous) > 0 {
			err := tx.Model(&models.Menu{}).
				Where("id IN ?", previous).
				Updates(map[string]interface{}{"is_active": false, "updated_at": now}).Error
			if err != nil {
				return err
			}
		}

		err := tx.Model(&menu).Updates(map[string]interface{}{
			"is_active":    true,
			"is_published": true,
			"updated_at":   now,
		}).Error
		if err != nil {
			return err
		}
		return recordChange(tx, models.CollectionMenus, models.ChangeUpdate, append(previous, id)...)
	})
	if err != nil {
		return fail("activate menu", err, logrus.Fields{"menu_id": id})
	}
	utils.InfoLogger.WithField("menu_id", id).Info("Menu activated")
	return nil
}

// SetMenuPublished toggles visibility. An unpublished menu cannot stay active.
func (s *MenuService) SetMenuPublished(ctx context.Context, id string, published bool) error {
	err := batch(ctx, s.db, func(tx *gorm.DB) error {
		var menu models.Menu
		if err := tx.First(&menu, "id = ?", id).Error; err != nil {
			return notFound(err, ErrMenuNotFound, id)
		}
		updates := map[string]interface{}{"is_published": published, "updated_at": time.Now()}
		if !published {
			updates["is_active"] = false
		}
		if err := tx.Model(&menu).Updates(updates).Error; err != nil {
			return err
		}
		return recordChange(tx, models.CollectionMenus, models.ChangeUpdate, id)
	})
	return fail("set menu published", err, logrus.Fields{"menu_id": id, "published": published})
}

// SubscribeMenus calls fn with all menus now and after every menu change.
func (s *MenuService) SubscribeMenus(fn func([]models.Menu, error)) (unsubscribe func()) {
	return realtime.Watch(s.feed, models.CollectionMenus, s.GetMenus, fn)
}
