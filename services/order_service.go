package services

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/choprek/models"
	"github.com/yeremiapane/choprek/utils"
	"gorm.io/gorm"
)

// CreateOrderInput is one menu selection. GuestName marks an order placed by an admin
// on behalf of someone without an account.
type CreateOrderInput struct {
	OptionName string `json:"option_name" binding:"required"`
	Quantity   int    `json:"quantity" binding:"required,min=1"`
	OrderDate  string `json:"order_date" binding:"omitempty,isodate"`
	Notes      string `json:"notes"`
	GuestName  string `json:"guest_name"`
	GuestEmail string `json:"guest_email" binding:"omitempty,email"`
	Department string `json:"department"`
}

type OrderFilter struct {
	Status     string `form:"status"`
	Date       string `form:"date"`
	Source     string `form:"source"`
	UserID     string `form:"user_id"`
	Unassigned bool   `form:"unassigned"`
}

type OrderService struct {
	db *gorm.DB
}

func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{db: db}
}

// CreateOrder prices the selection against the active menu and stores it as pending.
func (s *OrderService) CreateOrder(ctx context.Context, actor Actor, in CreateOrderInput) (*models.Order, error) {
	if in.Quantity < 1 {
		return nil, fail("create order", invalid("quantity must be at least 1"), nil)
	}
	if in.OrderDate != "" && !utils.IsISODate(in.OrderDate) {
		return nil, fail("create order", invalid("order_date must be YYYY-MM-DD, got %q", in.OrderDate), nil)
	}

	var order models.Order
	err := batch(ctx, s.db, func(tx *gorm.DB) error {
		menu, err := activeMenu(tx)
		if err != nil {
			return err
		}
		option, ok := menu.FindOption(in.OptionName)
		if !ok {
			return errors.Wrapf(ErrOptionNotOnMenu, "option %q", in.OptionName)
		}

		order = models.Order{
			MenuID:      menu.ID,
			OptionName:  option.Name,
			OptionPrice: option.Price,
			DietaryTag:  option.DietaryTag,
			Quantity:    in.Quantity,
			TotalPrice:  option.Price * float64(in.Quantity),
			OrderDate:   in.OrderDate,
			Status:      models.OrderStatusPending,
			Notes:       in.Notes,
		}
		if order.OrderDate == "" {
			order.OrderDate = menu.Date
		}

		if guest := strings.TrimSpace(in.GuestName); guest != "" {
			if !actor.IsAdmin() {
				return errors.Wrap(ErrPermissionDenied, "only admins can order for guests")
			}
			order.Source = models.OrderSourceGuest
			order.CustomerName = guest
			order.CustomerEmail = in.GuestEmail
			order.Department = in.Department
		} else {
			var user models.User
			if err := tx.First(&user, "id = ?", actor.ID).Error; err != nil {
				return notFound(err, ErrUserNotFound, actor.ID)
			}
			order.Source = models.OrderSourceUser
			order.UserID = &user.ID
			order.CustomerName = user.Name
			order.CustomerEmail = user.Email
			order.Department = user.Department
		}

		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		return recordChange(tx, models.CollectionOrders, models.ChangeInsert, order.ID)
	})
	if err != nil {
		return nil, fail("create order", err, logrus.Fields{"option": in.OptionName, "actor_id": actor.ID})
	}
	return &order, nil
}

// UpdateOrderStatus moves an order along its lifecycle. Employees may only cancel their
// own orders; an order riding on a delivery cannot be cancelled.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, actor Actor, id, status string) error {
	if !models.IsValidOrderStatus(status) {
		return fail("update order status", invalid("unknown order status %q", status), logrus.Fields{"order_id": id})
	}

	err := batch(ctx, s.db, func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, "id = ?", id).Error; err != nil {
			return notFound(err, ErrOrderNotFound, id)
		}
		if !actor.IsAdmin() {
			if order.UserID == nil || *order.UserID != actor.ID || status != models.OrderStatusCancelled {
				return errors.Wrapf(ErrPermissionDenied, "order %s", id)
			}
		}
		if !models.CanTransitionOrder(order.Status, status) {
			return errors.Wrapf(ErrInvalidStatusTransition, "%s -> %s", order.Status, status)
		}
		if status == models.OrderStatusCancelled && order.IsAssigned() {
			return errors.Wrapf(ErrOrderAlreadyAssigned, "order %s is on delivery %s", id, *order.DeliveryID)
		}

		err := tx.Model(&order).Updates(map[string]interface{}{"status": status, "updated_at": time.Now()}).Error
		if err != nil {
			return err
		}
		return recordChange(tx, models.CollectionOrders, models.ChangeUpdate, id)
	})
	return fail("update order status", err, logrus.Fields{"order_id": id, "status": status})
}

// ConfirmOrders confirms every pending order for date and returns how many changed.
func (s *OrderService) ConfirmOrders(ctx context.Context, date string) (int, error) {
	if !utils.IsISODate(date) {
		return 0, fail("confirm orders", invalid("date must be YYYY-MM-DD, got %q", date), nil)
	}

	var ids []string
	err := batch(ctx, s.db, func(tx *gorm.DB) error {
		err := tx.Model(&models.Order{}).
			Where("order_date = ? AND status = ?", date, models.OrderStatusPending).
			Pluck("id", &ids).Error
		if err != nil || len(ids) == 0 {
			return err
		}
		err = tx.Model(&models.Order{}).
			Where("id IN ?", ids).
			Updates(map[string]interface{}{"status": models.OrderStatusConfirmed, "updated_at": time.Now()}).Error
		if err != nil {
			return err
		}
		return recordChange(tx, models.CollectionOrders, models.ChangeUpdate, ids...)
	})
	if err != nil {
		return 0, fail("confirm orders", err, logrus.Fields{"date": date})
	}
	return len(ids), nil
}

// GetOrders lists orders matching filter, newest first.
func (s *OrderService) GetOrders(ctx context.Context, filter OrderFilter) ([]models.Order, error) {
	query := s.db.WithContext(ctx)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Date != "" {
		query = query.Where("order_date = ?", filter.Date)
	}
	if filter.Source != "" {
		query = query.Where("source = ?", filter.Source)
	}
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Unassigned {
		query = query.Where("delivery_id IS NULL")
	}

	var orders []models.Order
	if err := query.Order("created_at desc").Find(&orders).Error; err != nil {
		return nil, fail("get orders", err, nil)
	}
	return orders, nil
}

func (s *OrderService) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, fail("get order", notFound(err, ErrOrderNotFound, id), logrus.Fields{"order_id": id})
	}
	return &order, nil
}

func (s *OrderService) GetMyOrders(ctx context.Context, userID string) ([]models.Order, error) {
	return s.GetOrders(ctx, OrderFilter{UserID: userID})
}

// DeleteOrder removes an order that is not on any delivery.
func (s *OrderService) DeleteOrder(ctx context.Context, id string) error {
	err := batch(ctx, s.db, func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, "id = ?", id).Error; err != nil {
			return notFound(err, ErrOrderNotFound, id)
		}
		if order.IsAssigned() {
			return errors.Wrapf(ErrOrderAlreadyAssigned, "order %s is on delivery %s", id, *order.DeliveryID)
		}
		if err := tx.Delete(&order).Error; err != nil {
			return err
		}
		return recordChange(tx, models.CollectionOrders, models.ChangeDelete, id)
	})
	return fail("delete order", err, logrus.Fields{"order_id": id})
}
