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

type CreateDeliveryInput struct {
	Method        string   `json:"method" binding:"required,oneof=motorcycle taxi"`
	DriverID      *string  `json:"driver_id"`
	DriverName    string   `json:"driver_name"`
	TaxiService   string   `json:"taxi_service"`
	OrderIDs      []string `json:"order_ids" binding:"required,min=1,dive,required"`
	DeliveryDate  string   `json:"delivery_date" binding:"required,isodate"`
	DeliveryTime  string   `json:"delivery_time" binding:"omitempty,hhmm"`
	DeliveryPrice float64  `json:"delivery_price" binding:"gte=0"`
	Notes         string   `json:"notes"`
}

// DeliveryUpdate carries the fields to merge; nil fields are left alone.
// OrderIDs is only present so a request trying to change membership can be refused.
type DeliveryUpdate struct {
	DriverID      *string   `json:"driver_id"`
	DriverName    *string   `json:"driver_name"`
	TaxiService   *string   `json:"taxi_service"`
	OrderIDs      *[]string `json:"order_ids"`
	DeliveryDate  *string   `json:"delivery_date" binding:"omitempty,isodate"`
	DeliveryTime  *string   `json:"delivery_time" binding:"omitempty,hhmm"`
	DeliveryPrice *float64  `json:"delivery_price" binding:"omitempty,gte=0"`
	Status        *string   `json:"status"`
	Notes         *string   `json:"notes"`
}

// deliverableStatuses are the order statuses a delivery may pick up.
var deliverableStatuses = []string{models.OrderStatusPending, models.OrderStatusConfirmed}

type DeliveryService struct {
	db    *gorm.DB
	feed  *realtime.Feed
	audit *AuditLogger
}

func NewDeliveryService(db *gorm.DB, feed *realtime.Feed, audit *AuditLogger) *DeliveryService {
	return &DeliveryService{db: db, feed: feed, audit: audit}
}

// CreateDelivery stores a delivery and links every listed order to it in one transaction.
// An order that is missing or already on another delivery aborts the whole creation.
func (s *DeliveryService) CreateDelivery(ctx context.Context, actor Actor, in CreateDeliveryInput) (string, error) {
	var delivery models.Delivery

	err := batch(ctx, s.db, func(tx *gorm.DB) error {
		menu, err := activeMenu(tx)
		if err != nil {
			return err
		}

		delivery, err = s.buildDelivery(tx, in)
		if err != nil {
			return err
		}
		now := time.Now()
		delivery.MenuID = menu.ID
		delivery.CreatedBy = actor.idPtr()
		delivery.Status = models.DeliveryStatusPending
		delivery.CreatedAt = now
		delivery.UpdatedAt = now

		if err := tx.Create(&delivery).Error; err != nil {
			return err
		}

		for _, orderID := range delivery.OrderIDs {
			if err := assignOrder(tx, orderID, delivery.ID, now); err != nil {
				return err
			}
		}

		if err := recordChange(tx, models.CollectionDeliveries, models.ChangeInsert, delivery.ID); err != nil {
			return err
		}
		return recordChange(tx, models.CollectionOrders, models.ChangeUpdate, delivery.OrderIDs...)
	})
	if err != nil {
		return "", fail("create delivery", err, logrus.Fields{"order_ids": in.OrderIDs, "method": in.Method})
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"delivery_id": delivery.ID,
		"orders":      len(delivery.OrderIDs),
	}).Info("Delivery created")
	s.audit.LogDeliveryAction(actor, models.AuditActionCreate, delivery.ID, delivery)
	return delivery.ID, nil
}

// assignOrder claims an unassigned pending or confirmed order for a delivery.
func assignOrder(tx *gorm.DB, orderID, deliveryID string, now time.Time) error {
	res := tx.Model(&models.Order{}).
		Where("id = ? AND delivery_id IS NULL AND status IN ?", orderID, deliverableStatuses).
		Updates(map[string]interface{}{"delivery_id": deliveryID, "updated_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}

	var order models.Order
	if err := tx.First(&order, "id = ?", orderID).Error; err != nil {
		return notFound(err, ErrOrderNotFound, orderID)
	}
	if order.IsAssigned() {
		return errors.Wrapf(ErrOrderAlreadyAssigned, "order %s", orderID)
	}
	return errors.Wrapf(ErrInvalidStatusTransition, "order %s is %s", orderID, order.Status)
}

func (s *DeliveryService) buildDelivery(tx *gorm.DB, in CreateDeliveryInput) (models.Delivery, error) {
	d := models.Delivery{
		Method:        in.Method,
		DeliveryDate:  in.DeliveryDate,
		DeliveryTime:  in.DeliveryTime,
		DeliveryPrice: in.DeliveryPrice,
		Notes:         in.Notes,
	}

	if len(in.OrderIDs) == 0 {
		return d, invalid("a delivery needs at least one order")
	}
	seen := make(map[string]struct{}, len(in.OrderIDs))
	for _, id := range in.OrderIDs {
		if id == "" {
			return d, invalid("order id must not be empty")
		}
		if _, dup := seen[id]; dup {
			return d, invalid("order %s listed twice", id)
		}
		seen[id] = struct{}{}
		d.OrderIDs = append(d.OrderIDs, id)
	}

	if !utils.IsISODate(in.DeliveryDate) {
		return d, invalid("delivery_date must be YYYY-MM-DD, got %q", in.DeliveryDate)
	}
	if in.DeliveryTime != "" && !utils.IsClockTime(in.DeliveryTime) {
		return d, invalid("delivery_time must be HH:MM, got %q", in.DeliveryTime)
	}
	if in.DeliveryPrice < 0 {
		return d, invalid("delivery_price must not be negative")
	}

	switch in.Method {
	case models.DeliveryMethodMotorcycle:
		if in.DriverID == nil || *in.DriverID == "" {
			return d, invalid("motorcycle delivery needs a driver")
		}
		var driver models.DeliveryDriver
		if err := tx.First(&driver, "id = ?", *in.DriverID).Error; err != nil {
			return d, notFound(err, ErrDriverNotFound, *in.DriverID)
		}
		driverID := driver.ID
		d.DriverID = &driverID
		d.DriverName = strings.TrimSpace(in.DriverName)
		if d.DriverName == "" {
			d.DriverName = driver.Name
		}
	case models.DeliveryMethodTaxi:
		d.TaxiService = strings.TrimSpace(in.TaxiService)
		if d.TaxiService == "" {
			return d, invalid("taxi delivery needs a taxi service")
		}
	default:
		return d, invalid("unknown delivery method %q", in.Method)
	}
	return d, nil
}

// UpdateDelivery merges upd into the delivery. Membership cannot change here and the
// only status move allowed is pending -> in_transit.
func (s *DeliveryService) UpdateDelivery(ctx context.Context, actor Actor, id string, upd DeliveryUpdate) error {
	if upd.OrderIDs != nil {
		return fail("update delivery", invalid("order_ids cannot be changed on an existing delivery"), logrus.Fields{"delivery_id": id})
	}

	err := batch(ctx, s.db, func(tx *gorm.DB) error {
		var delivery models.Delivery
		if err := tx.First(&delivery, "id = ?", id).Error; err != nil {
			return notFound(err, ErrDeliveryNotFound, id)
		}

		updates, err := deliveryUpdates(tx, delivery, upd)
		if err != nil {
			return err
		}
		updates["updated_at"] = time.Now()
		if err := tx.Model(&delivery).Updates(updates).Error; err != nil {
			return err
		}
		return recordChange(tx, models.CollectionDeliveries, models.ChangeUpdate, id)
	})
	if err != nil {
		return fail("update delivery", err, logrus.Fields{"delivery_id": id})
	}

	s.audit.LogDeliveryAction(actor, models.AuditActionUpdate, id, upd)
	return nil
}

func deliveryUpdates(tx *gorm.DB, current models.Delivery, upd DeliveryUpdate) (map[string]interface{}, error) {
	updates := map[string]interface{}{}

	if upd.Status != nil && *upd.Status != current.Status {
		if *upd.Status != models.DeliveryStatusInTransit || !models.CanTransitionDelivery(current.Status, *upd.Status) {
			return nil, errors.Wrapf(ErrInvalidStatusTransition, "%s -> %s", current.Status, *upd.Status)
		}
		updates["status"] = *upd.Status
	}
	if upd.DeliveryDate != nil {
		if !utils.IsISODate(*upd.DeliveryDate) {
			return nil, invalid("delivery_date must be YYYY-MM-DD, got %q", *upd.DeliveryDate)
		}
		updates["delivery_date"] = *upd.DeliveryDate
	}
	if upd.DeliveryTime != nil {
		if *upd.DeliveryTime != "" && !utils.IsClockTime(*upd.DeliveryTime) {
			return nil, invalid("delivery_time must be HH:MM, got %q", *upd.DeliveryTime)
		}
		updates["delivery_time"] = *upd.DeliveryTime
	}
	if upd.DeliveryPrice != nil {
		if *upd.DeliveryPrice < 0 {
			return nil, invalid("delivery_price must not be negative")
		}
		updates["delivery_price"] = *upd.DeliveryPrice
	}
	if upd.Notes != nil {
		updates["notes"] = *upd.Notes
	}

	switch current.Method {
	case models.DeliveryMethodMotorcycle:
		if upd.TaxiService != nil {
			return nil, invalid("taxi_service does not apply to a motorcycle delivery")
		}
		if upd.DriverID != nil {
			var driver models.DeliveryDriver
			if err := tx.First(&driver, "id = ?", *upd.DriverID).Error; err != nil {
				return nil, notFound(err, ErrDriverNotFound, *upd.DriverID)
			}
			updates["driver_id"] = driver.ID
			if upd.DriverName == nil {
				updates["driver_name"] = driver.Name
			}
		}
		if upd.DriverName != nil {
			updates["driver_name"] = strings.TrimSpace(*upd.DriverName)
		}
	case models.DeliveryMethodTaxi:
		if upd.DriverID != nil || upd.DriverName != nil {
			return nil, invalid("driver_id and driver_name do not apply to a taxi delivery")
		}
		if upd.TaxiService != nil {
			service := strings.TrimSpace(*upd.TaxiService)
			if service == "" {
				return nil, invalid("taxi delivery needs a taxi service")
			}
			updates["taxi_service"] = service
		}
	}
	return updates, nil
}

// CompleteDelivery marks the delivery completed and every order on it delivered.
func (s *DeliveryService) CompleteDelivery(ctx context.Context, actor Actor, id string) error {
	var delivery models.Delivery

	err := batch(ctx, s.db, func(tx *gorm.DB) error {
		if err := tx.First(&delivery, "id = ?", id).Error; err != nil {
			return notFound(err, ErrDeliveryNotFound, id)
		}
		if !models.CanTransitionDelivery(delivery.Status, models.DeliveryStatusCompleted) {
			return errors.Wrapf(ErrInvalidStatusTransition, "delivery %s is already %s", id, delivery.Status)
		}

		now := time.Now()
		err := tx.Model(&delivery).Updates(map[string]interface{}{
			"status":       models.DeliveryStatusCompleted,
			"completed_at": now,
			"updated_at":   now,
		}).Error
		if err != nil {
			return err
		}

		orderIDs := []string(delivery.OrderIDs)
		if len(orderIDs) > 0 {
			err = tx.Model(&models.Order{}).
				Where("id IN ? AND delivery_id = ?", orderIDs, id).
				Updates(map[string]interface{}{"status": models.OrderStatusDelivered, "updated_at": now}).Error
			if err != nil {
				return err
			}
		}

		if err := recordChange(tx, models.CollectionDeliveries, models.ChangeUpdate, id); err != nil {
			return err
		}
		return recordChange(tx, models.CollectionOrders, models.ChangeUpdate, orderIDs...)
	})
	if err != nil {
		return fail("complete delivery", err, logrus.Fields{"delivery_id": id})
	}

	s.audit.LogDeliveryAction(actor, models.AuditActionComplete, id, map[string]interface{}{
		"order_ids": delivery.OrderIDs,
	})
	return nil
}

// DeleteDelivery releases the delivery's orders back to the pool and removes it.
func (s *DeliveryService) DeleteDelivery(ctx context.Context, actor Actor, id string) error {
	var delivery models.Delivery

	err := batch(ctx, s.db, func(tx *gorm.DB) error {
		if err := tx.First(&delivery, "id = ?", id).Error; err != nil {
			return notFound(err, ErrDeliveryNotFound, id)
		}

		orderIDs := []string(delivery.OrderIDs)
		if len(orderIDs) > 0 {
			err := tx.Model(&models.Order{}).
				Where("id IN ? AND delivery_id = ?", orderIDs, id).
				Updates(map[string]interface{}{"delivery_id": nil, "updated_at": time.Now()}).Error
			if err != nil {
				return err
			}
		}
		if err := tx.Delete(&delivery).Error; err != nil {
			return err
		}

		if err := recordChange(tx, models.CollectionDeliveries, models.ChangeDelete, id); err != nil {
			return err
		}
		return recordChange(tx, models.CollectionOrders, models.ChangeUpdate, orderIDs...)
	})
	if err != nil {
		return fail("delete delivery", err, logrus.Fields{"delivery_id": id})
	}

	s.audit.LogDeliveryAction(actor, models.AuditActionDelete, id, delivery)
	return nil
}

func (s *DeliveryService) GetDeliveryByID(ctx context.Context, id string) (*models.Delivery, error) {
	var delivery models.Delivery
	if err := s.db.WithContext(ctx).First(&delivery, "id = ?", id).Error; err != nil {
		return nil, fail("get delivery", notFound(err, ErrDeliveryNotFound, id), logrus.Fields{"delivery_id": id})
	}
	return &delivery, nil
}

// GetDeliveryWithOrders resolves the delivery's order ids in list order.
// Ids whose order no longer exists are skipped.
func (s *DeliveryService) GetDeliveryWithOrders(ctx context.Context, id string) (*models.DeliveryWithOrders, error) {
	delivery, err := s.GetDeliveryByID(ctx, id)
	if err != nil {
		return nil, err
	}

	result := &models.DeliveryWithOrders{Delivery: *delivery, Orders: []models.Order{}}
	if len(delivery.OrderIDs) == 0 {
		return result, nil
	}

	var orders []models.Order
	if err := s.db.WithContext(ctx).Where("id IN ?", []string(delivery.OrderIDs)).Find(&orders).Error; err != nil {
		return nil, fail("get delivery orders", err, logrus.Fields{"delivery_id": id})
	}
	byID := make(map[string]models.Order, len(orders))
	for _, o := range orders {
		byID[o.ID] = o
	}
	for _, orderID := range delivery.OrderIDs {
		if o, ok := byID[orderID]; ok {
			result.Orders = append(result.Orders, o)
		}
	}
	return result, nil
}

// GetAllDeliveries lists deliveries, newest first.
func (s *DeliveryService) GetAllDeliveries(ctx context.Context) ([]models.Delivery, error) {
	var deliveries []models.Delivery
	if err := s.db.WithContext(ctx).Order("created_at desc").Find(&deliveries).Error; err != nil {
		return nil, fail("get deliveries", err, nil)
	}
	return deliveries, nil
}

// GetDeliveriesByDateRange lists deliveries dated within [startDate, endDate], latest date first.
func (s *DeliveryService) GetDeliveriesByDateRange(ctx context.Context, startDate, endDate string) ([]models.Delivery, error) {
	if err := validateRange(startDate, endDate); err != nil {
		return nil, err
	}
	var deliveries []models.Delivery
	err := s.db.WithContext(ctx).
		Where("delivery_date >= ? AND delivery_date <= ?", startDate, endDate).
		Order("delivery_date desc").
		Find(&deliveries).Error
	if err != nil {
		return nil, fail("get deliveries by date range", err, logrus.Fields{"start_date": startDate, "end_date": endDate})
	}
	return deliveries, nil
}

func (s *DeliveryService) GetDeliveriesByDriver(ctx context.Context, driverID string) ([]models.Delivery, error) {
	var deliveries []models.Delivery
	err := s.db.WithContext(ctx).Where("driver_id = ?", driverID).Order("delivery_date desc").Find(&deliveries).Error
	if err != nil {
		return nil, fail("get deliveries by driver", err, logrus.Fields{"driver_id": driverID})
	}
	return deliveries, nil
}

func (s *DeliveryService) GetDeliveriesByStatus(ctx context.Context, status string) ([]models.Delivery, error) {
	var deliveries []models.Delivery
	err := s.db.WithContext(ctx).Where("status = ?", status).Order("created_at desc").Find(&deliveries).Error
	if err != nil {
		return nil, fail("get deliveries by status", err, logrus.Fields{"status": status})
	}
	return deliveries, nil
}

// SubscribeDeliveries calls fn with all deliveries now and after every delivery change.
// The returned func must be called to stop the subscription.
func (s *DeliveryService) SubscribeDeliveries(fn func([]models.Delivery, error)) (unsubscribe func()) {
	return realtime.Watch(s.feed, models.CollectionDeliveries, s.GetAllDeliveries, fn)
}

// GetConfirmedOrdersForDelivery returns the selection pool: confirmed orders not yet on a
// delivery, for one order date or for all dates when date is empty.
func (s *DeliveryService) GetConfirmedOrdersForDelivery(ctx context.Context, date string) ([]models.Order, error) {
	query := s.db.WithContext(ctx).Where("status = ? AND delivery_id IS NULL", models.OrderStatusConfirmed)
	if date != "" {
		if !utils.IsISODate(date) {
			return nil, invalid("date must be YYYY-MM-DD, got %q", date)
		}
		query = query.Where("order_date = ?", date)
	}

	var orders []models.Order
	if err := query.Order("created_at asc").Find(&orders).Error; err != nil {
		return nil, fail("get confirmed orders", err, logrus.Fields{"date": date})
	}
	return orders, nil
}
