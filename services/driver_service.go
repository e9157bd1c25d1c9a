package services

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/choprek/models"
	"github.com/yeremiapane/choprek/realtime"
	"gorm.io/gorm"
)

type DriverInput struct {
	Name     string  `json:"name" binding:"required"`
	Phone    *string `json:"phone"`
	IsActive *bool   `json:"is_active"`
}

type DriverUpdate struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	IsActive *bool   `json:"is_active"`
}

// DriverStatistics is the lifetime (or windowed) summary of one driver's deliveries.
type DriverStatistics struct {
	DriverID        string         `json:"driver_id"`
	TotalDeliveries int            `json:"total_deliveries"`
	TotalOrders     int            `json:"total_orders"`
	TotalEarnings   float64        `json:"total_earnings"`
	StatusCounts    map[string]int `json:"status_counts"`
}

type DriverService struct {
	db   *gorm.DB
	feed *realtime.Feed
}

func NewDriverService(db *gorm.DB, feed *realtime.Feed) *DriverService {
	return &DriverService{db: db, feed: feed}
}

func (s *DriverService) CreateDriver(ctx context.Context, in DriverInput) (*models.DeliveryDriver, error) {
	driver := models.DeliveryDriver{
		Name:      strings.TrimSpace(in.Name),
		Phone:     in.Phone,
		IsActive:  true,
		CreatedAt: time.Now(),
	}
	if in.IsActive != nil {
		driver.IsActive = *in.IsActive
	}
	if driver.Name == "" {
		return nil, invalid("driver name is required")
	}

	err := batch(ctx, s.db, func(tx *gorm.DB) error {
		if err := tx.Create(&driver).Error; err != nil {
			return err
		}
		return recordChange(tx, models.CollectionDrivers, models.ChangeInsert, driver.ID)
	})
	if err != nil {
		return nil, fail("create driver", err, logrus.Fields{"name": driver.Name})
	}
	return &driver, nil
}

func (s *DriverService) UpdateDriver(ctx context.Context, id string, upd DriverUpdate) error {
	updates := map[string]interface{}{}
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return invalid("driver name must not be empty")
		}
		updates["name"] = name
	}
	if upd.Phone != nil {
		updates["phone"] = *upd.Phone
	}
	if upd.IsActive != nil {
		updates["is_active"] = *upd.IsActive
	}
	return s.applyUpdates(ctx, "update driver", id, updates)
}

// ToggleDriverStatus sets whether the driver is offered when assigning deliveries.
func (s *DriverService) ToggleDriverStatus(ctx context.Context, id string, active bool) error {
	return s.applyUpdates(ctx, "toggle driver status", id, map[string]interface{}{"is_active": active})
}

func (s *DriverService) applyUpdates(ctx context.Context, op, id string, updates map[string]interface{}) error {
	err := batch(ctx, s.db, func(tx *gorm.DB) error {
		var driver models.DeliveryDriver
		if err := tx.First(&driver, "id = ?", id).Error; err != nil {
			return notFound(err, ErrDriverNotFound, id)
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&driver).Updates(updates).Error; err != nil {
			return err
		}
		return recordChange(tx, models.CollectionDrivers, models.ChangeUpdate, id)
	})
	return fail(op, err, logrus.Fields{"driver_id": id})
}

// DeleteDriver removes a driver that no delivery references.
func (s *DriverService) DeleteDriver(ctx context.Context, id string) error {
	err := batch(ctx, s.db, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Delivery{}).Where("driver_id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errors.Wrapf(ErrDriverHasDeliveries, "driver %s has %d deliveries", id, count)
		}

		res := tx.Where("id = ?", id).Delete(&models.DeliveryDriver{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errors.Wrapf(ErrDriverNotFound, "id %s", id)
		}
		return recordChange(tx, models.CollectionDrivers, models.ChangeDelete, id)
	})
	return fail("delete driver", err, logrus.Fields{"driver_id": id})
}

// GetAllDrivers lists every driver ordered by name.
func (s *DriverService) GetAllDrivers(ctx context.Context) ([]models.DeliveryDriver, error) {
	var drivers []models.DeliveryDriver
	if err := s.db.WithContext(ctx).Order("name asc").Find(&drivers).Error; err != nil {
		return nil, fail("get drivers", err, nil)
	}
	return drivers, nil
}

func (s *DriverService) GetActiveDrivers(ctx context.Context) ([]models.DeliveryDriver, error) {
	var drivers []models.DeliveryDriver
	if err := s.db.WithContext(ctx).Where("is_active = ?", true).Order("name asc").Find(&drivers).Error; err != nil {
		return nil, fail("get active drivers", err, nil)
	}
	return drivers, nil
}

func (s *DriverService) GetDriverByID(ctx context.Context, id string) (*models.DeliveryDriver, error) {
	var driver models.DeliveryDriver
	if err := s.db.WithContext(ctx).First(&driver, "id = ?", id).Error; err != nil {
		return nil, fail("get driver", notFound(err, ErrDriverNotFound, id), logrus.Fields{"driver_id": id})
	}
	return &driver, nil
}

// SubscribeDrivers calls fn with the full driver list now and after every driver change.
// The returned func must be called to stop the subscription.
func (s *DriverService) SubscribeDrivers(fn func([]models.DeliveryDriver, error)) (unsubscribe func()) {
	return realtime.Watch(s.feed, models.CollectionDrivers, s.GetAllDrivers, fn)
}

// GetDriverStatistics folds a driver's deliveries, optionally limited to [startDate, endDate].
// Empty bounds are open.
func (s *DriverService) GetDriverStatistics(ctx context.Context, id, startDate, endDate string) (*DriverStatistics, error) {
	deliveries, err := s.driverDeliveries(ctx, id, startDate, endDate)
	if err != nil {
		return nil, fail("get driver statistics", err, logrus.Fields{"driver_id": id})
	}

	stats := &DriverStatistics{
		DriverID: id,
		StatusCounts: map[string]int{
			models.DeliveryStatusPending:   0,
			models.DeliveryStatusInTransit: 0,
			models.DeliveryStatusCompleted: 0,
		},
	}
	for _, d := range deliveries {
		stats.TotalDeliveries++
		stats.TotalOrders += len(d.OrderIDs)
		stats.TotalEarnings += d.DeliveryPrice
		stats.StatusCounts[d.Status]++
	}
	return stats, nil
}

// GetDriverPerformance returns one report row for the driver over [weekStart, weekEnd].
func (s *DriverService) GetDriverPerformance(ctx context.Context, id, weekStart, weekEnd string) (*DriverPerformance, error) {
	if err := validateRange(weekStart, weekEnd); err != nil {
		return nil, err
	}
	driver, err := s.GetDriverByID(ctx, id)
	if err != nil {
		return nil, err
	}
	deliveries, err := s.driverDeliveries(ctx, id, weekStart, weekEnd)
	if err != nil {
		return nil, fail("get driver performance", err, logrus.Fields{"driver_id": id})
	}

	perf := &DriverPerformance{DriverID: id, DriverName: driver.Name}
	for _, d := range deliveries {
		perf.add(d)
	}
	perf.finish()
	return perf, nil
}

func (s *DriverService) driverDeliveries(ctx context.Context, id, startDate, endDate string) ([]models.Delivery, error) {
	query := s.db.WithContext(ctx).Where("driver_id = ?", id)
	if startDate != "" {
		query = query.Where("delivery_date >= ?", startDate)
	}
	if endDate != "" {
		query = query.Where("delivery_date <= ?", endDate)
	}

	var deliveries []models.Delivery
	if err := query.Order("delivery_date desc").Find(&deliveries).Error; err != nil {
		return nil, err
	}
	return deliveries, nil
}
