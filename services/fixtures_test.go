package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeremiapane/choprek/database"
	"github.com/yeremiapane/choprek/models"
	"github.com/yeremiapane/choprek/realtime"
)

var admin = Actor{ID: "admin-1", Role: models.RoleAdmin}

// setupTestDB membuka sqlite in-memory baru per test. Satu koneksi saja supaya
// transaksi yang bersaing benar-benar diserialisasi.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

type testEnv struct {
	db         *gorm.DB
	feed       *realtime.Feed
	audit      *AuditLogger
	monitor    *ChangeMonitor
	deliveries *DeliveryService
	drivers    *DriverService
	menus      *MenuService
	orders     *OrderService
	reports    *ReportService
	users      *UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := setupTestDB(t)
	feed := realtime.NewFeed()
	audit := NewAuditLogger(db, 16)
	t.Cleanup(audit.Close)

	return &testEnv{
		db:         db,
		feed:       feed,
		audit:      audit,
		monitor:    NewChangeMonitor(db, feed),
		deliveries: NewDeliveryService(db, feed, audit),
		drivers:    NewDriverService(db, feed),
		menus:      NewMenuService(db, feed),
		orders:     NewOrderService(db),
		reports:    NewReportService(db),
		users:      NewUserService(db),
	}
}

func seedActiveMenu(t *testing.T, db *gorm.DB) *models.Menu {
	t.Helper()
	menu := models.Menu{
		Date:  "2024-03-04",
		Title: "Senin",
		Options: []models.MenuOption{
			{Name: "Nasi Goreng", Price: 25000},
			{Name: "Gado-gado", Price: 20000, DietaryTag: "vegetarian"},
		},
		IsActive:    true,
		IsPublished: true,
	}
	require.NoError(t, db.Create(&menu).Error)
	return &menu
}

func seedOrder(t *testing.T, db *gorm.DB, status, date string) *models.Order {
	t.Helper()
	order := models.Order{
		Source:       models.OrderSourceGuest,
		CustomerName: "Guest " + uuid.NewString()[:8],
		MenuID:       "menu",
		OptionName:   "Nasi Goreng",
		OptionPrice:  25000,
		Quantity:     1,
		TotalPrice:   25000,
		OrderDate:    date,
		Status:       status,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	require.NoError(t, db.Create(&order).Error)
	return &order
}

func seedOrders(t *testing.T, db *gorm.DB, n int, date string) []string {
	t.Helper()
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		ids = append(ids, seedOrder(t, db, models.OrderStatusConfirmed, date).ID)
	}
	return ids
}

func seedDriver(t *testing.T, db *gorm.DB, name string) *models.DeliveryDriver {
	t.Helper()
	driver := models.DeliveryDriver{Name: name, IsActive: true, CreatedAt: time.Now()}
	require.NoError(t, db.Create(&driver).Error)
	return &driver
}

func seedUser(t *testing.T, db *gorm.DB, role string) *models.User {
	t.Helper()
	user := models.User{
		Name:       "User " + role,
		Email:      uuid.NewString() + "@choprek.test",
		Password:   "hashed",
		Role:       role,
		Department: "Finance",
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func motorcycleInput(driverID string, price float64, date string, orderIDs ...string) CreateDeliveryInput {
	return CreateDeliveryInput{
		Method:        models.DeliveryMethodMotorcycle,
		DriverID:      &driverID,
		OrderIDs:      orderIDs,
		DeliveryDate:  date,
		DeliveryTime:  "11:30",
		DeliveryPrice: price,
	}
}

func loadOrder(t *testing.T, db *gorm.DB, id string) models.Order {
	t.Helper()
	var order models.Order
	require.NoError(t, db.First(&order, "id = ?", id).Error)
	return order
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

var ctx = context.Background()
