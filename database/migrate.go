package database

import (
	"github.com/yeremiapane/choprek/models"
	"github.com/yeremiapane/choprek/utils"
	"gorm.io/gorm"
)

// Models returns every model managed by the schema, in migration order.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Menu{},
		&models.Order{},
		&models.DeliveryDriver{},
		&models.Delivery{},
		&models.AuditLog{},
		&models.StoreChange{},
	}
}

// Migrate menjalankan AutoMigrate untuk semua model.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		utils.ErrorLogger.Printf("Failed to AutoMigrate: %v", err)
		return err
	}

	// Index gabungan untuk query pool order (status + delivery_id + tanggal)
	if !db.Migrator().HasIndex(&models.Order{}, "idx_orders_pool") {
		if err := db.Exec("CREATE INDEX idx_orders_pool ON orders (status, delivery_id, order_date)").Error; err != nil {
			utils.ErrorLogger.Printf("Error creating idx_orders_pool: %v", err)
			return err
		}
	}

	utils.InfoLogger.Println("AutoMigrate completed.")
	return nil
}
