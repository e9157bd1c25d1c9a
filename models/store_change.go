package models

import (
	"time"
)

const (
	ChangeInsert = "INSERT"
	ChangeUpdate = "UPDATE"
	ChangeDelete = "DELETE"
)

// Collection names, matching the table names gorm derives for the models.
const (
	CollectionOrders     = "orders"
	CollectionDeliveries = "deliveries"
	CollectionDrivers    = "delivery_drivers"
	CollectionMenus      = "menus"
)

// StoreChange adalah baris outbox yang ditulis di transaksi yang sama dengan perubahan datanya.
// ID mengikuti urutan insert, bukan urutan commit: transaksi yang commit belakangan bisa
// memegang ID lebih kecil, dan barisnya baru terambil di poll berikutnya.
type StoreChange struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Collection string    `gorm:"type:varchar(50);not null;index:idx_collection_action" json:"collection"`
	DocumentID string    `gorm:"type:varchar(36);not null" json:"document_id"`
	ActionType string    `gorm:"type:varchar(10);not null;index:idx_collection_action" json:"action"`
	ChangedAt  time.Time `gorm:"not null" json:"changed_at"`
	Processed  bool      `gorm:"not null;index:idx_processed" json:"-"`
}
