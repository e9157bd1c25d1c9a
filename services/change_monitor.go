package services

import (
	"sync"
	"time"

	"github.com/yeremiapane/choprek/models"
	"github.com/yeremiapane/choprek/realtime"
	"github.com/yeremiapane/choprek/utils"
	"gorm.io/gorm"
)

// ChangeMonitor polls the store_changes outbox in id order and publishes each row to
// the feed. It assumes a single application instance consumes the outbox.
type ChangeMonitor struct {
	DB        *gorm.DB
	Feed      *realtime.Feed
	StopChan  chan struct{}
	Interval  time.Duration
	BatchSize int
	Retention time.Duration

	stopOnce sync.Once
}

func NewChangeMonitor(db *gorm.DB, feed *realtime.Feed) *ChangeMonitor {
	return &ChangeMonitor{
		DB:        db,
		Feed:      feed,
		StopChan:  make(chan struct{}),
		Interval:  1 * time.Second,
		BatchSize: 100,
		Retention: 24 * time.Hour,
	}
}

func (cm *ChangeMonitor) Start() {
	go func() {
		ticker := time.NewTicker(cm.Interval)
		defer ticker.Stop()
		purge := time.NewTicker(time.Hour)
		defer purge.Stop()

		for {
			select {
			case <-ticker.C:
				cm.CheckChanges()
			case <-purge.C:
				cm.PurgeProcessed(time.Now().Add(-cm.Retention))
			case <-cm.StopChan:
				return
			}
		}
	}()
}

func (cm *ChangeMonitor) Stop() {
	cm.stopOnce.Do(func() {
		close(cm.StopChan)
	})
}

// CheckChanges publishes up to BatchSize unprocessed changes in id order and returns how many
// were published. A row whose transaction commits after a higher id was polled is picked up
// by a later call.
func (cm *ChangeMonitor) CheckChanges() int {
	var changes []models.StoreChange

	// Gunakan transaction supaya baris yang diambil langsung ditandai processed
	tx := cm.DB.Begin()
	if tx.Error != nil {
		utils.ErrorLogger.WithError(tx.Error).Error("Error starting change transaction")
		return 0
	}

	if err := tx.Where("processed = ?", false).
		Order("id ASC").
		Limit(cm.BatchSize).
		Find(&changes).Error; err != nil {
		tx.Rollback()
		utils.ErrorLogger.WithError(err).Error("Error fetching changes")
		return 0
	}
	if len(changes) == 0 {
		tx.Rollback()
		return 0
	}

	ids := make([]uint, 0, len(changes))
	for _, change := range changes {
		ids = append(ids, change.ID)
	}
	if err := tx.Model(&models.StoreChange{}).
		Where("id IN ?", ids).
		Update("processed", true).Error; err != nil {
		tx.Rollback()
		utils.ErrorLogger.WithError(err).Error("Error marking changes as processed")
		return 0
	}

	if err := tx.Commit().Error; err != nil {
		utils.ErrorLogger.WithError(err).Error("Error committing change transaction")
		return 0
	}

	events := make([]realtime.Change, 0, len(changes))
	for _, change := range changes {
		events = append(events, realtime.Change{
			ID:         change.ID,
			Collection: change.Collection,
			DocumentID: change.DocumentID,
			Action:     change.ActionType,
			ChangedAt:  change.ChangedAt,
		})
	}
	cm.Feed.Publish(events...)

	utils.InfoLogger.Debugf("Published %d changes", len(changes))
	return len(changes)
}

// PurgeProcessed deletes processed outbox rows older than before.
func (cm *ChangeMonitor) PurgeProcessed(before time.Time) int64 {
	res := cm.DB.Where("processed = ? AND changed_at < ?", true, before).Delete(&models.StoreChange{})
	if res.Error != nil {
		utils.ErrorLogger.WithError(res.Error).Error("Error purging processed changes")
		return 0
	}
	return res.RowsAffected
}
