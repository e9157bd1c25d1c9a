package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/yeremiapane/choprek/models"
	"github.com/yeremiapane/choprek/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const auditEntityDelivery = "delivery"

// AuditLogger persists audit entries on a background worker. Callers never wait for the
// write and never see its errors.
type AuditLogger struct {
	db      *gorm.DB
	entries chan models.AuditLog
	done    chan struct{}

	mu     sync.RWMutex
	closed bool
}

func NewAuditLogger(db *gorm.DB, buffer int) *AuditLogger {
	if buffer <= 0 {
		buffer = 1
	}
	a := &AuditLogger{
		db:      db,
		entries: make(chan models.AuditLog, buffer),
		done:    make(chan struct{}),
	}
	go a.run()
	return a
}

// LogDeliveryAction enqueues one audit entry for a delivery mutation and returns immediately.
func (a *AuditLogger) LogDeliveryAction(actor Actor, action, deliveryID string, data interface{}) {
	if a == nil {
		return
	}

	entry := models.AuditLog{
		Action:     action,
		EntityType: auditEntityDelivery,
		EntityID:   deliveryID,
		ActorID:    actor.idPtr(),
		Timestamp:  time.Now(),
	}
	if data != nil {
		payload, err := json.Marshal(data)
		if err != nil {
			utils.ErrorLogger.WithError(err).WithField("delivery_id", deliveryID).Error("Error encoding audit payload")
		} else {
			entry.Data = datatypes.JSON(payload)
		}
	}

	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		utils.ErrorLogger.WithField("delivery_id", deliveryID).Warn("Audit logger closed, dropping entry")
		return
	}
	select {
	case a.entries <- entry:
	default:
		utils.ErrorLogger.WithField("delivery_id", deliveryID).Warn("Audit queue full, dropping entry")
	}
}

func (a *AuditLogger) run() {
	defer close(a.done)
	for entry := range a.entries {
		a.write(entry)
	}
}

func (a *AuditLogger) write(entry models.AuditLog) {
	defer func() {
		if r := recover(); r != nil {
			utils.ErrorLogger.Errorf("Audit write panicked: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.db.WithContext(ctx).Create(&entry).Error; err != nil {
		utils.ErrorLogger.WithError(err).WithFields(map[string]interface{}{
			"action":    entry.Action,
			"entity_id": entry.EntityID,
		}).Error("Error writing audit log")
	}
}

// Close stops accepting entries and waits until the queued ones are written.
func (a *AuditLogger) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		<-a.done
		return
	}
	a.closed = true
	close(a.entries)
	a.mu.Unlock()
	<-a.done
}

// GetAuditLogs returns audit entries, newest first, optionally for one entity only.
func (a *AuditLogger) GetAuditLogs(ctx context.Context, entityID string, limit int) ([]models.AuditLog, error) {
	query := a.db.WithContext(ctx).Order("timestamp desc")
	if entityID != "" {
		query = query.Where("entity_id = ?", entityID)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var logs []models.AuditLog
	if err := query.Find(&logs).Error; err != nil {
		return nil, fail("get audit logs", err, map[string]interface{}{"entity_id": entityID})
	}
	return logs, nil
}
