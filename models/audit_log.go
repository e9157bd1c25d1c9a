package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	AuditActionCreate   = "create"
	AuditActionUpdate   = "update"
	AuditActionComplete = "complete"
	AuditActionDelete   = "delete"
)

type AuditLog struct {
	ID         string         `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Action     string         `gorm:"type:varchar(20);not null" json:"action"`
	EntityType string         `gorm:"type:varchar(50);not null;index:idx_audit_entity" json:"entity_type"`
	EntityID   string         `gorm:"type:varchar(36);not null;index:idx_audit_entity" json:"entity_id"`
	ActorID    *string        `gorm:"type:varchar(36)" json:"actor_id,omitempty"`
	Data       datatypes.JSON `json:"data,omitempty"`
	Timestamp  time.Time      `gorm:"not null;index" json:"timestamp"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = NewID()
	}
	return nil
}
