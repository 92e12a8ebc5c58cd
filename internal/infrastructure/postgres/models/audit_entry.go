package models

import "time"

type AuditEntryModel struct {
	ID         uint   `gorm:"primaryKey"`
	Entity     string `gorm:"size:16;not null;index:idx_audit_entity"`
	EntityID   string `gorm:"size:32;not null;index:idx_audit_entity"`
	Operation  string `gorm:"size:32;not null"`
	OldStatus  string `gorm:"size:16;not null;default:''"`
	NewStatus  string `gorm:"size:16;not null"`
	ActorID    string `gorm:"size:64;not null"`
	OccurredAt time.Time
}

func (AuditEntryModel) TableName() string {
	return "audit_entries"
}
