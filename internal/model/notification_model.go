package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationKind string

const (
	NotificationApplicationSubmitted NotificationKind = "application_submitted"
	NotificationApplicationReceived  NotificationKind = "application_received"
	NotificationApplicationStatus    NotificationKind = "application_status_changed"
)

// Notification is an entry in a profile's activity log.
type Notification struct {
	ID            uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	ProfileID     uuid.UUID        `gorm:"type:uuid;not null;index" json:"profile_id"`
	ApplicationID uuid.UUID        `gorm:"type:uuid;index" json:"application_id"`
	Kind          NotificationKind `gorm:"type:varchar(50);not null" json:"kind"`
	Message       string           `gorm:"type:text" json:"message"`
	CreatedAt     time.Time        `json:"created_at"`
}

func (n *Notification) TableName() string {
	return "notifications"
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
