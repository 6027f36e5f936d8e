package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification stores in-app notification rows scoped to users. Delivery is
// handled outside this service; rows are only created and marked read here.
type Notification struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index"`
	Message   string     `gorm:"type:text;not null"`
	ReadAt    *time.Time `gorm:"column:read_at"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}

// IsRead reports whether the recipient has marked the notification read.
func (n Notification) IsRead() bool {
	return n.ReadAt != nil
}
