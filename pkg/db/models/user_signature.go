package models

import (
	"time"

	"github.com/google/uuid"
)

// UserSignature is a reusable signature image owned by a user. At most one
// row per user carries IsDefault=true; the write path clears prior defaults.
type UserSignature struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	Label       string    `gorm:"type:text;not null;default:''"`
	Image       []byte    `gorm:"column:image;type:bytea;not null"`
	ContentType string    `gorm:"column:content_type;type:text;not null"`
	IsDefault   bool      `gorm:"column:is_default;not null;default:false"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
