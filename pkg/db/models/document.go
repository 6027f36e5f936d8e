package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/signflowhq/signflow-backend/pkg/enums"
)

// Document is an uploaded file tracked through the signing workflow.
// The blob itself lives in external storage; FileURL is an opaque reference.
type Document struct {
	ID        uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID   uuid.UUID            `gorm:"column:owner_id;type:uuid;not null;index"`
	FileURL   string               `gorm:"column:file_url;type:text;not null"`
	FileName  string               `gorm:"column:file_name;type:text;not null"`
	FileSize  int64                `gorm:"column:file_size;not null"`
	Status    enums.DocumentStatus `gorm:"type:text;not null;default:'draft'"`
	CreatedAt time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
