package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/signflowhq/signflow-backend/pkg/enums"
)

// AuditLog is an append-only record of user and system actions. No update or
// delete path exists anywhere in the codebase; that is a hard invariant.
type AuditLog struct {
	ID         uuid.UUID             `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ActorID    *uuid.UUID            `gorm:"column:actor_id;type:uuid;index"`
	Action     enums.AuditAction     `gorm:"type:text;not null;index"`
	TargetType enums.AuditTargetType `gorm:"column:target_type;type:text;not null"`
	TargetID   uuid.UUID             `gorm:"column:target_id;type:uuid;not null"`
	Message    string                `gorm:"type:text;not null"`
	IPAddress  *string               `gorm:"column:ip_address;type:text"`
	UserAgent  *string               `gorm:"column:user_agent;type:text"`
	CreatedAt  time.Time             `gorm:"column:created_at;autoCreateTime;index"`
}
