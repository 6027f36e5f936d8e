package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/signflowhq/signflow-backend/pkg/db/types"
	"github.com/signflowhq/signflow-backend/pkg/enums"
)

// Envelope wraps one document with an ordered signer list and owns the
// signing workflow status.
type Envelope struct {
	ID           uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	DocumentID   uuid.UUID            `gorm:"column:document_id;type:uuid;not null;index"`
	CreatorID    uuid.UUID            `gorm:"column:creator_id;type:uuid;not null;index:idx_envelopes_creator_status"`
	Status       enums.EnvelopeStatus `gorm:"type:text;not null;default:'draft';index:idx_envelopes_creator_status"`
	SigningOrder dbtypes.SigningOrder `gorm:"column:signing_order;type:jsonb;not null"`
	CreatedAt    time.Time            `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt    time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// SignerCount returns the number of signers in the signing order.
func (e Envelope) SignerCount() int {
	return len(e.SigningOrder)
}
