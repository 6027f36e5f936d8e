package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/signflowhq/signflow-backend/pkg/enums"
)

// Signature is one signer's slot in an envelope, materialized when the
// envelope is sent. One row per (envelope, signer).
type Signature struct {
	ID             uuid.UUID             `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	EnvelopeID     uuid.UUID             `gorm:"column:envelope_id;type:uuid;not null;uniqueIndex:ux_signatures_envelope_signer;index:idx_signatures_envelope_status"`
	SignerID       uuid.UUID             `gorm:"column:signer_id;type:uuid;not null;uniqueIndex:ux_signatures_envelope_signer"`
	Status         enums.SignatureStatus `gorm:"type:text;not null;default:'pending';index:idx_signatures_envelope_status"`
	SignatureImage *string               `gorm:"column:signature_image;type:text"`
	SignedAt       *time.Time            `gorm:"column:signed_at"`
	CreatedAt      time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

// IsPending reports whether the signer has not acted yet.
func (s Signature) IsPending() bool {
	return s.Status == enums.SignatureStatusPending
}

// IsSigned reports whether the signer has signed.
func (s Signature) IsSigned() bool {
	return s.Status == enums.SignatureStatusSigned
}

// IsDeclined reports whether the signer declined.
func (s Signature) IsDeclined() bool {
	return s.Status == enums.SignatureStatusDeclined
}
