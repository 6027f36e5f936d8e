package envelopes

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/signflowhq/signflow-backend/pkg/db/models"
	"github.com/signflowhq/signflow-backend/pkg/enums"
)

// SignatureRepository exposes persistence helpers for per-signer signature rows.
type SignatureRepository interface {
	WithTx(tx *gorm.DB) SignatureRepository
	CreateBatch(ctx context.Context, rows []models.Signature) error
	ListByEnvelope(ctx context.Context, envelopeID uuid.UUID) ([]models.Signature, error)
	FindByEnvelopeAndSigner(ctx context.Context, envelopeID, signerID uuid.UUID) (*models.Signature, error)
	MarkSigned(ctx context.Context, id uuid.UUID, image *string, now time.Time) error
	MarkDeclined(ctx context.Context, id uuid.UUID, now time.Time) error
}

type signatureRepositoryImpl struct {
	db *gorm.DB
}

// NewSignatureRepository returns a signature repository bound to the provided database.
func NewSignatureRepository(db *gorm.DB) SignatureRepository {
	return &signatureRepositoryImpl{db: db}
}

func (r *signatureRepositoryImpl) WithTx(tx *gorm.DB) SignatureRepository {
	if tx == nil {
		return r
	}
	return &signatureRepositoryImpl{db: tx}
}

func (r *signatureRepositoryImpl) CreateBatch(ctx context.Context, rows []models.Signature) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *signatureRepositoryImpl) ListByEnvelope(ctx context.Context, envelopeID uuid.UUID) ([]models.Signature, error) {
	var rows []models.Signature
	err := r.db.WithContext(ctx).
		Where("envelope_id = ?", envelopeID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *signatureRepositoryImpl) FindByEnvelopeAndSigner(ctx context.Context, envelopeID, signerID uuid.UUID) (*models.Signature, error) {
	var row models.Signature
	err := r.db.WithContext(ctx).
		Where("envelope_id = ? AND signer_id = ?", envelopeID, signerID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *signatureRepositoryImpl) MarkSigned(ctx context.Context, id uuid.UUID, image *string, now time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Signature{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":          enums.SignatureStatusSigned,
			"signature_image": image,
			"signed_at":       now,
			"updated_at":      now,
		}).Error
}

func (r *signatureRepositoryImpl) MarkDeclined(ctx context.Context, id uuid.UUID, now time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Signature{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     enums.SignatureStatusDeclined,
			"updated_at": now,
		}).Error
}
