package envelopes

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/signflowhq/signflow-backend/pkg/db/models"
	"github.com/signflowhq/signflow-backend/pkg/enums"
	"github.com/signflowhq/signflow-backend/pkg/pagination"
)

// Repository exposes persistence helpers for envelopes.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, envelope *models.Envelope) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Envelope, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Envelope, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.EnvelopeStatus, now time.Time) error
	List(ctx context.Context, params listEnvelopesParams) ([]models.Envelope, *pagination.Cursor, error)
	ListForSigner(ctx context.Context, signerID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.Envelope, *pagination.Cursor, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an envelopes repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listEnvelopesParams struct {
	CreatorID uuid.UUID
	Status    enums.EnvelopeStatus
	Limit     int
	Cursor    *pagination.Cursor
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, envelope *models.Envelope) error {
	return r.db.WithContext(ctx).Create(envelope).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Envelope, error) {
	var envelope models.Envelope
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&envelope).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &envelope, nil
}

// FindByIDForUpdate takes a FOR UPDATE row lock so concurrent workflow actions
// on the same envelope serialize at the storage layer. Call inside a tx.
// SQLite has no row locks and serializes writers itself, so the clause is
// applied only on postgres.
func (r *repositoryImpl) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Envelope, error) {
	query := r.db.WithContext(ctx)
	if r.db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var envelope models.Envelope
	err := query.Where("id = ?", id).First(&envelope).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &envelope, nil
}

func (r *repositoryImpl) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.EnvelopeStatus, now time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Envelope{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     status,
			"updated_at": now,
		}).Error
}

func (r *repositoryImpl) List(ctx context.Context, params listEnvelopesParams) ([]models.Envelope, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.Envelope{}).Where("creator_id = ?", params.CreatorID)
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var envelopes []models.Envelope
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&envelopes).Error; err != nil {
		return nil, nil, err
	}

	if len(envelopes) > normalized {
		envelopes = envelopes[:normalized]
		last := envelopes[len(envelopes)-1]
		return envelopes, &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}, nil
	}
	return envelopes, nil, nil
}

// ListForSigner returns envelopes in which the signer holds a signature row.
func (r *repositoryImpl) ListForSigner(ctx context.Context, signerID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.Envelope, *pagination.Cursor, error) {
	buffered := pagination.LimitWithBuffer(limit)
	normalized := pagination.NormalizeLimit(limit)

	sub := r.db.Model(&models.Signature{}).Select("envelope_id").Where("signer_id = ?", signerID)
	query := r.db.WithContext(ctx).Model(&models.Envelope{}).Where("id IN (?)", sub)
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var envelopes []models.Envelope
	if err := query.Order("created_at DESC, id DESC").Limit(buffered).Find(&envelopes).Error; err != nil {
		return nil, nil, err
	}

	if len(envelopes) > normalized {
		envelopes = envelopes[:normalized]
		last := envelopes[len(envelopes)-1]
		return envelopes, &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}, nil
	}
	return envelopes, nil, nil
}
