package documents

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/signflowhq/signflow-backend/pkg/db/models"
	"github.com/signflowhq/signflow-backend/pkg/enums"
	"github.com/signflowhq/signflow-backend/pkg/pagination"
)

// Repository exposes persistence helpers for documents.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, document *models.Document) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Document, error)
	List(ctx context.Context, params listDocumentsParams) ([]models.Document, *pagination.Cursor, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.DocumentStatus, now time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteEnvelopesCascade(ctx context.Context, documentID uuid.UUID) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a documents repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listDocumentsParams struct {
	OwnerID uuid.UUID
	Limit   int
	Cursor  *pagination.Cursor
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, document *models.Document) error {
	return r.db.WithContext(ctx).Create(document).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	var document models.Document
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&document).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &document, nil
}

func (r *repositoryImpl) List(ctx context.Context, params listDocumentsParams) ([]models.Document, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.Document{}).Where("owner_id = ?", params.OwnerID)
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var documents []models.Document
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&documents).Error; err != nil {
		return nil, nil, err
	}

	if len(documents) > normalized {
		documents = documents[:normalized]
		last := documents[len(documents)-1]
		return documents, &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}, nil
	}
	return documents, nil, nil
}

// UpdateStatus mirrors the envelope workflow status on the document row. The
// document status is informational only and never gates workflow actions.
func (r *repositoryImpl) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.DocumentStatus, now time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Document{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     status,
			"updated_at": now,
		}).Error
}

func (r *repositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Document{}).Error
}

// DeleteEnvelopesCascade removes every envelope referencing the document plus
// the signature rows hanging off those envelopes. Runs inside the caller's tx.
func (r *repositoryImpl) DeleteEnvelopesCascade(ctx context.Context, documentID uuid.UUID) error {
	db := r.db.WithContext(ctx)
	sub := db.Model(&models.Envelope{}).Select("id").Where("document_id = ?", documentID)
	if err := db.Where("envelope_id IN (?)", sub).Delete(&models.Signature{}).Error; err != nil {
		return err
	}
	return db.Where("document_id = ?", documentID).Delete(&models.Envelope{}).Error
}
