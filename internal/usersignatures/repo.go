package usersignatures

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/signflowhq/signflow-backend/pkg/db/models"
)

// Repository exposes persistence helpers for reusable signature images.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, signature *models.UserSignature) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.UserSignature, error)
	FindDefault(ctx context.Context, userID uuid.UUID) (*models.UserSignature, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.UserSignature, error)
	Update(ctx context.Context, signature *models.UserSignature) error
	ClearDefaults(ctx context.Context, userID uuid.UUID, exceptID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a user signatures repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, signature *models.UserSignature) error {
	return r.db.WithContext(ctx).Create(signature).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.UserSignature, error) {
	var signature models.UserSignature
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&signature).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &signature, nil
}

func (r *repositoryImpl) FindDefault(ctx context.Context, userID uuid.UUID) (*models.UserSignature, error) {
	var signature models.UserSignature
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_default = ?", userID, true).
		First(&signature).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &signature, nil
}

func (r *repositoryImpl) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.UserSignature, error) {
	var signatures []models.UserSignature
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&signatures).Error
	return signatures, err
}

func (r *repositoryImpl) Update(ctx context.Context, signature *models.UserSignature) error {
	return r.db.WithContext(ctx).Save(signature).Error
}

// ClearDefaults un-defaults every signature of the user except the given id.
func (r *repositoryImpl) ClearDefaults(ctx context.Context, userID uuid.UUID, exceptID uuid.UUID) error {
	query := r.db.WithContext(ctx).
		Model(&models.UserSignature{}).
		Where("user_id = ? AND is_default = ?", userID, true)
	if exceptID != uuid.Nil {
		query = query.Where("id <> ?", exceptID)
	}
	return query.UpdateColumn("is_default", false).Error
}

func (r *repositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.UserSignature{}).Error
}
