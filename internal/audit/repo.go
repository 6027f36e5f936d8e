package audit

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/signflowhq/signflow-backend/pkg/db/models"
	"github.com/signflowhq/signflow-backend/pkg/enums"
	"github.com/signflowhq/signflow-backend/pkg/pagination"
)

// Repository exposes persistence helpers for audit logs. Inserts only; the
// table is append-only.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Insert(ctx context.Context, entry *models.AuditLog) error
	List(ctx context.Context, params listAuditParams) ([]models.AuditLog, *pagination.Cursor, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an audit repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listAuditParams struct {
	ActorID  *uuid.UUID
	Action   enums.AuditAction
	TargetID *uuid.UUID
	Limit    int
	Cursor   *pagination.Cursor
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Insert(ctx context.Context, entry *models.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repositoryImpl) List(ctx context.Context, params listAuditParams) ([]models.AuditLog, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.AuditLog{})
	if params.ActorID != nil {
		query = query.Where("actor_id = ?", *params.ActorID)
	}
	if params.Action != "" {
		query = query.Where("action = ?", params.Action)
	}
	if params.TargetID != nil {
		query = query.Where("target_id = ?", *params.TargetID)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var rows []models.AuditLog
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	if len(rows) > normalized {
		rows = rows[:normalized]
		last := rows[len(rows)-1]
		return rows, &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}, nil
	}
	return rows, nil, nil
}
