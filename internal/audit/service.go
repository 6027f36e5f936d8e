package audit

import (
	"context"

	"github.com/google/uuid"

	"github.com/signflowhq/signflow-backend/pkg/db/models"
	"github.com/signflowhq/signflow-backend/pkg/enums"
	pkgerrors "github.com/signflowhq/signflow-backend/pkg/errors"
	"github.com/signflowhq/signflow-backend/pkg/pagination"
)

// Service exposes the admin audit trail listing.
type Service interface {
	List(ctx context.Context, params ListParams) (*ListResult, error)
}

// ListParams configures filtering and pagination for audit logs.
type ListParams struct {
	ActorID  *uuid.UUID
	Action   string
	TargetID *uuid.UUID
	Limit    int
	Cursor   string
}

// ListResult wraps returned entries and the cursor for the next page.
type ListResult struct {
	Items  []models.AuditLog `json:"items"`
	Cursor string            `json:"cursor"`
}

type service struct {
	repo Repository
}

// NewService wires audit dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "audit repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	query := listAuditParams{
		ActorID:  params.ActorID,
		TargetID: params.TargetID,
		Limit:    params.Limit,
	}
	if params.Action != "" {
		action, err := enums.ParseAuditAction(params.Action)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid action filter")
		}
		query.Action = action
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list audit logs")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: rows, Cursor: cursor}, nil
}
