package users

import (
	"context"

	"github.com/google/uuid"

	"github.com/signflowhq/signflow-backend/pkg/db/models"
	pkgerrors "github.com/signflowhq/signflow-backend/pkg/errors"
)

// Service exposes user lookup operations.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type service struct {
	repo Repository
}

// NewService wires users dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find user")
	}
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return user, nil
}
