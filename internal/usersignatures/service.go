package usersignatures

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/signflowhq/signflow-backend/internal/audit"
	"github.com/signflowhq/signflow-backend/pkg/config"
	dbpkg "github.com/signflowhq/signflow-backend/pkg/db"
	"github.com/signflowhq/signflow-backend/pkg/db/models"
	"github.com/signflowhq/signflow-backend/pkg/enums"
	pkgerrors "github.com/signflowhq/signflow-backend/pkg/errors"
)

// Service manages user-owned reusable signature images. All cross-user access
// resolves as not-found, never forbidden, so other users' assets stay hidden.
type Service interface {
	Create(ctx context.Context, params CreateParams) (*models.UserSignature, error)
	Get(ctx context.Context, userID, signatureID uuid.UUID) (*models.UserSignature, error)
	List(ctx context.Context, userID uuid.UUID) ([]models.UserSignature, error)
	Update(ctx context.Context, params UpdateParams) (*models.UserSignature, error)
	Delete(ctx context.Context, params DeleteParams) error
}

// CreateParams captures a new reusable signature upload.
type CreateParams struct {
	UserID    uuid.UUID
	Label     string
	Image     string
	IsDefault bool
	IPAddress *string
	UserAgent *string
}

// UpdateParams captures a reusable signature mutation. Nil fields are left
// untouched.
type UpdateParams struct {
	UserID      uuid.UUID
	SignatureID uuid.UUID
	Label       *string
	Image       *string
	IsDefault   *bool
	IPAddress   *string
	UserAgent   *string
}

// DeleteParams captures a reusable signature delete request.
type DeleteParams struct {
	UserID      uuid.UUID
	SignatureID uuid.UUID
	IPAddress   *string
	UserAgent   *string
}

type service struct {
	client   *dbpkg.Client
	repo     Repository
	recorder *audit.Recorder
	cfg      config.SignatureConfig
}

// NewService wires user signatures dependencies.
func NewService(client *dbpkg.Client, repo Repository, recorder *audit.Recorder, cfg config.SignatureConfig) (Service, error) {
	if client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "db client required")
	}
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "user signatures repository required")
	}
	if recorder == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "audit recorder required")
	}
	return &service{client: client, repo: repo, recorder: recorder, cfg: cfg}, nil
}

func (s *service) Create(ctx context.Context, params CreateParams) (*models.UserSignature, error) {
	if params.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	raw, contentType, err := ValidateRasterImage(params.Image, s.cfg.MaxImageBytes)
	if err != nil {
		return nil, err
	}

	signature := &models.UserSignature{
		UserID:      params.UserID,
		Label:       strings.TrimSpace(params.Label),
		Image:       raw,
		ContentType: contentType,
		IsDefault:   params.IsDefault,
	}

	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, signature); err != nil {
			return err
		}
		if signature.IsDefault {
			return repo.ClearDefaults(ctx, params.UserID, signature.ID)
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user signature")
	}

	s.recorder.Record(ctx, audit.Entry{
		ActorID:    &params.UserID,
		Action:     enums.AuditActionCreateUserSignature,
		TargetType: enums.AuditTargetUserSignature,
		TargetID:   signature.ID,
		Message:    fmt.Sprintf("created reusable signature %q", signature.Label),
		IPAddress:  params.IPAddress,
		UserAgent:  params.UserAgent,
	})

	return signature, nil
}

func (s *service) Get(ctx context.Context, userID, signatureID uuid.UUID) (*models.UserSignature, error) {
	if userID == uuid.Nil || signatureID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id and signature id required")
	}
	signature, err := s.repo.FindByID(ctx, signatureID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find user signature")
	}
	if signature == nil || signature.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "signature not found")
	}
	return signature, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]models.UserSignature, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	signatures, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list user signatures")
	}
	return signatures, nil
}

// Update mutates label, image or the default flag. Setting is_default=true
// clears any other default for the same user inside the same transaction.
func (s *service) Update(ctx context.Context, params UpdateParams) (*models.UserSignature, error) {
	signature, err := s.Get(ctx, params.UserID, params.SignatureID)
	if err != nil {
		return nil, err
	}

	if params.Label != nil {
		signature.Label = strings.TrimSpace(*params.Label)
	}
	if params.Image != nil {
		raw, contentType, err := ValidateRasterImage(*params.Image, s.cfg.MaxImageBytes)
		if err != nil {
			return nil, err
		}
		signature.Image = raw
		signature.ContentType = contentType
	}
	if params.IsDefault != nil {
		signature.IsDefault = *params.IsDefault
	}

	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if signature.IsDefault {
			if err := repo.ClearDefaults(ctx, params.UserID, signature.ID); err != nil {
				return err
			}
		}
		return repo.Update(ctx, signature)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user signature")
	}

	s.recorder.Record(ctx, audit.Entry{
		ActorID:    &params.UserID,
		Action:     enums.AuditActionUpdateUserSignature,
		TargetType: enums.AuditTargetUserSignature,
		TargetID:   signature.ID,
		Message:    fmt.Sprintf("updated reusable signature %q", signature.Label),
		IPAddress:  params.IPAddress,
		UserAgent:  params.UserAgent,
	})

	return signature, nil
}

func (s *service) Delete(ctx context.Context, params DeleteParams) error {
	signature, err := s.Get(ctx, params.UserID, params.SignatureID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, signature.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete user signature")
	}

	s.recorder.Record(ctx, audit.Entry{
		ActorID:    &params.UserID,
		Action:     enums.AuditActionDeleteUserSignature,
		TargetType: enums.AuditTargetUserSignature,
		TargetID:   signature.ID,
		Message:    fmt.Sprintf("deleted reusable signature %q", signature.Label),
		IPAddress:  params.IPAddress,
		UserAgent:  params.UserAgent,
	})

	return nil
}
