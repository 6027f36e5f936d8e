package documents

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/signflowhq/signflow-backend/internal/audit"
	dbpkg "github.com/signflowhq/signflow-backend/pkg/db"
	"github.com/signflowhq/signflow-backend/pkg/db/models"
	"github.com/signflowhq/signflow-backend/pkg/enums"
	pkgerrors "github.com/signflowhq/signflow-backend/pkg/errors"
	"github.com/signflowhq/signflow-backend/pkg/pagination"
)

// Service defines document CRUD scoped to the owning user.
type Service interface {
	Upload(ctx context.Context, params UploadParams) (*models.Document, error)
	Get(ctx context.Context, ownerID, documentID uuid.UUID) (*models.Document, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Delete(ctx context.Context, params DeleteParams) error
}

// UploadParams captures a document upload request. The blob already lives in
// external storage; FileURL is its opaque reference.
type UploadParams struct {
	OwnerID   uuid.UUID
	FileURL   string
	FileName  string
	FileSize  int64
	IPAddress *string
	UserAgent *string
}

// ListParams configures pagination for the owner's documents.
type ListParams struct {
	OwnerID uuid.UUID
	Limit   int
	Cursor  string
}

// DeleteParams captures a document delete request.
type DeleteParams struct {
	OwnerID    uuid.UUID
	DocumentID uuid.UUID
	IPAddress  *string
	UserAgent  *string
}

// ListResult wraps returned documents and the cursor for the next page.
type ListResult struct {
	Items  []models.Document `json:"items"`
	Cursor string            `json:"cursor"`
}

type service struct {
	client   *dbpkg.Client
	repo     Repository
	recorder *audit.Recorder
}

// NewService wires documents dependencies.
func NewService(client *dbpkg.Client, repo Repository, recorder *audit.Recorder) (Service, error) {
	if client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "db client required")
	}
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "documents repository required")
	}
	if recorder == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "audit recorder required")
	}
	return &service{client: client, repo: repo, recorder: recorder}, nil
}

func (s *service) Upload(ctx context.Context, params UploadParams) (*models.Document, error) {
	if params.OwnerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id required")
	}
	if strings.TrimSpace(params.FileURL) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file url required")
	}
	if strings.TrimSpace(params.FileName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file name required")
	}
	if params.FileSize < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file size must not be negative")
	}

	document := &models.Document{
		OwnerID:  params.OwnerID,
		FileURL:  strings.TrimSpace(params.FileURL),
		FileName: strings.TrimSpace(params.FileName),
		FileSize: params.FileSize,
		Status:   enums.DocumentStatusDraft,
	}
	if err := s.repo.Create(ctx, document); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create document")
	}

	s.recorder.Record(ctx, audit.Entry{
		ActorID:    &params.OwnerID,
		Action:     enums.AuditActionUploadDoc,
		TargetType: enums.AuditTargetDocument,
		TargetID:   document.ID,
		Message:    fmt.Sprintf("uploaded document %q", document.FileName),
		IPAddress:  params.IPAddress,
		UserAgent:  params.UserAgent,
	})

	return document, nil
}

// Get conflates "absent" and "not yours" into not-found to hide other users'
// documents.
func (s *service) Get(ctx context.Context, ownerID, documentID uuid.UUID) (*models.Document, error) {
	if ownerID == uuid.Nil || documentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id and document id required")
	}
	document, err := s.repo.FindByID(ctx, documentID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find document")
	}
	if document == nil || document.OwnerID != ownerID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "document not found")
	}
	return document, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.OwnerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id required")
	}

	query := listDocumentsParams{
		OwnerID: params.OwnerID,
		Limit:   params.Limit,
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
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list documents")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: rows, Cursor: cursor}, nil
}

// Delete removes the document plus its envelopes and their signatures in one
// transaction.
func (s *service) Delete(ctx context.Context, params DeleteParams) error {
	document, err := s.Get(ctx, params.OwnerID, params.DocumentID)
	if err != nil {
		return err
	}

	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.DeleteEnvelopesCascade(ctx, document.ID); err != nil {
			return err
		}
		return repo.Delete(ctx, document.ID)
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete document")
	}

	s.recorder.Record(ctx, audit.Entry{
		ActorID:    &params.OwnerID,
		Action:     enums.AuditActionDeleteDoc,
		TargetType: enums.AuditTargetDocument,
		TargetID:   document.ID,
		Message:    fmt.Sprintf("deleted document %q", document.FileName),
		IPAddress:  params.IPAddress,
		UserAgent:  params.UserAgent,
	})

	return nil
}
