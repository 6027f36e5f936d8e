package envelopes

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/signflowhq/signflow-backend/internal/audit"
	"github.com/signflowhq/signflow-backend/internal/documents"
	"github.com/signflowhq/signflow-backend/internal/notifications"
	"github.com/signflowhq/signflow-backend/internal/users"
	"github.com/signflowhq/signflow-backend/internal/usersignatures"
	dbpkg "github.com/signflowhq/signflow-backend/pkg/db"
	"github.com/signflowhq/signflow-backend/pkg/db/models"
	"github.com/signflowhq/signflow-backend/pkg/enums"
	pkgerrors "github.com/signflowhq/signflow-backend/pkg/errors"
	"github.com/signflowhq/signflow-backend/pkg/logger"
	"github.com/signflowhq/signflow-backend/pkg/metrics"
	"github.com/signflowhq/signflow-backend/pkg/outbox"
	"github.com/signflowhq/signflow-backend/pkg/pagination"
)

// Service is the workflow orchestrator: envelope lifecycle plus the per-signer
// sign/decline actions that drive it.
type Service interface {
	Create(ctx context.Context, params CreateParams) (*models.Envelope, error)
	Send(ctx context.Context, params ActionParams) (*models.Envelope, error)
	Reject(ctx context.Context, params ActionParams) (*models.Envelope, error)
	Sign(ctx context.Context, params SignParams) (*models.Signature, error)
	Decline(ctx context.Context, params ActionParams) (*models.Signature, error)
	Get(ctx context.Context, userID, envelopeID uuid.UUID) (*Detail, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	ListForSigner(ctx context.Context, params ListParams) (*ListResult, error)
}

// CreateParams captures an envelope creation request. SigningOrder arrives
// untyped from the boundary and passes through ValidateSigningOrder.
type CreateParams struct {
	DocumentID   uuid.UUID
	CreatorID    uuid.UUID
	SigningOrder []SigningOrderEntryInput
	IPAddress    *string
	UserAgent    *string
}

// ActionParams identifies a workflow action (send/reject/decline) by envelope
// and actor.
type ActionParams struct {
	EnvelopeID uuid.UUID
	ActorID    uuid.UUID
	IPAddress  *string
	UserAgent  *string
}

// SignParams extends ActionParams with the signature image inputs. At most one
// of Image and SignatureID may be set.
type SignParams struct {
	ActionParams
	Image       *string
	SignatureID *uuid.UUID
}

// ListParams configures pagination for envelope listings.
type ListParams struct {
	UserID uuid.UUID
	Status string
	Limit  int
	Cursor string
}

// ListResult wraps returned envelopes and the cursor for the next page.
type ListResult struct {
	Items  []models.Envelope `json:"items"`
	Cursor string            `json:"cursor"`
}

// Detail is the envelope read model: the envelope, its signature rows and the
// computed current signer.
type Detail struct {
	Envelope        models.Envelope    `json:"envelope"`
	Signatures      []models.Signature `json:"signatures"`
	CurrentSignerID *uuid.UUID         `json:"currentSignerId,omitempty"`
}

type service struct {
	client   *dbpkg.Client
	repo     Repository
	sigRepo  SignatureRepository
	users    users.Repository
	docs     documents.Repository
	userSigs usersignatures.Repository
	events   *outbox.Service
	notifier notifications.Notifier
	recorder *audit.Recorder
	metrics  *metrics.WorkflowMetrics
	logg     *logger.Logger
}

// Deps bundles the orchestrator's collaborators.
type Deps struct {
	Client         *dbpkg.Client
	Repo           Repository
	SignatureRepo  SignatureRepository
	Users          users.Repository
	Documents      documents.Repository
	UserSignatures usersignatures.Repository
	Events         *outbox.Service
	Notifier       notifications.Notifier
	Recorder       *audit.Recorder
	Metrics        *metrics.WorkflowMetrics
	Logger         *logger.Logger
}

// NewService wires the workflow orchestrator.
func NewService(deps Deps) (Service, error) {
	switch {
	case deps.Client == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "db client required")
	case deps.Repo == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "envelopes repository required")
	case deps.SignatureRepo == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "signatures repository required")
	case deps.Users == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository required")
	case deps.Documents == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "documents repository required")
	case deps.UserSignatures == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "user signatures repository required")
	case deps.Events == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "outbox service required")
	case deps.Notifier == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifier required")
	case deps.Recorder == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "audit recorder required")
	case deps.Logger == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{
		client:   deps.Client,
		repo:     deps.Repo,
		sigRepo:  deps.SignatureRepo,
		users:    deps.Users,
		docs:     deps.Documents,
		userSigs: deps.UserSignatures,
		events:   deps.Events,
		notifier: deps.Notifier,
		recorder: deps.Recorder,
		metrics:  deps.Metrics,
		logg:     deps.Logger,
	}, nil
}

func (s *service) Create(ctx context.Context, params CreateParams) (*models.Envelope, error) {
	if params.CreatorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "creator id required")
	}
	if params.DocumentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "document id required")
	}

	document, err := s.docs.FindByID(ctx, params.DocumentID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find document")
	}
	if document == nil || document.OwnerID != params.CreatorID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "document not found")
	}

	order, err := ValidateSigningOrder(ctx, params.SigningOrder, s.users)
	if err != nil {
		return nil, err
	}

	envelope := &models.Envelope{
		DocumentID:   document.ID,
		CreatorID:    params.CreatorID,
		Status:       enums.EnvelopeStatusDraft,
		SigningOrder: order,
	}
	if err := s.repo.Create(ctx, envelope); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create envelope")
	}

	s.recorder.Record(ctx, audit.Entry{
		ActorID:    &params.CreatorID,
		Action:     enums.AuditActionCreateEnvelope,
		TargetType: enums.AuditTargetEnvelope,
		TargetID:   envelope.ID,
		Message:    fmt.Sprintf("created envelope for document %q", document.FileName),
		IPAddress:  params.IPAddress,
		UserAgent:  params.UserAgent,
	})

	return envelope, nil
}

// Send transitions draft -> sent, materializes one pending signature per
// signing-order entry and notifies the first signer.
func (s *service) Send(ctx context.Context, params ActionParams) (*models.Envelope, error) {
	if params.EnvelopeID == uuid.Nil || params.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "envelope id and actor id required")
	}

	var envelope *models.Envelope
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		locked, err := repo.FindByIDForUpdate(ctx, params.EnvelopeID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock envelope")
		}
		if locked == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "envelope not found")
		}
		if locked.CreatorID != params.ActorID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only the creator can send this envelope")
		}
		if locked.Status != enums.EnvelopeStatusDraft {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("envelope must be draft to send, current status is %s", locked.Status))
		}

		now := time.Now().UTC()

		// Re-resolve signers so a user deleted between validation and send is
		// skipped instead of breaking the insert.
		existing, err := s.users.ExistingIDs(ctx, locked.SigningOrder.SignerIDs())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve signers")
		}
		present := make(map[uuid.UUID]struct{}, len(existing))
		for _, id := range existing {
			present[id] = struct{}{}
		}
		rows := make([]models.Signature, 0, len(locked.SigningOrder))
		for _, entry := range locked.SigningOrder {
			if _, ok := present[entry.SignerID]; !ok {
				continue
			}
			rows = append(rows, models.Signature{
				EnvelopeID: locked.ID,
				SignerID:   entry.SignerID,
				Status:     enums.SignatureStatusPending,
			})
		}
		if err := s.sigRepo.WithTx(tx).CreateBatch(ctx, rows); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create signatures")
		}

		if err := repo.UpdateStatus(ctx, locked.ID, enums.EnvelopeStatusSent, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update envelope status")
		}
		if err := s.docs.WithTx(tx).UpdateStatus(ctx, locked.DocumentID, enums.DocumentStatusSent, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update document status")
		}

		if err := s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventEnvelopeSent,
			AggregateType: enums.AggregateEnvelope,
			AggregateID:   locked.ID,
			Actor:         &outbox.ActorRef{UserID: params.ActorID},
			Data: map[string]any{
				"envelopeId": locked.ID.String(),
				"documentId": locked.DocumentID.String(),
				"signers":    len(rows),
			},
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit envelope sent")
		}

		locked.Status = enums.EnvelopeStatusSent
		locked.UpdatedAt = now
		envelope = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncTransition(string(enums.EnvelopeStatusSent))
	s.afterSend(ctx, envelope, params)
	return envelope, nil
}

// afterSend queues the first-signer notification and the audit entry. Both are
// fire-and-forget: the committed transition is never rolled back for them.
func (s *service) afterSend(ctx context.Context, envelope *models.Envelope, params ActionParams) {
	creatorName, documentName := s.resolveNames(ctx, envelope)

	if first, ok := firstSigner(envelope.SigningOrder); ok {
		s.notifier.Notify(ctx, first, notifications.SignRequestMessage(creatorName, documentName))
	}

	s.recorder.Record(ctx, audit.Entry{
		ActorID:    &params.ActorID,
		Action:     enums.AuditActionSendEnvelope,
		TargetType: enums.AuditTargetEnvelope,
		TargetID:   envelope.ID,
		Message:    fmt.Sprintf("sent envelope for document %q", documentName),
		IPAddress:  params.IPAddress,
		UserAgent:  params.UserAgent,
	})
}

// Reject transitions an envelope to rejected from any status, terminal ones
// included. Only the creator may reject.
func (s *service) Reject(ctx context.Context, params ActionParams) (*models.Envelope, error) {
	if params.EnvelopeID == uuid.Nil || params.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "envelope id and actor id required")
	}

	var envelope *models.Envelope
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		locked, err := repo.FindByIDForUpdate(ctx, params.EnvelopeID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock envelope")
		}
		if locked == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "envelope not found")
		}
		if locked.CreatorID != params.ActorID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only the creator can reject this envelope")
		}

		now := time.Now().UTC()
		if err := repo.UpdateStatus(ctx, locked.ID, enums.EnvelopeStatusRejected, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update envelope status")
		}
		if err := s.docs.WithTx(tx).UpdateStatus(ctx, locked.DocumentID, enums.DocumentStatusRejected, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update document status")
		}

		if err := s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventEnvelopeRejected,
			AggregateType: enums.AggregateEnvelope,
			AggregateID:   locked.ID,
			Actor:         &outbox.ActorRef{UserID: params.ActorID},
			Data: map[string]any{
				"envelopeId": locked.ID.String(),
				"documentId": locked.DocumentID.String(),
				"reason":     "creator_rejected",
			},
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit envelope rejected")
		}

		locked.Status = enums.EnvelopeStatusRejected
		locked.UpdatedAt = now
		envelope = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncTransition(string(enums.EnvelopeStatusRejected))

	creatorName, documentName := s.resolveNames(ctx, envelope)
	for _, signerID := range envelope.SigningOrder.SignerIDs() {
		s.notifier.Notify(ctx, signerID, notifications.CancelledMessage(creatorName, documentName))
	}

	s.recorder.Record(ctx, audit.Entry{
		ActorID:    &params.ActorID,
		Action:     enums.AuditActionRejectEnvelope,
		TargetType: enums.AuditTargetEnvelope,
		TargetID:   envelope.ID,
		Message:    fmt.Sprintf("rejected envelope for document %q", documentName),
		IPAddress:  params.IPAddress,
		UserAgent:  params.UserAgent,
	})

	return envelope, nil
}

// Get hides other users' envelopes: only the creator or a signer with a
// signature row sees the detail, everyone else gets not-found.
func (s *service) Get(ctx context.Context, userID, envelopeID uuid.UUID) (*Detail, error) {
	if userID == uuid.Nil || envelopeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id and envelope id required")
	}

	envelope, err := s.repo.FindByID(ctx, envelopeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find envelope")
	}
	if envelope == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "envelope not found")
	}

	signatures, err := s.sigRepo.ListByEnvelope(ctx, envelope.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list signatures")
	}

	if envelope.CreatorID != userID && !isParticipant(userID, envelope, signatures) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "envelope not found")
	}

	detail := &Detail{Envelope: *envelope, Signatures: signatures}
	if current, ok := currentSignerID(envelope.SigningOrder, signatures); ok {
		detail.CurrentSignerID = &current
	}
	return detail, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	query := listEnvelopesParams{
		CreatorID: params.UserID,
		Limit:     params.Limit,
	}
	if params.Status != "" {
		status, err := enums.ParseEnvelopeStatus(params.Status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		query.Status = status
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
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list envelopes")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: rows, Cursor: cursor}, nil
}

func (s *service) ListForSigner(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	var cursor *pagination.Cursor
	if params.Cursor != "" {
		parsed, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		cursor = parsed
	}

	rows, next, err := s.repo.ListForSigner(ctx, params.UserID, params.Limit, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list envelopes for signer")
	}

	encoded := ""
	if next != nil {
		encoded = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: rows, Cursor: encoded}, nil
}

// resolveNames fetches creator display name and document file name for
// notification and audit copy. Failures degrade to placeholders rather than
// failing the committed operation.
func (s *service) resolveNames(ctx context.Context, envelope *models.Envelope) (string, string) {
	creatorName := "The envelope creator"
	if creator, err := s.users.FindByID(ctx, envelope.CreatorID); err == nil && creator != nil {
		creatorName = creator.DisplayName()
	}
	documentName := "document"
	if document, err := s.docs.FindByID(ctx, envelope.DocumentID); err == nil && document != nil {
		documentName = document.FileName
	}
	return creatorName, documentName
}

func isParticipant(userID uuid.UUID, envelope *models.Envelope, signatures []models.Signature) bool {
	if envelope.SigningOrder.Contains(userID) {
		return true
	}
	for _, sig := range signatures {
		if sig.SignerID == userID {
			return true
		}
	}
	return false
}
