package envelopes

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/signflowhq/signflow-backend/internal/audit"
	"github.com/signflowhq/signflow-backend/internal/notifications"
	"github.com/signflowhq/signflow-backend/internal/usersignatures"
	"github.com/signflowhq/signflow-backend/pkg/db/models"
	dbtypes "github.com/signflowhq/signflow-backend/pkg/db/types"
	"github.com/signflowhq/signflow-backend/pkg/enums"
	pkgerrors "github.com/signflowhq/signflow-backend/pkg/errors"
	"github.com/signflowhq/signflow-backend/pkg/outbox"
)

// Sign records the current signer's approval. Preconditions in order: envelope
// is sent, a signature row exists for the actor, the row is unresolved, the
// actor is the current signer, and exactly one image source resolves.
func (s *service) Sign(ctx context.Context, params SignParams) (*models.Signature, error) {
	if params.EnvelopeID == uuid.Nil || params.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "envelope id and actor id required")
	}
	if params.Image != nil && params.SignatureID != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "provide either a signature image or a signature id, not both")
	}

	var (
		signature *models.Signature
		envelope  *models.Envelope
		completed bool
	)
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		locked, sig, all, err := s.lockForSignerAction(ctx, tx, params.ActionParams)
		if err != nil {
			return err
		}

		image, err := s.resolveSignatureImage(ctx, params)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		sigRepo := s.sigRepo.WithTx(tx)
		if err := sigRepo.MarkSigned(ctx, sig.ID, &image, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark signature signed")
		}
		sig.Status = enums.SignatureStatusSigned
		sig.SignatureImage = &image
		sig.SignedAt = &now

		completed = pendingCountExcluding(all, sig.ID) == 0
		if completed {
			repo := s.repo.WithTx(tx)
			if err := repo.UpdateStatus(ctx, locked.ID, enums.EnvelopeStatusCompleted, now); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update envelope status")
			}
			if err := s.docs.WithTx(tx).UpdateStatus(ctx, locked.DocumentID, enums.DocumentStatusCompleted, now); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update document status")
			}
			if err := s.events.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventEnvelopeCompleted,
				AggregateType: enums.AggregateEnvelope,
				AggregateID:   locked.ID,
				Actor:         &outbox.ActorRef{UserID: params.ActorID},
				Data: map[string]any{
					"envelopeId": locked.ID.String(),
					"documentId": locked.DocumentID.String(),
				},
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit envelope completed")
			}
			locked.Status = enums.EnvelopeStatusCompleted
		}

		if err := s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventSignatureSigned,
			AggregateType: enums.AggregateSignature,
			AggregateID:   sig.ID,
			Actor:         &outbox.ActorRef{UserID: params.ActorID},
			Data: map[string]any{
				"envelopeId":  locked.ID.String(),
				"signatureId": sig.ID.String(),
				"signerId":    params.ActorID.String(),
			},
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit signature signed")
		}

		signature = sig
		envelope = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	if completed {
		s.metrics.IncTransition(string(enums.EnvelopeStatusCompleted))
	}
	s.afterSign(ctx, envelope, signature, params, completed)
	return signature, nil
}

func (s *service) afterSign(ctx context.Context, envelope *models.Envelope, signature *models.Signature, params SignParams, completed bool) {
	_, documentName := s.resolveNames(ctx, envelope)

	if completed {
		s.notifier.Notify(ctx, envelope.CreatorID, notifications.CompletedMessage(documentName))
	} else if next, ok := s.nextPendingSigner(ctx, envelope); ok {
		s.notifier.Notify(ctx, next, notifications.TurnMessage(documentName))
	}

	s.recorder.Record(ctx, audit.Entry{
		ActorID:    &params.ActorID,
		Action:     enums.AuditActionSignDoc,
		TargetType: enums.AuditTargetSignature,
		TargetID:   signature.ID,
		Message:    fmt.Sprintf("signed document %q", documentName),
		IPAddress:  params.IPAddress,
		UserAgent:  params.UserAgent,
	})
}

// Decline records the current signer's refusal and forces the envelope to
// rejected regardless of other pending signers.
func (s *service) Decline(ctx context.Context, params ActionParams) (*models.Signature, error) {
	if params.EnvelopeID == uuid.Nil || params.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "envelope id and actor id required")
	}

	var (
		signature *models.Signature
		envelope  *models.Envelope
	)
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		locked, sig, _, err := s.lockForSignerAction(ctx, tx, params)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		if err := s.sigRepo.WithTx(tx).MarkDeclined(ctx, sig.ID, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark signature declined")
		}
		sig.Status = enums.SignatureStatusDeclined

		repo := s.repo.WithTx(tx)
		if err := repo.UpdateStatus(ctx, locked.ID, enums.EnvelopeStatusRejected, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update envelope status")
		}
		if err := s.docs.WithTx(tx).UpdateStatus(ctx, locked.DocumentID, enums.DocumentStatusRejected, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update document status")
		}

		if err := s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventSignatureDeclined,
			AggregateType: enums.AggregateSignature,
			AggregateID:   sig.ID,
			Actor:         &outbox.ActorRef{UserID: params.ActorID},
			Data: map[string]any{
				"envelopeId":  locked.ID.String(),
				"signatureId": sig.ID.String(),
				"signerId":    params.ActorID.String(),
			},
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit signature declined")
		}
		if err := s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventEnvelopeRejected,
			AggregateType: enums.AggregateEnvelope,
			AggregateID:   locked.ID,
			Actor:         &outbox.ActorRef{UserID: params.ActorID},
			Data: map[string]any{
				"envelopeId": locked.ID.String(),
				"documentId": locked.DocumentID.String(),
				"reason":     "signer_declined",
			},
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit envelope rejected")
		}

		locked.Status = enums.EnvelopeStatusRejected
		signature = sig
		envelope = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncTransition(string(enums.EnvelopeStatusRejected))

	signerName := "A signer"
	if signer, err := s.users.FindByID(ctx, params.ActorID); err == nil && signer != nil {
		signerName = signer.DisplayName()
	}
	_, documentName := s.resolveNames(ctx, envelope)
	s.notifier.Notify(ctx, envelope.CreatorID, notifications.DeclinedMessage(signerName, documentName))

	s.recorder.Record(ctx, audit.Entry{
		ActorID:    &params.ActorID,
		Action:     enums.AuditActionDeclineSign,
		TargetType: enums.AuditTargetSignature,
		TargetID:   signature.ID,
		Message:    fmt.Sprintf("declined to sign document %q", documentName),
		IPAddress:  params.IPAddress,
		UserAgent:  params.UserAgent,
	})

	return signature, nil
}

// lockForSignerAction takes the envelope row lock and runs the shared sign/
// decline gate: envelope sent, signature row exists, row unresolved, actor is
// the current signer. Returns the locked envelope, the actor's signature and
// all signature rows for the envelope.
func (s *service) lockForSignerAction(ctx context.Context, tx *gorm.DB, params ActionParams) (*models.Envelope, *models.Signature, []models.Signature, error) {
	locked, err := s.repo.WithTx(tx).FindByIDForUpdate(ctx, params.EnvelopeID)
	if err != nil {
		return nil, nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock envelope")
	}
	if locked == nil {
		return nil, nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "envelope not found")
	}
	if locked.Status != enums.EnvelopeStatusSent {
		return nil, nil, nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("envelope must be sent for signer actions, current status is %s", locked.Status))
	}

	sigRepo := s.sigRepo.WithTx(tx)
	sig, err := sigRepo.FindByEnvelopeAndSigner(ctx, locked.ID, params.ActorID)
	if err != nil {
		return nil, nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find signature")
	}
	if sig == nil {
		return nil, nil, nil, pkgerrors.New(pkgerrors.CodeForbidden, "not authorized to sign this envelope")
	}
	switch sig.Status {
	case enums.SignatureStatusSigned:
		return nil, nil, nil, pkgerrors.New(pkgerrors.CodeStateConflict, "signature already signed")
	case enums.SignatureStatusDeclined:
		return nil, nil, nil, pkgerrors.New(pkgerrors.CodeStateConflict, "signature already declined")
	}

	all, err := sigRepo.ListByEnvelope(ctx, locked.ID)
	if err != nil {
		return nil, nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list signatures")
	}
	current, ok := currentSignerID(locked.SigningOrder, all)
	if !ok || current != params.ActorID {
		return nil, nil, nil, pkgerrors.New(pkgerrors.CodeForbidden, "not your turn to sign")
	}

	return locked, sig, all, nil
}

// resolveSignatureImage produces the stored base64 payload from exactly one of
// the explicit image, the referenced reusable signature, or the actor's
// default reusable signature.
func (s *service) resolveSignatureImage(ctx context.Context, params SignParams) (string, error) {
	if params.Image != nil {
		if _, _, err := usersignatures.DecodeImagePayload(*params.Image); err != nil {
			return "", err
		}
		return *params.Image, nil
	}

	if params.SignatureID != nil {
		stored, err := s.userSigs.FindByID(ctx, *params.SignatureID)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find user signature")
		}
		if stored == nil || stored.UserID != params.ActorID {
			return "", pkgerrors.New(pkgerrors.CodeNotFound, "signature not found")
		}
		return base64.StdEncoding.EncodeToString(stored.Image), nil
	}

	fallback, err := s.userSigs.FindDefault(ctx, params.ActorID)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find default signature")
	}
	if fallback == nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "no signature image supplied and no default signature configured")
	}
	return base64.StdEncoding.EncodeToString(fallback.Image), nil
}

// nextPendingSigner recomputes the current signer after a transition.
func (s *service) nextPendingSigner(ctx context.Context, envelope *models.Envelope) (uuid.UUID, bool) {
	all, err := s.sigRepo.ListByEnvelope(ctx, envelope.ID)
	if err != nil {
		s.logg.Error(s.logg.WithEnvelopeID(ctx, envelope.ID.String()), "failed to compute next signer", err)
		return uuid.Nil, false
	}
	return currentSignerID(envelope.SigningOrder, all)
}

// currentSignerID returns the signer whose pending signature holds the lowest
// signing-order position. A pending signature with no matching order entry
// (position 0) is ignored rather than ever winning the minimum.
func currentSignerID(order dbtypes.SigningOrder, signatures []models.Signature) (uuid.UUID, bool) {
	best := 0
	var bestID uuid.UUID
	for _, sig := range signatures {
		if !sig.IsPending() {
			continue
		}
		pos := order.PositionOf(sig.SignerID)
		if pos == 0 {
			continue
		}
		if best == 0 || pos < best {
			best = pos
			bestID = sig.SignerID
		}
	}
	return bestID, best != 0
}

// firstSigner returns the signer at the lowest order position.
func firstSigner(order dbtypes.SigningOrder) (uuid.UUID, bool) {
	best := 0
	var bestID uuid.UUID
	for _, entry := range order {
		if best == 0 || entry.Order < best {
			best = entry.Order
			bestID = entry.SignerID
		}
	}
	return bestID, best != 0
}

func pendingCountExcluding(signatures []models.Signature, excludeID uuid.UUID) int {
	count := 0
	for _, sig := range signatures {
		if sig.ID == excludeID {
			continue
		}
		if sig.IsPending() {
			count++
		}
	}
	return count
}
