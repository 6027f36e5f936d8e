package envelopes

import (
	"context"
	"encoding/base64"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/signflowhq/signflow-backend/internal/audit"
	"github.com/signflowhq/signflow-backend/internal/documents"
	"github.com/signflowhq/signflow-backend/internal/notifications"
	"github.com/signflowhq/signflow-backend/internal/users"
	"github.com/signflowhq/signflow-backend/internal/usersignatures"
	dbpkg "github.com/signflowhq/signflow-backend/pkg/db"
	"github.com/signflowhq/signflow-backend/pkg/db/models"
	dbtypes "github.com/signflowhq/signflow-backend/pkg/db/types"
	"github.com/signflowhq/signflow-backend/pkg/enums"
	pkgerrors "github.com/signflowhq/signflow-backend/pkg/errors"
	"github.com/signflowhq/signflow-backend/pkg/logger"
	"github.com/signflowhq/signflow-backend/pkg/metrics"
	"github.com/signflowhq/signflow-backend/pkg/outbox"
)

func setupWorkflowTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// The service queries the base pool while a transaction holds another
	// connection, so each connection must see the same in-memory database.
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	ddl := []string{
		`CREATE TABLE users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL DEFAULT '',
  full_name TEXT NOT NULL DEFAULT '',
  is_active INTEGER NOT NULL DEFAULT 1,
  is_admin INTEGER NOT NULL DEFAULT 0,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE documents (
  id TEXT PRIMARY KEY,
  owner_id TEXT NOT NULL,
  file_url TEXT NOT NULL,
  file_name TEXT NOT NULL,
  file_size INTEGER NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'draft',
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE envelopes (
  id TEXT PRIMARY KEY,
  document_id TEXT NOT NULL,
  creator_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'draft',
  signing_order TEXT NOT NULL DEFAULT '[]',
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE signatures (
  id TEXT PRIMARY KEY,
  envelope_id TEXT NOT NULL,
  signer_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  signature_image TEXT,
  signed_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (envelope_id, signer_id)
);`,
		`CREATE TABLE user_signatures (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  label TEXT NOT NULL DEFAULT '',
  image BLOB NOT NULL,
  content_type TEXT NOT NULL DEFAULT '',
  is_default INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE notifications (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  message TEXT NOT NULL,
  read_at DATETIME,
  created_at DATETIME
);`,
		`CREATE TABLE audit_logs (
  id TEXT PRIMARY KEY,
  actor_id TEXT,
  action TEXT NOT NULL,
  target_type TEXT NOT NULL,
  target_id TEXT NOT NULL,
  message TEXT NOT NULL,
  ip_address TEXT,
  user_agent TEXT,
  created_at DATETIME
);`,
		`CREATE TABLE outbox_events (
  id TEXT PRIMARY KEY,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at DATETIME,
  published_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT
);`,
	}
	for _, stmt := range ddl {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func newWorkflowService(t *testing.T, db *gorm.DB) Service {
	t.Helper()

	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(Deps{
		Client:         dbpkg.NewFromGorm(db),
		Repo:           NewRepository(db),
		SignatureRepo:  NewSignatureRepository(db),
		Users:          users.NewRepository(db),
		Documents:      documents.NewRepository(db),
		UserSignatures: usersignatures.NewRepository(db),
		Events:         outbox.NewService(outbox.NewRepository(db), logg),
		Notifier:       notifications.NewNotifier(notifications.NewRepository(db), logg),
		Recorder:       audit.NewRecorder(audit.NewRepository(db), logg),
		Metrics:        metrics.NewWorkflowMetrics(nil),
		Logger:         logg,
	})
	require.NoError(t, err)
	return svc
}

func newUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	user := &models.User{
		ID:       uuid.New(),
		Email:    name + "@example.com",
		FullName: name,
		IsActive: true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func newDocument(t *testing.T, db *gorm.DB, owner *models.User, name string) *models.Document {
	t.Helper()
	document := &models.Document{
		ID:       uuid.New(),
		OwnerID:  owner.ID,
		FileURL:  "https://files.example.com/" + name,
		FileName: name,
		FileSize: 1024,
		Status:   enums.DocumentStatusDraft,
	}
	require.NoError(t, db.Create(document).Error)
	return document
}

func newEnvelope(t *testing.T, db *gorm.DB, document *models.Document, creator *models.User, status enums.EnvelopeStatus, order dbtypes.SigningOrder) *models.Envelope {
	t.Helper()
	envelope := &models.Envelope{
		ID:           uuid.New(),
		DocumentID:   document.ID,
		CreatorID:    creator.ID,
		Status:       status,
		SigningOrder: order,
	}
	require.NoError(t, db.Create(envelope).Error)
	return envelope
}

func signerOrder(signers ...*models.User) dbtypes.SigningOrder {
	order := make(dbtypes.SigningOrder, 0, len(signers))
	for i, signer := range signers {
		order = append(order, dbtypes.SignerEntry{SignerID: signer.ID, Order: i + 1})
	}
	return order
}

func action(envelope *models.Envelope, actor *models.User) ActionParams {
	return ActionParams{EnvelopeID: envelope.ID, ActorID: actor.ID}
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected typed error, got %v", err)
	assert.Equal(t, code, typed.Code())
}

func notificationsFor(t *testing.T, db *gorm.DB, userID uuid.UUID) []models.Notification {
	t.Helper()
	var rows []models.Notification
	require.NoError(t, db.Where("user_id = ?", userID).Find(&rows).Error)
	return rows
}

func outboxEvents(t *testing.T, db *gorm.DB) []models.OutboxEvent {
	t.Helper()
	var rows []models.OutboxEvent
	require.NoError(t, db.Order("created_at ASC").Find(&rows).Error)
	return rows
}

func TestCreateEnvelope(t *testing.T) {
	db := setupWorkflowTestDB(t)
	svc := newWorkflowService(t, db)
	ctx := context.Background()

	creator := newUser(t, db, "creator")
	signer := newUser(t, db, "signer")
	document := newDocument(t, db, creator, "contract.pdf")

	envelope, err := svc.Create(ctx, CreateParams{
		DocumentID: document.ID,
		CreatorID:  creator.ID,
		SigningOrder: []SigningOrderEntryInput{
			entry(signer.ID, 1),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, enums.EnvelopeStatusDraft, envelope.Status)
	assert.Equal(t, 1, envelope.SignerCount())

	var auditRows []models.AuditLog
	require.NoError(t, db.Where("action = ?", enums.AuditActionCreateEnvelope).Find(&auditRows).Error)
	require.Len(t, auditRows, 1)
	assert.Equal(t, envelope.ID, auditRows[0].TargetID)
}

func TestCreateEnvelope_DocumentHidden(t *testing.T) {
	db := setupWorkflowTestDB(t)
	svc := newWorkflowService(t, db)
	ctx := context.Background()

	owner := newUser(t, db, "owner")
	stranger := newUser(t, db, "stranger")
	document := newDocument(t, db, owner, "contract.pdf")

	_, err := svc.Create(ctx, CreateParams{DocumentID: document.ID, CreatorID: stranger.ID})
	assertCode(t, err, pkgerrors.CodeNotFound)

	_, err = svc.Create(ctx, CreateParams{DocumentID: uuid.New(), CreatorID: owner.ID})
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestSendEnvelope(t *testing.T) {
	db := setupWorkflowTestDB(t)
	svc := newWorkflowService(t, db)
	ctx := context.Background()

	creator := newUser(t, db, "creator")
	first := newUser(t, db, "first")
	second := newUser(t, db, "second")
	document := newDocument(t, db, creator, "contract.pdf")
	envelope := newEnvelope(t, db, document, creator, enums.EnvelopeStatusDraft, signerOrder(first, second))

	sent, err := svc.Send(ctx, action(envelope, creator))
	require.NoError(t, err)
	assert.Equal(t, enums.EnvelopeStatusSent, sent.Status)

	var sigRows []models.Signature
	require.NoError(t, db.Where("envelope_id = ?", envelope.ID).Find(&sigRows).Error)
	require.Len(t, sigRows, 2)
	for _, sig := range sigRows {
		assert.Equal(t, enums.SignatureStatusPending, sig.Status)
	}

	var doc models.Document
	require.NoError(t, db.First(&doc, "id = ?", document.ID).Error)
	assert.Equal(t, enums.DocumentStatusSent, doc.Status)

	// Only the first-position signer is notified on send.
	firstNotes := notificationsFor(t, db, first.ID)
	require.Len(t, firstNotes, 1)
	assert.Contains(t, firstNotes[0].Message, "requested you to sign")
	assert.Contains(t, firstNotes[0].Message, "contract.pdf")
	assert.Empty(t, notificationsFor(t, db, second.ID))

	events := outboxEvents(t, db)
	require.Len(t, events, 1)
	assert.Equal(t, enums.EventEnvelopeSent, events[0].EventType)

	var auditRows []models.AuditLog
	require.NoError(t, db.Where("action = ?", enums.AuditActionSendEnvelope).Find(&auditRows).Error)
	assert.Len(t, auditRows, 1)
}

func TestSendEnvelope_OnlyCreator(t *testing.T) {
	db := setupWorkflowTestDB(t)
	svc := newWorkflowService(t, db)
	ctx := context.Background()

	creator := newUser(t, db, "creator")
	signer := newUser(t, db, "signer")
	document := newDocument(t, db, creator, "contract.pdf")
	envelope := newEnvelope(t, db, document, creator, enums.EnvelopeStatusDraft, signerOrder(signer))

	_, err := svc.Send(ctx, action(envelope, signer))
	assertCode(t, err, pkgerrors.CodeForbidden)

	var reloaded models.Envelope
	require.NoError(t, db.First(&reloaded, "id = ?", envelope.ID).Error)
	assert.Equal(t, enums.EnvelopeStatusDraft, reloaded.Status)
}

func TestSendEnvelope_NotDraft(t *testing.T) {
	db := setupWorkflowTestDB(t)
	svc := newWorkflowService(t, db)
	ctx := context.Background()

	creator := newUser(t, db, "creator")
	signer := newUser(t, db, "signer")
	document := newDocument(t, db, creator, "contract.pdf")

	for _, status := range []enums.EnvelopeStatus{
		enums.EnvelopeStatusSent,
		enums.EnvelopeStatusCompleted,
		enums.EnvelopeStatusRejected,
	} {
		envelope := newEnvelope(t, db, document, creator, status, signerOrder(signer))
		_, err := svc.Send(ctx, action(envelope, creator))
		assertCode(t, err, pkgerrors.CodeStateConflict)
		assert.Contains(t, err.Error(), string(status))
	}
}

func TestSendEnvelope_SkipsVanishedSigner(t *testing.T) {
	db := setupWorkflowTestDB(t)
	svc := newWorkflowService(t, db)
	ctx := context.Background()

	creator := newUser(t, db, "creator")
	kept := newUser(t, db, "kept")
	vanished := newUser(t, db, "vanished")
	document := newDocument(t, db, creator, "contract.pdf")
	envelope := newEnvelope(t, db, document, creator, enums.EnvelopeStatusDraft, signerOrder(kept, vanished))

	require.NoError(t, db.Delete(&models.User{}, "id = ?", vanished.ID).Error)

	_, err := svc.Send(ctx, action(envelope, creator))
	require.NoError(t, err)

	var sigRows []models.Signature
	require.NoError(t, db.Where("envelope_id = ?", envelope.ID).Find(&sigRows).Error)
	require.Len(t, sigRows, 1)
	assert.Equal(t, kept.ID, sigRows[0].SignerID)
}

func TestRejectEnvelope_AnyStatus(t *testing.T) {
	db := setupWorkflowTestDB(t)
	svc := newWorkflowService(t, db)
	ctx := context.Background()

	creator := newUser(t, db, "creator")
	first := newUser(t, db, "first")
	second := newUser(t, db, "second")
	document := newDocument(t, db, creator, "contract.pdf")

	// Reject is allowed from every status, terminal ones included.
	for _, status := range []enums.EnvelopeStatus{
		enums.EnvelopeStatusDraft,
		enums.EnvelopeStatusSent,
		enums.EnvelopeStatusCompleted,
		enums.EnvelopeStatusRejected,
	} {
		envelope := newEnvelope(t, db, document, creator, status, signerOrder(first, second))
		rejected, err := svc.Reject(ctx, action(envelope, creator))
		require.NoError(t, err, "status %s", status)
		assert.Equal(t, enums.EnvelopeStatusRejected, rejected.Status)
	}

	// Every signer hears about each cancellation.
	assert.Len(t, notificationsFor(t, db, first.ID), 4)
	assert.Len(t, notificationsFor(t, db, second.ID), 4)
}

func TestRejectEnvelope_OnlyCreator(t *testing.T) {
	db := setupWorkflowTestDB(t)
	svc := newWorkflowService(t, db)
	ctx := context.Background()

	creator := newUser(t, db, "creator")
	signer := newUser(t, db, "signer")
	document := newDocument(t, db, creator, "contract.pdf")
	envelope := newEnvelope(t, db, document, creator, enums.EnvelopeStatusSent, signerOrder(signer))

	_, err := svc.Reject(ctx, action(envelope, signer))
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestSigningScenario_SequentialFlow(t *testing.T) {
	db := setupWorkflowTestDB(t)
	svc := newWorkflowService(t, db)
	ctx := context.Background()

	creator := newUser(t, db, "creator")
	alice := newUser(t, db, "alice")
	bob := newUser(t, db, "bob")
	document := newDocument(t, db, creator, "contract.pdf")
	envelope := newEnvelope(t, db, document, creator, enums.EnvelopeStatusDraft, signerOrder(alice, bob))

	_, err := svc.Send(ctx, action(envelope, creator))
	require.NoError(t, err)

	image := base64.StdEncoding.EncodeToString([]byte("alice-signature"))

	// Bob is position 2: not his turn yet.
	_, err = svc.Sign(ctx, SignParams{ActionParams: action(envelope, bob), Image: &image})
	assertCode(t, err, pkgerrors.CodeForbidden)
	assert.Contains(t, err.Error(), "not your turn")

	// Alice signs; envelope stays sent and Bob becomes current.
	signed, err := svc.Sign(ctx, SignParams{ActionParams: action(envelope, alice), Image: &image})
	require.NoError(t, err)
	assert.Equal(t, enums.SignatureStatusSigned, signed.Status)
	require.NotNil(t, signed.SignedAt)

	var reloaded models.Envelope
	require.NoError(t, db.First(&reloaded, "id = ?", envelope.ID).Error)
	assert.Equal(t, enums.EnvelopeStatusSent, reloaded.Status)

	bobNotes := notificationsFor(t, db, bob.ID)
	require.Len(t, bobNotes, 1)
	assert.Contains(t, bobNotes[0].Message, "your turn")

	// Alice cannot act twice.
	_, err = svc.Sign(ctx, SignParams{ActionParams: action(envelope, alice), Image: &image})
	assertCode(t, err, pkgerrors.CodeStateConflict)
	assert.Contains(t, err.Error(), "already signed")

	// Bob signs; envelope completes and the creator is notified.
	_, err = svc.Sign(ctx, SignParams{ActionParams: action(envelope, bob), Image: &image})
	require.NoError(t, err)

	require.NoError(t, db.First(&reloaded, "id = ?", envelope.ID).Error)
	assert.Equal(t, enums.EnvelopeStatusCompleted, reloaded.Status)

	var doc models.Document
	require.NoError(t, db.First(&doc, "id = ?", document.ID).Error)
	assert.Equal(t, enums.DocumentStatusCompleted, doc.Status)

	creatorNotes := notificationsFor(t, db, creator.ID)
	require.Len(t, creatorNotes, 1)
	assert.Contains(t, creatorNotes[0].Message, "signed by all signers")

	// Completed envelopes accept no further signer actions.
	_, err = svc.Sign(ctx, SignParams{ActionParams: action(envelope, bob), Image: &image})
	assertCode(t, err, pkgerrors.CodeStateConflict)
	assert.Contains(t, err.Error(), string(enums.EnvelopeStatusCompleted))
}

func TestSign_Gating(t *testing.T) {
	db := setupWorkflowTestDB(t)
	svc := newWorkflowService(t, db)
	ctx := context.Background()

	creator := newUser(t, db, "creator")
	signer := newUser(t, db, "signer")
	stranger := newUser(t, db, "stranger")
	document := newDocument(t, db, creator, "contract.pdf")
	envelope := newEnvelope(t, db, document, creator, enums.EnvelopeStatusDraft, signerOrder(signer))

	image := base64.StdEncoding.EncodeToString([]byte("sig"))

	// Envelope not found.
	_, err := svc.Sign(ctx, SignParams{ActionParams: ActionParams{EnvelopeID: uuid.New(), ActorID: signer.ID}, Image: &image})
	assertCode(t, err, pkgerrors.CodeNotFound)

	// Draft envelopes are not open for signing.
	_, err = svc.Sign(ctx, SignParams{ActionParams: action(envelope, signer), Image: &image})
	assertCode(t, err, pkgerrors.CodeStateConflict)
	assert.Contains(t, err.Error(), string(enums.EnvelopeStatusDraft))

	_, err = svc.Send(ctx, action(envelope, creator))
	require.NoError(t, err)

	// No signature row for the stranger.
	_, err = svc.Sign(ctx, SignParams{ActionParams: action(envelope, stranger), Image: &image})
	assertCode(t, err, pkgerrors.CodeForbidden)
	assert.Contains(t, err.Error(), "not authorized")

	// Both image sources at once.
	sigID := uuid.New()
	_, err = svc.Sign(ctx, SignParams{ActionParams: action(envelope, signer), Image: &image, SignatureID: &sigID})
	assertCode(t, err, pkgerrors.CodeValidation)

	// Malformed base64 payload.
	bad := "%%%not-base64%%%"
	_, err = svc.Sign(ctx, SignParams{ActionParams: action(envelope, signer), Image: &bad})
	assertCode(t, err, pkgerrors.CodeValidation)

	// No image, no referenced signature, no default.
	_, err = svc.Sign(ctx, SignParams{ActionParams: action(envelope, signer)})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestSign_WithStoredSignature(t *testing.T) {
	db := setupWorkflowTestDB(t)
	svc := newWorkflowService(t, db)
	ctx := context.Background()

	creator := newUser(t, db, "creator")
	signer := newUser(t, db, "signer")
	other := newUser(t, db, "other")
	document := newDocument(t, db, creator, "contract.pdf")
	envelope := newEnvelope(t, db, document, creator, enums.EnvelopeStatusDraft, signerOrder(signer))

	_, err := svc.Send(ctx, action(envelope, creator))
	require.NoError(t, err)

	mine := &models.UserSignature{ID: uuid.New(), UserID: signer.ID, Image: []byte("mine"), ContentType: "image/png"}
	theirs := &models.UserSignature{ID: uuid.New(), UserID: other.ID, Image: []byte("theirs"), ContentType: "image/png"}
	require.NoError(t, db.Create(mine).Error)
	require.NoError(t, db.Create(theirs).Error)

	// Another user's stored signature is invisible, not forbidden.
	_, err = svc.Sign(ctx, SignParams{ActionParams: action(envelope, signer), SignatureID: &theirs.ID})
	assertCode(t, err, pkgerrors.CodeNotFound)

	signed, err := svc.Sign(ctx, SignParams{ActionParams: action(envelope, signer), SignatureID: &mine.ID})
	require.NoError(t, err)
	require.NotNil(t, signed.SignatureImage)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("mine")), *signed.SignatureImage)
}

func TestSign_FallsBackToDefaultSignature(t *testing.T) {
	db := setupWorkflowTestDB(t)
	svc := newWorkflowService(t, db)
	ctx := context.Background()

	creator := newUser(t, db, "creator")
	signer := newUser(t, db, "signer")
	document := newDocument(t, db, creator, "contract.pdf")
	envelope := newEnvelope(t, db, document, creator, enums.EnvelopeStatusDraft, signerOrder(signer))

	_, err := svc.Send(ctx, action(envelope, creator))
	require.NoError(t, err)

	fallback := &models.UserSignature{ID: uuid.New(), UserID: signer.ID, Image: []byte("default"), ContentType: "image/png", IsDefault: true}
	require.NoError(t, db.Create(fallback).Error)

	signed, err := svc.Sign(ctx, SignParams{ActionParams: action(envelope, signer)})
	require.NoError(t, err)
	require.NotNil(t, signed.SignatureImage)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("default")), *signed.SignatureImage)
}

func TestDecline_ForcesRejection(t *testing.T) {
	db := setupWorkflowTestDB(t)
	svc := newWorkflowService(t, db)
	ctx := context.Background()

	creator := newUser(t, db, "creator")
	alice := newUser(t, db, "alice")
	bob := newUser(t, db, "bob")
	document := newDocument(t, db, creator, "contract.pdf")
	envelope := newEnvelope(t, db, document, creator, enums.EnvelopeStatusDraft, signerOrder(alice, bob))

	_, err := svc.Send(ctx, action(envelope, creator))
	require.NoError(t, err)

	declined, err := svc.Decline(ctx, action(envelope, alice))
	require.NoError(t, err)
	assert.Equal(t, enums.SignatureStatusDeclined, declined.Status)

	var reloaded models.Envelope
	require.NoError(t, db.First(&reloaded, "id = ?", envelope.ID).Error)
	assert.Equal(t, enums.EnvelopeStatusRejected, reloaded.Status)

	creatorNotes := notificationsFor(t, db, creator.ID)
	require.Len(t, creatorNotes, 1)
	assert.Contains(t, creatorNotes[0].Message, "alice")
	assert.Contains(t, creatorNotes[0].Message, "declined")

	// Any further signer action fails on the rejected envelope.
	image := base64.StdEncoding.EncodeToString([]byte("sig"))
	_, err = svc.Sign(ctx, SignParams{ActionParams: action(envelope, bob), Image: &image})
	assertCode(t, err, pkgerrors.CodeStateConflict)
	assert.Contains(t, err.Error(), string(enums.EnvelopeStatusRejected))

	_, err = svc.Decline(ctx, action(envelope, bob))
	assertCode(t, err, pkgerrors.CodeStateConflict)
}

func TestGetEnvelope_Visibility(t *testing.T) {
	db := setupWorkflowTestDB(t)
	svc := newWorkflowService(t, db)
	ctx := context.Background()

	creator := newUser(t, db, "creator")
	signer := newUser(t, db, "signer")
	stranger := newUser(t, db, "stranger")
	document := newDocument(t, db, creator, "contract.pdf")
	envelope := newEnvelope(t, db, document, creator, enums.EnvelopeStatusDraft, signerOrder(signer))

	_, err := svc.Send(ctx, action(envelope, creator))
	require.NoError(t, err)

	detail, err := svc.Get(ctx, creator.ID, envelope.ID)
	require.NoError(t, err)
	require.Len(t, detail.Signatures, 1)
	require.NotNil(t, detail.CurrentSignerID)
	assert.Equal(t, signer.ID, *detail.CurrentSignerID)

	_, err = svc.Get(ctx, signer.ID, envelope.ID)
	require.NoError(t, err)

	_, err = svc.Get(ctx, stranger.ID, envelope.ID)
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestOutboxEvents_EmittedPerTransition(t *testing.T) {
	db := setupWorkflowTestDB(t)
	svc := newWorkflowService(t, db)
	ctx := context.Background()

	creator := newUser(t, db, "creator")
	signer := newUser(t, db, "signer")
	document := newDocument(t, db, creator, "contract.pdf")
	envelope := newEnvelope(t, db, document, creator, enums.EnvelopeStatusDraft, signerOrder(signer))

	_, err := svc.Send(ctx, action(envelope, creator))
	require.NoError(t, err)

	image := base64.StdEncoding.EncodeToString([]byte("sig"))
	_, err = svc.Sign(ctx, SignParams{ActionParams: action(envelope, signer), Image: &image})
	require.NoError(t, err)

	types := make(map[enums.OutboxEventType]int)
	for _, event := range outboxEvents(t, db) {
		types[event.EventType]++
	}
	assert.Equal(t, 1, types[enums.EventEnvelopeSent])
	assert.Equal(t, 1, types[enums.EventSignatureSigned])
	assert.Equal(t, 1, types[enums.EventEnvelopeCompleted])
}
