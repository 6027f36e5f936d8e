package audit

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/signflowhq/signflow-backend/pkg/enums"
	pkgerrors "github.com/signflowhq/signflow-backend/pkg/errors"
	"github.com/signflowhq/signflow-backend/pkg/logger"
)

func setupAuditTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.Exec(`CREATE TABLE audit_logs (
  id TEXT PRIMARY KEY,
  actor_id TEXT,
  action TEXT NOT NULL,
  target_type TEXT NOT NULL,
  target_id TEXT NOT NULL,
  message TEXT NOT NULL,
  ip_address TEXT,
  user_agent TEXT,
  created_at DATETIME
);`).Error)
	return db
}

func record(t *testing.T, db *gorm.DB, actorID uuid.UUID, action enums.AuditAction, targetID uuid.UUID) {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	recorder := NewRecorder(NewRepository(db), logg)
	recorder.Record(context.Background(), Entry{
		ActorID:    &actorID,
		Action:     action,
		TargetType: enums.AuditTargetEnvelope,
		TargetID:   targetID,
		Message:    "test entry",
	})
}

func TestListFiltersByActorActionAndTarget(t *testing.T) {
	db := setupAuditTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	alice := uuid.New()
	bob := uuid.New()
	envelope := uuid.New()

	record(t, db, alice, enums.AuditActionCreateEnvelope, envelope)
	record(t, db, alice, enums.AuditActionSendEnvelope, envelope)
	record(t, db, bob, enums.AuditActionSignDoc, envelope)
	record(t, db, bob, enums.AuditActionSignDoc, uuid.New())

	byActor, err := svc.List(context.Background(), ListParams{ActorID: &alice, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, byActor.Items, 2)

	byAction, err := svc.List(context.Background(), ListParams{Action: "SIGN_DOC", Limit: 10})
	require.NoError(t, err)
	assert.Len(t, byAction.Items, 2)

	byTarget, err := svc.List(context.Background(), ListParams{TargetID: &envelope, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, byTarget.Items, 3)

	combined, err := svc.List(context.Background(), ListParams{
		ActorID:  &bob,
		Action:   "SIGN_DOC",
		TargetID: &envelope,
		Limit:    10,
	})
	require.NoError(t, err)
	assert.Len(t, combined.Items, 1)
}

func TestListRejectsUnknownAction(t *testing.T) {
	db := setupAuditTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	_, err = svc.List(context.Background(), ListParams{Action: "NOT_AN_ACTION", Limit: 10})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestRecorderSwallowsWriteFailures(t *testing.T) {
	db := setupAuditTestDB(t)
	require.NoError(t, db.Exec(`DROP TABLE audit_logs`).Error)

	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	recorder := NewRecorder(NewRepository(db), logg)

	actor := uuid.New()
	recorder.Record(context.Background(), Entry{
		ActorID:    &actor,
		Action:     enums.AuditActionCreateEnvelope,
		TargetType: enums.AuditTargetEnvelope,
		TargetID:   uuid.New(),
		Message:    "write into missing table",
	})
}
