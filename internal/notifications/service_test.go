package notifications

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/signflowhq/signflow-backend/pkg/db/models"
	pkgerrors "github.com/signflowhq/signflow-backend/pkg/errors"
	"github.com/signflowhq/signflow-backend/pkg/logger"
)

func setupNotificationsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.Exec(`CREATE TABLE notifications (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  message TEXT NOT NULL,
  read_at DATETIME,
  created_at DATETIME
);`).Error)
	return db
}

func newNotificationsService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)
	return svc
}

func notify(t *testing.T, db *gorm.DB, userID uuid.UUID, message string) *models.Notification {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	notifier := NewNotifier(NewRepository(db), logg)
	notifier.Notify(context.Background(), userID, message)

	var notification models.Notification
	require.NoError(t, db.Where("user_id = ? AND message = ?", userID, message).First(&notification).Error)
	return &notification
}

func notificationsAssertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, code, typed.Code())
}

func TestListFiltersUnreadOnly(t *testing.T) {
	db := setupNotificationsTestDB(t)
	svc := newNotificationsService(t, db)
	user := uuid.New()

	read := notify(t, db, user, "older news")
	notify(t, db, user, "fresh news")
	notify(t, db, uuid.New(), "someone else's news")

	require.NoError(t, svc.MarkRead(context.Background(), user, read.ID))

	all, err := svc.List(context.Background(), ListParams{UserID: user, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, all.Items, 2)

	unread, err := svc.List(context.Background(), ListParams{UserID: user, Limit: 10, UnreadOnly: true})
	require.NoError(t, err)
	require.Len(t, unread.Items, 1)
	assert.Equal(t, "fresh news", unread.Items[0].Message)
}

func TestListRejectsMissingUser(t *testing.T) {
	db := setupNotificationsTestDB(t)
	svc := newNotificationsService(t, db)

	_, err := svc.List(context.Background(), ListParams{Limit: 10})
	notificationsAssertCode(t, err, pkgerrors.CodeValidation)
}

func TestMarkReadIsScopedToOwner(t *testing.T) {
	db := setupNotificationsTestDB(t)
	svc := newNotificationsService(t, db)
	user := uuid.New()

	notification := notify(t, db, user, "hello")

	err := svc.MarkRead(context.Background(), uuid.New(), notification.ID)
	notificationsAssertCode(t, err, pkgerrors.CodeNotFound)

	require.NoError(t, svc.MarkRead(context.Background(), user, notification.ID))

	var row models.Notification
	require.NoError(t, db.First(&row, "id = ?", notification.ID).Error)
	assert.NotNil(t, row.ReadAt)
}

func TestMarkReadIsIdempotent(t *testing.T) {
	db := setupNotificationsTestDB(t)
	svc := newNotificationsService(t, db)
	user := uuid.New()

	notification := notify(t, db, user, "hello")
	require.NoError(t, svc.MarkRead(context.Background(), user, notification.ID))
	require.NoError(t, svc.MarkRead(context.Background(), user, notification.ID))
}

func TestMarkReadUnknownNotification(t *testing.T) {
	db := setupNotificationsTestDB(t)
	svc := newNotificationsService(t, db)

	err := svc.MarkRead(context.Background(), uuid.New(), uuid.New())
	notificationsAssertCode(t, err, pkgerrors.CodeNotFound)
}

func TestMarkAllReadCountsOnlyUnread(t *testing.T) {
	db := setupNotificationsTestDB(t)
	svc := newNotificationsService(t, db)
	user := uuid.New()

	first := notify(t, db, user, "one")
	notify(t, db, user, "two")
	notify(t, db, user, "three")
	notify(t, db, uuid.New(), "not yours")

	require.NoError(t, svc.MarkRead(context.Background(), user, first.ID))

	count, err := svc.MarkAllRead(context.Background(), user)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	again, err := svc.MarkAllRead(context.Background(), user)
	require.NoError(t, err)
	assert.Zero(t, again)
}
