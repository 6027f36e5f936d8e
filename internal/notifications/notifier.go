package notifications

import (
	"context"

	"github.com/google/uuid"

	"github.com/signflowhq/signflow-backend/pkg/db/models"
	"github.com/signflowhq/signflow-backend/pkg/logger"
)

// Notifier is the outbound-message port consumed by workflow services.
// Enqueue failures are logged and ignored; callers never block on delivery.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, message string)
}

type notifier struct {
	repo Repository
	logg *logger.Logger
}

// NewNotifier wires the fire-and-forget notification port.
func NewNotifier(repo Repository, logg *logger.Logger) Notifier {
	return &notifier{repo: repo, logg: logg}
}

func (n *notifier) Notify(ctx context.Context, userID uuid.UUID, message string) {
	if n == nil || n.repo == nil || userID == uuid.Nil || message == "" {
		return
	}
	row := &models.Notification{
		UserID:  userID,
		Message: message,
	}
	if err := n.repo.Create(ctx, row); err != nil {
		if n.logg != nil {
			n.logg.Error(n.logg.WithUserID(ctx, userID.String()), "notification enqueue failed", err)
		}
	}
}
