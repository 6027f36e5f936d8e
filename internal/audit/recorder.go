package audit

import (
	"context"

	"github.com/google/uuid"

	"github.com/signflowhq/signflow-backend/pkg/db/models"
	"github.com/signflowhq/signflow-backend/pkg/enums"
	"github.com/signflowhq/signflow-backend/pkg/logger"
)

// Entry describes one action to record.
type Entry struct {
	ActorID    *uuid.UUID
	Action     enums.AuditAction
	TargetType enums.AuditTargetType
	TargetID   uuid.UUID
	Message    string
	IPAddress  *string
	UserAgent  *string
}

// Recorder appends audit entries. Write failures are logged and swallowed so
// an audit problem can never fail the user-facing operation.
type Recorder struct {
	repo Repository
	logg *logger.Logger
}

// NewRecorder wires the audit recorder.
func NewRecorder(repo Repository, logg *logger.Logger) *Recorder {
	return &Recorder{repo: repo, logg: logg}
}

// Record persists the entry, swallowing any persistence error.
func (r *Recorder) Record(ctx context.Context, entry Entry) {
	if r == nil || r.repo == nil {
		return
	}
	row := &models.AuditLog{
		ActorID:    entry.ActorID,
		Action:     entry.Action,
		TargetType: entry.TargetType,
		TargetID:   entry.TargetID,
		Message:    entry.Message,
		IPAddress:  entry.IPAddress,
		UserAgent:  entry.UserAgent,
	}
	if err := r.repo.Insert(ctx, row); err != nil {
		if r.logg != nil {
			fields := map[string]any{
				"action":    string(entry.Action),
				"target_id": entry.TargetID.String(),
			}
			r.logg.Error(r.logg.WithFields(ctx, fields), "audit write failed", err)
		}
	}
}
