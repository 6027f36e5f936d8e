package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/signflowhq/signflow-backend/api/responses"
	"github.com/signflowhq/signflow-backend/api/validators"
	"github.com/signflowhq/signflow-backend/internal/audit"
	pkgerrors "github.com/signflowhq/signflow-backend/pkg/errors"
	"github.com/signflowhq/signflow-backend/pkg/logger"
	"github.com/signflowhq/signflow-backend/pkg/pagination"
)

// AdminAuditList returns the filtered audit trail. Admin only.
func AdminAuditList(svc audit.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "audit service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := audit.ListParams{
			Action: strings.TrimSpace(r.URL.Query().Get("action")),
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("actorId")); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid actor id"))
				return
			}
			params.ActorID = &id
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("targetId")); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid target id"))
				return
			}
			params.TargetID = &id
		}

		result, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
