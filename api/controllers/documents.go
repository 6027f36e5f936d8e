package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/signflowhq/signflow-backend/api/responses"
	"github.com/signflowhq/signflow-backend/api/validators"
	"github.com/signflowhq/signflow-backend/internal/documents"
	pkgerrors "github.com/signflowhq/signflow-backend/pkg/errors"
	"github.com/signflowhq/signflow-backend/pkg/logger"
	"github.com/signflowhq/signflow-backend/pkg/pagination"
)

type uploadDocumentRequest struct {
	FileURL  string `json:"fileUrl" validate:"required"`
	FileName string `json:"fileName" validate:"required,max=512"`
	FileSize int64  `json:"fileSize" validate:"min=0"`
}

// DocumentUpload registers a document whose blob already lives in external
// storage.
func DocumentUpload(svc documents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "documents service unavailable"))
			return
		}

		owner, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body uploadDocumentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		document, err := svc.Upload(r.Context(), documents.UploadParams{
			OwnerID:   owner,
			FileURL:   body.FileURL,
			FileName:  body.FileName,
			FileSize:  body.FileSize,
			IPAddress: clientIP(r),
			UserAgent: userAgent(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, document)
	}
}

func DocumentGet(svc documents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "documents service unavailable"))
			return
		}

		owner, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		documentID, err := pathUUID(r, chi.URLParam(r, "documentId"), "document id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		document, err := svc.Get(r.Context(), owner, documentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, document)
	}
}

func DocumentList(svc documents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "documents service unavailable"))
			return
		}

		owner, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), documents.ListParams{
			OwnerID: owner,
			Limit:   limit,
			Cursor:  strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

func DocumentDelete(svc documents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "documents service unavailable"))
			return
		}

		owner, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		documentID, err := pathUUID(r, chi.URLParam(r, "documentId"), "document id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), documents.DeleteParams{
			OwnerID:    owner,
			DocumentID: documentID,
			IPAddress:  clientIP(r),
			UserAgent:  userAgent(r),
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}
