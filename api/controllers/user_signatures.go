package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/signflowhq/signflow-backend/api/responses"
	"github.com/signflowhq/signflow-backend/api/validators"
	"github.com/signflowhq/signflow-backend/internal/usersignatures"
	pkgerrors "github.com/signflowhq/signflow-backend/pkg/errors"
	"github.com/signflowhq/signflow-backend/pkg/logger"
)

type createUserSignatureRequest struct {
	Label     string `json:"label" validate:"max=200"`
	Image     string `json:"image" validate:"required"`
	IsDefault bool   `json:"isDefault"`
}

type updateUserSignatureRequest struct {
	Label     *string `json:"label"`
	Image     *string `json:"image"`
	IsDefault *bool   `json:"isDefault"`
}

// UserSignatureCreate stores a reusable signature image for the caller.
func UserSignatureCreate(svc usersignatures.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user signatures service unavailable"))
			return
		}

		actor, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createUserSignatureRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		signature, err := svc.Create(r.Context(), usersignatures.CreateParams{
			UserID:    actor,
			Label:     body.Label,
			Image:     body.Image,
			IsDefault: body.IsDefault,
			IPAddress: clientIP(r),
			UserAgent: userAgent(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, signature)
	}
}

func UserSignatureList(svc usersignatures.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user signatures service unavailable"))
			return
		}

		actor, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		signatures, err := svc.List(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, signatures)
	}
}

func UserSignatureGet(svc usersignatures.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user signatures service unavailable"))
			return
		}

		actor, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		signatureID, err := pathUUID(r, chi.URLParam(r, "signatureId"), "signature id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		signature, err := svc.Get(r.Context(), actor, signatureID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, signature)
	}
}

func UserSignatureUpdate(svc usersignatures.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user signatures service unavailable"))
			return
		}

		actor, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		signatureID, err := pathUUID(r, chi.URLParam(r, "signatureId"), "signature id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateUserSignatureRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		signature, err := svc.Update(r.Context(), usersignatures.UpdateParams{
			UserID:      actor,
			SignatureID: signatureID,
			Label:       body.Label,
			Image:       body.Image,
			IsDefault:   body.IsDefault,
			IPAddress:   clientIP(r),
			UserAgent:   userAgent(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, signature)
	}
}

func UserSignatureDelete(svc usersignatures.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user signatures service unavailable"))
			return
		}

		actor, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		signatureID, err := pathUUID(r, chi.URLParam(r, "signatureId"), "signature id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), usersignatures.DeleteParams{
			UserID:      actor,
			SignatureID: signatureID,
			IPAddress:   clientIP(r),
			UserAgent:   userAgent(r),
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}
