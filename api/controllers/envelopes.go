package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/signflowhq/signflow-backend/api/responses"
	"github.com/signflowhq/signflow-backend/api/validators"
	"github.com/signflowhq/signflow-backend/internal/envelopes"
	pkgerrors "github.com/signflowhq/signflow-backend/pkg/errors"
	"github.com/signflowhq/signflow-backend/pkg/logger"
	"github.com/signflowhq/signflow-backend/pkg/pagination"
)

type signingOrderEntryRequest struct {
	SignerID *string `json:"signerId"`
	Order    *int    `json:"order"`
}

type createEnvelopeRequest struct {
	DocumentID   string                     `json:"documentId" validate:"required,uuid"`
	SigningOrder []signingOrderEntryRequest `json:"signingOrder"`
}

type signRequest struct {
	Image       *string `json:"image"`
	SignatureID *string `json:"signatureId"`
}

// EnvelopeCreate builds a draft envelope over a document the caller owns.
func EnvelopeCreate(svc envelopes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "envelopes service unavailable"))
			return
		}

		creator, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createEnvelopeRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		documentID, err := uuid.Parse(body.DocumentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid document id"))
			return
		}

		order := make([]envelopes.SigningOrderEntryInput, 0, len(body.SigningOrder))
		for _, entry := range body.SigningOrder {
			order = append(order, envelopes.SigningOrderEntryInput{
				SignerID: entry.SignerID,
				Order:    entry.Order,
			})
		}

		envelope, err := svc.Create(r.Context(), envelopes.CreateParams{
			DocumentID:   documentID,
			CreatorID:    creator,
			SigningOrder: order,
			IPAddress:    clientIP(r),
			UserAgent:    userAgent(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, envelope)
	}
}

func envelopeAction(r *http.Request) (envelopes.ActionParams, error) {
	actor, err := actorID(r)
	if err != nil {
		return envelopes.ActionParams{}, err
	}
	envelopeID, err := pathUUID(r, chi.URLParam(r, "envelopeId"), "envelope id")
	if err != nil {
		return envelopes.ActionParams{}, err
	}
	return envelopes.ActionParams{
		EnvelopeID: envelopeID,
		ActorID:    actor,
		IPAddress:  clientIP(r),
		UserAgent:  userAgent(r),
	}, nil
}

// EnvelopeSend transitions a draft envelope to sent and opens signing.
func EnvelopeSend(svc envelopes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "envelopes service unavailable"))
			return
		}

		params, err := envelopeAction(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		envelope, err := svc.Send(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, envelope)
	}
}

// EnvelopeReject cancels an envelope. Creator only, any status.
func EnvelopeReject(svc envelopes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "envelopes service unavailable"))
			return
		}

		params, err := envelopeAction(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		envelope, err := svc.Reject(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, envelope)
	}
}

// EnvelopeSign records the current signer's approval.
func EnvelopeSign(svc envelopes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "envelopes service unavailable"))
			return
		}

		params, err := envelopeAction(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body signRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		signParams := envelopes.SignParams{ActionParams: params, Image: body.Image}
		if body.SignatureID != nil {
			sigID, err := uuid.Parse(*body.SignatureID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid signature id"))
				return
			}
			signParams.SignatureID = &sigID
		}

		signature, err := svc.Sign(r.Context(), signParams)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, signature)
	}
}

// EnvelopeDecline records the current signer's refusal.
func EnvelopeDecline(svc envelopes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "envelopes service unavailable"))
			return
		}

		params, err := envelopeAction(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		signature, err := svc.Decline(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, signature)
	}
}

// EnvelopeGet returns the envelope detail for the creator or a signer.
func EnvelopeGet(svc envelopes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "envelopes service unavailable"))
			return
		}

		actor, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		envelopeID, err := pathUUID(r, chi.URLParam(r, "envelopeId"), "envelope id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.Get(r.Context(), actor, envelopeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// EnvelopeList returns envelopes the caller created.
func EnvelopeList(svc envelopes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "envelopes service unavailable"))
			return
		}

		params, err := listParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// EnvelopeInbox returns envelopes in which the caller is a signer.
func EnvelopeInbox(svc envelopes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "envelopes service unavailable"))
			return
		}

		params, err := listParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListForSigner(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func listParams(r *http.Request) (envelopes.ListParams, error) {
	actor, err := actorID(r)
	if err != nil {
		return envelopes.ListParams{}, err
	}
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return envelopes.ListParams{}, err
	}
	return envelopes.ListParams{
		UserID: actor,
		Status: strings.TrimSpace(r.URL.Query().Get("status")),
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}, nil
}
