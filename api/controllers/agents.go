package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/motorsure/brokerage-backend/api/middleware"
	"github.com/motorsure/brokerage-backend/api/responses"
	"github.com/motorsure/brokerage-backend/api/validators"
	"github.com/motorsure/brokerage-backend/internal/agents"
	pkgerrors "github.com/motorsure/brokerage-backend/pkg/errors"
	"github.com/motorsure/brokerage-backend/pkg/logger"
)

// AgentProfile returns the caller's own agent account.
func AgentProfile(svc agents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID := middleware.ActorIDFromContext(r.Context())
		if actorID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}
		profile, err := svc.Get(r.Context(), actorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

// AgentUpdateProfile edits the caller's own agent account.
func AgentUpdateProfile(svc agents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID := middleware.ActorIDFromContext(r.Context())
		if actorID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}
		var params agents.UpdateParams
		if err := validators.DecodeJSONBody(r, &params); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		profile, err := svc.Update(r.Context(), actorID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

// AgentByLicense resolves an approved agent's public license card.
func AgentByLicense(svc agents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, err := svc.GetByLicense(r.Context(), chi.URLParam(r, "licenseNumber"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

// AdminListAgents pages through agent accounts.
func AdminListAgents(svc agents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.QueryInt(r, "limit")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.List(r.Context(), agents.ListParams{
			Search:             strings.TrimSpace(r.URL.Query().Get("search")),
			VerificationStatus: strings.TrimSpace(r.URL.Query().Get("verification_status")),
			Limit:              limit,
			Cursor:             strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// AdminGetAgent returns one agent account.
func AdminGetAgent(svc agents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(chi.URLParam(r, "agentId"), "agent id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		profile, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

// AdminUpdateAgent edits an agent account on behalf of an admin.
func AdminUpdateAgent(svc agents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(chi.URLParam(r, "agentId"), "agent id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var params agents.UpdateParams
		if err := validators.DecodeJSONBody(r, &params); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		profile, err := svc.Update(r.Context(), id, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

type agentVerifyRequest struct {
	Status string `json:"status" validate:"required,oneof=in_review approved rejected"`
}

// AdminVerifyAgent moves an agent through license review.
func AdminVerifyAgent(svc agents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(chi.URLParam(r, "agentId"), "agent id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req agentVerifyRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		profile, err := svc.SetVerificationStatus(r.Context(), id, req.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}
