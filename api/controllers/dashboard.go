package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/motorsure/brokerage-backend/api/middleware"
	"github.com/motorsure/brokerage-backend/api/responses"
	"github.com/motorsure/brokerage-backend/internal/dashboard"
	pkgerrors "github.com/motorsure/brokerage-backend/pkg/errors"
	"github.com/motorsure/brokerage-backend/pkg/logger"
)

// AdminDashboard returns the back-office aggregate view.
func AdminDashboard(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := svc.AdminSummary(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

// AgentDashboard returns the calling agent's book of business.
func AgentDashboard(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID := middleware.ActorIDFromContext(r.Context())
		if actorID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}
		summary, err := svc.AgentSummary(r.Context(), actorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}
