package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/motorsure/brokerage-backend/api/responses"
	"github.com/motorsure/brokerage-backend/api/validators"
	"github.com/motorsure/brokerage-backend/internal/rates"
	"github.com/motorsure/brokerage-backend/pkg/logger"
)

// QuoteRates lists matching plans for a vehicle, cheapest first.
func QuoteRates(svc rates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		year, err := validators.QueryInt(r, "year")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := rates.QuoteParams{
			CarBrand: strings.TrimSpace(r.URL.Query().Get("car_brand")),
			CarModel: strings.TrimSpace(r.URL.Query().Get("car_model")),
			SubModel: strings.TrimSpace(r.URL.Query().Get("sub_model")),
			Year:     year,
		}
		rows, err := svc.Quote(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// ListRates pages through the rate table with optional filters.
func ListRates(svc rates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.QueryInt(r, "limit")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		year, err := validators.QueryInt(r, "year")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := rates.ListParams{
			CarBrand:       strings.TrimSpace(r.URL.Query().Get("car_brand")),
			CarModel:       strings.TrimSpace(r.URL.Query().Get("car_model")),
			Year:           year,
			InsuranceBrand: strings.TrimSpace(r.URL.Query().Get("insurance_brand")),
			Level:          strings.TrimSpace(r.URL.Query().Get("level")),
			Limit:          limit,
			Cursor:         strings.TrimSpace(r.URL.Query().Get("cursor")),
		}
		result, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// GetRate returns one rate row.
func GetRate(svc rates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(chi.URLParam(r, "rateId"), "rate id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rate, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rate)
	}
}

// AdminCreateRate inserts a new rate-table row.
func AdminCreateRate(svc rates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params rates.CreateParams
		if err := validators.DecodeJSONBody(r, &params); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rate, err := svc.Create(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, rate)
	}
}

// AdminUpdateRate applies a partial edit to a rate row.
func AdminUpdateRate(svc rates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(chi.URLParam(r, "rateId"), "rate id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var params rates.UpdateParams
		if err := validators.DecodeJSONBody(r, &params); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rate, err := svc.Update(r.Context(), id, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rate)
	}
}

// AdminDeleteRate removes a rate row.
func AdminDeleteRate(svc rates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(chi.URLParam(r, "rateId"), "rate id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
