package controllers

import (
	"net/http"
	"strings"

	"github.com/motorsure/brokerage-backend/api/responses"
	"github.com/motorsure/brokerage-backend/api/validators"
	"github.com/motorsure/brokerage-backend/internal/rates"
	"github.com/motorsure/brokerage-backend/pkg/logger"
)

// Car catalog endpoints feed the vehicle dropdowns on the purchase form.

// CarYears lists the model years with rate coverage, newest first.
func CarYears(svc rates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		years, err := svc.CatalogYears(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, years)
	}
}

// CarBrands lists car brands, optionally narrowed by year.
func CarBrands(svc rates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		year, err := validators.QueryInt(r, "year")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		brands, err := svc.CatalogBrands(r.Context(), year)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, brands)
	}
}

// CarModels lists the models for a brand.
func CarModels(svc rates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		year, err := validators.QueryInt(r, "year")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		brand := strings.TrimSpace(r.URL.Query().Get("car_brand"))
		carModels, err := svc.CatalogModels(r.Context(), brand, year)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, carModels)
	}
}

// CarSubModels lists the sub-model variants for a brand and model.
func CarSubModels(svc rates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		year, err := validators.QueryInt(r, "year")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		brand := strings.TrimSpace(r.URL.Query().Get("car_brand"))
		model := strings.TrimSpace(r.URL.Query().Get("car_model"))
		subModels, err := svc.CatalogSubModels(r.Context(), brand, model, year)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, subModels)
	}
}
