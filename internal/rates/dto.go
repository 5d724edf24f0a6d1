package rates

import (
	"github.com/shopspring/decimal"

	"github.com/motorsure/brokerage-backend/pkg/db/models"
)

// CreateParams captures a new rate-table row.
type CreateParams struct {
	CarBrand       string `json:"car_brand" validate:"required"`
	CarModel       string `json:"car_model" validate:"required"`
	SubModel       string `json:"sub_model"`
	Year           int    `json:"year" validate:"required,gte=1950"`
	InsuranceBrand string `json:"insurance_brand" validate:"required"`
	Level          string `json:"level" validate:"required"`
	RepairType     string `json:"repair_type" validate:"omitempty,oneof=garage dealer"`

	HasFireCoverage  bool `json:"has_fire_coverage"`
	HasFloodCoverage bool `json:"has_flood_coverage"`
	HasTheftCoverage bool `json:"has_theft_coverage"`

	AccidentCoverageOut decimal.Decimal `json:"accident_coverage_out"`
	AccidentCoverageIn  decimal.Decimal `json:"accident_coverage_in"`
	PropertyCoverage    decimal.Decimal `json:"property_coverage"`
	PerAccidentCoverage decimal.Decimal `json:"per_accident_coverage"`
	FireFloodCoverage   decimal.Decimal `json:"fire_flood_coverage"`
	FirstLossCoverage   decimal.Decimal `json:"first_loss_coverage"`
	Premium             decimal.Decimal `json:"premium" validate:"required"`
}

// UpdateParams carries a partial rate edit.
type UpdateParams struct {
	InsuranceBrand *string `json:"insurance_brand"`
	Level          *string `json:"level"`
	RepairType     *string `json:"repair_type" validate:"omitempty,oneof=garage dealer"`

	HasFireCoverage  *bool `json:"has_fire_coverage"`
	HasFloodCoverage *bool `json:"has_flood_coverage"`
	HasTheftCoverage *bool `json:"has_theft_coverage"`

	AccidentCoverageOut *decimal.Decimal `json:"accident_coverage_out"`
	AccidentCoverageIn  *decimal.Decimal `json:"accident_coverage_in"`
	PropertyCoverage    *decimal.Decimal `json:"property_coverage"`
	PerAccidentCoverage *decimal.Decimal `json:"per_accident_coverage"`
	FireFloodCoverage   *decimal.Decimal `json:"fire_flood_coverage"`
	FirstLossCoverage   *decimal.Decimal `json:"first_loss_coverage"`
	Premium             *decimal.Decimal `json:"premium"`
}

// QuoteParams identifies the vehicle to quote plans for.
type QuoteParams struct {
	CarBrand string `json:"car_brand" validate:"required"`
	CarModel string `json:"car_model" validate:"required"`
	SubModel string `json:"sub_model"`
	Year     int    `json:"year" validate:"required,gte=1950"`
}

// ListParams configures a paginated rate listing.
type ListParams struct {
	CarBrand       string
	CarModel       string
	Year           int
	InsuranceBrand string
	Level          string
	Limit          int
	Cursor         string
}

// ListResult wraps returned rates and the cursor for the next page.
type ListResult struct {
	Items  []models.InsuranceRate `json:"items"`
	Cursor string                 `json:"cursor"`
}
