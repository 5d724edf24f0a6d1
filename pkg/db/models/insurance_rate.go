package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InsuranceRate is a row of the master rate table: one insurer's plan for a
// specific car brand/model/year.
type InsuranceRate struct {
	ID                  uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CarBrand            string          `gorm:"column:car_brand;type:text;not null"`
	CarModel            string          `gorm:"column:car_model;type:text;not null"`
	SubModel            string          `gorm:"column:sub_model;type:text;not null"`
	Year                int             `gorm:"column:year;not null"`
	InsuranceBrand      string          `gorm:"column:insurance_brand;type:text;not null"`
	Level               string          `gorm:"column:level;type:text;not null"`
	RepairType          string          `gorm:"column:repair_type;type:text;not null;default:'garage'"`
	HasFireCoverage     bool            `gorm:"column:has_fire_coverage;not null;default:false"`
	HasFloodCoverage    bool            `gorm:"column:has_flood_coverage;not null;default:false"`
	HasTheftCoverage    bool            `gorm:"column:has_theft_coverage;not null;default:false"`
	AccidentCoverageOut decimal.Decimal `gorm:"column:accident_coverage_out;type:numeric(14,2);not null;default:0"`
	AccidentCoverageIn  decimal.Decimal `gorm:"column:accident_coverage_in;type:numeric(14,2);not null;default:0"`
	PropertyCoverage    decimal.Decimal `gorm:"column:property_coverage;type:numeric(14,2);not null;default:0"`
	PerAccidentCoverage decimal.Decimal `gorm:"column:per_accident_coverage;type:numeric(14,2);not null;default:0"`
	FireFloodCoverage   decimal.Decimal `gorm:"column:fire_flood_coverage;type:numeric(14,2);not null;default:0"`
	FirstLossCoverage   decimal.Decimal `gorm:"column:first_loss_coverage;type:numeric(14,2);not null;default:0"`
	Premium             decimal.Decimal `gorm:"column:premium;type:numeric(14,2);not null;default:0"`
	CreatedAt           time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
