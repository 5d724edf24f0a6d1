package rates

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/motorsure/brokerage-backend/pkg/db/models"
	pkgerrors "github.com/motorsure/brokerage-backend/pkg/errors"
	"github.com/motorsure/brokerage-backend/pkg/pagination"
)

const defaultRepairType = "garage"

// Service exposes rate-table operations.
type Service interface {
	Create(ctx context.Context, params CreateParams) (*models.InsuranceRate, error)
	Get(ctx context.Context, id uuid.UUID) (*models.InsuranceRate, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Quote(ctx context.Context, params QuoteParams) ([]models.InsuranceRate, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*models.InsuranceRate, error)
	Delete(ctx context.Context, id uuid.UUID) error

	CatalogYears(ctx context.Context) ([]int, error)
	CatalogBrands(ctx context.Context, year int) ([]string, error)
	CatalogModels(ctx context.Context, brand string, year int) ([]string, error)
	CatalogSubModels(ctx context.Context, brand, model string, year int) ([]string, error)
}

// ServiceParams bundles the dependencies for the rate service.
type ServiceParams struct {
	Repository Repository
}

type service struct {
	repo Repository
}

// NewService constructs a rate service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repository == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "rates repository is required")
	}
	return &service{repo: params.Repository}, nil
}

func (s *service) Create(ctx context.Context, params CreateParams) (*models.InsuranceRate, error) {
	repairType := params.RepairType
	if repairType == "" {
		repairType = defaultRepairType
	}
	rate := &models.InsuranceRate{
		CarBrand:            strings.TrimSpace(params.CarBrand),
		CarModel:            strings.TrimSpace(params.CarModel),
		SubModel:            strings.TrimSpace(params.SubModel),
		Year:                params.Year,
		InsuranceBrand:      strings.TrimSpace(params.InsuranceBrand),
		Level:               params.Level,
		RepairType:          repairType,
		HasFireCoverage:     params.HasFireCoverage,
		HasFloodCoverage:    params.HasFloodCoverage,
		HasTheftCoverage:    params.HasTheftCoverage,
		AccidentCoverageOut: params.AccidentCoverageOut,
		AccidentCoverageIn:  params.AccidentCoverageIn,
		PropertyCoverage:    params.PropertyCoverage,
		PerAccidentCoverage: params.PerAccidentCoverage,
		FireFloodCoverage:   params.FireFloodCoverage,
		FirstLossCoverage:   params.FirstLossCoverage,
		Premium:             params.Premium,
	}
	if rate.Premium.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "premium must not be negative")
	}
	if err := s.repo.Create(ctx, rate); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create rate")
	}
	return rate, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.InsuranceRate, error) {
	rate, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "rate not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find rate")
	}
	return rate, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	var cursor *pagination.Cursor
	if params.Cursor != "" {
		parsed, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
		}
		cursor = parsed
	}

	rows, next, err := s.repo.List(ctx, listQuery{
		CarBrand:       strings.TrimSpace(params.CarBrand),
		CarModel:       strings.TrimSpace(params.CarModel),
		Year:           params.Year,
		InsuranceBrand: strings.TrimSpace(params.InsuranceBrand),
		Level:          params.Level,
		Limit:          params.Limit,
		Cursor:         cursor,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list rates")
	}
	nextCursor := ""
	if next != nil {
		nextCursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: rows, Cursor: nextCursor}, nil
}

func (s *service) Quote(ctx context.Context, params QuoteParams) ([]models.InsuranceRate, error) {
	brand := strings.TrimSpace(params.CarBrand)
	model := strings.TrimSpace(params.CarModel)
	if brand == "" || model == "" || params.Year <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "car brand, model and year are required")
	}
	rows, err := s.repo.Quote(ctx, quoteQuery{
		CarBrand: brand,
		CarModel: model,
		SubModel: strings.TrimSpace(params.SubModel),
		Year:     params.Year,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "quote rates")
	}
	return rows, nil
}

// CatalogYears lists the model years the rate table covers, newest first.
func (s *service) CatalogYears(ctx context.Context) ([]int, error) {
	years, err := s.repo.CatalogYears(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "catalog years")
	}
	return years, nil
}

// CatalogBrands lists car brands, optionally narrowed to a model year.
func (s *service) CatalogBrands(ctx context.Context, year int) ([]string, error) {
	brands, err := s.repo.CatalogBrands(ctx, year)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "catalog brands")
	}
	return brands, nil
}

// CatalogModels lists the models sold under a brand.
func (s *service) CatalogModels(ctx context.Context, brand string, year int) ([]string, error) {
	brand = strings.TrimSpace(brand)
	if brand == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "car brand is required")
	}
	carModels, err := s.repo.CatalogModels(ctx, brand, year)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "catalog models")
	}
	return carModels, nil
}

// CatalogSubModels lists the sub-model variants of a brand and model.
func (s *service) CatalogSubModels(ctx context.Context, brand, model string, year int) ([]string, error) {
	brand = strings.TrimSpace(brand)
	model = strings.TrimSpace(model)
	if brand == "" || model == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "car brand and model are required")
	}
	subModels, err := s.repo.CatalogSubModels(ctx, brand, model, year)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "catalog sub-models")
	}
	return subModels, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*models.InsuranceRate, error) {
	updates := map[string]any{}
	if params.InsuranceBrand != nil {
		updates["insurance_brand"] = *params.InsuranceBrand
	}
	if params.Level != nil {
		updates["level"] = *params.Level
	}
	if params.RepairType != nil {
		updates["repair_type"] = *params.RepairType
	}
	if params.HasFireCoverage != nil {
		updates["has_fire_coverage"] = *params.HasFireCoverage
	}
	if params.HasFloodCoverage != nil {
		updates["has_flood_coverage"] = *params.HasFloodCoverage
	}
	if params.HasTheftCoverage != nil {
		updates["has_theft_coverage"] = *params.HasTheftCoverage
	}
	if params.AccidentCoverageOut != nil {
		updates["accident_coverage_out"] = *params.AccidentCoverageOut
	}
	if params.AccidentCoverageIn != nil {
		updates["accident_coverage_in"] = *params.AccidentCoverageIn
	}
	if params.PropertyCoverage != nil {
		updates["property_coverage"] = *params.PropertyCoverage
	}
	if params.PerAccidentCoverage != nil {
		updates["per_accident_coverage"] = *params.PerAccidentCoverage
	}
	if params.FireFloodCoverage != nil {
		updates["fire_flood_coverage"] = *params.FireFloodCoverage
	}
	if params.Premium != nil {
		if params.Premium.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "premium must not be negative")
		}
		updates["premium"] = *params.Premium
	}
	if params.FirstLossCoverage != nil {
		updates["first_loss_coverage"] = *params.FirstLossCoverage
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update rate")
	}
	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete rate")
	}
	return nil
}
