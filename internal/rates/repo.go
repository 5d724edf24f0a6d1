package rates

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/motorsure/brokerage-backend/pkg/db/models"
	"github.com/motorsure/brokerage-backend/pkg/pagination"
)

// Repository exposes persistence helpers for the insurance rate table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, rate *models.InsuranceRate) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.InsuranceRate, error)
	List(ctx context.Context, query listQuery) ([]models.InsuranceRate, *pagination.Cursor, error)
	Quote(ctx context.Context, query quoteQuery) ([]models.InsuranceRate, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error

	CatalogYears(ctx context.Context) ([]int, error)
	CatalogBrands(ctx context.Context, year int) ([]string, error)
	CatalogModels(ctx context.Context, brand string, year int) ([]string, error)
	CatalogSubModels(ctx context.Context, brand, model string, year int) ([]string, error)
}

type listQuery struct {
	CarBrand       string
	CarModel       string
	Year           int
	InsuranceBrand string
	Level          string
	Limit          int
	Cursor         *pagination.Cursor
}

type quoteQuery struct {
	CarBrand string
	CarModel string
	SubModel string
	Year     int
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a rates repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, rate *models.InsuranceRate) error {
	return r.db.WithContext(ctx).Create(rate).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.InsuranceRate, error) {
	var rate models.InsuranceRate
	if err := r.db.WithContext(ctx).First(&rate, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rate, nil
}

func (r *repositoryImpl) List(ctx context.Context, query listQuery) ([]models.InsuranceRate, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(query.Limit)
	normalized := pagination.NormalizeLimit(query.Limit)

	q := r.db.WithContext(ctx).Model(&models.InsuranceRate{})
	if query.CarBrand != "" {
		q = q.Where("car_brand ILIKE ?", query.CarBrand)
	}
	if query.CarModel != "" {
		q = q.Where("car_model ILIKE ?", query.CarModel)
	}
	if query.Year > 0 {
		q = q.Where("year = ?", query.Year)
	}
	if query.InsuranceBrand != "" {
		q = q.Where("insurance_brand ILIKE ?", query.InsuranceBrand)
	}
	if query.Level != "" {
		q = q.Where("level = ?", query.Level)
	}
	if query.Cursor != nil {
		q = q.Where("(created_at, id) < (?, ?)", query.Cursor.CreatedAt, query.Cursor.ID)
	}

	var rows []models.InsuranceRate
	if err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	if len(rows) > normalized {
		next := rows[normalized]
		rows = rows[:normalized]
		return rows, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return rows, nil, nil
}

// Quote returns every plan matching the vehicle, cheapest premium first.
// Sub-model is matched only when the rate row carries one.
func (r *repositoryImpl) Quote(ctx context.Context, query quoteQuery) ([]models.InsuranceRate, error) {
	q := r.db.WithContext(ctx).Model(&models.InsuranceRate{}).
		Where("car_brand ILIKE ?", query.CarBrand).
		Where("car_model ILIKE ?", query.CarModel).
		Where("year = ?", query.Year)
	if query.SubModel != "" {
		q = q.Where("sub_model = '' OR sub_model ILIKE ?", query.SubModel)
	}

	var rows []models.InsuranceRate
	if err := q.Order("premium ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// The catalog queries back the vehicle dropdowns on the purchase form. They
// read the distinct vehicles the rate table actually covers, so the form only
// offers cars that can be quoted.

func (r *repositoryImpl) CatalogYears(ctx context.Context) ([]int, error) {
	var years []int
	err := r.db.WithContext(ctx).
		Model(&models.InsuranceRate{}).
		Distinct().
		Order("year DESC").
		Pluck("year", &years).Error
	if err != nil {
		return nil, err
	}
	return years, nil
}

func (r *repositoryImpl) CatalogBrands(ctx context.Context, year int) ([]string, error) {
	q := r.db.WithContext(ctx).Model(&models.InsuranceRate{})
	if year > 0 {
		q = q.Where("year = ?", year)
	}
	var brands []string
	if err := q.Distinct().Order("car_brand ASC").Pluck("car_brand", &brands).Error; err != nil {
		return nil, err
	}
	return brands, nil
}

func (r *repositoryImpl) CatalogModels(ctx context.Context, brand string, year int) ([]string, error) {
	q := r.db.WithContext(ctx).
		Model(&models.InsuranceRate{}).
		Where("car_brand ILIKE ?", brand)
	if year > 0 {
		q = q.Where("year = ?", year)
	}
	var carModels []string
	if err := q.Distinct().Order("car_model ASC").Pluck("car_model", &carModels).Error; err != nil {
		return nil, err
	}
	return carModels, nil
}

func (r *repositoryImpl) CatalogSubModels(ctx context.Context, brand, model string, year int) ([]string, error) {
	q := r.db.WithContext(ctx).
		Model(&models.InsuranceRate{}).
		Where("car_brand ILIKE ?", brand).
		Where("car_model ILIKE ?", model).
		Where("sub_model <> ''")
	if year > 0 {
		q = q.Where("year = ?", year)
	}
	var subModels []string
	if err := q.Distinct().Order("sub_model ASC").Pluck("sub_model", &subModels).Error; err != nil {
		return nil, err
	}
	return subModels, nil
}

func (r *repositoryImpl) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.InsuranceRate{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.InsuranceRate{}, "id = ?", id).Error
}
