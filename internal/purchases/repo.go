package purchases

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/motorsure/brokerage-backend/pkg/db/models"
	"github.com/motorsure/brokerage-backend/pkg/enums"
	"github.com/motorsure/brokerage-backend/pkg/pagination"
)

// Repository exposes persistence helpers for purchases and their cars.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateCar(ctx context.Context, car *models.Car) error
	CreatePurchase(ctx context.Context, purchase *models.Purchase) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Purchase, error)
	CustomerExists(ctx context.Context, id uuid.UUID) (bool, error)
	AgentExists(ctx context.Context, id uuid.UUID) (bool, error)
	RateExists(ctx context.Context, id uuid.UUID) (bool, error)
	List(ctx context.Context, query listQuery) ([]models.Purchase, *pagination.Cursor, error)
	UpdatePurchase(ctx context.Context, id uuid.UUID, updates map[string]any) error
	UpdateCar(ctx context.Context, carID uuid.UUID, updates map[string]any) error

	ExpireOverdue(ctx context.Context, today time.Time) (int64, error)
	FindExpiringSoon(ctx context.Context, today, horizon time.Time) ([]models.Purchase, error)
	MarkAboutToExpire(ctx context.Context, id uuid.UUID) (bool, error)
	RevertExtended(ctx context.Context, horizon time.Time) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a purchases repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) CreateCar(ctx context.Context, car *models.Car) error {
	return r.db.WithContext(ctx).Create(car).Error
}

func (r *repositoryImpl) CreatePurchase(ctx context.Context, purchase *models.Purchase) error {
	return r.db.WithContext(ctx).Create(purchase).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Purchase, error) {
	var purchase models.Purchase
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Agent").
		Preload("Car").
		Preload("Rate").
		First(&purchase, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *repositoryImpl) CustomerExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.rowExists(ctx, &models.Customer{}, id)
}

func (r *repositoryImpl) AgentExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.rowExists(ctx, &models.Agent{}, id)
}

func (r *repositoryImpl) RateExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.rowExists(ctx, &models.InsuranceRate{}, id)
}

func (r *repositoryImpl) rowExists(ctx context.Context, model any, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(model).
		Where("id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repositoryImpl) List(ctx context.Context, query listQuery) ([]models.Purchase, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(query.Limit)
	normalized := pagination.NormalizeLimit(query.Limit)

	q := r.db.WithContext(ctx).Model(&models.Purchase{}).
		Preload("Customer").
		Preload("Agent").
		Preload("Car").
		Preload("Rate")
	if query.CustomerID != nil {
		q = q.Where("purchases.customer_id = ?", *query.CustomerID)
	}
	if query.AgentID != nil {
		q = q.Where("purchases.agent_id = ?", *query.AgentID)
	}
	if query.Status != "" {
		q = q.Where("purchases.status = ?", query.Status)
	}
	if query.Search != "" {
		// Search covers the policy number and the customer's name.
		pattern := "%" + query.Search + "%"
		q = q.Joins("JOIN customers ON customers.id = purchases.customer_id").
			Where("purchases.policy_number ILIKE ? OR customers.first_name ILIKE ? OR customers.last_name ILIKE ?",
				pattern, pattern, pattern)
	}
	if query.Cursor != nil {
		q = q.Where("(purchases.created_at, purchases.id) < (?, ?)", query.Cursor.CreatedAt, query.Cursor.ID)
	}

	var rows []models.Purchase
	if err := q.Order("purchases.created_at DESC, purchases.id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	if len(rows) > normalized {
		next := rows[normalized]
		rows = rows[:normalized]
		return rows, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return rows, nil, nil
}

func (r *repositoryImpl) UpdatePurchase(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Purchase{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repositoryImpl) UpdateCar(ctx context.Context, carID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Car{}).
		Where("id = ?", carID).
		Updates(updates).Error
}

// ExpireOverdue moves every coverage-bearing policy whose end date has passed
// into expired. NULL end dates are excluded by the date comparison itself.
func (r *repositoryImpl) ExpireOverdue(ctx context.Context, today time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Purchase{}).
		Where("status IN ?", []enums.PurchaseStatus{enums.PurchaseStatusActive, enums.PurchaseStatusAboutToExpire}).
		Where("end_date IS NOT NULL AND end_date < ?", today).
		Update("status", enums.PurchaseStatusExpired)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// FindExpiringSoon returns active policies whose end date falls inside the
// warning window, with the car and parties preloaded for notification text.
func (r *repositoryImpl) FindExpiringSoon(ctx context.Context, today, horizon time.Time) ([]models.Purchase, error) {
	var rows []models.Purchase
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Agent").
		Preload("Car").
		Where("status = ?", enums.PurchaseStatusActive).
		Where("end_date IS NOT NULL AND end_date >= ? AND end_date <= ?", today, horizon).
		Order("end_date ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// MarkAboutToExpire flips a single policy from active to about_to_expire.
// The status guard makes the caller's notify-once behavior safe to retry: a
// second pass sees zero rows affected and skips the notification.
func (r *repositoryImpl) MarkAboutToExpire(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Purchase{}).
		Where("id = ? AND status = ?", id, enums.PurchaseStatusActive).
		Update("status", enums.PurchaseStatusAboutToExpire)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// RevertExtended returns policies whose end date moved back outside the
// warning window to active.
func (r *repositoryImpl) RevertExtended(ctx context.Context, horizon time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Purchase{}).
		Where("status = ?", enums.PurchaseStatusAboutToExpire).
		Where("end_date IS NOT NULL AND end_date > ?", horizon).
		Update("status", enums.PurchaseStatusActive)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
