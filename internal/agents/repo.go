package agents

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/motorsure/brokerage-backend/pkg/db/models"
	"github.com/motorsure/brokerage-backend/pkg/enums"
	"github.com/motorsure/brokerage-backend/pkg/pagination"
)

// Repository exposes persistence helpers for agent accounts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, agent *models.Agent) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Agent, error)
	FindByUsername(ctx context.Context, username string) (*models.Agent, error)
	FindByLicenseNumber(ctx context.Context, licenseNumber string) (*models.Agent, error)
	List(ctx context.Context, query listQuery) ([]models.Agent, *pagination.Cursor, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
}

type listQuery struct {
	Search             string
	VerificationStatus enums.AgentVerificationStatus
	Limit              int
	Cursor             *pagination.Cursor
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an agents repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, agent *models.Agent) error {
	return r.db.WithContext(ctx).Create(agent).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Agent, error) {
	var agent models.Agent
	if err := r.db.WithContext(ctx).First(&agent, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &agent, nil
}

func (r *repositoryImpl) FindByUsername(ctx context.Context, username string) (*models.Agent, error) {
	var agent models.Agent
	if err := r.db.WithContext(ctx).First(&agent, "username = ?", username).Error; err != nil {
		return nil, err
	}
	return &agent, nil
}

func (r *repositoryImpl) FindByLicenseNumber(ctx context.Context, licenseNumber string) (*models.Agent, error) {
	var agent models.Agent
	if err := r.db.WithContext(ctx).First(&agent, "license_number = ?", licenseNumber).Error; err != nil {
		return nil, err
	}
	return &agent, nil
}

func (r *repositoryImpl) List(ctx context.Context, query listQuery) ([]models.Agent, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(query.Limit)
	normalized := pagination.NormalizeLimit(query.Limit)

	q := r.db.WithContext(ctx).Model(&models.Agent{})
	if query.Search != "" {
		pattern := "%" + query.Search + "%"
		q = q.Where("first_name ILIKE ? OR last_name ILIKE ? OR license_number ILIKE ? OR username ILIKE ?",
			pattern, pattern, pattern, pattern)
	}
	if query.VerificationStatus != "" {
		q = q.Where("verification_status = ?", query.VerificationStatus)
	}
	if query.Cursor != nil {
		q = q.Where("(created_at, id) < (?, ?)", query.Cursor.CreatedAt, query.Cursor.ID)
	}

	var rows []models.Agent
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

func (r *repositoryImpl) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Agent{}).
		Where("id = ?", id).
		Updates(updates).Error
}
