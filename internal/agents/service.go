package agents

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/motorsure/brokerage-backend/pkg/errors"
	"github.com/motorsure/brokerage-backend/pkg/enums"
	"github.com/motorsure/brokerage-backend/pkg/pagination"
)

// Service exposes agent account operations.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*Profile, error)
	GetByLicense(ctx context.Context, licenseNumber string) (*Profile, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Profile, error)
	SetVerificationStatus(ctx context.Context, id uuid.UUID, status string) (*Profile, error)
}

// ServiceParams bundles the dependencies for the agent service.
type ServiceParams struct {
	Repository Repository
}

type service struct {
	repo Repository
}

// NewService constructs an agent service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repository == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "agents repository is required")
	}
	return &service{repo: params.Repository}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Profile, error) {
	agent, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "agent not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find agent")
	}
	profile := FromModel(agent)
	return &profile, nil
}

// GetByLicense resolves an agent by license number. Only approved agents are
// visible through this lookup; it backs the public license card.
func (s *service) GetByLicense(ctx context.Context, licenseNumber string) (*Profile, error) {
	licenseNumber = strings.TrimSpace(licenseNumber)
	if licenseNumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "license number required")
	}
	agent, err := s.repo.FindByLicenseNumber(ctx, licenseNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "agent not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find agent by license")
	}
	if agent.VerificationStatus != enums.AgentVerificationApproved {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "agent not found")
	}
	profile := FromModel(agent)
	return &profile, nil
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

	var status enums.AgentVerificationStatus
	if params.VerificationStatus != "" {
		parsed, err := enums.ParseAgentVerificationStatus(params.VerificationStatus)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
		status = parsed
	}

	rows, next, err := s.repo.List(ctx, listQuery{
		Search:             strings.TrimSpace(params.Search),
		VerificationStatus: status,
		Limit:              params.Limit,
		Cursor:             cursor,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list agents")
	}

	items := make([]Profile, 0, len(rows))
	for i := range rows {
		items = append(items, FromModel(&rows[i]))
	}
	nextCursor := ""
	if next != nil {
		nextCursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: items, Cursor: nextCursor}, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Profile, error) {
	updates := map[string]any{}
	setIfPresent(updates, "first_name", params.FirstName)
	setIfPresent(updates, "last_name", params.LastName)
	setIfPresent(updates, "address", params.Address)
	setIfPresent(updates, "phone", params.Phone)
	setIfPresent(updates, "line_id", params.LineID)
	setIfPresent(updates, "note", params.Note)
	setIfPresent(updates, "profile_image", params.ProfileImage)
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("update agent %s", id))
	}
	return s.Get(ctx, id)
}

// SetVerificationStatus moves an agent through license review.
func (s *service) SetVerificationStatus(ctx context.Context, id uuid.UUID, status string) (*Profile, error) {
	parsed, err := enums.ParseAgentVerificationStatus(status)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, id, map[string]any{"verification_status": parsed}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update verification status")
	}
	return s.Get(ctx, id)
}

func setIfPresent(updates map[string]any, column string, value *string) {
	if value != nil {
		updates[column] = *value
	}
}
