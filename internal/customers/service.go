package customers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/motorsure/brokerage-backend/pkg/config"
	pkgerrors "github.com/motorsure/brokerage-backend/pkg/errors"
	"github.com/motorsure/brokerage-backend/pkg/pagination"
	"github.com/motorsure/brokerage-backend/pkg/security"
)

// Service exposes customer account operations.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*Profile, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Profile, error)
	ResetPassword(ctx context.Context, id uuid.UUID, password string) error
}

// ServiceParams bundles the dependencies for the customer service.
type ServiceParams struct {
	Repository     Repository
	PasswordConfig config.PasswordConfig
}

type service struct {
	repo        Repository
	passwordCfg config.PasswordConfig
}

// NewService constructs a customer service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repository == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "customers repository is required")
	}
	return &service{repo: params.Repository, passwordCfg: params.PasswordConfig}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Profile, error) {
	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find customer")
	}
	profile := FromModel(customer)
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

	rows, next, err := s.repo.List(ctx, listQuery{
		Search: strings.TrimSpace(params.Search),
		Limit:  params.Limit,
		Cursor: cursor,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list customers")
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
	setIfPresent(updates, "profile_image", params.ProfileImage)
	if params.Email != nil {
		updates["email"] = strings.ToLower(strings.TrimSpace(*params.Email))
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("update customer %s", id))
	}
	return s.Get(ctx, id)
}

// ResetPassword replaces the customer's password hash on behalf of an admin.
func (s *service) ResetPassword(ctx context.Context, id uuid.UUID, password string) error {
	if len(password) < 8 {
		return pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	hash, err := security.HashPassword(password, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	if err := s.repo.Update(ctx, id, map[string]any{"password_hash": hash}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("reset password for customer %s", id))
	}
	return nil
}

func setIfPresent(updates map[string]any, column string, value *string) {
	if value != nil {
		updates[column] = *value
	}
}
