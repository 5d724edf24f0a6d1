package auth

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/motorsure/brokerage-backend/internal/agents"
	"github.com/motorsure/brokerage-backend/internal/customers"
	"github.com/motorsure/brokerage-backend/pkg/config"
	"github.com/motorsure/brokerage-backend/pkg/db"
	"github.com/motorsure/brokerage-backend/pkg/db/models"
	"github.com/motorsure/brokerage-backend/pkg/enums"
	pkgerrors "github.com/motorsure/brokerage-backend/pkg/errors"
	"github.com/motorsure/brokerage-backend/pkg/security"
)

// RegisterService handles customer and agent onboarding.
type RegisterService interface {
	RegisterCustomer(ctx context.Context, req RegisterCustomerRequest) (*customers.Profile, error)
	RegisterAgent(ctx context.Context, req RegisterAgentRequest) (*agents.Profile, error)
}

// RegisterServiceParams packages the dependencies for the registration flows.
type RegisterServiceParams struct {
	DB             *db.Client
	PasswordConfig config.PasswordConfig
}

type registerService struct {
	db          *db.Client
	passwordCfg config.PasswordConfig
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "database client required")
	}
	return &registerService{
		db:          params.DB,
		passwordCfg: params.PasswordConfig,
	}, nil
}

func (s *registerService) RegisterCustomer(ctx context.Context, req RegisterCustomerRequest) (*customers.Profile, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	if username == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username is required")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var profile customers.Profile
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := customers.NewRepository(tx)

		if _, err := repo.FindByUsername(ctx, username); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "username already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check username")
		}

		customer := &models.Customer{
			FirstName:    strings.TrimSpace(req.FirstName),
			LastName:     strings.TrimSpace(req.LastName),
			Email:        strings.ToLower(strings.TrimSpace(req.Email)),
			Address:      req.Address,
			BirthDate:    req.BirthDate,
			Phone:        strings.TrimSpace(req.Phone),
			Username:     username,
			PasswordHash: passwordHash,
		}
		if err := repo.Create(ctx, customer); err != nil {
			if db.IsUniqueViolation(err) {
				return pkgerrors.New(pkgerrors.CodeConflict, "username already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create customer")
		}
		profile = customers.FromModel(customer)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *registerService) RegisterAgent(ctx context.Context, req RegisterAgentRequest) (*agents.Profile, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	if username == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username is required")
	}
	licenseNumber := strings.TrimSpace(req.LicenseNumber)
	if licenseNumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "license number is required")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var profile agents.Profile
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := agents.NewRepository(tx)

		if _, err := repo.FindByUsername(ctx, username); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "username already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check username")
		}
		if _, err := repo.FindByLicenseNumber(ctx, licenseNumber); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "license number already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check license number")
		}

		agent := &models.Agent{
			FirstName:          strings.TrimSpace(req.FirstName),
			LastName:           strings.TrimSpace(req.LastName),
			LicenseNumber:      licenseNumber,
			CardExpiryDate:     req.CardExpiryDate,
			Address:            req.Address,
			LineID:             req.LineID,
			Phone:              strings.TrimSpace(req.Phone),
			BirthDate:          req.BirthDate,
			Username:           username,
			PasswordHash:       passwordHash,
			VerificationStatus: enums.AgentVerificationInReview,
		}
		if err := repo.Create(ctx, agent); err != nil {
			if db.IsUniqueViolation(err) {
				return pkgerrors.New(pkgerrors.CodeConflict, "username or license already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create agent")
		}
		profile = agents.FromModel(agent)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
