package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/motorsure/brokerage-backend/internal/agents"
	"github.com/motorsure/brokerage-backend/internal/customers"
	pkgauth "github.com/motorsure/brokerage-backend/pkg/auth"
	"github.com/motorsure/brokerage-backend/pkg/config"
	"github.com/motorsure/brokerage-backend/pkg/db/models"
	"github.com/motorsure/brokerage-backend/pkg/enums"
	pkgerrors "github.com/motorsure/brokerage-backend/pkg/errors"
	"github.com/motorsure/brokerage-backend/pkg/security"
)

const invalidCredentialsMessage = "invalid credentials"

// Service defines the behavior needed by the auth controllers.
type Service interface {
	CustomerLogin(ctx context.Context, req LoginRequest) (*CustomerLoginResponse, error)
	AgentLogin(ctx context.Context, req LoginRequest) (*AgentLoginResponse, error)
	AdminLogin(ctx context.Context, req LoginRequest) (*AdminLoginResponse, error)
}

type customerRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.Customer, error)
}

type agentRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.Agent, error)
}

type adminRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.Admin, error)
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	Customers customerRepository
	Agents    agentRepository
	Admins    adminRepository
	JWTConfig config.JWTConfig
}

type service struct {
	customers customerRepository
	agents    agentRepository
	admins    adminRepository
	jwtCfg    config.JWTConfig
	now       func() time.Time
}

// NewService constructs a login service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Customers == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "customer repository is required")
	}
	if params.Agents == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "agent repository is required")
	}
	if params.Admins == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "admin repository is required")
	}
	return &service{
		customers: params.Customers,
		agents:    params.Agents,
		admins:    params.Admins,
		jwtCfg:    params.JWTConfig,
		now:       time.Now,
	}, nil
}

func (s *service) CustomerLogin(ctx context.Context, req LoginRequest) (*CustomerLoginResponse, error) {
	username, err := normalizeUsername(req.Username)
	if err != nil {
		return nil, err
	}
	customer, err := s.customers.FindByUsername(ctx, username)
	if err != nil {
		return nil, lookupError(err)
	}
	if err := verifyPassword(req.Password, customer.PasswordHash); err != nil {
		return nil, err
	}

	token, err := s.mint(customer.ID, enums.ActorRoleCustomer, customer.FirstName+" "+customer.LastName)
	if err != nil {
		return nil, err
	}
	return &CustomerLoginResponse{
		AccessToken: token,
		Customer:    customers.FromModel(customer),
	}, nil
}

func (s *service) AgentLogin(ctx context.Context, req LoginRequest) (*AgentLoginResponse, error) {
	username, err := normalizeUsername(req.Username)
	if err != nil {
		return nil, err
	}
	agent, err := s.agents.FindByUsername(ctx, username)
	if err != nil {
		return nil, lookupError(err)
	}
	if err := verifyPassword(req.Password, agent.PasswordHash); err != nil {
		return nil, err
	}
	if agent.VerificationStatus == enums.AgentVerificationRejected {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "agent license was rejected")
	}

	token, err := s.mint(agent.ID, enums.ActorRoleAgent, agent.FirstName+" "+agent.LastName)
	if err != nil {
		return nil, err
	}
	return &AgentLoginResponse{
		AccessToken: token,
		Agent:       agents.FromModel(agent),
	}, nil
}

func (s *service) AdminLogin(ctx context.Context, req LoginRequest) (*AdminLoginResponse, error) {
	username, err := normalizeUsername(req.Username)
	if err != nil {
		return nil, err
	}
	admin, err := s.admins.FindByUsername(ctx, username)
	if err != nil {
		return nil, lookupError(err)
	}
	if err := verifyPassword(req.Password, admin.PasswordHash); err != nil {
		return nil, err
	}

	token, err := s.mint(admin.ID, enums.ActorRoleAdmin, admin.DisplayName)
	if err != nil {
		return nil, err
	}
	return &AdminLoginResponse{
		AccessToken: token,
		DisplayName: admin.DisplayName,
	}, nil
}

func (s *service) mint(userID uuid.UUID, role enums.ActorRole, fullName string) (string, error) {
	token, err := pkgauth.MintAccessToken(s.jwtCfg, s.now().UTC(), pkgauth.AccessTokenPayload{
		UserID:   userID,
		Role:     role,
		FullName: strings.TrimSpace(fullName),
	})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	return token, nil
}

func normalizeUsername(username string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(username))
	if trimmed == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return trimmed, nil
}

func lookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup account")
}

func verifyPassword(password, hash string) error {
	valid, err := security.VerifyPassword(password, hash)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return nil
}
