package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgauth "github.com/motorsure/brokerage-backend/pkg/auth"
	"github.com/motorsure/brokerage-backend/pkg/config"
	"github.com/motorsure/brokerage-backend/pkg/db/models"
	"github.com/motorsure/brokerage-backend/pkg/enums"
	pkgerrors "github.com/motorsure/brokerage-backend/pkg/errors"
	"github.com/motorsure/brokerage-backend/pkg/security"
)

type fakeCustomerRepo struct {
	byUsername map[string]*models.Customer
}

func (f *fakeCustomerRepo) FindByUsername(ctx context.Context, username string) (*models.Customer, error) {
	if customer, ok := f.byUsername[username]; ok {
		return customer, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeAgentRepo struct {
	byUsername map[string]*models.Agent
}

func (f *fakeAgentRepo) FindByUsername(ctx context.Context, username string) (*models.Agent, error) {
	if agent, ok := f.byUsername[username]; ok {
		return agent, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeAdminRepo struct {
	byUsername map[string]*models.Admin
}

func (f *fakeAdminRepo) FindByUsername(ctx context.Context, username string) (*models.Admin, error) {
	if admin, ok := f.byUsername[username]; ok {
		return admin, nil
	}
	return nil, gorm.ErrRecordNotFound
}

var testJWTConfig = config.JWTConfig{
	Secret:            "test-secret",
	Issuer:            "motorsure",
	ExpirationMinutes: 30,
}

func hashForTest(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

func serviceForTest(t *testing.T, customers *fakeCustomerRepo, agents *fakeAgentRepo, admins *fakeAdminRepo) Service {
	t.Helper()
	if customers == nil {
		customers = &fakeCustomerRepo{byUsername: map[string]*models.Customer{}}
	}
	if agents == nil {
		agents = &fakeAgentRepo{byUsername: map[string]*models.Agent{}}
	}
	if admins == nil {
		admins = &fakeAdminRepo{byUsername: map[string]*models.Admin{}}
	}
	svc, err := NewService(ServiceParams{
		Customers: customers,
		Agents:    agents,
		Admins:    admins,
		JWTConfig: testJWTConfig,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func expectCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	coded := pkgerrors.As(err)
	if coded == nil {
		t.Fatalf("expected coded error, got %v", err)
	}
	if coded.Code() != code {
		t.Fatalf("expected code %s, got %s", code, coded.Code())
	}
}

func TestCustomerLoginMintsToken(t *testing.T) {
	customer := &models.Customer{
		ID:           uuid.New(),
		FirstName:    "Malee",
		LastName:     "W.",
		Username:     "malee",
		PasswordHash: hashForTest(t, "correct horse"),
		BirthDate:    time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	svc := serviceForTest(t, &fakeCustomerRepo{byUsername: map[string]*models.Customer{"malee": customer}}, nil, nil)

	resp, err := svc.CustomerLogin(context.Background(), LoginRequest{Username: " Malee ", Password: "correct horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.Customer.ID != customer.ID {
		t.Fatal("response profile does not match the account")
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != customer.ID || claims.Role != enums.ActorRoleCustomer {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestCustomerLoginWrongPassword(t *testing.T) {
	customer := &models.Customer{
		ID:           uuid.New(),
		Username:     "malee",
		PasswordHash: hashForTest(t, "correct horse"),
	}
	svc := serviceForTest(t, &fakeCustomerRepo{byUsername: map[string]*models.Customer{"malee": customer}}, nil, nil)

	_, err := svc.CustomerLogin(context.Background(), LoginRequest{Username: "malee", Password: "wrong"})
	expectCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestCustomerLoginUnknownUsername(t *testing.T) {
	svc := serviceForTest(t, nil, nil, nil)
	_, err := svc.CustomerLogin(context.Background(), LoginRequest{Username: "nobody", Password: "whatever"})
	expectCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestAgentLoginRejectedLicense(t *testing.T) {
	agent := &models.Agent{
		ID:                 uuid.New(),
		Username:           "somsak",
		PasswordHash:       hashForTest(t, "agent pass"),
		VerificationStatus: enums.AgentVerificationRejected,
	}
	svc := serviceForTest(t, nil, &fakeAgentRepo{byUsername: map[string]*models.Agent{"somsak": agent}}, nil)

	_, err := svc.AgentLogin(context.Background(), LoginRequest{Username: "somsak", Password: "agent pass"})
	expectCode(t, err, pkgerrors.CodeForbidden)
}

func TestAgentLoginInReviewAllowed(t *testing.T) {
	agent := &models.Agent{
		ID:                 uuid.New(),
		Username:           "somsak",
		PasswordHash:       hashForTest(t, "agent pass"),
		VerificationStatus: enums.AgentVerificationInReview,
	}
	svc := serviceForTest(t, nil, &fakeAgentRepo{byUsername: map[string]*models.Agent{"somsak": agent}}, nil)

	resp, err := svc.AgentLogin(context.Background(), LoginRequest{Username: "somsak", Password: "agent pass"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := pkgauth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Role != enums.ActorRoleAgent {
		t.Fatalf("expected agent role, got %s", claims.Role)
	}
}

func TestAdminLogin(t *testing.T) {
	admin := &models.Admin{
		ID:           uuid.New(),
		Username:     "ops",
		DisplayName:  "Operations",
		PasswordHash: hashForTest(t, "admin pass"),
	}
	svc := serviceForTest(t, nil, nil, &fakeAdminRepo{byUsername: map[string]*models.Admin{"ops": admin}})

	resp, err := svc.AdminLogin(context.Background(), LoginRequest{Username: "ops", Password: "admin pass"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.DisplayName != "Operations" {
		t.Fatalf("unexpected display name %q", resp.DisplayName)
	}
	claims, err := pkgauth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Role != enums.ActorRoleAdmin {
		t.Fatalf("expected admin role, got %s", claims.Role)
	}
}
