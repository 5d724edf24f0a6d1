package agents

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/motorsure/brokerage-backend/pkg/db/models"
	"github.com/motorsure/brokerage-backend/pkg/enums"
	pkgerrors "github.com/motorsure/brokerage-backend/pkg/errors"
	"github.com/motorsure/brokerage-backend/pkg/pagination"
)

type fakeAgentRepo struct {
	agents map[uuid.UUID]*models.Agent

	listRows []models.Agent
	listNext *pagination.Cursor
	lastList listQuery
}

func newFakeAgentRepo() *fakeAgentRepo {
	return &fakeAgentRepo{agents: make(map[uuid.UUID]*models.Agent)}
}

func (f *fakeAgentRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeAgentRepo) Create(ctx context.Context, agent *models.Agent) error {
	agent.ID = uuid.New()
	f.agents[agent.ID] = agent
	return nil
}

func (f *fakeAgentRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Agent, error) {
	agent, ok := f.agents[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return agent, nil
}

func (f *fakeAgentRepo) FindByUsername(ctx context.Context, username string) (*models.Agent, error) {
	for _, agent := range f.agents {
		if agent.Username == username {
			return agent, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAgentRepo) FindByLicenseNumber(ctx context.Context, licenseNumber string) (*models.Agent, error) {
	for _, agent := range f.agents {
		if agent.LicenseNumber == licenseNumber {
			return agent, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAgentRepo) List(ctx context.Context, query listQuery) ([]models.Agent, *pagination.Cursor, error) {
	f.lastList = query
	return f.listRows, f.listNext, nil
}

func (f *fakeAgentRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return nil
}

func agentServiceForTest(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{Repository: repo})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestListCursorHandling(t *testing.T) {
	repo := newFakeAgentRepo()
	svc := agentServiceForTest(t, repo)

	next := pagination.Cursor{
		CreatedAt: time.Date(2025, 2, 10, 16, 45, 0, 0, time.UTC),
		ID:        uuid.New(),
	}
	repo.listRows = []models.Agent{{ID: uuid.New()}}
	repo.listNext = &next

	result, err := svc.List(context.Background(), ListParams{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	parsed, err := pagination.ParseCursor(result.Cursor)
	if err != nil {
		t.Fatalf("parse returned cursor: %v", err)
	}
	if parsed == nil || parsed.ID != next.ID || !parsed.CreatedAt.Equal(next.CreatedAt) {
		t.Fatalf("cursor round trip mismatch: %+v", parsed)
	}

	repo.listNext = nil
	result, err = svc.List(context.Background(), ListParams{})
	if err != nil {
		t.Fatalf("list last page: %v", err)
	}
	if result.Cursor != "" {
		t.Fatalf("expected empty cursor on last page, got %q", result.Cursor)
	}
}

func TestGetByLicenseOnlyShowsApprovedAgents(t *testing.T) {
	repo := newFakeAgentRepo()
	svc := agentServiceForTest(t, repo)

	approved := &models.Agent{
		LicenseNumber:      "LIC-1001",
		VerificationStatus: enums.AgentVerificationApproved,
	}
	inReview := &models.Agent{
		LicenseNumber:      "LIC-1002",
		VerificationStatus: enums.AgentVerificationInReview,
	}
	_ = repo.Create(context.Background(), approved)
	_ = repo.Create(context.Background(), inReview)

	profile, err := svc.GetByLicense(context.Background(), " LIC-1001 ")
	if err != nil {
		t.Fatalf("get by license: %v", err)
	}
	if profile.LicenseNumber != "LIC-1001" {
		t.Fatalf("unexpected profile %+v", profile)
	}

	_, err = svc.GetByLicense(context.Background(), "LIC-1002")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unapproved agent must read as not found, got %v", err)
	}

	_, err = svc.GetByLicense(context.Background(), "   ")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for blank license, got %v", err)
	}
}
