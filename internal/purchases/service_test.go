package purchases

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/motorsure/brokerage-backend/internal/notifications"
	"github.com/motorsure/brokerage-backend/internal/policynumber"
	"github.com/motorsure/brokerage-backend/pkg/db/models"
	"github.com/motorsure/brokerage-backend/pkg/enums"
	pkgerrors "github.com/motorsure/brokerage-backend/pkg/errors"
	"github.com/motorsure/brokerage-backend/pkg/logger"
	"github.com/motorsure/brokerage-backend/pkg/pagination"
)

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type fakeCounterStore struct {
	mu   sync.Mutex
	seqs map[int]int64
}

func (f *fakeCounterStore) NextSeq(ctx context.Context, tx *gorm.DB, year int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seqs == nil {
		f.seqs = make(map[int]int64)
	}
	f.seqs[year]++
	return f.seqs[year], nil
}

type fakeNotifier struct {
	sent []notifications.CreateParams
}

func (f *fakeNotifier) Notify(ctx context.Context, params notifications.CreateParams) error {
	f.sent = append(f.sent, params)
	return nil
}

type carUpdateCall struct {
	carID   uuid.UUID
	updates map[string]any
}

type fakePurchaseRepo struct {
	purchases map[uuid.UUID]*models.Purchase
	cars      map[uuid.UUID]*models.Car

	purchaseUpdates map[uuid.UUID]map[string]any
	carUpdates      []carUpdateCall
	lastList        listQuery
	listRows        []models.Purchase

	missingCustomers  map[uuid.UUID]bool
	missingAgents     map[uuid.UUID]bool
	missingRates      map[uuid.UUID]bool
	createPurchaseErr error
	updatePurchaseErr error
}

func newFakePurchaseRepo() *fakePurchaseRepo {
	return &fakePurchaseRepo{
		purchases:       make(map[uuid.UUID]*models.Purchase),
		cars:            make(map[uuid.UUID]*models.Car),
		purchaseUpdates: make(map[uuid.UUID]map[string]any),
	}
}

func (f *fakePurchaseRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakePurchaseRepo) CreateCar(ctx context.Context, car *models.Car) error {
	car.ID = uuid.New()
	f.cars[car.ID] = car
	return nil
}

func (f *fakePurchaseRepo) CreatePurchase(ctx context.Context, purchase *models.Purchase) error {
	if f.createPurchaseErr != nil {
		return f.createPurchaseErr
	}
	purchase.ID = uuid.New()
	purchase.CreatedAt = time.Now().UTC()
	copied := *purchase
	f.purchases[purchase.ID] = &copied
	return nil
}

func (f *fakePurchaseRepo) CustomerExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return !f.missingCustomers[id], nil
}

func (f *fakePurchaseRepo) AgentExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return !f.missingAgents[id], nil
}

func (f *fakePurchaseRepo) RateExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return !f.missingRates[id], nil
}

func (f *fakePurchaseRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Purchase, error) {
	purchase, ok := f.purchases[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *purchase
	return &copied, nil
}

func (f *fakePurchaseRepo) List(ctx context.Context, query listQuery) ([]models.Purchase, *pagination.Cursor, error) {
	f.lastList = query
	return f.listRows, nil, nil
}

func (f *fakePurchaseRepo) UpdatePurchase(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if f.updatePurchaseErr != nil {
		return f.updatePurchaseErr
	}
	f.purchaseUpdates[id] = updates
	if purchase, ok := f.purchases[id]; ok {
		if status, ok := updates["status"].(enums.PurchaseStatus); ok {
			purchase.Status = status
		}
	}
	return nil
}

func (f *fakePurchaseRepo) UpdateCar(ctx context.Context, carID uuid.UUID, updates map[string]any) error {
	f.carUpdates = append(f.carUpdates, carUpdateCall{carID: carID, updates: updates})
	return nil
}

func (f *fakePurchaseRepo) ExpireOverdue(ctx context.Context, today time.Time) (int64, error) {
	return 0, nil
}

func (f *fakePurchaseRepo) FindExpiringSoon(ctx context.Context, today, horizon time.Time) ([]models.Purchase, error) {
	return nil, nil
}

func (f *fakePurchaseRepo) MarkAboutToExpire(ctx context.Context, id uuid.UUID) (bool, error) {
	return false, nil
}

func (f *fakePurchaseRepo) RevertExtended(ctx context.Context, horizon time.Time) (int64, error) {
	return 0, nil
}

func testService(t *testing.T, repo *fakePurchaseRepo, notifier *fakeNotifier) Service {
	t.Helper()
	alloc, err := policynumber.NewAllocator(&fakeCounterStore{})
	if err != nil {
		t.Fatalf("new allocator: %v", err)
	}
	logg := logger.New(logger.Options{ServiceName: "test", Output: &bytes.Buffer{}})
	svc, err := NewService(ServiceParams{
		Logger:     logg,
		DB:         fakeTxRunner{},
		Repository: repo,
		Allocator:  alloc,
		Notifier:   notifier,
		Now:        func() time.Time { return time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func validCreateParams(customerID uuid.UUID) CreateParams {
	return CreateParams{
		CustomerID: customerID,
		RateID:     uuid.New(),
		Car: CarParams{
			Brand:        "Toyota",
			Model:        "Yaris",
			Year:         2021,
			Registration: "1กข 234",
			Province:     "Bangkok",
		},
	}
}

func TestCreateAllocatesPolicyNumberAndCar(t *testing.T) {
	repo := newFakePurchaseRepo()
	notifier := &fakeNotifier{}
	svc := testService(t, repo, notifier)

	customerID := uuid.New()
	purchase, err := svc.Create(context.Background(), validCreateParams(customerID))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if purchase.PolicyNumber != "PLN-2025-000001" {
		t.Fatalf("unexpected policy number %s", purchase.PolicyNumber)
	}
	if purchase.Status != enums.PurchaseStatusPending {
		t.Fatalf("new purchase should be pending, got %s", purchase.Status)
	}
	if purchase.PaymentMethod != enums.PaymentMethodFull {
		t.Fatalf("payment method should default to full, got %s", purchase.PaymentMethod)
	}
	if len(repo.cars) != 1 {
		t.Fatalf("expected one car row, got %d", len(repo.cars))
	}
	car, ok := repo.cars[purchase.CarID]
	if !ok {
		t.Fatal("purchase should reference the created car")
	}
	if car.CustomerID != customerID {
		t.Fatalf("car owner mismatch")
	}
	if len(notifier.sent) != 0 {
		t.Fatalf("no notification expected without an agent, got %d", len(notifier.sent))
	}

	second, err := svc.Create(context.Background(), validCreateParams(uuid.New()))
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if second.PolicyNumber != "PLN-2025-000002" {
		t.Fatalf("expected sequential number, got %s", second.PolicyNumber)
	}
}

func TestCreateNotifiesAssignedAgent(t *testing.T) {
	repo := newFakePurchaseRepo()
	notifier := &fakeNotifier{}
	svc := testService(t, repo, notifier)

	agentID := uuid.New()
	params := validCreateParams(uuid.New())
	params.AgentID = &agentID

	purchase, err := svc.Create(context.Background(), params)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("expected agent notification, got %d", len(notifier.sent))
	}
	sent := notifier.sent[0]
	if sent.RecipientID != agentID || sent.RecipientType != enums.RecipientTypeAgent {
		t.Fatalf("notification should target the agent")
	}
	if sent.RelatedPurchaseID == nil || *sent.RelatedPurchaseID != purchase.ID {
		t.Fatalf("notification should reference the purchase")
	}
}

func TestCreateValidation(t *testing.T) {
	svc := testService(t, newFakePurchaseRepo(), &fakeNotifier{})

	params := validCreateParams(uuid.New())
	params.CustomerID = uuid.Nil
	if _, err := svc.Create(context.Background(), params); pkgerrors.As(err) == nil {
		t.Fatal("expected error for missing customer")
	}

	params = validCreateParams(uuid.New())
	params.Car.Registration = ""
	if _, err := svc.Create(context.Background(), params); pkgerrors.As(err) == nil {
		t.Fatal("expected error for missing registration")
	}

	params = validCreateParams(uuid.New())
	params.PaymentMethod = "crypto"
	_, err := svc.Create(context.Background(), params)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateChecksReferencedRecords(t *testing.T) {
	repo := newFakePurchaseRepo()
	svc := testService(t, repo, &fakeNotifier{})

	params := validCreateParams(uuid.New())
	repo.missingRates = map[uuid.UUID]bool{params.RateID: true}
	_, err := svc.Create(context.Background(), params)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for unknown rate, got %v", err)
	}

	params = validCreateParams(uuid.New())
	repo.missingCustomers = map[uuid.UUID]bool{params.CustomerID: true}
	_, err = svc.Create(context.Background(), params)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for unknown customer, got %v", err)
	}

	agentID := uuid.New()
	params = validCreateParams(uuid.New())
	params.AgentID = &agentID
	repo.missingAgents = map[uuid.UUID]bool{agentID: true}
	_, err = svc.Create(context.Background(), params)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for unknown agent, got %v", err)
	}
	if len(repo.purchases) != 0 {
		t.Fatalf("no purchase should be written when a reference is missing, got %d", len(repo.purchases))
	}
}

func TestCreateDuplicatePolicyNumberIsConflict(t *testing.T) {
	repo := newFakePurchaseRepo()
	repo.createPurchaseErr = errors.New(`duplicate key value violates unique constraint "purchases_policy_number_key"`)
	svc := testService(t, repo, &fakeNotifier{})

	_, err := svc.Create(context.Background(), validCreateParams(uuid.New()))
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func seedPurchase(repo *fakePurchaseRepo, status enums.PurchaseStatus) *models.Purchase {
	carID := uuid.New()
	repo.cars[carID] = &models.Car{ID: carID}
	purchase := &models.Purchase{
		ID:           uuid.New(),
		CustomerID:   uuid.New(),
		CarID:        carID,
		RateID:       uuid.New(),
		PolicyNumber: "PLN-2025-000007",
		Status:       status,
		CreatedAt:    time.Now().UTC(),
	}
	repo.purchases[purchase.ID] = purchase
	return purchase
}

func admin() Actor {
	return Actor{ID: uuid.New(), Role: enums.ActorRoleAdmin}
}

func TestUpdateActivationRequiresDates(t *testing.T) {
	repo := newFakePurchaseRepo()
	svc := testService(t, repo, &fakeNotifier{})
	purchase := seedPurchase(repo, enums.PurchaseStatusPending)

	status := "active"
	_, err := svc.Update(context.Background(), admin(), purchase.ID, UpdateParams{Status: &status})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error without dates, got %v", err)
	}
}

func TestUpdateActivatesAndNotifiesCustomer(t *testing.T) {
	repo := newFakePurchaseRepo()
	notifier := &fakeNotifier{}
	svc := testService(t, repo, notifier)
	purchase := seedPurchase(repo, enums.PurchaseStatusPending)

	status := "active"
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	updated, err := svc.Update(context.Background(), admin(), purchase.ID, UpdateParams{
		Status:    &status,
		StartDate: &start,
		EndDate:   &end,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != enums.PurchaseStatusActive {
		t.Fatalf("expected active status, got %s", updated.Status)
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("expected customer notification, got %d", len(notifier.sent))
	}
	sent := notifier.sent[0]
	if sent.RecipientID != purchase.CustomerID || sent.Severity != enums.NotificationSeveritySuccess {
		t.Fatalf("unexpected notification %+v", sent)
	}
}

func TestUpdateRejectRequiresReason(t *testing.T) {
	repo := newFakePurchaseRepo()
	notifier := &fakeNotifier{}
	svc := testService(t, repo, notifier)
	purchase := seedPurchase(repo, enums.PurchaseStatusPending)

	status := "rejected"
	_, err := svc.Update(context.Background(), admin(), purchase.ID, UpdateParams{Status: &status})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error without reason, got %v", err)
	}

	reason := "blurry citizen card scan"
	_, err = svc.Update(context.Background(), admin(), purchase.ID, UpdateParams{
		Status:       &status,
		RejectReason: &reason,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(notifier.sent) != 1 || notifier.sent[0].Severity != enums.NotificationSeverityWarning {
		t.Fatalf("expected warning notification, got %+v", notifier.sent)
	}
}

func TestUpdateBlocksReconcilerOwnedTransitions(t *testing.T) {
	repo := newFakePurchaseRepo()
	svc := testService(t, repo, &fakeNotifier{})
	purchase := seedPurchase(repo, enums.PurchaseStatusActive)

	status := "pending"
	_, err := svc.Update(context.Background(), admin(), purchase.ID, UpdateParams{Status: &status})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}

	status = "expired"
	purchase2 := seedPurchase(repo, enums.PurchaseStatusPending)
	_, err = svc.Update(context.Background(), admin(), purchase2.ID, UpdateParams{Status: &status})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict for pending->expired, got %v", err)
	}
}

func TestUpdatePolicyNumberOverride(t *testing.T) {
	repo := newFakePurchaseRepo()
	svc := testService(t, repo, &fakeNotifier{})
	purchase := seedPurchase(repo, enums.PurchaseStatusPending)

	override := " PLN-2025-999999 "
	if _, err := svc.Update(context.Background(), admin(), purchase.ID, UpdateParams{PolicyNumber: &override}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := repo.purchaseUpdates[purchase.ID]["policy_number"]; got != "PLN-2025-999999" {
		t.Fatalf("expected trimmed policy number, got %v", got)
	}

	agentID := uuid.New()
	purchase.AgentID = &agentID
	agent := Actor{ID: agentID, Role: enums.ActorRoleAgent}
	_, err := svc.Update(context.Background(), agent, purchase.ID, UpdateParams{PolicyNumber: &override})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("agents must not override the policy number, got %v", err)
	}

	blank := "   "
	_, err = svc.Update(context.Background(), admin(), purchase.ID, UpdateParams{PolicyNumber: &blank})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for blank override, got %v", err)
	}

	repo.updatePurchaseErr = errors.New(`duplicate key value violates unique constraint "purchases_policy_number_key"`)
	_, err = svc.Update(context.Background(), admin(), purchase.ID, UpdateParams{PolicyNumber: &override})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict for duplicate override, got %v", err)
	}
}

func TestUpdateCarEditsStayOnPurchaseCar(t *testing.T) {
	repo := newFakePurchaseRepo()
	svc := testService(t, repo, &fakeNotifier{})
	purchase := seedPurchase(repo, enums.PurchaseStatusPending)

	color := "red"
	_, err := svc.Update(context.Background(), admin(), purchase.ID, UpdateParams{
		Car: &CarUpdateParams{Color: &color},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(repo.carUpdates) != 1 {
		t.Fatalf("expected one car update, got %d", len(repo.carUpdates))
	}
	if repo.carUpdates[0].carID != purchase.CarID {
		t.Fatal("car update must target the purchase-owned car row")
	}
	if repo.carUpdates[0].updates["color"] != "red" {
		t.Fatalf("unexpected updates %+v", repo.carUpdates[0].updates)
	}
}

func TestUpdateAuthorization(t *testing.T) {
	repo := newFakePurchaseRepo()
	svc := testService(t, repo, &fakeNotifier{})
	purchase := seedPurchase(repo, enums.PurchaseStatusPending)

	color := "blue"
	params := UpdateParams{Car: &CarUpdateParams{Color: &color}}

	customer := Actor{ID: purchase.CustomerID, Role: enums.ActorRoleCustomer}
	_, err := svc.Update(context.Background(), customer, purchase.ID, params)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("customers must not edit purchases, got %v", err)
	}

	// The unassigned agent reads a 404 so the response does not confirm
	// the purchase exists.
	stranger := Actor{ID: uuid.New(), Role: enums.ActorRoleAgent}
	_, err = svc.Update(context.Background(), stranger, purchase.ID, params)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unassigned agent must see not found, got %v", err)
	}

	agentID := uuid.New()
	purchase.AgentID = &agentID
	assigned := Actor{ID: agentID, Role: enums.ActorRoleAgent}
	if _, err := svc.Update(context.Background(), assigned, purchase.ID, params); err != nil {
		t.Fatalf("assigned agent should be allowed: %v", err)
	}
}

func TestListScopesByActor(t *testing.T) {
	repo := newFakePurchaseRepo()
	svc := testService(t, repo, &fakeNotifier{})

	customer := Actor{ID: uuid.New(), Role: enums.ActorRoleCustomer}
	if _, err := svc.List(context.Background(), customer, ListParams{}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if repo.lastList.CustomerID == nil || *repo.lastList.CustomerID != customer.ID {
		t.Fatal("customer list must be scoped to the customer")
	}

	agent := Actor{ID: uuid.New(), Role: enums.ActorRoleAgent}
	if _, err := svc.List(context.Background(), agent, ListParams{}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if repo.lastList.AgentID == nil || *repo.lastList.AgentID != agent.ID {
		t.Fatal("agent list must be scoped to the agent")
	}

	if _, err := svc.List(context.Background(), admin(), ListParams{Status: "bogus"}); pkgerrors.As(err) == nil {
		t.Fatal("expected validation error for bad status filter")
	}
}

func TestGetNotFound(t *testing.T) {
	svc := testService(t, newFakePurchaseRepo(), &fakeNotifier{})
	_, err := svc.Get(context.Background(), admin(), uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
