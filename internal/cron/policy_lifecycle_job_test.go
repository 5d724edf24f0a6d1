package cron

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/motorsure/brokerage-backend/pkg/db/models"
	"github.com/motorsure/brokerage-backend/pkg/enums"
	"github.com/motorsure/brokerage-backend/pkg/logger"
)

type fakeLifecycleStore struct {
	mu            sync.Mutex
	rows          map[uuid.UUID]*models.Purchase
	notifications []models.Notification
	expireErr     error
}

func newFakeLifecycleStore() *fakeLifecycleStore {
	return &fakeLifecycleStore{rows: make(map[uuid.UUID]*models.Purchase)}
}

func (f *fakeLifecycleStore) add(purchase *models.Purchase) *models.Purchase {
	f.mu.Lock()
	defer f.mu.Unlock()
	if purchase.ID == uuid.Nil {
		purchase.ID = uuid.New()
	}
	f.rows[purchase.ID] = purchase
	return purchase
}

func (f *fakeLifecycleStore) status(id uuid.UUID) enums.PurchaseStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[id].Status
}

func (f *fakeLifecycleStore) ExpireOverdue(ctx context.Context, today time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.expireErr != nil {
		return 0, f.expireErr
	}
	var count int64
	for _, row := range f.rows {
		if row.Status != enums.PurchaseStatusActive && row.Status != enums.PurchaseStatusAboutToExpire {
			continue
		}
		if row.EndDate == nil || !row.EndDate.Before(today) {
			continue
		}
		row.Status = enums.PurchaseStatusExpired
		count++
	}
	return count, nil
}

func (f *fakeLifecycleStore) FindExpiringSoon(ctx context.Context, today, horizon time.Time) ([]models.Purchase, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Purchase
	for _, row := range f.rows {
		if row.Status != enums.PurchaseStatusActive || row.EndDate == nil {
			continue
		}
		if row.EndDate.Before(today) || row.EndDate.After(horizon) {
			continue
		}
		out = append(out, *row)
	}
	return out, nil
}

func (f *fakeLifecycleStore) RevertExtended(ctx context.Context, horizon time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, row := range f.rows {
		if row.Status != enums.PurchaseStatusAboutToExpire || row.EndDate == nil {
			continue
		}
		if !row.EndDate.After(horizon) {
			continue
		}
		row.Status = enums.PurchaseStatusActive
		count++
	}
	return count, nil
}

func (f *fakeLifecycleStore) MarkAboutToExpire(ctx context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok || row.Status != enums.PurchaseStatusActive {
		return false, nil
	}
	row.Status = enums.PurchaseStatusAboutToExpire
	return true, nil
}

func (f *fakeLifecycleStore) CreateNotification(ctx context.Context, notification *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notifications = append(f.notifications, *notification)
	return nil
}

type passthroughTxRunner struct{}

func (passthroughTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

func datePtr(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}

func lifecycleJobForTest(t *testing.T, store *fakeLifecycleStore) Job {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: &bytes.Buffer{}})
	job, err := NewPolicyLifecycleJob(PolicyLifecycleJobParams{
		Logger:    logg,
		DB:        passthroughTxRunner{},
		Reader:    store,
		TxFactory: func(tx *gorm.DB) lifecycleTxRepo { return store },
	})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	job.(*policyLifecycleJob).now = func() time.Time {
		return time.Date(2025, 6, 15, 3, 0, 0, 0, time.UTC)
	}
	return job
}

func TestPolicyLifecycleSweeps(t *testing.T) {
	store := newFakeLifecycleStore()
	agentID := uuid.New()

	overdueActive := store.add(&models.Purchase{
		Status: enums.PurchaseStatusActive, EndDate: datePtr(2025, 6, 1),
		CustomerID: uuid.New(), PolicyNumber: "PLN-2024-000010",
	})
	overdueWarned := store.add(&models.Purchase{
		Status: enums.PurchaseStatusAboutToExpire, EndDate: datePtr(2025, 6, 10),
		CustomerID: uuid.New(), PolicyNumber: "PLN-2024-000011",
	})
	expiringWithAgent := store.add(&models.Purchase{
		Status: enums.PurchaseStatusActive, EndDate: datePtr(2025, 7, 1),
		CustomerID: uuid.New(), AgentID: &agentID, PolicyNumber: "PLN-2024-000012",
		Customer: &models.Customer{FirstName: "Malee", LastName: "W."},
		Car:      &models.Car{Registration: "1กข 234", Province: "Bangkok"},
	})
	expiringToday := store.add(&models.Purchase{
		Status: enums.PurchaseStatusActive, EndDate: datePtr(2025, 6, 15),
		CustomerID: uuid.New(), PolicyNumber: "PLN-2024-000013",
	})
	expiringAtHorizon := store.add(&models.Purchase{
		Status: enums.PurchaseStatusActive, EndDate: datePtr(2025, 8, 14),
		CustomerID: uuid.New(), PolicyNumber: "PLN-2024-000014",
	})
	farFuture := store.add(&models.Purchase{
		Status: enums.PurchaseStatusActive, EndDate: datePtr(2025, 9, 1),
		CustomerID: uuid.New(), PolicyNumber: "PLN-2024-000015",
	})
	extended := store.add(&models.Purchase{
		Status: enums.PurchaseStatusAboutToExpire, EndDate: datePtr(2026, 6, 15),
		CustomerID: uuid.New(), PolicyNumber: "PLN-2024-000016",
	})
	pending := store.add(&models.Purchase{
		Status:     enums.PurchaseStatusPending,
		CustomerID: uuid.New(), PolicyNumber: "PLN-2025-000001",
	})
	rejected := store.add(&models.Purchase{
		Status: enums.PurchaseStatusRejected, EndDate: datePtr(2025, 1, 1),
		CustomerID: uuid.New(), PolicyNumber: "PLN-2025-000002",
	})
	noEndDate := store.add(&models.Purchase{
		Status:     enums.PurchaseStatusActive,
		CustomerID: uuid.New(), PolicyNumber: "PLN-2025-000003",
	})

	job := lifecycleJobForTest(t, store)
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	expectations := map[*models.Purchase]enums.PurchaseStatus{
		overdueActive:     enums.PurchaseStatusExpired,
		overdueWarned:     enums.PurchaseStatusExpired,
		expiringWithAgent: enums.PurchaseStatusAboutToExpire,
		expiringToday:     enums.PurchaseStatusAboutToExpire,
		expiringAtHorizon: enums.PurchaseStatusAboutToExpire,
		farFuture:         enums.PurchaseStatusActive,
		extended:          enums.PurchaseStatusActive,
		pending:           enums.PurchaseStatusPending,
		rejected:          enums.PurchaseStatusRejected,
		noEndDate:         enums.PurchaseStatusActive,
	}
	for purchase, want := range expectations {
		if got := store.status(purchase.ID); got != want {
			t.Errorf("%s: expected %s, got %s", purchase.PolicyNumber, want, got)
		}
	}

	// Three policies entered the warning window; only one has an agent.
	if len(store.notifications) != 4 {
		t.Fatalf("expected 4 renewal notifications, got %d", len(store.notifications))
	}
	agentNotified := 0
	for _, n := range store.notifications {
		if n.Severity != enums.NotificationSeverityWarning {
			t.Fatalf("renewal notifications must be warnings, got %s", n.Severity)
		}
		if n.RecipientType == enums.RecipientTypeAgent {
			agentNotified++
			if n.RecipientID != agentID {
				t.Fatal("agent notification sent to wrong recipient")
			}
		}
	}
	if agentNotified != 1 {
		t.Fatalf("expected exactly one agent notification, got %d", agentNotified)
	}
}

func TestPolicyLifecycleRunIsIdempotent(t *testing.T) {
	store := newFakeLifecycleStore()
	store.add(&models.Purchase{
		Status: enums.PurchaseStatusActive, EndDate: datePtr(2025, 7, 1),
		CustomerID: uuid.New(), PolicyNumber: "PLN-2025-000020",
		Car: &models.Car{Registration: "2ขค 567", Province: "Chiang Mai"},
	})

	job := lifecycleJobForTest(t, store)
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if len(store.notifications) != 1 {
		t.Fatalf("expected one notification after first run, got %d", len(store.notifications))
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(store.notifications) != 1 {
		t.Fatalf("second run must not renotify, got %d notifications", len(store.notifications))
	}
}

func TestPolicyLifecycleExpireFailureStopsRun(t *testing.T) {
	store := newFakeLifecycleStore()
	store.expireErr = errors.New("store unavailable")

	// Lapsed coverage that the expiry sweep would settle. If the warning
	// sweep ran anyway it would flip this row and notify the customer of a
	// policy that should already be expired.
	lapsed := store.add(&models.Purchase{
		Status: enums.PurchaseStatusActive, EndDate: datePtr(2025, 6, 15),
		CustomerID: uuid.New(), PolicyNumber: "PLN-2025-000040",
	})

	job := lifecycleJobForTest(t, store)
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected run to fail when the expiry sweep fails")
	}
	if got := store.status(lapsed.ID); got != enums.PurchaseStatusActive {
		t.Fatalf("later sweeps must not run after an expiry failure, got status %s", got)
	}
	if len(store.notifications) != 0 {
		t.Fatalf("no notifications expected on an aborted run, got %d", len(store.notifications))
	}

	store.expireErr = nil
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("recovery run: %v", err)
	}
	if got := store.status(lapsed.ID); got != enums.PurchaseStatusAboutToExpire {
		t.Fatalf("recovery run should settle the row, got %s", got)
	}
}

func TestPolicyLifecycleNotificationText(t *testing.T) {
	store := newFakeLifecycleStore()
	store.add(&models.Purchase{
		Status: enums.PurchaseStatusActive, EndDate: datePtr(2025, 7, 1),
		CustomerID: uuid.New(), PolicyNumber: "PLN-2025-000030",
		Car: &models.Car{Registration: "1กข 234", Province: "Bangkok"},
	})

	job := lifecycleJobForTest(t, store)
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(store.notifications) != 1 {
		t.Fatalf("expected one notification, got %d", len(store.notifications))
	}
	message := store.notifications[0].Message
	for _, want := range []string{"PLN-2025-000030", "1กข 234 Bangkok", "01 Jul 2025"} {
		if !bytes.Contains([]byte(message), []byte(want)) {
			t.Fatalf("message %q missing %q", message, want)
		}
	}
}
