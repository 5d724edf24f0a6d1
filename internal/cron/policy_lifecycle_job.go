package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/motorsure/brokerage-backend/internal/notifications"
	"github.com/motorsure/brokerage-backend/internal/purchases"
	"github.com/motorsure/brokerage-backend/pkg/db/models"
	"github.com/motorsure/brokerage-backend/pkg/enums"
	"github.com/motorsure/brokerage-backend/pkg/logger"
	"github.com/motorsure/brokerage-backend/pkg/metrics"
)

const (
	defaultLookAheadDays = 60
	endDateFormat        = "02 Jan 2006"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type lifecycleReader interface {
	ExpireOverdue(ctx context.Context, today time.Time) (int64, error)
	FindExpiringSoon(ctx context.Context, today, horizon time.Time) ([]models.Purchase, error)
	RevertExtended(ctx context.Context, horizon time.Time) (int64, error)
}

type lifecycleTxRepo interface {
	MarkAboutToExpire(ctx context.Context, id uuid.UUID) (bool, error)
	CreateNotification(ctx context.Context, notification *models.Notification) error
}

type lifecycleTxFactory func(tx *gorm.DB) lifecycleTxRepo

type defaultLifecycleTxRepo struct {
	purchases purchases.Repository
	notifs    notifications.Repository
}

func (r defaultLifecycleTxRepo) MarkAboutToExpire(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.purchases.MarkAboutToExpire(ctx, id)
}

func (r defaultLifecycleTxRepo) CreateNotification(ctx context.Context, notification *models.Notification) error {
	return r.notifs.Create(ctx, notification)
}

// PolicyLifecycleJobParams configure the daily policy status reconciler.
type PolicyLifecycleJobParams struct {
	Logger        *logger.Logger
	DB            txRunner
	Reader        lifecycleReader
	TxFactory     lifecycleTxFactory
	Metrics       *metrics.CronJobMetrics
	LookAheadDays int
}

// DefaultLifecycleTxFactory binds the purchase and notification repositories
// to the sweep transaction.
func DefaultLifecycleTxFactory(tx *gorm.DB) lifecycleTxRepo {
	return defaultLifecycleTxRepo{
		purchases: purchases.NewRepository(tx),
		notifs:    notifications.NewRepository(tx),
	}
}

// NewPolicyLifecycleJob builds the job that expires, warns and reverts
// policy statuses from their end dates.
func NewPolicyLifecycleJob(params PolicyLifecycleJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Reader == nil {
		return nil, fmt.Errorf("lifecycle reader required")
	}
	factory := params.TxFactory
	if factory == nil {
		factory = DefaultLifecycleTxFactory
	}
	lookAhead := params.LookAheadDays
	if lookAhead <= 0 {
		lookAhead = defaultLookAheadDays
	}
	return &policyLifecycleJob{
		logg:      params.Logger,
		db:        params.DB,
		reader:    params.Reader,
		txFactory: factory,
		metrics:   params.Metrics,
		lookAhead: lookAhead,
		now:       time.Now,
	}, nil
}

type policyLifecycleJob struct {
	logg      *logger.Logger
	db        txRunner
	reader    lifecycleReader
	txFactory lifecycleTxFactory
	metrics   *metrics.CronJobMetrics
	lookAhead int
	now       func() time.Time
}

func (j *policyLifecycleJob) Name() string { return "policy-lifecycle" }

// Run applies the three sweeps in order: expire overdue coverage first so an
// already-lapsed policy never receives a renewal warning, then warn on
// approaching end dates, then revert policies whose coverage was extended.
// A sweep failure aborts the remaining sweeps. The ordering is what keeps a
// policy ending today out of the warning window, so the later sweeps must not
// run against a state the earlier one failed to settle. The next run covers
// whatever was left undone.
func (j *policyLifecycleJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	horizon := today.AddDate(0, 0, j.lookAhead)

	if err := j.expireSweep(ctx, today); err != nil {
		return err
	}
	if err := j.warnSweep(ctx, today, horizon); err != nil {
		return err
	}
	return j.revertSweep(ctx, horizon)
}

func (j *policyLifecycleJob) expireSweep(ctx context.Context, today time.Time) error {
	expired, err := j.reader.ExpireOverdue(ctx, today)
	if err != nil {
		return fmt.Errorf("expire sweep: %w", err)
	}
	j.addTransitions(string(enums.PurchaseStatusActive), string(enums.PurchaseStatusExpired), expired)
	logCtx := j.logg.WithFields(ctx, map[string]any{"today": today, "rows": expired})
	j.logg.Info(logCtx, "expire sweep complete")
	return nil
}

func (j *policyLifecycleJob) warnSweep(ctx context.Context, today, horizon time.Time) error {
	rows, err := j.reader.FindExpiringSoon(ctx, today, horizon)
	if err != nil {
		return fmt.Errorf("warn sweep query: %w", err)
	}

	var errs []error
	marked := 0
	for _, purchase := range rows {
		ok, err := j.warnOne(ctx, purchase)
		if err != nil {
			errs = append(errs, fmt.Errorf("warn %s: %w", purchase.PolicyNumber, err))
			continue
		}
		if ok {
			marked++
		}
	}
	j.addTransitions(string(enums.PurchaseStatusActive), string(enums.PurchaseStatusAboutToExpire), int64(marked))
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"horizon":    horizon,
		"candidates": len(rows),
		"marked":     marked,
	})
	j.logg.Info(logCtx, "warn sweep complete")
	return multierr.Combine(errs...)
}

// warnOne flips one policy to about_to_expire and writes the renewal
// notifications in the same transaction. The status guard on the update makes
// a repeated run a no-op, so nobody is notified twice.
func (j *policyLifecycleJob) warnOne(ctx context.Context, purchase models.Purchase) (bool, error) {
	var marked bool
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := j.txFactory(tx)
		ok, err := repo.MarkAboutToExpire(ctx, purchase.ID)
		if err != nil {
			return err
		}
		marked = ok
		if !ok {
			return nil
		}

		for _, notification := range j.renewalNotifications(purchase) {
			n := notification
			if err := repo.CreateNotification(ctx, &n); err != nil {
				return err
			}
		}
		return nil
	})
	return marked, err
}

func (j *policyLifecycleJob) renewalNotifications(purchase models.Purchase) []models.Notification {
	endDate := ""
	if purchase.EndDate != nil {
		endDate = purchase.EndDate.Format(endDateFormat)
	}

	plate := ""
	if purchase.Car != nil {
		plate = purchase.Car.Plate()
	}

	out := []models.Notification{{
		RecipientID:       purchase.CustomerID,
		RecipientType:     enums.RecipientTypeCustomer,
		Message:           fmt.Sprintf("Your policy %s for %s expires on %s. Please renew soon.", purchase.PolicyNumber, plate, endDate),
		Severity:          enums.NotificationSeverityWarning,
		SenderName:        "System",
		SenderRole:        "System",
		RelatedPurchaseID: &purchase.ID,
	}}

	if purchase.AgentID != nil {
		customerName := ""
		if purchase.Customer != nil {
			customerName = purchase.Customer.FirstName + " " + purchase.Customer.LastName
		}
		out = append(out, models.Notification{
			RecipientID:       *purchase.AgentID,
			RecipientType:     enums.RecipientTypeAgent,
			Message:           fmt.Sprintf("Policy %s (customer %s) expires on %s.", purchase.PolicyNumber, customerName, endDate),
			Severity:          enums.NotificationSeverityWarning,
			SenderName:        "System",
			SenderRole:        "System",
			RelatedPurchaseID: &purchase.ID,
		})
	}
	return out
}

func (j *policyLifecycleJob) revertSweep(ctx context.Context, horizon time.Time) error {
	reverted, err := j.reader.RevertExtended(ctx, horizon)
	if err != nil {
		return fmt.Errorf("revert sweep: %w", err)
	}
	j.addTransitions(string(enums.PurchaseStatusAboutToExpire), string(enums.PurchaseStatusActive), reverted)
	logCtx := j.logg.WithFields(ctx, map[string]any{"horizon": horizon, "rows": reverted})
	j.logg.Info(logCtx, "revert sweep complete")
	return nil
}

func (j *policyLifecycleJob) addTransitions(from, to string, n int64) {
	if j.metrics == nil || n <= 0 {
		return
	}
	j.metrics.AddTransitions(from, to, int(n))
}
