package cron

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/motorsure/brokerage-backend/pkg/logger"
)

type fakeCleanupRepo struct {
	cutoff  time.Time
	deleted int64
	err     error
}

func (f *fakeCleanupRepo) DeleteOlderThan(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return f.deleted, f.err
}

func TestNotificationCleanupCutoff(t *testing.T) {
	repo := &fakeCleanupRepo{deleted: 12}
	logg := logger.New(logger.Options{ServiceName: "test", Output: &bytes.Buffer{}})
	job, err := NewNotificationCleanupJob(NotificationCleanupJobParams{
		Logger:     logg,
		DB:         passthroughTxRunner{},
		Repository: repo,
		Retention:  30,
	})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	now := time.Date(2025, 6, 15, 3, 0, 0, 0, time.UTC)
	job.(*notificationCleanupJob).now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := now.Add(-30 * 24 * time.Hour)
	if !repo.cutoff.Equal(want) {
		t.Fatalf("expected cutoff %s, got %s", want, repo.cutoff)
	}
}

func TestNotificationCleanupPropagatesError(t *testing.T) {
	repo := &fakeCleanupRepo{err: errors.New("boom")}
	logg := logger.New(logger.Options{ServiceName: "test", Output: &bytes.Buffer{}})
	job, err := NewNotificationCleanupJob(NotificationCleanupJobParams{
		Logger:     logg,
		DB:         passthroughTxRunner{},
		Repository: repo,
	})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error from failed delete")
	}
}
