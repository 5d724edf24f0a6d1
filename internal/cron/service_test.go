package cron

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/motorsure/brokerage-backend/pkg/logger"
)

type fakeLock struct {
	locked   bool
	err      error
	acquires int
	releases int
}

func (f *fakeLock) Acquire(ctx context.Context) (bool, error) {
	f.acquires++
	return f.locked, f.err
}

func (f *fakeLock) Release(ctx context.Context) error {
	f.releases++
	return nil
}

type recordingJob struct {
	name string
	runs int
	err  error
}

func (j *recordingJob) Name() string { return j.name }

func (j *recordingJob) Run(ctx context.Context) error {
	j.runs++
	return j.err
}

func serviceForTest(t *testing.T, lock Lock, jobs ...Job) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Logger:   logger.New(logger.Options{ServiceName: "test", Output: &bytes.Buffer{}}),
		Registry: NewRegistry(jobs...),
		Lock:     lock,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestRunCycleExecutesJobsWhenLockHeld(t *testing.T) {
	lock := &fakeLock{locked: true}
	first := &recordingJob{name: "first"}
	second := &recordingJob{name: "second", err: errors.New("boom")}
	svc := serviceForTest(t, lock, first, second)

	if err := svc.runCycle(context.Background()); err != nil {
		t.Fatalf("run cycle: %v", err)
	}
	if first.runs != 1 || second.runs != 1 {
		t.Fatalf("expected each job to run once, got %d and %d", first.runs, second.runs)
	}
	if lock.releases != 1 {
		t.Fatalf("expected lock released once, got %d", lock.releases)
	}
}

func TestRunCycleSkipsWhenLockBusy(t *testing.T) {
	lock := &fakeLock{locked: false}
	job := &recordingJob{name: "only"}
	svc := serviceForTest(t, lock, job)

	if err := svc.runCycle(context.Background()); err != nil {
		t.Fatalf("run cycle: %v", err)
	}
	if job.runs != 0 {
		t.Fatalf("job must not run without the lock, ran %d times", job.runs)
	}
	if lock.releases != 0 {
		t.Fatalf("lock must not be released when never acquired, got %d", lock.releases)
	}
}

func TestRunCycleReturnsLockError(t *testing.T) {
	lock := &fakeLock{err: errors.New("redis down")}
	svc := serviceForTest(t, lock, &recordingJob{name: "only"})

	if err := svc.runCycle(context.Background()); err == nil {
		t.Fatal("expected lock error to surface")
	}
}
