package policynumber

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	pkgerrors "github.com/motorsure/brokerage-backend/pkg/errors"
)

const prefix = "PLN"

// CounterStore increments and returns the per-year sequence counter.
// Implementations must be atomic: two concurrent calls for the same year
// must never observe the same value.
type CounterStore interface {
	NextSeq(ctx context.Context, tx *gorm.DB, year int) (int64, error)
}

// Allocator issues unique policy numbers of the form PLN-YYYY-NNNNNN.
type Allocator struct {
	store CounterStore
}

// NewAllocator builds a policy number allocator.
func NewAllocator(store CounterStore) (*Allocator, error) {
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "counter store required")
	}
	return &Allocator{store: store}, nil
}

// AllocateTx reserves the next policy number for the given year inside the
// caller's transaction. The counter increment commits or rolls back with the
// rest of the transaction, so an aborted purchase never burns a visible gap
// beyond the rolled-back one.
func (a *Allocator) AllocateTx(ctx context.Context, tx *gorm.DB, year int) (string, error) {
	if tx == nil {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "transaction required")
	}
	if year < 1 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid policy year %d", year))
	}
	seq, err := a.store.NextSeq(ctx, tx, year)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "next policy sequence")
	}
	return Format(year, seq), nil
}

// Format renders a policy number. The sequence is zero-padded to six digits
// and widens naturally past 999999.
func Format(year int, seq int64) string {
	return fmt.Sprintf("%s-%04d-%06d", prefix, year, seq)
}

type gormCounterStore struct{}

// NewGormCounterStore returns the Postgres-backed counter store.
func NewGormCounterStore() CounterStore {
	return gormCounterStore{}
}

// NextSeq relies on a single upsert so the row-level lock taken by
// ON CONFLICT DO UPDATE serializes concurrent allocations for a year.
func (gormCounterStore) NextSeq(ctx context.Context, tx *gorm.DB, year int) (int64, error) {
	var seq int64
	err := tx.WithContext(ctx).Raw(`
		INSERT INTO policy_counters (year, seq)
		VALUES (?, 1)
		ON CONFLICT (year) DO UPDATE SET seq = policy_counters.seq + 1
		RETURNING seq
	`, year).Scan(&seq).Error
	if err != nil {
		return 0, err
	}
	return seq, nil
}
