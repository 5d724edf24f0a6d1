package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsUniqueViolation(t *testing.T) {
	if IsUniqueViolation(nil) {
		t.Fatal("nil error should not be a violation")
	}

	textErr := errors.New(`ERROR: duplicate key value violates unique constraint "purchases_policy_number_key"`)
	if !IsUniqueViolation(textErr) {
		t.Fatal("expected generic duplicate key detection")
	}
	if !IsUniqueViolation(textErr, "purchases_policy_number_key") {
		t.Fatal("expected constraint name detection")
	}
	if IsUniqueViolation(textErr, "cars_registration_key") {
		t.Fatal("should not match a different constraint")
	}

	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "customers_username_key"}
	wrapped := fmt.Errorf("create customer: %w", pgErr)
	if !IsUniqueViolation(wrapped) {
		t.Fatal("expected pg error detection through wrapping")
	}
	if !IsUniqueViolation(wrapped, "customers_username_key") {
		t.Fatal("expected pg constraint name match")
	}
	if IsUniqueViolation(wrapped, "agents_license_number_key") {
		t.Fatal("should not match a different pg constraint")
	}

	notNull := &pgconn.PgError{Code: "23502"}
	if IsUniqueViolation(notNull) {
		t.Fatal("not-null violation is not a unique violation")
	}
}
