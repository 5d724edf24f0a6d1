package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolationCode = "23505"

// IsUniqueViolation reports whether the provided error is a Postgres unique
// constraint violation. When a constraint name is provided, the match is
// restricted to that constraint.
func IsUniqueViolation(err error, constraintName ...string) bool {
	if err == nil {
		return false
	}

	name := ""
	if len(constraintName) > 0 {
		name = constraintName[0]
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != pgUniqueViolationCode {
			return false
		}
		return name == "" || pgErr.ConstraintName == name
	}

	// SQLite and driver-wrapped errors only expose the message text.
	msg := err.Error()
	if name != "" {
		return strings.Contains(msg, name)
	}
	return strings.Contains(msg, "duplicate key value") || strings.Contains(msg, "UNIQUE constraint failed")
}
