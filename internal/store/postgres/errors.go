package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"fictures/internal/store"
)

// Postgres error codes that indicate the client sent an invalid write rather
// than the backend failing: foreign key, uniqueness, check constraint.
const (
	codeForeignKeyViolation = "23503"
	codeUniqueViolation     = "23505"
	codeCheckViolation      = "23514"
)

func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, store.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeForeignKeyViolation, codeUniqueViolation, codeCheckViolation:
			return fmt.Errorf("%s: %s: %w", op, pgErr.ConstraintName, store.ErrConflict)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
