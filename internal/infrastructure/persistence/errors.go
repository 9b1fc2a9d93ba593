package persistence

import (
	"errors"
	"fmt"

	"github.com/erp/vendorledger/internal/domain/shared"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgSerializationFail   = "40001"
	pgDeadlockDetected    = "40P01"

	// liveBatchConstraint is the partial unique index on active (product_id, batch_number).
	liveBatchConstraint = "uq_product_batches_live"
)

// translateError maps driver errors onto the domain taxonomy. Database text
// never reaches the domain message; it is kept as the cause for logs.
func translateError(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return fmt.Errorf("%s: %w", what, err)
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		if pgErr.ConstraintName == liveBatchConstraint {
			return shared.NewValidationError("duplicate batch for this product").WithCause(err)
		}
		return shared.NewConcurrencyConflict("%s collided with a concurrent write", what).WithCause(err)
	case pgSerializationFail, pgDeadlockDetected:
		return shared.NewConcurrencyConflict("%s was interrupted by a concurrent write", what).WithCause(err)
	case pgForeignKeyViolation:
		return shared.NewValidationError("%s references a record that does not exist", what).WithCause(err)
	case pgCheckViolation:
		return shared.NewValidationError("%s violates a data constraint", what).WithCause(err)
	}
	return fmt.Errorf("%s: %w", what, err)
}

// isUniqueViolation reports whether err is a unique violation of constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == constraint
}
