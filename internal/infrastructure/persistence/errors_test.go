package persistence

import (
	"errors"
	"fmt"
	"testing"

	"github.com/erp/vendorledger/internal/domain/shared"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestTranslateError(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, translateError(nil, "anything"))
	})

	t.Run("record not found becomes ErrNotFound", func(t *testing.T) {
		err := translateError(gorm.ErrRecordNotFound, "find vendor")
		assert.Equal(t, shared.ErrNotFound, err)
	})

	t.Run("unique violation on a document number is a concurrency conflict", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "idx_purchase_invoices_invoice_number", Message: "duplicate key value"}
		err := translateError(fmt.Errorf("exec: %w", pgErr), "create purchase invoice")

		assert.True(t, shared.IsConcurrencyConflict(err))
		assert.NotContains(t, err.Error(), "duplicate key value")
		assert.True(t, errors.Is(err, pgErr), "driver error is kept as the cause")
	})

	t.Run("unique violation on the live batch index is a validation error", func(t *testing.T) {
		err := translateError(&pgconn.PgError{Code: "23505", ConstraintName: liveBatchConstraint}, "create product batch")
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("serialization failure is a concurrency conflict", func(t *testing.T) {
		err := translateError(&pgconn.PgError{Code: "40001"}, "allocate")
		assert.True(t, shared.IsConcurrencyConflict(err))
	})

	t.Run("foreign key violation is a validation error", func(t *testing.T) {
		err := translateError(&pgconn.PgError{Code: "23503"}, "create payment allocations")
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("other errors are wrapped with the operation", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := translateError(cause, "list open invoices")
		assert.EqualError(t, err, "list open invoices: connection reset")
		assert.ErrorIs(t, err, cause)
	})
}
