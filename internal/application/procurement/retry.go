package procurement

import (
	"context"

	"github.com/erp/vendorledger/internal/domain/shared"
	"github.com/erp/vendorledger/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// executeWithRetry runs fn in a fresh transaction and, if it failed with a
// concurrency conflict, runs it exactly once more. Every attempt is a whole
// unit of work; nothing from a failed attempt persists.
func executeWithRetry(
	ctx context.Context,
	scope TransactionScope,
	log *zap.Logger,
	metrics *telemetry.LedgerMetrics,
	operation string,
	fn func(repos TransactionalRepositories) error,
) error {
	err := scope.Execute(ctx, fn)
	if err == nil || !shared.IsConcurrencyConflict(err) || ctx.Err() != nil {
		return err
	}
	log.Warn("retrying after concurrency conflict",
		zap.String("operation", operation),
		zap.Error(err),
	)
	if metrics != nil {
		metrics.RecordConflictRetry(ctx, operation)
	}
	return scope.Execute(ctx, fn)
}
