package procurement

import (
	"context"

	"github.com/erp/vendorledger/internal/domain/inventory"
	"github.com/erp/vendorledger/internal/domain/shared"
	"github.com/erp/vendorledger/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BatchService exposes the batch ledger: FIFO consumption previews and
// damage adjustments.
type BatchService struct {
	scope   TransactionScope
	batches inventory.ProductBatchRepository
	logger  *zap.Logger
}

// NewBatchService creates a new BatchService. batches serves read-only
// previews outside a transaction.
func NewBatchService(scope TransactionScope, batches inventory.ProductBatchRepository, logger *zap.Logger) *BatchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchService{scope: scope, batches: batches, logger: logger}
}

// PlanConsumption previews which batches would supply qty of a product,
// oldest received first. Nothing is reserved.
func (s *BatchService) PlanConsumption(ctx context.Context, productID uuid.UUID, qty decimal.Decimal) (*inventory.ConsumptionPlan, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "product_batch", "plan_consumption")
	defer span.End()

	if productID == uuid.Nil {
		return nil, shared.NewValidationError("product is required")
	}
	batches, err := s.batches.FindAvailableByProduct(ctx, productID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	plan, err := inventory.PlanFIFOConsumption(productID, qty, batches)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, "batches_used", len(plan.Takes), "shortfall", plan.Shortfall.String())
	return plan, nil
}

// MarkDamaged moves qty of a batch's good stock to damaged. A batch touched
// this way can no longer be reversed with its invoice.
func (s *BatchService) MarkDamaged(ctx context.Context, req MarkBatchDamagedRequest) (*BatchResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "product_batch", "mark_damaged")
	defer span.End()

	var batch *inventory.ProductBatch
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		b, err := repos.Batches().FindByIDForUpdate(ctx, req.BatchID)
		if err != nil {
			return err
		}
		if err := b.MarkDamaged(req.Quantity); err != nil {
			return err
		}
		if err := repos.Batches().UpdateQuantities(ctx, b.ID, b.QtyGood, b.QtyDamaged); err != nil {
			return err
		}
		batch = b
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.logger.Info("batch stock marked damaged",
		zap.String("batch_id", batch.ID.String()),
		zap.String("quantity", req.Quantity.String()),
	)
	return toBatchResult(batch), nil
}
