package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductBatchRepository is the inventory batch ledger store. Mutating
// methods must be called with a transaction-scoped repository.
type ProductBatchRepository interface {
	// Create inserts a batch. A live duplicate (product, batch number) is a validation error.
	Create(ctx context.Context, batch *ProductBatch) error
	FindByID(ctx context.Context, id uuid.UUID) (*ProductBatch, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*ProductBatch, error)
	// FindByInvoiceForUpdate returns the batches backing an invoice's lines, row locked.
	FindByInvoiceForUpdate(ctx context.Context, invoiceID uuid.UUID) ([]ProductBatch, error)
	// FindByInvoice returns the batches backing an invoice's lines without locking.
	FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]ProductBatch, error)
	// VoidBatches sets qty_good = 0 and is_active = false for all of the invoice's batches.
	VoidBatches(ctx context.Context, invoiceID uuid.UUID) (int64, error)
	// FindAvailableByProduct returns active batches with good stock, oldest received first.
	FindAvailableByProduct(ctx context.Context, productID uuid.UUID) ([]ProductBatch, error)
	UpdateQuantities(ctx context.Context, id uuid.UUID, qtyGood, qtyDamaged decimal.Decimal) error
}
