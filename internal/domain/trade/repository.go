package trade

import (
	"context"

	"github.com/google/uuid"
)

// PurchaseOrderRepository defines persistence for purchase orders
type PurchaseOrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)
	// FindByIDForUpdate loads the order holding a row lock until the surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)
	Create(ctx context.Context, order *PurchaseOrder) error
	// Update rewrites the header and replaces all lines.
	Update(ctx context.Context, order *PurchaseOrder) error
	MarkReceived(ctx context.Context, id uuid.UUID) error
}

// PurchaseInvoiceRepository defines persistence for goods receipts
type PurchaseInvoiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseInvoice, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*PurchaseInvoice, error)
	// Create inserts the header and its lines. Batches are created separately
	// in the same transaction.
	Create(ctx context.Context, invoice *PurchaseInvoice) error
	// MarkReversed persists status, reversed_by and reversed_at.
	MarkReversed(ctx context.Context, invoice *PurchaseInvoice) error
}
