package inventory

import (
	"strings"
	"time"

	"github.com/erp/vendorledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UnknownBatchNumber is recorded on debit note lines whose batch can no longer be found.
const UnknownBatchNumber = "NA"

// ProductBatch is a stock lot created from exactly one purchase invoice line.
//
// Invariant: QtyGood + QtyDamaged <= InitialQty. A batch with
// QtyGood < InitialQty has had stock movement and can no longer be reversed.
type ProductBatch struct {
	shared.BaseEntity
	ProductID             uuid.UUID
	PurchaseInvoiceLineID uuid.UUID
	BatchNumber           string
	ExpiryDate            *time.Time
	MRP                   decimal.Decimal
	PurchaseRate          decimal.Decimal
	ReceivedDate          time.Time
	InitialQty            decimal.Decimal
	QtyGood               decimal.Decimal
	QtyDamaged            decimal.Decimal
	IsActive              bool
}

// NewBatchParams groups the inputs of NewProductBatch.
type NewBatchParams struct {
	ProductID             uuid.UUID
	PurchaseInvoiceLineID uuid.UUID
	BatchNumber           string
	MRP                   decimal.Decimal
	ExpiryDate            *time.Time
	ReceivedDate          time.Time
	PurchaseRate          decimal.Decimal
	AcceptedQty           decimal.Decimal
}

// NewProductBatch creates an active, untouched batch holding AcceptedQty good units.
func NewProductBatch(p NewBatchParams) (*ProductBatch, error) {
	if p.ProductID == uuid.Nil || p.PurchaseInvoiceLineID == uuid.Nil {
		return nil, shared.NewValidationError("batch requires a product and an invoice line")
	}
	if strings.TrimSpace(p.BatchNumber) == "" {
		return nil, shared.NewValidationError("batch number is required")
	}
	if !p.AcceptedQty.IsPositive() {
		return nil, shared.NewValidationError("accepted quantity must be positive")
	}
	return &ProductBatch{
		BaseEntity:            shared.NewBaseEntity(),
		ProductID:             p.ProductID,
		PurchaseInvoiceLineID: p.PurchaseInvoiceLineID,
		BatchNumber:           strings.TrimSpace(p.BatchNumber),
		ExpiryDate:            p.ExpiryDate,
		MRP:                   p.MRP,
		PurchaseRate:          p.PurchaseRate,
		ReceivedDate:          p.ReceivedDate,
		InitialQty:            p.AcceptedQty,
		QtyGood:               p.AcceptedQty,
		QtyDamaged:            decimal.Zero,
		IsActive:              true,
	}, nil
}

// IsUntouched reports whether none of the received stock has left the batch.
func (b *ProductBatch) IsUntouched() bool {
	return b.IsActive && b.QtyGood.Equal(b.InitialQty) && b.QtyDamaged.IsZero()
}

// IsAvailable reports whether the batch can supply good stock.
func (b *ProductBatch) IsAvailable() bool {
	return b.IsActive && b.QtyGood.IsPositive()
}

// Void zeroes good stock and deactivates the batch.
func (b *ProductBatch) Void() {
	b.QtyGood = decimal.Zero
	b.IsActive = false
	b.Touch()
}

// MarkDamaged moves qty from good to damaged stock.
func (b *ProductBatch) MarkDamaged(qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return shared.NewValidationError("damaged quantity must be positive")
	}
	if !b.IsActive {
		return shared.NewInvalidStateError("batch %s is not active", b.BatchNumber)
	}
	if qty.GreaterThan(b.QtyGood) {
		return shared.NewValidationError("batch %s has only %s good units", b.BatchNumber, b.QtyGood.String())
	}
	b.QtyGood = b.QtyGood.Sub(qty)
	b.QtyDamaged = b.QtyDamaged.Add(qty)
	b.Touch()
	return nil
}

// CanReverse reports whether every batch is untouched. An empty set is
// reversible: there is no stock to protect.
func CanReverse(batches []ProductBatch) bool {
	for i := range batches {
		if !batches[i].IsUntouched() {
			return false
		}
	}
	return true
}
