package finance

import (
	"time"

	"github.com/erp/vendorledger/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceBalance is the derived payable position of one purchase invoice.
// It is never stored; every read recomputes it from allocation rows.
type InvoiceBalance struct {
	InvoiceID        uuid.UUID
	InvoiceNumber    string
	VendorID         uuid.UUID
	Status           trade.PurchaseInvoiceStatus
	GrandTotal       decimal.Decimal
	Paid             decimal.Decimal
	DebitNoteApplied decimal.Decimal
	ReceivedDate     time.Time
	CreatedAt        time.Time
}

// Balance is grand_total - paid - debit notes applied, or zero once the
// invoice has been reversed or cancelled.
func (b InvoiceBalance) Balance() decimal.Decimal {
	return ComputeBalance(b.Status, b.GrandTotal, b.Paid, b.DebitNoteApplied)
}

// IsOpen reports whether the invoice can still receive allocations.
func (b InvoiceBalance) IsOpen() bool {
	return b.Status == trade.PurchaseInvoiceStatusVerified && b.Balance().IsPositive()
}

// ToTarget snapshots the balance for the allocation engine.
func (b InvoiceBalance) ToTarget() AllocationTarget {
	return AllocationTarget{
		InvoiceID:     b.InvoiceID,
		InvoiceNumber: b.InvoiceNumber,
		VendorID:      b.VendorID,
		Balance:       b.Balance(),
		ReceivedDate:  b.ReceivedDate,
		CreatedAt:     b.CreatedAt,
	}
}

// ComputeBalance applies the balance formula.
func ComputeBalance(status trade.PurchaseInvoiceStatus, grandTotal, paid, dnApplied decimal.Decimal) decimal.Decimal {
	if status.IsNeutralized() {
		return decimal.Zero
	}
	return grandTotal.Sub(paid).Sub(dnApplied)
}

// ToTargets converts open balances into allocation targets, preserving order.
func ToTargets(balances []InvoiceBalance) []AllocationTarget {
	targets := make([]AllocationTarget, 0, len(balances))
	for _, b := range balances {
		if b.IsOpen() {
			targets = append(targets, b.ToTarget())
		}
	}
	return targets
}
