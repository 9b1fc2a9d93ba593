package trade

import (
	"strings"
	"time"

	"github.com/erp/vendorledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseInvoiceStatus is the lifecycle state of a goods receipt.
type PurchaseInvoiceStatus string

const (
	PurchaseInvoiceStatusVerified  PurchaseInvoiceStatus = "Verified"
	PurchaseInvoiceStatusReversed  PurchaseInvoiceStatus = "Reversed"
	PurchaseInvoiceStatusCancelled PurchaseInvoiceStatus = "Cancelled"
)

// IsValid checks if the status is valid
func (s PurchaseInvoiceStatus) IsValid() bool {
	switch s {
	case PurchaseInvoiceStatusVerified, PurchaseInvoiceStatusReversed, PurchaseInvoiceStatusCancelled:
		return true
	}
	return false
}

// IsNeutralized reports whether the invoice no longer carries a payable balance.
func (s PurchaseInvoiceStatus) IsNeutralized() bool {
	return s == PurchaseInvoiceStatusReversed || s == PurchaseInvoiceStatusCancelled
}

// CanTransitionTo checks if the status can transition to the target status
func (s PurchaseInvoiceStatus) CanTransitionTo(target PurchaseInvoiceStatus) bool {
	switch s {
	case PurchaseInvoiceStatusVerified:
		return target == PurchaseInvoiceStatusReversed || target == PurchaseInvoiceStatusCancelled
	}
	return false
}

// PurchaseInvoiceLineInput is one received product line.
type PurchaseInvoiceLineInput struct {
	ProductID       uuid.UUID
	OrderedQty      decimal.Decimal
	AcceptedQty     decimal.Decimal
	Rate            decimal.Decimal
	MRP             decimal.Decimal
	DiscountPercent decimal.Decimal
	SchemeAmount    decimal.Decimal
	TaxAmount       decimal.Decimal
	Amount          decimal.Decimal
	BatchNumber     string
	ExpiryDate      *time.Time
}

// PurchaseInvoiceLine is a persisted goods receipt line. Exactly one product
// batch is created for it.
type PurchaseInvoiceLine struct {
	ID              uuid.UUID
	InvoiceID       uuid.UUID
	LineNo          int
	ProductID       uuid.UUID
	OrderedQty      decimal.Decimal
	AcceptedQty     decimal.Decimal
	Rate            decimal.Decimal
	MRP             decimal.Decimal
	DiscountPercent decimal.Decimal
	SchemeAmount    decimal.Decimal
	TaxAmount       decimal.Decimal
	Amount          decimal.Decimal
	BatchNumber     string
	ExpiryDate      *time.Time
}

// PurchaseInvoice is a goods receipt note (GRN).
type PurchaseInvoice struct {
	shared.BaseEntity
	InvoiceNumber       string // internal number minted from the PI sequence
	VendorID            uuid.UUID
	PurchaseOrderID     *uuid.UUID
	ParentInvoiceID     *uuid.UUID
	VendorInvoiceNumber string
	VendorInvoiceDate   time.Time
	ReceivedDate        time.Time
	TotalNet            decimal.Decimal
	TaxAmount           decimal.Decimal
	GrandTotal          decimal.Decimal
	Status              PurchaseInvoiceStatus
	ReversedBy          *uuid.UUID
	ReversedAt          *time.Time
	Lines               []PurchaseInvoiceLine
}

// NewPurchaseInvoiceParams groups the inputs of NewPurchaseInvoice.
type NewPurchaseInvoiceParams struct {
	InvoiceNumber       string
	VendorID            uuid.UUID
	PurchaseOrderID     *uuid.UUID
	ParentInvoiceID     *uuid.UUID
	VendorInvoiceNumber string
	VendorInvoiceDate   time.Time
	ReceivedDate        time.Time
	TotalNet            decimal.Decimal
	TaxAmount           decimal.Decimal
	GrandTotal          decimal.Decimal
	Lines               []PurchaseInvoiceLineInput
}

// NewPurchaseInvoice builds a Verified goods receipt.
func NewPurchaseInvoice(p NewPurchaseInvoiceParams) (*PurchaseInvoice, error) {
	if p.VendorID == uuid.Nil {
		return nil, shared.NewValidationError("vendor is required")
	}
	if strings.TrimSpace(p.InvoiceNumber) == "" {
		return nil, shared.NewValidationError("internal invoice number is required")
	}
	if strings.TrimSpace(p.VendorInvoiceNumber) == "" {
		return nil, shared.NewValidationError("vendor invoice number is required")
	}
	if p.ReceivedDate.IsZero() {
		return nil, shared.NewValidationError("received date is required")
	}
	if !p.GrandTotal.IsPositive() {
		return nil, shared.NewValidationError("grand total must be positive")
	}
	if p.TotalNet.IsNegative() || p.TaxAmount.IsNegative() {
		return nil, shared.NewValidationError("net and tax amounts must not be negative")
	}
	if len(p.Lines) == 0 {
		return nil, shared.NewValidationError("at least one line item is required")
	}

	inv := &PurchaseInvoice{
		BaseEntity:          shared.NewBaseEntity(),
		InvoiceNumber:       p.InvoiceNumber,
		VendorID:            p.VendorID,
		PurchaseOrderID:     p.PurchaseOrderID,
		ParentInvoiceID:     p.ParentInvoiceID,
		VendorInvoiceNumber: strings.TrimSpace(p.VendorInvoiceNumber),
		VendorInvoiceDate:   p.VendorInvoiceDate,
		ReceivedDate:        p.ReceivedDate,
		TotalNet:            shared.RoundMoney(p.TotalNet),
		TaxAmount:           shared.RoundMoney(p.TaxAmount),
		GrandTotal:          shared.RoundMoney(p.GrandTotal),
		Status:              PurchaseInvoiceStatusVerified,
	}
	if inv.VendorInvoiceDate.IsZero() {
		inv.VendorInvoiceDate = p.ReceivedDate
	}

	for i, in := range p.Lines {
		if in.ProductID == uuid.Nil {
			return nil, shared.NewValidationError("line %d: product is required", i+1)
		}
		if !in.AcceptedQty.IsPositive() {
			return nil, shared.NewValidationError("line %d: accepted quantity must be positive", i+1)
		}
		if in.Rate.IsNegative() || in.MRP.IsNegative() || in.Amount.IsNegative() {
			return nil, shared.NewValidationError("line %d: rate, mrp and amount must not be negative", i+1)
		}
		batch := strings.TrimSpace(in.BatchNumber)
		if batch == "" {
			return nil, shared.NewValidationError("line %d: batch number is required", i+1)
		}
		inv.Lines = append(inv.Lines, PurchaseInvoiceLine{
			ID:              uuid.New(),
			InvoiceID:       inv.ID,
			LineNo:          i + 1,
			ProductID:       in.ProductID,
			OrderedQty:      in.OrderedQty,
			AcceptedQty:     in.AcceptedQty,
			Rate:            in.Rate,
			MRP:             in.MRP,
			DiscountPercent: in.DiscountPercent,
			SchemeAmount:    in.SchemeAmount,
			TaxAmount:       in.TaxAmount,
			Amount:          shared.RoundMoney(in.Amount),
			BatchNumber:     batch,
			ExpiryDate:      in.ExpiryDate,
		})
	}
	return inv, nil
}

// LinesTotal sums line amounts.
func (i *PurchaseInvoice) LinesTotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range i.Lines {
		total = total.Add(l.Amount)
	}
	return total
}

// LinesMatchGrandTotal reports whether line amounts agree with the header
// grand total within MoneyEpsilon.
func (i *PurchaseInvoice) LinesMatchGrandTotal() bool {
	return i.LinesTotal().Sub(i.GrandTotal).Abs().LessThanOrEqual(shared.MoneyEpsilon)
}

// Reverse moves a Verified invoice to Reversed and stamps the audit fields.
// Inventory checks are the caller's responsibility.
func (i *PurchaseInvoice) Reverse(by uuid.UUID, at time.Time) error {
	if !i.Status.CanTransitionTo(PurchaseInvoiceStatusReversed) {
		return shared.NewInvalidStateError("invoice %s is %s and cannot be reversed", i.InvoiceNumber, i.Status)
	}
	i.Status = PurchaseInvoiceStatusReversed
	i.ReversedBy = &by
	i.ReversedAt = &at
	i.UpdatedAt = at
	return nil
}

// ReversalReason is the debit note reason recorded for a reversal.
func (i *PurchaseInvoice) ReversalReason() string {
	return "Reversal of GRN " + i.InvoiceNumber
}
