package finance

import (
	"strings"
	"time"

	"github.com/erp/vendorledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DebitNoteStatus is the status of a debit note
type DebitNoteStatus string

const (
	DebitNoteStatusApproved DebitNoteStatus = "Approved"
)

// DebitNoteLine itemizes a debit note.
type DebitNoteLine struct {
	ID          uuid.UUID
	DebitNoteID uuid.UUID
	ProductID   uuid.UUID
	BatchNumber string
	Quantity    decimal.Decimal
	Rate        decimal.Decimal
	Amount      decimal.Decimal
}

// DebitNoteLineInput is a caller supplied line.
type DebitNoteLineInput struct {
	ProductID   uuid.UUID
	BatchNumber string
	Quantity    decimal.Decimal
	Rate        decimal.Decimal
	Amount      decimal.Decimal // derived from Quantity * Rate when zero
}

// DebitNoteAllocation applies part of a debit note to one invoice.
type DebitNoteAllocation struct {
	ID                uuid.UUID
	DebitNoteID       uuid.UUID
	PurchaseInvoiceID uuid.UUID
	Amount            decimal.Decimal
	CreatedAt         time.Time
}

// DebitNote is a vendor-side credit reducing what is owed.
type DebitNote struct {
	shared.BaseEntity
	DebitNoteNumber string
	VendorID        uuid.UUID
	DebitNoteDate   time.Time
	Amount          decimal.Decimal
	Reason          string
	LinkedInvoiceID *uuid.UUID
	Status          DebitNoteStatus
	Lines           []DebitNoteLine
	Allocations     []DebitNoteAllocation
}

// NewDebitNoteParams groups the inputs of NewDebitNote.
type NewDebitNoteParams struct {
	DebitNoteNumber string
	VendorID        uuid.UUID
	DebitNoteDate   time.Time
	Amount          decimal.Decimal
	Reason          string
	LinkedInvoiceID *uuid.UUID
	Lines           []DebitNoteLineInput
}

// NewDebitNote validates and builds an approved debit note.
func NewDebitNote(p NewDebitNoteParams) (*DebitNote, error) {
	if p.VendorID == uuid.Nil {
		return nil, shared.NewValidationError("vendor is required")
	}
	if !p.Amount.IsPositive() {
		return nil, shared.NewValidationError("debit note amount must be positive")
	}
	dn := &DebitNote{
		BaseEntity:      shared.NewBaseEntity(),
		DebitNoteNumber: p.DebitNoteNumber,
		VendorID:        p.VendorID,
		DebitNoteDate:   p.DebitNoteDate,
		Amount:          shared.RoundMoney(p.Amount),
		Reason:          strings.TrimSpace(p.Reason),
		LinkedInvoiceID: p.LinkedInvoiceID,
		Status:          DebitNoteStatusApproved,
		Lines:           make([]DebitNoteLine, 0, len(p.Lines)),
		Allocations:     make([]DebitNoteAllocation, 0),
	}
	if dn.DebitNoteDate.IsZero() {
		dn.DebitNoteDate = dn.CreatedAt
	}

	for i, in := range p.Lines {
		if in.ProductID == uuid.Nil {
			return nil, shared.NewValidationError("line %d: product is required", i+1)
		}
		if in.Quantity.IsNegative() || in.Rate.IsNegative() || in.Amount.IsNegative() {
			return nil, shared.NewValidationError("line %d: quantity, rate and amount must not be negative", i+1)
		}
		amount := in.Amount
		if amount.IsZero() {
			amount = in.Quantity.Mul(in.Rate)
		}
		dn.Lines = append(dn.Lines, DebitNoteLine{
			ID:          uuid.New(),
			DebitNoteID: dn.ID,
			ProductID:   in.ProductID,
			BatchNumber: strings.TrimSpace(in.BatchNumber),
			Quantity:    in.Quantity,
			Rate:        in.Rate,
			Amount:      shared.RoundMoney(amount),
		})
	}
	return dn, nil
}

// PriorityInvoiceID returns the linked invoice or uuid.Nil.
func (d *DebitNote) PriorityInvoiceID() uuid.UUID {
	if d.LinkedInvoiceID == nil {
		return uuid.Nil
	}
	return *d.LinkedInvoiceID
}

// ApplyPlan attaches the plan's allocations.
func (d *DebitNote) ApplyPlan(plan *AllocationPlan) error {
	if plan == nil {
		return nil
	}
	if err := CheckSumInvariant(d.Amount, plan.Allocations); err != nil {
		return err
	}
	for _, a := range plan.Allocations {
		d.Allocations = append(d.Allocations, DebitNoteAllocation{
			ID:                uuid.New(),
			DebitNoteID:       d.ID,
			PurchaseInvoiceID: a.InvoiceID,
			Amount:            a.Amount,
			CreatedAt:         d.CreatedAt,
		})
	}
	return nil
}

// AllocatedTotal sums the debit note's allocations.
func (d *DebitNote) AllocatedTotal() decimal.Decimal {
	total := decimal.Zero
	for _, a := range d.Allocations {
		total = total.Add(a.Amount)
	}
	return total
}
