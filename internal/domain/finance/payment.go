package finance

import (
	"time"

	"github.com/erp/vendorledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType distinguishes money paid to a vendor from money refunded by one.
type TransactionType string

const (
	TransactionTypePayment TransactionType = "PAYMENT"
	TransactionTypeRefund  TransactionType = "REFUND"
)

// IsValid checks if the transaction type is valid
func (t TransactionType) IsValid() bool {
	return t == TransactionTypePayment || t == TransactionTypeRefund
}

// Allocates reports whether the transaction is spread over invoices.
func (t TransactionType) Allocates() bool {
	return t == TransactionTypePayment
}

// PaymentAllocation applies part of a payment to one invoice.
type PaymentAllocation struct {
	ID                uuid.UUID
	PaymentID         uuid.UUID
	PurchaseInvoiceID uuid.UUID
	Amount            decimal.Decimal
	CreatedAt         time.Time
}

// VendorPayment is a money movement with a vendor.
type VendorPayment struct {
	shared.BaseEntity
	PaymentNumber   string
	VendorID        uuid.UUID
	Amount          decimal.Decimal
	PaymentDate     time.Time
	Mode            string
	TransactionType TransactionType
	BankAccountID   *uuid.UUID
	TransactionRef  string
	Remarks         string
	Allocations     []PaymentAllocation
}

// NewVendorPaymentParams groups the inputs of NewVendorPayment.
type NewVendorPaymentParams struct {
	PaymentNumber   string
	VendorID        uuid.UUID
	Amount          decimal.Decimal
	PaymentDate     time.Time
	Mode            string
	TransactionType TransactionType
	BankAccountID   *uuid.UUID
	TransactionRef  string
	Remarks         string
}

// NewVendorPayment validates and builds a payment without allocations.
func NewVendorPayment(p NewVendorPaymentParams) (*VendorPayment, error) {
	if p.VendorID == uuid.Nil {
		return nil, shared.NewValidationError("vendor is required")
	}
	if !p.Amount.IsPositive() {
		return nil, shared.NewValidationError("payment amount must be positive")
	}
	if p.TransactionType == "" {
		p.TransactionType = TransactionTypePayment
	}
	if !p.TransactionType.IsValid() {
		return nil, shared.NewValidationError("unknown transaction type %q", p.TransactionType)
	}
	payment := &VendorPayment{
		BaseEntity:      shared.NewBaseEntity(),
		PaymentNumber:   p.PaymentNumber,
		VendorID:        p.VendorID,
		Amount:          shared.RoundMoney(p.Amount),
		PaymentDate:     p.PaymentDate,
		Mode:            p.Mode,
		TransactionType: p.TransactionType,
		BankAccountID:   p.BankAccountID,
		TransactionRef:  p.TransactionRef,
		Remarks:         p.Remarks,
		Allocations:     make([]PaymentAllocation, 0),
	}
	if payment.PaymentDate.IsZero() {
		payment.PaymentDate = payment.CreatedAt
	}
	return payment, nil
}

// ApplyPlan attaches the plan's allocations. Refunds never allocate.
func (p *VendorPayment) ApplyPlan(plan *AllocationPlan) error {
	if plan == nil || len(plan.Allocations) == 0 {
		return nil
	}
	if !p.TransactionType.Allocates() {
		return shared.NewValidationError("%s transactions are not allocated to invoices", p.TransactionType)
	}
	if err := CheckSumInvariant(p.Amount, plan.Allocations); err != nil {
		return err
	}
	for _, a := range plan.Allocations {
		p.Allocations = append(p.Allocations, PaymentAllocation{
			ID:                uuid.New(),
			PaymentID:         p.ID,
			PurchaseInvoiceID: a.InvoiceID,
			Amount:            a.Amount,
			CreatedAt:         p.CreatedAt,
		})
	}
	return nil
}

// AllocatedTotal sums the payment's allocations.
func (p *VendorPayment) AllocatedTotal() decimal.Decimal {
	total := decimal.Zero
	for _, a := range p.Allocations {
		total = total.Add(a.Amount)
	}
	return total
}

// Unapplied is the part of the payment not applied to any invoice.
func (p *VendorPayment) Unapplied() decimal.Decimal {
	return p.Amount.Sub(p.AllocatedTotal())
}
