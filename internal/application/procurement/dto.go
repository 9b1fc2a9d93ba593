package procurement

import (
	"time"

	"github.com/erp/vendorledger/internal/domain/finance"
	"github.com/erp/vendorledger/internal/domain/inventory"
	"github.com/erp/vendorledger/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseOrderLineRequest carries pricing inputs only. Totals are always
// recomputed server side.
type PurchaseOrderLineRequest struct {
	ProductID       uuid.UUID
	ProductName     string
	Quantity        decimal.Decimal
	Price           decimal.Decimal
	MRP             decimal.Decimal
	SchemeAmount    decimal.Decimal
	DiscountPercent decimal.Decimal
	TaxPercent      decimal.Decimal
}

// CreatePurchaseOrderRequest represents a request to create a purchase order
type CreatePurchaseOrderRequest struct {
	VendorID uuid.UUID
	Remarks  string
	Lines    []PurchaseOrderLineRequest
}

// UpdatePurchaseOrderRequest replaces a draft order's vendor, remarks and lines.
type UpdatePurchaseOrderRequest struct {
	PurchaseOrderID uuid.UUID
	VendorID        uuid.UUID
	Remarks         string
	Lines           []PurchaseOrderLineRequest
}

// PurchaseOrderResult is returned by purchase order operations.
type PurchaseOrderResult struct {
	ID         uuid.UUID
	PONumber   string
	Status     trade.PurchaseOrderStatus
	Totals     trade.PurchaseOrderTotals
	LinesCount int
}

// PurchaseInvoiceLineRequest is one received line.
type PurchaseInvoiceLineRequest struct {
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

// CreatePurchaseInvoiceRequest records a goods receipt. InvoiceNumber is the
// vendor's bill number; the internal number is minted.
type CreatePurchaseInvoiceRequest struct {
	VendorID        uuid.UUID
	PurchaseOrderID *uuid.UUID
	InvoiceNumber   string
	InvoiceDate     time.Time
	ReceivedDate    time.Time
	TotalNet        decimal.Decimal
	TaxAmount       decimal.Decimal
	GrandTotal      decimal.Decimal
	Lines           []PurchaseInvoiceLineRequest
	ParentInvoiceID *uuid.UUID
}

// PurchaseInvoiceResult is returned by CreatePurchaseInvoice.
type PurchaseInvoiceResult struct {
	Success    bool
	InvoiceID  uuid.UUID
	InternalID string
	BatchIDs   []uuid.UUID
}

// ReverseInvoiceRequest represents a request to reverse a goods receipt
type ReverseInvoiceRequest struct {
	InvoiceID  uuid.UUID
	ReversedBy uuid.UUID
}

// ReverseInvoiceResult is returned by ReverseInvoice.
type ReverseInvoiceResult struct {
	Success         bool
	InvoiceID       uuid.UUID
	DebitNoteID     uuid.UUID
	DebitNoteNumber string
	AppliedAmount   decimal.Decimal // applied to the reversed invoice
	UnappliedCredit decimal.Decimal // left as vendor credit
	BatchesVoided   int64
}

// AllocationLineRequest is a manual allocation line.
type AllocationLineRequest struct {
	InvoiceID uuid.UUID
	Amount    decimal.Decimal
}

// RecordPaymentRequest records a payment or refund.
//
// Allocations selects manual mode. AutoAllocate selects priority + FIFO
// mode, with PriorityInvoiceID served first. With neither, a payment is kept
// entirely as an advance.
type RecordPaymentRequest struct {
	VendorID          uuid.UUID
	Amount            decimal.Decimal
	Date              time.Time
	Mode              string
	TransactionType   finance.TransactionType
	BankAccountID     *uuid.UUID
	TransactionRef    string
	Remarks           string
	Allocations       []AllocationLineRequest
	AutoAllocate      bool
	PriorityInvoiceID *uuid.UUID
	IdempotencyKey    string
}

// AllocationResult describes one written allocation.
type AllocationResult struct {
	InvoiceID     uuid.UUID
	InvoiceNumber string
	Amount        decimal.Decimal
}

// RecordPaymentResult is returned by RecordPayment.
type RecordPaymentResult struct {
	PaymentID     uuid.UUID
	PaymentNumber string
	Allocations   []AllocationResult
	Unapplied     decimal.Decimal
	// Replayed is set when the result was stored by an earlier request with
	// the same idempotency key.
	Replayed bool `json:"-"`
}

// DebitNoteLineRequest is one itemized debit note line.
type DebitNoteLineRequest struct {
	ProductID   uuid.UUID
	BatchNumber string
	Quantity    decimal.Decimal
	Rate        decimal.Decimal
	Amount      decimal.Decimal
}

// CreateDebitNoteRequest represents a request to create a debit note
type CreateDebitNoteRequest struct {
	VendorID        uuid.UUID
	Amount          decimal.Decimal
	Date            time.Time
	Reason          string
	LinkedInvoiceID *uuid.UUID
	Lines           []DebitNoteLineRequest
}

// DebitNoteResult is returned by CreateDebitNote.
type DebitNoteResult struct {
	DebitNoteID uuid.UUID
	DNNumber    string
	Allocations []AllocationResult
	Unapplied   decimal.Decimal
}

// InvoiceBalanceResult is the freshly computed balance of an invoice.
type InvoiceBalanceResult struct {
	InvoiceID        uuid.UUID
	InvoiceNumber    string
	Status           trade.PurchaseInvoiceStatus
	GrandTotal       decimal.Decimal
	Paid             decimal.Decimal
	DebitNoteApplied decimal.Decimal
	Balance          decimal.Decimal
}

// VendorStatement is the ledger with a running balance, oldest first.
type VendorStatement struct {
	VendorID       uuid.UUID
	Lines          []finance.StatementLine
	ClosingBalance decimal.Decimal
}

// MarkBatchDamagedRequest moves good stock of a batch to damaged.
type MarkBatchDamagedRequest struct {
	BatchID  uuid.UUID
	Quantity decimal.Decimal
}

// BatchResult is the state of a batch after a mutation.
type BatchResult struct {
	BatchID    uuid.UUID
	InitialQty decimal.Decimal
	QtyGood    decimal.Decimal
	QtyDamaged decimal.Decimal
	IsActive   bool
}

func toAllocationResults(plan *finance.AllocationPlan) []AllocationResult {
	results := make([]AllocationResult, 0)
	if plan == nil {
		return results
	}
	for _, a := range plan.Allocations {
		results = append(results, AllocationResult{
			InvoiceID:     a.InvoiceID,
			InvoiceNumber: a.InvoiceNumber,
			Amount:        a.Amount,
		})
	}
	return results
}

func toInvoiceBalanceResult(b *finance.InvoiceBalance) *InvoiceBalanceResult {
	return &InvoiceBalanceResult{
		InvoiceID:        b.InvoiceID,
		InvoiceNumber:    b.InvoiceNumber,
		Status:           b.Status,
		GrandTotal:       b.GrandTotal,
		Paid:             b.Paid,
		DebitNoteApplied: b.DebitNoteApplied,
		Balance:          b.Balance(),
	}
}

func toBatchResult(b *inventory.ProductBatch) *BatchResult {
	return &BatchResult{
		BatchID:    b.ID,
		InitialQty: b.InitialQty,
		QtyGood:    b.QtyGood,
		QtyDamaged: b.QtyDamaged,
		IsActive:   b.IsActive,
	}
}
