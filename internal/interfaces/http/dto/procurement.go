package dto

import (
	"github.com/erp/vendorledger/internal/application/procurement"
	"github.com/erp/vendorledger/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseOrderLine is one ordered product.
type PurchaseOrderLine struct {
	ProductID       uuid.UUID       `json:"product_id" binding:"required"`
	ProductName     string          `json:"product_name" binding:"max=200"`
	Quantity        decimal.Decimal `json:"quantity" binding:"gt=0"`
	Price           decimal.Decimal `json:"price" binding:"gte=0"`
	MRP             decimal.Decimal `json:"mrp" binding:"gte=0"`
	SchemeAmount    decimal.Decimal `json:"scheme_amount" binding:"gte=0"`
	DiscountPercent decimal.Decimal `json:"discount_percent" binding:"gte=0,lte=100"`
	TaxPercent      decimal.Decimal `json:"tax_percent" binding:"gte=0,lte=100"`
}

// PurchaseOrderRequest is the body for creating or updating a draft order.
type PurchaseOrderRequest struct {
	VendorID uuid.UUID           `json:"vendor_id" binding:"required"`
	Remarks  string              `json:"remarks" binding:"max=500"`
	Lines    []PurchaseOrderLine `json:"lines" binding:"required,min=1,dive"`
}

func (r PurchaseOrderRequest) lines() []procurement.PurchaseOrderLineRequest {
	out := make([]procurement.PurchaseOrderLineRequest, len(r.Lines))
	for i, l := range r.Lines {
		out[i] = procurement.PurchaseOrderLineRequest{
			ProductID:       l.ProductID,
			ProductName:     l.ProductName,
			Quantity:        l.Quantity,
			Price:           l.Price,
			MRP:             l.MRP,
			SchemeAmount:    l.SchemeAmount,
			DiscountPercent: l.DiscountPercent,
			TaxPercent:      l.TaxPercent,
		}
	}
	return out
}

// ToCreate converts to the service request.
func (r PurchaseOrderRequest) ToCreate() procurement.CreatePurchaseOrderRequest {
	return procurement.CreatePurchaseOrderRequest{VendorID: r.VendorID, Remarks: r.Remarks, Lines: r.lines()}
}

// ToUpdate converts to the service request for order id.
func (r PurchaseOrderRequest) ToUpdate(id uuid.UUID) procurement.UpdatePurchaseOrderRequest {
	return procurement.UpdatePurchaseOrderRequest{PurchaseOrderID: id, VendorID: r.VendorID, Remarks: r.Remarks, Lines: r.lines()}
}

// PurchaseOrderResponse is returned by order endpoints.
type PurchaseOrderResponse struct {
	ID            uuid.UUID       `json:"id"`
	PONumber      string          `json:"po_number"`
	Status        string          `json:"status"`
	LinesCount    int             `json:"lines_count"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
	Gross         decimal.Decimal `json:"gross"`
	Scheme        decimal.Decimal `json:"scheme"`
	Discount      decimal.Decimal `json:"discount"`
	Taxable       decimal.Decimal `json:"taxable"`
	Tax           decimal.Decimal `json:"tax"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
}

// ToPurchaseOrderResponse converts a service result.
func ToPurchaseOrderResponse(r *procurement.PurchaseOrderResult) PurchaseOrderResponse {
	return PurchaseOrderResponse{
		ID:            r.ID,
		PONumber:      r.PONumber,
		Status:        string(r.Status),
		LinesCount:    r.LinesCount,
		TotalQuantity: r.Totals.TotalQuantity,
		Gross:         r.Totals.Gross,
		Scheme:        r.Totals.Scheme,
		Discount:      r.Totals.Discount,
		Taxable:       r.Totals.Taxable,
		Tax:           r.Totals.Tax,
		GrandTotal:    r.Totals.GrandTotal,
	}
}

// PurchaseInvoiceLine is one received line of a GRN.
type PurchaseInvoiceLine struct {
	ProductID       uuid.UUID       `json:"product_id" binding:"required"`
	OrderedQty      decimal.Decimal `json:"ordered_qty" binding:"gte=0"`
	AcceptedQty     decimal.Decimal `json:"accepted_qty" binding:"gte=0"`
	Rate            decimal.Decimal `json:"rate" binding:"gte=0"`
	MRP             decimal.Decimal `json:"mrp" binding:"gte=0"`
	DiscountPercent decimal.Decimal `json:"discount_percent" binding:"gte=0,lte=100"`
	SchemeAmount    decimal.Decimal `json:"scheme_amount" binding:"gte=0"`
	TaxAmount       decimal.Decimal `json:"tax_amount" binding:"gte=0"`
	Amount          decimal.Decimal `json:"amount" binding:"gte=0"`
	BatchNumber     string          `json:"batch_number" binding:"required,max=100"`
	ExpiryDate      *Date           `json:"expiry_date"`
}

// PurchaseInvoiceRequest records a goods receipt.
type PurchaseInvoiceRequest struct {
	VendorID        uuid.UUID             `json:"vendor_id" binding:"required"`
	PurchaseOrderID *uuid.UUID            `json:"purchase_order_id"`
	InvoiceNumber   string                `json:"invoice_number" binding:"required,max=100"`
	InvoiceDate     Date                  `json:"invoice_date"`
	ReceivedDate    Date                  `json:"received_date"`
	TotalNet        decimal.Decimal       `json:"total_net" binding:"gte=0"`
	TaxAmount       decimal.Decimal       `json:"tax_amount" binding:"gte=0"`
	GrandTotal      decimal.Decimal       `json:"grand_total" binding:"gte=0"`
	ParentInvoiceID *uuid.UUID            `json:"parent_invoice_id"`
	Lines           []PurchaseInvoiceLine `json:"lines" binding:"required,min=1,dive"`
}

// ToCreate converts to the service request.
func (r PurchaseInvoiceRequest) ToCreate() procurement.CreatePurchaseInvoiceRequest {
	lines := make([]procurement.PurchaseInvoiceLineRequest, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = procurement.PurchaseInvoiceLineRequest{
			ProductID:       l.ProductID,
			OrderedQty:      l.OrderedQty,
			AcceptedQty:     l.AcceptedQty,
			Rate:            l.Rate,
			MRP:             l.MRP,
			DiscountPercent: l.DiscountPercent,
			SchemeAmount:    l.SchemeAmount,
			TaxAmount:       l.TaxAmount,
			Amount:          l.Amount,
			BatchNumber:     l.BatchNumber,
			ExpiryDate:      l.ExpiryDate.Ptr(),
		}
	}
	return procurement.CreatePurchaseInvoiceRequest{
		VendorID:        r.VendorID,
		PurchaseOrderID: r.PurchaseOrderID,
		InvoiceNumber:   r.InvoiceNumber,
		InvoiceDate:     r.InvoiceDate.Time,
		ReceivedDate:    r.ReceivedDate.Time,
		TotalNet:        r.TotalNet,
		TaxAmount:       r.TaxAmount,
		GrandTotal:      r.GrandTotal,
		Lines:           lines,
		ParentInvoiceID: r.ParentInvoiceID,
	}
}

// PurchaseInvoiceResponse is returned after a receipt is recorded.
type PurchaseInvoiceResponse struct {
	InvoiceID  uuid.UUID   `json:"invoice_id"`
	InternalID string      `json:"internal_id"`
	BatchIDs   []uuid.UUID `json:"batch_ids"`
}

// ToPurchaseInvoiceResponse converts a service result.
func ToPurchaseInvoiceResponse(r *procurement.PurchaseInvoiceResult) PurchaseInvoiceResponse {
	return PurchaseInvoiceResponse{InvoiceID: r.InvoiceID, InternalID: r.InternalID, BatchIDs: r.BatchIDs}
}

// ReversalResponse is returned by the reverse endpoint.
type ReversalResponse struct {
	InvoiceID       uuid.UUID       `json:"invoice_id"`
	DebitNoteID     uuid.UUID       `json:"debit_note_id"`
	DebitNoteNumber string          `json:"debit_note_number"`
	AppliedAmount   decimal.Decimal `json:"applied_amount"`
	UnappliedCredit decimal.Decimal `json:"unapplied_credit"`
	BatchesVoided   int64           `json:"batches_voided"`
}

// ToReversalResponse converts a service result.
func ToReversalResponse(r *procurement.ReverseInvoiceResult) ReversalResponse {
	return ReversalResponse{
		InvoiceID:       r.InvoiceID,
		DebitNoteID:     r.DebitNoteID,
		DebitNoteNumber: r.DebitNoteNumber,
		AppliedAmount:   r.AppliedAmount,
		UnappliedCredit: r.UnappliedCredit,
		BatchesVoided:   r.BatchesVoided,
	}
}

// AllocationLine is a manual allocation against one invoice.
type AllocationLine struct {
	InvoiceID uuid.UUID       `json:"invoice_id" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"gt=0"`
}

// PaymentRequest records a vendor payment or refund.
type PaymentRequest struct {
	VendorID          uuid.UUID        `json:"vendor_id" binding:"required"`
	Amount            decimal.Decimal  `json:"amount" binding:"gt=0"`
	Date              Date             `json:"date"`
	Mode              string           `json:"mode" binding:"max=50"`
	TransactionType   string           `json:"transaction_type" binding:"omitempty,oneof=PAYMENT REFUND"`
	BankAccountID     *uuid.UUID       `json:"bank_account_id"`
	TransactionRef    string           `json:"transaction_ref" binding:"max=100"`
	Remarks           string           `json:"remarks" binding:"max=500"`
	Allocations       []AllocationLine `json:"allocations" binding:"omitempty,dive"`
	AutoAllocate      bool             `json:"auto_allocate"`
	PriorityInvoiceID *uuid.UUID       `json:"priority_invoice_id"`
}

// ToRecord converts to the service request. key is the Idempotency-Key header.
func (r PaymentRequest) ToRecord(key string) procurement.RecordPaymentRequest {
	allocs := make([]procurement.AllocationLineRequest, len(r.Allocations))
	for i, a := range r.Allocations {
		allocs[i] = procurement.AllocationLineRequest{InvoiceID: a.InvoiceID, Amount: a.Amount}
	}
	return procurement.RecordPaymentRequest{
		VendorID:          r.VendorID,
		Amount:            r.Amount,
		Date:              r.Date.Time,
		Mode:              r.Mode,
		TransactionType:   finance.TransactionType(r.TransactionType),
		BankAccountID:     r.BankAccountID,
		TransactionRef:    r.TransactionRef,
		Remarks:           r.Remarks,
		Allocations:       allocs,
		AutoAllocate:      r.AutoAllocate,
		PriorityInvoiceID: r.PriorityInvoiceID,
		IdempotencyKey:    key,
	}
}

// Allocation is one written allocation.
type Allocation struct {
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	Amount        decimal.Decimal `json:"amount"`
}

func toAllocations(in []procurement.AllocationResult) []Allocation {
	out := make([]Allocation, len(in))
	for i, a := range in {
		out[i] = Allocation{InvoiceID: a.InvoiceID, InvoiceNumber: a.InvoiceNumber, Amount: a.Amount}
	}
	return out
}

// PaymentResponse is returned after a payment is recorded.
type PaymentResponse struct {
	PaymentID     uuid.UUID       `json:"payment_id"`
	PaymentNumber string          `json:"payment_number"`
	Allocations   []Allocation    `json:"allocations"`
	Unapplied     decimal.Decimal `json:"unapplied"`
}

// ToPaymentResponse converts a service result.
func ToPaymentResponse(r *procurement.RecordPaymentResult) PaymentResponse {
	return PaymentResponse{
		PaymentID:     r.PaymentID,
		PaymentNumber: r.PaymentNumber,
		Allocations:   toAllocations(r.Allocations),
		Unapplied:     r.Unapplied,
	}
}

// DebitNoteLine is an itemized debit note line.
type DebitNoteLine struct {
	ProductID   uuid.UUID       `json:"product_id" binding:"required"`
	BatchNumber string          `json:"batch_number" binding:"max=100"`
	Quantity    decimal.Decimal `json:"quantity" binding:"gte=0"`
	Rate        decimal.Decimal `json:"rate" binding:"gte=0"`
	Amount      decimal.Decimal `json:"amount" binding:"gte=0"`
}

// DebitNoteRequest creates a debit note and auto-allocates it.
type DebitNoteRequest struct {
	VendorID        uuid.UUID       `json:"vendor_id" binding:"required"`
	Amount          decimal.Decimal `json:"amount" binding:"gt=0"`
	Date            Date            `json:"date"`
	Reason          string          `json:"reason" binding:"max=500"`
	LinkedInvoiceID *uuid.UUID      `json:"linked_invoice_id"`
	Lines           []DebitNoteLine `json:"lines" binding:"omitempty,dive"`
}

// ToCreate converts to the service request.
func (r DebitNoteRequest) ToCreate() procurement.CreateDebitNoteRequest {
	lines := make([]procurement.DebitNoteLineRequest, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = procurement.DebitNoteLineRequest{
			ProductID:   l.ProductID,
			BatchNumber: l.BatchNumber,
			Quantity:    l.Quantity,
			Rate:        l.Rate,
			Amount:      l.Amount,
		}
	}
	return procurement.CreateDebitNoteRequest{
		VendorID:        r.VendorID,
		Amount:          r.Amount,
		Date:            r.Date.Time,
		Reason:          r.Reason,
		LinkedInvoiceID: r.LinkedInvoiceID,
		Lines:           lines,
	}
}

// DebitNoteResponse is returned after a debit note is created.
type DebitNoteResponse struct {
	DebitNoteID uuid.UUID       `json:"debit_note_id"`
	DNNumber    string          `json:"dn_number"`
	Allocations []Allocation    `json:"allocations"`
	Unapplied   decimal.Decimal `json:"unapplied"`
}

// ToDebitNoteResponse converts a service result.
func ToDebitNoteResponse(r *procurement.DebitNoteResult) DebitNoteResponse {
	return DebitNoteResponse{
		DebitNoteID: r.DebitNoteID,
		DNNumber:    r.DNNumber,
		Allocations: toAllocations(r.Allocations),
		Unapplied:   r.Unapplied,
	}
}
