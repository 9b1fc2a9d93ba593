package dto

import (
	"time"

	"github.com/erp/vendorledger/internal/application/procurement"
	"github.com/erp/vendorledger/internal/domain/finance"
	"github.com/erp/vendorledger/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerEntry is one row of a vendor ledger.
type LedgerEntry struct {
	EntryType   string           `json:"entry_type"`
	ReferenceID uuid.UUID        `json:"reference_id"`
	DocumentNo  string           `json:"document_no"`
	Date        Date             `json:"date"`
	CreatedAt   time.Time        `json:"created_at"`
	Amount      decimal.Decimal  `json:"amount"`
	Status      string           `json:"status,omitempty"`
	Description string           `json:"description,omitempty"`
	Balance     *decimal.Decimal `json:"balance,omitempty"`
}

func toLedgerEntry(e finance.LedgerEntry) LedgerEntry {
	return LedgerEntry{
		EntryType:   string(e.EntryType),
		ReferenceID: e.ReferenceID,
		DocumentNo:  e.DocumentNo,
		Date:        Date{Time: e.Date},
		CreatedAt:   e.CreatedAt,
		Amount:      e.Amount,
		Status:      e.Status,
		Description: e.Description,
	}
}

// ToLedgerEntries converts ledger rows, keeping their order.
func ToLedgerEntries(entries []finance.LedgerEntry) []LedgerEntry {
	out := make([]LedgerEntry, len(entries))
	for i, e := range entries {
		out[i] = toLedgerEntry(e)
	}
	return out
}

// StatementResponse is the ledger with a running balance, oldest first.
type StatementResponse struct {
	VendorID       uuid.UUID       `json:"vendor_id"`
	Lines          []LedgerEntry   `json:"lines"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
}

// ToStatementResponse converts a service statement.
func ToStatementResponse(s *procurement.VendorStatement) StatementResponse {
	lines := make([]LedgerEntry, len(s.Lines))
	for i, l := range s.Lines {
		lines[i] = toLedgerEntry(l.LedgerEntry)
		balance := l.Balance
		lines[i].Balance = &balance
	}
	return StatementResponse{VendorID: s.VendorID, Lines: lines, ClosingBalance: s.ClosingBalance}
}

// InvoiceBalanceResponse is the computed balance of one invoice.
type InvoiceBalanceResponse struct {
	InvoiceID        uuid.UUID       `json:"invoice_id"`
	InvoiceNumber    string          `json:"invoice_number"`
	Status           string          `json:"status"`
	GrandTotal       decimal.Decimal `json:"grand_total"`
	Paid             decimal.Decimal `json:"paid"`
	DebitNoteApplied decimal.Decimal `json:"debit_note_applied"`
	Balance          decimal.Decimal `json:"balance"`
}

// ToInvoiceBalanceResponse converts a service result.
func ToInvoiceBalanceResponse(r procurement.InvoiceBalanceResult) InvoiceBalanceResponse {
	return InvoiceBalanceResponse{
		InvoiceID:        r.InvoiceID,
		InvoiceNumber:    r.InvoiceNumber,
		Status:           string(r.Status),
		GrandTotal:       r.GrandTotal,
		Paid:             r.Paid,
		DebitNoteApplied: r.DebitNoteApplied,
		Balance:          r.Balance,
	}
}

// ToInvoiceBalanceResponses converts a list of service results.
func ToInvoiceBalanceResponses(in []procurement.InvoiceBalanceResult) []InvoiceBalanceResponse {
	out := make([]InvoiceBalanceResponse, len(in))
	for i, r := range in {
		out[i] = ToInvoiceBalanceResponse(r)
	}
	return out
}

// BatchTake is one batch drawn by a consumption plan.
type BatchTake struct {
	BatchID     uuid.UUID       `json:"batch_id"`
	BatchNumber string          `json:"batch_number"`
	Quantity    decimal.Decimal `json:"quantity"`
	MRP         decimal.Decimal `json:"mrp"`
	Rate        decimal.Decimal `json:"rate"`
}

// MRPGroup merges takes sharing an MRP.
type MRPGroup struct {
	MRP      decimal.Decimal `json:"mrp"`
	Quantity decimal.Decimal `json:"quantity"`
	Batches  []uuid.UUID     `json:"batches"`
}

// ConsumptionPlanResponse previews FIFO batch consumption.
type ConsumptionPlanResponse struct {
	ProductID      uuid.UUID       `json:"product_id"`
	RequestedQty   decimal.Decimal `json:"requested_qty"`
	Takes          []BatchTake     `json:"takes"`
	Merged         []MRPGroup      `json:"merged"`
	Shortfall      decimal.Decimal `json:"shortfall"`
	FullyAvailable bool            `json:"fully_available"`
}

// ToConsumptionPlanResponse converts a plan.
func ToConsumptionPlanResponse(p *inventory.ConsumptionPlan) ConsumptionPlanResponse {
	takes := make([]BatchTake, len(p.Takes))
	for i, t := range p.Takes {
		takes[i] = BatchTake{BatchID: t.BatchID, BatchNumber: t.BatchNumber, Quantity: t.Quantity, MRP: t.MRP, Rate: t.Rate}
	}
	merged := make([]MRPGroup, len(p.Merged))
	for i, g := range p.Merged {
		merged[i] = MRPGroup{MRP: g.MRP, Quantity: g.Quantity, Batches: g.Batches}
	}
	return ConsumptionPlanResponse{
		ProductID:      p.ProductID,
		RequestedQty:   p.RequestedQty,
		Takes:          takes,
		Merged:         merged,
		Shortfall:      p.Shortfall,
		FullyAvailable: p.FullyAvailable(),
	}
}

// MarkDamagedRequest moves good stock of a batch to damaged.
type MarkDamagedRequest struct {
	Quantity decimal.Decimal `json:"quantity" binding:"gt=0"`
}

// BatchResponse is the state of a batch.
type BatchResponse struct {
	BatchID    uuid.UUID       `json:"batch_id"`
	InitialQty decimal.Decimal `json:"initial_qty"`
	QtyGood    decimal.Decimal `json:"qty_good"`
	QtyDamaged decimal.Decimal `json:"qty_damaged"`
	IsActive   bool            `json:"is_active"`
}

// ToBatchResponse converts a service result.
func ToBatchResponse(r *procurement.BatchResult) BatchResponse {
	return BatchResponse{
		BatchID:    r.BatchID,
		InitialQty: r.InitialQty,
		QtyGood:    r.QtyGood,
		QtyDamaged: r.QtyDamaged,
		IsActive:   r.IsActive,
	}
}
