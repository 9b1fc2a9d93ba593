package finance

import (
	"sort"
	"time"

	"github.com/erp/vendorledger/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerEntryType is the kind of document behind a ledger row.
type LedgerEntryType string

const (
	LedgerEntryInvoice   LedgerEntryType = "INVOICE"
	LedgerEntryPayment   LedgerEntryType = "PAYMENT"
	LedgerEntryRefund    LedgerEntryType = "REFUND"
	LedgerEntryDebitNote LedgerEntryType = "DEBIT_NOTE"
)

// LedgerEntry is one row of the vendor ledger projection.
type LedgerEntry struct {
	EntryType   LedgerEntryType
	ReferenceID uuid.UUID
	DocumentNo  string
	VendorID    uuid.UUID
	Date        time.Time
	CreatedAt   time.Time
	Amount      decimal.Decimal
	Status      string
	Description string
}

// Effect is the signed change to the amount owed to the vendor. A cancelled
// invoice stays on the ledger but owes nothing; a reversed one still counts,
// its reversal debit note offsets it.
func (e LedgerEntry) Effect() decimal.Decimal {
	switch e.EntryType {
	case LedgerEntryInvoice:
		if e.Status == string(trade.PurchaseInvoiceStatusCancelled) {
			return decimal.Zero
		}
		return e.Amount
	case LedgerEntryRefund:
		return e.Amount
	case LedgerEntryPayment, LedgerEntryDebitNote:
		return e.Amount.Neg()
	}
	return decimal.Zero
}

// SortLedgerForDisplay orders entries most recent first.
func SortLedgerForDisplay(entries []LedgerEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].Date.Equal(entries[j].Date) {
			return entries[i].Date.After(entries[j].Date)
		}
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
}

// StatementLine is a ledger entry with the payable after it.
type StatementLine struct {
	LedgerEntry
	Balance decimal.Decimal
}

// RunningBalance folds entries oldest first and returns statement lines in
// that ascending order. The input slice is not modified.
func RunningBalance(entries []LedgerEntry) []StatementLine {
	asc := make([]LedgerEntry, len(entries))
	copy(asc, entries)
	sort.SliceStable(asc, func(i, j int) bool {
		if !asc[i].Date.Equal(asc[j].Date) {
			return asc[i].Date.Before(asc[j].Date)
		}
		return asc[i].CreatedAt.Before(asc[j].CreatedAt)
	})

	lines := make([]StatementLine, 0, len(asc))
	balance := decimal.Zero
	for _, e := range asc {
		balance = balance.Add(e.Effect())
		lines = append(lines, StatementLine{LedgerEntry: e, Balance: balance})
	}
	return lines
}

// ClosingBalance returns the payable after all entries.
func ClosingBalance(entries []LedgerEntry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Effect())
	}
	return total
}
