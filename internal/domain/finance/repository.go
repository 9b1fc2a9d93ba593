package finance

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceBalanceRepository computes invoice balances from allocation rows.
type InvoiceBalanceRepository interface {
	// Balance recomputes one invoice's balance.
	Balance(ctx context.Context, invoiceID uuid.UUID) (*InvoiceBalance, error)
	// ListOpenInvoices returns Verified invoices of the vendor with a positive
	// balance, earliest received first. excludeInvoiceID may be uuid.Nil.
	ListOpenInvoices(ctx context.Context, vendorID, excludeInvoiceID uuid.UUID) ([]InvoiceBalance, error)
	// LockOpenInvoices is ListOpenInvoices holding row locks on the candidate
	// headers until the surrounding transaction ends.
	LockOpenInvoices(ctx context.Context, vendorID, excludeInvoiceID uuid.UUID) ([]InvoiceBalance, error)
}

// PaymentRepository persists vendor payments with their allocations.
type PaymentRepository interface {
	Create(ctx context.Context, payment *VendorPayment) error
	FindByID(ctx context.Context, id uuid.UUID) (*VendorPayment, error)
}

// DebitNoteRepository persists debit notes with lines and allocations.
type DebitNoteRepository interface {
	Create(ctx context.Context, note *DebitNote) error
	FindByID(ctx context.Context, id uuid.UUID) (*DebitNote, error)
}

// BankAccountRepository reads and adjusts bank balances.
type BankAccountRepository interface {
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*BankAccount, error)
	UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error
}

// LedgerRepository reads the vendor ledger projection.
type LedgerRepository interface {
	// VendorLedger returns entries ordered date DESC, created_at DESC.
	VendorLedger(ctx context.Context, vendorID uuid.UUID) ([]LedgerEntry, error)
}
