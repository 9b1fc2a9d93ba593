package procurement

import (
	"context"

	"github.com/erp/vendorledger/internal/domain/finance"
	"github.com/erp/vendorledger/internal/domain/inventory"
	"github.com/erp/vendorledger/internal/domain/partner"
	"github.com/erp/vendorledger/internal/domain/sequence"
	"github.com/erp/vendorledger/internal/domain/trade"
)

// TransactionScope runs a unit of work atomically.
// If fn returns an error, or ctx is cancelled before commit, nothing persists.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes every store the ledger mutates, all
// bound to the same database transaction.
type TransactionalRepositories interface {
	Sequences() sequence.Generator
	Vendors() partner.VendorRepository
	PurchaseOrders() trade.PurchaseOrderRepository
	PurchaseInvoices() trade.PurchaseInvoiceRepository
	Batches() inventory.ProductBatchRepository
	Balances() finance.InvoiceBalanceRepository
	Payments() finance.PaymentRepository
	DebitNotes() finance.DebitNoteRepository
	BankAccounts() finance.BankAccountRepository
}

// Repositories is a plain bundle of stores. It backs NoOpTransactionScope.
type Repositories struct {
	SequenceGenerator sequence.Generator
	VendorRepo        partner.VendorRepository
	PurchaseOrderRepo trade.PurchaseOrderRepository
	InvoiceRepo       trade.PurchaseInvoiceRepository
	BatchRepo         inventory.ProductBatchRepository
	BalanceRepo       finance.InvoiceBalanceRepository
	PaymentRepo       finance.PaymentRepository
	DebitNoteRepo     finance.DebitNoteRepository
	BankAccountRepo   finance.BankAccountRepository
}

// NoOpTransactionScope runs the function directly against the given
// repositories, without a database transaction. Used in tests.
type NoOpTransactionScope struct {
	repos Repositories
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(repos Repositories) *NoOpTransactionScope {
	return &NoOpTransactionScope{repos: repos}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Sequences returns the sequence generator.
func (s *NoOpTransactionScope) Sequences() sequence.Generator {
	return s.repos.SequenceGenerator
}

// Vendors returns the vendor repository.
func (s *NoOpTransactionScope) Vendors() partner.VendorRepository {
	return s.repos.VendorRepo
}

// PurchaseOrders returns the purchase order repository.
func (s *NoOpTransactionScope) PurchaseOrders() trade.PurchaseOrderRepository {
	return s.repos.PurchaseOrderRepo
}

// PurchaseInvoices returns the purchase invoice repository.
func (s *NoOpTransactionScope) PurchaseInvoices() trade.PurchaseInvoiceRepository {
	return s.repos.InvoiceRepo
}

// Batches returns the product batch repository.
func (s *NoOpTransactionScope) Batches() inventory.ProductBatchRepository {
	return s.repos.BatchRepo
}

// Balances returns the invoice balance repository.
func (s *NoOpTransactionScope) Balances() finance.InvoiceBalanceRepository {
	return s.repos.BalanceRepo
}

// Payments returns the payment repository.
func (s *NoOpTransactionScope) Payments() finance.PaymentRepository {
	return s.repos.PaymentRepo
}

// DebitNotes returns the debit note repository.
func (s *NoOpTransactionScope) DebitNotes() finance.DebitNoteRepository {
	return s.repos.DebitNoteRepo
}

// BankAccounts returns the bank account repository.
func (s *NoOpTransactionScope) BankAccounts() finance.BankAccountRepository {
	return s.repos.BankAccountRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
