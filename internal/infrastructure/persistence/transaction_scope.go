package persistence

import (
	"context"

	"github.com/erp/vendorledger/internal/application/procurement"
	"github.com/erp/vendorledger/internal/domain/finance"
	"github.com/erp/vendorledger/internal/domain/inventory"
	"github.com/erp/vendorledger/internal/domain/partner"
	"github.com/erp/vendorledger/internal/domain/sequence"
	"github.com/erp/vendorledger/internal/domain/trade"
	"gorm.io/gorm"
)

// GormTransactionScope runs each unit of work in one database transaction.
// The context is bound to the transaction, so a cancelled request rolls back.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute commits when fn returns nil and rolls back otherwise.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos procurement.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories hands out repositories bound to one transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) Sequences() sequence.Generator {
	return NewGormSequenceRepository(r.tx)
}

func (r *gormTransactionalRepositories) Vendors() partner.VendorRepository {
	return NewGormVendorRepository(r.tx)
}

func (r *gormTransactionalRepositories) PurchaseOrders() trade.PurchaseOrderRepository {
	return NewGormPurchaseOrderRepository(r.tx)
}

func (r *gormTransactionalRepositories) PurchaseInvoices() trade.PurchaseInvoiceRepository {
	return NewGormPurchaseInvoiceRepository(r.tx)
}

func (r *gormTransactionalRepositories) Batches() inventory.ProductBatchRepository {
	return NewGormProductBatchRepository(r.tx)
}

func (r *gormTransactionalRepositories) Balances() finance.InvoiceBalanceRepository {
	return NewGormInvoiceBalanceRepository(r.tx)
}

func (r *gormTransactionalRepositories) Payments() finance.PaymentRepository {
	return NewGormPaymentRepository(r.tx)
}

func (r *gormTransactionalRepositories) DebitNotes() finance.DebitNoteRepository {
	return NewGormDebitNoteRepository(r.tx)
}

func (r *gormTransactionalRepositories) BankAccounts() finance.BankAccountRepository {
	return NewGormBankAccountRepository(r.tx)
}

var (
	_ procurement.TransactionScope          = (*GormTransactionScope)(nil)
	_ procurement.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
)
