package persistence

import (
	"context"

	"github.com/erp/vendorledger/internal/domain/finance"
	"github.com/erp/vendorledger/internal/domain/shared"
	"github.com/erp/vendorledger/internal/domain/trade"
	"github.com/erp/vendorledger/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// balanceSelect aggregates both allocation tables for each invoice header.
const balanceSelect = `
SELECT pi.id AS invoice_id,
       pi.invoice_number,
       pi.vendor_id,
       pi.status,
       pi.grand_total,
       COALESCE((SELECT SUM(pa.amount) FROM payment_allocations pa WHERE pa.purchase_invoice_id = pi.id), 0) AS paid,
       COALESCE((SELECT SUM(da.amount) FROM debit_note_allocations da WHERE da.purchase_invoice_id = pi.id), 0) AS debit_note_applied,
       pi.received_date,
       pi.created_at
  FROM purchase_invoices pi`

const balanceByIDQuery = balanceSelect + `
 WHERE pi.id = ?`

const openInvoicesQuery = `
SELECT b.* FROM (` + balanceSelect + `
 WHERE pi.vendor_id = ? AND pi.status = ? AND pi.id <> ?
) b
 WHERE b.grand_total - b.paid - b.debit_note_applied > 0
 ORDER BY b.received_date ASC, b.created_at ASC`

const lockOpenHeadersQuery = `
SELECT id FROM purchase_invoices
 WHERE vendor_id = ? AND status = ? AND id <> ?
 ORDER BY received_date ASC, created_at ASC
   FOR UPDATE`

// GormInvoiceBalanceRepository computes balances fresh from allocation rows
// on every call. Nothing is cached.
type GormInvoiceBalanceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceBalanceRepository creates a new GormInvoiceBalanceRepository
func NewGormInvoiceBalanceRepository(db *gorm.DB) *GormInvoiceBalanceRepository {
	return &GormInvoiceBalanceRepository{db: db}
}

// Balance returns one invoice's balance.
func (r *GormInvoiceBalanceRepository) Balance(ctx context.Context, invoiceID uuid.UUID) (*finance.InvoiceBalance, error) {
	var rows []models.InvoiceBalanceRow
	if err := r.db.WithContext(ctx).Raw(balanceByIDQuery, invoiceID).Scan(&rows).Error; err != nil {
		return nil, translateError(err, "compute invoice balance")
	}
	if len(rows) == 0 {
		return nil, shared.ErrNotFound
	}
	b := rows[0].ToDomain()
	return &b, nil
}

// ListOpenInvoices returns Verified invoices of the vendor with a positive
// balance, earliest received first.
func (r *GormInvoiceBalanceRepository) ListOpenInvoices(ctx context.Context, vendorID, excludeInvoiceID uuid.UUID) ([]finance.InvoiceBalance, error) {
	return r.listOpen(r.db.WithContext(ctx), vendorID, excludeInvoiceID)
}

// LockOpenInvoices locks the vendor's Verified headers first, then
// aggregates. Postgres rejects FOR UPDATE on an aggregate, and locking the
// headers is enough to serialize allocation runs against the same invoices.
func (r *GormInvoiceBalanceRepository) LockOpenInvoices(ctx context.Context, vendorID, excludeInvoiceID uuid.UUID) ([]finance.InvoiceBalance, error) {
	db := r.db.WithContext(ctx)
	var locked []struct{ ID uuid.UUID }
	status := string(trade.PurchaseInvoiceStatusVerified)
	if err := db.Raw(lockOpenHeadersQuery, vendorID, status, excludeInvoiceID).Scan(&locked).Error; err != nil {
		return nil, translateError(err, "lock open invoices")
	}
	if len(locked) == 0 {
		return []finance.InvoiceBalance{}, nil
	}
	return r.listOpen(db, vendorID, excludeInvoiceID)
}

func (r *GormInvoiceBalanceRepository) listOpen(db *gorm.DB, vendorID, excludeInvoiceID uuid.UUID) ([]finance.InvoiceBalance, error) {
	var rows []models.InvoiceBalanceRow
	status := string(trade.PurchaseInvoiceStatusVerified)
	if err := db.Raw(openInvoicesQuery, vendorID, status, excludeInvoiceID).Scan(&rows).Error; err != nil {
		return nil, translateError(err, "list open invoices")
	}
	out := make([]finance.InvoiceBalance, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}
	return out, nil
}

var _ finance.InvoiceBalanceRepository = (*GormInvoiceBalanceRepository)(nil)
