package persistence

import (
	"context"

	"github.com/erp/vendorledger/internal/domain/finance"
	"github.com/erp/vendorledger/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormLedgerRepository reads the view_vendor_ledger projection.
type GormLedgerRepository struct {
	db *gorm.DB
}

// NewGormLedgerRepository creates a new GormLedgerRepository
func NewGormLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// VendorLedger returns the vendor's entries, newest first.
func (r *GormLedgerRepository) VendorLedger(ctx context.Context, vendorID uuid.UUID) ([]finance.LedgerEntry, error) {
	var rows []models.LedgerEntryRow
	err := r.db.WithContext(ctx).
		Table("view_vendor_ledger").
		Where("vendor_id = ?", vendorID).
		Order("date DESC, created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, translateError(err, "read vendor ledger")
	}
	entries := make([]finance.LedgerEntry, 0, len(rows))
	for i := range rows {
		entries = append(entries, rows[i].ToDomain())
	}
	return entries, nil
}

var _ finance.LedgerRepository = (*GormLedgerRepository)(nil)
