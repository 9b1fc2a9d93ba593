package persistence

import (
	"context"

	"github.com/erp/vendorledger/internal/domain/shared"
	"github.com/erp/vendorledger/internal/domain/trade"
	"github.com/erp/vendorledger/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPurchaseInvoiceRepository implements PurchaseInvoiceRepository using GORM
type GormPurchaseInvoiceRepository struct {
	db *gorm.DB
}

// NewGormPurchaseInvoiceRepository creates a new GormPurchaseInvoiceRepository
func NewGormPurchaseInvoiceRepository(db *gorm.DB) *GormPurchaseInvoiceRepository {
	return &GormPurchaseInvoiceRepository{db: db}
}

// FindByID loads an invoice with its lines.
func (r *GormPurchaseInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.PurchaseInvoice, error) {
	return r.find(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate loads an invoice with its lines, locking the header row.
func (r *GormPurchaseInvoiceRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*trade.PurchaseInvoice, error) {
	return r.find(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: clause.CurrentTable}}), id)
}

func (r *GormPurchaseInvoiceRepository) find(db *gorm.DB, id uuid.UUID) (*trade.PurchaseInvoice, error) {
	var row models.PurchaseInvoiceModel
	err := db.Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("line_no ASC") }).
		Where("id = ?", id).
		Take(&row).Error
	if err != nil {
		return nil, translateError(err, "find purchase invoice")
	}
	return row.ToDomain(), nil
}

// Create inserts the header then its lines.
func (r *GormPurchaseInvoiceRepository) Create(ctx context.Context, invoice *trade.PurchaseInvoice) error {
	row := models.PurchaseInvoiceModelFromDomain(invoice)
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(row).Error; err != nil {
		return translateError(err, "create purchase invoice")
	}
	if len(row.Lines) > 0 {
		if err := db.Create(&row.Lines).Error; err != nil {
			return translateError(err, "create purchase invoice lines")
		}
	}
	return nil
}

// MarkReversed persists the reversal stamp. The status guard in the WHERE
// clause stops a second reversal racing past a stale read.
func (r *GormPurchaseInvoiceRepository) MarkReversed(ctx context.Context, invoice *trade.PurchaseInvoice) error {
	result := r.db.WithContext(ctx).Model(&models.PurchaseInvoiceModel{}).
		Where("id = ? AND status = ?", invoice.ID, string(trade.PurchaseInvoiceStatusVerified)).
		Updates(map[string]any{
			"status":      string(invoice.Status),
			"reversed_by": invoice.ReversedBy,
			"reversed_at": invoice.ReversedAt,
			"updated_at":  invoice.UpdatedAt,
		})
	if result.Error != nil {
		return translateError(result.Error, "mark purchase invoice reversed")
	}
	if result.RowsAffected == 0 {
		return shared.NewConcurrencyConflict("invoice %s changed while it was being reversed", invoice.InvoiceNumber)
	}
	return nil
}

var _ trade.PurchaseInvoiceRepository = (*GormPurchaseInvoiceRepository)(nil)
