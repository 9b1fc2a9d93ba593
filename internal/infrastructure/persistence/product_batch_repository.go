package persistence

import (
	"context"
	"time"

	"github.com/erp/vendorledger/internal/domain/inventory"
	"github.com/erp/vendorledger/internal/domain/shared"
	"github.com/erp/vendorledger/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProductBatchRepository implements ProductBatchRepository using GORM
type GormProductBatchRepository struct {
	db *gorm.DB
}

// NewGormProductBatchRepository creates a new GormProductBatchRepository
func NewGormProductBatchRepository(db *gorm.DB) *GormProductBatchRepository {
	return &GormProductBatchRepository{db: db}
}

var lockBatches = clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "product_batches"}}

// Create inserts a batch. A live batch with the same product and number is a
// validation error naming the batch.
func (r *GormProductBatchRepository) Create(ctx context.Context, batch *inventory.ProductBatch) error {
	row := models.ProductBatchModelFromDomain(batch)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		if isUniqueViolation(err, liveBatchConstraint) {
			return shared.NewValidationError("batch %s already exists for product %s", batch.BatchNumber, batch.ProductID).WithCause(err)
		}
		return translateError(err, "create product batch")
	}
	return nil
}

// FindByID finds a batch by its ID
func (r *GormProductBatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.ProductBatch, error) {
	var row models.ProductBatchModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		return nil, translateError(err, "find product batch")
	}
	return row.ToDomain(), nil
}

// FindByIDForUpdate finds a batch holding its row lock.
func (r *GormProductBatchRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*inventory.ProductBatch, error) {
	var row models.ProductBatchModel
	if err := r.db.WithContext(ctx).Clauses(lockBatches).Where("id = ?", id).Take(&row).Error; err != nil {
		return nil, translateError(err, "lock product batch")
	}
	return row.ToDomain(), nil
}

func (r *GormProductBatchRepository) byInvoice(db *gorm.DB, invoiceID uuid.UUID) ([]inventory.ProductBatch, error) {
	var rows []models.ProductBatchModel
	err := db.Model(&models.ProductBatchModel{}).
		Select("product_batches.*").
		Joins("JOIN purchase_invoice_lines ON purchase_invoice_lines.id = product_batches.purchase_invoice_line_id").
		Where("purchase_invoice_lines.purchase_invoice_id = ?", invoiceID).
		Order("purchase_invoice_lines.line_no ASC").
		Find(&rows).Error
	if err != nil {
		return nil, translateError(err, "find invoice batches")
	}
	return models.BatchesToDomain(rows), nil
}

// FindByInvoice returns the batches of an invoice in line order.
func (r *GormProductBatchRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]inventory.ProductBatch, error) {
	return r.byInvoice(r.db.WithContext(ctx), invoiceID)
}

// FindByInvoiceForUpdate returns the batches of an invoice, row locked.
func (r *GormProductBatchRepository) FindByInvoiceForUpdate(ctx context.Context, invoiceID uuid.UUID) ([]inventory.ProductBatch, error) {
	return r.byInvoice(r.db.WithContext(ctx).Clauses(lockBatches), invoiceID)
}

// VoidBatches zeroes good stock and deactivates every batch of the invoice.
func (r *GormProductBatchRepository) VoidBatches(ctx context.Context, invoiceID uuid.UUID) (int64, error) {
	db := r.db.WithContext(ctx)
	lines := db.Model(&models.PurchaseInvoiceLineModel{}).Select("id").Where("purchase_invoice_id = ?", invoiceID)
	result := db.Model(&models.ProductBatchModel{}).
		Where("purchase_invoice_line_id IN (?)", lines).
		Updates(map[string]any{"qty_good": decimal.Zero, "is_active": false, "updated_at": time.Now()})
	if result.Error != nil {
		return 0, translateError(result.Error, "void invoice batches")
	}
	return result.RowsAffected, nil
}

// FindAvailableByProduct returns active batches with good stock, FIFO ordered.
func (r *GormProductBatchRepository) FindAvailableByProduct(ctx context.Context, productID uuid.UUID) ([]inventory.ProductBatch, error) {
	var rows []models.ProductBatchModel
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND is_active = ? AND qty_good > 0", productID, true).
		Order("received_date ASC, created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, translateError(err, "find available batches")
	}
	return models.BatchesToDomain(rows), nil
}

// UpdateQuantities writes the good and damaged buckets of one batch.
func (r *GormProductBatchRepository) UpdateQuantities(ctx context.Context, id uuid.UUID, qtyGood, qtyDamaged decimal.Decimal) error {
	result := r.db.WithContext(ctx).Model(&models.ProductBatchModel{}).
		Where("id = ?", id).
		Updates(map[string]any{"qty_good": qtyGood, "qty_damaged": qtyDamaged, "updated_at": time.Now()})
	if result.Error != nil {
		return translateError(result.Error, "update batch quantities")
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ inventory.ProductBatchRepository = (*GormProductBatchRepository)(nil)
