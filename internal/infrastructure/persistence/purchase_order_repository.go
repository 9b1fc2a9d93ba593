package persistence

import (
	"context"
	"time"

	"github.com/erp/vendorledger/internal/domain/shared"
	"github.com/erp/vendorledger/internal/domain/trade"
	"github.com/erp/vendorledger/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPurchaseOrderRepository implements PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

func preloadOrderLines(db *gorm.DB) *gorm.DB {
	return db.Order("line_no ASC")
}

// FindByID loads an order with its lines.
func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.PurchaseOrder, error) {
	return r.find(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate loads an order with its lines, locking the header row.
func (r *GormPurchaseOrderRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*trade.PurchaseOrder, error) {
	return r.find(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: clause.CurrentTable}}), id)
}

func (r *GormPurchaseOrderRepository) find(db *gorm.DB, id uuid.UUID) (*trade.PurchaseOrder, error) {
	var row models.PurchaseOrderModel
	if err := db.Preload("Lines", preloadOrderLines).Where("id = ?", id).Take(&row).Error; err != nil {
		return nil, translateError(err, "find purchase order")
	}
	return row.ToDomain(), nil
}

// Create inserts the header then its lines.
func (r *GormPurchaseOrderRepository) Create(ctx context.Context, order *trade.PurchaseOrder) error {
	row := models.PurchaseOrderModelFromDomain(order)
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(row).Error; err != nil {
		return translateError(err, "create purchase order")
	}
	if len(row.Lines) > 0 {
		if err := db.Create(&row.Lines).Error; err != nil {
			return translateError(err, "create purchase order lines")
		}
	}
	return nil
}

// Update rewrites the header and replaces the full line set.
func (r *GormPurchaseOrderRepository) Update(ctx context.Context, order *trade.PurchaseOrder) error {
	row := models.PurchaseOrderModelFromDomain(order)
	db := r.db.WithContext(ctx)

	result := db.Model(&models.PurchaseOrderModel{}).Where("id = ?", order.ID).Updates(map[string]any{
		"vendor_id":       row.VendorID,
		"remarks":         row.Remarks,
		"total_quantity":  row.TotalQuantity,
		"gross_amount":    row.GrossAmount,
		"scheme_amount":   row.SchemeAmount,
		"discount_amount": row.DiscountAmount,
		"taxable_amount":  row.TaxableAmount,
		"tax_amount":      row.TaxAmount,
		"grand_total":     row.GrandTotal,
		"updated_at":      row.UpdatedAt,
	})
	if result.Error != nil {
		return translateError(result.Error, "update purchase order")
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}

	if err := db.Where("purchase_order_id = ?", order.ID).Delete(&models.PurchaseOrderLineModel{}).Error; err != nil {
		return translateError(err, "delete purchase order lines")
	}
	if len(row.Lines) > 0 {
		if err := db.Create(&row.Lines).Error; err != nil {
			return translateError(err, "create purchase order lines")
		}
	}
	return nil
}

// MarkReceived moves the order to Received.
func (r *GormPurchaseOrderRepository) MarkReceived(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": string(trade.PurchaseOrderStatusReceived), "updated_at": time.Now()})
	if result.Error != nil {
		return translateError(result.Error, "mark purchase order received")
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ trade.PurchaseOrderRepository = (*GormPurchaseOrderRepository)(nil)
