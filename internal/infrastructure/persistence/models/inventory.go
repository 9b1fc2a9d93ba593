package models

import (
	"time"

	"github.com/erp/vendorledger/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductBatchModel is the persistence model for inventory batches.
// A partial unique index keeps (product_id, batch_number) unique among
// active batches only, so a voided batch number can be received again.
type ProductBatchModel struct {
	BaseModel
	ProductID             uuid.UUID       `gorm:"type:uuid;not null;index"`
	PurchaseInvoiceLineID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	BatchNumber           string          `gorm:"type:varchar(50);not null"`
	ExpiryDate            *time.Time      `gorm:"type:date"`
	MRP                   decimal.Decimal `gorm:"column:mrp;type:numeric(18,2);not null"`
	PurchaseRate          decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	ReceivedDate          time.Time       `gorm:"type:date;not null"`
	InitialQty            decimal.Decimal `gorm:"type:numeric(18,3);not null"`
	QtyGood               decimal.Decimal `gorm:"type:numeric(18,3);not null"`
	QtyDamaged            decimal.Decimal `gorm:"type:numeric(18,3);not null"`
	IsActive              bool            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductBatchModel) TableName() string {
	return "product_batches"
}

// ToDomain converts the row to a domain batch.
func (m *ProductBatchModel) ToDomain() *inventory.ProductBatch {
	return &inventory.ProductBatch{
		BaseEntity:            m.BaseModel.ToDomain(),
		ProductID:             m.ProductID,
		PurchaseInvoiceLineID: m.PurchaseInvoiceLineID,
		BatchNumber:           m.BatchNumber,
		ExpiryDate:            m.ExpiryDate,
		MRP:                   m.MRP,
		PurchaseRate:          m.PurchaseRate,
		ReceivedDate:          m.ReceivedDate,
		InitialQty:            m.InitialQty,
		QtyGood:               m.QtyGood,
		QtyDamaged:            m.QtyDamaged,
		IsActive:              m.IsActive,
	}
}

// ProductBatchModelFromDomain creates a row from a domain batch.
func ProductBatchModelFromDomain(b *inventory.ProductBatch) *ProductBatchModel {
	m := &ProductBatchModel{
		ProductID:             b.ProductID,
		PurchaseInvoiceLineID: b.PurchaseInvoiceLineID,
		BatchNumber:           b.BatchNumber,
		ExpiryDate:            b.ExpiryDate,
		MRP:                   b.MRP,
		PurchaseRate:          b.PurchaseRate,
		ReceivedDate:          b.ReceivedDate,
		InitialQty:            b.InitialQty,
		QtyGood:               b.QtyGood,
		QtyDamaged:            b.QtyDamaged,
		IsActive:              b.IsActive,
	}
	m.FromDomainBaseEntity(b.BaseEntity)
	return m
}

// BatchesToDomain converts a slice of rows.
func BatchesToDomain(rows []ProductBatchModel) []inventory.ProductBatch {
	out := make([]inventory.ProductBatch, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].ToDomain())
	}
	return out
}
