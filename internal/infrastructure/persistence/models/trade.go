package models

import (
	"time"

	"github.com/erp/vendorledger/internal/domain/shared"
	"github.com/erp/vendorledger/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseOrderModel is the persistence model for purchase order headers.
type PurchaseOrderModel struct {
	BaseModel
	PONumber       string          `gorm:"column:po_number;type:varchar(50);not null;uniqueIndex"`
	PODate         time.Time       `gorm:"column:po_date;not null"`
	VendorID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	Remarks        string          `gorm:"type:text"`
	Status         string          `gorm:"type:varchar(20);not null"`
	TotalQuantity  decimal.Decimal `gorm:"type:numeric(18,3);not null"`
	GrossAmount    decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	SchemeAmount   decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	DiscountAmount decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	TaxableAmount  decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	TaxAmount      decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	GrandTotal     decimal.Decimal `gorm:"type:numeric(18,2);not null"`

	Lines []PurchaseOrderLineModel `gorm:"foreignKey:PurchaseOrderID;references:ID"`
}

// TableName returns the table name for GORM
func (PurchaseOrderModel) TableName() string {
	return "purchase_orders"
}

// PurchaseOrderLineModel is one priced purchase order line.
type PurchaseOrderLineModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	PurchaseOrderID uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineNo          int             `gorm:"not null"`
	ProductID       uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName     string          `gorm:"type:varchar(200)"`
	Quantity        decimal.Decimal `gorm:"type:numeric(18,3);not null"`
	Price           decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	MRP             decimal.Decimal `gorm:"column:mrp;type:numeric(18,2);not null"`
	SchemeAmount    decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	DiscountPercent decimal.Decimal `gorm:"type:numeric(5,2);not null"`
	TaxPercent      decimal.Decimal `gorm:"type:numeric(5,2);not null"`
	GrossAmount     decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	DiscountAmount  decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	TaxableAmount   decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	TaxAmount       decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	Amount          decimal.Decimal `gorm:"type:numeric(18,2);not null"`
}

// TableName returns the table name for GORM
func (PurchaseOrderLineModel) TableName() string {
	return "purchase_order_lines"
}

// ToDomain converts the header and its loaded lines to a domain order.
func (m *PurchaseOrderModel) ToDomain() *trade.PurchaseOrder {
	po := &trade.PurchaseOrder{
		BaseEntity: m.BaseModel.ToDomain(),
		PONumber:   m.PONumber,
		PODate:     m.PODate,
		VendorID:   m.VendorID,
		Remarks:    m.Remarks,
		Status:     trade.PurchaseOrderStatus(m.Status),
		Totals: trade.PurchaseOrderTotals{
			TotalQuantity: m.TotalQuantity,
			Gross:         m.GrossAmount,
			Scheme:        m.SchemeAmount,
			Discount:      m.DiscountAmount,
			Taxable:       m.TaxableAmount,
			Tax:           m.TaxAmount,
			GrandTotal:    m.GrandTotal,
		},
		Lines: make([]trade.PurchaseOrderLine, 0, len(m.Lines)),
	}
	for _, l := range m.Lines {
		po.Lines = append(po.Lines, trade.PurchaseOrderLine{
			ID:              l.ID,
			LineNo:          l.LineNo,
			ProductID:       l.ProductID,
			ProductName:     l.ProductName,
			Quantity:        l.Quantity,
			Price:           l.Price,
			MRP:             l.MRP,
			SchemeAmount:    l.SchemeAmount,
			DiscountPercent: l.DiscountPercent,
			TaxPercent:      l.TaxPercent,
			GrossAmount:     l.GrossAmount,
			DiscountAmount:  l.DiscountAmount,
			TaxableAmount:   l.TaxableAmount,
			TaxAmount:       l.TaxAmount,
			Amount:          l.Amount,
		})
	}
	return po
}

// PurchaseOrderModelFromDomain creates header and line rows from a domain order.
func PurchaseOrderModelFromDomain(po *trade.PurchaseOrder) *PurchaseOrderModel {
	m := &PurchaseOrderModel{
		PONumber:       po.PONumber,
		PODate:         po.PODate,
		VendorID:       po.VendorID,
		Remarks:        po.Remarks,
		Status:         string(po.Status),
		TotalQuantity:  po.Totals.TotalQuantity,
		GrossAmount:    po.Totals.Gross,
		SchemeAmount:   po.Totals.Scheme,
		DiscountAmount: po.Totals.Discount,
		TaxableAmount:  po.Totals.Taxable,
		TaxAmount:      po.Totals.Tax,
		GrandTotal:     po.Totals.GrandTotal,
		Lines:          make([]PurchaseOrderLineModel, 0, len(po.Lines)),
	}
	m.FromDomainBaseEntity(po.BaseEntity)
	for _, l := range po.Lines {
		m.Lines = append(m.Lines, PurchaseOrderLineModel{
			ID:              l.ID,
			PurchaseOrderID: po.ID,
			LineNo:          l.LineNo,
			ProductID:       l.ProductID,
			ProductName:     l.ProductName,
			Quantity:        l.Quantity,
			Price:           l.Price,
			MRP:             l.MRP,
			SchemeAmount:    l.SchemeAmount,
			DiscountPercent: l.DiscountPercent,
			TaxPercent:      l.TaxPercent,
			GrossAmount:     l.GrossAmount,
			DiscountAmount:  l.DiscountAmount,
			TaxableAmount:   l.TaxableAmount,
			TaxAmount:       l.TaxAmount,
			Amount:          l.Amount,
		})
	}
	return m
}

// PurchaseInvoiceModel is the persistence model for goods receipt headers.
type PurchaseInvoiceModel struct {
	BaseModel
	InvoiceNumber       string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	VendorID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	PurchaseOrderID     *uuid.UUID      `gorm:"type:uuid"`
	ParentInvoiceID     *uuid.UUID      `gorm:"type:uuid"`
	VendorInvoiceNumber string          `gorm:"type:varchar(100);not null"`
	VendorInvoiceDate   time.Time       `gorm:"type:date;not null"`
	ReceivedDate        time.Time       `gorm:"type:date;not null"`
	TotalNet            decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	TaxAmount           decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	GrandTotal          decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	Status              string          `gorm:"type:varchar(20);not null"`
	ReversedBy          *uuid.UUID      `gorm:"type:uuid"`
	ReversedAt          *time.Time

	Lines []PurchaseInvoiceLineModel `gorm:"foreignKey:PurchaseInvoiceID;references:ID"`
}

// TableName returns the table name for GORM
func (PurchaseInvoiceModel) TableName() string {
	return "purchase_invoices"
}

// PurchaseInvoiceLineModel is one received line. Its batch lives in product_batches.
type PurchaseInvoiceLineModel struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey"`
	PurchaseInvoiceID uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineNo            int             `gorm:"not null"`
	ProductID         uuid.UUID       `gorm:"type:uuid;not null"`
	OrderedQty        decimal.Decimal `gorm:"type:numeric(18,3);not null"`
	AcceptedQty       decimal.Decimal `gorm:"type:numeric(18,3);not null"`
	Rate              decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	MRP               decimal.Decimal `gorm:"column:mrp;type:numeric(18,2);not null"`
	DiscountPercent   decimal.Decimal `gorm:"type:numeric(5,2);not null"`
	SchemeAmount      decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	TaxAmount         decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	Amount            decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	BatchNumber       string          `gorm:"type:varchar(50);not null"`
	ExpiryDate        *time.Time      `gorm:"type:date"`
}

// TableName returns the table name for GORM
func (PurchaseInvoiceLineModel) TableName() string {
	return "purchase_invoice_lines"
}

// ToDomain converts the header and its loaded lines to a domain invoice.
func (m *PurchaseInvoiceModel) ToDomain() *trade.PurchaseInvoice {
	inv := &trade.PurchaseInvoice{
		BaseEntity:          shared.BaseEntity{ID: m.ID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		InvoiceNumber:       m.InvoiceNumber,
		VendorID:            m.VendorID,
		PurchaseOrderID:     m.PurchaseOrderID,
		ParentInvoiceID:     m.ParentInvoiceID,
		VendorInvoiceNumber: m.VendorInvoiceNumber,
		VendorInvoiceDate:   m.VendorInvoiceDate,
		ReceivedDate:        m.ReceivedDate,
		TotalNet:            m.TotalNet,
		TaxAmount:           m.TaxAmount,
		GrandTotal:          m.GrandTotal,
		Status:              trade.PurchaseInvoiceStatus(m.Status),
		ReversedBy:          m.ReversedBy,
		ReversedAt:          m.ReversedAt,
		Lines:               make([]trade.PurchaseInvoiceLine, 0, len(m.Lines)),
	}
	for _, l := range m.Lines {
		inv.Lines = append(inv.Lines, trade.PurchaseInvoiceLine{
			ID:              l.ID,
			InvoiceID:       l.PurchaseInvoiceID,
			LineNo:          l.LineNo,
			ProductID:       l.ProductID,
			OrderedQty:      l.OrderedQty,
			AcceptedQty:     l.AcceptedQty,
			Rate:            l.Rate,
			MRP:             l.MRP,
			DiscountPercent: l.DiscountPercent,
			SchemeAmount:    l.SchemeAmount,
			TaxAmount:       l.TaxAmount,
			Amount:          l.Amount,
			BatchNumber:     l.BatchNumber,
			ExpiryDate:      l.ExpiryDate,
		})
	}
	return inv
}

// PurchaseInvoiceModelFromDomain creates header and line rows from a domain invoice.
func PurchaseInvoiceModelFromDomain(inv *trade.PurchaseInvoice) *PurchaseInvoiceModel {
	m := &PurchaseInvoiceModel{
		InvoiceNumber:       inv.InvoiceNumber,
		VendorID:            inv.VendorID,
		PurchaseOrderID:     inv.PurchaseOrderID,
		ParentInvoiceID:     inv.ParentInvoiceID,
		VendorInvoiceNumber: inv.VendorInvoiceNumber,
		VendorInvoiceDate:   inv.VendorInvoiceDate,
		ReceivedDate:        inv.ReceivedDate,
		TotalNet:            inv.TotalNet,
		TaxAmount:           inv.TaxAmount,
		GrandTotal:          inv.GrandTotal,
		Status:              string(inv.Status),
		ReversedBy:          inv.ReversedBy,
		ReversedAt:          inv.ReversedAt,
		Lines:               make([]PurchaseInvoiceLineModel, 0, len(inv.Lines)),
	}
	m.FromDomainBaseEntity(inv.BaseEntity)
	for _, l := range inv.Lines {
		m.Lines = append(m.Lines, PurchaseInvoiceLineModel{
			ID:                l.ID,
			PurchaseInvoiceID: inv.ID,
			LineNo:            l.LineNo,
			ProductID:         l.ProductID,
			OrderedQty:        l.OrderedQty,
			AcceptedQty:       l.AcceptedQty,
			Rate:              l.Rate,
			MRP:               l.MRP,
			DiscountPercent:   l.DiscountPercent,
			SchemeAmount:      l.SchemeAmount,
			TaxAmount:         l.TaxAmount,
			Amount:            l.Amount,
			BatchNumber:       l.BatchNumber,
			ExpiryDate:        l.ExpiryDate,
		})
	}
	return m
}
