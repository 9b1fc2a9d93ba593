package models

import (
	"time"

	"github.com/erp/vendorledger/internal/domain/finance"
	"github.com/erp/vendorledger/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VendorPaymentModel is the persistence model for payments and refunds.
type VendorPaymentModel struct {
	BaseModel
	PaymentNumber   string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	VendorID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount          decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	PaymentDate     time.Time       `gorm:"type:date;not null"`
	Mode            string          `gorm:"type:varchar(30)"`
	TransactionType string          `gorm:"type:varchar(10);not null"`
	BankAccountID   *uuid.UUID      `gorm:"type:uuid"`
	TransactionRef  string          `gorm:"type:varchar(100)"`
	Remarks         string          `gorm:"type:text"`

	Allocations []PaymentAllocationModel `gorm:"foreignKey:PaymentID;references:ID"`
}

// TableName returns the table name for GORM
func (VendorPaymentModel) TableName() string {
	return "vendor_payments"
}

// PaymentAllocationModel applies part of a payment to one invoice.
type PaymentAllocationModel struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey"`
	PaymentID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	PurchaseInvoiceID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount            decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	CreatedAt         time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PaymentAllocationModel) TableName() string {
	return "payment_allocations"
}

// ToDomain converts the payment and its loaded allocations.
func (m *VendorPaymentModel) ToDomain() *finance.VendorPayment {
	p := &finance.VendorPayment{
		BaseEntity:      m.BaseModel.ToDomain(),
		PaymentNumber:   m.PaymentNumber,
		VendorID:        m.VendorID,
		Amount:          m.Amount,
		PaymentDate:     m.PaymentDate,
		Mode:            m.Mode,
		TransactionType: finance.TransactionType(m.TransactionType),
		BankAccountID:   m.BankAccountID,
		TransactionRef:  m.TransactionRef,
		Remarks:         m.Remarks,
		Allocations:     make([]finance.PaymentAllocation, 0, len(m.Allocations)),
	}
	for _, a := range m.Allocations {
		p.Allocations = append(p.Allocations, finance.PaymentAllocation{
			ID:                a.ID,
			PaymentID:         a.PaymentID,
			PurchaseInvoiceID: a.PurchaseInvoiceID,
			Amount:            a.Amount,
			CreatedAt:         a.CreatedAt,
		})
	}
	return p
}

// VendorPaymentModelFromDomain creates payment and allocation rows.
func VendorPaymentModelFromDomain(p *finance.VendorPayment) *VendorPaymentModel {
	m := &VendorPaymentModel{
		PaymentNumber:   p.PaymentNumber,
		VendorID:        p.VendorID,
		Amount:          p.Amount,
		PaymentDate:     p.PaymentDate,
		Mode:            p.Mode,
		TransactionType: string(p.TransactionType),
		BankAccountID:   p.BankAccountID,
		TransactionRef:  p.TransactionRef,
		Remarks:         p.Remarks,
		Allocations:     make([]PaymentAllocationModel, 0, len(p.Allocations)),
	}
	m.FromDomainBaseEntity(p.BaseEntity)
	for _, a := range p.Allocations {
		m.Allocations = append(m.Allocations, PaymentAllocationModel{
			ID:                a.ID,
			PaymentID:         p.ID,
			PurchaseInvoiceID: a.PurchaseInvoiceID,
			Amount:            a.Amount,
			CreatedAt:         a.CreatedAt,
		})
	}
	return m
}

// DebitNoteModel is the persistence model for debit note headers.
type DebitNoteModel struct {
	BaseModel
	DebitNoteNumber string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	VendorID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	DebitNoteDate   time.Time       `gorm:"type:date;not null"`
	Amount          decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	Reason          string          `gorm:"type:text"`
	LinkedInvoiceID *uuid.UUID      `gorm:"type:uuid"`
	Status          string          `gorm:"type:varchar(20);not null"`

	Lines       []DebitNoteLineModel       `gorm:"foreignKey:DebitNoteID;references:ID"`
	Allocations []DebitNoteAllocationModel `gorm:"foreignKey:DebitNoteID;references:ID"`
}

// TableName returns the table name for GORM
func (DebitNoteModel) TableName() string {
	return "debit_notes"
}

// DebitNoteLineModel is one returned product line of a debit note.
type DebitNoteLineModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	DebitNoteID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"`
	BatchNumber string          `gorm:"type:varchar(50)"`
	Quantity    decimal.Decimal `gorm:"type:numeric(18,3);not null"`
	Rate        decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	Amount      decimal.Decimal `gorm:"type:numeric(18,2);not null"`
}

// TableName returns the table name for GORM
func (DebitNoteLineModel) TableName() string {
	return "debit_note_lines"
}

// DebitNoteAllocationModel applies part of a debit note to one invoice.
type DebitNoteAllocationModel struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey"`
	DebitNoteID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	PurchaseInvoiceID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount            decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	CreatedAt         time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (DebitNoteAllocationModel) TableName() string {
	return "debit_note_allocations"
}

// ToDomain converts the note with its loaded lines and allocations.
func (m *DebitNoteModel) ToDomain() *finance.DebitNote {
	dn := &finance.DebitNote{
		BaseEntity:      m.BaseModel.ToDomain(),
		DebitNoteNumber: m.DebitNoteNumber,
		VendorID:        m.VendorID,
		DebitNoteDate:   m.DebitNoteDate,
		Amount:          m.Amount,
		Reason:          m.Reason,
		LinkedInvoiceID: m.LinkedInvoiceID,
		Status:          finance.DebitNoteStatus(m.Status),
		Lines:           make([]finance.DebitNoteLine, 0, len(m.Lines)),
		Allocations:     make([]finance.DebitNoteAllocation, 0, len(m.Allocations)),
	}
	for _, l := range m.Lines {
		dn.Lines = append(dn.Lines, finance.DebitNoteLine{
			ID:          l.ID,
			DebitNoteID: l.DebitNoteID,
			ProductID:   l.ProductID,
			BatchNumber: l.BatchNumber,
			Quantity:    l.Quantity,
			Rate:        l.Rate,
			Amount:      l.Amount,
		})
	}
	for _, a := range m.Allocations {
		dn.Allocations = append(dn.Allocations, finance.DebitNoteAllocation{
			ID:                a.ID,
			DebitNoteID:       a.DebitNoteID,
			PurchaseInvoiceID: a.PurchaseInvoiceID,
			Amount:            a.Amount,
			CreatedAt:         a.CreatedAt,
		})
	}
	return dn
}

// DebitNoteModelFromDomain creates header, line and allocation rows.
func DebitNoteModelFromDomain(dn *finance.DebitNote) *DebitNoteModel {
	m := &DebitNoteModel{
		DebitNoteNumber: dn.DebitNoteNumber,
		VendorID:        dn.VendorID,
		DebitNoteDate:   dn.DebitNoteDate,
		Amount:          dn.Amount,
		Reason:          dn.Reason,
		LinkedInvoiceID: dn.LinkedInvoiceID,
		Status:          string(dn.Status),
		Lines:           make([]DebitNoteLineModel, 0, len(dn.Lines)),
		Allocations:     make([]DebitNoteAllocationModel, 0, len(dn.Allocations)),
	}
	m.FromDomainBaseEntity(dn.BaseEntity)
	for _, l := range dn.Lines {
		m.Lines = append(m.Lines, DebitNoteLineModel{
			ID:          l.ID,
			DebitNoteID: dn.ID,
			ProductID:   l.ProductID,
			BatchNumber: l.BatchNumber,
			Quantity:    l.Quantity,
			Rate:        l.Rate,
			Amount:      l.Amount,
		})
	}
	for _, a := range dn.Allocations {
		m.Allocations = append(m.Allocations, DebitNoteAllocationModel{
			ID:                a.ID,
			DebitNoteID:       dn.ID,
			PurchaseInvoiceID: a.PurchaseInvoiceID,
			Amount:            a.Amount,
			CreatedAt:         a.CreatedAt,
		})
	}
	return m
}

// BankAccountModel is the persistence model for bank accounts.
type BankAccountModel struct {
	BaseModel
	AccountName    string          `gorm:"type:varchar(100);not null"`
	CurrentBalance decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	IsActive       bool            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (BankAccountModel) TableName() string {
	return "bank_accounts"
}

// ToDomain converts the row to a domain bank account.
func (m *BankAccountModel) ToDomain() *finance.BankAccount {
	return &finance.BankAccount{
		ID:             m.ID,
		AccountName:    m.AccountName,
		CurrentBalance: m.CurrentBalance,
		IsActive:       m.IsActive,
	}
}

// InvoiceBalanceRow is the result shape of the balance aggregate query.
type InvoiceBalanceRow struct {
	InvoiceID        uuid.UUID
	InvoiceNumber    string
	VendorID         uuid.UUID
	Status           string
	GrandTotal       decimal.Decimal
	Paid             decimal.Decimal
	DebitNoteApplied decimal.Decimal
	ReceivedDate     time.Time
	CreatedAt        time.Time
}

// ToDomain converts the row to a domain balance.
func (r *InvoiceBalanceRow) ToDomain() finance.InvoiceBalance {
	return finance.InvoiceBalance{
		InvoiceID:        r.InvoiceID,
		InvoiceNumber:    r.InvoiceNumber,
		VendorID:         r.VendorID,
		Status:           trade.PurchaseInvoiceStatus(r.Status),
		GrandTotal:       r.GrandTotal,
		Paid:             r.Paid,
		DebitNoteApplied: r.DebitNoteApplied,
		ReceivedDate:     r.ReceivedDate,
		CreatedAt:        r.CreatedAt,
	}
}

// LedgerEntryRow is a row of view_vendor_ledger.
type LedgerEntryRow struct {
	EntryType   string
	ReferenceID uuid.UUID
	DocumentNo  string
	VendorID    uuid.UUID
	Date        time.Time
	CreatedAt   time.Time
	Amount      decimal.Decimal
	Status      string
	Description string
}

// ToDomain converts the row to a domain ledger entry.
func (r *LedgerEntryRow) ToDomain() finance.LedgerEntry {
	return finance.LedgerEntry{
		EntryType:   finance.LedgerEntryType(r.EntryType),
		ReferenceID: r.ReferenceID,
		DocumentNo:  r.DocumentNo,
		VendorID:    r.VendorID,
		Date:        r.Date,
		CreatedAt:   r.CreatedAt,
		Amount:      r.Amount,
		Status:      r.Status,
		Description: r.Description,
	}
}
