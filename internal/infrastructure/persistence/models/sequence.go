package models

import (
	"time"

	"github.com/erp/vendorledger/internal/domain/sequence"
)

// DocumentSequenceModel is a row of document_sequences, keyed by document type.
type DocumentSequenceModel struct {
	DocumentType  string    `gorm:"type:varchar(10);primaryKey"`
	Prefix        string    `gorm:"type:varchar(50);not null"`
	CurrentNumber int64     `gorm:"not null"`
	IsActive      bool      `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (DocumentSequenceModel) TableName() string {
	return "document_sequences"
}

// ToDomain converts the row to a domain sequence.
func (m *DocumentSequenceModel) ToDomain() *sequence.DocumentSequence {
	return &sequence.DocumentSequence{
		DocumentType:  sequence.DocumentType(m.DocumentType),
		Prefix:        m.Prefix,
		CurrentNumber: m.CurrentNumber,
		IsActive:      m.IsActive,
	}
}
