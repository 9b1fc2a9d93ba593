// Package sequence defines prefixed, monotonically increasing document numbers.
package sequence

import (
	"context"
	"strconv"

	"github.com/erp/vendorledger/internal/domain/shared"
)

// DocumentType keys a document_sequences row.
type DocumentType string

const (
	DocumentTypePurchaseOrder   DocumentType = "PO"
	DocumentTypePurchaseInvoice DocumentType = "PI"
	DocumentTypeDebitNote       DocumentType = "DN"
	DocumentTypePayment         DocumentType = "PAY"
)

// IsValid checks if the document type is known
func (t DocumentType) IsValid() bool {
	switch t {
	case DocumentTypePurchaseOrder, DocumentTypePurchaseInvoice, DocumentTypeDebitNote, DocumentTypePayment:
		return true
	}
	return false
}

// String returns the string representation
func (t DocumentType) String() string {
	return string(t)
}

// DocumentSequence is the per-type counter row.
// CurrentNumber only ever increases; every increment is observed by exactly
// one document number.
type DocumentSequence struct {
	DocumentType  DocumentType
	Prefix        string
	CurrentNumber int64
	IsActive      bool
}

// Number is a minted document number.
type Number struct {
	Prefix string
	Value  int64
}

// String renders prefix followed by the counter value, e.g. "PI-104".
func (n Number) String() string {
	return n.Prefix + strconv.FormatInt(n.Value, 10)
}

// Advance increments the counter and returns the number it now represents.
func (s *DocumentSequence) Advance() (Number, error) {
	if !s.IsActive {
		return Number{}, shared.NewConfigurationError("document sequence %s is not active", s.DocumentType)
	}
	s.CurrentNumber++
	return Number{Prefix: s.Prefix, Value: s.CurrentNumber}, nil
}

// Generator mints document numbers.
//
// Implementations must run inside the caller's transaction and hold an
// exclusive row lock on the sequence row until that transaction ends, so that
// concurrent callers for the same type serialize while different types do not
// block each other. A missing or inactive sequence is a configuration error;
// there is no fallback numbering scheme.
type Generator interface {
	NextNumber(ctx context.Context, documentType DocumentType) (Number, error)
}
