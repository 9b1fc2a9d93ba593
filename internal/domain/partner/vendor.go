package partner

import (
	"context"
	"strings"

	"github.com/erp/vendorledger/internal/domain/shared"
	"github.com/google/uuid"
)

// Vendor is the root aggregate for ledger purposes. Invoices, payments and
// debit notes reference it by ID. Vendors are never deleted, only deactivated.
type Vendor struct {
	shared.BaseEntity
	Code          string
	Name          string
	GSTIN         string
	BankName      string
	AccountNumber string
	IFSC          string
	IsActive      bool
}

// NewVendor creates an active vendor.
func NewVendor(code, name string) (*Vendor, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("vendor name is required")
	}
	return &Vendor{
		BaseEntity: shared.NewBaseEntity(),
		Code:       strings.ToUpper(strings.TrimSpace(code)),
		Name:       name,
		IsActive:   true,
	}, nil
}

// EnsureTransactable rejects inactive vendors for new financial documents.
func (v *Vendor) EnsureTransactable() error {
	if !v.IsActive {
		return shared.NewValidationError("vendor %s is inactive", v.Code)
	}
	return nil
}

// Deactivate hides the vendor from new documents; history is kept.
func (v *Vendor) Deactivate() {
	v.IsActive = false
	v.Touch()
}

// VendorRepository defines the interface for vendor persistence
type VendorRepository interface {
	// FindByID finds a vendor by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Vendor, error)
}
