package procurement

import (
	"context"
	"errors"

	"github.com/erp/vendorledger/internal/domain/partner"
	"github.com/erp/vendorledger/internal/domain/shared"
	"github.com/google/uuid"
)

// requireVendor loads an active vendor. Unknown vendors are input errors,
// not lookups the caller asked for, so they surface as validation errors.
func requireVendor(ctx context.Context, repo partner.VendorRepository, vendorID uuid.UUID) (*partner.Vendor, error) {
	if vendorID == uuid.Nil {
		return nil, shared.NewValidationError("vendor is required")
	}
	vendor, err := repo.FindByID(ctx, vendorID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewValidationError("vendor %s does not exist", vendorID)
		}
		return nil, err
	}
	if err := vendor.EnsureTransactable(); err != nil {
		return nil, err
	}
	return vendor, nil
}
