package procurement

import (
	"errors"

	"github.com/erp/vendorledger/internal/domain/shared"
	"github.com/google/uuid"
)

// referenceError turns a missing referenced document into a validation error.
func referenceError(kind string, id uuid.UUID, err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NewValidationError("%s %s does not exist", kind, id)
	}
	return err
}
