package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/erp/vendorledger/internal/domain/sequence"
	"github.com/erp/vendorledger/internal/domain/shared"
	"github.com/erp/vendorledger/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSequenceRepository mints document numbers from document_sequences.
type GormSequenceRepository struct {
	db *gorm.DB
}

// NewGormSequenceRepository creates a GormSequenceRepository. db must be a
// transaction handle; the row lock taken by NextNumber lasts until it ends.
func NewGormSequenceRepository(db *gorm.DB) *GormSequenceRepository {
	return &GormSequenceRepository{db: db}
}

// NextNumber locks the sequence row, increments it and returns the new number.
func (r *GormSequenceRepository) NextNumber(ctx context.Context, documentType sequence.DocumentType) (sequence.Number, error) {
	if !documentType.IsValid() {
		return sequence.Number{}, shared.NewConfigurationError("unknown document type %q", documentType)
	}

	var row models.DocumentSequenceModel
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("document_type = ?", documentType.String()).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return sequence.Number{}, shared.NewConfigurationError("no document sequence configured for %s", documentType)
		}
		return sequence.Number{}, translateError(err, "lock document sequence")
	}

	seq := row.ToDomain()
	number, err := seq.Advance()
	if err != nil {
		return sequence.Number{}, err
	}

	err = r.db.WithContext(ctx).
		Model(&models.DocumentSequenceModel{}).
		Where("document_type = ?", documentType.String()).
		Updates(map[string]any{"current_number": seq.CurrentNumber, "updated_at": time.Now()}).Error
	if err != nil {
		return sequence.Number{}, translateError(err, "advance document sequence")
	}
	return number, nil
}

var _ sequence.Generator = (*GormSequenceRepository)(nil)
