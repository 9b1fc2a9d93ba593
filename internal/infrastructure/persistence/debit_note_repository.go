package persistence

import (
	"context"

	"github.com/erp/vendorledger/internal/domain/finance"
	"github.com/erp/vendorledger/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormDebitNoteRepository implements DebitNoteRepository using GORM
type GormDebitNoteRepository struct {
	db *gorm.DB
}

// NewGormDebitNoteRepository creates a new GormDebitNoteRepository
func NewGormDebitNoteRepository(db *gorm.DB) *GormDebitNoteRepository {
	return &GormDebitNoteRepository{db: db}
}

// Create inserts the header, its lines and its allocations.
func (r *GormDebitNoteRepository) Create(ctx context.Context, note *finance.DebitNote) error {
	row := models.DebitNoteModelFromDomain(note)
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(row).Error; err != nil {
		return translateError(err, "create debit note")
	}
	if len(row.Lines) > 0 {
		if err := db.Create(&row.Lines).Error; err != nil {
			return translateError(err, "create debit note lines")
		}
	}
	if len(row.Allocations) > 0 {
		if err := db.Create(&row.Allocations).Error; err != nil {
			return translateError(err, "create debit note allocations")
		}
	}
	return nil
}

// FindByID loads a debit note with lines and allocations.
func (r *GormDebitNoteRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.DebitNote, error) {
	var row models.DebitNoteModel
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Preload("Allocations").
		Where("id = ?", id).
		Take(&row).Error
	if err != nil {
		return nil, translateError(err, "find debit note")
	}
	return row.ToDomain(), nil
}

var _ finance.DebitNoteRepository = (*GormDebitNoteRepository)(nil)
