package persistence

import (
	"context"

	"github.com/erp/vendorledger/internal/domain/finance"
	"github.com/erp/vendorledger/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// Create inserts the payment then its allocations.
func (r *GormPaymentRepository) Create(ctx context.Context, payment *finance.VendorPayment) error {
	row := models.VendorPaymentModelFromDomain(payment)
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(row).Error; err != nil {
		return translateError(err, "create vendor payment")
	}
	if len(row.Allocations) > 0 {
		if err := db.Create(&row.Allocations).Error; err != nil {
			return translateError(err, "create payment allocations")
		}
	}
	return nil
}

// FindByID loads a payment with its allocations.
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.VendorPayment, error) {
	var row models.VendorPaymentModel
	if err := r.db.WithContext(ctx).Preload("Allocations").Where("id = ?", id).Take(&row).Error; err != nil {
		return nil, translateError(err, "find vendor payment")
	}
	return row.ToDomain(), nil
}

var _ finance.PaymentRepository = (*GormPaymentRepository)(nil)
