package finance

import (
	"github.com/erp/vendorledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BankAccount is the company account a payment moves money through.
// Only its running balance is managed here.
type BankAccount struct {
	ID             uuid.UUID
	AccountName    string
	CurrentBalance decimal.Decimal
	IsActive       bool
}

// Apply moves the balance for a payment: PAYMENT decreases it, REFUND
// increases it.
func (a *BankAccount) Apply(txType TransactionType, amount decimal.Decimal) error {
	if !a.IsActive {
		return shared.NewValidationError("bank account %s is not active", a.AccountName)
	}
	if !amount.IsPositive() {
		return shared.NewValidationError("amount must be positive")
	}
	switch txType {
	case TransactionTypePayment:
		a.CurrentBalance = a.CurrentBalance.Sub(amount)
	case TransactionTypeRefund:
		a.CurrentBalance = a.CurrentBalance.Add(amount)
	default:
		return shared.NewValidationError("unknown transaction type %q", txType)
	}
	return nil
}
