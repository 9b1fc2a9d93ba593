package finance

import (
	"errors"
	"testing"

	"github.com/erp/vendorledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVendorPayment(t *testing.T) {
	p, err := NewVendorPayment(NewVendorPaymentParams{VendorID: uuid.New(), Amount: d("250.005"), Mode: "NEFT"})
	require.NoError(t, err)
	assert.Equal(t, TransactionTypePayment, p.TransactionType)
	assert.Equal(t, "250.01", p.Amount.StringFixed(2))
	assert.False(t, p.PaymentDate.IsZero())

	_, err = NewVendorPayment(NewVendorPaymentParams{Amount: d("1")})
	assert.True(t, errors.Is(err, shared.ErrValidation))

	_, err = NewVendorPayment(NewVendorPaymentParams{VendorID: uuid.New(), Amount: decimal.Zero})
	assert.True(t, errors.Is(err, shared.ErrValidation))

	_, err = NewVendorPayment(NewVendorPaymentParams{VendorID: uuid.New(), Amount: d("1"), TransactionType: "CHARGEBACK"})
	assert.True(t, errors.Is(err, shared.ErrValidation))
}

func TestVendorPayment_ApplyPlan(t *testing.T) {
	f := newFixture()
	p, err := NewVendorPayment(NewVendorPaymentParams{VendorID: f.invA.VendorID, Amount: d("350")})
	require.NoError(t, err)

	plan, err := AllocatePriorityFIFO(p.Amount, uuid.Nil, []AllocationTarget{f.invA, f.invB})
	require.NoError(t, err)
	require.NoError(t, p.ApplyPlan(plan))

	require.Len(t, p.Allocations, 2)
	for _, a := range p.Allocations {
		assert.Equal(t, p.ID, a.PaymentID)
	}
	assert.Equal(t, "350.00", p.AllocatedTotal().StringFixed(2))
	assert.True(t, p.Unapplied().IsZero())

	t.Run("refund does not allocate", func(t *testing.T) {
		r, err := NewVendorPayment(NewVendorPaymentParams{VendorID: uuid.New(), Amount: d("10"), TransactionType: TransactionTypeRefund})
		require.NoError(t, err)
		err = r.ApplyPlan(&AllocationPlan{Allocations: []Allocation{{InvoiceID: uuid.New(), Amount: d("10")}}})
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("over allocated plan rejected", func(t *testing.T) {
		q, err := NewVendorPayment(NewVendorPaymentParams{VendorID: uuid.New(), Amount: d("10")})
		require.NoError(t, err)
		err = q.ApplyPlan(&AllocationPlan{Allocations: []Allocation{{InvoiceID: uuid.New(), Amount: d("10.02")}}})
		assert.True(t, errors.Is(err, shared.ErrOverAllocation))
		assert.Empty(t, q.Allocations)
	})
}

func TestBankAccount_Apply(t *testing.T) {
	acct := &BankAccount{ID: uuid.New(), AccountName: "HDFC Current", CurrentBalance: d("1000"), IsActive: true}

	require.NoError(t, acct.Apply(TransactionTypePayment, d("250")))
	assert.Equal(t, "750.00", acct.CurrentBalance.StringFixed(2))

	require.NoError(t, acct.Apply(TransactionTypeRefund, d("50")))
	assert.Equal(t, "800.00", acct.CurrentBalance.StringFixed(2))

	acct.IsActive = false
	assert.True(t, errors.Is(acct.Apply(TransactionTypePayment, d("1")), shared.ErrValidation))
}

func TestNewDebitNote(t *testing.T) {
	linked := uuid.New()
	dn, err := NewDebitNote(NewDebitNoteParams{
		DebitNoteNumber: "DN-7",
		VendorID:        uuid.New(),
		Amount:          d("120"),
		Reason:          " damaged ",
		LinkedInvoiceID: &linked,
		Lines: []DebitNoteLineInput{
			{ProductID: uuid.New(), BatchNumber: "B1", Quantity: d("4"), Rate: d("30")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, DebitNoteStatusApproved, dn.Status)
	assert.Equal(t, "damaged", dn.Reason)
	assert.Equal(t, linked, dn.PriorityInvoiceID())
	require.Len(t, dn.Lines, 1)
	assert.Equal(t, "120.00", dn.Lines[0].Amount.StringFixed(2))

	_, err = NewDebitNote(NewDebitNoteParams{VendorID: uuid.New(), Amount: d("-5")})
	assert.True(t, errors.Is(err, shared.ErrValidation))
}
