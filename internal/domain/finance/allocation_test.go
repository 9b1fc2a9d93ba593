package finance

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/erp/vendorledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fixture struct {
	invA, invB AllocationTarget
}

func newFixture() fixture {
	vendor := uuid.New()
	now := time.Now()
	return fixture{
		invA: AllocationTarget{
			InvoiceID:     uuid.New(),
			InvoiceNumber: "PI-1",
			VendorID:      vendor,
			Balance:       d("300"),
			ReceivedDate:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			CreatedAt:     now,
		},
		invB: AllocationTarget{
			InvoiceID:     uuid.New(),
			InvoiceNumber: "PI-2",
			VendorID:      vendor,
			Balance:       d("200"),
			ReceivedDate:  time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			CreatedAt:     now.Add(-time.Hour),
		},
	}
}

func amountFor(plan *AllocationPlan, invoiceID uuid.UUID) decimal.Decimal {
	total := decimal.Zero
	for _, a := range plan.Allocations {
		if a.InvoiceID == invoiceID {
			total = total.Add(a.Amount)
		}
	}
	return total
}

func TestSortFIFO(t *testing.T) {
	f := newFixture()
	sorted := SortFIFO([]AllocationTarget{f.invB, f.invA})
	assert.Equal(t, f.invA.InvoiceID, sorted[0].InvoiceID)
	assert.Equal(t, f.invB.InvoiceID, sorted[1].InvoiceID)

	sameDay := f.invB
	sameDay.InvoiceID = uuid.New()
	sameDay.ReceivedDate = f.invA.ReceivedDate
	sameDay.CreatedAt = f.invA.CreatedAt.Add(-time.Minute)
	sorted = SortFIFO([]AllocationTarget{f.invA, sameDay})
	assert.Equal(t, sameDay.InvoiceID, sorted[0].InvoiceID)
}

func TestAllocatePriorityFIFO_Spillover(t *testing.T) {
	f := newFixture()

	plan, err := AllocatePriorityFIFO(d("400"), uuid.Nil, []AllocationTarget{f.invB, f.invA})
	require.NoError(t, err)

	require.Len(t, plan.Allocations, 2)
	assert.Equal(t, f.invA.InvoiceID, plan.Allocations[0].InvoiceID)
	assert.Equal(t, "300.00", plan.Allocations[0].Amount.StringFixed(2))
	assert.Equal(t, f.invB.InvoiceID, plan.Allocations[1].InvoiceID)
	assert.Equal(t, "100.00", plan.Allocations[1].Amount.StringFixed(2))
	assert.True(t, plan.Unapplied.IsZero())
	assert.Equal(t, []uuid.UUID{f.invA.InvoiceID}, plan.InvoicesSettled)
	assert.Equal(t, []uuid.UUID{f.invB.InvoiceID}, plan.InvoicesPartial)

	// Remaining balances: A 0, B 100.
	assert.True(t, f.invA.Balance.Sub(amountFor(plan, f.invA.InvoiceID)).IsZero())
	assert.Equal(t, "100.00", f.invB.Balance.Sub(amountFor(plan, f.invB.InvoiceID)).StringFixed(2))
}

func TestAllocatePriorityFIFO_PriorityFirst(t *testing.T) {
	tests := []struct {
		name      string
		amount    string
		wantB     string
		wantA     string
		unapplied string
	}{
		{"400 linked to B", "400", "200.00", "200.00", "0.00"},
		{"300 linked to B", "300", "200.00", "100.00", "0.00"},
		{"exact total of both balances", "500", "200.00", "300.00", "0.00"},
		{"one cent above total", "500.01", "200.00", "300.00", "0.01"},
		{"one cent below total", "499.99", "200.00", "299.99", "0.00"},
		{"exact priority balance", "200", "200.00", "0.00", "0.00"},
		{"priority balance plus epsilon stays unapplied", "200.01", "200.00", "0.00", "0.01"},
		{"priority balance plus two cents spills", "200.02", "200.00", "0.02", "0.00"},
		{"below priority balance", "199.99", "199.99", "0.00", "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			plan, err := AllocatePriorityFIFO(d(tt.amount), f.invB.InvoiceID, []AllocationTarget{f.invA, f.invB})
			require.NoError(t, err)

			require.NotEmpty(t, plan.Allocations)
			assert.Equal(t, f.invB.InvoiceID, plan.Allocations[0].InvoiceID)
			assert.Equal(t, tt.wantB, amountFor(plan, f.invB.InvoiceID).StringFixed(2))
			assert.Equal(t, tt.wantA, amountFor(plan, f.invA.InvoiceID).StringFixed(2))
			assert.Equal(t, tt.unapplied, plan.Unapplied.StringFixed(2))
			assert.True(t, plan.TotalAllocated.Add(plan.Unapplied).Equal(d(tt.amount)))
		})
	}
}

func TestAllocatePriorityFIFO_PriorityNotOpen(t *testing.T) {
	f := newFixture()
	closed := f.invB
	closed.Balance = decimal.Zero

	plan, err := AllocatePriorityFIFO(d("100"), closed.InvoiceID, []AllocationTarget{f.invA, closed})
	require.NoError(t, err)
	require.Len(t, plan.Allocations, 1)
	assert.Equal(t, f.invA.InvoiceID, plan.Allocations[0].InvoiceID)

	plan, err = AllocatePriorityFIFO(d("100"), uuid.New(), []AllocationTarget{f.invA})
	require.NoError(t, err)
	require.Len(t, plan.Allocations, 1)
	assert.Equal(t, f.invA.InvoiceID, plan.Allocations[0].InvoiceID)
}

func TestAllocatePriorityFIFO_NoOpenInvoicesIsAdvance(t *testing.T) {
	plan, err := AllocatePriorityFIFO(d("250"), uuid.Nil, nil)
	require.NoError(t, err)
	assert.Empty(t, plan.Allocations)
	assert.Equal(t, "250.00", plan.Unapplied.StringFixed(2))
}

func TestAllocatePriorityFIFO_RejectsNonPositive(t *testing.T) {
	_, err := AllocatePriorityFIFO(decimal.Zero, uuid.Nil, nil)
	assert.True(t, errors.Is(err, shared.ErrValidation))
	_, err = AllocatePriorityFIFO(d("-1"), uuid.Nil, nil)
	assert.True(t, errors.Is(err, shared.ErrValidation))
}

func TestAllocatePriorityFIFO_SumInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 200; i++ {
		n := rng.Intn(6)
		targets := make([]AllocationTarget, 0, n)
		for j := 0; j < n; j++ {
			targets = append(targets, AllocationTarget{
				InvoiceID:    uuid.New(),
				Balance:      decimal.New(rng.Int63n(100000), -2),
				ReceivedDate: base.AddDate(0, 0, rng.Intn(30)),
				CreatedAt:    base,
			})
		}
		amount := decimal.New(rng.Int63n(200000)+1, -2)
		priority := uuid.Nil
		if n > 0 && rng.Intn(2) == 0 {
			priority = targets[rng.Intn(n)].InvoiceID
		}

		plan, err := AllocatePriorityFIFO(amount, priority, targets)
		require.NoError(t, err)
		assert.False(t, shared.ExceedsWithTolerance(plan.TotalAllocated, amount))
		require.NoError(t, CheckSumInvariant(amount, plan.Allocations))

		balances := make(map[uuid.UUID]decimal.Decimal, n)
		for _, tgt := range targets {
			balances[tgt.InvoiceID] = tgt.Balance
		}
		for _, a := range plan.Allocations {
			assert.True(t, balances[a.InvoiceID].IsPositive(), "allocated to an invoice without balance")
			assert.True(t, a.Amount.IsPositive())
			assert.True(t, a.Amount.LessThanOrEqual(balances[a.InvoiceID]))
		}
	}
}

func TestAllocateManual(t *testing.T) {
	f := newFixture()
	targets := []AllocationTarget{f.invA, f.invB}

	t.Run("within amount", func(t *testing.T) {
		plan, err := AllocateManual(d("100"), []ManualAllocation{
			{InvoiceID: f.invB.InvoiceID, Amount: d("60")},
			{InvoiceID: f.invA.InvoiceID, Amount: d("40")},
		}, targets)
		require.NoError(t, err)
		require.Len(t, plan.Allocations, 2)
		assert.Equal(t, f.invB.InvoiceID, plan.Allocations[0].InvoiceID)
		assert.True(t, plan.Unapplied.IsZero())
	})

	t.Run("epsilon tolerance accepted", func(t *testing.T) {
		_, err := AllocateManual(d("100"), []ManualAllocation{
			{InvoiceID: f.invB.InvoiceID, Amount: d("60")},
			{InvoiceID: f.invA.InvoiceID, Amount: d("40.01")},
		}, targets)
		require.NoError(t, err)
	})

	t.Run("over allocation rejected", func(t *testing.T) {
		_, err := AllocateManual(d("100"), []ManualAllocation{
			{InvoiceID: f.invB.InvoiceID, Amount: d("60")},
			{InvoiceID: f.invA.InvoiceID, Amount: d("40.02")},
		}, targets)
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrOverAllocation))
	})

	t.Run("invoice balance exceeded", func(t *testing.T) {
		_, err := AllocateManual(d("1000"), []ManualAllocation{
			{InvoiceID: f.invB.InvoiceID, Amount: d("150")},
			{InvoiceID: f.invB.InvoiceID, Amount: d("50.02")},
		}, targets)
		assert.True(t, errors.Is(err, shared.ErrOverAllocation))
	})

	t.Run("unknown invoice", func(t *testing.T) {
		_, err := AllocateManual(d("100"), []ManualAllocation{{InvoiceID: uuid.New(), Amount: d("10")}}, targets)
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("non-positive line", func(t *testing.T) {
		_, err := AllocateManual(d("100"), []ManualAllocation{{InvoiceID: f.invA.InvoiceID, Amount: decimal.Zero}}, targets)
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})
}
