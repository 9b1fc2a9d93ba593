package finance

import (
	"sort"
	"time"

	"github.com/erp/vendorledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AllocationMode selects how a payment is spread over invoices.
type AllocationMode string

const (
	AllocationModeAuto   AllocationMode = "AUTO"   // priority invoice, then FIFO spillover
	AllocationModeManual AllocationMode = "MANUAL" // caller supplied lines
)

// IsValid checks if the mode is valid
func (m AllocationMode) IsValid() bool {
	switch m {
	case AllocationModeAuto, AllocationModeManual:
		return true
	}
	return false
}

// AllocationTarget is a snapshot of an open invoice taken inside the
// allocating transaction.
type AllocationTarget struct {
	InvoiceID     uuid.UUID
	InvoiceNumber string
	VendorID      uuid.UUID
	Balance       decimal.Decimal
	ReceivedDate  time.Time
	CreatedAt     time.Time
}

// Allocation is one planned application of money or credit to an invoice.
type Allocation struct {
	InvoiceID     uuid.UUID
	InvoiceNumber string
	Amount        decimal.Decimal
}

// AllocationPlan is the outcome of an allocation run.
type AllocationPlan struct {
	Allocations     []Allocation
	TotalAllocated  decimal.Decimal
	Unapplied       decimal.Decimal // left as vendor advance / credit
	InvoicesSettled []uuid.UUID
	InvoicesPartial []uuid.UUID
}

func newAllocationPlan(amount decimal.Decimal) *AllocationPlan {
	return &AllocationPlan{
		Allocations:     make([]Allocation, 0),
		TotalAllocated:  decimal.Zero,
		Unapplied:       amount,
		InvoicesSettled: make([]uuid.UUID, 0),
		InvoicesPartial: make([]uuid.UUID, 0),
	}
}

func (p *AllocationPlan) add(target AllocationTarget, amount decimal.Decimal) {
	p.Allocations = append(p.Allocations, Allocation{
		InvoiceID:     target.InvoiceID,
		InvoiceNumber: target.InvoiceNumber,
		Amount:        amount,
	})
	p.TotalAllocated = p.TotalAllocated.Add(amount)
	p.Unapplied = p.Unapplied.Sub(amount)
	if amount.GreaterThanOrEqual(target.Balance) {
		p.InvoicesSettled = append(p.InvoicesSettled, target.InvoiceID)
	} else {
		p.InvoicesPartial = append(p.InvoicesPartial, target.InvoiceID)
	}
}

// SortFIFO orders targets earliest received first, then earliest created.
func SortFIFO(targets []AllocationTarget) []AllocationTarget {
	sorted := make([]AllocationTarget, len(targets))
	copy(sorted, targets)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].ReceivedDate.Equal(sorted[j].ReceivedDate) {
			return sorted[i].ReceivedDate.Before(sorted[j].ReceivedDate)
		}
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})
	return sorted
}

// AllocatePriorityFIFO distributes amount over targets.
//
// The priority invoice (if it is among targets with a positive balance)
// receives min(balance, amount) first. The remainder then spills over the
// other targets in FIFO order while more than MoneyEpsilon is left. Whatever
// cannot be placed stays unapplied; that is not an error.
func AllocatePriorityFIFO(amount decimal.Decimal, priorityInvoiceID uuid.UUID, targets []AllocationTarget) (*AllocationPlan, error) {
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("allocation amount must be positive")
	}
	plan := newAllocationPlan(amount)

	if priorityInvoiceID != uuid.Nil {
		for _, t := range targets {
			if t.InvoiceID == priorityInvoiceID && t.Balance.IsPositive() {
				plan.add(t, decimal.Min(t.Balance, plan.Unapplied))
				break
			}
		}
	}

	for _, t := range SortFIFO(targets) {
		if !shared.AboveEpsilon(plan.Unapplied) {
			break
		}
		if t.InvoiceID == priorityInvoiceID || !t.Balance.IsPositive() {
			continue
		}
		plan.add(t, decimal.Min(t.Balance, plan.Unapplied))
	}
	return plan, nil
}

// ManualAllocation is a caller supplied allocation line.
type ManualAllocation struct {
	InvoiceID uuid.UUID
	Amount    decimal.Decimal
}

// TotalManual sums manual allocation lines.
func TotalManual(lines []ManualAllocation) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Amount)
	}
	return total
}

// ValidateManualTotal rejects lines whose sum exceeds amount + MoneyEpsilon.
func ValidateManualTotal(amount decimal.Decimal, lines []ManualAllocation) error {
	total := TotalManual(lines)
	if shared.ExceedsWithTolerance(total, amount) {
		return shared.NewOverAllocationError("allocations total %s exceeds amount %s", total.StringFixed(2), amount.StringFixed(2))
	}
	return nil
}

// AllocateManual turns manual lines into a plan. Every line must be positive
// and target one of targets (same vendor, open). The sum may not exceed
// amount + MoneyEpsilon and no invoice may receive more than its balance
// + MoneyEpsilon.
func AllocateManual(amount decimal.Decimal, lines []ManualAllocation, targets []AllocationTarget) (*AllocationPlan, error) {
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("allocation amount must be positive")
	}
	if err := ValidateManualTotal(amount, lines); err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]AllocationTarget, len(targets))
	for _, t := range targets {
		byID[t.InvoiceID] = t
	}
	applied := make(map[uuid.UUID]decimal.Decimal, len(lines))

	plan := newAllocationPlan(amount)
	for _, l := range lines {
		if !l.Amount.IsPositive() {
			return nil, shared.NewValidationError("allocation amount for invoice %s must be positive", l.InvoiceID)
		}
		t, ok := byID[l.InvoiceID]
		if !ok {
			return nil, shared.NewValidationError("invoice %s is not open for this vendor", l.InvoiceID)
		}
		sum := applied[l.InvoiceID].Add(l.Amount)
		if shared.ExceedsWithTolerance(sum, t.Balance) {
			return nil, shared.NewOverAllocationError("allocation %s exceeds balance %s of invoice %s",
				sum.StringFixed(2), t.Balance.StringFixed(2), t.InvoiceNumber)
		}
		applied[l.InvoiceID] = sum
		remainingOnTarget := t
		remainingOnTarget.Balance = t.Balance.Sub(sum.Sub(l.Amount))
		plan.add(remainingOnTarget, l.Amount)
	}
	return plan, nil
}

// CheckSumInvariant verifies allocations never exceed the source amount.
func CheckSumInvariant(amount decimal.Decimal, allocations []Allocation) error {
	total := decimal.Zero
	for _, a := range allocations {
		total = total.Add(a.Amount)
	}
	if shared.ExceedsWithTolerance(total, amount) {
		return shared.NewOverAllocationError("allocations total %s exceeds amount %s", total.StringFixed(2), amount.StringFixed(2))
	}
	return nil
}
