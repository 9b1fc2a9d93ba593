package inventory

import (
	"sort"

	"github.com/erp/vendorledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BatchTake is the quantity planned from one batch.
type BatchTake struct {
	BatchID     uuid.UUID
	BatchNumber string
	Quantity    decimal.Decimal
	MRP         decimal.Decimal
	Rate        decimal.Decimal
}

// MRPGroup merges takes that share an MRP, for invoice row display.
type MRPGroup struct {
	MRP      decimal.Decimal
	Quantity decimal.Decimal
	Batches  []uuid.UUID
}

// ConsumptionPlan is a FIFO preview of which batches would supply a quantity.
type ConsumptionPlan struct {
	ProductID    uuid.UUID
	RequestedQty decimal.Decimal
	Takes        []BatchTake
	Merged       []MRPGroup
	Shortfall    decimal.Decimal
}

// FullyAvailable reports whether the request can be met from stock.
func (p *ConsumptionPlan) FullyAvailable() bool {
	return p.Shortfall.IsZero()
}

// PlanFIFOConsumption selects batches oldest-received first (ties broken by
// creation time) until qty is covered. Nothing is mutated.
func PlanFIFOConsumption(productID uuid.UUID, qty decimal.Decimal, batches []ProductBatch) (*ConsumptionPlan, error) {
	if !qty.IsPositive() {
		return nil, shared.NewValidationError("requested quantity must be positive")
	}

	available := make([]ProductBatch, 0, len(batches))
	for _, b := range batches {
		if b.ProductID == productID && b.IsAvailable() {
			available = append(available, b)
		}
	}
	sort.SliceStable(available, func(i, j int) bool {
		if !available[i].ReceivedDate.Equal(available[j].ReceivedDate) {
			return available[i].ReceivedDate.Before(available[j].ReceivedDate)
		}
		return available[i].CreatedAt.Before(available[j].CreatedAt)
	})

	plan := &ConsumptionPlan{
		ProductID:    productID,
		RequestedQty: qty,
		Takes:        make([]BatchTake, 0),
		Merged:       make([]MRPGroup, 0),
	}
	remaining := qty
	for _, b := range available {
		if !remaining.IsPositive() {
			break
		}
		take := decimal.Min(remaining, b.QtyGood)
		plan.Takes = append(plan.Takes, BatchTake{
			BatchID:     b.ID,
			BatchNumber: b.BatchNumber,
			Quantity:    take,
			MRP:         b.MRP,
			Rate:        b.PurchaseRate,
		})
		remaining = remaining.Sub(take)
	}
	plan.Shortfall = remaining
	plan.Merged = mergeByMRP(plan.Takes)
	return plan, nil
}

func mergeByMRP(takes []BatchTake) []MRPGroup {
	groups := make([]MRPGroup, 0)
	index := make(map[string]int)
	for _, t := range takes {
		key := t.MRP.String()
		i, ok := index[key]
		if !ok {
			groups = append(groups, MRPGroup{MRP: t.MRP, Quantity: decimal.Zero})
			i = len(groups) - 1
			index[key] = i
		}
		groups[i].Quantity = groups[i].Quantity.Add(t.Quantity)
		groups[i].Batches = append(groups[i].Batches, t.BatchID)
	}
	return groups
}
