package handler

import (
	"net/http"
	"testing"

	"github.com/erp/vendorledger/internal/application/procurement"
	"github.com/erp/vendorledger/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestBatchHandler_Plan(t *testing.T) {
	productID := uuid.New()
	batchA, batchB := uuid.New(), uuid.New()

	t.Run("returns takes and merged groups", func(t *testing.T) {
		svc := new(mockBatchService)
		svc.On("PlanConsumption", mock.Anything, productID, mock.MatchedBy(func(q decimal.Decimal) bool {
			return q.Equal(decimal.NewFromInt(15))
		})).Return(&inventory.ConsumptionPlan{
			ProductID:    productID,
			RequestedQty: decimal.NewFromInt(15),
			Takes: []inventory.BatchTake{
				{BatchID: batchA, BatchNumber: "A", Quantity: decimal.NewFromInt(10), MRP: decimal.NewFromInt(120)},
				{BatchID: batchB, BatchNumber: "B", Quantity: decimal.NewFromInt(5), MRP: decimal.NewFromInt(120)},
			},
			Merged: []inventory.MRPGroup{
				{MRP: decimal.NewFromInt(120), Quantity: decimal.NewFromInt(15), Batches: []uuid.UUID{batchA, batchB}},
			},
			Shortfall: decimal.Zero,
		}, nil)

		r := newTestRouter(NewBatchHandler(svc), uuid.Nil)
		w, body := doJSON(t, r, http.MethodGet, "/api/v1/products/"+productID.String()+"/batch-plan?qty=15", nil)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		d := data(t, body)
		assert.Equal(t, true, d["fully_available"])
		assert.Len(t, d["takes"], 2)
		assert.Len(t, d["merged"], 1)
	})

	t.Run("rejects missing qty", func(t *testing.T) {
		svc := new(mockBatchService)
		r := newTestRouter(NewBatchHandler(svc), uuid.Nil)
		w, _ := doJSON(t, r, http.MethodGet, "/api/v1/products/"+productID.String()+"/batch-plan", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "PlanConsumption", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestBatchHandler_MarkDamaged(t *testing.T) {
	batchID := uuid.New()
	svc := new(mockBatchService)
	svc.On("MarkDamaged", mock.Anything, mock.MatchedBy(func(req procurement.MarkBatchDamagedRequest) bool {
		return req.BatchID == batchID && req.Quantity.Equal(decimal.NewFromInt(2))
	})).Return(&procurement.BatchResult{
		BatchID:    batchID,
		InitialQty: decimal.NewFromInt(10),
		QtyGood:    decimal.NewFromInt(8),
		QtyDamaged: decimal.NewFromInt(2),
		IsActive:   true,
	}, nil)

	r := newTestRouter(NewBatchHandler(svc), uuid.Nil)
	w, body := doJSON(t, r, http.MethodPost, "/api/v1/batches/"+batchID.String()+"/damage", map[string]any{"quantity": 2})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	d := data(t, body)
	assert.Equal(t, "8", d["qty_good"])
	assert.Equal(t, "2", d["qty_damaged"])
}
