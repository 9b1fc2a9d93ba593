package procurement

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/vendorledger/internal/domain/sequence"
	"github.com/erp/vendorledger/internal/domain/shared"
	"github.com/erp/vendorledger/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func orderLines() []PurchaseOrderLineRequest {
	return []PurchaseOrderLineRequest{{
		ProductID:       uuid.New(),
		ProductName:     "Amoxicillin 500",
		Quantity:        dec("10"),
		Price:           dec("12.345"),
		SchemeAmount:    dec("5"),
		DiscountPercent: dec("7.5"),
		TaxPercent:      dec("12"),
	}}
}

func TestPurchaseOrderService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("totals are computed server side", func(t *testing.T) {
		repos := newRepoMocks()
		vendor := repos.activeVendor()
		repos.seq.On("NextNumber", mock.Anything, sequence.DocumentTypePurchaseOrder).Return(number("GD-CLT-PO-26-", 12), nil)
		repos.orders.On("Create", mock.Anything, mock.AnythingOfType("*trade.PurchaseOrder")).Return(nil)

		svc := NewPurchaseOrderService(repos.scope(), zap.NewNop())
		res, err := svc.Create(ctx, CreatePurchaseOrderRequest{VendorID: vendor.ID, Lines: orderLines()})

		require.NoError(t, err)
		assert.Equal(t, "GD-CLT-PO-26-12", res.PONumber)
		assert.Equal(t, trade.PurchaseOrderStatusDraft, res.Status)
		assert.Equal(t, 1, res.LinesCount)
		assert.True(t, res.Totals.GrandTotal.Equal(dec("122.72")), res.Totals.GrandTotal.String())
	})

	t.Run("bad line never reaches the database", func(t *testing.T) {
		repos := newRepoMocks()
		lines := orderLines()
		lines[0].Quantity = dec("0")

		svc := NewPurchaseOrderService(repos.scope(), zap.NewNop())
		_, err := svc.Create(ctx, CreatePurchaseOrderRequest{VendorID: uuid.New(), Lines: lines})

		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrValidation))
		repos.vendors.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})
}

func TestPurchaseOrderService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("draft order is repriced", func(t *testing.T) {
		repos := newRepoMocks()
		vendor := repos.activeVendor()
		po, err := trade.NewPurchaseOrder("PO-1", vendor.ID, "", toOrderLineInputs(orderLines()))
		require.NoError(t, err)
		repos.orders.On("FindByIDForUpdate", mock.Anything, po.ID).Return(po, nil)
		repos.orders.On("Update", mock.Anything, po).Return(nil)

		lines := orderLines()
		lines[0].Quantity = dec("20")
		svc := NewPurchaseOrderService(repos.scope(), zap.NewNop())
		res, err := svc.Update(ctx, UpdatePurchaseOrderRequest{PurchaseOrderID: po.ID, VendorID: vendor.ID, Remarks: "revised", Lines: lines})

		require.NoError(t, err)
		assert.True(t, res.Totals.TotalQuantity.Equal(dec("20")))
		assert.Equal(t, "revised", po.Remarks)
	})

	t.Run("received order cannot change", func(t *testing.T) {
		repos := newRepoMocks()
		vendor := repos.activeVendor()
		po, err := trade.NewPurchaseOrder("PO-1", vendor.ID, "", toOrderLineInputs(orderLines()))
		require.NoError(t, err)
		po.MarkReceived()
		repos.orders.On("FindByIDForUpdate", mock.Anything, po.ID).Return(po, nil)

		svc := NewPurchaseOrderService(repos.scope(), zap.NewNop())
		_, err = svc.Update(ctx, UpdatePurchaseOrderRequest{PurchaseOrderID: po.ID, VendorID: vendor.ID, Lines: orderLines()})

		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrInvalidState))
		repos.orders.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}
