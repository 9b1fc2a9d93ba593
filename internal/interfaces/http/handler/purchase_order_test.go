package handler

import (
	"net/http"
	"testing"

	"github.com/erp/vendorledger/internal/application/procurement"
	"github.com/erp/vendorledger/internal/domain/shared"
	"github.com/erp/vendorledger/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPurchaseOrderHandler_Create(t *testing.T) {
	vendorID := uuid.New()
	productID := uuid.New()

	t.Run("creates a draft order", func(t *testing.T) {
		svc := new(mockPurchaseOrderService)
		svc.On("Create", mock.Anything, mock.MatchedBy(func(req procurement.CreatePurchaseOrderRequest) bool {
			return req.VendorID == vendorID && len(req.Lines) == 1 &&
				req.Lines[0].ProductID == productID &&
				req.Lines[0].Quantity.Equal(decimal.NewFromInt(10)) &&
				req.Lines[0].DiscountPercent.Equal(decimal.RequireFromString("2.5"))
		})).Return(&procurement.PurchaseOrderResult{
			ID:         uuid.New(),
			PONumber:   "PO-7",
			Status:     trade.PurchaseOrderStatusDraft,
			LinesCount: 1,
			Totals:     trade.PurchaseOrderTotals{GrandTotal: decimal.RequireFromString("487.50")},
		}, nil)

		r := newTestRouter(NewPurchaseOrderHandler(svc), uuid.Nil)
		w, body := doJSON(t, r, http.MethodPost, "/api/v1/purchase-orders", map[string]any{
			"vendor_id": vendorID,
			"lines": []map[string]any{{
				"product_id":       productID,
				"quantity":         10,
				"price":            50,
				"discount_percent": 2.5,
			}},
		})

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		d := data(t, body)
		assert.Equal(t, "PO-7", d["po_number"])
		assert.Equal(t, "487.5", d["grand_total"])
		svc.AssertExpectations(t)
	})

	t.Run("rejects missing lines", func(t *testing.T) {
		svc := new(mockPurchaseOrderService)
		r := newTestRouter(NewPurchaseOrderHandler(svc), uuid.Nil)
		w, body := doJSON(t, r, http.MethodPost, "/api/v1/purchase-orders", map[string]any{
			"vendor_id": vendorID,
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, shared.CodeValidation, errorCode(t, body))
		svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		svc := new(mockPurchaseOrderService)
		r := newTestRouter(NewPurchaseOrderHandler(svc), uuid.Nil)
		w, body := doJSON(t, r, http.MethodPost, "/api/v1/purchase-orders", map[string]any{
			"vendor_id": vendorID,
			"lines":     []map[string]any{{"product_id": productID, "quantity": 0, "price": 5}},
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		details := body["error"].(map[string]any)["details"].([]any)
		require.Len(t, details, 1)
		assert.Equal(t, "quantity", details[0].(map[string]any)["field"])
	})

	t.Run("malformed json", func(t *testing.T) {
		r := newTestRouter(NewPurchaseOrderHandler(new(mockPurchaseOrderService)), uuid.Nil)
		w, body := doJSON(t, r, http.MethodPost, "/api/v1/purchase-orders", "{not json")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "BAD_REQUEST", errorCode(t, body))
	})
}

func TestPurchaseOrderHandler_Update(t *testing.T) {
	vendorID := uuid.New()
	orderID := uuid.New()
	body := map[string]any{
		"vendor_id": vendorID,
		"lines":     []map[string]any{{"product_id": uuid.New(), "quantity": 1, "price": 5}},
	}

	t.Run("received order is invalid state", func(t *testing.T) {
		svc := new(mockPurchaseOrderService)
		svc.On("Update", mock.Anything, mock.MatchedBy(func(req procurement.UpdatePurchaseOrderRequest) bool {
			return req.PurchaseOrderID == orderID
		})).Return(nil, shared.NewInvalidStateError("purchase order is RECEIVED"))

		r := newTestRouter(NewPurchaseOrderHandler(svc), uuid.Nil)
		w, resp := doJSON(t, r, http.MethodPut, "/api/v1/purchase-orders/"+orderID.String(), body)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, shared.CodeInvalidState, errorCode(t, resp))
	})

	t.Run("bad id", func(t *testing.T) {
		r := newTestRouter(NewPurchaseOrderHandler(new(mockPurchaseOrderService)), uuid.Nil)
		w, _ := doJSON(t, r, http.MethodPut, "/api/v1/purchase-orders/not-a-uuid", body)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
