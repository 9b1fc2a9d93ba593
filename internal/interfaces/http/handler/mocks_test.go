package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/erp/vendorledger/internal/application/procurement"
	"github.com/erp/vendorledger/internal/domain/finance"
	"github.com/erp/vendorledger/internal/domain/inventory"
	"github.com/erp/vendorledger/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPurchaseOrderService struct{ mock.Mock }

func (m *mockPurchaseOrderService) Create(ctx context.Context, req procurement.CreatePurchaseOrderRequest) (*procurement.PurchaseOrderResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurement.PurchaseOrderResult), args.Error(1)
}

func (m *mockPurchaseOrderService) Update(ctx context.Context, req procurement.UpdatePurchaseOrderRequest) (*procurement.PurchaseOrderResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurement.PurchaseOrderResult), args.Error(1)
}

type mockPurchaseInvoiceService struct{ mock.Mock }

func (m *mockPurchaseInvoiceService) Create(ctx context.Context, req procurement.CreatePurchaseInvoiceRequest) (*procurement.PurchaseInvoiceResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurement.PurchaseInvoiceResult), args.Error(1)
}

type mockReversalService struct{ mock.Mock }

func (m *mockReversalService) CanReverse(ctx context.Context, invoiceID uuid.UUID) (bool, error) {
	args := m.Called(ctx, invoiceID)
	return args.Bool(0), args.Error(1)
}

func (m *mockReversalService) Reverse(ctx context.Context, req procurement.ReverseInvoiceRequest) (*procurement.ReverseInvoiceResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurement.ReverseInvoiceResult), args.Error(1)
}

type mockPaymentService struct{ mock.Mock }

func (m *mockPaymentService) RecordPayment(ctx context.Context, req procurement.RecordPaymentRequest) (*procurement.RecordPaymentResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurement.RecordPaymentResult), args.Error(1)
}

type mockDebitNoteService struct{ mock.Mock }

func (m *mockDebitNoteService) Create(ctx context.Context, req procurement.CreateDebitNoteRequest) (*procurement.DebitNoteResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurement.DebitNoteResult), args.Error(1)
}

type mockLedgerReader struct{ mock.Mock }

func (m *mockLedgerReader) GetVendorLedger(ctx context.Context, vendorID uuid.UUID) ([]finance.LedgerEntry, error) {
	args := m.Called(ctx, vendorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]finance.LedgerEntry), args.Error(1)
}

func (m *mockLedgerReader) GetVendorStatement(ctx context.Context, vendorID uuid.UUID) (*procurement.VendorStatement, error) {
	args := m.Called(ctx, vendorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurement.VendorStatement), args.Error(1)
}

func (m *mockLedgerReader) ListOpenInvoices(ctx context.Context, vendorID uuid.UUID) ([]procurement.InvoiceBalanceResult, error) {
	args := m.Called(ctx, vendorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]procurement.InvoiceBalanceResult), args.Error(1)
}

func (m *mockLedgerReader) GetInvoiceBalance(ctx context.Context, invoiceID uuid.UUID) (*procurement.InvoiceBalanceResult, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurement.InvoiceBalanceResult), args.Error(1)
}

type mockBatchService struct{ mock.Mock }

func (m *mockBatchService) PlanConsumption(ctx context.Context, productID uuid.UUID, qty decimal.Decimal) (*inventory.ConsumptionPlan, error) {
	args := m.Called(ctx, productID, qty)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.ConsumptionPlan), args.Error(1)
}

func (m *mockBatchService) MarkDamaged(ctx context.Context, req procurement.MarkBatchDamagedRequest) (*procurement.BatchResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurement.BatchResult), args.Error(1)
}

type registrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// newTestRouter mounts h under /api/v1. A non-nil userID is installed the
// way JWTAuth does.
func newTestRouter(h registrar, userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
	r := gin.New()
	r.Use(middleware.RequestID())
	if userID != uuid.Nil {
		r.Use(func(c *gin.Context) {
			c.Set(middleware.JWTUserIDKey, userID.String())
			c.Next()
		})
	}
	h.RegisterRoutes(r.Group("/api/v1"))
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any, headers ...string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return w, out
}

func errorCode(t *testing.T, body map[string]any) string {
	t.Helper()
	errInfo, ok := body["error"].(map[string]any)
	require.True(t, ok, "response has no error object")
	return errInfo["code"].(string)
}

func data(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	d, ok := body["data"].(map[string]any)
	require.True(t, ok, "response data is not an object")
	return d
}
