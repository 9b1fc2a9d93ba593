package handler

import (
	"context"

	"github.com/erp/vendorledger/internal/application/procurement"
	"github.com/erp/vendorledger/internal/interfaces/http/dto"
	"github.com/erp/vendorledger/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PurchaseInvoiceService records goods receipts.
type PurchaseInvoiceService interface {
	Create(ctx context.Context, req procurement.CreatePurchaseInvoiceRequest) (*procurement.PurchaseInvoiceResult, error)
}

// ReversalService reverses goods receipts.
type ReversalService interface {
	CanReverse(ctx context.Context, invoiceID uuid.UUID) (bool, error)
	Reverse(ctx context.Context, req procurement.ReverseInvoiceRequest) (*procurement.ReverseInvoiceResult, error)
}

// InvoiceBalanceReader computes an invoice balance.
type InvoiceBalanceReader interface {
	GetInvoiceBalance(ctx context.Context, invoiceID uuid.UUID) (*procurement.InvoiceBalanceResult, error)
}

// PurchaseInvoiceHandler serves /purchase-invoices.
type PurchaseInvoiceHandler struct {
	BaseHandler
	invoices  PurchaseInvoiceService
	reversals ReversalService
	balances  InvoiceBalanceReader
}

// NewPurchaseInvoiceHandler creates a new PurchaseInvoiceHandler
func NewPurchaseInvoiceHandler(invoices PurchaseInvoiceService, reversals ReversalService, balances InvoiceBalanceReader) *PurchaseInvoiceHandler {
	return &PurchaseInvoiceHandler{invoices: invoices, reversals: reversals, balances: balances}
}

// Create handles POST /purchase-invoices
func (h *PurchaseInvoiceHandler) Create(c *gin.Context) {
	var req dto.PurchaseInvoiceRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.invoices.Create(c.Request.Context(), req.ToCreate())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dto.ToPurchaseInvoiceResponse(result))
}

// Reverse handles POST /purchase-invoices/:id/reverse. The authenticated
// user is recorded as the reverser.
func (h *PurchaseInvoiceHandler) Reverse(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	userID := middleware.GetJWTUserID(c)
	if userID == uuid.Nil {
		h.Unauthorized(c, "Authenticated user required")
		return
	}
	result, err := h.reversals.Reverse(c.Request.Context(), procurement.ReverseInvoiceRequest{
		InvoiceID:  id,
		ReversedBy: userID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToReversalResponse(result))
}

// CanReverse handles GET /purchase-invoices/:id/can-reverse
func (h *PurchaseInvoiceHandler) CanReverse(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	can, err := h.reversals.CanReverse(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"invoice_id": id, "can_reverse": can})
}

// Balance handles GET /purchase-invoices/:id/balance
func (h *PurchaseInvoiceHandler) Balance(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	result, err := h.balances.GetInvoiceBalance(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToInvoiceBalanceResponse(*result))
}

// RegisterRoutes mounts the handler on rg.
func (h *PurchaseInvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/purchase-invoices", h.Create)
	rg.POST("/purchase-invoices/:id/reverse", h.Reverse)
	rg.GET("/purchase-invoices/:id/can-reverse", h.CanReverse)
	rg.GET("/purchase-invoices/:id/balance", h.Balance)
}
