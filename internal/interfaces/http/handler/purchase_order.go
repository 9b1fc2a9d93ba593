package handler

import (
	"context"

	"github.com/erp/vendorledger/internal/application/procurement"
	"github.com/erp/vendorledger/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// PurchaseOrderService creates and edits draft orders.
type PurchaseOrderService interface {
	Create(ctx context.Context, req procurement.CreatePurchaseOrderRequest) (*procurement.PurchaseOrderResult, error)
	Update(ctx context.Context, req procurement.UpdatePurchaseOrderRequest) (*procurement.PurchaseOrderResult, error)
}

// PurchaseOrderHandler serves /purchase-orders.
type PurchaseOrderHandler struct {
	BaseHandler
	service PurchaseOrderService
}

// NewPurchaseOrderHandler creates a new PurchaseOrderHandler
func NewPurchaseOrderHandler(service PurchaseOrderService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{service: service}
}

// Create handles POST /purchase-orders
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	var req dto.PurchaseOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.service.Create(c.Request.Context(), req.ToCreate())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dto.ToPurchaseOrderResponse(result))
}

// Update handles PUT /purchase-orders/:id. Only draft orders can change.
func (h *PurchaseOrderHandler) Update(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.PurchaseOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.service.Update(c.Request.Context(), req.ToUpdate(id))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToPurchaseOrderResponse(result))
}

// RegisterRoutes mounts the handler on rg.
func (h *PurchaseOrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/purchase-orders", h.Create)
	rg.PUT("/purchase-orders/:id", h.Update)
}
