package handler

import (
	"context"

	"github.com/erp/vendorledger/internal/application/procurement"
	"github.com/erp/vendorledger/internal/domain/inventory"
	"github.com/erp/vendorledger/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BatchService previews consumption and records damage.
type BatchService interface {
	PlanConsumption(ctx context.Context, productID uuid.UUID, qty decimal.Decimal) (*inventory.ConsumptionPlan, error)
	MarkDamaged(ctx context.Context, req procurement.MarkBatchDamagedRequest) (*procurement.BatchResult, error)
}

// BatchHandler serves batch endpoints.
type BatchHandler struct {
	BaseHandler
	service BatchService
}

// NewBatchHandler creates a new BatchHandler
func NewBatchHandler(service BatchService) *BatchHandler {
	return &BatchHandler{service: service}
}

// Plan handles GET /products/:id/batch-plan?qty=
func (h *BatchHandler) Plan(c *gin.Context) {
	productID, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	qty, err := decimal.NewFromString(c.Query("qty"))
	if err != nil || !qty.IsPositive() {
		h.BadRequest(c, "qty must be a positive number")
		return
	}
	plan, err := h.service.PlanConsumption(c.Request.Context(), productID, qty)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToConsumptionPlanResponse(plan))
}

// MarkDamaged handles POST /batches/:id/damage
func (h *BatchHandler) MarkDamaged(c *gin.Context) {
	batchID, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.MarkDamagedRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.service.MarkDamaged(c.Request.Context(), procurement.MarkBatchDamagedRequest{
		BatchID:  batchID,
		Quantity: req.Quantity,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToBatchResponse(result))
}

// RegisterRoutes mounts the handler on rg.
func (h *BatchHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/products/:id/batch-plan", h.Plan)
	rg.POST("/batches/:id/damage", h.MarkDamaged)
}
