package handler

import (
	"context"

	"github.com/erp/vendorledger/internal/application/procurement"
	"github.com/erp/vendorledger/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// IdempotencyKeyHeader lets clients retry a payment safely.
const IdempotencyKeyHeader = "Idempotency-Key"

// PaymentService records vendor payments and refunds.
type PaymentService interface {
	RecordPayment(ctx context.Context, req procurement.RecordPaymentRequest) (*procurement.RecordPaymentResult, error)
}

// PaymentHandler serves /vendor-payments.
type PaymentHandler struct {
	BaseHandler
	service PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(service PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// Record handles POST /vendor-payments
func (h *PaymentHandler) Record(c *gin.Context) {
	var req dto.PaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.service.RecordPayment(c.Request.Context(), req.ToRecord(c.GetHeader(IdempotencyKeyHeader)))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if result.Replayed {
		h.Success(c, dto.ToPaymentResponse(result))
		return
	}
	h.Created(c, dto.ToPaymentResponse(result))
}

// RegisterRoutes mounts the handler on rg.
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/vendor-payments", h.Record)
}
