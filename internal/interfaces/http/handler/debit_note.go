package handler

import (
	"context"

	"github.com/erp/vendorledger/internal/application/procurement"
	"github.com/erp/vendorledger/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// DebitNoteService issues debit notes.
type DebitNoteService interface {
	Create(ctx context.Context, req procurement.CreateDebitNoteRequest) (*procurement.DebitNoteResult, error)
}

// DebitNoteHandler serves /debit-notes.
type DebitNoteHandler struct {
	BaseHandler
	service DebitNoteService
}

// NewDebitNoteHandler creates a new DebitNoteHandler
func NewDebitNoteHandler(service DebitNoteService) *DebitNoteHandler {
	return &DebitNoteHandler{service: service}
}

// Create handles POST /debit-notes
func (h *DebitNoteHandler) Create(c *gin.Context) {
	var req dto.DebitNoteRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.service.Create(c.Request.Context(), req.ToCreate())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dto.ToDebitNoteResponse(result))
}

// RegisterRoutes mounts the handler on rg.
func (h *DebitNoteHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/debit-notes", h.Create)
}
