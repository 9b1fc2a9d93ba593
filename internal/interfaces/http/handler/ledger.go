package handler

import (
	"context"

	"github.com/erp/vendorledger/internal/application/procurement"
	"github.com/erp/vendorledger/internal/domain/finance"
	"github.com/erp/vendorledger/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LedgerReader answers vendor ledger queries.
type LedgerReader interface {
	GetVendorLedger(ctx context.Context, vendorID uuid.UUID) ([]finance.LedgerEntry, error)
	GetVendorStatement(ctx context.Context, vendorID uuid.UUID) (*procurement.VendorStatement, error)
	ListOpenInvoices(ctx context.Context, vendorID uuid.UUID) ([]procurement.InvoiceBalanceResult, error)
}

// LedgerHandler serves /vendors/:id read models.
type LedgerHandler struct {
	BaseHandler
	reader LedgerReader
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(reader LedgerReader) *LedgerHandler {
	return &LedgerHandler{reader: reader}
}

// Ledger handles GET /vendors/:id/ledger, newest first.
func (h *LedgerHandler) Ledger(c *gin.Context) {
	vendorID, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	entries, err := h.reader.GetVendorLedger(c.Request.Context(), vendorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToLedgerEntries(entries))
}

// Statement handles GET /vendors/:id/statement
func (h *LedgerHandler) Statement(c *gin.Context) {
	vendorID, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	statement, err := h.reader.GetVendorStatement(c.Request.Context(), vendorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToStatementResponse(statement))
}

// OpenInvoices handles GET /vendors/:id/open-invoices
func (h *LedgerHandler) OpenInvoices(c *gin.Context) {
	vendorID, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	invoices, err := h.reader.ListOpenInvoices(c.Request.Context(), vendorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToInvoiceBalanceResponses(invoices))
}

// RegisterRoutes mounts the handler on rg.
func (h *LedgerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/vendors/:id/ledger", h.Ledger)
	rg.GET("/vendors/:id/statement", h.Statement)
	rg.GET("/vendors/:id/open-invoices", h.OpenInvoices)
}
