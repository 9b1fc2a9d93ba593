package procurement

import (
	"context"

	"github.com/erp/vendorledger/internal/domain/inventory"
	"github.com/erp/vendorledger/internal/domain/sequence"
	"github.com/erp/vendorledger/internal/domain/shared"
	"github.com/erp/vendorledger/internal/domain/trade"
	"github.com/erp/vendorledger/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PurchaseInvoiceService records goods receipts and materializes their stock.
type PurchaseInvoiceService struct {
	scope   TransactionScope
	logger  *zap.Logger
	metrics *telemetry.LedgerMetrics
}

// NewPurchaseInvoiceService creates a new PurchaseInvoiceService
func NewPurchaseInvoiceService(scope TransactionScope, logger *zap.Logger) *PurchaseInvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PurchaseInvoiceService{scope: scope, logger: logger}
}

// SetLedgerMetrics sets the metrics collector
func (s *PurchaseInvoiceService) SetLedgerMetrics(m *telemetry.LedgerMetrics) {
	s.metrics = m
}

// Create mints the internal GRN number, inserts header and lines, and
// creates one batch per line, all in one transaction. A failure on any line
// leaves nothing behind.
func (s *PurchaseInvoiceService) Create(ctx context.Context, req CreatePurchaseInvoiceRequest) (*PurchaseInvoiceResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "purchase_invoice", "create")
	defer span.End()
	telemetry.SetAttributes(span,
		"vendor_id", req.VendorID.String(),
		"vendor_invoice_number", req.InvoiceNumber,
		"lines_count", len(req.Lines),
	)

	var (
		invoice  *trade.PurchaseInvoice
		batchIDs []uuid.UUID
	)
	err := executeWithRetry(ctx, s.scope, s.logger, s.metrics, "purchase_invoice.create", func(repos TransactionalRepositories) error {
		batchIDs = batchIDs[:0]

		if _, err := requireVendor(ctx, repos.Vendors(), req.VendorID); err != nil {
			return err
		}

		var order *trade.PurchaseOrder
		if req.PurchaseOrderID != nil && *req.PurchaseOrderID != uuid.Nil {
			po, err := repos.PurchaseOrders().FindByIDForUpdate(ctx, *req.PurchaseOrderID)
			if err != nil {
				return referenceError("purchase order", *req.PurchaseOrderID, err)
			}
			if !orderBelongsTo(po, req.VendorID) {
				return shared.NewValidationError("purchase order %s belongs to another vendor", po.PONumber)
			}
			order = po
		}
		if req.ParentInvoiceID != nil && *req.ParentInvoiceID != uuid.Nil {
			parent, err := repos.PurchaseInvoices().FindByID(ctx, *req.ParentInvoiceID)
			if err != nil {
				return referenceError("parent invoice", *req.ParentInvoiceID, err)
			}
			if parent.VendorID != req.VendorID {
				return shared.NewValidationError("parent invoice %s belongs to another vendor", parent.InvoiceNumber)
			}
		}

		number, err := repos.Sequences().NextNumber(ctx, sequence.DocumentTypePurchaseInvoice)
		if err != nil {
			return err
		}

		inv, err := trade.NewPurchaseInvoice(trade.NewPurchaseInvoiceParams{
			InvoiceNumber:       number.String(),
			VendorID:            req.VendorID,
			PurchaseOrderID:     normalizeRef(req.PurchaseOrderID),
			ParentInvoiceID:     normalizeRef(req.ParentInvoiceID),
			VendorInvoiceNumber: req.InvoiceNumber,
			VendorInvoiceDate:   req.InvoiceDate,
			ReceivedDate:        req.ReceivedDate,
			TotalNet:            req.TotalNet,
			TaxAmount:           req.TaxAmount,
			GrandTotal:          req.GrandTotal,
			Lines:               toInvoiceLineInputs(req.Lines),
		})
		if err != nil {
			return err
		}
		if !inv.LinesMatchGrandTotal() {
			s.logger.Warn("invoice lines do not add up to grand total",
				zap.String("invoice_number", inv.InvoiceNumber),
				zap.String("lines_total", inv.LinesTotal().StringFixed(2)),
				zap.String("grand_total", inv.GrandTotal.StringFixed(2)),
			)
		}

		if err := repos.PurchaseInvoices().Create(ctx, inv); err != nil {
			return err
		}

		for _, line := range inv.Lines {
			batch, err := inventory.NewProductBatch(inventory.NewBatchParams{
				ProductID:             line.ProductID,
				PurchaseInvoiceLineID: line.ID,
				BatchNumber:           line.BatchNumber,
				MRP:                   line.MRP,
				ExpiryDate:            line.ExpiryDate,
				ReceivedDate:          inv.ReceivedDate,
				PurchaseRate:          line.Rate,
				AcceptedQty:           line.AcceptedQty,
			})
			if err != nil {
				return err
			}
			if err := repos.Batches().Create(ctx, batch); err != nil {
				return err
			}
			batchIDs = append(batchIDs, batch.ID)
		}

		if order != nil {
			if err := repos.PurchaseOrders().MarkReceived(ctx, order.ID); err != nil {
				return err
			}
		}
		invoice = inv
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Warn("goods receipt rejected",
			zap.String("vendor_id", req.VendorID.String()),
			zap.String("vendor_invoice_number", req.InvoiceNumber),
			zap.Error(err),
		)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordDocumentCreated(ctx, sequence.DocumentTypePurchaseInvoice.String())
	}
	telemetry.SetAttributes(span, "invoice_number", invoice.InvoiceNumber)
	s.logger.Info("goods receipt recorded",
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("invoice_id", invoice.ID.String()),
		zap.Int("batches", len(batchIDs)),
	)

	return &PurchaseInvoiceResult{
		Success:    true,
		InvoiceID:  invoice.ID,
		InternalID: invoice.InvoiceNumber,
		BatchIDs:   append([]uuid.UUID(nil), batchIDs...),
	}, nil
}

func toInvoiceLineInputs(lines []PurchaseInvoiceLineRequest) []trade.PurchaseInvoiceLineInput {
	inputs := make([]trade.PurchaseInvoiceLineInput, 0, len(lines))
	for _, l := range lines {
		inputs = append(inputs, trade.PurchaseInvoiceLineInput{
			ProductID:       l.ProductID,
			OrderedQty:      l.OrderedQty,
			AcceptedQty:     l.AcceptedQty,
			Rate:            l.Rate,
			MRP:             l.MRP,
			DiscountPercent: l.DiscountPercent,
			SchemeAmount:    l.SchemeAmount,
			TaxAmount:       l.TaxAmount,
			Amount:          l.Amount,
			BatchNumber:     l.BatchNumber,
			ExpiryDate:      l.ExpiryDate,
		})
	}
	return inputs
}

func normalizeRef(id *uuid.UUID) *uuid.UUID {
	if id == nil || *id == uuid.Nil {
		return nil
	}
	v := *id
	return &v
}
