package procurement

import (
	"context"

	"github.com/erp/vendorledger/internal/domain/sequence"
	"github.com/erp/vendorledger/internal/domain/trade"
	"github.com/erp/vendorledger/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PurchaseOrderService creates and revises purchase orders.
type PurchaseOrderService struct {
	scope   TransactionScope
	logger  *zap.Logger
	metrics *telemetry.LedgerMetrics
}

// NewPurchaseOrderService creates a new PurchaseOrderService
func NewPurchaseOrderService(scope TransactionScope, logger *zap.Logger) *PurchaseOrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PurchaseOrderService{scope: scope, logger: logger}
}

// SetLedgerMetrics sets the metrics collector
func (s *PurchaseOrderService) SetLedgerMetrics(m *telemetry.LedgerMetrics) {
	s.metrics = m
}

// Create prices the lines, mints a PO number and stores the order as Draft.
func (s *PurchaseOrderService) Create(ctx context.Context, req CreatePurchaseOrderRequest) (*PurchaseOrderResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "purchase_order", "create")
	defer span.End()
	telemetry.SetAttributes(span, "vendor_id", req.VendorID.String(), "lines_count", len(req.Lines))

	inputs := toOrderLineInputs(req.Lines)
	// Reject bad pricing input before touching the database.
	if _, err := trade.PriceLines(inputs); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var order *trade.PurchaseOrder
	err := executeWithRetry(ctx, s.scope, s.logger, s.metrics, "purchase_order.create", func(repos TransactionalRepositories) error {
		if _, err := requireVendor(ctx, repos.Vendors(), req.VendorID); err != nil {
			return err
		}
		number, err := repos.Sequences().NextNumber(ctx, sequence.DocumentTypePurchaseOrder)
		if err != nil {
			return err
		}
		po, err := trade.NewPurchaseOrder(number.String(), req.VendorID, req.Remarks, inputs)
		if err != nil {
			return err
		}
		if err := repos.PurchaseOrders().Create(ctx, po); err != nil {
			return err
		}
		order = po
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordDocumentCreated(ctx, sequence.DocumentTypePurchaseOrder.String())
	}
	s.logger.Info("purchase order created",
		zap.String("po_number", order.PONumber),
		zap.String("vendor_id", order.VendorID.String()),
		zap.String("grand_total", order.Totals.GrandTotal.StringFixed(2)),
	)
	return toPurchaseOrderResult(order), nil
}

// Update replaces a draft order's vendor, remarks and lines and recomputes totals.
func (s *PurchaseOrderService) Update(ctx context.Context, req UpdatePurchaseOrderRequest) (*PurchaseOrderResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "purchase_order", "update")
	defer span.End()
	telemetry.SetAttributes(span, "purchase_order_id", req.PurchaseOrderID.String())

	var order *trade.PurchaseOrder
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		po, err := repos.PurchaseOrders().FindByIDForUpdate(ctx, req.PurchaseOrderID)
		if err != nil {
			return err
		}
		if _, err := requireVendor(ctx, repos.Vendors(), req.VendorID); err != nil {
			return err
		}
		if err := po.ReplaceLines(req.VendorID, req.Remarks, toOrderLineInputs(req.Lines)); err != nil {
			return err
		}
		if err := repos.PurchaseOrders().Update(ctx, po); err != nil {
			return err
		}
		order = po
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return toPurchaseOrderResult(order), nil
}

func toOrderLineInputs(lines []PurchaseOrderLineRequest) []trade.PurchaseOrderLineInput {
	inputs := make([]trade.PurchaseOrderLineInput, 0, len(lines))
	for _, l := range lines {
		inputs = append(inputs, trade.PurchaseOrderLineInput{
			ProductID:       l.ProductID,
			ProductName:     l.ProductName,
			Quantity:        l.Quantity,
			Price:           l.Price,
			MRP:             l.MRP,
			SchemeAmount:    l.SchemeAmount,
			DiscountPercent: l.DiscountPercent,
			TaxPercent:      l.TaxPercent,
		})
	}
	return inputs
}

func toPurchaseOrderResult(po *trade.PurchaseOrder) *PurchaseOrderResult {
	return &PurchaseOrderResult{
		ID:         po.ID,
		PONumber:   po.PONumber,
		Status:     po.Status,
		Totals:     po.Totals,
		LinesCount: len(po.Lines),
	}
}

// orderBelongsTo checks a purchase order reference on a receipt.
func orderBelongsTo(po *trade.PurchaseOrder, vendorID uuid.UUID) bool {
	return po.VendorID == vendorID
}
