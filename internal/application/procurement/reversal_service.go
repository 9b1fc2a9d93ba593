package procurement

import (
	"context"
	"errors"
	"time"

	"github.com/erp/vendorledger/internal/domain/finance"
	"github.com/erp/vendorledger/internal/domain/inventory"
	"github.com/erp/vendorledger/internal/domain/sequence"
	"github.com/erp/vendorledger/internal/domain/shared"
	"github.com/erp/vendorledger/internal/domain/trade"
	"github.com/erp/vendorledger/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ReversalService neutralizes a goods receipt whose stock has not moved.
type ReversalService struct {
	scope   TransactionScope
	logger  *zap.Logger
	metrics *telemetry.LedgerMetrics
	now     func() time.Time
}

// NewReversalService creates a new ReversalService
func NewReversalService(scope TransactionScope, logger *zap.Logger) *ReversalService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReversalService{scope: scope, logger: logger, now: time.Now}
}

// SetLedgerMetrics sets the metrics collector
func (s *ReversalService) SetLedgerMetrics(m *telemetry.LedgerMetrics) {
	s.metrics = m
}

// CanReverse reports whether every batch created by the invoice is untouched.
func (s *ReversalService) CanReverse(ctx context.Context, invoiceID uuid.UUID) (bool, error) {
	var ok bool
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		inv, err := repos.PurchaseInvoices().FindByID(ctx, invoiceID)
		if err != nil {
			return err
		}
		if !inv.Status.CanTransitionTo(trade.PurchaseInvoiceStatusReversed) {
			return nil
		}
		batches, err := repos.Batches().FindByInvoice(ctx, invoiceID)
		if err != nil {
			return err
		}
		ok = inventory.CanReverse(batches)
		return nil
	})
	return ok, err
}

// Reverse marks the invoice Reversed, issues a debit note for its grand total
// applied against the invoice's own outstanding balance, and voids its
// batches. Everything happens in one transaction.
func (s *ReversalService) Reverse(ctx context.Context, req ReverseInvoiceRequest) (*ReverseInvoiceResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "purchase_invoice", "reverse")
	defer span.End()
	telemetry.SetAttributes(span, "invoice_id", req.InvoiceID.String())

	start := time.Now()
	var (
		result *ReverseInvoiceResult
		plan   *finance.AllocationPlan
		vendor uuid.UUID
	)
	err := executeWithRetry(ctx, s.scope, s.logger, s.metrics, "purchase_invoice.reverse", func(repos TransactionalRepositories) error {
		inv, err := repos.PurchaseInvoices().FindByIDForUpdate(ctx, req.InvoiceID)
		if err != nil {
			return err
		}
		if !inv.Status.CanTransitionTo(trade.PurchaseInvoiceStatusReversed) {
			return shared.NewInvalidStateError("invoice %s is %s and cannot be reversed", inv.InvoiceNumber, inv.Status)
		}

		batches, err := repos.Batches().FindByInvoiceForUpdate(ctx, inv.ID)
		if err != nil {
			return err
		}
		if !inventory.CanReverse(batches) {
			return shared.NewStockAlreadyMovedError("stock received on %s has already moved", inv.InvoiceNumber)
		}

		balance, err := repos.Balances().Balance(ctx, inv.ID)
		if err != nil {
			return err
		}

		number, err := repos.Sequences().NextNumber(ctx, sequence.DocumentTypeDebitNote)
		if err != nil {
			return err
		}
		at := s.now()
		linked := inv.ID
		dn, err := finance.NewDebitNote(finance.NewDebitNoteParams{
			DebitNoteNumber: number.String(),
			VendorID:        inv.VendorID,
			DebitNoteDate:   at,
			Amount:          inv.GrandTotal,
			Reason:          inv.ReversalReason(),
			LinkedInvoiceID: &linked,
			Lines:           reversalLines(inv, batches),
		})
		if err != nil {
			return err
		}

		// Only the reversed invoice is a target; any excess stays as credit.
		var targets []finance.AllocationTarget
		if balance.Balance().IsPositive() {
			targets = append(targets, balance.ToTarget())
		}
		p, err := finance.AllocatePriorityFIFO(dn.Amount, inv.ID, targets)
		if err != nil {
			return err
		}
		if err := dn.ApplyPlan(p); err != nil {
			return err
		}
		if err := repos.DebitNotes().Create(ctx, dn); err != nil {
			return err
		}

		if err := inv.Reverse(req.ReversedBy, at); err != nil {
			return err
		}
		if err := repos.PurchaseInvoices().MarkReversed(ctx, inv); err != nil {
			return err
		}
		voided, err := repos.Batches().VoidBatches(ctx, inv.ID)
		if err != nil {
			return err
		}

		plan = p
		vendor = inv.VendorID
		result = &ReverseInvoiceResult{
			Success:         true,
			InvoiceID:       inv.ID,
			DebitNoteID:     dn.ID,
			DebitNoteNumber: dn.DebitNoteNumber,
			AppliedAmount:   p.TotalAllocated,
			UnappliedCredit: p.Unapplied,
			BatchesVoided:   voided,
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.recordOutcome(ctx, err)
		s.logger.Warn("invoice reversal rejected",
			zap.String("invoice_id", req.InvoiceID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordReversal(ctx, telemetry.ReversalOutcomeReversed)
		s.metrics.RecordDocumentCreated(ctx, sequence.DocumentTypeDebitNote.String())
		s.metrics.RecordAllocation(ctx, "reversal", string(finance.AllocationModeAuto),
			len(plan.Allocations), plan.TotalAllocated, plan.Unapplied, time.Since(start))
	}
	s.logger.Info("invoice reversed",
		zap.String("invoice_id", result.InvoiceID.String()),
		zap.String("vendor_id", vendor.String()),
		zap.String("debit_note", result.DebitNoteNumber),
		zap.String("applied", result.AppliedAmount.StringFixed(2)),
		zap.String("unapplied", result.UnappliedCredit.StringFixed(2)),
		zap.Int64("batches_voided", result.BatchesVoided),
	)
	return result, nil
}

func (s *ReversalService) recordOutcome(ctx context.Context, err error) {
	if s.metrics == nil {
		return
	}
	switch {
	case errors.Is(err, shared.ErrStockAlreadyMoved):
		s.metrics.RecordReversal(ctx, telemetry.ReversalOutcomeStockMoved)
	case errors.Is(err, shared.ErrInvalidState):
		s.metrics.RecordReversal(ctx, telemetry.ReversalOutcomeInvalidState)
	default:
		s.metrics.RecordReversal(ctx, telemetry.ReversalOutcomeFailed)
	}
}

// reversalLines copies the invoice lines onto the debit note, carrying the
// batch number of the batch each line created.
func reversalLines(inv *trade.PurchaseInvoice, batches []inventory.ProductBatch) []finance.DebitNoteLineInput {
	byLine := make(map[uuid.UUID]string, len(batches))
	for _, b := range batches {
		byLine[b.PurchaseInvoiceLineID] = b.BatchNumber
	}
	lines := make([]finance.DebitNoteLineInput, 0, len(inv.Lines))
	for _, l := range inv.Lines {
		batchNumber, ok := byLine[l.ID]
		if !ok {
			batchNumber = inventory.UnknownBatchNumber
		}
		amount := l.Amount
		if amount.IsZero() {
			amount = l.AcceptedQty.Mul(l.Rate)
		}
		lines = append(lines, finance.DebitNoteLineInput{
			ProductID:   l.ProductID,
			BatchNumber: batchNumber,
			Quantity:    l.AcceptedQty,
			Rate:        l.Rate,
			Amount:      decimal.Max(amount, decimal.Zero),
		})
	}
	return lines
}
