package procurement

import (
	"context"
	"time"

	"github.com/erp/vendorledger/internal/domain/finance"
	"github.com/erp/vendorledger/internal/domain/sequence"
	"github.com/erp/vendorledger/internal/domain/shared"
	"github.com/erp/vendorledger/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DebitNoteService issues standalone debit notes and applies them to open
// invoices, linked invoice first.
type DebitNoteService struct {
	scope   TransactionScope
	logger  *zap.Logger
	metrics *telemetry.LedgerMetrics
	locker  VendorLocker
}

// NewDebitNoteService creates a new DebitNoteService
func NewDebitNoteService(scope TransactionScope, logger *zap.Logger) *DebitNoteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DebitNoteService{scope: scope, logger: logger, locker: noopVendorLocker{}}
}

// SetLedgerMetrics sets the metrics collector
func (s *DebitNoteService) SetLedgerMetrics(m *telemetry.LedgerMetrics) {
	s.metrics = m
}

// SetVendorLocker sets the cross-process vendor lock.
func (s *DebitNoteService) SetVendorLocker(l VendorLocker) {
	if l == nil {
		l = noopVendorLocker{}
	}
	s.locker = l
}

// Create mints a DN number, stores the note with its lines and allocates it
// over the vendor's open invoices. Credit that finds no open balance stays
// unapplied.
func (s *DebitNoteService) Create(ctx context.Context, req CreateDebitNoteRequest) (*DebitNoteResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "debit_note", "create")
	defer span.End()
	telemetry.SetAttributes(span,
		"vendor_id", req.VendorID.String(),
		"amount", req.Amount.StringFixed(2),
	)

	if req.VendorID == uuid.Nil {
		err := shared.NewValidationError("vendor is required")
		telemetry.RecordError(span, err)
		return nil, err
	}
	if !req.Amount.IsPositive() {
		err := shared.NewValidationError("debit note amount must be positive")
		telemetry.RecordError(span, err)
		return nil, err
	}

	unlock := lockVendor(ctx, s.locker, s.logger, req.VendorID)
	defer unlock()

	start := time.Now()
	var (
		note *finance.DebitNote
		plan *finance.AllocationPlan
	)
	err := executeWithRetry(ctx, s.scope, s.logger, s.metrics, "debit_note.create", func(repos TransactionalRepositories) error {
		if _, err := requireVendor(ctx, repos.Vendors(), req.VendorID); err != nil {
			return err
		}
		linked := normalizeRef(req.LinkedInvoiceID)
		if linked != nil {
			inv, err := repos.PurchaseInvoices().FindByID(ctx, *linked)
			if err != nil {
				return referenceError("linked invoice", *linked, err)
			}
			if inv.VendorID != req.VendorID {
				return shared.NewValidationError("linked invoice %s belongs to another vendor", inv.InvoiceNumber)
			}
		}

		// Invoice headers before the DN sequence row, the order reversal
		// takes the same two locks in.
		open, err := repos.Balances().LockOpenInvoices(ctx, req.VendorID, uuid.Nil)
		if err != nil {
			return err
		}
		number, err := repos.Sequences().NextNumber(ctx, sequence.DocumentTypeDebitNote)
		if err != nil {
			return err
		}
		dn, err := finance.NewDebitNote(finance.NewDebitNoteParams{
			DebitNoteNumber: number.String(),
			VendorID:        req.VendorID,
			DebitNoteDate:   req.Date,
			Amount:          req.Amount,
			Reason:          req.Reason,
			LinkedInvoiceID: linked,
			Lines:           toDebitNoteLineInputs(req.Lines),
		})
		if err != nil {
			return err
		}

		p, err := finance.AllocatePriorityFIFO(dn.Amount, dn.PriorityInvoiceID(), finance.ToTargets(open))
		if err != nil {
			return err
		}
		if err := dn.ApplyPlan(p); err != nil {
			return err
		}
		if err := repos.DebitNotes().Create(ctx, dn); err != nil {
			return err
		}
		note = dn
		plan = p
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Warn("debit note rejected",
			zap.String("vendor_id", req.VendorID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordDocumentCreated(ctx, sequence.DocumentTypeDebitNote.String())
		s.metrics.RecordAllocation(ctx, "debit_note", string(finance.AllocationModeAuto),
			len(plan.Allocations), plan.TotalAllocated, plan.Unapplied, time.Since(start))
	}
	s.logger.Info("debit note created",
		zap.String("dn_number", note.DebitNoteNumber),
		zap.String("vendor_id", note.VendorID.String()),
		zap.String("amount", note.Amount.StringFixed(2)),
		zap.String("unapplied", plan.Unapplied.StringFixed(2)),
	)

	return &DebitNoteResult{
		DebitNoteID: note.ID,
		DNNumber:    note.DebitNoteNumber,
		Allocations: toAllocationResults(plan),
		Unapplied:   plan.Unapplied,
	}, nil
}

func toDebitNoteLineInputs(lines []DebitNoteLineRequest) []finance.DebitNoteLineInput {
	inputs := make([]finance.DebitNoteLineInput, 0, len(lines))
	for _, l := range lines {
		inputs = append(inputs, finance.DebitNoteLineInput{
			ProductID:   l.ProductID,
			BatchNumber: l.BatchNumber,
			Quantity:    l.Quantity,
			Rate:        l.Rate,
			Amount:      l.Amount,
		})
	}
	return inputs
}
