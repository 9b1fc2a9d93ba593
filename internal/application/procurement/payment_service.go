package procurement

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/erp/vendorledger/internal/domain/finance"
	"github.com/erp/vendorledger/internal/domain/sequence"
	"github.com/erp/vendorledger/internal/domain/shared"
	"github.com/erp/vendorledger/internal/domain/trade"
	"github.com/erp/vendorledger/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PaymentService records vendor payments and refunds and allocates payments
// over open invoices.
type PaymentService struct {
	scope       TransactionScope
	logger      *zap.Logger
	metrics     *telemetry.LedgerMetrics
	idempotency shared.IdempotencyStore
	idemConfig  shared.IdempotencyConfig
	locker      VendorLocker
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(scope TransactionScope, logger *zap.Logger) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{
		scope:      scope,
		logger:     logger,
		idemConfig: shared.DefaultIdempotencyConfig(),
		locker:     noopVendorLocker{},
	}
}

// SetLedgerMetrics sets the metrics collector
func (s *PaymentService) SetLedgerMetrics(m *telemetry.LedgerMetrics) {
	s.metrics = m
}

// SetIdempotencyStore enables request key deduplication.
func (s *PaymentService) SetIdempotencyStore(store shared.IdempotencyStore, cfg shared.IdempotencyConfig) {
	s.idempotency = store
	s.idemConfig = cfg
}

// SetVendorLocker sets the cross-process vendor lock.
func (s *PaymentService) SetVendorLocker(l VendorLocker) {
	if l == nil {
		l = noopVendorLocker{}
	}
	s.locker = l
}

// RecordPayment stores a payment or refund, moves the bank balance and, for
// payments, writes allocations in manual or priority + FIFO mode. The whole
// operation is one transaction.
func (s *PaymentService) RecordPayment(ctx context.Context, req RecordPaymentRequest) (*RecordPaymentResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "vendor_payment", "record")
	defer span.End()
	telemetry.SetAttributes(span,
		"vendor_id", req.VendorID.String(),
		"amount", req.Amount.StringFixed(2),
		"allocation_lines", len(req.Allocations),
		"auto_allocate", req.AutoAllocate,
	)

	manual, err := validatePaymentRequest(&req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	replay, finish, err := s.claimIdempotencyKey(ctx, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if replay != nil {
		s.logger.Info("payment request replayed",
			zap.String("payment_number", replay.PaymentNumber),
			zap.String("idempotency_key", req.IdempotencyKey),
		)
		return replay, nil
	}

	unlock := lockVendor(ctx, s.locker, s.logger, req.VendorID)
	defer unlock()

	start := time.Now()
	var (
		payment *finance.VendorPayment
		plan    *finance.AllocationPlan
		mode    finance.AllocationMode
	)
	// Invoice headers and the bank account are locked before the PAY sequence
	// row, the same order every other workflow takes its locks in.
	err = executeWithRetry(ctx, s.scope, s.logger, s.metrics, "vendor_payment.record", func(repos TransactionalRepositories) error {
		plan = nil
		if _, err := requireVendor(ctx, repos.Vendors(), req.VendorID); err != nil {
			return err
		}

		amount := shared.RoundMoney(req.Amount)
		switch {
		case len(manual) > 0:
			mode = finance.AllocationModeManual
			targets, err := manualTargets(ctx, repos, req.VendorID, manual)
			if err != nil {
				return err
			}
			if plan, err = finance.AllocateManual(amount, manual, targets); err != nil {
				return err
			}
		case req.AutoAllocate:
			mode = finance.AllocationModeAuto
			open, err := repos.Balances().LockOpenInvoices(ctx, req.VendorID, uuid.Nil)
			if err != nil {
				return err
			}
			priority := uuid.Nil
			if req.PriorityInvoiceID != nil {
				priority = *req.PriorityInvoiceID
			}
			if plan, err = finance.AllocatePriorityFIFO(amount, priority, finance.ToTargets(open)); err != nil {
				return err
			}
		}

		bankAccountID := normalizeRef(req.BankAccountID)
		if bankAccountID != nil {
			account, err := repos.BankAccounts().FindByIDForUpdate(ctx, *bankAccountID)
			if err != nil {
				return referenceError("bank account", *bankAccountID, err)
			}
			if err := account.Apply(req.TransactionType, amount); err != nil {
				return err
			}
			if err := repos.BankAccounts().UpdateBalance(ctx, account.ID, account.CurrentBalance); err != nil {
				return err
			}
		}

		number, err := repos.Sequences().NextNumber(ctx, sequence.DocumentTypePayment)
		if err != nil {
			return err
		}
		p, err := finance.NewVendorPayment(finance.NewVendorPaymentParams{
			PaymentNumber:   number.String(),
			VendorID:        req.VendorID,
			Amount:          amount,
			PaymentDate:     req.Date,
			Mode:            req.Mode,
			TransactionType: req.TransactionType,
			BankAccountID:   bankAccountID,
			TransactionRef:  req.TransactionRef,
			Remarks:         req.Remarks,
		})
		if err != nil {
			return err
		}
		if err := p.ApplyPlan(plan); err != nil {
			return err
		}
		if err := repos.Payments().Create(ctx, p); err != nil {
			return err
		}
		payment = p
		return nil
	})
	if err != nil {
		finish(nil)
		telemetry.RecordError(span, err)
		s.logger.Warn("payment rejected",
			zap.String("vendor_id", req.VendorID.String()),
			zap.String("amount", req.Amount.StringFixed(2)),
			zap.Error(err),
		)
		return nil, err
	}

	result := &RecordPaymentResult{
		PaymentID:     payment.ID,
		PaymentNumber: payment.PaymentNumber,
		Allocations:   toAllocationResults(plan),
		Unapplied:     payment.Unapplied(),
	}
	finish(result)

	if s.metrics != nil {
		s.metrics.RecordDocumentCreated(ctx, sequence.DocumentTypePayment.String())
		if plan != nil {
			s.metrics.RecordAllocation(ctx, "payment", string(mode), len(plan.Allocations), plan.TotalAllocated, plan.Unapplied, time.Since(start))
		}
	}
	s.logger.Info("payment recorded",
		zap.String("payment_number", payment.PaymentNumber),
		zap.String("vendor_id", payment.VendorID.String()),
		zap.String("type", string(payment.TransactionType)),
		zap.String("amount", payment.Amount.StringFixed(2)),
		zap.Int("allocations", len(payment.Allocations)),
	)

	return result, nil
}

// validatePaymentRequest runs the checks that need no database access.
func validatePaymentRequest(req *RecordPaymentRequest) ([]finance.ManualAllocation, error) {
	if req.VendorID == uuid.Nil {
		return nil, shared.NewValidationError("vendor is required")
	}
	if !req.Amount.IsPositive() {
		return nil, shared.NewValidationError("payment amount must be positive")
	}
	if req.TransactionType == "" {
		req.TransactionType = finance.TransactionTypePayment
	}
	if !req.TransactionType.IsValid() {
		return nil, shared.NewValidationError("unknown transaction type %q", req.TransactionType)
	}
	if len(req.Allocations) > 0 && req.AutoAllocate {
		return nil, shared.NewValidationError("manual allocations and auto allocation are mutually exclusive")
	}
	if !req.TransactionType.Allocates() && (len(req.Allocations) > 0 || req.AutoAllocate) {
		return nil, shared.NewValidationError("%s transactions are not allocated to invoices", req.TransactionType)
	}

	manual := make([]finance.ManualAllocation, 0, len(req.Allocations))
	for _, a := range req.Allocations {
		if a.InvoiceID == uuid.Nil {
			return nil, shared.NewValidationError("allocation invoice is required")
		}
		manual = append(manual, finance.ManualAllocation{InvoiceID: a.InvoiceID, Amount: a.Amount})
	}
	if err := finance.ValidateManualTotal(req.Amount, manual); err != nil {
		return nil, err
	}
	return manual, nil
}

// manualTargets locks the vendor's open invoices and resolves every invoice a
// manual line names. Settled invoices of the vendor become zero-balance
// targets so that allocating to them is an over-allocation.
func manualTargets(ctx context.Context, repos TransactionalRepositories, vendorID uuid.UUID, lines []finance.ManualAllocation) ([]finance.AllocationTarget, error) {
	open, err := repos.Balances().LockOpenInvoices(ctx, vendorID, uuid.Nil)
	if err != nil {
		return nil, err
	}
	targets := finance.ToTargets(open)
	known := make(map[uuid.UUID]bool, len(targets))
	for _, t := range targets {
		known[t.InvoiceID] = true
	}

	for _, l := range lines {
		if known[l.InvoiceID] {
			continue
		}
		b, err := repos.Balances().Balance(ctx, l.InvoiceID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewValidationError("invoice %s does not exist", l.InvoiceID)
			}
			return nil, err
		}
		if b.VendorID != vendorID {
			return nil, shared.NewValidationError("invoice %s belongs to another vendor", b.InvoiceNumber)
		}
		if b.Status != trade.PurchaseInvoiceStatusVerified {
			return nil, shared.NewValidationError("invoice %s is %s", b.InvoiceNumber, b.Status)
		}
		t := b.ToTarget()
		if t.Balance.IsNegative() {
			t.Balance = decimal.Zero
		}
		targets = append(targets, t)
		known[l.InvoiceID] = true
	}
	return targets, nil
}

// claimIdempotencyKey marks the request key. A key already completed returns
// the stored result for replay. The returned func must be called with the
// outcome: nil frees the key for a retry, a result is stored under it.
func (s *PaymentService) claimIdempotencyKey(ctx context.Context, req RecordPaymentRequest) (*RecordPaymentResult, func(*RecordPaymentResult), error) {
	noop := func(*RecordPaymentResult) {}
	if s.idempotency == nil || !s.idemConfig.Enabled || req.IdempotencyKey == "" {
		return nil, noop, nil
	}
	key := "payment:" + req.VendorID.String() + ":" + req.IdempotencyKey
	fresh, err := s.idempotency.MarkProcessed(ctx, key, s.idemConfig.TTL)
	if err != nil {
		s.logger.Warn("idempotency store unavailable, continuing without deduplication",
			zap.String("key", key),
			zap.Error(err),
		)
		return nil, noop, nil
	}
	if !fresh {
		replay, err := s.storedResult(ctx, key)
		if err != nil {
			return nil, nil, err
		}
		if replay == nil {
			return nil, nil, shared.NewDuplicateRequestError("payment request %s is still being processed", req.IdempotencyKey)
		}
		return replay, nil, nil
	}
	return nil, func(result *RecordPaymentResult) {
		bg := context.WithoutCancel(ctx)
		if result == nil {
			if err := s.idempotency.Forget(bg, key); err != nil {
				s.logger.Warn("failed to release idempotency key", zap.String("key", key), zap.Error(err))
			}
			return
		}
		data, err := json.Marshal(result)
		if err == nil {
			err = s.idempotency.Complete(bg, key, data, s.idemConfig.TTL)
		}
		if err != nil {
			s.logger.Warn("failed to store idempotency result", zap.String("key", key), zap.Error(err))
		}
	}, nil
}

// storedResult decodes the outcome kept under key, nil while the first
// request is still in flight.
func (s *PaymentService) storedResult(ctx context.Context, key string) (*RecordPaymentResult, error) {
	data, err := s.idempotency.Result(ctx, key)
	if err != nil {
		s.logger.Warn("failed to read idempotency result", zap.String("key", key), zap.Error(err))
		return nil, nil
	}
	if data == nil {
		return nil, nil
	}
	var result RecordPaymentResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode idempotency result: %w", err)
	}
	result.Replayed = true
	return &result, nil
}
