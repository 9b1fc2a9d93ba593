package procurement

import (
	"context"

	"github.com/erp/vendorledger/internal/domain/finance"
	"github.com/erp/vendorledger/internal/domain/shared"
	"github.com/erp/vendorledger/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LedgerQueryService answers read-only ledger and balance questions. Every
// answer is recomputed from the underlying documents.
type LedgerQueryService struct {
	ledger   finance.LedgerRepository
	balances finance.InvoiceBalanceRepository
	logger   *zap.Logger
}

// NewLedgerQueryService creates a new LedgerQueryService
func NewLedgerQueryService(ledger finance.LedgerRepository, balances finance.InvoiceBalanceRepository, logger *zap.Logger) *LedgerQueryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerQueryService{ledger: ledger, balances: balances, logger: logger}
}

// GetVendorLedger returns the vendor's ledger entries, newest first.
func (s *LedgerQueryService) GetVendorLedger(ctx context.Context, vendorID uuid.UUID) ([]finance.LedgerEntry, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "vendor_ledger", "get")
	defer span.End()

	if vendorID == uuid.Nil {
		return nil, shared.NewValidationError("vendor is required")
	}
	entries, err := s.ledger.VendorLedger(ctx, vendorID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	finance.SortLedgerForDisplay(entries)
	telemetry.SetAttributes(span, "entries", len(entries))
	return entries, nil
}

// GetVendorStatement returns the ledger oldest first with a running balance.
func (s *LedgerQueryService) GetVendorStatement(ctx context.Context, vendorID uuid.UUID) (*VendorStatement, error) {
	entries, err := s.GetVendorLedger(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	return &VendorStatement{
		VendorID:       vendorID,
		Lines:          finance.RunningBalance(entries),
		ClosingBalance: finance.ClosingBalance(entries),
	}, nil
}

// GetInvoiceBalance recomputes the outstanding balance of one invoice.
func (s *LedgerQueryService) GetInvoiceBalance(ctx context.Context, invoiceID uuid.UUID) (*InvoiceBalanceResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice_balance", "get")
	defer span.End()

	b, err := s.balances.Balance(ctx, invoiceID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return toInvoiceBalanceResult(b), nil
}

// ListOpenInvoices returns the vendor's invoices with a positive balance,
// in the order auto allocation would settle them.
func (s *LedgerQueryService) ListOpenInvoices(ctx context.Context, vendorID uuid.UUID) ([]InvoiceBalanceResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice_balance", "list_open")
	defer span.End()

	if vendorID == uuid.Nil {
		return nil, shared.NewValidationError("vendor is required")
	}
	open, err := s.balances.ListOpenInvoices(ctx, vendorID, uuid.Nil)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	results := make([]InvoiceBalanceResult, 0, len(open))
	for i := range open {
		results = append(results, *toInvoiceBalanceResult(&open[i]))
	}
	return results, nil
}
