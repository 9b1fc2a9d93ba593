package telemetry

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Ledger metric attribute keys.
var (
	AttrDocumentType   = attribute.Key("document_type")
	AttrAllocationMode = attribute.Key("allocation_mode")
	AttrSource         = attribute.Key("source")
	AttrOutcome        = attribute.Key("outcome")
	AttrOperation      = attribute.Key("operation")
)

// Reversal outcomes.
const (
	ReversalOutcomeReversed     = "reversed"
	ReversalOutcomeStockMoved   = "stock_moved"
	ReversalOutcomeInvalidState = "invalid_state"
	ReversalOutcomeFailed       = "failed"
)

// LedgerMetrics counts ledger activity: minted documents, allocation runs,
// reversals and conflict retries.
type LedgerMetrics struct {
	documentsCreated   *Counter
	allocationsTotal   *Counter
	allocatedCents     *Counter
	unappliedCents     *Counter
	reversalsTotal     *Counter
	conflictRetries    *Counter
	allocationDuration *Histogram
}

// NewLedgerMetrics creates the ledger instruments on meter.
func NewLedgerMetrics(meter metric.Meter) (*LedgerMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	var (
		m   LedgerMetrics
		err error
	)
	if m.documentsCreated, err = NewCounter(meter, "ledger_documents_created_total", "Documents minted from document sequences", "{documents}"); err != nil {
		return nil, err
	}
	if m.allocationsTotal, err = NewCounter(meter, "ledger_allocations_total", "Allocation rows written", "{allocations}"); err != nil {
		return nil, err
	}
	if m.allocatedCents, err = NewCounter(meter, "ledger_allocated_amount_total", "Amount applied to invoices, in cents", "{cents}"); err != nil {
		return nil, err
	}
	if m.unappliedCents, err = NewCounter(meter, "ledger_unapplied_amount_total", "Amount left as vendor advance or credit, in cents", "{cents}"); err != nil {
		return nil, err
	}
	if m.reversalsTotal, err = NewCounter(meter, "ledger_reversals_total", "GRN reversal attempts by outcome", "{reversals}"); err != nil {
		return nil, err
	}
	if m.conflictRetries, err = NewCounter(meter, "ledger_conflict_retries_total", "Units of work retried after a concurrency conflict", "{retries}"); err != nil {
		return nil, err
	}
	m.allocationDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "ledger_allocation_duration_seconds",
		Description: "Time spent planning and writing allocations",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// RecordDocumentCreated counts a minted document.
func (m *LedgerMetrics) RecordDocumentCreated(ctx context.Context, documentType string) {
	m.documentsCreated.Inc(ctx, AttrDocumentType.String(documentType))
}

// RecordAllocation records one allocation run.
func (m *LedgerMetrics) RecordAllocation(ctx context.Context, source, mode string, rows int, allocated, unapplied decimal.Decimal, took time.Duration) {
	attrs := []attribute.KeyValue{AttrSource.String(source), AttrAllocationMode.String(mode)}
	m.allocationsTotal.Add(ctx, int64(rows), attrs...)
	m.allocatedCents.Add(ctx, toCents(allocated), attrs...)
	if unapplied.IsPositive() {
		m.unappliedCents.Add(ctx, toCents(unapplied), attrs...)
	}
	m.allocationDuration.RecordDuration(ctx, took, attrs...)
}

// RecordReversal counts a reversal attempt.
func (m *LedgerMetrics) RecordReversal(ctx context.Context, outcome string) {
	m.reversalsTotal.Inc(ctx, AttrOutcome.String(outcome))
}

// RecordConflictRetry counts a retried unit of work.
func (m *LedgerMetrics) RecordConflictRetry(ctx context.Context, operation string) {
	m.conflictRetries.Inc(ctx, AttrOperation.String(operation))
}

func toCents(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewLedgerMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
