package procurement

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erp/vendorledger/internal/domain/finance"
	"github.com/erp/vendorledger/internal/domain/shared"
	"github.com/erp/vendorledger/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLedgerQueryService(t *testing.T) {
	ctx := context.Background()
	vendorID := uuid.New()
	day := func(d int) time.Time { return time.Date(2026, 4, d, 0, 0, 0, 0, time.UTC) }

	entries := []finance.LedgerEntry{
		{EntryType: finance.LedgerEntryPayment, DocumentNo: "PAY-1", VendorID: vendorID, Date: day(3), CreatedAt: day(3), Amount: dec("300")},
		{EntryType: finance.LedgerEntryInvoice, DocumentNo: "PI-1", VendorID: vendorID, Date: day(1), CreatedAt: day(1), Amount: dec("500")},
		{EntryType: finance.LedgerEntryDebitNote, DocumentNo: "DN-1", VendorID: vendorID, Date: day(5), CreatedAt: day(5), Amount: dec("50")},
	}

	t.Run("ledger is newest first", func(t *testing.T) {
		ledger := new(MockLedgerRepository)
		ledger.On("VendorLedger", mock.Anything, vendorID).Return(append([]finance.LedgerEntry(nil), entries...), nil)

		svc := NewLedgerQueryService(ledger, new(MockInvoiceBalanceRepository), nil)
		got, err := svc.GetVendorLedger(ctx, vendorID)

		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "DN-1", got[0].DocumentNo)
		assert.Equal(t, "PI-1", got[2].DocumentNo)
	})

	t.Run("statement carries a running balance", func(t *testing.T) {
		ledger := new(MockLedgerRepository)
		ledger.On("VendorLedger", mock.Anything, vendorID).Return(append([]finance.LedgerEntry(nil), entries...), nil)

		svc := NewLedgerQueryService(ledger, new(MockInvoiceBalanceRepository), nil)
		st, err := svc.GetVendorStatement(ctx, vendorID)

		require.NoError(t, err)
		require.Len(t, st.Lines, 3)
		assert.True(t, st.Lines[0].Balance.Equal(dec("500")))
		assert.True(t, st.Lines[1].Balance.Equal(dec("200")))
		assert.True(t, st.Lines[2].Balance.Equal(dec("150")))
		assert.True(t, st.ClosingBalance.Equal(dec("150")))
	})

	t.Run("reversed invoice balance is zero", func(t *testing.T) {
		balances := new(MockInvoiceBalanceRepository)
		id := uuid.New()
		balances.On("Balance", mock.Anything, id).Return(&finance.InvoiceBalance{
			InvoiceID: id, Status: trade.PurchaseInvoiceStatusReversed,
			GrandTotal: dec("500"), Paid: dec("200"), DebitNoteApplied: dec("300"),
		}, nil)

		svc := NewLedgerQueryService(new(MockLedgerRepository), balances, nil)
		res, err := svc.GetInvoiceBalance(ctx, id)

		require.NoError(t, err)
		assert.True(t, res.Balance.IsZero())
	})

	t.Run("missing invoice", func(t *testing.T) {
		balances := new(MockInvoiceBalanceRepository)
		id := uuid.New()
		balances.On("Balance", mock.Anything, id).Return(nil, shared.ErrNotFound)

		svc := NewLedgerQueryService(new(MockLedgerRepository), balances, nil)
		_, err := svc.GetInvoiceBalance(ctx, id)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("open invoices keep allocation order", func(t *testing.T) {
		balances := new(MockInvoiceBalanceRepository)
		a := openInvoice(vendorID, "PI-1", "300", "100", day(1))
		b := openInvoice(vendorID, "PI-2", "200", "0", day(2))
		balances.On("ListOpenInvoices", mock.Anything, vendorID, uuid.Nil).Return([]finance.InvoiceBalance{a, b}, nil)

		svc := NewLedgerQueryService(new(MockLedgerRepository), balances, nil)
		got, err := svc.ListOpenInvoices(ctx, vendorID)

		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "PI-1", got[0].InvoiceNumber)
		assert.True(t, got[0].Balance.Equal(dec("200")))
	})
}
