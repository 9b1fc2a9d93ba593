package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/erp/vendorledger/internal/application/procurement"
	"github.com/erp/vendorledger/internal/domain/finance"
	"github.com/erp/vendorledger/internal/domain/shared"
	"github.com/erp/vendorledger/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLedgerHandler_Ledger(t *testing.T) {
	vendorID := uuid.New()
	reader := new(mockLedgerReader)
	reader.On("GetVendorLedger", mock.Anything, vendorID).Return([]finance.LedgerEntry{
		{EntryType: finance.LedgerEntryPayment, DocumentNo: "PAY-2", Date: time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(300)},
		{EntryType: finance.LedgerEntryInvoice, DocumentNo: "PI-1", Date: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(1000)},
	}, nil)

	r := newTestRouter(NewLedgerHandler(reader), uuid.Nil)
	w, body := doJSON(t, r, http.MethodGet, "/api/v1/vendors/"+vendorID.String()+"/ledger", nil)

	require.Equal(t, http.StatusOK, w.Code)
	rows := body["data"].([]any)
	require.Len(t, rows, 2)
	first := rows[0].(map[string]any)
	assert.Equal(t, "PAYMENT", first["entry_type"])
	assert.Equal(t, "2026-03-05", first["date"])
	assert.NotContains(t, first, "balance")
}

func TestLedgerHandler_Statement(t *testing.T) {
	vendorID := uuid.New()
	entries := []finance.LedgerEntry{
		{EntryType: finance.LedgerEntryInvoice, DocumentNo: "PI-1", Date: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(1000)},
		{EntryType: finance.LedgerEntryPayment, DocumentNo: "PAY-2", Date: time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(300)},
	}
	reader := new(mockLedgerReader)
	reader.On("GetVendorStatement", mock.Anything, vendorID).Return(&procurement.VendorStatement{
		VendorID:       vendorID,
		Lines:          finance.RunningBalance(entries),
		ClosingBalance: decimal.NewFromInt(700),
	}, nil)

	r := newTestRouter(NewLedgerHandler(reader), uuid.Nil)
	w, body := doJSON(t, r, http.MethodGet, "/api/v1/vendors/"+vendorID.String()+"/statement", nil)

	require.Equal(t, http.StatusOK, w.Code)
	d := data(t, body)
	assert.Equal(t, "700", d["closing_balance"])
	lines := d["lines"].([]any)
	require.Len(t, lines, 2)
	assert.Equal(t, "1000", lines[0].(map[string]any)["balance"])
	assert.Equal(t, "700", lines[1].(map[string]any)["balance"])
}

func TestLedgerHandler_OpenInvoices(t *testing.T) {
	vendorID := uuid.New()

	t.Run("lists balances", func(t *testing.T) {
		reader := new(mockLedgerReader)
		reader.On("ListOpenInvoices", mock.Anything, vendorID).Return([]procurement.InvoiceBalanceResult{
			{InvoiceID: uuid.New(), InvoiceNumber: "PI-1", Status: trade.PurchaseInvoiceStatusVerified, Balance: decimal.NewFromInt(700)},
		}, nil)

		r := newTestRouter(NewLedgerHandler(reader), uuid.Nil)
		w, body := doJSON(t, r, http.MethodGet, "/api/v1/vendors/"+vendorID.String()+"/open-invoices", nil)

		require.Equal(t, http.StatusOK, w.Code)
		rows := body["data"].([]any)
		require.Len(t, rows, 1)
		assert.Equal(t, "700", rows[0].(map[string]any)["balance"])
	})

	t.Run("unknown vendor", func(t *testing.T) {
		reader := new(mockLedgerReader)
		reader.On("ListOpenInvoices", mock.Anything, vendorID).Return(nil, shared.ErrNotFound)

		r := newTestRouter(NewLedgerHandler(reader), uuid.Nil)
		w, body := doJSON(t, r, http.MethodGet, "/api/v1/vendors/"+vendorID.String()+"/open-invoices", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, shared.CodeNotFound, errorCode(t, body))
	})
}
