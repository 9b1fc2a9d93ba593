package procurement

import (
	"context"
	"time"

	"github.com/erp/vendorledger/internal/domain/finance"
	"github.com/erp/vendorledger/internal/domain/inventory"
	"github.com/erp/vendorledger/internal/domain/partner"
	"github.com/erp/vendorledger/internal/domain/sequence"
	"github.com/erp/vendorledger/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockSequenceGenerator is a mock implementation of sequence.Generator
type MockSequenceGenerator struct {
	mock.Mock
}

func (m *MockSequenceGenerator) NextNumber(ctx context.Context, documentType sequence.DocumentType) (sequence.Number, error) {
	args := m.Called(ctx, documentType)
	return args.Get(0).(sequence.Number), args.Error(1)
}

// MockVendorRepository is a mock implementation of partner.VendorRepository
type MockVendorRepository struct {
	mock.Mock
}

func (m *MockVendorRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Vendor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Vendor), args.Error(1)
}

// MockPurchaseOrderRepository is a mock implementation of trade.PurchaseOrderRepository
type MockPurchaseOrderRepository struct {
	mock.Mock
}

func (m *MockPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.PurchaseOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*trade.PurchaseOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) Create(ctx context.Context, order *trade.PurchaseOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) Update(ctx context.Context, order *trade.PurchaseOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) MarkReceived(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockPurchaseInvoiceRepository is a mock implementation of trade.PurchaseInvoiceRepository
type MockPurchaseInvoiceRepository struct {
	mock.Mock
}

func (m *MockPurchaseInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.PurchaseInvoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.PurchaseInvoice), args.Error(1)
}

func (m *MockPurchaseInvoiceRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*trade.PurchaseInvoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.PurchaseInvoice), args.Error(1)
}

func (m *MockPurchaseInvoiceRepository) Create(ctx context.Context, invoice *trade.PurchaseInvoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockPurchaseInvoiceRepository) MarkReversed(ctx context.Context, invoice *trade.PurchaseInvoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

// MockProductBatchRepository is a mock implementation of inventory.ProductBatchRepository
type MockProductBatchRepository struct {
	mock.Mock
}

func (m *MockProductBatchRepository) Create(ctx context.Context, batch *inventory.ProductBatch) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}

func (m *MockProductBatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.ProductBatch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.ProductBatch), args.Error(1)
}

func (m *MockProductBatchRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*inventory.ProductBatch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.ProductBatch), args.Error(1)
}

func (m *MockProductBatchRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]inventory.ProductBatch, error) {
	args := m.Called(ctx, invoiceID)
	return args.Get(0).([]inventory.ProductBatch), args.Error(1)
}

func (m *MockProductBatchRepository) FindByInvoiceForUpdate(ctx context.Context, invoiceID uuid.UUID) ([]inventory.ProductBatch, error) {
	args := m.Called(ctx, invoiceID)
	return args.Get(0).([]inventory.ProductBatch), args.Error(1)
}

func (m *MockProductBatchRepository) VoidBatches(ctx context.Context, invoiceID uuid.UUID) (int64, error) {
	args := m.Called(ctx, invoiceID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductBatchRepository) FindAvailableByProduct(ctx context.Context, productID uuid.UUID) ([]inventory.ProductBatch, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).([]inventory.ProductBatch), args.Error(1)
}

func (m *MockProductBatchRepository) UpdateQuantities(ctx context.Context, id uuid.UUID, qtyGood, qtyDamaged decimal.Decimal) error {
	args := m.Called(ctx, id, qtyGood, qtyDamaged)
	return args.Error(0)
}

// MockInvoiceBalanceRepository is a mock implementation of finance.InvoiceBalanceRepository
type MockInvoiceBalanceRepository struct {
	mock.Mock
}

func (m *MockInvoiceBalanceRepository) Balance(ctx context.Context, invoiceID uuid.UUID) (*finance.InvoiceBalance, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.InvoiceBalance), args.Error(1)
}

func (m *MockInvoiceBalanceRepository) ListOpenInvoices(ctx context.Context, vendorID, excludeInvoiceID uuid.UUID) ([]finance.InvoiceBalance, error) {
	args := m.Called(ctx, vendorID, excludeInvoiceID)
	return args.Get(0).([]finance.InvoiceBalance), args.Error(1)
}

func (m *MockInvoiceBalanceRepository) LockOpenInvoices(ctx context.Context, vendorID, excludeInvoiceID uuid.UUID) ([]finance.InvoiceBalance, error) {
	args := m.Called(ctx, vendorID, excludeInvoiceID)
	return args.Get(0).([]finance.InvoiceBalance), args.Error(1)
}

// MockPaymentRepository is a mock implementation of finance.PaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *finance.VendorPayment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.VendorPayment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.VendorPayment), args.Error(1)
}

// MockDebitNoteRepository is a mock implementation of finance.DebitNoteRepository
type MockDebitNoteRepository struct {
	mock.Mock
}

func (m *MockDebitNoteRepository) Create(ctx context.Context, note *finance.DebitNote) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}

func (m *MockDebitNoteRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.DebitNote, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.DebitNote), args.Error(1)
}

// MockBankAccountRepository is a mock implementation of finance.BankAccountRepository
type MockBankAccountRepository struct {
	mock.Mock
}

func (m *MockBankAccountRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*finance.BankAccount, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.BankAccount), args.Error(1)
}

func (m *MockBankAccountRepository) UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error {
	args := m.Called(ctx, id, balance)
	return args.Error(0)
}

// MockLedgerRepository is a mock implementation of finance.LedgerRepository
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) VendorLedger(ctx context.Context, vendorID uuid.UUID) ([]finance.LedgerEntry, error) {
	args := m.Called(ctx, vendorID)
	return args.Get(0).([]finance.LedgerEntry), args.Error(1)
}

// MockIdempotencyStore is a mock implementation of shared.IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Complete(ctx context.Context, key string, result []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, result, ttl)
	return args.Error(0)
}

func (m *MockIdempotencyStore) Result(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Forget(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockIdempotencyStore) Close() error {
	return m.Called().Error(0)
}

// repoMocks bundles one mock per store behind a NoOpTransactionScope.
type repoMocks struct {
	seq      *MockSequenceGenerator
	vendors  *MockVendorRepository
	orders   *MockPurchaseOrderRepository
	invoices *MockPurchaseInvoiceRepository
	batches  *MockProductBatchRepository
	balances *MockInvoiceBalanceRepository
	payments *MockPaymentRepository
	notes    *MockDebitNoteRepository
	banks    *MockBankAccountRepository
}

func newRepoMocks() *repoMocks {
	return &repoMocks{
		seq:      new(MockSequenceGenerator),
		vendors:  new(MockVendorRepository),
		orders:   new(MockPurchaseOrderRepository),
		invoices: new(MockPurchaseInvoiceRepository),
		batches:  new(MockProductBatchRepository),
		balances: new(MockInvoiceBalanceRepository),
		payments: new(MockPaymentRepository),
		notes:    new(MockDebitNoteRepository),
		banks:    new(MockBankAccountRepository),
	}
}

func (r *repoMocks) scope() *NoOpTransactionScope {
	return NewNoOpTransactionScope(Repositories{
		SequenceGenerator: r.seq,
		VendorRepo:        r.vendors,
		PurchaseOrderRepo: r.orders,
		InvoiceRepo:       r.invoices,
		BatchRepo:         r.batches,
		BalanceRepo:       r.balances,
		PaymentRepo:       r.payments,
		DebitNoteRepo:     r.notes,
		BankAccountRepo:   r.banks,
	})
}

// activeVendor registers an active vendor with the vendor mock.
func (r *repoMocks) activeVendor() *partner.Vendor {
	v, _ := partner.NewVendor("acme", "Acme Pharma")
	r.vendors.On("FindByID", mock.Anything, v.ID).Return(v, nil)
	return v
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func number(prefix string, n int64) sequence.Number {
	return sequence.Number{Prefix: prefix, Value: n}
}
