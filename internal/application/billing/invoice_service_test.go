package billing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sikontrak/backend/internal/domain/billing"
	"github.com/sikontrak/backend/internal/domain/contract"
	"github.com/sikontrak/backend/internal/domain/shared"
	"github.com/sikontrak/backend/internal/domain/shared/valueobject"
)

// =============================================================================
// Mock Repositories
// =============================================================================

// MockInvoiceRepository is a mock implementation of billing.InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByInvoiceNumber(ctx context.Context, invoiceNumber string) (*billing.Invoice, error) {
	args := m.Called(ctx, invoiceNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAll(ctx context.Context, filter billing.InvoiceFilter) ([]billing.Invoice, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByContract(ctx context.Context, contractID uuid.UUID, filter billing.InvoiceFilter) ([]billing.Invoice, error) {
	args := m.Called(ctx, contractID, filter)
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindOverdue(ctx context.Context, asOf time.Time, filter billing.InvoiceFilter) ([]billing.Invoice, error) {
	args := m.Called(ctx, asOf, filter)
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) SaveWithLock(ctx context.Context, invoice *billing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Count(ctx context.Context, filter billing.InvoiceFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) CountByStatus(ctx context.Context, status billing.InvoiceStatus) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) Summarize(ctx context.Context, filter billing.InvoiceFilter) (*billing.InvoiceSummary, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.InvoiceSummary), args.Error(1)
}

func (m *MockInvoiceRepository) ExistsByInvoiceNumber(ctx context.Context, invoiceNumber string) (bool, error) {
	args := m.Called(ctx, invoiceNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockInvoiceRepository) NextSequenceForMonth(ctx context.Context, year int, month time.Month) (int, error) {
	args := m.Called(ctx, year, month)
	return args.Int(0), args.Error(1)
}

// MockContractRepository is a mock implementation of contract.ContractRepository
type MockContractRepository struct {
	mock.Mock
}

func (m *MockContractRepository) FindByID(ctx context.Context, id uuid.UUID) (*contract.Contract, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contract.Contract), args.Error(1)
}

func (m *MockContractRepository) FindByContractNumber(ctx context.Context, contractNumber string) (*contract.Contract, error) {
	args := m.Called(ctx, contractNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contract.Contract), args.Error(1)
}

func (m *MockContractRepository) FindAll(ctx context.Context, filter contract.ContractFilter) ([]contract.Contract, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]contract.Contract), args.Error(1)
}

func (m *MockContractRepository) FindExpiring(ctx context.Context, from, to time.Time) ([]contract.Contract, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).([]contract.Contract), args.Error(1)
}

func (m *MockContractRepository) Save(ctx context.Context, contr *contract.Contract) error {
	args := m.Called(ctx, contr)
	return args.Error(0)
}

func (m *MockContractRepository) SaveWithLock(ctx context.Context, contr *contract.Contract) error {
	args := m.Called(ctx, contr)
	return args.Error(0)
}

func (m *MockContractRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockContractRepository) Count(ctx context.Context, filter contract.ContractFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockContractRepository) ExistsByContractNumber(ctx context.Context, contractNumber string) (bool, error) {
	args := m.Called(ctx, contractNumber)
	return args.Bool(0), args.Error(1)
}

// MockIdempotencyStore is a mock implementation of shared.IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockIdempotencyStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// =============================================================================
// Test Helpers
// =============================================================================

func newServiceContract(t *testing.T) *contract.Contract {
	t.Helper()
	c, err := contract.NewContract(
		"K.TEL.123/HK.810/2025",
		"PT Telkom Indonesia",
		valueobject.NewMoneyIDRFromInt(5_000_000_000),
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	return c
}

func newServiceInvoice(t *testing.T, baseAmount int64) *billing.Invoice {
	t.Helper()
	inv, err := billing.NewInvoice(
		"INV-202503-001",
		uuid.New(),
		"K.TEL.123/HK.810/2025",
		"PT Telkom Indonesia",
		valueobject.NewMoneyIDRFromInt(baseAmount),
		time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		nil,
	)
	require.NoError(t, err)
	return inv
}

// =============================================================================
// Tests
// =============================================================================

func TestInvoiceService_CreateInvoice(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	contractRepo := new(MockContractRepository)
	service := NewInvoiceService(invoiceRepo, contractRepo, nil)

	contr := newServiceContract(t)
	invoiceDate := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	contractRepo.On("FindByID", mock.Anything, contr.ID).Return(contr, nil)
	invoiceRepo.On("NextSequenceForMonth", mock.Anything, 2025, time.March).Return(7, nil)
	invoiceRepo.On("Save", mock.Anything, mock.AnythingOfType("*billing.Invoice")).Return(nil)

	resp, err := service.CreateInvoice(context.Background(), CreateInvoiceRequest{
		ContractID:  contr.ID,
		BaseAmount:  "1000000",
		InvoiceDate: &invoiceDate,
	})

	require.NoError(t, err)
	assert.Equal(t, "INV-202503-007", resp.InvoiceNumber)
	assert.Equal(t, contr.ContractNumber, resp.ContractNumber)
	assert.True(t, resp.NetPayableAmount.Equal(decimal.NewFromInt(1_087_800)))
	assert.Equal(t, "DRAFT", resp.Status)
	invoiceRepo.AssertExpectations(t)
	contractRepo.AssertExpectations(t)
}

func TestInvoiceService_CreateInvoice_InvalidAmount(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	contractRepo := new(MockContractRepository)
	service := NewInvoiceService(invoiceRepo, contractRepo, nil)

	contr := newServiceContract(t)
	contractRepo.On("FindByID", mock.Anything, contr.ID).Return(contr, nil)

	_, err := service.CreateInvoice(context.Background(), CreateInvoiceRequest{
		ContractID: contr.ID,
		BaseAmount: "not-a-number",
	})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_AMOUNT", domainErr.Code)
	invoiceRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestInvoiceService_RecordPayment(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	contractRepo := new(MockContractRepository)
	service := NewInvoiceService(invoiceRepo, contractRepo, nil)

	invoice := newServiceInvoice(t, 1_000_000)
	invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)
	invoiceRepo.On("SaveWithLock", mock.Anything, invoice).Return(nil)

	resp, err := service.RecordPayment(context.Background(), invoice.ID, RecordPaymentRequest{
		Amount:        "500000",
		PaymentMethod: "TRANSFER",
	})

	require.NoError(t, err)
	assert.Equal(t, "PARTIALLY_PAID", resp.Status)
	assert.True(t, resp.PaidAmount.Equal(decimal.NewFromInt(500_000)))
	assert.Len(t, resp.Payments, 1)
	invoiceRepo.AssertExpectations(t)
}

func TestInvoiceService_RecordPayment_ExceedsOutstanding(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	contractRepo := new(MockContractRepository)
	service := NewInvoiceService(invoiceRepo, contractRepo, nil)

	invoice := newServiceInvoice(t, 1_000_000)
	invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)

	_, err := service.RecordPayment(context.Background(), invoice.ID, RecordPaymentRequest{
		Amount: "2000000",
	})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "EXCEEDS_OUTSTANDING", domainErr.Code)
	invoiceRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestInvoiceService_RecordPayment_Idempotency(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	contractRepo := new(MockContractRepository)
	store := new(MockIdempotencyStore)
	service := NewInvoiceService(invoiceRepo, contractRepo, store)

	invoice := newServiceInvoice(t, 1_000_000)
	invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)

	// Duplicate request: key already processed, no payment is recorded
	store.On("MarkProcessed", mock.Anything, mock.AnythingOfType("string"), idempotencyTTL).Return(false, nil)

	resp, err := service.RecordPayment(context.Background(), invoice.ID, RecordPaymentRequest{
		Amount:         "500000",
		IdempotencyKey: "req-123",
	})

	require.NoError(t, err)
	assert.True(t, resp.PaidAmount.IsZero())
	assert.Empty(t, resp.Payments)
	invoiceRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	store.AssertExpectations(t)
}

func TestInvoiceService_RecordPayment_RetryAfterFailedSave(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	contractRepo := new(MockContractRepository)
	store := new(MockIdempotencyStore)
	service := NewInvoiceService(invoiceRepo, contractRepo, store)

	first := newServiceInvoice(t, 1_000_000)
	second := newServiceInvoice(t, 1_000_000)
	lockErr := shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The invoice has been modified by another transaction")

	// The key is claimed on each attempt; a failed save must release it so
	// the retry does not take the duplicate path.
	store.On("MarkProcessed", mock.Anything, mock.AnythingOfType("string"), idempotencyTTL).Return(true, nil).Twice()
	store.On("Release", mock.Anything, mock.AnythingOfType("string")).Return(nil).Once()

	invoiceRepo.On("FindByID", mock.Anything, first.ID).Return(first, nil).Once()
	invoiceRepo.On("SaveWithLock", mock.Anything, first).Return(lockErr).Once()
	invoiceRepo.On("FindByID", mock.Anything, first.ID).Return(second, nil).Once()
	invoiceRepo.On("SaveWithLock", mock.Anything, second).Return(nil).Once()

	req := RecordPaymentRequest{
		Amount:         "500000",
		PaymentMethod:  "TRANSFER",
		IdempotencyKey: "req-456",
	}

	_, err := service.RecordPayment(context.Background(), first.ID, req)
	require.Error(t, err)

	resp, err := service.RecordPayment(context.Background(), first.ID, req)
	require.NoError(t, err)
	assert.True(t, resp.PaidAmount.Equal(decimal.NewFromInt(500_000)))
	assert.Len(t, resp.Payments, 1)
	store.AssertExpectations(t)
	invoiceRepo.AssertExpectations(t)
}

func TestInvoiceService_SettlementFlow(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	contractRepo := new(MockContractRepository)
	service := NewInvoiceService(invoiceRepo, contractRepo, nil)

	invoice := newServiceInvoice(t, 1_000_000)
	invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)
	invoiceRepo.On("SaveWithLock", mock.Anything, invoice).Return(nil)

	ctx := context.Background()

	resp, err := service.RecordPayment(ctx, invoice.ID, RecordPaymentRequest{Amount: "1087800"})
	require.NoError(t, err)
	assert.Equal(t, "PAID_PENDING_PPN", resp.Status)
	assert.False(t, resp.CanAddPayment)

	resp, err = service.UpdateTaxFlags(ctx, invoice.ID, UpdateTaxFlagsRequest{PPNPaid: true})
	require.NoError(t, err)
	assert.Equal(t, "PAID_PENDING_PPH23", resp.Status)

	resp, err = service.UpdateTaxFlags(ctx, invoice.ID, UpdateTaxFlagsRequest{PPNPaid: true, PPH23Paid: true})
	require.NoError(t, err)
	assert.Equal(t, "PAID", resp.Status)
	require.NotNil(t, resp.PaidAt)
}

func TestInvoiceService_UpdatePayment(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	contractRepo := new(MockContractRepository)
	service := NewInvoiceService(invoiceRepo, contractRepo, nil)

	invoice := newServiceInvoice(t, 1_000_000)
	record := billing.NewPaymentRecord(time.Now(), valueobject.NewMoneyIDRFromInt(500_000), billing.PaymentMethodTransfer, "TRX-1", uuid.Nil)
	require.NoError(t, invoice.AddPayment(record))

	invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)
	invoiceRepo.On("SaveWithLock", mock.Anything, invoice).Return(nil)

	resp, err := service.UpdatePayment(context.Background(), invoice.ID, record.ID, UpdatePaymentRequest{
		Amount: "300000",
	})

	require.NoError(t, err)
	assert.True(t, resp.PaidAmount.Equal(decimal.NewFromInt(300_000)))
}

func TestInvoiceService_DeletePayment(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	contractRepo := new(MockContractRepository)
	service := NewInvoiceService(invoiceRepo, contractRepo, nil)

	invoice := newServiceInvoice(t, 1_000_000)
	record := billing.NewPaymentRecord(time.Now(), valueobject.NewMoneyIDRFromInt(500_000), billing.PaymentMethodTransfer, "TRX-1", uuid.Nil)
	require.NoError(t, invoice.AddPayment(record))

	invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)
	invoiceRepo.On("SaveWithLock", mock.Anything, invoice).Return(nil)

	resp, err := service.DeletePayment(context.Background(), invoice.ID, record.ID)

	require.NoError(t, err)
	assert.True(t, resp.PaidAmount.IsZero())
	assert.Equal(t, "DRAFT", resp.Status)
}

func TestInvoiceService_SendAndCancel(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	contractRepo := new(MockContractRepository)
	service := NewInvoiceService(invoiceRepo, contractRepo, nil)

	invoice := newServiceInvoice(t, 1_000_000)
	invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)
	invoiceRepo.On("SaveWithLock", mock.Anything, invoice).Return(nil)

	ctx := context.Background()

	resp, err := service.SendInvoice(ctx, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, "SENT", resp.Status)

	resp, err = service.CancelInvoice(ctx, invoice.ID, "kontrak dibatalkan")
	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", resp.Status)
	assert.Equal(t, "kontrak dibatalkan", resp.CancelReason)
}

func TestInvoiceService_CancelWithoutReason(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	contractRepo := new(MockContractRepository)
	service := NewInvoiceService(invoiceRepo, contractRepo, nil)

	invoice := newServiceInvoice(t, 1_000_000)
	invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)

	_, err := service.CancelInvoice(context.Background(), invoice.ID, "")

	require.Error(t, err)
	invoiceRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestInvoiceService_ListInvoices(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	contractRepo := new(MockContractRepository)
	service := NewInvoiceService(invoiceRepo, contractRepo, nil)

	invoice := newServiceInvoice(t, 1_000_000)
	invoiceRepo.On("FindAll", mock.Anything, mock.AnythingOfType("billing.InvoiceFilter")).Return([]billing.Invoice{*invoice}, nil)
	invoiceRepo.On("Count", mock.Anything, mock.AnythingOfType("billing.InvoiceFilter")).Return(int64(1), nil)

	responses, total, err := service.ListInvoices(context.Background(), InvoiceListFilter{
		Status:   "DRAFT",
		Page:     1,
		PageSize: 20,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, responses, 1)
	assert.Equal(t, invoice.InvoiceNumber, responses[0].InvoiceNumber)
}
