package contract

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sikontrak/backend/internal/domain/contract"
	"github.com/sikontrak/backend/internal/domain/shared"
	"github.com/sikontrak/backend/internal/domain/shared/valueobject"
)

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

func intPtr(n int) *int {
	return &n
}

func newStoredContract(t *testing.T) *contract.Contract {
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

func TestContractService_CreateContract(t *testing.T) {
	repo := new(MockContractRepository)
	service := NewContractService(repo)

	repo.On("ExistsByContractNumber", mock.Anything, "K.TEL.999/HK.810/2025").Return(false, nil)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*contract.Contract")).Return(nil)

	resp, err := service.CreateContract(context.Background(), CreateContractRequest{
		ContractNumber: "K.TEL.999/HK.810/2025",
		CustomerName:   "PT Telkom Indonesia",
		Value:          "5000000000",
		StartDate:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
		Termins: []TerminDescriptorInput{
			{TerminNumber: intPtr(1), Period: "Januari 2025"},
			{TerminNumber: intPtr(2), Period: "Juli 2025"},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "ACTIVE", resp.Status)
	require.Len(t, resp.Termins, 2)
	assert.Equal(t, "Januari 2025", resp.Termins[0].Label)
	assert.True(t, resp.Termins[0].Parsed)
	require.NotNil(t, resp.Duration)
	assert.Equal(t, "ANNUAL", resp.Duration.Class)
	repo.AssertExpectations(t)
}

func TestContractService_CreateContract_DuplicateNumber(t *testing.T) {
	repo := new(MockContractRepository)
	service := NewContractService(repo)

	repo.On("ExistsByContractNumber", mock.Anything, "K-1").Return(true, nil)

	_, err := service.CreateContract(context.Background(), CreateContractRequest{
		ContractNumber: "K-1",
		CustomerName:   "Customer",
		Value:          "1000000",
		StartDate:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
	})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestContractService_CreateContract_EndBeforeStart(t *testing.T) {
	repo := new(MockContractRepository)
	service := NewContractService(repo)

	repo.On("ExistsByContractNumber", mock.Anything, "K-1").Return(false, nil)

	_, err := service.CreateContract(context.Background(), CreateContractRequest{
		ContractNumber: "K-1",
		CustomerName:   "Customer",
		Value:          "1000000",
		StartDate:      time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "END_BEFORE_START", domainErr.Code)
}

func TestContractService_UpdateTermins(t *testing.T) {
	repo := new(MockContractRepository)
	service := NewContractService(repo)

	contr := newStoredContract(t)
	repo.On("FindByID", mock.Anything, contr.ID).Return(contr, nil)
	repo.On("SaveWithLock", mock.Anything, contr).Return(nil)

	resp, err := service.UpdateTermins(context.Background(), contr.ID, UpdateTerminsRequest{
		Termins: []TerminDescriptorInput{
			{TerminNumber: intPtr(1), RawText: "termin1 nopember2025"},
		},
	})

	require.NoError(t, err)
	require.Len(t, resp.Termins, 1)
	assert.True(t, resp.Termins[0].Parsed)
	assert.Equal(t, "November 2025", resp.Termins[0].Label)
	repo.AssertExpectations(t)
}

func TestContractService_GetNextTermin(t *testing.T) {
	repo := new(MockContractRepository)
	service := NewContractService(repo)

	contr := newStoredContract(t)
	// One schedule entry far in the future is always upcoming
	require.NoError(t, contr.SetTermins([]contract.TerminDescriptor{
		{TerminNumber: intPtr(1), Period: "Desember 2099"},
	}))
	repo.On("FindByID", mock.Anything, contr.ID).Return(contr, nil)

	next, err := service.GetNextTermin(context.Background(), contr.ID)

	require.NoError(t, err)
	assert.Equal(t, "Desember 2099", next.Label)
}

func TestContractService_GetNextTermin_NoSchedule(t *testing.T) {
	repo := new(MockContractRepository)
	service := NewContractService(repo)

	contr := newStoredContract(t)
	repo.On("FindByID", mock.Anything, contr.ID).Return(contr, nil)

	_, err := service.GetNextTermin(context.Background(), contr.ID)

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NO_TERMINS", domainErr.Code)
}

func TestContractService_TerminateContract(t *testing.T) {
	repo := new(MockContractRepository)
	service := NewContractService(repo)

	contr := newStoredContract(t)
	repo.On("FindByID", mock.Anything, contr.ID).Return(contr, nil)
	repo.On("SaveWithLock", mock.Anything, contr).Return(nil)

	resp, err := service.TerminateContract(context.Background(), contr.ID, "layanan dihentikan")

	require.NoError(t, err)
	assert.Equal(t, "TERMINATED", resp.Status)
	assert.Equal(t, "layanan dihentikan", resp.TerminateNote)
}
