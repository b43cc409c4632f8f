package contract

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sikontrak/backend/internal/domain/shared"
)

// ContractFilter defines filtering options for contract queries
type ContractFilter struct {
	shared.Filter
	Status    *ContractStatus // Filter by status
	StartFrom *time.Time      // Filter by start date range start
	StartTo   *time.Time      // Filter by start date range end
	EndFrom   *time.Time      // Filter by end date range start
	EndTo     *time.Time      // Filter by end date range end
}

// ContractRepository defines the interface for contract persistence
type ContractRepository interface {
	// FindByID finds a contract by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Contract, error)

	// FindByContractNumber finds a contract by its number
	FindByContractNumber(ctx context.Context, contractNumber string) (*Contract, error)

	// FindAll finds contracts matching the filter with pagination
	FindAll(ctx context.Context, filter ContractFilter) ([]Contract, error)

	// FindExpiring finds active contracts ending within the given window
	FindExpiring(ctx context.Context, from, to time.Time) ([]Contract, error)

	// Save creates or updates a contract
	Save(ctx context.Context, contract *Contract) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, contract *Contract) error

	// Delete soft deletes a contract
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts contracts matching the filter
	Count(ctx context.Context, filter ContractFilter) (int64, error)

	// ExistsByContractNumber checks if a contract number is already taken
	ExistsByContractNumber(ctx context.Context, contractNumber string) (bool, error)
}
