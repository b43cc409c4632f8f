package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sikontrak/backend/internal/domain/contract"
	"github.com/sikontrak/backend/internal/domain/shared"
	"github.com/sikontrak/backend/internal/infrastructure/persistence/models"
)

// GormContractRepository implements ContractRepository using GORM
type GormContractRepository struct {
	db *gorm.DB
}

// NewGormContractRepository creates a new GormContractRepository
func NewGormContractRepository(db *gorm.DB) *GormContractRepository {
	return &GormContractRepository{db: db}
}

// FindByID finds a contract by its ID
func (r *GormContractRepository) FindByID(ctx context.Context, id uuid.UUID) (*contract.Contract, error) {
	var model models.ContractModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByContractNumber finds a contract by its number
func (r *GormContractRepository) FindByContractNumber(ctx context.Context, contractNumber string) (*contract.Contract, error) {
	var model models.ContractModel
	if err := r.db.WithContext(ctx).
		Where("contract_number = ?", contractNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all contracts matching the filter
func (r *GormContractRepository) FindAll(ctx context.Context, filter contract.ContractFilter) ([]contract.Contract, error) {
	var contractModels []models.ContractModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ContractModel{}), filter)

	if err := query.Find(&contractModels).Error; err != nil {
		return nil, err
	}

	return toDomainContracts(contractModels), nil
}

// FindExpiring finds active contracts ending within the given window
func (r *GormContractRepository) FindExpiring(ctx context.Context, from, to time.Time) ([]contract.Contract, error) {
	var contractModels []models.ContractModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", contract.ContractStatusActive).
		Where("end_date >= ? AND end_date <= ?", from, to).
		Order("end_date ASC").
		Find(&contractModels).Error; err != nil {
		return nil, err
	}

	return toDomainContracts(contractModels), nil
}

// Save creates or updates a contract
func (r *GormContractRepository) Save(ctx context.Context, contr *contract.Contract) error {
	model := models.ContractModelFromDomain(contr)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves a contract with optimistic locking (version check)
// Returns error if the version has changed (concurrent modification)
func (r *GormContractRepository) SaveWithLock(ctx context.Context, contr *contract.Contract) error {
	model := models.ContractModelFromDomain(contr)
	// Select("*") forces zero-valued columns into the UPDATE so a reset
	// field (e.g. terminated_at cleared) is not silently dropped.
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", contr.ID, contr.Version-1).
		Select("*").
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The contract has been modified by another transaction")
	}
	return nil
}

// Delete deletes a contract
func (r *GormContractRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ContractModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts contracts matching the filter
func (r *GormContractRepository) Count(ctx context.Context, filter contract.ContractFilter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.ContractModel{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByContractNumber checks if a contract with the given number exists
func (r *GormContractRepository) ExistsByContractNumber(ctx context.Context, contractNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ContractModel{}).
		Where("contract_number = ?", contractNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies filter options to the query including pagination and ordering
func (r *GormContractRepository) applyFilter(query *gorm.DB, filter contract.ContractFilter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, ContractSortFields, "start_date")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(orderBy + " " + orderDir)

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormContractRepository) applyFilterWithoutPagination(query *gorm.DB, filter contract.ContractFilter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("contract_number ILIKE ? OR customer_name ILIKE ? OR description ILIKE ?",
			searchPattern, searchPattern, searchPattern)
	}

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.StartFrom != nil {
		query = query.Where("start_date >= ?", *filter.StartFrom)
	}
	if filter.StartTo != nil {
		query = query.Where("start_date <= ?", *filter.StartTo)
	}
	if filter.EndFrom != nil {
		query = query.Where("end_date >= ?", *filter.EndFrom)
	}
	if filter.EndTo != nil {
		query = query.Where("end_date <= ?", *filter.EndTo)
	}

	return query
}

func toDomainContracts(contractModels []models.ContractModel) []contract.Contract {
	contracts := make([]contract.Contract, len(contractModels))
	for i, model := range contractModels {
		contracts[i] = *model.ToDomain()
	}
	return contracts
}

// Ensure GormContractRepository implements ContractRepository
var _ contract.ContractRepository = (*GormContractRepository)(nil)
