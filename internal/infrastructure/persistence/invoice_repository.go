package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sikontrak/backend/internal/domain/billing"
	"github.com/sikontrak/backend/internal/domain/shared"
	"github.com/sikontrak/backend/internal/infrastructure/persistence/models"
)

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice by its ID
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByInvoiceNumber finds an invoice by its number
func (r *GormInvoiceRepository) FindByInvoiceNumber(ctx context.Context, invoiceNumber string) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("invoice_number = ?", invoiceNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all invoices matching the filter
func (r *GormInvoiceRepository) FindAll(ctx context.Context, filter billing.InvoiceFilter) ([]billing.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.InvoiceModel{}), filter)

	if err := query.Find(&invoiceModels).Error; err != nil {
		return nil, err
	}

	return toDomainInvoices(invoiceModels), nil
}

// FindByContract finds all invoices for a contract
func (r *GormInvoiceRepository) FindByContract(ctx context.Context, contractID uuid.UUID, filter billing.InvoiceFilter) ([]billing.Invoice, error) {
	filter.ContractID = &contractID
	return r.FindAll(ctx, filter)
}

// FindOverdue finds invoices past due that are neither paid nor cancelled
func (r *GormInvoiceRepository) FindOverdue(ctx context.Context, asOf time.Time, filter billing.InvoiceFilter) ([]billing.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.InvoiceModel{}), filter).
		Where("due_date IS NOT NULL AND due_date < ?", asOf).
		Where("status NOT IN ?", []billing.InvoiceStatus{billing.InvoiceStatusPaid, billing.InvoiceStatusCancelled})

	if err := query.Find(&invoiceModels).Error; err != nil {
		return nil, err
	}

	return toDomainInvoices(invoiceModels), nil
}

// Save creates or updates an invoice
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves an invoice with optimistic locking (version check)
// Returns error if the version has changed (concurrent modification)
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, invoice *billing.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	// Select("*") forces zero-valued columns into the UPDATE: a cleared tax
	// flag or a paid_at reset to NULL must reach the database.
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", invoice.ID, invoice.Version-1).
		Select("*").
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The invoice has been modified by another transaction")
	}
	return nil
}

// Delete deletes an invoice
func (r *GormInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.InvoiceModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts invoices matching the filter
func (r *GormInvoiceRepository) Count(ctx context.Context, filter billing.InvoiceFilter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.InvoiceModel{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus counts invoices in a given status
func (r *GormInvoiceRepository) CountByStatus(ctx context.Context, status billing.InvoiceStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("status = ?", status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Summarize aggregates ledger totals for invoices matching the filter.
// Cancelled invoices are excluded from the totals.
func (r *GormInvoiceRepository) Summarize(ctx context.Context, filter billing.InvoiceFilter) (*billing.InvoiceSummary, error) {
	var summary billing.InvoiceSummary

	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.InvoiceModel{}), filter).
		Where("status <> ?", billing.InvoiceStatusCancelled)

	if err := query.
		Select(`COALESCE(SUM(amount), 0) AS total_invoiced,
			COALESCE(SUM(net_payable_amount), 0) AS total_net_payable,
			COALESCE(SUM(paid_amount), 0) AS total_paid,
			COALESCE(SUM(outstanding_amount), 0) AS total_outstanding,
			COUNT(*) AS invoice_count`).
		Scan(&summary).Error; err != nil {
		return nil, err
	}

	overdueQuery := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.InvoiceModel{}), filter).
		Where("due_date IS NOT NULL AND due_date < ?", time.Now()).
		Where("status NOT IN ?", []billing.InvoiceStatus{billing.InvoiceStatusPaid, billing.InvoiceStatusCancelled})
	if err := overdueQuery.Count(&summary.OverdueCount).Error; err != nil {
		return nil, err
	}

	return &summary, nil
}

// ExistsByInvoiceNumber checks if an invoice with the given number exists
func (r *GormInvoiceRepository) ExistsByInvoiceNumber(ctx context.Context, invoiceNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("invoice_number = ?", invoiceNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// NextSequenceForMonth returns the next invoice sequence number within a billing month.
// Invoice numbers follow INV-{yyyymm}-{seq}, so the sequence is recovered from
// the third dash-separated segment of existing numbers.
func (r *GormInvoiceRepository) NextSequenceForMonth(ctx context.Context, year int, month time.Month) (int, error) {
	prefix := fmt.Sprintf("INV-%04d%02d-", year, int(month))

	var maxSeq int
	if err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Select("COALESCE(MAX(CAST(split_part(invoice_number, '-', 3) AS INTEGER)), 0)").
		Where("invoice_number LIKE ?", prefix+"%").
		Scan(&maxSeq).Error; err != nil {
		return 0, err
	}

	return maxSeq + 1, nil
}

// applyFilter applies filter options to the query including pagination and ordering
func (r *GormInvoiceRepository) applyFilter(query *gorm.DB, filter billing.InvoiceFilter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, InvoiceSortFields, "invoice_date")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(orderBy + " " + orderDir)

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormInvoiceRepository) applyFilterWithoutPagination(query *gorm.DB, filter billing.InvoiceFilter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("invoice_number ILIKE ? OR contract_number ILIKE ? OR customer_name ILIKE ?",
			searchPattern, searchPattern, searchPattern)
	}

	if filter.ContractID != nil {
		query = query.Where("contract_id = ?", *filter.ContractID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Overdue != nil && *filter.Overdue {
		query = query.
			Where("due_date IS NOT NULL AND due_date < ?", time.Now()).
			Where("status NOT IN ?", []billing.InvoiceStatus{billing.InvoiceStatusPaid, billing.InvoiceStatusCancelled})
	}
	if filter.FromDate != nil {
		query = query.Where("invoice_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("invoice_date <= ?", *filter.ToDate)
	}
	if filter.DueFrom != nil {
		query = query.Where("due_date >= ?", *filter.DueFrom)
	}
	if filter.DueTo != nil {
		query = query.Where("due_date <= ?", *filter.DueTo)
	}
	if filter.MinAmount != nil {
		query = query.Where("net_payable_amount >= ?", *filter.MinAmount)
	}
	if filter.MaxAmount != nil {
		query = query.Where("net_payable_amount <= ?", *filter.MaxAmount)
	}

	return query
}

func toDomainInvoices(invoiceModels []models.InvoiceModel) []billing.Invoice {
	invoices := make([]billing.Invoice, len(invoiceModels))
	for i, model := range invoiceModels {
		invoices[i] = *model.ToDomain()
	}
	return invoices
}

// Ensure GormInvoiceRepository implements InvoiceRepository
var _ billing.InvoiceRepository = (*GormInvoiceRepository)(nil)
