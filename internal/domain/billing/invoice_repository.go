package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sikontrak/backend/internal/domain/shared"
)

// InvoiceFilter defines filtering options for invoice queries
type InvoiceFilter struct {
	shared.Filter
	ContractID *uuid.UUID       // Filter by contract
	Status     *InvoiceStatus   // Filter by derived status
	Overdue    *bool            // Filter only overdue invoices
	FromDate   *time.Time       // Filter by invoice date range start
	ToDate     *time.Time       // Filter by invoice date range end
	DueFrom    *time.Time       // Filter by due date range start
	DueTo      *time.Time       // Filter by due date range end
	MinAmount  *decimal.Decimal // Filter by minimum net payable amount
	MaxAmount  *decimal.Decimal // Filter by maximum net payable amount
}

// InvoiceSummary aggregates ledger totals across a set of invoices
type InvoiceSummary struct {
	TotalInvoiced    decimal.Decimal `json:"total_invoiced"`
	TotalNetPayable  decimal.Decimal `json:"total_net_payable"`
	TotalPaid        decimal.Decimal `json:"total_paid"`
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
	InvoiceCount     int64           `json:"invoice_count"`
	OverdueCount     int64           `json:"overdue_count"`
}

// InvoiceRepository defines the interface for invoice persistence
type InvoiceRepository interface {
	// FindByID finds an invoice by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// FindByInvoiceNumber finds an invoice by its number
	FindByInvoiceNumber(ctx context.Context, invoiceNumber string) (*Invoice, error)

	// FindAll finds invoices matching the filter with pagination
	FindAll(ctx context.Context, filter InvoiceFilter) ([]Invoice, error)

	// FindByContract finds all invoices for a contract
	FindByContract(ctx context.Context, contractID uuid.UUID, filter InvoiceFilter) ([]Invoice, error)

	// FindOverdue finds invoices past due that are neither paid nor cancelled
	FindOverdue(ctx context.Context, asOf time.Time, filter InvoiceFilter) ([]Invoice, error)

	// Save creates or updates an invoice
	Save(ctx context.Context, invoice *Invoice) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, invoice *Invoice) error

	// Delete soft deletes an invoice
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts invoices matching the filter
	Count(ctx context.Context, filter InvoiceFilter) (int64, error)

	// CountByStatus counts invoices in a given status
	CountByStatus(ctx context.Context, status InvoiceStatus) (int64, error)

	// Summarize aggregates ledger totals for invoices matching the filter
	Summarize(ctx context.Context, filter InvoiceFilter) (*InvoiceSummary, error)

	// ExistsByInvoiceNumber checks if an invoice number is already taken
	ExistsByInvoiceNumber(ctx context.Context, invoiceNumber string) (bool, error)

	// NextSequenceForMonth returns the next invoice sequence number within a
	// billing month, used for INV-{yyyymm}-{seq} numbering
	NextSequenceForMonth(ctx context.Context, year int, month time.Month) (int, error)
}
