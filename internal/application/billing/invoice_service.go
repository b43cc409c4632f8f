package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sikontrak/backend/internal/domain/billing"
	"github.com/sikontrak/backend/internal/domain/contract"
	"github.com/sikontrak/backend/internal/domain/shared"
	"github.com/sikontrak/backend/internal/domain/shared/valueobject"
)

// idempotencyTTL is how long a processed payment key is remembered. A
// retried request inside this window is treated as a duplicate.
const idempotencyTTL = 24 * time.Hour

// InvoiceService provides application-level invoice operations
type InvoiceService struct {
	invoiceRepo      billing.InvoiceRepository
	contractRepo     contract.ContractRepository
	idempotencyStore shared.IdempotencyStore
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoiceRepo billing.InvoiceRepository,
	contractRepo contract.ContractRepository,
	idempotencyStore shared.IdempotencyStore,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo:      invoiceRepo,
		contractRepo:     contractRepo,
		idempotencyStore: idempotencyStore,
	}
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID                 uuid.UUID               `json:"id"`
	InvoiceNumber      string                  `json:"invoice_number"`
	ContractID         uuid.UUID               `json:"contract_id"`
	ContractNumber     string                  `json:"contract_number"`
	CustomerName       string                  `json:"customer_name"`
	TerminNumber       *int                    `json:"termin_number,omitempty"`
	TerminPeriod       string                  `json:"termin_period,omitempty"`
	BaseAmount         decimal.Decimal         `json:"base_amount"`
	PPNAmount          decimal.Decimal         `json:"ppn_amount"`
	Amount             decimal.Decimal         `json:"amount"`
	PPHAmount          decimal.Decimal         `json:"pph_amount"`
	NetPayableAmount   decimal.Decimal         `json:"net_payable_amount"`
	PaidAmount         decimal.Decimal         `json:"paid_amount"`
	OutstandingAmount  decimal.Decimal         `json:"outstanding_amount"`
	PaymentProgressPct decimal.Decimal         `json:"payment_progress_pct"`
	Status             string                  `json:"status"`
	DisplayStatus      string                  `json:"display_status"`
	PPNPaid            bool                    `json:"ppn_paid"`
	PPH23Paid          bool                    `json:"pph23_paid"`
	CanAddPayment      bool                    `json:"can_add_payment"`
	Payments           []PaymentRecordResponse `json:"payments,omitempty"`
	InvoiceDate        time.Time               `json:"invoice_date"`
	DueDate            *time.Time              `json:"due_date,omitempty"`
	SentAt             *time.Time              `json:"sent_at,omitempty"`
	PaidAt             *time.Time              `json:"paid_at,omitempty"`
	CancelledAt        *time.Time              `json:"cancelled_at,omitempty"`
	CancelReason       string                  `json:"cancel_reason,omitempty"`
	Notes              string                  `json:"notes,omitempty"`
	CreatedAt          time.Time               `json:"created_at"`
	UpdatedAt          time.Time               `json:"updated_at"`
	Version            int                     `json:"version"`
}

// PaymentRecordResponse represents a payment record in API responses
type PaymentRecordResponse struct {
	ID              uuid.UUID       `json:"id"`
	PaymentDate     time.Time       `json:"payment_date"`
	Amount          decimal.Decimal `json:"amount"`
	Method          string          `json:"payment_method,omitempty"`
	ReferenceNumber string          `json:"reference_number,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// CreateInvoiceRequest is the payload for creating an invoice
type CreateInvoiceRequest struct {
	ContractID   uuid.UUID  `json:"contract_id" binding:"required"`
	BaseAmount   string     `json:"base_amount" binding:"required"`
	TerminNumber *int       `json:"termin_number,omitempty"`
	TerminPeriod string     `json:"termin_period,omitempty"`
	InvoiceDate  *time.Time `json:"invoice_date,omitempty"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	Notes        string     `json:"notes,omitempty"`
}

// RecordPaymentRequest is the payload for recording a payment
type RecordPaymentRequest struct {
	Amount          string     `json:"amount" binding:"required"`
	PaymentDate     *time.Time `json:"payment_date,omitempty"`
	PaymentMethod   string     `json:"payment_method,omitempty"`
	ReferenceNumber string     `json:"reference_number,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	IdempotencyKey  string     `json:"-"`
	CreatedBy       *uuid.UUID `json:"-"`
}

// UpdatePaymentRequest is the payload for editing a payment record
type UpdatePaymentRequest struct {
	Amount          string     `json:"amount" binding:"required"`
	PaymentDate     *time.Time `json:"payment_date,omitempty"`
	PaymentMethod   string     `json:"payment_method,omitempty"`
	ReferenceNumber string     `json:"reference_number,omitempty"`
	Notes           string     `json:"notes,omitempty"`
}

// UpdateTaxFlagsRequest is the payload for updating tax proof flags
type UpdateTaxFlagsRequest struct {
	PPNPaid   bool `json:"ppn_paid"`
	PPH23Paid bool `json:"pph23_paid"`
}

// InvoiceListFilter defines filtering options for invoice list queries
type InvoiceListFilter struct {
	Search     string     `form:"search"`
	ContractID *uuid.UUID `form:"contract_id"`
	Status     string     `form:"status"`
	Overdue    *bool      `form:"overdue"`
	FromDate   *time.Time `form:"from_date" time_format:"2006-01-02"`
	ToDate     *time.Time `form:"to_date" time_format:"2006-01-02"`
	Page       int        `form:"page,default=1"`
	PageSize   int        `form:"page_size,default=20"`
	OrderBy    string     `form:"order_by,default=created_at"`
	OrderDir   string     `form:"order_dir,default=desc"`
}

// CreateInvoice creates a new invoice for a contract, generating its number
// and computing the tax breakdown
func (s *InvoiceService) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	contr, err := s.contractRepo.FindByID(ctx, req.ContractID)
	if err != nil {
		return nil, err
	}

	baseAmount, err := valueobject.NewMoneyIDRFromString(req.BaseAmount)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Base amount must be a decimal string")
	}

	invoiceDate := time.Now()
	if req.InvoiceDate != nil {
		invoiceDate = *req.InvoiceDate
	}

	invoiceNumber, err := s.generateInvoiceNumber(ctx, invoiceDate)
	if err != nil {
		return nil, err
	}

	invoice, err := billing.NewInvoice(
		invoiceNumber,
		contr.ID,
		contr.ContractNumber,
		contr.CustomerName,
		baseAmount,
		invoiceDate,
		req.DueDate,
	)
	if err != nil {
		return nil, err
	}

	if req.TerminNumber != nil || req.TerminPeriod != "" {
		invoice.SetTermin(req.TerminNumber, req.TerminPeriod)
	}
	if req.Notes != "" {
		invoice.SetNotes(req.Notes)
	}

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}

	return s.toResponse(invoice), nil
}

// generateInvoiceNumber produces INV-{yyyymm}-{seq} numbers scoped to the
// billing month
func (s *InvoiceService) generateInvoiceNumber(ctx context.Context, invoiceDate time.Time) (string, error) {
	seq, err := s.invoiceRepo.NextSequenceForMonth(ctx, invoiceDate.Year(), invoiceDate.Month())
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("INV-%04d%02d-%03d", invoiceDate.Year(), int(invoiceDate.Month()), seq), nil
}

// GetInvoiceByID gets an invoice by ID
func (s *InvoiceService) GetInvoiceByID(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(invoice), nil
}

// ListInvoices lists invoices with filtering and pagination
func (s *InvoiceService) ListInvoices(ctx context.Context, filter InvoiceListFilter) ([]InvoiceResponse, int64, error) {
	repoFilter := s.toRepoFilter(filter)

	invoices, err := s.invoiceRepo.FindAll(ctx, repoFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.invoiceRepo.Count(ctx, repoFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]InvoiceResponse, 0, len(invoices))
	for i := range invoices {
		responses = append(responses, *s.toResponse(&invoices[i]))
	}
	return responses, total, nil
}

// GetSummary aggregates ledger totals for invoices matching the filter
func (s *InvoiceService) GetSummary(ctx context.Context, filter InvoiceListFilter) (*billing.InvoiceSummary, error) {
	return s.invoiceRepo.Summarize(ctx, s.toRepoFilter(filter))
}

// RecordPayment appends a payment to an invoice. When an idempotency key
// is supplied, a retried request inside the TTL window returns the current
// invoice state without recording a second payment.
func (s *InvoiceService) RecordPayment(ctx context.Context, invoiceID uuid.UUID, req RecordPaymentRequest) (*InvoiceResponse, error) {
	var key string
	if req.IdempotencyKey != "" && s.idempotencyStore != nil {
		key = fmt.Sprintf("invoice-payment:%s:%s", invoiceID, req.IdempotencyKey)
		first, err := s.idempotencyStore.MarkProcessed(ctx, key, idempotencyTTL)
		if err != nil {
			return nil, err
		}
		if !first {
			return s.GetInvoiceByID(ctx, invoiceID)
		}
	}

	resp, err := s.recordPayment(ctx, invoiceID, req)
	if err != nil && key != "" {
		// The claimed key must not survive a failed attempt, otherwise the
		// client's retry takes the duplicate path and the payment is lost.
		_ = s.idempotencyStore.Release(ctx, key)
	}
	return resp, err
}

func (s *InvoiceService) recordPayment(ctx context.Context, invoiceID uuid.UUID, req RecordPaymentRequest) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	amount, err := valueobject.NewMoneyIDRFromString(req.Amount)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be a decimal string")
	}

	paymentDate := time.Now()
	if req.PaymentDate != nil {
		paymentDate = *req.PaymentDate
	}
	createdBy := uuid.Nil
	if req.CreatedBy != nil {
		createdBy = *req.CreatedBy
	}

	record := billing.NewPaymentRecord(
		paymentDate,
		amount,
		billing.PaymentMethod(req.PaymentMethod),
		req.ReferenceNumber,
		createdBy,
	)
	record.Notes = req.Notes

	if err := invoice.AddPayment(record); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
		return nil, err
	}

	return s.toResponse(invoice), nil
}

// UpdatePayment edits an existing payment record
func (s *InvoiceService) UpdatePayment(ctx context.Context, invoiceID, paymentID uuid.UUID, req UpdatePaymentRequest) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	amount, err := valueobject.NewMoneyIDRFromString(req.Amount)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be a decimal string")
	}

	idx := invoice.Payments.FindByID(paymentID)
	if idx < 0 {
		return nil, shared.ErrNotFound
	}
	paymentDate := invoice.Payments[idx].PaymentDate
	if req.PaymentDate != nil {
		paymentDate = *req.PaymentDate
	}
	method := invoice.Payments[idx].Method
	if req.PaymentMethod != "" {
		method = billing.PaymentMethod(req.PaymentMethod)
	}

	if err := invoice.EditPayment(paymentID, paymentDate, amount, method, req.ReferenceNumber, req.Notes); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
		return nil, err
	}

	return s.toResponse(invoice), nil
}

// DeletePayment removes a payment record from an invoice
func (s *InvoiceService) DeletePayment(ctx context.Context, invoiceID, paymentID uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	if err := invoice.DeletePayment(paymentID); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
		return nil, err
	}

	return s.toResponse(invoice), nil
}

// SendInvoice marks a draft invoice as sent
func (s *InvoiceService) SendInvoice(ctx context.Context, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	if err := invoice.Send(); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
		return nil, err
	}

	return s.toResponse(invoice), nil
}

// CancelInvoice cancels an invoice with a reason
func (s *InvoiceService) CancelInvoice(ctx context.Context, invoiceID uuid.UUID, reason string) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	if err := invoice.Cancel(reason); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
		return nil, err
	}

	return s.toResponse(invoice), nil
}

// UpdateTaxFlags updates the PPN/PPh 23 proof flags and rederives status
func (s *InvoiceService) UpdateTaxFlags(ctx context.Context, invoiceID uuid.UUID, req UpdateTaxFlagsRequest) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	flags := billing.TaxFlags{PPNPaid: req.PPNPaid, PPH23Paid: req.PPH23Paid}
	if err := invoice.SetTaxFlags(flags); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
		return nil, err
	}

	return s.toResponse(invoice), nil
}

func (s *InvoiceService) toRepoFilter(filter InvoiceListFilter) billing.InvoiceFilter {
	repoFilter := billing.InvoiceFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		},
		ContractID: filter.ContractID,
		Overdue:    filter.Overdue,
		FromDate:   filter.FromDate,
		ToDate:     filter.ToDate,
	}
	if filter.Status != "" {
		status := billing.InvoiceStatus(filter.Status)
		repoFilter.Status = &status
	}
	return repoFilter
}

func (s *InvoiceService) toResponse(invoice *billing.Invoice) *InvoiceResponse {
	now := time.Now()

	payments := make([]PaymentRecordResponse, 0, len(invoice.Payments))
	for _, p := range invoice.Payments {
		payments = append(payments, PaymentRecordResponse{
			ID:              p.ID,
			PaymentDate:     p.PaymentDate,
			Amount:          p.Amount,
			Method:          p.Method.String(),
			ReferenceNumber: p.ReferenceNumber,
			Notes:           p.Notes,
			CreatedAt:       p.CreatedAt,
		})
	}

	return &InvoiceResponse{
		ID:                 invoice.ID,
		InvoiceNumber:      invoice.InvoiceNumber,
		ContractID:         invoice.ContractID,
		ContractNumber:     invoice.ContractNumber,
		CustomerName:       invoice.CustomerName,
		TerminNumber:       invoice.TerminNumber,
		TerminPeriod:       invoice.TerminPeriod,
		BaseAmount:         invoice.BaseAmount,
		PPNAmount:          invoice.PPNAmount,
		Amount:             invoice.Amount,
		PPHAmount:          invoice.PPHAmount,
		NetPayableAmount:   invoice.NetPayableAmount,
		PaidAmount:         invoice.PaidAmount,
		OutstandingAmount:  invoice.OutstandingAmount,
		PaymentProgressPct: invoice.PaymentProgressPct,
		Status:             invoice.Status.String(),
		DisplayStatus:      invoice.DisplayStatus(now).String(),
		PPNPaid:            invoice.TaxFlags.PPNPaid,
		PPH23Paid:          invoice.TaxFlags.PPH23Paid,
		CanAddPayment:      invoice.CanAddPayment(),
		Payments:           payments,
		InvoiceDate:        invoice.InvoiceDate,
		DueDate:            invoice.DueDate,
		SentAt:             invoice.SentAt,
		PaidAt:             invoice.PaidAt,
		CancelledAt:        invoice.CancelledAt,
		CancelReason:       invoice.CancelReason,
		Notes:              invoice.Notes,
		CreatedAt:          invoice.CreatedAt,
		UpdatedAt:          invoice.UpdatedAt,
		Version:            invoice.Version,
	}
}
