package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sikontrak/backend/internal/domain/shared"
)

// InvoiceCreatedEvent is raised when a new invoice is created
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	InvoiceID        uuid.UUID       `json:"invoice_id"`
	InvoiceNumber    string          `json:"invoice_number"`
	ContractID       uuid.UUID       `json:"contract_id"`
	ContractNumber   string          `json:"contract_number"`
	CustomerName     string          `json:"customer_name"`
	BaseAmount       decimal.Decimal `json:"base_amount"`
	NetPayableAmount decimal.Decimal `json:"net_payable_amount"`
	DueDate          *time.Time      `json:"due_date,omitempty"`
}

// EventType returns the event type name
func (e *InvoiceCreatedEvent) EventType() string {
	return "InvoiceCreated"
}

// NewInvoiceCreatedEvent creates a new InvoiceCreatedEvent
func NewInvoiceCreatedEvent(inv *Invoice) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent("InvoiceCreated", "Invoice", inv.ID),
		InvoiceID:        inv.ID,
		InvoiceNumber:    inv.InvoiceNumber,
		ContractID:       inv.ContractID,
		ContractNumber:   inv.ContractNumber,
		CustomerName:     inv.CustomerName,
		BaseAmount:       inv.BaseAmount,
		NetPayableAmount: inv.NetPayableAmount,
		DueDate:          inv.DueDate,
	}
}

// InvoiceSentEvent is raised when a draft invoice is sent to the customer
type InvoiceSentEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID `json:"invoice_id"`
	InvoiceNumber string    `json:"invoice_number"`
	CustomerName  string    `json:"customer_name"`
	SentAt        time.Time `json:"sent_at"`
}

// EventType returns the event type name
func (e *InvoiceSentEvent) EventType() string {
	return "InvoiceSent"
}

// NewInvoiceSentEvent creates a new InvoiceSentEvent
func NewInvoiceSentEvent(inv *Invoice) *InvoiceSentEvent {
	sentAt := time.Now()
	if inv.SentAt != nil {
		sentAt = *inv.SentAt
	}
	return &InvoiceSentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceSent", "Invoice", inv.ID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		CustomerName:    inv.CustomerName,
		SentAt:          sentAt,
	}
}

// InvoicePaymentRecordedEvent is raised when a payment is recorded against
// an invoice
type InvoicePaymentRecordedEvent struct {
	shared.BaseDomainEvent
	InvoiceID          uuid.UUID       `json:"invoice_id"`
	InvoiceNumber      string          `json:"invoice_number"`
	PaymentID          uuid.UUID       `json:"payment_id"`
	PaymentAmount      decimal.Decimal `json:"payment_amount"`
	PaymentDate        time.Time       `json:"payment_date"`
	PaidAmount         decimal.Decimal `json:"paid_amount"`
	OutstandingAmount  decimal.Decimal `json:"outstanding_amount"`
	PaymentProgressPct decimal.Decimal `json:"payment_progress_pct"`
	Status             InvoiceStatus   `json:"status"`
}

// EventType returns the event type name
func (e *InvoicePaymentRecordedEvent) EventType() string {
	return "InvoicePaymentRecorded"
}

// NewInvoicePaymentRecordedEvent creates a new InvoicePaymentRecordedEvent
func NewInvoicePaymentRecordedEvent(inv *Invoice, record *PaymentRecord) *InvoicePaymentRecordedEvent {
	return &InvoicePaymentRecordedEvent{
		BaseDomainEvent:    shared.NewBaseDomainEvent("InvoicePaymentRecorded", "Invoice", inv.ID),
		InvoiceID:          inv.ID,
		InvoiceNumber:      inv.InvoiceNumber,
		PaymentID:          record.ID,
		PaymentAmount:      record.Amount,
		PaymentDate:        record.PaymentDate,
		PaidAmount:         inv.PaidAmount,
		OutstandingAmount:  inv.OutstandingAmount,
		PaymentProgressPct: inv.PaymentProgressPct,
		Status:             inv.Status,
	}
}

// InvoicePaymentUpdatedEvent is raised when an existing payment record is
// edited
type InvoicePaymentUpdatedEvent struct {
	shared.BaseDomainEvent
	InvoiceID         uuid.UUID       `json:"invoice_id"`
	InvoiceNumber     string          `json:"invoice_number"`
	PaymentID         uuid.UUID       `json:"payment_id"`
	PaymentAmount     decimal.Decimal `json:"payment_amount"`
	PaidAmount        decimal.Decimal `json:"paid_amount"`
	OutstandingAmount decimal.Decimal `json:"outstanding_amount"`
	Status            InvoiceStatus   `json:"status"`
}

// EventType returns the event type name
func (e *InvoicePaymentUpdatedEvent) EventType() string {
	return "InvoicePaymentUpdated"
}

// NewInvoicePaymentUpdatedEvent creates a new InvoicePaymentUpdatedEvent
func NewInvoicePaymentUpdatedEvent(inv *Invoice, record *PaymentRecord) *InvoicePaymentUpdatedEvent {
	return &InvoicePaymentUpdatedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent("InvoicePaymentUpdated", "Invoice", inv.ID),
		InvoiceID:         inv.ID,
		InvoiceNumber:     inv.InvoiceNumber,
		PaymentID:         record.ID,
		PaymentAmount:     record.Amount,
		PaidAmount:        inv.PaidAmount,
		OutstandingAmount: inv.OutstandingAmount,
		Status:            inv.Status,
	}
}

// InvoicePaymentRemovedEvent is raised when a payment record is deleted
type InvoicePaymentRemovedEvent struct {
	shared.BaseDomainEvent
	InvoiceID         uuid.UUID       `json:"invoice_id"`
	InvoiceNumber     string          `json:"invoice_number"`
	PaymentID         uuid.UUID       `json:"payment_id"`
	PaymentAmount     decimal.Decimal `json:"payment_amount"`
	PaidAmount        decimal.Decimal `json:"paid_amount"`
	OutstandingAmount decimal.Decimal `json:"outstanding_amount"`
	Status            InvoiceStatus   `json:"status"`
}

// EventType returns the event type name
func (e *InvoicePaymentRemovedEvent) EventType() string {
	return "InvoicePaymentRemoved"
}

// NewInvoicePaymentRemovedEvent creates a new InvoicePaymentRemovedEvent
func NewInvoicePaymentRemovedEvent(inv *Invoice, record *PaymentRecord) *InvoicePaymentRemovedEvent {
	return &InvoicePaymentRemovedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent("InvoicePaymentRemoved", "Invoice", inv.ID),
		InvoiceID:         inv.ID,
		InvoiceNumber:     inv.InvoiceNumber,
		PaymentID:         record.ID,
		PaymentAmount:     record.Amount,
		PaidAmount:        inv.PaidAmount,
		OutstandingAmount: inv.OutstandingAmount,
		Status:            inv.Status,
	}
}

// InvoiceSettledEvent is raised when payments first cover the net payable
// amount (within the settlement tolerance). The invoice may still be
// awaiting tax proofs at this point.
type InvoiceSettledEvent struct {
	shared.BaseDomainEvent
	InvoiceID        uuid.UUID       `json:"invoice_id"`
	InvoiceNumber    string          `json:"invoice_number"`
	CustomerName     string          `json:"customer_name"`
	NetPayableAmount decimal.Decimal `json:"net_payable_amount"`
	PaidAmount       decimal.Decimal `json:"paid_amount"`
	Status           InvoiceStatus   `json:"status"`
}

// EventType returns the event type name
func (e *InvoiceSettledEvent) EventType() string {
	return "InvoiceSettled"
}

// NewInvoiceSettledEvent creates a new InvoiceSettledEvent
func NewInvoiceSettledEvent(inv *Invoice) *InvoiceSettledEvent {
	return &InvoiceSettledEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent("InvoiceSettled", "Invoice", inv.ID),
		InvoiceID:        inv.ID,
		InvoiceNumber:    inv.InvoiceNumber,
		CustomerName:     inv.CustomerName,
		NetPayableAmount: inv.NetPayableAmount,
		PaidAmount:       inv.PaidAmount,
		Status:           inv.Status,
	}
}

// InvoiceTaxFlagsUpdatedEvent is raised when the PPN or PPh 23 proof flags
// change
type InvoiceTaxFlagsUpdatedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID     `json:"invoice_id"`
	InvoiceNumber string        `json:"invoice_number"`
	PPNPaid       bool          `json:"ppn_paid"`
	PPH23Paid     bool          `json:"pph23_paid"`
	Status        InvoiceStatus `json:"status"`
}

// EventType returns the event type name
func (e *InvoiceTaxFlagsUpdatedEvent) EventType() string {
	return "InvoiceTaxFlagsUpdated"
}

// NewInvoiceTaxFlagsUpdatedEvent creates a new InvoiceTaxFlagsUpdatedEvent
func NewInvoiceTaxFlagsUpdatedEvent(inv *Invoice) *InvoiceTaxFlagsUpdatedEvent {
	return &InvoiceTaxFlagsUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceTaxFlagsUpdated", "Invoice", inv.ID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		PPNPaid:         inv.TaxFlags.PPNPaid,
		PPH23Paid:       inv.TaxFlags.PPH23Paid,
		Status:          inv.Status,
	}
}

// InvoiceCancelledEvent is raised when an invoice is cancelled
type InvoiceCancelledEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	CustomerName  string          `json:"customer_name"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	CancelReason  string          `json:"cancel_reason"`
	CancelledAt   time.Time       `json:"cancelled_at"`
}

// EventType returns the event type name
func (e *InvoiceCancelledEvent) EventType() string {
	return "InvoiceCancelled"
}

// NewInvoiceCancelledEvent creates a new InvoiceCancelledEvent
func NewInvoiceCancelledEvent(inv *Invoice) *InvoiceCancelledEvent {
	cancelledAt := time.Now()
	if inv.CancelledAt != nil {
		cancelledAt = *inv.CancelledAt
	}
	return &InvoiceCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceCancelled", "Invoice", inv.ID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		CustomerName:    inv.CustomerName,
		PaidAmount:      inv.PaidAmount,
		CancelReason:    inv.CancelReason,
		CancelledAt:     cancelledAt,
	}
}
