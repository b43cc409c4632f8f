package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sikontrak/backend/internal/domain/billing"
	"github.com/sikontrak/backend/internal/domain/shared"
)

// InvoiceModel is the persistence model for the Invoice aggregate root.
type InvoiceModel struct {
	AggregateModel
	InvoiceNumber  string    `gorm:"type:varchar(50);not null;uniqueIndex"`
	ContractID     uuid.UUID `gorm:"type:uuid;not null;index"`
	ContractNumber string    `gorm:"type:varchar(50);not null;index"`
	CustomerName   string    `gorm:"type:varchar(200);not null"`
	TerminNumber   *int
	TerminPeriod   string `gorm:"type:varchar(50)"`

	BaseAmount       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	PPNAmount        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Amount           decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	PPHAmount        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	NetPayableAmount decimal.Decimal `gorm:"type:decimal(18,2);not null"`

	PaidAmount         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	OutstandingAmount  decimal.Decimal `gorm:"type:decimal(18,2);not null;index"`
	PaymentProgressPct decimal.Decimal `gorm:"type:decimal(5,2);not null"`

	Status    billing.InvoiceStatus  `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	PPNPaid   bool                   `gorm:"not null;default:false"`
	PPH23Paid bool                   `gorm:"not null;default:false"`
	Payments  billing.PaymentRecords `gorm:"type:jsonb;default:'[]'"`

	InvoiceDate  time.Time  `gorm:"not null;index"`
	DueDate      *time.Time `gorm:"index"`
	SentAt       *time.Time
	PaidAt       *time.Time
	CancelledAt  *time.Time
	CancelReason string `gorm:"type:varchar(500)"`
	Notes        string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice entity.
func (m *InvoiceModel) ToDomain() *billing.Invoice {
	return &billing.Invoice{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		InvoiceNumber:      m.InvoiceNumber,
		ContractID:         m.ContractID,
		ContractNumber:     m.ContractNumber,
		CustomerName:       m.CustomerName,
		TerminNumber:       m.TerminNumber,
		TerminPeriod:       m.TerminPeriod,
		BaseAmount:         m.BaseAmount,
		PPNAmount:          m.PPNAmount,
		Amount:             m.Amount,
		PPHAmount:          m.PPHAmount,
		NetPayableAmount:   m.NetPayableAmount,
		PaidAmount:         m.PaidAmount,
		OutstandingAmount:  m.OutstandingAmount,
		PaymentProgressPct: m.PaymentProgressPct,
		Status:             m.Status,
		TaxFlags: billing.TaxFlags{
			PPNPaid:   m.PPNPaid,
			PPH23Paid: m.PPH23Paid,
		},
		Payments:     m.Payments,
		InvoiceDate:  m.InvoiceDate,
		DueDate:      m.DueDate,
		SentAt:       m.SentAt,
		PaidAt:       m.PaidAt,
		CancelledAt:  m.CancelledAt,
		CancelReason: m.CancelReason,
		Notes:        m.Notes,
	}
}

// FromDomain populates the persistence model from a domain Invoice entity.
func (m *InvoiceModel) FromDomain(inv *billing.Invoice) {
	m.FromDomainAggregateRoot(inv.BaseAggregateRoot)
	m.InvoiceNumber = inv.InvoiceNumber
	m.ContractID = inv.ContractID
	m.ContractNumber = inv.ContractNumber
	m.CustomerName = inv.CustomerName
	m.TerminNumber = inv.TerminNumber
	m.TerminPeriod = inv.TerminPeriod
	m.BaseAmount = inv.BaseAmount
	m.PPNAmount = inv.PPNAmount
	m.Amount = inv.Amount
	m.PPHAmount = inv.PPHAmount
	m.NetPayableAmount = inv.NetPayableAmount
	m.PaidAmount = inv.PaidAmount
	m.OutstandingAmount = inv.OutstandingAmount
	m.PaymentProgressPct = inv.PaymentProgressPct
	m.Status = inv.Status
	m.PPNPaid = inv.TaxFlags.PPNPaid
	m.PPH23Paid = inv.TaxFlags.PPH23Paid
	m.Payments = inv.Payments
	m.InvoiceDate = inv.InvoiceDate
	m.DueDate = inv.DueDate
	m.SentAt = inv.SentAt
	m.PaidAt = inv.PaidAt
	m.CancelledAt = inv.CancelledAt
	m.CancelReason = inv.CancelReason
	m.Notes = inv.Notes
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice.
func InvoiceModelFromDomain(inv *billing.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}
