package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sikontrak/backend/internal/domain/shared"
	"github.com/sikontrak/backend/internal/domain/shared/valueobject"
)

// Invoice is the aggregate root for one billed installment of a service
// contract. It owns the tax breakdown, the payment record list and the
// derived lifecycle status. All monetary aggregates are recomputed from the
// full payment list on every change.
type Invoice struct {
	shared.BaseAggregateRoot
	InvoiceNumber  string          `json:"invoice_number"`
	ContractID     uuid.UUID       `json:"contract_id"`
	ContractNumber string          `json:"contract_number"`
	CustomerName   string          `json:"customer_name"`
	TerminNumber   *int            `json:"termin_number,omitempty"`
	TerminPeriod   string          `json:"termin_period,omitempty"`

	// Tax breakdown, derived from BaseAmount
	BaseAmount       decimal.Decimal `json:"base_amount"`
	PPNAmount        decimal.Decimal `json:"ppn_amount"`
	Amount           decimal.Decimal `json:"amount"`
	PPHAmount        decimal.Decimal `json:"pph_amount"`
	NetPayableAmount decimal.Decimal `json:"net_payable_amount"`

	// Ledger snapshot, derived from Payments
	PaidAmount         decimal.Decimal `json:"paid_amount"`
	OutstandingAmount  decimal.Decimal `json:"outstanding_amount"`
	PaymentProgressPct decimal.Decimal `json:"payment_progress_pct"`

	Status   InvoiceStatus  `json:"status"`
	TaxFlags TaxFlags       `json:"tax_flags" gorm:"embedded"`
	Payments PaymentRecords `json:"payments"`

	InvoiceDate  time.Time  `json:"invoice_date"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	SentAt       *time.Time `json:"sent_at,omitempty"`
	PaidAt       *time.Time `json:"paid_at,omitempty"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`
	CancelReason string     `json:"cancel_reason,omitempty"`
	Notes        string     `json:"notes,omitempty"`
}

// NewInvoice creates a new invoice for a contract installment, computing the
// full tax breakdown from the base billed amount
func NewInvoice(
	invoiceNumber string,
	contractID uuid.UUID,
	contractNumber string,
	customerName string,
	baseAmount valueobject.Money,
	invoiceDate time.Time,
	dueDate *time.Time,
) (*Invoice, error) {
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if len(invoiceNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot exceed 50 characters")
	}
	if contractID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CONTRACT", "Contract ID cannot be empty")
	}
	if customerName == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}

	breakdown, err := ComputeTaxBreakdown(baseAmount)
	if err != nil {
		return nil, err
	}

	inv := &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		InvoiceNumber:     invoiceNumber,
		ContractID:        contractID,
		ContractNumber:    contractNumber,
		CustomerName:      customerName,
		BaseAmount:        breakdown.BaseAmount,
		PPNAmount:         breakdown.PPNAmount,
		Amount:            breakdown.Amount,
		PPHAmount:         breakdown.PPHAmount,
		NetPayableAmount:  breakdown.NetPayableAmount,
		PaidAmount:        decimal.Zero,
		OutstandingAmount: breakdown.NetPayableAmount,
		Status:            InvoiceStatusDraft,
		Payments:          PaymentRecords{},
		InvoiceDate:       invoiceDate,
		DueDate:           dueDate,
	}

	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv))

	return inv, nil
}

// SetTermin attaches the termin descriptor this invoice bills
func (inv *Invoice) SetTermin(terminNumber *int, period string) {
	inv.TerminNumber = terminNumber
	inv.TerminPeriod = period
	inv.touch()
}

// SetBaseAmount replaces the base billed amount and recomputes the tax
// breakdown. Only allowed before any payment has been recorded, so the
// payment guards were never evaluated against a different net payable.
func (inv *Invoice) SetBaseAmount(baseAmount valueobject.Money) error {
	if !inv.Status.CanModify() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot change amount of invoice in %s status", inv.Status))
	}
	if len(inv.Payments) > 0 {
		return shared.NewDomainError("HAS_PAYMENTS", "Cannot change amount of invoice with recorded payments")
	}

	breakdown, err := ComputeTaxBreakdown(baseAmount)
	if err != nil {
		return err
	}

	inv.BaseAmount = breakdown.BaseAmount
	inv.PPNAmount = breakdown.PPNAmount
	inv.Amount = breakdown.Amount
	inv.PPHAmount = breakdown.PPHAmount
	inv.NetPayableAmount = breakdown.NetPayableAmount
	inv.recompute()
	inv.touch()

	return nil
}

// CanAddPayment returns true when another payment may be recorded: the
// invoice is not in a final state and more than the settlement tolerance
// remains outstanding (a fully-paid-but-off-by-one-rupiah invoice must not
// invite a phantom payment).
func (inv *Invoice) CanAddPayment() bool {
	return inv.Status.CanModify() && inv.OutstandingAmount.GreaterThan(SettlementTolerance)
}

// AddPayment validates and appends a payment record, then recomputes the
// ledger and status. The append is all-or-nothing: a rejected payment leaves
// the ledger untouched.
func (inv *Invoice) AddPayment(record *PaymentRecord) error {
	if !inv.Status.CanModify() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot record payment on invoice in %s status", inv.Status))
	}
	if record.Amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if record.Amount.GreaterThan(inv.OutstandingAmount) {
		return shared.NewDomainError("EXCEEDS_OUTSTANDING", fmt.Sprintf(
			"Payment amount %s exceeds outstanding amount %s",
			record.Amount.StringFixed(0), inv.OutstandingAmount.StringFixed(0)))
	}
	if record.Method != "" && !record.Method.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_METHOD", fmt.Sprintf("Payment method %q is not valid", record.Method))
	}

	inv.Payments = append(inv.Payments, *record)
	inv.recompute()
	inv.touch()

	inv.AddDomainEvent(NewInvoicePaymentRecordedEvent(inv, record))
	if inv.Status.IsSettled() {
		inv.AddDomainEvent(NewInvoiceSettledEvent(inv))
	}

	return nil
}

// EditPayment replaces the amount, date, method, reference and notes of an
// existing payment record, then forces a full recompute. Aggregates are
// never adjusted incrementally, so an edit cannot leave drift behind.
func (inv *Invoice) EditPayment(paymentID uuid.UUID, paymentDate time.Time, amount valueobject.Money, method PaymentMethod, referenceNumber, notes string) error {
	if !inv.Status.CanModify() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot edit payment on invoice in %s status", inv.Status))
	}
	idx := inv.Payments.FindByID(paymentID)
	if idx < 0 {
		return shared.NewDomainError("NOT_FOUND", "Payment record not found")
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if method != "" && !method.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_METHOD", fmt.Sprintf("Payment method %q is not valid", method))
	}

	// The edited record must still fit: outstanding excluding this record
	// is the headroom available to the new amount.
	othersPaid := inv.Payments.TotalAmount().Sub(inv.Payments[idx].Amount)
	if amount.Amount().GreaterThan(inv.NetPayableAmount.Sub(othersPaid)) {
		return shared.NewDomainError("EXCEEDS_OUTSTANDING", fmt.Sprintf(
			"Payment amount %s exceeds outstanding amount %s",
			amount.Amount().StringFixed(0), inv.NetPayableAmount.Sub(othersPaid).StringFixed(0)))
	}

	inv.Payments[idx].PaymentDate = paymentDate
	inv.Payments[idx].Amount = amount.Amount()
	inv.Payments[idx].Method = method
	inv.Payments[idx].ReferenceNumber = referenceNumber
	inv.Payments[idx].Notes = notes
	inv.recompute()
	inv.touch()

	inv.AddDomainEvent(NewInvoicePaymentUpdatedEvent(inv, &inv.Payments[idx]))

	return nil
}

// DeletePayment removes a payment record and forces a full recompute
func (inv *Invoice) DeletePayment(paymentID uuid.UUID) error {
	if inv.Status == InvoiceStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Cannot delete payment on cancelled invoice")
	}
	idx := inv.Payments.FindByID(paymentID)
	if idx < 0 {
		return shared.NewDomainError("NOT_FOUND", "Payment record not found")
	}

	removed := inv.Payments[idx]
	inv.Payments = append(inv.Payments[:idx], inv.Payments[idx+1:]...)
	inv.recompute()
	inv.touch()

	inv.AddDomainEvent(NewInvoicePaymentRemovedEvent(inv, &removed))

	return nil
}

// Send marks a draft invoice as sent to the customer. Valid only from DRAFT.
func (inv *Invoice) Send() error {
	if inv.Status != InvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot send invoice in %s status", inv.Status))
	}

	now := time.Now()
	inv.SentAt = &now
	inv.recompute()
	inv.touch()

	inv.AddDomainEvent(NewInvoiceSentEvent(inv))

	return nil
}

// Cancel cancels the invoice with a mandatory reason. Blocked once the
// invoice is PAID or already CANCELLED.
func (inv *Invoice) Cancel(reason string) error {
	if !inv.Status.CanModify() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel invoice in %s status", inv.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	now := time.Now()
	inv.CancelledAt = &now
	inv.CancelReason = reason
	inv.recompute()
	inv.touch()

	inv.AddDomainEvent(NewInvoiceCancelledEvent(inv))

	return nil
}

// MarkPPNPaid records that the PPN proof document has been received
func (inv *Invoice) MarkPPNPaid() error {
	return inv.setTaxFlags(TaxFlags{PPNPaid: true, PPH23Paid: inv.TaxFlags.PPH23Paid})
}

// MarkPPH23Paid records that the PPh 23 withholding proof (BUPOT) has been
// received
func (inv *Invoice) MarkPPH23Paid() error {
	return inv.setTaxFlags(TaxFlags{PPNPaid: inv.TaxFlags.PPNPaid, PPH23Paid: true})
}

// SetTaxFlags replaces both tax-proof flags and rederives the status
func (inv *Invoice) SetTaxFlags(flags TaxFlags) error {
	return inv.setTaxFlags(flags)
}

func (inv *Invoice) setTaxFlags(flags TaxFlags) error {
	if inv.Status == InvoiceStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Cannot update tax flags on cancelled invoice")
	}

	inv.TaxFlags = flags
	inv.recompute()
	inv.touch()

	inv.AddDomainEvent(NewInvoiceTaxFlagsUpdatedEvent(inv))
	if inv.Status == InvoiceStatusPaid && inv.PaidAt == nil {
		now := time.Now()
		inv.PaidAt = &now
	}

	return nil
}

// SetDueDate updates the due date
func (inv *Invoice) SetDueDate(dueDate *time.Time) error {
	if !inv.Status.CanModify() {
		return shared.NewDomainError("INVALID_STATE", "Cannot modify due date of invoice in final state")
	}

	inv.DueDate = dueDate
	inv.touch()

	return nil
}

// SetNotes sets free-form notes
func (inv *Invoice) SetNotes(notes string) {
	inv.Notes = notes
	inv.touch()
}

// recompute rebuilds the ledger snapshot from the full payment list and
// rederives the status. The single place where Status is written.
func (inv *Invoice) recompute() {
	snapshot := RecomputeLedger(inv.NetPayableAmount, inv.Payments)
	inv.PaidAmount = snapshot.PaidAmount
	inv.OutstandingAmount = snapshot.OutstandingAmount
	inv.PaymentProgressPct = snapshot.PaymentProgressPct

	previous := inv.Status
	inv.Status = DeriveStatus(snapshot, inv.NetPayableAmount, inv.TaxFlags, inv.SentAt != nil, inv.CancelledAt != nil)

	if inv.Status == InvoiceStatusPaid && previous != InvoiceStatusPaid {
		now := time.Now()
		inv.PaidAt = &now
	}
	if !inv.Status.IsSettled() {
		inv.PaidAt = nil
	}
}

func (inv *Invoice) touch() {
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()
}

// DisplayStatus returns the status with the overdue overlay applied for the
// given reference date
func (inv *Invoice) DisplayStatus(today time.Time) InvoiceStatus {
	return DisplayStatus(inv.Status, inv.DueDate, today)
}

// IsOverdue returns true if the invoice is past due and neither paid nor
// cancelled as of the given reference date
func (inv *Invoice) IsOverdue(today time.Time) bool {
	return inv.DisplayStatus(today) == InvoiceStatusOverdue
}

// Snapshot returns the current ledger snapshot
func (inv *Invoice) Snapshot() LedgerSnapshot {
	return LedgerSnapshot{
		PaidAmount:         inv.PaidAmount,
		OutstandingAmount:  inv.OutstandingAmount,
		PaymentProgressPct: inv.PaymentProgressPct,
	}
}

// Breakdown returns the stored tax breakdown
func (inv *Invoice) Breakdown() TaxBreakdown {
	return TaxBreakdown{
		BaseAmount:       inv.BaseAmount,
		PPNAmount:        inv.PPNAmount,
		Amount:           inv.Amount,
		PPHAmount:        inv.PPHAmount,
		NetPayableAmount: inv.NetPayableAmount,
	}
}

// PaymentCount returns the number of recorded payments
func (inv *Invoice) PaymentCount() int {
	return len(inv.Payments)
}

// GetBaseAmountMoney returns the base amount as Money
func (inv *Invoice) GetBaseAmountMoney() valueobject.Money {
	return valueobject.NewMoneyIDR(inv.BaseAmount)
}

// GetNetPayableMoney returns the net payable amount as Money
func (inv *Invoice) GetNetPayableMoney() valueobject.Money {
	return valueobject.NewMoneyIDR(inv.NetPayableAmount)
}

// GetOutstandingMoney returns the outstanding amount as Money
func (inv *Invoice) GetOutstandingMoney() valueobject.Money {
	return valueobject.NewMoneyIDR(inv.OutstandingAmount)
}
