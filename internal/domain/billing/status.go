package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the lifecycle status of an invoice.
// The status is derived from the payment ledger, tax flags and manual
// send/cancel actions - it is never freely settable.
type InvoiceStatus string

const (
	InvoiceStatusDraft            InvoiceStatus = "DRAFT"
	InvoiceStatusSent             InvoiceStatus = "SENT"
	InvoiceStatusPartiallyPaid    InvoiceStatus = "PARTIALLY_PAID"
	InvoiceStatusPaid             InvoiceStatus = "PAID"
	InvoiceStatusPaidPendingPPH23 InvoiceStatus = "PAID_PENDING_PPH23"
	InvoiceStatusPaidPendingPPN   InvoiceStatus = "PAID_PENDING_PPN"
	InvoiceStatusOverdue          InvoiceStatus = "OVERDUE"
	InvoiceStatusCancelled        InvoiceStatus = "CANCELLED"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPartiallyPaid,
		InvoiceStatusPaid, InvoiceStatusPaidPendingPPH23, InvoiceStatusPaidPendingPPN,
		InvoiceStatusOverdue, InvoiceStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// CanModify returns true if the invoice may still be changed (payments
// added or removed, cancellation). PAID and CANCELLED are both final in
// this respect.
func (s InvoiceStatus) CanModify() bool {
	return s != InvoiceStatusPaid && s != InvoiceStatusCancelled
}

// IsSettled returns true for the states reached once the net payable
// amount has been covered
func (s InvoiceStatus) IsSettled() bool {
	return s == InvoiceStatusPaid || s == InvoiceStatusPaidPendingPPH23 || s == InvoiceStatusPaidPendingPPN
}

// TaxFlags records whether the tax proof documents for an invoice have been
// received. They are set externally (when a BUPOT or PPN proof is recorded)
// and are inputs to status derivation, not derived by it.
type TaxFlags struct {
	PPNPaid   bool `json:"ppn_paid"`
	PPH23Paid bool `json:"pph23_paid"`
}

// DeriveStatus computes the invoice status from the ledger snapshot, the
// net payable amount, the tax flags and the manual send/cancel state.
// Evaluation order matters:
//
//  1. manual cancellation is terminal
//  2. nothing paid (within tolerance): DRAFT until sent, then SENT
//  3. paid short of net payable beyond the tolerance: PARTIALLY_PAID
//  4. settled: PAID_PENDING_PPN until the PPN proof arrives, then
//     PAID_PENDING_PPH23 until the BUPOT arrives, then PAID
func DeriveStatus(snapshot LedgerSnapshot, netPayable decimal.Decimal, flags TaxFlags, sent, cancelled bool) InvoiceStatus {
	if cancelled {
		return InvoiceStatusCancelled
	}

	if !snapshot.HasPayments() {
		if sent {
			return InvoiceStatusSent
		}
		return InvoiceStatusDraft
	}

	if !snapshot.IsSettled(netPayable) {
		return InvoiceStatusPartiallyPaid
	}

	if !flags.PPNPaid {
		return InvoiceStatusPaidPendingPPN
	}
	if !flags.PPH23Paid {
		return InvoiceStatusPaidPendingPPH23
	}
	return InvoiceStatusPaid
}

// DisplayStatus applies the overdue overlay: an invoice past its due date
// that is neither PAID nor CANCELLED is shown as OVERDUE while the
// underlying payment-derived status is retained for when it does get
// settled. The tax-pending states are still overlaid - the customer has
// paid, but the invoice is not closed until the tax proofs arrive.
func DisplayStatus(status InvoiceStatus, dueDate *time.Time, today time.Time) InvoiceStatus {
	if status == InvoiceStatusCancelled || status == InvoiceStatusPaid {
		return status
	}
	if dueDate != nil && dueDate.Before(today) {
		return InvoiceStatusOverdue
	}
	return status
}
