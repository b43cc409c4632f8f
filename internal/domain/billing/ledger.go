package billing

import (
	"github.com/shopspring/decimal"
)

// SettlementTolerance is the rupiah threshold under which an outstanding
// amount is treated as fully settled. Whole-rupiah rounding in the tax
// breakdown can leave an invoice one rupiah short of its net payable; the
// tolerance absorbs that instead of inviting a phantom Rp 1 payment.
var SettlementTolerance = decimal.NewFromInt(1)

var oneHundred = decimal.NewFromInt(100)

// LedgerSnapshot holds the payment-progress aggregates for one invoice.
// A snapshot is always recomputed from the full payment record list -
// never incrementally mutated - so edits and deletes cannot cause drift.
type LedgerSnapshot struct {
	PaidAmount         decimal.Decimal `json:"paid_amount"`
	OutstandingAmount  decimal.Decimal `json:"outstanding_amount"`
	PaymentProgressPct decimal.Decimal `json:"payment_progress_pct"`
}

// RecomputeLedger derives a fresh snapshot from the net payable amount and
// the complete payment list.
//
//	paid        = sum of payment amounts
//	outstanding = max(0, netPayable - paid)
//	progress    = clamp(100 * paid / netPayable, 0, 100); 0 when netPayable is 0
func RecomputeLedger(netPayable decimal.Decimal, payments PaymentRecords) LedgerSnapshot {
	paid := payments.TotalAmount()

	outstanding := netPayable.Sub(paid)
	if outstanding.IsNegative() {
		outstanding = decimal.Zero
	}

	progress := decimal.Zero
	if !netPayable.IsZero() {
		progress = paid.Div(netPayable).Mul(oneHundred).Round(2)
		if progress.IsNegative() {
			progress = decimal.Zero
		} else if progress.GreaterThan(oneHundred) {
			progress = oneHundred
		}
	}

	return LedgerSnapshot{
		PaidAmount:         paid,
		OutstandingAmount:  outstanding,
		PaymentProgressPct: progress,
	}
}

// IsSettled returns true when the snapshot's paid amount covers the net
// payable within the settlement tolerance
func (s LedgerSnapshot) IsSettled(netPayable decimal.Decimal) bool {
	return s.PaidAmount.GreaterThanOrEqual(netPayable.Sub(SettlementTolerance))
}

// HasPayments returns true when any amount beyond the settlement tolerance
// has been paid
func (s LedgerSnapshot) HasPayments() bool {
	return s.PaidAmount.GreaterThan(SettlementTolerance)
}
