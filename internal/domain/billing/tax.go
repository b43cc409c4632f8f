package billing

import (
	"github.com/shopspring/decimal"

	"github.com/sikontrak/backend/internal/domain/shared"
	"github.com/sikontrak/backend/internal/domain/shared/valueobject"
)

// Statutory rates applied to Telkom service contracts.
// PPN is Indonesian VAT; PPh 23 is the withholding income tax the customer
// deducts and remits to the tax office on the invoiced gross amount.
var (
	DefaultPPNRate   = decimal.RequireFromString("0.11")
	DefaultPPH23Rate = decimal.RequireFromString("0.02")
)

// TaxBreakdown is the full tax waterfall derived from a base billed amount
// (DPP). It is always recomputed from BaseAmount, never stored independently.
//
//	Amount           = BaseAmount + PPNAmount
//	NetPayableAmount = Amount - PPHAmount
type TaxBreakdown struct {
	BaseAmount       decimal.Decimal `json:"base_amount"`
	PPNAmount        decimal.Decimal `json:"ppn_amount"`
	Amount           decimal.Decimal `json:"amount"`
	PPHAmount        decimal.Decimal `json:"pph_amount"`
	NetPayableAmount decimal.Decimal `json:"net_payable_amount"`
}

// ComputeTaxBreakdown computes the tax waterfall for a base amount using the
// statutory default rates.
func ComputeTaxBreakdown(baseAmount valueobject.Money) (*TaxBreakdown, error) {
	return ComputeTaxBreakdownWithRates(baseAmount, DefaultPPNRate, DefaultPPH23Rate)
}

// ComputeTaxBreakdownWithRates computes the tax waterfall with explicit rates.
// Tax amounts are rounded to whole rupiah; the identities above hold exactly
// after rounding. PPh 23 is computed on the gross invoiced amount (base + PPN),
// matching the "Total Invoice - PPh23 = Net Payable" waterfall on the invoice.
// Pure function: same inputs always produce the same breakdown.
func ComputeTaxBreakdownWithRates(baseAmount valueobject.Money, ppnRate, pph23Rate decimal.Decimal) (*TaxBreakdown, error) {
	if baseAmount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Base amount cannot be negative")
	}
	if ppnRate.IsNegative() || pph23Rate.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Tax rates cannot be negative")
	}

	base := baseAmount.Amount()
	ppn := base.Mul(ppnRate).Round(0)
	amount := base.Add(ppn)
	pph := amount.Mul(pph23Rate).Round(0)

	return &TaxBreakdown{
		BaseAmount:       base,
		PPNAmount:        ppn,
		Amount:           amount,
		PPHAmount:        pph,
		NetPayableAmount: amount.Sub(pph),
	}, nil
}

// NetPayableMoney returns the net payable amount as Money
func (b *TaxBreakdown) NetPayableMoney() valueobject.Money {
	return valueobject.NewMoneyIDR(b.NetPayableAmount)
}
