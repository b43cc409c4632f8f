package billing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sikontrak/backend/internal/domain/shared"
	"github.com/sikontrak/backend/internal/domain/shared/valueobject"
)

func TestComputeTaxBreakdown(t *testing.T) {
	tests := []struct {
		name        string
		baseAmount  int64
		wantPPN     int64
		wantAmount  int64
		wantPPH     int64
		wantNet     int64
	}{
		{
			name:       "round base amount",
			baseAmount: 1_000_000,
			wantPPN:    110_000,
			wantAmount: 1_110_000,
			wantPPH:    22_200,
			wantNet:    1_087_800,
		},
		{
			name:       "zero base amount",
			baseAmount: 0,
			wantPPN:    0,
			wantAmount: 0,
			wantPPH:    0,
			wantNet:    0,
		},
		{
			name:       "amount producing fractional taxes",
			baseAmount: 1_234_567,
			// 1234567 * 0.11 = 135802.37 -> 135802
			wantPPN:    135_802,
			wantAmount: 1_370_369,
			// 1370369 * 0.02 = 27407.38 -> 27407
			wantPPH: 27_407,
			wantNet: 1_342_962,
		},
		{
			name:       "small amount",
			baseAmount: 100,
			wantPPN:    11,
			wantAmount: 111,
			// 111 * 0.02 = 2.22 -> 2
			wantPPH: 2,
			wantNet: 109,
		},
		{
			name:       "large contract value",
			baseAmount: 5_500_000_000,
			wantPPN:    605_000_000,
			wantAmount: 6_105_000_000,
			wantPPH:    122_100_000,
			wantNet:    5_982_900_000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := valueobject.NewMoneyIDRFromInt(tt.baseAmount)

			breakdown, err := ComputeTaxBreakdown(base)
			require.NoError(t, err)

			assert.True(t, breakdown.PPNAmount.Equal(decimal.NewFromInt(tt.wantPPN)),
				"ppn: got %s want %d", breakdown.PPNAmount, tt.wantPPN)
			assert.True(t, breakdown.Amount.Equal(decimal.NewFromInt(tt.wantAmount)),
				"amount: got %s want %d", breakdown.Amount, tt.wantAmount)
			assert.True(t, breakdown.PPHAmount.Equal(decimal.NewFromInt(tt.wantPPH)),
				"pph: got %s want %d", breakdown.PPHAmount, tt.wantPPH)
			assert.True(t, breakdown.NetPayableAmount.Equal(decimal.NewFromInt(tt.wantNet)),
				"net: got %s want %d", breakdown.NetPayableAmount, tt.wantNet)

			// The waterfall identities must hold exactly after rounding
			assert.True(t, breakdown.Amount.Equal(breakdown.BaseAmount.Add(breakdown.PPNAmount)))
			assert.True(t, breakdown.NetPayableAmount.Equal(breakdown.Amount.Sub(breakdown.PPHAmount)))
		})
	}
}

func TestComputeTaxBreakdown_NegativeBase(t *testing.T) {
	base := valueobject.NewMoneyIDR(decimal.NewFromInt(-1))

	_, err := ComputeTaxBreakdown(base)

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_AMOUNT", domainErr.Code)
}

func TestComputeTaxBreakdownWithRates(t *testing.T) {
	base := valueobject.NewMoneyIDRFromInt(1_000_000)

	t.Run("custom rates", func(t *testing.T) {
		breakdown, err := ComputeTaxBreakdownWithRates(base,
			decimal.RequireFromString("0.10"), decimal.RequireFromString("0.015"))
		require.NoError(t, err)

		assert.True(t, breakdown.PPNAmount.Equal(decimal.NewFromInt(100_000)))
		assert.True(t, breakdown.Amount.Equal(decimal.NewFromInt(1_100_000)))
		// 1100000 * 0.015 = 16500
		assert.True(t, breakdown.PPHAmount.Equal(decimal.NewFromInt(16_500)))
		assert.True(t, breakdown.NetPayableAmount.Equal(decimal.NewFromInt(1_083_500)))
	})

	t.Run("zero rates", func(t *testing.T) {
		breakdown, err := ComputeTaxBreakdownWithRates(base, decimal.Zero, decimal.Zero)
		require.NoError(t, err)

		assert.True(t, breakdown.PPNAmount.IsZero())
		assert.True(t, breakdown.PPHAmount.IsZero())
		assert.True(t, breakdown.NetPayableAmount.Equal(base.Amount()))
	})

	t.Run("negative rate rejected", func(t *testing.T) {
		_, err := ComputeTaxBreakdownWithRates(base, decimal.RequireFromString("-0.11"), decimal.Zero)
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_AMOUNT", domainErr.Code)
	})

	t.Run("deterministic for same input", func(t *testing.T) {
		first, err := ComputeTaxBreakdown(base)
		require.NoError(t, err)
		second, err := ComputeTaxBreakdown(base)
		require.NoError(t, err)

		assert.True(t, first.PPNAmount.Equal(second.PPNAmount))
		assert.True(t, first.NetPayableAmount.Equal(second.NetPayableAmount))
	})
}
