package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("creates money with valid inputs", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromInt(1000000), IDR)
		require.NoError(t, err)
		assert.True(t, m.Amount().Equal(decimal.NewFromInt(1000000)))
		assert.Equal(t, IDR, m.Currency())
	})

	t.Run("rejects empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(100), "")
		assert.Error(t, err)
	})
}

func TestNewMoneyIDRFromString(t *testing.T) {
	t.Run("parses decimal string", func(t *testing.T) {
		m, err := NewMoneyIDRFromString("1087800")
		require.NoError(t, err)
		assert.True(t, m.Amount().Equal(decimal.NewFromInt(1087800)))
	})

	t.Run("rejects non-numeric string", func(t *testing.T) {
		_, err := NewMoneyIDRFromString("satu juta")
		assert.Error(t, err)
	})
}

func TestMoney_Arithmetic(t *testing.T) {
	a := NewMoneyIDRFromInt(1000)
	b := NewMoneyIDRFromInt(250)

	t.Run("adds same currency", func(t *testing.T) {
		sum, err := a.Add(b)
		require.NoError(t, err)
		assert.True(t, sum.Amount().Equal(decimal.NewFromInt(1250)))
	})

	t.Run("subtracts same currency", func(t *testing.T) {
		diff, err := a.Subtract(b)
		require.NoError(t, err)
		assert.True(t, diff.Amount().Equal(decimal.NewFromInt(750)))
	})

	t.Run("rejects mixed currencies", func(t *testing.T) {
		usd, err := NewMoney(decimal.NewFromInt(10), USD)
		require.NoError(t, err)
		_, err = a.Add(usd)
		assert.Error(t, err)
		_, err = a.Subtract(usd)
		assert.Error(t, err)
	})

	t.Run("multiplies by rate", func(t *testing.T) {
		rate, err := decimal.NewFromString("0.11")
		require.NoError(t, err)
		ppn := a.Multiply(rate)
		assert.True(t, ppn.Amount().Equal(decimal.NewFromInt(110)))
	})
}

func TestMoney_WithinTolerance(t *testing.T) {
	tolerance := decimal.NewFromInt(1)

	tests := []struct {
		name   string
		a      int64
		b      int64
		within bool
	}{
		{"equal amounts", 1087800, 1087800, true},
		{"one rupiah short", 1087799, 1087800, true},
		{"one rupiah over", 1087801, 1087800, true},
		{"two rupiah short", 1087798, 1087800, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := NewMoneyIDRFromInt(tt.a).WithinTolerance(NewMoneyIDRFromInt(tt.b), tolerance)
			require.NoError(t, err)
			assert.Equal(t, tt.within, ok)
		})
	}
}

func TestMoney_JSON(t *testing.T) {
	t.Run("marshals amount as string", func(t *testing.T) {
		m := NewMoneyIDRFromInt(1110000)
		data, err := json.Marshal(m)
		require.NoError(t, err)
		assert.JSONEq(t, `{"amount":"1110000","currency":"IDR"}`, string(data))
	})

	t.Run("round trips", func(t *testing.T) {
		var m Money
		err := json.Unmarshal([]byte(`{"amount":"22200.50","currency":"IDR"}`), &m)
		require.NoError(t, err)
		assert.Equal(t, "22200.5", m.Amount().String())
		assert.Equal(t, IDR, m.Currency())
	})

	t.Run("rejects non-decimal amount", func(t *testing.T) {
		var m Money
		err := json.Unmarshal([]byte(`{"amount":"abc","currency":"IDR"}`), &m)
		assert.Error(t, err)
	})
}

func TestMoney_Scan(t *testing.T) {
	t.Run("scans string value", func(t *testing.T) {
		var m Money
		require.NoError(t, m.Scan("500000"))
		assert.True(t, m.Amount().Equal(decimal.NewFromInt(500000)))
		assert.Equal(t, DefaultCurrency, m.Currency())
	})

	t.Run("scans nil as zero", func(t *testing.T) {
		var m Money
		require.NoError(t, m.Scan(nil))
		assert.True(t, m.IsZero())
	})

	t.Run("rejects unsupported type", func(t *testing.T) {
		var m Money
		assert.Error(t, m.Scan(3.14))
	})
}
