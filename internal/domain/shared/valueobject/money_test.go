package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("valid money", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromFloat(99.99), USD)
		require.NoError(t, err)
		assert.Equal(t, "99.99", m.Amount().StringFixed(2))
		assert.Equal(t, USD, m.Currency())
	})

	t.Run("empty currency rejected", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(10), "")
		assert.Error(t, err)
	})
}

func TestNewMoneyFromString(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"integer", "100", false},
		{"two decimals", "935.00", false},
		{"negative", "-5.25", false},
		{"garbage", "abc", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMoneyFromString(tt.input, USD)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMoney_AddSubtract(t *testing.T) {
	a := NewMoneyUSDFromFloat(250.00)
	b := NewMoneyUSDFromFloat(437.50)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, "687.50", sum.StringFixed(2))

	diff, err := sum.Subtract(a)
	require.NoError(t, err)
	assert.True(t, diff.Equals(b))
}

func TestMoney_CurrencyMismatch(t *testing.T) {
	usd := NewMoneyUSDFromFloat(10)
	eur, err := NewMoney(decimal.NewFromInt(10), EUR)
	require.NoError(t, err)

	_, err = usd.Add(eur)
	assert.Error(t, err)

	_, err = usd.Subtract(eur)
	assert.Error(t, err)

	_, err = usd.LessThan(eur)
	assert.Error(t, err)
}

func TestMoney_RoundCurrency(t *testing.T) {
	// Half-up at the cent boundary.
	tests := []struct {
		input string
		want  string
	}{
		{"1.005", "1.01"},
		{"1.004", "1.00"},
		{"2.675", "2.68"},
		{"0.125", "0.13"},
		{"-1.005", "-1.01"}, // half away from zero
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			m, err := NewMoneyUSDFromString(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.RoundCurrency().StringFixed(2))
		})
	}
}

func TestMoney_RepeatedAdditionHasNoDrift(t *testing.T) {
	// 0.1 added ten thousand times must be exactly 1000.00.
	cent, err := NewMoneyUSDFromString("0.10")
	require.NoError(t, err)

	total := ZeroUSD()
	for i := 0; i < 10000; i++ {
		total = total.MustAdd(cent)
	}
	assert.Equal(t, "1000.00", total.StringFixed(2))
}

func TestMoney_Comparisons(t *testing.T) {
	small := NewMoneyUSDFromFloat(385.00)
	large := NewMoneyUSDFromFloat(400.00)

	gt, err := large.GreaterThan(small)
	require.NoError(t, err)
	assert.True(t, gt)

	gte, err := small.GreaterThanOrEqual(small)
	require.NoError(t, err)
	assert.True(t, gte)

	lt, err := small.LessThan(large)
	require.NoError(t, err)
	assert.True(t, lt)
}

func TestMoney_JSONRoundTrip(t *testing.T) {
	m := NewMoneyUSDFromFloat(687.50)

	data, err := json.Marshal(m)
	require.NoError(t, err)

	var decoded Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, m.Equals(decoded))
}

func TestMoney_Scan(t *testing.T) {
	var m Money
	require.NoError(t, m.Scan("935.00"))
	assert.Equal(t, "935.00", m.StringFixed(2))
	assert.Equal(t, DefaultCurrency, m.Currency())

	require.NoError(t, m.Scan(nil))
	assert.True(t, m.IsZero())

	assert.Error(t, m.Scan(42))
}

func TestTaxOn(t *testing.T) {
	tests := []struct {
		name string
		base string
		rate string
		want string
	}{
		{"5 percent", "850.00", "5", "42.50"},
		{"rounding half-up", "33.33", "7.5", "2.50"},   // 2.49975 -> 2.50
		{"fractional cents", "101.01", "9.9", "10.00"}, // 9.99999 -> 10.00
		{"zero rate", "500.00", "0", "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base, err := NewMoneyUSDFromString(tt.base)
			require.NoError(t, err)
			rate, err := decimal.NewFromString(tt.rate)
			require.NoError(t, err)

			tax, err := TaxOn(base, rate)
			require.NoError(t, err)
			assert.Equal(t, tt.want, tax.StringFixed(2))
		})
	}

	t.Run("negative rate rejected", func(t *testing.T) {
		base := NewMoneyUSDFromFloat(100)
		_, err := TaxOn(base, decimal.NewFromInt(-5))
		assert.Error(t, err)
	})
}

func TestLineTotal(t *testing.T) {
	unit := NewMoneyUSDFromFloat(125.00)
	tax := NewMoneyUSDFromFloat(18.75)

	total, err := LineTotal(unit, decimal.NewFromInt(3), tax)
	require.NoError(t, err)
	assert.Equal(t, "393.75", total.StringFixed(2))

	t.Run("zero quantity rejected", func(t *testing.T) {
		_, err := LineTotal(unit, decimal.Zero, tax)
		assert.Error(t, err)
	})

	t.Run("negative quantity rejected", func(t *testing.T) {
		_, err := LineTotal(unit, decimal.NewFromInt(-1), tax)
		assert.Error(t, err)
	})
}
