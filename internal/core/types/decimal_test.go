package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantity_Constructors(t *testing.T) {
	assert.Equal(t, Quantity(200000), NewQuantityFromUnits(20))
	assert.Equal(t, Quantity(25000), NewQuantityFromFloat64(2.5))
	assert.Equal(t, Quantity(25000), NewQuantityFromInt64Scaled(25000))
	assert.Equal(t, int64(25000), NewQuantityFromFloat64(2.5).Int64Scaled())
	assert.InDelta(t, 2.5, Quantity(25000).Float64(), 1e-9)
}

func TestQuantity_String(t *testing.T) {
	tests := []struct {
		name string
		q    Quantity
		want string
	}{
		{"whole units", NewQuantityFromUnits(20), "20.0000"},
		{"fractional", NewQuantityFromFloat64(2.5), "2.5000"},
		{"zero", 0, "0.0000"},
		{"negative", NewQuantityFromFloat64(-1.25), "-1.2500"},
		{"sub-unit", Quantity(1), "0.0001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.q.String())
		})
	}
}

func TestQuantity_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Quantity
	}{
		{"number", `2.5`, Quantity(25000)},
		{"whole number", `20`, Quantity(200000)},
		{"string", `"2.5"`, Quantity(25000)},
		{"negative", `-1.25`, Quantity(-12500)},
		{"leading dot", `".5"`, Quantity(5000)},
		{"extra digits truncated", `0.123456`, Quantity(1234)},
		{"exponent form", `2.5e1`, Quantity(250000)},
		{"null", `null`, Quantity(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var q Quantity
			require.NoError(t, json.Unmarshal([]byte(tt.input), &q))
			assert.Equal(t, tt.want, q)
		})
	}

	t.Run("garbage is rejected", func(t *testing.T) {
		var q Quantity
		assert.Error(t, json.Unmarshal([]byte(`"abc"`), &q))
	})
}

func TestQuantity_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(NewQuantityFromFloat64(2.5))
	require.NoError(t, err)
	assert.Equal(t, "2.5000", string(data))

	// Round-trips through the wire format.
	var back Quantity
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, NewQuantityFromFloat64(2.5), back)
}

func TestQuantity_SignHelpers(t *testing.T) {
	q := NewQuantityFromUnits(3)
	assert.True(t, q.IsPositive())
	assert.True(t, q.Neg().IsNegative())
	assert.Equal(t, q, q.Neg().Abs())
	assert.True(t, Quantity(0).IsZero())
}

func TestMinorUnits_Conversions(t *testing.T) {
	assert.Equal(t, MinorUnits(12345), NewMinorUnitsFromMajor(123.45))
	assert.InDelta(t, 123.45, MinorUnits(12345).ToMajor(), 1e-9)

	m := MinorUnits(520000).ToMoney()
	assert.Equal(t, "5200", m.String())
}

func TestNewMinorUnitsFromMoney_Rounding(t *testing.T) {
	tests := []struct {
		name  string
		money string
		want  MinorUnits
	}{
		{"exact", "3200.00", 320000},
		{"half rounds up", "0.125", 13},
		{"below half rounds down", "0.124", 12},
		{"negative half rounds away from zero", "-0.125", -13},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewMinorUnitsFromMoney(MustMoney(tt.money)))
		})
	}
}

func TestMinorUnits_SignHelpers(t *testing.T) {
	assert.True(t, MinorUnits(100).IsPositive())
	assert.True(t, MinorUnits(-100).IsNegative())
	assert.True(t, MinorUnits(0).IsZero())
	assert.Equal(t, MinorUnits(100), MinorUnits(-100).Abs())
	assert.Equal(t, MinorUnits(-100), MinorUnits(100).Neg())
}
