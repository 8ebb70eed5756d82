package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeight_LineTotal(t *testing.T) {
	w := NewWeight(decimal.NewFromFloat(3.0))
	assert.Equal(t, int64(6000), w.LineTotal(2000))
}

func TestWeight_LineTotalFractional(t *testing.T) {
	// 2.5 kg at 3,000/kg
	w := NewWeight(decimal.NewFromFloat(2.5))
	assert.Equal(t, int64(7500), w.LineTotal(3000))
}

func TestWeight_LineTotalTruncates(t *testing.T) {
	// 0.333 kg at 1,000/kg is 333.0; 0.3334 truncates to 0.333 first.
	w := NewWeight(decimal.NewFromFloat(0.3334))
	assert.Equal(t, int64(333), w.LineTotal(1000))
}

func TestParseWeight(t *testing.T) {
	w, err := ParseWeight("12.750")
	require.NoError(t, err)
	assert.Equal(t, "12.750", w.String())
	assert.True(t, w.Positive())
}

func TestParseWeight_Invalid(t *testing.T) {
	_, err := ParseWeight("abc")
	assert.Error(t, err)
}

func TestWeight_ZeroNotPositive(t *testing.T) {
	w := NewWeight(decimal.Zero)
	assert.False(t, w.Positive())
}

func TestWeight_JSON(t *testing.T) {
	w := NewWeight(decimal.NewFromFloat(2.5))
	data, err := json.Marshal(w)
	require.NoError(t, err)
	assert.Equal(t, `"2.500"`, string(data))

	var parsed Weight
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.True(t, parsed.Kilograms().Equal(w.Kilograms()))
}
