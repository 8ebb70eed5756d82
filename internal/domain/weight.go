package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// WeightScale is the stored precision for weights, in decimal places of a
// kilogram (grams).
const WeightScale = 3

// Weight represents a quantity of deposited waste in kilograms.
type Weight struct {
	kg decimal.Decimal
}

// NewWeight builds a Weight from a decimal kilogram value, truncated to
// WeightScale places.
func NewWeight(kg decimal.Decimal) Weight {
	return Weight{kg: kg.Truncate(WeightScale)}
}

// ParseWeight parses a decimal string such as "2.5".
func ParseWeight(s string) (Weight, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Weight{}, fmt.Errorf("invalid weight %q: %w", s, err)
	}
	return NewWeight(d), nil
}

// Positive reports whether the weight is strictly greater than zero.
func (w Weight) Positive() bool {
	return w.kg.IsPositive()
}

// Kilograms returns the underlying decimal value.
func (w Weight) Kilograms() decimal.Decimal {
	return w.kg
}

// LineTotal multiplies the weight by a per-kilogram unit price in the smallest
// currency unit. The product is truncated toward zero, matching how the
// cashier-facing totals are displayed.
func (w Weight) LineTotal(unitPrice int64) int64 {
	return w.kg.Mul(decimal.NewFromInt(unitPrice)).IntPart()
}

// String formats the weight with fixed precision, e.g. "2.500".
func (w Weight) String() string {
	return w.kg.StringFixed(WeightScale)
}

// MarshalJSON encodes the weight as a decimal string to keep gram precision
// out of float hands.
func (w Weight) MarshalJSON() ([]byte, error) {
	return []byte(`"` + w.String() + `"`), nil
}

func (w *Weight) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseWeight(s)
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}
