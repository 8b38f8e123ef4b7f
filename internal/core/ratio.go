package core

import (
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// Ratio is a dimensionless financial ratio. Division by zero is a defined
// outcome, not an error: the result is signed infinity, so the numeric
// contract is total. Infinities survive JSON round-trips as the strings
// "+Inf" and "-Inf" since JSON has no infinity literal.
type Ratio float64

// DivideRatio divides two decimals under the zero-denominator policy:
// a zero denominator yields positive infinity.
func DivideRatio(num, den decimal.Decimal) Ratio {
	if den.IsZero() {
		return Ratio(math.Inf(1))
	}
	return Ratio(num.InexactFloat64() / den.InexactFloat64())
}

// PercentChange reports the change from previous to current in percent.
// A zero previous value yields +Inf when current is positive, -Inf when
// negative, and 0 when current is also zero.
func PercentChange(previous, current decimal.Decimal) Ratio {
	if previous.IsZero() {
		switch current.Sign() {
		case 1:
			return Ratio(math.Inf(1))
		case -1:
			return Ratio(math.Inf(-1))
		default:
			return 0
		}
	}
	change := current.Sub(previous).Div(previous.Abs()).Mul(decimal.NewFromInt(100))
	return Ratio(change.InexactFloat64())
}

// IsInf reports whether the ratio is positive or negative infinity.
func (r Ratio) IsInf() bool { return math.IsInf(float64(r), 0) }

// Round rounds a finite ratio to the given number of decimal digits.
// Infinities pass through unchanged.
func (r Ratio) Round(precision int) Ratio {
	if r.IsInf() {
		return r
	}
	rounded := decimal.NewFromFloat(float64(r)).Round(int32(precision))
	return Ratio(rounded.InexactFloat64())
}

func (r Ratio) String() string {
	if math.IsInf(float64(r), 1) {
		return "+Inf"
	}
	if math.IsInf(float64(r), -1) {
		return "-Inf"
	}
	return strconv.FormatFloat(float64(r), 'f', -1, 64)
}

func (r Ratio) MarshalJSON() ([]byte, error) {
	if r.IsInf() {
		return []byte(strconv.Quote(r.String())), nil
	}
	return []byte(r.String()), nil
}

func (r *Ratio) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"+Inf"`, `"Inf"`:
		*r = Ratio(math.Inf(1))
		return nil
	case `"-Inf"`:
		*r = Ratio(math.Inf(-1))
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("parse ratio %s: %w", data, err)
	}
	*r = Ratio(f)
	return nil
}
