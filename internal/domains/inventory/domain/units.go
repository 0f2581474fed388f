package domain

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Rounding selects how a decimal quantity snaps onto the base-unit grid.
type Rounding string

const (
	RoundUp      Rounding = "up"
	RoundDown    Rounding = "down"
	RoundNearest Rounding = "nearest"
)

var (
	ErrInvalidPolicy   = errors.New("min_increment must be greater than zero and at most one unit")
	ErrInvalidRounding = errors.New("rounding mode is invalid")
	// ErrQuantityOutOfRange signals a quantity whose base units do not fit the ledger column.
	ErrQuantityOutOfRange = errors.New("quantity is out of range")
)

// maxScale bounds how fine an increment may be (one millionth of a physical unit).
const maxScale = 1_000_000

var (
	epsilon  = decimal.New(1, -10)
	one      = decimal.NewFromInt(1)
	scaleDec = decimal.NewFromInt(maxScale)
	maxUnits = decimal.NewFromInt(math.MaxInt64)
	minUnits = decimal.NewFromInt(math.MinInt64)
)

// BaseUnitFactor returns how many base units make up one whole physical unit.
func BaseUnitFactor(minIncrement decimal.Decimal) (int64, error) {
	if !minIncrement.IsPositive() {
		return 0, fmt.Errorf("%w: got %s", ErrInvalidPolicy, minIncrement.String())
	}
	// one base unit must not span more than one physical unit
	if minIncrement.GreaterThan(one) {
		return 0, fmt.Errorf("%w: increment %s is coarser than one unit", ErrInvalidPolicy, minIncrement.String())
	}
	factor := one.DivRound(minIncrement, 16).Round(0)
	if factor.Mul(minIncrement).Sub(one).Abs().GreaterThan(epsilon) {
		scaled := minIncrement.Mul(scaleDec).Round(0)
		if !scaled.IsPositive() {
			return 0, fmt.Errorf("%w: increment %s is finer than 1/%d", ErrInvalidPolicy, minIncrement.String(), maxScale)
		}
		factor = scaleDec.DivRound(scaled, 16).Round(0)
	}
	if factor.GreaterThan(scaleDec) {
		return 0, fmt.Errorf("%w: increment %s is finer than 1/%d", ErrInvalidPolicy, minIncrement.String(), maxScale)
	}
	return factor.IntPart(), nil
}

// ToBaseUnits converts a physical quantity into integer base units.
func ToBaseUnits(qty decimal.Decimal, minIncrement decimal.Decimal, rounding Rounding) (int64, error) {
	factor, err := BaseUnitFactor(minIncrement)
	if err != nil {
		return 0, err
	}
	raw := qty.Mul(decimal.NewFromInt(factor))
	var units decimal.Decimal
	switch rounding {
	case RoundUp:
		units = raw.Sub(epsilon).Ceil()
	case RoundDown:
		units = raw.Add(epsilon).Floor()
	case RoundNearest:
		units = raw.RoundBank(0)
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidRounding, rounding)
	}
	if units.GreaterThan(maxUnits) || units.LessThan(minUnits) {
		return 0, fmt.Errorf("%w: %s", ErrQuantityOutOfRange, qty.String())
	}
	return units.IntPart(), nil
}

// FromBaseUnits converts base units back into a physical quantity for presentation.
func FromBaseUnits(units int64, minIncrement decimal.Decimal) (decimal.Decimal, error) {
	factor, err := BaseUnitFactor(minIncrement)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromInt(units).Div(decimal.NewFromInt(factor)), nil
}

// DeltaRounding picks the rounding direction for a relative adjustment: deposits round up,
// withdrawals round down.
func DeltaRounding(delta decimal.Decimal) Rounding {
	if delta.IsNegative() {
		return RoundDown
	}
	return RoundUp
}
