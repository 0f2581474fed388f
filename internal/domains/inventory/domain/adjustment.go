package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrAmbiguousAdjustment = errors.New("provide exactly one of delta or to_quantity")
	ErrMissingReason       = errors.New("reason is required")
)

// Adjustment is a requested change expressed either relative to the current level or as an
// absolute target, both in physical units.
type Adjustment struct {
	Delta      *decimal.Decimal
	ToQuantity *decimal.Decimal
}

// Validate enforces that exactly one form is present.
func (a Adjustment) Validate() error {
	if (a.Delta == nil) == (a.ToQuantity == nil) {
		return ErrAmbiguousAdjustment
	}
	return nil
}

// IsAbsolute reports whether the adjustment sets a target rather than applying a delta.
func (a Adjustment) IsAbsolute() bool {
	return a.ToQuantity != nil
}

// NextUnits computes the new stocked base units from the previous value.
func (a Adjustment) NextUnits(prevUnits int64, policy InventoryPolicy) (int64, error) {
	if err := a.Validate(); err != nil {
		return 0, err
	}
	var next int64
	if a.ToQuantity != nil {
		units, err := policy.ToUnits(*a.ToQuantity, RoundNearest)
		if err != nil {
			return 0, err
		}
		next = units
	} else {
		units, err := policy.ToUnits(*a.Delta, DeltaRounding(*a.Delta))
		if err != nil {
			return 0, err
		}
		if (units > 0 && prevUnits > math.MaxInt64-units) || (units < 0 && prevUnits < math.MinInt64-units) {
			return 0, fmt.Errorf("%w: %s on top of %d base units", ErrQuantityOutOfRange, a.Delta.String(), prevUnits)
		}
		next = prevUnits + units
	}
	if next < 0 {
		return 0, ErrNegativeStock
	}
	return next, nil
}

// AdjustmentRecord is the append-only audit entry written once per successful adjustment.
type AdjustmentRecord struct {
	ID              string
	InventoryItemID string
	LocationID      string
	Delta           *decimal.Decimal
	ToQuantity      *decimal.Decimal
	Reason          string
	Note            string
	Reference       string
	PrevQuantity    decimal.Decimal
	NewQuantity     decimal.Decimal
	PrevUnits       int64
	NewUnits        int64
	MinIncrement    decimal.Decimal
	ActorID         string
	CreatedAt       time.Time
}

// Validate checks the fields every audit sink relies on.
func (r AdjustmentRecord) Validate() error {
	if strings.TrimSpace(r.InventoryItemID) == "" || strings.TrimSpace(r.LocationID) == "" {
		return ErrInvalidLevelKey
	}
	if strings.TrimSpace(r.Reason) == "" {
		return ErrMissingReason
	}
	return Adjustment{Delta: r.Delta, ToQuantity: r.ToQuantity}.Validate()
}
