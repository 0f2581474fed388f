package domain

import (
	"errors"
	"strings"
)

var (
	ErrNegativeStock   = errors.New("resulting quantity cannot be negative")
	ErrInvalidLevelKey = errors.New("inventory_item_id and location_id are required")
)

// InventoryLevel is the mutable ledger row for one item at one location. Quantities are base units.
type InventoryLevel struct {
	InventoryItemID string
	LocationID      string
	Stocked         int64
	Reserved        int64
	Incoming        int64
	// Version increments on every committed write.
	Version int64
}

// Validate enforces the non-negative ledger invariants.
func (l InventoryLevel) Validate() error {
	if strings.TrimSpace(l.InventoryItemID) == "" || strings.TrimSpace(l.LocationID) == "" {
		return ErrInvalidLevelKey
	}
	if l.Stocked < 0 || l.Reserved < 0 || l.Incoming < 0 {
		return ErrNegativeStock
	}
	return nil
}

// ATS returns available-to-sell base units under the given policy.
func (l InventoryLevel) ATS(policy InventoryPolicy) int64 {
	return ComputeATS(l.Stocked, l.Reserved, l.Incoming, policy.IncludeIncoming)
}

// WithStocked returns a copy carrying the new stocked quantity.
func (l InventoryLevel) WithStocked(units int64) (InventoryLevel, error) {
	if units < 0 {
		return l, ErrNegativeStock
	}
	l.Stocked = units
	return l, nil
}
