package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// StockStatus classifies a level for merchandising and replenishment views.
type StockStatus string

const (
	StatusInStock    StockStatus = "in_stock"
	StatusLowStock   StockStatus = "low_stock"
	StatusOutOfStock StockStatus = "out_of_stock"
	// StatusBackordered is not produced by Classify while stocked quantities stay non-negative.
	StatusBackordered StockStatus = "backordered"
)

// ParseStockStatus accepts the wire names of the four statuses.
func ParseStockStatus(raw string) (StockStatus, error) {
	status := StockStatus(strings.ToLower(strings.TrimSpace(raw)))
	switch status {
	case StatusInStock, StatusLowStock, StatusOutOfStock, StatusBackordered:
		return status, nil
	default:
		return "", fmt.Errorf("unknown stock status %q", raw)
	}
}

// Classify maps ATS base units onto a status using a decimal low-stock threshold.
func Classify(atsUnits int64, lowStockThreshold decimal.Decimal, minIncrement decimal.Decimal) (StockStatus, error) {
	if atsUnits <= 0 {
		return StatusOutOfStock, nil
	}
	thresholdUnits, err := ToBaseUnits(lowStockThreshold, minIncrement, RoundNearest)
	if errors.Is(err, ErrQuantityOutOfRange) && lowStockThreshold.IsPositive() {
		// a threshold past the ledger range covers every representable level
		return StatusLowStock, nil
	}
	if err != nil {
		return "", err
	}
	if atsUnits <= thresholdUnits {
		return StatusLowStock, nil
	}
	return StatusInStock, nil
}
