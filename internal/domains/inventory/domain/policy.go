package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Metadata keys read from catalog-owned metadata bags.
const (
	MetaMinIncrement        = "min_increment"
	MetaLowStockThreshold   = "low_stock_threshold"
	MetaATSIncludesIncoming = "ats_includes_incoming"
)

// PolicySource records where a policy value came from.
type PolicySource string

const (
	SourceItem    PolicySource = "item"
	SourceVariant PolicySource = "variant"
	SourceDefault PolicySource = "default"
)

// InventoryPolicy is the typed view over per-item stock policy metadata. It is built per
// request and never cached because catalog metadata can change between calls.
type InventoryPolicy struct {
	MinIncrement      decimal.Decimal
	LowStockThreshold decimal.Decimal
	IncludeIncoming   bool

	MinIncrementSource PolicySource
	ThresholdSource    PolicySource
	// Warnings lists metadata values that were present but unusable.
	Warnings []string
}

// DefaultPolicy sells whole units with no low-stock threshold.
func DefaultPolicy() InventoryPolicy {
	return InventoryPolicy{
		MinIncrement:       decimal.NewFromInt(1),
		LowStockThreshold:  decimal.Zero,
		MinIncrementSource: SourceDefault,
		ThresholdSource:    SourceDefault,
	}
}

// ResolvePolicy builds a policy from item metadata, falling back to variant metadata and then
// to defaults. Either bag may be nil.
func ResolvePolicy(item, variant map[string]any) InventoryPolicy {
	policy := DefaultPolicy()
	sources := []struct {
		name PolicySource
		meta map[string]any
	}{
		{SourceItem, item},
		{SourceVariant, variant},
	}

	for _, src := range sources {
		raw, ok := src.meta[MetaMinIncrement]
		if !ok || raw == nil {
			continue
		}
		value, err := decimalFromAny(raw)
		if err == nil {
			_, err = BaseUnitFactor(value)
		}
		if err != nil {
			policy.Warnings = append(policy.Warnings, fmt.Sprintf("%s %s ignored: %v", src.name, MetaMinIncrement, err))
			continue
		}
		policy.MinIncrement = value
		policy.MinIncrementSource = src.name
		break
	}

	for _, src := range sources {
		raw, ok := src.meta[MetaLowStockThreshold]
		if !ok || raw == nil {
			continue
		}
		value, err := decimalFromAny(raw)
		if err == nil && value.IsNegative() {
			err = fmt.Errorf("must be greater or equal to zero, got %s", value.String())
		}
		if err != nil {
			policy.Warnings = append(policy.Warnings, fmt.Sprintf("%s %s ignored: %v", src.name, MetaLowStockThreshold, err))
			continue
		}
		policy.LowStockThreshold = value
		policy.ThresholdSource = src.name
		break
	}

	for _, src := range sources {
		if raw, ok := src.meta[MetaATSIncludesIncoming]; ok && raw != nil {
			policy.IncludeIncoming = boolFromAny(raw)
			break
		}
	}
	return policy
}

// Factor returns the base-unit factor for the resolved increment.
func (p InventoryPolicy) Factor() (int64, error) {
	return BaseUnitFactor(p.MinIncrement)
}

// ToUnits converts a quantity on this policy's grid.
func (p InventoryPolicy) ToUnits(qty decimal.Decimal, rounding Rounding) (int64, error) {
	return ToBaseUnits(qty, p.MinIncrement, rounding)
}

// FromUnits presents base units as a physical quantity.
func (p InventoryPolicy) FromUnits(units int64) (decimal.Decimal, error) {
	return FromBaseUnits(units, p.MinIncrement)
}

func decimalFromAny(raw any) (decimal.Decimal, error) {
	switch v := raw.(type) {
	case decimal.Decimal:
		return v, nil
	case float64:
		return decimal.NewFromFloat(v), nil
	case float32:
		return decimal.NewFromFloat32(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case int32:
		return decimal.NewFromInt(int64(v)), nil
	case json.Number:
		return decimal.NewFromString(v.String())
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return decimal.Zero, fmt.Errorf("empty value")
		}
		return decimal.NewFromString(trimmed)
	default:
		return decimal.Zero, fmt.Errorf("unsupported value type %T", raw)
	}
}

func boolFromAny(raw any) bool {
	switch v := raw.(type) {
	case bool:
		return v
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		return err == nil && parsed
	case float64:
		return v != 0
	case int:
		return v != 0
	default:
		return false
	}
}
