package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePolicy_Defaults(t *testing.T) {
	policy := ResolvePolicy(nil, nil)
	assert.True(t, policy.MinIncrement.Equal(dec(t, "1")))
	assert.True(t, policy.LowStockThreshold.IsZero())
	assert.False(t, policy.IncludeIncoming)
	assert.Equal(t, SourceDefault, policy.MinIncrementSource)
	assert.Empty(t, policy.Warnings)
}

func TestResolvePolicy_ItemWinsOverVariant(t *testing.T) {
	policy := ResolvePolicy(
		map[string]any{MetaMinIncrement: "0.25"},
		map[string]any{MetaMinIncrement: 0.5, MetaLowStockThreshold: json.Number("2")},
	)
	assert.True(t, policy.MinIncrement.Equal(dec(t, "0.25")))
	assert.Equal(t, SourceItem, policy.MinIncrementSource)
	assert.True(t, policy.LowStockThreshold.Equal(dec(t, "2")))
	assert.Equal(t, SourceVariant, policy.ThresholdSource)
}

func TestResolvePolicy_InvalidValuesFallBack(t *testing.T) {
	policy := ResolvePolicy(
		map[string]any{MetaMinIncrement: 0, MetaLowStockThreshold: "-1"},
		map[string]any{MetaMinIncrement: "yards"},
	)
	assert.True(t, policy.MinIncrement.Equal(dec(t, "1")))
	assert.Equal(t, SourceDefault, policy.MinIncrementSource)
	assert.True(t, policy.LowStockThreshold.IsZero())
	assert.Len(t, policy.Warnings, 3)
}

func TestResolvePolicy_CoarseIncrementFallsBackToVariant(t *testing.T) {
	policy := ResolvePolicy(
		map[string]any{MetaMinIncrement: "2.5"},
		map[string]any{MetaMinIncrement: "0.5"},
	)
	assert.True(t, policy.MinIncrement.Equal(dec(t, "0.5")))
	assert.Equal(t, SourceVariant, policy.MinIncrementSource)
	require.Len(t, policy.Warnings, 1)
	assert.Contains(t, policy.Warnings[0], "coarser than one unit")
}

func TestResolvePolicy_IncludeIncoming(t *testing.T) {
	policy := ResolvePolicy(map[string]any{MetaATSIncludesIncoming: "true"}, nil)
	assert.True(t, policy.IncludeIncoming)

	policy = ResolvePolicy(nil, map[string]any{MetaATSIncludesIncoming: true})
	assert.True(t, policy.IncludeIncoming)
}

func TestInventoryPolicy_Conversions(t *testing.T) {
	policy := ResolvePolicy(map[string]any{MetaMinIncrement: 0.25}, nil)
	factor, err := policy.Factor()
	require.NoError(t, err)
	assert.Equal(t, int64(4), factor)

	qty, err := policy.FromUnits(10)
	require.NoError(t, err)
	assert.True(t, qty.Equal(dec(t, "2.5")))
}
