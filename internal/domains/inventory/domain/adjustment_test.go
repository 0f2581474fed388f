package domain

import (
	"math"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quarterYardPolicy(t *testing.T) InventoryPolicy {
	t.Helper()
	return ResolvePolicy(map[string]any{MetaMinIncrement: "0.25"}, nil)
}

func TestAdjustment_Validate(t *testing.T) {
	one := dec(t, "1")
	ten := dec(t, "10")
	require.ErrorIs(t, Adjustment{}.Validate(), ErrAmbiguousAdjustment)
	require.ErrorIs(t, Adjustment{Delta: &one, ToQuantity: &ten}.Validate(), ErrAmbiguousAdjustment)
	require.NoError(t, Adjustment{Delta: &one}.Validate())
	require.NoError(t, Adjustment{ToQuantity: &ten}.Validate())
}

func TestAdjustment_DepositScenario(t *testing.T) {
	delta := dec(t, "0.5")
	next, err := Adjustment{Delta: &delta}.NextUnits(8, quarterYardPolicy(t))
	require.NoError(t, err)
	assert.Equal(t, int64(10), next)
}

func TestAdjustment_RejectsNegativeResult(t *testing.T) {
	delta := dec(t, "-10")
	_, err := Adjustment{Delta: &delta}.NextUnits(8, quarterYardPolicy(t))
	require.ErrorIs(t, err, ErrNegativeStock)

	target := dec(t, "-1")
	_, err = Adjustment{ToQuantity: &target}.NextUnits(8, quarterYardPolicy(t))
	require.ErrorIs(t, err, ErrNegativeStock)
}

func TestAdjustment_RejectsUnitsPastLedgerRange(t *testing.T) {
	policy := quarterYardPolicy(t)
	whole := ResolvePolicy(map[string]any{MetaMinIncrement: "1"}, nil)
	cases := []struct {
		name   string
		adj    func() Adjustment
		prev   int64
		policy InventoryPolicy
		want   int64
		err    error
	}{
		{"huge deposit", deltaOf(t, "9223372036854775807"), 8, policy, 0, ErrQuantityOutOfRange},
		{"huge target", targetOf(t, "4611686018427387904"), 8, policy, 0, ErrQuantityOutOfRange},
		{"huge withdrawal", deltaOf(t, "-9223372036854775807"), 8, policy, 0, ErrQuantityOutOfRange},
		{"deposit reaching the limit", deltaOf(t, "9223372036854775799"), 8, whole, math.MaxInt64, nil},
		{"deposit past the limit", deltaOf(t, "9223372036854775800"), 8, whole, 0, ErrQuantityOutOfRange},
		{"withdrawal past zero", deltaOf(t, "-9223372036854775807"), 8, whole, 0, ErrNegativeStock},
		{"target at the limit", targetOf(t, "9223372036854775807"), 8, whole, math.MaxInt64, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			next, err := tc.adj().NextUnits(tc.prev, tc.policy)
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, next)
		})
	}
}

func deltaOf(t *testing.T, raw string) func() Adjustment {
	d := dec(t, raw)
	return func() Adjustment { return Adjustment{Delta: &d} }
}

func targetOf(t *testing.T, raw string) func() Adjustment {
	d := dec(t, raw)
	return func() Adjustment { return Adjustment{ToQuantity: &d} }
}

func TestAdjustment_AbsoluteTargetRoundsNearest(t *testing.T) {
	target := dec(t, "3.3")
	next, err := Adjustment{ToQuantity: &target}.NextUnits(8, quarterYardPolicy(t))
	require.NoError(t, err)
	assert.Equal(t, int64(13), next)
}

func TestAdjustment_SequencesNeverGoNegative(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	policy := quarterYardPolicy(t)
	for run := 0; run < 50; run++ {
		level := InventoryLevel{InventoryItemID: "iitem_1", LocationID: "sloc_1", Stocked: int64(rng.Intn(40))}
		for step := 0; step < 100; step++ {
			qty := decimal.NewFromFloat(float64(rng.Intn(2000)-1000) / 100)
			adj := Adjustment{Delta: &qty}
			if rng.Intn(4) == 0 {
				adj = Adjustment{ToQuantity: &qty}
			}
			prev := level.Stocked
			next, err := adj.NextUnits(level.Stocked, policy)
			if err != nil {
				require.ErrorIs(t, err, ErrNegativeStock)
				require.Equal(t, prev, level.Stocked)
				continue
			}
			level, err = level.WithStocked(next)
			require.NoError(t, err)
			require.GreaterOrEqual(t, level.Stocked, int64(0))
			require.NoError(t, level.Validate())
		}
	}
}
