package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	invmemory "github.com/Apurer/fabric-inventory/internal/domains/inventory/adapters/memory"
	"github.com/Apurer/fabric-inventory/internal/domains/inventory/domain"
	"github.com/Apurer/fabric-inventory/internal/domains/inventory/ports"
)

func sampleRecord() domain.AdjustmentRecord {
	delta := decimal.RequireFromString("0.5")
	return domain.AdjustmentRecord{
		ID:              "adj_1",
		InventoryItemID: "iitem_1",
		LocationID:      "sloc_1",
		Delta:           &delta,
		Reason:          "restock",
		Reference:       "po_42",
		PrevQuantity:    decimal.RequireFromString("2"),
		NewQuantity:     decimal.RequireFromString("2.5"),
		PrevUnits:       8,
		NewUnits:        10,
		MinIncrement:    decimal.RequireFromString("0.25"),
		ActorID:         "user_admin",
		CreatedAt:       time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

type brokenSink struct {
	err   error
	calls int
}

func (b *brokenSink) Append(context.Context, domain.AdjustmentRecord) error {
	b.calls++
	return b.err
}

func TestJournal_WritesStructuredEntry(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	journal := NewJournalWithLogger(zap.New(core))

	require.NoError(t, journal.Append(context.Background(), sampleRecord()))

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "adj_1", fields["adjustment_id"])
	assert.Equal(t, "0.5", fields["delta"])
	assert.Equal(t, "2.5", fields["new_quantity"])
	assert.Equal(t, "po_42", fields["reference"])
	assert.NotContains(t, fields, "to_quantity")
}

func TestFallback(t *testing.T) {
	record := sampleRecord()

	t.Run("primary ok", func(t *testing.T) {
		primary := invmemory.NewAuditLog()
		journal := invmemory.NewAuditLog()
		require.NoError(t, WithFallback(primary, journal).Append(context.Background(), record))
		assert.Equal(t, 1, primary.Len())
		assert.Zero(t, journal.Len())
	})

	t.Run("primary down", func(t *testing.T) {
		journal := invmemory.NewAuditLog()
		err := WithFallback(&brokenSink{err: errors.New("connection refused")}, journal).Append(context.Background(), record)
		require.ErrorIs(t, err, ports.ErrAuditDeferred)
		assert.Contains(t, err.Error(), "connection refused")
		assert.Equal(t, 1, journal.Len())
	})

	t.Run("both down", func(t *testing.T) {
		primaryErr := errors.New("connection refused")
		fallbackErr := errors.New("disk full")
		err := WithFallback(&brokenSink{err: primaryErr}, &brokenSink{err: fallbackErr}).Append(context.Background(), record)
		require.ErrorIs(t, err, primaryErr)
		require.ErrorIs(t, err, fallbackErr)
		assert.NotErrorIs(t, err, ports.ErrAuditDeferred)
	})
}

func TestMirror(t *testing.T) {
	record := sampleRecord()
	primary := invmemory.NewAuditLog()
	mirrorOK := invmemory.NewAuditLog()
	mirrorDown := &brokenSink{err: errors.New("broker closed")}

	var reported []error
	mirror := NewMirror(primary, func(_ context.Context, _ domain.AdjustmentRecord, err error) {
		reported = append(reported, err)
	}, mirrorDown, nil, mirrorOK)

	require.NoError(t, mirror.Append(context.Background(), record))
	assert.Equal(t, 1, primary.Len())
	assert.Equal(t, 1, mirrorOK.Len())
	require.Len(t, reported, 1)
	assert.EqualError(t, reported[0], "broker closed")

	failing := &brokenSink{err: errors.New("down")}
	mirrorOnly := invmemory.NewAuditLog()
	err := NewMirror(failing, nil, mirrorOnly).Append(context.Background(), record)
	require.Error(t, err)
	assert.Zero(t, mirrorOnly.Len())

	deferred := &brokenSink{err: ports.ErrAuditDeferred}
	err = NewMirror(deferred, nil, mirrorOnly).Append(context.Background(), record)
	require.ErrorIs(t, err, ports.ErrAuditDeferred)
	assert.Equal(t, 1, mirrorOnly.Len())
}
