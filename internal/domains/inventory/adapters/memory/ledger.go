package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Apurer/fabric-inventory/internal/domains/inventory/domain"
	"github.com/Apurer/fabric-inventory/internal/domains/inventory/ports"
	"github.com/Apurer/fabric-inventory/internal/shared/projection"
)

var _ ports.Ledger = (*Ledger)(nil)

// Ledger is an in-memory inventory ledger. A single mutex is held across read-compute-write,
// which serializes concurrent updates.
type Ledger struct {
	mu        sync.RWMutex
	levels    map[ports.LevelKey]*levelRow
	items     map[string]map[string]any
	locations map[string]string
	now       func() time.Time
}

type levelRow struct {
	level    domain.InventoryLevel
	metadata projection.Metadata
}

func NewLedger() *Ledger {
	return &Ledger{
		levels:    map[ports.LevelKey]*levelRow{},
		items:     map[string]map[string]any{},
		locations: map[string]string{},
		now:       time.Now,
	}
}

// WithClock overrides the time source for deterministic testing.
func (l *Ledger) WithClock(now func() time.Time) {
	if now != nil {
		l.now = now
	}
}

// PutItem registers or replaces the policy metadata of an inventory item.
func (l *Ledger) PutItem(inventoryItemID string, metadata map[string]any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items[inventoryItemID] = cloneMetadata(metadata)
}

// PutLocation registers a stock location name.
func (l *Ledger) PutLocation(locationID, name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.locations[locationID] = name
}

// PutLevel creates or replaces a ledger row, as the fulfillment collaborator does when a
// variant is first linked to a location.
func (l *Ledger) PutLevel(level domain.InventoryLevel) error {
	if err := level.Validate(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	key := ports.LevelKey{InventoryItemID: level.InventoryItemID, LocationID: level.LocationID}
	now := l.now()
	created := now
	if existing, ok := l.levels[key]; ok {
		created = existing.metadata.CreatedAt
	}
	l.levels[key] = &levelRow{level: level, metadata: projection.Metadata{CreatedAt: created, UpdatedAt: now}}
	return nil
}

func (l *Ledger) Get(_ context.Context, key ports.LevelKey) (*ports.LevelState, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	row, ok := l.levels[key]
	if !ok {
		return nil, ports.ErrLevelNotFound
	}
	state := l.stateLocked(row)
	return &state, nil
}

func (l *Ledger) Update(ctx context.Context, key ports.LevelKey, fn ports.Mutation) (*ports.UpdateResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	row, ok := l.levels[key]
	if !ok {
		return nil, ports.ErrLevelNotFound
	}
	before := l.stateLocked(row)
	next, err := fn(before)
	if err != nil {
		return nil, err
	}
	level, err := row.level.WithStocked(next)
	if err != nil {
		return nil, err
	}
	level.Version++
	row.level = level
	row.metadata.UpdatedAt = l.now()
	return &ports.UpdateResult{Before: before, After: l.stateLocked(row)}, nil
}

func (l *Ledger) List(_ context.Context, filter ports.LevelFilter) ([]ports.LevelState, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	keys := make([]ports.LevelKey, 0, len(l.levels))
	for key := range l.levels {
		if filter.LocationID != "" && key.LocationID != filter.LocationID {
			continue
		}
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].InventoryItemID != keys[j].InventoryItemID {
			return keys[i].InventoryItemID < keys[j].InventoryItemID
		}
		return keys[i].LocationID < keys[j].LocationID
	})
	if filter.Offset > 0 {
		if filter.Offset >= len(keys) {
			keys = nil
		} else {
			keys = keys[filter.Offset:]
		}
	}
	if filter.Limit > 0 && len(keys) > filter.Limit {
		keys = keys[:filter.Limit]
	}
	states := make([]ports.LevelState, 0, len(keys))
	for _, key := range keys {
		states = append(states, l.stateLocked(l.levels[key]))
	}
	return states, nil
}

func (l *Ledger) stateLocked(row *levelRow) ports.LevelState {
	return ports.LevelState{
		Level:        row.level,
		ItemMetadata: cloneMetadata(l.items[row.level.InventoryItemID]),
		LocationName: l.locations[row.level.LocationID],
		Metadata:     row.metadata,
	}
}

func cloneMetadata(meta map[string]any) map[string]any {
	if len(meta) == 0 {
		return nil
	}
	clone := make(map[string]any, len(meta))
	for k, v := range meta {
		clone[k] = v
	}
	return clone
}
