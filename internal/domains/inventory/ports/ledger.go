package ports

import (
	"context"
	"errors"

	"github.com/Apurer/fabric-inventory/internal/domains/inventory/domain"
	"github.com/Apurer/fabric-inventory/internal/shared/projection"
)

var ErrLevelNotFound = errors.New("inventory level not found")

// LevelKey identifies a ledger row.
type LevelKey struct {
	InventoryItemID string
	LocationID      string
}

// LevelState is a ledger row joined with the item's policy metadata and location details.
type LevelState struct {
	Level        domain.InventoryLevel
	ItemMetadata map[string]any
	LocationName string
	Metadata     projection.Metadata
}

// Mutation computes the new stocked base units from the locked current state. Returning an
// error aborts the update without writing.
type Mutation func(current LevelState) (int64, error)

// UpdateResult carries the row before and after a committed mutation.
type UpdateResult struct {
	Before LevelState
	After  LevelState
}

// LevelFilter narrows and pages ledger listings.
type LevelFilter struct {
	LocationID string
	Limit      int
	Offset     int
}

// Ledger is the gateway to persisted inventory levels.
type Ledger interface {
	Get(ctx context.Context, key LevelKey) (*LevelState, error)
	// Update runs read-compute-write for one row atomically; concurrent updates of the same
	// row are serialized so no computed result is lost.
	Update(ctx context.Context, key LevelKey, fn Mutation) (*UpdateResult, error)
	List(ctx context.Context, filter LevelFilter) ([]LevelState, error)
}
