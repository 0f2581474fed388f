package memory

import (
	"context"
	"sync"

	"github.com/Apurer/fabric-inventory/internal/domains/inventory/ports"
)

var _ ports.CatalogLookup = (*Catalog)(nil)

// Catalog is an in-memory catalog lookup keyed by inventory item id.
type Catalog struct {
	mu      sync.RWMutex
	entries map[string]ports.CatalogEntry
}

func NewCatalog() *Catalog {
	return &Catalog{entries: map[string]ports.CatalogEntry{}}
}

// Link records the variant an inventory item belongs to.
func (c *Catalog) Link(entry ports.CatalogEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry.Metadata = cloneMetadata(entry.Metadata)
	c.entries[entry.InventoryItemID] = entry
}

func (c *Catalog) Resolve(_ context.Context, inventoryItemID string) (*ports.CatalogEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[inventoryItemID]
	if !ok {
		return nil, nil
	}
	entry.Metadata = cloneMetadata(entry.Metadata)
	return &entry, nil
}

func (c *Catalog) ResolveMany(_ context.Context, inventoryItemIDs []string) (map[string]ports.CatalogEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make(map[string]ports.CatalogEntry, len(inventoryItemIDs))
	for _, id := range inventoryItemIDs {
		if entry, ok := c.entries[id]; ok {
			entry.Metadata = cloneMetadata(entry.Metadata)
			result[id] = entry
		}
	}
	return result, nil
}
