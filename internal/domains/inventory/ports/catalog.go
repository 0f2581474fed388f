package ports

import "context"

// CatalogEntry is the variant linkage the commerce catalog exposes for an inventory item.
type CatalogEntry struct {
	InventoryItemID string
	VariantID       string
	SKU             string
	Title           string
	ProductTitle    string
	// Metadata is the variant-level metadata bag; policy keys may live here.
	Metadata map[string]any
}

// CatalogLookup resolves catalog details for inventory items. Unlinked items are absent from
// results rather than errors.
type CatalogLookup interface {
	Resolve(ctx context.Context, inventoryItemID string) (*CatalogEntry, error)
	ResolveMany(ctx context.Context, inventoryItemIDs []string) (map[string]CatalogEntry, error)
}
