package catalog

import (
	"context"
	"errors"

	catalogclient "github.com/Apurer/fabric-inventory/internal/clients/http/catalog"
	"github.com/Apurer/fabric-inventory/internal/domains/inventory/ports"
)

// Lookup implements the catalog port against the commerce admin API.
type Lookup struct {
	client *catalogclient.Client
}

// NewLookup wires a catalog HTTP client into the lookup port.
func NewLookup(client *catalogclient.Client) *Lookup {
	return &Lookup{client: client}
}

func (l *Lookup) Resolve(ctx context.Context, inventoryItemID string) (*ports.CatalogEntry, error) {
	if l == nil || l.client == nil {
		return nil, errors.New("catalog lookup not configured")
	}
	variant, err := l.client.VariantByInventoryItem(ctx, inventoryItemID)
	if err != nil || variant == nil {
		return nil, err
	}
	entry := toEntry(*variant)
	if entry.InventoryItemID == "" {
		entry.InventoryItemID = inventoryItemID
	}
	return &entry, nil
}

func (l *Lookup) ResolveMany(ctx context.Context, inventoryItemIDs []string) (map[string]ports.CatalogEntry, error) {
	if l == nil || l.client == nil {
		return nil, errors.New("catalog lookup not configured")
	}
	variants, err := l.client.VariantsByInventoryItems(ctx, inventoryItemIDs)
	if err != nil {
		return nil, err
	}
	entries := make(map[string]ports.CatalogEntry, len(variants))
	for id, v := range variants {
		entries[id] = toEntry(v)
	}
	return entries, nil
}

func toEntry(v catalogclient.Variant) ports.CatalogEntry {
	return ports.CatalogEntry{
		InventoryItemID: v.InventoryItemID,
		VariantID:       v.ID,
		SKU:             v.SKU,
		Title:           v.Title,
		ProductTitle:    v.ProductTitle,
		Metadata:        v.Metadata,
	}
}

var _ ports.CatalogLookup = (*Lookup)(nil)
