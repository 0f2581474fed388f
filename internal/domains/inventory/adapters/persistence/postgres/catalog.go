package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/fabric-inventory/internal/domains/inventory/ports"
)

var _ ports.CatalogLookup = (*Catalog)(nil)

// Catalog reads variant linkage from the product_variants table shared with the commerce catalog.
type Catalog struct {
	db *gorm.DB
}

func NewCatalog(db *gorm.DB) *Catalog {
	return &Catalog{db: db}
}

type productVariantRecord struct {
	ID              string         `gorm:"primaryKey;column:id;size:64"`
	InventoryItemID string         `gorm:"column:inventory_item_id;size:64;uniqueIndex"`
	SKU             string         `gorm:"column:sku;index"`
	Title           string         `gorm:"column:title"`
	ProductTitle    string         `gorm:"column:product_title"`
	Metadata        map[string]any `gorm:"column:metadata;type:jsonb;serializer:json"`
	CreatedAt       time.Time      `gorm:"column:created_at"`
	UpdatedAt       time.Time      `gorm:"column:updated_at"`
}

func (productVariantRecord) TableName() string { return "product_variants" }

func (c *Catalog) Resolve(ctx context.Context, inventoryItemID string) (*ports.CatalogEntry, error) {
	if err := c.ensureDB(); err != nil {
		return nil, err
	}
	var rec productVariantRecord
	if err := c.db.WithContext(ctx).Where("inventory_item_id = ?", inventoryItemID).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	entry := rec.toEntry()
	return &entry, nil
}

func (c *Catalog) ResolveMany(ctx context.Context, inventoryItemIDs []string) (map[string]ports.CatalogEntry, error) {
	if err := c.ensureDB(); err != nil {
		return nil, err
	}
	result := make(map[string]ports.CatalogEntry, len(inventoryItemIDs))
	if len(inventoryItemIDs) == 0 {
		return result, nil
	}
	var records []productVariantRecord
	if err := c.db.WithContext(ctx).Where("inventory_item_id IN ?", inventoryItemIDs).Find(&records).Error; err != nil {
		return nil, err
	}
	for _, rec := range records {
		result[rec.InventoryItemID] = rec.toEntry()
	}
	return result, nil
}

// Link upserts a variant row. Used by seeding and tests; the catalog owns these rows in production.
func (c *Catalog) Link(ctx context.Context, entry ports.CatalogEntry) error {
	if err := c.ensureDB(); err != nil {
		return err
	}
	rec := productVariantRecord{
		ID:              entry.VariantID,
		InventoryItemID: entry.InventoryItemID,
		SKU:             entry.SKU,
		Title:           entry.Title,
		ProductTitle:    entry.ProductTitle,
		Metadata:        entry.Metadata,
	}
	return c.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"inventory_item_id", "sku", "title", "product_title", "metadata", "updated_at"}),
	}).Create(&rec).Error
}

func (c *Catalog) ensureDB() error {
	if c == nil || c.db == nil {
		return errors.New("postgres catalog not configured")
	}
	return nil
}

func (r productVariantRecord) toEntry() ports.CatalogEntry {
	return ports.CatalogEntry{
		InventoryItemID: r.InventoryItemID,
		VariantID:       r.ID,
		SKU:             r.SKU,
		Title:           r.Title,
		ProductTitle:    r.ProductTitle,
		Metadata:        r.Metadata,
	}
}
