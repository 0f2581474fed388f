package migrations

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Run applies the inventory schema. The catalog and fulfillment tables are owned by other
// services in production; creating them here keeps local and test databases self-contained.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&inventoryItemRecord{},
		&stockLocationRecord{},
		&inventoryLevelRecord{},
		&productVariantRecord{},
		&adjustmentRecord{},
		&credentialRecord{},
	)
}

// Inventory item schema mirrors the inventory ledger adapter.
type inventoryItemRecord struct {
	ID        string         `gorm:"primaryKey;column:id;size:64"`
	SKU       string         `gorm:"column:sku"`
	Metadata  map[string]any `gorm:"column:metadata;type:jsonb;serializer:json"`
	CreatedAt time.Time      `gorm:"column:created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at"`
}

func (inventoryItemRecord) TableName() string { return "inventory_items" }

type stockLocationRecord struct {
	ID        string    `gorm:"primaryKey;column:id;size:64"`
	Name      string    `gorm:"column:name"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (stockLocationRecord) TableName() string { return "stock_locations" }

// Level schema; quantities are integer base units.
type inventoryLevelRecord struct {
	InventoryItemID string    `gorm:"primaryKey;column:inventory_item_id;size:64"`
	LocationID      string    `gorm:"primaryKey;column:location_id;size:64;index"`
	Stocked         int64     `gorm:"column:stocked_quantity;not null;default:0;check:chk_inventory_levels_stocked,stocked_quantity >= 0"`
	Reserved        int64     `gorm:"column:reserved_quantity;not null;default:0"`
	Incoming        int64     `gorm:"column:incoming_quantity;not null;default:0"`
	Version         int64     `gorm:"column:version;not null;default:0"`
	CreatedAt       time.Time `gorm:"column:created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at;index"`
}

func (inventoryLevelRecord) TableName() string { return "inventory_levels" }

// Variant schema mirrors the catalog adapter.
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

// Adjustment schema mirrors the audit log adapter.
type adjustmentRecord struct {
	ID              string              `gorm:"primaryKey;column:id;size:64"`
	InventoryItemID string              `gorm:"column:inventory_item_id;size:64;index:idx_adjustments_row"`
	LocationID      string              `gorm:"column:location_id;size:64;index:idx_adjustments_row"`
	Delta           decimal.NullDecimal `gorm:"column:delta;type:numeric"`
	ToQuantity      decimal.NullDecimal `gorm:"column:to_quantity;type:numeric"`
	Reason          string              `gorm:"column:reason"`
	Note            string              `gorm:"column:note"`
	Reference       string              `gorm:"column:reference;index"`
	PrevQuantity    decimal.Decimal     `gorm:"column:prev_quantity;type:numeric"`
	NewQuantity     decimal.Decimal     `gorm:"column:new_quantity;type:numeric"`
	PrevUnits       int64               `gorm:"column:prev_units"`
	NewUnits        int64               `gorm:"column:new_units"`
	MinIncrement    decimal.Decimal     `gorm:"column:min_increment;type:numeric"`
	ActorID         string              `gorm:"column:actor_id;index"`
	CreatedAt       time.Time           `gorm:"column:created_at;index"`
}

func (adjustmentRecord) TableName() string { return "inventory_adjustments" }

// Credential schema mirrors the access credential store.
type credentialRecord struct {
	TokenHash string         `gorm:"primaryKey;column:token_hash;size:64"`
	ActorID   string         `gorm:"column:actor_id;index"`
	ActorType string         `gorm:"column:actor_type;type:varchar(32)"`
	Scopes    pq.StringArray `gorm:"column:scopes;type:text[]"`
	ExpiresAt *time.Time     `gorm:"column:expires_at;index"`
	CreatedAt time.Time      `gorm:"column:created_at;index"`
	UpdatedAt time.Time      `gorm:"column:updated_at"`
}

func (credentialRecord) TableName() string { return "api_credentials" }
