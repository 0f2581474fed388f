package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/fabric-inventory/internal/domains/inventory/domain"
	"github.com/Apurer/fabric-inventory/internal/domains/inventory/ports"
	"github.com/Apurer/fabric-inventory/internal/shared/projection"
)

var _ ports.Ledger = (*Ledger)(nil)

// Ledger persists inventory levels in PostgreSQL using GORM. Rows are owned by the fulfillment
// collaborator; this adapter only reads them and rewrites the stocked column.
type Ledger struct {
	db  *gorm.DB
	now func() time.Time
}

// NewLedger wires a PostgreSQL-backed ledger. Caller manages DB lifecycle.
func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db, now: time.Now}
}

type inventoryLevelRecord struct {
	InventoryItemID string    `gorm:"primaryKey;column:inventory_item_id;size:64"`
	LocationID      string    `gorm:"primaryKey;column:location_id;size:64;index"`
	Stocked         int64     `gorm:"column:stocked_quantity;not null;default:0"`
	Reserved        int64     `gorm:"column:reserved_quantity;not null;default:0"`
	Incoming        int64     `gorm:"column:incoming_quantity;not null;default:0"`
	Version         int64     `gorm:"column:version;not null;default:0"`
	CreatedAt       time.Time `gorm:"column:created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at;index"`
}

func (inventoryLevelRecord) TableName() string { return "inventory_levels" }

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

// Get loads one ledger row joined with its item metadata and location name.
func (l *Ledger) Get(ctx context.Context, key ports.LevelKey) (*ports.LevelState, error) {
	if err := l.ensureDB(); err != nil {
		return nil, err
	}
	var rec inventoryLevelRecord
	if err := l.db.WithContext(ctx).
		Where("inventory_item_id = ? AND location_id = ?", key.InventoryItemID, key.LocationID).
		First(&rec).Error; err != nil {
		return nil, mapNotFound(err)
	}
	states, err := l.join(l.db.WithContext(ctx), []inventoryLevelRecord{rec})
	if err != nil {
		return nil, err
	}
	return &states[0], nil
}

// Update locks the row with SELECT ... FOR UPDATE, runs the mutation and writes the result in
// the same transaction.
func (l *Ledger) Update(ctx context.Context, key ports.LevelKey, fn ports.Mutation) (*ports.UpdateResult, error) {
	if err := l.ensureDB(); err != nil {
		return nil, err
	}
	var result ports.UpdateResult
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec inventoryLevelRecord
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("inventory_item_id = ? AND location_id = ?", key.InventoryItemID, key.LocationID).
			First(&rec).Error; err != nil {
			return mapNotFound(err)
		}
		states, err := l.join(tx, []inventoryLevelRecord{rec})
		if err != nil {
			return err
		}
		before := states[0]

		next, err := fn(before)
		if err != nil {
			return err
		}
		level, err := before.Level.WithStocked(next)
		if err != nil {
			return err
		}
		now := l.now().UTC()
		if err := tx.Model(&inventoryLevelRecord{}).
			Where("inventory_item_id = ? AND location_id = ?", key.InventoryItemID, key.LocationID).
			Updates(map[string]any{
				"stocked_quantity": level.Stocked,
				"version":          gorm.Expr("version + 1"),
				"updated_at":       now,
			}).Error; err != nil {
			return err
		}

		after := before
		after.Level = level
		after.Level.Version = before.Level.Version + 1
		after.Metadata.UpdatedAt = now
		result = ports.UpdateResult{Before: before, After: after}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// List pages ledger rows in (inventory_item_id, location_id) order.
func (l *Ledger) List(ctx context.Context, filter ports.LevelFilter) ([]ports.LevelState, error) {
	if err := l.ensureDB(); err != nil {
		return nil, err
	}
	query := l.db.WithContext(ctx).Model(&inventoryLevelRecord{}).Order("inventory_item_id, location_id")
	if filter.LocationID != "" {
		query = query.Where("location_id = ?", filter.LocationID)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	var records []inventoryLevelRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return []ports.LevelState{}, nil
	}
	return l.join(l.db.WithContext(ctx), records)
}

// SaveItem upserts an inventory item and its policy metadata.
func (l *Ledger) SaveItem(ctx context.Context, id, sku string, metadata map[string]any) error {
	if err := l.ensureDB(); err != nil {
		return err
	}
	rec := inventoryItemRecord{ID: id, SKU: sku, Metadata: metadata}
	return l.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"sku", "metadata", "updated_at"}),
	}).Create(&rec).Error
}

// SaveLocation upserts a stock location.
func (l *Ledger) SaveLocation(ctx context.Context, id, name string) error {
	if err := l.ensureDB(); err != nil {
		return err
	}
	rec := stockLocationRecord{ID: id, Name: name}
	return l.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "updated_at"}),
	}).Create(&rec).Error
}

// SaveLevel upserts a ledger row, as the fulfillment collaborator does when linking an item to a location.
func (l *Ledger) SaveLevel(ctx context.Context, level domain.InventoryLevel) error {
	if err := l.ensureDB(); err != nil {
		return err
	}
	if err := level.Validate(); err != nil {
		return err
	}
	rec := inventoryLevelRecord{
		InventoryItemID: level.InventoryItemID,
		LocationID:      level.LocationID,
		Stocked:         level.Stocked,
		Reserved:        level.Reserved,
		Incoming:        level.Incoming,
		Version:         level.Version,
	}
	return l.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "inventory_item_id"}, {Name: "location_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"stocked_quantity":  rec.Stocked,
			"reserved_quantity": rec.Reserved,
			"incoming_quantity": rec.Incoming,
			"updated_at":        gorm.Expr("NOW()"),
		}),
	}).Create(&rec).Error
}

// join attaches item metadata and location names to level rows.
func (l *Ledger) join(db *gorm.DB, records []inventoryLevelRecord) ([]ports.LevelState, error) {
	itemIDs := make([]string, 0, len(records))
	locationIDs := make([]string, 0, len(records))
	for _, rec := range records {
		itemIDs = append(itemIDs, rec.InventoryItemID)
		locationIDs = append(locationIDs, rec.LocationID)
	}

	var items []inventoryItemRecord
	if err := db.Where("id IN ?", itemIDs).Find(&items).Error; err != nil {
		return nil, err
	}
	var locations []stockLocationRecord
	if err := db.Where("id IN ?", locationIDs).Find(&locations).Error; err != nil {
		return nil, err
	}
	metaByItem := make(map[string]map[string]any, len(items))
	for _, item := range items {
		metaByItem[item.ID] = item.Metadata
	}
	nameByLocation := make(map[string]string, len(locations))
	for _, loc := range locations {
		nameByLocation[loc.ID] = loc.Name
	}

	states := make([]ports.LevelState, 0, len(records))
	for _, rec := range records {
		states = append(states, ports.LevelState{
			Level:        rec.toDomain(),
			ItemMetadata: metaByItem[rec.InventoryItemID],
			LocationName: nameByLocation[rec.LocationID],
			Metadata:     projection.Metadata{CreatedAt: rec.CreatedAt, UpdatedAt: rec.UpdatedAt},
		})
	}
	return states, nil
}

func (l *Ledger) ensureDB() error {
	if l == nil || l.db == nil {
		return errors.New("postgres inventory ledger not configured")
	}
	return nil
}

func (r inventoryLevelRecord) toDomain() domain.InventoryLevel {
	return domain.InventoryLevel{
		InventoryItemID: r.InventoryItemID,
		LocationID:      r.LocationID,
		Stocked:         r.Stocked,
		Reserved:        r.Reserved,
		Incoming:        r.Incoming,
		Version:         r.Version,
	}
}

func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ports.ErrLevelNotFound
	}
	return err
}
