package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/fabric-inventory/internal/domains/inventory/domain"
	"github.com/Apurer/fabric-inventory/internal/domains/inventory/ports"
)

var _ ports.AuditStore = (*AuditLog)(nil)

// AuditLog appends adjustment records to inventory_adjustments. Appends are idempotent on the
// record id so retried deliveries do not duplicate rows.
type AuditLog struct {
	db *gorm.DB
}

func NewAuditLog(db *gorm.DB) *AuditLog {
	return &AuditLog{db: db}
}

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

func (a *AuditLog) Append(ctx context.Context, record domain.AdjustmentRecord) error {
	if err := a.ensureDB(); err != nil {
		return err
	}
	if err := record.Validate(); err != nil {
		return err
	}
	rec := toAdjustmentRecord(record)
	return a.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rec).Error
}

func (a *AuditLog) List(ctx context.Context, query ports.AuditQuery) ([]domain.AdjustmentRecord, error) {
	if err := a.ensureDB(); err != nil {
		return nil, err
	}
	q := a.db.WithContext(ctx).Model(&adjustmentRecord{}).Order("created_at DESC, id DESC")
	if query.InventoryItemID != "" {
		q = q.Where("inventory_item_id = ?", query.InventoryItemID)
	}
	if query.LocationID != "" {
		q = q.Where("location_id = ?", query.LocationID)
	}
	if query.Limit > 0 {
		q = q.Limit(query.Limit)
	}
	var records []adjustmentRecord
	if err := q.Find(&records).Error; err != nil {
		return nil, err
	}
	out := make([]domain.AdjustmentRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.toDomain())
	}
	return out, nil
}

func (a *AuditLog) ensureDB() error {
	if a == nil || a.db == nil {
		return errors.New("postgres audit log not configured")
	}
	return nil
}

func toAdjustmentRecord(r domain.AdjustmentRecord) adjustmentRecord {
	rec := adjustmentRecord{
		ID:              r.ID,
		InventoryItemID: r.InventoryItemID,
		LocationID:      r.LocationID,
		Reason:          r.Reason,
		Note:            r.Note,
		Reference:       r.Reference,
		PrevQuantity:    r.PrevQuantity,
		NewQuantity:     r.NewQuantity,
		PrevUnits:       r.PrevUnits,
		NewUnits:        r.NewUnits,
		MinIncrement:    r.MinIncrement,
		ActorID:         r.ActorID,
		CreatedAt:       r.CreatedAt,
	}
	if r.Delta != nil {
		rec.Delta = decimal.NewNullDecimal(*r.Delta)
	}
	if r.ToQuantity != nil {
		rec.ToQuantity = decimal.NewNullDecimal(*r.ToQuantity)
	}
	return rec
}

func (r adjustmentRecord) toDomain() domain.AdjustmentRecord {
	out := domain.AdjustmentRecord{
		ID:              r.ID,
		InventoryItemID: r.InventoryItemID,
		LocationID:      r.LocationID,
		Reason:          r.Reason,
		Note:            r.Note,
		Reference:       r.Reference,
		PrevQuantity:    r.PrevQuantity,
		NewQuantity:     r.NewQuantity,
		PrevUnits:       r.PrevUnits,
		NewUnits:        r.NewUnits,
		MinIncrement:    r.MinIncrement,
		ActorID:         r.ActorID,
		CreatedAt:       r.CreatedAt,
	}
	if r.Delta.Valid {
		d := r.Delta.Decimal
		out.Delta = &d
	}
	if r.ToQuantity.Valid {
		q := r.ToQuantity.Decimal
		out.ToQuantity = &q
	}
	return out
}
