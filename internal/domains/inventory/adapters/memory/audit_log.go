package memory

import (
	"context"
	"sync"

	"github.com/Apurer/fabric-inventory/internal/domains/inventory/domain"
	"github.com/Apurer/fabric-inventory/internal/domains/inventory/ports"
)

var _ ports.AuditStore = (*AuditLog)(nil)

// AuditLog keeps adjustment records in append order.
type AuditLog struct {
	mu      sync.RWMutex
	records []domain.AdjustmentRecord
}

func NewAuditLog() *AuditLog {
	return &AuditLog{}
}

func (a *AuditLog) Append(_ context.Context, record domain.AdjustmentRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, existing := range a.records {
		if existing.ID != "" && existing.ID == record.ID {
			return nil
		}
	}
	a.records = append(a.records, record)
	return nil
}

// List returns matching records newest first.
func (a *AuditLog) List(_ context.Context, query ports.AuditQuery) ([]domain.AdjustmentRecord, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	result := make([]domain.AdjustmentRecord, 0)
	for i := len(a.records) - 1; i >= 0; i-- {
		rec := a.records[i]
		if query.InventoryItemID != "" && rec.InventoryItemID != query.InventoryItemID {
			continue
		}
		if query.LocationID != "" && rec.LocationID != query.LocationID {
			continue
		}
		result = append(result, rec)
		if query.Limit > 0 && len(result) == query.Limit {
			break
		}
	}
	return result, nil
}

// Len reports how many records were appended.
func (a *AuditLog) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.records)
}
