package ports

import (
	"context"
	"errors"

	"github.com/Apurer/fabric-inventory/internal/domains/inventory/domain"
)

// ErrAuditDeferred reports that the primary audit sink failed but the record was journaled by a
// fallback sink.
var ErrAuditDeferred = errors.New("audit record deferred to journal")

// AuditLog appends adjustment records. Implementations must be safe for concurrent use.
type AuditLog interface {
	Append(ctx context.Context, record domain.AdjustmentRecord) error
}

// AuditQuery filters the audit trail.
type AuditQuery struct {
	InventoryItemID string
	LocationID      string
	Limit           int
}

// AuditReader exposes the persisted audit trail, newest first.
type AuditReader interface {
	List(ctx context.Context, query AuditQuery) ([]domain.AdjustmentRecord, error)
}

// AuditStore is a sink that can also be read back.
type AuditStore interface {
	AuditLog
	AuditReader
}
