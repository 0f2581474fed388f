package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	accessapp "github.com/Apurer/fabric-inventory/internal/domains/access/application"
	accessdomain "github.com/Apurer/fabric-inventory/internal/domains/access/domain"
	types "github.com/Apurer/fabric-inventory/internal/domains/inventory/application/types"
	"github.com/Apurer/fabric-inventory/internal/domains/inventory/ports"
)

// Service orchestrates the inventory accounting use cases.
type Service struct {
	ledger      ports.Ledger
	catalog     ports.CatalogLookup
	audit       ports.AuditLog
	auditReader ports.AuditReader
	guard       accessapp.Guard
	now         func() time.Time
	newID       func() string
}

// Option customizes the service.
type Option func(*Service)

// WithAuditReader enables ListAdjustments against a readable audit store.
func WithAuditReader(reader ports.AuditReader) Option {
	return func(s *Service) {
		s.auditReader = reader
	}
}

// WithClock overrides the time source for deterministic testing.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides how audit record ids are minted.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// NewService wires the inventory service with its dependencies. catalog may be nil when no
// catalog linkage is available.
func NewService(ledger ports.Ledger, catalog ports.CatalogLookup, audit ports.AuditLog, opts ...Option) *Service {
	s := &Service{
		ledger:  ledger,
		catalog: catalog,
		audit:   audit,
		guard:   accessapp.NewGuard(),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// ListAdjustments returns the audit trail of one item, optionally narrowed to a location.
func (s *Service) ListAdjustments(ctx context.Context, input types.AdjustmentsInput) ([]types.AdjustmentView, error) {
	if err := s.guard.Authorize(input.Caller, accessdomain.ScopeInventoryRead); err != nil {
		return nil, err
	}
	itemID := strings.TrimSpace(input.InventoryItemID)
	if itemID == "" {
		return nil, fmt.Errorf("%w: inventory_item_id is required", ErrInvalidRequest)
	}
	if s.auditReader == nil {
		return []types.AdjustmentView{}, nil
	}
	records, err := s.auditReader.List(ctx, ports.AuditQuery{
		InventoryItemID: itemID,
		LocationID:      strings.TrimSpace(input.LocationID),
		Limit:           clampLimit(input.Limit),
	})
	if err != nil {
		return nil, mapError(err)
	}
	views := make([]types.AdjustmentView, 0, len(records))
	for _, rec := range records {
		views = append(views, types.AdjustmentView{
			ID:              rec.ID,
			InventoryItemID: rec.InventoryItemID,
			LocationID:      rec.LocationID,
			Delta:           rec.Delta,
			ToQuantity:      rec.ToQuantity,
			Reason:          rec.Reason,
			Note:            rec.Note,
			Reference:       rec.Reference,
			PrevQuantity:    rec.PrevQuantity,
			NewQuantity:     rec.NewQuantity,
			ActorID:         rec.ActorID,
			CreatedAt:       rec.CreatedAt,
		})
	}
	return views, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return types.DefaultHealthLimit
	}
	if limit > types.MaxHealthLimit {
		return types.MaxHealthLimit
	}
	return limit
}

var _ ports.Service = (*Service)(nil)
