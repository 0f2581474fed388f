package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	accessdomain "github.com/Apurer/fabric-inventory/internal/domains/access/domain"
	types "github.com/Apurer/fabric-inventory/internal/domains/inventory/application/types"
	"github.com/Apurer/fabric-inventory/internal/domains/inventory/domain"
	"github.com/Apurer/fabric-inventory/internal/domains/inventory/ports"
)

// Adjust applies one authorized mutation to a ledger row and appends an audit record.
// The audit append is best-effort: its outcome is reported on the result and never rolls back
// the committed mutation.
func (s *Service) Adjust(ctx context.Context, input types.AdjustInput) (*types.AdjustResult, error) {
	if err := s.guard.Authorize(input.Caller, accessdomain.ScopeInventoryWrite); err != nil {
		return nil, err
	}
	adjustment, key, err := validateAdjustInput(input)
	if err != nil {
		return nil, mapError(err)
	}

	current, err := s.ledger.Get(ctx, key)
	if err != nil {
		return nil, mapError(err)
	}
	variantMeta, err := s.variantPolicyMetadata(ctx, *current)
	if err != nil {
		return nil, err
	}

	var policy domain.InventoryPolicy
	updated, err := s.ledger.Update(ctx, key, func(locked ports.LevelState) (int64, error) {
		policy = domain.ResolvePolicy(locked.ItemMetadata, variantMeta)
		return adjustment.NextUnits(locked.Level.Stocked, policy)
	})
	if err != nil {
		return nil, mapError(err)
	}

	prevQty, err := policy.FromUnits(updated.Before.Level.Stocked)
	if err != nil {
		return nil, mapError(err)
	}
	newQty, err := policy.FromUnits(updated.After.Level.Stocked)
	if err != nil {
		return nil, mapError(err)
	}

	record := domain.AdjustmentRecord{
		ID:              s.newID(),
		InventoryItemID: key.InventoryItemID,
		LocationID:      key.LocationID,
		Delta:           adjustment.Delta,
		ToQuantity:      adjustment.ToQuantity,
		Reason:          strings.TrimSpace(input.Reason),
		Note:            input.Note,
		Reference:       input.Reference,
		PrevQuantity:    prevQty,
		NewQuantity:     newQty,
		PrevUnits:       updated.Before.Level.Stocked,
		NewUnits:        updated.After.Level.Stocked,
		MinIncrement:    policy.MinIncrement,
		ActorID:         input.Caller.ID,
		CreatedAt:       s.now().UTC(),
	}
	outcome, auditErr := s.appendAudit(ctx, record)

	return &types.AdjustResult{
		InventoryItemID: key.InventoryItemID,
		LocationID:      key.LocationID,
		PrevQuantity:    prevQty,
		NewQuantity:     newQty,
		PrevUnits:       record.PrevUnits,
		NewUnits:        record.NewUnits,
		Reason:          record.Reason,
		Note:            record.Note,
		Reference:       record.Reference,
		AuditID:         record.ID,
		Audit:           outcome,
		AuditErr:        auditErr,
		PolicyWarnings:  policy.Warnings,
	}, nil
}

func (s *Service) appendAudit(ctx context.Context, record domain.AdjustmentRecord) (types.AuditOutcome, error) {
	if s.audit == nil {
		return types.AuditFailed, errors.New("audit log not configured")
	}
	err := s.audit.Append(ctx, record)
	switch {
	case err == nil:
		return types.AuditRecorded, nil
	case errors.Is(err, ports.ErrAuditDeferred):
		return types.AuditJournaled, err
	default:
		return types.AuditFailed, err
	}
}

// variantPolicyMetadata consults the catalog only when the item itself carries no usable
// min_increment, so adjustments of fully described items do not depend on catalog availability.
func (s *Service) variantPolicyMetadata(ctx context.Context, state ports.LevelState) (map[string]any, error) {
	if s.catalog == nil {
		return nil, nil
	}
	if domain.ResolvePolicy(state.ItemMetadata, nil).MinIncrementSource == domain.SourceItem {
		return nil, nil
	}
	entry, err := s.catalog.Resolve(ctx, state.Level.InventoryItemID)
	if err != nil {
		return nil, fmt.Errorf("resolve catalog policy for %s: %w", state.Level.InventoryItemID, err)
	}
	if entry == nil {
		return nil, nil
	}
	return entry.Metadata, nil
}

func validateAdjustInput(input types.AdjustInput) (domain.Adjustment, ports.LevelKey, error) {
	key := ports.LevelKey{
		InventoryItemID: strings.TrimSpace(input.InventoryItemID),
		LocationID:      strings.TrimSpace(input.LocationID),
	}
	adjustment := domain.Adjustment{Delta: input.Delta, ToQuantity: input.ToQuantity}
	if key.InventoryItemID == "" || key.LocationID == "" {
		return adjustment, key, domain.ErrInvalidLevelKey
	}
	if strings.TrimSpace(input.Reason) == "" {
		return adjustment, key, domain.ErrMissingReason
	}
	if err := adjustment.Validate(); err != nil {
		return adjustment, key, err
	}
	return adjustment, key, nil
}
