package inventory

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/Apurer/fabric-inventory/internal/domains/inventory/domain"
	invports "github.com/Apurer/fabric-inventory/internal/domains/inventory/ports"
)

const (
	// AppendAdjustmentRecordActivityName writes one record to the audit store.
	AppendAdjustmentRecordActivityName = "inventory.activities.AppendAdjustmentRecord"
	// PublishAdjustmentEventActivityName mirrors one record to the event bus.
	PublishAdjustmentEventActivityName = "inventory.activities.PublishAdjustmentEvent"

	// InvalidRecordErrorType marks records that can never be stored; retrying them is pointless.
	InvalidRecordErrorType = "InvalidAdjustmentRecord"
)

// Activities groups the audit delivery activities.
type Activities struct {
	audit  invports.AuditLog
	events invports.AuditLog
}

// NewActivities wires the audit store and, optionally, an event publisher.
func NewActivities(audit invports.AuditLog, events invports.AuditLog) *Activities {
	return &Activities{audit: audit, events: events}
}

// AppendAdjustmentRecord stores the record. Stores are idempotent on the record id, so
// retried attempts do not duplicate rows.
func (a *Activities) AppendAdjustmentRecord(ctx context.Context, record domain.AdjustmentRecord) error {
	logger := activity.GetLogger(ctx)
	if a == nil || a.audit == nil {
		logger.Error("audit append activity not initialized", "adjustmentId", record.ID)
		return errors.New("audit append activity not initialized")
	}
	if err := record.Validate(); err != nil {
		logger.Error("AppendAdjustmentRecord rejected record", "adjustmentId", record.ID, "error", err)
		return temporal.NewNonRetryableApplicationError(err.Error(), InvalidRecordErrorType, err)
	}
	logger.Info("AppendAdjustmentRecord activity started", "adjustmentId", record.ID)
	if err := a.audit.Append(ctx, record); err != nil {
		logger.Error("AppendAdjustmentRecord activity failed", "adjustmentId", record.ID, "error", err)
		return err
	}
	logger.Info("AppendAdjustmentRecord activity completed", "adjustmentId", record.ID)
	return nil
}

// PublishAdjustmentEvent mirrors the record when a publisher is configured.
func (a *Activities) PublishAdjustmentEvent(ctx context.Context, record domain.AdjustmentRecord) error {
	logger := activity.GetLogger(ctx)
	if a == nil || a.events == nil {
		logger.Info("event publisher not configured; skipping", "adjustmentId", record.ID)
		return nil
	}
	if err := a.events.Append(ctx, record); err != nil {
		logger.Error("PublishAdjustmentEvent activity failed", "adjustmentId", record.ID, "error", err)
		return err
	}
	logger.Info("PublishAdjustmentEvent activity completed", "adjustmentId", record.ID)
	return nil
}
