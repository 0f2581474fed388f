package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/fabric-inventory/internal/domains/inventory/domain"
	invactivities "github.com/Apurer/fabric-inventory/internal/platform/temporal/activities/inventory"
)

// RunAuditDeliverySequence appends the record to the audit store, then mirrors it as an event.
// The append retries long enough to ride out a database restart; the event mirror is best-effort.
func RunAuditDeliverySequence(ctx workflow.Context, record domain.AdjustmentRecord) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("audit delivery sequence started", "adjustmentId", record.ID)
	appendOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    20,
			NonRetryableErrorTypes: []string{
				invactivities.InvalidRecordErrorType,
			},
		},
	}
	publishOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 15 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    5,
		},
	}

	if err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, appendOptions), invactivities.AppendAdjustmentRecordActivityName, record).Get(ctx, nil); err != nil {
		logger.Error("audit delivery sequence append failed", "adjustmentId", record.ID, "error", err)
		return err
	}
	logger.Info("audit delivery sequence recorded", "adjustmentId", record.ID)

	if err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, publishOptions), invactivities.PublishAdjustmentEventActivityName, record).Get(ctx, nil); err != nil {
		// the record is durable at this point; a lost event only delays downstream refreshes
		logger.Warn("audit delivery sequence publish failed", "adjustmentId", record.ID, "error", err)
	}
	return nil
}
