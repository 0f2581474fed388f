package inventory

import (
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/fabric-inventory/internal/domains/inventory/domain"
	"github.com/Apurer/fabric-inventory/internal/durable/temporal/sequences"
)

const (
	// AuditDeliveryWorkflowName is the public identifier for registering the workflow.
	AuditDeliveryWorkflowName = "inventory.workflows.AuditDelivery"
	// AuditDeliveryTaskQueue is the queue consumed by the worker delivering audit records.
	AuditDeliveryTaskQueue = "INVENTORY_AUDIT"
)

// AuditDeliveryWorkflowInput carries one committed adjustment.
type AuditDeliveryWorkflowInput struct {
	Record  domain.AdjustmentRecord
	TraceID string
}

// AuditDeliveryWorkflow durably delivers an adjustment record to the audit store.
func AuditDeliveryWorkflow(ctx workflow.Context, input AuditDeliveryWorkflowInput) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("AuditDeliveryWorkflow started", withTraceID(input.TraceID, "adjustmentId", input.Record.ID)...)
	if err := sequences.RunAuditDeliverySequence(ctx, input.Record); err != nil {
		logger.Error("AuditDeliveryWorkflow failed", withTraceID(input.TraceID, "adjustmentId", input.Record.ID, "error", err)...)
		return err
	}
	logger.Info("AuditDeliveryWorkflow completed", withTraceID(input.TraceID, "adjustmentId", input.Record.ID)...)
	return nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
