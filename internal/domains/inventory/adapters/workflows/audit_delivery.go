package workflows

import (
	"context"
	"errors"
	"fmt"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/Apurer/fabric-inventory/internal/domains/inventory/domain"
	"github.com/Apurer/fabric-inventory/internal/domains/inventory/ports"
	invworkflows "github.com/Apurer/fabric-inventory/internal/durable/temporal/workflows/inventory"
)

var _ ports.AuditLog = (*TemporalAuditLog)(nil)

// TemporalAuditLog hands adjustment records to a durable Temporal workflow. Append returns once
// the workflow is started; the worker completes delivery with retries.
type TemporalAuditLog struct {
	client    client.Client
	taskQueue string
}

// NewTemporalAuditLog wires a Temporal client into the audit port.
func NewTemporalAuditLog(c client.Client) *TemporalAuditLog {
	return &TemporalAuditLog{client: c, taskQueue: invworkflows.AuditDeliveryTaskQueue}
}

func (a *TemporalAuditLog) Append(ctx context.Context, record domain.AdjustmentRecord) error {
	if a == nil || a.client == nil {
		return errors.New("temporal audit delivery not configured")
	}
	if err := record.Validate(); err != nil {
		return err
	}
	options := client.StartWorkflowOptions{
		ID:        auditWorkflowID(record),
		TaskQueue: a.taskQueue,
	}
	_, err := a.client.ExecuteWorkflow(ctx, options, invworkflows.AuditDeliveryWorkflowName, invworkflows.AuditDeliveryWorkflowInput{
		Record:  record,
		TraceID: workflowTraceID(ctx),
	})
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &alreadyStarted) {
			return nil
		}
		return fmt.Errorf("start audit delivery: %w", err)
	}
	return nil
}

func auditWorkflowID(record domain.AdjustmentRecord) string {
	return fmt.Sprintf("inventory-audit-%s", record.ID)
}

func workflowTraceID(ctx context.Context) string {
	spanCtx := oteltrace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}
