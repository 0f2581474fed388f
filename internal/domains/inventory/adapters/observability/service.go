package observability

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	invapp "github.com/Apurer/fabric-inventory/internal/domains/inventory/application"
	invtypes "github.com/Apurer/fabric-inventory/internal/domains/inventory/application/types"
	invports "github.com/Apurer/fabric-inventory/internal/domains/inventory/ports"
)

const tracerName = "github.com/Apurer/fabric-inventory/internal/domains/inventory/adapters/observability/service"

// Service decorates the inventory service with tracing, logging, and metrics.
type Service struct {
	inner   invports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wraps the core inventory service.
func New(inner invports.Service, opts ...Option) invports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return s
}

func (s *Service) Adjust(ctx context.Context, input invtypes.AdjustInput) (*invtypes.AdjustResult, error) {
	keyAttrs := []slog.Attr{
		slog.String("inventory_item_id", input.InventoryItemID),
		slog.String("location_id", input.LocationID),
		slog.String("actor_id", input.Caller.ID),
	}
	ctx, span := s.tracer.Start(ctx, "InventoryService.Adjust", trace.WithAttributes(
		attribute.String("inventory.item_id", input.InventoryItemID),
		attribute.String("inventory.location_id", input.LocationID),
		attribute.String("inventory.reason", input.Reason),
		attribute.Bool("inventory.absolute", input.ToQuantity != nil),
	))
	defer span.End()

	s.logInfo(ctx, "adjusting inventory level", keyAttrs...)
	result, err := s.inner.Adjust(ctx, input)
	if err != nil {
		s.metrics.recordAdjustment(ctx, outcomeFor(err))
		return nil, s.handleError(ctx, span, err, "failed to adjust inventory level", keyAttrs...)
	}
	s.metrics.recordAdjustment(ctx, "ok")
	span.SetAttributes(
		attribute.Int64("inventory.prev_units", result.PrevUnits),
		attribute.Int64("inventory.new_units", result.NewUnits),
		attribute.String("inventory.audit", string(result.Audit)),
	)
	for _, warning := range result.PolicyWarnings {
		s.log(ctx, slog.LevelWarn, "inventory policy metadata ignored", append(keyAttrs, slog.String("warning", warning))...)
	}
	if result.Audit != invtypes.AuditRecorded {
		s.metrics.recordAuditIncident(ctx, result.Audit)
		attrs := append(keyAttrs, slog.String("adjustment_id", result.AuditID), slog.String("audit", string(result.Audit)))
		if result.AuditErr != nil {
			attrs = append(attrs, slog.String("error", result.AuditErr.Error()))
		}
		level := slog.LevelError
		if result.Audit == invtypes.AuditJournaled {
			level = slog.LevelWarn
		}
		span.AddEvent("audit.incident")
		s.log(ctx, level, "inventory adjustment committed without audit record", attrs...)
	}
	s.logInfo(ctx, "inventory level adjusted", append(keyAttrs,
		slog.String("prev_quantity", result.PrevQuantity.String()),
		slog.String("new_quantity", result.NewQuantity.String()),
		slog.String("adjustment_id", result.AuditID),
	)...)
	return result, nil
}

func (s *Service) ListHealth(ctx context.Context, input invtypes.HealthInput) (*invtypes.HealthReport, error) {
	ctx, span := s.tracer.Start(ctx, "InventoryService.ListHealth", trace.WithAttributes(
		attribute.String("inventory.location_id", input.LocationID),
		attribute.String("inventory.status", input.Status),
		attribute.Int("inventory.limit", input.Limit),
		attribute.Int("inventory.offset", input.Offset),
	))
	defer span.End()

	report, err := s.inner.ListHealth(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list inventory health", slog.String("location_id", input.LocationID))
	}
	span.SetAttributes(attribute.Int("inventory.count", report.Count), attribute.Bool("inventory.catalog_degraded", report.CatalogDegraded))
	if report.CatalogDegraded {
		s.metrics.recordCatalogDegraded(ctx)
		attrs := []slog.Attr{slog.Int("count", report.Count)}
		if report.CatalogErr != nil {
			attrs = append(attrs, slog.String("error", report.CatalogErr.Error()))
		}
		s.log(ctx, slog.LevelWarn, "catalog lookup failed, health report served without catalog fields", attrs...)
	}
	s.logInfo(ctx, "inventory health listed", slog.Int("count", report.Count))
	return report, nil
}

func (s *Service) ListAdjustments(ctx context.Context, input invtypes.AdjustmentsInput) ([]invtypes.AdjustmentView, error) {
	ctx, span := s.tracer.Start(ctx, "InventoryService.ListAdjustments", trace.WithAttributes(
		attribute.String("inventory.item_id", input.InventoryItemID),
		attribute.String("inventory.location_id", input.LocationID),
	))
	defer span.End()

	views, err := s.inner.ListAdjustments(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list inventory adjustments", slog.String("inventory_item_id", input.InventoryItemID))
	}
	span.SetAttributes(attribute.Int("inventory.count", len(views)))
	return views, nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	s.log(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) log(ctx context.Context, level slog.Level, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, level, msg, attrs...)
}

// handleError records the failure on the span. Client errors are logged at warn; anything else
// is an incident.
func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	attrs = append(attrs, slog.String("error", err.Error()))
	level := slog.LevelError
	if outcomeFor(err) != "error" {
		level = slog.LevelWarn
	}
	s.log(ctx, level, msg, attrs...)
	return err
}

func outcomeFor(err error) string {
	switch {
	case errors.Is(err, invapp.ErrForbidden):
		return "forbidden"
	case errors.Is(err, invapp.ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, invapp.ErrInvalidResult):
		return "invalid_result"
	case errors.Is(err, invapp.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}

type serviceMetrics struct {
	adjustments     metric.Int64Counter
	auditIncidents  metric.Int64Counter
	catalogDegraded metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	adjustments, _ := m.Int64Counter("inventory.service.adjustments", metric.WithDescription("Number of adjustment attempts by outcome"))
	auditIncidents, _ := m.Int64Counter("inventory.service.audit_incidents", metric.WithDescription("Committed adjustments whose audit record was not stored in the primary sink"))
	catalogDegraded, _ := m.Int64Counter("inventory.service.catalog_degraded", metric.WithDescription("Health reports served without catalog data"))
	return serviceMetrics{adjustments: adjustments, auditIncidents: auditIncidents, catalogDegraded: catalogDegraded}
}

func (m serviceMetrics) recordAdjustment(ctx context.Context, outcome string) {
	if m.adjustments != nil {
		m.adjustments.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	}
}

func (m serviceMetrics) recordAuditIncident(ctx context.Context, outcome invtypes.AuditOutcome) {
	if m.auditIncidents != nil {
		m.auditIncidents.Add(ctx, 1, metric.WithAttributes(attribute.String("audit", string(outcome))))
	}
}

func (m serviceMetrics) recordCatalogDegraded(ctx context.Context) {
	if m.catalogDegraded != nil {
		m.catalogDegraded.Add(ctx, 1)
	}
}

var _ invports.Service = (*Service)(nil)
