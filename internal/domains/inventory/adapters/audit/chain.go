package audit

import (
	"context"
	"errors"
	"fmt"

	"github.com/Apurer/fabric-inventory/internal/domains/inventory/domain"
	"github.com/Apurer/fabric-inventory/internal/domains/inventory/ports"
)

// Fallback appends to the primary sink and, when that fails, to the fallback sink.
type Fallback struct {
	primary  ports.AuditLog
	fallback ports.AuditLog
}

// WithFallback chains two sinks. A record saved only by the fallback is reported with
// ports.ErrAuditDeferred so callers can tell it apart from a recorded one.
func WithFallback(primary, fallback ports.AuditLog) *Fallback {
	return &Fallback{primary: primary, fallback: fallback}
}

func (f *Fallback) Append(ctx context.Context, record domain.AdjustmentRecord) error {
	primaryErr := f.primary.Append(ctx, record)
	if primaryErr == nil {
		return nil
	}
	if f.fallback == nil {
		return primaryErr
	}
	if err := f.fallback.Append(ctx, record); err != nil {
		return errors.Join(primaryErr, fmt.Errorf("fallback audit sink: %w", err))
	}
	return fmt.Errorf("%w: %v", ports.ErrAuditDeferred, primaryErr)
}

// Mirror forwards every record to secondary sinks after the primary accepted it. Secondary
// failures are reported through onError and never change the primary outcome.
type Mirror struct {
	primary ports.AuditLog
	mirrors []ports.AuditLog
	onError func(ctx context.Context, record domain.AdjustmentRecord, err error)
}

// NewMirror wraps primary with best-effort mirrors. onError may be nil.
func NewMirror(primary ports.AuditLog, onError func(context.Context, domain.AdjustmentRecord, error), mirrors ...ports.AuditLog) *Mirror {
	active := make([]ports.AuditLog, 0, len(mirrors))
	for _, m := range mirrors {
		if m != nil {
			active = append(active, m)
		}
	}
	return &Mirror{primary: primary, mirrors: active, onError: onError}
}

func (m *Mirror) Append(ctx context.Context, record domain.AdjustmentRecord) error {
	err := m.primary.Append(ctx, record)
	if err != nil && !errors.Is(err, ports.ErrAuditDeferred) {
		return err
	}
	for _, mirror := range m.mirrors {
		if mirrorErr := mirror.Append(ctx, record); mirrorErr != nil && m.onError != nil {
			m.onError(ctx, record, mirrorErr)
		}
	}
	return err
}

var (
	_ ports.AuditLog = (*Fallback)(nil)
	_ ports.AuditLog = (*Mirror)(nil)
)
