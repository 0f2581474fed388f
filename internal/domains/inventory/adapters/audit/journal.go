package audit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Apurer/fabric-inventory/internal/domains/inventory/domain"
	"github.com/Apurer/fabric-inventory/internal/domains/inventory/ports"
)

var _ ports.AuditLog = (*Journal)(nil)

// Journal writes adjustment records as JSON lines. It is the last-resort sink when the primary
// audit store is unreachable; operators replay it into inventory_adjustments.
type Journal struct {
	l *zap.Logger
}

// NewJournal builds a zap production logger writing to stdout and, when path is set, to the file.
func NewJournal(path string) (*Journal, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	if path = strings.TrimSpace(path); path != "" {
		if err := ensureFile(path); err != nil {
			return nil, fmt.Errorf("prepare audit journal: %w", err)
		}
		cfg.OutputPaths = append(cfg.OutputPaths, path)
	}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.MessageKey = "msg"
	cfg.EncoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
	cfg.InitialFields = map[string]any{"stream": "inventory.audit"}

	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Journal{l: l}, nil
}

// NewJournalWithLogger wraps an existing zap logger.
func NewJournalWithLogger(l *zap.Logger) *Journal {
	if l == nil {
		l = zap.NewNop()
	}
	return &Journal{l: l}
}

func (j *Journal) Append(_ context.Context, record domain.AdjustmentRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}
	j.l.Warn("inventory adjustment journaled", journalFields(record)...)
	return nil
}

// Sync flushes buffered entries. Safe to call on shutdown.
func (j *Journal) Sync() error {
	return j.l.Sync()
}

func journalFields(r domain.AdjustmentRecord) []zap.Field {
	fields := []zap.Field{
		zap.String("adjustment_id", r.ID),
		zap.String("inventory_item_id", r.InventoryItemID),
		zap.String("location_id", r.LocationID),
		zap.String("reason", r.Reason),
		zap.String("prev_quantity", r.PrevQuantity.String()),
		zap.String("new_quantity", r.NewQuantity.String()),
		zap.Int64("prev_units", r.PrevUnits),
		zap.Int64("new_units", r.NewUnits),
		zap.String("min_increment", r.MinIncrement.String()),
		zap.String("actor_id", r.ActorID),
		zap.Time("created_at", r.CreatedAt),
	}
	if r.Delta != nil {
		fields = append(fields, zap.String("delta", r.Delta.String()))
	}
	if r.ToQuantity != nil {
		fields = append(fields, zap.String("to_quantity", r.ToQuantity.String()))
	}
	if r.Note != "" {
		fields = append(fields, zap.String("note", r.Note))
	}
	if r.Reference != "" {
		fields = append(fields, zap.String("reference", r.Reference))
	}
	return fields
}

func ensureFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	return f.Close()
}
