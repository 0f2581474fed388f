package types

import (
	"github.com/shopspring/decimal"

	accessdomain "github.com/Apurer/fabric-inventory/internal/domains/access/domain"
)

// AdjustInput captures a single stock adjustment request. Exactly one of Delta or ToQuantity
// must be set; both are in physical units (e.g. yards).
type AdjustInput struct {
	Caller          accessdomain.Caller
	InventoryItemID string
	LocationID      string
	Reason          string
	Note            string
	Reference       string
	Delta           *decimal.Decimal
	ToQuantity      *decimal.Decimal
}

// AuditOutcome reports what happened to the audit record of a committed adjustment.
type AuditOutcome string

const (
	AuditRecorded  AuditOutcome = "recorded"
	AuditJournaled AuditOutcome = "journaled"
	AuditFailed    AuditOutcome = "failed"
)

// AdjustResult is returned after the ledger mutation committed.
type AdjustResult struct {
	InventoryItemID string
	LocationID      string
	PrevQuantity    decimal.Decimal
	NewQuantity     decimal.Decimal
	PrevUnits       int64
	NewUnits        int64
	Reason          string
	Note            string
	Reference       string
	AuditID         string
	Audit           AuditOutcome
	// AuditErr is set when Audit is not AuditRecorded; the adjustment itself still succeeded.
	AuditErr error
	// PolicyWarnings lists unusable policy metadata that fell back to defaults.
	PolicyWarnings []string
}
