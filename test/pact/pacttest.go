//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "fabric-inventory-api"
	ConsumerName = "inventory-admin"

	StateLinenStocked = "linen stocked at the main warehouse"
	StateLevelMissing = "no ledger row for the requested item"
)

const (
	LinenItemID     = "iitem_linen"
	MissingItemID   = "iitem_ghost"
	MainLocationID  = "sloc_main"
	MainLocation    = "Main warehouse"
	LinenVariantID  = "variant_linen_natural"
	LinenSKU        = "LIN-NAT-150"
	LinenTitle      = "Natural / 150cm"
	LinenProduct    = "Washed Linen"
	AdminActorID    = "user_pact_admin"
	AdminActorType  = "admin"
	ReaderActorID   = "svc_pact_report"
	ReaderActorType = "service"
	ReaderScopes    = "inventory:read"
)

// Linen is stocked at 8 base units with 4 reserved on a quarter-yard grid: 2 yards on hand,
// 1 yard available, low stock at a 1 yard threshold.
const (
	LinenStockedUnits  int64 = 8
	LinenReservedUnits int64 = 4
	LinenMinIncrement        = 0.25
	LinenLowStock            = 1
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the admin consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
