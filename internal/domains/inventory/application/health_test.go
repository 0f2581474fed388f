package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	invmemory "github.com/Apurer/fabric-inventory/internal/domains/inventory/adapters/memory"
	types "github.com/Apurer/fabric-inventory/internal/domains/inventory/application/types"
	"github.com/Apurer/fabric-inventory/internal/domains/inventory/domain"
	"github.com/Apurer/fabric-inventory/internal/domains/inventory/ports"
)

func seedHealth(t *testing.T) (*invmemory.Ledger, *invmemory.Catalog) {
	t.Helper()
	ledger := invmemory.NewLedger()
	catalog := invmemory.NewCatalog()
	ledger.PutLocation("sloc_1", "Main warehouse")
	ledger.PutLocation("sloc_2", "Outlet")

	ledger.PutItem("iitem_linen", map[string]any{domain.MetaMinIncrement: "0.25", domain.MetaLowStockThreshold: 1})
	catalog.Link(ports.CatalogEntry{InventoryItemID: "iitem_linen", VariantID: "variant_linen", SKU: "LIN-NAT", Title: "Natural", ProductTitle: "Washed Linen"})

	catalog.Link(ports.CatalogEntry{
		InventoryItemID: "iitem_wool",
		VariantID:       "variant_wool",
		SKU:             "WOO-GRY",
		Title:           "Grey",
		ProductTitle:    "Boiled Wool",
		Metadata:        map[string]any{domain.MetaMinIncrement: "0.5", domain.MetaLowStockThreshold: "2"},
	})

	catalog.Link(ports.CatalogEntry{InventoryItemID: "iitem_silk", VariantID: "variant_silk", SKU: "SLK-RED", Title: "Red", ProductTitle: "Silk Charmeuse"})

	for _, lvl := range []domain.InventoryLevel{
		{InventoryItemID: "iitem_linen", LocationID: "sloc_1", Stocked: 6, Reserved: 2},
		{InventoryItemID: "iitem_wool", LocationID: "sloc_1", Stocked: 40, Reserved: 4, Incoming: 10},
		{InventoryItemID: "iitem_silk", LocationID: "sloc_1", Stocked: 1, Reserved: 3},
		{InventoryItemID: "iitem_silk", LocationID: "sloc_2", Stocked: 7},
	} {
		require.NoError(t, ledger.PutLevel(lvl))
	}
	return ledger, catalog
}

func healthByKey(report *types.HealthReport) map[string]types.HealthItem {
	out := make(map[string]types.HealthItem, len(report.Items))
	for _, item := range report.Items {
		out[item.InventoryItemID+"@"+item.LocationID] = item
	}
	return out
}

func TestListHealth_ClassifiesAndPresents(t *testing.T) {
	ledger, catalog := seedHealth(t)
	svc := NewService(ledger, catalog, invmemory.NewAuditLog())

	report, err := svc.ListHealth(context.Background(), types.HealthInput{Caller: reader})
	require.NoError(t, err)
	require.Equal(t, 4, report.Count)
	assert.False(t, report.CatalogDegraded)

	items := healthByKey(report)

	linen := items["iitem_linen@sloc_1"]
	assert.Equal(t, domain.StatusLowStock, linen.Status)
	assert.Equal(t, "1.5", linen.Stocked.String())
	assert.Equal(t, "0.5", linen.Reserved.String())
	assert.Equal(t, "1", linen.ATS.String())
	assert.Equal(t, int64(4), linen.ATSUnits)
	require.NotNil(t, linen.LowStockThreshold)
	assert.Equal(t, "1", linen.LowStockThreshold.String())
	assert.Equal(t, "LIN-NAT", linen.SKU)
	assert.Equal(t, "Main warehouse", linen.LocationName)

	wool := items["iitem_wool@sloc_1"]
	assert.Equal(t, domain.StatusInStock, wool.Status)
	assert.Equal(t, "18", wool.ATS.String())
	assert.Equal(t, "0.5", wool.MinIncrement.String())

	silk := items["iitem_silk@sloc_1"]
	assert.Equal(t, domain.StatusOutOfStock, silk.Status)
	assert.True(t, silk.ATS.IsZero())
	assert.Nil(t, silk.LowStockThreshold)

	assert.Equal(t, domain.StatusInStock, items["iitem_silk@sloc_2"].Status)
}

func TestListHealth_DefaultOrderIsATSDescending(t *testing.T) {
	ledger, catalog := seedHealth(t)
	svc := NewService(ledger, catalog, invmemory.NewAuditLog())

	report, err := svc.ListHealth(context.Background(), types.HealthInput{Caller: reader})
	require.NoError(t, err)
	for i := 1; i < len(report.Items); i++ {
		assert.False(t, report.Items[i-1].ATS.LessThan(report.Items[i].ATS))
	}
	assert.Equal(t, "iitem_wool", report.Items[0].InventoryItemID)
}

func TestListHealth_FiltersAndSorts(t *testing.T) {
	ledger, catalog := seedHealth(t)
	svc := NewService(ledger, catalog, invmemory.NewAuditLog())

	report, err := svc.ListHealth(context.Background(), types.HealthInput{Caller: reader, Status: "out_of_stock"})
	require.NoError(t, err)
	require.Equal(t, 1, report.Count)
	assert.Equal(t, "iitem_silk", report.Items[0].InventoryItemID)

	report, err = svc.ListHealth(context.Background(), types.HealthInput{Caller: reader, Search: "silk"})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Count)

	report, err = svc.ListHealth(context.Background(), types.HealthInput{Caller: reader, Search: "woo-"})
	require.NoError(t, err)
	require.Equal(t, 1, report.Count)
	assert.Equal(t, "WOO-GRY", report.Items[0].SKU)

	report, err = svc.ListHealth(context.Background(), types.HealthInput{Caller: reader, LocationID: "sloc_2"})
	require.NoError(t, err)
	require.Equal(t, 1, report.Count)
	assert.Equal(t, "Outlet", report.Items[0].LocationName)

	report, err = svc.ListHealth(context.Background(), types.HealthInput{Caller: reader, Order: "sku"})
	require.NoError(t, err)
	require.Len(t, report.Items, 4)
	assert.Equal(t, "LIN-NAT", report.Items[0].SKU)
	assert.Equal(t, "WOO-GRY", report.Items[3].SKU)

	report, err = svc.ListHealth(context.Background(), types.HealthInput{Caller: reader, Order: "product_title:desc"})
	require.NoError(t, err)
	assert.Equal(t, "Washed Linen", report.Items[0].ProductTitle)
}

func TestListHealth_UnknownSortFieldKeepsLedgerOrder(t *testing.T) {
	ledger, catalog := seedHealth(t)
	svc := NewService(ledger, catalog, invmemory.NewAuditLog())

	report, err := svc.ListHealth(context.Background(), types.HealthInput{Caller: reader, Order: "price:desc"})
	require.NoError(t, err)
	ids := make([]string, 0, len(report.Items))
	for _, item := range report.Items {
		ids = append(ids, item.InventoryItemID+"@"+item.LocationID)
	}
	assert.Equal(t, []string{"iitem_linen@sloc_1", "iitem_silk@sloc_1", "iitem_silk@sloc_2", "iitem_wool@sloc_1"}, ids)
}

func TestListHealth_Pagination(t *testing.T) {
	ledger, catalog := seedHealth(t)
	svc := NewService(ledger, catalog, invmemory.NewAuditLog())

	report, err := svc.ListHealth(context.Background(), types.HealthInput{Caller: reader, Limit: 2, Offset: 1, Order: "nope"})
	require.NoError(t, err)
	require.Equal(t, 2, report.Count)
	assert.Equal(t, "iitem_silk", report.Items[0].InventoryItemID)
}

func TestListHealth_CatalogFailureDegrades(t *testing.T) {
	ledger, _ := seedHealth(t)
	boom := errors.New("catalog down")
	svc := NewService(ledger, failingCatalog{err: boom}, invmemory.NewAuditLog())

	report, err := svc.ListHealth(context.Background(), types.HealthInput{Caller: reader})
	require.NoError(t, err)
	assert.True(t, report.CatalogDegraded)
	assert.ErrorIs(t, report.CatalogErr, boom)
	assert.Equal(t, 4, report.Count)
	for _, item := range report.Items {
		assert.Empty(t, item.SKU)
	}
}

func TestListHealth_RejectsBadInput(t *testing.T) {
	ledger, catalog := seedHealth(t)
	svc := NewService(ledger, catalog, invmemory.NewAuditLog())

	_, err := svc.ListHealth(context.Background(), types.HealthInput{Caller: reader, Status: "sold_out"})
	require.ErrorIs(t, err, ErrInvalidRequest)

	_, err = svc.ListHealth(context.Background(), types.HealthInput{Caller: writer})
	require.ErrorIs(t, err, ErrForbidden)
}
