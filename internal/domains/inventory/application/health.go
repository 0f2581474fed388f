package application

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	accessdomain "github.com/Apurer/fabric-inventory/internal/domains/access/domain"
	types "github.com/Apurer/fabric-inventory/internal/domains/inventory/application/types"
	"github.com/Apurer/fabric-inventory/internal/domains/inventory/domain"
	"github.com/Apurer/fabric-inventory/internal/domains/inventory/ports"
)

// ListHealth assembles the cross-item, cross-location availability report.
func (s *Service) ListHealth(ctx context.Context, input types.HealthInput) (*types.HealthReport, error) {
	if err := s.guard.Authorize(input.Caller, accessdomain.ScopeInventoryRead); err != nil {
		return nil, err
	}
	var statusFilter domain.StockStatus
	if raw := strings.TrimSpace(input.Status); raw != "" {
		parsed, err := domain.ParseStockStatus(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
		statusFilter = parsed
	}
	offset := input.Offset
	if offset < 0 {
		offset = 0
	}

	rows, err := s.ledger.List(ctx, ports.LevelFilter{
		LocationID: strings.TrimSpace(input.LocationID),
		Limit:      clampLimit(input.Limit),
		Offset:     offset,
	})
	if err != nil {
		return nil, mapError(err)
	}

	report := &types.HealthReport{}
	entries := s.resolveCatalog(ctx, rows, report)

	items := make([]types.HealthItem, 0, len(rows))
	for _, row := range rows {
		item, err := buildHealthItem(row, entries[row.Level.InventoryItemID])
		if err != nil {
			return nil, mapError(err)
		}
		items = append(items, item)
	}

	items = filterHealthItems(items, statusFilter, input.Search)
	sortHealthItems(items, input.Order)
	report.Items = items
	report.Count = len(items)
	return report, nil
}

// resolveCatalog joins catalog metadata best-effort; a failed lookup leaves catalog fields empty.
func (s *Service) resolveCatalog(ctx context.Context, rows []ports.LevelState, report *types.HealthReport) map[string]ports.CatalogEntry {
	if s.catalog == nil || len(rows) == 0 {
		return map[string]ports.CatalogEntry{}
	}
	seen := make(map[string]struct{}, len(rows))
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		id := row.Level.InventoryItemID
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	entries, err := s.catalog.ResolveMany(ctx, ids)
	if err != nil {
		report.CatalogDegraded = true
		report.CatalogErr = err
		return map[string]ports.CatalogEntry{}
	}
	if entries == nil {
		return map[string]ports.CatalogEntry{}
	}
	return entries
}

func buildHealthItem(row ports.LevelState, entry ports.CatalogEntry) (types.HealthItem, error) {
	policy := domain.ResolvePolicy(row.ItemMetadata, entry.Metadata)
	level := row.Level
	atsUnits := level.ATS(policy)
	status, err := domain.Classify(atsUnits, policy.LowStockThreshold, policy.MinIncrement)
	if err != nil {
		return types.HealthItem{}, err
	}
	quantities := make([]decimal.Decimal, 0, 4)
	for _, units := range []int64{level.Stocked, level.Reserved, level.Incoming, atsUnits} {
		qty, err := policy.FromUnits(units)
		if err != nil {
			return types.HealthItem{}, err
		}
		quantities = append(quantities, qty)
	}
	item := types.HealthItem{
		VariantID:       entry.VariantID,
		SKU:             entry.SKU,
		Title:           entry.Title,
		ProductTitle:    entry.ProductTitle,
		InventoryItemID: level.InventoryItemID,
		LocationID:      level.LocationID,
		LocationName:    row.LocationName,
		Stocked:         quantities[0],
		Reserved:        quantities[1],
		Incoming:        quantities[2],
		ATS:             quantities[3],
		ATSUnits:        atsUnits,
		MinIncrement:    policy.MinIncrement,
		Status:          status,
	}
	if policy.ThresholdSource != domain.SourceDefault {
		threshold := policy.LowStockThreshold
		item.LowStockThreshold = &threshold
	}
	return item, nil
}

func filterHealthItems(items []types.HealthItem, status domain.StockStatus, search string) []types.HealthItem {
	needle := strings.ToLower(strings.TrimSpace(search))
	if status == "" && needle == "" {
		return items
	}
	filtered := items[:0]
	for _, item := range items {
		if status != "" && item.Status != status {
			continue
		}
		if needle != "" && !matchesSearch(item, needle) {
			continue
		}
		filtered = append(filtered, item)
	}
	return filtered
}

func matchesSearch(item types.HealthItem, needle string) bool {
	for _, field := range []string{item.SKU, item.Title, item.ProductTitle} {
		if field != "" && strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

type healthLess func(a, b types.HealthItem) bool

var healthSortFields = map[string]healthLess{
	"ats":           func(a, b types.HealthItem) bool { return a.ATS.LessThan(b.ATS) },
	"stocked":       func(a, b types.HealthItem) bool { return a.Stocked.LessThan(b.Stocked) },
	"reserved":      func(a, b types.HealthItem) bool { return a.Reserved.LessThan(b.Reserved) },
	"incoming":      func(a, b types.HealthItem) bool { return a.Incoming.LessThan(b.Incoming) },
	"sku":           func(a, b types.HealthItem) bool { return strings.ToLower(a.SKU) < strings.ToLower(b.SKU) },
	"title":         func(a, b types.HealthItem) bool { return strings.ToLower(a.Title) < strings.ToLower(b.Title) },
	"product_title": func(a, b types.HealthItem) bool { return strings.ToLower(a.ProductTitle) < strings.ToLower(b.ProductTitle) },
}

// sortHealthItems orders by "field:direction". Unknown fields leave the ledger order untouched.
func sortHealthItems(items []types.HealthItem, order string) {
	order = strings.TrimSpace(order)
	if order == "" {
		order = types.DefaultHealthOrder
	}
	field, direction, _ := strings.Cut(order, ":")
	less, ok := healthSortFields[strings.ToLower(strings.TrimSpace(field))]
	if !ok {
		return
	}
	desc := strings.EqualFold(strings.TrimSpace(direction), "desc")
	sort.SliceStable(items, func(i, j int) bool {
		if desc {
			return less(items[j], items[i])
		}
		return less(items[i], items[j])
	})
}
