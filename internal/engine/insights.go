package engine

import (
	"slices"
	"sort"

	"github.com/miradorstack/sales-insights/internal/models"
	"github.com/miradorstack/sales-insights/internal/utils"
)

// ByMonth sums sales per calendar month in chronological order. Months without rows are
// omitted.
func ByMonth(view []models.SalesRecord) []models.MonthlySales {
	totals := make(map[int64]*models.MonthlySales)
	for _, rec := range view {
		start := utils.MonthStart(rec.Date)
		key := start.Unix()
		agg, ok := totals[key]
		if !ok {
			agg = &models.MonthlySales{Month: start.Format("2006-01"), MonthStart: start}
			totals[key] = agg
		}
		agg.Sales += int64(rec.Sales)
	}

	months := make([]models.MonthlySales, 0, len(totals))
	for _, agg := range totals {
		months = append(months, *agg)
	}
	sort.Slice(months, func(i, j int) bool {
		return months[i].MonthStart.Before(months[j].MonthStart)
	})
	return months
}

// ByProduct sums sales, revenue and profit per product. Groups follow catalog order; values
// missing from the catalog follow in first-seen order.
func ByProduct(view []models.SalesRecord, catalog []string) []models.ProductPerformance {
	totals := make(map[string]*models.ProductPerformance)
	for _, rec := range view {
		agg, ok := totals[rec.Product]
		if !ok {
			agg = &models.ProductPerformance{Product: rec.Product}
			totals[rec.Product] = agg
		}
		agg.Sales += int64(rec.Sales)
		agg.Revenue += rec.Revenue
		agg.Profit += rec.Profit
	}

	keys := orderedKeys(view, func(rec models.SalesRecord) string { return rec.Product }, catalog)
	out := make([]models.ProductPerformance, 0, len(keys))
	for _, key := range keys {
		out = append(out, *totals[key])
	}
	return out
}

// ByRegion sums sales and revenue per region, ordered like ByProduct.
func ByRegion(view []models.SalesRecord, catalog []string) []models.RegionalSales {
	totals := make(map[string]*models.RegionalSales)
	for _, rec := range view {
		agg, ok := totals[rec.Region]
		if !ok {
			agg = &models.RegionalSales{Region: rec.Region}
			totals[rec.Region] = agg
		}
		agg.Sales += int64(rec.Sales)
		agg.Revenue += rec.Revenue
	}

	keys := orderedKeys(view, func(rec models.SalesRecord) string { return rec.Region }, catalog)
	out := make([]models.RegionalSales, 0, len(keys))
	for _, key := range keys {
		out = append(out, *totals[key])
	}
	return out
}

// BuildInsights runs the three grouped reductions over one view.
func BuildInsights(view []models.SalesRecord, catalog models.Catalog) models.Insights {
	return models.Insights{
		Monthly:  ByMonth(view),
		Products: ByProduct(view, catalog.Products),
		Regions:  ByRegion(view, catalog.Regions),
	}
}

func orderedKeys(view []models.SalesRecord, key func(models.SalesRecord) string, catalog []string) []string {
	present := make(map[string]struct{})
	var unknown []string
	for _, rec := range view {
		k := key(rec)
		if _, seen := present[k]; seen {
			continue
		}
		present[k] = struct{}{}
		if !slices.Contains(catalog, k) {
			unknown = append(unknown, k)
		}
	}

	keys := make([]string, 0, len(present))
	for _, k := range catalog {
		if _, ok := present[k]; ok {
			keys = append(keys, k)
		}
	}
	return append(keys, unknown...)
}
