package engine

import (
	"github.com/miradorstack/sales-insights/internal/models"
	"github.com/miradorstack/sales-insights/internal/utils"
)

// Filter returns the records matching every predicate of criteria, in their original order.
// An empty product or region selection, or an inverted date range, yields an empty view.
// The source slice is never modified.
func Filter(records []models.SalesRecord, criteria models.FilterCriteria) []models.SalesRecord {
	window := models.TimeRange{
		Start: utils.TruncateDay(criteria.Start),
		End:   utils.TruncateDay(criteria.End),
	}
	if window.End.Before(window.Start) || len(criteria.Products) == 0 || len(criteria.Regions) == 0 {
		return []models.SalesRecord{}
	}

	products := toSet(criteria.Products)
	regions := toSet(criteria.Regions)

	view := make([]models.SalesRecord, 0, len(records))
	for _, rec := range records {
		if !window.Contains(rec.Date) {
			continue
		}
		if _, ok := products[rec.Product]; !ok {
			continue
		}
		if _, ok := regions[rec.Region]; !ok {
			continue
		}
		view = append(view, rec)
	}
	return view
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
