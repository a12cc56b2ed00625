package engine

import (
	"sort"

	"github.com/miradorstack/sales-insights/internal/models"
)

// DefaultPreviewLimit bounds the tabular preview when the caller does not choose one.
const DefaultPreviewLimit = 20

// Preview returns the newest rows of view, newest first, capped at limit. Rows sharing a
// date keep their original relative order.
func Preview(view []models.SalesRecord, limit int) []models.SalesRecord {
	if limit <= 0 {
		limit = DefaultPreviewLimit
	}
	rows := append([]models.SalesRecord(nil), view...)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Date.After(rows[j].Date)
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	if rows == nil {
		rows = []models.SalesRecord{}
	}
	return rows
}
