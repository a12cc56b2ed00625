package engine

import "github.com/miradorstack/sales-insights/internal/models"

// Summarize reduces a view to its KPIs. The profit margin is reported as 0 whenever total
// revenue is 0, which includes the empty view.
func Summarize(view []models.SalesRecord) models.Summary {
	var summary models.Summary
	for _, rec := range view {
		summary.TotalSales += int64(rec.Sales)
		summary.TotalRevenue += rec.Revenue
		summary.TotalProfit += rec.Profit
	}
	summary.AvgProfitMargin = profitMargin(summary.TotalProfit, summary.TotalRevenue)
	return summary
}

func profitMargin(profit float64, revenue int64) float64 {
	if revenue == 0 {
		return 0
	}
	return profit / float64(revenue) * 100
}
