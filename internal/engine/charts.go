package engine

import "github.com/miradorstack/sales-insights/internal/models"

// BuildCharts turns grouped insights into the four dashboard charts.
func BuildCharts(insights models.Insights) []models.Chart {
	trend := models.Chart{
		ID:        "monthly-sales",
		Title:     "Monthly Sales Trend",
		ChartType: models.ChartTypeLine,
		XLabel:    "Month",
		YLabel:    "Sales Quantity",
		Points:    make([]models.ChartPoint, 0, len(insights.Monthly)),
	}
	for _, m := range insights.Monthly {
		trend.Points = append(trend.Points, models.ChartPoint{Label: m.Month, Value: float64(m.Sales)})
	}

	byProduct := models.Chart{
		ID:        "product-sales",
		Title:     "Sales by Product",
		ChartType: models.ChartTypeBar,
		XLabel:    "Product",
		YLabel:    "Sales Quantity",
		Points:    make([]models.ChartPoint, 0, len(insights.Products)),
	}
	share := models.Chart{
		ID:        "product-revenue-share",
		Title:     "Revenue Distribution",
		ChartType: models.ChartTypePie,
		Points:    make([]models.ChartPoint, 0, len(insights.Products)),
	}
	var revenue int64
	for _, p := range insights.Products {
		revenue += p.Revenue
	}
	for _, p := range insights.Products {
		byProduct.Points = append(byProduct.Points, models.ChartPoint{Label: p.Product, Value: float64(p.Sales)})
		point := models.ChartPoint{Label: p.Product, Value: float64(p.Revenue)}
		if revenue > 0 {
			point.Share = float64(p.Revenue) / float64(revenue) * 100
		}
		share.Points = append(share.Points, point)
	}

	byRegion := models.Chart{
		ID:        "region-revenue",
		Title:     "Revenue by Region",
		ChartType: models.ChartTypeBar,
		XLabel:    "Region",
		YLabel:    "Revenue ($)",
		Points:    make([]models.ChartPoint, 0, len(insights.Regions)),
	}
	for _, r := range insights.Regions {
		byRegion.Points = append(byRegion.Points, models.ChartPoint{Label: r.Region, Value: float64(r.Revenue)})
	}

	return []models.Chart{trend, byProduct, share, byRegion}
}
