package models

import "time"

// Summary holds the scalar KPIs of a filtered view.
type Summary struct {
	TotalSales      int64   `json:"total_sales"`
	TotalRevenue    int64   `json:"total_revenue"`
	TotalProfit     float64 `json:"total_profit"`
	AvgProfitMargin float64 `json:"avg_profit_margin"`
}

// SummaryDisplay carries the human formatted KPI labels shown on KPI cards.
type SummaryDisplay struct {
	TotalSales      string `json:"total_sales"`
	TotalRevenue    string `json:"total_revenue"`
	TotalProfit     string `json:"total_profit"`
	AvgProfitMargin string `json:"avg_profit_margin"`
}

// MonthlySales is the summed sales of one calendar month.
type MonthlySales struct {
	Month      string    `json:"month"`
	MonthStart time.Time `json:"month_start"`
	Sales      int64     `json:"sales"`
}

// ProductPerformance aggregates a single product.
type ProductPerformance struct {
	Product string  `json:"product"`
	Sales   int64   `json:"sales"`
	Revenue int64   `json:"revenue"`
	Profit  float64 `json:"profit"`
}

// RegionalSales aggregates a single region.
type RegionalSales struct {
	Region  string `json:"region"`
	Sales   int64  `json:"sales"`
	Revenue int64  `json:"revenue"`
}

// Insights groups the three grouped reductions of a filtered view.
type Insights struct {
	Monthly  []MonthlySales       `json:"monthly"`
	Products []ProductPerformance `json:"products"`
	Regions  []RegionalSales      `json:"regions"`
}

// ChartType enumerates how a chart payload should be drawn.
type ChartType string

const (
	ChartTypeLine ChartType = "line"
	ChartTypeBar  ChartType = "bar"
	ChartTypePie  ChartType = "pie"
)

// ChartPoint is a single labelled value of a chart.
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Share float64 `json:"share,omitempty"`
}

// Chart is a render-ready series.
type Chart struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	ChartType ChartType    `json:"chart_type"`
	XLabel    string       `json:"x_label,omitempty"`
	YLabel    string       `json:"y_label,omitempty"`
	Points    []ChartPoint `json:"points"`
}

// DashboardResult is everything one recompute hands to the presentation layer.
type DashboardResult struct {
	Criteria CriteriaEcho   `json:"criteria"`
	Summary  Summary        `json:"summary"`
	Display  SummaryDisplay `json:"display"`
	Insights Insights       `json:"insights"`
	Charts   []Chart        `json:"charts"`
	Preview  []SalesRecord  `json:"preview"`
	Rows     int            `json:"rows"`

	// View is the full filtered view; it is used for export and never serialised.
	View []SalesRecord `json:"-"`
}
