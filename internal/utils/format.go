package utils

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/miradorstack/sales-insights/internal/models"
)

var printer = message.NewPrinter(language.English)

// FormatSummary renders KPI values the way the dashboard cards show them.
func FormatSummary(s models.Summary) models.SummaryDisplay {
	return models.SummaryDisplay{
		TotalSales:      printer.Sprintf("%d", s.TotalSales),
		TotalRevenue:    printer.Sprintf("$%d", s.TotalRevenue),
		TotalProfit:     printer.Sprintf("$%.0f", s.TotalProfit),
		AvgProfitMargin: printer.Sprintf("%.1f%%", s.AvgProfitMargin),
	}
}

// FormatCount renders an integer with English digit grouping.
func FormatCount(n int64) string {
	return printer.Sprintf("%d", n)
}

// FormatDollars renders a whole-dollar amount with English digit grouping.
func FormatDollars(v float64) string {
	return printer.Sprintf("$%.0f", v)
}
