package engine

import (
	"testing"

	"github.com/miradorstack/sales-insights/internal/models"
)

func TestByMonthChronological(t *testing.T) {
	view := []models.SalesRecord{
		{Date: day(2024, 3, 2), Sales: 1},
		{Date: day(2024, 1, 5), Sales: 2},
		{Date: day(2024, 1, 20), Sales: 3},
		{Date: day(2023, 12, 31), Sales: 4},
	}
	months := ByMonth(view)
	if len(months) != 3 {
		t.Fatalf("expected 3 months (no zero fill for February), got %d", len(months))
	}
	want := []struct {
		month string
		sales int64
	}{{"2023-12", 4}, {"2024-01", 5}, {"2024-03", 1}}
	for i, w := range want {
		if months[i].Month != w.month || months[i].Sales != w.sales {
			t.Fatalf("month %d: expected %s=%d, got %s=%d", i, w.month, w.sales, months[i].Month, months[i].Sales)
		}
	}
	if !months[1].MonthStart.Equal(day(2024, 1, 1)) {
		t.Fatalf("unexpected month start %v", months[1].MonthStart)
	}
}

func TestByProductCatalogOrder(t *testing.T) {
	view := []models.SalesRecord{
		{Product: "AirPods", Sales: 1, Revenue: 100, Profit: 10},
		{Product: "Vision", Sales: 1, Revenue: 50, Profit: 5},
		{Product: "MacBook", Sales: 2, Revenue: 400, Profit: 80},
		{Product: "AirPods", Sales: 3, Revenue: 300, Profit: 30},
	}
	got := ByProduct(view, catalogProducts)
	if len(got) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(got))
	}
	if got[0].Product != "MacBook" || got[1].Product != "AirPods" || got[2].Product != "Vision" {
		t.Fatalf("unexpected order %v", got)
	}
	if got[1].Sales != 4 || got[1].Revenue != 400 || got[1].Profit != 40 {
		t.Fatalf("unexpected AirPods totals %+v", got[1])
	}
}

func TestByRegionSums(t *testing.T) {
	view := []models.SalesRecord{
		{Region: "Asia", Sales: 1, Revenue: 100},
		{Region: "Europe", Sales: 2, Revenue: 200},
		{Region: "Asia", Sales: 3, Revenue: 300},
	}
	got := ByRegion(view, catalogRegions)
	if len(got) != 2 || got[0].Region != "Europe" || got[1].Region != "Asia" {
		t.Fatalf("unexpected regions %v", got)
	}
	if got[1].Sales != 4 || got[1].Revenue != 400 {
		t.Fatalf("unexpected Asia totals %+v", got[1])
	}
}

func TestInsightsEmptyView(t *testing.T) {
	insights := BuildInsights(nil, models.Catalog{Products: catalogProducts, Regions: catalogRegions})
	if insights.Monthly == nil || insights.Products == nil || insights.Regions == nil {
		t.Fatalf("expected empty, non-nil groupings")
	}
	if len(insights.Monthly)+len(insights.Products)+len(insights.Regions) != 0 {
		t.Fatalf("expected no groups for empty view")
	}
}

func TestPreviewStableDescending(t *testing.T) {
	view := []models.SalesRecord{
		{Date: day(2024, 1, 1), Product: "a"},
		{Date: day(2024, 1, 2), Product: "b"},
		{Date: day(2024, 1, 2), Product: "c"},
	}
	got := Preview(view, 2)
	if len(got) != 2 || got[0].Product != "b" || got[1].Product != "c" {
		t.Fatalf("unexpected preview %v", got)
	}
	if view[0].Product != "a" {
		t.Fatalf("preview must not reorder the view")
	}
	if rows := Preview(nil, 0); rows == nil || len(rows) != 0 {
		t.Fatalf("expected empty preview")
	}
}

func TestBuildChartsRevenueShare(t *testing.T) {
	charts := BuildCharts(models.Insights{
		Products: []models.ProductPerformance{
			{Product: "MacBook", Sales: 1, Revenue: 300},
			{Product: "iPhone", Sales: 2, Revenue: 100},
		},
	})
	if len(charts) != 4 {
		t.Fatalf("expected 4 charts, got %d", len(charts))
	}
	pie := charts[2]
	if pie.ChartType != models.ChartTypePie || pie.Title != "Revenue Distribution" {
		t.Fatalf("unexpected pie chart %+v", pie)
	}
	if pie.Points[0].Share != 75 || pie.Points[1].Share != 25 {
		t.Fatalf("unexpected shares %v", pie.Points)
	}
	if len(charts[0].Points) != 0 || len(charts[3].Points) != 0 {
		t.Fatalf("expected empty trend and region charts")
	}
}
