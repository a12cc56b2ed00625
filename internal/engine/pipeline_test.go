package engine

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/miradorstack/sales-insights/internal/models"
)

type fakeStore struct {
	records []models.SalesRecord
	catalog models.Catalog
}

func (f *fakeStore) Records() []models.SalesRecord { return f.records }

func (f *fakeStore) Catalog() models.Catalog { return f.catalog }

func (f *fakeStore) Bounds() (time.Time, time.Time) {
	if len(f.records) == 0 {
		return time.Time{}, time.Time{}
	}
	return f.records[0].Date, f.records[len(f.records)-1].Date
}

var (
	catalogProducts = []string{"MacBook", "iPhone", "iPad", "AirPods"}
	catalogRegions  = []string{"Europe", "North America", "Asia", "Middle East"}
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// sampleRecords spans two months with every product on each day and rotating regions.
func sampleRecords() []models.SalesRecord {
	records := make([]models.SalesRecord, 0)
	i := 0
	for d := day(2024, 1, 30); !d.After(day(2024, 2, 2)); d = d.AddDate(0, 0, 1) {
		for _, product := range catalogProducts {
			sales := i%5 + 1
			revenue := int64(sales * 100)
			records = append(records, models.SalesRecord{
				Date:     d,
				Product:  product,
				Category: "Electronics",
				Sales:    sales,
				Revenue:  revenue,
				Profit:   float64(revenue) * 0.2,
				Region:   catalogRegions[i%len(catalogRegions)],
			})
			i++
		}
	}
	return records
}

func newSampleStore() *fakeStore {
	return &fakeStore{
		records: sampleRecords(),
		catalog: models.Catalog{Products: catalogProducts, Regions: catalogRegions},
	}
}

func TestPipelineRecompute(t *testing.T) {
	store := newSampleStore()
	pipeline := NewPipeline(nil, store, 5)

	result, err := pipeline.Recompute(context.Background(), models.DashboardRequest{Criteria: pipeline.DefaultCriteria()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Rows != len(store.records) {
		t.Fatalf("expected %d rows, got %d", len(store.records), result.Rows)
	}
	if len(result.Preview) != 5 {
		t.Fatalf("expected preview of 5, got %d", len(result.Preview))
	}
	if !result.Preview[0].Date.Equal(day(2024, 2, 2)) {
		t.Fatalf("expected newest row first, got %v", result.Preview[0].Date)
	}
	if len(result.Insights.Monthly) != 2 {
		t.Fatalf("expected 2 months, got %d", len(result.Insights.Monthly))
	}
	if len(result.Charts) != 4 {
		t.Fatalf("expected 4 charts, got %d", len(result.Charts))
	}
	if result.Criteria.Start != "2024-01-30" || result.Criteria.End != "2024-02-02" {
		t.Fatalf("unexpected criteria echo %+v", result.Criteria)
	}
	if result.Display.TotalSales == "" {
		t.Fatalf("expected formatted KPI labels")
	}

	var productSales int64
	for _, p := range result.Insights.Products {
		productSales += p.Sales
	}
	if productSales != result.Summary.TotalSales {
		t.Fatalf("byProduct sales %d != total sales %d", productSales, result.Summary.TotalSales)
	}
}

func TestPipelineRecomputePreviewOverride(t *testing.T) {
	pipeline := NewPipeline(nil, newSampleStore(), 5)
	result, err := pipeline.Recompute(context.Background(), models.DashboardRequest{
		Criteria:     pipeline.DefaultCriteria(),
		PreviewLimit: 100,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Preview) != result.Rows {
		t.Fatalf("expected whole view in preview, got %d of %d", len(result.Preview), result.Rows)
	}
}

func TestPipelineRecomputeEmptySelection(t *testing.T) {
	pipeline := NewPipeline(nil, newSampleStore(), 0)
	criteria := pipeline.DefaultCriteria()
	criteria.Regions = nil

	result, err := pipeline.Recompute(context.Background(), models.DashboardRequest{Criteria: criteria})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Rows != 0 || len(result.Preview) != 0 {
		t.Fatalf("expected empty result, got %d rows", result.Rows)
	}
	if result.Summary != (models.Summary{}) {
		t.Fatalf("expected zero summary, got %+v", result.Summary)
	}
	if math.IsNaN(result.Summary.AvgProfitMargin) {
		t.Fatalf("margin must not be NaN")
	}
}

func TestPipelineWithoutStore(t *testing.T) {
	pipeline := NewPipeline(nil, nil, 0)
	if _, err := pipeline.Recompute(context.Background(), models.DashboardRequest{}); err == nil {
		t.Fatalf("expected error without store")
	}
}

func TestPipelineCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	pipeline := NewPipeline(nil, newSampleStore(), 0)
	if _, err := pipeline.Recompute(ctx, models.DashboardRequest{Criteria: pipeline.DefaultCriteria()}); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestPipelineView(t *testing.T) {
	store := newSampleStore()
	p := NewPipeline(nil, store, 0)

	view, err := p.View(context.Background(), models.FilterCriteria{
		Start:    day(2024, 2, 1),
		End:      day(2024, 2, 2),
		Products: []string{"iPad"},
		Regions:  catalogRegions,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(view) != 2 {
		t.Fatalf("expected 2 iPad rows, got %d", len(view))
	}
	for _, r := range view {
		if r.Product != "iPad" || r.Date.Before(day(2024, 2, 1)) {
			t.Fatalf("unexpected row %+v", r)
		}
	}

	if _, err := NewPipeline(nil, nil, 0).View(context.Background(), models.FilterCriteria{}); err == nil {
		t.Fatal("expected error without store")
	}
}
