package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/miradorstack/sales-insights/internal/models"
	"github.com/miradorstack/sales-insights/internal/utils"
)

// Store defines the read-only sales table behaviour used by the pipeline.
type Store interface {
	Records() []models.SalesRecord
	Catalog() models.Catalog
	Bounds() (time.Time, time.Time)
}

// Pipeline runs one dashboard recompute: filter the cached table, then summarise, group,
// chart and preview the resulting view.
type Pipeline struct {
	logger       *slog.Logger
	store        Store
	previewLimit int
}

// NewPipeline constructs a recompute pipeline over store.
func NewPipeline(logger *slog.Logger, store Store, previewLimit int) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if previewLimit <= 0 {
		previewLimit = DefaultPreviewLimit
	}
	return &Pipeline{
		logger:       logger,
		store:        store,
		previewLimit: previewLimit,
	}
}

// DefaultCriteria selects the whole table: full date range, every product and region.
func (p *Pipeline) DefaultCriteria() models.FilterCriteria {
	if p.store == nil {
		return models.FilterCriteria{}
	}
	start, end := p.store.Bounds()
	catalog := p.store.Catalog()
	return models.FilterCriteria{
		Start:    start,
		End:      end,
		Products: catalog.Products,
		Regions:  catalog.Regions,
	}
}

// Recompute evaluates req against the table and returns everything the dashboard renders.
func (p *Pipeline) Recompute(ctx context.Context, req models.DashboardRequest) (models.DashboardResult, error) {
	if p.store == nil {
		return models.DashboardResult{}, fmt.Errorf("sales store not configured")
	}
	if err := ctx.Err(); err != nil {
		return models.DashboardResult{}, fmt.Errorf("recompute: %w", err)
	}

	limit := req.PreviewLimit
	if limit <= 0 {
		limit = p.previewLimit
	}

	view := Filter(p.store.Records(), req.Criteria)
	summary := Summarize(view)
	insights := BuildInsights(view, p.store.Catalog())

	result := models.DashboardResult{
		Criteria: models.EchoCriteria(req.Criteria),
		Summary:  summary,
		Display:  utils.FormatSummary(summary),
		Insights: insights,
		Charts:   BuildCharts(insights),
		Preview:  Preview(view, limit),
		Rows:     len(view),
		View:     view,
	}

	p.logger.Debug("dashboard recomputed",
		slog.Int("rows", result.Rows),
		slog.Int("products", len(req.Criteria.Products)),
		slog.Int("regions", len(req.Criteria.Regions)),
		slog.String("start", result.Criteria.Start),
		slog.String("end", result.Criteria.End),
	)
	return result, nil
}

// View returns the filtered rows for criteria without aggregating them.
func (p *Pipeline) View(ctx context.Context, criteria models.FilterCriteria) ([]models.SalesRecord, error) {
	if p.store == nil {
		return nil, fmt.Errorf("sales store not configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("view: %w", err)
	}
	return Filter(p.store.Records(), criteria), nil
}
