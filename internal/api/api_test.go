package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"testing"
	"time"

	"github.com/miradorstack/sales-insights/internal/engine"
	"github.com/miradorstack/sales-insights/internal/models"
	"github.com/miradorstack/sales-insights/internal/repo"
	"github.com/miradorstack/sales-insights/internal/services"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T) *services.DashboardService {
	t.Helper()
	store := repo.NewSalesStore(repo.GeneratorConfig{
		Seed:     42,
		Start:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:      time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		Category: "Electronics",
		Products: []string{"MacBook", "iPhone", "iPad", "AirPods"},
		Regions:  []string{"Europe", "North America", "Asia", "Middle East"},
	}, discardLogger())
	pipeline := engine.NewPipeline(discardLogger(), store, 20)
	return services.NewDashboardService(discardLogger(), store, pipeline, nil, services.DashboardConfig{MaxPreviewLimit: 500})
}

// brokenService fails every call with an internal error.
type brokenService struct{}

var errBroken = errors.New("store offline")

func (brokenService) Recompute(context.Context, models.DashboardQuery) (models.DashboardResult, error) {
	return models.DashboardResult{}, errBroken
}

func (brokenService) Export(context.Context, models.DashboardQuery) ([]byte, int, error) {
	return nil, 0, errBroken
}

func (brokenService) Options() (models.FilterOptions, error) {
	return models.FilterOptions{}, errBroken
}

// panicService panics from Recompute.
type panicService struct{ brokenService }

func (panicService) Recompute(context.Context, models.DashboardQuery) (models.DashboardResult, error) {
	panic("boom")
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
