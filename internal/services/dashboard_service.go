package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/miradorstack/sales-insights/internal/cache"
	"github.com/miradorstack/sales-insights/internal/engine"
	"github.com/miradorstack/sales-insights/internal/export"
	"github.com/miradorstack/sales-insights/internal/metrics"
	"github.com/miradorstack/sales-insights/internal/models"
	"github.com/miradorstack/sales-insights/internal/utils"
)

const resultCachePrefix = "sales-insights:dashboard:v1:"

// SalesTable is the read side of the sales store the service resolves queries against.
type SalesTable interface {
	engine.Store
	Options() models.FilterOptions
}

// DashboardConfig tunes the service facade.
type DashboardConfig struct {
	MaxPreviewLimit int
	ResultTTL       time.Duration
}

// DashboardService resolves transport queries into filter criteria and runs the recompute
// pipeline, caching serialised results keyed by the resolved selection.
type DashboardService struct {
	logger    *slog.Logger
	table     SalesTable
	pipeline  *engine.Pipeline
	cache     cache.Provider
	cfg       DashboardConfig
	latencies *utils.LatencyTracker
}

// NewDashboardService constructs the dashboard facade. A nil provider disables result caching.
func NewDashboardService(logger *slog.Logger, table SalesTable, pipeline *engine.Pipeline, provider cache.Provider, cfg DashboardConfig) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	if provider == nil {
		provider = cache.NoopProvider{}
	}
	if cfg.MaxPreviewLimit <= 0 {
		cfg.MaxPreviewLimit = 500
	}
	return &DashboardService{
		logger:    logger,
		table:     table,
		pipeline:  pipeline,
		cache:     provider,
		cfg:       cfg,
		latencies: utils.NewLatencyTracker(1024),
	}
}

// Options returns the selectable filter values and date bounds.
func (s *DashboardService) Options() (models.FilterOptions, error) {
	if s.table == nil {
		return models.FilterOptions{}, utils.NewAppError("dashboard.options", "sales table not configured", nil)
	}
	return s.table.Options(), nil
}

// Resolve turns a transport query into a dashboard request, rejecting malformed dates,
// unknown catalog values and out-of-range preview limits.
func (s *DashboardService) Resolve(q models.DashboardQuery) (models.DashboardRequest, error) {
	const op = "dashboard.resolve"
	if s.table == nil {
		return models.DashboardRequest{}, utils.NewAppError(op, "sales table not configured", nil)
	}

	minDate, maxDate := s.table.Bounds()
	catalog := s.table.Catalog()
	invalid := map[string]string{}

	start, err := resolveDate(q.Start, minDate)
	if err != nil {
		invalid["start"] = err.Error()
	}
	end, err := resolveDate(q.End, maxDate)
	if err != nil {
		invalid["end"] = err.Error()
	}
	products, unknown := resolveSelection(q.Products, catalog.Products)
	if len(unknown) > 0 {
		invalid["products"] = fmt.Sprintf("unknown values %q", unknown)
	}
	regions, unknown := resolveSelection(q.Regions, catalog.Regions)
	if len(unknown) > 0 {
		invalid["regions"] = fmt.Sprintf("unknown values %q", unknown)
	}
	if q.Limit < 0 || q.Limit > s.cfg.MaxPreviewLimit {
		invalid["limit"] = fmt.Sprintf("must be between 0 and %d", s.cfg.MaxPreviewLimit)
	}

	if len(invalid) > 0 {
		return models.DashboardRequest{}, utils.NewInvalidError(op, "invalid dashboard query", invalid)
	}

	return models.DashboardRequest{
		Criteria: models.FilterCriteria{
			Start:    start,
			End:      end,
			Products: products,
			Regions:  regions,
		},
		PreviewLimit: q.Limit,
	}, nil
}

// Recompute resolves q and returns the dashboard result, serving repeated selections from
// the result cache. Results served from the cache carry no View rows.
func (s *DashboardService) Recompute(ctx context.Context, q models.DashboardQuery) (models.DashboardResult, error) {
	start := time.Now()

	req, err := s.Resolve(q)
	if err != nil {
		metrics.ObserveRecompute(time.Since(start), outcomeFor(err))
		return models.DashboardResult{}, err
	}
	if s.pipeline == nil {
		return models.DashboardResult{}, utils.NewAppError("dashboard.recompute", "pipeline not configured", nil)
	}

	key := cacheKey(req)
	if cached, ok := s.lookup(ctx, key); ok {
		metrics.ObserveRecompute(time.Since(start), metrics.OutcomeSuccess)
		return cached, nil
	}

	result, err := s.pipeline.Recompute(ctx, req)
	duration := time.Since(start)
	if err != nil {
		metrics.ObserveRecompute(duration, metrics.OutcomeError)
		s.logger.Error("dashboard recompute failed", slog.Any("error", err))
		return models.DashboardResult{}, utils.NewAppError("dashboard.recompute", "recompute failed", err)
	}
	metrics.ObserveRecompute(duration, metrics.OutcomeSuccess)
	s.latencies.Observe(duration)
	if count := s.latencies.Count(); count >= 20 && count%20 == 0 {
		s.logger.Info("recompute latency",
			slog.Duration("p95", s.latencies.Percentile(95)),
			slog.Int("samples", count),
		)
	}

	s.store(ctx, key, result)
	return result, nil
}

// Export resolves q and renders the filtered rows as CSV.
func (s *DashboardService) Export(ctx context.Context, q models.DashboardQuery) ([]byte, int, error) {
	req, err := s.Resolve(q)
	if err != nil {
		return nil, 0, err
	}
	if s.pipeline == nil {
		return nil, 0, utils.NewAppError("dashboard.export", "pipeline not configured", nil)
	}

	view, err := s.pipeline.View(ctx, req.Criteria)
	if err != nil {
		return nil, 0, utils.NewAppError("dashboard.export", "filter failed", err)
	}
	payload, err := export.Bytes(view)
	if err != nil {
		s.logger.Error("csv export failed", slog.Any("error", err))
		return nil, 0, err
	}
	s.logger.Debug("csv exported", slog.Int("rows", len(view)), slog.Int("bytes", len(payload)))
	return payload, len(view), nil
}

// LatencyP95 returns the current p95 recompute latency.
func (s *DashboardService) LatencyP95() time.Duration {
	if s.latencies == nil {
		return 0
	}
	return s.latencies.Percentile(95)
}

func (s *DashboardService) lookup(ctx context.Context, key string) (models.DashboardResult, bool) {
	payload, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("result cache read failed", slog.Any("error", err))
		}
		metrics.IncResultCache(false)
		return models.DashboardResult{}, false
	}

	var result models.DashboardResult
	if err := json.Unmarshal(payload, &result); err != nil {
		s.logger.Warn("result cache payload corrupt", slog.String("key", key), slog.Any("error", err))
		_ = s.cache.Del(ctx, key)
		metrics.IncResultCache(false)
		return models.DashboardResult{}, false
	}
	metrics.IncResultCache(true)
	return result, true
}

func (s *DashboardService) store(ctx context.Context, key string, result models.DashboardResult) {
	payload, err := json.Marshal(result)
	if err != nil {
		s.logger.Warn("result cache encode failed", slog.Any("error", err))
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.cfg.ResultTTL); err != nil {
		s.logger.Warn("result cache write failed", slog.Any("error", err))
	}
}

func cacheKey(req models.DashboardRequest) string {
	payload, _ := json.Marshal(struct {
		Criteria models.CriteriaEcho `json:"criteria"`
		Limit    int                 `json:"limit"`
	}{models.EchoCriteria(req.Criteria), req.PreviewLimit})
	sum := sha256.Sum256(payload)
	return resultCachePrefix + hex.EncodeToString(sum[:])
}

func resolveDate(value string, fallback time.Time) (time.Time, error) {
	if value == "" {
		return fallback, nil
	}
	return utils.ParseDate(value)
}

// resolveSelection keeps the caller's order and drops duplicates. A nil selection
// expands to the whole catalog.
func resolveSelection(selected, catalog []string) (resolved, unknown []string) {
	if selected == nil {
		return slices.Clone(catalog), nil
	}
	resolved = make([]string, 0, len(selected))
	for _, v := range selected {
		if !slices.Contains(catalog, v) {
			unknown = append(unknown, v)
			continue
		}
		if !slices.Contains(resolved, v) {
			resolved = append(resolved, v)
		}
	}
	return resolved, unknown
}

func outcomeFor(err error) string {
	if utils.IsInvalid(err) {
		return metrics.OutcomeInvalid
	}
	return metrics.OutcomeError
}
