package repo

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/miradorstack/sales-insights/internal/models"
	"github.com/miradorstack/sales-insights/internal/utils"
)

// SalesStore owns the generated sales table. The table is built on first use, at most once
// per store, and is read-only afterwards.
type SalesStore struct {
	cfg    GeneratorConfig
	logger *slog.Logger

	once    sync.Once
	records []models.SalesRecord
	minDate time.Time
	maxDate time.Time
}

// NewSalesStore constructs a store; generation is deferred until the table is first read.
func NewSalesStore(cfg GeneratorConfig, logger *slog.Logger) *SalesStore {
	if logger == nil {
		logger = slog.Default()
	}
	cfg.Products = append([]string(nil), cfg.Products...)
	cfg.Regions = append([]string(nil), cfg.Regions...)
	return &SalesStore{cfg: cfg, logger: logger}
}

// Records returns the full table. Callers must treat the slice as read-only.
func (s *SalesStore) Records() []models.SalesRecord {
	s.load()
	return slices.Clip(s.records)
}

// Len returns the number of generated rows.
func (s *SalesStore) Len() int {
	s.load()
	return len(s.records)
}

// Bounds returns the earliest and latest record dates, or the configured window when empty.
func (s *SalesStore) Bounds() (time.Time, time.Time) {
	s.load()
	return s.minDate, s.maxDate
}

// Catalog returns the configured products and regions in canonical order.
func (s *SalesStore) Catalog() models.Catalog {
	return models.Catalog{
		Products: append([]string(nil), s.cfg.Products...),
		Regions:  append([]string(nil), s.cfg.Regions...),
	}
}

// Options describes the filter controls: selectable values and the date picker bounds.
func (s *SalesStore) Options() models.FilterOptions {
	minDate, maxDate := s.Bounds()
	return models.FilterOptions{
		Catalog: s.Catalog(),
		MinDate: minDate.Format(models.DateLayout),
		MaxDate: maxDate.Format(models.DateLayout),
		Rows:    s.Len(),
	}
}

func (s *SalesStore) load() {
	s.once.Do(func() {
		started := time.Now()
		s.records = Generate(s.cfg)
		s.minDate, s.maxDate = utils.TruncateDay(s.cfg.Start), utils.TruncateDay(s.cfg.End)
		if n := len(s.records); n > 0 {
			s.minDate, s.maxDate = s.records[0].Date, s.records[n-1].Date
		}
		s.logger.Info("sales table generated",
			slog.Int("rows", len(s.records)),
			slog.Int64("seed", s.cfg.Seed),
			slog.String("start", s.minDate.Format(models.DateLayout)),
			slog.String("end", s.maxDate.Format(models.DateLayout)),
			slog.Duration("elapsed", time.Since(started)),
		)
	})
}
