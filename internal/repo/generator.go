package repo

import (
	"math/rand/v2"
	"time"

	"github.com/miradorstack/sales-insights/internal/models"
	"github.com/miradorstack/sales-insights/internal/utils"
)

// Draw bounds for synthetic rows; lower bounds inclusive, upper bounds exclusive.
const (
	minUnits       = 1
	maxUnits       = 20
	minUnitPrice   = 100
	maxUnitPrice   = 1000
	minProfitRatio = 0.1
	maxProfitRatio = 0.3
)

// GeneratorConfig describes the synthetic sales table.
type GeneratorConfig struct {
	Seed     int64
	Start    time.Time
	End      time.Time
	Category string
	Products []string
	Regions  []string
}

// Generate builds one record per (day, product) in [start, end] from a single seeded stream.
// Days form the outer loop and products the inner loop; per record the stream is advanced
// for units, unit price, profit ratio and region, in that order, so equal inputs always
// produce an identical table.
func Generate(cfg GeneratorConfig) []models.SalesRecord {
	start := utils.TruncateDay(cfg.Start)
	end := utils.TruncateDay(cfg.End)
	if end.Before(start) || len(cfg.Products) == 0 {
		return []models.SalesRecord{}
	}

	records := make([]models.SalesRecord, 0, utils.DaysInclusive(start, end)*len(cfg.Products))
	rng := rand.New(rand.NewPCG(uint64(cfg.Seed), uint64(cfg.Seed)))

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		for _, product := range cfg.Products {
			units := minUnits + rng.IntN(maxUnits-minUnits)
			price := minUnitPrice + rng.IntN(maxUnitPrice-minUnitPrice)
			revenue := int64(units) * int64(price)
			ratio := minProfitRatio + (maxProfitRatio-minProfitRatio)*rng.Float64()

			region := ""
			if len(cfg.Regions) > 0 {
				region = cfg.Regions[rng.IntN(len(cfg.Regions))]
			}

			records = append(records, models.SalesRecord{
				Date:     day,
				Product:  product,
				Category: cfg.Category,
				Sales:    units,
				Revenue:  revenue,
				Profit:   float64(revenue) * ratio,
				Region:   region,
			})
		}
	}
	return records
}
