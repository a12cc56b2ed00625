package models

import "time"

// DateLayout is the calendar date format used on every boundary (query params, CSV, config).
const DateLayout = "2006-01-02"

// SalesRecord is one generated row of the sales table. Records are never mutated once generated.
type SalesRecord struct {
	Date     time.Time `json:"date"`
	Product  string    `json:"product"`
	Category string    `json:"category"`
	Sales    int       `json:"sales"`
	Revenue  int64     `json:"revenue"`
	Profit   float64   `json:"profit"`
	Region   string    `json:"region"`
}

// Catalog lists the enumerated dimension values of the sales table in their canonical order.
type Catalog struct {
	Products []string `json:"products"`
	Regions  []string `json:"regions"`
}

// FilterOptions describes the selectable values exposed to dashboard controls.
type FilterOptions struct {
	Catalog
	MinDate string `json:"min_date"`
	MaxDate string `json:"max_date"`
	Rows    int    `json:"rows"`
}
