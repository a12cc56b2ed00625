package models

import "time"

// FilterCriteria is the conjunctive predicate applied to the sales table.
// Products and Regions are selection sets; an empty set selects nothing.
type FilterCriteria struct {
	Start    time.Time
	End      time.Time
	Products []string
	Regions  []string
}

// TimeRange bounds the inclusive date window of a filter.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the inclusive window.
func (r TimeRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Range returns the criteria date window.
func (c FilterCriteria) Range() TimeRange {
	return TimeRange{Start: c.Start, End: c.End}
}

// DashboardRequest captures a recompute call from the presentation layer.
type DashboardRequest struct {
	Criteria     FilterCriteria
	PreviewLimit int
}

// CriteriaEcho is the serialisable form of the criteria that produced a result.
type CriteriaEcho struct {
	Start    string   `json:"start"`
	End      string   `json:"end"`
	Products []string `json:"products"`
	Regions  []string `json:"regions"`
}

// EchoCriteria renders criteria for responses and cache keys.
func EchoCriteria(c FilterCriteria) CriteriaEcho {
	return CriteriaEcho{
		Start:    c.Start.Format(DateLayout),
		End:      c.End.Format(DateLayout),
		Products: append([]string{}, c.Products...),
		Regions:  append([]string{}, c.Regions...),
	}
}

// DashboardQuery is the unresolved filter selection received from a transport.
// Empty dates fall back to the table bounds. A nil Products or Regions slice selects
// every catalog value, while a non-nil empty slice selects none.
type DashboardQuery struct {
	Start    string   `json:"start" validate:"omitempty,datetime=2006-01-02"`
	End      string   `json:"end" validate:"omitempty,datetime=2006-01-02"`
	Products []string `json:"products" validate:"omitempty,dive,required"`
	Regions  []string `json:"regions" validate:"omitempty,dive,required"`
	Limit    int      `json:"limit" validate:"gte=0"`
}
