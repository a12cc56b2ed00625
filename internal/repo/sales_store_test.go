package repo

import (
	"testing"
)

func TestSalesStoreGeneratesOnce(t *testing.T) {
	store := NewSalesStore(testConfig(date(2024, 1, 1), date(2024, 1, 31)), nil)

	first := store.Records()
	second := store.Records()
	if len(first) != 31*4 || store.Len() != len(first) {
		t.Fatalf("unexpected table size %d", len(first))
	}
	if &first[0] != &second[0] {
		t.Fatalf("expected the cached table to be reused")
	}
}

func TestSalesStoreRecordsCannotGrowSharedTable(t *testing.T) {
	store := NewSalesStore(testConfig(date(2024, 1, 1), date(2024, 1, 2)), nil)
	records := store.Records()
	_ = append(records, records[0])
	if store.Len() != 8 {
		t.Fatalf("appending to the returned slice must not change the store")
	}
}

func TestSalesStoreOptions(t *testing.T) {
	store := NewSalesStore(testConfig(date(2024, 1, 1), date(2024, 3, 31)), nil)
	opts := store.Options()
	if opts.MinDate != "2024-01-01" || opts.MaxDate != "2024-03-31" {
		t.Fatalf("unexpected bounds %s..%s", opts.MinDate, opts.MaxDate)
	}
	if len(opts.Products) != 4 || opts.Products[0] != "MacBook" {
		t.Fatalf("unexpected products %v", opts.Products)
	}
	if len(opts.Regions) != 4 || opts.Regions[1] != "North America" {
		t.Fatalf("unexpected regions %v", opts.Regions)
	}
	if opts.Rows != 91*4 {
		t.Fatalf("unexpected row count %d", opts.Rows)
	}
}

func TestSalesStoreEmptyWindowBounds(t *testing.T) {
	store := NewSalesStore(testConfig(date(2024, 2, 1), date(2024, 1, 1)), nil)
	minDate, maxDate := store.Bounds()
	if !minDate.Equal(date(2024, 2, 1)) || !maxDate.Equal(date(2024, 1, 1)) {
		t.Fatalf("expected configured window for empty table, got %v..%v", minDate, maxDate)
	}
}
