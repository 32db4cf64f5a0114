// pkg/catalog/transform_test.go
package catalog

import (
	"reflect"
	"testing"
)

func leashCatalog() []Product {
	return []Product{{
		Title: "Leash",
		Variants: []Variant{
			{Title: "Red", SKU: "L1", Price: "19.99", InventoryQuantity: 5},
			{Title: "Blue", SKU: "L2", Price: "19.99", InventoryQuantity: 0},
		},
	}}
}

func TestBuildLeashExample(t *testing.T) {
	got := Build(leashCatalog())
	want := Table{{Product: "Leash", SKU: "L1", Variant: "Red", Quantity: 5}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Build() = %+v, want %+v", got, want)
	}
}

func TestFlattenCountsEveryVariant(t *testing.T) {
	var products []Product
	total := 0
	for p := 0; p < 4; p++ {
		product := Product{Title: "P"}
		for v := 0; v < p+2; v++ {
			product.Variants = append(product.Variants, Variant{Title: "V", InventoryQuantity: v - 1})
			total++
		}
		products = append(products, product)
	}

	if got := len(Flatten(products)); got != total {
		t.Fatalf("Flatten produced %d candidates, want %d", got, total)
	}
}

func TestFilterInStockBoundary(t *testing.T) {
	candidates := []Candidate{
		{Product: "A", Quantity: -3},
		{Product: "B", Quantity: 0},
		{Product: "C", Quantity: 1},
		{Product: "D", Quantity: 42},
		{Product: "E", Quantity: -1},
	}

	got := FilterInStock(candidates)
	var names []string
	for _, c := range got {
		if c.Quantity <= 0 {
			t.Fatalf("candidate %s with quantity %d survived filtering", c.Product, c.Quantity)
		}
		names = append(names, c.Product)
	}
	if !reflect.DeepEqual(names, []string{"C", "D"}) {
		t.Fatalf("unexpected survivors %v", names)
	}
}

func TestProjectKeepsOrderAndDropsPrice(t *testing.T) {
	products := []Product{
		{Title: "Goggles", Variants: []Variant{
			{Title: "S", SKU: "G-S", Price: "24.00", InventoryQuantity: 2},
			{Title: "M", SKU: "", Price: "not-a-price", InventoryQuantity: 7},
		}},
		{Title: "Leash", Variants: []Variant{
			{Title: "Red", SKU: "L1", Price: "19.99", InventoryQuantity: 5},
		}},
	}

	got := Build(products)
	want := Table{
		{Product: "Goggles", SKU: "G-S", Variant: "S", Quantity: 2},
		{Product: "Goggles", SKU: "", Variant: "M", Quantity: 7},
		{Product: "Leash", SKU: "L1", Variant: "Red", Quantity: 5},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Build() = %+v, want %+v", got, want)
	}

	if n := reflect.TypeOf(Row{}).NumField(); n != len(Columns) {
		t.Fatalf("Row has %d fields, want %d", n, len(Columns))
	}
	if values := got[0].Values(); !reflect.DeepEqual(values, []string{"Goggles", "G-S", "S", "2"}) {
		t.Fatalf("Values() = %v", values)
	}
}

func TestBuildEmptyCatalog(t *testing.T) {
	got := Build(nil)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil table, got %#v", got)
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(append(leashCatalog(), Product{
		Title:    "Bowl",
		Variants: []Variant{{Title: "Default", Price: "5.50", InventoryQuantity: 2}},
	}))

	if s.Products != 2 || s.Variants != 3 || s.InStock != 2 || s.Units != 7 {
		t.Fatalf("unexpected summary %+v", s)
	}
	if got := s.StockValue.StringFixed(2); got != "110.95" {
		t.Fatalf("StockValue = %s, want 110.95", got)
	}
}
