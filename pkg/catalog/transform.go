// pkg/catalog/transform.go
package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Flatten emits one candidate per variant, tied to its parent product title.
// Unparseable or empty prices become zero.
func Flatten(products []Product) []Candidate {
	var out []Candidate
	for _, p := range products {
		for _, v := range p.Variants {
			price, err := decimal.NewFromString(strings.TrimSpace(v.Price))
			if err != nil {
				price = decimal.Zero
			}
			out = append(out, Candidate{
				Product:  p.Title,
				Variant:  v.Title,
				SKU:      v.SKU,
				Price:    price,
				Quantity: v.InventoryQuantity,
			})
		}
	}
	return out
}

// FilterInStock keeps candidates with a strictly positive quantity.
func FilterInStock(candidates []Candidate) []Candidate {
	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Quantity > 0 {
			out = append(out, c)
		}
	}
	return out
}

// Project reduces candidates to report rows, dropping price.
func Project(candidates []Candidate) Table {
	table := make(Table, 0, len(candidates))
	for _, c := range candidates {
		table = append(table, Row{
			Product:  c.Product,
			SKU:      c.SKU,
			Variant:  c.Variant,
			Quantity: c.Quantity,
		})
	}
	return table
}

// Build runs flatten, filter and project in order.
func Build(products []Product) Table {
	return Project(FilterInStock(Flatten(products)))
}

// Summary describes a fetched catalog for the run log.
type Summary struct {
	Products   int
	Variants   int
	InStock    int
	Units      int
	StockValue decimal.Decimal
}

// Summarize counts variants and totals in-stock units and their value at list price.
func Summarize(products []Product) Summary {
	s := Summary{Products: len(products), StockValue: decimal.Zero}
	for _, c := range Flatten(products) {
		s.Variants++
		if c.Quantity <= 0 {
			continue
		}
		s.InStock++
		s.Units += c.Quantity
		s.StockValue = s.StockValue.Add(c.Price.Mul(decimal.NewFromInt(int64(c.Quantity))))
	}
	return s
}
