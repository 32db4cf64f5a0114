// pkg/catalog/types.go

// Package catalog retrieves product inventory from the Shopify Admin API and
// reshapes it into report rows.
package catalog

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// Product is one entry of the products.json listing.
type Product struct {
	Title    string    `json:"title"`
	Variants []Variant `json:"variants"`
}

// Variant is a purchasable configuration of a product. A null SKU decodes to "".
type Variant struct {
	Title             string `json:"title"`
	SKU               string `json:"sku"`
	Price             string `json:"price"`
	InventoryQuantity int    `json:"inventory_quantity"`
}

type productsPage struct {
	Products []Product `json:"products"`
}

// Report column names, in output order.
const (
	ColumnProduct  = "PRODUCT"
	ColumnSKU      = "SKU"
	ColumnVariant  = "VARIANT"
	ColumnQuantity = "QUANTITY"
)

// Columns is the header row of every rendered report.
var Columns = []string{ColumnProduct, ColumnSKU, ColumnVariant, ColumnQuantity}

// Candidate is a flattened variant before filtering and projection.
type Candidate struct {
	Product  string
	Variant  string
	SKU      string
	Price    decimal.Decimal
	Quantity int
}

// Row is one line of the inventory report. Quantity is always positive.
type Row struct {
	Product  string
	SKU      string
	Variant  string
	Quantity int
}

// Values returns the row's fields in Columns order.
func (r Row) Values() []string {
	return []string{r.Product, r.SKU, r.Variant, strconv.Itoa(r.Quantity)}
}

// Table is the ordered report body: products in listing order, then variants.
type Table []Row
