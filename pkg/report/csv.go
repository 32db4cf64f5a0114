// pkg/report/csv.go
package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/heinrichb/inventoryreport/pkg/catalog"
)

// CSV renders a comma-delimited file with a header row.
type CSV struct{}

func (CSV) Extension() string   { return "csv" }
func (CSV) ContentType() string { return "text/csv" }

func (CSV) Encode(table catalog.Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(catalog.Columns); err != nil {
		return nil, err
	}
	for _, row := range table {
		if err := w.Write(row.Values()); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ParseCSV reads a file produced by CSV.Encode back into a table.
func ParseCSV(r io.Reader) (catalog.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(catalog.Columns)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if !slices.Equal(header, catalog.Columns) {
		return nil, fmt.Errorf("unexpected header %v", header)
	}

	table := catalog.Table{}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		qty, err := strconv.Atoi(rec[3])
		if err != nil {
			return nil, fmt.Errorf("line %d: quantity %q: %w", len(table)+2, rec[3], err)
		}
		table = append(table, catalog.Row{Product: rec[0], SKU: rec[1], Variant: rec[2], Quantity: qty})
	}
	return table, nil
}
