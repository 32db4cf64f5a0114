// pkg/report/xlsx.go
package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/heinrichb/inventoryreport/pkg/catalog"
)

const defaultSheet = "Sheet1"

// XLSX renders a single-sheet workbook with a header row.
type XLSX struct {
	SheetName string
}

func (XLSX) Extension() string { return "xlsx" }
func (XLSX) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (x XLSX) Sheet() string {
	if x.SheetName == "" {
		return defaultSheet
	}
	return x.SheetName
}

func (x XLSX) Encode(table catalog.Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := x.Sheet()
	if sheet != defaultSheet {
		if err := f.SetSheetName(defaultSheet, sheet); err != nil {
			return nil, fmt.Errorf("rename sheet: %w", err)
		}
	}

	header := make([]interface{}, len(catalog.Columns))
	for i, c := range catalog.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, row := range table {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := []interface{}{row.Product, row.SKU, row.Variant, row.Quantity}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
