// pkg/report/report_test.go
package report

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/heinrichb/inventoryreport/pkg/catalog"
)

func sampleTable() catalog.Table {
	return catalog.Table{
		{Product: "Leash", SKU: "L1", Variant: "Red", Quantity: 5},
		{Product: "Goggles, \"Pro\"", SKU: "", Variant: "Small / Black", Quantity: 12},
		{Product: "Leash", SKU: "L1", Variant: "Red", Quantity: 5},
		{Product: "Bowl", SKU: "00042", Variant: "Default Title", Quantity: 1},
	}
}

func TestCSVRoundTrip(t *testing.T) {
	table := sampleTable()

	data, err := CSV{}.Encode(table)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if !bytes.HasPrefix(data, []byte("PRODUCT,SKU,VARIANT,QUANTITY\n")) {
		t.Fatalf("missing header row: %q", data)
	}

	got, err := ParseCSV(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}
	if !reflect.DeepEqual(got, table) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, table)
	}

	again, err := CSV{}.Encode(got)
	if err != nil {
		t.Fatalf("second Encode() error = %v", err)
	}
	if !bytes.Equal(again, data) {
		t.Fatalf("second encoding differs:\n%s\n%s", again, data)
	}
}

func TestCSVEmptyTable(t *testing.T) {
	data, err := CSV{}.Encode(catalog.Table{})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if string(data) != "PRODUCT,SKU,VARIANT,QUANTITY\n" {
		t.Fatalf("unexpected output %q", data)
	}
	got, err := ParseCSV(bytes.NewReader(data))
	if err != nil || len(got) != 0 {
		t.Fatalf("ParseCSV() = %v, %v", got, err)
	}
}

func TestParseCSVRejectsForeignHeader(t *testing.T) {
	if _, err := ParseCSV(bytes.NewReader([]byte("Product,Variant,SKU,Price\n"))); err == nil {
		t.Fatalf("expected header error")
	}
}

func TestXLSXEncode(t *testing.T) {
	table := sampleTable()
	format := XLSX{SheetName: "Inventory"}

	data, err := format.Encode(table)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	if sheets := f.GetSheetList(); !reflect.DeepEqual(sheets, []string{"Inventory"}) {
		t.Fatalf("expected one sheet named Inventory, got %v", sheets)
	}
	rows, err := f.GetRows("Inventory")
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if !reflect.DeepEqual(rows[0], catalog.Columns) {
		t.Fatalf("header = %v", rows[0])
	}
	if len(rows) != len(table)+1 {
		t.Fatalf("expected %d rows, got %d", len(table)+1, len(rows))
	}
	for i, row := range table {
		want := row.Values()
		got := rows[i+1]
		for len(got) < len(want) {
			got = append(got, "")
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("row %d = %v, want %v", i+1, got, want)
		}
	}
}

func TestFormatByName(t *testing.T) {
	if f, err := FormatByName(" XLSX ", "S"); err != nil || f.Extension() != "xlsx" {
		t.Fatalf("FormatByName(xlsx) = %v, %v", f, err)
	}
	if f, err := FormatByName("csv", ""); err != nil || f.Extension() != "csv" {
		t.Fatalf("FormatByName(csv) = %v, %v", f, err)
	}
	if _, err := FormatByName("pdf", ""); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestFileName(t *testing.T) {
	if got := FileName("2024-03-07", "xlsx"); got != "Inventory_2024-03-07.xlsx" {
		t.Fatalf("FileName() = %s", got)
	}
}

func TestRenderWritesEveryFormat(t *testing.T) {
	dir := t.TempDir()
	table := sampleTable()

	artifacts, err := Render(context.Background(), dir, "2024-03-07", table, []Format{XLSX{}, CSV{}})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if len(artifacts) != 2 {
		t.Fatalf("expected 2 artifacts, got %d", len(artifacts))
	}

	wantNames := []string{"Inventory_2024-03-07.xlsx", "Inventory_2024-03-07.csv"}
	for i, a := range artifacts {
		if a.Name != wantNames[i] {
			t.Fatalf("artifact %d name = %s, want %s", i, a.Name, wantNames[i])
		}
		if a.Path != filepath.Join(dir, a.Name) {
			t.Fatalf("artifact %d path = %s", i, a.Path)
		}
		onDisk, err := os.ReadFile(a.Path)
		if err != nil {
			t.Fatalf("read %s: %v", a.Path, err)
		}
		if !bytes.Equal(onDisk, a.Data) {
			t.Fatalf("%s on disk differs from artifact data", a.Name)
		}
	}
	if artifacts[1].ContentType != "text/csv" {
		t.Fatalf("csv content type = %s", artifacts[1].ContentType)
	}
}

type brokenFormat struct{}

func (brokenFormat) Extension() string   { return "pdf" }
func (brokenFormat) ContentType() string { return "application/pdf" }
func (brokenFormat) Encode(catalog.Table) ([]byte, error) {
	return nil, errors.New("no renderer")
}

func TestRenderKeepsEarlierFilesOnFailure(t *testing.T) {
	dir := t.TempDir()

	artifacts, err := Render(context.Background(), dir, "2024-03-07", sampleTable(), []Format{CSV{}, brokenFormat{}, XLSX{}})
	var failure *SerializationFailure
	if !errors.As(err, &failure) {
		t.Fatalf("expected *SerializationFailure, got %v", err)
	}
	if failure.Name != "Inventory_2024-03-07.pdf" {
		t.Fatalf("failure name = %s", failure.Name)
	}
	if len(artifacts) != 1 || artifacts[0].Name != "Inventory_2024-03-07.csv" {
		t.Fatalf("expected only the csv artifact, got %+v", artifacts)
	}
	if _, err := os.Stat(filepath.Join(dir, "Inventory_2024-03-07.csv")); err != nil {
		t.Fatalf("csv should remain on disk: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "Inventory_2024-03-07.xlsx")); !os.IsNotExist(err) {
		t.Fatalf("xlsx should not be written after the failure")
	}
}

func TestRenderUnwritableDirectory(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	_, err := Render(context.Background(), filepath.Join(blocker, "out"), "2024-03-07", sampleTable(), []Format{CSV{}})
	var failure *SerializationFailure
	if !errors.As(err, &failure) {
		t.Fatalf("expected *SerializationFailure, got %v", err)
	}
}
