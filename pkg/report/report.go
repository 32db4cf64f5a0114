// pkg/report/report.go

// Package report renders the inventory table to files.
package report

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/heinrichb/inventoryreport/pkg/catalog"
	"github.com/heinrichb/inventoryreport/pkg/utils"
)

var tracer = otel.Tracer("github.com/heinrichb/inventoryreport/pkg/report")

// Artifact is one rendered report file.
type Artifact struct {
	Name        string
	ContentType string
	Path        string
	Data        []byte
}

// Format renders a table into a single file type.
type Format interface {
	Extension() string
	ContentType() string
	Encode(table catalog.Table) ([]byte, error)
}

// SerializationFailure means a format could not be rendered or written.
type SerializationFailure struct {
	Name string
	Err  error
}

func (f *SerializationFailure) Error() string {
	return fmt.Sprintf("serialize %s: %v", f.Name, f.Err)
}

func (f *SerializationFailure) Unwrap() error { return f.Err }

// FileName is Inventory_<date>.<ext>.
func FileName(date, ext string) string {
	return fmt.Sprintf("Inventory_%s.%s", date, ext)
}

/*
FormatByName resolves a configured format name.

Parameters:
  - name:      "xlsx" or "csv" (case-insensitive).
  - sheetName: worksheet name used by xlsx.
*/
func FormatByName(name, sheetName string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "xlsx":
		return XLSX{SheetName: sheetName}, nil
	case "csv":
		return CSV{}, nil
	default:
		return nil, fmt.Errorf("unknown report format %q", name)
	}
}

/*
Render encodes table once per format and writes each file to dir before
moving to the next. On failure it returns the artifacts already written
together with a *SerializationFailure; those files are left in place.
*/
func Render(ctx context.Context, dir, date string, table catalog.Table, formats []Format) ([]Artifact, error) {
	_, span := tracer.Start(ctx, "report.persist")
	defer span.End()

	artifacts := make([]Artifact, 0, len(formats))
	for _, format := range formats {
		name := FileName(date, format.Extension())

		data, err := format.Encode(table)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "encode failed")
			return artifacts, &SerializationFailure{Name: name, Err: err}
		}

		path, err := utils.SaveToFile(dir, name, data)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "write failed")
			return artifacts, &SerializationFailure{Name: name, Err: err}
		}

		artifacts = append(artifacts, Artifact{
			Name:        name,
			ContentType: format.ContentType(),
			Path:        path,
			Data:        data,
		})
	}

	span.SetAttributes(
		attribute.Int("report.rows", len(table)),
		attribute.Int("report.files", len(artifacts)),
	)
	return artifacts, nil
}
