// pkg/archive/archive.go

// Package archive copies written report files to remote storage.
package archive

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/heinrichb/inventoryreport/pkg/report"
)

var tracer = otel.Tracer("github.com/heinrichb/inventoryreport/pkg/archive")

// Sink receives a copy of each report file.
type Sink interface {
	Name() string
	Upload(ctx context.Context, fileName string, data []byte) error
}

/*
UploadAll sends every artifact to every sink and returns the failures.
A failing upload does not stop the remaining ones.
*/
func UploadAll(ctx context.Context, logger *slog.Logger, sinks []Sink, artifacts []report.Artifact) []error {
	if len(sinks) == 0 {
		return nil
	}
	ctx, span := tracer.Start(ctx, "archive.upload")
	defer span.End()

	var errs []error
	for _, sink := range sinks {
		for _, a := range artifacts {
			if err := sink.Upload(ctx, a.Name, a.Data); err != nil {
				err = fmt.Errorf("%s: %w", sink.Name(), err)
				errs = append(errs, err)
				span.RecordError(err)
				logger.Warn("archive upload failed", "sink", sink.Name(), "file", a.Name, "error", err)
				continue
			}
			logger.Info("archived report", "sink", sink.Name(), "file", a.Name)
		}
	}

	span.SetAttributes(attribute.Int("archive.failures", len(errs)))
	if len(errs) > 0 {
		span.SetStatus(codes.Error, "archive upload failed")
	}
	return errs
}
