// pkg/pipeline/pipeline.go

// Package pipeline drives one report run: fetch, then dispatch.
package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/heinrichb/inventoryreport/pkg/catalog"
	"github.com/heinrichb/inventoryreport/pkg/dispatch"
	"github.com/heinrichb/inventoryreport/pkg/runstate"
)

var tracer = otel.Tracer("github.com/heinrichb/inventoryreport/pkg/pipeline")

// Process exit codes.
const (
	ExitOK        = 0
	ExitConfig    = 1
	ExitFetch     = 2
	ExitSerialize = 3
	ExitSend      = 4
)

// Fetcher produces the inventory table.
type Fetcher interface {
	Fetch(ctx context.Context) (catalog.Table, error)
}

// Dispatcher writes and delivers the table.
type Dispatcher interface {
	Dispatch(ctx context.Context, table catalog.Table) dispatch.Result
}

// Outcome is the terminal result of a run.
type Outcome struct {
	RunID    string
	Trail    runstate.Trail
	Rows     int
	Dispatch dispatch.Result
	Err      error
}

// State is the last state reached.
func (o Outcome) State() runstate.State { return o.Trail.Current() }

// OK reports whether the run reached its success state.
func (o Outcome) OK() bool {
	return o.Err == nil && !o.State().Failed()
}

// ExitCode maps the terminal state to the process exit code.
func (o Outcome) ExitCode() int {
	switch o.State() {
	case runstate.FetchFailed:
		return ExitFetch
	case runstate.SerializeFailed:
		return ExitSerialize
	case runstate.SendFailed:
		return ExitSend
	}
	return ExitOK
}

/*
Run fetches the catalog and, only when that succeeds, dispatches the
table. Failures are returned in Outcome and logged with the stage that
failed; Run never panics on a collaborator error.
*/
func Run(ctx context.Context, logger *slog.Logger, f Fetcher, d Dispatcher) Outcome {
	out := Outcome{RunID: uuid.NewString()}
	logger = logger.With("run_id", out.RunID)

	ctx, span := tracer.Start(ctx, "inventoryreport.run")
	defer span.End()
	span.SetAttributes(attribute.String("run.id", out.RunID))

	out.Trail.Advance(runstate.Fetching)
	logger.Info("fetching catalog")
	table, err := f.Fetch(ctx)
	if err != nil {
		out.Err = err
		out.Trail.Advance(runstate.FetchFailed)
		logFetchFailure(logger, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, string(runstate.FetchFailed))
		return out
	}
	out.Rows = len(table)
	out.Trail.Advance(runstate.Fetched)
	logger.Info("catalog ready", "rows", out.Rows)

	res := d.Dispatch(ctx, table)
	out.Dispatch = res
	for _, s := range res.Trail {
		out.Trail.Advance(s)
	}
	out.Err = res.Err
	span.SetAttributes(
		attribute.Int("run.rows", out.Rows),
		attribute.String("run.state", string(out.State())),
	)

	switch {
	case res.Err != nil:
		span.RecordError(res.Err)
		span.SetStatus(codes.Error, string(out.State()))
		logger.Error("run failed", "stage", string(out.State()), "error", res.Err, "files", len(res.Artifacts))
	case len(res.ArchiveErrors) > 0:
		logger.Warn("run finished with archive errors", "state", string(out.State()), "archive_errors", len(res.ArchiveErrors))
	default:
		logger.Info("run finished", "state", string(out.State()), "files", len(res.Artifacts))
	}
	return out
}

func logFetchFailure(logger *slog.Logger, err error) {
	var ff *catalog.FetchFailure
	if errors.As(err, &ff) && ff.StatusCode != 0 {
		logger.Error("catalog fetch failed", "stage", string(runstate.FetchFailed), "status", ff.StatusCode, "body", ff.Body, "url", ff.URL)
		return
	}
	logger.Error("catalog fetch failed", "stage", string(runstate.FetchFailed), "error", err)
}
