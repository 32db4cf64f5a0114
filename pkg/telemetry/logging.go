// pkg/telemetry/logging.go

// Package telemetry sets up logging and tracing for a report run.
package telemetry

import (
	"io"
	"log/slog"

	"github.com/heinrichb/inventoryreport/pkg/utils"
)

// NewLogger returns a JSON logger when json is set, otherwise a colored
// console logger. verbose lowers the level to debug.
func NewLogger(w io.Writer, json, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	if json {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(utils.NewColorHandler(w, level))
}
