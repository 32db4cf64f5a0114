// cmd/inventoryreport/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/heinrichb/inventoryreport/pkg/config"
	"github.com/heinrichb/inventoryreport/pkg/pipeline"
	"github.com/heinrichb/inventoryreport/pkg/telemetry"
	"github.com/heinrichb/inventoryreport/pkg/utils"
)

/*
Command-line arguments.

- configPath: The path to the configuration file.
- verbose:    Enables debug logging.
- jsonLogs:   Emits JSON log lines instead of colored console output.
- dryRun:     Writes the report files but skips the email.
*/
var (
	configPath string
	verbose    bool
	jsonLogs   bool
	dryRun     bool
)

func init() {
	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.StringVar(&configPath, "c", "", "Path to config file (shorthand)")
	flag.BoolVar(&verbose, "verbose", false, "Enable verbose output")
	flag.BoolVar(&verbose, "v", false, "Enable verbose output (shorthand)")
	flag.BoolVar(&jsonLogs, "json", false, "Log as JSON")
	flag.BoolVar(&dryRun, "dry-run", false, "Write report files without sending email")
}

func main() {
	flag.Parse()
	os.Exit(run())
}

/*
run loads the configuration, fetches the catalog and dispatches the
report. The returned value is the process exit code.
*/
func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !jsonLogs {
		utils.PrintColored("Starting Inventory Report!", "", utils.HexInfo)
	}
	logger := telemetry.NewLogger(os.Stderr, jsonLogs, verbose)

	if configPath == "" {
		configPath = "configs/default.json"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error("failed to load config", "path", configPath, "error", err)
		return pipeline.ExitConfig
	}
	if dryRun {
		cfg.Report.DryRun = true
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "path", configPath, "error", err)
		return pipeline.ExitConfig
	}

	shutdown, err := telemetry.Setup(ctx, telemetry.TraceOptions{
		ServiceName:    "inventoryreport",
		ServiceVersion: cfg.Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		SampleRatio:    cfg.Telemetry.SampleRatio,
		Disabled:       cfg.Telemetry.Disabled,
	})
	if err != nil {
		logger.Warn("tracing disabled", "error", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(flushCtx); err != nil {
			logger.Warn("trace flush failed", "error", err)
		}
	}()

	dispatcher, err := pipeline.NewDispatcher(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to prepare dispatch", "error", err)
		return pipeline.ExitConfig
	}

	out := pipeline.Run(ctx, logger, pipeline.NewFetcher(cfg, logger), dispatcher)
	if !jsonLogs {
		report(out)
	}
	return out.ExitCode()
}

func report(out pipeline.Outcome) {
	if !out.OK() {
		utils.PrintColored("Inventory report failed at ", string(out.State()), utils.HexError)
		return
	}
	msg := fmt.Sprintf("%d rows, %d files", out.Rows, len(out.Dispatch.Artifacts))
	if out.Dispatch.DryRun {
		utils.PrintColored("Dry run complete: ", msg, utils.HexSuccess)
		return
	}
	utils.PrintColored("Inventory report sent: ", msg, utils.HexSuccess)
}
