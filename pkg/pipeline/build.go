// pkg/pipeline/build.go
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/heinrichb/inventoryreport/pkg/archive"
	"github.com/heinrichb/inventoryreport/pkg/catalog"
	"github.com/heinrichb/inventoryreport/pkg/config"
	"github.com/heinrichb/inventoryreport/pkg/dispatch"
	"github.com/heinrichb/inventoryreport/pkg/mailer"
	"github.com/heinrichb/inventoryreport/pkg/report"
)

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }

// NewFetcher builds the catalog fetcher described by cfg.
func NewFetcher(cfg *config.Config, logger *slog.Logger) *catalog.Fetcher {
	c := cfg.Catalog
	return catalog.NewFetcher(catalog.Options{
		BaseURL:     c.BaseURL,
		APIVersion:  c.APIVersion,
		Token:       c.AccessToken,
		TokenHeader: c.TokenHeader,
		PageSize:    c.PageSize,
		MaxPages:    c.MaxPages,
		Timeout:     seconds(c.TimeoutSeconds),
		Logger:      logger,
	})
}

// Formats resolves the configured format names in order.
func Formats(cfg *config.Config) ([]report.Format, error) {
	formats := make([]report.Format, 0, len(cfg.Report.Formats))
	for _, name := range cfg.Report.Formats {
		f, err := report.FormatByName(name, cfg.Report.SheetName)
		if err != nil {
			return nil, err
		}
		formats = append(formats, f)
	}
	return formats, nil
}

// Sinks returns the archive sinks enabled in cfg.
func Sinks(ctx context.Context, cfg *config.Config) ([]archive.Sink, error) {
	var sinks []archive.Sink
	if s := cfg.Archive.SFTP; s.Active {
		sinks = append(sinks, &archive.SFTPSink{
			Host:           s.Host,
			Port:           s.Port,
			Username:       s.Username,
			PrivateKeyPath: s.PrivateKeyPath,
			KnownHostsPath: s.KnownHostsPath,
			RemoteDir:      s.RemoteDir,
		})
	}
	if s := cfg.Archive.S3; s.Active {
		sink, err := archive.NewS3Sink(ctx, s.Bucket, s.Prefix, s.Region)
		if err != nil {
			return nil, fmt.Errorf("s3 archive: %w", err)
		}
		sinks = append(sinks, sink)
	}
	return sinks, nil
}

// NewDispatcher builds the dispatcher described by cfg, sending over SMTP.
func NewDispatcher(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*dispatch.Dispatcher, error) {
	formats, err := Formats(cfg)
	if err != nil {
		return nil, err
	}
	sinks, err := Sinks(ctx, cfg)
	if err != nil {
		return nil, err
	}

	transport := &mailer.SMTPTransport{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Sender,
		Password: cfg.SMTP.Password,
		Timeout:  seconds(cfg.SMTP.TimeoutSeconds),
	}
	settings := dispatch.Settings{
		Brand:      cfg.Brand,
		Contact:    cfg.Contact,
		Sender:     cfg.SMTP.Sender,
		Recipients: cfg.SMTP.Recipients,
		SaveDir:    cfg.Storage.SavePath,
		Formats:    formats,
		DryRun:     cfg.Report.DryRun,
	}
	opts := []dispatch.Option{dispatch.WithArchive(sinks...)}
	if logger != nil {
		opts = append(opts, dispatch.WithLogger(logger))
	}
	return dispatch.New(settings, transport, opts...), nil
}
