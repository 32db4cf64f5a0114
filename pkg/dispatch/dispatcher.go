// pkg/dispatch/dispatcher.go

// Package dispatch turns an inventory table into report files and emails them.
package dispatch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heinrichb/inventoryreport/pkg/archive"
	"github.com/heinrichb/inventoryreport/pkg/catalog"
	"github.com/heinrichb/inventoryreport/pkg/mailer"
	"github.com/heinrichb/inventoryreport/pkg/report"
	"github.com/heinrichb/inventoryreport/pkg/runstate"
	"github.com/heinrichb/inventoryreport/pkg/utils"
)

/*
Settings holds everything a Dispatcher needs from configuration.

  - Brand, Contact: Fill the subject and body templates.
  - Sender:         From address and envelope sender.
  - Recipients:     Ordered; duplicates are sent as given.
  - SaveDir:        Where report files are written.
  - Formats:        One file per format, in order.
  - DryRun:         Stop after the files are written.
*/
type Settings struct {
	Brand      string
	Contact    string
	Sender     string
	Recipients []string
	SaveDir    string
	Formats    []report.Format
	DryRun     bool
}

// Dispatcher renders, persists, archives and emails one report per call.
type Dispatcher struct {
	settings  Settings
	transport mailer.Transport
	sinks     []archive.Sink
	now       func() time.Time
	logger    *slog.Logger
}

// Option customizes a Dispatcher.
type Option func(*Dispatcher)

// WithClock replaces time.Now for the report date stamp.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

// WithArchive adds sinks that receive a copy of each written file.
func WithArchive(sinks ...archive.Sink) Option {
	return func(d *Dispatcher) { d.sinks = append(d.sinks, sinks...) }
}

// WithLogger sets the logger; the default discards.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = logger }
}

// New returns a Dispatcher sending through transport.
func New(settings Settings, transport mailer.Transport, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		settings:  settings,
		transport: transport,
		now:       time.Now,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Result is the outcome of one Dispatch call.
type Result struct {
	Trail         runstate.Trail
	Date          string
	Artifacts     []report.Artifact
	ArchiveErrors []error
	DryRun        bool
	Err           error
}

// State is the last state reached.
func (r Result) State() runstate.State { return r.Trail.Current() }

// OK reports whether the report was delivered, or written in a dry run.
func (r Result) OK() bool {
	if r.DryRun {
		return r.State() == runstate.FilesWritten
	}
	return r.State() == runstate.Sent
}

/*
Dispatch writes table in every configured format, archives the files,
then emails them. Files stay on disk whatever happens afterwards; a
send failure is returned in Result.Err as a *mailer.DispatchFailure and
a write failure as a *report.SerializationFailure.
*/
func (d *Dispatcher) Dispatch(ctx context.Context, table catalog.Table) Result {
	res := Result{DryRun: d.settings.DryRun}

	res.Trail.Advance(runstate.Serializing)
	res.Date = utils.DateStamp(d.now())
	artifacts, err := report.Render(ctx, d.settings.SaveDir, res.Date, table, d.settings.Formats)
	res.Artifacts = artifacts
	if err != nil {
		d.logger.Error("report serialization failed", "error", err, "written", len(artifacts))
		res.Err = err
		res.Trail.Advance(runstate.SerializeFailed)
		return res
	}
	res.Trail.Advance(runstate.FilesWritten)
	for _, a := range artifacts {
		d.logger.Info("report written", "path", a.Path, "bytes", len(a.Data))
	}

	res.ArchiveErrors = archive.UploadAll(ctx, d.logger, d.sinks, artifacts)

	if d.settings.DryRun {
		d.logger.Info("dry run: email skipped", "recipients", len(d.settings.Recipients))
		return res
	}

	res.Trail.Advance(runstate.Sending)
	msg, err := d.compose(artifacts)
	if err == nil {
		err = mailer.Deliver(ctx, d.transport, msg)
	}
	if err != nil {
		d.logger.Error("email failed", "error", err)
		res.Err = err
		res.Trail.Advance(runstate.SendFailed)
		return res
	}

	d.logger.Info("email sent", "recipients", len(d.settings.Recipients), "attachments", len(artifacts))
	res.Trail.Advance(runstate.Sent)
	return res
}

// compose attaches each file as read back from disk.
func (d *Dispatcher) compose(artifacts []report.Artifact) (*mailer.Message, error) {
	attachments := make([]report.Artifact, 0, len(artifacts))
	for _, a := range artifacts {
		data, err := utils.LoadFromFile(a.Path)
		if err != nil {
			return nil, &mailer.DispatchFailure{Stage: mailer.StageCompose, Err: err}
		}
		a.Data = data
		attachments = append(attachments, a)
	}

	return &mailer.Message{
		From:        d.settings.Sender,
		To:          d.settings.Recipients,
		Subject:     mailer.Subject(d.settings.Brand),
		Body:        mailer.Body(d.settings.Brand, d.settings.Contact),
		Date:        d.now(),
		MessageID:   messageID(d.settings.Sender),
		Attachments: attachments,
	}, nil
}

func messageID(sender string) string {
	domain := "localhost"
	if _, host, ok := strings.Cut(sender, "@"); ok && host != "" {
		domain = strings.TrimRight(host, ">")
	}
	return fmt.Sprintf("<%s@%s>", uuid.NewString(), domain)
}
