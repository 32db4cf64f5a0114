// pkg/mailer/smtp.go
package mailer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/heinrichb/inventoryreport/pkg/mailer")

// Send stages reported by DispatchFailure.
const (
	StageCompose  = "compose"
	StageConnect  = "connect"
	StageStartTLS = "starttls"
	StageAuth     = "auth"
	StageSubmit   = "submit"
	StageQuit     = "quit"
)

// DispatchFailure reports which step of composing or sending the email failed.
type DispatchFailure struct {
	Stage string
	Err   error
}

func (f *DispatchFailure) Error() string {
	return fmt.Sprintf("send email (%s): %v", f.Stage, f.Err)
}

func (f *DispatchFailure) Unwrap() error { return f.Err }

// Transport submits a rendered message to every envelope recipient in one transaction.
type Transport interface {
	Send(ctx context.Context, from string, to []string, msg []byte) error
}

/*
SMTPTransport sends through a submission server: connect, STARTTLS,
PLAIN auth, MAIL/RCPT/DATA, QUIT.

Fields:
  - Host, Port: Submission server address.
  - Username:   Login user, usually the sender address.
  - Password:   Login password.
  - Timeout:    Dial timeout and overall deadline when ctx has none (0 = none).
  - TLSConfig:  Optional; defaults to verifying Host.
*/
type SMTPTransport struct {
	Host      string
	Port      int
	Username  string
	Password  string
	Timeout   time.Duration
	TLSConfig *tls.Config
}

func (t *SMTPTransport) Send(ctx context.Context, from string, to []string, msg []byte) error {
	addr := net.JoinHostPort(t.Host, strconv.Itoa(t.Port))

	d := net.Dialer{Timeout: t.Timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return &DispatchFailure{Stage: StageConnect, Err: err}
	}
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	} else if t.Timeout > 0 {
		conn.SetDeadline(time.Now().Add(t.Timeout))
	}

	c, err := smtp.NewClient(conn, t.Host)
	if err != nil {
		conn.Close()
		return &DispatchFailure{Stage: StageConnect, Err: err}
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); !ok {
		return &DispatchFailure{Stage: StageStartTLS, Err: errors.New("server does not advertise STARTTLS")}
	}
	tlsCfg := t.TLSConfig
	if tlsCfg == nil {
		tlsCfg = &tls.Config{ServerName: t.Host}
	}
	if err := c.StartTLS(tlsCfg); err != nil {
		return &DispatchFailure{Stage: StageStartTLS, Err: err}
	}

	if err := c.Auth(smtp.PlainAuth("", t.Username, t.Password, t.Host)); err != nil {
		return &DispatchFailure{Stage: StageAuth, Err: err}
	}

	if err := c.Mail(from); err != nil {
		return &DispatchFailure{Stage: StageSubmit, Err: err}
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return &DispatchFailure{Stage: StageSubmit, Err: fmt.Errorf("rcpt %s: %w", rcpt, err)}
		}
	}
	w, err := c.Data()
	if err != nil {
		return &DispatchFailure{Stage: StageSubmit, Err: err}
	}
	if _, err := w.Write(msg); err != nil {
		w.Close()
		return &DispatchFailure{Stage: StageSubmit, Err: err}
	}
	if err := w.Close(); err != nil {
		return &DispatchFailure{Stage: StageSubmit, Err: err}
	}

	if err := c.Quit(); err != nil {
		return &DispatchFailure{Stage: StageQuit, Err: err}
	}
	return nil
}

/*
Deliver renders msg and hands it to t. Every error comes back as a
*DispatchFailure; nothing is retried.
*/
func Deliver(ctx context.Context, t Transport, msg *Message) error {
	ctx, span := tracer.Start(ctx, "mailer.send")
	defer span.End()
	span.SetAttributes(
		attribute.Int("mail.recipients", len(msg.To)),
		attribute.Int("mail.attachments", len(msg.Attachments)),
	)

	raw, err := msg.Bytes()
	if err != nil {
		return fail(span, &DispatchFailure{Stage: StageCompose, Err: err})
	}

	if err := t.Send(ctx, msg.From, msg.To, raw); err != nil {
		var df *DispatchFailure
		if errors.As(err, &df) {
			return fail(span, df)
		}
		return fail(span, &DispatchFailure{Stage: StageSubmit, Err: err})
	}
	return nil
}

func fail(span trace.Span, df *DispatchFailure) error {
	span.RecordError(df)
	span.SetStatus(codes.Error, df.Stage)
	return df
}
