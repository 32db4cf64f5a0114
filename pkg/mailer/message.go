// pkg/mailer/message.go

// Package mailer composes the report email and submits it over SMTP.
package mailer

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/textproto"
	"strings"
	"time"

	"github.com/heinrichb/inventoryreport/pkg/report"
)

// Message is one outbound report email. To keeps duplicates and order.
type Message struct {
	From        string
	To          []string
	Subject     string
	Body        string
	Date        time.Time
	MessageID   string
	Attachments []report.Artifact
}

// Subject is "<brand> Monthly Inventory Report".
func Subject(brand string) string {
	return brand + " Monthly Inventory Report"
}

// Body is the fixed plain-text template. contact is appended when set.
func Body(brand, contact string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Hello! Please find attached the latest %s monthly inventory report.\n\n", brand)
	sb.WriteString("This is an automated email; please do not reply.\n\n")
	if contact != "" {
		sb.WriteString(contact)
		sb.WriteString("\n\n")
	}
	return sb.String()
}

const base64LineLength = 76

// Bytes renders the message as a multipart/mixed RFC 5322 document with CRLF line endings.
func (m *Message) Bytes() ([]byte, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	text, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {"text/plain; charset=utf-8"},
		"Content-Transfer-Encoding": {"quoted-printable"},
	})
	if err != nil {
		return nil, err
	}
	qp := quotedprintable.NewWriter(text)
	if _, err := qp.Write([]byte(strings.ReplaceAll(m.Body, "\n", "\r\n"))); err != nil {
		return nil, err
	}
	if err := qp.Close(); err != nil {
		return nil, err
	}

	for _, a := range m.Attachments {
		contentType := a.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		part, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {mime.FormatMediaType(contentType, map[string]string{"name": a.Name})},
			"Content-Transfer-Encoding": {"base64"},
			"Content-Disposition":       {fmt.Sprintf("attachment; filename=%q", a.Name)},
		})
		if err != nil {
			return nil, err
		}
		if err := writeBase64(part, a.Data); err != nil {
			return nil, fmt.Errorf("encode %s: %w", a.Name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	date := m.Date
	if date.IsZero() {
		date = time.Now()
	}

	var msg bytes.Buffer
	writeHeader(&msg, "From", m.From)
	writeHeader(&msg, "To", strings.Join(m.To, ", "))
	writeHeader(&msg, "Subject", mime.QEncoding.Encode("utf-8", m.Subject))
	writeHeader(&msg, "Date", date.Format(time.RFC1123Z))
	if m.MessageID != "" {
		writeHeader(&msg, "Message-ID", m.MessageID)
	}
	writeHeader(&msg, "MIME-Version", "1.0")
	writeHeader(&msg, "Content-Type", mime.FormatMediaType("multipart/mixed", map[string]string{"boundary": mw.Boundary()}))
	msg.WriteString("\r\n")
	msg.Write(body.Bytes())

	return msg.Bytes(), nil
}

func writeHeader(buf *bytes.Buffer, key, value string) {
	buf.WriteString(key)
	buf.WriteString(": ")
	buf.WriteString(value)
	buf.WriteString("\r\n")
}

func writeBase64(w io.Writer, data []byte) error {
	encoded := base64.StdEncoding.EncodeToString(data)
	for len(encoded) > 0 {
		n := min(base64LineLength, len(encoded))
		if _, err := w.Write([]byte(encoded[:n] + "\r\n")); err != nil {
			return err
		}
		encoded = encoded[n:]
	}
	return nil
}
