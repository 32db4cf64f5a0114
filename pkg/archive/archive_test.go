// pkg/archive/archive_test.go
package archive

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/heinrichb/inventoryreport/pkg/report"
)

type memorySink struct {
	name  string
	fail  string
	files map[string][]byte
}

func (m *memorySink) Name() string { return m.name }

func (m *memorySink) Upload(_ context.Context, fileName string, data []byte) error {
	if fileName == m.fail {
		return errors.New("disk quota exceeded")
	}
	if m.files == nil {
		m.files = map[string][]byte{}
	}
	m.files[fileName] = data
	return nil
}

func artifacts() []report.Artifact {
	return []report.Artifact{
		{Name: "Inventory_2024-03-07.xlsx", Data: []byte{0x50, 0x4b}},
		{Name: "Inventory_2024-03-07.csv", Data: []byte("PRODUCT,SKU,VARIANT,QUANTITY\n")},
	}
}

func TestUploadAllContinuesAfterFailure(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	broken := &memorySink{name: "broken", fail: "Inventory_2024-03-07.xlsx"}
	healthy := &memorySink{name: "healthy"}

	errs := UploadAll(context.Background(), logger, []Sink{broken, healthy}, artifacts())
	if len(errs) != 1 {
		t.Fatalf("expected 1 failure, got %v", errs)
	}
	if !strings.Contains(errs[0].Error(), "broken") {
		t.Fatalf("error should name the sink: %v", errs[0])
	}
	if len(broken.files) != 1 || len(healthy.files) != 2 {
		t.Fatalf("unexpected uploads broken=%d healthy=%d", len(broken.files), len(healthy.files))
	}
	if !strings.Contains(logs.String(), "archive upload failed") {
		t.Fatalf("expected warning in logs, got %q", logs.String())
	}
}

func TestUploadAllNoSinks(t *testing.T) {
	if errs := UploadAll(context.Background(), slog.New(slog.NewTextHandler(io.Discard, nil)), nil, artifacts()); errs != nil {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

type fakeS3 struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, f.err
}

func TestS3SinkUpload(t *testing.T) {
	client := &fakeS3{}
	sink := &S3Sink{Client: client, Bucket: "reports", Prefix: "/inventory/"}

	if err := sink.Upload(context.Background(), "Inventory_2024-03-07.csv", []byte("data")); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if *client.input.Bucket != "reports" || *client.input.Key != "inventory/Inventory_2024-03-07.csv" {
		t.Fatalf("unexpected target %s/%s", *client.input.Bucket, *client.input.Key)
	}
	if string(client.body) != "data" || *client.input.ContentLength != 4 {
		t.Fatalf("unexpected body %q", client.body)
	}
	if sink.Name() != "s3://reports/inventory" {
		t.Fatalf("Name() = %s", sink.Name())
	}
}

func TestS3SinkUploadError(t *testing.T) {
	sink := &S3Sink{Client: &fakeS3{err: errors.New("AccessDenied")}, Bucket: "reports"}
	err := sink.Upload(context.Background(), "a.csv", nil)
	if err == nil || !strings.Contains(err.Error(), "s3://reports/a.csv") {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestSFTPSinkMissingKey(t *testing.T) {
	sink := &SFTPSink{
		Host:           "127.0.0.1",
		Port:           22,
		Username:       "inventory",
		PrivateKeyPath: filepath.Join(t.TempDir(), "missing_key"),
		RemoteDir:      "/upload",
	}
	err := sink.Upload(context.Background(), "a.csv", []byte("x"))
	if err == nil || !strings.Contains(err.Error(), "read private key") {
		t.Fatalf("expected private key error, got %v", err)
	}
	if sink.Name() != "sftp://127.0.0.1:22/upload" {
		t.Fatalf("Name() = %s", sink.Name())
	}
}
