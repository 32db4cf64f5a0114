// pkg/utils/fileutils_test.go
package utils

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type testData struct {
	Name string `json:"name"`
	Qty  int    `json:"qty"`
}

/*
TestSaveToFile tests the SaveToFile utility function with:
  - Nested directories created on demand
  - Byte array data written byte-for-byte
  - An existing file being replaced
*/
func TestSaveToFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "output")

	path, err := SaveToFile(dir, "Inventory_2024-03-07.csv", []byte("PRODUCT,SKU,VARIANT,QUANTITY\n"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if path != filepath.Join(dir, "Inventory_2024-03-07.csv") {
		t.Fatalf("Unexpected path %s", path)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatalf("Expected file to exist, but it does not")
	}

	if _, err := SaveToFile(dir, "Inventory_2024-03-07.csv", []byte("replaced")); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got, _ := os.ReadFile(path); string(got) != "replaced" {
		t.Fatalf("Expected file to be replaced, got %q", got)
	}

	raw := []byte{0x50, 0x4b, 0x03, 0x04, 0x00, 0xff}
	binPath, err := SaveToFile(dir, "bytes_file.bin", raw)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	got, err := os.ReadFile(binPath)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !bytes.Equal(got, raw) {
		t.Fatalf("bytes changed on write: %v", got)
	}
}

func TestSaveToFileUnwritableDir(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if _, err := SaveToFile(filepath.Join(blocker, "sub"), "a.txt", []byte("data")); err == nil {
		t.Fatalf("Expected an error writing beneath a regular file")
	}
}

/*
TestLoadFromFile tests LoadFromFile for existing and non-existing files.
*/
func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	raw, err := json.Marshal(testData{Name: "Leash", Qty: 5})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	path, err := SaveToFile(dir, "data.json", raw)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	content, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var loaded testData
	if err := json.Unmarshal(content, &loaded); err != nil {
		t.Fatalf("Expected valid JSON, got error: %v", err)
	}
	if loaded.Name != "Leash" || loaded.Qty != 5 {
		t.Fatalf("Data mismatch. Got %+v", loaded)
	}

	if _, err := LoadFromFile(filepath.Join(dir, "nonexistent.json")); err == nil {
		t.Fatalf("Expected an error, but got none")
	}
}

func TestCreateDirectoryIfNotExist(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "new_directory")

	if err := CreateDirectoryIfNotExist(dir); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		t.Fatalf("Expected directory to exist, but it does not")
	}
	if err := CreateDirectoryIfNotExist(dir); err != nil {
		t.Fatalf("Expected existing directory to be accepted, got %v", err)
	}
}

func TestDateStamp(t *testing.T) {
	ts := time.Date(2024, time.March, 7, 23, 59, 0, 0, time.UTC)
	if got := DateStamp(ts); got != "2024-03-07" {
		t.Fatalf("Expected 2024-03-07, got %s", got)
	}
}
