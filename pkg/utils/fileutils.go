// pkg/utils/fileutils.go
package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DateLayout is the calendar date format shared by every report filename.
const DateLayout = "2006-01-02"

/*
SaveToFile writes the provided data to dir/filename, creating dir if needed.

Parameters:
  - dir: The directory where the file will be saved.
  - filename: The name of the file.
  - data: The bytes to write, unchanged.

Returns:
  - string: The full path of the written file.
  - error: An error object if the save fails, otherwise nil.
*/
func SaveToFile(dir string, filename string, data []byte) (string, error) {
	if err := CreateDirectoryIfNotExist(dir); err != nil {
		return "", err
	}

	fullPath := filepath.Join(dir, filename)

	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write to file %s: %w", fullPath, err)
	}

	return fullPath, nil
}

/*
LoadFromFile reads the raw bytes of the file at path.

Returns:
  - []byte: The content of the file.
  - error: An error object if the file is missing or unreadable.
*/
func LoadFromFile(path string) ([]byte, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("file %s does not exist", path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	return content, nil
}

/*
CreateDirectoryIfNotExist checks if a directory exists, and creates it if it doesn't.
*/
func CreateDirectoryIfNotExist(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", path, err)
		}
	}
	return nil
}

// DateStamp formats t as a year-month-day stamp for report filenames.
func DateStamp(t time.Time) string {
	return t.Format(DateLayout)
}
