// =============================================================================
// FZ10 Ingest - File Manager Utility
// =============================================================================
//
// This module provides file management utilities shared by the fetch cache
// and the exporter:
//   - Directory management
//   - Atomic file writes (temp file + rename)
//   - Cache file naming
//
// CACHE STRATEGY:
//   - Downloaded workbooks are cached per reporting period
//   - Cache writes are atomic so an interrupted download never leaves a
//     truncated blob behind
//   - Cache files are plain .xlsx blobs and can be inspected by hand
//
// =============================================================================

package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// EnsureDir creates a directory (and parents) if it does not exist.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// FileExists checks if a path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// WriteFileAtomic writes data to path via a temporary file in the same
// directory followed by a rename, so readers never observe a partial write.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := EnsureDir(dir); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// CacheFileName returns the canonical cache file name for one reporting
// period, mirroring the file names the KBA uses for the downloads.
func CacheFileName(year, month int) string {
	return fmt.Sprintf("fz10_%d_%02d.xlsx", year, month)
}

// GetFileSize returns the size of a file in bytes.
func GetFileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("failed to stat file: %w", err)
	}
	return info.Size(), nil
}

// GetFileModTime returns the modification time of a file.
func GetFileModTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to stat file: %w", err)
	}
	return info.ModTime(), nil
}
