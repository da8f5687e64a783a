// Package safeio guards filesystem operations against path traversal and
// preserves file permissions on rewrite.
package safeio

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// CleanUserPath cleans a user-provided path and rejects traversal attempts.
// Returned paths use forward slashes for cross-platform consistency.
func CleanUserPath(p string) (string, error) {
	c := filepath.Clean(p)
	if strings.Contains(c, "..") {
		return "", errors.New("path traversal detected")
	}
	return filepath.ToSlash(c), nil
}

// Contained reports whether target resolves to a location inside baseDir.
func Contained(baseDir, target string) (bool, error) {
	baseAbs, err := filepath.Abs(baseDir)
	if err != nil {
		return false, err
	}
	targetAbs, err := filepath.Abs(target)
	if err != nil {
		return false, err
	}
	rel, err := filepath.Rel(baseAbs, targetAbs)
	if err != nil {
		return false, err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false, nil
	}
	return true, nil
}

// ReadFileContained reads a file only if it is contained within baseDir.
func ReadFileContained(baseDir, filePath string) ([]byte, error) {
	ok, err := Contained(baseDir, filePath)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New("file path is outside base directory")
	}
	abs, err := filepath.Abs(filePath)
	if err != nil {
		return nil, err
	}
	// #nosec G304 -- containment verified above
	return os.ReadFile(abs)
}

// WriteFilePreservePerms writes data to path preserving the existing file
// mode when possible. New files get 0644.
func WriteFilePreservePerms(path string, data []byte) error {
	var mode os.FileMode = 0o644
	if st, err := os.Stat(path); err == nil {
		mode = st.Mode() & 0o777
		if mode == 0 {
			mode = 0o644
		}
	}
	return os.WriteFile(path, data, mode)
}
