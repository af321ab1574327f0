// Package filex holds small helpers for files vaultctl writes next to the
// working directory.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureSubdDir creates dirName under the working directory if needed and
// returns its absolute path.
func EnsureSubdDir(dirName string) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getwd: %w", err)
	}

	dir := filepath.Join(cwd, dirName)

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// WritePrivate writes data to dirName/fileName with owner-only permissions,
// replacing any previous file, and returns the full path.
func WritePrivate(dirName, fileName string, data []byte) (string, error) {
	dir, err := EnsureSubdDir(dirName)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, filepath.Base(fileName))
	tmp := path + ".tmp"

	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return "", fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("rename %s: %w", path, err)
	}
	return path, nil
}
