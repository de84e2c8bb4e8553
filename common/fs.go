package common

import (
	"os"
	"path/filepath"
)

// Expand `target` relative to given path if its a relative path, else it will
// be returned unchanged. Empty string will be returned as empty string.
func ResolveRelativePath(target, relativeTo string) string {
	if target == "" {
		return target
	}

	if filepath.IsAbs(target) {
		return target
	}

	target = filepath.Join(relativeTo, target)
	target = filepath.Clean(target)

	return target
}

// IsFile reports whether `path` exists and is a regular file.
func IsFile(path string) bool {
	stat, err := os.Stat(path)
	return err == nil && stat.Mode().IsRegular()
}

// IsDir reports whether `path` exists and is a directory.
func IsDir(path string) bool {
	stat, err := os.Stat(path)
	return err == nil && stat.IsDir()
}
