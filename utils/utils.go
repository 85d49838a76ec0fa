package utils

import (
	"errors"
	"os"
	"path/filepath"
)

// RootMarkers are the files that identify a plugin bundle directory.
var RootMarkers = []string{"manifest.json", "config.yaml"}

// GetRootPath walks up from the working directory looking for a plugin bundle
// marker. The host launches plugins from inside their bundle, so the working
// directory is the usual answer; the executable's directory is the fallback.
func GetRootPath() string {
	if dir, err := os.Getwd(); err == nil {
		if root, ok := findRoot(dir); ok {
			return root
		}
	}

	if exe, err := os.Executable(); err == nil {
		dir := filepath.Dir(exe)
		if root, ok := findRoot(dir); ok {
			return root
		}
		return dir
	}

	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

func findRoot(dir string) (string, bool) {
	for {
		for _, marker := range RootMarkers {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir, true
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// MkdirIfNotExists creates the directory for path. A path with an extension is
// treated as a file and its parent directory is created. Relative paths are
// resolved against GetRootPath.
func MkdirIfNotExists(path string) error {
	if path == "" {
		return errors.New("path cannot be empty")
	}

	path = ResolvePath(path)

	if filepath.Ext(path) != "" {
		path = filepath.Dir(path)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, 0755)
	}
	return nil
}

// ResolvePath makes a relative path absolute against the plugin root.
func ResolvePath(path string) string {
	path = filepath.Clean(path)
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(GetRootPath(), path)
}
