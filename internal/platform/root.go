package platform

import (
	"errors"
	"os"
	"path/filepath"
)

// RootMarker is the directory that holds a project-local dataset.
const RootMarker = ".aidb"

// ErrRootNotFound is returned by FindRoot when no ancestor holds RootMarker.
var ErrRootNotFound = errors.New("aidb root not found")

// FindRoot looks upwards from startDir for a directory containing RootMarker
// and returns its absolute path.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if isDir(filepath.Join(dir, RootMarker)) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", ErrRootNotFound
}

// DataDir resolves the data directory used by the command line: explicit
// wins, then the nearest RootMarker above startDir, then RootMarker in the
// user's home directory.
func DataDir(explicit, startDir string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if root, err := FindRoot(startDir); err == nil {
		return filepath.Join(root, RootMarker), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, RootMarker), nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
