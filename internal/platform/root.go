package platform

import (
	"fmt"
	"os"
	"path/filepath"
)

// Root markers.
const (
	// DirName is the default store directory of a tally workspace.
	DirName = ".tally"
	// ConfigFileName is the optional configuration file of a workspace.
	ConfigFileName = "tally.yaml"
)

// FindRoot looks upwards from startDir for a directory holding a .tally
// directory or a tally.yaml file and returns its absolute path.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if hasFile(dir, DirName) || hasFile(dir, ConfigFileName) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("root not found")
}

func hasFile(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}
