package platform

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/alexmglover/Deep/pkg/config"
)

// FindRoot looks upwards from startDir for a site root: a directory holding
// deep.yaml or a fields.yaml declaration file. It returns the absolute path
// of the first one found.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if hasFile(dir, config.FileName) || hasFile(dir, "fields.yaml") {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("no %s found above %s", config.FileName, abs)
}

func hasFile(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}
