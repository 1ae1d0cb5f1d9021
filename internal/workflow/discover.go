package workflow

import (
	"os"
	"path/filepath"

	"github.com/matthewhughes934/gha-enforce-sha/internal/errs"
)

// DefaultDir is searched for workflow files when no paths are given on
// the command line.
const DefaultDir = ".github/workflows"

// Discover lists the YAML files directly inside workDir/.github/workflows.
// It does not recurse. workDir is explicit so callers (and tests) never
// depend on the process working directory.
func Discover(workDir string) ([]string, error) {
	dir := filepath.Join(workDir, DefaultDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errs.Userf("cannot list paths in '%s': it doesn't exist or isn't a directory", dir)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".yaml", ".yml":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	return paths, nil
}
