package pool

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Discover returns the paths of the regular files in dir whose names end
// in ext, sorted by name. Subdirectories are not searched.
func Discover(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ext) || name == ext {
			continue
		}
		paths = append(paths, filepath.Join(dir, name))
	}
	sort.Strings(paths)
	return paths, nil
}

// OutputPath maps a script path to its output file: the same directory and
// base name with outExt in place of jobsExt.
func OutputPath(script, jobsExt, outExt string) string {
	return strings.TrimSuffix(script, jobsExt) + outExt
}
