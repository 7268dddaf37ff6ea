package looprunner

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// maxFilesPerPass caps file enumeration, matching the original service's
// "cap at 100 files per pass" behavior.
const maxFilesPerPass = 100

// excludedDirs are well-known artifact directories never scanned for
// candidate source files: build outputs, dependency caches, version-control
// metadata, virtual environment roots, and egg-info.
var excludedDirs = map[string]bool{
	"__pycache__": true, ".git": true, "node_modules": true,
	".venv": true, "venv": true, ".tox": true,
	"dist": true, "build": true,
}

// relevantFiles enumerates Python source files under root, excluding
// well-known artifact directories, capped at maxFilesPerPass. Python is the
// language focus inherited from the service this was ported from; a future
// loop descriptor targeting another language would need its own predicate
// here.
func relevantFiles(root string) []string {
	if root == "" {
		root = "."
	}
	var files []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			name := d.Name()
			if excludedDirs[name] || strings.HasSuffix(name, ".egg-info") {
				return filepath.SkipDir
			}
			return nil
		}
		if len(files) >= maxFilesPerPass {
			return filepath.SkipAll
		}
		if strings.HasSuffix(path, ".py") {
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)
	if len(files) > maxFilesPerPass {
		files = files[:maxFilesPerPass]
	}
	return files
}
