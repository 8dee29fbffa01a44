// Package walk implements the CLI's `-r`/`-R` recursive input-file
// discovery, grounded on termfx-morfx/core/filewalker.go's directory
// scanner: symlink-dedup tracking by resolved path, doublestar glob
// matching against an include pattern, instead of termfx-morfx's full
// worker-pool (htmlq only needs to build one []string of input paths
// before parsing, not stream results under a context).
package walk

import (
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// Options controls one directory scan (spec.md §6 "-r/-R (recursive,
// with/without symlink deref)").
type Options struct {
	FollowSymlinks bool
	// Pattern restricts discovered files to those whose basename matches
	// this doublestar glob; empty matches everything.
	Pattern string
}

// Discover walks root recursively and returns the paths of every regular
// file found, applying Options.Pattern and following symlinked
// directories only when FollowSymlinks is set (the `-R` vs `-r` split).
func Discover(root string, opt Options) ([]string, error) {
	var out []string
	visited := map[string]struct{}{}
	if opt.FollowSymlinks {
		if resolved, err := filepath.EvalSymlinks(root); err == nil {
			visited[resolved] = struct{}{}
		}
	}
	err := scan(root, opt, visited, &out)
	return out, err
}

func scan(dir string, opt Options, visited map[string]struct{}, out *[]string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		full := filepath.Join(dir, entry.Name())
		isSymlink := entry.Type()&os.ModeSymlink != 0
		if isSymlink && !opt.FollowSymlinks {
			continue
		}
		if isSymlink {
			resolved, err := filepath.EvalSymlinks(full)
			if err != nil {
				continue
			}
			info, err := os.Stat(resolved)
			if err != nil {
				continue
			}
			if info.IsDir() {
				if _, seen := visited[resolved]; seen {
					continue
				}
				visited[resolved] = struct{}{}
				if err := scan(full, opt, visited, out); err != nil {
					return err
				}
			} else if matches(entry.Name(), opt.Pattern) {
				*out = append(*out, full)
			}
			continue
		}
		if entry.IsDir() {
			if err := scan(full, opt, visited, out); err != nil {
				return err
			}
			continue
		}
		if matches(entry.Name(), opt.Pattern) {
			*out = append(*out, full)
		}
	}
	return nil
}

func matches(name, pattern string) bool {
	if pattern == "" {
		return true
	}
	ok, err := doublestar.PathMatch(pattern, name)
	return err == nil && ok
}
