package files

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// FileSystem is the read-only view of a project the indexer works against.
// Listing methods return paths relative to dir, sorted. A missing dir is not
// an error: it lists nothing.
type FileSystem interface {
	ListFiles(dir string, recursive bool, exts ...string) ([]string, error)
	ListDirectories(dir string, recursive bool) ([]string, error)
	Exists(path string) bool
	IsDir(path string) bool
	ReadFile(path string) ([]byte, error)
	// Excluded reports whether the directory is skipped by every scan: the
	// built-in skip names or a configured pattern
	Excluded(path string) bool
}

var defaultSkipDirs = map[string]struct{}{
	".git":         {},
	".idea":        {},
	".vscode":      {},
	"node_modules": {},
	"vendor":       {},
}

// OSFileSystem reads from disk and applies exclusion patterns while walking
type OSFileSystem struct {
	exclude []string
}

// NewOSFileSystem creates a disk-backed FileSystem. Patterns are directory
// names or doublestar globs matched against each directory's base name and
// its slash-separated path.
func NewOSFileSystem(exclude ...string) *OSFileSystem {
	patterns := make([]string, 0, len(exclude))
	for _, p := range exclude {
		p = strings.TrimSpace(p)
		if p != "" {
			patterns = append(patterns, filepath.ToSlash(p))
		}
	}
	return &OSFileSystem{exclude: patterns}
}

// Excluded implements FileSystem
func (f *OSFileSystem) Excluded(path string) bool {
	return matchExcluded(f.exclude, path)
}

func matchExcluded(patterns []string, path string) bool {
	base := filepath.Base(path)
	if _, skip := defaultSkipDirs[base]; skip {
		return true
	}
	slashed := strings.TrimPrefix(filepath.ToSlash(path), "/")
	for _, pattern := range patterns {
		if pattern == base {
			return true
		}
		if matched, err := doublestar.Match(pattern, base); err == nil && matched {
			return true
		}
		if strings.Contains(pattern, "/") {
			if matched, err := doublestar.Match(pattern, slashed); err == nil && matched {
				return true
			}
			if matched, err := doublestar.Match("**/"+pattern, slashed); err == nil && matched {
				return true
			}
		}
	}
	return false
}

// ListFiles implements FileSystem
func (f *OSFileSystem) ListFiles(dir string, recursive bool, exts ...string) ([]string, error) {
	var result []string
	err := f.walk(dir, recursive, func(rel string, d fs.DirEntry) {
		if d.IsDir() || !hasExtension(d.Name(), exts) {
			return
		}
		result = append(result, rel)
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(result)
	return result, nil
}

// ListDirectories implements FileSystem
func (f *OSFileSystem) ListDirectories(dir string, recursive bool) ([]string, error) {
	var result []string
	err := f.walk(dir, recursive, func(rel string, d fs.DirEntry) {
		if d.IsDir() {
			result = append(result, rel)
		}
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(result)
	return result, nil
}

func (f *OSFileSystem) walk(dir string, recursive bool, visit func(rel string, d fs.DirEntry)) error {
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			// Unreadable entries below the root are skipped
			return nil
		}
		if path == dir {
			return nil
		}
		if d.IsDir() && f.Excluded(path) {
			return filepath.SkipDir
		}

		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			return nil
		}
		visit(rel, d)

		if d.IsDir() && !recursive {
			return filepath.SkipDir
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Exists implements FileSystem
func (f *OSFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsDir implements FileSystem
func (f *OSFileSystem) IsDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// ReadFile implements FileSystem
func (f *OSFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func hasExtension(name string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, want := range exts {
		if ext == strings.ToLower(want) {
			return true
		}
	}
	return false
}
