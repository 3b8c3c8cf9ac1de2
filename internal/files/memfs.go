package files

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// MemFS is an in-memory FileSystem. Directories are implied by file paths.
type MemFS struct {
	mu      sync.RWMutex
	files   map[string][]byte
	exclude []string
}

// NewMemFS creates an empty in-memory file system
func NewMemFS(exclude ...string) *MemFS {
	return &MemFS{
		files:   make(map[string][]byte),
		exclude: exclude,
	}
}

// WriteFile stores content at path
func (m *MemFS) WriteFile(path string, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[filepath.Clean(path)] = []byte(content)
}

// Remove deletes path and everything beneath it
func (m *MemFS) Remove(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = filepath.Clean(path)
	prefix := path + string(filepath.Separator)
	for p := range m.files {
		if p == path || strings.HasPrefix(p, prefix) {
			delete(m.files, p)
		}
	}
}

// Excluded implements FileSystem
func (m *MemFS) Excluded(path string) bool {
	return matchExcluded(m.exclude, path)
}

// ListFiles implements FileSystem
func (m *MemFS) ListFiles(dir string, recursive bool, exts ...string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []string
	for p := range m.files {
		rel, ok := m.relativeTo(dir, p)
		if !ok || !hasExtension(p, exts) {
			continue
		}
		if !recursive && strings.Contains(rel, string(filepath.Separator)) {
			continue
		}
		result = append(result, rel)
	}
	sort.Strings(result)
	return result, nil
}

// ListDirectories implements FileSystem
func (m *MemFS) ListDirectories(dir string, recursive bool) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]struct{})
	for p := range m.files {
		rel, ok := m.relativeTo(dir, p)
		if !ok {
			continue
		}
		parts := strings.Split(rel, string(filepath.Separator))
		// The last part is the file itself
		for i := 1; i < len(parts); i++ {
			if !recursive && i > 1 {
				break
			}
			seen[filepath.Join(parts[:i]...)] = struct{}{}
		}
	}

	result := make([]string, 0, len(seen))
	for d := range seen {
		result = append(result, d)
	}
	sort.Strings(result)
	return result, nil
}

// relativeTo returns p relative to dir, skipping excluded directories on the way
func (m *MemFS) relativeTo(dir, p string) (string, bool) {
	dir = filepath.Clean(dir)
	prefix := dir + string(filepath.Separator)
	if !strings.HasPrefix(p, prefix) {
		return "", false
	}
	rel := strings.TrimPrefix(p, prefix)
	parts := strings.Split(rel, string(filepath.Separator))
	for i := 0; i < len(parts)-1; i++ {
		if matchExcluded(m.exclude, filepath.Join(dir, filepath.Join(parts[:i+1]...))) {
			return "", false
		}
	}
	return rel, true
}

// Exists implements FileSystem
func (m *MemFS) Exists(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	path = filepath.Clean(path)
	if _, ok := m.files[path]; ok {
		return true
	}
	return m.isDirLocked(path)
}

// IsDir implements FileSystem
func (m *MemFS) IsDir(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.isDirLocked(filepath.Clean(path))
}

func (m *MemFS) isDirLocked(path string) bool {
	prefix := path + string(filepath.Separator)
	for p := range m.files {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

// ReadFile implements FileSystem
func (m *MemFS) ReadFile(path string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	content, ok := m.files[filepath.Clean(path)]
	if !ok {
		return nil, fmt.Errorf("read %s: %w", path, fs.ErrNotExist)
	}
	return content, nil
}
