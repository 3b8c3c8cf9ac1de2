package files

import "sync"

// Overlay serves live editor buffers in place of disk content. Everything
// else is delegated to the wrapped FileSystem, so callers cannot tell which
// source a file came from.
type Overlay struct {
	base FileSystem

	mu      sync.RWMutex
	buffers map[string][]byte
}

// NewOverlay wraps base with an empty buffer set
func NewOverlay(base FileSystem) *Overlay {
	return &Overlay{
		base:    base,
		buffers: make(map[string][]byte),
	}
}

// SetBuffer records the live content of an open document
func (o *Overlay) SetBuffer(path string, content []byte) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.buffers[path] = append([]byte(nil), content...)
}

// ClearBuffer drops the live content of a closed document
func (o *Overlay) ClearBuffer(path string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.buffers, path)
}

// HasBuffer reports whether path is currently served from memory
func (o *Overlay) HasBuffer(path string) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	_, ok := o.buffers[path]
	return ok
}

// ReadFile implements FileSystem
func (o *Overlay) ReadFile(path string) ([]byte, error) {
	o.mu.RLock()
	content, ok := o.buffers[path]
	o.mu.RUnlock()
	if ok {
		return content, nil
	}
	return o.base.ReadFile(path)
}

// Exists implements FileSystem
func (o *Overlay) Exists(path string) bool {
	if o.HasBuffer(path) {
		return true
	}
	return o.base.Exists(path)
}

// IsDir implements FileSystem
func (o *Overlay) IsDir(path string) bool {
	return o.base.IsDir(path)
}

// ListFiles implements FileSystem
func (o *Overlay) ListFiles(dir string, recursive bool, exts ...string) ([]string, error) {
	return o.base.ListFiles(dir, recursive, exts...)
}

// ListDirectories implements FileSystem
func (o *Overlay) ListDirectories(dir string, recursive bool) ([]string, error) {
	return o.base.ListDirectories(dir, recursive)
}

// Excluded implements FileSystem
func (o *Overlay) Excluded(path string) bool {
	return o.base.Excluded(path)
}
