package workspace

import (
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

var watchSkipDirs = map[string]struct{}{
	".git":         {},
	".idea":        {},
	".vscode":      {},
	"node_modules": {},
	"vendor":       {},
	"storage":      {},
}

// FileWatcher forwards file system notifications for one project root to
// Manager.HandleChange. Events are coalesced per path and flushed after a
// quiet period.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	root     string
	manager  *Manager
	debounce time.Duration
	stopChan chan struct{}
	stopOnce sync.Once

	pendingMu sync.Mutex
	pending   map[string]Op
	timer     *time.Timer
}

// NewFileWatcher creates a watcher for root
func NewFileWatcher(root string, manager *Manager, debounce time.Duration) (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &FileWatcher{
		watcher:  w,
		root:     root,
		manager:  manager,
		debounce: debounce,
		stopChan: make(chan struct{}),
		pending:  make(map[string]Op),
	}, nil
}

// Start registers every directory of the tree and begins the event loop
func (fw *FileWatcher) Start() {
	fw.addTree(fw.root)
	log.Printf("[INFO] Watcher started for %s", fw.root)
	go fw.watchLoop()
}

// addTree watches dir and every directory below it that is not skipped
func (fw *FileWatcher) addTree(dir string) {
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != fw.root && fw.skip(path) {
			return filepath.SkipDir
		}
		if err := fw.watcher.Add(path); err != nil {
			log.Printf("[WARN] Unable to watch %s: %v", path, err)
		}
		return nil
	})
	if err != nil {
		log.Printf("[WARN] Error walking %s for watcher setup: %v", dir, err)
	}
}

func (fw *FileWatcher) skip(dir string) bool {
	base := filepath.Base(dir)
	if _, skip := watchSkipDirs[base]; skip {
		return true
	}
	if strings.HasPrefix(base, ".") {
		return true
	}
	return fw.manager.overlay.Excluded(dir)
}

func (fw *FileWatcher) watchLoop() {
	defer fw.watcher.Close()

	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			// Chmod is too noisy and never changes content
			if event.Op == fsnotify.Chmod {
				continue
			}

			if event.Op.Has(fsnotify.Create) {
				info, err := os.Stat(event.Name)
				if err == nil && info.IsDir() && !fw.skip(event.Name) {
					// a copied-in tree arrives with its subdirectories already present
					fw.addTree(event.Name)
				}
			}

			fw.enqueue(event.Name, opFor(event.Op))

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[ERROR] Watcher error: %v", err)

		case <-fw.stopChan:
			return
		}
	}
}

// opFor maps an fsnotify operation to a change kind. A rename reports the
// old name; the new name arrives as a separate Create.
func opFor(op fsnotify.Op) Op {
	if op.Has(fsnotify.Remove) || op.Has(fsnotify.Rename) {
		return Deleted
	}
	return Changed
}

func (fw *FileWatcher) enqueue(path string, op Op) {
	fw.pendingMu.Lock()
	defer fw.pendingMu.Unlock()

	fw.pending[path] = op
	if fw.timer != nil {
		fw.timer.Stop()
	}
	fw.timer = time.AfterFunc(fw.debounce, fw.flush)
}

// flush hands the coalesced changes to the manager in path order
func (fw *FileWatcher) flush() {
	fw.pendingMu.Lock()
	batch := fw.pending
	fw.pending = make(map[string]Op)
	fw.pendingMu.Unlock()

	paths := make([]string, 0, len(batch))
	for path := range batch {
		paths = append(paths, path)
	}
	// parents before children, so a new directory is indexed before its files
	sort.Strings(paths)

	for _, path := range paths {
		if err := fw.manager.HandleChange(path, batch[path]); err != nil {
			log.Printf("[WARN] Failed to apply change to %s: %v", path, err)
		}
	}
}

// Stop ends the event loop and cancels any pending flush
func (fw *FileWatcher) Stop() {
	fw.stopOnce.Do(func() {
		close(fw.stopChan)
		fw.pendingMu.Lock()
		if fw.timer != nil {
			fw.timer.Stop()
		}
		fw.pendingMu.Unlock()
	})
}

// StartWatcher begins watching root. A second call for the same root
// keeps the existing watcher.
func (m *Manager) StartWatcher(root string) error {
	m.watchersMu.Lock()
	defer m.watchersMu.Unlock()

	if _, ok := m.watchers[root]; ok {
		return nil
	}

	debounce := 300 * time.Millisecond
	if m.config != nil && m.config.Watch.DebounceMs > 0 {
		debounce = time.Duration(m.config.Watch.DebounceMs) * time.Millisecond
	}
	fw, err := NewFileWatcher(root, m, debounce)
	if err != nil {
		return err
	}
	m.watchers[root] = fw
	fw.Start()
	return nil
}

// StopWatcher stops watching root, if it was watched
func (m *Manager) StopWatcher(root string) {
	m.watchersMu.Lock()
	fw, ok := m.watchers[root]
	delete(m.watchers, root)
	m.watchersMu.Unlock()
	if ok {
		fw.Stop()
	}
}

func (m *Manager) isWatching(root string) bool {
	m.watchersMu.Lock()
	defer m.watchersMu.Unlock()
	_, ok := m.watchers[root]
	return ok
}
