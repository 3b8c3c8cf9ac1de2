package workspace

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/doITmagic/october-code-mcp/internal/config"
	"github.com/doITmagic/october-code-mcp/internal/files"
	"github.com/doITmagic/october-code-mcp/internal/october"
	"github.com/doITmagic/october-code-mcp/internal/phpast"
	"github.com/doITmagic/october-code-mcp/internal/platform"
)

// ErrProjectNotOpen is returned for paths outside every opened project
var ErrProjectNotOpen = errors.New("project not open")

// Manager is the registry of opened projects. Indexing, file change
// handling and queries all run under one mutex, so watcher goroutines and
// callers never observe a half-updated project.
type Manager struct {
	mu sync.Mutex

	config   *config.Config
	overlay  *files.Overlay
	detector *Detector

	projects map[string]*session

	watchersMu sync.Mutex
	watchers   map[string]*FileWatcher
}

// session is everything kept for one opened project
type session struct {
	info     *Info
	project  *october.Project
	cache    *phpast.Cache
	indexer  *october.Indexer
	resolver *october.Resolver
}

// NewManager creates a manager reading projects from disk
func NewManager(cfg *config.Config) *Manager {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return NewManagerWithFS(cfg, files.NewOSFileSystem(cfg.Project.Exclude...))
}

// NewManagerWithFS creates a manager over an arbitrary file system
func NewManagerWithFS(cfg *config.Config, fsys files.FileSystem) *Manager {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	overlay := files.NewOverlay(fsys)
	pluginsDir := cfg.Project.PluginsDir
	if pluginsDir == "" {
		pluginsDir = config.DefaultPluginsDir
	}
	return &Manager{
		config:   cfg,
		overlay:  overlay,
		detector: NewDetector(overlay, pluginsDir),
		projects: make(map[string]*session),
		watchers: make(map[string]*FileWatcher),
	}
}

// FileSystem returns the buffer-aware file system the manager reads through
func (m *Manager) FileSystem() files.FileSystem {
	return m.overlay
}

// Open detects the platform version of root, discovers its owners and
// indexes them. Opening an already open project returns it unchanged.
func (m *Manager) Open(ctx context.Context, root string) (*Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	m.mu.Lock()
	if s, ok := m.projects[root]; ok {
		m.mu.Unlock()
		return s.info, nil
	}
	s, err := m.load(root)
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}
	m.projects[root] = s
	m.mu.Unlock()

	if m.config.Watch.Enabled {
		if err := m.StartWatcher(root); err != nil {
			log.Printf("[WARN] File watching disabled for %s: %v", root, err)
		}
	}
	return s.info, nil
}

// OpenPath opens the project containing path
func (m *Manager) OpenPath(ctx context.Context, path string) (*Info, error) {
	detected, err := m.detector.DetectFromPath(path)
	if err != nil {
		return nil, err
	}
	info, err := m.Open(ctx, detected.Root)
	if err != nil {
		return nil, err
	}
	return info, nil
}

// load builds and indexes a project. Callers hold m.mu.
func (m *Manager) load(root string) (*session, error) {
	version, err := platform.Detect(m.overlay, root)
	if err != nil {
		return nil, fmt.Errorf("failed to detect platform version of %s: %w", root, err)
	}

	start := time.Now()
	project := october.NewProject(root, platform.New(version), october.OptionsFromConfig(m.config.Project))
	cache := phpast.NewCache()
	s := &session{
		project:  project,
		cache:    cache,
		indexer:  october.NewIndexer(m.overlay, cache, project),
		resolver: october.NewResolver(m.overlay, cache, project),
	}
	stats := s.indexer.IndexProject()

	var markers []string
	if detected, err := m.detector.DetectFromPath(root); err == nil && detected.Root == root {
		markers = detected.Markers
	}
	s.info = &Info{
		Root:     root,
		ID:       generateProjectID(root),
		Version:  version.String(),
		Markers:  markers,
		OpenedAt: time.Now(),
		Stats:    stats,
	}

	log.Printf("[INFO] Indexed %s (%s): %d owners, %d entities in %s",
		root, version, stats.Owners, stats.Entities, time.Since(start).Round(time.Millisecond))
	if stats.Failed > 0 {
		log.Printf("[WARN] %d owners of %s were indexed partially", stats.Failed, root)
	}
	return s, nil
}

// Close stops watching root and drops its model
func (m *Manager) Close(root string) error {
	root = filepath.Clean(root)

	m.mu.Lock()
	_, ok := m.projects[root]
	delete(m.projects, root)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%s: %w", root, ErrProjectNotOpen)
	}

	m.StopWatcher(root)
	return nil
}

// CloseAll closes every project
func (m *Manager) CloseAll() {
	for _, root := range m.Roots() {
		_ = m.Close(root)
	}
}

// Roots lists the opened project roots, sorted
func (m *Manager) Roots() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	roots := make([]string, 0, len(m.projects))
	for root := range m.projects {
		roots = append(roots, root)
	}
	sort.Strings(roots)
	return roots
}

// Info returns the description of an opened project
func (m *Manager) Info(root string) (*Info, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.sessionAt(filepath.Clean(root))
	if err != nil {
		return nil, err
	}
	info := *s.info
	info.Watching = m.isWatching(s.info.Root)
	return &info, nil
}

func (m *Manager) sessionAt(root string) (*session, error) {
	s, ok := m.projects[root]
	if !ok {
		return nil, fmt.Errorf("%s: %w", root, ErrProjectNotOpen)
	}
	return s, nil
}

// sessionFor returns the opened project containing path; the deepest root
// wins when projects are nested
func (m *Manager) sessionFor(path string) (*session, error) {
	path = filepath.Clean(path)
	var best *session
	for root, s := range m.projects {
		if !s.project.Contains(path) {
			continue
		}
		if best == nil || len(root) > len(best.info.Root) {
			best = s
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%s: %w", path, ErrProjectNotOpen)
	}
	return best, nil
}

// Query runs fn against the project at root while holding the manager lock.
// fn must not call back into the manager.
func (m *Manager) Query(root string, fn func(*october.Project, *october.Resolver) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.sessionAt(filepath.Clean(root))
	if err != nil {
		return err
	}
	return fn(s.project, s.resolver)
}

// QueryPath is Query for the project containing path
func (m *Manager) QueryPath(path string, fn func(*october.Project, *october.Resolver) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.sessionFor(path)
	if err != nil {
		return err
	}
	return fn(s.project, s.resolver)
}

// Project returns the model of an opened project. The returned project must
// only be read while no change is being handled; prefer Query.
func (m *Manager) Project(root string) (*october.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.sessionAt(filepath.Clean(root))
	if err != nil {
		return nil, err
	}
	return s.project, nil
}

// ProjectFor returns the opened project containing path
func (m *Manager) ProjectFor(path string) (*october.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.sessionFor(path)
	if err != nil {
		return nil, err
	}
	return s.project, nil
}

// FindOwner returns the owner containing path, or nil
func (m *Manager) FindOwner(path string) *october.Owner {
	var owner *october.Owner
	_ = m.QueryPath(path, func(p *october.Project, _ *october.Resolver) error {
		owner = p.FindOwner(path)
		return nil
	})
	return owner
}

// FindEntity returns the entity indexed for path, or nil
func (m *Manager) FindEntity(path string) *october.Class {
	var cls *october.Class
	_ = m.QueryPath(path, func(p *october.Project, _ *october.Resolver) error {
		cls = p.FindEntity(path)
		return nil
	})
	return cls
}

// FindEntityByFqn searches the project at root for a class name
func (m *Manager) FindEntityByFqn(root, fqn string) *october.Class {
	var cls *october.Class
	_ = m.Query(root, func(p *october.Project, _ *october.Resolver) error {
		cls = p.FindEntityByFqn(fqn)
		return nil
	})
	return cls
}

// manifestFiles trigger a full reload since they decide the platform version
var manifestFiles = map[string]bool{
	"composer.json": true,
	"composer.lock": true,
}

// HandleChange applies one file system change to the project containing
// path. A changed directory is indexed file by file.
func (m *Manager) HandleChange(path string, op Op) error {
	path = filepath.Clean(path)

	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.sessionFor(path)
	if err != nil {
		return err
	}

	if filepath.Dir(path) == s.info.Root && manifestFiles[filepath.Base(path)] {
		return m.reloadLocked(s)
	}

	if op == Deleted {
		if removed := s.indexer.DeletePath(path); len(removed) > 0 {
			log.Printf("[INFO] Removed %d entities under %s", len(removed), path)
		}
		return nil
	}

	if m.overlay.IsDir(path) {
		names, err := m.overlay.ListFiles(path, true, ".php")
		if err != nil {
			return fmt.Errorf("failed to list %s: %w", path, err)
		}
		for _, name := range names {
			s.indexer.IndexFile(filepath.Join(path, name))
		}
		return nil
	}

	if cls, change := s.indexer.IndexFile(path); change != october.Unchanged && cls != nil {
		log.Printf("[INFO] %s: %s %s", change, cls.Kind, cls.FQN)
	}
	return nil
}

// Reload rebuilds the project at root from scratch
func (m *Manager) Reload(root string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.sessionAt(filepath.Clean(root))
	if err != nil {
		return err
	}
	return m.reloadLocked(s)
}

func (m *Manager) reloadLocked(s *session) error {
	fresh, err := m.load(s.info.Root)
	if err != nil {
		return err
	}
	*s = *fresh
	return nil
}

// SetBuffer serves content for path instead of the file on disk and
// re-indexes it
func (m *Manager) SetBuffer(path string, content []byte) error {
	path = filepath.Clean(path)
	m.overlay.SetBuffer(path, content)
	return m.HandleChange(path, Changed)
}

// ClearBuffer goes back to the disk content of path
func (m *Manager) ClearBuffer(path string) error {
	path = filepath.Clean(path)
	m.overlay.ClearBuffer(path)
	if !m.overlay.Exists(path) {
		return m.HandleChange(path, Deleted)
	}
	return m.HandleChange(path, Changed)
}
