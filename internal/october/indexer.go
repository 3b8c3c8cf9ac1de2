package october

import (
	"bytes"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/doITmagic/october-code-mcp/internal/files"
	"github.com/doITmagic/october-code-mcp/internal/phpast"
)

// Indexer discovers owners and classifies their class files. Bulk indexing
// and single-file indexing share classifyFile, so a file yields the same
// entity whether the project was opened with it or it was added later.
type Indexer struct {
	fs      files.FileSystem
	cache   *phpast.Cache
	project *Project
}

// NewIndexer creates an indexer for project. cache may be nil.
func NewIndexer(fsys files.FileSystem, cache *phpast.Cache, project *Project) *Indexer {
	return &Indexer{fs: fsys, cache: cache, project: project}
}

// Stats summarizes an indexing pass
type Stats struct {
	Owners   int `json:"owners"`
	Entities int `json:"entities"`
	Failed   int `json:"failed_owners"`
}

// IndexProject discovers owners and indexes every backend owner. A failure
// inside one owner is logged and leaves its siblings unaffected.
func (ix *Indexer) IndexProject() Stats {
	ix.Discover()

	var stats Stats
	for _, owner := range ix.project.BackendOwners() {
		if err := ix.IndexOwner(owner); err != nil {
			log.Printf("[WARN] Indexing %s %s stopped early: %v", owner.Kind, owner.Name, err)
			stats.Failed++
		}
		stats.Entities += owner.Count()
	}
	stats.Owners = len(ix.project.Owners())
	return stats
}

// IndexOwner walks the convention directories of one backend owner. Entities
// populated before a failure are kept.
func (ix *Indexer) IndexOwner(owner *Owner) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while indexing: %v", r)
		}
	}()

	if !owner.IsBackend() {
		return nil
	}

	for _, conv := range conventions {
		dir := filepath.Join(owner.Path, filepath.FromSlash(conv.dir))
		if ix.fs.Excluded(dir) {
			continue
		}
		names, err := ix.fs.ListFiles(dir, conv.recursive, ".php")
		if err != nil {
			return fmt.Errorf("failed to list %s: %w", dir, err)
		}
		for _, name := range names {
			path := filepath.Join(dir, name)
			if cls := ix.classifyFile(owner, path, conv.kinds); cls != nil {
				owner.add(cls)
			}
		}
	}
	return nil
}

// classifyFile decides which kind, if any, the class in path belongs to.
// Every failure is contained here and reported as "not classified".
func (ix *Indexer) classifyFile(owner *Owner, path string, kinds []Kind) (cls *Class) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[WARN] Failed to classify %s: %v", path, r)
			cls = nil
		}
	}()

	content, err := ix.fs.ReadFile(path)
	if err != nil {
		log.Printf("[WARN] Failed to read %s: %v", path, err)
		return nil
	}
	if len(bytes.TrimSpace(content)) == 0 {
		return nil
	}

	file := ix.cache.Parse(path, content)
	class := file.Class
	if class == nil || class.Extends == nil {
		return nil
	}

	if class.Anonymous() && !(containsKind(kinds, KindMigration) && ix.project.Platform.SupportsAnonymousMigrations()) {
		return nil
	}

	parent := file.ResolveExtends(*class.Extends)
	for _, kind := range kinds {
		if kind == KindMigration || !class.Anonymous() {
			if AllowedParent(kind, parent) {
				return &Class{Kind: kind, Path: filepath.Clean(path), FQN: entityFQN(file, path)}
			}
		}
	}
	return nil
}

// entityFQN is namespace plus class name; anonymous classes are named after the file
func entityFQN(file *phpast.File, path string) string {
	if file.Class.Anonymous() {
		return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if file.Namespace == "" {
		return file.Class.Name
	}
	return file.Namespace + `\` + file.Class.Name
}

func containsKind(kinds []Kind, k Kind) bool {
	for _, kind := range kinds {
		if kind == k {
			return true
		}
	}
	return false
}

// conventionFor maps a file inside owner to its convention directory
func (ix *Indexer) conventionFor(owner *Owner, path string) (convention, bool) {
	rel, err := filepath.Rel(owner.Path, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return convention{}, false
	}
	rel = filepath.ToSlash(rel)
	dir := filepath.ToSlash(filepath.Dir(rel))

	for _, conv := range conventions {
		matched := dir == conv.dir
		if conv.recursive {
			matched = matched || strings.HasPrefix(dir, conv.dir+"/")
		}
		if !matched {
			continue
		}
		// Every directory between the owner and the file must be included
		current := owner.Path
		for _, segment := range strings.Split(dir, "/") {
			current = filepath.Join(current, segment)
			if ix.fs.Excluded(current) {
				return convention{}, false
			}
		}
		return conv, true
	}
	return convention{}, false
}

// Change describes what IndexFile did
type Change int

const (
	Unchanged Change = iota
	Added
	Updated
	Replaced
	Removed
)

func (c Change) String() string {
	switch c {
	case Added:
		return "added"
	case Updated:
		return "updated"
	case Replaced:
		return "replaced"
	case Removed:
		return "removed"
	}
	return "unchanged"
}

// IndexFile re-classifies one file and reconciles the owner's entity lists.
// Indexing the same file twice never creates a second entity for its path.
func (ix *Indexer) IndexFile(path string) (*Class, Change) {
	path = filepath.Clean(path)
	if !strings.EqualFold(filepath.Ext(path), ".php") {
		return nil, Unchanged
	}

	owner := ix.project.FindOwner(path)
	if owner == nil {
		owner = ix.discoverOwnerFor(path)
		if owner == nil {
			return nil, Unchanged
		}
		// A new owner: index everything already on disk, this file included
		if err := ix.IndexOwner(owner); err != nil {
			log.Printf("[WARN] Indexing %s %s stopped early: %v", owner.Kind, owner.Name, err)
		}
		if cls := owner.FindEntityByPath(path); cls != nil {
			return cls, Added
		}
		return nil, Unchanged
	}

	if owner.Kind == OwnerPlugin && path == owner.RegistrationFile() {
		vendor := filepath.Base(filepath.Dir(owner.Path))
		owner.Name = ix.pluginCode(vendor, filepath.Base(owner.Path), owner.Path)
		return nil, Updated
	}

	existing := owner.FindEntityByPath(path)

	var classified *Class
	if conv, ok := ix.conventionFor(owner, path); ok && owner.IsBackend() {
		classified = ix.classifyFile(owner, path, conv.kinds)
	}

	switch {
	case existing != nil && classified != nil && existing.Kind == classified.Kind:
		existing.FQN = classified.FQN
		return existing, Updated
	case existing != nil && classified != nil:
		owner.remove(existing)
		owner.add(classified)
		return classified, Replaced
	case existing != nil:
		owner.remove(existing)
		return existing, Removed
	case classified != nil:
		owner.add(classified)
		return classified, Added
	}
	return nil, Unchanged
}

// DeletePath removes whatever was indexed at path: a whole owner when path
// is (or contains) an owner root, otherwise every entity at or below path.
func (ix *Indexer) DeletePath(path string) []*Class {
	path = filepath.Clean(path)
	ix.cache.Invalidate(path)

	var removed []*Class
	prefix := path + string(filepath.Separator)
	for _, owner := range ix.project.Owners() {
		if owner.Path == path || strings.HasPrefix(owner.Path, prefix) {
			removed = append(removed, owner.AllEntities()...)
			ix.project.RemoveOwner(owner)
		}
	}
	if len(removed) > 0 {
		ix.invalidate(removed)
		return removed
	}

	owner := ix.project.FindOwner(path)
	if owner == nil {
		return nil
	}
	removed = owner.removeUnder(path)
	ix.invalidate(removed)
	return removed
}

func (ix *Indexer) invalidate(classes []*Class) {
	for _, c := range classes {
		ix.cache.Invalidate(c.Path)
	}
}
