package october

import (
	"path/filepath"
	"strings"

	"github.com/doITmagic/october-code-mcp/internal/phpast"
)

// Class is one PHP class file recognized as an entity of some Kind.
// Derived facts are not stored here; ask a Resolver.
type Class struct {
	Kind  Kind   `json:"kind"`
	Owner *Owner `json:"-"`
	Path  string `json:"path"`
	// FQN is namespace plus class name, or the file name for anonymous migrations
	FQN string `json:"fqn"`
}

// Name returns the short class name
func (c *Class) Name() string {
	return phpast.ShortName(c.FQN)
}

// OwnerKind discriminates the owner variants
type OwnerKind int

const (
	OwnerApp OwnerKind = iota
	OwnerModule
	OwnerPlugin
	OwnerTheme
)

func (k OwnerKind) String() string {
	switch k {
	case OwnerApp:
		return "app"
	case OwnerModule:
		return "module"
	case OwnerPlugin:
		return "plugin"
	case OwnerTheme:
		return "theme"
	}
	return "unknown"
}

// Owner groups entities by convention subdirectories: the app directory,
// a module, a plugin or a theme
type Owner struct {
	Kind OwnerKind `json:"kind"`
	// Name is "app", the module or theme directory name, or the plugin code (Vendor.Plugin)
	Name string `json:"name"`
	Path string `json:"path"`

	entities map[Kind][]*Class
}

// NewOwner creates an owner with no entities
func NewOwner(kind OwnerKind, name, path string) *Owner {
	return &Owner{
		Kind:     kind,
		Name:     name,
		Path:     filepath.Clean(path),
		entities: make(map[Kind][]*Class),
	}
}

// IsBackend reports whether the owner carries PHP class entities
func (o *Owner) IsBackend() bool {
	return o.Kind != OwnerTheme
}

// Code is the prefix used for the owner's translation, config and view keys
func (o *Owner) Code() string {
	return strings.ToLower(o.Name)
}

// RegistrationFile is the file declaring permissions, navigation and markup tags
func (o *Owner) RegistrationFile() string {
	switch o.Kind {
	case OwnerApp:
		return filepath.Join(o.Path, "Provider.php")
	case OwnerModule:
		return filepath.Join(o.Path, "ServiceProvider.php")
	case OwnerPlugin:
		return filepath.Join(o.Path, "Plugin.php")
	}
	return ""
}

// Entities returns the entities of one kind in indexing order
func (o *Owner) Entities(kind Kind) []*Class {
	return append([]*Class(nil), o.entities[kind]...)
}

// AllEntities returns every entity, grouped by kind
func (o *Owner) AllEntities() []*Class {
	var all []*Class
	for _, kind := range AllKinds() {
		all = append(all, o.entities[kind]...)
	}
	return all
}

// Count returns the number of indexed entities
func (o *Owner) Count() int {
	n := 0
	for _, list := range o.entities {
		n += len(list)
	}
	return n
}

// FindEntityByPath scans every entity list for path
func (o *Owner) FindEntityByPath(path string) *Class {
	path = filepath.Clean(path)
	for _, kind := range AllKinds() {
		for _, c := range o.entities[kind] {
			if c.Path == path {
				return c
			}
		}
	}
	return nil
}

// FindEntityByFqn scans every entity list for a class name, compared
// case-insensitively
func (o *Owner) FindEntityByFqn(fqn string) *Class {
	fqn = strings.TrimLeft(fqn, `\`)
	for _, kind := range AllKinds() {
		for _, c := range o.entities[kind] {
			if strings.EqualFold(c.FQN, fqn) {
				return c
			}
		}
	}
	return nil
}

// findByFqn looks up a class name within one kind
func (o *Owner) findByFqn(kind Kind, fqn string) *Class {
	fqn = strings.TrimLeft(fqn, `\`)
	for _, c := range o.entities[kind] {
		if strings.EqualFold(c.FQN, fqn) {
			return c
		}
	}
	return nil
}

// add appends c unless an entity already exists for its path
func (o *Owner) add(c *Class) bool {
	if o.FindEntityByPath(c.Path) != nil {
		return false
	}
	c.Owner = o
	o.entities[c.Kind] = append(o.entities[c.Kind], c)
	return true
}

func (o *Owner) remove(c *Class) bool {
	list := o.entities[c.Kind]
	for i, existing := range list {
		if existing == c {
			o.entities[c.Kind] = append(list[:i:i], list[i+1:]...)
			return true
		}
	}
	return false
}

// removeUnder drops the entity at path and every entity below it
func (o *Owner) removeUnder(path string) []*Class {
	path = filepath.Clean(path)
	prefix := path + string(filepath.Separator)

	var removed []*Class
	for kind, list := range o.entities {
		kept := list[:0:0]
		for _, c := range list {
			if c.Path == path || strings.HasPrefix(c.Path, prefix) {
				removed = append(removed, c)
				continue
			}
			kept = append(kept, c)
		}
		o.entities[kind] = kept
	}
	return removed
}

// contains reports whether path lies inside the owner directory
func (o *Owner) contains(path string) bool {
	return path == o.Path || strings.HasPrefix(path, o.Path+string(filepath.Separator))
}
