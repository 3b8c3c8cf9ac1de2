package october

import (
	"path/filepath"
	"strings"

	"github.com/doITmagic/october-code-mcp/internal/config"
	"github.com/doITmagic/october-code-mcp/internal/platform"
)

// Options are the per-project indexing settings
type Options struct {
	PluginsDir            string
	ThemesDir             string
	StructuredControllers bool
}

// DefaultOptions returns the stock directory layout
func DefaultOptions() Options {
	return Options{
		PluginsDir: config.DefaultPluginsDir,
		ThemesDir:  config.DefaultThemesDir,
	}
}

// OptionsFromConfig copies the project section of a loaded configuration
func OptionsFromConfig(cfg config.ProjectConfig) Options {
	opts := Options{
		PluginsDir:            cfg.PluginsDir,
		ThemesDir:             cfg.ThemesDir,
		StructuredControllers: cfg.StructuredControllers,
	}
	if opts.PluginsDir == "" {
		opts.PluginsDir = config.DefaultPluginsDir
	}
	if opts.ThemesDir == "" {
		opts.ThemesDir = config.DefaultThemesDir
	}
	return opts
}

// Project is the root aggregate for one opened workspace. It is not safe
// for concurrent use; callers serialize access.
type Project struct {
	Root     string
	Platform *platform.Platform
	Options  Options

	App     *Owner
	Modules []*Owner
	Plugins []*Owner
	Themes  []*Owner
}

// NewProject creates an empty project
func NewProject(root string, plat *platform.Platform, opts Options) *Project {
	return &Project{
		Root:     filepath.Clean(root),
		Platform: plat,
		Options:  opts,
	}
}

// AddAppDirectory sets the app owner
func (p *Project) AddAppDirectory(o *Owner) { p.App = o }

// AddModule appends a module owner. No duplicate check is made.
func (p *Project) AddModule(o *Owner) { p.Modules = append(p.Modules, o) }

// AddPlugin appends a plugin owner. No duplicate check is made.
func (p *Project) AddPlugin(o *Owner) { p.Plugins = append(p.Plugins, o) }

// AddTheme appends a theme owner. No duplicate check is made.
func (p *Project) AddTheme(o *Owner) { p.Themes = append(p.Themes, o) }

// RemoveOwner detaches o from the project
func (p *Project) RemoveOwner(o *Owner) bool {
	if p.App == o {
		p.App = nil
		return true
	}
	for _, list := range []*[]*Owner{&p.Modules, &p.Plugins, &p.Themes} {
		for i, existing := range *list {
			if existing == o {
				*list = append((*list)[:i:i], (*list)[i+1:]...)
				return true
			}
		}
	}
	return false
}

// BackendOwners returns the owners carrying class entities, in merge
// order: modules, plugins, then app
func (p *Project) BackendOwners() []*Owner {
	owners := make([]*Owner, 0, len(p.Modules)+len(p.Plugins)+1)
	owners = append(owners, p.Modules...)
	owners = append(owners, p.Plugins...)
	if p.App != nil {
		owners = append(owners, p.App)
	}
	return owners
}

// Owners returns every owner, themes last
func (p *Project) Owners() []*Owner {
	return append(p.BackendOwners(), p.Themes...)
}

// Plugin returns the plugin with the given code (Vendor.Plugin), compared
// case-insensitively
func (p *Project) Plugin(code string) *Owner {
	for _, o := range p.Plugins {
		if strings.EqualFold(o.Name, code) {
			return o
		}
	}
	return nil
}

// FindOwner dispatches on the first path segment below the project root
func (p *Project) FindOwner(path string) *Owner {
	rel, ok := p.relative(path)
	if !ok {
		return nil
	}
	parts := strings.Split(rel, string(filepath.Separator))

	var candidates []*Owner
	switch parts[0] {
	case "app":
		if p.App != nil {
			return p.App
		}
		return nil
	case "modules":
		candidates = p.Modules
	case p.Options.PluginsDir:
		candidates = p.Plugins
	case p.Options.ThemesDir:
		candidates = p.Themes
	default:
		return nil
	}

	path = filepath.Clean(path)
	for _, o := range candidates {
		if o.contains(path) {
			return o
		}
	}
	return nil
}

// FindEntity returns the entity indexed for path
func (p *Project) FindEntity(path string) *Class {
	owner := p.FindOwner(path)
	if owner == nil {
		return nil
	}
	return owner.FindEntityByPath(path)
}

// FindEntityByFqn searches every backend owner for a class name
func (p *Project) FindEntityByFqn(fqn string) *Class {
	for _, o := range p.BackendOwners() {
		if c := o.FindEntityByFqn(fqn); c != nil {
			return c
		}
	}
	return nil
}

// findByFqn searches one kind across every backend owner
func (p *Project) findByFqn(kind Kind, fqn string) *Class {
	for _, o := range p.BackendOwners() {
		if c := o.findByFqn(kind, fqn); c != nil {
			return c
		}
	}
	return nil
}

// Entities aggregates one kind across owners: modules, plugins, then app
func (p *Project) Entities(kind Kind) []*Class {
	var all []*Class
	for _, o := range p.BackendOwners() {
		all = append(all, o.entities[kind]...)
	}
	return all
}

// Controllers is shorthand for Entities(KindController)
func (p *Project) Controllers() []*Class { return p.Entities(KindController) }

// Models is shorthand for Entities(KindModel)
func (p *Project) Models() []*Class { return p.Entities(KindModel) }

// relative returns path relative to the project root
func (p *Project) relative(path string) (string, bool) {
	path = filepath.Clean(path)
	if path == p.Root {
		return "", false
	}
	prefix := p.Root + string(filepath.Separator)
	if !strings.HasPrefix(path, prefix) {
		return "", false
	}
	return strings.TrimPrefix(path, prefix), true
}

// Contains reports whether path lies inside the project
func (p *Project) Contains(path string) bool {
	path = filepath.Clean(path)
	return path == p.Root || strings.HasPrefix(path, p.Root+string(filepath.Separator))
}
