package october

import (
	"fmt"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// themeTemplateDirs are the CMS object directories of a theme
var themeTemplateDirs = []string{"pages", "layouts", "partials", "content"}

// ThemeInfo is the theme.yaml manifest together with the theme templates
type ThemeInfo struct {
	Code        string `yaml:"-" json:"code"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description,omitempty"`
	Author      string `yaml:"author" json:"author,omitempty"`
	Homepage    string `yaml:"homepage" json:"homepage,omitempty"`
	// Templates maps pages, layouts, partials and content to paths relative to that directory
	Templates map[string][]string `yaml:"-" json:"templates"`
}

// Theme reads a theme owner. A missing manifest leaves the name empty;
// a malformed one is an error.
func (r *Resolver) Theme(o *Owner) (*ThemeInfo, error) {
	if o.Kind != OwnerTheme {
		return nil, fmt.Errorf("%s is not a theme", o.Name)
	}
	info := &ThemeInfo{Code: o.Name, Templates: make(map[string][]string)}

	manifest := filepath.Join(o.Path, "theme.yaml")
	if r.fs.Exists(manifest) {
		content, err := r.fs.ReadFile(manifest)
		if err != nil {
			return nil, fmt.Errorf("failed to read theme manifest: %w", err)
		}
		if err := yaml.Unmarshal(content, info); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", manifest, err)
		}
	}

	for _, dir := range themeTemplateDirs {
		names, err := r.fs.ListFiles(filepath.Join(o.Path, dir), true)
		if err != nil || len(names) == 0 {
			continue
		}
		for i := range names {
			names[i] = filepath.ToSlash(names[i])
		}
		sort.Strings(names)
		info.Templates[dir] = names
	}
	return info, nil
}
