package tools

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/doITmagic/october-code-mcp/internal/october"
	"github.com/doITmagic/october-code-mcp/internal/workspace"
)

// OwnerDetailsTool reports what a plugin, module, theme or the app
// directory registers and ships
type OwnerDetailsTool struct {
	workspaceManager *workspace.Manager
}

// NewOwnerDetailsTool creates a new owner details tool
func NewOwnerDetailsTool(wm *workspace.Manager) *OwnerDetailsTool {
	return &OwnerDetailsTool{workspaceManager: wm}
}

func (t *OwnerDetailsTool) Name() string {
	return "owner_details"
}

func (t *OwnerDetailsTool) Description() string {
	return "Describe the plugin, module, theme or app directory containing file_path (or the one named by owner): backend permissions, navigation items, Twig functions and filters it registers, its view keys, and for themes the theme.yaml details and template listings."
}

func (t *OwnerDetailsTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"file_path": pathSchema("A path inside the owner, or any path inside the project when owner is given"),
			"owner": map[string]interface{}{
				"type":        "string",
				"description": "Optional: plugin code, module name, theme directory or 'app'",
			},
			"output_format": outputFormatSchema,
		},
		"required": []string{"file_path"},
	}
}

type ownerDetails struct {
	Kind         string                `json:"kind"`
	Name         string                `json:"name"`
	Path         string                `json:"path"`
	Registration *october.Registration `json:"registration,omitempty"`
	Views        []string              `json:"views,omitempty"`
	Theme        *october.ThemeInfo    `json:"theme,omitempty"`
}

func findOwner(p *october.Project, args map[string]interface{}) (*october.Owner, error) {
	if name := stringArg(args, "owner"); name != "" {
		for _, o := range p.Owners() {
			if strings.EqualFold(o.Name, name) {
				return o, nil
			}
		}
		return nil, fmt.Errorf("no owner named %s in %s", name, p.Root)
	}
	path, err := filepath.Abs(extractFilePathFromParams(args))
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}
	if o := p.FindOwner(path); o != nil {
		return o, nil
	}
	return nil, fmt.Errorf("%s is not inside a plugin, module, theme or the app directory", path)
}

func (t *OwnerDetailsTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	root, err := projectRoot(ctx, t.workspaceManager, args)
	if err != nil {
		return "", err
	}

	var d ownerDetails
	err = t.workspaceManager.Query(root, func(p *october.Project, r *october.Resolver) error {
		o, err := findOwner(p, args)
		if err != nil {
			return err
		}
		d = ownerDetails{Kind: o.Kind.String(), Name: o.Name, Path: o.Path}
		if o.IsBackend() {
			d.Registration = r.Registration(o)
			for _, v := range r.Views(o) {
				d.Views = append(d.Views, v.Key)
			}
			return nil
		}
		theme, err := r.Theme(o)
		if err != nil {
			return err
		}
		d.Theme = theme
		return nil
	})
	if err != nil {
		return "", err
	}

	if wantsJSON(args) {
		return toJSON(d)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s %s\n\n", strings.ToUpper(d.Kind[:1])+d.Kind[1:], d.Name)
	fmt.Fprintf(&b, "- Path: %s\n", relPath(root, d.Path))

	if reg := d.Registration; reg != nil {
		if len(reg.Permissions) > 0 {
			b.WriteString("\n## Permissions\n\n")
			for _, perm := range reg.Permissions {
				fmt.Fprintf(&b, "- `%s`", perm.Code)
				if perm.Label != "" {
					fmt.Fprintf(&b, " %s", perm.Label)
				}
				if perm.Tab != "" {
					fmt.Fprintf(&b, " [%s]", perm.Tab)
				}
				b.WriteString("\n")
			}
		}
		if len(reg.Navigation) > 0 {
			b.WriteString("\n## Navigation\n\n")
			for _, item := range reg.Navigation {
				if item.Parent != "" {
					fmt.Fprintf(&b, "  - %s.%s\n", item.Parent, item.Code)
				} else {
					fmt.Fprintf(&b, "- %s\n", item.Code)
				}
			}
		}
		writeList(&b, "Twig functions", reg.TwigFunctions)
		writeList(&b, "Twig filters", reg.TwigFilters)
	}
	writeList(&b, "Views", d.Views)

	if theme := d.Theme; theme != nil {
		if theme.Name != "" {
			fmt.Fprintf(&b, "- Name: %s\n", theme.Name)
		}
		if theme.Description != "" {
			fmt.Fprintf(&b, "- Description: %s\n", theme.Description)
		}
		if theme.Author != "" {
			fmt.Fprintf(&b, "- Author: %s\n", theme.Author)
		}
		dirs := make([]string, 0, len(theme.Templates))
		for dir := range theme.Templates {
			dirs = append(dirs, dir)
		}
		sort.Strings(dirs)
		for _, dir := range dirs {
			writeList(&b, "Theme "+dir, theme.Templates[dir])
		}
	}
	return b.String(), nil
}
