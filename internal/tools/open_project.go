package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/doITmagic/october-code-mcp/internal/october"
	"github.com/doITmagic/october-code-mcp/internal/workspace"
)

// OpenProjectTool opens (or re-reports) the project containing a path
type OpenProjectTool struct {
	workspaceManager *workspace.Manager
}

// NewOpenProjectTool creates a new open project tool
func NewOpenProjectTool(wm *workspace.Manager) *OpenProjectTool {
	return &OpenProjectTool{workspaceManager: wm}
}

func (t *OpenProjectTool) Name() string {
	return "open_project"
}

func (t *OpenProjectTool) Description() string {
	return "Open the October CMS project containing file_path: detects the platform version, discovers modules, plugins, themes and the app directory, and indexes their models, controllers, behaviors, components, widgets, console commands and migrations. Returns a summary per owner. Set reload=true to rebuild the index from scratch."
}

func (t *OpenProjectTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"file_path": pathSchema("Any path inside the project (the root itself works too)"),
			"reload": map[string]interface{}{
				"type":        "boolean",
				"description": "Optional: re-index an already open project",
			},
			"output_format": outputFormatSchema,
		},
		"required": []string{"file_path"},
	}
}

type ownerSummary struct {
	Kind     string         `json:"kind"`
	Name     string         `json:"name"`
	Path     string         `json:"path"`
	Entities map[string]int `json:"entities,omitempty"`
}

type projectSummary struct {
	*workspace.Info
	Owners []ownerSummary `json:"owners"`
}

func (t *OpenProjectTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	root, err := projectRoot(ctx, t.workspaceManager, args)
	if err != nil {
		return "", err
	}
	if reload, _ := args["reload"].(bool); reload {
		if err := t.workspaceManager.Reload(root); err != nil {
			return "", fmt.Errorf("failed to reload %s: %w", root, err)
		}
	}

	info, err := t.workspaceManager.Info(root)
	if err != nil {
		return "", err
	}
	summary := projectSummary{Info: info}
	err = t.workspaceManager.Query(root, func(p *october.Project, _ *october.Resolver) error {
		for _, o := range p.Owners() {
			s := ownerSummary{Kind: o.Kind.String(), Name: o.Name, Path: relPath(root, o.Path)}
			for _, kind := range october.AllKinds() {
				if n := len(o.Entities(kind)); n > 0 {
					if s.Entities == nil {
						s.Entities = make(map[string]int)
					}
					s.Entities[kind.String()] = n
				}
			}
			summary.Owners = append(summary.Owners, s)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	if wantsJSON(args) {
		return toJSON(summary)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# October CMS project %s\n\n", info.Root)
	fmt.Fprintf(&b, "- Platform: %s\n", info.Version)
	fmt.Fprintf(&b, "- Owners: %d\n", info.Stats.Owners)
	fmt.Fprintf(&b, "- Entities: %d\n", info.Stats.Entities)
	if info.Stats.Failed > 0 {
		fmt.Fprintf(&b, "- Partially indexed owners: %d (see server log)\n", info.Stats.Failed)
	}
	fmt.Fprintf(&b, "- Watching for changes: %t\n\n", info.Watching)

	b.WriteString("## Owners\n\n")
	for _, o := range summary.Owners {
		fmt.Fprintf(&b, "- **%s** (%s) `%s`", o.Name, o.Kind, o.Path)
		if len(o.Entities) > 0 {
			var parts []string
			for _, kind := range october.AllKinds() {
				if n, ok := o.Entities[kind.String()]; ok {
					parts = append(parts, fmt.Sprintf("%d %s", n, kind))
				}
			}
			fmt.Fprintf(&b, ": %s", strings.Join(parts, ", "))
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}
