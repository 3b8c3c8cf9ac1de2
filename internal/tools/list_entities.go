package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/doITmagic/october-code-mcp/internal/october"
	"github.com/doITmagic/october-code-mcp/internal/workspace"
)

// ListEntitiesTool lists indexed entities by kind and owner
type ListEntitiesTool struct {
	workspaceManager *workspace.Manager
}

// NewListEntitiesTool creates a new list entities tool
func NewListEntitiesTool(wm *workspace.Manager) *ListEntitiesTool {
	return &ListEntitiesTool{workspaceManager: wm}
}

func (t *ListEntitiesTool) Name() string {
	return "list_entities"
}

func (t *ListEntitiesTool) Description() string {
	return "List the indexed classes of an October CMS project, optionally filtered by kind (model, controller, controller_behavior, model_behavior, component, widget, form_widget, report_widget, filter_widget, command, migration) and by owner (plugin code like Acme.Blog, module name, or app)."
}

func (t *ListEntitiesTool) InputSchema() map[string]interface{} {
	kinds := make([]string, 0, len(october.AllKinds()))
	for _, k := range october.AllKinds() {
		kinds = append(kinds, k.String())
	}
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"file_path": pathSchema("Any path inside the project"),
			"kind": map[string]interface{}{
				"type":        "string",
				"description": "Optional: one of " + strings.Join(kinds, ", "),
			},
			"owner": map[string]interface{}{
				"type":        "string",
				"description": "Optional: plugin code, module name or 'app'",
			},
			"output_format": outputFormatSchema,
		},
		"required": []string{"file_path"},
	}
}

func (t *ListEntitiesTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	kinds := october.AllKinds()
	if name := stringArg(args, "kind"); name != "" {
		kind, ok := october.ParseKind(name)
		if !ok {
			return "", fmt.Errorf("unknown kind %q", name)
		}
		kinds = []october.Kind{kind}
	}
	ownerName := stringArg(args, "owner")

	root, err := projectRoot(ctx, t.workspaceManager, args)
	if err != nil {
		return "", err
	}

	var refs []entityRef
	err = t.workspaceManager.Query(root, func(p *october.Project, _ *october.Resolver) error {
		matched := false
		for _, o := range p.Owners() {
			if ownerName != "" && !strings.EqualFold(o.Name, ownerName) {
				continue
			}
			matched = true
			for _, kind := range kinds {
				for _, c := range o.Entities(kind) {
					refs = append(refs, refOf(c))
				}
			}
		}
		if ownerName != "" && !matched {
			return fmt.Errorf("no owner named %s in %s", ownerName, root)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	if wantsJSON(args) {
		return toJSON(refs)
	}
	if len(refs) == 0 {
		return "No matching entities found.", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d entities:\n", len(refs))
	lastOwner := "\x00"
	for _, ref := range refs {
		if ref.Owner != lastOwner {
			fmt.Fprintf(&b, "\n## %s\n\n", ref.Owner)
			lastOwner = ref.Owner
		}
		fmt.Fprintf(&b, "- [%s] %s `%s`\n", ref.Kind, ref.FQN, relPath(root, ref.Path))
	}
	return b.String(), nil
}
