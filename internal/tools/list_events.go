package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/doITmagic/october-code-mcp/internal/october"
	"github.com/doITmagic/october-code-mcp/internal/workspace"
)

// ListEventsTool lists the events fired in a project and where
type ListEventsTool struct {
	workspaceManager *workspace.Manager
}

// NewListEventsTool creates a new list events tool
func NewListEventsTool(wm *workspace.Manager) *ListEventsTool {
	return &ListEventsTool{workspaceManager: wm}
}

func (t *ListEventsTool) Name() string {
	return "list_events"
}

func (t *ListEventsTool) Description() string {
	return "List the events fired with a literal name (Event::fire, fireSystemEvent, fireViewEvent) in the modules, plugins and app directory of an October CMS project, each with the files firing it. Filter with query (substring of the event name)."
}

func (t *ListEventsTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"file_path": pathSchema("Any path inside the project"),
			"query": map[string]interface{}{
				"type":        "string",
				"description": "Optional: substring of the event name, e.g. 'backend.form'",
			},
			"output_format": outputFormatSchema,
		},
		"required": []string{"file_path"},
	}
}

type eventInfo struct {
	Name       string                   `json:"name"`
	References []october.EventReference `json:"references"`
}

func (t *ListEventsTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	root, err := projectRoot(ctx, t.workspaceManager, args)
	if err != nil {
		return "", err
	}
	query := strings.ToLower(stringArg(args, "query"))

	var events []eventInfo
	err = t.workspaceManager.Query(root, func(_ *october.Project, r *october.Resolver) error {
		byName := make(map[string][]october.EventReference)
		for _, ref := range r.Events() {
			byName[ref.Name] = append(byName[ref.Name], ref)
		}
		for _, name := range r.EventNames() {
			if query != "" && !strings.Contains(strings.ToLower(name), query) {
				continue
			}
			events = append(events, eventInfo{Name: name, References: byName[name]})
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	if wantsJSON(args) {
		return toJSON(events)
	}
	if len(events) == 0 {
		return "No events found.", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d events:\n", len(events))
	for _, ev := range events {
		fmt.Fprintf(&b, "\n## %s\n\n", ev.Name)
		for _, ref := range ev.References {
			fmt.Fprintf(&b, "- %s in %s (offset %d)\n", ref.Call, relPath(root, ref.Path), ref.Offset)
		}
	}
	return b.String(), nil
}
