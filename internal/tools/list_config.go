package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/doITmagic/october-code-mcp/internal/october"
	"github.com/doITmagic/october-code-mcp/internal/workspace"
)

// ListConfigTool lists the flattened configuration keys of a project
type ListConfigTool struct {
	workspaceManager *workspace.Manager
}

// NewListConfigTool creates a new list config tool
func NewListConfigTool(wm *workspace.Manager) *ListConfigTool {
	return &ListConfigTool{workspaceManager: wm}
}

func (t *ListConfigTool) Name() string {
	return "list_config"
}

func (t *ListConfigTool) Description() string {
	return "List configuration keys usable with Config::get() in an October CMS project: root config files as file.key, module and plugin config as code::key (or code::file.key). Values are shown as written in the PHP source. Filter with prefix."
}

func (t *ListConfigTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"file_path": pathSchema("Any path inside the project"),
			"prefix": map[string]interface{}{
				"type":        "string",
				"description": "Optional: only keys starting with this prefix, e.g. 'acme.blog::' or 'app.'",
			},
			"output_format": outputFormatSchema,
		},
		"required": []string{"file_path"},
	}
}

type keyValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Path  string `json:"path"`
}

func (t *ListConfigTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	root, err := projectRoot(ctx, t.workspaceManager, args)
	if err != nil {
		return "", err
	}
	prefix := stringArg(args, "prefix")

	var entries []keyValue
	err = t.workspaceManager.Query(root, func(_ *october.Project, r *october.Resolver) error {
		for key, v := range r.ConfigMap() {
			if strings.HasPrefix(key, prefix) {
				entries = append(entries, keyValue{Key: key, Value: v.Value, Path: v.Path})
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })

	if wantsJSON(args) {
		return toJSON(entries)
	}
	return formatKeyValues(root, "configuration keys", entries), nil
}

func formatKeyValues(root, what string, entries []keyValue) string {
	if len(entries) == 0 {
		return fmt.Sprintf("No %s found.", what)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d %s:\n\n", len(entries), what)
	for _, e := range entries {
		fmt.Fprintf(&b, "- `%s` = %s (%s)\n", e.Key, e.Value, relPath(root, e.Path))
	}
	return b.String()
}
