package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/doITmagic/october-code-mcp/internal/october"
	"github.com/doITmagic/october-code-mcp/internal/workspace"
)

// Tool is one query exposed over MCP. Arguments arrive as decoded JSON.
type Tool interface {
	Name() string
	Description() string
	InputSchema() map[string]interface{}
	Execute(ctx context.Context, args map[string]interface{}) (string, error)
}

// All returns every query tool bound to wm
func All(wm *workspace.Manager) []Tool {
	return []Tool{
		NewOpenProjectTool(wm),
		NewFindEntityTool(wm),
		NewListEntitiesTool(wm),
		NewModelDetailsTool(wm),
		NewControllerDetailsTool(wm),
		NewOwnerDetailsTool(wm),
		NewListConfigTool(wm),
		NewListTranslationsTool(wm),
		NewListEventsTool(wm),
	}
}

// extractFilePathFromParams extracts file path from common parameter names
func extractFilePathFromParams(params map[string]interface{}) string {
	pathParams := []string{
		"file_path",
		"filePath",
		"path",
		"file",
	}

	for _, param := range pathParams {
		if value, ok := params[param]; ok {
			if path, ok := value.(string); ok && path != "" {
				return path
			}
		}
	}

	return ""
}

func stringArg(args map[string]interface{}, name string) string {
	if v, ok := args[name].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// wantsJSON reports whether output_format asks for json instead of markdown
func wantsJSON(args map[string]interface{}) bool {
	return strings.EqualFold(stringArg(args, "output_format"), "json")
}

func toJSON(v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode result: %w", err)
	}
	return string(data), nil
}

// projectRoot returns the root of the project containing the file_path
// argument, opening and indexing the project on first use
func projectRoot(ctx context.Context, wm *workspace.Manager, args map[string]interface{}) (string, error) {
	if wm == nil {
		return "", fmt.Errorf("workspace manager not configured")
	}
	filePath := extractFilePathFromParams(args)
	if filePath == "" {
		return "", fmt.Errorf("file_path is required. Please provide a path inside your October CMS project")
	}
	abs, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	if p, err := wm.ProjectFor(abs); err == nil {
		return p.Root, nil
	}
	info, err := wm.OpenPath(ctx, abs)
	if err != nil {
		return "", err
	}
	return info.Root, nil
}

// lookupEntity finds the entity named by the fqn argument, or else the one
// indexed for the file_path argument
func lookupEntity(p *october.Project, args map[string]interface{}) (*october.Class, error) {
	if fqn := stringArg(args, "fqn"); fqn != "" {
		if c := p.FindEntityByFqn(strings.TrimLeft(fqn, `\`)); c != nil {
			return c, nil
		}
		return nil, fmt.Errorf("no entity named %s in %s", fqn, p.Root)
	}
	filePath, err := filepath.Abs(extractFilePathFromParams(args))
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}
	if c := p.FindEntity(filePath); c != nil {
		return c, nil
	}
	return nil, fmt.Errorf("%s is not an indexed entity. Pass fqn to look a class up by name", filePath)
}

// entityRef is the JSON shape of an entity in tool results
type entityRef struct {
	Kind  string `json:"kind"`
	FQN   string `json:"fqn"`
	Owner string `json:"owner,omitempty"`
	Path  string `json:"path"`
}

func refOf(c *october.Class) entityRef {
	ref := entityRef{Kind: c.Kind.String(), FQN: c.FQN, Path: c.Path}
	if c.Owner != nil {
		ref.Owner = c.Owner.Name
	}
	return ref
}

// relPath shortens path for display when it lies under root
func relPath(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return path
}

func pathSchema(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

var outputFormatSchema = map[string]interface{}{
	"type":        "string",
	"description": "Optional: 'markdown' (default) or 'json'",
}
