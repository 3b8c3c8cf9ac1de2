package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/doITmagic/october-code-mcp/internal/october"
	"github.com/doITmagic/october-code-mcp/internal/workspace"
)

// ModelDetailsTool reports the table, relations and attributes of a model
type ModelDetailsTool struct {
	workspaceManager *workspace.Manager
}

// NewModelDetailsTool creates a new model details tool
func NewModelDetailsTool(wm *workspace.Manager) *ModelDetailsTool {
	return &ModelDetailsTool{workspaceManager: wm}
}

func (t *ModelDetailsTool) Name() string {
	return "model_details"
}

func (t *ModelDetailsTool) Description() string {
	return "Describe an October CMS model: its database table, relations resolved to model classes of the same plugin, attributes declared through @property tags, $fillable and $jsonable, columns found in the plugin's migrations for that table, behaviors and traits."
}

func (t *ModelDetailsTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"file_path": pathSchema("The model's PHP file, or any path inside the project when fqn is given"),
			"fqn": map[string]interface{}{
				"type":        "string",
				"description": "Optional: fully qualified model class name",
			},
			"output_format": outputFormatSchema,
		},
		"required": []string{"file_path"},
	}
}

type relationInfo struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Model string `json:"model"`
	Path  string `json:"path"`
}

type modelDetails struct {
	entityRef
	Table     string              `json:"table"`
	Relations []relationInfo      `json:"relations"`
	Declared  []october.Attribute `json:"declared_attributes"`
	Columns   []string            `json:"migration_columns"`
	Behaviors []string            `json:"behaviors,omitempty"`
	Traits    []string            `json:"traits,omitempty"`
}

func (t *ModelDetailsTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	root, err := projectRoot(ctx, t.workspaceManager, args)
	if err != nil {
		return "", err
	}

	var d modelDetails
	err = t.workspaceManager.Query(root, func(p *october.Project, r *october.Resolver) error {
		c, err := lookupEntity(p, args)
		if err != nil {
			return err
		}
		if c.Kind != october.KindModel {
			return fmt.Errorf("%s is a %s, not a model", c.FQN, c.Kind)
		}

		d = modelDetails{entityRef: refOf(c), Table: r.Table(c), Declared: r.DeclaredAttributes(c), Traits: r.Traits(c)}
		for _, rel := range r.Relations(c) {
			d.Relations = append(d.Relations, relationInfo{Name: rel.Name, Type: rel.Type, Model: rel.FQN, Path: rel.Model.Path})
		}
		for _, attr := range r.GuessedAttributes(c) {
			d.Columns = append(d.Columns, attr.Name)
		}
		for _, att := range r.ImplementedBehaviors(c) {
			d.Behaviors = append(d.Behaviors, att.FQN)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	if wantsJSON(args) {
		return toJSON(d)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Model %s\n\n", d.FQN)
	fmt.Fprintf(&b, "- Owner: %s\n", d.Owner)
	fmt.Fprintf(&b, "- File: %s\n", relPath(root, d.Path))
	fmt.Fprintf(&b, "- Table: `%s`\n", d.Table)

	if len(d.Relations) > 0 {
		b.WriteString("\n## Relations\n\n")
		for _, rel := range d.Relations {
			fmt.Fprintf(&b, "- %s (%s) → %s\n", rel.Name, rel.Type, rel.Model)
		}
	}
	if len(d.Declared) > 0 {
		b.WriteString("\n## Declared attributes\n\n")
		for _, attr := range d.Declared {
			if attr.Type != "" {
				fmt.Fprintf(&b, "- %s `%s` (%s)\n", attr.Name, attr.Type, attr.Source)
			} else {
				fmt.Fprintf(&b, "- %s (%s)\n", attr.Name, attr.Source)
			}
		}
	}
	writeList(&b, "Migration columns", d.Columns)
	writeList(&b, "Behaviors", d.Behaviors)
	writeList(&b, "Traits", d.Traits)
	return b.String(), nil
}
