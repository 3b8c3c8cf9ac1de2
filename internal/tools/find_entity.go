package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/doITmagic/october-code-mcp/internal/october"
	"github.com/doITmagic/october-code-mcp/internal/workspace"
)

// FindEntityTool identifies the entity behind a file or class name
type FindEntityTool struct {
	workspaceManager *workspace.Manager
}

// NewFindEntityTool creates a new find entity tool
func NewFindEntityTool(wm *workspace.Manager) *FindEntityTool {
	return &FindEntityTool{workspaceManager: wm}
}

func (t *FindEntityTool) Name() string {
	return "find_entity"
}

func (t *FindEntityTool) Description() string {
	return "Identify an October CMS class: pass the file_path of a PHP file, or fqn plus any file_path in the project. Returns its kind (model, controller, component, migration...), owning plugin or module, and kind-specific facts such as AJAX handlers, attached behaviors, traits, console command name, component details or migration tables."
}

func (t *FindEntityTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"file_path": pathSchema("The entity's PHP file, or any path inside the project when fqn is given"),
			"fqn": map[string]interface{}{
				"type":        "string",
				"description": "Optional: fully qualified class name, e.g. Acme\\Blog\\Models\\Post",
			},
			"output_format": outputFormatSchema,
		},
		"required": []string{"file_path"},
	}
}

type entityFacts struct {
	entityRef
	AjaxMethods []string                  `json:"ajax_methods,omitempty"`
	Behaviors   []string                  `json:"behaviors,omitempty"`
	Traits      []string                  `json:"traits,omitempty"`
	Command     string                    `json:"command,omitempty"`
	Component   *october.ComponentDetails `json:"component,omitempty"`
	Properties  []string                  `json:"properties,omitempty"`
	Tables      []october.TableReference  `json:"tables,omitempty"`
}

func collectFacts(r *october.Resolver, c *october.Class) entityFacts {
	facts := entityFacts{entityRef: refOf(c)}
	if c.Kind.HasAjaxMethods() {
		for _, m := range r.AjaxMethods(c) {
			facts.AjaxMethods = append(facts.AjaxMethods, m.Name)
		}
	}
	for _, att := range r.ImplementedBehaviors(c) {
		facts.Behaviors = append(facts.Behaviors, att.FQN)
	}
	facts.Traits = r.Traits(c)

	switch c.Kind {
	case october.KindCommand:
		facts.Command = r.CommandName(c)
	case october.KindComponent:
		details := r.ComponentDetails(c)
		facts.Component = &details
		facts.Properties = r.ComponentProperties(c)
	case october.KindMigration:
		facts.Tables = r.MigrationTables(c)
	}
	return facts
}

func (t *FindEntityTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	root, err := projectRoot(ctx, t.workspaceManager, args)
	if err != nil {
		return "", err
	}

	var facts entityFacts
	err = t.workspaceManager.Query(root, func(p *october.Project, r *october.Resolver) error {
		c, err := lookupEntity(p, args)
		if err != nil {
			return err
		}
		facts = collectFacts(r, c)
		return nil
	})
	if err != nil {
		return "", err
	}

	if wantsJSON(args) {
		return toJSON(facts)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", facts.FQN)
	fmt.Fprintf(&b, "- Kind: %s\n", facts.Kind)
	if facts.Owner != "" {
		fmt.Fprintf(&b, "- Owner: %s\n", facts.Owner)
	}
	fmt.Fprintf(&b, "- File: %s\n", relPath(root, facts.Path))
	if facts.Command != "" {
		fmt.Fprintf(&b, "- Console command: `%s`\n", facts.Command)
	}
	if facts.Component != nil {
		fmt.Fprintf(&b, "- Component: %s", facts.Component.Name)
		if facts.Component.Description != "" {
			fmt.Fprintf(&b, " (%s)", facts.Component.Description)
		}
		b.WriteString("\n")
	}
	writeList(&b, "Properties", facts.Properties)
	writeList(&b, "AJAX handlers", facts.AjaxMethods)
	writeList(&b, "Behaviors", facts.Behaviors)
	writeList(&b, "Traits", facts.Traits)
	if len(facts.Tables) > 0 {
		b.WriteString("\n## Tables\n\n")
		for _, ref := range facts.Tables {
			fmt.Fprintf(&b, "- %s `%s`\n", ref.Op, ref.Table)
		}
	}
	return b.String(), nil
}

// writeList renders a markdown section, or nothing for an empty list
func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n## %s\n\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
}
