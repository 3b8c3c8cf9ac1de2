package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/doITmagic/october-code-mcp/internal/october"
	"github.com/doITmagic/october-code-mcp/internal/workspace"
)

// ControllerDetailsTool reports the actions and behavior wiring of a
// backend controller
type ControllerDetailsTool struct {
	workspaceManager *workspace.Manager
}

// NewControllerDetailsTool creates a new controller details tool
func NewControllerDetailsTool(wm *workspace.Manager) *ControllerDetailsTool {
	return &ControllerDetailsTool{workspaceManager: wm}
}

func (t *ControllerDetailsTool) Name() string {
	return "controller_details"
}

func (t *ControllerDetailsTool) Description() string {
	return "Describe an October CMS backend controller: page actions, AJAX handlers, implemented behaviors, the configuration properties those behaviors require (and which ones the controller is missing), the behavior config files it points at and the models named by their modelClass."
}

func (t *ControllerDetailsTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"file_path": pathSchema("The controller's PHP file, or any path inside the project when fqn is given"),
			"fqn": map[string]interface{}{
				"type":        "string",
				"description": "Optional: fully qualified controller class name",
			},
			"output_format": outputFormatSchema,
		},
		"required": []string{"file_path"},
	}
}

type controllerDetails struct {
	entityRef
	Actions     []string                   `json:"page_actions"`
	AjaxMethods []string                   `json:"ajax_methods"`
	Behaviors   []string                   `json:"behaviors"`
	Required    []october.RequiredProperty `json:"required_properties"`
	Missing     []string                   `json:"missing_properties"`
	ConfigFiles []october.ConfigFile       `json:"config_files"`
	Models      []entityRef                `json:"config_models"`
}

func (t *ControllerDetailsTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	root, err := projectRoot(ctx, t.workspaceManager, args)
	if err != nil {
		return "", err
	}

	var d controllerDetails
	err = t.workspaceManager.Query(root, func(p *october.Project, r *october.Resolver) error {
		c, err := lookupEntity(p, args)
		if err != nil {
			return err
		}
		if c.Kind != october.KindController {
			return fmt.Errorf("%s is a %s, not a controller", c.FQN, c.Kind)
		}

		d = controllerDetails{
			entityRef:   refOf(c),
			Required:    r.RequiredProperties(c),
			Missing:     r.MissingProperties(c),
			ConfigFiles: r.ConfigFiles(c),
		}
		for _, m := range r.PageActions(c) {
			d.Actions = append(d.Actions, m.Name)
		}
		for _, m := range r.AjaxMethods(c) {
			d.AjaxMethods = append(d.AjaxMethods, m.Name)
		}
		for _, att := range r.ImplementedBehaviors(c) {
			d.Behaviors = append(d.Behaviors, att.FQN)
		}
		for _, model := range r.ConfigModels(c) {
			d.Models = append(d.Models, refOf(model))
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
	fmt.Fprintf(&b, "# Controller %s\n\n", d.FQN)
	fmt.Fprintf(&b, "- Owner: %s\n", d.Owner)
	fmt.Fprintf(&b, "- File: %s\n", relPath(root, d.Path))
	writeList(&b, "Page actions", d.Actions)
	writeList(&b, "AJAX handlers", d.AjaxMethods)
	writeList(&b, "Behaviors", d.Behaviors)

	if len(d.Required) > 0 {
		b.WriteString("\n## Required properties\n\n")
		for _, req := range d.Required {
			mark := "missing"
			if req.Declared {
				mark = "declared"
			}
			fmt.Fprintf(&b, "- $%s (%s): %s\n", req.Property, req.Behavior, mark)
		}
	}
	if len(d.Missing) > 0 {
		fmt.Fprintf(&b, "\n⚠️ Missing: %s\n", strings.Join(d.Missing, ", "))
	}

	if len(d.ConfigFiles) > 0 {
		b.WriteString("\n## Config files\n\n")
		for _, cf := range d.ConfigFiles {
			state := ""
			if !cf.Exists {
				state = " (not found)"
			}
			fmt.Fprintf(&b, "- $%s = '%s' → %s%s\n", cf.Property, cf.Value, relPath(root, cf.Path), state)
		}
	}
	if len(d.Models) > 0 {
		b.WriteString("\n## Models\n\n")
		for _, m := range d.Models {
			fmt.Fprintf(&b, "- %s (%s)\n", m.FQN, m.Owner)
		}
	}
	return b.String(), nil
}
