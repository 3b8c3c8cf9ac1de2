package october

import (
	"log"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/doITmagic/october-code-mcp/internal/phpast"
)

// builtinRequiredProperties covers the core backend behaviors when their
// source is not part of the project
var builtinRequiredProperties = map[string][]string{
	`backend\behaviors\listcontroller`:         {"listConfig"},
	`backend\behaviors\formcontroller`:         {"formConfig"},
	`backend\behaviors\relationcontroller`:     {"relationConfig"},
	`backend\behaviors\importexportcontroller`: {"importExportConfig"},
	`backend\behaviors\reordercontroller`:      {"reorderConfig"},
}

// PageActions lists the public methods of a controller reachable as pages:
// not AJAX handlers, not magic methods, not underscored
func (r *Resolver) PageActions(c *Class) []Method {
	if c.Kind != KindController {
		return nil
	}
	_, class := r.classOf(c)
	if class == nil {
		return nil
	}
	var result []Method
	for _, m := range class.Methods {
		if m.Visibility() != "public" || m.IsStatic() {
			continue
		}
		if ajaxHandlerRe.MatchString(m.Name) || strings.HasPrefix(m.Name, "_") {
			continue
		}
		result = append(result, Method{Name: m.Name, Range: m.NameRange})
	}
	return result
}

// RequiredProperty is one property a behavior expects on its controller
type RequiredProperty struct {
	Behavior string `json:"behavior"`
	Property string `json:"property"`
	Declared bool   `json:"declared"`
}

// RequiredProperties checks the properties each implemented behavior
// requires. The behavior's own `$requiredProperties` is used when it is
// indexed, the builtin table otherwise.
func (r *Resolver) RequiredProperties(c *Class) []RequiredProperty {
	if c.Kind != KindController {
		return nil
	}
	_, class := r.classOf(c)

	var result []RequiredProperty
	for _, att := range r.ImplementedBehaviors(c) {
		for _, prop := range r.behaviorRequirements(att.FQN) {
			result = append(result, RequiredProperty{
				Behavior: att.FQN,
				Property: prop,
				Declared: class.Property(prop) != nil,
			})
		}
	}
	return result
}

func (r *Resolver) behaviorRequirements(fqn string) []string {
	if behavior := r.project.findByFqn(KindControllerBehavior, fqn); behavior != nil {
		_, class := r.classOf(behavior)
		if prop := class.Property("requiredProperties"); prop != nil {
			return phpast.StringList(prop.Value)
		}
	}
	return builtinRequiredProperties[strings.ToLower(fqn)]
}

// MissingProperties returns the required properties the controller does not declare
func (r *Resolver) MissingProperties(c *Class) []string {
	var missing []string
	for _, req := range r.RequiredProperties(c) {
		if !req.Declared {
			missing = appendUnique(missing, req.Property)
		}
	}
	return missing
}

// ConfigFile is a behavior configuration file referenced by a controller
type ConfigFile struct {
	Property string `json:"property"`
	Value    string `json:"value"`
	Path     string `json:"path"`
	Exists   bool   `json:"exists"`
}

// ConfigFiles resolves the `*Config` string properties of a controller.
// Relative names live in controllers/<lowercase class>/, or in its config/
// subdirectory when controllers are structured.
func (r *Resolver) ConfigFiles(c *Class) []ConfigFile {
	if c.Kind != KindController {
		return nil
	}
	_, class := r.classOf(c)
	if class == nil {
		return nil
	}

	var result []ConfigFile
	for _, prop := range class.Properties {
		if !strings.HasSuffix(prop.Name, "Config") {
			continue
		}
		value, ok := phpast.StringValue(prop.Value)
		if !ok || value == "" {
			continue
		}
		path := r.controllerConfigPath(c, value)
		result = append(result, ConfigFile{
			Property: prop.Name,
			Value:    value,
			Path:     path,
			Exists:   r.fs.Exists(path),
		})
	}
	return result
}

func (r *Resolver) controllerConfigPath(c *Class, value string) string {
	switch {
	case strings.HasPrefix(value, "$/"):
		return filepath.Join(r.project.Root, r.project.Options.PluginsDir, filepath.FromSlash(value[2:]))
	case strings.HasPrefix(value, "~/"):
		return filepath.Join(r.project.Root, filepath.FromSlash(value[2:]))
	case filepath.IsAbs(value):
		return value
	}
	dir := filepath.Join(filepath.Dir(c.Path), strings.ToLower(c.Name()))
	if r.project.Options.StructuredControllers {
		dir = filepath.Join(dir, "config")
	}
	return filepath.Join(dir, filepath.FromSlash(value))
}

type behaviorConfig struct {
	ModelClass string `yaml:"modelClass"`
}

// ConfigModels resolves the `modelClass` of every behavior config file to
// Model entities anywhere in the project
func (r *Resolver) ConfigModels(c *Class) []*Class {
	var result []*Class
	seen := make(map[*Class]bool)
	for _, cfg := range r.ConfigFiles(c) {
		if !cfg.Exists {
			continue
		}
		content, err := r.fs.ReadFile(cfg.Path)
		if err != nil {
			continue
		}
		var parsed behaviorConfig
		if err := yaml.Unmarshal(content, &parsed); err != nil {
			log.Printf("[WARN] Failed to parse %s: %v", cfg.Path, err)
			continue
		}
		if parsed.ModelClass == "" {
			continue
		}
		model := r.project.findByFqn(KindModel, strings.TrimLeft(parsed.ModelClass, `\`))
		if model != nil && !seen[model] {
			seen[model] = true
			result = append(result, model)
		}
	}
	return result
}
