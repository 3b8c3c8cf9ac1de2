package october

import (
	"path/filepath"
	"strings"

	"github.com/VKCOM/php-parser/pkg/ast"

	"github.com/doITmagic/october-code-mcp/internal/phpast"
)

// translationHelpers are the functions whose first argument is a translation key
var translationHelpers = map[string]bool{
	"_":            true,
	"__":           true,
	"trans":        true,
	"trans_choice": true,
}

// translationCallKey returns the key of a `trans('key')`-style call
func translationCallKey(expr ast.Vertex) (string, bool) {
	name, args, ok := phpast.FunctionCall(expr)
	if !ok || !translationHelpers[strings.ToLower(strings.TrimLeft(name, `\`))] || len(args) == 0 {
		return "", false
	}
	return phpast.StringValue(args[0])
}

// ConfigValue is one flattened config entry
type ConfigValue struct {
	Value string       `json:"value"`
	Path  string       `json:"path"`
	Range phpast.Range `json:"range"`
	Node  ast.Vertex   `json:"-"`
}

// FlattenConfig turns the array returned by a config file into dotted keys.
// Associative arrays are descended into; scalars, lists and empty arrays
// are leaves. Translation helper calls resolve to their key, other leaves
// keep their source text.
func FlattenConfig(file *phpast.File) map[string]ConfigValue {
	out := make(map[string]ConfigValue)
	if file == nil || file.Returned == nil {
		return out
	}
	flattenArray(file, "", file.Returned, func(key string, leaf ast.Vertex) {
		out[key] = ConfigValue{Value: leafText(file, leaf), Range: phpast.RangeOf(leaf), Node: leaf}
	})
	return out
}

func flattenArray(file *phpast.File, prefix string, expr ast.Vertex, emit func(string, ast.Vertex)) {
	for _, item := range phpast.ArrayItems(expr) {
		key, ok := phpast.KeyString(item.Key)
		if !ok {
			continue
		}
		if prefix != "" {
			key = prefix + "." + key
		}
		if phpast.IsArray(item.Value) && !phpast.IsList(item.Value) {
			flattenArray(file, key, item.Value, emit)
			continue
		}
		emit(key, item.Value)
	}
}

func leafText(file *phpast.File, leaf ast.Vertex) string {
	if s, ok := phpast.StringValue(leaf); ok {
		return s
	}
	if s, ok := translationCallKey(leaf); ok {
		return s
	}
	return file.Snippet(leaf)
}

// ConfigMap merges the config files of the project into one map. Modules,
// plugins, the app directory and the project root are read in that order;
// a later key overwrites an earlier one.
//
// Keys are `file.key` for the project config directory, `code::key` for an
// owner's config.php and `code::file.key` for its other config files.
func (r *Resolver) ConfigMap() map[string]ConfigValue {
	result := make(map[string]ConfigValue)
	for _, owner := range r.project.BackendOwners() {
		r.mergeConfigDir(result, filepath.Join(owner.Path, "config"), owner.Code())
	}
	r.mergeConfigDir(result, filepath.Join(r.project.Root, "config"), "")
	return result
}

func (r *Resolver) mergeConfigDir(into map[string]ConfigValue, dir, code string) {
	names, err := r.fs.ListFiles(dir, false, ".php")
	if err != nil {
		return
	}
	for _, name := range names {
		path := filepath.Join(dir, name)
		base := strings.TrimSuffix(name, filepath.Ext(name))

		var prefix string
		switch {
		case code != "" && base == "config":
			prefix = code + "::"
		case code != "":
			prefix = code + "::" + base + "."
		default:
			prefix = base + "."
		}

		for key, value := range FlattenConfig(r.parse(path)) {
			value.Path = path
			into[prefix+key] = value
		}
	}
}

// Locale is the `app.locale` of the project config, "en" when unset
func (r *Resolver) Locale() string {
	path := filepath.Join(r.project.Root, "config", "app.php")
	value, ok := FlattenConfig(r.parse(path))["locale"]
	if !ok {
		return "en"
	}
	if s, ok := phpast.StringValue(value.Node); ok && s != "" {
		return s
	}
	// 'locale' => env('APP_LOCALE', 'en')
	if name, args, ok := phpast.FunctionCall(value.Node); ok && name == "env" && len(args) > 1 {
		if s, ok := phpast.StringValue(args[1]); ok && s != "" {
			return s
		}
	}
	return "en"
}
