package october

import (
	"encoding/json"
	"log"
	"path/filepath"
	"strings"

	"github.com/VKCOM/php-parser/pkg/ast"

	"github.com/doITmagic/october-code-mcp/internal/phpast"
)

// Translation is one flattened translation string
type Translation struct {
	Value string `json:"value"`
	Path  string `json:"path"`
}

// Translations merges the translation files of one locale. Sources are
// read in order modules, plugins, app, project root; within an owner the
// JSON file comes before the PHP files. A later key overwrites an earlier one.
//
// JSON keys are used as written. PHP files produce `code::file.key` inside
// owners and `file.key` at the project root.
func (r *Resolver) Translations(locale string) map[string]Translation {
	if locale == "" {
		locale = r.Locale()
	}
	result := make(map[string]Translation)

	for _, owner := range r.project.BackendOwners() {
		langDir := filepath.Join(owner.Path, "lang")
		r.mergeJSONTranslations(result, filepath.Join(langDir, locale+".json"))
		r.mergePHPTranslations(result, filepath.Join(langDir, locale), owner.Code()+"::")
	}

	rootLang := filepath.Join(r.project.Root, filepath.FromSlash(r.project.Platform.RootLangDirectory()))
	r.mergeJSONTranslations(result, filepath.Join(rootLang, locale+".json"))
	r.mergePHPTranslations(result, filepath.Join(rootLang, locale), "")

	return result
}

func (r *Resolver) mergeJSONTranslations(into map[string]Translation, path string) {
	if !r.fs.Exists(path) {
		return
	}
	content, err := r.fs.ReadFile(path)
	if err != nil {
		return
	}
	var values map[string]interface{}
	if err := json.Unmarshal(content, &values); err != nil {
		log.Printf("[WARN] Failed to parse %s: %v", path, err)
		return
	}
	for key, value := range values {
		if s, ok := value.(string); ok {
			into[key] = Translation{Value: s, Path: path}
		}
	}
}

func (r *Resolver) mergePHPTranslations(into map[string]Translation, dir, prefix string) {
	names, err := r.fs.ListFiles(dir, false, ".php")
	if err != nil {
		return
	}
	for _, name := range names {
		path := filepath.Join(dir, name)
		file := r.parse(path)
		if file.Returned == nil {
			continue
		}
		base := strings.TrimSuffix(name, filepath.Ext(name))
		flattenArray(file, base, file.Returned, func(key string, leaf ast.Vertex) {
			if s, ok := phpast.StringValue(leaf); ok {
				into[prefix+key] = Translation{Value: s, Path: path}
			}
		})
	}
}
